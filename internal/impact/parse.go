package impact

import (
	"fmt"
	"math"
	"regexp"
	"strconv"
	"strings"
)

// impactValueRe captures the first decimal number and an optional K/M/B
// unit from an expected-outcome impact string like "$500K savings".
var impactValueRe = regexp.MustCompile(`(\d+(?:\.\d+)?)\s?([KMBkmb])?`)

// parseImpactValue extracts the predicted magnitude in absolute currency
// units. The first decimal number found wins; unit suffixes expand it
// (K x1000, M x1e6, B x1e9). Returns 0 when no number is present.
func parseImpactValue(text string) float64 {
	m := impactValueRe.FindStringSubmatch(text)
	if m == nil {
		return 0
	}
	value, err := strconv.ParseFloat(m[1], 64)
	if err != nil {
		return 0
	}
	switch strings.ToUpper(m[2]) {
	case "K":
		value *= 1_000
	case "M":
		value *= 1_000_000
	case "B":
		value *= 1_000_000_000
	}
	return value
}

// formatImpactValue renders the simulated actual value in the same style
// as the predicted string it derives from: currency symbol and trailing
// words are preserved, the figure is replaced.
func formatImpactValue(value float64, template string) string {
	figure := formatCompact(value)
	if m := impactValueRe.FindStringIndex(template); m != nil {
		// Swap the original figure (including its unit) for the new one.
		return template[:m[0]] + figure + template[m[1]:]
	}
	return figure
}

// formatCompact renders 1234567.0 as "1.23M", 540000.0 as "540K".
func formatCompact(v float64) string {
	abs := math.Abs(v)
	switch {
	case abs >= 1_000_000_000:
		return trimZeros(fmt.Sprintf("%.2f", v/1_000_000_000)) + "B"
	case abs >= 1_000_000:
		return trimZeros(fmt.Sprintf("%.2f", v/1_000_000)) + "M"
	case abs >= 1_000:
		return trimZeros(fmt.Sprintf("%.0f", v/1_000)) + "K"
	default:
		return trimZeros(fmt.Sprintf("%.0f", v))
	}
}

func trimZeros(s string) string {
	if !strings.Contains(s, ".") {
		return s
	}
	return strings.TrimRight(strings.TrimRight(s, "0"), ".")
}

// roundHalfAway rounds to the nearest integer, halves away from zero.
func roundHalfAway(v float64) float64 {
	return math.Round(v)
}
