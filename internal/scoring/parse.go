package scoring

import (
	"encoding/json"
	"regexp"
	"strconv"
	"strings"

	"github.com/vantage-intel/vantage/internal/model"
)

// moneyRe extracts "$1.2M" / "500K" style figures from display strings.
// Fallback only: sources providing the structured Amount field never hit this.
var moneyRe = regexp.MustCompile(`\$?\s?(\d+(?:\.\d+)?)\s?([KMBkmb])?`)

// percentRe extracts the first percentage figure from a KPI string.
var percentRe = regexp.MustCompile(`(\d+(?:\.\d+)?)\s?%`)

// financialAmount returns the absolute financial magnitude of a story's
// impact, preferring the structured amount over display-string extraction.
func financialAmount(impact model.StoryImpact) float64 {
	if impact.Amount != nil {
		return impact.Amount.Absolute()
	}
	return parseMoney(impact.Financial)
}

// parseMoney extracts the first number-plus-unit figure from free text and
// expands it to absolute currency units. Returns 0 when no figure is found.
func parseMoney(text string) float64 {
	m := moneyRe.FindStringSubmatch(text)
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

// anomalyMagnitude returns how far the story's KPI deviates from normal,
// as a value in [0, 1]. Preference order: an explicit anomaly_score in the
// raw payload, then a percentage figure in the KPI text (a 50% move counts
// as maximal), then a neutral 0.5 when neither is available.
func anomalyMagnitude(story model.Story) float64 {
	if raw, ok := story.RawData["anomaly_score"]; ok {
		if v, ok := toFloat(raw); ok {
			return clamp01(v)
		}
	}
	if m := percentRe.FindStringSubmatch(story.Impact.KPI); m != nil {
		if v, err := strconv.ParseFloat(m[1], 64); err == nil {
			return clamp01(v / 50.0)
		}
	}
	return 0.5
}

// kpiMatches reports whether any role keyword appears in the KPI text.
// Matching is case-insensitive substring containment.
func kpiMatches(kpi string, keywords []string) bool {
	if kpi == "" {
		return false
	}
	lowered := strings.ToLower(kpi)
	for _, kw := range keywords {
		if strings.Contains(lowered, kw) {
			return true
		}
	}
	return false
}

func toFloat(v any) (float64, bool) {
	switch n := v.(type) {
	case float64:
		return n, true
	case float32:
		return float64(n), true
	case int:
		return float64(n), true
	case int64:
		return float64(n), true
	case json.Number:
		f, err := n.Float64()
		return f, err == nil
	}
	return 0, false
}
