package simclock_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/vantage-intel/vantage/internal/simclock"
)

func TestClock_RealTimeByDefault(t *testing.T) {
	c := simclock.New()
	before := time.Now()
	got := c.Now()
	after := time.Now()
	assert.False(t, got.Before(before))
	assert.False(t, got.After(after))
}

func TestClock_OverrideAndClear(t *testing.T) {
	c := simclock.New()
	pinned := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)

	c.SetOverride(pinned)
	assert.Equal(t, pinned, c.Now())
	assert.Equal(t, pinned, c.Now(), "override is stable across reads")

	c.ClearOverride()
	assert.WithinDuration(t, time.Now(), c.Now(), time.Second)
}

func TestClock_DaysElapsedFloors(t *testing.T) {
	c := simclock.New()
	now := time.Date(2026, 3, 15, 0, 0, 0, 0, time.UTC)
	c.SetOverride(now)

	tests := []struct {
		name  string
		since time.Time
		want  int
	}{
		{"same instant", now, 0},
		{"under one day", now.Add(-23 * time.Hour), 0},
		{"exactly one day", now.Add(-24 * time.Hour), 1},
		{"thirteen and a half days", now.Add(-13*24*time.Hour - 12*time.Hour), 13},
		{"fourteen days", now.Add(-14 * 24 * time.Hour), 14},
		{"future timestamp clamps to zero", now.Add(48 * time.Hour), 0},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, c.DaysElapsed(tt.since))
		})
	}
}

func TestClock_HasElapsedInclusiveBoundary(t *testing.T) {
	c := simclock.New()
	now := time.Date(2026, 3, 15, 0, 0, 0, 0, time.UTC)
	c.SetOverride(now)

	assert.False(t, c.HasElapsed(now.Add(-13*24*time.Hour), 14))
	assert.True(t, c.HasElapsed(now.Add(-14*24*time.Hour), 14), "day 14 itself is due")
	assert.True(t, c.HasElapsed(now.Add(-20*24*time.Hour), 14))
}
