package utils

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestParseFreshnessDuration(t *testing.T) {
	def := 24 * time.Hour
	cases := []struct {
		raw  string
		want time.Duration
	}{
		{"2 hours", 2 * time.Hour},
		{"1 hour", time.Hour},
		{"3 hrs", 3 * time.Hour},
		{"5hr", 5 * time.Hour},
		{"6h", 6 * time.Hour},
		{"12 Hours", 12 * time.Hour},
		{"about 4 hours or so", 4 * time.Hour},
		{"1 day", 24 * time.Hour},
		{"2 days", 48 * time.Hour},
		{"2d", 48 * time.Hour},
		{"30 minutes", 30 * time.Minute},
		{"45 mins", 45 * time.Minute},
		{"90m", 90 * time.Minute},
		{"", def},
		{"fresh until tonight", def},
		{"many hours", def},
	}
	for _, tc := range cases {
		assert.Equal(t, tc.want, ParseFreshnessDuration(tc.raw, def), "raw=%q", tc.raw)
	}
}

func TestParseFreshnessDurationHoursWinOverDays(t *testing.T) {
	// Mixed input resolves on the first recognized hour figure.
	got := ParseFreshnessDuration("1 day 2 hours", 24*time.Hour)
	assert.Equal(t, 2*time.Hour, got)
}

func TestCalculateExpiration(t *testing.T) {
	created := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)

	assert.Equal(t, created.Add(2*time.Hour), CalculateExpiration("2 hours", created, 24*time.Hour))
	assert.Equal(t, created.Add(24*time.Hour), CalculateExpiration("??", created, 24*time.Hour))
}
