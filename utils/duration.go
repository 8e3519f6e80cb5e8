package utils

import (
	"regexp"
	"strconv"
	"time"
)

// Freshness durations are free text typed by donors ("2 hours", "3 hrs",
// "1 day"). Hours are the primary unit; day and minute forms are accepted
// because they show up in real input. Anything unparsable falls back to
// the configured default.
var (
	hoursPattern   = regexp.MustCompile(`(?i)(\d+)\s*(hours|hour|hrs|hr|h)\b`)
	daysPattern    = regexp.MustCompile(`(?i)(\d+)\s*(days|day|d)\b`)
	minutesPattern = regexp.MustCompile(`(?i)(\d+)\s*(minutes|minute|mins|min|m)\b`)
)

// ParseFreshnessDuration converts a human-entered duration string into a
// time.Duration, falling back to def when it cannot be parsed.
func ParseFreshnessDuration(raw string, def time.Duration) time.Duration {
	if m := hoursPattern.FindStringSubmatch(raw); m != nil {
		if n, err := strconv.Atoi(m[1]); err == nil {
			return time.Duration(n) * time.Hour
		}
	}
	if m := daysPattern.FindStringSubmatch(raw); m != nil {
		if n, err := strconv.Atoi(m[1]); err == nil {
			return time.Duration(n) * 24 * time.Hour
		}
	}
	if m := minutesPattern.FindStringSubmatch(raw); m != nil {
		if n, err := strconv.Atoi(m[1]); err == nil {
			return time.Duration(n) * time.Minute
		}
	}
	return def
}

// CalculateExpiration returns the absolute freshness deadline for a post
// created at createdAt. The result is fixed at creation time and never
// recomputed afterwards.
func CalculateExpiration(raw string, createdAt time.Time, def time.Duration) time.Time {
	return createdAt.Add(ParseFreshnessDuration(raw, def))
}
