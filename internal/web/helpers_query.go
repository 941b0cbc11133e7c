package web

import (
	"encoding/json"
	"strconv"
	"strings"
	"time"
)

const (
	allSeasons = "all"

	leaderboardSize    = 3
	topPerformersSize  = 5
	topPerformersGames = 2
)

// parseLimit reads a positive count, falling back to def and capping at max.
func parseLimit(value string, def, max int) int {
	if value == "" {
		return def
	}
	parsed, err := strconv.Atoi(value)
	if err != nil || parsed < 1 {
		return def
	}
	if max > 0 && parsed > max {
		return max
	}
	return parsed
}

// date accepts either RFC 3339 timestamps or plain 2006-01-02 dates.
type date struct {
	time.Time
}

func (d *date) UnmarshalJSON(b []byte) error {
	var raw string
	if err := json.Unmarshal(b, &raw); err != nil {
		return err
	}
	raw = strings.TrimSpace(raw)
	if raw == "" {
		d.Time = time.Time{}
		return nil
	}
	if t, err := time.Parse(time.RFC3339Nano, raw); err == nil {
		d.Time = t
		return nil
	}
	t, err := time.Parse(time.DateOnly, raw)
	if err != nil {
		return err
	}
	d.Time = t
	return nil
}

// endOfDay moves plain dates to the last instant of that day so a season
// ending on a date includes it.
func endOfDay(t time.Time) time.Time {
	if t.IsZero() || t.Hour() != 0 || t.Minute() != 0 || t.Second() != 0 || t.Nanosecond() != 0 {
		return t
	}
	return t.AddDate(0, 0, 1).Add(-time.Nanosecond)
}
