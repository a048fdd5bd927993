package utils

import (
	"fmt"
	"time"
)

// IndiaTZ is the office timezone. Every day boundary in the system is
// computed against this zone, never the server's local zone.
var IndiaTZ = time.FixedZone("IST", 5*60*60+30*60)

const dayLayout = "2006-01-02"

// DayKey maps an instant to the office calendar day it falls on.
func DayKey(t time.Time) string {
	return t.In(IndiaTZ).Format(dayLayout)
}

// DayStart returns the IST midnight that opens the given day key.
func DayStart(dayKey string) (time.Time, error) {
	t, err := time.ParseInLocation(dayLayout, dayKey, IndiaTZ)
	if err != nil {
		return time.Time{}, fmt.Errorf("invalid day key %q: %w", dayKey, err)
	}
	return t, nil
}

func ParseISOTime(s string) (*time.Time, error) {
	if s == "" {
		return nil, fmt.Errorf("empty time string")
	}

	t, err := time.Parse(time.RFC3339, s)
	if err == nil {
		return &t, nil
	}

	t, err = time.Parse(time.RFC3339Nano, s)
	if err == nil {
		return &t, nil
	}

	layouts := []string{
		"2006-01-02 15:04:05",
		"2006-01-02T15:04:05",
		dayLayout,
	}
	for _, layout := range layouts {
		if tt, e := time.ParseInLocation(layout, s, time.UTC); e == nil {
			return &tt, nil
		}
	}

	return nil, fmt.Errorf("failed to parse time: %v", s)
}
