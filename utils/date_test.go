package utils

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDayKey(t *testing.T) {
	tests := []struct {
		name     string
		instant  string
		expected string
	}{
		{
			name:     "Midday IST",
			instant:  "2025-03-01T12:00:00+05:30",
			expected: "2025-03-01",
		},
		{
			name:     "Just before IST midnight",
			instant:  "2025-03-01T23:59:59+05:30",
			expected: "2025-03-01",
		},
		{
			name:     "Exactly IST midnight rolls to the new day",
			instant:  "2025-03-02T00:00:00+05:30",
			expected: "2025-03-02",
		},
		{
			name:     "UTC evening is already the next IST day",
			instant:  "2025-03-01T19:00:00Z",
			expected: "2025-03-02",
		},
		{
			name:     "Caller zone is irrelevant",
			instant:  "2025-03-01T22:00:00-08:00",
			expected: "2025-03-02",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			instant, err := time.Parse(time.RFC3339, tt.instant)
			require.NoError(t, err)
			assert.Equal(t, tt.expected, DayKey(instant))
		})
	}
}

func TestDayStart(t *testing.T) {
	start, err := DayStart("2025-03-01")
	require.NoError(t, err)
	assert.Equal(t, "2025-03-01", DayKey(start))
	assert.Equal(t, "2025-02-28", DayKey(start.Add(-time.Second)))

	_, err = DayStart("not-a-day")
	assert.Error(t, err)
}

func TestParseISOTime(t *testing.T) {
	for _, s := range []string{
		"2025-03-01T10:00:00+05:30",
		"2025-03-01T10:00:00.123Z",
		"2025-03-01 10:00:00",
		"2025-03-01T10:00:00",
		"2025-03-01",
	} {
		parsed, err := ParseISOTime(s)
		require.NoError(t, err, s)
		require.NotNil(t, parsed)
	}

	_, err := ParseISOTime("")
	assert.Error(t, err)
	_, err = ParseISOTime("yesterday")
	assert.Error(t, err)
}
