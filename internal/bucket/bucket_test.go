package bucket

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func berlin(t *testing.T) *time.Location {
	t.Helper()
	loc, err := time.LoadLocation("Europe/Berlin")
	require.NoError(t, err)
	return loc
}

func TestDayKey_UsesOffsetInEffect(t *testing.T) {
	loc := berlin(t)

	tests := []struct {
		name    string
		instant time.Time
		wantKey string
	}{
		{
			// CEST, +02:00: 22:30 UTC is already the next local day
			name:    "summer_offset_crosses_midnight",
			instant: time.Date(2026, 7, 1, 22, 30, 0, 0, time.UTC),
			wantKey: "2026-07-02",
		},
		{
			// CET, +01:00: the same UTC clock time stays on the same local day
			name:    "winter_offset_stays_same_day",
			instant: time.Date(2026, 12, 1, 22, 30, 0, 0, time.UTC),
			wantKey: "2026-12-01",
		},
		{
			name:    "winter_offset_crosses_midnight",
			instant: time.Date(2026, 12, 1, 23, 30, 0, 0, time.UTC),
			wantKey: "2026-12-02",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.wantKey, DayKey(tt.instant, loc))
		})
	}
}

func TestWindow_ContainsInclusive(t *testing.T) {
	loc := berlin(t)

	start, err := ParseDate("2026-08-10", loc)
	require.NoError(t, err)
	end, err := ParseDate("2026-08-12", loc)
	require.NoError(t, err)

	w, err := NewWindow(start, end, loc)
	require.NoError(t, err)

	assert.True(t, w.Contains("2026-08-10"))
	assert.True(t, w.Contains("2026-08-11"))
	assert.True(t, w.Contains("2026-08-12"))
	assert.False(t, w.Contains("2026-08-09"))
	assert.False(t, w.Contains("2026-08-13"))
}

func TestWindow_EndBeforeStart(t *testing.T) {
	loc := berlin(t)

	start, err := ParseDate("2026-08-12", loc)
	require.NoError(t, err)
	end, err := ParseDate("2026-08-10", loc)
	require.NoError(t, err)

	_, err = NewWindow(start, end, loc)
	assert.Error(t, err)
}

func TestWindow_DaysAcrossDSTTransition(t *testing.T) {
	loc := berlin(t)

	// DST starts on 2026-03-29 in Europe/Berlin
	start, err := ParseDate("2026-03-28", loc)
	require.NoError(t, err)
	end, err := ParseDate("2026-03-30", loc)
	require.NoError(t, err)

	w, err := NewWindow(start, end, loc)
	require.NoError(t, err)

	assert.Equal(t, []string{"2026-03-28", "2026-03-29", "2026-03-30"}, w.Days())
}

func TestLastDays(t *testing.T) {
	loc := berlin(t)

	now := time.Date(2026, 8, 30, 10, 0, 0, 0, time.UTC)
	w, err := LastDays(3, now, loc)
	require.NoError(t, err)

	assert.Equal(t, "2026-08-28", w.StartKey())
	assert.Equal(t, "2026-08-30", w.EndKey())

	_, err = LastDays(0, now, loc)
	assert.Error(t, err)
}

func TestBucket_WindowMembership(t *testing.T) {
	loc := berlin(t)

	start, err := ParseDate("2026-08-10", loc)
	require.NoError(t, err)
	end, err := ParseDate("2026-08-10", loc)
	require.NoError(t, err)
	w, err := NewWindow(start, end, loc)
	require.NoError(t, err)

	// 23:30 UTC on the 9th is 01:30 local on the 10th
	key, ok := Bucket(time.Date(2026, 8, 9, 23, 30, 0, 0, time.UTC), loc, w)
	require.True(t, ok)
	assert.Equal(t, "2026-08-10", key)

	_, ok = Bucket(time.Date(2026, 8, 9, 12, 0, 0, 0, time.UTC), loc, w)
	assert.False(t, ok)
}
