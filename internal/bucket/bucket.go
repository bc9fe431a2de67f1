package bucket

import (
	"fmt"
	"time"
)

const dayKeyLayout = "2006-01-02"

// DayKey converts ts to its civil calendar date in loc. The offset in effect
// at that instant is used, so dates are correct across DST transitions.
func DayKey(ts time.Time, loc *time.Location) string {
	return ts.In(loc).Format(dayKeyLayout)
}

// Window is an inclusive range of civil dates in the store timezone.
// Membership is tested on local date keys, never through UTC.
type Window struct {
	start    time.Time
	end      time.Time
	startKey string
	endKey   string
}

// NewWindow builds a window from inclusive start and end dates in loc
func NewWindow(start, end time.Time, loc *time.Location) (Window, error) {
	s := midnight(start, loc)
	e := midnight(end, loc)
	if e.Before(s) {
		return Window{}, fmt.Errorf("window end %s is before start %s", e.Format(dayKeyLayout), s.Format(dayKeyLayout))
	}
	return Window{
		start:    s,
		end:      e,
		startKey: s.Format(dayKeyLayout),
		endKey:   e.Format(dayKeyLayout),
	}, nil
}

// LastDays returns the window covering n days ending on the civil date of now in loc
func LastDays(n int, now time.Time, loc *time.Location) (Window, error) {
	if n < 1 {
		return Window{}, fmt.Errorf("window length must be at least one day, got %d", n)
	}
	end := midnight(now, loc)
	return NewWindow(end.AddDate(0, 0, -(n-1)), end, loc)
}

// ParseDate parses a calendar date in the form 2006-01-02 interpreted in loc
func ParseDate(s string, loc *time.Location) (time.Time, error) {
	return time.ParseInLocation(dayKeyLayout, s, loc)
}

// Contains reports whether the date key lies within the window.
// Date keys compare lexicographically in calendar order.
func (w Window) Contains(key string) bool {
	return key >= w.startKey && key <= w.endKey
}

// Days returns every date key of the window in ascending order
func (w Window) Days() []string {
	keys := []string{}
	for d := w.start; !d.After(w.end); d = d.AddDate(0, 0, 1) {
		keys = append(keys, d.Format(dayKeyLayout))
	}
	return keys
}

// StartKey returns the first date key of the window
func (w Window) StartKey() string { return w.startKey }

// EndKey returns the last date key of the window
func (w Window) EndKey() string { return w.endKey }

// StartTime returns local midnight of the first window day
func (w Window) StartTime() time.Time { return w.start }

// Bucket assigns ts to its window day. ok is false when the local
// date falls outside the window.
func Bucket(ts time.Time, loc *time.Location, w Window) (string, bool) {
	key := DayKey(ts, loc)
	if !w.Contains(key) {
		return "", false
	}
	return key, true
}

func midnight(t time.Time, loc *time.Location) time.Time {
	lt := t.In(loc)
	return time.Date(lt.Year(), lt.Month(), lt.Day(), 0, 0, 0, 0, loc)
}
