package util

import "time"

// NowUTC exposes time.Now for deterministic testing.
func NowUTC() time.Time {
	return time.Now().UTC()
}

// DayLabel renders a calendar day the way price charts expect it, e.g. "14 Oct".
func DayLabel(t time.Time) string {
	return t.Format("02 Jan")
}
