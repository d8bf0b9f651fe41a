package utils

import "time"

// NowUTC returns the current instant at storage precision.
func NowUTC() time.Time {
	return time.Now().UTC().Truncate(time.Microsecond)
}

// ClockOrDefault wraps now so that every reading is UTC at microsecond precision.
func ClockOrDefault(now func() time.Time) func() time.Time {
	if now == nil {
		return NowUTC
	}
	return func() time.Time {
		return now().UTC().Truncate(time.Microsecond)
	}
}
