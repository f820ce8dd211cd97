// Package clock holds the UTC day keys of the counter ledger and the
// cancellable pause used by polling loops.
package clock

import (
	"context"
	"time"
)

// DayLayout is the format of counter day keys.
const DayLayout = "2006-01-02"

// SleepWithContext pauses for d and returns ctx.Err() if ctx ends first.
func SleepWithContext(ctx context.Context, d time.Duration) error {
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-t.C:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// Day returns the UTC calendar day of t as YYYY-MM-DD.
func Day(t time.Time) string {
	return t.UTC().Format(DayLayout)
}

// ParseDay validates a YYYY-MM-DD day key.
func ParseDay(s string) (time.Time, error) {
	return time.ParseInLocation(DayLayout, s, time.UTC)
}
