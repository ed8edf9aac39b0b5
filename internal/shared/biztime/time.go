// Package biztime provides utilities for business timezone calculations.
// All storage and transport use UTC. The business timezone is only used for
// calendar-day boundaries, such as the inclusive date-range filters of the
// interaction views.
package biztime

import (
	"fmt"
	"sync"
	"time"
)

// DateLayout is the calendar date format accepted by filters.
const DateLayout = "2006-01-02"

var (
	bizLocation   = time.Local
	bizLocationMu sync.RWMutex
)

// Init sets the business timezone. "Local" or an empty value selects the
// process's local zone.
func Init(tz string) error {
	loc := time.Local
	if tz != "" && tz != "Local" {
		var err error
		loc, err = time.LoadLocation(tz)
		if err != nil {
			return fmt.Errorf("load business timezone %q: %w", tz, err)
		}
	}
	bizLocationMu.Lock()
	bizLocation = loc
	bizLocationMu.Unlock()
	return nil
}

// Location returns the business timezone location.
func Location() *time.Location {
	bizLocationMu.RLock()
	defer bizLocationMu.RUnlock()
	return bizLocation
}

// NowUTC returns current time in UTC.
func NowUTC() time.Time {
	return time.Now().UTC()
}

// StartOfDayUTC returns 00:00:00.000 of t's business day, converted to UTC.
func StartOfDayUTC(t time.Time) time.Time {
	loc := Location()
	b := t.In(loc)
	return time.Date(b.Year(), b.Month(), b.Day(), 0, 0, 0, 0, loc).UTC()
}

// EndOfDayUTC returns 23:59:59.999 of t's business day, converted to UTC.
// Millisecond precision matches the resolution of stored timestamps.
func EndOfDayUTC(t time.Time) time.Time {
	loc := Location()
	b := t.In(loc)
	return time.Date(b.Year(), b.Month(), b.Day(), 23, 59, 59, int(999*time.Millisecond), loc).UTC()
}

// ParseDate parses a YYYY-MM-DD calendar date in the business timezone and
// returns the start of that day in UTC.
func ParseDate(value string) (time.Time, error) {
	t, err := time.ParseInLocation(DateLayout, value, Location())
	if err != nil {
		return time.Time{}, fmt.Errorf("invalid date %q, expected YYYY-MM-DD", value)
	}
	return t.UTC(), nil
}

// ToBizTimezone converts a UTC time to business timezone for display.
func ToBizTimezone(t time.Time) time.Time {
	return t.In(Location())
}

// FromMillis converts a stored unix-millisecond timestamp to UTC time.
func FromMillis(ms int64) time.Time {
	return time.UnixMilli(ms).UTC()
}
