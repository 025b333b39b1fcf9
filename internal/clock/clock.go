// Package clock provides an injectable time source. All calendar-date
// arithmetic in the services (transaction date defaulting, daily change
// windows, monthly dashboard windows) goes through a Clock so tests can
// pin the current date.
package clock

import "time"

// Clock supplies the current time in the service's configured location.
type Clock interface {
	Now() time.Time
}

// Today returns the calendar date of c's current time, normalized to
// midnight UTC. Transaction dates are stored date-only in UTC, so all
// window comparisons use this normalization.
func Today(c Clock) time.Time {
	return DateOf(c.Now())
}

// DateOf strips the time-of-day component from t, keeping the calendar
// date as observed in t's location.
func DateOf(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

type systemClock struct {
	loc *time.Location
}

// System returns a Clock backed by the wall clock, reporting time in loc.
// A nil location defaults to UTC.
func System(loc *time.Location) Clock {
	if loc == nil {
		loc = time.UTC
	}
	return systemClock{loc: loc}
}

func (c systemClock) Now() time.Time {
	return time.Now().In(c.loc)
}

// Fixed is a Clock frozen at a single instant, for tests.
type Fixed struct {
	Time time.Time
}

func (f Fixed) Now() time.Time { return f.Time }
