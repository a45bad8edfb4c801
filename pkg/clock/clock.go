// Package clock provides the current date/time to the business rules so tests can pin it.
package clock

import "time"

type Clock interface {
	Now() time.Time
}

type systemClock struct {
	loc *time.Location
}

// System returns a Clock reading the wall clock in loc (time.Local when nil).
func System(loc *time.Location) Clock {
	if loc == nil {
		loc = time.Local
	}
	return systemClock{loc: loc}
}

func (c systemClock) Now() time.Time {
	return time.Now().In(c.loc)
}

// Fixed always returns t.
type Fixed time.Time

func (f Fixed) Now() time.Time {
	return time.Time(f)
}

// Today formats c.Now() as YYYY-MM-DD.
func Today(c Clock) string {
	return c.Now().Format("2006-01-02")
}

// NowHHMM formats c.Now() as HH:MM.
func NowHHMM(c Clock) string {
	return c.Now().Format("15:04")
}
