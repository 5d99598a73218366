package types

import "time"

// Clock supplies "now". Every operation that depends on today reads it once per call.
type Clock interface {
	Now() time.Time
}

// SystemClock reads the wall clock in UTC
type SystemClock struct{}

func (SystemClock) Now() time.Time {
	return time.Now().UTC()
}

// FixedClock always returns the same instant
type FixedClock struct {
	At time.Time
}

func (c FixedClock) Now() time.Time {
	return c.At
}

// Today returns the clock's current calendar date in loc
func Today(c Clock, loc *time.Location) time.Time {
	if c == nil {
		c = SystemClock{}
	}
	return DateOnly(c.Now(), loc)
}
