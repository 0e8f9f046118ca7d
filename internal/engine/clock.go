package engine

import "time"

// Clock abstracts time.Now() to allow deterministic testing.
// It is used by the Projector and the Dispatcher to determine "today" and the current minute.
type Clock interface {
	Now() time.Time
}

// RealClock implements Clock using the standard time package.
type RealClock struct{}

// Now returns the current local time.
func (RealClock) Now() time.Time {
	return time.Now()
}

// Today returns the local calendar day of the clock and its weekday name.
// Reminders are defined by the user's wall calendar, not by a UTC instant.
func Today(c Clock) (Date, DayName) {
	now := c.Now()
	return DateOf(now), DayNameOf(now.Weekday())
}
