package timeutil

import "time"

// Now returns the current time in UTC.
// Always use this instead of time.Now() to ensure timezone consistency.
func Now() time.Time {
	return time.Now().UTC()
}

// Clock abstracts the time source so components with time-dependent
// behavior (the rate limiter, the orchestrator's timestamps) can be
// tested with synthetic clocks.
type Clock interface {
	Now() time.Time
}

// SystemClock is the production Clock, reporting UTC wall time.
type SystemClock struct{}

func (SystemClock) Now() time.Time {
	return time.Now().UTC()
}

// FakeClock is a manually-advanced Clock for tests.
type FakeClock struct {
	Current time.Time
}

// NewFakeClock creates a FakeClock pinned at t.
func NewFakeClock(t time.Time) *FakeClock {
	return &FakeClock{Current: t.UTC()}
}

func (c *FakeClock) Now() time.Time {
	return c.Current
}

// Advance moves the clock forward by d.
func (c *FakeClock) Advance(d time.Duration) {
	c.Current = c.Current.Add(d)
}

// StartOfDay returns the start of the day (midnight) in UTC.
func StartOfDay(t time.Time) time.Time {
	year, month, day := t.UTC().Date()
	return time.Date(year, month, day, 0, 0, 0, 0, time.UTC)
}

// EndOfDay returns the end of the day (23:59:59.999999999) in UTC.
func EndOfDay(t time.Time) time.Time {
	year, month, day := t.UTC().Date()
	return time.Date(year, month, day, 23, 59, 59, 999999999, time.UTC)
}
