package period

import "time"

// Clock provides the current time. Engines take time from a Clock injected at
// the entry point instead of calling time.Now directly.
type Clock interface {
	Now() time.Time
}

// RealClock returns the system time in UTC.
type RealClock struct{}

// Now returns the current UTC time.
func (RealClock) Now() time.Time {
	return time.Now().UTC()
}

// FixedClock always returns T.
type FixedClock struct {
	T time.Time
}

// Now returns the fixed time.
func (c FixedClock) Now() time.Time {
	return c.T
}

// FuncClock adapts a function to Clock.
type FuncClock func() time.Time

// Now calls f.
func (f FuncClock) Now() time.Time {
	return f()
}
