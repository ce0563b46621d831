package clock

import "time"

// Clock is the source of wall time for controllers. Session expiry and
// room timestamps read it so tests can move time explicitly.
type Clock interface {
	Now() time.Time
}

// System reads time.Now
type System struct{}

var _ Clock = System{}

// New returns the system clock
func New() System {
	return System{}
}

func (System) Now() time.Time {
	return time.Now().UTC()
}

// Since returns the time elapsed on c since t
func Since(c Clock, t time.Time) time.Duration {
	return c.Now().Sub(t)
}
