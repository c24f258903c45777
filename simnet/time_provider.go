package simnet

import "time"

// TimeProvider is an interface for getting the current time and creating timers.
// This allows injecting a fixed clock for deterministic delivery logs and deadlines.
type TimeProvider interface {
	// Now returns the current time.
	Now() time.Time
	// NewTimer creates a new timer that fires after the given duration.
	NewTimer(d time.Duration) *time.Timer
}

// RealTimeProvider implements TimeProvider using the actual system time.
type RealTimeProvider struct{}

// Now returns the current system time.
func (RealTimeProvider) Now() time.Time {
	return time.Now()
}

// NewTimer creates a new timer using the standard library.
func (RealTimeProvider) NewTimer(d time.Duration) *time.Timer {
	return time.NewTimer(d)
}

// SetTimeProvider replaces the clock used for delivery timestamps and
// deadline checks. Nil restores the system clock.
func (n *Network) SetTimeProvider(tp TimeProvider) {
	if tp == nil {
		tp = RealTimeProvider{}
	}
	n.mu.Lock()
	defer n.mu.Unlock()
	n.clock = tp
}

func (n *Network) timeProvider() TimeProvider {
	n.mu.Lock()
	defer n.mu.Unlock()
	return n.clock
}
