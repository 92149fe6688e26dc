package tickloom

import "time"

// Clock abstracts wall-clock time for processes and storage. Production
// code uses SystemClock; simulated clusters use SimulatedClock so that
// timestamps are driven by ticks rather than the host's real clock,
// keeping last-writer-wins resolution (spec §6) deterministic.
type Clock interface {
	// Now returns the current time, in nanoseconds since the Unix epoch.
	Now() int64
}

// SystemClock reports the real wall-clock time via time.Now.
type SystemClock struct{}

// Now implements Clock.
func (SystemClock) Now() int64 { return time.Now().UnixNano() }

// SimulatedClock is a manually-advanced Clock for deterministic cluster
// runs. Each process typically owns its own SimulatedClock so that clock
// skew between processes can be injected with SetTime/Advance (spec §8,
// setTimeForProcess / advanceTimeForProcess).
type SimulatedClock struct {
	now int64
}

// NewSimulatedClock returns a SimulatedClock initialized to startNanos.
func NewSimulatedClock(startNanos int64) *SimulatedClock {
	return &SimulatedClock{now: startNanos}
}

// Now implements Clock.
func (c *SimulatedClock) Now() int64 { return c.now }

// SetTime jumps the clock directly to nanos, which may move it backwards.
// Used to simulate clock skew between processes.
func (c *SimulatedClock) SetTime(nanos int64) { c.now = nanos }

// Advance moves the clock forward by deltaNanos. A negative delta moves it
// backwards.
func (c *SimulatedClock) Advance(deltaNanos int64) { c.now += deltaNanos }
