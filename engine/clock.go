package engine

import "time"

// DefaultPollTick is the granularity of every wait in the run. Onsets land
// within one tick of their deadline.
const DefaultPollTick = time.Millisecond

type Clock interface {
	Now() time.Time
	Sleep(d time.Duration)
}

// SystemClock reads the monotonic wall clock.
type SystemClock struct{}

func (SystemClock) Now() time.Time        { return time.Now() }
func (SystemClock) Sleep(d time.Duration) { time.Sleep(d) }

// WaitUntil polls c until deadline, sleeping at most tick per iteration, and
// returns how far past the deadline it woke up. A deadline already in the
// past returns immediately.
func WaitUntil(c Clock, deadline time.Time, tick time.Duration) time.Duration {
	for {
		now := c.Now()
		remaining := deadline.Sub(now)
		if remaining <= 0 {
			return -remaining
		}
		if remaining > tick {
			remaining = tick
		}
		c.Sleep(remaining)
	}
}

// WaitFor waits d from now.
func WaitFor(c Clock, d, tick time.Duration) {
	WaitUntil(c, c.Now().Add(d), tick)
}

// WaitUntilOr is WaitUntil with stop checked once per tick. It reports
// whether stop fired before the deadline; a deadline already reached never
// calls stop.
func WaitUntilOr(c Clock, deadline time.Time, tick time.Duration, stop func() bool) bool {
	for {
		remaining := deadline.Sub(c.Now())
		if remaining <= 0 {
			return false
		}
		if stop() {
			return true
		}
		if remaining > tick {
			remaining = tick
		}
		c.Sleep(remaining)
	}
}
