package domain

import "github.com/jonboulle/clockwork"

// clock is a package-level time source so tests can freeze time via SetClock.
// It determines the "current month" attached to live weather readings and the
// timestamps on recommendations and model artifacts.
var clock = clockwork.NewRealClock()

// Clock returns the active time source.
func Clock() clockwork.Clock {
	return clock
}

// SetClock swaps the time source. Pass nil to reset to real time.
func SetClock(c clockwork.Clock) {
	if c == nil {
		clock = clockwork.NewRealClock()
		return
	}
	clock = c
}

// CurrentMonth returns the month (1-12) according to the active clock.
func CurrentMonth() int {
	return int(clock.Now().Month())
}
