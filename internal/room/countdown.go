package room

import (
	"sync"
	"time"
)

// Countdown is an explicit, cancellable handle for the start countdown. The
// previous incarnation of this flow parked anonymous timers on the room and
// could leak them past deletion; the handle makes cancellation on
// leave/disconnect deterministic.
//
// The tick callback receives the remaining count (from, from-1, ..., 0) and
// returns false to abort, which lets the owner reject stale ticks after a
// cancellation has raced with a fire. done runs after the zero tick.
type Countdown struct {
	stop     chan struct{}
	stopOnce sync.Once
}

// StartCountdown begins emitting ticks. The first tick (the full value) is
// emitted immediately; subsequent ticks follow at the given interval down to
// and including zero.
func StartCountdown(from int, interval time.Duration, tick func(remaining int) bool, done func()) *Countdown {
	cd := &Countdown{stop: make(chan struct{})}

	go func() {
		n := from
		if !tick(n) {
			return
		}
		if n == 0 {
			done()
			return
		}
		t := time.NewTicker(interval)
		defer t.Stop()
		for {
			select {
			case <-cd.stop:
				return
			case <-t.C:
				n--
				if !tick(n) {
					return
				}
				if n == 0 {
					done()
					return
				}
			}
		}
	}()

	return cd
}

// Stop cancels the countdown. Safe to call more than once and safe to call
// while a tick is firing; that tick's owner-side check absorbs the race.
func (cd *Countdown) Stop() {
	cd.stopOnce.Do(func() { close(cd.stop) })
}
