// Package countdown implements the expiry gate for scheduled events and a
// stoppable one-second ticker for countdown displays.
package countdown

import (
	"sync"
	"time"
)

// IsExpired reports whether an event scheduled at `at` has started by `now`.
// Expiry is inclusive: an event is expired the instant its start time is
// reached, and stays expired for every later now.
func IsExpired(at, now time.Time) bool {
	return !now.Before(at)
}

// TimeLeft is the decomposed non-negative delta until an event starts.
type TimeLeft struct {
	Days    int  `json:"days"`
	Hours   int  `json:"hours"`
	Minutes int  `json:"minutes"`
	Seconds int  `json:"seconds"`
	Expired bool `json:"is_expired"`
}

// Remaining decomposes the time until `at` as seen from `now`. Once the delta
// is zero or negative every field is zero and Expired is true.
func Remaining(at, now time.Time) TimeLeft {
	d := at.Sub(now)
	if d <= 0 {
		return TimeLeft{Expired: true}
	}
	return TimeLeft{
		Days:    int(d / (24 * time.Hour)),
		Hours:   int(d/time.Hour) % 24,
		Minutes: int(d/time.Minute) % 60,
		Seconds: int(d/time.Second) % 60,
	}
}

// Countdown invokes a callback once per second with the remaining time until
// a target instant. It must be stopped by the owner when no longer displayed;
// it also stops itself after reporting the expired state once.
type Countdown struct {
	stop     chan struct{}
	stopOnce sync.Once
}

// New starts a countdown toward target, invoking fn on every tick.
func New(target time.Time, fn func(TimeLeft)) *Countdown {
	c := &Countdown{stop: make(chan struct{})}
	go func() {
		ticker := time.NewTicker(time.Second)
		defer ticker.Stop()
		for {
			select {
			case <-c.stop:
				return
			case now := <-ticker.C:
				left := Remaining(target, now)
				fn(left)
				if left.Expired {
					c.Stop()
					return
				}
			}
		}
	}()
	return c
}

// Stop cancels the countdown. Safe to call more than once.
func (c *Countdown) Stop() {
	c.stopOnce.Do(func() { close(c.stop) })
}
