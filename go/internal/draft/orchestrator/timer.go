package orchestrator

import (
	"time"

	"github.com/jonboulle/clockwork"
)

// turnTimer is the countdown for the team on the clock. It is owned by the session
// actor: arm, disarm and current are only called from the actor goroutine.
//
// Every arm bumps the generation and so does every disarm. Callbacks carry the
// generation they were armed with and the actor drops any that is not current,
// so a fire racing a disarm is a no-op.
type turnTimer struct {
	clock        clockwork.Clock
	tickInterval time.Duration

	gen       uint64
	armed     bool
	stop      chan struct{}
	startsAt  time.Time // countdown start, after any inter-pick pause
	deadline  time.Time
	countdown time.Duration
}

func newTurnTimer(clock clockwork.Clock, tickInterval time.Duration) *turnTimer {
	return &turnTimer{clock: clock, tickInterval: tickInterval}
}

// arm replaces any live countdown with a new one of length d that starts after delay.
// onFire runs at most once; onTick runs every tick interval until fire or disarm.
func (t *turnTimer) arm(delay, d time.Duration, onTick, onFire func(gen uint64)) uint64 {
	t.disarm()

	t.gen++
	gen := t.gen
	stop := make(chan struct{})
	t.stop = stop
	t.armed = true
	t.countdown = d
	t.startsAt = t.clock.Now().Add(delay)
	t.deadline = t.startsAt.Add(d)

	timer := t.clock.NewTimer(delay + d)
	ticker := t.clock.NewTicker(t.tickInterval)

	go func() {
		defer ticker.Stop()
		for {
			select {
			case <-timer.Chan():
				onFire(gen)
				return
			case <-ticker.Chan():
				onTick(gen)
			case <-stop:
				stopAndDrainTimer(timer)
				return
			}
		}
	}()

	return gen
}

// disarm cancels the live countdown, if any. Safe to call repeatedly.
func (t *turnTimer) disarm() {
	if !t.armed {
		return
	}
	close(t.stop)
	t.armed = false
	t.gen++
}

// current reports whether gen belongs to the live countdown.
func (t *turnTimer) current(gen uint64) bool {
	return t.armed && gen == t.gen
}

// remaining is the countdown time left. During an inter-pick pause the full
// countdown is reported.
func (t *turnTimer) remaining() time.Duration {
	if !t.armed {
		return 0
	}
	r := t.deadline.Sub(t.clock.Now())
	switch {
	case r < 0:
		return 0
	case r > t.countdown:
		return t.countdown
	}
	return r
}

// stopAndDrainTimer safely stops a timer and drains its channel to prevent goroutine leaks.
// This follows the pattern recommended in the time.Timer.Stop() documentation.
func stopAndDrainTimer(timer clockwork.Timer) {
	if !timer.Stop() {
		// Timer already fired or was stopped, drain the channel to prevent goroutine leaks
		select {
		case <-timer.Chan():
		default:
		}
	}
}

// shouldBroadcastTick decides which whole seconds get a TimerTick: every second
// near expiry, coarser otherwise.
func shouldBroadcastTick(secondsRemaining int) bool {
	return secondsRemaining <= 10 || secondsRemaining%15 == 0
}

// ceilSeconds rounds a duration up to whole seconds.
func ceilSeconds(d time.Duration) int {
	if d <= 0 {
		return 0
	}
	return int((d + time.Second - 1) / time.Second)
}
