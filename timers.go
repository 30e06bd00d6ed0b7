package main

import "time"

// Scheduler abstracts timer creation so tests can drive game flow with
// virtual time. The returned cancel reports whether the callback was
// prevented from running.
type Scheduler interface {
	Schedule(d time.Duration, fn func()) (cancel func() bool)
}

type wallScheduler struct{}

func (wallScheduler) Schedule(d time.Duration, fn func()) func() bool {
	t := time.AfterFunc(d, fn)
	return t.Stop
}

// startTimer begins a per-second countdown on the room. onTick fires
// immediately with the full duration and again after each elapsed second;
// onExpire fires once at zero. Both run with r.mu held. Callers must hold
// r.mu. Any previous countdown is stopped first, so at most one countdown
// is ever live per room.
func (r *Room) startTimer(seconds int, onTick func(remaining int), onExpire func()) {
	r.stopTimer()

	r.timerRemaining = seconds
	r.timerActive = true
	r.timerGen++
	gen := r.timerGen

	if onTick != nil {
		onTick(seconds)
	}

	var step func()
	step = func() {
		r.mu.Lock()
		defer r.mu.Unlock()

		if r.aborted || !r.timerActive || r.timerGen != gen {
			return
		}

		r.timerRemaining--
		if r.timerRemaining <= 0 {
			r.timerActive = false
			r.timerCancel = nil
			if onExpire != nil {
				onExpire()
			}
			return
		}

		if onTick != nil {
			onTick(r.timerRemaining)
		}
		r.timerCancel = r.sched.Schedule(time.Second, step)
	}

	r.timerCancel = r.sched.Schedule(time.Second, step)
}

// stopTimer halts any running countdown. Callers must hold r.mu.
func (r *Room) stopTimer() {
	if r.timerCancel != nil {
		r.timerCancel()
		r.timerCancel = nil
	}
	r.timerGen++
	r.timerActive = false
	r.timerRemaining = 0
}

// extendTimer adds seconds to a running countdown and returns the new
// remaining value, or -1 if no countdown is live. Callers must hold r.mu.
func (r *Room) extendTimer(seconds int) int {
	if !r.timerActive {
		return -1
	}
	r.timerRemaining += seconds
	return r.timerRemaining
}
