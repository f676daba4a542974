// Package timer provides the cancellable timer abstraction used by triggers.
//
// All delayed work in this module (hover debounce, blur delays, deferred
// container resolution) goes through a [Scheduler]. Callbacks must run on the
// same cooperative loop as interaction handlers, so a Scheduler never runs a
// callback concurrently with the code that armed it:
//
//   - [Manual] is a deterministic clock for tests and headless scenario runs.
//     Nothing fires until Advance or RunAll is called.
//   - [Loop] is a real-time serial event loop; timers post their callbacks
//     into the loop.
//   - The terminal host in pkg/tui turns timers into bubbletea messages.
//
// [Slot] is the exclusively owned handle each instance keeps: arming it
// always cancels the previous timer first, so at most one timer per slot is
// ever pending.
package timer

import "time"

// Scheduler creates timers whose callbacks run on the owner's loop.
type Scheduler interface {
	// Now returns the scheduler's notion of the current time.
	Now() time.Time

	// AfterFunc arranges for fn to run once d has elapsed.
	AfterFunc(d time.Duration, fn func()) Timer
}

// Timer is a pending callback.
type Timer interface {
	// Stop prevents the timer from firing. It returns false if the timer
	// already fired or was already stopped.
	Stop() bool
}

// Slot holds at most one pending timer.
//
// A Slot is not safe for concurrent use; it belongs to one instance and is
// only touched from that instance's loop.
type Slot struct {
	sched Scheduler
	t     Timer
	gen   uint64
}

// NewSlot creates an empty slot backed by s.
func NewSlot(s Scheduler) *Slot {
	return &Slot{sched: s}
}

// Arm cancels any pending timer and schedules fn after d.
// The slot is empty again by the time fn runs.
func (s *Slot) Arm(d time.Duration, fn func()) {
	s.Cancel()
	s.gen++
	gen := s.gen
	s.t = s.sched.AfterFunc(d, func() {
		// A callback queued before Cancel must not run.
		if s.gen != gen {
			return
		}
		s.t = nil
		fn()
	})
}

// Cancel drops the pending timer, if any. It reports whether a timer was
// pending.
func (s *Slot) Cancel() bool {
	s.gen++
	if s.t == nil {
		return false
	}
	s.t.Stop()
	s.t = nil
	return true
}

// Pending reports whether a timer is armed and has not fired yet.
func (s *Slot) Pending() bool {
	return s.t != nil
}
