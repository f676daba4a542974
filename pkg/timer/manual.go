package timer

import (
	"sync"
	"time"
)

// maxRunAll bounds RunAll so timers that keep re-arming themselves cannot
// spin forever.
const maxRunAll = 100000

// epoch is the default start time of a manual clock.
var epoch = time.Date(2020, 1, 1, 0, 0, 0, 0, time.UTC)

// Manual is a scheduler driven explicitly by the caller.
//
// Timers fire in deadline order, ties broken by arming order. Callbacks run
// on the goroutine calling Advance or RunAll, without the clock's lock held,
// so they may arm or stop other timers.
type Manual struct {
	mu     sync.Mutex
	now    time.Time
	seq    uint64
	timers []*manualTimer
}

type manualTimer struct {
	m    *Manual
	when time.Time
	seq  uint64
	fn   func()
	done bool
}

// NewManual creates a manual clock starting at start. A zero start uses a
// fixed epoch so traces are reproducible.
func NewManual(start time.Time) *Manual {
	if start.IsZero() {
		start = epoch
	}
	return &Manual{now: start}
}

// Now returns the current manual time.
func (m *Manual) Now() time.Time {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.now
}

// AfterFunc schedules fn at Now()+d. Negative durations are treated as zero.
func (m *Manual) AfterFunc(d time.Duration, fn func()) Timer {
	if d < 0 {
		d = 0
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.seq++
	t := &manualTimer{m: m, when: m.now.Add(d), seq: m.seq, fn: fn}
	m.timers = append(m.timers, t)
	return t
}

// Stop implements Timer.
func (t *manualTimer) Stop() bool {
	t.m.mu.Lock()
	defer t.m.mu.Unlock()
	if t.done {
		return false
	}
	t.done = true
	t.m.remove(t)
	return true
}

// Pending returns the number of timers that have not fired or been stopped.
func (m *Manual) Pending() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.timers)
}

// Advance moves the clock forward by d, firing every timer that falls due on
// the way, including timers armed by callbacks within the window.
func (m *Manual) Advance(d time.Duration) int {
	m.mu.Lock()
	target := m.now.Add(d)
	m.mu.Unlock()

	fired := 0
	for {
		t := m.popDue(target, false)
		if t == nil {
			break
		}
		t.fn()
		fired++
	}

	m.mu.Lock()
	if m.now.Before(target) {
		m.now = target
	}
	m.mu.Unlock()
	return fired
}

// RunAll fires timers until none are pending, jumping the clock to each
// deadline. It returns how many timers fired.
func (m *Manual) RunAll() int {
	fired := 0
	for fired < maxRunAll {
		t := m.popDue(time.Time{}, true)
		if t == nil {
			break
		}
		t.fn()
		fired++
	}
	return fired
}

// popDue removes and returns the earliest timer due at or before limit (any
// timer when all is set), advancing the clock to its deadline.
func (m *Manual) popDue(limit time.Time, all bool) *manualTimer {
	m.mu.Lock()
	defer m.mu.Unlock()

	var next *manualTimer
	for _, t := range m.timers {
		if next == nil || t.when.Before(next.when) || (t.when.Equal(next.when) && t.seq < next.seq) {
			next = t
		}
	}
	if next == nil || (!all && next.when.After(limit)) {
		return nil
	}
	next.done = true
	m.remove(next)
	if next.when.After(m.now) {
		m.now = next.when
	}
	return next
}

// remove deletes t from the pending list; the caller holds m.mu.
func (m *Manual) remove(t *manualTimer) {
	for i, p := range m.timers {
		if p == t {
			m.timers = append(m.timers[:i], m.timers[i+1:]...)
			return
		}
	}
}
