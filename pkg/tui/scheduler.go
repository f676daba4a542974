package tui

import (
	"sync"
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/matzehuels/overlay/pkg/timer"
)

// TimerMsg is delivered when a scheduled timer is due.
type TimerMsg struct {
	ID uint64
}

// Scheduler turns timers into bubbletea tick messages so callbacks run in
// Update, on the program's loop.
//
// AfterFunc only queues a tick; [Scheduler.Cmd] hands the queued ticks to
// bubbletea. The host returns that command from every Update.
type Scheduler struct {
	mu     sync.Mutex
	now    func() time.Time
	nextID uint64
	timers map[uint64]func()
	queued []tea.Cmd
}

// NewScheduler creates a scheduler on the wall clock.
func NewScheduler() *Scheduler {
	return &Scheduler{now: time.Now, timers: make(map[uint64]func())}
}

// Now implements timer.Scheduler.
func (s *Scheduler) Now() time.Time { return s.now() }

// AfterFunc implements timer.Scheduler.
func (s *Scheduler) AfterFunc(d time.Duration, fn func()) timer.Timer {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.nextID++
	id := s.nextID
	s.timers[id] = fn
	// A zero delay still goes through a message so it runs after the
	// current Update returns.
	s.queued = append(s.queued, tea.Tick(max(d, 0), func(time.Time) tea.Msg {
		return TimerMsg{ID: id}
	}))
	return &teaTimer{s: s, id: id}
}

// Cmd drains the queued ticks into one command, or nil.
func (s *Scheduler) Cmd() tea.Cmd {
	s.mu.Lock()
	queued := s.queued
	s.queued = nil
	s.mu.Unlock()
	switch len(queued) {
	case 0:
		return nil
	case 1:
		return queued[0]
	}
	return tea.Batch(queued...)
}

// Fire runs the timer msg refers to. Stopped and already fired timers are
// ignored; Fire reports whether a callback ran.
func (s *Scheduler) Fire(msg TimerMsg) bool {
	s.mu.Lock()
	fn, ok := s.timers[msg.ID]
	delete(s.timers, msg.ID)
	s.mu.Unlock()
	if !ok {
		return false
	}
	fn()
	return true
}

// Pending returns the number of timers that have not fired or stopped.
func (s *Scheduler) Pending() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.timers)
}

type teaTimer struct {
	s  *Scheduler
	id uint64
}

func (t *teaTimer) Stop() bool {
	t.s.mu.Lock()
	defer t.s.mu.Unlock()
	if _, ok := t.s.timers[t.id]; !ok {
		return false
	}
	delete(t.s.timers, t.id)
	return true
}
