package timer

import (
	"bytes"
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/charmbracelet/log"
)

func TestManualAdvanceFiresInOrder(t *testing.T) {
	m := NewManual(time.Time{})
	var got []string

	m.AfterFunc(30*time.Millisecond, func() { got = append(got, "c") })
	m.AfterFunc(10*time.Millisecond, func() { got = append(got, "a") })
	m.AfterFunc(10*time.Millisecond, func() { got = append(got, "b") })

	if n := m.Advance(5 * time.Millisecond); n != 0 {
		t.Fatalf("Advance(5ms) fired %d timers, want 0", n)
	}
	if n := m.Advance(5 * time.Millisecond); n != 2 {
		t.Fatalf("Advance(10ms) fired %d timers, want 2", n)
	}
	m.Advance(time.Second)

	want := []string{"a", "b", "c"}
	if len(got) != len(want) {
		t.Fatalf("fired %v, want %v", got, want)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("fired[%d] = %q, want %q", i, got[i], want[i])
		}
	}
}

func TestManualNowTracksDeadlines(t *testing.T) {
	m := NewManual(time.Time{})
	start := m.Now()

	var at time.Time
	m.AfterFunc(40*time.Millisecond, func() { at = m.Now() })
	m.Advance(100 * time.Millisecond)

	if d := at.Sub(start); d != 40*time.Millisecond {
		t.Errorf("callback saw Now() at +%v, want +40ms", d)
	}
	if d := m.Now().Sub(start); d != 100*time.Millisecond {
		t.Errorf("Now() after Advance = +%v, want +100ms", d)
	}
}

func TestManualStop(t *testing.T) {
	m := NewManual(time.Time{})
	fired := false
	tm := m.AfterFunc(time.Millisecond, func() { fired = true })

	if !tm.Stop() {
		t.Error("first Stop() = false, want true")
	}
	if tm.Stop() {
		t.Error("second Stop() = true, want false")
	}
	if m.Pending() != 0 {
		t.Errorf("Pending() = %d, want 0", m.Pending())
	}
	m.RunAll()
	if fired {
		t.Error("stopped timer fired")
	}
}

func TestManualRunAllIncludesNestedTimers(t *testing.T) {
	m := NewManual(time.Time{})
	count := 0
	m.AfterFunc(time.Millisecond, func() {
		count++
		m.AfterFunc(time.Millisecond, func() { count++ })
	})

	if n := m.RunAll(); n != 2 {
		t.Errorf("RunAll() = %d, want 2", n)
	}
	if count != 2 {
		t.Errorf("count = %d, want 2", count)
	}
}

func TestSlotArmCancelsPrevious(t *testing.T) {
	m := NewManual(time.Time{})
	s := NewSlot(m)
	var got []int

	s.Arm(10*time.Millisecond, func() { got = append(got, 1) })
	s.Arm(20*time.Millisecond, func() { got = append(got, 2) })

	if m.Pending() != 1 {
		t.Fatalf("Pending() = %d, want 1 after re-arm", m.Pending())
	}
	if !s.Pending() {
		t.Fatal("slot should be pending")
	}

	m.RunAll()
	if len(got) != 1 || got[0] != 2 {
		t.Errorf("fired %v, want [2]", got)
	}
	if s.Pending() {
		t.Error("slot should be empty after firing")
	}
}

func TestSlotCancel(t *testing.T) {
	m := NewManual(time.Time{})
	s := NewSlot(m)
	fired := false

	if s.Cancel() {
		t.Error("Cancel() on empty slot = true, want false")
	}
	s.Arm(time.Millisecond, func() { fired = true })
	if !s.Cancel() {
		t.Error("Cancel() on armed slot = false, want true")
	}
	m.RunAll()
	if fired {
		t.Error("cancelled slot fired")
	}
}

func TestSlotPendingFalseInsideCallback(t *testing.T) {
	m := NewManual(time.Time{})
	s := NewSlot(m)
	var pending bool
	s.Arm(0, func() { pending = s.Pending() })
	m.RunAll()
	if pending {
		t.Error("slot should be cleared before its callback runs")
	}
}

func TestLoopRunsTimersOnLoop(t *testing.T) {
	l := NewLoop(8)
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	errc := make(chan error, 1)
	go func() { errc <- l.Run(ctx) }()

	fired := make(chan struct{})
	l.AfterFunc(5*time.Millisecond, func() { close(fired) })

	select {
	case <-fired:
	case <-time.After(2 * time.Second):
		t.Fatal("timer did not fire")
	}

	stopped := l.AfterFunc(time.Hour, func() { t.Error("stopped timer fired") })
	if !stopped.Stop() {
		t.Error("Stop() = false, want true")
	}

	cancel()
	if err := <-errc; !errors.Is(err, context.Canceled) {
		t.Errorf("Run() = %v, want context.Canceled", err)
	}
	if err := l.Post(func() {}); !errors.Is(err, ErrLoopTerminated) {
		t.Errorf("Post() after stop = %v, want ErrLoopTerminated", err)
	}
}

func TestLoopDropsTimersAfterStop(t *testing.T) {
	var buf bytes.Buffer
	logger := log.New(&buf)
	logger.SetLevel(log.DebugLevel)

	l := NewLoop(1)
	l.SetLogger(logger)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	if err := l.Run(ctx); !errors.Is(err, context.Canceled) {
		t.Fatalf("Run() = %v, want context.Canceled", err)
	}

	l.AfterFunc(time.Millisecond, func() { t.Error("callback ran after the loop stopped") })
	deadline := time.Now().Add(2 * time.Second)
	for l.Dropped() == 0 {
		if time.Now().After(deadline) {
			t.Fatal("dropped callback was not counted")
		}
		time.Sleep(time.Millisecond)
	}
	if !strings.Contains(buf.String(), "timer callback dropped") {
		t.Errorf("drop should be logged, got %q", buf.String())
	}
}

func TestLoopRunTwice(t *testing.T) {
	l := NewLoop(1)
	ctx, cancel := context.WithCancel(context.Background())
	started := make(chan struct{})
	go func() {
		_ = l.Post(func() { close(started) })
		_ = l.Run(ctx)
	}()
	<-started
	if err := l.Run(ctx); !errors.Is(err, ErrLoopAlreadyRunning) {
		t.Errorf("second Run() = %v, want ErrLoopAlreadyRunning", err)
	}
	cancel()
}
