package timer

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"time"

	"github.com/charmbracelet/log"
)

var (
	// ErrLoopAlreadyRunning is returned when Run is called on a loop that is already running.
	ErrLoopAlreadyRunning = errors.New("timer: loop is already running")

	// ErrLoopTerminated is returned when work is posted to a loop that has stopped.
	ErrLoopTerminated = errors.New("timer: loop has been terminated")
)

// Loop is a serial event loop. Every posted task and every timer callback
// runs on the goroutine executing Run, one at a time.
//
// Once Run returns, timers that fire later are dropped: a pending delayed
// transition is abandoned with the loop. Each drop is logged at debug level
// and counted by Dropped.
type Loop struct {
	tasks   chan func()
	done    chan struct{}
	running atomic.Bool
	dropped atomic.Int64
	logger  *log.Logger
}

// NewLoop creates a loop whose ingress queue holds up to buffer tasks before
// Post blocks.
func NewLoop(buffer int) *Loop {
	if buffer < 1 {
		buffer = 64
	}
	return &Loop{
		tasks:  make(chan func(), buffer),
		done:   make(chan struct{}),
		logger: log.Default(),
	}
}

// SetLogger replaces the logger used for dropped timer callbacks. Call it
// before Run.
func (l *Loop) SetLogger(logger *log.Logger) {
	if logger != nil {
		l.logger = logger
	}
}

// Dropped returns how many timer callbacks fired after the loop stopped.
func (l *Loop) Dropped() int64 { return l.dropped.Load() }

// Run executes tasks until ctx is cancelled. A loop can only run once.
func (l *Loop) Run(ctx context.Context) error {
	if !l.running.CompareAndSwap(false, true) {
		return ErrLoopAlreadyRunning
	}
	defer close(l.done)

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case fn := <-l.tasks:
			fn()
		}
	}
}

var (
	defaultLoop     *Loop
	defaultLoopOnce sync.Once
)

// Default returns the process-wide loop, starting it on first use. Code that
// relies on it must Post its interaction handlers to the same loop.
func Default() *Loop {
	defaultLoopOnce.Do(func() {
		defaultLoop = NewLoop(0)
		go func() { _ = defaultLoop.Run(context.Background()) }()
	})
	return defaultLoop
}

// Post queues fn for execution on the loop.
func (l *Loop) Post(fn func()) error {
	select {
	case <-l.done:
		return ErrLoopTerminated
	default:
	}
	select {
	case l.tasks <- fn:
		return nil
	case <-l.done:
		return ErrLoopTerminated
	}
}

// Now returns the wall clock time.
func (l *Loop) Now() time.Time {
	return time.Now()
}

// AfterFunc arms a real-time timer whose callback is posted to the loop.
func (l *Loop) AfterFunc(d time.Duration, fn func()) Timer {
	lt := &loopTimer{}
	lt.t = time.AfterFunc(d, func() {
		err := l.Post(func() {
			if lt.stopped.Load() {
				return
			}
			lt.fired.Store(true)
			fn()
		})
		if err != nil {
			l.logger.Debug("timer callback dropped", "delay", d, "err", err)
			l.dropped.Add(1)
		}
	})
	return lt
}

type loopTimer struct {
	t       *time.Timer
	stopped atomic.Bool
	fired   atomic.Bool
}

// Stop implements Timer. A callback already queued on the loop is dropped.
func (t *loopTimer) Stop() bool {
	if t.fired.Load() || !t.stopped.CompareAndSwap(false, true) {
		return false
	}
	t.t.Stop()
	return true
}
