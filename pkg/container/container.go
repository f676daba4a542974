// Package container resolves where a trigger's popup is mounted.
//
// A [Source] produces the container node. Sources that need the trigger
// element ([FromTrigger]) are resolved on the next frame, once the trigger
// is attached; other sources resolve immediately. A [Resolver] runs its
// source at most once and keeps the result until the source changes.
package container

import (
	"github.com/charmbracelet/log"

	"github.com/matzehuels/overlay/pkg/dom"
	"github.com/matzehuels/overlay/pkg/observability"
	"github.com/matzehuels/overlay/pkg/timer"
)

type sourceKind int

const (
	kindBody sourceKind = iota
	kindStatic
	kindTrigger
)

// Source produces a popup container.
type Source struct {
	kind        sourceKind
	static      func() *dom.Node
	fromTrigger func(*dom.Node) *dom.Node
}

// Body mounts popups into the document body. It is the zero Source.
func Body() Source { return Source{kind: kindBody} }

// Static uses fn, which does not need the trigger element.
func Static(fn func() *dom.Node) Source {
	if fn == nil {
		return Body()
	}
	return Source{kind: kindStatic, static: fn}
}

// FromTrigger uses fn, which derives the container from the live trigger
// element.
func FromTrigger(fn func(trigger *dom.Node) *dom.Node) Source {
	if fn == nil {
		return Body()
	}
	return Source{kind: kindTrigger, fromTrigger: fn}
}

// NeedsTrigger reports whether the source must wait for the trigger.
func (s Source) NeedsTrigger() bool { return s.kind == kindTrigger }

// Config configures a Resolver.
type Config struct {
	// ID identifies the owning trigger in logs and hooks.
	ID string

	// Document provides the body for the default source. Required.
	Document *dom.Document

	// Source defaults to Body().
	Source Source

	// Scheduler defers resolution to the next frame. Required.
	Scheduler timer.Scheduler

	// OnResolved is called once a deferred resolution succeeds.
	OnResolved func(container *dom.Node)

	Logger *log.Logger
}

// Resolver resolves and caches the popup container of one trigger.
type Resolver struct {
	id         string
	doc        *dom.Document
	src        Source
	slot       *timer.Slot
	container  *dom.Node
	calls      int
	onResolved func(*dom.Node)
	logger     *log.Logger
}

// NewResolver creates a resolver from cfg.
func NewResolver(cfg Config) *Resolver {
	logger := cfg.Logger
	if logger == nil {
		logger = log.Default()
	}
	return &Resolver{
		id:         cfg.ID,
		doc:        cfg.Document,
		src:        cfg.Source,
		slot:       timer.NewSlot(cfg.Scheduler),
		onResolved: cfg.OnResolved,
		logger:     logger,
	}
}

// Resolve returns the container, resolving it if needed. When the source
// needs the trigger, Resolve returns nil and retries on the next frame;
// OnResolved reports the result. A pending retry is not re-armed.
func (r *Resolver) Resolve(trigger *dom.Node) *dom.Node {
	if r.container != nil {
		return r.container
	}
	if !r.src.NeedsTrigger() {
		r.container = r.run(trigger)
		if r.container != nil {
			observability.Container().OnResolve(r.id, r.calls)
		}
		return r.container
	}
	if r.slot.Pending() {
		return nil
	}
	r.logger.Debug("container deferred", "id", r.id)
	observability.Container().OnDefer(r.id)
	r.slot.Arm(0, func() {
		if trigger == nil || !trigger.Attached() {
			r.logger.Debug("container not ready, trigger detached", "id", r.id)
			return
		}
		c := r.run(trigger)
		if c == nil {
			r.logger.Debug("container source returned nil", "id", r.id)
			return
		}
		r.container = c
		observability.Container().OnResolve(r.id, r.calls)
		r.logger.Debug("container resolved", "id", r.id, "container", c.ID, "calls", r.calls)
		if r.onResolved != nil {
			r.onResolved(c)
		}
	})
	return nil
}

func (r *Resolver) run(trigger *dom.Node) *dom.Node {
	switch r.src.kind {
	case kindStatic:
		r.calls++
		return r.src.static()
	case kindTrigger:
		r.calls++
		return r.src.fromTrigger(trigger)
	}
	return r.doc.Body()
}

// Container returns the resolved container, or nil.
func (r *Resolver) Container() *dom.Node { return r.container }

// Calls returns how many times a caller-supplied source function ran.
func (r *Resolver) Calls() int { return r.calls }

// Pending reports whether a deferred resolution is scheduled.
func (r *Resolver) Pending() bool { return r.slot.Pending() }

// SetSource replaces the source and forgets the cached container.
func (r *Resolver) SetSource(s Source) {
	r.slot.Cancel()
	r.src = s
	r.container = nil
}

// Cancel drops a pending deferred resolution.
func (r *Resolver) Cancel() { r.slot.Cancel() }
