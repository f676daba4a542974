// Package visibility implements the per-instance visibility state machine.
//
// A [Machine] owns one popup's visible/hidden value and mediates delayed
// transitions through a single [timer.Slot]:
//
//	Hidden      --Request(show)-->  PendingShow (delay > 0) or Visible
//	PendingShow --delay elapses-->  Visible
//	PendingShow --Request(hide)-->  Hidden (timer cancelled, no notification)
//	Visible     --Request(hide)-->  PendingHide (delay > 0) or Hidden
//	PendingHide --delay elapses-->  Hidden
//	PendingHide --Request(show)-->  Visible (timer cancelled, no notification)
//
// Settling into Visible or Hidden invokes OnChange and then AfterChange, once
// each. Pending states never notify.
//
// # Controlled Mode
//
// When the value is controlled, the external value is authoritative and
// returned by [Machine.Visible] as soon as [Machine.Sync] receives it.
// The machine still runs its delays: Sync arms a transition toward the
// external value and fires AfterChange once it settles, so side effects
// happen exactly once per external toggle. Interaction requests in
// controlled mode never mutate the value; when they settle they only call
// OnChange with the value the owner is asked to adopt.
package visibility

import (
	"time"

	"github.com/charmbracelet/log"

	"github.com/matzehuels/overlay/pkg/observability"
	"github.com/matzehuels/overlay/pkg/timer"
)

// State is a position in the visibility state machine.
type State int

// Machine states.
const (
	Hidden State = iota
	PendingShow
	Visible
	PendingHide
)

func (s State) String() string {
	switch s {
	case Hidden:
		return "hidden"
	case PendingShow:
		return "pending-show"
	case Visible:
		return "visible"
	case PendingHide:
		return "pending-hide"
	}
	return "unknown"
}

// Settled reports whether s is Visible or Hidden.
func (s State) Settled() bool { return s == Visible || s == Hidden }

// Shown reports whether s renders as visible: Visible or PendingHide.
func (s State) Shown() bool { return s == Visible || s == PendingHide }

// Config configures a Machine.
type Config struct {
	// ID identifies the owner in logs and observability hooks.
	ID string

	// Scheduler arms delay timers. Required.
	Scheduler timer.Scheduler

	// Initial is the starting value. No notification is fired for it.
	Initial bool

	// Controlled makes Initial the external value and switches the machine
	// into controlled mode.
	Controlled bool

	// OnChange is called when a transition settles with the new value. In
	// controlled mode it is the only effect of an interaction request.
	OnChange func(visible bool)

	// AfterChange is called after OnChange once the new value is in place.
	AfterChange func(visible bool)

	// Logger receives debug output. Defaults to log.Default().
	Logger *log.Logger
}

type origin int

const (
	fromInteraction origin = iota
	fromSync
)

type pending struct {
	target bool
	origin origin
}

// Machine is the visibility state machine of one trigger instance.
//
// A Machine is not safe for concurrent use; it runs on the owner's loop.
type Machine struct {
	id          string
	slot        *timer.Slot
	settled     bool
	external    bool
	controlled  bool
	pending     *pending
	destroyed   bool
	onChange    func(bool)
	afterChange func(bool)
	logger      *log.Logger
}

// New creates a machine from cfg.
func New(cfg Config) *Machine {
	logger := cfg.Logger
	if logger == nil {
		logger = log.Default()
	}
	return &Machine{
		id:          cfg.ID,
		slot:        timer.NewSlot(cfg.Scheduler),
		settled:     cfg.Initial,
		external:    cfg.Initial,
		controlled:  cfg.Controlled,
		onChange:    cfg.OnChange,
		afterChange: cfg.AfterChange,
		logger:      logger,
	}
}

// State returns the current state. In controlled mode it describes the
// machine's progress toward the external value (or toward an interaction
// request awaiting the owner's decision).
func (m *Machine) State() State {
	if m.pending != nil {
		if m.pending.target {
			return PendingShow
		}
		return PendingHide
	}
	if m.settled {
		return Visible
	}
	return Hidden
}

// Visible returns the authoritative value: the external value when
// controlled, the settled value otherwise. Pending states report the side
// they are leaving.
func (m *Machine) Visible() bool {
	if m.controlled {
		return m.external
	}
	return m.settled
}

// Controlled reports whether the external value drives the machine.
func (m *Machine) Controlled() bool { return m.controlled }

// Destroyed reports whether Destroy was called.
func (m *Machine) Destroyed() bool { return m.destroyed }

// Request asks for the popup to be shown or hidden after delay.
//
// A request toward the current side cancels a pending transition away from
// it. In controlled mode the settle only reports the wish through OnChange.
func (m *Machine) Request(show bool, delay time.Duration) {
	if m.destroyed {
		return
	}
	observability.Visibility().OnRequest(m.id, show, delay)

	if m.controlled {
		m.requestControlled(show, delay)
		return
	}

	if show == m.settled {
		// PendingShow --hide--> Hidden, PendingHide --show--> Visible.
		m.cancel()
		return
	}
	m.arm(pending{target: show, origin: fromInteraction}, delay)
}

func (m *Machine) requestControlled(show bool, delay time.Duration) {
	// The owner's latest value settles before an interaction takes over the
	// slot so AfterChange is not lost.
	if m.pending != nil && m.pending.origin == fromSync {
		m.slot.Cancel()
		m.pending = nil
		m.settle(m.external, fromSync)
	}
	if show == m.external {
		m.cancel()
		return
	}
	m.arm(pending{target: show, origin: fromInteraction}, delay)
}

// Sync feeds an external value into the machine and switches it into
// controlled mode. The value is authoritative immediately; the machine
// settles onto it after delay and then fires AfterChange.
func (m *Machine) Sync(visible bool, delay time.Duration) {
	if m.destroyed {
		return
	}
	if !m.controlled {
		m.logger.Debug("visibility now controlled", "id", m.id)
		m.controlled = true
	}
	m.external = visible

	if visible == m.settled {
		m.cancel()
		return
	}
	observability.Visibility().OnRequest(m.id, visible, delay)
	m.arm(pending{target: visible, origin: fromSync}, delay)
}

// Destroy cancels any pending transition without notifications. Later
// requests are ignored.
func (m *Machine) Destroy() {
	if m.destroyed {
		return
	}
	m.cancel()
	m.destroyed = true
}

func (m *Machine) arm(p pending, delay time.Duration) {
	if delay <= 0 {
		m.slot.Cancel()
		m.pending = nil
		m.settle(p.target, p.origin)
		return
	}
	m.logger.Debug("visibility pending", "id", m.id, "show", p.target, "delay", delay)
	m.pending = &p
	m.slot.Arm(delay, func() {
		m.pending = nil
		m.settle(p.target, p.origin)
	})
}

func (m *Machine) cancel() {
	if m.slot.Cancel() {
		observability.Visibility().OnCancel(m.id)
	}
	m.pending = nil
}

func (m *Machine) settle(target bool, o origin) {
	if m.destroyed {
		return
	}
	switch {
	case m.controlled && o == fromInteraction:
		if target == m.external {
			return
		}
		m.logger.Debug("visibility change requested", "id", m.id, "visible", target)
		if m.onChange != nil {
			m.onChange(target)
		}
	case m.controlled:
		if target == m.settled {
			return
		}
		m.settled = target
		m.logger.Debug("visibility settled", "id", m.id, "visible", target, "controlled", true)
		observability.Visibility().OnSettle(m.id, target, true)
		if m.afterChange != nil {
			m.afterChange(target)
		}
	default:
		if target == m.settled {
			return
		}
		m.settled = target
		m.external = target
		m.logger.Debug("visibility settled", "id", m.id, "visible", target)
		observability.Visibility().OnSettle(m.id, target, false)
		if m.onChange != nil {
			m.onChange(target)
		}
		if m.afterChange != nil {
			m.afterChange(target)
		}
	}
}
