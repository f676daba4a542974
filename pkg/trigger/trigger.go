// Package trigger ties the popup controller together.
//
// A [Trigger] is one mounted trigger element and its popup. It maps
// interaction events on the trigger and popup onto its visibility state
// machine, registers with the document arbiter while mounted, resolves the
// popup container, mounts and destroys the popup through a portal and
// aligns it whenever it is shown.
//
//	doc := dom.NewDocument()
//	btn := dom.NewNode("button", "menu")
//	doc.Body().AppendChild(btn)
//
//	t := trigger.New(trigger.Options{
//	    Action:         []string{"click"},
//	    PopupPlacement: "bottomLeft",
//	    Popup:          func() *dom.Node { return dom.NewNode("div", "items") },
//	    Document:       doc,
//	    Scheduler:      clock,
//	})
//	t.Mount(btn)
//	doc.Click(btn) // popup shown
//
// # Nesting
//
// A trigger whose element sits inside another trigger's popup becomes that
// trigger's child. Pointer-downs inside a child's popup keep every ancestor
// open, and destroying a popup unmounts the triggers inside it.
//
// # Controlled Visibility
//
// With Options.PopupVisible set the owner drives visibility through
// [Trigger.Sync]. Interactions then only report through
// OnPopupVisibleChange; the controlled value always wins.
package trigger

import (
	"time"

	"github.com/charmbracelet/log"

	"github.com/matzehuels/overlay/pkg/action"
	"github.com/matzehuels/overlay/pkg/align"
	"github.com/matzehuels/overlay/pkg/arbiter"
	"github.com/matzehuels/overlay/pkg/container"
	"github.com/matzehuels/overlay/pkg/dom"
	"github.com/matzehuels/overlay/pkg/lifecycle"
	"github.com/matzehuels/overlay/pkg/portal"
	"github.com/matzehuels/overlay/pkg/timer"
	"github.com/matzehuels/overlay/pkg/visibility"
)

// Trigger is a mounted trigger instance.
//
// A Trigger is not safe for concurrent use. Every method and every event
// dispatch that reaches it must run on its scheduler's loop.
type Trigger struct {
	opts     Options
	mapping  action.Mapping
	logger   *log.Logger
	doc      *dom.Document
	registry *arbiter.Registry
	sched    timer.Scheduler

	machine   *visibility.Machine
	lifecycle lifecycle.Controller
	resolver  *container.Resolver
	adapter   *align.Adapter
	portal    *portal.Portal

	node     *dom.Node
	popup    *dom.Node
	mask     *dom.Node
	parentID string
	removers []func()
	mounted  bool

	popupPointerDown bool
	focusTime        time.Time
	preClickTime     time.Time
	preTouchTime     time.Time
	styles           map[string]string
}

// New creates an unmounted trigger.
func New(opts Options) *Trigger {
	opts.SetDefaults()
	t := &Trigger{
		opts:     opts,
		mapping:  action.Resolve(opts.Action, opts.ShowAction, opts.HideAction),
		logger:   opts.Logger.With("trigger", opts.ID),
		doc:      opts.Document,
		registry: opts.Registry,
		sched:    opts.Scheduler,
		parentID: opts.ParentID,
		lifecycle: lifecycle.Controller{
			ForceRender:   opts.ForceRender,
			DestroyOnHide: opts.DestroyPopupOnHide,
			AutoDestroy:   opts.AutoDestroy,
		},
	}

	initial := opts.DefaultPopupVisible
	if opts.PopupVisible != nil {
		initial = *opts.PopupVisible
		if !t.mapping.Empty() {
			t.logger.Debug("popup visibility is controlled, interactions only report changes")
		}
	}
	t.machine = visibility.New(visibility.Config{
		ID:          opts.ID,
		Scheduler:   opts.Scheduler,
		Initial:     initial,
		Controlled:  opts.PopupVisible != nil,
		OnChange:    t.onChange,
		AfterChange: t.afterChange,
		Logger:      t.logger,
	})
	t.resolver = container.NewResolver(container.Config{
		ID:         opts.ID,
		Document:   opts.Document,
		Source:     opts.GetPopupContainer,
		Scheduler:  opts.Scheduler,
		OnResolved: func(*dom.Node) { t.render() },
		Logger:     t.logger,
	})
	t.adapter = align.NewAdapter(align.AdapterConfig{
		Aligner:    opts.Aligner,
		Placements: opts.BuiltinPlacements,
		Placement:  opts.PopupPlacement,
		Override:   opts.PopupAlign,
		AlignPoint: opts.AlignPoint,
	})
	t.portal = portal.New(opts.ID+"-portal", nil)
	return t
}

// Mount attaches the trigger to node, registers it with the arbiter and
// renders the popup if it should exist already.
func (t *Trigger) Mount(node *dom.Node) {
	if t.mounted || node == nil {
		return
	}
	t.node = node
	t.mounted = true
	if t.opts.ClassName != "" {
		node.AddClass(splitClasses(t.opts.ClassName)...)
	}
	if t.parentID == "" {
		t.parentID = t.registry.OwnerOf(node)
	}

	for _, et := range t.mapping.TriggerEvents() {
		t.removers = append(t.removers, node.On(et, t.handleTrigger))
	}
	t.registry.Register(t)
	t.logger.Debug("trigger mounted", "node", node.ID, "parent", t.parentID, "actions", t.mapping.String())
	t.render()
}

// Unmount cancels pending work, deregisters from the arbiter and removes
// the popup. Triggers nested in the popup are unmounted first.
func (t *Trigger) Unmount() {
	if !t.mounted {
		return
	}
	t.mounted = false
	t.machine.Destroy()
	t.resolver.Cancel()
	t.registry.Unregister(t.opts.ID)
	for _, remove := range t.removers {
		remove()
	}
	t.removers = nil
	t.unmountChildren()
	t.portal.Unmount()
	t.popup = nil
	t.mask = nil
	t.logger.Debug("trigger unmounted")
}

// =============================================================================
// Visibility
// =============================================================================

// Sync sets the controlled visibility. Delays apply: showing uses the
// mouse-enter delay and hiding the mouse-leave delay. Calling Sync on an
// uncontrolled trigger makes it controlled.
func (t *Trigger) Sync(visible bool) {
	delay := t.opts.MouseLeaveDelay
	if visible {
		delay = t.opts.MouseEnterDelay
	}
	t.machine.Sync(visible, delay)
	t.render()
}

// Open shows the popup immediately, or asks the owner to when controlled.
func (t *Trigger) Open() { t.setVisible(true) }

// Close hides the popup immediately, or asks the owner to when controlled.
func (t *Trigger) Close() { t.setVisible(false) }

func (t *Trigger) setVisible(v bool) {
	if !t.mounted {
		return
	}
	t.machine.Request(v, 0)
}

func (t *Trigger) delaySetVisible(v bool, delay time.Duration) {
	if !t.mounted {
		return
	}
	if v && !t.mapping.CanShow() {
		return
	}
	t.machine.Request(v, delay)
}

func (t *Trigger) onChange(v bool) {
	if !t.machine.Controlled() {
		t.render()
	}
	if t.opts.OnPopupVisibleChange != nil {
		t.opts.OnPopupVisibleChange(v)
	}
}

func (t *Trigger) afterChange(v bool) {
	if t.machine.Controlled() {
		t.render()
	}
	if t.opts.AfterPopupVisibleChange != nil {
		t.opts.AfterPopupVisibleChange(v)
	}
}

// =============================================================================
// Interaction
// =============================================================================

func (t *Trigger) handleTrigger(ev *dom.Event) {
	switch ev.Type {
	case dom.MouseDown:
		t.preClickTime = t.sched.Now()
	case dom.TouchStart:
		t.preTouchTime = t.sched.Now()
	case dom.Click:
		t.onClick(ev)
	case dom.ContextMenu:
		ev.PreventDefault()
		t.adapter.SetPoint(ev.X, ev.Y)
		t.setVisible(true)
	case dom.MouseEnter:
		if t.opts.AlignPoint {
			t.adapter.SetPoint(ev.X, ev.Y)
		}
		t.delaySetVisible(true, t.opts.MouseEnterDelay)
	case dom.MouseLeave:
		t.delaySetVisible(false, t.opts.MouseLeaveDelay)
	case dom.Focus:
		t.focusTime = t.sched.Now()
		t.delaySetVisible(true, t.opts.FocusDelay)
	case dom.Blur:
		t.focusTime = time.Time{}
		t.delaySetVisible(false, t.opts.BlurDelay)
	}
}

func (t *Trigger) onClick(ev *dom.Event) {
	// A click right after the focus that opened the popup must not close it.
	if !t.focusTime.IsZero() {
		pre := earliest(t.preClickTime, t.preTouchTime)
		if !pre.IsZero() && absDuration(pre.Sub(t.focusTime)) < clickAfterFocusWindow {
			t.preClickTime, t.preTouchTime = time.Time{}, time.Time{}
			return
		}
		t.focusTime = time.Time{}
	}
	t.preClickTime, t.preTouchTime = time.Time{}, time.Time{}

	next := !t.machine.Visible()
	if (next && t.mapping.ClickToShow()) || (!next && t.mapping.ClickToHide()) {
		if next && t.opts.AlignPoint {
			t.adapter.SetPoint(ev.X, ev.Y)
		}
		t.setVisible(next)
	}
}

func (t *Trigger) handlePopup(ev *dom.Event) {
	switch ev.Type {
	case dom.MouseEnter:
		if t.machine.State() == visibility.PendingHide {
			t.machine.Request(true, 0)
		}
	case dom.MouseLeave:
		t.delaySetVisible(false, t.opts.MouseLeaveDelay)
	}
}

// popupPointerCapture marks pointer-downs that reach the popup so the
// arbiter keeps it open for the rest of the dispatch.
func (t *Trigger) popupPointerCapture(ev *dom.Event) {
	t.popupPointerDown = true
	ev.Defer(func() { t.popupPointerDown = false })
}

func (t *Trigger) handleMask(*dom.Event) {
	if *t.opts.MaskClosable {
		t.setVisible(false)
	}
}

func earliest(a, b time.Time) time.Time {
	switch {
	case a.IsZero():
		return b
	case b.IsZero():
		return a
	case b.Before(a):
		return b
	}
	return a
}

func absDuration(d time.Duration) time.Duration {
	if d < 0 {
		return -d
	}
	return d
}

// =============================================================================
// Arbitration
// =============================================================================

// ID implements arbiter.Participant.
func (t *Trigger) ID() string { return t.opts.ID }

// ParentID implements arbiter.Participant. A trigger mounted before its
// element reached a popup is attached to the owner once it is found.
func (t *Trigger) ParentID() string {
	if t.parentID == "" && t.node != nil && t.mounted {
		t.parentID = t.registry.OwnerOf(t.node)
	}
	return t.parentID
}

// IsOpen implements arbiter.Participant: visible or about to show.
func (t *Trigger) IsOpen() bool {
	return t.machine.Visible() || t.machine.State() == visibility.PendingShow
}

// Accepts implements arbiter.Participant.
func (t *Trigger) Accepts(c arbiter.Class) bool {
	switch c {
	case arbiter.PointerDown:
		return t.mapping.DismissOnOutside()
	case arbiter.Scroll, arbiter.WindowBlur:
		return t.mapping.DismissOnScroll()
	case arbiter.Escape:
		return true
	}
	return false
}

// Contains implements arbiter.Participant. The trigger element only counts
// when something other than the context menu can show the popup.
func (t *Trigger) Contains(target *dom.Node) bool {
	if target == nil {
		return false
	}
	if t.popup != nil && t.popup.Contains(target) {
		return true
	}
	return t.node != nil && t.node.Contains(target) && !t.mapping.ContextMenuOnly()
}

// PopupNode implements arbiter.Participant. It returns nil while the popup
// content is not mounted.
func (t *Trigger) PopupNode() *dom.Node { return t.popup }

// Suppressed implements arbiter.Participant.
func (t *Trigger) Suppressed(*dom.Event) bool { return t.popupPointerDown }

// Dismiss implements arbiter.Participant.
func (t *Trigger) Dismiss(arbiter.Class) { t.setVisible(false) }
