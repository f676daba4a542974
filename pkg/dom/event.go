package dom

// EventType names an interaction event.
type EventType string

// Event types understood by triggers and the terminal host.
const (
	Click       EventType = "click"
	MouseDown   EventType = "mousedown"
	TouchStart  EventType = "touchstart"
	MouseEnter  EventType = "mouseenter"
	MouseLeave  EventType = "mouseleave"
	MouseMove   EventType = "mousemove"
	ContextMenu EventType = "contextmenu"
	Focus       EventType = "focus"
	Blur        EventType = "blur"
	KeyDown     EventType = "keydown"
	Scroll      EventType = "scroll"
	WindowBlur  EventType = "windowblur"
)

// bubbles reports whether events of type t propagate past the target.
func (t EventType) bubbles() bool {
	return t != MouseEnter && t != MouseLeave
}

// Event is a dispatched interaction.
type Event struct {
	Type   EventType
	Target *Node

	// CurrentTarget is the node whose listener is running; nil for
	// document-level listeners.
	CurrentTarget *Node

	// RelatedTarget is the node the pointer moved to (mouseleave) or came
	// from (mouseenter), when known.
	RelatedTarget *Node

	// X and Y are pointer coordinates for pointer events.
	X, Y int

	// Key is the key name for keydown events.
	Key string

	stopped       bool
	immediateStop bool
	prevented     bool
	deferred      []func()
}

// NewEvent creates an event of type t targeting target.
func NewEvent(t EventType, target *Node) *Event {
	return &Event{Type: t, Target: target}
}

// At sets pointer coordinates and returns ev for chaining.
func (ev *Event) At(x, y int) *Event {
	ev.X, ev.Y = x, y
	return ev
}

// StopPropagation prevents the event from reaching further nodes and the
// document-level listeners.
func (ev *Event) StopPropagation() { ev.stopped = true }

// StopImmediatePropagation also skips the remaining listeners on the
// current node.
func (ev *Event) StopImmediatePropagation() {
	ev.stopped = true
	ev.immediateStop = true
}

// PropagationStopped reports whether StopPropagation was called.
func (ev *Event) PropagationStopped() bool { return ev.stopped }

// PreventDefault marks the default action as cancelled.
func (ev *Event) PreventDefault() { ev.prevented = true }

// DefaultPrevented reports whether PreventDefault was called.
func (ev *Event) DefaultPrevented() bool { return ev.prevented }

// Defer registers fn to run once the whole dispatch, including document
// listeners, has finished.
func (ev *Event) Defer(fn func()) {
	ev.deferred = append(ev.deferred, fn)
}
