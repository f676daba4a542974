// Package arbiter decides which open popups close on document-level events.
//
// A [Registry] holds every mounted trigger of one document. While at least
// one participant is registered it keeps exactly one document listener for
// pointer-down, touch-start, scroll, window-blur and escape key events; the
// listener is attached on the first registration and released on the last.
//
// Each event is arbitrated in a single synchronous pass. Participants are
// visited deepest nesting first, so an inner popup decides before the outer
// popup that logically contains it. An open participant that accepts the
// event class is kept open when the event target lies inside its own trigger
// or popup, inside any registered descendant's trigger or popup, or when its
// popup already saw the pointer-down during the capture phase. Everything
// else is dismissed.
//
// Nesting is id-based: a participant names its parent by id and the registry
// derives children by lookup, so participants never hold references to each
// other.
package arbiter

import (
	"slices"
	"sync"

	"github.com/charmbracelet/log"

	"github.com/matzehuels/overlay/pkg/dom"
	"github.com/matzehuels/overlay/pkg/observability"
)

// Class is a category of dismiss event.
type Class string

// Dismiss classes.
const (
	PointerDown Class = "pointerdown"
	Scroll      Class = "scroll"
	WindowBlur  Class = "windowblur"
	Escape      Class = "escape"
)

// EscapeKey is the key name that produces an Escape dismissal.
const EscapeKey = "esc"

// Participant is a mounted trigger as seen by the registry.
type Participant interface {
	// ID returns the participant's unique id.
	ID() string

	// ParentID returns the id of the participant whose popup contains this
	// participant's trigger, or "" for a top-level trigger.
	ParentID() string

	// Open reports whether the popup is visible or about to become visible.
	IsOpen() bool

	// Accepts reports whether events of class c may dismiss the popup.
	Accepts(c Class) bool

	// Contains reports whether target lies within the participant's own
	// interactive regions.
	Contains(target *dom.Node) bool

	// PopupNode returns the popup's root node, or nil when not rendered.
	PopupNode() *dom.Node

	// Suppressed reports whether ev was already claimed by the popup, for
	// example a pointer-down its capture listener saw.
	Suppressed(ev *dom.Event) bool

	// Dismiss asks the participant to hide in response to class c.
	Dismiss(c Class)
}

var listenTypes = []dom.EventType{dom.MouseDown, dom.TouchStart, dom.Scroll, dom.WindowBlur, dom.KeyDown}

type entry struct {
	p   Participant
	seq uint64
}

// Registry tracks the mounted participants of one document.
//
// A Registry is not safe for concurrent use; it runs on the document's loop.
type Registry struct {
	doc     *dom.Document
	logger  *log.Logger
	entries []*entry
	byID    map[string]*entry
	seq     uint64
	release func()
}

// New creates a registry for doc. A nil logger uses log.Default().
func New(doc *dom.Document, logger *log.Logger) *Registry {
	if logger == nil {
		logger = log.Default()
	}
	return &Registry{doc: doc, logger: logger, byID: make(map[string]*entry)}
}

var (
	registriesMu sync.Mutex
	registries   = make(map[*dom.Document]*Registry)
)

// For returns the shared registry of doc, creating it on first use. Every
// trigger on one document must go through the same registry so the document
// carries a single listener and nesting is visible across triggers.
func For(doc *dom.Document) *Registry {
	registriesMu.Lock()
	defer registriesMu.Unlock()
	r, ok := registries[doc]
	if !ok {
		r = New(doc, nil)
		registries[doc] = r
	}
	return r
}

// Default returns the process-wide registry bound to dom.Default().
func Default() *Registry {
	return For(dom.Default())
}

// Document returns the document the registry listens on.
func (r *Registry) Document() *dom.Document { return r.doc }

// Register adds p. Registering an id twice replaces the earlier entry.
func (r *Registry) Register(p Participant) {
	if old, ok := r.byID[p.ID()]; ok {
		r.remove(old)
	}
	r.seq++
	e := &entry{p: p, seq: r.seq}
	r.entries = append(r.entries, e)
	r.byID[p.ID()] = e
	if r.release == nil {
		r.release = r.doc.AddListener(r.handle, listenTypes...)
		r.logger.Debug("document listener attached")
	}
}

// Unregister removes the participant with id. It reports whether one was
// registered.
func (r *Registry) Unregister(id string) bool {
	e, ok := r.byID[id]
	if !ok {
		return false
	}
	r.remove(e)
	return true
}

func (r *Registry) remove(e *entry) {
	delete(r.byID, e.p.ID())
	r.entries = slices.DeleteFunc(r.entries, func(x *entry) bool { return x == e })
	if len(r.entries) == 0 && r.release != nil {
		r.release()
		r.release = nil
		r.logger.Debug("document listener released")
	}
}

// Len returns the number of registered participants.
func (r *Registry) Len() int { return len(r.entries) }

// Listening reports whether the shared document listener is attached.
func (r *Registry) Listening() bool { return r.release != nil }

// Lookup returns the participant registered under id.
func (r *Registry) Lookup(id string) (Participant, bool) {
	e, ok := r.byID[id]
	if !ok {
		return nil, false
	}
	return e.p, true
}

// Participants returns the registered participants in insertion order.
func (r *Registry) Participants() []Participant {
	out := make([]Participant, len(r.entries))
	for i, e := range r.entries {
		out[i] = e.p
	}
	return out
}

// Children returns the participants whose parent is id, in insertion order.
func (r *Registry) Children(id string) []Participant {
	var out []Participant
	for _, e := range r.entries {
		if e.p.ParentID() == id {
			out = append(out, e.p)
		}
	}
	return out
}

// Descendants returns every participant nested below id, depth first.
func (r *Registry) Descendants(id string) []Participant {
	var out []Participant
	seen := map[string]bool{id: true}
	var walk func(string)
	walk = func(parent string) {
		for _, c := range r.Children(parent) {
			if seen[c.ID()] {
				continue
			}
			seen[c.ID()] = true
			out = append(out, c)
			walk(c.ID())
		}
	}
	walk(id)
	return out
}

// Depth returns the number of registered ancestors of id.
func (r *Registry) Depth(id string) int {
	depth := 0
	seen := map[string]bool{id: true}
	e, ok := r.byID[id]
	for ok {
		parent := e.p.ParentID()
		if parent == "" || seen[parent] {
			break
		}
		seen[parent] = true
		e, ok = r.byID[parent]
		if ok {
			depth++
		}
	}
	return depth
}

// OwnerOf returns the id of the participant whose popup logically contains
// n, searching from n outward. It returns "" when n is not inside any
// registered popup.
func (r *Registry) OwnerOf(n *dom.Node) string {
	seen := make(map[*dom.Node]bool)
	for cur := n; cur != nil && !seen[cur]; cur = cur.LogicalParent() {
		seen[cur] = true
		for _, e := range r.entries {
			if pn := e.p.PopupNode(); pn != nil && pn == cur {
				return e.p.ID()
			}
		}
	}
	return ""
}

// ordered returns the entries deepest first, stable by insertion.
func (r *Registry) ordered() []*entry {
	out := slices.Clone(r.entries)
	depth := make(map[*entry]int, len(out))
	for _, e := range out {
		depth[e] = r.Depth(e.p.ID())
	}
	slices.SortStableFunc(out, func(a, b *entry) int {
		return depth[b] - depth[a]
	})
	return out
}

func classOf(ev *dom.Event) (Class, bool) {
	switch ev.Type {
	case dom.MouseDown, dom.TouchStart:
		return PointerDown, true
	case dom.Scroll:
		return Scroll, true
	case dom.WindowBlur:
		return WindowBlur, true
	case dom.KeyDown:
		if ev.Key == EscapeKey || ev.Key == "escape" || ev.Key == "Escape" {
			return Escape, true
		}
	}
	return "", false
}

func (r *Registry) handle(ev *dom.Event) {
	class, ok := classOf(ev)
	if !ok {
		return
	}
	r.Arbitrate(class, ev)
}

// Arbitrate runs one dismiss pass for class. ev carries the target and is
// consulted for suppression; it may be nil for synthetic dismissals.
func (r *Registry) Arbitrate(class Class, ev *dom.Event) {
	order := r.ordered()
	observability.Arbitration().OnDispatch(string(class), len(order))

	if class == Escape {
		r.escape(order)
		return
	}

	var target *dom.Node
	if ev != nil {
		target = ev.Target
	}
	for _, e := range order {
		// Dismissing one participant may unmount others in the same pass.
		if r.byID[e.p.ID()] != e {
			continue
		}
		p := e.p
		if !p.IsOpen() || !p.Accepts(class) {
			continue
		}
		if reason := r.keepReason(p, target, ev); reason != "" {
			r.logger.Debug("popup kept open", "id", p.ID(), "class", class, "reason", reason)
			observability.Arbitration().OnKeep(p.ID(), string(class), reason)
			continue
		}
		r.logger.Debug("popup dismissed", "id", p.ID(), "class", class)
		observability.Arbitration().OnDismiss(p.ID(), string(class))
		p.Dismiss(class)
	}
}

func (r *Registry) keepReason(p Participant, target *dom.Node, ev *dom.Event) string {
	if target != nil {
		if p.Contains(target) {
			return "inside"
		}
		for _, d := range r.Descendants(p.ID()) {
			if d.Contains(target) {
				return "inside-descendant"
			}
		}
	}
	if ev != nil && p.Suppressed(ev) {
		return "suppressed"
	}
	return ""
}

// escape dismisses the innermost open participant only. Among equally deep
// participants the most recently registered wins.
func (r *Registry) escape(order []*entry) {
	var pick *entry
	for _, e := range order {
		if !e.p.IsOpen() || !e.p.Accepts(Escape) {
			continue
		}
		if pick == nil {
			pick = e
			continue
		}
		if r.Depth(e.p.ID()) < r.Depth(pick.p.ID()) {
			break
		}
		if e.seq > pick.seq {
			pick = e
		}
	}
	if pick == nil {
		return
	}
	r.logger.Debug("popup dismissed", "id", pick.p.ID(), "class", Escape)
	observability.Arbitration().OnDismiss(pick.p.ID(), string(Escape))
	pick.p.Dismiss(Escape)
}
