package dom

import (
	"slices"
	"sync"
)

// Document is the root of an element tree and the source of document-level
// events.
type Document struct {
	root      *Node
	body      *Node
	listeners map[EventType][]*listenerEntry
	focused   *Node
}

// NewDocument creates an empty document with a body.
func NewDocument() *Document {
	d := &Document{listeners: make(map[EventType][]*listenerEntry)}
	d.root = NewNode("document", "#document")
	d.root.document = d
	d.body = NewNode("body", "body")
	d.root.AppendChild(d.body)
	return d
}

var (
	defaultDoc     *Document
	defaultDocOnce sync.Once
)

// Default returns the process-wide document used when none is injected.
func Default() *Document {
	defaultDocOnce.Do(func() {
		defaultDoc = NewDocument()
	})
	return defaultDoc
}

// Root returns the document node.
func (d *Document) Root() *Node { return d.root }

// Body returns the body element, the default popup container.
func (d *Document) Body() *Node { return d.body }

// AddListener registers fn for document-level delivery of the given event
// types. The returned function removes it from all of them.
func (d *Document) AddListener(fn Listener, types ...EventType) func() {
	removers := make([]func(), 0, len(types))
	for _, t := range types {
		removers = append(removers, addListener(d.listeners, t, fn))
	}
	return func() {
		for _, r := range removers {
			r()
		}
	}
}

// ListenerCount returns the number of document-level listeners for t.
func (d *Document) ListenerCount(t EventType) int {
	return len(d.listeners[t])
}

// ElementAt returns the deepest visible node at (x, y).
func (d *Document) ElementAt(x, y int) *Node {
	return d.root.ElementAt(x, y)
}

// Dispatch delivers ev: capture along the logical path, bubble back up,
// document listeners unless stopped, then deferred functions.
func (d *Document) Dispatch(ev *Event) {
	if ev.Target != nil {
		path := logicalPath(ev.Target)
		if ev.Type.bubbles() {
			for _, n := range path {
				if ev.stopped {
					break
				}
				ev.CurrentTarget = n
				fire(n.capture[ev.Type], ev)
			}
			for i := len(path) - 1; i >= 0; i-- {
				if ev.stopped {
					break
				}
				ev.CurrentTarget = path[i]
				fire(path[i].bubble[ev.Type], ev)
			}
		} else {
			ev.CurrentTarget = ev.Target
			fire(ev.Target.capture[ev.Type], ev)
			if !ev.stopped {
				fire(ev.Target.bubble[ev.Type], ev)
			}
		}
	}

	ev.CurrentTarget = nil
	if !ev.stopped {
		fire(d.listeners[ev.Type], ev)
	}

	for len(ev.deferred) > 0 {
		fn := ev.deferred[0]
		ev.deferred = ev.deferred[1:]
		fn()
	}
}

// Focus moves focus to n (nil clears it), dispatching blur on the previously
// focused node and focus on n. Both bubble.
func (d *Document) Focus(n *Node) {
	if d.focused == n {
		return
	}
	prev := d.focused
	d.focused = n
	if prev != nil {
		ev := NewEvent(Blur, prev)
		ev.RelatedTarget = n
		d.Dispatch(ev)
	}
	if n != nil {
		ev := NewEvent(Focus, n)
		ev.RelatedTarget = prev
		d.Dispatch(ev)
	}
}

// FocusedNode returns the node holding focus, or nil.
func (d *Document) FocusedNode() *Node { return d.focused }

// logicalPath returns target and its logical ancestors, root first.
func logicalPath(target *Node) []*Node {
	var path []*Node
	seen := make(map[*Node]bool)
	for cur := target; cur != nil && !seen[cur]; cur = cur.LogicalParent() {
		seen[cur] = true
		path = append(path, cur)
	}
	slices.Reverse(path)
	return path
}
