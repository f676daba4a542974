package dom

import (
	"slices"
	"strings"
)

// Rect is an axis-aligned rectangle in cells (or pixels; the unit is the
// host's).
type Rect struct {
	X, Y, W, H int
}

// Size is a measured width and height.
type Size struct {
	W, H int
}

// Empty reports whether r has no area.
func (r Rect) Empty() bool { return r.W <= 0 || r.H <= 0 }

// Right returns the exclusive right edge.
func (r Rect) Right() int { return r.X + r.W }

// Bottom returns the exclusive bottom edge.
func (r Rect) Bottom() int { return r.Y + r.H }

// Contains reports whether the point (x, y) lies inside r.
func (r Rect) Contains(x, y int) bool {
	return !r.Empty() && x >= r.X && x < r.Right() && y >= r.Y && y < r.Bottom()
}

// Size returns the rectangle's dimensions.
func (r Rect) Size() Size { return Size{W: r.W, H: r.H} }

// Listener handles an event delivered to a node or document.
type Listener func(*Event)

type listenerEntry struct {
	fn      Listener
	removed bool
}

// Node is an element in the tree.
type Node struct {
	ID   string
	Tag  string
	Text string
	Rect Rect

	// Hidden nodes and their subtrees are skipped by hit testing.
	Hidden bool

	classes  []string
	style    map[string]string
	parent   *Node
	host     *Node
	children []*Node
	bubble   map[EventType][]*listenerEntry
	capture  map[EventType][]*listenerEntry
	document *Document
}

// NewNode creates a detached node.
func NewNode(tag, id string) *Node {
	return &Node{Tag: tag, ID: id}
}

// Parent returns the DOM parent, or nil.
func (n *Node) Parent() *Node { return n.parent }

// Host returns the logical host set with SetHost, or nil.
func (n *Node) Host() *Node { return n.host }

// SetHost makes h the logical parent of n for event propagation.
func (n *Node) SetHost(h *Node) { n.host = h }

// LogicalParent returns the host if one is set, otherwise the DOM parent.
func (n *Node) LogicalParent() *Node {
	if n.host != nil {
		return n.host
	}
	return n.parent
}

// Children returns a copy of the child list.
func (n *Node) Children() []*Node {
	return slices.Clone(n.children)
}

// AppendChild attaches c as the last child of n, detaching it from any
// previous parent.
func (n *Node) AppendChild(c *Node) *Node {
	if c == nil || c == n {
		return n
	}
	c.Remove()
	c.parent = n
	n.children = append(n.children, c)
	return n
}

// Append attaches several children and returns n for chaining.
func (n *Node) Append(children ...*Node) *Node {
	for _, c := range children {
		n.AppendChild(c)
	}
	return n
}

// RemoveChild detaches c if it is a direct child of n.
func (n *Node) RemoveChild(c *Node) bool {
	for i, child := range n.children {
		if child == c {
			n.children = append(n.children[:i], n.children[i+1:]...)
			c.parent = nil
			return true
		}
	}
	return false
}

// Remove detaches n from its DOM parent.
func (n *Node) Remove() {
	if n.parent != nil {
		n.parent.RemoveChild(n)
	}
}

// Root returns the topmost DOM ancestor of n (n itself when detached).
func (n *Node) Root() *Node {
	cur := n
	for cur.parent != nil {
		cur = cur.parent
	}
	return cur
}

// Attached reports whether n is part of a document.
func (n *Node) Attached() bool {
	return n != nil && n.Root().document != nil
}

// Document returns the document n is attached to, or nil.
func (n *Node) Document() *Document {
	if n == nil {
		return nil
	}
	return n.Root().document
}

// Contains reports whether other is n or a DOM descendant of n.
func (n *Node) Contains(other *Node) bool {
	if n == nil || other == nil {
		return false
	}
	for cur := other; cur != nil; cur = cur.parent {
		if cur == n {
			return true
		}
	}
	return false
}

// Walk visits n and its descendants in pre-order until fn returns false.
func (n *Node) Walk(fn func(*Node) bool) bool {
	if !fn(n) {
		return false
	}
	for _, c := range n.children {
		if !c.Walk(fn) {
			return false
		}
	}
	return true
}

// Find returns the first node in n's subtree with the given ID.
func (n *Node) Find(id string) *Node {
	var found *Node
	n.Walk(func(c *Node) bool {
		if c.ID == id {
			found = c
			return false
		}
		return true
	})
	return found
}

// ElementAt finds the deepest visible node containing (x, y). Later
// children are checked first since they paint on top. Nodes without a
// rectangle are transparent containers.
func (n *Node) ElementAt(x, y int) *Node {
	if n.Hidden {
		return nil
	}
	if !n.Rect.Empty() && !n.Rect.Contains(x, y) {
		return nil
	}
	for i := len(n.children) - 1; i >= 0; i-- {
		if hit := n.children[i].ElementAt(x, y); hit != nil {
			return hit
		}
	}
	if n.Rect.Empty() {
		return nil
	}
	return n
}

// =============================================================================
// Attributes
// =============================================================================

// ClassName returns the space-separated class list.
func (n *Node) ClassName() string {
	return strings.Join(n.classes, " ")
}

// SetClassName replaces the class list.
func (n *Node) SetClassName(s string) {
	n.classes = strings.Fields(s)
}

// AddClass appends class names not already present.
func (n *Node) AddClass(names ...string) {
	for _, name := range names {
		for _, c := range strings.Fields(name) {
			if !slices.Contains(n.classes, c) {
				n.classes = append(n.classes, c)
			}
		}
	}
}

// RemoveClass deletes a class name.
func (n *Node) RemoveClass(name string) {
	n.classes = slices.DeleteFunc(n.classes, func(c string) bool { return c == name })
}

// HasClass reports whether name is in the class list.
func (n *Node) HasClass(name string) bool {
	return slices.Contains(n.classes, name)
}

// SetStyle sets a style property; an empty value deletes it.
func (n *Node) SetStyle(key, value string) {
	if value == "" {
		delete(n.style, key)
		return
	}
	if n.style == nil {
		n.style = make(map[string]string)
	}
	n.style[key] = value
}

// Style returns a style property.
func (n *Node) Style(key string) string {
	return n.style[key]
}

// Styles returns a copy of all style properties.
func (n *Node) Styles() map[string]string {
	out := make(map[string]string, len(n.style))
	for k, v := range n.style {
		out[k] = v
	}
	return out
}

// =============================================================================
// Listeners
// =============================================================================

// On registers a bubble-phase listener and returns a function removing it.
func (n *Node) On(t EventType, fn Listener) func() {
	if n.bubble == nil {
		n.bubble = make(map[EventType][]*listenerEntry)
	}
	return addListener(n.bubble, t, fn)
}

// OnCapture registers a capture-phase listener and returns a function
// removing it.
func (n *Node) OnCapture(t EventType, fn Listener) func() {
	if n.capture == nil {
		n.capture = make(map[EventType][]*listenerEntry)
	}
	return addListener(n.capture, t, fn)
}

func addListener(m map[EventType][]*listenerEntry, t EventType, fn Listener) func() {
	e := &listenerEntry{fn: fn}
	m[t] = append(m[t], e)
	return func() {
		if e.removed {
			return
		}
		e.removed = true
		m[t] = slices.DeleteFunc(m[t], func(x *listenerEntry) bool { return x == e })
	}
}

// fire runs a snapshot of the listeners for ev.Type, skipping entries
// removed mid-dispatch.
func fire(entries []*listenerEntry, ev *Event) {
	for _, e := range slices.Clone(entries) {
		if e.removed {
			continue
		}
		e.fn(ev)
		if ev.immediateStop {
			return
		}
	}
}
