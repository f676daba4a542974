package dom

import "slices"

// Pointer tracks the hovered element chain and turns pointer movement into
// mouseenter/mouseleave events along the logical tree.
type Pointer struct {
	doc   *Document
	chain []*Node
	x, y  int
}

// NewPointer creates a pointer over d hovering nothing.
func NewPointer(d *Document) *Pointer {
	return &Pointer{doc: d}
}

// Hovered returns the deepest hovered node, or nil.
func (p *Pointer) Hovered() *Node {
	if len(p.chain) == 0 {
		return nil
	}
	return p.chain[len(p.chain)-1]
}

// Position returns the last pointer coordinates.
func (p *Pointer) Position() (int, int) { return p.x, p.y }

// MoveTo hovers n (nil leaves every element). Nodes that drop out of the
// chain receive mouseleave deepest first, then new nodes receive mouseenter
// outermost first.
func (p *Pointer) MoveTo(n *Node, x, y int) {
	p.x, p.y = x, y
	var next []*Node
	if n != nil {
		next = logicalPath(n)
	}
	prev := p.chain
	p.chain = next

	for i := len(prev) - 1; i >= 0; i-- {
		if slices.Contains(next, prev[i]) {
			continue
		}
		ev := NewEvent(MouseLeave, prev[i]).At(x, y)
		ev.RelatedTarget = n
		p.doc.Dispatch(ev)
	}
	for _, node := range next {
		if slices.Contains(prev, node) {
			continue
		}
		ev := NewEvent(MouseEnter, node).At(x, y)
		ev.RelatedTarget = lastOf(prev)
		p.doc.Dispatch(ev)
	}
}

// MoveToPoint hit-tests (x, y) and hovers the result.
func (p *Pointer) MoveToPoint(x, y int) *Node {
	n := p.doc.ElementAt(x, y)
	p.MoveTo(n, x, y)
	return n
}

// Forget drops nodes that are no longer attached from the chain without
// dispatching events, so a later move does not report leaves on removed
// elements.
func (p *Pointer) Forget() {
	p.chain = slices.DeleteFunc(p.chain, func(n *Node) bool { return !n.Attached() })
}

func lastOf(nodes []*Node) *Node {
	if len(nodes) == 0 {
		return nil
	}
	return nodes[len(nodes)-1]
}

// Click dispatches mousedown followed by click on n, as a primary button
// press does.
func (d *Document) Click(n *Node) {
	d.Dispatch(NewEvent(MouseDown, n))
	d.Dispatch(NewEvent(Click, n))
}

// ContextMenu dispatches mousedown followed by contextmenu on n, as a
// secondary button press does.
func (d *Document) ContextMenu(n *Node, x, y int) {
	d.Dispatch(NewEvent(MouseDown, n).At(x, y))
	d.Dispatch(NewEvent(ContextMenu, n).At(x, y))
}
