// Package portal mounts popup content into a container outside the
// trigger's own subtree.
//
// The portal wrapper is a DOM child of the container but is hosted logically
// by the node that owns it, so events inside the popup propagate through
// the owner the way they would through the component tree.
package portal

import "github.com/matzehuels/overlay/pkg/dom"

// Portal is the mount point of one popup.
type Portal struct {
	node      *dom.Node
	content   *dom.Node
	container *dom.Node
}

// New creates an unmounted portal whose wrapper has the given id and is
// hosted logically by host.
func New(id string, host *dom.Node) *Portal {
	n := dom.NewNode("div", id)
	n.SetHost(host)
	return &Portal{node: n}
}

// Mount attaches the wrapper to container and places content inside it.
// A nil content leaves the wrapper empty. Mounting into a different
// container moves the wrapper.
func (p *Portal) Mount(content, container *dom.Node) {
	if container != nil && p.container != container {
		container.AppendChild(p.node)
		p.container = container
	}
	p.SetContent(content)
}

// SetContent replaces the wrapper's content. A nil content clears it.
func (p *Portal) SetContent(content *dom.Node) {
	if p.content == content {
		return
	}
	if p.content != nil {
		p.node.RemoveChild(p.content)
	}
	p.content = content
	if content != nil {
		p.node.AppendChild(content)
	}
}

// Unmount detaches the wrapper and drops the content.
func (p *Portal) Unmount() {
	p.SetContent(nil)
	p.node.Remove()
	p.container = nil
}

// Mounted reports whether the wrapper is attached to a container.
func (p *Portal) Mounted() bool { return p.container != nil }

// Node returns the wrapper node.
func (p *Portal) Node() *dom.Node { return p.node }

// Content returns the mounted content, or nil.
func (p *Portal) Content() *dom.Node { return p.content }

// Container returns the container the wrapper is attached to, or nil.
func (p *Portal) Container() *dom.Node { return p.container }
