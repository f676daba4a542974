package portal

import (
	"testing"

	"github.com/matzehuels/overlay/pkg/dom"
)

func TestMountUnmount(t *testing.T) {
	doc := dom.NewDocument()
	owner := dom.NewNode("button", "owner")
	doc.Body().AppendChild(owner)

	p := New("portal", owner)
	if p.Mounted() {
		t.Fatal("new portal should be unmounted")
	}

	content := dom.NewNode("div", "content")
	p.Mount(content, doc.Body())
	if !p.Mounted() || p.Container() != doc.Body() {
		t.Fatal("Mount() should attach to the container")
	}
	if content.Parent() != p.Node() || !content.Attached() {
		t.Error("content should live inside the wrapper")
	}
	if p.Node().LogicalParent() != owner {
		t.Error("wrapper should be hosted by the owner")
	}

	p.Unmount()
	if p.Mounted() || p.Node().Attached() || p.Content() != nil {
		t.Error("Unmount() should detach wrapper and content")
	}
}

func TestSetContentReplaces(t *testing.T) {
	doc := dom.NewDocument()
	p := New("portal", nil)
	a := dom.NewNode("div", "a")
	b := dom.NewNode("div", "b")

	p.Mount(a, doc.Body())
	p.SetContent(b)
	if len(p.Node().Children()) != 1 || p.Content() != b || a.Parent() != nil {
		t.Errorf("children = %v", p.Node().Children())
	}
	p.SetContent(nil)
	if len(p.Node().Children()) != 0 || !p.Mounted() {
		t.Error("clearing content keeps the wrapper mounted")
	}
}

func TestMountMovesBetweenContainers(t *testing.T) {
	doc := dom.NewDocument()
	first := dom.NewNode("div", "first")
	second := dom.NewNode("div", "second")
	doc.Body().Append(first, second)

	p := New("portal", nil)
	p.Mount(nil, first)
	p.Mount(nil, second)
	if p.Node().Parent() != second || len(first.Children()) != 0 {
		t.Error("wrapper should move to the new container")
	}
}
