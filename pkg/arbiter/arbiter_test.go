package arbiter

import (
	"slices"
	"testing"

	"github.com/matzehuels/overlay/pkg/dom"
)

type fakeParticipant struct {
	id, parent string
	open       bool
	accepts    []Class
	trigger    *dom.Node
	popup      *dom.Node
	suppress   bool
	dismissed  []Class
	onDismiss  func()
}

func (f *fakeParticipant) ID() string                 { return f.id }
func (f *fakeParticipant) ParentID() string           { return f.parent }
func (f *fakeParticipant) IsOpen() bool               { return f.open }
func (f *fakeParticipant) Accepts(c Class) bool       { return slices.Contains(f.accepts, c) }
func (f *fakeParticipant) PopupNode() *dom.Node       { return f.popup }
func (f *fakeParticipant) Suppressed(*dom.Event) bool { return f.suppress }

func (f *fakeParticipant) Contains(target *dom.Node) bool {
	return (f.trigger != nil && f.trigger.Contains(target)) || (f.popup != nil && f.popup.Contains(target))
}

func (f *fakeParticipant) Dismiss(c Class) {
	f.dismissed = append(f.dismissed, c)
	f.open = false
	if f.onDismiss != nil {
		f.onDismiss()
	}
}

var allClasses = []Class{PointerDown, Scroll, WindowBlur, Escape}

// fixture builds an outer click trigger whose popup holds an inner trigger,
// with both popups portalled to the body.
func fixture(t *testing.T) (*dom.Document, *Registry, *fakeParticipant, *fakeParticipant, *dom.Node) {
	t.Helper()
	doc := dom.NewDocument()
	outside := dom.NewNode("div", "outside")
	outerTrigger := dom.NewNode("button", "outer-trigger")
	outerPopup := dom.NewNode("div", "outer-popup")
	innerTrigger := dom.NewNode("button", "inner-trigger")
	innerPopup := dom.NewNode("div", "inner-popup")
	outerPopup.AppendChild(innerTrigger)
	doc.Body().Append(outside, outerTrigger, outerPopup, innerPopup)

	outer := &fakeParticipant{id: "outer", open: true, accepts: allClasses, trigger: outerTrigger, popup: outerPopup}
	inner := &fakeParticipant{id: "inner", parent: "outer", open: true, accepts: allClasses, trigger: innerTrigger, popup: innerPopup}

	r := New(doc, nil)
	r.Register(outer)
	r.Register(inner)
	return doc, r, outer, inner, outside
}

func TestSingleDocumentListener(t *testing.T) {
	doc := dom.NewDocument()
	r := New(doc, nil)
	a := &fakeParticipant{id: "a"}
	b := &fakeParticipant{id: "b"}

	r.Register(a)
	r.Register(b)
	if got := doc.ListenerCount(dom.MouseDown); got != 1 {
		t.Fatalf("mousedown listeners = %d, want 1", got)
	}
	r.Unregister("a")
	if !r.Listening() {
		t.Error("listener released too early")
	}
	r.Unregister("b")
	if r.Listening() || doc.ListenerCount(dom.MouseDown) != 0 {
		t.Error("listener should be released with the last participant")
	}
	if r.Unregister("b") {
		t.Error("second Unregister should report false")
	}
}

func TestOutsidePointerDownClosesAll(t *testing.T) {
	doc, _, outer, inner, outside := fixture(t)
	doc.Dispatch(dom.NewEvent(dom.MouseDown, outside))

	if len(outer.dismissed) != 1 || len(inner.dismissed) != 1 {
		t.Errorf("dismissed outer=%v inner=%v", outer.dismissed, inner.dismissed)
	}
}

func TestInnerPopupKeepsAncestorOpen(t *testing.T) {
	doc, _, outer, inner, _ := fixture(t)
	doc.Dispatch(dom.NewEvent(dom.MouseDown, inner.popup))

	if len(outer.dismissed) != 0 {
		t.Error("outer should stay open for a pointer-down in a descendant popup")
	}
	if len(inner.dismissed) != 0 {
		t.Error("inner should stay open for a pointer-down in its own popup")
	}
}

func TestOuterPopupClosesOnlyInner(t *testing.T) {
	doc, _, outer, inner, _ := fixture(t)
	doc.Dispatch(dom.NewEvent(dom.MouseDown, outer.popup))

	if len(outer.dismissed) != 0 {
		t.Error("outer should stay open")
	}
	if len(inner.dismissed) != 1 {
		t.Error("inner should close on a pointer-down outside it")
	}
}

func TestSuppressedEventKeepsOpen(t *testing.T) {
	doc, _, outer, inner, outside := fixture(t)
	outer.suppress = true
	doc.Dispatch(dom.NewEvent(dom.MouseDown, outside))

	if len(outer.dismissed) != 0 {
		t.Error("suppressed participant should stay open")
	}
	if len(inner.dismissed) != 1 {
		t.Error("inner was not suppressed and should close")
	}
}

func TestDeepestFirstOrder(t *testing.T) {
	doc, r, outer, inner, outside := fixture(t)
	var order []string
	outer.onDismiss = func() { order = append(order, "outer") }
	inner.onDismiss = func() { order = append(order, "inner") }

	top := &fakeParticipant{id: "top", open: true, accepts: allClasses}
	top.onDismiss = func() { order = append(order, "top") }
	r.Register(top)

	doc.Dispatch(dom.NewEvent(dom.MouseDown, outside))
	want := []string{"inner", "outer", "top"}
	if !slices.Equal(order, want) {
		t.Errorf("order = %v, want %v", order, want)
	}
	if r.Depth("inner") != 1 || r.Depth("outer") != 0 || r.Depth("missing") != 0 {
		t.Error("Depth() mismatch")
	}
}

func TestUnregisteredDuringPassIsSkipped(t *testing.T) {
	doc, r, outer, inner, outside := fixture(t)
	// Closing inner tears down outer in the same pass.
	inner.onDismiss = func() { r.Unregister("outer") }
	doc.Dispatch(dom.NewEvent(dom.MouseDown, outside))

	if len(outer.dismissed) != 0 {
		t.Error("unregistered participant must not be dismissed")
	}
}

func TestClosedAndNonAcceptingAreIgnored(t *testing.T) {
	doc, _, outer, inner, outside := fixture(t)
	outer.open = false
	inner.accepts = []Class{Escape}
	doc.Dispatch(dom.NewEvent(dom.MouseDown, outside))

	if len(outer.dismissed)+len(inner.dismissed) != 0 {
		t.Errorf("dismissed outer=%v inner=%v", outer.dismissed, inner.dismissed)
	}
}

func TestScrollAndWindowBlur(t *testing.T) {
	doc, _, outer, inner, _ := fixture(t)
	inner.accepts = []Class{PointerDown}

	doc.Dispatch(dom.NewEvent(dom.Scroll, nil))
	if !slices.Equal(outer.dismissed, []Class{Scroll}) {
		t.Errorf("outer dismissed = %v, want [scroll]", outer.dismissed)
	}
	outer.open = true
	doc.Dispatch(dom.NewEvent(dom.WindowBlur, nil))
	if len(outer.dismissed) != 2 || outer.dismissed[1] != WindowBlur {
		t.Errorf("outer dismissed = %v", outer.dismissed)
	}
	if len(inner.dismissed) != 0 {
		t.Error("inner does not accept scroll or window blur")
	}
}

func TestEscapeClosesInnermostOnly(t *testing.T) {
	doc, _, outer, inner, _ := fixture(t)
	ev := dom.NewEvent(dom.KeyDown, doc.Body())
	ev.Key = EscapeKey

	doc.Dispatch(ev)
	if len(inner.dismissed) != 1 || len(outer.dismissed) != 0 {
		t.Fatalf("first escape: inner=%v outer=%v", inner.dismissed, outer.dismissed)
	}

	ev = dom.NewEvent(dom.KeyDown, doc.Body())
	ev.Key = EscapeKey
	doc.Dispatch(ev)
	if len(outer.dismissed) != 1 {
		t.Errorf("second escape should close outer, got %v", outer.dismissed)
	}

	ev = dom.NewEvent(dom.KeyDown, doc.Body())
	ev.Key = "a"
	doc.Dispatch(ev)
	if len(outer.dismissed) != 1 || len(inner.dismissed) != 1 {
		t.Error("other keys must not dismiss")
	}
}

func TestChildrenAndOwnerOf(t *testing.T) {
	_, r, outer, inner, outside := fixture(t)

	if got := r.Children("outer"); len(got) != 1 || got[0].ID() != "inner" {
		t.Errorf("Children(outer) = %v", got)
	}
	if got := r.Descendants("outer"); len(got) != 1 {
		t.Errorf("Descendants(outer) = %v", got)
	}
	if got := r.OwnerOf(inner.trigger); got != "outer" {
		t.Errorf("OwnerOf(inner trigger) = %q, want outer", got)
	}
	if got := r.OwnerOf(outside); got != "" {
		t.Errorf("OwnerOf(outside) = %q, want empty", got)
	}
	if p, ok := r.Lookup("outer"); !ok || p != outer {
		t.Error("Lookup(outer) failed")
	}
}

func TestRegisterReplacesDuplicateID(t *testing.T) {
	r := New(dom.NewDocument(), nil)
	r.Register(&fakeParticipant{id: "a"})
	second := &fakeParticipant{id: "a"}
	r.Register(second)

	if r.Len() != 1 {
		t.Fatalf("Len() = %d, want 1", r.Len())
	}
	if p, _ := r.Lookup("a"); p != second {
		t.Error("duplicate id should replace the earlier entry")
	}
	if !r.Listening() {
		t.Error("listener should stay attached")
	}
}

func TestDefaultIsSingleton(t *testing.T) {
	if Default() != Default() {
		t.Error("Default() should return the same registry")
	}
	if Default().Document() != dom.Default() {
		t.Error("Default() registry should listen on the default document")
	}
}

func TestForSharesRegistryPerDocument(t *testing.T) {
	a, b := dom.NewDocument(), dom.NewDocument()
	if For(a) != For(a) {
		t.Error("For() should return one registry per document")
	}
	if For(a) == For(b) {
		t.Error("different documents need different registries")
	}
	if For(dom.Default()) != Default() {
		t.Error("Default() should be the registry of the default document")
	}
}
