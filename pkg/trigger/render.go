package trigger

import (
	"strconv"
	"strings"

	"github.com/matzehuels/overlay/pkg/action"
	"github.com/matzehuels/overlay/pkg/align"
	"github.com/matzehuels/overlay/pkg/dom"
	"github.com/matzehuels/overlay/pkg/visibility"
)

// render brings the portal, popup content and mask in line with the
// authoritative visibility and the lifecycle rules.
func (t *Trigger) render() {
	if !t.mounted {
		return
	}
	visible := t.machine.Visible()
	state := visibility.Hidden
	if visible {
		state = visibility.Visible
	}
	d := t.lifecycle.Decide(state)

	if !d.Portal {
		if t.portal.Mounted() {
			t.destroyContent()
			t.portal.Unmount()
			t.logger.Debug("portal removed")
		}
		return
	}

	c := t.resolver.Resolve(t.node)
	if c == nil {
		return
	}
	if !t.portal.Mounted() {
		host := t.node.LogicalParent()
		if host == nil {
			host = t.node
		}
		t.portal.Node().SetHost(host)
		t.logger.Debug("portal mounted", "container", c.ID)
	}

	if !d.Content {
		t.destroyContent()
		t.portal.Mount(nil, c)
		return
	}
	t.ensurePopup()
	t.portal.Mount(t.popup, c)
	t.updateMask(visible)
	t.applyPopup(visible)
}

func (t *Trigger) ensurePopup() {
	if t.popup != nil {
		return
	}
	p := dom.NewNode("div", t.opts.ID+"-popup")
	if t.opts.Popup != nil {
		if content := t.opts.Popup(); content != nil {
			p.AppendChild(content)
		}
	}
	p.OnCapture(dom.MouseDown, t.popupPointerCapture)
	p.OnCapture(dom.TouchStart, t.popupPointerCapture)
	for _, et := range t.mapping.PopupEvents() {
		p.On(et, t.handlePopup)
	}
	t.popup = p
	t.styles = nil
	t.logger.Debug("popup content mounted")
}

func (t *Trigger) destroyContent() {
	if t.mask != nil {
		t.mask.Remove()
		t.mask = nil
	}
	if t.popup == nil {
		return
	}
	t.unmountChildren()
	t.portal.SetContent(nil)
	t.popup = nil
	t.logger.Debug("popup content destroyed")
}

func (t *Trigger) unmountChildren() {
	for _, c := range t.registry.Children(t.opts.ID) {
		if child, ok := c.(*Trigger); ok {
			child.Unmount()
		}
	}
}

func (t *Trigger) updateMask(visible bool) {
	if !t.opts.Mask {
		return
	}
	if t.mask == nil {
		t.mask = dom.NewNode("div", t.opts.ID+"-mask")
		t.mask.On(dom.Click, t.handleMask)
		// The mask sits below the popup.
		t.portal.SetContent(nil)
		t.portal.Node().AppendChild(t.mask)
		t.portal.SetContent(t.popup)
	}
	cls := t.opts.PrefixCls + "-mask"
	t.mask.SetClassName(cls)
	t.mask.Hidden = !visible
	if !visible {
		t.mask.AddClass(cls + "-hidden")
	}
	t.mask.Rect = t.doc.Body().Rect
}

func (t *Trigger) applyPopup(visible bool) {
	p := t.popup
	prefix := t.opts.PrefixCls
	p.SetClassName(prefix)
	if t.opts.PopupClassName != "" {
		p.AddClass(splitClasses(t.opts.PopupClassName)...)
	}
	p.Hidden = !visible
	if !visible {
		p.AddClass(prefix + "-hidden")
	}

	for k := range t.styles {
		p.SetStyle(k, "")
	}
	// Caller styles win over computed position and stretch sizes.
	styles := make(map[string]string, len(t.opts.PopupStyle)+2)
	if visible {
		res := t.align()
		styles["left"] = strconv.Itoa(res.Left)
		styles["top"] = strconv.Itoa(res.Top)
		if !t.opts.Stretch.IsZero() {
			for k, v := range t.opts.Stretch.Styles(t.opts.Measurer.Measure(t.node)) {
				styles[k] = v
			}
		}
	}
	for k, v := range t.opts.PopupStyle {
		styles[k] = v
	}
	for k, v := range styles {
		p.SetStyle(k, v)
	}
	t.styles = styles

	if name := t.adapter.PlacementName(); name != "" {
		p.AddClass(prefix + "-placement-" + name)
	}
}

// align positions the popup and moves its content subtree along with it.
func (t *Trigger) align() align.Result {
	p := t.popup
	content := p
	if children := p.Children(); len(children) > 0 {
		content = children[0]
	}
	size := t.opts.Measurer.Measure(content)
	if !t.opts.Stretch.IsZero() {
		size = t.opts.Stretch.Apply(size, t.opts.Measurer.Measure(t.node))
	}

	res := t.adapter.Align(t.node.Rect, dom.Rect{W: size.W, H: size.H}, t.doc.Body().Rect)
	if content != p {
		dx, dy := res.Left-content.Rect.X, res.Top-content.Rect.Y
		content.Walk(func(n *dom.Node) bool {
			n.Rect.X += dx
			n.Rect.Y += dy
			return true
		})
		if content.Rect.Empty() {
			content.Rect.W, content.Rect.H = size.W, size.H
		}
	}
	p.Rect = dom.Rect{X: res.Left, Y: res.Top, W: size.W, H: size.H}
	if t.opts.OnPopupAlign != nil {
		t.opts.OnPopupAlign(p, res)
	}
	return res
}

func splitClasses(s string) []string {
	return strings.Fields(s)
}

// Realign recomputes the popup position. Hosts call it when the viewport
// resizes or scrolls.
func (t *Trigger) Realign() {
	if t.popup == nil || !t.machine.Visible() {
		return
	}
	t.render()
}

// =============================================================================
// Queries
// =============================================================================

// Visible returns the authoritative visibility.
func (t *Trigger) Visible() bool { return t.machine.Visible() }

// State returns the visibility state machine's state.
func (t *Trigger) State() visibility.State { return t.machine.State() }

// Controlled reports whether visibility is controlled.
func (t *Trigger) Controlled() bool { return t.machine.Controlled() }

// Mounted reports whether the trigger is mounted.
func (t *Trigger) Mounted() bool { return t.mounted }

// Node returns the trigger element.
func (t *Trigger) Node() *dom.Node { return t.node }

// PortalMounted reports whether the portal wrapper is attached.
func (t *Trigger) PortalMounted() bool { return t.portal.Mounted() }

// PortalNode returns the portal wrapper.
func (t *Trigger) PortalNode() *dom.Node { return t.portal.Node() }

// MaskNode returns the mask, or nil.
func (t *Trigger) MaskNode() *dom.Node { return t.mask }

// Container returns the resolved popup container, or nil.
func (t *Trigger) Container() *dom.Node { return t.resolver.Container() }

// ContainerCalls returns how often the container source ran.
func (t *Trigger) ContainerCalls() int { return t.resolver.Calls() }

// Alignment returns the last alignment result.
func (t *Trigger) Alignment() (align.Result, bool) { return t.adapter.Last() }

// PopupStyle returns the styles currently applied to the popup.
func (t *Trigger) PopupStyle() map[string]string {
	if t.popup == nil {
		return nil
	}
	return t.popup.Styles()
}

// Mapping returns the resolved action mapping.
func (t *Trigger) Mapping() action.Mapping { return t.mapping }
