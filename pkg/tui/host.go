// Package tui hosts triggers in a bubbletea program.
//
// A [Host] owns a document and maps terminal input onto it: mouse presses
// become mousedown and click (the right button opens context menus), motion
// becomes mouseenter and mouseleave along the hovered chain, the wheel
// scrolls, tab cycles focus and esc dispatches an escape key press. Timers
// armed by triggers run as bubbletea messages through [Scheduler], so every
// trigger callback runs inside Update.
//
// View paints each node with a rectangle and text in tree order. Popups are
// portals appended to their container, so they paint over the base layer.
// Every frame is scanned for bubblezone zones, and mouse input hits the node
// that frame showed at the pointer.
package tui

import (
	"slices"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/log"

	"github.com/matzehuels/overlay/pkg/arbiter"
	"github.com/matzehuels/overlay/pkg/dom"
	"github.com/matzehuels/overlay/pkg/trigger"
)

// Config configures a Host.
type Config struct {
	// Document defaults to a new document.
	Document *dom.Document

	// Scheduler defaults to NewScheduler().
	Scheduler *Scheduler

	// Registry defaults to a registry bound to Document.
	Registry *arbiter.Registry

	// Styles defaults to DefaultStyles().
	Styles *Styles

	// PrefixCls is the popup class prefix the triggers use. Defaults to
	// trigger.DefaultPrefixCls.
	PrefixCls string

	Logger *log.Logger
}

// Host is a tea.Model running triggers.
type Host struct {
	doc     *dom.Document
	sched   *Scheduler
	reg     *arbiter.Registry
	pointer *dom.Pointer
	zones   *zones
	styles  Styles
	prefix  string
	logger  *log.Logger

	triggers   []*trigger.Trigger
	focusables []*dom.Node
	width      int
	height     int
}

// NewHost creates a host from cfg.
func NewHost(cfg Config) *Host {
	if cfg.Document == nil {
		cfg.Document = dom.NewDocument()
	}
	if cfg.Scheduler == nil {
		cfg.Scheduler = NewScheduler()
	}
	if cfg.Logger == nil {
		cfg.Logger = log.Default()
	}
	if cfg.Registry == nil {
		cfg.Registry = arbiter.New(cfg.Document, cfg.Logger)
	}
	styles := DefaultStyles()
	if cfg.Styles != nil {
		styles = *cfg.Styles
	}
	if cfg.PrefixCls == "" {
		cfg.PrefixCls = trigger.DefaultPrefixCls
	}
	return &Host{
		doc:     cfg.Document,
		sched:   cfg.Scheduler,
		reg:     cfg.Registry,
		pointer: dom.NewPointer(cfg.Document),
		zones:   newZones(),
		styles:  styles,
		prefix:  cfg.PrefixCls,
		logger:  cfg.Logger,
	}
}

// Document returns the host's document.
func (h *Host) Document() *dom.Document { return h.doc }

// Scheduler returns the host's scheduler, for trigger options.
func (h *Host) Scheduler() *Scheduler { return h.sched }

// Registry returns the host's arbiter registry, for trigger options.
func (h *Host) Registry() *arbiter.Registry { return h.reg }

// Options fills in the host's collaborators on opts.
func (h *Host) Options(opts trigger.Options) trigger.Options {
	opts.Document = h.doc
	opts.Registry = h.reg
	opts.Scheduler = h.sched
	if opts.Measurer == nil {
		opts.Measurer = LipglossMeasurer{Style: h.styles.Popup}
	}
	if opts.PrefixCls == "" {
		opts.PrefixCls = h.prefix
	}
	if opts.Logger == nil {
		opts.Logger = h.logger
	}
	return opts
}

// Add tracks a mounted trigger for painting and realignment. Triggers are
// dropped once they unmount.
func (h *Host) Add(t *trigger.Trigger) {
	if t != nil && !slices.Contains(h.triggers, t) {
		h.triggers = append(h.triggers, t)
	}
}

// Focusable appends nodes to the tab order.
func (h *Host) Focusable(nodes ...*dom.Node) {
	h.focusables = append(h.focusables, nodes...)
}

// Close stops the host's zone manager. The host must not be used after.
func (h *Host) Close() { h.zones.close() }

// Size returns the last window size.
func (h *Host) Size() (int, int) { return h.width, h.height }

// Init implements tea.Model.
func (h *Host) Init() tea.Cmd {
	return h.sched.Cmd()
}

// Update implements tea.Model.
func (h *Host) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	var quit bool
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		h.resize(msg.Width, msg.Height)
	case tea.MouseMsg:
		h.handleMouse(msg)
	case tea.KeyMsg:
		quit = h.handleKey(msg)
	case tea.BlurMsg:
		h.doc.Dispatch(dom.NewEvent(dom.WindowBlur, nil))
	case TimerMsg:
		h.sched.Fire(msg)
	}
	h.pointer.Forget()
	h.triggers = slices.DeleteFunc(h.triggers, func(t *trigger.Trigger) bool { return !t.Mounted() })

	if quit {
		return h, tea.Batch(h.sched.Cmd(), tea.Quit)
	}
	return h, h.sched.Cmd()
}

func (h *Host) resize(w, ht int) {
	h.width, h.height = w, ht
	h.doc.Body().Rect = dom.Rect{W: w, H: ht}
	h.realign()
	h.logger.Debug("resized", "width", w, "height", ht)
}

func (h *Host) realign() {
	for _, t := range slices.Clone(h.triggers) {
		t.Realign()
	}
}

// hit resolves msg against the zones of the last frame, falling back to
// the document's geometry before the first frame is scanned.
func (h *Host) hit(msg tea.MouseMsg) *dom.Node {
	if n, ok := h.zones.at(msg); ok {
		return n
	}
	return h.doc.ElementAt(msg.X, msg.Y)
}

func (h *Host) handleMouse(msg tea.MouseMsg) {
	x, y := msg.X, msg.Y
	if msg.Action == tea.MouseActionMotion {
		h.pointer.MoveTo(h.hit(msg), x, y)
		return
	}
	if msg.Action != tea.MouseActionPress {
		return
	}

	n := h.hit(msg)
	h.pointer.MoveTo(n, x, y)
	if n == nil {
		n = h.doc.Body()
	}
	switch msg.Button {
	case tea.MouseButtonLeft:
		h.doc.Dispatch(dom.NewEvent(dom.MouseDown, n).At(x, y))
		if slices.Contains(h.focusables, n) {
			h.doc.Focus(n)
		}
		h.doc.Dispatch(dom.NewEvent(dom.Click, n).At(x, y))
	case tea.MouseButtonRight:
		h.doc.ContextMenu(n, x, y)
	case tea.MouseButtonWheelUp, tea.MouseButtonWheelDown:
		h.doc.Dispatch(dom.NewEvent(dom.Scroll, n).At(x, y))
		h.realign()
	}
}

func (h *Host) handleKey(msg tea.KeyMsg) bool {
	switch msg.String() {
	case "ctrl+c", "q":
		return true
	case "esc":
		target := h.doc.FocusedNode()
		if target == nil {
			target = h.doc.Body()
		}
		ev := dom.NewEvent(dom.KeyDown, target)
		ev.Key = arbiter.EscapeKey
		h.doc.Dispatch(ev)
	case "tab":
		h.cycleFocus(1)
	case "shift+tab":
		h.cycleFocus(-1)
	case "enter", " ":
		if n := h.doc.FocusedNode(); n != nil {
			h.doc.Dispatch(dom.NewEvent(dom.Click, n).At(n.Rect.X, n.Rect.Y))
		}
	}
	return false
}

// cycleFocus moves focus along the attached focusable nodes.
func (h *Host) cycleFocus(step int) {
	var order []*dom.Node
	for _, n := range h.focusables {
		if n.Attached() {
			order = append(order, n)
		}
	}
	if len(order) == 0 {
		return
	}
	i := slices.Index(order, h.doc.FocusedNode())
	if i < 0 {
		if step < 0 {
			i = 0
		} else {
			i = -1
		}
	}
	i = (i + step + len(order)) % len(order)
	h.doc.Focus(order[i])
}

// =============================================================================
// View
// =============================================================================

// View implements tea.Model.
func (h *Host) View() string {
	if h.width <= 0 || h.height <= 0 {
		return ""
	}
	c := newCanvas(h.width, h.height)
	hm := newHitMap(h.width, h.height)
	body := h.doc.Body()
	hm.claim(body, body.Rect, body.Rect)
	for _, n := range body.Children() {
		h.paint(c, hm, n, body.Rect, false)
	}
	return h.zones.scan(c.lines, hm)
}

// paint draws n and its subtree. Every visible node with a rectangle
// claims its cells in hm, clipped to its ancestors like ElementAt.
func (h *Host) paint(c *canvas, hm *hitMap, n *dom.Node, clip dom.Rect, inPopup bool) {
	if n.Hidden {
		return
	}
	if !n.Rect.Empty() {
		hm.claim(n, n.Rect, clip)
		clip = intersect(clip, n.Rect)
	}
	switch {
	case n.HasClass(h.prefix + "-mask"):
		c.dim(h.styles.Mask)
		return
	case n.HasClass(h.prefix):
		inPopup = true
		c.box(n.Rect, "", h.styles.Popup)
	case n.Text != "":
		c.box(n.Rect, n.Text, h.styleFor(n, inPopup))
	}
	for _, child := range n.Children() {
		h.paint(c, hm, child, clip, inPopup)
	}
}

func (h *Host) styleFor(n *dom.Node, inPopup bool) lipgloss.Style {
	base := h.styles.Text
	if inPopup {
		base = h.styles.Popup
	}
	isTrigger, active := false, false
	for _, t := range h.triggers {
		if t.Node() == n && t.Mounted() {
			isTrigger = true
			active = active || t.Visible()
		}
	}
	switch {
	case active:
		return h.styles.Active.Inherit(base)
	case h.doc.FocusedNode() == n:
		return h.styles.Focused.Inherit(base)
	case isTrigger:
		return h.styles.Trigger.Inherit(base)
	}
	return base
}
