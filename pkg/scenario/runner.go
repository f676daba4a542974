package scenario

import (
	"strings"
	"time"

	"github.com/charmbracelet/log"

	"github.com/matzehuels/overlay/pkg/arbiter"
	"github.com/matzehuels/overlay/pkg/dom"
	"github.com/matzehuels/overlay/pkg/errors"
	"github.com/matzehuels/overlay/pkg/timer"
	"github.com/matzehuels/overlay/pkg/trigger"
)

// Runner executes one scenario against a fresh document.
type Runner struct {
	sc      *Scenario
	logger  *log.Logger
	doc     *dom.Document
	clock   *timer.Manual
	reg     *arbiter.Registry
	pointer *dom.Pointer
	outside *dom.Node

	triggers map[string]*trigger.Trigger
	counts   map[string]*Counts
	start    time.Time
}

// NewRunner prepares sc for execution. A nil logger uses log.Default().
func NewRunner(sc *Scenario, logger *log.Logger) *Runner {
	if logger == nil {
		logger = log.Default()
	}
	doc := dom.NewDocument()
	doc.Body().Rect = dom.Rect{W: sc.Viewport[0], H: sc.Viewport[1]}
	start := time.Date(2000, 1, 1, 0, 0, 0, 0, time.UTC)
	return &Runner{
		sc:       sc,
		logger:   logger.With("scenario", sc.Name),
		doc:      doc,
		clock:    timer.NewManual(start),
		reg:      arbiter.New(doc, logger),
		pointer:  dom.NewPointer(doc),
		triggers: make(map[string]*trigger.Trigger),
		counts:   make(map[string]*Counts),
		start:    start,
	}
}

// Run executes sc and returns its trace.
func Run(sc *Scenario, logger *log.Logger) (*Trace, error) {
	return NewRunner(sc, logger).Run()
}

// Document returns the runner's document.
func (r *Runner) Document() *dom.Document { return r.doc }

// Trigger returns the current instance of the named trigger.
func (r *Runner) Trigger(name string) (*trigger.Trigger, bool) {
	t, ok := r.triggers[name]
	return t, ok
}

// Run mounts the top-level triggers and executes every step. It stops at
// the first step whose target cannot be found.
func (r *Runner) Run() (*Trace, error) {
	r.outside = dom.NewNode("div", TargetOutside)
	r.outside.Rect = dom.Rect{X: r.sc.Viewport[0] - 1, Y: r.sc.Viewport[1] - 1, W: 1, H: 1}

	for i := range r.sc.Triggers {
		ts := &r.sc.Triggers[i]
		r.counts[ts.Name] = &Counts{}
		if ts.Parent != "" {
			continue
		}
		el := r.element(ts)
		r.doc.Body().AppendChild(el)
		r.mount(ts, el)
	}
	r.doc.Body().AppendChild(r.outside)

	tr := &Trace{Scenario: r.sc.Name}
	tr.Steps = append(tr.Steps, r.snapshot(-1, "mount"))
	for i, st := range r.sc.Steps {
		if err := r.step(st); err != nil {
			return tr, errors.Wrap(errors.ErrCodeInvalidScenario, err, "step %d (%s)", i, st)
		}
		r.pointer.Forget()
		tr.Steps = append(tr.Steps, r.snapshot(i, st.String()))
	}

	tr.Notifications = make(map[string]Counts, len(r.counts))
	for name, c := range r.counts {
		tr.Notifications[name] = *c
	}
	r.logger.Debug("scenario finished", "steps", len(r.sc.Steps))
	return tr, nil
}

// Close unmounts every trigger.
func (r *Runner) Close() {
	for _, t := range r.triggers {
		t.Unmount()
	}
}

func (r *Runner) element(ts *TriggerSpec) *dom.Node {
	el := dom.NewNode("span", ts.Name)
	el.Text = ts.Label
	if el.Text == "" {
		el.Text = ts.Name
	}
	el.Rect = dom.Rect{X: ts.Rect[0], Y: ts.Rect[1], W: ts.Rect[2], H: ts.Rect[3]}
	if el.Rect.Empty() {
		el.Rect.W, el.Rect.H = len(el.Text), 1
	}
	return el
}

func (r *Runner) mount(ts *TriggerSpec, el *dom.Node) {
	opts := ts.options()
	opts.Document = r.doc
	opts.Registry = r.reg
	opts.Scheduler = r.clock
	opts.Logger = r.logger
	opts.Popup = r.popupFactory(ts)

	counts := r.counts[ts.Name]
	opts.OnPopupVisibleChange = func(v bool) { counts.Changes = append(counts.Changes, v) }
	opts.AfterPopupVisibleChange = func(v bool) { counts.After = append(counts.After, v) }

	t := trigger.New(opts)
	t.Mount(el)
	r.triggers[ts.Name] = t
	r.logger.Debug("trigger mounted", "name", ts.Name, "parent", ts.Parent)
}

// popupFactory builds the popup content of ts, creating and mounting the
// elements of nested triggers inside it.
func (r *Runner) popupFactory(ts *TriggerSpec) func() *dom.Node {
	return func() *dom.Node {
		content := dom.NewNode("div", ts.Name+"-content")
		content.Text = ts.Popup
		w, h := ts.PopupSize[0], ts.PopupSize[1]
		if w == 0 && h == 0 {
			w, h = max(len(ts.Popup), 1), 1
		}
		content.Rect = dom.Rect{W: w, H: h}
		for _, child := range r.sc.Children(ts.Name) {
			el := r.element(child)
			content.AppendChild(el)
			r.mount(child, el)
		}
		return content
	}
}

func (r *Runner) step(st Step) error {
	r.logger.Debug("step", "do", st.Do, "target", st.Target)
	switch st.Do {
	case OpAdvance:
		r.clock.Advance(st.Duration.Duration)
		return nil
	case OpFlush:
		r.clock.RunAll()
		return nil
	case OpScroll:
		r.doc.Dispatch(dom.NewEvent(dom.Scroll, r.doc.Body()))
		return nil
	case OpWindowBlur:
		r.doc.Dispatch(dom.NewEvent(dom.WindowBlur, nil))
		return nil
	case OpOutside:
		r.doc.Click(r.outside)
		return nil
	case OpLeave:
		x, y := r.pointer.Position()
		r.pointer.MoveTo(nil, x, y)
		return nil
	case OpBlur:
		r.doc.Focus(nil)
		return nil
	case OpEscape:
		target := r.doc.FocusedNode()
		if target == nil {
			target = r.doc.Body()
		}
		ev := dom.NewEvent(dom.KeyDown, target)
		ev.Key = arbiter.EscapeKey
		r.doc.Dispatch(ev)
		return nil
	case OpControl, OpUnmount:
		t, ok := r.triggers[st.Target]
		if !ok {
			return errors.New(errors.ErrCodeNotFound, "trigger %q is not mounted", st.Target)
		}
		if st.Do == OpControl {
			t.Sync(*st.Visible)
		} else {
			t.Unmount()
		}
		return nil
	}

	n, err := r.resolve(st.Target)
	if err != nil {
		return err
	}
	x, y := n.Rect.X, n.Rect.Y
	if len(st.At) == 2 {
		x, y = st.At[0], st.At[1]
	}
	switch st.Do {
	case OpClick:
		r.doc.Click(n)
	case OpMouseDown:
		r.doc.Dispatch(dom.NewEvent(dom.MouseDown, n).At(x, y))
	case OpEnter:
		r.pointer.MoveTo(n, x, y)
	case OpContextMenu:
		r.doc.ContextMenu(n, x, y)
	case OpFocus:
		r.doc.Focus(n)
	}
	return nil
}

// resolve maps a step target onto a node.
func (r *Runner) resolve(target string) (*dom.Node, error) {
	switch target {
	case TargetOutside:
		return r.outside, nil
	case TargetBody:
		return r.doc.Body(), nil
	}
	name, part, _ := strings.Cut(target, ".")
	t, ok := r.triggers[name]
	if !ok || !t.Mounted() {
		return nil, errors.New(errors.ErrCodeNotFound, "trigger %q is not mounted", name)
	}
	var n *dom.Node
	switch part {
	case "":
		n = t.Node()
	case "popup":
		n = t.PopupNode()
	case "mask":
		n = t.MaskNode()
	default:
		return nil, errors.New(errors.ErrCodeNotFound, "unknown part %q of %q", part, name)
	}
	if n == nil {
		return nil, errors.New(errors.ErrCodeNotFound, "%q is not rendered", target)
	}
	return n, nil
}

func (r *Runner) snapshot(index int, label string) Entry {
	e := Entry{
		Index:   index,
		Step:    label,
		Elapsed: r.clock.Now().Sub(r.start).Milliseconds(),
	}
	for _, ts := range r.sc.Triggers {
		s := Snapshot{Name: ts.Name}
		if t, ok := r.triggers[ts.Name]; ok {
			s.Mounted = t.Mounted()
			s.Visible = t.Visible()
			s.State = t.State().String()
			s.Rendered = t.PopupNode() != nil
			s.Portal = t.PortalMounted()
			if res, ok := t.Alignment(); ok && s.Visible && s.Rendered {
				s.Left, s.Top = res.Left, res.Top
			}
		}
		e.Triggers = append(e.Triggers, s)
	}
	return e
}
