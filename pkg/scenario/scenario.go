// Package scenario drives triggers headlessly from TOML scenario files.
//
// A scenario declares trigger elements and a list of steps. Triggers with a
// parent live inside the parent's popup content, so they are mounted when
// that content is created and unmounted when it is destroyed. Steps run on
// a manual clock and every step records a snapshot of each trigger in a
// [Trace].
//
//	name = "menu"
//
//	[[trigger]]
//	name = "menu"
//	action = ["click"]
//	rect = [2, 1, 6, 1]
//
//	[[step]]
//	do = "click"
//	target = "menu"
//
//	[[step]]
//	do = "outside"
package scenario

import (
	"fmt"
	"io"
	"os"
	"regexp"
	"strings"
	"time"

	"github.com/BurntSushi/toml"

	"github.com/matzehuels/overlay/pkg/align"
	"github.com/matzehuels/overlay/pkg/container"
	"github.com/matzehuels/overlay/pkg/dom"
	"github.com/matzehuels/overlay/pkg/errors"
	"github.com/matzehuels/overlay/pkg/trigger"
)

// Step operations.
const (
	OpClick       = "click"
	OpMouseDown   = "mousedown"
	OpEnter       = "enter"
	OpLeave       = "leave"
	OpContextMenu = "contextmenu"
	OpFocus       = "focus"
	OpBlur        = "blur"
	OpOutside     = "outside"
	OpScroll      = "scroll"
	OpWindowBlur  = "windowblur"
	OpEscape      = "escape"
	OpAdvance     = "advance"
	OpFlush       = "flush"
	OpControl     = "control"
	OpUnmount     = "unmount"
)

// Reserved step targets.
const (
	TargetOutside = "outside"
	TargetBody    = "body"
)

// Container values for TriggerSpec.Container.
const (
	ContainerBody   = "body"
	ContainerParent = "parent"
)

// DefaultViewport is the body size when a scenario does not set one.
var DefaultViewport = [2]int{80, 24}

var namePattern = regexp.MustCompile(`^[A-Za-z][A-Za-z0-9_-]*$`)

// Duration is a time.Duration decoded from strings such as "150ms".
// Negative values mean "no delay".
type Duration struct {
	time.Duration
}

// UnmarshalText implements encoding.TextUnmarshaler.
func (d *Duration) UnmarshalText(b []byte) error {
	v, err := time.ParseDuration(string(b))
	if err != nil {
		return err
	}
	d.Duration = v
	return nil
}

// MarshalText implements encoding.TextMarshaler.
func (d Duration) MarshalText() ([]byte, error) {
	return []byte(d.Duration.String()), nil
}

// Scenario is a decoded scenario file.
type Scenario struct {
	Name        string        `toml:"name" json:"name"`
	Description string        `toml:"description" json:"description,omitempty"`
	Viewport    [2]int        `toml:"viewport" json:"viewport"`
	Triggers    []TriggerSpec `toml:"trigger" json:"triggers"`
	Steps       []Step        `toml:"step" json:"steps"`
}

// TriggerSpec declares one trigger element and its options.
type TriggerSpec struct {
	Name string `toml:"name" json:"name"`

	// Parent names the trigger whose popup content holds this element.
	Parent string `toml:"parent" json:"parent,omitempty"`

	// Label is the element text and Rect its x, y, width, height. Rects of
	// nested elements are relative to the parent's popup content.
	Label string `toml:"label" json:"label,omitempty"`
	Rect  [4]int `toml:"rect" json:"rect"`

	Action     []string `toml:"action" json:"action,omitempty"`
	ShowAction []string `toml:"show_action" json:"show_action,omitempty"`
	HideAction []string `toml:"hide_action" json:"hide_action,omitempty"`

	MouseEnterDelay Duration `toml:"mouse_enter_delay" json:"mouse_enter_delay"`
	MouseLeaveDelay Duration `toml:"mouse_leave_delay" json:"mouse_leave_delay"`
	FocusDelay      Duration `toml:"focus_delay" json:"focus_delay"`
	BlurDelay       Duration `toml:"blur_delay" json:"blur_delay"`

	// Visible makes the trigger controlled with this initial value.
	Visible        *bool `toml:"visible" json:"visible,omitempty"`
	DefaultVisible bool  `toml:"default_visible" json:"default_visible,omitempty"`

	ForceRender        bool `toml:"force_render" json:"force_render,omitempty"`
	DestroyPopupOnHide bool `toml:"destroy_popup_on_hide" json:"destroy_popup_on_hide,omitempty"`
	AutoDestroy        bool `toml:"auto_destroy" json:"auto_destroy,omitempty"`

	// Container is "body" (default) or "parent", the trigger element's
	// parent resolved on the next frame.
	Container string `toml:"container" json:"container,omitempty"`

	Placement  string `toml:"placement" json:"placement,omitempty"`
	AlignPoint bool   `toml:"align_point" json:"align_point,omitempty"`
	Stretch    string `toml:"stretch" json:"stretch,omitempty"`

	Mask         bool  `toml:"mask" json:"mask,omitempty"`
	MaskClosable *bool `toml:"mask_closable" json:"mask_closable,omitempty"`

	ClassName      string `toml:"class_name" json:"class_name,omitempty"`
	PopupClassName string `toml:"popup_class_name" json:"popup_class_name,omitempty"`

	// Popup is the popup text and PopupSize its width and height.
	Popup     string `toml:"popup" json:"popup,omitempty"`
	PopupSize [2]int `toml:"popup_size" json:"popup_size"`
}

// Step is one scenario action.
type Step struct {
	Do string `toml:"do" json:"do"`

	// Target is a trigger name, "<name>.popup", "<name>.mask", "outside"
	// or "body".
	Target string `toml:"target" json:"target,omitempty"`

	// At is the pointer position for enter and contextmenu. It defaults to
	// the target's top-left cell.
	At []int `toml:"at" json:"at,omitempty"`

	// Duration is the clock advance for advance steps.
	Duration Duration `toml:"duration" json:"duration"`

	// Visible is the controlled value for control steps.
	Visible *bool `toml:"visible" json:"visible,omitempty"`
}

// String renders the step as "do target".
func (s Step) String() string {
	switch {
	case s.Do == OpAdvance:
		return fmt.Sprintf("%s %s", s.Do, s.Duration.Duration)
	case s.Do == OpControl && s.Visible != nil:
		return fmt.Sprintf("%s %s=%t", s.Do, s.Target, *s.Visible)
	case s.Target != "":
		return s.Do + " " + s.Target
	}
	return s.Do
}

// Load decodes and validates a scenario.
func Load(r io.Reader) (*Scenario, error) {
	var sc Scenario
	md, err := toml.NewDecoder(r).Decode(&sc)
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeInvalidScenario, err, "decode scenario")
	}
	if undecoded := md.Undecoded(); len(undecoded) > 0 {
		keys := make([]string, len(undecoded))
		for i, k := range undecoded {
			keys[i] = k.String()
		}
		return nil, errors.New(errors.ErrCodeInvalidScenario, "unknown keys: %s", strings.Join(keys, ", "))
	}
	sc.SetDefaults()
	if err := sc.Validate(); err != nil {
		return nil, err
	}
	return &sc, nil
}

// LoadFile reads a scenario from path.
func LoadFile(path string) (*Scenario, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open scenario: %w", err)
	}
	defer f.Close()
	return Load(f)
}

// SetDefaults fills in the viewport and scenario name.
func (sc *Scenario) SetDefaults() {
	if sc.Viewport == [2]int{} {
		sc.Viewport = DefaultViewport
	}
	if sc.Name == "" {
		sc.Name = "scenario"
	}
}

// Validate checks names, nesting, options and steps.
func (sc *Scenario) Validate() error {
	var errs []error
	seen := make(map[string]bool, len(sc.Triggers))
	for i, ts := range sc.Triggers {
		switch {
		case !namePattern.MatchString(ts.Name):
			errs = append(errs, errors.New(errors.ErrCodeInvalidName, "trigger %d: invalid name %q", i, ts.Name))
		case ts.Name == TargetOutside || ts.Name == TargetBody:
			errs = append(errs, errors.New(errors.ErrCodeInvalidName, "trigger %d: name %q is reserved", i, ts.Name))
		case seen[ts.Name]:
			errs = append(errs, errors.New(errors.ErrCodeInvalidName, "trigger %q declared twice", ts.Name))
		}
		if ts.Parent != "" && !seen[ts.Parent] {
			errs = append(errs, errors.New(errors.ErrCodeInvalidScenario, "trigger %q: parent %q must be declared before it", ts.Name, ts.Parent))
		}
		seen[ts.Name] = true

		if ts.Container != "" && ts.Container != ContainerBody && ts.Container != ContainerParent {
			errs = append(errs, errors.New(errors.ErrCodeInvalidScenario, "trigger %q: unknown container %q", ts.Name, ts.Container))
		}
		if ts.Stretch != "" {
			if _, err := align.ParseStretch(ts.Stretch); err != nil {
				errs = append(errs, err)
			}
		}
		opts := ts.options()
		if err := opts.Validate(); err != nil {
			errs = append(errs, errors.Wrap(errors.ErrCodeInvalidScenario, err, "trigger %q", ts.Name))
		}
	}

	for i, st := range sc.Steps {
		if err := st.validate(seen); err != nil {
			errs = append(errs, errors.Wrap(errors.ErrCodeInvalidScenario, err, "step %d (%s)", i, st.Do))
		}
	}
	return errors.Join(errors.ErrCodeInvalidScenario, errs...)
}

func (s Step) validate(names map[string]bool) error {
	needsTarget := false
	switch s.Do {
	case OpClick, OpMouseDown, OpEnter, OpContextMenu, OpFocus:
		needsTarget = true
	case OpControl, OpUnmount:
		if !names[s.Target] {
			return errors.New(errors.ErrCodeNotFound, "unknown trigger %q", s.Target)
		}
		if s.Do == OpControl && s.Visible == nil {
			return errors.New(errors.ErrCodeInvalidInput, "control needs visible")
		}
		return nil
	case OpAdvance:
		if s.Duration.Duration <= 0 {
			return errors.New(errors.ErrCodeInvalidInput, "advance needs a positive duration")
		}
		return nil
	case OpLeave, OpBlur, OpOutside, OpScroll, OpWindowBlur, OpEscape, OpFlush:
	default:
		return errors.New(errors.ErrCodeUnsupported, "unknown step %q", s.Do)
	}
	if s.Target == "" {
		if needsTarget {
			return errors.New(errors.ErrCodeInvalidInput, "missing target")
		}
		return nil
	}
	if len(s.At) != 0 && len(s.At) != 2 {
		return errors.New(errors.ErrCodeInvalidInput, "at needs two coordinates")
	}
	if s.Target == TargetOutside || s.Target == TargetBody {
		return nil
	}
	name, _, _ := strings.Cut(s.Target, ".")
	if !names[name] {
		return errors.New(errors.ErrCodeNotFound, "unknown target %q", s.Target)
	}
	return nil
}

// Lookup returns the trigger spec called name.
func (sc *Scenario) Lookup(name string) (*TriggerSpec, bool) {
	for i := range sc.Triggers {
		if sc.Triggers[i].Name == name {
			return &sc.Triggers[i], true
		}
	}
	return nil, false
}

// Children returns the specs whose parent is name, in declaration order.
func (sc *Scenario) Children(name string) []*TriggerSpec {
	var out []*TriggerSpec
	for i := range sc.Triggers {
		if sc.Triggers[i].Parent == name {
			out = append(out, &sc.Triggers[i])
		}
	}
	return out
}

// options converts the spec into trigger options without collaborators.
func (ts *TriggerSpec) options() trigger.Options {
	opts := trigger.Options{
		Action:              ts.Action,
		ShowAction:          ts.ShowAction,
		HideAction:          ts.HideAction,
		MouseEnterDelay:     ts.MouseEnterDelay.Duration,
		MouseLeaveDelay:     ts.MouseLeaveDelay.Duration,
		FocusDelay:          ts.FocusDelay.Duration,
		BlurDelay:           ts.BlurDelay.Duration,
		PopupVisible:        ts.Visible,
		DefaultPopupVisible: ts.DefaultVisible,
		ForceRender:         ts.ForceRender,
		DestroyPopupOnHide:  ts.DestroyPopupOnHide,
		AutoDestroy:         ts.AutoDestroy,
		PopupPlacement:      ts.Placement,
		AlignPoint:          ts.AlignPoint,
		Mask:                ts.Mask,
		MaskClosable:        ts.MaskClosable,
		ClassName:           ts.ClassName,
		PopupClassName:      ts.PopupClassName,
		ID:                  ts.Name,
	}
	if st, err := align.ParseStretch(ts.Stretch); err == nil {
		opts.Stretch = st
	}
	if ts.Container == ContainerParent {
		opts.GetPopupContainer = container.FromTrigger(func(n *dom.Node) *dom.Node {
			return n.Parent()
		})
	}
	return opts
}
