package trigger

import (
	"time"

	"github.com/charmbracelet/log"
	"github.com/google/uuid"

	"github.com/matzehuels/overlay/pkg/action"
	"github.com/matzehuels/overlay/pkg/align"
	"github.com/matzehuels/overlay/pkg/arbiter"
	"github.com/matzehuels/overlay/pkg/container"
	"github.com/matzehuels/overlay/pkg/dom"
	"github.com/matzehuels/overlay/pkg/errors"
	"github.com/matzehuels/overlay/pkg/timer"
)

// Default delays. A zero delay option selects the default; a negative one
// means no delay.
const (
	DefaultMouseEnterDelay = 0
	DefaultMouseLeaveDelay = 100 * time.Millisecond
	DefaultFocusDelay      = 0
	DefaultBlurDelay       = 150 * time.Millisecond
)

// DefaultPrefixCls prefixes every class the trigger puts on its popup.
const DefaultPrefixCls = "overlay-trigger-popup"

// clickAfterFocusWindow is how close a click must follow a focus to be
// treated as part of the same gesture.
const clickAfterFocusWindow = 20 * time.Millisecond

// Options configures a Trigger.
type Options struct {
	// =========================================================================
	// Actions
	// =========================================================================

	// Action lists the declared actions: click, hover, contextMenu, focus.
	Action []string

	// ShowAction replaces the show side derived from Action when set.
	ShowAction []string

	// HideAction replaces the hide side derived from Action when set.
	HideAction []string

	// =========================================================================
	// Delays
	// =========================================================================

	MouseEnterDelay time.Duration
	MouseLeaveDelay time.Duration
	FocusDelay      time.Duration
	BlurDelay       time.Duration

	// =========================================================================
	// Visibility
	// =========================================================================

	// PopupVisible makes visibility controlled. Update it with Sync.
	PopupVisible *bool

	// DefaultPopupVisible is the initial uncontrolled value.
	DefaultPopupVisible bool

	// OnPopupVisibleChange is called when the popup shows or hides, or, when
	// controlled, when an interaction asks for a change.
	OnPopupVisibleChange func(visible bool)

	// AfterPopupVisibleChange is called once the new value is rendered.
	AfterPopupVisibleChange func(visible bool)

	// =========================================================================
	// Lifecycle
	// =========================================================================

	ForceRender        bool
	DestroyPopupOnHide bool
	AutoDestroy        bool

	// GetPopupContainer chooses where the popup mounts. Defaults to the
	// document body.
	GetPopupContainer container.Source

	// =========================================================================
	// Popup
	// =========================================================================

	// Popup builds the popup content. It runs again after the content was
	// destroyed.
	Popup func() *dom.Node

	PopupStyle     map[string]string
	PopupClassName string

	// PrefixCls defaults to DefaultPrefixCls.
	PrefixCls string

	// Mask renders a mask behind the popup while it is visible.
	Mask bool

	// MaskClosable hides the popup when the mask is clicked. Defaults to
	// true.
	MaskClosable *bool

	// ClassName is added to the trigger element.
	ClassName string

	// =========================================================================
	// Placement
	// =========================================================================

	BuiltinPlacements align.Placements
	PopupPlacement    string
	PopupAlign        align.Placement
	Stretch           align.Stretch

	// AlignPoint aligns context menus to the pointer.
	AlignPoint bool

	OnPopupAlign func(popup *dom.Node, res align.Result)

	// =========================================================================
	// Identity and collaborators
	// =========================================================================

	// ID defaults to a random UUID.
	ID string

	// ParentID names the trigger whose popup contains this one. When empty
	// it is detected from the trigger element's position at mount time.
	ParentID string

	// Document defaults to dom.Default().
	Document *dom.Document

	// Registry defaults to arbiter.For(Document), the registry shared by
	// every trigger on that document.
	Registry *arbiter.Registry

	// Scheduler runs the delayed transitions. It defaults to timer.Default(),
	// whose callbacks run on the default loop's own goroutine: with the
	// default, every event dispatch on Document must also be posted to
	// timer.Default(), or the trigger's state races. Hosts that dispatch
	// from their own goroutine pass a scheduler running there (timer.Manual,
	// the bubbletea scheduler of pkg/tui).
	Scheduler timer.Scheduler

	Aligner  align.Aligner
	Measurer align.Measurer
	Logger   *log.Logger
}

// Bool returns a pointer to v, for PopupVisible and MaskClosable.
func Bool(v bool) *bool { return &v }

// SetDefaults fills unset fields.
func (o *Options) SetDefaults() {
	o.MouseEnterDelay = delayOrDefault(o.MouseEnterDelay, DefaultMouseEnterDelay)
	o.MouseLeaveDelay = delayOrDefault(o.MouseLeaveDelay, DefaultMouseLeaveDelay)
	o.FocusDelay = delayOrDefault(o.FocusDelay, DefaultFocusDelay)
	o.BlurDelay = delayOrDefault(o.BlurDelay, DefaultBlurDelay)
	if o.PrefixCls == "" {
		o.PrefixCls = DefaultPrefixCls
	}
	if o.MaskClosable == nil {
		o.MaskClosable = Bool(true)
	}
	if o.ID == "" {
		o.ID = uuid.NewString()
	}
	if o.Document == nil {
		o.Document = dom.Default()
	}
	if o.Registry == nil {
		o.Registry = arbiter.For(o.Document)
	}
	if o.Scheduler == nil {
		o.Scheduler = timer.Default()
	}
	if o.BuiltinPlacements == nil {
		o.BuiltinPlacements = align.DefaultPlacements()
	}
	if o.Aligner == nil {
		o.Aligner = align.PointAligner{}
	}
	if o.Measurer == nil {
		o.Measurer = align.DOMMeasurer{}
	}
	if o.Logger == nil {
		o.Logger = log.Default()
	}
}

func delayOrDefault(d, def time.Duration) time.Duration {
	switch {
	case d < 0:
		return 0
	case d == 0:
		return def
	}
	return d
}

// Validate checks the options strictly. A Trigger tolerates invalid
// options at runtime; Validate is for configuration loaded from files.
func (o *Options) Validate() error {
	var errs []error
	if _, err := action.Parse(o.Action, o.ShowAction, o.HideAction); err != nil {
		errs = append(errs, err)
	}
	placements := o.BuiltinPlacements
	if placements == nil {
		placements = align.DefaultPlacements()
	}
	if o.PopupPlacement != "" {
		if _, ok := placements[o.PopupPlacement]; !ok {
			errs = append(errs, errors.New(errors.ErrCodeInvalidPlacement, "unknown placement %q", o.PopupPlacement))
		}
	}
	if o.PopupAlign.Points != [2]string{} {
		if err := o.PopupAlign.Validate(); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errors.ErrCodeInvalidInput, errs...)
}
