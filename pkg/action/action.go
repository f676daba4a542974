// Package action maps declared trigger actions onto the interaction events a
// trigger listens for.
//
// A trigger declares a list of actions (click, hover, contextMenu, focus).
// Each action implies a show side and a hide side; optional showAction and
// hideAction lists replace the corresponding side entirely:
//
//	m := action.Resolve([]string{"hover"}, nil, []string{"click"})
//	m.MouseEnterToShow() // true
//	m.MouseLeaveToHide() // false, the hide side came from the override
//	m.ClickToHide()      // true
//
// Unknown names are ignored by [Resolve]; [Parse] reports them for strict
// configuration loading.
package action

import (
	"slices"
	"strings"

	"github.com/matzehuels/overlay/pkg/dom"
	"github.com/matzehuels/overlay/pkg/errors"
)

// Action is a declared trigger action.
type Action string

// Declared actions.
const (
	Click       Action = "click"
	Hover       Action = "hover"
	ContextMenu Action = "contextMenu"
	Focus       Action = "focus"
)

// Show is an interaction that can show the popup.
type Show string

// Show interactions.
const (
	ShowClick       Show = "click"
	ShowContextMenu Show = "contextMenu"
	ShowMouseEnter  Show = "mouseEnter"
	ShowFocus       Show = "focus"
)

// Hide is an interaction that can hide the popup.
type Hide string

// Hide interactions.
const (
	HideClick      Hide = "click"
	HideMouseLeave Hide = "mouseLeave"
	HideBlur       Hide = "blur"
)

var (
	showAliases = map[string]Show{
		"click":       ShowClick,
		"contextMenu": ShowContextMenu,
		"mouseEnter":  ShowMouseEnter,
		"hover":       ShowMouseEnter,
		"focus":       ShowFocus,
	}
	hideAliases = map[string]Hide{
		"click":      HideClick,
		"mouseLeave": HideMouseLeave,
		"hover":      HideMouseLeave,
		"blur":       HideBlur,
		"focus":      HideBlur,
	}
	derivedShow = map[Action]Show{
		Click:       ShowClick,
		ContextMenu: ShowContextMenu,
		Hover:       ShowMouseEnter,
		Focus:       ShowFocus,
	}
	derivedHide = map[Action]Hide{
		Click: HideClick,
		Hover: HideMouseLeave,
		Focus: HideBlur,
	}
)

// Mapping is the resolved show/hide interaction sets of one trigger.
// The zero Mapping has no interactions and never changes visibility.
type Mapping struct {
	show []Show
	hide []Hide
}

// Resolve builds a Mapping. A non-empty showAction replaces the show side
// derived from actions, and a non-empty hideAction replaces the hide side.
func Resolve(actions, showAction, hideAction []string) Mapping {
	var m Mapping
	if len(showAction) > 0 {
		for _, name := range showAction {
			if s, ok := showAliases[name]; ok {
				m.show = appendUnique(m.show, s)
			}
		}
	} else {
		for _, name := range actions {
			if s, ok := derivedShow[Action(name)]; ok {
				m.show = appendUnique(m.show, s)
			}
		}
	}
	if len(hideAction) > 0 {
		for _, name := range hideAction {
			if h, ok := hideAliases[name]; ok {
				m.hide = appendUnique(m.hide, h)
			}
		}
	} else {
		for _, name := range actions {
			if h, ok := derivedHide[Action(name)]; ok {
				m.hide = appendUnique(m.hide, h)
			}
		}
	}
	return m
}

// Parse is Resolve with validation: every name must be known for the list
// it appears in.
func Parse(actions, showAction, hideAction []string) (Mapping, error) {
	var errs []error
	for _, name := range actions {
		if _, ok := derivedShow[Action(name)]; !ok {
			errs = append(errs, errors.New(errors.ErrCodeInvalidAction,
				"unknown action %q (want one of %s)", name, knownActions()))
		}
	}
	for _, name := range showAction {
		if _, ok := showAliases[name]; !ok {
			errs = append(errs, errors.New(errors.ErrCodeInvalidAction, "unknown show action %q", name))
		}
	}
	for _, name := range hideAction {
		if _, ok := hideAliases[name]; !ok {
			errs = append(errs, errors.New(errors.ErrCodeInvalidAction, "unknown hide action %q", name))
		}
	}
	if len(errs) > 0 {
		return Mapping{}, errors.Join(errors.ErrCodeInvalidAction, errs...)
	}
	return Resolve(actions, showAction, hideAction), nil
}

func knownActions() string {
	return strings.Join([]string{string(Click), string(Hover), string(ContextMenu), string(Focus)}, ", ")
}

func appendUnique[T comparable](list []T, v T) []T {
	if slices.Contains(list, v) {
		return list
	}
	return append(list, v)
}

// ShowActions returns the show interactions in declaration order.
func (m Mapping) ShowActions() []Show { return slices.Clone(m.show) }

// HideActions returns the hide interactions in declaration order.
func (m Mapping) HideActions() []Hide { return slices.Clone(m.hide) }

// Empty reports whether the mapping has no interactions at all.
func (m Mapping) Empty() bool { return len(m.show) == 0 && len(m.hide) == 0 }

// CanShow reports whether any interaction can show the popup. A hide-only
// mapping never shows.
func (m Mapping) CanShow() bool { return len(m.show) > 0 }

func (m Mapping) ClickToShow() bool       { return slices.Contains(m.show, ShowClick) }
func (m Mapping) ContextMenuToShow() bool { return slices.Contains(m.show, ShowContextMenu) }
func (m Mapping) MouseEnterToShow() bool  { return slices.Contains(m.show, ShowMouseEnter) }
func (m Mapping) FocusToShow() bool       { return slices.Contains(m.show, ShowFocus) }
func (m Mapping) ClickToHide() bool       { return slices.Contains(m.hide, HideClick) }
func (m Mapping) MouseLeaveToHide() bool  { return slices.Contains(m.hide, HideMouseLeave) }
func (m Mapping) BlurToHide() bool        { return slices.Contains(m.hide, HideBlur) }

// ContextMenuOnly reports whether the context menu is the only show
// interaction. Pointer-downs on the trigger itself then still dismiss.
func (m Mapping) ContextMenuOnly() bool {
	return len(m.show) == 1 && m.show[0] == ShowContextMenu
}

// DismissOnOutside reports whether a pointer-down outside trigger and popup
// hides the popup. A context menu always implies it.
func (m Mapping) DismissOnOutside() bool {
	return m.ClickToHide() || m.ContextMenuToShow()
}

// DismissOnScroll reports whether scrolling or losing window focus hides the
// popup. Only context menus close this way.
func (m Mapping) DismissOnScroll() bool {
	return m.ContextMenuToShow()
}

// TriggerEvents returns the event types to listen for on the trigger
// element. Click also listens for mousedown and touchstart so a click right
// after focus can be told apart.
func (m Mapping) TriggerEvents() []dom.EventType {
	var out []dom.EventType
	add := func(types ...dom.EventType) {
		for _, t := range types {
			out = appendUnique(out, t)
		}
	}
	if m.ClickToShow() || m.ClickToHide() {
		add(dom.Click, dom.MouseDown, dom.TouchStart)
	}
	if m.MouseEnterToShow() {
		add(dom.MouseEnter)
	}
	if m.MouseLeaveToHide() {
		add(dom.MouseLeave)
	}
	if m.ContextMenuToShow() {
		add(dom.ContextMenu)
	}
	if m.FocusToShow() {
		add(dom.Focus)
	}
	if m.BlurToHide() {
		add(dom.Blur)
	}
	return out
}

// PopupEvents returns the event types to listen for on the popup element.
// Hover keeps the popup open while the pointer is over it.
func (m Mapping) PopupEvents() []dom.EventType {
	var out []dom.EventType
	if m.MouseEnterToShow() {
		out = append(out, dom.MouseEnter)
	}
	if m.MouseLeaveToHide() {
		out = append(out, dom.MouseLeave)
	}
	return out
}

// String renders the mapping as "show=a,b hide=c".
func (m Mapping) String() string {
	show := make([]string, len(m.show))
	for i, s := range m.show {
		show[i] = string(s)
	}
	hide := make([]string, len(m.hide))
	for i, h := range m.hide {
		hide[i] = string(h)
	}
	return "show=" + strings.Join(show, ",") + " hide=" + strings.Join(hide, ",")
}
