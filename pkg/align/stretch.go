package align

import (
	"strconv"
	"strings"

	"github.com/matzehuels/overlay/pkg/dom"
	"github.com/matzehuels/overlay/pkg/errors"
)

// Stretch sizes the popup from the trigger's measured size. Flags combine.
type Stretch struct {
	Width     bool
	Height    bool
	MinWidth  bool
	MinHeight bool
}

// ParseStretch parses a space or comma separated list of width, height,
// minWidth and minHeight.
func ParseStretch(s string) (Stretch, error) {
	var st Stretch
	for _, f := range strings.FieldsFunc(s, func(r rune) bool { return r == ' ' || r == ',' }) {
		switch f {
		case "width":
			st.Width = true
		case "height":
			st.Height = true
		case "minWidth":
			st.MinWidth = true
		case "minHeight":
			st.MinHeight = true
		default:
			return Stretch{}, errors.New(errors.ErrCodeInvalidStretch,
				"unknown stretch %q (want width, height, minWidth or minHeight)", f)
		}
	}
	return st, nil
}

// IsZero reports whether no dimension is stretched.
func (s Stretch) IsZero() bool { return s == Stretch{} }

// String renders the flags in ParseStretch syntax.
func (s Stretch) String() string {
	var parts []string
	if s.Width {
		parts = append(parts, "width")
	}
	if s.Height {
		parts = append(parts, "height")
	}
	if s.MinWidth {
		parts = append(parts, "minWidth")
	}
	if s.MinHeight {
		parts = append(parts, "minHeight")
	}
	return strings.Join(parts, " ")
}

// Styles returns the style entries that apply the trigger size.
func (s Stretch) Styles(trigger dom.Size) map[string]string {
	out := make(map[string]string)
	if s.Width {
		out["width"] = strconv.Itoa(trigger.W)
	}
	if s.Height {
		out["height"] = strconv.Itoa(trigger.H)
	}
	if s.MinWidth {
		out["minWidth"] = strconv.Itoa(trigger.W)
	}
	if s.MinHeight {
		out["minHeight"] = strconv.Itoa(trigger.H)
	}
	return out
}

// Apply returns the popup size after stretching to trigger.
func (s Stretch) Apply(popup, trigger dom.Size) dom.Size {
	if s.Width {
		popup.W = trigger.W
	} else if s.MinWidth && popup.W < trigger.W {
		popup.W = trigger.W
	}
	if s.Height {
		popup.H = trigger.H
	} else if s.MinHeight && popup.H < trigger.H {
		popup.H = trigger.H
	}
	return popup
}

// Measurer measures a node.
type Measurer interface {
	Measure(n *dom.Node) dom.Size
}

// MeasurerFunc adapts a function to Measurer.
type MeasurerFunc func(n *dom.Node) dom.Size

// Measure implements Measurer.
func (f MeasurerFunc) Measure(n *dom.Node) dom.Size { return f(n) }

// DOMMeasurer reports a node's layout rectangle size.
type DOMMeasurer struct{}

// Measure implements Measurer.
func (DOMMeasurer) Measure(n *dom.Node) dom.Size {
	if n == nil {
		return dom.Size{}
	}
	return n.Rect.Size()
}
