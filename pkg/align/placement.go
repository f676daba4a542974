// Package align turns placement names and alignment config into popup
// positions.
//
// Placements are named point pairs loaded from TOML; the builtin table is
// embedded. The position math itself sits behind the [Aligner] interface so
// hosts can bring their own. [PointAligner] is a small default for cell
// grids that flips an axis when the popup would leave the viewport.
//
// # Points
//
// A point is a vertical code (t, c, b) followed by a horizontal code
// (l, c, r). Placement.Points holds the popup point first and the trigger
// point second.
package align

import (
	"bytes"
	_ "embed"
	"io"
	"sort"

	"github.com/BurntSushi/toml"

	"github.com/matzehuels/overlay/pkg/errors"
)

//go:embed placements.toml
var builtinTOML []byte

// Overflow controls which axes may be flipped to keep the popup visible.
type Overflow struct {
	AdjustX bool `toml:"adjust_x" json:"adjustX,omitempty"`
	AdjustY bool `toml:"adjust_y" json:"adjustY,omitempty"`
}

// Placement is one named alignment.
type Placement struct {
	Points       [2]string `toml:"points" json:"points"`
	Offset       [2]int    `toml:"offset" json:"offset,omitzero"`
	TargetOffset [2]int    `toml:"target_offset" json:"targetOffset,omitzero"`
	Overflow     Overflow  `toml:"overflow" json:"overflow,omitzero"`
}

// IsZero reports whether p sets nothing.
func (p Placement) IsZero() bool { return p == Placement{} }

// Validate checks both point codes.
func (p Placement) Validate() error {
	for _, pt := range p.Points {
		if !validPoint(pt) {
			return errors.New(errors.ErrCodeInvalidPlacement, "invalid point %q (want [tcb][lcr])", pt)
		}
	}
	return nil
}

func validPoint(pt string) bool {
	return len(pt) == 2 && (pt[0] == 't' || pt[0] == 'c' || pt[0] == 'b') &&
		(pt[1] == 'l' || pt[1] == 'c' || pt[1] == 'r')
}

// fallback is used when neither a name nor an override yields points.
var fallback = Placement{Points: [2]string{"tl", "bl"}, Overflow: Overflow{AdjustX: true, AdjustY: true}}

// Placements maps placement names to alignments.
type Placements map[string]Placement

// DefaultPlacements returns a copy of the builtin placement table.
func DefaultPlacements() Placements {
	ps, err := LoadPlacements(bytes.NewReader(builtinTOML))
	if err != nil {
		panic("align: builtin placements: " + err.Error())
	}
	return ps
}

// LoadPlacements decodes a placement table from TOML.
func LoadPlacements(r io.Reader) (Placements, error) {
	var ps Placements
	if _, err := toml.NewDecoder(r).Decode(&ps); err != nil {
		return nil, errors.Wrap(errors.ErrCodeInvalidPlacement, err, "decode placements")
	}
	var errs []error
	for _, name := range ps.Names() {
		if err := errors.ValidateName("placement", name); err != nil {
			errs = append(errs, err)
			continue
		}
		if err := ps[name].Validate(); err != nil {
			errs = append(errs, errors.Wrap(errors.ErrCodeInvalidPlacement, err, "placement %s", name))
		}
	}
	if err := errors.Join(errors.ErrCodeInvalidPlacement, errs...); err != nil {
		return nil, err
	}
	return ps, nil
}

// Names returns the placement names in sorted order.
func (ps Placements) Names() []string {
	names := make([]string, 0, len(ps))
	for name := range ps {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Merge returns a table with other's entries layered over ps.
func (ps Placements) Merge(other Placements) Placements {
	out := make(Placements, len(ps)+len(other))
	for k, v := range ps {
		out[k] = v
	}
	for k, v := range other {
		out[k] = v
	}
	return out
}

// Resolve returns the named placement with override layered on top. Set
// fields of override win; an unknown name falls back to the override alone,
// and to a bottom-left placement when that has no points either.
func (ps Placements) Resolve(name string, override Placement) Placement {
	base, ok := ps[name]
	if !ok {
		base = Placement{}
	}
	if override.Points != [2]string{} {
		base.Points = override.Points
	}
	if override.Offset != [2]int{} {
		base.Offset = override.Offset
	}
	if override.TargetOffset != [2]int{} {
		base.TargetOffset = override.TargetOffset
	}
	if override.Overflow != (Overflow{}) {
		base.Overflow = override.Overflow
	}
	if base.Points == [2]string{} {
		base.Points = fallback.Points
		if base.Overflow == (Overflow{}) {
			base.Overflow = fallback.Overflow
		}
	}
	return base
}

// NameFor returns the name of the placement whose points equal points, or
// "" when none does. Names are searched in sorted order.
func (ps Placements) NameFor(points [2]string) string {
	for _, name := range ps.Names() {
		if ps[name].Points == points {
			return name
		}
	}
	return ""
}
