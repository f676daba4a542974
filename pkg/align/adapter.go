package align

import "github.com/matzehuels/overlay/pkg/dom"

// AdapterConfig configures an Adapter.
type AdapterConfig struct {
	// Aligner defaults to PointAligner.
	Aligner Aligner

	// Placements defaults to DefaultPlacements().
	Placements Placements

	// Placement names the builtin placement.
	Placement string

	// Override is layered over the named placement.
	Override Placement

	// AlignPoint aligns to the last pointer position instead of the
	// trigger rectangle.
	AlignPoint bool

	// OnAlign is called after every alignment.
	OnAlign func(Result)
}

// Adapter feeds placement config to an aligner and keeps the last result.
type Adapter struct {
	cfg       AdapterConfig
	placement Placement
	point     *[2]int
	last      Result
	aligned   bool
}

// NewAdapter creates an adapter from cfg.
func NewAdapter(cfg AdapterConfig) *Adapter {
	if cfg.Aligner == nil {
		cfg.Aligner = PointAligner{}
	}
	if cfg.Placements == nil {
		cfg.Placements = DefaultPlacements()
	}
	return &Adapter{
		cfg:       cfg,
		placement: cfg.Placements.Resolve(cfg.Placement, cfg.Override),
	}
}

// Placement returns the resolved placement.
func (a *Adapter) Placement() Placement { return a.placement }

// SetPoint records the pointer position used when AlignPoint is set.
func (a *Adapter) SetPoint(x, y int) { a.point = &[2]int{x, y} }

// AlignPoint reports whether the adapter aligns to the pointer.
func (a *Adapter) AlignPoint() bool { return a.cfg.AlignPoint }

// Align positions popup against target within viewport. With AlignPoint
// and a recorded pointer, the target is the one-cell rectangle under the
// pointer.
func (a *Adapter) Align(target, popup, viewport dom.Rect) Result {
	if a.cfg.AlignPoint && a.point != nil {
		target = dom.Rect{X: a.point[0], Y: a.point[1], W: 1, H: 1}
	}
	a.last = a.cfg.Aligner.Align(target, popup, a.placement, viewport)
	a.aligned = true
	if a.cfg.OnAlign != nil {
		a.cfg.OnAlign(a.last)
	}
	return a.last
}

// Last returns the most recent result.
func (a *Adapter) Last() (Result, bool) { return a.last, a.aligned }

// PlacementName returns the placement name matching the last result's
// points, falling back to the configured name.
func (a *Adapter) PlacementName() string {
	if a.aligned {
		if name := a.cfg.Placements.NameFor(a.last.Points); name != "" {
			return name
		}
	}
	if name := a.cfg.Placements.NameFor(a.placement.Points); name != "" {
		return name
	}
	return a.cfg.Placement
}
