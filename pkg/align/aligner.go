package align

import "github.com/matzehuels/overlay/pkg/dom"

// Result is a computed popup position.
type Result struct {
	Left, Top int

	// Points are the points actually used, after any flip.
	Points [2]string
}

// Aligner computes where a popup goes. Implementations must be pure.
type Aligner interface {
	Align(target, popup dom.Rect, p Placement, viewport dom.Rect) Result
}

// AlignerFunc adapts a function to Aligner.
type AlignerFunc func(target, popup dom.Rect, p Placement, viewport dom.Rect) Result

// Align implements Aligner.
func (f AlignerFunc) Align(target, popup dom.Rect, p Placement, viewport dom.Rect) Result {
	return f(target, popup, p, viewport)
}

// PointAligner aligns point pairs on an integer grid. When an overflow axis
// is enabled and the popup leaves the viewport on that axis, it tries the
// mirrored points and keeps them if they fit, then clamps into the
// viewport.
type PointAligner struct{}

// Align implements Aligner.
func (PointAligner) Align(target, popup dom.Rect, p Placement, viewport dom.Rect) Result {
	res := place(target, popup, p)
	if viewport.Empty() {
		return res
	}
	if p.Overflow.AdjustX && !fitsX(res, popup, viewport) {
		flipped := p
		flipped.Points = [2]string{flipH(p.Points[0]), flipH(p.Points[1])}
		flipped.Offset[0] = -p.Offset[0]
		flipped.TargetOffset[0] = -p.TargetOffset[0]
		if alt := place(target, popup, flipped); fitsX(alt, popup, viewport) {
			res.Left = alt.Left
			res.Points = [2]string{res.Points[0][:1] + alt.Points[0][1:], res.Points[1][:1] + alt.Points[1][1:]}
		}
		res.Left = clamp(res.Left, viewport.X, viewport.Right()-popup.W)
	}
	if p.Overflow.AdjustY && !fitsY(res, popup, viewport) {
		flipped := p
		flipped.Points = [2]string{flipV(res.Points[0]), flipV(res.Points[1])}
		flipped.Offset[1] = -p.Offset[1]
		flipped.TargetOffset[1] = -p.TargetOffset[1]
		if alt := place(target, popup, flipped); fitsY(alt, popup, viewport) {
			res.Top = alt.Top
			res.Points = [2]string{alt.Points[0][:1] + res.Points[0][1:], alt.Points[1][:1] + res.Points[1][1:]}
		}
		res.Top = clamp(res.Top, viewport.Y, viewport.Bottom()-popup.H)
	}
	return res
}

func place(target, popup dom.Rect, p Placement) Result {
	tx, ty := pointOf(target, p.Points[1])
	tx += p.TargetOffset[0]
	ty += p.TargetOffset[1]
	sx, sy := pointOf(dom.Rect{W: popup.W, H: popup.H}, p.Points[0])
	return Result{
		Left:   tx - sx + p.Offset[0],
		Top:    ty - sy + p.Offset[1],
		Points: p.Points,
	}
}

// pointOf returns the coordinates of point code pt on r. Bottom and right
// edges are exclusive, so "br" is one past the last cell.
func pointOf(r dom.Rect, pt string) (int, int) {
	x, y := r.X, r.Y
	if len(pt) != 2 {
		return x, y
	}
	switch pt[0] {
	case 'c':
		y += r.H / 2
	case 'b':
		y += r.H
	}
	switch pt[1] {
	case 'c':
		x += r.W / 2
	case 'r':
		x += r.W
	}
	return x, y
}

func flipH(pt string) string {
	if len(pt) != 2 {
		return pt
	}
	switch pt[1] {
	case 'l':
		return pt[:1] + "r"
	case 'r':
		return pt[:1] + "l"
	}
	return pt
}

func flipV(pt string) string {
	if len(pt) != 2 {
		return pt
	}
	switch pt[0] {
	case 't':
		return "b" + pt[1:]
	case 'b':
		return "t" + pt[1:]
	}
	return pt
}

func fitsX(r Result, popup, viewport dom.Rect) bool {
	return r.Left >= viewport.X && r.Left+popup.W <= viewport.Right()
}

func fitsY(r Result, popup, viewport dom.Rect) bool {
	return r.Top >= viewport.Y && r.Top+popup.H <= viewport.Bottom()
}

func clamp(v, lo, hi int) int {
	if hi < lo {
		return lo
	}
	return max(lo, min(v, hi))
}
