package tui

import (
	"strconv"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	xansi "github.com/charmbracelet/x/ansi"
	zone "github.com/lrstanley/bubblezone"

	"github.com/matzehuels/overlay/pkg/dom"
)

// hitMap records which node owns each cell of a frame, in paint order, so
// the topmost node wins like it does on screen.
type hitMap struct {
	w, h  int
	cells []int
	nodes []*dom.Node
}

func newHitMap(w, h int) *hitMap {
	m := &hitMap{w: w, h: h, cells: make([]int, w*h)}
	for i := range m.cells {
		m.cells[i] = -1
	}
	return m
}

// claim gives the cells of r inside clip to n.
func (m *hitMap) claim(n *dom.Node, r, clip dom.Rect) {
	x0, y0 := max(r.X, clip.X, 0), max(r.Y, clip.Y, 0)
	x1, y1 := min(r.Right(), clip.Right(), m.w), min(r.Bottom(), clip.Bottom(), m.h)
	if x0 >= x1 || y0 >= y1 {
		return
	}
	k := len(m.nodes)
	m.nodes = append(m.nodes, n)
	for y := y0; y < y1; y++ {
		for x := x0; x < x1; x++ {
			m.cells[y*m.w+x] = k
		}
	}
}

func intersect(a, b dom.Rect) dom.Rect {
	x0, y0 := max(a.X, b.X), max(a.Y, b.Y)
	x1, y1 := min(a.Right(), b.Right()), min(a.Bottom(), b.Bottom())
	if x1 <= x0 || y1 <= y0 {
		return dom.Rect{X: x0, Y: y0}
	}
	return dom.Rect{X: x0, Y: y0, W: x1 - x0, H: y1 - y0}
}

// zones resolves mouse messages against the last painted frame. Every run
// of cells a node owns on a row is marked as a bubblezone zone; Scan
// strips the markers from the view and records their bounds.
type zones struct {
	m    *zone.Manager
	ids  []string
	node map[string]*dom.Node
}

func newZones() *zones {
	return &zones{m: zone.New(), node: make(map[string]*dom.Node)}
}

// scan marks lines with the owners in hm and returns the scanned view.
func (z *zones) scan(lines []string, hm *hitMap) string {
	z.ids = z.ids[:0]
	clear(z.node)

	var b strings.Builder
	for y, line := range lines {
		if y > 0 {
			b.WriteByte('\n')
		}
		row := hm.cells[y*hm.w : (y+1)*hm.w]
		for x := 0; x < hm.w; {
			end := x + 1
			for end < hm.w && row[end] == row[x] {
				end++
			}
			seg := xansi.Cut(line, x, end)
			if k := row[x]; k >= 0 {
				id := "cell-" + strconv.Itoa(len(z.ids))
				z.ids = append(z.ids, id)
				z.node[id] = hm.nodes[k]
				seg = z.m.Mark(id, seg)
			}
			b.WriteString(seg)
			x = end
		}
	}
	return z.m.Scan(b.String())
}

// at returns the node painted under msg. Zones are recorded
// asynchronously after Scan, and a node may have been hidden or removed
// since it was painted; both report false.
func (z *zones) at(msg tea.MouseMsg) (*dom.Node, bool) {
	for _, id := range z.ids {
		info := z.m.Get(id)
		if info == nil || info.IsZero() || !info.InBounds(msg) {
			continue
		}
		n := z.node[id]
		if !n.Attached() || hiddenChain(n) {
			return nil, false
		}
		return n, true
	}
	return nil, false
}

func (z *zones) close() { z.m.Close() }

func hiddenChain(n *dom.Node) bool {
	for ; n != nil; n = n.Parent() {
		if n.Hidden {
			return true
		}
	}
	return false
}
