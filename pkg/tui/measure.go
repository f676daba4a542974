package tui

import (
	"github.com/charmbracelet/lipgloss"

	"github.com/matzehuels/overlay/pkg/dom"
)

// LipglossMeasurer measures nodes as the host paints them. A node with a
// layout rectangle keeps its size; otherwise its text is rendered with
// Style and measured in cells.
type LipglossMeasurer struct {
	Style lipgloss.Style
}

// Measure implements align.Measurer.
func (m LipglossMeasurer) Measure(n *dom.Node) dom.Size {
	if n == nil {
		return dom.Size{}
	}
	if !n.Rect.Empty() {
		return n.Rect.Size()
	}
	if n.Text == "" {
		return dom.Size{}
	}
	w, h := lipgloss.Size(m.Style.Render(n.Text))
	return dom.Size{W: w, H: h}
}
