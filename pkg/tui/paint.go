package tui

import (
	"strings"

	"github.com/charmbracelet/lipgloss"
	xansi "github.com/charmbracelet/x/ansi"

	"github.com/matzehuels/overlay/pkg/dom"
)

// =============================================================================
// Styles
// =============================================================================

var (
	colorCyan  = lipgloss.Color("36")
	colorWhite = lipgloss.Color("255")
	colorGray  = lipgloss.Color("245")
	colorDim   = lipgloss.Color("240")
	colorPanel = lipgloss.Color("236")
)

// Styles decide how node kinds are painted.
type Styles struct {
	Text    lipgloss.Style
	Trigger lipgloss.Style
	Active  lipgloss.Style
	Focused lipgloss.Style
	Popup   lipgloss.Style
	Mask    lipgloss.Style
}

// DefaultStyles returns the host's default palette.
func DefaultStyles() Styles {
	return Styles{
		Text:    lipgloss.NewStyle().Foreground(colorGray),
		Trigger: lipgloss.NewStyle().Foreground(colorCyan),
		Active:  lipgloss.NewStyle().Foreground(colorCyan).Bold(true).Reverse(true),
		Focused: lipgloss.NewStyle().Foreground(colorCyan).Underline(true),
		Popup:   lipgloss.NewStyle().Foreground(colorWhite).Background(colorPanel),
		Mask:    lipgloss.NewStyle().Foreground(colorDim).Faint(true),
	}
}

// =============================================================================
// Canvas
// =============================================================================

// canvas is a grid of styled lines painted back to front.
type canvas struct {
	w, h  int
	lines []string
}

func newCanvas(w, h int) *canvas {
	c := &canvas{w: w, h: h, lines: make([]string, h)}
	blank := strings.Repeat(" ", w)
	for i := range c.lines {
		c.lines[i] = blank
	}
	return c
}

// box paints text into r with style, clipped to the canvas.
func (c *canvas) box(r dom.Rect, text string, style lipgloss.Style) {
	if r.Empty() {
		return
	}
	block := style.Width(r.W).Height(r.H).MaxWidth(r.W).MaxHeight(r.H).Render(text)
	c.overlay(strings.Split(block, "\n"), r.X, r.Y, r.W)
}

// overlay writes fg lines at (x, y), cutting the background around them
// cell-accurately.
func (c *canvas) overlay(fg []string, x, y, fgW int) {
	if fgW <= 0 {
		return
	}
	for i, line := range fg {
		row := y + i
		if row < 0 {
			continue
		}
		if row >= c.h {
			break
		}
		left, skip := x, 0
		if left < 0 {
			skip, left = -left, 0
		}
		width := fgW - skip
		if left+width > c.w {
			width = c.w - left
		}
		if width <= 0 {
			continue
		}
		if n := xansi.StringWidth(line); n < fgW {
			line += strings.Repeat(" ", fgW-n)
		}
		line = xansi.Cut(line, skip, skip+width)

		bg := c.lines[row]
		c.lines[row] = xansi.Cut(bg, 0, left) + line + xansi.Cut(bg, left+width, c.w)
	}
}

// dim repaints everything so far with style, keeping the layout.
func (c *canvas) dim(style lipgloss.Style) {
	for i, line := range c.lines {
		c.lines[i] = style.Render(xansi.Strip(line))
	}
}

func (c *canvas) String() string {
	return strings.Join(c.lines, "\n")
}
