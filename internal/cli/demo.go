package cli

import (
	"io"
	"strconv"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/log"
	"github.com/spf13/cobra"

	"github.com/matzehuels/overlay/pkg/align"
	"github.com/matzehuels/overlay/pkg/dom"
	"github.com/matzehuels/overlay/pkg/trigger"
	"github.com/matzehuels/overlay/pkg/tui"
)

// demoCommand creates the demo command.
func (c *CLI) demoCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "demo",
		Short: "Interactive terminal demo",
		Long: `Run an interactive demo of popup triggers in the terminal.

  File     click menu with a hover submenu
  Help     hover tooltip
  Search   focus popup stretched to the field width
  Modal    click popup behind a closable mask
  canvas   right click for a context menu at the pointer

Mouse, tab/shift+tab, enter and esc drive the triggers. q quits.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			// Logs would tear the alternate screen.
			c.Logger.Debug("starting demo, trigger logs are discarded")
			h := tui.NewHost(tui.Config{Logger: log.New(io.Discard)})
			defer h.Close()
			buildDemo(h)

			p := tea.NewProgram(h,
				tea.WithAltScreen(),
				tea.WithMouseAllMotion(),
				tea.WithReportFocus(),
				tea.WithContext(cmd.Context()),
			)
			_, err := p.Run()
			return err
		},
	}
}

// demo holds the demo's trigger elements.
type demo struct {
	file, help, search, modal, canvas *dom.Node
	triggers                          []*trigger.Trigger
}

// buildDemo lays out the demo elements on h's document and mounts their
// triggers.
func buildDemo(h *tui.Host) *demo {
	body := h.Document().Body()
	d := &demo{}

	title := label("title", appName+" demo  (q to quit)", 1, 0)
	title.SetClassName("title")
	body.AppendChild(title)

	d.file = label("file", "File", 2, 2)
	d.help = label("help", "Help", 9, 2)
	d.search = label("search", "[ Search........ ]", 16, 2)
	d.modal = label("modal", "Modal", 37, 2)
	d.canvas = dom.NewNode("div", "canvas")
	d.canvas.Text = "right click anywhere in this area"
	d.canvas.Rect = dom.Rect{X: 2, Y: 6, W: 44, H: 8}
	body.Append(d.file, d.help, d.search, d.modal, d.canvas)
	h.Focusable(d.file, d.help, d.search, d.modal)

	mount := func(opts trigger.Options, el *dom.Node) *trigger.Trigger {
		t := trigger.New(h.Options(opts))
		t.Mount(el)
		h.Add(t)
		d.triggers = append(d.triggers, t)
		return t
	}

	mount(trigger.Options{
		Action:             []string{"click"},
		PopupPlacement:     "bottomLeft",
		DestroyPopupOnHide: true,
		Popup: func() *dom.Node {
			recent := label("recent", "Recent  >", 0, 2)
			content := menu("file-menu", "New", "Open", "", "")
			content.AppendChild(recent)
			content.AppendChild(item("save", "Save", 3))
			mount(trigger.Options{
				Action:         []string{"hover"},
				PopupPlacement: "rightTop",
				Popup: func() *dom.Node {
					return menu("recent-menu", "notes.txt", "todo.md")
				},
			}, recent)
			return content
		},
	}, d.file)

	mount(trigger.Options{
		Action:          []string{"hover"},
		PopupPlacement:  "bottom",
		MouseEnterDelay: 200 * time.Millisecond,
		Popup: func() *dom.Node {
			return label("help-tip", "hover, click, focus, context menu", 0, 0)
		},
	}, d.help)

	mount(trigger.Options{
		Action:         []string{"focus"},
		PopupPlacement: "bottomLeft",
		Stretch:        align.Stretch{MinWidth: true},
		Popup: func() *dom.Node {
			return menu("search-results", "popup", "placement", "portal")
		},
	}, d.search)

	mount(trigger.Options{
		Action:         []string{"click"},
		PopupPlacement: "bottom",
		Mask:           true,
		MaskClosable:   trigger.Bool(true),
		Popup: func() *dom.Node {
			return menu("modal-body", "Click the mask", "or press esc")
		},
	}, d.modal)

	mount(trigger.Options{
		Action:         []string{"contextMenu"},
		PopupPlacement: "bottomLeft",
		AlignPoint:     true,
		Popup: func() *dom.Node {
			return menu("canvas-menu", "Cut", "Copy", "Paste")
		},
	}, d.canvas)

	return d
}

// label creates a one-line text node at x, y.
func label(id, text string, x, y int) *dom.Node {
	n := dom.NewNode("span", id)
	n.Text = text
	n.Rect = dom.Rect{X: x, Y: y, W: len(text), H: 1}
	return n
}

func item(id, text string, row int) *dom.Node {
	return label(id, text, 0, row)
}

// menu stacks items in a popup panel. An empty item reserves its row.
func menu(id string, items ...string) *dom.Node {
	content := dom.NewNode("div", id)
	w := 0
	for _, it := range items {
		w = max(w, len(it))
	}
	for i, it := range items {
		if it == "" {
			continue
		}
		content.AppendChild(item(id+"-"+strconv.Itoa(i), it, i))
	}
	content.Rect = dom.Rect{W: max(w, 10), H: len(items)}
	return content
}
