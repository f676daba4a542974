package cli

import (
	"fmt"
	"os"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"
	"github.com/spf13/cobra"

	"github.com/matzehuels/overlay/pkg/align"
)

// placementsCommand creates the placements command.
func (c *CLI) placementsCommand() *cobra.Command {
	var file string

	cmd := &cobra.Command{
		Use:   "placements",
		Short: "List the builtin placement table",
		Long: `List the builtin placements. With --file, placements from a TOML file
are layered over the builtin table first.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ps, err := loadPlacements(file)
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), renderPlacements(ps))
			return nil
		},
	}

	cmd.Flags().StringVarP(&file, "file", "f", "", "TOML file with extra placements")
	return cmd
}

func loadPlacements(file string) (align.Placements, error) {
	ps := align.DefaultPlacements()
	if file == "" {
		return ps, nil
	}
	f, err := os.Open(file)
	if err != nil {
		return nil, fmt.Errorf("open placements: %w", err)
	}
	defer f.Close()
	extra, err := align.LoadPlacements(f)
	if err != nil {
		return nil, err
	}
	return ps.Merge(extra), nil
}

func renderPlacements(ps align.Placements) string {
	rows := make([][]string, 0, len(ps))
	for _, name := range ps.Names() {
		p := ps[name]
		rows = append(rows, []string{
			name,
			p.Points[0],
			p.Points[1],
			fmt.Sprintf("%d,%d", p.Offset[0], p.Offset[1]),
			fmt.Sprintf("%d,%d", p.TargetOffset[0], p.TargetOffset[1]),
			fmtOverflow(p.Overflow),
		})
	}

	return table.New().
		Border(lipgloss.RoundedBorder()).
		BorderStyle(lipgloss.NewStyle().Foreground(colorDim)).
		Headers("Name", "Popup", "Trigger", "Offset", "Target", "Flip").
		Rows(rows...).
		StyleFunc(func(row, col int) lipgloss.Style {
			switch {
			case row == table.HeaderRow:
				return styleHeader
			case col == 0:
				return lipgloss.NewStyle().Foreground(colorCyan).Padding(0, 1)
			}
			return lipgloss.NewStyle().Padding(0, 1)
		}).
		Render()
}

func fmtOverflow(o align.Overflow) string {
	switch {
	case o.AdjustX && o.AdjustY:
		return "x y"
	case o.AdjustX:
		return "x"
	case o.AdjustY:
		return "y"
	}
	return "-"
}
