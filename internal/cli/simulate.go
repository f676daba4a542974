package cli

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"
	"github.com/spf13/cobra"

	"github.com/matzehuels/overlay/pkg/errors"
	"github.com/matzehuels/overlay/pkg/scenario"
)

// simulateCommand creates the simulate command.
func (c *CLI) simulateCommand() *cobra.Command {
	var asJSON bool

	cmd := &cobra.Command{
		Use:   "simulate <scenario.toml>",
		Short: "Run a scenario headlessly and print its trace",
		Long: `Run a TOML scenario on a manual clock and print the state of every
trigger after each step.

State markers: # visible, + about to show, - about to hide, . hidden,
x unmounted.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			logger := loggerFromContext(cmd.Context())
			prog := newProgress(logger)

			sc, err := scenario.LoadFile(args[0])
			if err != nil {
				return err
			}
			tr, err := scenario.Run(sc, logger)
			if err != nil && (tr == nil || asJSON) {
				return err
			}

			out := cmd.OutOrStdout()
			if asJSON {
				prog.done(fmt.Sprintf("Ran %d steps", len(sc.Steps)))
				enc := json.NewEncoder(out)
				enc.SetIndent("", "  ")
				return enc.Encode(tr)
			}
			fmt.Fprintln(out, StyleTitle.Render(sc.Name))
			if sc.Description != "" {
				fmt.Fprintln(out, StyleDim.Render(sc.Description))
			}
			fmt.Fprintln(out, renderTrace(sc, tr))
			if err != nil {
				// The trace stops at the failing step.
				printError(out, "%s", errors.UserMessage(err))
				return err
			}
			prog.done(fmt.Sprintf("Ran %d steps", len(sc.Steps)))
			printNotifications(out, sc, tr)
			return nil
		},
	}

	cmd.Flags().BoolVar(&asJSON, "json", false, "print the trace as JSON")
	return cmd
}

// renderTrace lays out a trace as a table with one column per trigger.
func renderTrace(sc *scenario.Scenario, tr *scenario.Trace) string {
	headers := []string{"#", "step", "ms"}
	for _, ts := range sc.Triggers {
		headers = append(headers, ts.Name)
	}

	rows := make([][]string, 0, len(tr.Steps))
	for _, e := range tr.Steps {
		index := "-"
		if e.Index >= 0 {
			index = strconv.Itoa(e.Index)
		}
		row := []string{index, e.Step, strconv.FormatInt(e.Elapsed, 10)}
		for _, s := range e.Triggers {
			row = append(row, stateCell(s))
		}
		rows = append(rows, row)
	}

	return table.New().
		Border(lipgloss.RoundedBorder()).
		BorderStyle(lipgloss.NewStyle().Foreground(colorDim)).
		Headers(headers...).
		Rows(rows...).
		StyleFunc(func(row, col int) lipgloss.Style {
			if row == table.HeaderRow {
				return styleHeader
			}
			return lipgloss.NewStyle().Padding(0, 1)
		}).
		Render()
}

func stateCell(s scenario.Snapshot) string {
	label := s.Symbol() + " " + s.State
	switch s.Symbol() {
	case "#":
		return styleVisible.Render(label)
	case "+", "-":
		return stylePending.Render(label)
	case "x":
		return styleHidden.Render("x unmounted")
	}
	return styleHidden.Render(label)
}

func printNotifications(w io.Writer, sc *scenario.Scenario, tr *scenario.Trace) {
	for _, ts := range sc.Triggers {
		n := tr.Notifications[ts.Name]
		printKeyValue(w, ts.Name, fmt.Sprintf("changes %s  after %s", fmtBools(n.Changes), fmtBools(n.After)))
	}
}

func fmtBools(vs []bool) string {
	parts := make([]string, len(vs))
	for i, v := range vs {
		parts[i] = strconv.FormatBool(v)
	}
	return "[" + strings.Join(parts, " ") + "]"
}

// graphCommand creates the graph command.
func (c *CLI) graphCommand() *cobra.Command {
	var (
		output string
		noRun  bool
	)

	cmd := &cobra.Command{
		Use:   "graph <scenario.toml>",
		Short: "Render a scenario's trigger nesting as DOT or SVG",
		Long: `Render the nesting tree of a scenario's triggers. The scenario runs
first so visible popups are highlighted and unmounted triggers dashed;
--no-run draws the declared tree only.

The output format follows the file extension (.dot or .svg). Without
--output the DOT source is printed.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			logger := loggerFromContext(cmd.Context())

			sc, err := scenario.LoadFile(args[0])
			if err != nil {
				return err
			}
			var tr *scenario.Trace
			if !noRun {
				if tr, err = scenario.Run(sc, logger); err != nil {
					return err
				}
			}
			dot := scenario.ToDOT(sc, tr)

			if output == "" {
				_, err := io.WriteString(cmd.OutOrStdout(), dot)
				return err
			}
			var data []byte
			switch ext := strings.ToLower(filepath.Ext(output)); ext {
			case ".dot":
				data = []byte(dot)
			case ".svg":
				if data, err = scenario.RenderSVG(cmd.Context(), dot); err != nil {
					return err
				}
			default:
				return errors.New(errors.ErrCodeUnsupported, "unsupported output format %q (want .dot or .svg)", ext)
			}
			if err := os.WriteFile(output, data, 0o644); err != nil {
				return fmt.Errorf("write %s: %w", output, err)
			}
			printSuccess(cmd.OutOrStdout(), "Graph written")
			printFile(cmd.OutOrStdout(), output)
			return nil
		},
	}

	cmd.Flags().StringVarP(&output, "output", "o", "", "output file (.dot or .svg)")
	cmd.Flags().BoolVar(&noRun, "no-run", false, "skip running the scenario")
	return cmd
}
