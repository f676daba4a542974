// Package cli implements the overlay command-line interface.
//
// # Commands
//
//   - demo: interactive terminal demo of click, hover, focus and context
//     menu triggers
//   - simulate: run a TOML scenario headlessly and print its trace
//   - placements: list the builtin placement table
//   - graph: render a scenario's trigger nesting as DOT or SVG
//   - serve: expose placements and scenario runs over HTTP
//   - completion: shell completion scripts
//
// # Logging
//
// All commands support --verbose (-v) for debug-level logging. The logger
// is passed through context.Context.
package cli

import (
	"io"

	"github.com/charmbracelet/log"
	"github.com/spf13/cobra"

	"github.com/matzehuels/overlay/pkg/buildinfo"
)

// =============================================================================
// Constants
// =============================================================================

const (
	// appName is the application name used for display.
	appName = "overlay"

	// defaultAddr is the listen address of the serve command.
	defaultAddr = "127.0.0.1:8080"
)

// Log levels exported for use in main.go.
const (
	LogDebug = log.DebugLevel
	LogInfo  = log.InfoLevel
)

// =============================================================================
// CLI - Central CLI State
// =============================================================================

// CLI holds shared state for all commands.
type CLI struct {
	Logger *log.Logger
	out    io.Writer
}

// New creates a new CLI instance with a default logger. Command output
// goes to out.
func New(out, logs io.Writer, level log.Level) *CLI {
	return &CLI{
		Logger: newLogger(logs, level),
		out:    out,
	}
}

// SetLogLevel updates the logger's level.
func (c *CLI) SetLogLevel(level log.Level) {
	c.Logger.SetLevel(level)
}

// RootCommand creates the root cobra command with all subcommands registered.
func (c *CLI) RootCommand() *cobra.Command {
	root := &cobra.Command{
		Use:          appName,
		Short:        "Overlay drives popup triggers in terminal UIs",
		Long:         `Overlay is a popup trigger controller: it decides when popups attached to trigger elements show and hide, where they mount and how they are placed. The CLI runs an interactive demo, replays TOML scenarios and serves both over HTTP.`,
		Version:      buildinfo.Version,
		SilenceUsage: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			cmd.SetContext(withLogger(cmd.Context(), c.Logger))
			return nil
		},
	}

	root.SetVersionTemplate(buildinfo.Template())
	root.SetOut(c.out)

	root.AddCommand(c.demoCommand())
	root.AddCommand(c.simulateCommand())
	root.AddCommand(c.placementsCommand())
	root.AddCommand(c.graphCommand())
	root.AddCommand(c.serveCommand())
	root.AddCommand(c.completionCommand())

	return root
}
