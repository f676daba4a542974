package cli

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/spf13/cobra"

	"github.com/matzehuels/overlay/internal/server"
	"github.com/matzehuels/overlay/pkg/cache"
)

// serveCommand creates the serve command.
func (c *CLI) serveCommand() *cobra.Command {
	var (
		addr     string
		cacheDir string
	)

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve placements and scenario runs over HTTP",
		Long: `Serve the placement table and headless scenario runs over HTTP.

  GET  /placements          placement table
  GET  /placements/{name}   one placement
  POST /simulate            TOML scenario in, JSON trace out
  POST /graph?format=svg    TOML scenario in, nesting graph out`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			logger := loggerFromContext(cmd.Context())
			var store cache.Cache = cache.NewMemory(0)
			if cacheDir != "" {
				fc, err := cache.NewFileCache(cacheDir)
				if err != nil {
					return err
				}
				store = fc
			}
			defer store.Close()

			srv := &http.Server{
				Addr:              addr,
				Handler:           server.NewRouter(server.Config{Cache: store, Logger: logger}),
				ReadHeaderTimeout: 5 * time.Second,
			}

			errc := make(chan error, 1)
			go func() { errc <- srv.ListenAndServe() }()
			printInfo(cmd.OutOrStdout(), "Listening on http://%s", addr)

			select {
			case err := <-errc:
				return err
			case <-cmd.Context().Done():
			}
			logger.Info("shutting down")
			ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()
			if err := srv.Shutdown(ctx); err != nil {
				return err
			}
			if err := <-errc; !errors.Is(err, http.ErrServerClosed) {
				return err
			}
			return nil
		},
	}

	cmd.Flags().StringVar(&addr, "addr", defaultAddr, "listen address")
	cmd.Flags().StringVar(&cacheDir, "cache-dir", "", "keep rendered graphs in this directory (default: in memory)")
	return cmd
}
