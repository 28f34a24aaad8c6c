package cli

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/matzehuels/groupfit/pkg/server"
)

// serveCommand creates the serve command, which runs the HTTP API until the
// context is cancelled.
func (c *CLI) serveCommand() *cobra.Command {
	var (
		addr    string
		noCache bool
	)

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Run the HTTP API",
		Long: `Run the HTTP API.

Endpoints live under /api: healthz, fit, render and diagrams. The listen
address defaults to server.addr from the config (or $PORT). Interrupt to shut
down gracefully.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return c.runServe(cmd.Context(), addr, noCache)
		},
	}

	cmd.Flags().StringVar(&addr, "addr", "", "listen address (default from config)")
	cmd.Flags().BoolVar(&noCache, "no-cache", false, "disable caching")

	return cmd
}

func (c *CLI) runServe(ctx context.Context, addr string, noCache bool) error {
	cfg, err := c.loadConfig()
	if err != nil {
		return err
	}
	serverCfg := cfg.Server
	if addr != "" {
		serverCfg.Addr = addr
	}

	store, err := c.newStore(ctx)
	if err != nil {
		return fmt.Errorf("open store: %w", err)
	}
	defer store.Close()

	runner, err := c.newRunner(ctx, noCache)
	if err != nil {
		return fmt.Errorf("initialize runner: %w", err)
	}
	defer runner.Close()

	printInfo("Listening on %s", StyleLink.Render(serverCfg.Addr))
	printDetail("Store: %s", store.Kind())

	return server.New(store, runner, c.Logger, serverCfg).ListenAndServe(ctx)
}
