package cli

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/matzehuels/taskflow/internal/server"
)

// serveCommand creates the serve command that runs the session HTTP API.
func (c *CLI) serveCommand() *cobra.Command {
	var (
		addr    string
		noCache bool
	)

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Run the session HTTP API",
		Long: `Run the session HTTP API.

Sessions are stored in the backend selected by [store] in the config file
(memory, file, redis or mongo). Layouts are cached per [cache].`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return c.runServe(cmd.Context(), addr, noCache)
		},
	}

	cmd.Flags().StringVar(&addr, "addr", "", "listen address (default from config)")
	cmd.Flags().BoolVar(&noCache, "no-cache", false, "disable the layout cache")

	return cmd
}

func (c *CLI) runServe(ctx context.Context, addr string, noCache bool) error {
	cfg, err := c.config()
	if err != nil {
		return err
	}
	if addr == "" {
		addr = cfg.Server.Addr
	}
	opts, err := cfg.LayoutOptions()
	if err != nil {
		return err
	}

	store, err := openStore(ctx, cfg)
	if err != nil {
		return err
	}
	defer store.Close()

	ch, err := c.newCache(ctx, cfg, noCache)
	if err != nil {
		return err
	}
	defer ch.Close()

	srv, err := server.New(server.Options{
		Store:         store,
		Logger:        c.Logger,
		Strategy:      cfg.Layout.Strategy,
		LayoutOptions: opts,
		AutoLayout:    cfg.Layout.Auto,
		Cache:         ch,
		CacheTTL:      cfg.Cache.TTL,
	})
	if err != nil {
		return fmt.Errorf("create server: %w", err)
	}

	c.Logger.Info("session store", "backend", cfg.Store.Backend)
	return srv.ListenAndServe(ctx, addr)
}
