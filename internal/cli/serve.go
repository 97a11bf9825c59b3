package cli

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/matzehuels/stormgraph/internal/server"
	"github.com/matzehuels/stormgraph/pkg/bridge"
	errs "github.com/matzehuels/stormgraph/pkg/errors"
)

// serveCommand creates the serve command for the live graph.
func (c *CLI) serveCommand() *cobra.Command {
	var (
		addr    string
		mode    string
		noCache bool
		src     sourceFlags
	)

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve the interactive storm graph",
		Long: `Serve the storm graph as a live page.

The simulation runs on the server and every tick is pushed to the browser.
Clicking a city toggles it in the selection (or selects it, with
--mode select); the most recently selected city is drawn highlighted.

When the source is a file, edits to the file reload the graph.`,
		Example: `  stormgraph serve
  stormgraph serve --file storms.json --addr :9000 --mode select`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return c.runServe(cmd.Context(), addr, mode, noCache, &src)
		},
	}

	cmd.Flags().StringVar(&addr, "addr", "", "listen address (default from config)")
	cmd.Flags().StringVar(&mode, "mode", "", "click mode: toggle, select (default from config)")
	cmd.Flags().BoolVar(&noCache, "no-cache", false, "disable caching")
	src.register(cmd)

	return cmd
}

func (c *CLI) runServe(ctx context.Context, addr, mode string, noCache bool, sf *sourceFlags) error {
	cfg := c.config()
	if addr != "" {
		cfg.Server.Addr = addr
	}
	if mode != "" {
		if _, ok := bridge.ParseMode(mode); !ok {
			return errs.New(errs.ErrCodeInvalidInput, "unknown click mode %q (want toggle or select)", mode)
		}
		cfg.Server.Mode = mode
	}

	src, err := c.newSource(sf)
	if err != nil {
		return err
	}

	runner, err := c.newRunner(ctx, noCache)
	if err != nil {
		return fmt.Errorf("initialize runner: %w", err)
	}
	defer runner.Close()

	srv, err := server.New(runner, src, server.Options{
		Addr:     cfg.Server.Addr,
		Mode:     cfg.ClickMode(),
		Render:   cfg.RenderOptions(),
		Pipeline: c.pipelineOptions(),
		Logger:   c.Logger,
	})
	if err != nil {
		return err
	}
	defer srv.Close()

	printInfo("Serving on %s", StyleLink.Render("http://"+cfg.Server.Addr))
	printDetail("press ctrl+c to stop")
	return srv.Run(ctx)
}
