// Package cli implements the stormgraph command-line interface.
//
// Commands fetch storm summaries from the configured source, render them
// as static files or serve them live, and manage the local cache. The CLI
// is built using cobra and logs through charmbracelet/log.
//
// # Commands
//
//   - render: Write SVG, PNG, scene JSON, DOT or Graphviz SVG files
//   - serve: Host the interactive graph over HTTP
//   - layout: Print the level and subtree of every city
//   - cities: Pick cities interactively and print the selection
//   - cache: Manage the graph and artifact cache
//   - config: Show or create the configuration file
//
// # Configuration
//
// Settings come from $XDG_CONFIG_HOME/stormgraph/config.toml (or --config);
// source flags override the file.
//
// # Logging
//
// All commands support --verbose (-v) for debug-level logging, which also
// reports pipeline, simulation and cache events.
package cli

import (
	"context"
	"io"
	"strings"

	"github.com/charmbracelet/log"
	"github.com/spf13/cobra"

	"github.com/matzehuels/stormgraph/pkg/buildinfo"
	"github.com/matzehuels/stormgraph/pkg/config"
	"github.com/matzehuels/stormgraph/pkg/graph"
	"github.com/matzehuels/stormgraph/pkg/observability"
	"github.com/matzehuels/stormgraph/pkg/pipeline"
	"github.com/matzehuels/stormgraph/pkg/source"
)

// =============================================================================
// Constants
// =============================================================================

// appName is the application name used for display.
const appName = "stormgraph"

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

	configPath string
	cfg        *config.Config
}

// New creates a new CLI instance with a default logger.
func New(w io.Writer, level log.Level) *CLI {
	return &CLI{Logger: newLogger(w, level)}
}

// SetLogLevel updates the logger's level. At debug level the logger also
// receives pipeline, simulation, cache and HTTP events.
func (c *CLI) SetLogLevel(level log.Level) {
	c.Logger.SetLevel(level)
	if level <= log.DebugLevel {
		registerHooks(c.Logger)
	}
}

// RootCommand creates the root cobra command with all subcommands registered.
func (c *CLI) RootCommand() *cobra.Command {
	root := &cobra.Command{
		Use:           appName,
		Short:         "Stormgraph draws storm paths between cities as a live graph",
		Long:          `Stormgraph fetches storm event summaries, lays out the cities they connect as a levelled force-directed graph, and renders it to files or a live page where cities can be selected.`,
		Version:       buildinfo.Get().Version,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			cmd.SetContext(withLogger(cmd.Context(), c.Logger))
			return c.loadConfig()
		},
	}

	root.SetVersionTemplate(buildinfo.Template())
	root.PersistentFlags().StringVar(&c.configPath, "config", "", "config file (default: "+config.Path()+")")

	root.AddCommand(c.renderCommand())
	root.AddCommand(c.serveCommand())
	root.AddCommand(c.layoutCommand())
	root.AddCommand(c.citiesCommand())
	root.AddCommand(c.cacheCommand())
	root.AddCommand(c.configCommand())
	root.AddCommand(c.completionCommand())

	return root
}

func (c *CLI) loadConfig() error {
	if c.cfg != nil {
		return nil
	}
	cfg, err := config.Load(c.configPath)
	if err != nil {
		return err
	}
	c.cfg = cfg
	return nil
}

// config returns the loaded configuration, or the defaults when a command
// runs without the root's pre-run hook (as in tests).
func (c *CLI) config() *config.Config {
	if c.cfg == nil {
		c.cfg = config.Default()
	}
	return c.cfg
}

// =============================================================================
// Source Flags
// =============================================================================

// sourceFlags override the configured data source.
type sourceFlags struct {
	kind    string
	file    string
	cluster string
	sqlite  string
	mongo   string
	limit   int
}

func (f *sourceFlags) register(cmd *cobra.Command) {
	cmd.Flags().StringVarP(&f.kind, "source", "s", "", "data source: kusto, sqlite, mongo, file (default from config)")
	cmd.Flags().StringVar(&f.file, "file", "", "graph file (JSON or YAML); implies --source file")
	cmd.Flags().StringVar(&f.cluster, "cluster", "", "Kusto cluster URL")
	cmd.Flags().StringVar(&f.sqlite, "sqlite", "", "SQLite database path; implies --source sqlite")
	cmd.Flags().StringVar(&f.mongo, "mongo", "", "MongoDB URI; implies --source mongo")
	cmd.Flags().IntVar(&f.limit, "limit", 0, "maximum number of routes (sqlite, mongo)")
}

// apply copies the flags onto cfg.
func (f *sourceFlags) apply(cfg *config.Config) {
	switch {
	case f.file != "":
		cfg.Source.Kind = config.SourceFile
		cfg.Source.Path = f.file
	case f.sqlite != "":
		cfg.Source.Kind = config.SourceSQLite
		cfg.Source.SQLite.Path = f.sqlite
	case f.mongo != "":
		cfg.Source.Kind = config.SourceMongo
		cfg.Source.Mongo.URI = f.mongo
	}
	if f.kind != "" {
		cfg.Source.Kind = f.kind
	}
	if f.cluster != "" {
		cfg.Source.Kusto.Cluster = f.cluster
	}
	if f.limit > 0 {
		cfg.Source.SQLite.Limit = f.limit
		cfg.Source.Mongo.Limit = f.limit
	}
}

// newSource builds the data source after applying the flags.
func (c *CLI) newSource(f *sourceFlags) (source.Source, error) {
	cfg := c.config()
	f.apply(cfg)
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg.NewSource()
}

// =============================================================================
// Runner Factory
// =============================================================================

// newRunner creates a pipeline runner for CLI use.
func (c *CLI) newRunner(ctx context.Context, noCache bool) (*pipeline.Runner, error) {
	cfg := c.config()
	if noCache {
		return pipeline.NewRunner(nil, nil, c.Logger), nil
	}
	cache, err := cfg.NewCache(ctx)
	if err != nil {
		c.Logger.Warn("cache unavailable, continuing without", "kind", cfg.Cache.Kind, "err", err)
		return pipeline.NewRunner(nil, nil, c.Logger), nil
	}
	return pipeline.NewRunner(cache, cfg.Keyer(), c.Logger), nil
}

// fetch loads a graph through the runner with a spinner.
func (c *CLI) fetch(ctx context.Context, runner *pipeline.Runner, src source.Source, refresh bool) (graph.Graph, bool, error) {
	prog := newProgress(loggerFromContext(ctx))
	spinner := newSpinnerWithContext(ctx, "Fetching storm events from "+src.Name()+"...")
	spinner.Start()
	g, hit, err := runner.FetchWithCacheInfo(ctx, src, pipeline.Options{Refresh: refresh})
	if err != nil {
		spinner.StopWithError("Fetch failed")
		return graph.Graph{}, false, err
	}
	spinner.Stop()
	prog.done("Fetched storm events", "cities", len(g.Nodes), "cached", hit)
	return g, hit, nil
}

// =============================================================================
// Options Helpers
// =============================================================================

// pipelineOptions returns pipeline options seeded from the config.
func (c *CLI) pipelineOptions() pipeline.Options {
	cfg := c.config()
	return pipeline.Options{
		RootID: cfg.Layout.RootID,
		Width:  cfg.View.Width,
		Height: cfg.View.Height,
		Seed:   cfg.View.Seed,
		Render: cfg.RenderOptions(),
	}
}

// parseFormats parses a comma-separated format string into a slice.
func parseFormats(s string) []string {
	if s == "" {
		return []string{pipeline.FormatSVG}
	}
	parts := strings.Split(s, ",")
	for i := range parts {
		parts[i] = strings.TrimSpace(parts[i])
	}
	return parts
}

// registerHooks routes observability events to the logger.
func registerHooks(l *log.Logger) {
	h := &logHooks{logger: l}
	observability.SetPipelineHooks(h)
	observability.SetSimulationHooks(h)
	observability.SetCacheHooks(h)
	observability.SetHTTPHooks(h)
}
