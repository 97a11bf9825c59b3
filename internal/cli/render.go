package cli

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"github.com/matzehuels/stormgraph/pkg/pipeline"
	"github.com/matzehuels/stormgraph/pkg/source"
)

// defaultBaseName is the output name when neither -o nor a file source
// suggests one.
const defaultBaseName = "stormgraph"

// renderOpts holds the command-line flags for the render command.
type renderOpts struct {
	output  string // output file path (or base path for multiple outputs)
	formats string // comma-separated: svg, png, json, dot, graphviz
	noCache bool
	refresh bool
	src     sourceFlags
}

// renderCommand creates the render command for writing static outputs.
func (c *CLI) renderCommand() *cobra.Command {
	var ro renderOpts
	opts := c.pipelineOptions()

	cmd := &cobra.Command{
		Use:   "render",
		Short: "Render the storm graph to files",
		Long: `Render the storm graph to one or more files.

The graph is fetched from the configured source, levelled, and relaxed by
the force simulation until it settles. The final frame is written in every
requested format.

Formats:
  svg       final frame as SVG (default)
  png       final frame rasterized
  json      scene with positions, transform and selection
  dot       Graphviz source
  graphviz  SVG laid out by Graphviz (no simulation)

Fetched graphs and artifacts are cached locally for faster subsequent runs.`,
		Example: `  stormgraph render
  stormgraph render --file storms.yaml -f svg,png -o out/storms
  stormgraph render --sqlite storms.db --highlight Boston`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			opts.Formats = parseFormats(ro.formats)
			opts.Refresh = ro.refresh
			return c.runRender(cmd.Context(), ro, opts)
		},
	}

	cmd.Flags().StringVarP(&ro.output, "output", "o", "", "output file or base path")
	cmd.Flags().StringVarP(&ro.formats, "format", "f", "", "output formats: "+strings.Join(pipeline.FormatNames(), ", ")+" (comma-separated)")
	cmd.Flags().BoolVar(&ro.noCache, "no-cache", false, "disable caching")
	cmd.Flags().BoolVar(&ro.refresh, "refresh", false, "refetch even when a cached graph exists")
	cmd.Flags().StringVar(&opts.Highlight, "highlight", "", "city drawn as last selected")
	cmd.Flags().BoolVar(&opts.Detailed, "detailed", false, "include storm counts in DOT output")
	cmd.Flags().StringVar(&opts.RootID, "root", opts.RootID, "root city id")
	cmd.Flags().Float64Var(&opts.Width, "width", opts.Width, "frame width")
	cmd.Flags().Float64Var(&opts.Height, "height", opts.Height, "frame height")
	cmd.Flags().Uint64Var(&opts.Seed, "seed", opts.Seed, "random seed for initial positions")
	ro.src.register(cmd)

	return cmd
}

// runRender executes the pipeline and writes one file per format.
func (c *CLI) runRender(ctx context.Context, ro renderOpts, opts pipeline.Options) error {
	if err := pipeline.ValidateFormats(opts.Formats); err != nil {
		return err
	}

	src, err := c.newSource(&ro.src)
	if err != nil {
		return err
	}

	runner, err := c.newRunner(ctx, ro.noCache)
	if err != nil {
		return fmt.Errorf("initialize runner: %w", err)
	}
	defer runner.Close()

	spinner := newSpinnerWithContext(ctx, "Rendering storm graph from "+src.Name()+"...")
	spinner.Start()

	result, err := runner.Execute(ctx, src, opts)
	if err != nil {
		spinner.StopWithError("Render failed")
		return err
	}
	spinner.Stop()

	if ctx.Err() != nil {
		return ctx.Err()
	}

	exact := ro.output != "" && len(opts.Formats) == 1
	paths, err := writeArtifacts(result.Artifacts, opts.Formats, basePath(ro.output, src, opts.Formats), exact)
	if err != nil {
		return err
	}

	printSuccess("Rendered %d %s", len(paths), plural(len(paths), "file", "files"))
	for _, p := range paths {
		printFile(p)
	}
	printStats(result.Stats.NodeCount, result.Stats.EdgeCount, result.CacheInfo.FetchHit && result.CacheInfo.RenderHit)
	if result.Stats.Steps > 0 {
		printDetail("settled after %d steps", result.Stats.Steps)
	}
	printNewline()
	printNextStep("Explore", "stormgraph serve")
	return nil
}

// basePath returns the path, without extension, that outputs are written to.
// A single format with an explicit -o uses -o as given.
func basePath(output string, src source.Source, formats []string) string {
	if output != "" {
		if len(formats) == 1 {
			return output
		}
		return strings.TrimSuffix(output, filepath.Ext(output))
	}
	if f, ok := src.(*source.File); ok {
		p := f.Path()
		return strings.TrimSuffix(p, filepath.Ext(p))
	}
	return defaultBaseName
}

// writeArtifacts writes each format's bytes under base and returns the
// written paths in format order. With exact set, base is used as the path
// of the single output.
func writeArtifacts(artifacts map[string][]byte, formats []string, base string, exact bool) ([]string, error) {
	paths := make([]string, 0, len(formats))
	for _, format := range formats {
		data, ok := artifacts[format]
		if !ok {
			return paths, fmt.Errorf("missing %s output", format)
		}
		path := base
		if !exact {
			path = base + extension(format)
		}
		if dir := filepath.Dir(path); dir != "." {
			if err := os.MkdirAll(dir, 0o755); err != nil {
				return paths, fmt.Errorf("create %s: %w", dir, err)
			}
		}
		if err := os.WriteFile(path, data, 0o644); err != nil {
			return paths, fmt.Errorf("write %s: %w", path, err)
		}
		paths = append(paths, path)
	}
	return paths, nil
}

func extension(format string) string {
	if f, ok := pipeline.LookupFormat(format); ok {
		return f.Extension
	}
	return "." + format
}

func plural(n int, one, many string) string {
	if n == 1 {
		return one
	}
	return many
}
