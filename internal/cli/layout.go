package cli

import (
	"context"
	"fmt"
	"os"
	"strconv"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"
	json "github.com/goccy/go-json"
	"github.com/spf13/cobra"

	"github.com/matzehuels/stormgraph/pkg/layout"
	"github.com/matzehuels/stormgraph/pkg/pipeline"
)

// layoutCommand creates the layout command, which prints levels and
// subtrees without running the simulation.
func (c *CLI) layoutCommand() *cobra.Command {
	var (
		output  string
		refresh bool
		noCache bool
		src     sourceFlags
	)
	opts := c.pipelineOptions()

	cmd := &cobra.Command{
		Use:   "layout",
		Short: "Print the level and subtree of every city",
		Long: `Print the level and subtree of every city.

Levels are the longest path from a source city. Subtrees are numbered from
the children of the root city; cities outside every subtree show "-".
With -o the layout is written as JSON instead.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			opts.Refresh = refresh
			return c.runLayout(cmd.Context(), &src, noCache, output, opts)
		},
	}

	cmd.Flags().StringVarP(&output, "output", "o", "", "write layout JSON to this file")
	cmd.Flags().StringVar(&opts.RootID, "root", opts.RootID, "root city id")
	cmd.Flags().BoolVar(&refresh, "refresh", false, "refetch even when a cached graph exists")
	cmd.Flags().BoolVar(&noCache, "no-cache", false, "disable caching")
	src.register(cmd)

	return cmd
}

// runLayout fetches the graph, computes the layout, and prints or writes it.
func (c *CLI) runLayout(ctx context.Context, sf *sourceFlags, noCache bool, output string, opts pipeline.Options) error {
	src, err := c.newSource(sf)
	if err != nil {
		return err
	}

	runner, err := c.newRunner(ctx, noCache)
	if err != nil {
		return fmt.Errorf("initialize runner: %w", err)
	}
	defer runner.Close()

	if err := opts.ValidateAndSetDefaults(); err != nil {
		return err
	}

	g, hit, err := c.fetch(ctx, runner, src, opts.Refresh)
	if err != nil {
		return err
	}
	lay := runner.ComputeLayout(ctx, g, opts)

	if output != "" {
		data, err := json.MarshalIndent(lay, "", "  ")
		if err != nil {
			return fmt.Errorf("encode layout: %w", err)
		}
		if err := os.WriteFile(output, data, 0o644); err != nil {
			return fmt.Errorf("write output %s: %w", output, err)
		}
		printSuccess("Layout complete")
		printFile(output)
		printStats(len(g.Nodes), len(g.Edges), hit)
		return nil
	}

	writeLine(layoutTable(lay))
	printStats(len(g.Nodes), len(g.Edges), hit)
	if !lay.Hierarchical {
		printWarning("root %q not in graph; no subtrees", lay.RootID)
	}
	return nil
}

// layoutTable renders the layout as a table sorted by level.
func layoutTable(lay layout.Result) string {
	headerStyle := lipgloss.NewStyle().Foreground(colorGray).Bold(true)
	var rows [][]string
	for level, ids := range lay.Levels() {
		for _, id := range ids {
			rows = append(rows, []string{strconv.Itoa(level), id, subtreeLabel(lay, id)})
		}
	}
	return table.New().
		Border(lipgloss.RoundedBorder()).
		BorderStyle(lipgloss.NewStyle().Foreground(colorDim)).
		Headers("Level", "City", "Subtree").
		Rows(rows...).
		StyleFunc(func(row, col int) lipgloss.Style {
			if row == -1 {
				return headerStyle
			}
			if col == 1 && row < len(rows) && rows[row][1] == lay.RootID {
				return lipgloss.NewStyle().Foreground(colorCyan).Bold(true)
			}
			return lipgloss.NewStyle()
		}).
		Render()
}

func subtreeLabel(lay layout.Result, id string) string {
	for _, n := range lay.Nodes {
		if n.ID == id && n.HasSubtree() {
			return strconv.Itoa(n.Subtree)
		}
	}
	return "-"
}
