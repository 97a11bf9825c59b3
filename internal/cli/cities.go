package cli

import (
	"context"
	"fmt"
	"strings"

	"github.com/atotto/clipboard"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/cobra"

	"github.com/matzehuels/stormgraph/pkg/selection"
)

// citiesCommand creates the cities command, an interactive picker over the
// selection state.
func (c *CLI) citiesCommand() *cobra.Command {
	var (
		list    bool
		copySel bool
		refresh bool
		noCache bool
		src     sourceFlags
	)

	cmd := &cobra.Command{
		Use:   "cities",
		Short: "Pick cities and print the selection",
		Long: `Fetch the storm graph and pick cities interactively.

The picker starts with the first city selected, like the live graph. On
enter the selected cities are printed one per line with the last selected
city first. With --list the picker is skipped and every city is printed.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return c.runCities(cmd.Context(), &src, list, copySel, refresh, noCache)
		},
	}

	cmd.Flags().BoolVar(&list, "list", false, "print all cities without the picker")
	cmd.Flags().BoolVar(&copySel, "copy", false, "copy the result to the clipboard")
	cmd.Flags().BoolVar(&refresh, "refresh", false, "refetch even when a cached graph exists")
	cmd.Flags().BoolVar(&noCache, "no-cache", false, "disable caching")
	src.register(cmd)

	return cmd
}

func (c *CLI) runCities(ctx context.Context, sf *sourceFlags, list, copySel, refresh, noCache bool) error {
	src, err := c.newSource(sf)
	if err != nil {
		return err
	}
	runner, err := c.newRunner(ctx, noCache)
	if err != nil {
		return fmt.Errorf("initialize runner: %w", err)
	}
	defer runner.Close()

	g, _, err := c.fetch(ctx, runner, src, refresh)
	if err != nil {
		return err
	}

	state := selection.New()
	state.Initialize(g.NodeIDs())

	var cities []string
	if list {
		cities = state.AllCities()
	} else {
		final, err := tea.NewProgram(NewCityPickerModel(state), tea.WithContext(ctx)).Run()
		if err != nil {
			return fmt.Errorf("city picker: %w", err)
		}
		if m, ok := final.(CityPickerModel); !ok || !m.Confirmed {
			printInfo("Cancelled")
			return nil
		}
		cities = selectionLines(state.Snapshot())
	}

	for _, city := range cities {
		writeLine(city)
	}
	if copySel {
		if err := clipboard.WriteAll(strings.Join(cities, "\n")); err != nil {
			printWarning("copy to clipboard: %v", err)
			return nil
		}
		printSuccess("Copied %d %s to clipboard", len(cities), plural(len(cities), "city", "cities"))
	}
	return nil
}

// selectionLines lists the selected cities with the last selected first and
// the rest in sorted order.
func selectionLines(s selection.Snapshot) []string {
	out := make([]string, 0, len(s.Selected))
	if s.LastSelected != "" {
		out = append(out, s.LastSelected)
	}
	for _, c := range s.Selected {
		if c != s.LastSelected {
			out = append(out, c)
		}
	}
	return out
}
