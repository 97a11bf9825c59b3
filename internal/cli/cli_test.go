package cli

import (
	"bytes"
	"context"
	"io"
	"os"
	"path/filepath"
	"slices"
	"strings"
	"testing"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/log"

	"github.com/matzehuels/stormgraph/pkg/config"
	"github.com/matzehuels/stormgraph/pkg/layout"
	"github.com/matzehuels/stormgraph/pkg/pipeline"
	"github.com/matzehuels/stormgraph/pkg/selection"
	"github.com/matzehuels/stormgraph/pkg/source"
)

const stormJSON = `{
  "nodes": [{"id": "Root"}, {"id": "Austin"}, {"id": "Boston"}, {"id": "Chicago"}],
  "edges": [
    {"source": "Root", "target": "Austin"},
    {"source": "Root", "target": "Boston"},
    {"source": "Austin", "target": "Chicago", "label": "3 storm(s)", "weight": 3}
  ]
}`

func writeGraphFile(t *testing.T) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "storms.json")
	if err := os.WriteFile(path, []byte(stormJSON), 0o644); err != nil {
		t.Fatal(err)
	}
	return path
}

func newTestCLI() *CLI {
	c := New(io.Discard, LogInfo)
	c.cfg = config.Default()
	c.cfg.Cache.Kind = config.CacheNone
	return c
}

func TestParseFormats(t *testing.T) {
	tests := []struct {
		in   string
		want []string
	}{
		{"", []string{pipeline.FormatSVG}},
		{"svg", []string{"svg"}},
		{"svg, png,json", []string{"svg", "png", "json"}},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			if got := parseFormats(tt.in); !slices.Equal(got, tt.want) {
				t.Errorf("parseFormats(%q) = %v, want %v", tt.in, got, tt.want)
			}
		})
	}
}

func TestSourceFlagsApply(t *testing.T) {
	tests := []struct {
		name  string
		flags sourceFlags
		check func(t *testing.T, cfg *config.Config)
	}{
		{
			name:  "file implies file source",
			flags: sourceFlags{file: "storms.yaml"},
			check: func(t *testing.T, cfg *config.Config) {
				if cfg.Source.Kind != config.SourceFile || cfg.Source.Path != "storms.yaml" {
					t.Errorf("source = %+v", cfg.Source)
				}
			},
		},
		{
			name:  "sqlite with limit",
			flags: sourceFlags{sqlite: "storms.db", limit: 25},
			check: func(t *testing.T, cfg *config.Config) {
				if cfg.Source.Kind != config.SourceSQLite || cfg.Source.SQLite.Path != "storms.db" {
					t.Errorf("source = %+v", cfg.Source)
				}
				if cfg.Source.SQLite.Limit != 25 || cfg.Source.Mongo.Limit != 25 {
					t.Errorf("limit not applied: %+v", cfg.Source)
				}
			},
		},
		{
			name:  "explicit kind wins",
			flags: sourceFlags{mongo: "mongodb://localhost", kind: config.SourceKusto, cluster: "https://help.kusto.windows.net"},
			check: func(t *testing.T, cfg *config.Config) {
				if cfg.Source.Kind != config.SourceKusto {
					t.Errorf("kind = %q", cfg.Source.Kind)
				}
				if cfg.Source.Mongo.URI != "mongodb://localhost" {
					t.Errorf("mongo uri = %q", cfg.Source.Mongo.URI)
				}
				if cfg.Source.Kusto.Cluster != "https://help.kusto.windows.net" {
					t.Errorf("cluster = %q", cfg.Source.Kusto.Cluster)
				}
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := config.Default()
			tt.flags.apply(cfg)
			tt.check(t, cfg)
		})
	}
}

func TestBasePath(t *testing.T) {
	file, err := source.NewFile("data/storms.yaml")
	if err != nil {
		t.Fatal(err)
	}
	kusto, err := source.NewKusto(source.KustoOptions{Cluster: "https://help.kusto.windows.net"})
	if err != nil {
		t.Fatal(err)
	}

	tests := []struct {
		name    string
		output  string
		src     source.Source
		formats []string
		want    string
	}{
		{"single format keeps output", "out/graph.svg", kusto, []string{"svg"}, "out/graph.svg"},
		{"multiple formats strip extension", "out/graph.svg", kusto, []string{"svg", "png"}, "out/graph"},
		{"file source", "", file, []string{"svg"}, "data/storms"},
		{"default", "", kusto, []string{"svg"}, defaultBaseName},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := basePath(tt.output, tt.src, tt.formats); got != tt.want {
				t.Errorf("basePath() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestWriteArtifacts(t *testing.T) {
	dir := t.TempDir()
	artifacts := map[string][]byte{
		pipeline.FormatSVG:      []byte("<svg/>"),
		pipeline.FormatJSON:     []byte("{}"),
		pipeline.FormatGraphviz: []byte("<svg/>"),
	}

	paths, err := writeArtifacts(artifacts, []string{"svg", "json", "graphviz"}, filepath.Join(dir, "nested", "storms"), false)
	if err != nil {
		t.Fatal(err)
	}
	want := []string{
		filepath.Join(dir, "nested", "storms.svg"),
		filepath.Join(dir, "nested", "storms.scene.json"),
		filepath.Join(dir, "nested", "storms.graphviz.svg"),
	}
	if !slices.Equal(paths, want) {
		t.Fatalf("paths = %v, want %v", paths, want)
	}
	for _, p := range paths {
		if _, err := os.Stat(p); err != nil {
			t.Errorf("missing %s: %v", p, err)
		}
	}

	exact, err := writeArtifacts(artifacts, []string{"svg"}, filepath.Join(dir, "graph.out"), true)
	if err != nil {
		t.Fatal(err)
	}
	if exact[0] != filepath.Join(dir, "graph.out") {
		t.Errorf("exact path = %q", exact[0])
	}

	if _, err := writeArtifacts(artifacts, []string{"png"}, filepath.Join(dir, "x"), false); err == nil {
		t.Error("expected error for missing format")
	}
}

func TestRunRender(t *testing.T) {
	c := newTestCLI()
	out := filepath.Join(t.TempDir(), "storms")

	opts := c.pipelineOptions()
	opts.Formats = []string{pipeline.FormatSVG, pipeline.FormatDOT}
	opts.Render.Simulation.MaxSteps = 20

	ro := renderOpts{output: out, noCache: true, src: sourceFlags{file: writeGraphFile(t)}}
	if err := c.runRender(context.Background(), ro, opts); err != nil {
		t.Fatal(err)
	}

	svg, err := os.ReadFile(out + ".svg")
	if err != nil {
		t.Fatal(err)
	}
	if !bytes.Contains(svg, []byte("Chicago")) {
		t.Error("svg missing city label")
	}
	dot, err := os.ReadFile(out + ".dot")
	if err != nil {
		t.Fatal(err)
	}
	if !bytes.Contains(dot, []byte("digraph")) {
		t.Error("dot output missing digraph")
	}
}

func TestRunRenderBadFormat(t *testing.T) {
	c := newTestCLI()
	opts := c.pipelineOptions()
	opts.Formats = []string{"pdf"}

	err := c.runRender(context.Background(), renderOpts{src: sourceFlags{file: writeGraphFile(t)}}, opts)
	if err == nil {
		t.Fatal("expected error for unsupported format")
	}
}

func TestRunLayoutJSON(t *testing.T) {
	c := newTestCLI()
	out := filepath.Join(t.TempDir(), "layout.json")

	opts := c.pipelineOptions()
	if err := c.runLayout(context.Background(), &sourceFlags{file: writeGraphFile(t)}, true, out, opts); err != nil {
		t.Fatal(err)
	}
	data, err := os.ReadFile(out)
	if err != nil {
		t.Fatal(err)
	}
	for _, want := range []string{`"hierarchical": true`, `"max_level": 2`, `"Chicago"`} {
		if !strings.Contains(string(data), want) {
			t.Errorf("layout json missing %s", want)
		}
	}
}

func TestLayoutTable(t *testing.T) {
	lay := layout.Result{
		RootID: "Root",
		Nodes: []layout.Node{
			{ID: "Root", Level: 0, Subtree: layout.NoSubtree},
			{ID: "Austin", Level: 1, Subtree: 0},
		},
		Hierarchical: true,
		SubtreeCount: 1,
		MaxLevel:     1,
	}
	out := layoutTable(lay)
	for _, want := range []string{"Level", "Root", "Austin"} {
		if !strings.Contains(out, want) {
			t.Errorf("table missing %q:\n%s", want, out)
		}
	}
	if subtreeLabel(lay, "Root") != "-" || subtreeLabel(lay, "Austin") != "0" {
		t.Error("unexpected subtree labels")
	}
}

func TestSelectionLines(t *testing.T) {
	s := selection.Snapshot{
		AllCities:    []string{"Austin", "Boston", "Chicago"},
		Selected:     []string{"Austin", "Chicago"},
		LastSelected: "Chicago",
	}
	if got := selectionLines(s); !slices.Equal(got, []string{"Chicago", "Austin"}) {
		t.Errorf("selectionLines() = %v", got)
	}
	if got := selectionLines(selection.Snapshot{}); len(got) != 0 {
		t.Errorf("empty snapshot gave %v", got)
	}
}

func runeKey(s string) tea.KeyMsg {
	return tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(s)}
}

func TestCityPicker(t *testing.T) {
	state := selection.New()
	state.Initialize([]string{"Chicago", "Austin", "Boston"})

	var m tea.Model = NewCityPickerModel(state)
	press := func(msg tea.KeyMsg) {
		m, _ = m.Update(msg)
	}

	// Austin starts selected; move to Boston and toggle it on.
	press(tea.KeyMsg{Type: tea.KeyDown})
	press(tea.KeyMsg{Type: tea.KeySpace, Runes: []rune{' '}})
	if got := state.LastSelected(); got != "Boston" {
		t.Fatalf("last selected = %q, want Boston", got)
	}

	// Select Austin again to make it last selected.
	press(tea.KeyMsg{Type: tea.KeyUp})
	press(runeKey("s"))
	if got := state.LastSelected(); got != "Austin" {
		t.Fatalf("last selected = %q, want Austin", got)
	}

	press(runeKey("a"))
	if got := state.Selected(); len(got) != 3 {
		t.Fatalf("toggle all selected %v", got)
	}
	press(runeKey("a"))
	if got := state.Selected(); len(got) != 0 {
		t.Fatalf("second toggle all left %v", got)
	}

	if view := m.View(); !strings.Contains(view, "0 of 3 selected") {
		t.Errorf("view missing count:\n%s", view)
	}

	press(tea.KeyMsg{Type: tea.KeyEnter})
	if !m.(CityPickerModel).Confirmed {
		t.Error("enter should confirm")
	}
}

func TestCityPickerFilter(t *testing.T) {
	state := selection.New()
	state.Initialize([]string{"Austin", "Boston", "Chicago"})

	var m tea.Model = NewCityPickerModel(state)
	m, _ = m.Update(runeKey("/"))
	m, _ = m.Update(runeKey("chi"))
	m, _ = m.Update(tea.KeyMsg{Type: tea.KeyEnter})
	m, _ = m.Update(tea.KeyMsg{Type: tea.KeySpace, Runes: []rune{' '}})

	if !state.IsSelected("Chicago") {
		t.Errorf("filtered toggle missed Chicago: %v", state.Selected())
	}
	if m.(CityPickerModel).Confirmed {
		t.Error("enter inside the filter should not confirm")
	}
}

func TestLogHooks(t *testing.T) {
	var buf bytes.Buffer
	h := &logHooks{logger: newLogger(&buf, log.DebugLevel)}
	ctx := context.Background()

	h.OnFetchComplete(ctx, "file", 3, 2, 0, nil)
	h.OnCacheHit(ctx, "graph")
	h.OnSimulationStop(ctx, "graph", "gen-1", 42, 0, nil)

	for _, want := range []string{"fetch complete", "cache hit", "simulation stopped"} {
		if !strings.Contains(buf.String(), want) {
			t.Errorf("log missing %q:\n%s", want, buf.String())
		}
	}
}

func TestRootCommandRegistersSubcommands(t *testing.T) {
	root := New(io.Discard, LogInfo).RootCommand()
	for _, name := range []string{"render", "serve", "layout", "cities", "cache", "config", "completion"} {
		if cmd, _, err := root.Find([]string{name}); err != nil || cmd.Name() != name {
			t.Errorf("missing subcommand %q", name)
		}
	}
}

func TestCompletionCommand(t *testing.T) {
	t.Setenv("XDG_CONFIG_HOME", t.TempDir())

	for _, shell := range []string{"bash", "zsh", "fish", "powershell"} {
		t.Run(shell, func(t *testing.T) {
			var buf bytes.Buffer
			root := New(io.Discard, LogInfo).RootCommand()
			root.SetOut(&buf)
			root.SetArgs([]string{"completion", shell})
			if err := root.Execute(); err != nil {
				t.Fatalf("completion %s: %v", shell, err)
			}
			if !strings.Contains(buf.String(), "stormgraph") {
				t.Errorf("%s script does not mention the command name", shell)
			}
		})
	}

	root := New(io.Discard, LogInfo).RootCommand()
	root.SetOut(io.Discard)
	root.SetArgs([]string{"completion", "tcsh"})
	if err := root.Execute(); err == nil {
		t.Error("expected error for unsupported shell")
	}
}
