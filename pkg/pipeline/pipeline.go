// Package pipeline runs fetch, layout, settle and render for stormgraph.
//
// The render command, the HTTP host and the layout inspector all go through
// a [Runner], so cache keys, defaults and logging agree between them.
//
// A run has three stages:
//
//  1. Fetch storm summaries from a [source.Source] into a graph
//  2. Assign levels and subtrees with [layout.Compute]
//  3. Settle a force simulation and write the requested [Format]s
//
// Live hosts stop after the fetch and hand the graph to a render container
// instead, see [Runner.Load].
//
//	runner := pipeline.NewRunner(c, nil, logger)
//	src, _ := source.NewKusto(source.KustoOptions{})
//	result, err := runner.Execute(ctx, src, pipeline.Options{
//	    Formats: []string{"svg", "png"},
//	})
//	if err != nil {
//	    log.Fatal(err)
//	}
//	svg := result.Artifacts["svg"]
package pipeline

import (
	"cmp"
	"strings"
	"time"

	"github.com/matzehuels/stormgraph/pkg/cache"
	errs "github.com/matzehuels/stormgraph/pkg/errors"
	"github.com/matzehuels/stormgraph/pkg/graph"
	"github.com/matzehuels/stormgraph/pkg/layout"
	"github.com/matzehuels/stormgraph/pkg/render"
)

const (
	DefaultWidth  = render.DefaultWidth
	DefaultHeight = render.DefaultHeight

	// DefaultSeed keeps repeated renders of the same graph identical.
	DefaultSeed = uint64(42)
)

// Output format names.
const (
	FormatSVG      = "svg"
	FormatPNG      = "png"
	FormatJSON     = "json"     // Settled scene
	FormatDOT      = "dot"      // Graphviz source
	FormatGraphviz = "graphviz" // DOT laid out by Graphviz, as SVG
)

// Format describes an output format.
type Format struct {
	Name      string
	Extension string // File suffix including the dot
	MediaType string
	DOTBased  bool // Produced from the DOT export rather than the surface
}

var formats = []Format{
	{Name: FormatSVG, Extension: ".svg", MediaType: "image/svg+xml"},
	{Name: FormatPNG, Extension: ".png", MediaType: "image/png"},
	{Name: FormatJSON, Extension: ".scene.json", MediaType: "application/json"},
	{Name: FormatDOT, Extension: ".dot", MediaType: "text/vnd.graphviz", DOTBased: true},
	{Name: FormatGraphviz, Extension: ".graphviz.svg", MediaType: "image/svg+xml", DOTBased: true},
}

// LookupFormat returns the format with the given name. Names are
// case-sensitive.
func LookupFormat(name string) (Format, bool) {
	for _, f := range formats {
		if f.Name == name {
			return f, true
		}
	}
	return Format{}, false
}

// FormatNames lists the supported format names.
func FormatNames() []string {
	names := make([]string, len(formats))
	for i, f := range formats {
		names[i] = f.Name
	}
	return names
}

// ValidateFormats returns INVALID_FORMAT for the first unknown name.
func ValidateFormats(names []string) error {
	for _, n := range names {
		if _, ok := LookupFormat(n); !ok {
			return errs.New(errs.ErrCodeInvalidFormat, "invalid format %q (must be one of: %s)",
				n, strings.Join(FormatNames(), ", "))
		}
	}
	return nil
}

// Options configures a pipeline run.
type Options struct {
	Refresh bool `json:"refresh,omitempty"` // Bypass the graph cache

	RootID string  `json:"root_id,omitempty"`
	Width  float64 `json:"width,omitempty"`
	Height float64 `json:"height,omitempty"`
	Seed   uint64  `json:"seed,omitempty"`

	Formats   []string `json:"formats,omitempty"`
	Highlight string   `json:"highlight,omitempty"` // Node drawn in the highlight color
	Detailed  bool     `json:"detailed,omitempty"`  // Level and subtree in DOT labels

	// Colors, radii and force tuning. Frame, root and seed above override
	// the matching fields.
	Render render.Options `json:"-"`
}

// Result is the output of [Runner.Execute].
type Result struct {
	Graph     graph.Graph
	GraphHash string
	Layout    layout.Result

	// Scene is zero when every artifact came from the cache.
	Scene render.Scene

	Artifacts map[string][]byte // Keyed by format name
	Stats     Stats
	CacheInfo CacheInfo
}

// Stats records sizes and stage timings.
type Stats struct {
	NodeCount  int
	EdgeCount  int
	Steps      int // Simulation steps taken while settling
	FetchTime  time.Duration
	LayoutTime time.Duration
	RenderTime time.Duration
}

// CacheInfo records which stages were served from the cache.
type CacheInfo struct {
	FetchHit  bool
	RenderHit bool // Every artifact was cached
}

// ValidateAndSetDefaults fills zero fields and rejects negative frames and
// unknown formats. Calling it again is harmless.
func (o *Options) ValidateAndSetDefaults() error {
	if o.Width < 0 || o.Height < 0 {
		return errs.New(errs.ErrCodeInvalidInput, "frame size must be positive, got %gx%g", o.Width, o.Height)
	}
	o.Width = cmp.Or(o.Width, DefaultWidth)
	o.Height = cmp.Or(o.Height, DefaultHeight)
	o.Seed = cmp.Or(o.Seed, DefaultSeed)
	o.RootID = cmp.Or(o.RootID, layout.DefaultRootID)
	if len(o.Formats) == 0 {
		o.Formats = []string{FormatSVG}
	}
	return ValidateFormats(o.Formats)
}

// RenderOptions merges the frame, root and seed into the render options.
func (o *Options) RenderOptions() render.Options {
	ro := o.Render
	ro.Width, ro.Height = o.Width, o.Height
	ro.Layout.RootID = o.RootID
	ro.Simulation.Seed = o.Seed
	ro.SetDefaults()
	return ro
}

// LayoutOptions returns the options for [layout.Compute].
func (o *Options) LayoutOptions() layout.Options {
	return layout.Options{RootID: o.RootID}
}

// ArtifactKeyOpts returns the cache key inputs for one artifact. Detailed
// only changes DOT-based formats, so it only splits their keys.
func (o *Options) ArtifactKeyOpts(format string) cache.ArtifactKeyOpts {
	variant := format
	if f, _ := LookupFormat(format); f.DOTBased && o.Detailed {
		variant += "+detailed"
	}
	return cache.ArtifactKeyOpts{
		Format:    variant,
		Width:     o.Width,
		Height:    o.Height,
		RootID:    o.RootID,
		Highlight: o.Highlight,
		Seed:      o.Seed,
	}
}
