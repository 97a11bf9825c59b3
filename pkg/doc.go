// Package pkg provides the core libraries for Stormgraph storm path
// visualization.
//
// # Overview
//
// Stormgraph draws the cities a set of storms passed through as a directed
// graph. Cities are arranged in horizontal levels, children of a root city
// are pulled into separate vertical bands, and a force simulation relaxes
// the rest. Selected cities drive the highlight.
//
// # Architecture
//
// The typical data flow:
//
//	Kusto / SQLite / MongoDB / graph file
//	         ↓
//	    [source] (fetch a validated [graph.Graph])
//	         ↓
//	    [layout] (levels and subtrees)
//	         ↓
//	    [force] (simulation seeded from the layout)
//	         ↓
//	    [render] (scene, SVG, PNG; live containers)
//	         ↑
//	    [bridge] ← clicks → [selection]
//
// [pipeline] runs fetch → layout → render with caching and is shared by
// the CLI and the HTTP server.
//
// # Main Packages
//
// [graph] - Nodes, edges and their JSON/YAML encoding.
//
// [layout] - Longest-path levels and root subtrees.
//
// [force] - Velocity-Verlet simulation with link, many-body, collide and
// positional forces. Ticks are paced on a ticker and can be stopped.
//
// [render] - Scenes, zoom and pan transforms, SVG and PNG output, and the
// Host that owns named display containers and their simulations.
//
// [selection] - The selected cities and the last selected one, with
// subscribers notified on change.
//
// [bridge] - Connects node clicks to the selection and the selection back
// to the highlight.
//
// [source] - Data sources: Kusto REST, SQLite, MongoDB and watched files.
//
// [export/nodelink] - DOT output and Graphviz layout.
//
// ## Infrastructure
//
// [cache] - File, Redis and null caches with key derivation and hooks.
//
// [config] - TOML configuration.
//
// [errors] - Coded errors and input validation.
//
// [httputil] - Retrying HTTP client.
//
// [observability] - Pipeline, simulation, cache and HTTP hooks.
//
// [graph]: https://pkg.go.dev/github.com/matzehuels/stormgraph/pkg/graph
// [layout]: https://pkg.go.dev/github.com/matzehuels/stormgraph/pkg/layout
// [force]: https://pkg.go.dev/github.com/matzehuels/stormgraph/pkg/force
// [render]: https://pkg.go.dev/github.com/matzehuels/stormgraph/pkg/render
// [selection]: https://pkg.go.dev/github.com/matzehuels/stormgraph/pkg/selection
// [bridge]: https://pkg.go.dev/github.com/matzehuels/stormgraph/pkg/bridge
// [source]: https://pkg.go.dev/github.com/matzehuels/stormgraph/pkg/source
// [export/nodelink]: https://pkg.go.dev/github.com/matzehuels/stormgraph/pkg/export/nodelink
// [pipeline]: https://pkg.go.dev/github.com/matzehuels/stormgraph/pkg/pipeline
// [cache]: https://pkg.go.dev/github.com/matzehuels/stormgraph/pkg/cache
// [config]: https://pkg.go.dev/github.com/matzehuels/stormgraph/pkg/config
// [errors]: https://pkg.go.dev/github.com/matzehuels/stormgraph/pkg/errors
// [httputil]: https://pkg.go.dev/github.com/matzehuels/stormgraph/pkg/httputil
// [observability]: https://pkg.go.dev/github.com/matzehuels/stormgraph/pkg/observability
package pkg
