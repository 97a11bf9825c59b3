// Package render keeps a node-link scene in step with a force simulation
// and draws it.
//
// # Scene
//
// A [Scene] is the visual model of one graph: a circle and label per
// node, a line and label per edge. It is rebuilt from scratch whenever the
// graph changes and repositioned on every simulation tick.
//
// # Surface
//
// A [Surface] owns one scene plus a pan/zoom [Transform]. It accepts
// simulation snapshots ([Surface.Apply]), ignoring snapshots from any
// simulation other than the one the scene was built for, and recolours
// nodes when the last selected city changes ([Surface.SetHighlight]).
// Surfaces are safe for concurrent use; HTTP handlers read them while the
// simulation goroutine writes.
//
// # Host
//
// A [Host] holds named display containers. [Host.RenderGraph] is the
// single entry point for drawing a graph into a container: it validates
// the graph, stops the container's previous simulation, rebuilds the
// scene and starts a new simulation that animates into place.
//
// # Output
//
// [Surface.WriteSVG] and [Surface.WritePNG] draw the current scene with
// the current transform applied.
package render
