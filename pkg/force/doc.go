// Package force implements an iterative force-directed layout in the
// manner of d3-force.
//
// A [Simulation] owns a slice of [Body] values (position and velocity per
// node) and a set of named [Force] implementations. Each call to
// [Simulation.Step] cools alpha, lets every force add velocity, damps
// velocity and integrates positions, then returns a [Snapshot]: a copy of
// all positions that the caller may keep and read from any goroutine.
//
// # Forces
//
//   - [Link]: spring along each edge toward a target length
//   - [ManyBody]: pairwise charge, negative strength repels
//   - [PositionX], [PositionY]: pull toward a per-body coordinate
//   - [Collide]: keep bodies at least r_i+r_j apart
//   - [Center]: translate the whole system onto a point
//
// [Build] wires these together for a city graph: link and charge always,
// level bands on y, subtree slots on x when the graph has its designated
// root, and a centering force otherwise.
//
// # Cooling
//
// Alpha starts at 1 and decays geometrically toward AlphaTarget. With the
// defaults (AlphaMin 0.001, 300 steps) the decay factor is
// 1 - 0.001^(1/300), so alpha crosses AlphaMin on the last step.
//
// # Concurrency
//
// A Simulation is not safe for concurrent use. [Simulation.Run] drives it
// from the calling goroutine and invokes the tick callback there, one tick
// at a time. Snapshots are the only values meant to cross goroutines.
package force
