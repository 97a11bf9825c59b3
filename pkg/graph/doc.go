// Package graph defines the storm-event city graph: cities as nodes and
// directed, labelled, weighted edges between them.
//
// A [Graph] is plain data. It is produced by a data source, validated once
// with [Graph.Validate], and then treated as read-only input by the layout
// engine, the force simulation and the render surface.
//
// # Format
//
// Graphs serialize to JSON and YAML with the same shape:
//
//	{
//	  "nodes": [{"id": "AUSTIN"}, {"id": "DALLAS"}],
//	  "edges": [{"source": "AUSTIN", "target": "DALLAS", "label": "3 storm(s)", "weight": 3}]
//	}
//
// Multiple edges between the same pair of cities are allowed and kept in
// input order. Edge order matters: layout traversals visit edges in the
// order they appear, which keeps subtree numbering deterministic.
//
// # Validation
//
// [Graph.Validate] returns a [errors.DataIntegrityError] when an edge names
// a node that is not in the node list, or when node ids are empty or
// duplicated. Nothing downstream of validation re-checks these invariants.
package graph
