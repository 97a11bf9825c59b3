// Package layout derives the per-node attributes that bias the force
// simulation into a hierarchical picture: a level (vertical band) and a
// subtree index (horizontal slot).
//
// # Levels
//
// [AssignLevels] gives every node the length of the longest path from a
// root, where a root is any node without incoming edges. Nodes that no root
// reaches (for example members of a cycle with no entry point) are placed
// one band below the deepest reachable node.
//
// # Subtrees
//
// [AssignSubtrees] numbers the distinct children of a designated root
// 0, 1, 2, ... in edge order and propagates each number to everything
// below that child. A node reachable from two children keeps the first
// number it received.
//
// Both functions are pure and deterministic for a fixed edge order; they
// never recurse, so deep or cyclic graphs cannot exhaust the stack.
package layout
