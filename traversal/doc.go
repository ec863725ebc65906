// Package traversal implements the composable edge-cost/state-update
// pipeline (spec §4.3): a Model reads input features from the shared state
// vector and writes output features, and a Stack composes many Models in a
// fixed, topologically-sorted order computed once at build time.
//
// The ordering algorithm (Build) is the same Kahn/DFS cycle-aware sort the
// teacher repo uses for its own TopologicalSort (github.com/katalvlaran/
// lvlath, package dfs), adapted to sort traversal models by their declared
// feature dependencies instead of graph vertices by their edges.
package traversal
