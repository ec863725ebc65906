// Package routecore is a constraint-aware shortest/k-shortest-paths
// engine for routing over a static, weighted multigraph.
//
// It composes a label-setting A*/Dijkstra kernel with pluggable
// traversal models (distance, speed, grade, time, energy, state of
// charge), constraint models (road class, turn restrictions, vehicle
// restrictions, battery floors), a weighted cost projection, and a label
// model that can split a single vertex into multiple search-space
// identities (e.g. one per battery-charge bucket).
//
// Subpackages, leaves first:
//
//	network/     — dense-id immutable directed multigraph
//	statemodel/  — typed per-vertex state-vector schema
//	traversal/   — per-edge state transforms and heuristic estimates
//	constraint/  — edge/state admissibility predicates
//	labelmodel/  — vertex -> search-space label projection
//	costmodel/   — state transition -> scalar objective cost
//	termination/ — iteration/runtime/memory/solution-size stop policies
//	searchtree/  — label-indexed parent/child store and path reconstruction
//	astar/       — the search kernel
//	ksp/         — Yen's algorithm and single-via k-shortest-paths
//	orchestrator/ — the public entry points binding all of the above
//	config/      — YAML construction-time configuration loading
//	cmd/routecore/ — the CLI front door
package routecore
