// Package orchestrator binds every other package into the two public
// entry points a caller actually drives: RunVertexOriented and
// RunEdgeOriented (spec §4.11). It owns the shared, immutable,
// reference-counted-by-the-Go-GC configuration (graph, traversal stack,
// constraint model, cost model, label model, default termination
// policy) and the query-facing JSON shapes (spec §6).
package orchestrator

import (
	"time"

	"github.com/routecore/routecore/network"
	"github.com/routecore/routecore/termination"
)

// Query is the JSON-shaped query object a caller submits (spec §6).
// Exactly one of OriginVertex/OriginEdge is meaningful per call; which
// one is read depends on whether RunVertexOriented or RunEdgeOriented
// was invoked, so both are tagged omitempty and neither is required by
// this struct alone.
type Query struct {
	OriginVertex      *network.VertexId `json:"origin_vertex,omitempty"`
	OriginEdge        *network.EdgeKey  `json:"origin_edge,omitempty"`
	DestinationVertex *network.VertexId `json:"destination_vertex,omitempty"`
	DestinationEdge   *network.EdgeKey  `json:"destination_edge,omitempty"`

	// Algorithm selects "a_star" | "dijkstra" | "yens" | "ksp_single_via".
	Algorithm string `json:"algorithm"`

	K           int              `json:"k,omitempty"`
	Similarity  float64          `json:"similarity,omitempty"`
	Termination *TerminationSpec `json:"termination,omitempty"`

	// Model-specific overrides.
	StartingSOCPercent *float64 `json:"starting_soc_percent,omitempty"`
	VehicleID          string   `json:"vehicle_id,omitempty"`
}

// TerminationSpec is the JSON shape of a per-query termination override;
// any non-nil field is OR-combined with the others (spec §4.7, §6).
type TerminationSpec struct {
	MaxIterations   *uint64 `json:"max_iterations,omitempty"`
	MaxSolutionSize *int    `json:"max_solution_size,omitempty"`
	MaxRuntimeMs    *int64  `json:"max_runtime_ms,omitempty"`
	MaxMemoryBytes  *int64  `json:"max_memory_bytes,omitempty"`
}

func (s *TerminationSpec) build() termination.Model {
	if s == nil {
		return nil
	}
	var children []termination.Model
	if s.MaxIterations != nil {
		children = append(children, termination.IterationsLimit{Limit: *s.MaxIterations})
	}
	if s.MaxSolutionSize != nil {
		children = append(children, termination.SolutionSizeLimit{Limit: *s.MaxSolutionSize})
	}
	if s.MaxRuntimeMs != nil {
		children = append(children, termination.QueryRuntimeLimit{Duration: time.Duration(*s.MaxRuntimeMs) * time.Millisecond})
	}
	if s.MaxMemoryBytes != nil {
		children = append(children, termination.MemoryLimit{LimitBytes: *s.MaxMemoryBytes})
	}
	if len(children) == 0 {
		return nil
	}

	return termination.NewCombined(children...)
}

// EdgeTraversal is one edge's contribution to a route (spec §6).
type EdgeTraversal struct {
	EdgeListId network.EdgeListId `json:"edge_list_id"`
	EdgeId     network.EdgeId     `json:"edge_id"`
	Cost       CostBreakdown      `json:"cost"`
	ResultState map[string]float64 `json:"result_state"`
}

// CostBreakdown is the per-edge total cost plus its per-feature components.
type CostBreakdown struct {
	TotalCost      float64            `json:"total_cost"`
	ComponentCosts map[string]float64 `json:"component_costs"`
}

// Result is the JSON-shaped result object (spec §6).
type Result struct {
	RouteEdgeCount int                `json:"route_edge_count"`
	TreeEdgeCount  int                `json:"tree_edge_count"`
	Route          []EdgeTraversal    `json:"route,omitempty"`
	Routes         [][]EdgeTraversal  `json:"routes,omitempty"`
	TraversalSummary map[string]float64 `json:"traversal_summary,omitempty"`
	Iterations     uint64             `json:"iterations"`
	SearchRuntime  time.Duration      `json:"search_runtime"`
	RouteRuntime   time.Duration      `json:"route_runtime"`
	Terminated     string             `json:"terminated,omitempty"`
	Error          string             `json:"error,omitempty"`
}
