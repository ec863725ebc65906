// File: model.go
// Role: The Model interface every traversal model implements, plus
//       sentinel build errors.
// AI-HINT (file):
//   - TraverseEdge/EstimateTraversal receive both prev (state before this
//     edge/estimate, read-only) and next (state being built for this
//     edge/estimate, mutated in place, initially a copy of prev). Passing
//     both lets a downstream model (e.g. a state-of-charge model) compute
//     "how much did energy change on just this edge" via next[i]-prev[i]
//     without the stack exposing per-model private deltas.
package traversal

import (
	"errors"

	"github.com/routecore/routecore/network"
	"github.com/routecore/routecore/statemodel"
)

// Sentinel build errors (spec §4.3 step 3/4).
var (
	// ErrCyclicDependency indicates the declared models cannot be
	// topologically ordered.
	ErrCyclicDependency = errors.New("traversal: cyclical dependency among traversal models")

	// ErrMissingFeature indicates some model's input feature is produced
	// by no model in the stack.
	ErrMissingFeature = errors.New("traversal: state variables required but missing")
)

// Model is one stage of the traversal pipeline: it declares which state
// features it reads and which it writes, and implements both the real
// per-edge update and an admissible estimate for heuristic search.
type Model interface {
	// Name identifies the model for error messages and logs.
	Name() string

	// InputFeatures lists state features this model reads.
	InputFeatures() []statemodel.InputFeature

	// OutputFeatures lists state features this model writes, with their
	// registration config (kind, unit, initial value, accumulator flag).
	OutputFeatures() []statemodel.OutputFeature

	// TraverseEdge computes this model's contribution to next for the real
	// edge (prevEdge -> triplet.Key), given the state before the edge
	// (prev) and the state being assembled for after the edge (next,
	// mutated in place). prevEdge is nil at the start of a search.
	TraverseEdge(g *network.Graph, prevEdge *network.EdgeKey, triplet network.IncidentTriplet, prev, next []float64, sm *statemodel.Model) error

	// EstimateTraversal computes an optimistic (for Admissible models,
	// non-overestimating) contribution to next for a direct src->dst
	// hop, used only when the kernel runs with a heuristic.
	EstimateTraversal(g *network.Graph, src, dst network.VertexId, prev, next []float64, sm *statemodel.Model) error

	// Admissible reports whether EstimateTraversal is proven to never
	// overestimate this model's true contribution for any edge sequence,
	// under the model's own configuration. Cost models built on an
	// inadmissible estimator must be explicitly opted into via
	// AllowInadmissibleHeuristic (see package costmodel); this is the
	// resolution of the Open Question in spec §9.
	Admissible() bool
}
