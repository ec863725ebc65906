// File: types.go
// Role: Core identifiers, Vertex/Edge records, and sentinel errors for the
//       road-network graph.
// Determinism:
//   - VertexId/EdgeId/EdgeListId are dense, small, contiguous integers so
//     that they can index slices directly instead of hashing through maps.
// AI-HINT (file):
//   - VertexId and EdgeId are distinct int types; do not mix them up when
//     indexing g.vertices vs. an edge list.
//   - EdgeKey namespaces an EdgeId by the EdgeListId it came from, so the
//     same numeric EdgeId can be reused across the base network and an
//     overlay (e.g. charging connectors) without collision.
package network

import "errors"

// Sentinel errors for graph construction and lookup.
var (
	// ErrVertexNotFound indicates a VertexId outside the dense [0,|V|) range.
	ErrVertexNotFound = errors.New("network: vertex not found")

	// ErrEdgeNotFound indicates an EdgeKey not present in its edge list.
	ErrEdgeNotFound = errors.New("network: edge not found")

	// ErrEdgeListNotFound indicates a reference to an undeclared EdgeListId.
	ErrEdgeListNotFound = errors.New("network: edge list not found")

	// ErrDanglingEndpoint indicates an edge endpoint referencing a vertex
	// that was never declared — a graph-consistency error (spec §7).
	ErrDanglingEndpoint = errors.New("network: edge endpoint refers to nonexistent vertex")

	// ErrNonDenseIDs indicates vertex or edge ids were not supplied as a
	// contiguous 0..n-1 range.
	ErrNonDenseIDs = errors.New("network: ids must be dense and contiguous starting at 0")

	// ErrDuplicateEdge indicates the same (EdgeListId, EdgeId) was added twice.
	ErrDuplicateEdge = errors.New("network: duplicate edge id within edge list")
)

// VertexId identifies a vertex in a dense 0..|V| namespace.
type VertexId int

// EdgeId identifies an edge within a single EdgeListId namespace.
type EdgeId int

// EdgeListId namespaces a collection of parallel edges (e.g. 0 = base road
// network, 1 = charging-connector overlay).
type EdgeListId int

// EdgeKey is the fully-qualified identifier of an edge: which list it lives
// in, and its id within that list.
type EdgeKey struct {
	EdgeListId EdgeListId
	EdgeId     EdgeId
}

// Direction selects which adjacency (forward out-edges, or reverse
// in-edges) a traversal walks. Shared by Graph.IncidentTriplets and by the
// search tree's orientation.
type Direction int

const (
	// Forward walks out-edges, src -> dst, root-to-target oriented.
	Forward Direction = iota
	// Reverse walks in-edges, dst -> src, target-to-root oriented.
	Reverse
)

// String renders the Direction for logs.
func (d Direction) String() string {
	if d == Reverse {
		return "reverse"
	}

	return "forward"
}

// Vertex is a graph node: a dense id plus coordinates used by heuristics
// (e.g. great-circle / euclidean distance to a target).
type Vertex struct {
	ID VertexId
	X  float64
	Y  float64
}

// Edge is a directed connection between two vertices, carrying a distance
// and arbitrary static attributes consumed by traversal models (e.g. grade,
// road class, speed limit).
type Edge struct {
	Key      EdgeKey
	Src      VertexId
	Dst      VertexId
	Distance float64
	Attrs    map[string]float64
}

// Attr reads a named static attribute, returning (0, false) if absent.
func (e *Edge) Attr(name string) (float64, bool) {
	if e.Attrs == nil {
		return 0, false
	}
	v, ok := e.Attrs[name]

	return v, ok
}
