// File: graph.go
// Role: The immutable Graph type and its pure query methods.
// Determinism:
//   - IncidentTriplets iterates in insertion order (the order edges were
//     added by the Builder), matching spec §4.1's determinism requirement.
// Concurrency:
//   - Graph carries no mutex: once returned by Builder.Build, it is never
//     mutated again, so concurrent readers need no lock at all (spec §5).
// AI-HINT (file):
//   - adjOut[v] and adjIn[v] hold EdgeKeys, not vertex ids; resolve the
//     far endpoint via GetEdge before using it.
package network

// Graph is an immutable directed multigraph over dense VertexIds, with
// edges namespaced by EdgeListId. Build one with a Builder.
type Graph struct {
	vertices []Vertex                        // indexed by VertexId
	edges    map[EdgeListId]map[EdgeId]*Edge // edge storage, namespaced
	adjOut   map[VertexId][]EdgeKey          // out-edges, insertion order
	adjIn    map[VertexId][]EdgeKey          // in-edges, insertion order
}

// VertexCount returns |V|.
func (g *Graph) VertexCount() int { return len(g.vertices) }

// EdgeListIds returns the declared edge-list namespaces. The order of the
// returned ids is not defined and may differ between calls.
func (g *Graph) EdgeListIds() []EdgeListId {
	out := make([]EdgeListId, 0, len(g.edges))
	for id := range g.edges {
		out = append(out, id)
	}

	return out
}

// GetVertex returns the Vertex for id, or ErrVertexNotFound if id is
// outside the dense [0,|V|) range.
//
// Complexity: O(1).
func (g *Graph) GetVertex(id VertexId) (Vertex, error) {
	if id < 0 || int(id) >= len(g.vertices) {
		return Vertex{}, ErrVertexNotFound
	}

	return g.vertices[id], nil
}

// GetEdge returns the Edge for key, or ErrEdgeListNotFound /
// ErrEdgeNotFound if absent.
//
// Complexity: O(1).
func (g *Graph) GetEdge(key EdgeKey) (*Edge, error) {
	list, ok := g.edges[key.EdgeListId]
	if !ok {
		return nil, ErrEdgeListNotFound
	}
	e, ok := list[key.EdgeId]
	if !ok {
		return nil, ErrEdgeNotFound
	}

	return e, nil
}

// SrcVertexId returns the source endpoint of key.
func (g *Graph) SrcVertexId(key EdgeKey) (VertexId, error) {
	e, err := g.GetEdge(key)
	if err != nil {
		return 0, err
	}

	return e.Src, nil
}

// DstVertexId returns the destination endpoint of key.
func (g *Graph) DstVertexId(key EdgeKey) (VertexId, error) {
	e, err := g.GetEdge(key)
	if err != nil {
		return 0, err
	}

	return e.Dst, nil
}

// IncidentTriplet is one (src, edge, dst) step of a neighbor iteration.
type IncidentTriplet struct {
	Src VertexId
	Key EdgeKey
	Dst VertexId
}

// IncidentTriplets returns all neighbors of v in the chosen Direction, in
// deterministic (insertion) order. Forward yields out-edges (v -> dst);
// Reverse yields in-edges re-expressed as (v, edge, src) so that a
// reverse-direction search always walks "away from v" structurally, the
// same shape a Forward search would see from the opposite end.
//
// Complexity: O(deg(v)).
func (g *Graph) IncidentTriplets(v VertexId, dir Direction) ([]IncidentTriplet, error) {
	if _, err := g.GetVertex(v); err != nil {
		return nil, err
	}

	var keys []EdgeKey
	if dir == Forward {
		keys = g.adjOut[v]
	} else {
		keys = g.adjIn[v]
	}

	out := make([]IncidentTriplet, 0, len(keys))
	for _, k := range keys {
		e, err := g.GetEdge(k)
		if err != nil {
			// Adjacency referencing a missing edge is a graph-consistency
			// bug, not a caller error; surface it rather than skip silently.
			return nil, err
		}
		if dir == Forward {
			out = append(out, IncidentTriplet{Src: e.Src, Key: k, Dst: e.Dst})
		} else {
			out = append(out, IncidentTriplet{Src: e.Dst, Key: k, Dst: e.Src})
		}
	}

	return out, nil
}
