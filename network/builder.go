// File: builder.go
// Role: Mutable construction of an immutable Graph.
// Determinism:
//   - AddEdge order is preserved verbatim into adjOut/adjIn, so Build()
//     output depends only on call order, never on map iteration.
// AI-HINT (file):
//   - Builder is not safe for concurrent use; build the graph on one
//     goroutine, then share the resulting *Graph read-only across many.
package network

import "fmt"

// Builder accumulates vertices and edges, then produces an immutable
// Graph. Mirrors the functional-construction idiom of the rest of this
// module: validate eagerly, fail with a sentinel, never panic on bad data.
type Builder struct {
	vertices []Vertex
	edges    map[EdgeListId]map[EdgeId]*Edge
	adjOut   map[VertexId][]EdgeKey
	adjIn    map[VertexId][]EdgeKey
}

// NewBuilder returns a Builder with n vertices pre-declared at ids
// 0..n-1, with the given coordinates (len(coords) must equal n, or be nil
// for all-zero coordinates).
func NewBuilder(n int, coords []Vertex) (*Builder, error) {
	verts := make([]Vertex, n)
	if coords == nil {
		for i := range verts {
			verts[i] = Vertex{ID: VertexId(i)}
		}
	} else {
		if len(coords) != n {
			return nil, fmt.Errorf("%w: got %d coords for %d vertices", ErrNonDenseIDs, len(coords), n)
		}
		for i, c := range coords {
			verts[i] = Vertex{ID: VertexId(i), X: c.X, Y: c.Y}
		}
	}

	return &Builder{
		vertices: verts,
		edges:    make(map[EdgeListId]map[EdgeId]*Edge),
		adjOut:   make(map[VertexId][]EdgeKey),
		adjIn:    make(map[VertexId][]EdgeKey),
	}, nil
}

// AddEdge declares one directed edge within list. Returns ErrDanglingEndpoint
// if src or dst is out of the declared vertex range, or ErrDuplicateEdge if
// (list, id) was already added.
//
// Complexity: O(1) amortized.
func (b *Builder) AddEdge(list EdgeListId, id EdgeId, src, dst VertexId, distance float64, attrs map[string]float64) error {
	if int(src) < 0 || int(src) >= len(b.vertices) || int(dst) < 0 || int(dst) >= len(b.vertices) {
		return fmt.Errorf("%w: edge %d/%d references src=%d dst=%d (|V|=%d)", ErrDanglingEndpoint, list, id, src, dst, len(b.vertices))
	}
	if b.edges[list] == nil {
		b.edges[list] = make(map[EdgeId]*Edge)
	}
	if _, dup := b.edges[list][id]; dup {
		return fmt.Errorf("%w: list=%d id=%d", ErrDuplicateEdge, list, id)
	}

	key := EdgeKey{EdgeListId: list, EdgeId: id}
	e := &Edge{Key: key, Src: src, Dst: dst, Distance: distance, Attrs: attrs}
	b.edges[list][id] = e
	b.adjOut[src] = append(b.adjOut[src], key)
	b.adjIn[dst] = append(b.adjIn[dst], key)

	return nil
}

// Build finalizes the Builder into an immutable Graph. The Builder must
// not be reused afterward (Build takes ownership of its internal slices).
func (b *Builder) Build() *Graph {
	return &Graph{
		vertices: b.vertices,
		edges:    b.edges,
		adjOut:   b.adjOut,
		adjIn:    b.adjIn,
	}
}
