// Package labelmodel implements the (vertex, state) -> Label projection
// that defines search-node identity (spec §4.6). A Label must be
// comparable (usable as a Go map key) so the search tree and the A*
// kernel's g-score map can index by it directly — the idiom the teacher
// repo uses for Vertex.ID (a plain comparable string key) generalizes
// here to a small, explicitly comparable struct instead of an opaque
// interface{}, keeping label comparison allocation-free.
package labelmodel

import (
	"fmt"

	"github.com/routecore/routecore/network"
	"github.com/routecore/routecore/statemodel"
)

// Label is an opaque, hashable, ordered search-node identity. Two Labels
// compare equal iff they represent the same search-node-equivalence-class;
// the kernel treats equal labels as interchangeable for g-score purposes.
type Label struct {
	Vertex network.VertexId
	Bucket int32 // discriminator for state-partitioning labels; 0 for plain vertex labels
}

// String renders the label for logs and golden tests.
func (l Label) String() string {
	if l.Bucket == 0 {
		return fmt.Sprintf("v%d", l.Vertex)
	}

	return fmt.Sprintf("v%d#%d", l.Vertex, l.Bucket)
}

// Model is a pure function from (vertex, state) to Label.
type Model interface {
	Name() string
	Label(v network.VertexId, state []float64, sm *statemodel.Model) Label
}

// VertexLabel is the minimal built-in: Label := VertexId. Correct for
// conservative, state-free costs (spec §4.6).
type VertexLabel struct{}

func (VertexLabel) Name() string { return "vertex" }
func (VertexLabel) Label(v network.VertexId, state []float64, sm *statemodel.Model) Label {
	return Label{Vertex: v}
}

// StatePartition bins one state feature into fixed-width buckets and
// combines the bucket with the vertex id, the built-in needed for
// correctness with non-conservative costs or state-dependent feasibility
// (spec §4.6, §9): e.g. quantizing SOC to the nearest percentage point so
// two paths reaching the same vertex with materially different future
// battery potential are kept as distinct search nodes.
type StatePartition struct {
	Feature    string
	BucketSize float64 // width of each bucket, in the feature's canonical unit
}

// NewSOCBucketLabel returns a StatePartition quantizing socFeature into
// buckets of width 1/granularity (e.g. granularity=100 for 1-percentage-
// point buckets on a [0,1] SOC feature).
func NewSOCBucketLabel(socFeature string, granularity int) StatePartition {
	if granularity <= 0 {
		granularity = 100
	}

	return StatePartition{Feature: socFeature, BucketSize: 1.0 / float64(granularity)}
}

func (StatePartition) Name() string { return "soc" }
func (s StatePartition) Label(v network.VertexId, state []float64, sm *statemodel.Model) Label {
	val, err := sm.GetCustomF64(state, s.Feature)
	if err != nil || s.BucketSize <= 0 {
		return Label{Vertex: v}
	}
	bucket := int32(val / s.BucketSize)

	return Label{Vertex: v, Bucket: bucket + 1} // +1 so bucket 0 never collides with VertexLabel's zero
}
