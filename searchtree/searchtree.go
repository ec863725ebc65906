// Package searchtree implements the label-indexed parent/child store the
// A* kernel builds as it expands the frontier (spec §4.8). Every entry is
// keyed by labelmodel.Label rather than network.VertexId alone, so the
// same vertex can hold multiple independent tree nodes when the label
// model partitions the search space (non-conservative costs, spec §4.6).
//
// Node insertion enforces acyclicity the same way dfs.DetectCycles walks
// a graph with white/gray/black coloring: a node may only ever point
// at a parent already present in the tree (Black, in that idiom), and a
// re-parented node may not be placed under one of its own descendants,
// so a child can never become its own ancestor.
package searchtree

import (
	"errors"
	"fmt"

	"github.com/routecore/routecore/labelmodel"
	"github.com/routecore/routecore/network"
)

// Sentinel errors.
var (
	// ErrNotFound indicates a lookup label has no corresponding node.
	ErrNotFound = errors.New("searchtree: label not found")

	// ErrWouldCycle indicates Insert was asked to attach a node whose
	// parent label is not already present in the tree, whose parent
	// label equals its own (a self-loop at the tree level), or, when an
	// existing label is re-parented, whose new parent descends from it.
	ErrWouldCycle = errors.New("searchtree: insert would create a cycle")

	// ErrRootExists indicates InsertRoot was called on a non-empty tree.
	ErrRootExists = errors.New("searchtree: root already set")
)

// Node is one entry in the search tree: the state at which a label was
// reached, the edge used to reach it, and a pointer back to its parent
// label (zero Label with hasParent=false for the root).
type Node struct {
	Label      labelmodel.Label
	Vertex     network.VertexId
	Parent     labelmodel.Label
	HasParent  bool
	ParentEdge network.EdgeKey
	HasEdge    bool
	GScore     float64   // best known cost-from-source at this label
	State      []float64 // state vector at this label, owned by the node
}

// Tree is a label-indexed parent/child store. It is not safe for
// concurrent use by multiple goroutines; each query owns one Tree
// (spec §5, "per-query state is thread-local").
type Tree struct {
	nodes       map[labelmodel.Label]*Node
	children    map[labelmodel.Label][]labelmodel.Label
	byVertex    map[network.VertexId][]labelmodel.Label // reverse index: vertex -> all labels reached
	vertexOrder []network.VertexId                      // vertices in first-reached order, for deterministic iteration
	rootLabel   labelmodel.Label
	hasRoot     bool
	direction   network.Direction
}

// New returns an empty Tree rooted in the given expansion direction
// (spec §4.8, "with_root(label, direction)"). direction governs how
// ReconstructPath orders the path it returns: a Forward tree walks
// source->destination, so the raw target->root walk is reversed to
// oldest-first; a Reverse tree already walks in the caller's intended
// order, so it is returned as-is.
func New(direction network.Direction) *Tree {
	return &Tree{
		nodes:     make(map[labelmodel.Label]*Node),
		children:  make(map[labelmodel.Label][]labelmodel.Label),
		byVertex:  make(map[network.VertexId][]labelmodel.Label),
		direction: direction,
	}
}

// Len returns the number of nodes currently in the tree.
func (t *Tree) Len() int { return len(t.nodes) }

// Contains reports whether label has a node.
func (t *Tree) Contains(label labelmodel.Label) bool {
	_, ok := t.nodes[label]

	return ok
}

// Get returns the node for label, or ErrNotFound.
func (t *Tree) Get(label labelmodel.Label) (*Node, error) {
	n, ok := t.nodes[label]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrNotFound, label)
	}

	return n, nil
}

// InsertRoot inserts the search's origin node. It may only be called
// once per Tree.
func (t *Tree) InsertRoot(label labelmodel.Label, vertex network.VertexId, state []float64) (*Node, error) {
	if t.hasRoot {
		return nil, ErrRootExists
	}
	n := &Node{Label: label, Vertex: vertex, State: state}
	t.nodes[label] = n
	t.byVertex[vertex] = append(t.byVertex[vertex], label)
	t.vertexOrder = append(t.vertexOrder, vertex)
	t.rootLabel = label
	t.hasRoot = true

	return n, nil
}

// Insert attaches a new node at label, reached from parent via
// parentEdge, with the given vertex/gScore/state. parent must already
// be present in the tree (ErrWouldCycle otherwise). If label already
// has a node, Insert overwrites it in place (a cheaper-cost re-discovery,
// spec §4.8 "nodes may be replaced when a strictly cheaper path to the
// same label is found") and re-parents it; the old parent/child edge
// is removed from the children index first so no stale edge survives.
func (t *Tree) Insert(label labelmodel.Label, vertex network.VertexId, parent labelmodel.Label, parentEdge network.EdgeKey, gScore float64, state []float64) (*Node, error) {
	if label == parent {
		return nil, fmt.Errorf("%w: label %s is its own parent", ErrWouldCycle, label)
	}
	if _, ok := t.nodes[parent]; !ok {
		return nil, fmt.Errorf("%w: parent %s not in tree", ErrWouldCycle, parent)
	}
	if _, exists := t.nodes[label]; exists {
		for cur, ok := parent, true; ok; {
			if cur == label {
				return nil, fmt.Errorf("%w: %s is an ancestor of parent %s", ErrWouldCycle, label, parent)
			}
			n := t.nodes[cur]
			cur, ok = n.Parent, n.HasParent
		}
	}

	if existing, ok := t.nodes[label]; ok && existing.HasParent {
		t.detachChild(existing.Parent, label)
	}

	n := &Node{
		Label:      label,
		Vertex:     vertex,
		Parent:     parent,
		HasParent:  true,
		ParentEdge: parentEdge,
		HasEdge:    true,
		GScore:     gScore,
		State:      state,
	}
	if _, existed := t.nodes[label]; !existed {
		if len(t.byVertex[vertex]) == 0 {
			t.vertexOrder = append(t.vertexOrder, vertex)
		}
		t.byVertex[vertex] = append(t.byVertex[vertex], label)
	}
	t.nodes[label] = n
	t.children[parent] = append(t.children[parent], label)

	return n, nil
}

func (t *Tree) detachChild(parent, child labelmodel.Label) {
	kids := t.children[parent]
	for i, k := range kids {
		if k == child {
			t.children[parent] = append(kids[:i], kids[i+1:]...)

			return
		}
	}
}

// Children returns the direct children of label, in insertion order.
func (t *Tree) Children(label labelmodel.Label) []labelmodel.Label {
	return t.children[label]
}

// Vertices returns every distinct vertex currently in the tree, in the
// order each was first reached. Used by the KSP layer's single-via-path
// variant to sample candidate via-vertices deterministically.
func (t *Tree) Vertices() []network.VertexId {
	return append([]network.VertexId(nil), t.vertexOrder...)
}

// LabelsAtVertex returns every label currently in the tree that maps to
// vertex, in the order they were first inserted. Used by the kernel and
// the KSP layer to enumerate state-partitioned arrivals at a vertex
// (spec §4.6, §4.10).
func (t *Tree) LabelsAtVertex(vertex network.VertexId) []labelmodel.Label {
	return t.byVertex[vertex]
}

// MinCostLabelAtVertex returns the label reaching vertex with the
// smallest GScore, or ok=false if vertex has no entry.
func (t *Tree) MinCostLabelAtVertex(vertex network.VertexId) (labelmodel.Label, bool) {
	labels := t.byVertex[vertex]
	if len(labels) == 0 {
		return labelmodel.Label{}, false
	}
	best := labels[0]
	bestCost := t.nodes[best].GScore
	for _, l := range labels[1:] {
		if c := t.nodes[l].GScore; c < bestCost {
			best, bestCost = l, c
		}
	}

	return best, true
}

// Path is a reconstructed route: the ordered vertices visited and the
// edges traversed between them (len(Edges) == len(Vertices)-1, or 0 for
// a single-vertex path).
type Path struct {
	Labels   []labelmodel.Label
	Vertices []network.VertexId
	Edges    []network.EdgeKey
}

// ReconstructPath walks label's ancestry back toward the root, stopping
// once depth edges have been collected (nil depth means walk all the
// way to the root). It detects a malformed tree (a parent chain that
// never reaches the root, which would only happen from a caller-induced
// bug elsewhere) by bounding the walk at Len()+1 steps rather than
// looping forever.
//
// The raw walk always runs label->...->ancestor (nearest-to-label
// first). For a Forward tree that is the reverse of the source->
// destination order callers expect, so it is flipped before returning;
// for a Reverse tree the raw order already is the order the caller
// wants (spec §4.8, "a Reverse tree keeps the walk order"), so it is
// returned unflipped. When depth stops the walk short, the flipped
// Forward result is the nearest-to-target suffix, not the full path.
func (t *Tree) ReconstructPath(label labelmodel.Label, depth *uint64) (Path, error) {
	var revLabels []labelmodel.Label
	var revVertices []network.VertexId
	var revEdges []network.EdgeKey

	cur := label
	steps := 0
	limit := t.Len() + 1
	for {
		n, ok := t.nodes[cur]
		if !ok {
			return Path{}, fmt.Errorf("%w: %s", ErrNotFound, cur)
		}
		revLabels = append(revLabels, cur)
		revVertices = append(revVertices, n.Vertex)

		// atDepth means the next edge (n's link to its parent) would be
		// the depth+1'th edge: this node's vertex still closes out the
		// last included edge, but its own parent edge is excluded and
		// the walk stops here.
		atDepth := depth != nil && uint64(len(revEdges)) >= *depth
		if n.HasEdge && !atDepth {
			revEdges = append(revEdges, n.ParentEdge)
		} else if n.HasEdge {
			atDepth = true
		}

		if !n.HasParent || atDepth {
			break
		}
		cur = n.Parent

		steps++
		if steps > limit {
			return Path{}, fmt.Errorf("searchtree: ancestry chain exceeds tree size, tree is malformed")
		}
	}

	if t.direction == network.Reverse {
		return Path{Labels: revLabels, Vertices: revVertices, Edges: revEdges}, nil
	}

	return Path{
		Labels:   reverseLabels(revLabels),
		Vertices: reverseVertices(revVertices),
		Edges:    reverseEdges(revEdges),
	}, nil
}

// Backtrack composes MinCostLabelAtVertex with an unbounded
// ReconstructPath (spec §4.8, "backtrack(vertex) = get_min_cost_label
// then reconstruct_path(None)"): it finds vertex's cheapest arrival and
// walks the full path to it.
func (t *Tree) Backtrack(vertex network.VertexId) (Path, error) {
	label, ok := t.MinCostLabelAtVertex(vertex)
	if !ok {
		return Path{}, fmt.Errorf("%w: no label reaches vertex %d", ErrNotFound, vertex)
	}

	return t.ReconstructPath(label, nil)
}

// BacktrackWithDepth is Backtrack bounded to the nearest depth edges to
// vertex's cheapest arrival (spec §4.8, "backtrack_with_depth(vertex,
// depth)").
func (t *Tree) BacktrackWithDepth(vertex network.VertexId, depth uint64) (Path, error) {
	label, ok := t.MinCostLabelAtVertex(vertex)
	if !ok {
		return Path{}, fmt.Errorf("%w: no label reaches vertex %d", ErrNotFound, vertex)
	}

	return t.ReconstructPath(label, &depth)
}

func reverseLabels(s []labelmodel.Label) []labelmodel.Label {
	out := make([]labelmodel.Label, len(s))
	for i, v := range s {
		out[len(s)-1-i] = v
	}

	return out
}

func reverseVertices(s []network.VertexId) []network.VertexId {
	out := make([]network.VertexId, len(s))
	for i, v := range s {
		out[len(s)-1-i] = v
	}

	return out
}

func reverseEdges(s []network.EdgeKey) []network.EdgeKey {
	out := make([]network.EdgeKey, len(s))
	for i, v := range s {
		out[len(s)-1-i] = v
	}

	return out
}
