// Package astar implements the label-setting search kernel (spec §4.9):
// a single generalized loop that behaves as Dijkstra when no heuristic is
// configured and as A* when one is. It drives the traversal stack,
// constraint model, cost model, label model, termination model and
// search tree through one query, generalizing the teacher's vertex-keyed
// dijkstra.runner (github.com/katalvlaran/lvlath/dijkstra) to a
// label-keyed frontier with a lazy-decrease-key min-heap.
package astar

import (
	"container/heap"
	"errors"
	"fmt"
	"time"

	"github.com/routecore/routecore/constraint"
	"github.com/routecore/routecore/costmodel"
	"github.com/routecore/routecore/labelmodel"
	"github.com/routecore/routecore/network"
	"github.com/routecore/routecore/searchtree"
	"github.com/routecore/routecore/statemodel"
	"github.com/routecore/routecore/termination"
	"github.com/routecore/routecore/traversal"
)

// Sentinel errors.
var (
	// ErrSourceNotFound indicates the origin vertex is outside the graph.
	ErrSourceNotFound = errors.New("astar: source vertex not found")

	// ErrDestinationNotFound indicates a configured destination is outside the graph.
	ErrDestinationNotFound = errors.New("astar: destination vertex not found")

	// ErrNoPath indicates the frontier emptied before reaching the destination.
	ErrNoPath = errors.New("astar: no path to destination")

	// ErrTerminated indicates the termination model fired before a
	// destination-bearing search converged (spec §4.7/§6).
	ErrTerminated = errors.New("astar: search terminated before convergence")

	// ErrHeuristicNotAdmissible is returned by Run when the cost model's
	// RequireAdmissible check fails for a heuristic-bearing query.
	ErrHeuristicNotAdmissible = costmodel.ErrInadmissibleHeuristic
)

// Direction selects which way edges are expanded: Forward walks
// out-edges from the source toward the destination (or exhaustively, if
// no destination is set); Reverse walks in-edges, used by bidirectional
// or edge-oriented callers that need a backward frontier (spec §4.9).
type Direction = network.Direction

const (
	Forward = network.Forward
	Reverse = network.Reverse
)

// Query bundles everything one search needs. UseHeuristic, if true, adds
// the cost model's estimate as h(v); false runs plain Dijkstra (h=0).
type Query struct {
	Graph       *network.Graph
	Traversal   *traversal.Stack
	Constraint  constraint.Model
	Cost        *costmodel.Model
	Label       labelmodel.Model
	Termination termination.Model
	Direction   Direction

	Source      network.VertexId
	Destination network.VertexId
	HasDest     bool

	InitialState []float64 // nil means use the traversal stack's state model defaults
	UseHeuristic bool
}

// Result is what one Run call returns: the built tree (for path
// reconstruction or KSP perturbation) and, if a destination was set and
// reached, the winning label and its realized cost.
type Result struct {
	Tree           *searchtree.Tree
	Reached        bool
	GoalLabel      labelmodel.Label
	Cost           float64
	Iterations     uint64
	TerminatedEarly bool
	TerminationNote string
}

// frontierItem is one entry in the open-set heap.
type frontierItem struct {
	label    labelmodel.Label
	vertex   network.VertexId
	priority float64 // g + h
	gScore   float64
	index    int // heap index, maintained by container/heap
}

type openHeap []*frontierItem

func (h openHeap) Len() int            { return len(h) }
func (h openHeap) Less(i, j int) bool  { return h[i].priority < h[j].priority }
func (h openHeap) Swap(i, j int)       { h[i], h[j] = h[j], h[i]; h[i].index = i; h[j].index = j }
func (h *openHeap) Push(x interface{}) {
	n := len(*h)
	item := x.(*frontierItem)
	item.index = n
	*h = append(*h, item)
}
func (h *openHeap) Pop() interface{} {
	old := *h
	n := len(old)
	item := old[n-1]
	old[n-1] = nil
	item.index = -1
	*h = old[:n-1]

	return item
}

// Run executes the kernel for q, starting the clock at startTime (passed
// in rather than read from time.Now so callers can control determinism
// in tests; production callers pass time.Now()).
func Run(q Query, startTime time.Time) (*Result, error) {
	if _, err := q.Graph.GetVertex(q.Source); err != nil {
		return nil, fmt.Errorf("%w: %d", ErrSourceNotFound, q.Source)
	}
	if q.HasDest {
		if _, err := q.Graph.GetVertex(q.Destination); err != nil {
			return nil, fmt.Errorf("%w: %d", ErrDestinationNotFound, q.Destination)
		}
	}
	if q.UseHeuristic {
		if err := q.Cost.RequireAdmissible(q.Traversal.AllAdmissible()); err != nil {
			return nil, err
		}
	}

	sm := q.Traversal.StateModel()
	initState := q.InitialState
	if initState == nil {
		var err error
		initState, err = sm.InitialState(nil)
		if err != nil {
			return nil, fmt.Errorf("astar: %w", err)
		}
	}

	tree := searchtree.New(q.Direction)
	rootLabel := q.Label.Label(q.Source, initState, sm)
	if _, err := tree.InsertRoot(rootLabel, q.Source, initState); err != nil {
		return nil, err
	}

	open := make(openHeap, 0, 64)
	heap.Init(&open)

	h0, err := heuristicFor(q, rootLabel, q.Source, initState, sm)
	if err != nil {
		return nil, err
	}
	heap.Push(&open, &frontierItem{label: rootLabel, vertex: q.Source, priority: h0, gScore: 0})

	closed := make(map[labelmodel.Label]bool)

	var iteration uint64
	for open.Len() > 0 {
		if q.Termination != nil && q.Termination.ShouldTerminate(startTime, tree.Len(), iteration) {
			return &Result{
				Tree:            tree,
				Iterations:      iteration,
				TerminatedEarly: true,
				TerminationNote: q.Termination.Explain(startTime, tree.Len(), iteration),
			}, nil
		}

		cur := heap.Pop(&open).(*frontierItem)
		if closed[cur.label] {
			continue
		}
		closed[cur.label] = true
		iteration++

		if q.HasDest && cur.vertex == q.Destination {
			return &Result{
				Tree:       tree,
				Reached:    true,
				GoalLabel:  cur.label,
				Cost:       cur.gScore,
				Iterations: iteration,
			}, nil
		}

		node, err := tree.Get(cur.label)
		if err != nil {
			return nil, err
		}

		triplets, err := q.Graph.IncidentTriplets(cur.vertex, q.Direction)
		if err != nil {
			return nil, err
		}

		var prevEdge *network.EdgeKey
		var prevEdgeObj *network.Edge
		if node.HasEdge {
			e := node.ParentEdge
			prevEdge = &e
			obj, err := q.Graph.GetEdge(e)
			if err != nil {
				return nil, err
			}
			prevEdgeObj = obj
		}

		for _, triplet := range triplets {
			edge, err := q.Graph.GetEdge(triplet.Key)
			if err != nil {
				return nil, err
			}

			nextState, err := q.Traversal.Apply(q.Graph, prevEdge, triplet, node.State)
			if err != nil {
				return nil, err
			}

			if q.Constraint != nil {
				ok, err := q.Constraint.Valid(q.Graph, edge, prevEdge, nextState, sm)
				if err != nil {
					return nil, err
				}
				if !ok {
					continue
				}
			}

			cost, _, err := q.Cost.AccessCost(sm, node.State, nextState, prevEdgeObj, edge)
			if err != nil {
				return nil, err
			}

			nextLabel := q.Label.Label(triplet.Dst, nextState, sm)
			if closed[nextLabel] {
				continue
			}

			candidateG := cur.gScore + cost

			if existing, err := tree.Get(nextLabel); err == nil && existing.GScore <= candidateG {
				continue
			}

			if _, err := tree.Insert(nextLabel, triplet.Dst, cur.label, triplet.Key, candidateG, nextState); err != nil {
				return nil, err
			}

			hVal, err := heuristicFor(q, nextLabel, triplet.Dst, nextState, sm)
			if err != nil {
				return nil, err
			}

			heap.Push(&open, &frontierItem{
				label:    nextLabel,
				vertex:   triplet.Dst,
				priority: candidateG + hVal,
				gScore:   candidateG,
			})
		}
	}

	if q.HasDest {
		return nil, ErrNoPath
	}

	return &Result{Tree: tree, Iterations: iteration}, nil
}

// heuristicFor evaluates h(label) = 0 when no heuristic is requested or
// no destination is set (exhaustive search has nothing to estimate
// toward), otherwise the cost model's estimate of the remaining
// src->dest distance via the traversal stack's EstimateTraversal.
func heuristicFor(q Query, _ labelmodel.Label, vertex network.VertexId, state []float64, sm *statemodel.Model) (float64, error) {
	if !q.UseHeuristic || !q.HasDest {
		return 0, nil
	}

	estState, err := q.Traversal.Estimate(q.Graph, vertex, q.Destination, state)
	if err != nil {
		return 0, err
	}

	return q.Cost.CostEstimate(sm, state, estState)
}
