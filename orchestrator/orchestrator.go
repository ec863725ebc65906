package orchestrator

import (
	"errors"
	"fmt"
	"sync"
	"time"

	gojson "github.com/goccy/go-json"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/routecore/routecore/astar"
	"github.com/routecore/routecore/constraint"
	"github.com/routecore/routecore/costmodel"
	"github.com/routecore/routecore/ksp"
	"github.com/routecore/routecore/labelmodel"
	"github.com/routecore/routecore/network"
	"github.com/routecore/routecore/searchtree"
	"github.com/routecore/routecore/statemodel"
	"github.com/routecore/routecore/termination"
	"github.com/routecore/routecore/traversal"
)

// Sentinel errors.
var (
	// ErrEdgeNotFound is returned by RunEdgeOriented when a referenced edge is absent.
	ErrEdgeNotFound = errors.New("orchestrator: edge not found")
)

// Instance is the shared, immutable configuration every query in a
// process runs against (spec §5: "the graph, the static traversal model
// definitions, the cost model configuration, constraint rules, and the
// termination model are shared, immutable"). Build one at construction
// time and share it read-only across as many goroutines as
// Parallelism allows.
type Instance struct {
	Graph       *network.Graph
	Traversal   *traversal.Stack
	Constraint  constraint.Model
	Cost        *costmodel.Model
	Label       labelmodel.Model
	Termination termination.Model // default, used when a query has no override
	FailurePolicy termination.FailurePolicy

	Parallelism int
	Logger      *zap.Logger
}

func (inst *Instance) logger() *zap.Logger {
	if inst.Logger == nil {
		return zap.NewNop()
	}

	return inst.Logger
}

func (inst *Instance) terminationFor(q Query) termination.Model {
	if override := q.Termination.build(); override != nil {
		return override
	}

	return inst.Termination
}

// RunVertexOriented runs one query from src to an optional dst (spec
// §4.11: "run_vertex_oriented(src_vertex, dst_vertex?, query_json,
// direction, instance) -> SearchAlgorithmResult").
func (inst *Instance) RunVertexOriented(src network.VertexId, dst *network.VertexId, q Query, dir astar.Direction) *Result {
	start := time.Now()
	queryID := uuid.New()
	inst.logger().Debug("query start", zap.String("query_id", queryID.String()), zap.Int("src", int(src)))

	sm := inst.Traversal.StateModel()
	overrides := map[string]float64{}
	if q.StartingSOCPercent != nil && sm.Has(traversal.SOCFeature) {
		overrides[traversal.SOCFeature] = *q.StartingSOCPercent / 100.0
	}
	initState, err := sm.InitialState(overrides)
	if err != nil {
		return &Result{Error: err.Error()}
	}

	aq := astar.Query{
		Graph:        inst.Graph,
		Traversal:    inst.Traversal,
		Constraint:   inst.Constraint,
		Cost:         inst.Cost,
		Label:        inst.Label,
		Termination:  inst.terminationFor(q),
		Direction:    dir,
		Source:       src,
		InitialState: initState,
		UseHeuristic: q.Algorithm == "a_star",
	}
	if dst != nil {
		aq.Destination = *dst
		aq.HasDest = true
	}

	var res *Result
	switch q.Algorithm {
	case "yens", "ksp_single_via":
		res = inst.runKSP(aq, q, start)
	default:
		res = inst.runSingle(aq, start)
	}

	inst.logger().Debug("query done", zap.String("query_id", queryID.String()), zap.Duration("runtime", time.Since(start)))

	return res
}

func (inst *Instance) runSingle(aq astar.Query, start time.Time) *Result {
	res, err := astar.Run(aq, start)
	runtime := time.Since(start)
	if err != nil {
		return &Result{Error: err.Error(), SearchRuntime: runtime}
	}

	if res.TerminatedEarly {
		r := &Result{
			Iterations:    res.Iterations,
			TreeEdgeCount: res.Tree.Len(),
			Terminated:    res.TerminationNote,
			SearchRuntime: runtime,
		}
		if inst.FailurePolicy == termination.Fail {
			r.Error = res.TerminationNote
		}

		return r
	}

	if aq.HasDest && !res.Reached {
		return &Result{Error: astar.ErrNoPath.Error(), Iterations: res.Iterations, SearchRuntime: runtime}
	}

	r := &Result{
		TreeEdgeCount: res.Tree.Len(),
		Iterations:    res.Iterations,
		SearchRuntime: runtime,
	}

	if aq.HasDest {
		routeStart := time.Now()
		path, err := res.Tree.ReconstructPath(res.GoalLabel, nil)
		if err != nil {
			r.Error = err.Error()

			return r
		}
		route, err := buildRoute(aq.Traversal.StateModel(), aq.Cost, aq.Graph, res.Tree, path)
		if err != nil {
			r.Error = err.Error()

			return r
		}
		r.Route = route
		r.RouteEdgeCount = len(route)
		r.RouteRuntime = time.Since(routeStart)

		goalNode, err := res.Tree.Get(res.GoalLabel)
		if err == nil {
			r.TraversalSummary = stateToMap(aq.Traversal.StateModel(), goalNode.State)
		}
	}

	return r
}

func (inst *Instance) runKSP(aq astar.Query, q Query, start time.Time) *Result {
	algo := ksp.Yen
	if q.Algorithm == "ksp_single_via" {
		algo = ksp.SingleViaPath
	}
	k := q.K
	if k <= 0 {
		k = 3
	}
	opts := ksp.DefaultOptions(k)
	opts.Algo = algo
	if q.Similarity > 0 {
		opts.MaxSimilarity = q.Similarity
	}

	cands, err := ksp.Run(aq, opts)
	runtime := time.Since(start)
	if err != nil {
		return &Result{Error: err.Error(), SearchRuntime: runtime}
	}

	sm := aq.Traversal.StateModel()
	routes := make([][]EdgeTraversal, 0, len(cands))
	totalEdges := 0
	for _, c := range cands {
		route, err := replayRoute(aq, sm, c)
		if err != nil {
			continue
		}
		routes = append(routes, route)
		totalEdges += len(route)
	}

	return &Result{
		Routes:         routes,
		RouteEdgeCount: totalEdges,
		SearchRuntime:  runtime,
	}
}

// replayRoute re-derives the per-edge cost breakdown and result state for
// a KSP candidate by walking its edges through the traversal stack from
// scratch. KSP candidates are stitched together from multiple
// independent kernel runs (root path + spur), so no single search tree
// holds every edge's before/after state; replaying is cheap (one
// Apply+AccessCost per edge) and keeps ksp.Candidate free of any
// orchestrator-specific bookkeeping.
func replayRoute(aq astar.Query, sm *statemodel.Model, c ksp.Candidate) ([]EdgeTraversal, error) {
	state := aq.InitialState
	if state == nil {
		var err error
		state, err = sm.InitialState(nil)
		if err != nil {
			return nil, err
		}
	}

	route := make([]EdgeTraversal, 0, len(c.Edges))
	var prevEdge *network.EdgeKey
	var prevEdgeObj *network.Edge
	for i, ek := range c.Edges {
		edge, err := aq.Graph.GetEdge(ek)
		if err != nil {
			return nil, err
		}
		triplet := network.IncidentTriplet{Src: c.Vertices[i], Key: ek, Dst: c.Vertices[i+1]}

		next, err := aq.Traversal.Apply(aq.Graph, prevEdge, triplet, state)
		if err != nil {
			return nil, err
		}
		total, components, err := aq.Cost.AccessCost(sm, state, next, prevEdgeObj, edge)
		if err != nil {
			return nil, err
		}

		route = append(route, EdgeTraversal{
			EdgeListId:  ek.EdgeListId,
			EdgeId:      ek.EdgeId,
			Cost:        CostBreakdown{TotalCost: total, ComponentCosts: components},
			ResultState: stateToMap(sm, next),
		})

		state = next
		keyCopy := ek
		prevEdge = &keyCopy
		prevEdgeObj = edge
	}

	return route, nil
}

// RunEdgeOriented performs a vertex-oriented search between the
// dst-vertex of srcEdge and the src-vertex of dstEdge, then splices both
// edges onto the resulting route (spec §4.9: "Edge-oriented entry
// point"). Identical edges degenerate to an empty result; edges sharing
// a vertex degenerate to a trivial two-edge route (the inner
// vertex-oriented search returns a zero-edge path between src==dst,
// which splicing alone already produces correctly).
func (inst *Instance) RunEdgeOriented(srcEdge network.EdgeKey, dstEdge *network.EdgeKey, q Query, dir astar.Direction) *Result {
	srcE, err := inst.Graph.GetEdge(srcEdge)
	if err != nil {
		return &Result{Error: fmt.Errorf("%w: %v", ErrEdgeNotFound, srcEdge).Error()}
	}

	if dstEdge != nil && *dstEdge == srcEdge {
		return &Result{}
	}

	originVertex := srcE.Dst
	var destVertexPtr *network.VertexId
	if dstEdge != nil {
		dstE, err := inst.Graph.GetEdge(*dstEdge)
		if err != nil {
			return &Result{Error: fmt.Errorf("%w: %v", ErrEdgeNotFound, *dstEdge).Error()}
		}
		v := dstE.Src
		destVertexPtr = &v
	}

	res := inst.RunVertexOriented(originVertex, destVertexPtr, q, dir)
	if res.Error != "" {
		return res
	}

	spliced := make([]EdgeTraversal, 0, len(res.Route)+2)
	spliced = append(spliced, EdgeTraversal{EdgeListId: srcEdge.EdgeListId, EdgeId: srcEdge.EdgeId})
	spliced = append(spliced, res.Route...)
	if dstEdge != nil {
		spliced = append(spliced, EdgeTraversal{EdgeListId: dstEdge.EdgeListId, EdgeId: dstEdge.EdgeId})
	}
	res.Route = spliced
	res.RouteEdgeCount = len(spliced)

	return res
}

func buildRoute(sm *statemodel.Model, cost *costmodel.Model, g *network.Graph, tree *searchtree.Tree, path searchtree.Path) ([]EdgeTraversal, error) {
	edges := path.Edges
	labels := path.Labels
	route := make([]EdgeTraversal, 0, len(edges))
	var prevEdgeObj *network.Edge
	for i, ek := range edges {
		edge, err := g.GetEdge(ek)
		if err != nil {
			return nil, err
		}
		prevNode, err := tree.Get(labels[i])
		if err != nil {
			return nil, err
		}
		nextNode, err := tree.Get(labels[i+1])
		if err != nil {
			return nil, err
		}
		total, components, err := cost.AccessCost(sm, prevNode.State, nextNode.State, prevEdgeObj, edge)
		if err != nil {
			return nil, err
		}
		prevEdgeObj = edge
		route = append(route, EdgeTraversal{
			EdgeListId:  ek.EdgeListId,
			EdgeId:      ek.EdgeId,
			Cost:        CostBreakdown{TotalCost: total, ComponentCosts: components},
			ResultState: stateToMap(sm, nextNode.State),
		})
	}

	return route, nil
}

func stateToMap(sm *statemodel.Model, state []float64) map[string]float64 {
	out := make(map[string]float64, sm.Len())
	for _, name := range sm.Names() {
		v, err := sm.Get(state, name)
		if err != nil {
			continue
		}
		out[name] = v
	}

	return out
}

// BatchItem is one query in a RunBatch call.
type BatchItem struct {
	Query       Query
	Source      network.VertexId
	Destination *network.VertexId
	Direction   astar.Direction
}

// RunBatch starts one goroutine per item and bounds them with a semaphore
// so that at most inst.Parallelism queries run at once; items are not
// grouped into chunks. Results preserve the input order.
func (inst *Instance) RunBatch(items []BatchItem) []*Result {
	results := make([]*Result, len(items))
	workers := inst.Parallelism
	if workers <= 0 {
		workers = 1
	}

	sem := make(chan struct{}, workers)
	var wg sync.WaitGroup
	for i, item := range items {
		wg.Add(1)
		sem <- struct{}{}
		go func(i int, item BatchItem) {
			defer wg.Done()
			defer func() { <-sem }()
			results[i] = inst.RunVertexOriented(item.Source, item.Destination, item.Query, item.Direction)
		}(i, item)
	}
	wg.Wait()

	return results
}

// MarshalResult renders r as JSON using goccy/go-json, the faster
// drop-in encoding/json replacement the rest of the ecosystem reaches
// for on the query/result hot path.
func MarshalResult(r *Result) ([]byte, error) {
	return gojson.Marshal(r)
}

// UnmarshalQuery parses a JSON query object.
func UnmarshalQuery(data []byte) (Query, error) {
	var q Query
	err := gojson.Unmarshal(data, &q)

	return q, err
}
