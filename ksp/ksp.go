package ksp

import (
	"fmt"
	"sort"
	"time"

	"github.com/routecore/routecore/astar"
	"github.com/routecore/routecore/constraint"
	"github.com/routecore/routecore/labelmodel"
	"github.com/routecore/routecore/network"
	"github.com/routecore/routecore/searchtree"
)

// Candidate is one k-shortest-paths result: the ordered vertices and
// edges of one loopless route and its total cost.
type Candidate struct {
	Vertices []network.VertexId
	Edges    []network.EdgeKey
	Cost     float64
}

// resultPath is a Candidate plus the per-position label/state/gScore
// trace needed to spur off of it in a later Yen iteration, or to supply
// a mid-path InitialState override to a fresh astar.Run call.
type resultPath struct {
	Candidate
	labels  []labelmodel.Label
	states  [][]float64
	gScores []float64
}

func edgeSet(edges []network.EdgeKey) map[network.EdgeKey]bool {
	s := make(map[network.EdgeKey]bool, len(edges))
	for _, e := range edges {
		s[e] = true
	}

	return s
}

// JaccardEdgeSimilarity is the default SimilarityFn: |A∩B| / |A∪B| over
// each candidate's edge set (spec §4.10, "e.g., Jaccard of edge sets").
func JaccardEdgeSimilarity(a, b Candidate) float64 {
	as, bs := edgeSet(a.Edges), edgeSet(b.Edges)
	if len(as) == 0 && len(bs) == 0 {
		return 1
	}
	inter := 0
	for e := range as {
		if bs[e] {
			inter++
		}
	}
	union := len(as) + len(bs) - inter
	if union == 0 {
		return 0
	}

	return float64(inter) / float64(union)
}

func tooSimilar(opts Options, candidate Candidate, accepted []Candidate) bool {
	for _, a := range accepted {
		if opts.Similarity(candidate, a) > opts.MaxSimilarity {
			return true
		}
	}

	return false
}

// collectTrace walks path's labels against tree and returns the state
// vector and gScore recorded at each position.
func collectTrace(tree *searchtree.Tree, path searchtree.Path) ([][]float64, []float64, error) {
	states := make([][]float64, len(path.Labels))
	gScores := make([]float64, len(path.Labels))
	for i, l := range path.Labels {
		n, err := tree.Get(l)
		if err != nil {
			return nil, nil, err
		}
		states[i] = n.State
		gScores[i] = n.GScore
	}

	return states, gScores, nil
}

func newResultPath(path searchtree.Path, tree *searchtree.Tree, cost float64) (resultPath, error) {
	states, gScores, err := collectTrace(tree, path)
	if err != nil {
		return resultPath{}, err
	}

	return resultPath{
		Candidate: Candidate{
			Vertices: append([]network.VertexId(nil), path.Vertices...),
			Edges:    append([]network.EdgeKey(nil), path.Edges...),
			Cost:     cost,
		},
		labels:  append([]labelmodel.Label(nil), path.Labels...),
		states:  states,
		gScores: gScores,
	}, nil
}

// Run dispatches to Yen's algorithm or the single-via-path variant
// depending on opts.Algo (spec §4.10).
func Run(q astar.Query, opts Options) ([]Candidate, error) {
	if opts.K <= 0 {
		return nil, ErrInvalidK
	}
	if opts.Similarity == nil {
		opts.Similarity = JaccardEdgeSimilarity
	}

	switch opts.Algo {
	case SingleViaPath:
		return runSingleViaPath(q, opts)
	default:
		return runYen(q, opts)
	}
}

func withConstraint(q astar.Query, extra constraint.Model) astar.Query {
	q2 := q
	if q.Constraint == nil {
		q2.Constraint = extra
	} else {
		q2.Constraint = constraint.NewAnd(q.Constraint, extra)
	}

	return q2
}

func runYen(q astar.Query, opts Options) ([]Candidate, error) {
	start := time.Now()

	base, err := astar.Run(q, start)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrNoPath, err)
	}
	if !base.Reached {
		return nil, ErrNoPath
	}

	firstPath, err := base.Tree.ReconstructPath(base.GoalLabel, nil)
	if err != nil {
		return nil, err
	}
	first, err := newResultPath(firstPath, base.Tree, base.Cost)
	if err != nil {
		return nil, err
	}

	accepted := []resultPath{first}
	var candidateQueue []resultPath
	seenSignatures := make(map[string]bool)

	for i := 1; i < opts.K; i++ {
		if opts.Termination.MaxIterations > 0 && i > opts.Termination.MaxIterations {
			break
		}
		if opts.Termination.TimeBudget > 0 && time.Since(start) > opts.Termination.TimeBudget {
			break
		}

		prev := accepted[len(accepted)-1]

		for j := 0; j < len(prev.Vertices)-1; j++ {
			rootEdges := prev.Edges[:j]
			rootVertices := prev.Vertices[:j+1]
			spurVertex := prev.Vertices[j]

			var excludedEdges []network.EdgeKey
			for _, acc := range accepted {
				if len(acc.Edges) <= j || !edgesEqual(acc.Edges[:j], rootEdges) {
					continue
				}
				excludedEdges = append(excludedEdges, acc.Edges[j])
			}
			excludedVertices := append([]network.VertexId(nil), rootVertices[:j]...)

			spurQuery := withConstraint(q, constraint.NewExclusion(excludedEdges, excludedVertices))
			spurQuery.Source = spurVertex
			spurQuery.InitialState = prev.states[j]

			if opts.Termination.MaxCandidates > 0 && len(candidateQueue) >= opts.Termination.MaxCandidates {
				break
			}

			spurResult, err := astar.Run(spurQuery, start)
			if err != nil || spurResult == nil || !spurResult.Reached {
				continue
			}
			spurPath, err := spurResult.Tree.ReconstructPath(spurResult.GoalLabel, nil)
			if err != nil {
				continue
			}
			spurStates, spurGScores, err := collectTrace(spurResult.Tree, spurPath)
			if err != nil {
				continue
			}

			totalEdges := append(append([]network.EdgeKey(nil), rootEdges...), spurPath.Edges...)
			totalVertices := append(append([]network.VertexId(nil), rootVertices[:len(rootVertices)-1]...), spurPath.Vertices...)
			totalLabels := append(append([]labelmodel.Label(nil), prev.labels[:j+1]...), spurPath.Labels[1:]...)
			totalStates := append(append([][]float64(nil), prev.states[:j+1]...), spurStates[1:]...)

			rootCost := prev.gScores[j]
			totalGScores := append(append([]float64(nil), prev.gScores[:j+1]...), addOffset(spurGScores[1:], rootCost)...)
			totalCost := rootCost + spurResult.Cost

			sig := signature(totalEdges)
			if seenSignatures[sig] {
				continue
			}
			seenSignatures[sig] = true

			candidateQueue = append(candidateQueue, resultPath{
				Candidate: Candidate{Vertices: totalVertices, Edges: totalEdges, Cost: totalCost},
				labels:    totalLabels,
				states:    totalStates,
				gScores:   totalGScores,
			})
		}

		sort.SliceStable(candidateQueue, func(a, b int) bool { return candidateQueue[a].Cost < candidateQueue[b].Cost })

		pickedIdx := -1
		for idx, cand := range candidateQueue {
			acceptedCandidates := make([]Candidate, len(accepted))
			for k, a := range accepted {
				acceptedCandidates[k] = a.Candidate
			}
			if !tooSimilar(opts, cand.Candidate, acceptedCandidates) {
				pickedIdx = idx

				break
			}
		}
		if pickedIdx == -1 {
			break
		}

		chosen := candidateQueue[pickedIdx]
		candidateQueue = append(candidateQueue[:pickedIdx], candidateQueue[pickedIdx+1:]...)
		accepted = append(accepted, chosen)

		if len(accepted) >= opts.K {
			break
		}
	}

	out := make([]Candidate, len(accepted))
	for i, a := range accepted {
		out[i] = a.Candidate
	}

	return out, nil
}

func edgesEqual(a, b []network.EdgeKey) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}

	return true
}

func addOffset(vals []float64, offset float64) []float64 {
	out := make([]float64, len(vals))
	for i, v := range vals {
		out[i] = v + offset
	}

	return out
}

func signature(edges []network.EdgeKey) string {
	s := ""
	for _, e := range edges {
		s += fmt.Sprintf("%d.%d|", e.EdgeListId, e.EdgeId)
	}

	return s
}

// runSingleViaPath samples via-vertices from the first solution's search
// tree and composes source->via and via->target shortest paths, a
// cheaper but weaker-guarantee alternative to Yen (spec §4.10).
func runSingleViaPath(q astar.Query, opts Options) ([]Candidate, error) {
	start := time.Now()

	base, err := astar.Run(q, start)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrNoPath, err)
	}
	if !base.Reached {
		return nil, ErrNoPath
	}

	firstPath, err := base.Tree.ReconstructPath(base.GoalLabel, nil)
	if err != nil {
		return nil, err
	}

	accepted := []Candidate{{
		Vertices: append([]network.VertexId(nil), firstPath.Vertices...),
		Edges:    append([]network.EdgeKey(nil), firstPath.Edges...),
		Cost:     base.Cost,
	}}

	factor := opts.ViaPathFactor
	if factor <= 0 {
		factor = 1.5
	}

	vias := base.Tree.Vertices()
	iterations := 0
	for _, via := range vias {
		if len(accepted) >= opts.K {
			break
		}
		if opts.Termination.MaxIterations > 0 && iterations >= opts.Termination.MaxIterations {
			break
		}
		if opts.Termination.TimeBudget > 0 && time.Since(start) > opts.Termination.TimeBudget {
			break
		}
		iterations++

		if via == q.Source || (q.HasDest && via == q.Destination) {
			continue
		}

		toVia := q
		toVia.Destination = via
		toVia.HasDest = true
		toViaResult, err := astar.Run(toVia, start)
		if err != nil || !toViaResult.Reached {
			continue
		}
		toViaPath, err := toViaResult.Tree.ReconstructPath(toViaResult.GoalLabel, nil)
		if err != nil {
			continue
		}

		fromVia := q
		fromVia.Source = via
		fromViaResult, err := astar.Run(fromVia, start)
		if err != nil || !fromViaResult.Reached {
			continue
		}
		fromViaPath, err := fromViaResult.Tree.ReconstructPath(fromViaResult.GoalLabel, nil)
		if err != nil {
			continue
		}

		totalCost := toViaResult.Cost + fromViaResult.Cost
		if totalCost > base.Cost*factor {
			continue
		}

		cand := Candidate{
			Vertices: append(append([]network.VertexId(nil), toViaPath.Vertices[:len(toViaPath.Vertices)-1]...), fromViaPath.Vertices...),
			Edges:    append(append([]network.EdgeKey(nil), toViaPath.Edges...), fromViaPath.Edges...),
			Cost:     totalCost,
		}

		if tooSimilar(opts, cand, accepted) {
			continue
		}

		accepted = append(accepted, cand)
	}

	return accepted, nil
}
