package ksp_test

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/routecore/routecore/astar"
	"github.com/routecore/routecore/constraint"
	"github.com/routecore/routecore/costmodel"
	"github.com/routecore/routecore/ksp"
	"github.com/routecore/routecore/labelmodel"
	"github.com/routecore/routecore/network"
	"github.com/routecore/routecore/traversal"
)

// buildSquare mirrors the spec's scenario-D square graph: two disjoint
// loopless paths from vertex 0 to vertex 1, one cheap (cost 5) via three
// edges, one expensive (cost 10) via a direct edge.
func buildSquare(t *testing.T) *network.Graph {
	t.Helper()
	b, err := network.NewBuilder(4, nil)
	require.NoError(t, err)
	require.NoError(t, b.AddEdge(0, 0, 0, 1, 10, nil)) // direct, expensive
	require.NoError(t, b.AddEdge(0, 1, 0, 2, 2, nil))
	require.NoError(t, b.AddEdge(0, 2, 2, 3, 1, nil))
	require.NoError(t, b.AddEdge(0, 3, 3, 1, 2, nil)) // 0->2->3->1, total 5

	return b.Build()
}

func buildQuery(t *testing.T, g *network.Graph) astar.Query {
	t.Helper()
	stack, err := traversal.Build([]traversal.Model{traversal.DistanceModel{}})
	require.NoError(t, err)
	sm := stack.StateModel()
	cost, err := costmodel.Build(sm, map[string]costmodel.FeatureConfig{
		traversal.DistanceFeature: {Weight: 1.0},
	}, costmodel.Sum, false)
	require.NoError(t, err)

	return astar.Query{
		Graph:       g,
		Traversal:   stack,
		Constraint:  constraint.NoRestriction{},
		Cost:        cost,
		Label:       labelmodel.VertexLabel{},
		Direction:   astar.Forward,
		Source:      0,
		Destination: 1,
		HasDest:     true,
	}
}

func TestYen_ReturnsPathsInNondecreasingCost(t *testing.T) {
	g := buildSquare(t)
	q := buildQuery(t, g)

	opts := ksp.DefaultOptions(3)
	opts.MaxSimilarity = 0.99 // only reject near-identical edge sets
	cands, err := ksp.Run(q, opts)
	require.NoError(t, err)
	require.GreaterOrEqual(t, len(cands), 2) // only 2 loopless paths exist at all

	for i := 1; i < len(cands); i++ {
		require.GreaterOrEqual(t, cands[i].Cost, cands[i-1].Cost)
	}
	require.InDelta(t, 5.0, cands[0].Cost, 1e-9)
}

func TestYen_NoPathReturnsError(t *testing.T) {
	b, err := network.NewBuilder(2, nil)
	require.NoError(t, err)
	g := b.Build()
	q := buildQuery(t, g)

	_, err = ksp.Run(q, ksp.DefaultOptions(2))
	require.ErrorIs(t, err, ksp.ErrNoPath)
}

func TestRun_InvalidK(t *testing.T) {
	g := buildSquare(t)
	q := buildQuery(t, g)

	_, err := ksp.Run(q, ksp.Options{K: 0})
	require.ErrorIs(t, err, ksp.ErrInvalidK)
}

func TestSingleViaPath_AcceptsWithinFactor(t *testing.T) {
	g := buildSquare(t)
	q := buildQuery(t, g)

	opts := ksp.DefaultOptions(3)
	opts.Algo = ksp.SingleViaPath
	opts.ViaPathFactor = 3.0
	opts.MaxSimilarity = 0.99

	cands, err := ksp.Run(q, opts)
	require.NoError(t, err)
	require.GreaterOrEqual(t, len(cands), 1)
	require.InDelta(t, 5.0, cands[0].Cost, 1e-9)
}

func TestJaccardEdgeSimilarity_Identical(t *testing.T) {
	a := ksp.Candidate{Edges: []network.EdgeKey{{EdgeListId: 0, EdgeId: 1}, {EdgeListId: 0, EdgeId: 2}}}
	require.Equal(t, 1.0, ksp.JaccardEdgeSimilarity(a, a))
}

func TestJaccardEdgeSimilarity_Disjoint(t *testing.T) {
	a := ksp.Candidate{Edges: []network.EdgeKey{{EdgeListId: 0, EdgeId: 1}}}
	b := ksp.Candidate{Edges: []network.EdgeKey{{EdgeListId: 0, EdgeId: 2}}}
	require.Equal(t, 0.0, ksp.JaccardEdgeSimilarity(a, b))
}
