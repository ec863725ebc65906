package searchtree_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/routecore/routecore/labelmodel"
	"github.com/routecore/routecore/network"
	"github.com/routecore/routecore/searchtree"
)

func lbl(v int) labelmodel.Label { return labelmodel.Label{Vertex: network.VertexId(v)} }

func TestTree_InsertRootOnce(t *testing.T) {
	tr := searchtree.New(network.Forward)
	_, err := tr.InsertRoot(lbl(0), 0, nil)
	require.NoError(t, err)

	_, err = tr.InsertRoot(lbl(1), 1, nil)
	assert.ErrorIs(t, err, searchtree.ErrRootExists) // a tree has exactly one root
}

func TestTree_InsertRequiresExistingParent(t *testing.T) {
	tr := searchtree.New(network.Forward)
	_, err := tr.InsertRoot(lbl(0), 0, nil)
	require.NoError(t, err)

	_, err = tr.Insert(lbl(2), 2, lbl(1), network.EdgeKey{}, 1.0, nil)
	assert.ErrorIs(t, err, searchtree.ErrWouldCycle) // label 1 was never inserted
}

func TestTree_InsertRejectsSelfParent(t *testing.T) {
	tr := searchtree.New(network.Forward)
	_, err := tr.InsertRoot(lbl(0), 0, nil)
	require.NoError(t, err)

	_, err = tr.Insert(lbl(0), 0, lbl(0), network.EdgeKey{}, 1.0, nil)
	assert.ErrorIs(t, err, searchtree.ErrWouldCycle)
}

func TestTree_ReconstructPath(t *testing.T) {
	tr := searchtree.New(network.Forward)
	_, err := tr.InsertRoot(lbl(0), 0, []float64{0})
	require.NoError(t, err)

	e01 := network.EdgeKey{EdgeListId: 0, EdgeId: 0}
	e12 := network.EdgeKey{EdgeListId: 0, EdgeId: 1}
	_, err = tr.Insert(lbl(1), 1, lbl(0), e01, 1.0, []float64{1})
	require.NoError(t, err)
	_, err = tr.Insert(lbl(2), 2, lbl(1), e12, 2.0, []float64{2})
	require.NoError(t, err)

	path, err := tr.ReconstructPath(lbl(2), nil)
	require.NoError(t, err)
	assert.Equal(t, []network.VertexId{0, 1, 2}, path.Vertices)
	assert.Equal(t, []network.EdgeKey{e01, e12}, path.Edges)
}

func TestTree_InsertReplacesCheaperPath(t *testing.T) {
	tr := searchtree.New(network.Forward)
	_, err := tr.InsertRoot(lbl(0), 0, nil)
	require.NoError(t, err)
	_, err = tr.Insert(lbl(1), 1, lbl(0), network.EdgeKey{EdgeId: 0}, 5.0, nil)
	require.NoError(t, err)

	// A second, unrelated root-adjacent node later finds a cheaper path to
	// label 1 through itself; Insert must re-parent it and detach the old
	// parent/child edge so Children(0) no longer lists it.
	_, err = tr.Insert(lbl(3), 3, lbl(0), network.EdgeKey{EdgeId: 2}, 1.0, nil)
	require.NoError(t, err)
	_, err = tr.Insert(lbl(1), 1, lbl(3), network.EdgeKey{EdgeId: 3}, 2.0, nil)
	require.NoError(t, err)

	n, err := tr.Get(lbl(1))
	require.NoError(t, err)
	assert.Equal(t, lbl(3), n.Parent)
	assert.Equal(t, 2.0, n.GScore)

	kids := tr.Children(lbl(0))
	assert.Len(t, kids, 1) // label 1 was detached from vertex 0's children
	assert.Equal(t, lbl(3), kids[0])
}

func TestTree_MinCostLabelAtVertex(t *testing.T) {
	tr := searchtree.New(network.Forward)
	_, err := tr.InsertRoot(lbl(0), 0, nil)
	require.NoError(t, err)

	partitioned := labelmodel.Label{Vertex: 1, Bucket: 1}
	_, err = tr.Insert(lbl(1), 1, lbl(0), network.EdgeKey{EdgeId: 0}, 5.0, nil)
	require.NoError(t, err)
	_, err = tr.Insert(partitioned, 1, lbl(0), network.EdgeKey{EdgeId: 1}, 2.0, nil)
	require.NoError(t, err)

	best, ok := tr.MinCostLabelAtVertex(1)
	require.True(t, ok)
	assert.Equal(t, partitioned, best)

	labels := tr.LabelsAtVertex(1)
	assert.Len(t, labels, 2)
}

func TestTree_GetNotFound(t *testing.T) {
	tr := searchtree.New(network.Forward)
	_, err := tr.Get(lbl(9))
	assert.ErrorIs(t, err, searchtree.ErrNotFound)
}

func buildChain3(t *testing.T) (*searchtree.Tree, network.EdgeKey, network.EdgeKey) {
	t.Helper()
	tr := searchtree.New(network.Forward)
	_, err := tr.InsertRoot(lbl(0), 0, []float64{0})
	require.NoError(t, err)

	e01 := network.EdgeKey{EdgeListId: 0, EdgeId: 0}
	e12 := network.EdgeKey{EdgeListId: 0, EdgeId: 1}
	_, err = tr.Insert(lbl(1), 1, lbl(0), e01, 1.0, []float64{1})
	require.NoError(t, err)
	_, err = tr.Insert(lbl(2), 2, lbl(1), e12, 2.0, []float64{2})
	require.NoError(t, err)

	return tr, e01, e12
}

func TestTree_ReconstructPath_DepthLimitsToNearestSuffix(t *testing.T) {
	tr, _, e12 := buildChain3(t)

	depth := uint64(1)
	path, err := tr.ReconstructPath(lbl(2), &depth)
	require.NoError(t, err)
	assert.Equal(t, []network.VertexId{1, 2}, path.Vertices)
	assert.Equal(t, []network.EdgeKey{e12}, path.Edges)
}

func TestTree_Backtrack_UsesCheapestArrivalAtVertex(t *testing.T) {
	tr := searchtree.New(network.Forward)
	_, err := tr.InsertRoot(lbl(0), 0, nil)
	require.NoError(t, err)

	cheapEdge := network.EdgeKey{EdgeId: 1}
	_, err = tr.Insert(lbl(1), 1, lbl(0), network.EdgeKey{EdgeId: 0}, 5.0, nil)
	require.NoError(t, err)
	partitioned := labelmodel.Label{Vertex: 1, Bucket: 1}
	_, err = tr.Insert(partitioned, 1, lbl(0), cheapEdge, 2.0, nil)
	require.NoError(t, err)

	path, err := tr.Backtrack(1)
	require.NoError(t, err)
	assert.Equal(t, []network.EdgeKey{cheapEdge}, path.Edges) // the cheaper (partitioned) arrival wins
}

func TestTree_BacktrackWithDepth_BoundsToVertex(t *testing.T) {
	tr, _, e12 := buildChain3(t)

	path, err := tr.BacktrackWithDepth(2, 1)
	require.NoError(t, err)
	assert.Equal(t, []network.EdgeKey{e12}, path.Edges)
}

func TestTree_ReconstructPath_ReverseTreeKeepsWalkOrder(t *testing.T) {
	tr := searchtree.New(network.Reverse)
	_, err := tr.InsertRoot(lbl(2), 2, nil)
	require.NoError(t, err)

	e21 := network.EdgeKey{EdgeId: 0}
	e10 := network.EdgeKey{EdgeId: 1}
	_, err = tr.Insert(lbl(1), 1, lbl(2), e21, 1.0, nil)
	require.NoError(t, err)
	_, err = tr.Insert(lbl(0), 0, lbl(1), e10, 2.0, nil)
	require.NoError(t, err)

	// A Reverse tree walks in-edges from vertex 2 toward 0; the raw
	// target(0)->root(2) walk order must survive, not be flipped to 2->0.
	path, err := tr.ReconstructPath(lbl(0), nil)
	require.NoError(t, err)
	assert.Equal(t, []network.VertexId{0, 1, 2}, path.Vertices)
	assert.Equal(t, []network.EdgeKey{e10, e21}, path.Edges)
}
