package costmodel_test

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/routecore/routecore/costmodel"
	"github.com/routecore/routecore/network"
	"github.com/routecore/routecore/statemodel"
	"github.com/routecore/routecore/traversal"
)

func buildDistanceModel(t *testing.T, rate costmodel.NetworkRateFn) (*costmodel.Model, *statemodel.Model) {
	t.Helper()
	stack, err := traversal.Build([]traversal.Model{traversal.DistanceModel{}})
	require.NoError(t, err)
	sm := stack.StateModel()

	cost, err := costmodel.Build(sm, map[string]costmodel.FeatureConfig{
		traversal.DistanceFeature: {Weight: 1.0, NetworkRate: rate},
	}, costmodel.Sum, false)
	require.NoError(t, err)

	return cost, sm
}

// TestAccessCost_PassesBothEdgesToNetworkRate covers spec §4.5's
// access_cost operation: unlike TraversalCost, AccessCost must supply
// both the previous and next edge to a NetworkRate that models
// turn/transition costs.
func TestAccessCost_PassesBothEdgesToNetworkRate(t *testing.T) {
	var gotPrev, gotNext *network.Edge
	cost, sm := buildDistanceModel(t, func(prevEdge, nextEdge *network.Edge, delta float64) float64 {
		gotPrev, gotNext = prevEdge, nextEdge

		return 0
	})

	prevEdge := &network.Edge{Key: network.EdgeKey{EdgeId: 0}, Src: 0, Dst: 1, Distance: 1}
	nextEdge := &network.Edge{Key: network.EdgeKey{EdgeId: 1}, Src: 1, Dst: 2, Distance: 1}

	_, _, err := cost.AccessCost(sm, []float64{0}, []float64{1}, prevEdge, nextEdge)
	require.NoError(t, err)

	require.Same(t, prevEdge, gotPrev)
	require.Same(t, nextEdge, gotNext)
}

// TestTraversalCost_HasNoPreviousEdgeContext confirms TraversalCost is
// AccessCost with a nil prevEdge, so a turn-aware NetworkRate sees no
// transition to price (the pre-existing single-edge call sites never
// modeled turns).
func TestTraversalCost_HasNoPreviousEdgeContext(t *testing.T) {
	var sawPrev bool
	cost, sm := buildDistanceModel(t, func(prevEdge, nextEdge *network.Edge, delta float64) float64 {
		sawPrev = prevEdge != nil

		return 0
	})

	edge := &network.Edge{Key: network.EdgeKey{EdgeId: 0}, Src: 0, Dst: 1, Distance: 1}
	_, _, err := cost.TraversalCost(sm, []float64{0}, []float64{1}, edge)
	require.NoError(t, err)

	require.False(t, sawPrev)
}

// TestAccessCost_TurnPenaltyAppliesOnRoadClassChange uses a NetworkRate
// written in the test that follows the same road_class turn-penalty rule
// as the config layer's FeatureCostConfig.TurnPenalty: AccessCost must add
// the penalty only when prevEdge and nextEdge carry different road_class
// attributes.
func TestAccessCost_TurnPenaltyAppliesOnRoadClassChange(t *testing.T) {
	const turnPenalty = 7.5
	cost, sm := buildDistanceModel(t, func(prevEdge, nextEdge *network.Edge, delta float64) float64 {
		if prevEdge == nil || nextEdge == nil {
			return 0
		}
		pc, okP := prevEdge.Attr("road_class")
		nc, okN := nextEdge.Attr("road_class")
		if okP && okN && pc != nc {
			return turnPenalty
		}

		return 0
	})

	sameClass := &network.Edge{Key: network.EdgeKey{EdgeId: 0}, Src: 0, Dst: 1, Distance: 1, Attrs: map[string]float64{"road_class": 1}}
	differentClass := &network.Edge{Key: network.EdgeKey{EdgeId: 1}, Src: 0, Dst: 1, Distance: 1, Attrs: map[string]float64{"road_class": 2}}
	next := &network.Edge{Key: network.EdgeKey{EdgeId: 2}, Src: 1, Dst: 2, Distance: 1, Attrs: map[string]float64{"road_class": 1}}

	straight, _, err := cost.AccessCost(sm, []float64{0}, []float64{1}, sameClass, next)
	require.NoError(t, err)

	turning, _, err := cost.AccessCost(sm, []float64{0}, []float64{1}, differentClass, next)
	require.NoError(t, err)

	require.InDelta(t, turnPenalty, turning-straight, 1e-9)
}
