package astar_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/routecore/routecore/astar"
	"github.com/routecore/routecore/constraint"
	"github.com/routecore/routecore/costmodel"
	"github.com/routecore/routecore/labelmodel"
	"github.com/routecore/routecore/network"
	"github.com/routecore/routecore/statemodel"
	"github.com/routecore/routecore/traversal"
)

// buildDiamond returns a 4-vertex diamond: 0->1->3 (cost 2+2) and
// 0->2->3 (cost 1+1), so the cheap path via vertex 2 must win.
func buildDiamond(t *testing.T) *network.Graph {
	t.Helper()
	b, err := network.NewBuilder(4, []network.Vertex{
		{ID: 0, X: 0, Y: 0},
		{ID: 1, X: 1, Y: 1},
		{ID: 2, X: 1, Y: -1},
		{ID: 3, X: 2, Y: 0},
	})
	require.NoError(t, err)
	require.NoError(t, b.AddEdge(0, 0, 0, 1, 2, nil))
	require.NoError(t, b.AddEdge(0, 1, 1, 3, 2, nil))
	require.NoError(t, b.AddEdge(0, 2, 0, 2, 1, nil))
	require.NoError(t, b.AddEdge(0, 3, 2, 3, 1, nil))

	return b.Build()
}

func buildQuery(t *testing.T, g *network.Graph, useHeuristic bool) astar.Query {
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
		Termination: nil,
		Direction:   astar.Forward,
		Source:      0,
		Destination: 3,
		HasDest:     true,
		UseHeuristic: useHeuristic,
	}
}

func TestRun_FindsCheapestPath_Dijkstra(t *testing.T) {
	g := buildDiamond(t)
	q := buildQuery(t, g, false)

	res, err := astar.Run(q, time.Unix(0, 0))
	require.NoError(t, err)
	require.True(t, res.Reached)
	require.InDelta(t, 2.0, res.Cost, 1e-9)

	path, err := res.Tree.ReconstructPath(res.GoalLabel, nil)
	require.NoError(t, err)
	require.Equal(t, []network.VertexId{0, 2, 3}, path.Vertices)
}

func TestRun_FindsCheapestPath_AStar(t *testing.T) {
	g := buildDiamond(t)
	q := buildQuery(t, g, true)

	res, err := astar.Run(q, time.Unix(0, 0))
	require.NoError(t, err)
	require.True(t, res.Reached)
	require.InDelta(t, 2.0, res.Cost, 1e-9)
}

func TestRun_NoPathToUnreachableDestination(t *testing.T) {
	b, err := network.NewBuilder(2, nil)
	require.NoError(t, err)
	g := b.Build() // no edges at all

	q := buildQuery(t, g, false)
	q.Destination = 1

	_, err = astar.Run(q, time.Unix(0, 0))
	require.ErrorIs(t, err, astar.ErrNoPath)
}

func TestRun_SourceNotFound(t *testing.T) {
	g := buildDiamond(t)
	q := buildQuery(t, g, false)
	q.Source = 99

	_, err := astar.Run(q, time.Unix(0, 0))
	require.ErrorIs(t, err, astar.ErrSourceNotFound)
}

func TestRun_RejectsInadmissibleHeuristicWhenNotAllowed(t *testing.T) {
	g := buildDiamond(t)

	stack, err := traversal.Build([]traversal.Model{
		traversal.DistanceModel{},
		traversal.NewSpeedModel(10, 30),
		traversal.GradeModel{},
		traversal.NewEnergyModel(1500, 0.01, 0.6),
	})
	require.NoError(t, err)

	sm := stack.StateModel()
	cost, err := costmodel.Build(sm, map[string]costmodel.FeatureConfig{
		traversal.EnergyFeature: {Weight: 1.0},
	}, costmodel.Sum, false)
	require.NoError(t, err)

	q := astar.Query{
		Graph:        g,
		Traversal:    stack,
		Constraint:   constraint.NoRestriction{},
		Cost:         cost,
		Label:        labelmodel.VertexLabel{},
		Direction:    astar.Forward,
		Source:       0,
		Destination:  3,
		HasDest:      true,
		UseHeuristic: true,
	}

	_, err = astar.Run(q, time.Unix(0, 0))
	require.ErrorIs(t, err, astar.ErrHeuristicNotAdmissible)
}

// socDrainModel is a minimal custom traversal model that drains a fixed,
// deterministic amount of state of charge per edge id, so a battery-floor
// test doesn't need to reason about the full energy/grade pipeline.
func socDrainModel(drainByEdge map[network.EdgeId]float64) traversal.CustomModel {
	return traversal.CustomModel{
		ModelName: "test_soc_drain",
		Outputs: []statemodel.OutputFeature{{
			Name:         "soc",
			OutputConfig: statemodel.OutputConfig{Kind: statemodel.Custom, Unit: statemodel.Percent, Initial: 1.0},
		}},
		Traverse: func(g *network.Graph, prevEdge *network.EdgeKey, t network.IncidentTriplet, prev, next []float64, sm *statemodel.Model) error {
			_, err := sm.Add(next, "soc", -drainByEdge[t.Key.EdgeId])

			return err
		},
	}
}

// TestRun_BatteryConstraint_RejectsEdgeThatDrainsBelowFloor covers the
// spec §4.4 battery filter: a route that is only infeasible because its
// *last* edge drains state of charge below the floor must be rejected,
// not just a departure from an already-depleted vertex. Edge 0 drains the
// vehicle from 1.0 to 0.16 (still above the 0.15 floor); edge 1 would
// then drain it to 0.05 (below the floor), so the route via vertex 1
// must not be offered at all.
func TestRun_BatteryConstraint_RejectsEdgeThatDrainsBelowFloor(t *testing.T) {
	b, err := network.NewBuilder(3, nil)
	require.NoError(t, err)
	require.NoError(t, b.AddEdge(0, 0, 0, 1, 1, nil))
	require.NoError(t, b.AddEdge(0, 1, 1, 2, 1, nil))
	g := b.Build()

	soc := socDrainModel(map[network.EdgeId]float64{0: 0.84, 1: 0.11})
	stack, err := traversal.Build([]traversal.Model{soc})
	require.NoError(t, err)

	sm := stack.StateModel()
	cost, err := costmodel.Build(sm, map[string]costmodel.FeatureConfig{
		"soc": {Weight: 1.0, VehicleRate: func(delta float64) float64 { return -delta }},
	}, costmodel.Sum, false)
	require.NoError(t, err)

	q := astar.Query{
		Graph:       g,
		Traversal:   stack,
		Constraint:  constraint.NewBatteryConstraint("soc", 0.15),
		Cost:        cost,
		Label:       labelmodel.VertexLabel{},
		Direction:   astar.Forward,
		Source:      0,
		Destination: 2,
		HasDest:     true,
	}

	_, err = astar.Run(q, time.Unix(0, 0))
	require.ErrorIs(t, err, astar.ErrNoPath)
}

// TestRun_BatteryConstraint_AcceptsRouteThatStaysAboveFloor is the control
// for TestRun_BatteryConstraint_RejectsEdgeThatDrainsBelowFloor: the same
// graph and drains, but a floor low enough that the final 0.05 state of
// charge is acceptable, so the route must be returned.
func TestRun_BatteryConstraint_AcceptsRouteThatStaysAboveFloor(t *testing.T) {
	b, err := network.NewBuilder(3, nil)
	require.NoError(t, err)
	require.NoError(t, b.AddEdge(0, 0, 0, 1, 1, nil))
	require.NoError(t, b.AddEdge(0, 1, 1, 2, 1, nil))
	g := b.Build()

	soc := socDrainModel(map[network.EdgeId]float64{0: 0.84, 1: 0.11})
	stack, err := traversal.Build([]traversal.Model{soc})
	require.NoError(t, err)

	sm := stack.StateModel()
	cost, err := costmodel.Build(sm, map[string]costmodel.FeatureConfig{
		"soc": {Weight: 1.0, VehicleRate: func(delta float64) float64 { return -delta }},
	}, costmodel.Sum, false)
	require.NoError(t, err)

	q := astar.Query{
		Graph:       g,
		Traversal:   stack,
		Constraint:  constraint.NewBatteryConstraint("soc", 0.04),
		Cost:        cost,
		Label:       labelmodel.VertexLabel{},
		Direction:   astar.Forward,
		Source:      0,
		Destination: 2,
		HasDest:     true,
	}

	res, err := astar.Run(q, time.Unix(0, 0))
	require.NoError(t, err)
	require.True(t, res.Reached)
}
