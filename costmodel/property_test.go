package costmodel_test

import (
	"testing"

	"pgregory.net/rapid"

	"github.com/routecore/routecore/costmodel"
	"github.com/routecore/routecore/traversal"
)

// TestProperty_CostPositivity covers spec §8 property 4: TraversalCost is
// always >= Epsilon and CostEstimate is always >= 0, for any feature delta
// including negative ones (regenerative-braking-like deltas).
func TestProperty_CostPositivity(t *testing.T) {
	stack, err := traversal.Build([]traversal.Model{traversal.DistanceModel{}})
	if err != nil {
		t.Fatal(err)
	}
	sm := stack.StateModel()

	rapid.Check(t, func(t *rapid.T) {
		weight := rapid.Float64Range(-1000, 1000).Draw(t, "weight")
		agg := costmodel.Aggregation(rapid.IntRange(0, 2).Draw(t, "agg"))

		cost, err := costmodel.Build(sm, map[string]costmodel.FeatureConfig{
			traversal.DistanceFeature: {Weight: weight, VehicleRate: costmodel.Identity},
		}, agg, false)
		if err != nil {
			// Build legitimately rejects all-zero weights; that is not a
			// counterexample to the clamp property, just an invalid config.
			t.Skip()
		}

		prevDelta := rapid.Float64Range(-1e6, 1e6).Draw(t, "prevDelta")
		nextDelta := rapid.Float64Range(-1e6, 1e6).Draw(t, "nextDelta")
		prev := []float64{prevDelta}
		next := []float64{nextDelta}

		tc, _, err := cost.TraversalCost(sm, prev, next, nil)
		if err != nil {
			t.Fatalf("TraversalCost: %v", err)
		}
		if tc < costmodel.Epsilon {
			t.Fatalf("TraversalCost=%v, want >= Epsilon=%v", tc, costmodel.Epsilon)
		}

		ce, err := cost.CostEstimate(sm, prev, next)
		if err != nil {
			t.Fatalf("CostEstimate: %v", err)
		}
		if ce < 0 {
			t.Fatalf("CostEstimate=%v, want >= 0", ce)
		}
	})
}
