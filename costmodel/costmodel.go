// Package costmodel projects a state transition to a scalar objective
// Cost (spec §4.5). A Model is configured with per-feature weights, a
// vehicle rate (state delta -> currency/utility) and an optional network
// rate (previous edge, next edge, state delta -> currency/utility), and
// an Aggregation (sum/product/weighted-mean). The kernel drives AccessCost
// per candidate edge (clamped strictly positive, to keep frontier
// ordering well-defined even under regenerative-braking deltas), passing
// the edge used to reach the expanding node alongside the candidate so a
// turn-aware network rate can price the transition, not just the edge in
// isolation; TraversalCost is AccessCost with no previous-edge context,
// kept for callers (route summaries, property tests) that only ever have
// one edge in hand. CostEstimate (clamped non-negative) is the
// admissibility floor for a heuristic.
//
// Aggregation reduction is done with gonum.org/v1/gonum's floats/stat
// packages rather than a hand-rolled loop, the way
// github.com/vanderheijden86/beadwork leans on gonum for its own numeric
// reductions.
package costmodel

import (
	"errors"
	"fmt"
	"math"

	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/stat"

	"github.com/routecore/routecore/network"
	"github.com/routecore/routecore/statemodel"
)

// Epsilon is the default strictly-positive floor for TraversalCost.
const Epsilon = 1e-9

// Sentinel build/validation errors.
var (
	// ErrNoWeights indicates every configured feature weight is zero.
	ErrNoWeights = errors.New("costmodel: at least one weight must be nonzero")

	// ErrInvalidWeightNames indicates a weight references a feature the
	// state model never registered.
	ErrInvalidWeightNames = errors.New("costmodel: weight references unregistered feature")

	// ErrInadmissibleHeuristic indicates the cost model was built over a
	// traversal stack with a non-admissible estimator without explicitly
	// allowing it.
	ErrInadmissibleHeuristic = errors.New("costmodel: traversal stack's heuristic is not proven admissible")
)

// Aggregation selects how per-feature weighted rates combine into one
// scalar cost.
type Aggregation int

const (
	// Sum computes Σ w_f * (v_f + n_f).
	Sum Aggregation = iota
	// Product multiplies the per-feature weighted rates.
	Product
	// Mean computes a weight-normalized mean: (Σ w_f*(v_f+n_f)) / Σw_f.
	Mean
)

// RateFn maps a feature's state delta to a currency/utility contribution.
// Identity (func(d float64) float64 { return d }) is the common case.
type RateFn func(delta float64) float64

// NetworkRateFn maps a transition (prevEdge, the edge used to reach the
// current node, nil at a route's first edge; nextEdge, the edge under
// consideration; delta, the feature's state change) to a currency/
// utility contribution. The pair lets a network rate price the edge
// alone (prevEdge unused) or the transition between two edges, such as
// a turn or mode change (spec §4.5, access_cost).
type NetworkRateFn func(prevEdge, nextEdge *network.Edge, delta float64) float64

// FeatureConfig is one feature's contribution to the objective.
type FeatureConfig struct {
	Weight      float64
	VehicleRate RateFn
	NetworkRate NetworkRateFn // optional; nil means no network-side term
}

// Identity is the common-case VehicleRate: pass the delta through unscaled.
func Identity(delta float64) float64 { return delta }

// Model is a built, validated cost projection.
type Model struct {
	features                   map[string]FeatureConfig
	order                      []string // deterministic iteration order
	agg                        Aggregation
	allowInadmissibleHeuristic bool
}

// Build validates and constructs a Model. sm must have every key of
// features registered (ErrInvalidWeightNames), and at least one weight
// must be nonzero (ErrNoWeights).
func Build(sm *statemodel.Model, features map[string]FeatureConfig, agg Aggregation, allowInadmissibleHeuristic bool) (*Model, error) {
	var anyNonZero bool
	order := make([]string, 0, len(features))
	for name, cfg := range features {
		if !sm.Has(name) {
			return nil, fmt.Errorf("%w: %q", ErrInvalidWeightNames, name)
		}
		if cfg.Weight != 0 {
			anyNonZero = true
		}
		order = append(order, name)
	}
	if !anyNonZero {
		return nil, ErrNoWeights
	}
	// Deterministic order: sort feature names the way the state model
	// registered them, so repeated Build() calls over the same
	// configuration always iterate identically.
	orderIndex := make(map[string]int, len(sm.Names()))
	for i, n := range sm.Names() {
		orderIndex[n] = i
	}
	sortByRegistration(order, orderIndex)

	resolved := make(map[string]FeatureConfig, len(features))
	for name, cfg := range features {
		if cfg.VehicleRate == nil {
			cfg.VehicleRate = Identity
		}
		resolved[name] = cfg
	}

	return &Model{features: resolved, order: order, agg: agg, allowInadmissibleHeuristic: allowInadmissibleHeuristic}, nil
}

func sortByRegistration(names []string, orderIndex map[string]int) {
	for i := 1; i < len(names); i++ {
		for j := i; j > 0 && orderIndex[names[j-1]] > orderIndex[names[j]]; j-- {
			names[j-1], names[j] = names[j], names[j-1]
		}
	}
}

// RequireAdmissible returns ErrInadmissibleHeuristic if stackAdmissible is
// false and the Model was not built with allowInadmissibleHeuristic. Call
// this once, at query setup, before running A* with a heuristic.
func (m *Model) RequireAdmissible(stackAdmissible bool) error {
	if !stackAdmissible && !m.allowInadmissibleHeuristic {
		return ErrInadmissibleHeuristic
	}

	return nil
}

// perFeatureValues computes each weighted feature contribution for the
// prev->next state transition along nextEdge. prevEdge is the edge used
// to reach prev's vertex (nil at a route's first edge or when the
// caller has no transition context, e.g. CostEstimate) and is only
// consulted by a NetworkRate that chooses to use it.
func (m *Model) perFeatureValues(sm *statemodel.Model, prev, next []float64, prevEdge, nextEdge *network.Edge) ([]float64, map[string]float64, error) {
	vals := make([]float64, 0, len(m.order))
	components := make(map[string]float64, len(m.order))
	for _, name := range m.order {
		cfg := m.features[name]
		if cfg.Weight == 0 {
			continue
		}
		before, err := sm.Get(prev, name)
		if err != nil {
			return nil, nil, err
		}
		after, err := sm.Get(next, name)
		if err != nil {
			return nil, nil, err
		}
		delta := after - before
		v := cfg.VehicleRate(delta)
		if cfg.NetworkRate != nil && nextEdge != nil {
			v += cfg.NetworkRate(prevEdge, nextEdge, delta)
		}
		weighted := cfg.Weight * v
		vals = append(vals, weighted)
		components[name] = weighted
	}

	return vals, components, nil
}

func (m *Model) aggregate(vals []float64) float64 {
	if len(vals) == 0 {
		return 0
	}
	switch m.agg {
	case Product:
		p := 1.0
		for _, v := range vals {
			p *= v
		}

		return p
	case Mean:
		var totalWeight float64
		for _, name := range m.order {
			totalWeight += m.features[name].Weight
		}
		if totalWeight == 0 {
			return 0
		}

		return stat.Mean(vals, nil) * float64(len(vals)) / totalWeight
	default: // Sum
		return floats.Sum(vals)
	}
}

// TraversalCost computes the real objective cost of one edge traversal,
// clamped to max(Epsilon, cost) so the frontier ordering stays
// well-defined even when some feature's delta is negative (spec §4.5,
// §8 property 4). It is AccessCost with no previous-edge context; use
// AccessCost directly when the transition pair matters (turn costs).
func (m *Model) TraversalCost(sm *statemodel.Model, prev, next []float64, e *network.Edge) (float64, map[string]float64, error) {
	return m.AccessCost(sm, prev, next, nil, e)
}

// CostEstimate computes the heuristic estimate, clamped to max(0, cost) —
// an admissible heuristic must never be negative (spec §4.5).
func (m *Model) CostEstimate(sm *statemodel.Model, prev, next []float64) (float64, error) {
	vals, _, err := m.perFeatureValues(sm, prev, next, nil, nil)
	if err != nil {
		return 0, err
	}
	c := m.aggregate(vals)

	return math.Max(0, c), nil
}

// AccessCost computes a transition cost identically to TraversalCost but
// supplies both the previous and next edge to any NetworkRate that models
// turn/transition costs (spec §4.5). The kernel calls this for every
// candidate edge, passing the edge used to reach the expanding node as
// prevEdge (nil at the route's first edge), so a turn-aware NetworkRate
// sees the transition it is pricing.
func (m *Model) AccessCost(sm *statemodel.Model, prev, next []float64, prevEdge, nextEdge *network.Edge) (float64, map[string]float64, error) {
	vals, components, err := m.perFeatureValues(sm, prev, next, prevEdge, nextEdge)
	if err != nil {
		return 0, nil, err
	}
	c := m.aggregate(vals)

	return math.Max(Epsilon, c), components, nil
}
