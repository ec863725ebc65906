// Package constraint implements the predicate over (edge, state) that
// decides whether an edge may be expanded (spec §4.4): "valid_edge(edge,
// state) -> bool | Error". Built-ins compose by conjunction — And combines
// any number of Models so that a single false short-circuits expansion of
// that neighbor, mirroring how termination.Combined ORs its children and
// costmodel aggregates its weighted rates: one small composition helper
// per model family, following the teacher's functional-composition idiom
// throughout (github.com/katalvlaran/lvlath's GraphOption/EdgeOption/
// BuilderOption all compose the same way).
package constraint

import (
	"github.com/routecore/routecore/network"
	"github.com/routecore/routecore/statemodel"
)

// Model is a predicate over an edge and the state that would result from
// traversing it: state is the traversal stack's output for this edge
// (post-traversal), not the state at the edge's source, so a bounds
// check (e.g. Battery) sees the state it is actually meant to bound. An
// error return aborts the whole search (spec §7, "a traversal,
// constraint, or cost model signals an internal failure").
type Model interface {
	Name() string
	Valid(g *network.Graph, e *network.Edge, prevEdge *network.EdgeKey, state []float64, sm *statemodel.Model) (bool, error)
}

// NoRestriction always permits the edge.
type NoRestriction struct{}

func (NoRestriction) Name() string { return "no_restriction" }
func (NoRestriction) Valid(*network.Graph, *network.Edge, *network.EdgeKey, []float64, *statemodel.Model) (bool, error) {
	return true, nil
}

// RoadClass rejects edges whose static "road_class" attribute is in
// Excluded (e.g. excluding motorways for a pedestrian profile).
type RoadClass struct {
	Excluded map[float64]bool
}

func NewRoadClassFilter(excluded ...float64) RoadClass {
	m := make(map[float64]bool, len(excluded))
	for _, c := range excluded {
		m[c] = true
	}

	return RoadClass{Excluded: m}
}

func (RoadClass) Name() string { return "road_class" }
func (r RoadClass) Valid(g *network.Graph, e *network.Edge, prevEdge *network.EdgeKey, state []float64, sm *statemodel.Model) (bool, error) {
	class, ok := e.Attr("road_class")
	if !ok {
		return true, nil
	}

	return !r.Excluded[class], nil
}

// TurnRestriction rejects a (prevEdge -> e) transition when the pair
// appears in Restricted, consulting the previous edge supplied by the
// kernel (spec §4.4, "consults previous edge via the label or an
// auxiliary slot" — here, the kernel's tracked prevEdge pointer).
type TurnRestriction struct {
	Restricted map[network.EdgeKey]map[network.EdgeKey]bool
}

func NewTurnRestriction(pairs map[network.EdgeKey][]network.EdgeKey) TurnRestriction {
	out := make(map[network.EdgeKey]map[network.EdgeKey]bool, len(pairs))
	for from, tos := range pairs {
		set := make(map[network.EdgeKey]bool, len(tos))
		for _, to := range tos {
			set[to] = true
		}
		out[from] = set
	}

	return TurnRestriction{Restricted: out}
}

func (TurnRestriction) Name() string { return "turn_restriction" }
func (t TurnRestriction) Valid(g *network.Graph, e *network.Edge, prevEdge *network.EdgeKey, state []float64, sm *statemodel.Model) (bool, error) {
	if prevEdge == nil {
		return true, nil
	}
	if forbidden, ok := t.Restricted[*prevEdge]; ok {
		return !forbidden[e.Key], nil
	}

	return true, nil
}

// VehicleRestriction rejects edges whose static height/weight attributes
// are exceeded by the vehicle's limits.
type VehicleRestriction struct {
	MaxHeight float64 // meters; 0 disables the check
	MaxWeight float64 // kilograms; 0 disables the check
}

func (VehicleRestriction) Name() string { return "vehicle_restriction" }
func (v VehicleRestriction) Valid(g *network.Graph, e *network.Edge, prevEdge *network.EdgeKey, state []float64, sm *statemodel.Model) (bool, error) {
	if v.MaxHeight > 0 {
		if h, ok := e.Attr("max_height"); ok && h > 0 && v.MaxHeight > h {
			return false, nil
		}
	}
	if v.MaxWeight > 0 {
		if w, ok := e.Attr("max_weight"); ok && w > 0 && v.MaxWeight > w {
			return false, nil
		}
	}

	return true, nil
}

// Battery rejects any edge that would drive the named state-of-charge
// feature below MinSOC, per spec §4.4 ("a battery-bounds filter that
// rejects edges that would drive SOC below zero"). state here is the
// post-traversal state the kernel computed for this edge (the Model
// interface's contract), so this checks the SOC the vehicle would
// actually arrive with, not the SOC it is departing with.
type Battery struct {
	SOCFeature string
	MinSOC     float64
}

func NewBatteryConstraint(socFeature string, minSOC float64) Battery {
	return Battery{SOCFeature: socFeature, MinSOC: minSOC}
}

func (Battery) Name() string { return "battery" }
func (b Battery) Valid(g *network.Graph, e *network.Edge, prevEdge *network.EdgeKey, state []float64, sm *statemodel.Model) (bool, error) {
	soc, err := sm.GetCustomF64(state, b.SOCFeature)
	if err != nil {
		// Feature absent means no battery model is configured; permit.
		return true, nil
	}

	return soc >= b.MinSOC, nil
}

// Exclusion rejects a fixed set of edges and forbids arrival at a fixed
// set of vertices, without mutating the shared graph. The KSP layer uses
// this to mask spur-search retracing during Yen's algorithm (spec §9,
// "rather than mutating the shared graph, the spur search accepts an
// optional edge-exclusion set consulted by the constraint model").
type Exclusion struct {
	Edges    map[network.EdgeKey]bool
	Vertices map[network.VertexId]bool
}

// NewExclusion builds an Exclusion from plain slices.
func NewExclusion(edges []network.EdgeKey, vertices []network.VertexId) Exclusion {
	e := make(map[network.EdgeKey]bool, len(edges))
	for _, k := range edges {
		e[k] = true
	}
	v := make(map[network.VertexId]bool, len(vertices))
	for _, id := range vertices {
		v[id] = true
	}

	return Exclusion{Edges: e, Vertices: v}
}

func (Exclusion) Name() string { return "exclusion" }
func (ex Exclusion) Valid(g *network.Graph, e *network.Edge, prevEdge *network.EdgeKey, state []float64, sm *statemodel.Model) (bool, error) {
	if ex.Edges[e.Key] {
		return false, nil
	}
	if ex.Vertices[e.Dst] {
		return false, nil
	}

	return true, nil
}

// And composes models by conjunction: any false (or error) short-circuits.
type And struct {
	Models []Model
}

func NewAnd(models ...Model) And { return And{Models: models} }

func (And) Name() string { return "and" }
func (a And) Valid(g *network.Graph, e *network.Edge, prevEdge *network.EdgeKey, state []float64, sm *statemodel.Model) (bool, error) {
	for _, m := range a.Models {
		ok, err := m.Valid(g, e, prevEdge, state, sm)
		if err != nil {
			return false, err
		}
		if !ok {
			return false, nil
		}
	}

	return true, nil
}
