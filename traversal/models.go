// File: models.go
// Role: Built-in traversal models: distance, speed, grade, time, energy,
//       a state-of-charge model, and custom/combined helpers — the
//       `traversal.type` variants enumerated in spec §6.
// AI-HINT (file):
//   - Per-model admissibility is documented inline on each Admissible():
//     Distance and Time are proven admissible (straight-line / max-speed
//     lower bounds); Energy is NOT admissible in general (regenerative
//     braking can make the true cost lower than a naive lower bound), so
//     EnergyModel.Admissible() returns false and a cost model configured
//     with it must set AllowInadmissibleHeuristic (see package costmodel).
package traversal

import (
	"math"

	"github.com/routecore/routecore/network"
	"github.com/routecore/routecore/statemodel"
)

// DistanceFeature is the canonical accumulated-distance feature name.
const DistanceFeature = "trip_distance"

// DistanceModel accumulates edge.Distance (meters) into trip_distance.
type DistanceModel struct{}

func (DistanceModel) Name() string { return "distance" }
func (DistanceModel) InputFeatures() []statemodel.InputFeature { return nil }
func (DistanceModel) OutputFeatures() []statemodel.OutputFeature {
	return []statemodel.OutputFeature{{
		Name:         DistanceFeature,
		OutputConfig: statemodel.OutputConfig{Kind: statemodel.Distance, Unit: statemodel.Kilometers, Accumulator: true},
	}}
}

func (DistanceModel) TraverseEdge(g *network.Graph, _ *network.EdgeKey, t network.IncidentTriplet, prev, next []float64, sm *statemodel.Model) error {
	e, err := g.GetEdge(t.Key)
	if err != nil {
		return err
	}
	_, err = sm.Add(next, DistanceFeature, e.Distance)

	return err
}

func (DistanceModel) EstimateTraversal(g *network.Graph, src, dst network.VertexId, prev, next []float64, sm *statemodel.Model) error {
	sv, err := g.GetVertex(src)
	if err != nil {
		return err
	}
	dv, err := g.GetVertex(dst)
	if err != nil {
		return err
	}
	dx, dy := sv.X-dv.X, sv.Y-dv.Y
	straightLine := math.Sqrt(dx*dx + dy*dy)
	_, err = sm.Add(next, DistanceFeature, straightLine)

	return err
}

// Admissible: the straight-line distance between two points is always <=
// the distance along any path between them.
func (DistanceModel) Admissible() bool { return true }

// SpeedFeature is the instantaneous-speed feature name (meters/second).
const SpeedFeature = "current_speed"

// speedAttr is the static edge attribute consulted for free-flow speed.
const speedAttr = "speed_mps"

// SpeedModel derives the free-flow speed of the current edge from its
// static attributes, falling back to DefaultSpeed when absent.
type SpeedModel struct {
	DefaultSpeed float64 // meters/second, used if edge has no speed_mps attr
	MaxSpeed     float64 // meters/second, used as the heuristic upper bound
}

func NewSpeedModel(defaultSpeed, maxSpeed float64) SpeedModel {
	return SpeedModel{DefaultSpeed: defaultSpeed, MaxSpeed: maxSpeed}
}

func (SpeedModel) Name() string { return "speed" }
func (SpeedModel) InputFeatures() []statemodel.InputFeature { return nil }
func (SpeedModel) OutputFeatures() []statemodel.OutputFeature {
	return []statemodel.OutputFeature{{
		Name:         SpeedFeature,
		OutputConfig: statemodel.OutputConfig{Kind: statemodel.Speed, Unit: statemodel.KilometersPerHour},
	}}
}

func (m SpeedModel) TraverseEdge(g *network.Graph, _ *network.EdgeKey, t network.IncidentTriplet, prev, next []float64, sm *statemodel.Model) error {
	e, err := g.GetEdge(t.Key)
	if err != nil {
		return err
	}
	speed := m.DefaultSpeed
	if v, ok := e.Attr(speedAttr); ok && v > 0 {
		speed = v
	}

	return sm.Set(next, SpeedFeature, speed)
}

func (m SpeedModel) EstimateTraversal(g *network.Graph, src, dst network.VertexId, prev, next []float64, sm *statemodel.Model) error {
	return sm.Set(next, SpeedFeature, m.MaxSpeed)
}

// Admissible: speed itself is not a cost, only an intermediate; it plays
// no direct role in the heuristic clamp and is trivially "admissible" by
// convention (no cost model weighs current_speed directly).
func (SpeedModel) Admissible() bool { return true }

// GradeFeature is the instantaneous road grade feature name (ratio, rise/run).
const GradeFeature = "current_grade"
const gradeAttr = "grade"

// GradeModel derives the current edge's grade from its static attributes.
type GradeModel struct{}

func (GradeModel) Name() string { return "grade" }
func (GradeModel) InputFeatures() []statemodel.InputFeature { return nil }
func (GradeModel) OutputFeatures() []statemodel.OutputFeature {
	return []statemodel.OutputFeature{{
		Name:         GradeFeature,
		OutputConfig: statemodel.OutputConfig{Kind: statemodel.Ratio, Unit: statemodel.Percent},
	}}
}

func (GradeModel) TraverseEdge(g *network.Graph, _ *network.EdgeKey, t network.IncidentTriplet, prev, next []float64, sm *statemodel.Model) error {
	e, err := g.GetEdge(t.Key)
	if err != nil {
		return err
	}
	grade, _ := e.Attr(gradeAttr)

	return sm.Set(next, GradeFeature, grade)
}

func (GradeModel) EstimateTraversal(g *network.Graph, src, dst network.VertexId, prev, next []float64, sm *statemodel.Model) error {
	return sm.Set(next, GradeFeature, 0)
}
func (GradeModel) Admissible() bool { return true }

// TimeFeature is the accumulated elapsed-time feature name (seconds).
const TimeFeature = "trip_time"

// TimeModel derives elapsed time from the current edge's distance and the
// speed written earlier in the stack by SpeedModel.
type TimeModel struct{}

func (TimeModel) Name() string { return "time" }
func (TimeModel) InputFeatures() []statemodel.InputFeature {
	return []statemodel.InputFeature{{Name: SpeedFeature, Kind: statemodel.Speed}}
}
func (TimeModel) OutputFeatures() []statemodel.OutputFeature {
	return []statemodel.OutputFeature{{
		Name:         TimeFeature,
		OutputConfig: statemodel.OutputConfig{Kind: statemodel.Time, Unit: statemodel.Minutes, Accumulator: true},
	}}
}

func (TimeModel) TraverseEdge(g *network.Graph, _ *network.EdgeKey, t network.IncidentTriplet, prev, next []float64, sm *statemodel.Model) error {
	e, err := g.GetEdge(t.Key)
	if err != nil {
		return err
	}
	speed, err := sm.Get(next, SpeedFeature)
	if err != nil {
		return err
	}
	if speed <= 0 {
		speed = 1e-6
	}
	_, err = sm.Add(next, TimeFeature, e.Distance/speed)

	return err
}

func (TimeModel) EstimateTraversal(g *network.Graph, src, dst network.VertexId, prev, next []float64, sm *statemodel.Model) error {
	sv, err := g.GetVertex(src)
	if err != nil {
		return err
	}
	dv, err := g.GetVertex(dst)
	if err != nil {
		return err
	}
	dx, dy := sv.X-dv.X, sv.Y-dv.Y
	straightLine := math.Sqrt(dx*dx + dy*dy)
	speed, err := sm.Get(next, SpeedFeature)
	if err != nil {
		return err
	}
	if speed <= 0 {
		speed = 1e-6
	}
	_, err = sm.Add(next, TimeFeature, straightLine/speed)

	return err
}

// Admissible: given SpeedModel's EstimateTraversal supplies MaxSpeed (an
// upper bound on achievable speed) and distance is a straight-line lower
// bound, distance/speed is a lower bound on true elapsed time.
func (TimeModel) Admissible() bool { return true }

// EnergyFeature is the accumulated electric-energy feature name (joules);
// it is NOT registered as an accumulator because regenerative braking can
// make its per-edge delta negative (spec §3, "Label").
const EnergyFeature = "trip_energy_electric"

// EnergyModel applies a simple rolling-resistance plus grade road-load
// model over edge distance (speed is read but does not enter the energy
// delta); negative deltas
// (regenerative braking on descents) are expected and handled downstream
// by the cost model's positive clamp, not suppressed here.
type EnergyModel struct {
	Mass            float64 // kg
	RollingResist   float64 // dimensionless coefficient
	RegenEfficiency float64 // (0,1]; fraction of braking energy recovered
}

func NewEnergyModel(mass, rollingResist, regenEfficiency float64) EnergyModel {
	return EnergyModel{Mass: mass, RollingResist: rollingResist, RegenEfficiency: regenEfficiency}
}

func (EnergyModel) Name() string { return "energy" }
func (EnergyModel) InputFeatures() []statemodel.InputFeature {
	return []statemodel.InputFeature{
		{Name: SpeedFeature, Kind: statemodel.Speed},
		{Name: GradeFeature, Kind: statemodel.Ratio},
	}
}
func (EnergyModel) OutputFeatures() []statemodel.OutputFeature {
	return []statemodel.OutputFeature{{
		Name:         EnergyFeature,
		OutputConfig: statemodel.OutputConfig{Kind: statemodel.Energy, Unit: statemodel.KilowattHours},
	}}
}

const gravity = 9.80665

func (m EnergyModel) powerDraw(speed, grade, distance float64) float64 {
	// Simplified road-load model: rolling resistance + grade component,
	// scaled by distance to get an energy delta (joules) for this hop.
	// Negative when grade is steeply negative and regen exceeds rolling
	// loss, matching the "regenerative braking" non-conservative case.
	rolling := m.RollingResist * m.Mass * gravity * distance
	gradeWork := m.Mass * gravity * grade * distance
	energy := rolling + gradeWork
	if energy < 0 {
		energy *= m.RegenEfficiency
	}

	return energy
}

func (m EnergyModel) TraverseEdge(g *network.Graph, _ *network.EdgeKey, t network.IncidentTriplet, prev, next []float64, sm *statemodel.Model) error {
	e, err := g.GetEdge(t.Key)
	if err != nil {
		return err
	}
	speed, err := sm.Get(next, SpeedFeature)
	if err != nil {
		return err
	}
	grade, err := sm.Get(next, GradeFeature)
	if err != nil {
		return err
	}
	_, err = sm.Add(next, EnergyFeature, m.powerDraw(speed, grade, e.Distance))

	return err
}

func (m EnergyModel) EstimateTraversal(g *network.Graph, src, dst network.VertexId, prev, next []float64, sm *statemodel.Model) error {
	sv, err := g.GetVertex(src)
	if err != nil {
		return err
	}
	dv, err := g.GetVertex(dst)
	if err != nil {
		return err
	}
	dx, dy := sv.X-dv.X, sv.Y-dv.Y
	straightLine := math.Sqrt(dx*dx + dy*dy)
	speed, err := sm.Get(next, SpeedFeature)
	if err != nil {
		return err
	}
	// Estimate assumes flat grade over the straight-line distance, i.e.
	// rolling-resistance work only; real routes can beat it via regen on
	// descents, so EnergyModel documents itself as not generally
	// admissible (see Admissible()).
	_, err = sm.Add(next, EnergyFeature, m.powerDraw(speed, 0, straightLine))

	return err
}

// Admissible: false. A flat-grade (rolling-resistance only) estimate is usually but not
// provably a lower bound for every vehicle/grade configuration (e.g. a
// RegenEfficiency > 1 misconfiguration, or partial regen models), so
// energy-weighted cost models must opt in via AllowInadmissibleHeuristic.
func (EnergyModel) Admissible() bool { return false }

// SOCFeature is the battery state-of-charge feature name (fraction, 0..1).
const SOCFeature = "battery_soc"

// SOCModel depletes/replenishes state of charge by the energy delta the
// EnergyModel computed for this edge, scaled by battery capacity.
type SOCModel struct {
	CapacityJoules float64
}

func NewSOCModel(capacityJoules float64) SOCModel { return SOCModel{CapacityJoules: capacityJoules} }

func (SOCModel) Name() string { return "soc" }
func (SOCModel) InputFeatures() []statemodel.InputFeature {
	return []statemodel.InputFeature{{Name: EnergyFeature, Kind: statemodel.Energy}}
}
func (SOCModel) OutputFeatures() []statemodel.OutputFeature {
	return []statemodel.OutputFeature{{
		Name:         SOCFeature,
		OutputConfig: statemodel.OutputConfig{Kind: statemodel.Custom, Unit: statemodel.Percent, Initial: 1.0},
	}}
}

func (m SOCModel) TraverseEdge(g *network.Graph, _ *network.EdgeKey, t network.IncidentTriplet, prev, next []float64, sm *statemodel.Model) error {
	energyBefore, err := sm.Get(prev, EnergyFeature)
	if err != nil {
		return err
	}
	energyAfter, err := sm.Get(next, EnergyFeature)
	if err != nil {
		return err
	}
	delta := energyAfter - energyBefore
	if m.CapacityJoules <= 0 {
		return sm.Set(next, SOCFeature, 0)
	}
	_, err = sm.Add(next, SOCFeature, -delta/m.CapacityJoules)

	return err
}

func (m SOCModel) EstimateTraversal(g *network.Graph, src, dst network.VertexId, prev, next []float64, sm *statemodel.Model) error {
	energyBefore, err := sm.Get(prev, EnergyFeature)
	if err != nil {
		return err
	}
	energyAfter, err := sm.Get(next, EnergyFeature)
	if err != nil {
		return err
	}
	delta := energyAfter - energyBefore
	if m.CapacityJoules <= 0 {
		return sm.Set(next, SOCFeature, 0)
	}
	_, err = sm.Add(next, SOCFeature, -delta/m.CapacityJoules)

	return err
}

// Admissible: inherits EnergyModel's non-admissibility since it is a
// linear function of the (non-admissible) energy estimate.
func (SOCModel) Admissible() bool { return false }

// CustomModel wraps a user-supplied pair of pure functions into the Model
// interface, for features spec §3 calls out as "a custom floating-point
// variable" with no built-in semantics (e.g. a temperature proxy).
type CustomModel struct {
	ModelName string
	Inputs    []statemodel.InputFeature
	Outputs   []statemodel.OutputFeature
	Traverse  func(g *network.Graph, prevEdge *network.EdgeKey, t network.IncidentTriplet, prev, next []float64, sm *statemodel.Model) error
	Estimate  func(g *network.Graph, src, dst network.VertexId, prev, next []float64, sm *statemodel.Model) error
	IsAdmissible bool
}

func (c CustomModel) Name() string                                  { return c.ModelName }
func (c CustomModel) InputFeatures() []statemodel.InputFeature      { return c.Inputs }
func (c CustomModel) OutputFeatures() []statemodel.OutputFeature    { return c.Outputs }
func (c CustomModel) Admissible() bool                              { return c.IsAdmissible }

func (c CustomModel) TraverseEdge(g *network.Graph, prevEdge *network.EdgeKey, t network.IncidentTriplet, prev, next []float64, sm *statemodel.Model) error {
	if c.Traverse == nil {
		return nil
	}

	return c.Traverse(g, prevEdge, t, prev, next, sm)
}

func (c CustomModel) EstimateTraversal(g *network.Graph, src, dst network.VertexId, prev, next []float64, sm *statemodel.Model) error {
	if c.Estimate == nil {
		return nil
	}

	return c.Estimate(g, src, dst, prev, next, sm)
}

// Combined returns its children as a plain []Model slice for passing to
// Build; it does not produce a single Model, and name is discarded (each
// child keeps its own Name()). It does not itself reorder its children —
// Build's topological sort still applies to the children as independent
// stack entries, so Combined is purely a grouping convenience, not a
// correctness mechanism.
func Combined(name string, children ...Model) []Model {
	out := make([]Model, 0, len(children))
	out = append(out, children...)
	_ = name // name is informational; children retain their own Name().

	return out
}
