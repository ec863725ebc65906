// File: types.go
// Role: Feature kinds, units, and sentinel errors for the state model.
package statemodel

import "errors"

// Sentinel errors for state-model construction and access.
var (
	// ErrConflict indicates two models declared the same feature name with
	// different Kinds.
	ErrConflict = errors.New("statemodel: conflicting feature declaration")

	// ErrIndexOutOfBounds indicates an accessor referenced an unregistered
	// feature name.
	ErrIndexOutOfBounds = errors.New("statemodel: unknown feature name")

	// ErrWrongKind indicates a typed accessor (GetDistance, GetEnergy, ...)
	// was used against a feature registered with a different Kind.
	ErrWrongKind = errors.New("statemodel: accessor kind does not match registered feature kind")

	// ErrUnitConversion indicates a requested output unit is incompatible
	// with the feature's Kind (e.g. converting a Speed feature to Joules).
	ErrUnitConversion = errors.New("statemodel: incompatible unit for feature kind")
)

// Kind classifies a state feature's physical dimension.
type Kind int

const (
	// Distance is a length (meters canonical).
	Distance Kind = iota
	// Time is a duration (seconds canonical).
	Time
	// Speed is a rate of distance over time (meters/second canonical).
	Speed
	// Ratio is a dimensionless fraction or grade (e.g. road grade, SOC).
	Ratio
	// Energy is work/energy (joules canonical).
	Energy
	// Custom is an arbitrary f64 feature with no built-in unit conversion.
	Custom
)

// String renders the Kind for logs and error messages.
func (k Kind) String() string {
	switch k {
	case Distance:
		return "distance"
	case Time:
		return "time"
	case Speed:
		return "speed"
	case Ratio:
		return "ratio"
	case Energy:
		return "energy"
	default:
		return "custom"
	}
}

// Unit is a physical unit a Kind's canonical (SI) value can be converted
// to/from. The zero value Canonical means "no conversion" (SI units:
// meters, seconds, meters/second, dimensionless, joules).
type Unit int

const (
	// Canonical requests the feature's SI-canonical unit (no conversion).
	Canonical Unit = iota
	Kilometers
	Miles
	Hours
	Minutes
	KilometersPerHour
	MilesPerHour
	Percent // ratio * 100
	KilowattHours
)

// InputFeature declares that a model reads a named feature of the given
// Kind from the state vector. Inputs do not carry a unit or initial value —
// those are properties of whichever model's OutputFeature produced it.
type InputFeature struct {
	Name string
	Kind Kind
}

// OutputConfig declares the schema for a feature a model writes.
type OutputConfig struct {
	Kind        Kind    // physical dimension
	Unit        Unit    // preferred output unit for pretty-printing
	Initial     float64 // value in initial_state() before any traversal
	Accumulator bool    // monotone non-decreasing along any valid path
}

// OutputFeature pairs a feature name with its OutputConfig.
type OutputFeature struct {
	Name string
	OutputConfig
}
