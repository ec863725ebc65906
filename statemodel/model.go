// File: model.go
// Role: Model is the registered schema: name -> (index, OutputConfig).
//       Register performs the append-only, conflict-checked registration
//       described in spec §4.2; the typed accessors perform unit
//       conversion and bounds-checking.
// AI-HINT (file):
//   - Register is the ONLY way to grow a Model. Once a query holds a
//     *Model, its indices are frozen for that query's lifetime.
//   - A feature may be input to one model and output of another, or input
//     and output of the same model (self-dependency); Register does not
//     reject that — package traversal's stack builder is what decides
//     ordering, not statemodel.
package statemodel

import "fmt"

// Model is an immutable, append-only registered feature schema.
type Model struct {
	order   []string // feature names in registration order == index
	index   map[string]int
	configs map[string]OutputConfig
}

// NewModel returns an empty Model, ready for Register calls.
func NewModel() *Model {
	return &Model{
		index:   make(map[string]int),
		configs: make(map[string]OutputConfig),
	}
}

// Register adds the named outputs to the Model, validating that any
// feature name already registered declares the same Kind (a Kind clash is
// a build-time ErrConflict, per spec §4.2: "conflicting unit/type
// declarations for the same name are rejected"). An input whose name is
// already registered with a different Kind is also an ErrConflict. Inputs
// do not themselves register a feature — the traversal stack builder is
// responsible for confirming every input is produced by some model's
// output (see package traversal).
//
// Register returns a new *Model; the receiver is left unmodified, so
// callers composing many models can register them one at a time and keep
// each intermediate Model around if useful.
func (m *Model) Register(inputs []InputFeature, outputs []OutputFeature) (*Model, error) {
	next := &Model{
		order:   append([]string(nil), m.order...),
		index:   make(map[string]int, len(m.index)),
		configs: make(map[string]OutputConfig, len(m.configs)),
	}
	for k, v := range m.index {
		next.index[k] = v
	}
	for k, v := range m.configs {
		next.configs[k] = v
	}

	for _, in := range inputs {
		if existing, ok := next.configs[in.Name]; ok && existing.Kind != in.Kind {
			return nil, fmt.Errorf("%w: feature %q declared as %s input but registered as %s", ErrConflict, in.Name, in.Kind, existing.Kind)
		}
	}

	for _, out := range outputs {
		if existing, ok := next.configs[out.Name]; ok {
			if existing.Kind != out.Kind {
				return nil, fmt.Errorf("%w: feature %q re-declared with kind %s, was %s", ErrConflict, out.Name, out.Kind, existing.Kind)
			}
			// Re-declaration by a later model in the chain with the same
			// Kind is allowed (self-dependency / shared accumulator); keep
			// the first registration's config (initial value, unit).
			continue
		}
		next.order = append(next.order, out.Name)
		next.index[out.Name] = len(next.order) - 1
		next.configs[out.Name] = out.OutputConfig
	}

	return next, nil
}

// Len returns the number of registered features (the length of any state
// vector produced by InitialState).
func (m *Model) Len() int { return len(m.order) }

// Names returns the registered feature names in index order.
func (m *Model) Names() []string { return append([]string(nil), m.order...) }

// Has reports whether name is registered.
func (m *Model) Has(name string) bool {
	_, ok := m.index[name]

	return ok
}

// IsAccumulator reports whether name was registered as a monotone
// accumulator feature.
func (m *Model) IsAccumulator(name string) bool {
	return m.configs[name].Accumulator
}

// InitialState returns a fresh state vector seeded from each registered
// feature's Initial value, with optional per-feature overrides (e.g. a
// query-supplied starting SOC) applied on top.
func (m *Model) InitialState(overrides map[string]float64) ([]float64, error) {
	state := make([]float64, len(m.order))
	for i, name := range m.order {
		state[i] = m.configs[name].Initial
	}
	for name, v := range overrides {
		idx, ok := m.index[name]
		if !ok {
			return nil, fmt.Errorf("%w: %q", ErrIndexOutOfBounds, name)
		}
		state[idx] = v
	}

	return state, nil
}

func (m *Model) indexOf(name string, want Kind) (int, error) {
	idx, ok := m.index[name]
	if !ok {
		return 0, fmt.Errorf("%w: %q", ErrIndexOutOfBounds, name)
	}
	if cfg := m.configs[name]; want != Custom && cfg.Kind != want {
		return 0, fmt.Errorf("%w: %q is %s, not %s", ErrWrongKind, name, cfg.Kind, want)
	}

	return idx, nil
}

// Get reads the raw canonical (SI) value of name from state.
func (m *Model) Get(state []float64, name string) (float64, error) {
	idx, ok := m.index[name]
	if !ok {
		return 0, fmt.Errorf("%w: %q", ErrIndexOutOfBounds, name)
	}

	return state[idx], nil
}

// Set writes the raw canonical (SI) value of name into state.
func (m *Model) Set(state []float64, name string, v float64) error {
	idx, ok := m.index[name]
	if !ok {
		return fmt.Errorf("%w: %q", ErrIndexOutOfBounds, name)
	}
	state[idx] = v

	return nil
}

// Add increments the raw canonical value of name in state by delta,
// returning the new value.
func (m *Model) Add(state []float64, name string, delta float64) (float64, error) {
	idx, ok := m.index[name]
	if !ok {
		return 0, fmt.Errorf("%w: %q", ErrIndexOutOfBounds, name)
	}
	state[idx] += delta

	return state[idx], nil
}

// GetDistance reads name (must be Kind Distance) converted to unit.
func (m *Model) GetDistance(state []float64, name string, unit Unit) (float64, error) {
	idx, err := m.indexOf(name, Distance)
	if err != nil {
		return 0, err
	}

	return convertDistance(state[idx], unit)
}

// GetTime reads name (must be Kind Time) converted to unit.
func (m *Model) GetTime(state []float64, name string, unit Unit) (float64, error) {
	idx, err := m.indexOf(name, Time)
	if err != nil {
		return 0, err
	}

	return convertTime(state[idx], unit)
}

// GetSpeed reads name (must be Kind Speed) converted to unit.
func (m *Model) GetSpeed(state []float64, name string, unit Unit) (float64, error) {
	idx, err := m.indexOf(name, Speed)
	if err != nil {
		return 0, err
	}

	return convertSpeed(state[idx], unit)
}

// GetRatio reads name (must be Kind Ratio) converted to unit (Canonical or
// Percent).
func (m *Model) GetRatio(state []float64, name string, unit Unit) (float64, error) {
	idx, err := m.indexOf(name, Ratio)
	if err != nil {
		return 0, err
	}

	return convertRatio(state[idx], unit)
}

// GetEnergy reads name (must be Kind Energy) converted to unit.
func (m *Model) GetEnergy(state []float64, name string, unit Unit) (float64, error) {
	idx, err := m.indexOf(name, Energy)
	if err != nil {
		return 0, err
	}

	return convertEnergy(state[idx], unit)
}

// GetCustomF64 reads name (any Kind) as a raw float64, with no unit
// conversion. Intended for Custom features (SOC, temperature, ...).
func (m *Model) GetCustomF64(state []float64, name string) (float64, error) {
	idx, ok := m.index[name]
	if !ok {
		return 0, fmt.Errorf("%w: %q", ErrIndexOutOfBounds, name)
	}

	return state[idx], nil
}

func convertDistance(meters float64, unit Unit) (float64, error) {
	switch unit {
	case Canonical:
		return meters, nil
	case Kilometers:
		return meters / 1000.0, nil
	case Miles:
		return meters / 1609.344, nil
	default:
		return 0, fmt.Errorf("%w: distance -> %d", ErrUnitConversion, unit)
	}
}

func convertTime(seconds float64, unit Unit) (float64, error) {
	switch unit {
	case Canonical:
		return seconds, nil
	case Minutes:
		return seconds / 60.0, nil
	case Hours:
		return seconds / 3600.0, nil
	default:
		return 0, fmt.Errorf("%w: time -> %d", ErrUnitConversion, unit)
	}
}

func convertSpeed(metersPerSecond float64, unit Unit) (float64, error) {
	switch unit {
	case Canonical:
		return metersPerSecond, nil
	case KilometersPerHour:
		return metersPerSecond * 3.6, nil
	case MilesPerHour:
		return metersPerSecond * 2.236936, nil
	default:
		return 0, fmt.Errorf("%w: speed -> %d", ErrUnitConversion, unit)
	}
}

func convertRatio(fraction float64, unit Unit) (float64, error) {
	switch unit {
	case Canonical:
		return fraction, nil
	case Percent:
		return fraction * 100.0, nil
	default:
		return 0, fmt.Errorf("%w: ratio -> %d", ErrUnitConversion, unit)
	}
}

func convertEnergy(joules float64, unit Unit) (float64, error) {
	switch unit {
	case Canonical:
		return joules, nil
	case KilowattHours:
		return joules / 3.6e6, nil
	default:
		return 0, fmt.Errorf("%w: energy -> %d", ErrUnitConversion, unit)
	}
}
