// Package config loads the construction-time Configuration document (spec
// §6) and builds a ready-to-run orchestrator.Instance from it, following
// vanderheijden86-beadwork's pkg/config shape (yaml.v3, a DefaultConfig,
// Load/LoadFrom pair) generalized from a TUI's project list to a routing
// engine's model/graph/termination wiring.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"gopkg.in/yaml.v3"

	"github.com/routecore/routecore/constraint"
	"github.com/routecore/routecore/costmodel"
	"github.com/routecore/routecore/labelmodel"
	"github.com/routecore/routecore/network"
	"github.com/routecore/routecore/orchestrator"
	"github.com/routecore/routecore/termination"
	"github.com/routecore/routecore/traversal"
)

// ModelSpec is one traversal- or constraint-model entry; Type selects the
// built-in and the remaining fields are read only by the types that use
// them (spec §6: "a list with type ... and model-specific params").
type ModelSpec struct {
	Type string `yaml:"type"`

	// traversal params
	DefaultSpeed    float64 `yaml:"default_speed,omitempty"`
	MaxSpeed        float64 `yaml:"max_speed,omitempty"`
	Mass            float64 `yaml:"mass,omitempty"`
	RollingResist   float64 `yaml:"rolling_resist,omitempty"`
	RegenEfficiency float64 `yaml:"regen_efficiency,omitempty"`
	CapacityJoules  float64 `yaml:"capacity_joules,omitempty"`

	// constraint params
	ExcludedRoadClasses []float64 `yaml:"excluded_road_classes,omitempty"`
	MaxHeight           float64   `yaml:"max_height,omitempty"`
	MaxWeight           float64   `yaml:"max_weight,omitempty"`
	SOCFeature          string    `yaml:"soc_feature,omitempty"`
	MinSOC              float64   `yaml:"min_soc,omitempty"`
}

// LabelConfig selects the label model (spec §6: "label.type").
type LabelConfig struct {
	Type        string `yaml:"type"`
	SOCFeature  string `yaml:"soc_feature,omitempty"`
	Granularity int    `yaml:"granularity,omitempty"`
}

// TerminationConfig is one termination variant, possibly a Combined list
// of further variants (spec §6: "termination: one of the variants above;
// may be combined: [ ... ]").
type TerminationConfig struct {
	Type            string              `yaml:"type,omitempty"` // iterations | solution_size | runtime | memory | combined
	MaxIterations   uint64              `yaml:"max_iterations,omitempty"`
	MaxSolutionSize int                 `yaml:"max_solution_size,omitempty"`
	MaxRuntime      string              `yaml:"max_runtime,omitempty"` // e.g. "30s", parsed with time.ParseDuration
	MaxMemoryBytes  int64               `yaml:"max_memory_bytes,omitempty"`
	BytesPerNode    int64               `yaml:"bytes_per_node,omitempty"`
	CheckFrequency  uint64              `yaml:"check_frequency,omitempty"`
	FailurePolicy   string              `yaml:"failure_policy,omitempty"` // warn | fail
	Combined        []TerminationConfig `yaml:"combined,omitempty"`
}

// FeatureCostConfig is one feature's weight and linear rate multipliers.
type FeatureCostConfig struct {
	Weight      float64 `yaml:"weight"`
	VehicleRate float64 `yaml:"vehicle_rate,omitempty"` // multiplies the state delta; 0 means Identity (1.0)
	NetworkRate float64 `yaml:"network_rate,omitempty"` // multiplies the state delta again, as a network-side (toll-like) term; 0 disables
	TurnPenalty float64 `yaml:"turn_penalty,omitempty"` // added when the incoming and outgoing edges' road_class differ; 0 disables
}

// CostConfig configures the cost model (spec §6: "cost: { weights,
// vehicle_rates, network_rates, cost_aggregation }").
type CostConfig struct {
	Features                   map[string]FeatureCostConfig `yaml:"features"`
	Aggregation                string                       `yaml:"cost_aggregation"` // sum | product | mean
	AllowInadmissibleHeuristic bool                          `yaml:"allow_inadmissible_heuristic,omitempty"`
}

// GraphConfig names the edge/vertex CSV input files (spec §6).
type GraphConfig struct {
	EdgeListInputFile   string `yaml:"edge_list_input_file"`
	VertexListInputFile string `yaml:"vertex_list_input_file"`
}

// AlgorithmConfig selects the default per-instance algorithm (spec §6).
type AlgorithmConfig struct {
	Type string `yaml:"type"` // a_star | dijkstra | yens | ksp_single_via
}

// OutputPolicy describes where/how query results are written (spec §6:
// "response_output_policy: where/how to write results").
type OutputPolicy struct {
	Path   string `yaml:"path,omitempty"`
	Format string `yaml:"format,omitempty"` // json
}

// Config is the top-level construction-time document (spec §6,
// "Configuration (at construction time)").
type Config struct {
	Algorithm            AlgorithmConfig     `yaml:"algorithm"`
	Graph                GraphConfig         `yaml:"graph"`
	Traversal            []ModelSpec         `yaml:"traversal"`
	Constraint           []ModelSpec         `yaml:"constraint"`
	Label                LabelConfig         `yaml:"label"`
	Termination          TerminationConfig   `yaml:"termination"`
	Cost                 CostConfig          `yaml:"cost"`
	Parallelism          int                 `yaml:"parallelism"`
	ResponseOutputPolicy OutputPolicy        `yaml:"response_output_policy"`
	Verbose              bool                `yaml:"verbose,omitempty"`

	// baseDir anchors GraphConfig's relative input file paths to the
	// config file's own directory (spec §9 wiring detail, not an explicit
	// spec requirement: a config loaded from ./cfgs/foo.yaml should
	// resolve ./cfgs/edges.csv relative to cfgs/, not the process cwd).
	baseDir string
}

// DefaultConfig returns a Config naming plain-Dijkstra/distance-only
// defaults, parallelism 1.
func DefaultConfig() Config {
	return Config{
		Algorithm:   AlgorithmConfig{Type: "dijkstra"},
		Traversal:   []ModelSpec{{Type: "distance"}},
		Label:       LabelConfig{Type: "vertex"},
		Termination: TerminationConfig{Type: "iterations", MaxIterations: 10_000_000},
		Cost: CostConfig{
			Features:     map[string]FeatureCostConfig{traversal.DistanceFeature: {Weight: 1.0}},
			Aggregation:  "sum",
		},
		Parallelism: 1,
	}
}

// LoadFrom reads and parses a YAML config document from path.
func LoadFrom(path string) (Config, error) {
	cfg := DefaultConfig()

	data, err := os.ReadFile(path)
	if err != nil {
		return cfg, fmt.Errorf("config: reading %s: %w", path, err)
	}
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return cfg, fmt.Errorf("config: parsing %s: %w", path, err)
	}
	cfg.baseDir = filepath.Dir(path)

	return cfg, nil
}

// resolvePath anchors a possibly-relative input file path to the config
// file's directory.
func (c Config) resolvePath(p string) string {
	if p == "" || filepath.IsAbs(p) || c.baseDir == "" {
		return p
	}

	return filepath.Join(c.baseDir, p)
}

// NewLogger builds the zap logger the rest of the stack is injected with,
// following theRebelliousNerd-codenerd/cmd/nerd's ProductionConfig +
// AtomicLevelAt(Debug) idiom for a --verbose flag.
func (c Config) NewLogger() (*zap.Logger, error) {
	zc := zap.NewProductionConfig()
	if c.Verbose {
		zc.Level = zap.NewAtomicLevelAt(zapcore.DebugLevel)
	}

	return zc.Build()
}

// LoadGraph opens and parses the configured edge/vertex CSV files (spec
// §6, "Edge/Vertex files").
func (c Config) LoadGraph() (*network.Graph, error) {
	vf, err := os.Open(c.resolvePath(c.Graph.VertexListInputFile))
	if err != nil {
		return nil, fmt.Errorf("config: vertex file: %w", err)
	}
	defer vf.Close()

	ef, err := os.Open(c.resolvePath(c.Graph.EdgeListInputFile))
	if err != nil {
		return nil, fmt.Errorf("config: edge file: %w", err)
	}
	defer ef.Close()

	return network.LoadCSV(vf, ef)
}

// BuildTraversal constructs the traversal stack named by c.Traversal.
func (c Config) BuildTraversal() (*traversal.Stack, error) {
	models := make([]traversal.Model, 0, len(c.Traversal))
	for _, spec := range c.Traversal {
		m, err := buildTraversalModel(spec)
		if err != nil {
			return nil, err
		}
		models = append(models, m)
	}

	return traversal.Build(models)
}

func buildTraversalModel(spec ModelSpec) (traversal.Model, error) {
	switch spec.Type {
	case "distance":
		return traversal.DistanceModel{}, nil
	case "speed":
		return traversal.NewSpeedModel(spec.DefaultSpeed, spec.MaxSpeed), nil
	case "grade":
		return traversal.GradeModel{}, nil
	case "time":
		return traversal.TimeModel{}, nil
	case "energy":
		return traversal.NewEnergyModel(spec.Mass, spec.RollingResist, spec.RegenEfficiency), nil
	case "soc":
		return traversal.NewSOCModel(spec.CapacityJoules), nil
	default:
		return nil, fmt.Errorf("config: unknown traversal model type %q", spec.Type)
	}
}

// BuildConstraint constructs the conjunction of c.Constraint, defaulting
// to NoRestriction when empty.
func (c Config) BuildConstraint() (constraint.Model, error) {
	if len(c.Constraint) == 0 {
		return constraint.NoRestriction{}, nil
	}

	models := make([]constraint.Model, 0, len(c.Constraint))
	for _, spec := range c.Constraint {
		m, err := buildConstraintModel(spec)
		if err != nil {
			return nil, err
		}
		models = append(models, m)
	}
	if len(models) == 1 {
		return models[0], nil
	}

	return constraint.NewAnd(models...), nil
}

func buildConstraintModel(spec ModelSpec) (constraint.Model, error) {
	switch spec.Type {
	case "no_restriction":
		return constraint.NoRestriction{}, nil
	case "road_class":
		return constraint.NewRoadClassFilter(spec.ExcludedRoadClasses...), nil
	case "vehicle_restriction":
		return constraint.VehicleRestriction{MaxHeight: spec.MaxHeight, MaxWeight: spec.MaxWeight}, nil
	case "battery":
		return constraint.NewBatteryConstraint(spec.SOCFeature, spec.MinSOC), nil
	default:
		return nil, fmt.Errorf("config: unknown constraint model type %q (turn_restriction needs explicit pairs and is wired in Go, not YAML)", spec.Type)
	}
}

// BuildLabel constructs the label model named by c.Label.
func (c Config) BuildLabel() (labelmodel.Model, error) {
	switch c.Label.Type {
	case "", "vertex":
		return labelmodel.VertexLabel{}, nil
	case "soc":
		return labelmodel.NewSOCBucketLabel(c.Label.SOCFeature, c.Label.Granularity), nil
	default:
		return nil, fmt.Errorf("config: unknown label type %q", c.Label.Type)
	}
}

// BuildTermination constructs the termination model named by c.Termination,
// recursing through Combined entries.
func (c Config) BuildTermination() (termination.Model, error) {
	return buildTerminationModel(c.Termination)
}

func buildTerminationModel(spec TerminationConfig) (termination.Model, error) {
	switch spec.Type {
	case "iterations":
		return termination.IterationsLimit{Limit: spec.MaxIterations}, nil
	case "solution_size":
		return termination.SolutionSizeLimit{Limit: spec.MaxSolutionSize}, nil
	case "runtime":
		d, err := time.ParseDuration(spec.MaxRuntime)
		if err != nil {
			return nil, fmt.Errorf("config: max_runtime: %w", err)
		}

		return termination.QueryRuntimeLimit{Duration: d, Frequency: spec.CheckFrequency}, nil
	case "memory":
		return termination.MemoryLimit{LimitBytes: spec.MaxMemoryBytes, BytesPerNode: spec.BytesPerNode, Frequency: spec.CheckFrequency}, nil
	case "combined", "":
		if len(spec.Combined) == 0 {
			return termination.IterationsLimit{Limit: 10_000_000}, nil
		}
		children := make([]termination.Model, 0, len(spec.Combined))
		for _, child := range spec.Combined {
			cm, err := buildTerminationModel(child)
			if err != nil {
				return nil, err
			}
			children = append(children, cm)
		}

		return termination.NewCombined(children...), nil
	default:
		return nil, fmt.Errorf("config: unknown termination type %q", spec.Type)
	}
}

func (c Config) failurePolicy() termination.FailurePolicy {
	if c.Termination.FailurePolicy == "fail" {
		return termination.Fail
	}

	return termination.Warn
}

// BuildCost constructs the cost model named by c.Cost.
func (c Config) BuildCost(g *network.Graph, traversalStack *traversal.Stack) (*costmodel.Model, error) {
	sm := traversalStack.StateModel()
	features := make(map[string]costmodel.FeatureConfig, len(c.Cost.Features))
	for name, fc := range c.Cost.Features {
		rate := fc.VehicleRate
		features[name] = costmodel.FeatureConfig{
			Weight:      fc.Weight,
			VehicleRate: linearRate(rate),
			NetworkRate: networkRate(fc.NetworkRate, fc.TurnPenalty),
		}
	}

	return costmodel.Build(sm, features, parseAggregation(c.Cost.Aggregation), c.Cost.AllowInadmissibleHeuristic)
}

func linearRate(multiplier float64) costmodel.RateFn {
	if multiplier == 0 {
		return costmodel.Identity
	}

	return func(delta float64) float64 { return delta * multiplier }
}

// networkRate builds a NetworkRateFn combining a flat per-edge multiplier
// with a turn penalty applied when prevEdge and nextEdge carry different
// road_class attributes (spec §4.5, access_cost's transition-pair rate).
// A route's first edge has no prevEdge, so no penalty applies there.
func networkRate(multiplier, turnPenalty float64) costmodel.NetworkRateFn {
	if multiplier == 0 && turnPenalty == 0 {
		return nil
	}

	return func(prevEdge, nextEdge *network.Edge, delta float64) float64 {
		rate := delta * multiplier
		if turnPenalty == 0 || prevEdge == nil || nextEdge == nil {
			return rate
		}
		prevClass, hasPrev := prevEdge.Attr("road_class")
		nextClass, hasNext := nextEdge.Attr("road_class")
		if hasPrev && hasNext && prevClass != nextClass {
			rate += turnPenalty
		}

		return rate
	}
}

func parseAggregation(s string) costmodel.Aggregation {
	switch s {
	case "product":
		return costmodel.Product
	case "mean":
		return costmodel.Mean
	default:
		return costmodel.Sum
	}
}

// Build assembles a fully wired orchestrator.Instance from c.
func Build(c Config) (*orchestrator.Instance, error) {
	g, err := c.LoadGraph()
	if err != nil {
		return nil, err
	}
	stack, err := c.BuildTraversal()
	if err != nil {
		return nil, err
	}
	cm, err := c.BuildConstraint()
	if err != nil {
		return nil, err
	}
	lm, err := c.BuildLabel()
	if err != nil {
		return nil, err
	}
	tm, err := c.BuildTermination()
	if err != nil {
		return nil, err
	}
	cost, err := c.BuildCost(g, stack)
	if err != nil {
		return nil, err
	}
	logger, err := c.NewLogger()
	if err != nil {
		return nil, err
	}

	parallelism := c.Parallelism
	if parallelism <= 0 {
		parallelism = 1
	}

	return &orchestrator.Instance{
		Graph:         g,
		Traversal:     stack,
		Constraint:    cm,
		Cost:          cost,
		Label:         lm,
		Termination:   tm,
		FailurePolicy: c.failurePolicy(),
		Parallelism:   parallelism,
		Logger:        logger,
	}, nil
}
