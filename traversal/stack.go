// File: stack.go
// Role: Build() performs the one-time topological sort of spec §4.3; Stack
//       holds the resulting fixed order and runs it per edge at query time.
// Determinism:
//   - Build visits models in slice order and, within a model, inputs in
//     slice order, so the resulting order is a deterministic function of
//     the input slice — no map iteration drives the sort itself.
package traversal

import (
	"fmt"

	"github.com/routecore/routecore/network"
	"github.com/routecore/routecore/statemodel"
)

// visitState mirrors the White/Gray/Black DFS coloring the teacher's
// dfs.TopologicalSort uses for cycle detection.
type visitState int

const (
	white visitState = iota
	gray
	black
)

// Stack is a fixed, topologically-ordered list of traversal Models and the
// statemodel.Model schema they collectively registered.
type Stack struct {
	models []Model
	sm     *statemodel.Model
}

// StateModel returns the registered feature schema for this stack.
func (s *Stack) StateModel() *statemodel.Model { return s.sm }

// Models returns the models in their fixed execution order.
func (s *Stack) Models() []Model { return append([]Model(nil), s.models...) }

// Build composes models into a Stack, in topological order of their
// declared feature dependencies (spec §4.3 steps 1-4):
//  1. collect (model -> outputs) and (model -> inputs),
//  2. build a dependency graph over model indices (self-loops omitted),
//  3. topologically sort; ErrCyclicDependency on a cycle,
//  4. ErrMissingFeature if an input is produced by no model.
func Build(models []Model) (*Stack, error) {
	n := len(models)
	producedBy := make(map[string]int, n*2) // feature name -> first producing model index

	for i, m := range models {
		for _, out := range m.OutputFeatures() {
			if _, ok := producedBy[out.Name]; !ok {
				producedBy[out.Name] = i
			}
		}
	}

	// Validate every input is produced by some model in the list.
	var missing []string
	for _, m := range models {
		for _, in := range m.InputFeatures() {
			if _, ok := producedBy[in.Name]; !ok {
				missing = append(missing, in.Name)
			}
		}
	}
	if len(missing) > 0 {
		return nil, fmt.Errorf("%w: %v", ErrMissingFeature, missing)
	}

	// Build adjacency: edge j -> k when model k depends on an output of
	// model j (j != k; self-loops are allowed and simply omitted here).
	deps := make([][]int, n) // deps[k] = list of j that k depends on
	for k, m := range models {
		seen := make(map[int]bool)
		for _, in := range m.InputFeatures() {
			j := producedBy[in.Name]
			if j == k || seen[j] {
				continue
			}
			seen[j] = true
			deps[k] = append(deps[k], j)
		}
	}

	state := make([]visitState, n)
	order := make([]int, 0, n)

	var visit func(k int) error
	visit = func(k int) error {
		switch state[k] {
		case black:
			return nil
		case gray:
			return fmt.Errorf("%w: involving model %q", ErrCyclicDependency, models[k].Name())
		}
		state[k] = gray
		for _, j := range deps[k] {
			if err := visit(j); err != nil {
				return err
			}
		}
		state[k] = black
		order = append(order, k)

		return nil
	}

	for k := 0; k < n; k++ {
		if state[k] == white {
			if err := visit(k); err != nil {
				return nil, err
			}
		}
	}

	ordered := make([]Model, n)
	for i, k := range order {
		ordered[i] = models[k]
	}

	sm := statemodel.NewModel()
	var err error
	for _, m := range ordered {
		sm, err = sm.Register(m.InputFeatures(), m.OutputFeatures())
		if err != nil {
			return nil, err
		}
	}

	return &Stack{models: ordered, sm: sm}, nil
}

// Apply clones state and runs every model, in fixed order, to produce the
// post-edge state. Returns the new state; state is never mutated in place
// so the caller's "current" g-score state remains valid for sibling
// expansions.
func (s *Stack) Apply(g *network.Graph, prevEdge *network.EdgeKey, triplet network.IncidentTriplet, state []float64) ([]float64, error) {
	next := append([]float64(nil), state...)
	for _, m := range s.models {
		if err := m.TraverseEdge(g, prevEdge, triplet, state, next, s.sm); err != nil {
			return nil, fmt.Errorf("traversal: model %q: %w", m.Name(), err)
		}
	}

	return next, nil
}

// Estimate clones state and runs every model's EstimateTraversal for a
// direct src->dst hop, used by the A* heuristic.
func (s *Stack) Estimate(g *network.Graph, src, dst network.VertexId, state []float64) ([]float64, error) {
	next := append([]float64(nil), state...)
	for _, m := range s.models {
		if err := m.EstimateTraversal(g, src, dst, state, next, s.sm); err != nil {
			return nil, fmt.Errorf("traversal: model %q: %w", m.Name(), err)
		}
	}

	return next, nil
}

// AllAdmissible reports whether every model in the stack claims an
// admissible EstimateTraversal.
func (s *Stack) AllAdmissible() bool {
	for _, m := range s.models {
		if !m.Admissible() {
			return false
		}
	}

	return true
}
