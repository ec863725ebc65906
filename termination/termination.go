// Package termination implements the iteration/runtime/memory/tree-size
// limits the A* kernel polls each iteration (spec §4.7). Expensive checks
// (wall clock, memory estimate) are sampled every CheckFrequency
// iterations rather than every iteration — the "sample-every-k, k=1
// default" resolution of the Open Question in spec §9 (the source's
// newer termination-model variant, per original_source/).
package termination

import (
	"fmt"
	"strings"
	"time"
)

// Model is one termination policy. ShouldTerminate is polled by the
// kernel every iteration; Explain renders a human-readable reason once
// ShouldTerminate has fired.
type Model interface {
	ShouldTerminate(startTime time.Time, treeSize int, iteration uint64) bool
	Explain(startTime time.Time, treeSize int, iteration uint64) string
}

// FailurePolicy selects what the orchestrator does when termination fires
// mid-search (spec §4.7, §6).
type FailurePolicy int

const (
	// Warn surfaces the partial tree/route to the caller.
	Warn FailurePolicy = iota
	// Fail raises an error carrying the termination explanation.
	Fail
)

// IterationsLimit terminates once iteration count >= Limit.
type IterationsLimit struct {
	Limit uint64
}

func (l IterationsLimit) ShouldTerminate(_ time.Time, _ int, iteration uint64) bool {
	return iteration >= l.Limit
}

func (l IterationsLimit) Explain(_ time.Time, _ int, iteration uint64) string {
	if !l.ShouldTerminate(time.Time{}, 0, iteration) {
		return ""
	}

	return fmt.Sprintf("exceeded iteration limit of %d", l.Limit)
}

// SolutionSizeLimit terminates once the search tree holds >= Limit nodes.
type SolutionSizeLimit struct {
	Limit int
}

func (l SolutionSizeLimit) ShouldTerminate(_ time.Time, treeSize int, _ uint64) bool {
	return treeSize >= l.Limit
}

func (l SolutionSizeLimit) Explain(_ time.Time, treeSize int, _ uint64) string {
	if !l.ShouldTerminate(time.Time{}, treeSize, 0) {
		return ""
	}

	return fmt.Sprintf("exceeded solution size limit of %d", l.Limit)
}

// QueryRuntimeLimit terminates once Duration has elapsed since
// startTime, polled only every Frequency iterations (Frequency<=0 means
// every iteration) to amortize the clock-read cost.
type QueryRuntimeLimit struct {
	Duration  time.Duration
	Frequency uint64
}

func (l QueryRuntimeLimit) sampled(iteration uint64) bool {
	freq := l.Frequency
	if freq == 0 {
		freq = 1
	}

	return iteration%freq == 0
}

func (l QueryRuntimeLimit) ShouldTerminate(startTime time.Time, _ int, iteration uint64) bool {
	if !l.sampled(iteration) {
		return false
	}

	return time.Since(startTime) >= l.Duration
}

func (l QueryRuntimeLimit) Explain(startTime time.Time, _ int, iteration uint64) string {
	if !l.ShouldTerminate(startTime, 0, iteration) {
		return ""
	}

	return fmt.Sprintf("exceeded query runtime limit of %s", l.Duration)
}

// MemoryLimit terminates once an estimated tree byte size exceeds
// LimitBytes, sampled every Frequency iterations. BytesPerNode estimates
// the per-search-tree-node footprint (label + parent pointer + edge +
// state vector); this is an estimate, not instrumented allocation
// tracking, per spec §4.7.
type MemoryLimit struct {
	LimitBytes   int64
	BytesPerNode int64
	Frequency    uint64
}

func (l MemoryLimit) sampled(iteration uint64) bool {
	freq := l.Frequency
	if freq == 0 {
		freq = 1
	}

	return iteration%freq == 0
}

func (l MemoryLimit) ShouldTerminate(_ time.Time, treeSize int, iteration uint64) bool {
	if !l.sampled(iteration) {
		return false
	}
	bpn := l.BytesPerNode
	if bpn <= 0 {
		bpn = 128
	}

	return int64(treeSize)*bpn >= l.LimitBytes
}

func (l MemoryLimit) Explain(_ time.Time, treeSize int, iteration uint64) string {
	if !l.ShouldTerminate(time.Time{}, treeSize, iteration) {
		return ""
	}

	return fmt.Sprintf("exceeded memory limit of %d bytes", l.LimitBytes)
}

// Combined ORs over its children: it fires iff at least one child fires,
// and its explanation concatenates exactly the firing children's
// explanations, in order, joined by ", " (spec §4.7, §8 property 7).
type Combined struct {
	Children []Model
}

func NewCombined(children ...Model) Combined { return Combined{Children: children} }

func (c Combined) ShouldTerminate(startTime time.Time, treeSize int, iteration uint64) bool {
	for _, child := range c.Children {
		if child.ShouldTerminate(startTime, treeSize, iteration) {
			return true
		}
	}

	return false
}

func (c Combined) Explain(startTime time.Time, treeSize int, iteration uint64) string {
	var parts []string
	for _, child := range c.Children {
		if e := child.Explain(startTime, treeSize, iteration); e != "" {
			parts = append(parts, e)
		}
	}

	return strings.Join(parts, ", ")
}
