// Package ksp implements the k-shortest-paths layer (spec §4.10): Yen's
// algorithm and a cheaper single-via-path variant, both driving the
// astar kernel repeatedly with an edge/vertex exclusion set rather than
// mutating the shared graph (spec §9, "KSP re-use of the kernel").
//
// Mirrors the teacher's tsp package in shape: a single Options struct
// with a DefaultOptions constructor, sentinel errors over fmt.Errorf
// wrapping, and a top-level Algorithm selector dispatching to one of two
// strategies.
package ksp

import (
	"errors"
	"time"
)

// Algorithm selects the top-level KSP strategy.
type Algorithm int

const (
	// Yen runs the classic repeated-spur-search procedure.
	Yen Algorithm = iota
	// SingleViaPath samples via-vertices from the first solution's tree
	// and composes two shortest paths through each.
	SingleViaPath
)

// Sentinel errors.
var (
	// ErrNoPath indicates even the first shortest path could not be found.
	ErrNoPath = errors.New("ksp: no path exists")

	// ErrInvalidK indicates K <= 0.
	ErrInvalidK = errors.New("ksp: k must be positive")
)

// SimilarityFn reports how similar two candidate paths are, in [0,1]
// (1 = identical edge sets). Candidates are rejected when their
// similarity to any already-accepted path exceeds Options.MaxSimilarity.
type SimilarityFn func(a, b Candidate) float64

// TerminationCriteria bounds both KSP variants (spec §4.10,
// "KspTerminationCriteria").
type TerminationCriteria struct {
	MaxIterations int           // bounds Yen's outer loop / SingleViaPath's via-vertex sampling
	MaxCandidates int           // bounds the size of Yen's candidate heap B
	TimeBudget    time.Duration // 0 means unbounded
}

// DefaultTerminationCriteria returns conservative, always-safe bounds.
func DefaultTerminationCriteria() TerminationCriteria {
	return TerminationCriteria{
		MaxIterations: 1000,
		MaxCandidates: 1000,
		TimeBudget:    0,
	}
}

// Options configures a KSP run.
type Options struct {
	K             int
	Algo          Algorithm
	MaxSimilarity float64 // Jaccard-of-edge-sets threshold; candidates above this are rejected
	Similarity    SimilarityFn
	Termination   TerminationCriteria

	// ViaPathFactor bounds SingleViaPath candidates to at most this
	// multiple of the optimal cost. Zero defaults to 1.5. Unused by Yen.
	ViaPathFactor float64
}

// DefaultOptions returns Options for k routes using Yen (the
// stronger-guarantee variant), Jaccard edge similarity capped at 0.8, and
// the default per-sub-search termination criteria.
func DefaultOptions(k int) Options {
	return Options{
		K:             k,
		Algo:          Yen,
		MaxSimilarity: 0.8,
		Similarity:    JaccardEdgeSimilarity,
		Termination:   DefaultTerminationCriteria(),
	}
}
