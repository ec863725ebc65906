// Package statemodel defines the per-search state vector and its schema.
//
// A state vector is a flat []float64 of semantically typed features
// (distance, time, speed, a grade/ratio, energy, or an arbitrary custom
// f64 such as state-of-charge or temperature). The schema — the Model —
// gives each named feature a stable index, a Kind, a unit, and a config
// (initial value, whether the feature is an accumulator). Registration is
// append-only across a chain of traversal models (see package traversal);
// once registered for a query, a Model's indices are immutable for the
// query's lifetime.
package statemodel
