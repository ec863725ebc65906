// Package network defines the immutable road-network graph: vertices,
// edges namespaced by edge-list, and the forward/reverse adjacency that the
// search kernel walks.
//
// A Graph is a directed multigraph. Vertices are identified by a dense
// VertexId (0..|V|). Edges are identified by an EdgeId, further namespaced
// by an EdgeListId so that multiple parallel edge collections can coexist
// (e.g. a base road network plus a charging-connector overlay). Adjacency
// is stored as ordered maps so that incident-edge iteration order is
// deterministic (insertion order), which golden tests and the kernel's
// tie-breaking both depend on.
//
// A Graph is built once via Builder and is immutable and safe for
// concurrent read access from many parallel searches thereafter: there are
// no mutation methods on *Graph itself, only on the Builder that produces
// it. This matches the concurrency model in spec §5 — shared,
// immutable, reference-counted graph; no write lock is ever required
// post-construction.
package network
