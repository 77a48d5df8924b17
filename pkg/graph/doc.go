// Package graph defines the immutable domain model shared by all of canopy.
//
// A [Graph] is a value snapshot of the mirrored note graph: a set of nodes
// keyed by stable [NodeID] plus an adjacency map of directed edges keyed by
// source. Snapshots are produced whole by an external source (see
// pkg/source/markdown) and are never mutated in place - every update builds a
// new Graph via [Graph.Clone].
//
// # Positions
//
// A node may or may not have a screen position yet. Absence is explicit: the
// Position field is a pointer and nil means "not positioned". Callers must
// check for nil rather than assume a default coordinate; pkg/seed fills
// missing positions before a snapshot is projected onto a rendering surface.
//
// # Serialization
//
// Graphs serialize to a flat JSON document (node list + edge list) so the
// shell can persist snapshots and serve them over HTTP:
//
//	data, err := graph.Marshal(g)
//	g2, err := graph.Read(bytes.NewReader(data))
//
// The wire format sorts nodes and edges by ID for deterministic output.
package graph
