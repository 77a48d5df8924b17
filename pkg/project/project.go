// Package project flattens a graph snapshot into the flat element list a
// rendering surface consumes.
//
// Projection is a pure, total function: every node becomes one node element,
// every adjacency entry one edge element per target. Output order is sorted
// by ID so projecting the same snapshot twice yields structurally equal
// slices; callers must not read meaning into the order beyond that.
package project

import (
	"fmt"
	"slices"

	"github.com/canopyviz/canopy/pkg/graph"
)

// Element kinds.
const (
	KindNode = "node"
	KindEdge = "edge"
)

// Element is a single renderable item: a node or an edge, identified by a
// surface-unique ID with an opaque data payload. Edge IDs are the
// deterministic string "source-target".
type Element struct {
	Kind string         `json:"kind" bson:"kind"`
	ID   string         `json:"id" bson:"id"`
	Data map[string]any `json:"data,omitempty" bson:"data,omitempty"`
}

// IsNode reports whether the element is a node element.
func (e Element) IsNode() bool { return e.Kind == KindNode }

// IsEdge reports whether the element is an edge element.
func (e Element) IsEdge() bool { return e.Kind == KindEdge }

// CloneData returns a shallow copy of the element's data payload.
func (e Element) CloneData() map[string]any {
	if e.Data == nil {
		return nil
	}
	out := make(map[string]any, len(e.Data))
	for k, v := range e.Data {
		out[k] = v
	}
	return out
}

// EdgeID returns the surface ID for the directed edge source→target.
func EdgeID(source, target graph.NodeID) string {
	return fmt.Sprintf("%s-%s", source, target)
}

// NodeElement projects a single node. The payload carries the fields a
// surface renders; position is deliberately absent - placement flows through
// the seeding pass, not through reconciliation data.
func NodeElement(n graph.Node) Element {
	return Element{
		Kind: KindNode,
		ID:   string(n.ID),
		Data: map[string]any{
			"id":      string(n.ID),
			"label":   n.Title,
			"content": n.Content,
			"summary": n.Summary,
			"color":   n.Color,
		},
	}
}

// EdgeElement projects a single directed edge.
func EdgeElement(source, target graph.NodeID) Element {
	return Element{
		Kind: KindEdge,
		ID:   EdgeID(source, target),
		Data: map[string]any{
			"source": string(source),
			"target": string(target),
		},
	}
}

// Project flattens g into render elements: node elements first (sorted by
// ID), then edge elements (sorted by source, then target). Edges whose
// endpoints are missing from the node set are passed through structurally;
// consistency is the producer's contract, not enforced here.
func Project(g graph.Graph) []Element {
	out := make([]Element, 0, len(g.Nodes)+g.EdgeCount())

	for _, id := range g.SortedIDs() {
		out = append(out, NodeElement(g.Nodes[id]))
	}

	sources := make([]graph.NodeID, 0, len(g.Edges))
	for src := range g.Edges {
		sources = append(sources, src)
	}
	slices.Sort(sources)
	for _, src := range sources {
		for _, target := range g.Edges[src] {
			out = append(out, EdgeElement(src, target))
		}
	}
	return out
}
