package graph

import (
	"slices"
)

// NodeID is the stable external identifier of a node, unique within a Graph.
// IDs are derived by the producer (typically from a source file path) and
// survive across snapshots, which is what makes reconciliation possible.
type NodeID string

// Position is a screen/world coordinate pair.
type Position struct {
	X float64 `json:"x" bson:"x"`
	Y float64 `json:"y" bson:"y"`
}

// Node is a single note in the graph. Nodes are exclusively owned by their
// Graph and treated as values: an update produces a new Graph rather than
// mutating a node in place.
//
// Position is nil for nodes that have not been placed on screen yet.
type Node struct {
	ID       NodeID    `json:"id" bson:"id"`
	Title    string    `json:"title,omitempty" bson:"title,omitempty"`
	Content  string    `json:"content,omitempty" bson:"content,omitempty"`
	Summary  string    `json:"summary,omitempty" bson:"summary,omitempty"`
	Color    string    `json:"color,omitempty" bson:"color,omitempty"`
	Children []NodeID  `json:"children,omitempty" bson:"children,omitempty"`
	Position *Position `json:"position,omitempty" bson:"position,omitempty"`
}

// HasPosition reports whether the node has been assigned a screen position.
func (n Node) HasPosition() bool { return n.Position != nil }

// Clone returns a deep copy of the node. The children slice and position are
// copied so the clone shares no mutable state with the original.
func (n Node) Clone() Node {
	out := n
	out.Children = slices.Clone(n.Children)
	if n.Position != nil {
		p := *n.Position
		out.Position = &p
	}
	return out
}

// Edge is a directed connection between two nodes, used by the wire format.
// In-memory adjacency lives in [Graph.Edges].
type Edge struct {
	From NodeID `json:"from" bson:"from"`
	To   NodeID `json:"to" bson:"to"`
}

// Graph is an immutable snapshot of the note graph: nodes keyed by ID and
// adjacency lists keyed by edge source.
//
// Every ID appearing as an edge target should exist as a node key, but
// consumers tolerate violations defensively - a snapshot may be observed
// mid-update by the producer.
type Graph struct {
	Nodes map[NodeID]Node
	Edges map[NodeID][]NodeID
}

// New creates an empty Graph with initialized maps.
func New() Graph {
	return Graph{
		Nodes: make(map[NodeID]Node),
		Edges: make(map[NodeID][]NodeID),
	}
}

// NodeCount returns the number of nodes in the graph.
func (g Graph) NodeCount() int { return len(g.Nodes) }

// EdgeCount returns the total number of directed edges.
func (g Graph) EdgeCount() int {
	n := 0
	for _, targets := range g.Edges {
		n += len(targets)
	}
	return n
}

// Node returns the node with the given ID and whether it exists.
func (g Graph) Node(id NodeID) (Node, bool) {
	n, ok := g.Nodes[id]
	return n, ok
}

// Clone returns a structural copy of the graph. Nodes, adjacency slices and
// positions are all copied; mutating the clone never affects the original.
func (g Graph) Clone() Graph {
	out := Graph{
		Nodes: make(map[NodeID]Node, len(g.Nodes)),
		Edges: make(map[NodeID][]NodeID, len(g.Edges)),
	}
	for id, n := range g.Nodes {
		out.Nodes[id] = n.Clone()
	}
	for src, targets := range g.Edges {
		out.Edges[src] = slices.Clone(targets)
	}
	return out
}

// WithNode returns a copy of the graph with n inserted or replaced and its
// adjacency list synced to n.Children. The receiver is left untouched.
func (g Graph) WithNode(n Node) Graph {
	out := g.Clone()
	out.Nodes[n.ID] = n.Clone()
	if len(n.Children) > 0 {
		out.Edges[n.ID] = slices.Clone(n.Children)
	} else {
		delete(out.Edges, n.ID)
	}
	return out
}

// WithoutNode returns a copy of the graph with the node and all edges
// touching it removed. Removing an absent ID is a no-op copy.
func (g Graph) WithoutNode(id NodeID) Graph {
	out := g.Clone()
	delete(out.Nodes, id)
	delete(out.Edges, id)
	for src, targets := range out.Edges {
		out.Edges[src] = slices.DeleteFunc(targets, func(t NodeID) bool { return t == id })
		if len(out.Edges[src]) == 0 {
			delete(out.Edges, src)
		}
	}
	return out
}

// SortedIDs returns all node IDs in lexicographic order. Go maps have no
// insertion order, so every deterministic walk over a snapshot starts here.
func (g Graph) SortedIDs() []NodeID {
	ids := make([]NodeID, 0, len(g.Nodes))
	for id := range g.Nodes {
		ids = append(ids, id)
	}
	slices.Sort(ids)
	return ids
}

// PositionsOf extracts the position of every positioned node. The shell uses
// this to persist placements to disk; the core itself never touches storage.
func PositionsOf(g Graph) map[NodeID]Position {
	out := make(map[NodeID]Position)
	for id, n := range g.Nodes {
		if n.Position != nil {
			out[id] = *n.Position
		}
	}
	return out
}

// ApplyPositions returns a copy of the graph where every node named in
// positions and currently lacking a position receives the stored one.
// Nodes that already have a position keep it.
func ApplyPositions(g Graph, positions map[NodeID]Position) Graph {
	out := g.Clone()
	for id, pos := range positions {
		n, ok := out.Nodes[id]
		if !ok || n.Position != nil {
			continue
		}
		p := pos
		n.Position = &p
		out.Nodes[id] = n
	}
	return out
}
