package seed

import (
	"math"
	"slices"

	"github.com/canopyviz/canopy/pkg/graph"
)

// SeedPositions returns a copy of g in which every node lacking a position
// has been assigned one, where possible. Nodes that already carry a position
// are untouched, and the input graph is never mutated.
//
// Roots - nodes no other node points at - are arranged evenly on a circle of
// radius [RootSpawnRadius] around the origin. Each root's subtree is then
// walked in preorder so parents are placed strictly before their children.
// A visited set bounds the walk on cyclic input; nodes on a cycle with no
// root above them are unreachable and stay unpositioned, which the next
// snapshot is free to correct.
func SeedPositions(g graph.Graph) graph.Graph {
	out := g.Clone()

	roots := rootIDs(out)
	placeRoots(out, roots)

	seen := make(map[graph.NodeID]bool, len(out.Nodes))
	for _, root := range roots {
		walk(out, root, "", seen)
	}
	return out
}

// rootIDs returns, in sorted order, every node that no adjacency list names
// as a target. Sorting keeps root placement deterministic across runs.
func rootIDs(g graph.Graph) []graph.NodeID {
	hasParent := make(map[graph.NodeID]bool)
	for _, targets := range g.Edges {
		for _, t := range targets {
			hasParent[t] = true
		}
	}

	var roots []graph.NodeID
	for id := range g.Nodes {
		if !hasParent[id] {
			roots = append(roots, id)
		}
	}
	slices.Sort(roots)
	return roots
}

// placeRoots distributes unpositioned roots on the ghost-root circle at
// angles 360°·i/n. Roots that already have a position keep it but still
// occupy their angular slot.
func placeRoots(g graph.Graph, roots []graph.NodeID) {
	for i, id := range roots {
		n := g.Nodes[id]
		if n.Position != nil {
			continue
		}
		angle := float64(i) / float64(len(roots)) * 2 * math.Pi
		n.Position = &graph.Position{
			X: RootSpawnRadius * math.Cos(angle),
			Y: RootSpawnRadius * math.Sin(angle),
		}
		g.Nodes[id] = n
	}
}

// walk visits id and then its children in outgoing-edge order, assigning a
// position to each unpositioned child relative to id. parentID is the node
// id was reached from ("" for roots); it supplies the grandparent reference
// for the child cone. When a node has several incoming edges the first
// parent encountered wins - an explicit tie-break, not a semantic claim.
func walk(g graph.Graph, id, parentID graph.NodeID, seen map[graph.NodeID]bool) {
	if seen[id] {
		return
	}
	seen[id] = true

	node, ok := g.Nodes[id]
	if !ok {
		return
	}

	var grandparent *graph.Node
	if gp, ok := g.Nodes[parentID]; ok {
		grandparent = &gp
	}

	for i, childID := range node.Children {
		child, ok := g.Nodes[childID]
		if !ok {
			continue // dangling edge, producer mid-update
		}
		if child.Position == nil {
			// An unplaced parent cannot place its children this pass.
			if pos, ok := ChildPosition(&node, grandparent, i); ok {
				p := pos
				child.Position = &p
				g.Nodes[childID] = child
			}
		}
		walk(g, childID, id, seen)
	}
}
