package graph

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func buildSample() Graph {
	g := New()
	g.Nodes["a"] = Node{ID: "a", Title: "Alpha", Children: []NodeID{"b", "c"}, Position: &Position{X: 1, Y: 2}}
	g.Nodes["b"] = Node{ID: "b", Title: "Beta"}
	g.Nodes["c"] = Node{ID: "c", Title: "Gamma"}
	g.Edges["a"] = []NodeID{"b", "c"}
	return g
}

func TestClone(t *testing.T) {
	g := buildSample()
	c := g.Clone()

	// Mutating the clone must not leak into the original.
	n := c.Nodes["a"]
	n.Title = "changed"
	n.Position.X = 99
	n.Children[0] = "z"
	c.Nodes["a"] = n
	c.Edges["a"][0] = "z"

	if g.Nodes["a"].Title != "Alpha" {
		t.Errorf("title leaked: %q", g.Nodes["a"].Title)
	}
	if g.Nodes["a"].Position.X != 1 {
		t.Errorf("position leaked: %v", g.Nodes["a"].Position)
	}
	if g.Nodes["a"].Children[0] != "b" {
		t.Errorf("children leaked: %v", g.Nodes["a"].Children)
	}
	if g.Edges["a"][0] != "b" {
		t.Errorf("edges leaked: %v", g.Edges["a"])
	}
}

func TestWithNode(t *testing.T) {
	g := buildSample()
	g2 := g.WithNode(Node{ID: "d", Title: "Delta", Children: []NodeID{"a"}})

	if g.NodeCount() != 3 {
		t.Errorf("original mutated: %d nodes", g.NodeCount())
	}
	if g2.NodeCount() != 4 {
		t.Errorf("nodes = %d, want 4", g2.NodeCount())
	}
	if got := g2.Edges["d"]; len(got) != 1 || got[0] != "a" {
		t.Errorf("edges[d] = %v, want [a]", got)
	}
}

func TestWithoutNode(t *testing.T) {
	tests := []struct {
		name      string
		remove    NodeID
		wantNodes int
		wantEdges int
	}{
		{name: "Leaf", remove: "b", wantNodes: 2, wantEdges: 1},
		{name: "Source", remove: "a", wantNodes: 2, wantEdges: 0},
		{name: "Absent", remove: "zzz", wantNodes: 3, wantEdges: 2},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			g := buildSample().WithoutNode(tt.remove)
			if got := g.NodeCount(); got != tt.wantNodes {
				t.Errorf("nodes = %d, want %d", got, tt.wantNodes)
			}
			if got := g.EdgeCount(); got != tt.wantEdges {
				t.Errorf("edges = %d, want %d", got, tt.wantEdges)
			}
		})
	}
}

func TestPositionsRoundTrip(t *testing.T) {
	g := buildSample()
	positions := PositionsOf(g)
	if len(positions) != 1 {
		t.Fatalf("positions = %d, want 1", len(positions))
	}
	if positions["a"] != (Position{X: 1, Y: 2}) {
		t.Errorf("positions[a] = %v", positions["a"])
	}

	// Restoring fills only unpositioned nodes.
	g2 := ApplyPositions(g, map[NodeID]Position{
		"a": {X: 50, Y: 50}, // already positioned, kept
		"b": {X: 3, Y: 4},
		"x": {X: 5, Y: 6}, // unknown node, skipped
	})
	if g2.Nodes["a"].Position.X != 1 {
		t.Errorf("existing position overwritten: %v", g2.Nodes["a"].Position)
	}
	if p := g2.Nodes["b"].Position; p == nil || p.X != 3 || p.Y != 4 {
		t.Errorf("positions[b] not applied: %v", p)
	}
}

func TestSerializationRoundTrip(t *testing.T) {
	g := buildSample()

	var buf bytes.Buffer
	if err := Write(g, &buf); err != nil {
		t.Fatalf("Write: %v", err)
	}

	g2, err := Read(&buf)
	if err != nil {
		t.Fatalf("Read: %v", err)
	}

	if g2.NodeCount() != g.NodeCount() || g2.EdgeCount() != g.EdgeCount() {
		t.Errorf("round trip: %d/%d nodes, %d/%d edges",
			g2.NodeCount(), g.NodeCount(), g2.EdgeCount(), g.EdgeCount())
	}
	n, ok := g2.Node("a")
	if !ok {
		t.Fatal("node a lost")
	}
	if n.Position == nil || n.Position.X != 1 || n.Position.Y != 2 {
		t.Errorf("position lost: %v", n.Position)
	}
}

func TestReadInvalid(t *testing.T) {
	if _, err := Read(strings.NewReader("{not json")); err == nil {
		t.Error("expected error for invalid JSON")
	}
}

func TestReadFileNotFound(t *testing.T) {
	if _, err := ReadFile("nonexistent.json"); err == nil {
		t.Error("expected error for missing file")
	}
}

func TestWriteFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "graph.json")
	if err := WriteFile(buildSample(), path); err != nil {
		t.Fatalf("WriteFile: %v", err)
	}
	if _, err := os.Stat(path); err != nil {
		t.Fatalf("stat: %v", err)
	}
	g, err := ReadFile(path)
	if err != nil {
		t.Fatalf("ReadFile: %v", err)
	}
	if g.NodeCount() != 3 {
		t.Errorf("nodes = %d, want 3", g.NodeCount())
	}
}

func TestToDocumentDeterministic(t *testing.T) {
	g := buildSample()
	a, err := Marshal(g)
	if err != nil {
		t.Fatal(err)
	}
	b, err := Marshal(g)
	if err != nil {
		t.Fatal(err)
	}
	if !bytes.Equal(a, b) {
		t.Error("Marshal is not deterministic")
	}
}
