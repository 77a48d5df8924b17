package store

import (
	"context"
	"errors"
	"testing"

	"github.com/canopyviz/canopy/pkg/graph"
)

func testGraph() graph.Graph {
	g := graph.New()
	g.Nodes["root"] = graph.Node{
		ID:       "root",
		Title:    "Root",
		Children: []graph.NodeID{"child"},
		Position: &graph.Position{X: 200, Y: 0},
	}
	g.Nodes["child"] = graph.Node{ID: "child", Title: "Child"}
	g.Edges["root"] = []graph.NodeID{"child"}
	return g
}

func TestNewWorkspace(t *testing.T) {
	ws := NewWorkspace("/notes", testGraph())

	if ws.ID != "/notes" {
		t.Errorf("ID = %s", ws.ID)
	}
	if len(ws.Graph.Nodes) != 2 {
		t.Errorf("snapshot has %d nodes, want 2", len(ws.Graph.Nodes))
	}
	if ws.UpdatedAt.IsZero() {
		t.Error("UpdatedAt not set")
	}

	// Only positioned nodes make it into the position map.
	if len(ws.Positions) != 1 {
		t.Fatalf("positions = %v, want one entry", ws.Positions)
	}
	if pos := ws.Positions["root"]; pos.X != 200 || pos.Y != 0 {
		t.Errorf("root position = %+v", pos)
	}
}

func TestWorkspacePositionMapRoundTrip(t *testing.T) {
	g := testGraph()
	ws := NewWorkspace("/notes", g)

	restored := graph.New()
	restored.Nodes["root"] = graph.Node{ID: "root", Title: "Root"}
	restored = graph.ApplyPositions(restored, ws.PositionMap())

	node := restored.Nodes["root"]
	if !node.HasPosition() {
		t.Fatal("position not restored")
	}
	if node.Position.X != 200 || node.Position.Y != 0 {
		t.Errorf("restored position = %+v", *node.Position)
	}
}

func TestMemoryStore(t *testing.T) {
	ctx := context.Background()
	s := NewMemoryStore()

	// Missing workspace
	if _, ok, err := s.Load(ctx, "/notes"); ok || err != nil {
		t.Fatalf("Load empty: ok=%v err=%v", ok, err)
	}

	ws := NewWorkspace("/notes", testGraph())
	if err := s.Save(ctx, ws); err != nil {
		t.Fatalf("Save: %v", err)
	}

	got, ok, err := s.Load(ctx, "/notes")
	if err != nil || !ok {
		t.Fatalf("Load: ok=%v err=%v", ok, err)
	}
	if got.ID != ws.ID || len(got.Graph.Nodes) != 2 {
		t.Errorf("loaded workspace differs: %+v", got)
	}

	// Save replaces
	ws2 := NewWorkspace("/notes", graph.New())
	if err := s.Save(ctx, ws2); err != nil {
		t.Fatal(err)
	}
	got, _, _ = s.Load(ctx, "/notes")
	if len(got.Graph.Nodes) != 0 {
		t.Error("Save did not replace workspace")
	}

	// Delete, then delete again
	if err := s.Delete(ctx, "/notes"); err != nil {
		t.Fatalf("Delete: %v", err)
	}
	if _, ok, _ := s.Load(ctx, "/notes"); ok {
		t.Error("workspace survived delete")
	}
	if err := s.Delete(ctx, "/notes"); err != nil {
		t.Errorf("second Delete: %v", err)
	}
}

func TestMemoryStoreClosed(t *testing.T) {
	ctx := context.Background()
	s := NewMemoryStore()
	if err := s.Close(ctx); err != nil {
		t.Fatal(err)
	}

	if err := s.Save(ctx, Workspace{ID: "x"}); !errors.Is(err, ErrClosed) {
		t.Errorf("Save after close: %v", err)
	}
	if _, _, err := s.Load(ctx, "x"); !errors.Is(err, ErrClosed) {
		t.Errorf("Load after close: %v", err)
	}
	if err := s.Delete(ctx, "x"); !errors.Is(err, ErrClosed) {
		t.Errorf("Delete after close: %v", err)
	}
}
