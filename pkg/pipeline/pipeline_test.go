package pipeline

import (
	"context"
	"io"
	"testing"

	"github.com/charmbracelet/log"

	"github.com/canopyviz/canopy/pkg/cache"
	"github.com/canopyviz/canopy/pkg/graph"
	"github.com/canopyviz/canopy/pkg/reconcile"
)

func quietLogger() *log.Logger {
	return log.NewWithOptions(io.Discard, log.Options{})
}

// twoNodeGraph is a root with one child, nothing positioned.
func twoNodeGraph() graph.Graph {
	g := graph.New()
	g.Nodes["root"] = graph.Node{ID: "root", Title: "Root", Children: []graph.NodeID{"leaf"}}
	g.Nodes["leaf"] = graph.Node{ID: "leaf", Title: "Leaf"}
	g.Edges["root"] = []graph.NodeID{"leaf"}
	return g
}

func TestOptionsValidation(t *testing.T) {
	opts := Options{}
	if err := opts.ValidateAndSetDefaults(); err == nil {
		t.Error("empty workspace should be rejected")
	}

	opts = Options{Workspace: "/notes"}
	if err := opts.ValidateAndSetDefaults(); err != nil {
		t.Fatalf("valid options rejected: %v", err)
	}
	// Idempotent
	if err := opts.ValidateAndSetDefaults(); err != nil {
		t.Errorf("second validation failed: %v", err)
	}
}

func TestSyncConvergesSurface(t *testing.T) {
	ctx := context.Background()
	runner := NewRunner(nil, nil, quietLogger())
	surface := reconcile.NewMemorySurface()

	result, err := runner.Sync(ctx, twoNodeGraph(), surface, Options{Workspace: "/notes"})
	if err != nil {
		t.Fatalf("Sync: %v", err)
	}

	if result.Stats.NodeCount != 2 || result.Stats.EdgeCount != 1 {
		t.Errorf("stats = %+v", result.Stats)
	}
	if len(surface.Elements()) != 3 {
		t.Fatalf("surface has %d elements, want 2 nodes + 1 edge", len(surface.Elements()))
	}

	// Every node in the result carries a position after seeding.
	for id, n := range result.Graph.Nodes {
		if !n.HasPosition() {
			t.Errorf("node %s unpositioned after sync", id)
		}
	}

	// A second pass over the same snapshot is a no-op.
	result, err = runner.Sync(ctx, twoNodeGraph(), surface, Options{Workspace: "/notes"})
	if err != nil {
		t.Fatal(err)
	}
	if !result.Plan.Empty() {
		t.Errorf("second sync produced changes: %+v", result.Plan)
	}
}

func TestSyncDoesNotMutateInput(t *testing.T) {
	ctx := context.Background()
	runner := NewRunner(nil, nil, quietLogger())
	g := twoNodeGraph()

	if _, err := runner.Sync(ctx, g, reconcile.NewMemorySurface(), Options{Workspace: "/notes"}); err != nil {
		t.Fatal(err)
	}
	for id, n := range g.Nodes {
		if n.HasPosition() {
			t.Errorf("input node %s gained a position", id)
		}
	}
}

func TestSyncRestoresPersistedPositions(t *testing.T) {
	ctx := context.Background()
	c, err := cache.NewFileCache(t.TempDir())
	if err != nil {
		t.Fatal(err)
	}
	runner := NewRunner(c, nil, quietLogger())

	first, err := runner.Sync(ctx, twoNodeGraph(), reconcile.NewMemorySurface(), Options{Workspace: "/notes"})
	if err != nil {
		t.Fatal(err)
	}

	// A fresh surface and unpositioned snapshot pick up the stored layout.
	second, err := runner.Sync(ctx, twoNodeGraph(), reconcile.NewMemorySurface(), Options{Workspace: "/notes"})
	if err != nil {
		t.Fatal(err)
	}
	if !second.CacheInfo.PositionsHit {
		t.Fatal("stored positions not restored")
	}
	if second.CacheInfo.PositionsRestored != 2 {
		t.Errorf("restored = %d, want 2", second.CacheInfo.PositionsRestored)
	}
	for id := range first.Graph.Nodes {
		a, b := *first.Graph.Nodes[id].Position, *second.Graph.Nodes[id].Position
		if a != b {
			t.Errorf("node %s moved across runs: %+v vs %+v", id, a, b)
		}
	}

	// Refresh ignores the stored layout.
	third, err := runner.Sync(ctx, twoNodeGraph(), reconcile.NewMemorySurface(), Options{
		Workspace: "/notes",
		Refresh:   true,
	})
	if err != nil {
		t.Fatal(err)
	}
	if third.CacheInfo.PositionsHit {
		t.Error("refresh should skip the position cache")
	}
}

func TestSyncCachesSnapshot(t *testing.T) {
	ctx := context.Background()
	c, err := cache.NewFileCache(t.TempDir())
	if err != nil {
		t.Fatal(err)
	}
	runner := NewRunner(c, nil, quietLogger())

	if _, hit, err := runner.RestoreSnapshot(ctx, "/notes"); err != nil || hit {
		t.Fatalf("snapshot before any sync: hit=%v err=%v", hit, err)
	}

	result, err := runner.Sync(ctx, twoNodeGraph(), reconcile.NewMemorySurface(), Options{Workspace: "/notes"})
	if err != nil {
		t.Fatal(err)
	}

	snap, hit, err := runner.RestoreSnapshot(ctx, "/notes")
	if err != nil || !hit {
		t.Fatalf("snapshot after sync: hit=%v err=%v", hit, err)
	}
	if snap.NodeCount() != 2 || snap.EdgeCount() != 1 {
		t.Fatalf("snapshot shape: %d nodes, %d edges", snap.NodeCount(), snap.EdgeCount())
	}
	for id, n := range result.Graph.Nodes {
		got, ok := snap.Nodes[id]
		if !ok || !got.HasPosition() {
			t.Fatalf("node %s missing or unpositioned in snapshot", id)
		}
		if *got.Position != *n.Position {
			t.Errorf("node %s moved in snapshot: %+v vs %+v", id, *got.Position, *n.Position)
		}
	}
}

func TestForgetPositions(t *testing.T) {
	ctx := context.Background()
	c, err := cache.NewFileCache(t.TempDir())
	if err != nil {
		t.Fatal(err)
	}
	runner := NewRunner(c, nil, quietLogger())

	if _, err := runner.Sync(ctx, twoNodeGraph(), reconcile.NewMemorySurface(), Options{Workspace: "/notes"}); err != nil {
		t.Fatal(err)
	}
	if err := runner.ForgetPositions(ctx, "/notes"); err != nil {
		t.Fatalf("ForgetPositions: %v", err)
	}
	if _, hit, err := runner.RestorePositions(ctx, "/notes"); err != nil || hit {
		t.Errorf("positions survived forget: hit=%v err=%v", hit, err)
	}
}

func TestNewRunnerDefaults(t *testing.T) {
	runner := NewRunner(nil, nil, nil)
	if runner.Cache == nil || runner.Keyer == nil || runner.Logger == nil {
		t.Error("nil arguments should be defaulted")
	}
}
