package pipeline

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/charmbracelet/log"

	"github.com/canopyviz/canopy/pkg/cache"
	"github.com/canopyviz/canopy/pkg/graph"
	"github.com/canopyviz/canopy/pkg/observability"
	"github.com/canopyviz/canopy/pkg/project"
	"github.com/canopyviz/canopy/pkg/reconcile"
	"github.com/canopyviz/canopy/pkg/seed"
)

// Runner encapsulates pipeline execution with position caching.
// Both CLI and API use this to avoid duplicating persistence logic.
//
// The Runner is stateless except for the cache and logger - it doesn't
// store pipeline results. Multiple goroutines can safely use the same
// Runner with different surfaces.
type Runner struct {
	Cache  cache.Cache
	Keyer  cache.Keyer
	Logger *log.Logger
}

// NewRunner creates a runner with the given cache and keyer.
// If keyer is nil, a DefaultKeyer is used.
// If cache is nil, a NullCache is used (position persistence disabled).
func NewRunner(c cache.Cache, keyer cache.Keyer, logger *log.Logger) *Runner {
	if keyer == nil {
		keyer = cache.NewDefaultKeyer()
	}
	if c == nil {
		c = cache.NewNullCache()
	}
	if logger == nil {
		logger = log.Default()
	}
	return &Runner{
		Cache:  c,
		Keyer:  keyer,
		Logger: logger,
	}
}

// Sync converges surface onto one snapshot: restore positions, seed, project,
// diff, apply, persist. The input graph is never mutated.
func (r *Runner) Sync(ctx context.Context, g graph.Graph, surface reconcile.Surface, opts Options) (*Result, error) {
	if err := opts.ValidateAndSetDefaults(); err != nil {
		return nil, fmt.Errorf("invalid options: %w", err)
	}
	logger := r.Logger
	if opts.Logger != nil {
		logger = opts.Logger
	}

	syncStart := time.Now()
	observability.Sync().OnSyncStart(ctx, opts.Workspace, len(g.Nodes))

	result := &Result{}

	// Stage 0: Restore persisted positions so stable nodes stay put.
	if !opts.Refresh {
		positions, hit, err := r.RestorePositions(ctx, opts.Workspace)
		if err != nil {
			// A broken cache shouldn't block a sync; re-seed instead.
			logger.Warn("position restore failed", "workspace", opts.Workspace, "error", err)
		} else if hit {
			restored := 0
			for id := range g.Nodes {
				if _, ok := positions[id]; ok && !g.Nodes[id].HasPosition() {
					restored++
				}
			}
			g = graph.ApplyPositions(g, positions)
			result.CacheInfo.PositionsHit = true
			result.CacheInfo.PositionsRestored = restored
		}
	}

	// Stage 1: Seed
	seedStart := time.Now()
	seeded := seed.SeedPositions(g)
	result.Graph = seeded
	result.Stats.SeedTime = time.Since(seedStart)
	result.Stats.NodeCount = seeded.NodeCount()
	result.Stats.EdgeCount = seeded.EdgeCount()

	logger.Info("seeded positions",
		"nodes", result.Stats.NodeCount,
		"edges", result.Stats.EdgeCount,
		"restored", result.CacheInfo.PositionsRestored,
		"duration", result.Stats.SeedTime)

	// Stage 2: Project
	projectStart := time.Now()
	desired := project.Project(seeded)
	result.Stats.ProjectTime = time.Since(projectStart)

	// Stage 3: Diff
	diffStart := time.Now()
	plan := reconcile.Diff(surface.Elements(), desired)
	result.Plan = plan
	result.Stats.DiffTime = time.Since(diffStart)
	result.Stats.PlanSize = plan.Size()

	// Stage 4: Apply
	applyStart := time.Now()
	reconcile.Apply(surface, plan)
	result.Stats.ApplyTime = time.Since(applyStart)

	logger.Info("surface converged",
		"added", len(plan.NodesToAdd),
		"removed", len(plan.NodesToRemove),
		"updated", len(plan.NodesToUpdate),
		"edges_added", len(plan.EdgesToAdd),
		"edges_removed", len(plan.EdgesToRemove),
		"duration", result.Stats.ApplyTime)

	// Persist the full position map for the next run, and the seeded
	// snapshot so consumers can render it without re-parsing the notes.
	if err := r.PersistPositions(ctx, opts.Workspace, graph.PositionsOf(seeded)); err != nil {
		logger.Warn("position persist failed", "workspace", opts.Workspace, "error", err)
	}
	if err := r.PersistSnapshot(ctx, opts.Workspace, seeded); err != nil {
		logger.Warn("snapshot persist failed", "workspace", opts.Workspace, "error", err)
	}

	observability.Sync().OnSyncComplete(ctx, opts.Workspace, plan.Size(), time.Since(syncStart), nil)
	return result, nil
}

// RestorePositions loads the persisted position map for a workspace.
// A cache miss returns (nil, false, nil).
func (r *Runner) RestorePositions(ctx context.Context, workspace string) (map[graph.NodeID]graph.Position, bool, error) {
	data, hit, err := r.Cache.Get(ctx, r.Keyer.PositionsKey(workspace))
	if err != nil || !hit {
		observability.Cache().OnCacheMiss(ctx, "positions")
		return nil, false, err
	}
	observability.Cache().OnCacheHit(ctx, "positions")

	var stored map[string]graph.Position
	if err := json.Unmarshal(data, &stored); err != nil {
		return nil, false, fmt.Errorf("decode cached positions: %w", err)
	}

	positions := make(map[graph.NodeID]graph.Position, len(stored))
	for id, pos := range stored {
		positions[graph.NodeID(id)] = pos
	}
	return positions, true, nil
}

// PersistPositions stores a workspace's position map with no expiry.
func (r *Runner) PersistPositions(ctx context.Context, workspace string, positions map[graph.NodeID]graph.Position) error {
	stored := make(map[string]graph.Position, len(positions))
	for id, pos := range positions {
		stored[string(id)] = pos
	}

	data, err := json.Marshal(stored)
	if err != nil {
		return fmt.Errorf("encode positions: %w", err)
	}
	observability.Cache().OnCacheSet(ctx, "positions", len(data))
	return r.Cache.Set(ctx, r.Keyer.PositionsKey(workspace), data, cache.TTLPositions)
}

// ForgetPositions drops a workspace's persisted position map, forcing the
// next sync to re-seed from scratch.
func (r *Runner) ForgetPositions(ctx context.Context, workspace string) error {
	return r.Cache.Delete(ctx, r.Keyer.PositionsKey(workspace))
}

// RestoreSnapshot loads the seeded snapshot the last sync left behind,
// positions included. A cache miss returns (Graph, false, nil).
func (r *Runner) RestoreSnapshot(ctx context.Context, workspace string) (graph.Graph, bool, error) {
	data, hit, err := r.Cache.Get(ctx, r.Keyer.GraphKey(workspace))
	if err != nil || !hit {
		observability.Cache().OnCacheMiss(ctx, "graph")
		return graph.Graph{}, false, err
	}
	observability.Cache().OnCacheHit(ctx, "graph")

	g, err := graph.Read(bytes.NewReader(data))
	if err != nil {
		return graph.Graph{}, false, fmt.Errorf("decode cached snapshot: %w", err)
	}
	return g, true, nil
}

// PersistSnapshot stores a workspace's seeded snapshot. Unlike positions a
// snapshot goes stale with the notes, so it expires after [cache.TTLGraph].
func (r *Runner) PersistSnapshot(ctx context.Context, workspace string, g graph.Graph) error {
	data, err := graph.Marshal(g)
	if err != nil {
		return fmt.Errorf("encode snapshot: %w", err)
	}
	observability.Cache().OnCacheSet(ctx, "graph", len(data))
	return r.Cache.Set(ctx, r.Keyer.GraphKey(workspace), data, cache.TTLGraph)
}
