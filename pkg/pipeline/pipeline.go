// Package pipeline runs the seed → project → diff → apply cycle that keeps a
// render surface converged with a graph snapshot.
//
// This package is the single orchestration point shared by the CLI commands
// and the HTTP server, so caching and position persistence behave the same
// from every entry point.
//
// # Architecture
//
// One Sync pass has four stages:
//
//  1. Seed: assign deterministic positions to unplaced nodes
//  2. Project: flatten the graph into render elements
//  3. Diff: compute the plan that converges the surface
//  4. Apply: execute the plan against the surface
//
// Before seeding, previously persisted positions are restored from the cache
// so nodes keep their placement across runs; after seeding, the full position
// map is written back.
//
// # Usage
//
//	runner := pipeline.NewRunner(cache, nil, logger)
//	result, err := runner.Sync(ctx, g, surface, pipeline.Options{
//	    Workspace: "/notes",
//	})
//	if err != nil {
//	    log.Fatal(err)
//	}
//	fmt.Println(result.Plan.Size(), "changes applied")
package pipeline

import (
	"fmt"
	"time"

	"github.com/charmbracelet/log"

	"github.com/canopyviz/canopy/pkg/graph"
	"github.com/canopyviz/canopy/pkg/reconcile"
)

// Options configures one Sync pass.
// This struct supports JSON serialization for API requests.
type Options struct {
	// Workspace identifies the graph's source and scopes its cache keys,
	// typically the watched directory's path.
	Workspace string `json:"workspace"`

	// Refresh skips restoring cached positions, re-seeding every node.
	Refresh bool `json:"refresh,omitempty"`

	// Logger, when set, overrides the runner's logger for this pass.
	Logger *log.Logger `json:"-"`

	// validated tracks whether ValidateAndSetDefaults has been called.
	validated bool `json:"-"`
}

// ValidateAndSetDefaults checks required fields and applies defaults.
// This method is idempotent.
func (o *Options) ValidateAndSetDefaults() error {
	if o.validated {
		return nil
	}
	if o.Workspace == "" {
		return fmt.Errorf("workspace is required")
	}
	o.validated = true
	return nil
}

// Result contains the outputs of one Sync pass.
type Result struct {
	// Graph is the snapshot after position seeding.
	Graph graph.Graph

	// Plan is the diff that was applied to the surface.
	Plan reconcile.Plan

	// Stats contains timing and size information.
	Stats Stats

	// CacheInfo tracks cache interaction.
	CacheInfo CacheInfo
}

// Stats contains pipeline execution statistics.
type Stats struct {
	NodeCount   int
	EdgeCount   int
	PlanSize    int
	SeedTime    time.Duration
	ProjectTime time.Duration
	DiffTime    time.Duration
	ApplyTime   time.Duration
}

// CacheInfo tracks position cache interaction for one pass.
type CacheInfo struct {
	PositionsHit      bool // Whether stored positions were restored
	PositionsRestored int  // How many nodes received a cached position
}
