// Package store persists workspace state - the latest graph snapshot and its
// position map - so a serve deployment survives restarts without
// re-scattering nodes.
//
// Two backends implement [Store]: [MemoryStore] for tests and single-process
// runs, and [MongoStore] for deployments that keep several workspaces in a
// shared database. The core packages never touch a Store; only the shell
// reads and writes one, feeding positions back in through
// graph.ApplyPositions before seeding.
package store

import (
	"context"
	"errors"
	"time"

	"github.com/canopyviz/canopy/pkg/graph"
)

// ErrClosed is returned by operations on a store that has been closed.
var ErrClosed = errors.New("store closed")

// Workspace is the persisted state of one watched directory.
type Workspace struct {
	// ID is the workspace root path.
	ID string `json:"id" bson:"_id"`

	// Graph is the last snapshot seen, in wire format.
	Graph graph.Document `json:"graph" bson:"graph"`

	// Positions maps node IDs to their last seeded placement.
	Positions map[string]graph.Position `json:"positions,omitempty" bson:"positions,omitempty"`

	// UpdatedAt is when the workspace was last saved.
	UpdatedAt time.Time `json:"updated_at" bson:"updated_at"`
}

// PositionMap converts the persisted positions into the typed map
// graph.ApplyPositions expects.
func (w Workspace) PositionMap() map[graph.NodeID]graph.Position {
	out := make(map[graph.NodeID]graph.Position, len(w.Positions))
	for id, pos := range w.Positions {
		out[graph.NodeID(id)] = pos
	}
	return out
}

// NewWorkspace builds a Workspace record from a snapshot and its positions.
func NewWorkspace(id string, g graph.Graph) Workspace {
	positions := make(map[string]graph.Position)
	for nodeID, pos := range graph.PositionsOf(g) {
		positions[string(nodeID)] = pos
	}
	return Workspace{
		ID:        id,
		Graph:     graph.ToDocument(g),
		Positions: positions,
		UpdatedAt: time.Now().UTC(),
	}
}

// Store is the persistence interface for workspace state.
type Store interface {
	// Save inserts or replaces a workspace record.
	Save(ctx context.Context, ws Workspace) error

	// Load retrieves a workspace by ID. The second return reports whether
	// the workspace exists.
	Load(ctx context.Context, id string) (Workspace, bool, error)

	// Delete removes a workspace; absent IDs are not an error.
	Delete(ctx context.Context, id string) error

	// Close releases backend resources.
	Close(ctx context.Context) error
}
