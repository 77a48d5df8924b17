// Package cache provides the byte cache canopy uses to remember expensive
// state between runs - most importantly the seeded position map of a
// workspace, so nodes reappear where the user last saw them.
//
// Three backends implement the same interface: [FileCache] for the CLI
// (XDG cache directory), [RedisCache] for long-running server deployments,
// and [NullCache] to disable caching entirely. Keys are produced by a
// [Keyer] so every consumer agrees on the key schema.
package cache

import (
	"context"
	"time"
)

// TTLs per entry class. Position maps deliberately never expire: a stale
// position is still a better seed than re-scattering the whole graph.
const (
	// TTLGraph bounds how long a parsed snapshot is reused.
	TTLGraph = 24 * time.Hour

	// TTLPositions is the lifetime of a persisted position map (0 = no
	// expiry).
	TTLPositions = time.Duration(0)
)

// Cache is a byte-oriented key/value store with per-entry TTL.
type Cache interface {
	// Get retrieves a value. The second return reports whether the key was
	// present and unexpired.
	Get(ctx context.Context, key string) ([]byte, bool, error)

	// Set stores a value. A zero ttl means the entry never expires.
	Set(ctx context.Context, key string, data []byte, ttl time.Duration) error

	// Delete removes a value. Deleting an absent key is not an error.
	Delete(ctx context.Context, key string) error

	// Close releases backend resources.
	Close() error
}

// Keyer generates cache keys for canopy's entry classes.
type Keyer interface {
	// GraphKey identifies the parsed snapshot of a workspace root.
	GraphKey(workspace string) string

	// PositionsKey identifies the persisted position map of a workspace.
	PositionsKey(workspace string) string
}

// DefaultKeyer hashes the workspace path into stable namespaced keys.
type DefaultKeyer struct{}

// NewDefaultKeyer creates the standard keyer.
func NewDefaultKeyer() Keyer { return &DefaultKeyer{} }

// GraphKey generates a key for a workspace's parsed snapshot.
func (k *DefaultKeyer) GraphKey(workspace string) string {
	return hashKey("graph", workspace)
}

// PositionsKey generates a key for a workspace's position map.
func (k *DefaultKeyer) PositionsKey(workspace string) string {
	return hashKey("positions", workspace)
}
