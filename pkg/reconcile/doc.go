// Package reconcile brings a mutable rendering surface into agreement with a
// freshly projected element set.
//
// [Diff] compares what the surface currently holds against the desired
// projection and produces a [Plan]: the minimal set of adds, removes and data
// updates, split independently for nodes and edges. Diff is pure - neither
// input is mutated, and diffing a converged surface yields an empty plan.
//
// [Apply] executes a plan against a [Surface] as one batch with a fixed
// internal order - edges removed before nodes, nodes added before edges - so
// the surface never observes an edge without its endpoints. Removing or
// updating an ID the surface no longer has is a no-op, which makes replaying
// a stale plan harmless. The caller must not run two applies against the
// same surface concurrently; the package does no locking of its own.
//
// For high-frequency single-node edits, [DeltaApplier] bypasses full diffing
// and applies typed deltas directly, patching only the fields that changed.
// An unchanged content field is never rewritten, so an editor open on the
// node keeps its cursor.
package reconcile
