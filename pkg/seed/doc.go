// Package seed assigns initial screen positions to newly appearing nodes
// before any layout physics runs.
//
// New children spawn on a circle of radius [SpawnRadius] around their parent.
// The angle for the Nth child comes from a recursive angular subdivision:
// the first four children take the quarter points of the available range,
// the next four the eighths between them, and so on, so siblings spread out
// evenly no matter how many appear. A parent that itself hangs off a
// grandparent constrains its children to a [ChildAngleCone]-degree cone
// facing away from the grandparent; root parents use the full circle.
//
// Disconnected roots are distributed evenly on a radius-[RootSpawnRadius]
// circle around a virtual origin (the "ghost root").
//
// [SeedPositions] walks a whole snapshot in preorder - parents strictly
// before children, since a child's position derives from its parent's - and
// returns a new graph with every reachable unpositioned node placed. Nodes
// that already carry a position are never moved. Traversal keeps a visited
// set, so cyclic input terminates without incident.
package seed
