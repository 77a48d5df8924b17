package seed

import (
	"math"

	"github.com/canopyviz/canopy/pkg/graph"
)

// Geometry constants for child placement.
const (
	// SpawnRadius is the distance from a parent at which children appear.
	SpawnRadius = 500.0

	// ChildAngleCone is the angular spread available to the children of a
	// non-root parent, centered ahead of the parent's own heading.
	ChildAngleCone = 180.0

	// RootSpawnRadius is the radius of the circle on which disconnected
	// roots are arranged around the origin.
	RootSpawnRadius = 200.0

	// coneLead is how far below the parent's heading the cone starts.
	coneLead = 45.0
)

// ChildPosition computes the spawn position for the childIndex-th child of
// parent. grandparent is the node the parent hangs off, or nil for roots;
// it determines the parent's heading and with it the child cone.
//
// The second return is false when the parent has no position yet - a child
// cannot be placed relative to an unplaced parent. Callers skip the child
// for this pass rather than defaulting to an arbitrary coordinate.
func ChildPosition(parent, grandparent *graph.Node, childIndex int) (graph.Position, bool) {
	if parent == nil || parent.Position == nil || childIndex < 0 {
		return graph.Position{}, false
	}

	rangeMin, rangeSpan := 0.0, 360.0
	if heading, ok := ParentAngle(parent, grandparent); ok {
		rangeMin = heading - coneLead
		rangeSpan = ChildAngleCone
	}

	angle := normalizeAngle(rangeMin + childFraction(childIndex)*rangeSpan)
	rad := angle * math.Pi / 180
	return graph.Position{
		X: parent.Position.X + SpawnRadius*math.Cos(rad),
		Y: parent.Position.Y + SpawnRadius*math.Sin(rad),
	}, true
}

// ChildAngle returns the angle in degrees assigned to the childIndex-th
// child in the unconstrained (root parent) case. Exposed for callers that
// only need the angular slot, e.g. radial previews.
func ChildAngle(childIndex int) float64 {
	return normalizeAngle(childFraction(childIndex) * 360)
}

// ParentAngle computes the parent's heading in degrees: the direction of the
// vector from the grandparent's position to the parent's. The second return
// is false when the heading is unconstrained - no grandparent, or either
// position missing - in which case children get the full circle.
func ParentAngle(parent, grandparent *graph.Node) (float64, bool) {
	if parent == nil || grandparent == nil {
		return 0, false
	}
	if parent.Position == nil || grandparent.Position == nil {
		return 0, false
	}
	dy := parent.Position.Y - grandparent.Position.Y
	dx := parent.Position.X - grandparent.Position.X
	return normalizeAngle(math.Atan2(dy, dx) * 180 / math.Pi), true
}

// childFraction returns the normalized position in [0,1) for the index-th
// child. Level 0 is the four quarter points; every further level of four
// shifts the quarter points by a fresh offset that halves each time, so no
// two children ever share a slot and later siblings interleave ever more
// finely with earlier ones:
//
//	0, 1/4, 1/2, 3/4, 1/8, 3/8, 5/8, 7/8, 1/16, 5/16, 9/16, 13/16, 1/32, ...
func childFraction(index int) float64 {
	slot := float64(index%4) / 4
	level := index / 4
	if level == 0 {
		return slot
	}
	// Offsets 1/8, 1/16, 1/32, ... are pairwise distinct across levels.
	return slot + math.Exp2(-float64(level+2))
}

// normalizeAngle maps an angle in degrees to [0, 360).
func normalizeAngle(deg float64) float64 {
	m := math.Mod(deg, 360)
	if m < 0 {
		m += 360
	}
	return m
}
