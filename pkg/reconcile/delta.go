package reconcile

import (
	"github.com/canopyviz/canopy/pkg/graph"
	"github.com/canopyviz/canopy/pkg/project"
)

// Delta is an explicit incremental change to a single node, applied without
// a full diff pass. Live edits arrive far more often than whole snapshots;
// the delta path keeps them from paying for - or disturbing - a full
// reconciliation. The two implementations are [UpsertNode] and [DeleteNode].
type Delta interface {
	delta()
}

// UpsertNode creates the node's render element or patches the fields that
// changed.
type UpsertNode struct {
	Node graph.Node
}

// DeleteNode removes the node's render element. Cascading edge removal is
// the surface's own responsibility once the node is gone.
type DeleteNode struct {
	NodeID graph.NodeID
}

func (UpsertNode) delta() {}
func (DeleteNode) delta() {}

// DeltaApplier applies deltas to a surface. OnNodeDeleted, when set, is the
// side channel the shell uses to tear down editor or window artifacts
// anchored to a node; the applier itself owns none of those.
type DeltaApplier struct {
	Surface       Surface
	OnNodeDeleted func(id graph.NodeID)
}

// NewDeltaApplier creates an applier bound to s.
func NewDeltaApplier(s Surface) *DeltaApplier {
	return &DeltaApplier{Surface: s}
}

// Apply executes a single delta. Unknown delta types are ignored.
func (a *DeltaApplier) Apply(d Delta) {
	switch d := d.(type) {
	case UpsertNode:
		a.upsert(d.Node)
	case DeleteNode:
		a.delete(d.NodeID)
	}
}

// upsert creates the element if absent, otherwise patches only the fields
// whose values differ. In particular an unchanged "content" field is left
// alone so an editor open on the node does not lose its cursor.
func (a *DeltaApplier) upsert(n graph.Node) {
	desired := project.NodeElement(n)

	var existing project.Element
	present := false
	for _, el := range a.Surface.Elements() {
		if el.IsNode() && el.ID == desired.ID {
			existing, present = el, true
			break
		}
	}
	if !present {
		a.Surface.AddNode(desired)
		return
	}

	patch := make(map[string]any)
	for field, v := range desired.Data {
		if existing.Data[field] != v {
			patch[field] = v
		}
	}
	if len(patch) > 0 {
		a.Surface.UpdateNodeData(desired.ID, patch)
	}
}

func (a *DeltaApplier) delete(id graph.NodeID) {
	a.Surface.RemoveNode(string(id))
	if a.OnNodeDeleted != nil {
		a.OnNodeDeleted(id)
	}
}
