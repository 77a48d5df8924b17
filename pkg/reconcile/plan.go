package reconcile

import (
	"github.com/canopyviz/canopy/pkg/project"
)

// Update is a data patch for an element already present on the surface.
type Update struct {
	ID   string         `json:"id"`
	Data map[string]any `json:"data"`
}

// Plan is the set of surface mutations needed to reach a desired projection.
// Plans are produced fresh by every [Diff] call and never persisted; order
// within each slice carries no meaning - sequencing happens in [Apply].
type Plan struct {
	NodesToAdd    []project.Element `json:"nodes_to_add,omitempty"`
	NodesToRemove []string          `json:"nodes_to_remove,omitempty"`
	NodesToUpdate []Update          `json:"nodes_to_update,omitempty"`
	EdgesToAdd    []project.Element `json:"edges_to_add,omitempty"`
	EdgesToRemove []string          `json:"edges_to_remove,omitempty"`
}

// Empty reports whether applying the plan would be a no-op.
func (p Plan) Empty() bool {
	return len(p.NodesToAdd) == 0 &&
		len(p.NodesToRemove) == 0 &&
		len(p.NodesToUpdate) == 0 &&
		len(p.EdgesToAdd) == 0 &&
		len(p.EdgesToRemove) == 0
}

// Size returns the total number of operations in the plan.
func (p Plan) Size() int {
	return len(p.NodesToAdd) + len(p.NodesToRemove) + len(p.NodesToUpdate) +
		len(p.EdgesToAdd) + len(p.EdgesToRemove)
}

// Diff computes the plan that takes a surface holding current to desired.
// Nodes and edges are split three ways independently: present only on the
// surface (remove), present only in the projection (add), present in both
// with differing data (update). Neither input slice is modified.
func Diff(current, desired []project.Element) Plan {
	currentByID := indexByID(current)
	desiredByID := indexByID(desired)

	var plan Plan

	for _, el := range current {
		if _, keep := desiredByID[key{el.Kind, el.ID}]; keep {
			continue
		}
		switch el.Kind {
		case project.KindNode:
			plan.NodesToRemove = append(plan.NodesToRemove, el.ID)
		case project.KindEdge:
			plan.EdgesToRemove = append(plan.EdgesToRemove, el.ID)
		}
	}

	for _, el := range desired {
		existing, present := currentByID[key{el.Kind, el.ID}]
		switch {
		case !present && el.Kind == project.KindNode:
			plan.NodesToAdd = append(plan.NodesToAdd, el)
		case !present && el.Kind == project.KindEdge:
			plan.EdgesToAdd = append(plan.EdgesToAdd, el)
		case present && el.Kind == project.KindNode && !shallowEqual(existing.Data, el.Data):
			plan.NodesToUpdate = append(plan.NodesToUpdate, Update{ID: el.ID, Data: el.CloneData()})
		}
		// Edge data is fully determined by the edge ID; edges never update.
	}

	return plan
}

type key struct {
	kind string
	id   string
}

func indexByID(elements []project.Element) map[key]project.Element {
	m := make(map[key]project.Element, len(elements))
	for _, el := range elements {
		m[key{el.Kind, el.ID}] = el
	}
	return m
}

// shallowEqual compares two data payloads field by field. Payload values are
// flat scalars (strings), so == is sufficient.
func shallowEqual(a, b map[string]any) bool {
	if len(a) != len(b) {
		return false
	}
	for k, v := range a {
		if bv, ok := b[k]; !ok || bv != v {
			return false
		}
	}
	return true
}
