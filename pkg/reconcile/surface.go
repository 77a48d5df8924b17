package reconcile

import (
	"slices"

	"github.com/canopyviz/canopy/pkg/project"
)

// Surface is the mutable rendering surface reconciliation drives. The real
// surface lives outside this module (a canvas, a TUI, a browser); anything
// implementing these mutations can be reconciled against.
//
// Mutations must be idempotent in the degenerate direction: removing or
// updating an ID the surface does not hold is a no-op, never an error.
type Surface interface {
	// Elements returns the surface's current element set. This is the
	// query side used as the "current" input to Diff.
	Elements() []project.Element

	AddNode(el project.Element)
	AddEdge(el project.Element)
	RemoveNode(id string)
	RemoveEdge(id string)
	UpdateNodeData(id string, data map[string]any)
}

// Apply executes plan against s as one batch. Internal ordering keeps the
// surface consistent at every step: edge removals precede node removals, and
// node additions precede edge additions, so no edge ever references a node
// the surface does not hold. Data patches run last.
//
// The caller serializes Apply calls per surface; two interleaved plans could
// remove what the other just added.
func Apply(s Surface, plan Plan) {
	for _, id := range plan.EdgesToRemove {
		s.RemoveEdge(id)
	}
	for _, id := range plan.NodesToRemove {
		s.RemoveNode(id)
	}
	for _, el := range plan.NodesToAdd {
		s.AddNode(el)
	}
	for _, el := range plan.EdgesToAdd {
		s.AddEdge(el)
	}
	for _, u := range plan.NodesToUpdate {
		s.UpdateNodeData(u.ID, u.Data)
	}
}

// =============================================================================
// MemorySurface
// =============================================================================

// MemorySurface is an in-memory Surface. It backs the TUI and the HTTP
// server and doubles as the reference implementation for tests. Elements
// preserves insertion order for stable display. Not safe for concurrent use;
// callers wrap it in their own serialization, as they do for Apply.
type MemorySurface struct {
	order    []key
	elements map[key]project.Element
}

// NewMemorySurface creates an empty surface.
func NewMemorySurface() *MemorySurface {
	return &MemorySurface{elements: make(map[key]project.Element)}
}

// Elements returns a copy of the current element set in insertion order.
func (s *MemorySurface) Elements() []project.Element {
	out := make([]project.Element, 0, len(s.order))
	for _, k := range s.order {
		el := s.elements[k]
		el.Data = el.CloneData()
		out = append(out, el)
	}
	return out
}

// Len returns the number of elements on the surface.
func (s *MemorySurface) Len() int { return len(s.elements) }

// Node returns the node element with the given ID, if present.
func (s *MemorySurface) Node(id string) (project.Element, bool) {
	el, ok := s.elements[key{project.KindNode, id}]
	if ok {
		el.Data = el.CloneData()
	}
	return el, ok
}

// AddNode inserts or replaces a node element.
func (s *MemorySurface) AddNode(el project.Element) {
	el.Kind = project.KindNode
	s.insert(el)
}

// AddEdge inserts or replaces an edge element.
func (s *MemorySurface) AddEdge(el project.Element) {
	el.Kind = project.KindEdge
	s.insert(el)
}

// RemoveNode removes a node element; absent IDs are a no-op.
func (s *MemorySurface) RemoveNode(id string) {
	s.remove(key{project.KindNode, id})
}

// RemoveEdge removes an edge element; absent IDs are a no-op.
func (s *MemorySurface) RemoveEdge(id string) {
	s.remove(key{project.KindEdge, id})
}

// UpdateNodeData merges data into an existing node element's payload.
// Updating an absent ID is a no-op.
func (s *MemorySurface) UpdateNodeData(id string, data map[string]any) {
	k := key{project.KindNode, id}
	el, ok := s.elements[k]
	if !ok {
		return
	}
	merged := el.CloneData()
	if merged == nil {
		merged = make(map[string]any, len(data))
	}
	for field, v := range data {
		merged[field] = v
	}
	el.Data = merged
	s.elements[k] = el
}

func (s *MemorySurface) insert(el project.Element) {
	k := key{el.Kind, el.ID}
	if _, exists := s.elements[k]; !exists {
		s.order = append(s.order, k)
	}
	el.Data = el.CloneData()
	s.elements[k] = el
}

func (s *MemorySurface) remove(k key) {
	if _, exists := s.elements[k]; !exists {
		return
	}
	delete(s.elements, k)
	s.order = slices.DeleteFunc(s.order, func(o key) bool { return o == k })
}

// Ensure MemorySurface implements Surface.
var _ Surface = (*MemorySurface)(nil)
