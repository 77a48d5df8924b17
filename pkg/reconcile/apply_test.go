package reconcile

import (
	"strings"
	"testing"

	"github.com/canopyviz/canopy/pkg/project"
)

// recordingSurface wraps MemorySurface and logs mutation order.
type recordingSurface struct {
	MemorySurface
	ops []string
}

func newRecordingSurface() *recordingSurface {
	return &recordingSurface{MemorySurface: *NewMemorySurface()}
}

func (s *recordingSurface) AddNode(el project.Element) {
	s.ops = append(s.ops, "addNode:"+el.ID)
	s.MemorySurface.AddNode(el)
}

func (s *recordingSurface) AddEdge(el project.Element) {
	s.ops = append(s.ops, "addEdge:"+el.ID)
	s.MemorySurface.AddEdge(el)
}

func (s *recordingSurface) RemoveNode(id string) {
	s.ops = append(s.ops, "removeNode:"+id)
	s.MemorySurface.RemoveNode(id)
}

func (s *recordingSurface) RemoveEdge(id string) {
	s.ops = append(s.ops, "removeEdge:"+id)
	s.MemorySurface.RemoveEdge(id)
}

func (s *recordingSurface) UpdateNodeData(id string, data map[string]any) {
	s.ops = append(s.ops, "update:"+id)
	s.MemorySurface.UpdateNodeData(id, data)
}

func TestApplyOrdering(t *testing.T) {
	s := newRecordingSurface()
	s.MemorySurface.AddNode(node("old", "Old"))
	s.MemorySurface.AddEdge(edge("old", "x"))

	plan := Plan{
		NodesToAdd:    []project.Element{node("new", "New")},
		NodesToRemove: []string{"old"},
		NodesToUpdate: []Update{{ID: "new", Data: map[string]any{"label": "New2"}}},
		EdgesToAdd:    []project.Element{edge("new", "y")},
		EdgesToRemove: []string{"old-x"},
	}
	Apply(s, plan)

	got := strings.Join(s.ops, ",")
	want := "removeEdge:old-x,removeNode:old,addNode:new,addEdge:new-y,update:new"
	if got != want {
		t.Errorf("ops = %s, want %s", got, want)
	}
}

func TestApplyEmptyPlanIsNoOp(t *testing.T) {
	s := newRecordingSurface()
	Apply(s, Plan{})
	if len(s.ops) != 0 {
		t.Errorf("ops = %v, want none", s.ops)
	}
}

func TestApplyConvergence(t *testing.T) {
	// apply(s, diff(query(s), desired)) followed by a second diff yields an
	// empty plan, whatever the starting state.
	desired := []project.Element{
		node("a", "A"), node("b", "B"), edge("a", "b"),
	}

	starts := map[string]func() *MemorySurface{
		"Empty": NewMemorySurface,
		"Stale": func() *MemorySurface {
			s := NewMemorySurface()
			s.AddNode(node("a", "outdated"))
			s.AddNode(node("zombie", "Z"))
			s.AddEdge(edge("zombie", "a"))
			return s
		},
		"Converged": func() *MemorySurface {
			s := NewMemorySurface()
			Apply(s, Diff(nil, desired))
			return s
		},
	}

	for name, start := range starts {
		t.Run(name, func(t *testing.T) {
			s := start()
			Apply(s, Diff(s.Elements(), desired))

			again := Diff(s.Elements(), desired)
			if !again.Empty() {
				t.Errorf("not converged, second plan has %d ops: %+v", again.Size(), again)
			}
		})
	}
}

func TestApplyIdempotentReplay(t *testing.T) {
	desired := []project.Element{node("a", "A")}
	s := NewMemorySurface()
	plan := Diff(s.Elements(), desired)

	Apply(s, plan)
	Apply(s, plan) // replaying the same plan must be harmless

	if s.Len() != 1 {
		t.Errorf("elements = %d, want 1", s.Len())
	}
}

func TestMemorySurfaceDegenerateOps(t *testing.T) {
	s := NewMemorySurface()
	// None of these may panic or create state.
	s.RemoveNode("ghost")
	s.RemoveEdge("ghost-edge")
	s.UpdateNodeData("ghost", map[string]any{"label": "x"})

	if s.Len() != 0 {
		t.Errorf("elements = %d, want 0", s.Len())
	}
}

func TestMemorySurfaceUpdateMerges(t *testing.T) {
	s := NewMemorySurface()
	s.AddNode(node("a", "A"))
	s.UpdateNodeData("a", map[string]any{"label": "A2"})

	el, ok := s.Node("a")
	if !ok {
		t.Fatal("node a missing")
	}
	if el.Data["label"] != "A2" {
		t.Errorf("label = %v, want A2", el.Data["label"])
	}
	// Untouched fields survive the patch.
	if el.Data["content"] != "" {
		t.Errorf("content = %v, want empty string", el.Data["content"])
	}
}

func TestMemorySurfaceElementsAreCopies(t *testing.T) {
	s := NewMemorySurface()
	s.AddNode(node("a", "A"))

	els := s.Elements()
	els[0].Data["label"] = "tampered"

	el, _ := s.Node("a")
	if el.Data["label"] != "A" {
		t.Errorf("surface state leaked through Elements(): %v", el.Data["label"])
	}
}
