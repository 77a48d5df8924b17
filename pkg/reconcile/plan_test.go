package reconcile

import (
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/canopyviz/canopy/pkg/graph"
	"github.com/canopyviz/canopy/pkg/project"
)

func node(id, label string) project.Element {
	return project.NodeElement(graph.Node{ID: graph.NodeID(id), Title: label})
}

func edge(source, target string) project.Element {
	return project.EdgeElement(graph.NodeID(source), graph.NodeID(target))
}

func TestDiff(t *testing.T) {
	tests := []struct {
		name        string
		current     []project.Element
		desired     []project.Element
		wantAdds    int
		wantRemoves int
		wantUpdates int
		wantEdgeAdd int
		wantEdgeRem int
	}{
		{
			name:    "BothEmpty",
			current: nil,
			desired: nil,
		},
		{
			name:        "AllNew",
			desired:     []project.Element{node("a", "A"), node("b", "B"), edge("a", "b")},
			wantAdds:    2,
			wantEdgeAdd: 1,
		},
		{
			name:        "AllGone",
			current:     []project.Element{node("a", "A"), edge("a", "b")},
			wantRemoves: 1,
			wantEdgeRem: 1,
		},
		{
			name:    "Converged",
			current: []project.Element{node("a", "A"), node("b", "B"), edge("a", "b")},
			desired: []project.Element{node("a", "A"), node("b", "B"), edge("a", "b")},
		},
		{
			name:        "LabelChanged",
			current:     []project.Element{node("a", "old")},
			desired:     []project.Element{node("a", "new")},
			wantUpdates: 1,
		},
		{
			name:        "Mixed",
			current:     []project.Element{node("a", "A"), node("gone", "X"), edge("a", "gone")},
			desired:     []project.Element{node("a", "A2"), node("fresh", "F"), edge("a", "fresh")},
			wantAdds:    1,
			wantRemoves: 1,
			wantUpdates: 1,
			wantEdgeAdd: 1,
			wantEdgeRem: 1,
		},
		{
			// A node and an edge may share an ID string without colliding.
			name:    "KindsAreIndependent",
			current: []project.Element{{Kind: project.KindNode, ID: "x-y"}, edge("x", "y")},
			desired: []project.Element{{Kind: project.KindNode, ID: "x-y"}, edge("x", "y")},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			plan := Diff(tt.current, tt.desired)

			if got := len(plan.NodesToAdd); got != tt.wantAdds {
				t.Errorf("NodesToAdd = %d, want %d", got, tt.wantAdds)
			}
			if got := len(plan.NodesToRemove); got != tt.wantRemoves {
				t.Errorf("NodesToRemove = %d, want %d", got, tt.wantRemoves)
			}
			if got := len(plan.NodesToUpdate); got != tt.wantUpdates {
				t.Errorf("NodesToUpdate = %d, want %d", got, tt.wantUpdates)
			}
			if got := len(plan.EdgesToAdd); got != tt.wantEdgeAdd {
				t.Errorf("EdgesToAdd = %d, want %d", got, tt.wantEdgeAdd)
			}
			if got := len(plan.EdgesToRemove); got != tt.wantEdgeRem {
				t.Errorf("EdgesToRemove = %d, want %d", got, tt.wantEdgeRem)
			}

			wantEmpty := tt.wantAdds+tt.wantRemoves+tt.wantUpdates+tt.wantEdgeAdd+tt.wantEdgeRem == 0
			if plan.Empty() != wantEmpty {
				t.Errorf("Empty() = %v, want %v", plan.Empty(), wantEmpty)
			}
		})
	}
}

func TestDiffDeterministic(t *testing.T) {
	current := []project.Element{node("a", "old"), node("b", "B")}
	desired := []project.Element{node("a", "new"), node("c", "C")}

	first := Diff(current, desired)
	second := Diff(current, desired)
	if diff := cmp.Diff(first, second); diff != "" {
		t.Errorf("Diff not stable (-first +second):\n%s", diff)
	}
}

func TestDiffDoesNotMutateInputs(t *testing.T) {
	current := []project.Element{node("a", "old"), edge("a", "b")}
	desired := []project.Element{node("a", "new")}
	currentBefore := []project.Element{node("a", "old"), edge("a", "b")}
	desiredBefore := []project.Element{node("a", "new")}

	plan := Diff(current, desired)
	// Mutating plan output must not reach back into the inputs either.
	for _, u := range plan.NodesToUpdate {
		u.Data["label"] = "tampered"
	}

	if diff := cmp.Diff(currentBefore, current); diff != "" {
		t.Errorf("current mutated:\n%s", diff)
	}
	if diff := cmp.Diff(desiredBefore, desired); diff != "" {
		t.Errorf("desired mutated:\n%s", diff)
	}
}
