package dot

import (
	"strings"
	"testing"

	"github.com/canopyviz/canopy/pkg/graph"
)

func sampleGraph() graph.Graph {
	g := graph.New()
	g.Nodes["root"] = graph.Node{
		ID:       "root",
		Title:    "Root",
		Summary:  "The entry point.",
		Children: []graph.NodeID{"leaf"},
		Position: &graph.Position{X: 200, Y: 0},
	}
	g.Nodes["leaf"] = graph.Node{
		ID:       "leaf",
		Title:    "Leaf",
		Color:    "#aadd88",
		Position: &graph.Position{X: 700, Y: 150},
	}
	g.Edges["root"] = []graph.NodeID{"leaf"}
	return g
}

func TestToDOT(t *testing.T) {
	out := ToDOT(sampleGraph(), Options{})

	for _, want := range []string{
		"digraph canopy {",
		"layout=neato;",
		`"root" [label="Root", pos="200.00,0.00!"]`,
		`"leaf" [label="Leaf", pos="700.00,-150.00!", fillcolor="#aadd88"]`,
		`"root" -> "leaf";`,
	} {
		if !strings.Contains(out, want) {
			t.Errorf("DOT output missing %q:\n%s", want, out)
		}
	}

	// Position stays out of the label.
	if strings.Contains(out, "The entry point.") {
		t.Error("summary should not appear without Detailed")
	}
}

func TestToDOTDetailed(t *testing.T) {
	out := ToDOT(sampleGraph(), Options{Detailed: true})
	if !strings.Contains(out, "Root\\nThe entry point.") {
		t.Errorf("detailed label missing summary:\n%s", out)
	}
}

func TestToDOTUnpositionedNode(t *testing.T) {
	g := graph.New()
	g.Nodes["n"] = graph.Node{ID: "n"}

	out := ToDOT(g, Options{})
	if strings.Contains(out, "pos=") {
		t.Error("unpositioned node got a pos attribute")
	}
	// Falls back to the ID when there is no title.
	if !strings.Contains(out, `"n" [label="n"]`) {
		t.Errorf("missing fallback label:\n%s", out)
	}
}

func TestToDOTDeterministic(t *testing.T) {
	a := ToDOT(sampleGraph(), Options{})
	b := ToDOT(sampleGraph(), Options{})
	if a != b {
		t.Error("DOT output not deterministic")
	}
}

func TestNormalizeViewBox(t *testing.T) {
	in := []byte(`<?xml version="1.0"?>` + "\n" +
		`<svg width="8pt" height="6pt" viewBox="0.00 -100.00 800.00 600.00" xmlns="http://www.w3.org/2000/svg">` +
		`<g></g></svg>`)

	out := string(normalizeViewBox(in))
	if !strings.Contains(out, `viewBox="0 0 800.00 600.00"`) {
		t.Errorf("view box not normalized: %s", out)
	}
	if !strings.Contains(out, `width="800" height="600"`) {
		t.Errorf("dimensions not rewritten: %s", out)
	}
}

func TestNormalizeViewBoxPassThrough(t *testing.T) {
	in := []byte(`<svg><g></g></svg>`)
	if got := string(normalizeViewBox(in)); got != string(in) {
		t.Errorf("svg without view box changed: %s", got)
	}
}
