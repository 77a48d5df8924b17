package markdown

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/canopyviz/canopy/pkg/graph"
)

// writeNote creates a markdown file under root, making parent directories.
func writeNote(t *testing.T, root, rel, content string) {
	t.Helper()
	p := filepath.Join(root, filepath.FromSlash(rel))
	if err := os.MkdirAll(filepath.Dir(p), 0755); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(p, []byte(content), 0644); err != nil {
		t.Fatal(err)
	}
}

func TestParseWorkspace(t *testing.T) {
	root := t.TempDir()
	writeNote(t, root, "index.md", "# Home\n\nStart at [[projects/canopy]] or [[inbox]].\n")
	writeNote(t, root, "inbox.md", "# Inbox\n\nUnsorted notes.\n")
	writeNote(t, root, "projects/canopy.md", "# Canopy\n\nSee [[inbox]] and [[missing]].\n")

	g, err := Parse(root)
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}

	if g.NodeCount() != 3 {
		t.Fatalf("nodes = %d, want 3", g.NodeCount())
	}

	home := g.Nodes["index"]
	if home.Title != "Home" {
		t.Errorf("title = %q", home.Title)
	}
	if home.Summary != "Start at [[projects/canopy]] or [[inbox]]." {
		t.Errorf("summary = %q", home.Summary)
	}
	if len(home.Children) != 2 || home.Children[0] != "projects/canopy" || home.Children[1] != "inbox" {
		t.Errorf("children = %v", home.Children)
	}

	// Unresolvable link dropped.
	canopy := g.Nodes["projects/canopy"]
	if len(canopy.Children) != 1 || canopy.Children[0] != "inbox" {
		t.Errorf("canopy children = %v", canopy.Children)
	}

	// Edges mirror children.
	if got := g.Edges["index"]; len(got) != 2 {
		t.Errorf("edges[index] = %v", got)
	}
	if _, ok := g.Edges["inbox"]; ok {
		t.Error("leaf note should have no edge entry")
	}
}

func TestParseSkipsHiddenAndNonMarkdown(t *testing.T) {
	root := t.TempDir()
	writeNote(t, root, "note.md", "# Note\n")
	writeNote(t, root, ".obsidian/workspace.md", "# Hidden\n")
	writeNote(t, root, "image.png", "not markdown")

	g, err := Parse(root)
	if err != nil {
		t.Fatal(err)
	}
	if g.NodeCount() != 1 {
		t.Errorf("nodes = %v", g.SortedIDs())
	}
}

func TestParseNoteTitleFallback(t *testing.T) {
	n := parseNote("daily/2026-08-24", []byte("no heading here\n"))
	if n.title != "2026-08-24" {
		t.Errorf("title = %q", n.title)
	}
	if n.summary != "no heading here" {
		t.Errorf("summary = %q", n.summary)
	}
}

func TestParseNoteWikilinkForms(t *testing.T) {
	src := "# T\n\n[[plain]] [[target|alias]] [[sectioned#part]] [[ spaced ]] [[]]\n"
	n := parseNote("t", []byte(src))

	want := []string{"plain", "target", "sectioned", "spaced"}
	if len(n.links) != len(want) {
		t.Fatalf("links = %v", n.links)
	}
	for i, l := range want {
		if n.links[i] != l {
			t.Errorf("links[%d] = %q, want %q", i, n.links[i], l)
		}
	}
}

func TestResolver(t *testing.T) {
	r := NewResolver([]graph.NodeID{"inbox", "projects/canopy", "archive/inbox"})

	tests := []struct {
		target string
		want   graph.NodeID
		ok     bool
	}{
		{"projects/canopy", "projects/canopy", true},
		{"canopy", "projects/canopy", true},     // unique base name
		{"Canopy", "projects/canopy", true},     // base match is case-insensitive
		{"inbox", "inbox", true},                // exact path beats ambiguity
		{"archive/inbox.md", "archive/inbox", true},
		{"nope", "", false},
	}
	for _, tt := range tests {
		got, ok := r.Resolve(tt.target)
		if ok != tt.ok || got != tt.want {
			t.Errorf("Resolve(%q) = %q, %v; want %q, %v", tt.target, got, ok, tt.want, tt.ok)
		}
	}
}

func TestParseFile(t *testing.T) {
	root := t.TempDir()
	writeNote(t, root, "a.md", "# A\n\nLinks to [[b]] and [[a]].\n")
	writeNote(t, root, "b.md", "# B\n")

	r := NewResolver([]graph.NodeID{"a", "b"})
	node, ok, err := ParseFile(root, filepath.Join(root, "a.md"), r)
	if err != nil || !ok {
		t.Fatalf("ParseFile: ok=%v err=%v", ok, err)
	}
	if node.ID != "a" || node.Title != "A" {
		t.Errorf("node = %+v", node)
	}
	// Self links are dropped.
	if len(node.Children) != 1 || node.Children[0] != "b" {
		t.Errorf("children = %v", node.Children)
	}

	if _, ok, _ := ParseFile(root, filepath.Join(root, "a.txt"), r); ok {
		t.Error("non-markdown file parsed")
	}
	if _, ok, _ := ParseFile(root, "/elsewhere/a.md", r); ok {
		t.Error("file outside root parsed")
	}
}

func TestNodeIDFor(t *testing.T) {
	id, ok := NodeIDFor("/notes", "/notes/projects/canopy.md")
	if !ok || id != "projects/canopy" {
		t.Errorf("id = %q, ok = %v", id, ok)
	}
	if _, ok := NodeIDFor("/notes", "/other/x.md"); ok {
		t.Error("path outside root resolved")
	}
}

func TestIsMarkdown(t *testing.T) {
	for p, want := range map[string]bool{
		"a.md":       true,
		"a.markdown": true,
		"A.MD":       true,
		"a.txt":      false,
		"md":         false,
	} {
		if got := IsMarkdown(p); got != want {
			t.Errorf("IsMarkdown(%q) = %v", p, got)
		}
	}
}
