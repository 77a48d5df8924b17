package markdown

import (
	"bytes"
	"fmt"
	"io/fs"
	"os"
	"path"
	"path/filepath"
	"regexp"
	"sort"
	"strings"

	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/ast"
	"github.com/yuin/goldmark/text"

	"github.com/canopyviz/canopy/pkg/graph"
)

// wikilinkPattern matches [[target]], [[target|alias]] and [[target#section]].
var wikilinkPattern = regexp.MustCompile(`\[\[([^\[\]]+)\]\]`)

// note is one parsed markdown file before link resolution.
type note struct {
	id      graph.NodeID
	title   string
	content string
	summary string
	links   []string
}

// Parse walks root and builds a graph from every .md file beneath it.
// Directories whose name starts with "." are skipped.
func Parse(root string) (graph.Graph, error) {
	var notes []note

	err := filepath.WalkDir(root, func(p string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() {
			if p != root && strings.HasPrefix(d.Name(), ".") {
				return filepath.SkipDir
			}
			return nil
		}
		if !IsMarkdown(p) {
			return nil
		}

		rel, err := filepath.Rel(root, p)
		if err != nil {
			return err
		}
		src, err := os.ReadFile(p)
		if err != nil {
			return fmt.Errorf("read %s: %w", rel, err)
		}
		notes = append(notes, parseNote(noteID(rel), src))
		return nil
	})
	if err != nil {
		return graph.Graph{}, fmt.Errorf("walk %s: %w", root, err)
	}

	return link(notes), nil
}

// ParseFile parses a single file under root into its node, resolving
// wikilinks through r. The boolean is false when the file is not markdown or
// lies outside root.
func ParseFile(root, p string, r Resolver) (graph.Node, bool, error) {
	if !IsMarkdown(p) {
		return graph.Node{}, false, nil
	}
	rel, err := filepath.Rel(root, p)
	if err != nil || strings.HasPrefix(rel, "..") {
		return graph.Node{}, false, nil
	}
	src, err := os.ReadFile(p)
	if err != nil {
		return graph.Node{}, false, fmt.Errorf("read %s: %w", rel, err)
	}

	n := parseNote(noteID(rel), src)
	return graph.Node{
		ID:       n.id,
		Title:    n.title,
		Content:  n.content,
		Summary:  n.summary,
		Children: children(n, r),
	}, true, nil
}

// IsMarkdown reports whether path names a markdown file.
func IsMarkdown(p string) bool {
	ext := strings.ToLower(filepath.Ext(p))
	return ext == ".md" || ext == ".markdown"
}

// NodeIDFor returns the node ID a file under root maps to.
func NodeIDFor(root, p string) (graph.NodeID, bool) {
	rel, err := filepath.Rel(root, p)
	if err != nil || strings.HasPrefix(rel, "..") {
		return "", false
	}
	return noteID(rel), true
}

// noteID converts a relative file path into a node ID: forward slashes,
// extension stripped.
func noteID(rel string) graph.NodeID {
	rel = filepath.ToSlash(rel)
	return graph.NodeID(strings.TrimSuffix(rel, path.Ext(rel)))
}

// parseNote extracts title, summary and links from one file's source.
func parseNote(id graph.NodeID, src []byte) note {
	n := note{
		id:      id,
		title:   path.Base(string(id)),
		content: string(src),
	}

	doc := goldmark.New().Parser().Parse(text.NewReader(src))

	sawTitle := false
	sawSummary := false
	_ = ast.Walk(doc, func(node ast.Node, entering bool) (ast.WalkStatus, error) {
		if !entering {
			return ast.WalkContinue, nil
		}
		switch v := node.(type) {
		case *ast.Heading:
			if !sawTitle {
				if t := nodeText(v, src); t != "" {
					n.title = t
				}
				sawTitle = true
			}
			return ast.WalkSkipChildren, nil
		case *ast.Paragraph:
			if !sawSummary {
				n.summary = nodeText(v, src)
				sawSummary = true
			}
			return ast.WalkSkipChildren, nil
		}
		return ast.WalkContinue, nil
	})

	for _, m := range wikilinkPattern.FindAllStringSubmatch(n.content, -1) {
		target := m[1]
		// [[target|alias]] links by target, displays alias.
		if i := strings.Index(target, "|"); i >= 0 {
			target = target[:i]
		}
		// [[target#section]] links the whole note.
		if i := strings.Index(target, "#"); i >= 0 {
			target = target[:i]
		}
		target = strings.TrimSpace(target)
		if target != "" {
			n.links = append(n.links, target)
		}
	}

	return n
}

// nodeText collects the plain text under an inline container.
func nodeText(node ast.Node, src []byte) string {
	var buf bytes.Buffer
	for c := node.FirstChild(); c != nil; c = c.NextSibling() {
		switch v := c.(type) {
		case *ast.Text:
			buf.Write(v.Segment.Value(src))
		case *ast.String:
			buf.Write(v.Value)
		default:
			buf.WriteString(nodeText(c, src))
		}
	}
	return strings.TrimSpace(buf.String())
}

// Resolver maps wikilink targets to node IDs: exact relative path first,
// then unique base name. Ambiguous and unknown targets stay unresolved.
type Resolver struct {
	byID   map[graph.NodeID]bool
	byBase map[string][]graph.NodeID
}

// NewResolver builds a resolver over the given node IDs.
func NewResolver(ids []graph.NodeID) Resolver {
	r := Resolver{
		byID:   make(map[graph.NodeID]bool, len(ids)),
		byBase: make(map[string][]graph.NodeID),
	}
	for _, id := range ids {
		r.byID[id] = true
		base := strings.ToLower(path.Base(string(id)))
		r.byBase[base] = append(r.byBase[base], id)
	}
	for base := range r.byBase {
		candidates := r.byBase[base]
		sort.Slice(candidates, func(i, j int) bool { return candidates[i] < candidates[j] })
	}
	return r
}

// ResolverFor builds a resolver over a graph's node IDs.
func ResolverFor(g graph.Graph) Resolver {
	return NewResolver(g.SortedIDs())
}

// Resolve maps one wikilink target to a node ID.
func (r Resolver) Resolve(target string) (graph.NodeID, bool) {
	id := noteID(filepath.FromSlash(target))
	if r.byID[id] {
		return id, true
	}
	candidates := r.byBase[strings.ToLower(path.Base(string(id)))]
	if len(candidates) == 1 {
		return candidates[0], true
	}
	return "", false
}

// children resolves a note's links, dropping duplicates and self references.
func children(n note, r Resolver) []graph.NodeID {
	out := make([]graph.NodeID, 0)
	seen := make(map[graph.NodeID]bool)
	for _, target := range n.links {
		id, ok := r.Resolve(target)
		if !ok || id == n.id || seen[id] {
			continue
		}
		seen[id] = true
		out = append(out, id)
	}
	return out
}

// link resolves every note's wikilinks and assembles the graph.
func link(notes []note) graph.Graph {
	ids := make([]graph.NodeID, 0, len(notes))
	for _, n := range notes {
		ids = append(ids, n.id)
	}
	r := NewResolver(ids)

	g := graph.New()
	for _, n := range notes {
		kids := children(n, r)
		g.Nodes[n.id] = graph.Node{
			ID:       n.id,
			Title:    n.title,
			Content:  n.content,
			Summary:  n.summary,
			Children: kids,
		}
		if len(kids) > 0 {
			g.Edges[n.id] = kids
		}
	}
	return g
}
