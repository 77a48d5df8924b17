package graph

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"slices"
)

// =============================================================================
// Wire Format
// =============================================================================

// Document is the flat serialization format for graph snapshots.
// Used for persistence, API responses and cross-tool compatibility.
// Adjacency maps flatten to an explicit edge list; import rebuilds them.
type Document struct {
	Nodes []Node `json:"nodes" bson:"nodes"`
	Edges []Edge `json:"edges" bson:"edges"`
}

// ToDocument flattens a Graph into its serialization format.
// Nodes are sorted by ID and edges by (from, to) for deterministic output.
func ToDocument(g Graph) Document {
	doc := Document{
		Nodes: make([]Node, 0, len(g.Nodes)),
		Edges: make([]Edge, 0),
	}
	for _, id := range g.SortedIDs() {
		doc.Nodes = append(doc.Nodes, g.Nodes[id].Clone())
	}
	for src, targets := range g.Edges {
		for _, t := range targets {
			doc.Edges = append(doc.Edges, Edge{From: src, To: t})
		}
	}
	slices.SortFunc(doc.Edges, func(a, b Edge) int {
		if a.From != b.From {
			if a.From < b.From {
				return -1
			}
			return 1
		}
		if a.To < b.To {
			return -1
		}
		if a.To > b.To {
			return 1
		}
		return 0
	})
	return doc
}

// FromDocument rebuilds a Graph from its serialization format.
// Node children lists are kept as authored; the adjacency map is rebuilt
// from the edge list. Edges referencing unknown nodes are kept - the
// producer may be mid-update and consumers tolerate dangling targets.
func FromDocument(doc Document) Graph {
	g := New()
	for _, n := range doc.Nodes {
		g.Nodes[n.ID] = n.Clone()
	}
	for _, e := range doc.Edges {
		g.Edges[e.From] = append(g.Edges[e.From], e.To)
	}
	return g
}

// =============================================================================
// Serialization API
// =============================================================================

// Marshal converts a Graph to pretty-printed JSON bytes.
func Marshal(g Graph) ([]byte, error) {
	var buf bytes.Buffer
	if err := Write(g, &buf); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// Write writes a Graph as JSON to an io.Writer.
func Write(g Graph, w io.Writer) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	if err := enc.Encode(ToDocument(g)); err != nil {
		return fmt.Errorf("encode: %w", err)
	}
	return nil
}

// Read decodes a JSON graph document from an io.Reader.
func Read(r io.Reader) (Graph, error) {
	var doc Document
	if err := json.NewDecoder(r).Decode(&doc); err != nil {
		return Graph{}, fmt.Errorf("decode: %w", err)
	}
	return FromDocument(doc), nil
}

// WriteFile writes a Graph to a JSON file with 0644 permissions.
func WriteFile(g Graph, path string) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create %s: %w", path, err)
	}
	defer f.Close()
	return Write(g, f)
}

// ReadFile reads a JSON graph document from a file.
func ReadFile(path string) (Graph, error) {
	f, err := os.Open(path)
	if err != nil {
		return Graph{}, fmt.Errorf("open %s: %w", path, err)
	}
	defer f.Close()
	return Read(f)
}
