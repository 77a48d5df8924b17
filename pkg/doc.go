// Package pkg provides the core libraries behind canopy.
//
// # Overview
//
// Canopy keeps a rendered mind map in sync with a directory of markdown
// notes. The pkg directory is organized along the data flow:
//
//  1. [source/markdown] - Parse notes and wikilinks into a graph, watch for changes
//  2. [seed] - Deterministic positions for nodes that have none
//  3. [project] - Flatten a graph into render elements
//  4. [reconcile] - Diff elements against a surface and apply the plan
//  5. [pipeline] - Orchestration of the four stages plus position persistence
//
// Supporting packages: [graph] (types and serialization), [cache] (persisted
// positions), [store] (workspace records), [render] and [render/dot]
// (DOT/SVG/PDF/PNG export), [config], [errors], [observability], [buildinfo].
//
// # Architecture
//
// The typical data flow through canopy:
//
//	Markdown workspace
//	         ↓
//	    [source/markdown] (parse notes, resolve wikilinks)
//	         ↓
//	    [seed] (place unpositioned nodes)
//	         ↓
//	    [project] (graph → flat elements)
//	         ↓
//	    [reconcile] (diff + apply against the surface)
//	         ↓
//	    Live surface / DOT / SVG / PDF / PNG / JSON output
//
// # Quick Start
//
//	g, err := markdown.Parse("./notes")
//	if err != nil {
//	    log.Fatal(err)
//	}
//	surface := reconcile.NewMemorySurface()
//	runner := pipeline.NewRunner(nil, nil, nil)
//	result, err := runner.Sync(ctx, g, surface, pipeline.Options{Workspace: "./notes"})
package pkg
