// Package dot exports graphs as Graphviz DOT and renders them to SVG.
//
// Unlike a plain graphviz layout, seeded node positions are pinned into the
// DOT output so the exported picture matches what a live canvas would show.
// PDF and PNG conversion of the resulting SVG lives in the parent [render]
// package.
package dot
