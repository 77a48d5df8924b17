// Package markdown turns a directory of notes into graph snapshots.
//
// Each .md file becomes one node: the node ID is the file's path relative to
// the workspace root (extension stripped), the title comes from the first ATX
// heading, the summary from the first paragraph, and [[wikilink]] targets
// become outgoing edges. Links resolve by exact relative path first, then by
// unique base name; unresolved links are dropped.
//
// [Watcher] layers fsnotify on top of [Parse]: in-place writes produce
// single-node deltas for low-latency updates, structural changes (create,
// remove, rename) produce a debounced full snapshot.
package markdown
