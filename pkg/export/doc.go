// Package export writes a graph out as a JSON snapshot, Graphviz DOT or SVG.
//
// # Formats
//
//   - json: every node with its position, size and attributes, plus the
//     evaluated edge list as ("Node.attr", "Node.attr") pairs.
//   - dot: record-shaped nodes with one port per attribute, so edges leave
//     and enter the member that holds the pointer.
//   - svg: the DOT source laid out in-process by Graphviz.
//
// # Usage
//
//	var buf bytes.Buffer
//	err := export.Write(ctx, &buf, g, export.FormatDOT, export.Options{})
//
// A successful [Write] marks the graph saved, which emits GraphSaved.
//
// # Dependencies
//
// SVG rendering uses [github.com/goccy/go-graphviz], which runs Graphviz as
// WebAssembly and needs no system installation.
package export
