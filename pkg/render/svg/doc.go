// Package svg draws a diagram as SVG using the diagram's own geometry.
//
// Every node is placed at its canvas-space position (see
// canvas.AbsolutePosition) with its effective size. Groups are drawn first,
// outermost to innermost, as rounded boxes with a header band that holds
// the group label; ordinary nodes are drawn on top. Edges are optional and
// run between node centers.
//
// The output is deterministic: the same diagram and options always produce
// the same bytes.
package svg
