// Package nodelink renders diagrams as Graphviz node-link drawings.
//
// # Overview
//
// Graphviz ignores the diagram's stored positions and computes its own
// layout. Groups become clusters: every group turns into a
// "subgraph cluster_N" holding its direct children, and a group inside a
// group becomes a nested cluster. Nodes whose parent is missing are drawn at
// top level.
//
// # Usage
//
//	dot := nodelink.ToDOT(d, nodelink.Options{})
//	svg, err := nodelink.RenderSVG(ctx, dot)
//
// For PDF or PNG output:
//
//	pdf, err := nodelink.RenderPDF(ctx, dot)
//	png, err := nodelink.RenderPNG(ctx, dot, 2.0)  // 2x scale
//
// # Dependencies
//
// This package uses [github.com/goccy/go-graphviz] for in-process SVG
// rendering. PDF and PNG conversion requires librsvg (rsvg-convert).
package nodelink
