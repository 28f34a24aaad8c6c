// Package render turns diagrams into visual outputs.
//
// # Overview
//
// The subpackages each produce one family of output:
//
//   - [svg]: direct SVG drawing that uses the diagram's own geometry
//   - [nodelink]: Graphviz DOT with one cluster per group, laid out by Graphviz
//   - [drawio]: mxGraph XML that opens in draw.io / diagrams.net
//
// This package holds what they share: the list of output formats and
// conversion of SVG to PDF or PNG.
//
// # Format Conversion
//
// [ToPDF] and [ToPNG] convert any SVG using the external rsvg-convert tool
// (from librsvg):
//
//	out := svg.Render(d)
//	pdf, err := render.ToPDF(ctx, out)
//	png, err := render.ToPNG(ctx, out, 2.0)  // 2x scale
//
// [svg]: github.com/matzehuels/groupfit/pkg/render/svg
// [nodelink]: github.com/matzehuels/groupfit/pkg/render/nodelink
// [drawio]: github.com/matzehuels/groupfit/pkg/render/drawio
package render
