package nodelink

import (
	"bytes"
	"context"
	"fmt"
	"maps"
	"regexp"
	"slices"
	"strconv"
	"strings"

	"github.com/goccy/go-graphviz"

	"github.com/matzehuels/groupfit/pkg/canvas"
	"github.com/matzehuels/groupfit/pkg/render"
)

// Options configures node-link diagram rendering.
type Options struct {
	// Detailed adds the node ID and data fields to labels.
	// When false, only the label is shown.
	Detailed bool
}

// ToDOT converts a diagram to Graphviz DOT source.
// The result can be rendered using [RenderSVG], [RenderPDF], or [RenderPNG].
func ToDOT(d canvas.Diagram, opts Options) string {
	w := dotWriter{
		nodes:   d.Nodes,
		idx:     canvas.NewIndex(d.Nodes),
		opts:    opts,
		emitted: make(map[string]bool, len(d.Nodes)),
	}

	w.buf.WriteString("digraph G {\n")
	w.buf.WriteString("  rankdir=TB;\n")
	w.buf.WriteString("  bgcolor=\"transparent\";\n")
	w.buf.WriteString("  compound=true;\n")
	w.buf.WriteString("  node [shape=box, style=\"rounded,filled\", fillcolor=white, fontsize=24, margin=\"0.2,0.1\"];\n")
	w.buf.WriteString("  ranksep=0.5;\n")
	w.buf.WriteString("  nodesep=0.3;\n")
	if d.Title != "" {
		fmt.Fprintf(&w.buf, "  label=%q;\n  labelloc=t;\n", d.Title)
	}
	w.buf.WriteString("\n")

	for i := range d.Nodes {
		if w.isTopLevel(&d.Nodes[i]) {
			w.writeNode(i, 1)
		}
	}
	// Whatever is left sits on a parent cycle; draw it flat.
	for i := range d.Nodes {
		if !w.emitted[d.Nodes[i].ID] {
			w.writeNode(i, 1)
		}
	}

	if len(d.Edges) > 0 {
		w.buf.WriteString("\n")
	}
	for _, e := range d.Edges {
		attrs := edgeAttrs(e)
		if len(attrs) == 0 {
			fmt.Fprintf(&w.buf, "  %q -> %q;\n", e.Source, e.Target)
			continue
		}
		fmt.Fprintf(&w.buf, "  %q -> %q [%s];\n", e.Source, e.Target, strings.Join(attrs, ", "))
	}

	w.buf.WriteString("}\n")
	return w.buf.String()
}

type dotWriter struct {
	buf      bytes.Buffer
	nodes    []canvas.Node
	idx      *canvas.Index
	opts     Options
	emitted  map[string]bool
	clusters int
}

// isTopLevel reports whether n is drawn outside any cluster.
func (w *dotWriter) isTopLevel(n *canvas.Node) bool {
	if n.ParentID == "" {
		return true
	}
	p, ok := w.idx.Lookup(n.ParentID)
	return !ok || !w.nodes[p].IsGroup()
}

func (w *dotWriter) writeNode(i, depth int) {
	n := &w.nodes[i]
	if w.emitted[n.ID] {
		return
	}
	w.emitted[n.ID] = true
	indent := strings.Repeat("  ", depth)

	if !n.IsGroup() {
		fmt.Fprintf(&w.buf, "%s%q [%s];\n", indent, n.ID, strings.Join(fmtAttrs(*n, fmtLabel(*n, w.opts.Detailed)), ", "))
		return
	}

	w.clusters++
	fmt.Fprintf(&w.buf, "%ssubgraph cluster_%d {\n", indent, w.clusters)
	fmt.Fprintf(&w.buf, "%s  label=%q;\n", indent, fmtLabel(*n, w.opts.Detailed))
	fmt.Fprintf(&w.buf, "%s  style=\"rounded,filled\";\n", indent)
	fmt.Fprintf(&w.buf, "%s  fillcolor=%q;\n", indent, clusterFill(*n))
	// The group itself is an invisible anchor so edges to it still resolve.
	fmt.Fprintf(&w.buf, "%s  %q [shape=point, style=invis, label=\"\"];\n", indent, n.ID)
	for _, c := range w.idx.Children(n.ID) {
		w.writeNode(c, depth+1)
	}
	fmt.Fprintf(&w.buf, "%s}\n", indent)
}

func fmtLabel(n canvas.Node, detailed bool) string {
	if !detailed {
		return n.Label()
	}

	parts := []string{"id: " + n.ID}
	for _, k := range slices.Sorted(maps.Keys(n.Data)) {
		if k == canvas.DataLabel {
			continue
		}
		parts = append(parts, fmt.Sprintf("%s: %v", k, n.Data[k]))
	}
	return n.Label() + "\n" + strings.Join(parts, "\n")
}

func fmtAttrs(n canvas.Node, label string) []string {
	attrs := []string{fmt.Sprintf("label=%q", label)}
	if c, ok := n.Style["background"].(string); ok && c != "" {
		attrs = append(attrs, fmt.Sprintf("fillcolor=%q", c))
	}
	return attrs
}

func clusterFill(n canvas.Node) string {
	if c, ok := n.Style["background"].(string); ok && c != "" {
		return c
	}
	return "#f5f5f5"
}

func edgeAttrs(e canvas.Edge) []string {
	var attrs []string
	if e.Label != "" {
		attrs = append(attrs, fmt.Sprintf("label=%q", e.Label))
	}
	if e.Type == "dashed" {
		attrs = append(attrs, "style=dashed")
	}
	return attrs
}

// RenderSVG renders a DOT graph to SVG using Graphviz.
// Returns the SVG bytes ready for display or further conversion with [render.ToPDF] or [render.ToPNG].
func RenderSVG(ctx context.Context, dot string) ([]byte, error) {
	gv, err := graphviz.New(ctx)
	if err != nil {
		return nil, fmt.Errorf("init graphviz: %w", err)
	}
	defer gv.Close()

	g, err := graphviz.ParseBytes([]byte(dot))
	if err != nil {
		return nil, fmt.Errorf("parse DOT: %w", err)
	}
	defer g.Close()

	var buf bytes.Buffer
	if err := gv.Render(ctx, g, graphviz.SVG, &buf); err != nil {
		return nil, fmt.Errorf("render: %w", err)
	}
	return normalizeViewBox(buf.Bytes()), nil
}

var (
	svgTagRe  = regexp.MustCompile(`<svg[^>]*>`)
	viewBoxRe = regexp.MustCompile(`viewBox="([0-9.]+)\s+([0-9.]+)\s+([0-9.]+)\s+([0-9.]+)"`)
)

func normalizeViewBox(svg []byte) []byte {
	match := viewBoxRe.FindSubmatch(svg)
	if match == nil {
		return svg
	}

	w, _ := strconv.ParseFloat(string(match[3]), 64)
	h, _ := strconv.ParseFloat(string(match[4]), 64)
	if w == 0 || h == 0 {
		return svg
	}

	newSvg := fmt.Sprintf(`<svg xmlns="http://www.w3.org/2000/svg" viewBox="0 0 %.2f %.2f" width="%.0f" height="%.0f">`,
		w, h, w, h)

	return svgTagRe.ReplaceAll(svg, []byte(newSvg))
}

// RenderPDF renders a DOT graph as PDF via SVG conversion.
// Requires librsvg: brew install librsvg (macOS), apt install librsvg2-bin (Linux).
func RenderPDF(ctx context.Context, dot string) ([]byte, error) {
	svg, err := RenderSVG(ctx, dot)
	if err != nil {
		return nil, err
	}
	return render.ToPDF(ctx, svg)
}

// RenderPNG renders a DOT graph as PNG via SVG conversion.
// A scale of 2.0 produces a 2x resolution image suitable for high-DPI displays.
func RenderPNG(ctx context.Context, dot string, scale float64) ([]byte, error) {
	svg, err := RenderSVG(ctx, dot)
	if err != nil {
		return nil, err
	}
	return render.ToPNG(ctx, svg, scale)
}
