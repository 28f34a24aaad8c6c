package svg

import (
	"bytes"
	"cmp"
	"fmt"
	"math"
	"slices"
	"strings"

	"github.com/matzehuels/groupfit/pkg/canvas"
	"github.com/matzehuels/groupfit/pkg/canvas/group"
)

// DefaultMargin is the blank border around the drawing.
const DefaultMargin = 20.0

type Option func(*renderer)

type renderer struct {
	margin    float64
	showEdges bool
	title     bool
}

// WithEdges draws edges between node centers.
func WithEdges() Option { return func(r *renderer) { r.showEdges = true } }

// WithMargin sets the blank border around the drawing.
func WithMargin(m float64) Option { return func(r *renderer) { r.margin = m } }

// WithTitle renders the diagram title as an SVG <title> element.
func WithTitle() Option { return func(r *renderer) { r.title = true } }

type box struct {
	node  *canvas.Node
	rect  canvas.Rect
	depth int
}

// Render draws d and returns the SVG document.
func Render(d canvas.Diagram, opts ...Option) []byte {
	r := renderer{margin: DefaultMargin}
	for _, opt := range opts {
		opt(&r)
	}

	boxes, byID := layoutBoxes(d.Nodes)
	frame := frameOf(boxes, r.margin)

	var buf bytes.Buffer
	fmt.Fprintf(&buf, `<svg xmlns="http://www.w3.org/2000/svg" viewBox="%s %s %s %s" width="%.0f" height="%.0f">`+"\n",
		num(frame.X), num(frame.Y), num(frame.Width), num(frame.Height), frame.Width, frame.Height)
	if r.title && d.Title != "" {
		fmt.Fprintf(&buf, "  <title>%s</title>\n", escape(d.Title))
	}
	renderDefs(&buf)

	for _, b := range boxes {
		if b.node.IsGroup() {
			renderGroup(&buf, b)
		}
	}
	if r.showEdges {
		for _, e := range d.Edges {
			renderEdge(&buf, e, byID)
		}
	}
	for _, b := range boxes {
		if !b.node.IsGroup() {
			renderNode(&buf, b)
		}
	}

	buf.WriteString("</svg>\n")
	return buf.Bytes()
}

// layoutBoxes resolves canvas-space rectangles and sorts them so that outer
// groups come before inner ones. Ties keep collection order.
func layoutBoxes(nodes []canvas.Node) ([]box, map[string]canvas.Rect) {
	idx := canvas.NewIndex(nodes)
	boxes := make([]box, 0, len(nodes))
	byID := make(map[string]canvas.Rect, len(nodes))
	for i := range nodes {
		n := &nodes[i]
		rect, _ := canvas.AbsoluteRect(nodes, idx, n.ID)
		boxes = append(boxes, box{node: n, rect: rect, depth: canvas.Depth(nodes, idx, n.ID)})
		byID[n.ID] = rect
	}
	slices.SortStableFunc(boxes, func(a, b box) int {
		return cmp.Compare(a.depth, b.depth)
	})
	return boxes, byID
}

func frameOf(boxes []box, margin float64) canvas.Rect {
	if len(boxes) == 0 {
		return canvas.Rect{Width: 2 * margin, Height: 2 * margin}
	}
	frame := boxes[0].rect
	for _, b := range boxes[1:] {
		frame = frame.Union(b.rect)
	}
	return canvas.Rect{
		X:      frame.X - margin,
		Y:      frame.Y - margin,
		Width:  frame.Width + 2*margin,
		Height: frame.Height + 2*margin,
	}
}

func renderDefs(buf *bytes.Buffer) {
	buf.WriteString(`  <defs>
    <marker id="arrow" viewBox="0 0 10 10" refX="10" refY="5" markerWidth="6" markerHeight="6" orient="auto-start-reverse">
      <path d="M 0 0 L 10 5 L 0 10 z" fill="#555"/>
    </marker>
  </defs>
`)
}

func renderGroup(buf *bytes.Buffer, b box) {
	r := b.rect
	fill := styleString(b.node, "background", "#f5f7fa")
	stroke := styleString(b.node, "borderColor", "#9aa5b1")
	header := math.Min(group.HeaderHeight, math.Abs(r.Height))

	fmt.Fprintf(buf, `  <g class="group" id="group-%s">`+"\n", escape(b.node.ID))
	fmt.Fprintf(buf, `    <rect x="%s" y="%s" width="%s" height="%s" rx="8" fill="%s" stroke="%s" stroke-width="1.5"/>`+"\n",
		num(r.X), num(r.Y), num(r.Width), num(r.Height), escape(fill), escape(stroke))
	fmt.Fprintf(buf, `    <path d="M %s %s H %s" stroke="%s" stroke-dasharray="4 4"/>`+"\n",
		num(r.X), num(r.Y+header), num(r.MaxX()), escape(stroke))
	fmt.Fprintf(buf, `    <text x="%s" y="%s" font-family="sans-serif" font-size="16" font-weight="bold" dominant-baseline="middle">%s</text>`+"\n",
		num(r.X+12), num(r.Y+header/2), escape(b.node.Label()))
	buf.WriteString("  </g>\n")
}

func renderNode(buf *bytes.Buffer, b box) {
	r := b.rect
	c := r.Center()
	fill := styleString(b.node, "background", "#ffffff")
	stroke := styleString(b.node, "borderColor", "#333333")

	fmt.Fprintf(buf, `  <g class="node" id="node-%s">`+"\n", escape(b.node.ID))
	fmt.Fprintf(buf, `    <rect x="%s" y="%s" width="%s" height="%s" rx="4" fill="%s" stroke="%s" stroke-width="1"/>`+"\n",
		num(r.X), num(r.Y), num(r.Width), num(r.Height), escape(fill), escape(stroke))
	fmt.Fprintf(buf, `    <text x="%s" y="%s" font-family="sans-serif" font-size="14" text-anchor="middle" dominant-baseline="middle">%s</text>`+"\n",
		num(c.X), num(c.Y), escape(b.node.Label()))
	buf.WriteString("  </g>\n")
}

func renderEdge(buf *bytes.Buffer, e canvas.Edge, byID map[string]canvas.Rect) {
	src, ok := byID[e.Source]
	if !ok {
		return
	}
	dst, ok := byID[e.Target]
	if !ok {
		return
	}
	from, to := src.Center(), dst.Center()

	dash := ""
	if e.Type == "dashed" {
		dash = ` stroke-dasharray="6 4"`
	}
	fmt.Fprintf(buf, `  <line class="edge" x1="%s" y1="%s" x2="%s" y2="%s" stroke="#555" stroke-width="1.5"%s marker-end="url(#arrow)"/>`+"\n",
		num(from.X), num(from.Y), num(to.X), num(to.Y), dash)
	if e.Label != "" {
		fmt.Fprintf(buf, `  <text x="%s" y="%s" font-family="sans-serif" font-size="12" text-anchor="middle">%s</text>`+"\n",
			num((from.X+to.X)/2), num((from.Y+to.Y)/2-4), escape(e.Label))
	}
}

func styleString(n *canvas.Node, key, fallback string) string {
	if s, ok := n.Style[key].(string); ok && s != "" {
		return s
	}
	return fallback
}

// num formats a coordinate with at most two decimals and no trailing zeros.
func num(v float64) string {
	s := fmt.Sprintf("%.2f", v)
	s = strings.TrimRight(s, "0")
	s = strings.TrimSuffix(s, ".")
	if s == "-0" {
		return "0"
	}
	return s
}

var xmlEscaper = strings.NewReplacer(
	"&", "&amp;",
	"<", "&lt;",
	">", "&gt;",
	`"`, "&quot;",
	"'", "&apos;",
)

func escape(s string) string { return xmlEscaper.Replace(s) }
