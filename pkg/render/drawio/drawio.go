// Package drawio exports diagrams as draw.io (diagrams.net) documents.
//
// Groups become swimlane containers and their children become child cells
// of the container, so positions stay group-relative exactly as in the
// diagram. The swimlane header matches the group header band. Nested groups
// nest as containers. Edges whose endpoints are missing are skipped.
package drawio

import (
	"cmp"
	"encoding/xml"
	"fmt"
	"slices"
	"strings"

	"github.com/matzehuels/groupfit/pkg/canvas"
	"github.com/matzehuels/groupfit/pkg/canvas/group"
)

// Minimum page size, in draw.io units.
const (
	minPageWidth  = 1200
	minPageHeight = 800
	pageMargin    = 100
)

type mxFile struct {
	XMLName xml.Name  `xml:"mxfile"`
	Host    string    `xml:"host,attr"`
	Agent   string    `xml:"agent,attr"`
	Type    string    `xml:"type,attr"`
	Diagram mxDiagram `xml:"diagram"`
}

type mxDiagram struct {
	ID    string       `xml:"id,attr"`
	Name  string       `xml:"name,attr"`
	Model mxGraphModel `xml:"mxGraphModel"`
}

type mxGraphModel struct {
	Grid       int    `xml:"grid,attr"`
	GridSize   int    `xml:"gridSize,attr"`
	Guides     int    `xml:"guides,attr"`
	Tooltips   int    `xml:"tooltips,attr"`
	Connect    int    `xml:"connect,attr"`
	Arrows     int    `xml:"arrows,attr"`
	Fold       int    `xml:"fold,attr"`
	Page       int    `xml:"page,attr"`
	PageScale  int    `xml:"pageScale,attr"`
	PageWidth  int    `xml:"pageWidth,attr"`
	PageHeight int    `xml:"pageHeight,attr"`
	Root       mxRoot `xml:"root"`
}

type mxRoot struct {
	Cells []mxCell `xml:"mxCell"`
}

type mxCell struct {
	ID       string      `xml:"id,attr"`
	Value    *string     `xml:"value,attr,omitempty"`
	Style    string      `xml:"style,attr,omitempty"`
	Vertex   string      `xml:"vertex,attr,omitempty"`
	Edge     string      `xml:"edge,attr,omitempty"`
	Parent   string      `xml:"parent,attr,omitempty"`
	Source   string      `xml:"source,attr,omitempty"`
	Target   string      `xml:"target,attr,omitempty"`
	Tooltip  string      `xml:"tooltip,attr,omitempty"`
	Geometry *mxGeometry `xml:"mxGeometry,omitempty"`
}

type mxGeometry struct {
	X        string `xml:"x,attr,omitempty"`
	Y        string `xml:"y,attr,omitempty"`
	Width    string `xml:"width,attr,omitempty"`
	Height   string `xml:"height,attr,omitempty"`
	Relative string `xml:"relative,attr,omitempty"`
	As       string `xml:"as,attr"`
}

// layerID is the default layer every top-level cell hangs off.
const layerID = "1"

// Export encodes d as a draw.io document.
func Export(d canvas.Diagram) ([]byte, error) {
	name := d.Title
	if name == "" {
		name = "Diagram"
	}

	cells, maxX, maxY := buildCells(d)
	file := mxFile{
		Host:  "app.diagrams.net",
		Agent: "groupfit",
		Type:  "device",
		Diagram: mxDiagram{
			ID:   "groupfit",
			Name: name,
			Model: mxGraphModel{
				Grid: 1, GridSize: 10, Guides: 1, Tooltips: 1, Connect: 1,
				Arrows: 1, Fold: 1, Page: 1, PageScale: 1,
				PageWidth:  max(int(maxX)+pageMargin, minPageWidth),
				PageHeight: max(int(maxY)+pageMargin, minPageHeight),
				Root:       mxRoot{Cells: cells},
			},
		},
	}

	out, err := xml.MarshalIndent(file, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("encode drawio: %w", err)
	}
	return append([]byte(xml.Header), append(out, '\n')...), nil
}

func buildCells(d canvas.Diagram) ([]mxCell, float64, float64) {
	idx := canvas.NewIndex(d.Nodes)

	// Containers must precede their children.
	order := make([]int, len(d.Nodes))
	depth := make([]int, len(d.Nodes))
	for i := range d.Nodes {
		order[i] = i
		depth[i] = canvas.Depth(d.Nodes, idx, d.Nodes[i].ID)
	}
	slices.SortStableFunc(order, func(a, b int) int {
		return cmp.Compare(depth[a], depth[b])
	})

	cellIDs := make(map[string]string, len(d.Nodes))
	for n, i := range order {
		cellIDs[d.Nodes[i].ID] = fmt.Sprintf("cell-%d", n+2)
	}

	cells := []mxCell{{ID: "0"}, {ID: layerID, Parent: "0"}}
	var maxX, maxY float64
	for _, i := range order {
		n := &d.Nodes[i]
		parent := layerID
		if p, ok := idx.Lookup(n.ParentID); ok && n.ParentID != "" && d.Nodes[p].IsGroup() {
			parent = cellIDs[n.ParentID]
		}
		cells = append(cells, nodeCell(n, cellIDs[n.ID], parent))

		if r, ok := canvas.AbsoluteRect(d.Nodes, idx, n.ID); ok {
			maxX = max(maxX, r.MaxX())
			maxY = max(maxY, r.MaxY())
		}
	}

	next := len(order) + 2
	for _, e := range d.Edges {
		src, okSrc := cellIDs[e.Source]
		dst, okDst := cellIDs[e.Target]
		if !okSrc || !okDst {
			continue
		}
		label := e.Label
		cells = append(cells, mxCell{
			ID:       fmt.Sprintf("cell-%d", next),
			Value:    &label,
			Style:    edgeStyle(e),
			Edge:     "1",
			Parent:   layerID,
			Source:   src,
			Target:   dst,
			Geometry: &mxGeometry{Relative: "1", As: "geometry"},
		})
		next++
	}
	return cells, maxX, maxY
}

func nodeCell(n *canvas.Node, id, parent string) mxCell {
	w, h := n.Size()
	label := n.Label()
	cell := mxCell{
		ID:     id,
		Value:  &label,
		Vertex: "1",
		Parent: parent,
		Geometry: &mxGeometry{
			X:      num(n.Position.X),
			Y:      num(n.Position.Y),
			Width:  num(w),
			Height: num(h),
			As:     "geometry",
		},
	}
	if desc, ok := n.Data["description"].(string); ok {
		cell.Tooltip = desc
	}

	fill := styleString(n, "background", "#f3f4f6")
	stroke := styleString(n, "borderColor", "#6b7280")
	if n.IsGroup() {
		cell.Style = fmt.Sprintf("swimlane;whiteSpace=wrap;html=1;fillColor=%s;strokeColor=%s;fontStyle=1;startSize=%s;rounded=1;arcSize=8;",
			styleString(n, "background", "#f9fafb"), stroke, num(group.HeaderHeight))
		return cell
	}
	cell.Style = fmt.Sprintf("rounded=1;whiteSpace=wrap;html=1;fillColor=%s;strokeColor=%s;strokeWidth=2;", fill, stroke)
	return cell
}

func edgeStyle(e canvas.Edge) string {
	dash := "dashed=0;"
	switch e.Type {
	case "async", "dashed":
		dash = "dashed=1;dashPattern=8 8;"
	case "optional":
		dash = "dashed=1;dashPattern=4 4;strokeColor=#9ca3af;"
	}
	return "edgeStyle=orthogonalEdgeStyle;rounded=1;orthogonalLoop=1;jettySize=auto;html=1;" +
		dash + "strokeWidth=2;strokeColor=#6b7280;endArrow=classic;endFill=1;"
}

func styleString(n *canvas.Node, key, fallback string) string {
	if s, ok := n.Style[key].(string); ok && s != "" {
		return s
	}
	return fallback
}

func num(v float64) string {
	s := strings.TrimRight(fmt.Sprintf("%.2f", v), "0")
	s = strings.TrimSuffix(s, ".")
	if s == "-0" {
		return "0"
	}
	return s
}
