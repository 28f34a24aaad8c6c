package canvas

import (
	"encoding/json"
	"maps"
	"math"
)

// TypeGroup is the type tag of group (container) nodes.
const TypeGroup = "groupNode"

// Default size used for nodes the editor has not measured yet.
const (
	DefaultWidth  = 160.0
	DefaultHeight = 100.0
)

// Style keys that hold a group's size.
const (
	StyleWidth  = "width"
	StyleHeight = "height"
)

// DataLabel is the metadata key holding a node's display label.
const DataLabel = "label"

// Position is a point in parent-relative coordinates.
type Position struct {
	X float64 `json:"x" bson:"x" yaml:"x"`
	Y float64 `json:"y" bson:"y" yaml:"y"`
}

// Add returns p translated by (dx, dy).
func (p Position) Add(dx, dy float64) Position {
	return Position{X: p.X + dx, Y: p.Y + dy}
}

// Style is the open-ended style attachment of a node.
type Style map[string]any

// Number returns the numeric value stored under key.
// Values decoded from JSON are float64, values decoded from YAML or built in
// code may be ints; all are accepted. Strings are not parsed.
func (s Style) Number(key string) (float64, bool) {
	if s == nil {
		return 0, false
	}
	return toFloat(s[key])
}

// Clone returns a shallow copy of s. A nil style clones to an empty one.
func (s Style) Clone() Style {
	out := make(Style, len(s)+2)
	maps.Copy(out, s)
	return out
}

// Node is a positioned element of a diagram.
type Node struct {
	ID       string         `json:"id" bson:"id" yaml:"id"`
	Type     string         `json:"type,omitempty" bson:"type,omitempty" yaml:"type,omitempty"`
	Position Position       `json:"position" bson:"position" yaml:"position"`
	Width    *float64       `json:"width,omitempty" bson:"width,omitempty" yaml:"width,omitempty"`
	Height   *float64       `json:"height,omitempty" bson:"height,omitempty" yaml:"height,omitempty"`
	ParentID string         `json:"parentNode,omitempty" bson:"parent_node,omitempty" yaml:"parentNode,omitempty"`
	Style    Style          `json:"style,omitempty" bson:"style,omitempty" yaml:"style,omitempty"`
	Data     map[string]any `json:"data,omitempty" bson:"data,omitempty" yaml:"data,omitempty"`
}

// IsGroup reports whether n is a group node.
func (n Node) IsGroup() bool { return n.Type == TypeGroup }

// HasParent reports whether n belongs to a group.
func (n Node) HasParent() bool { return n.ParentID != "" }

// Label returns the display label from Data, falling back to the ID.
func (n Node) Label() string {
	if s, ok := n.Data[DataLabel].(string); ok && s != "" {
		return s
	}
	return n.ID
}

// Size returns the effective width and height of n.
//
// Ordinary nodes prefer the measured Width/Height over style values; group
// nodes prefer style, because fitting writes a group's size to its style and
// the measured size lags behind until the editor re-renders. Missing values
// fall back to the defaults. A value counts as present only if it is non-zero
// and not NaN: the editor reports zero for nodes it has not laid out yet.
// Negative and infinite values are returned as-is.
func (n Node) Size() (w, h float64) {
	return n.dimension(n.Width, StyleWidth, DefaultWidth),
		n.dimension(n.Height, StyleHeight, DefaultHeight)
}

func (n Node) dimension(measured *float64, styleKey string, fallback float64) float64 {
	styled, okStyled := n.Style.Number(styleKey)
	okStyled = usable(styled, okStyled)
	okMeasured := measured != nil && usable(*measured, true)

	switch {
	case n.IsGroup() && okStyled:
		return styled
	case okMeasured:
		return *measured
	case okStyled:
		return styled
	default:
		return fallback
	}
}

// Edge connects two nodes.
type Edge struct {
	ID     string `json:"id" bson:"id" yaml:"id"`
	Source string `json:"source" bson:"source" yaml:"source"`
	Target string `json:"target" bson:"target" yaml:"target"`
	Type   string `json:"type,omitempty" bson:"type,omitempty" yaml:"type,omitempty"`
	Label  string `json:"label,omitempty" bson:"label,omitempty" yaml:"label,omitempty"`
}

// Diagram is a titled node collection with its edges.
type Diagram struct {
	Title string `json:"title,omitempty" bson:"title,omitempty" yaml:"title,omitempty"`
	Nodes []Node `json:"nodes" bson:"nodes" yaml:"nodes"`
	Edges []Edge `json:"edges,omitempty" bson:"edges,omitempty" yaml:"edges,omitempty"`
}

// WithNodes returns a copy of d that uses nodes.
func (d Diagram) WithNodes(nodes []Node) Diagram {
	d.Nodes = nodes
	return d
}

// GroupCount returns the number of group nodes in d.
func (d Diagram) GroupCount() int {
	n := 0
	for i := range d.Nodes {
		if d.Nodes[i].IsGroup() {
			n++
		}
	}
	return n
}

// Float returns a pointer to v, for building nodes with a measured size.
func Float(v float64) *float64 { return &v }

func usable(v float64, ok bool) bool {
	return ok && v != 0 && !math.IsNaN(v)
}

func toFloat(v any) (float64, bool) {
	switch x := v.(type) {
	case float64:
		return x, true
	case float32:
		return float64(x), true
	case int:
		return float64(x), true
	case int32:
		return float64(x), true
	case int64:
		return float64(x), true
	case uint:
		return float64(x), true
	case uint64:
		return float64(x), true
	case json.Number:
		f, err := x.Float64()
		return f, err == nil
	default:
		return 0, false
	}
}
