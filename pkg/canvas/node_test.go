package canvas

import (
	"encoding/json"
	"math"
	"testing"
)

func TestStyleNumber(t *testing.T) {
	tests := []struct {
		name   string
		style  Style
		want   float64
		wantOK bool
	}{
		{"nil style", nil, 0, false},
		{"missing key", Style{"color": "red"}, 0, false},
		{"float64", Style{"width": 12.5}, 12.5, true},
		{"int", Style{"width": 7}, 7, true},
		{"int64", Style{"width": int64(9)}, 9, true},
		{"json number", Style{"width": json.Number("3.25")}, 3.25, true},
		{"string not parsed", Style{"width": "120"}, 0, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := tt.style.Number("width")
			if ok != tt.wantOK || got != tt.want {
				t.Errorf("Number() = (%v, %v), want (%v, %v)", got, ok, tt.want, tt.wantOK)
			}
		})
	}
}

func TestStyleClone(t *testing.T) {
	orig := Style{"width": 10.0, "color": "red"}
	c := orig.Clone()
	c["width"] = 20.0

	if orig["width"] != 10.0 {
		t.Errorf("Clone shares storage: original width = %v", orig["width"])
	}
	if c["color"] != "red" {
		t.Errorf("Clone lost key: %v", c)
	}

	var nilStyle Style
	if got := nilStyle.Clone(); got == nil {
		t.Error("Clone of nil style returned nil")
	}
}

func TestNodeSize(t *testing.T) {
	tests := []struct {
		name         string
		node         Node
		wantW, wantH float64
	}{
		{
			name:  "unmeasured uses defaults",
			node:  Node{ID: "a"},
			wantW: DefaultWidth, wantH: DefaultHeight,
		},
		{
			name:  "measured size",
			node:  Node{ID: "a", Width: Float(50), Height: Float(30)},
			wantW: 50, wantH: 30,
		},
		{
			name:  "zero counts as unmeasured",
			node:  Node{ID: "a", Width: Float(0), Height: Float(0)},
			wantW: DefaultWidth, wantH: DefaultHeight,
		},
		{
			name:  "NaN counts as unmeasured",
			node:  Node{ID: "a", Width: Float(math.NaN()), Height: Float(20)},
			wantW: DefaultWidth, wantH: 20,
		},
		{
			name:  "negative passes through",
			node:  Node{ID: "a", Width: Float(-10), Height: Float(5)},
			wantW: -10, wantH: 5,
		},
		{
			name:  "style used when not measured",
			node:  Node{ID: "a", Style: Style{"width": 70.0, "height": 80}},
			wantW: 70, wantH: 80,
		},
		{
			name:  "measured wins over style for ordinary nodes",
			node:  Node{ID: "a", Width: Float(50), Style: Style{"width": 70.0}},
			wantW: 50, wantH: DefaultHeight,
		},
		{
			name: "style wins over measured for groups",
			node: Node{
				ID: "g", Type: TypeGroup,
				Width: Float(300), Height: Float(200),
				Style: Style{"width": 190.0, "height": 175.0},
			},
			wantW: 190, wantH: 175,
		},
		{
			name:  "group falls back to measured size",
			node:  Node{ID: "g", Type: TypeGroup, Width: Float(300), Height: Float(200)},
			wantW: 300, wantH: 200,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w, h := tt.node.Size()
			if w != tt.wantW || h != tt.wantH {
				t.Errorf("Size() = (%v, %v), want (%v, %v)", w, h, tt.wantW, tt.wantH)
			}
		})
	}
}

func TestNodeLabel(t *testing.T) {
	if got := (&Node{ID: "a"}).Label(); got != "a" {
		t.Errorf("Label() = %q, want %q", got, "a")
	}
	n := Node{ID: "a", Data: map[string]any{"label": "Web tier"}}
	if got := n.Label(); got != "Web tier" {
		t.Errorf("Label() = %q, want %q", got, "Web tier")
	}
}

func TestNodeJSONWireNames(t *testing.T) {
	raw := `{"id":"a","type":"default","position":{"x":1,"y":2},"parentNode":"g","width":50}`
	var n Node
	if err := json.Unmarshal([]byte(raw), &n); err != nil {
		t.Fatalf("Unmarshal: %v", err)
	}
	if n.ParentID != "g" {
		t.Errorf("ParentID = %q, want g", n.ParentID)
	}
	if n.Width == nil || *n.Width != 50 {
		t.Errorf("Width = %v, want 50", n.Width)
	}
	if n.Height != nil {
		t.Errorf("Height = %v, want nil", *n.Height)
	}
}

func TestDiagramGroupCount(t *testing.T) {
	d := Diagram{Nodes: []Node{
		{ID: "g1", Type: TypeGroup},
		{ID: "a", ParentID: "g1"},
		{ID: "g2", Type: TypeGroup},
	}}
	if got := d.GroupCount(); got != 2 {
		t.Errorf("GroupCount() = %d, want 2", got)
	}
}
