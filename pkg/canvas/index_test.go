package canvas

import (
	"slices"
	"testing"
)

func sampleNodes() []Node {
	return []Node{
		{ID: "outer", Type: TypeGroup, Position: Position{X: 100, Y: 100}},
		{ID: "inner", Type: TypeGroup, Position: Position{X: 10, Y: 20}, ParentID: "outer"},
		{ID: "a", Position: Position{X: 1, Y: 2}, ParentID: "inner"},
		{ID: "b", Position: Position{X: 5, Y: 5}, ParentID: "outer"},
		{ID: "free", Position: Position{X: 7, Y: 8}},
		{ID: "orphan", Position: Position{X: 3, Y: 3}, ParentID: "missing"},
	}
}

func TestNewIndex(t *testing.T) {
	idx := NewIndex(sampleNodes())

	if got, want := idx.Groups(), []string{"outer", "inner"}; !slices.Equal(got, want) {
		t.Errorf("Groups() = %v, want %v", got, want)
	}
	if got, want := idx.Children("outer"), []int{1, 3}; !slices.Equal(got, want) {
		t.Errorf("Children(outer) = %v, want %v", got, want)
	}
	if got := idx.Children("free"); len(got) != 0 {
		t.Errorf("Children(free) = %v, want none", got)
	}
	if i, ok := idx.Lookup("b"); !ok || i != 3 {
		t.Errorf("Lookup(b) = (%d, %v), want (3, true)", i, ok)
	}
	if _, ok := idx.Lookup("nope"); ok {
		t.Error("Lookup(nope) found a node")
	}
}

func TestAbsolutePosition(t *testing.T) {
	nodes := sampleNodes()
	idx := NewIndex(nodes)

	tests := []struct {
		id   string
		want Position
	}{
		{"outer", Position{X: 100, Y: 100}},
		{"inner", Position{X: 110, Y: 120}},
		{"a", Position{X: 111, Y: 122}},
		{"b", Position{X: 105, Y: 105}},
		{"free", Position{X: 7, Y: 8}},
		{"orphan", Position{X: 3, Y: 3}},
	}

	for _, tt := range tests {
		t.Run(tt.id, func(t *testing.T) {
			got, ok := AbsolutePosition(nodes, idx, tt.id)
			if !ok {
				t.Fatal("AbsolutePosition() not found")
			}
			if got != tt.want {
				t.Errorf("AbsolutePosition() = %v, want %v", got, tt.want)
			}
		})
	}

	if _, ok := AbsolutePosition(nodes, idx, "nope"); ok {
		t.Error("AbsolutePosition(nope) reported found")
	}
}

func TestAbsolutePositionCycle(t *testing.T) {
	nodes := []Node{
		{ID: "x", Position: Position{X: 1, Y: 1}, ParentID: "y"},
		{ID: "y", Position: Position{X: 2, Y: 2}, ParentID: "x"},
	}
	idx := NewIndex(nodes)

	got, ok := AbsolutePosition(nodes, idx, "x")
	if !ok {
		t.Fatal("AbsolutePosition() not found")
	}
	if want := (Position{X: 3, Y: 3}); got != want {
		t.Errorf("AbsolutePosition() = %v, want %v", got, want)
	}
	if d := Depth(nodes, idx, "x"); d != 1 {
		t.Errorf("Depth() = %d, want 1", d)
	}
}

func TestDepth(t *testing.T) {
	nodes := sampleNodes()
	idx := NewIndex(nodes)

	for id, want := range map[string]int{"outer": 0, "inner": 1, "a": 2, "orphan": 0, "nope": 0} {
		if got := Depth(nodes, idx, id); got != want {
			t.Errorf("Depth(%s) = %d, want %d", id, got, want)
		}
	}
}

func TestRectUnion(t *testing.T) {
	r := Rect{X: 0, Y: 0, Width: 10, Height: 10}.Union(Rect{X: -5, Y: 5, Width: 10, Height: 20})
	want := Rect{X: -5, Y: 0, Width: 15, Height: 25}
	if r != want {
		t.Errorf("Union() = %+v, want %+v", r, want)
	}
	if c := want.Center(); c != (Position{X: 2.5, Y: 12.5}) {
		t.Errorf("Center() = %v", c)
	}
}
