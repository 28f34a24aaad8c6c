package canvas

import "math"

// Rect is an axis-aligned rectangle given by its top-left corner and size.
type Rect struct {
	X, Y          float64
	Width, Height float64
}

// MaxX returns the right edge of r.
func (r Rect) MaxX() float64 { return r.X + r.Width }

// MaxY returns the bottom edge of r.
func (r Rect) MaxY() float64 { return r.Y + r.Height }

// Center returns the center point of r.
func (r Rect) Center() Position {
	return Position{X: r.X + r.Width/2, Y: r.Y + r.Height/2}
}

// Union returns the smallest rectangle covering both r and o.
func (r Rect) Union(o Rect) Rect {
	minX, minY := math.Min(r.X, o.X), math.Min(r.Y, o.Y)
	maxX, maxY := math.Max(r.MaxX(), o.MaxX()), math.Max(r.MaxY(), o.MaxY())
	return Rect{X: minX, Y: minY, Width: maxX - minX, Height: maxY - minY}
}

// AbsoluteRect returns the canvas-space rectangle of the node with the given
// id, combining [AbsolutePosition] with [Node.Size].
func AbsoluteRect(nodes []Node, idx *Index, id string) (Rect, bool) {
	pos, ok := AbsolutePosition(nodes, idx, id)
	if !ok {
		return Rect{}, false
	}
	i, _ := idx.Lookup(id)
	w, h := nodes[i].Size()
	return Rect{X: pos.X, Y: pos.Y, Width: w, Height: h}, true
}
