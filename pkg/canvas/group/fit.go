package group

import (
	"math"
	"slices"

	"github.com/matzehuels/groupfit/pkg/canvas"
)

// Layout constants, in canvas units.
const (
	// Padding is the gap between the children's bounding box and each side
	// of the group.
	Padding = 40.0

	// HeaderHeight is the extra space above the top padding reserved for
	// the group's title.
	HeaderHeight = 50.0

	// DefaultWidth and DefaultHeight are assumed for children that have not
	// been measured.
	DefaultWidth  = canvas.DefaultWidth
	DefaultHeight = canvas.DefaultHeight
)

// Step describes one group fit performed by [FitAllWith].
type Step struct {
	GroupID string
	// Changed is false when the group had no children and was skipped.
	Changed bool
	// Bounds is the children's bounding box in the group's local
	// coordinates before the fit.
	Bounds canvas.Rect
	// Width and Height are the group's new size.
	Width, Height float64
}

// Observer receives a [Step] after each group of a batch.
type Observer func(Step)

// Fit resizes the group groupID so that it tightly wraps its direct children.
//
// The result is a new slice in the same order as nodes. In it, the group's
// style carries the new width and height and its position is shifted to the
// new origin; each direct child is moved by the opposite amount. Every other
// node is copied unchanged.
//
// Fit is not a pure resize: the group's Position changes by
// (minX-Padding, minY-Padding-HeaderHeight) of the child bounding box, so
// children keep their canvas positions. Its other fields (Type, ParentID,
// Width, Height, Data and the remaining style keys) are left as they were.
//
// If the group has no children, Fit returns (nil, false) and the caller
// should keep its collection as is. The group itself need not be present:
// its children are still translated. Input geometry is not validated.
func Fit(nodes []canvas.Node, groupID string) ([]canvas.Node, bool) {
	out, step := fit(nodes, canvas.NewIndex(nodes), groupID)
	return out, step.Changed
}

// Bounds returns the bounding box of groupID's direct children in the group's
// local coordinates, using each child's effective size. It returns false if
// the group has no children.
func Bounds(nodes []canvas.Node, groupID string) (canvas.Rect, bool) {
	return bounds(nodes, canvas.NewIndex(nodes).Children(groupID))
}

// FitAll fits every group node of nodes, in collection order.
//
// Each fit sees the result of the previous ones. Groups without children are
// left alone. The result is always a new slice; with no groups it is a plain
// copy of nodes.
//
// This is a single pass: a parent group listed before a nested group is not
// refitted after the nested group grows.
func FitAll(nodes []canvas.Node) []canvas.Node {
	return FitAllWith(nodes, nil)
}

// FitAllWith is [FitAll] with an observer that is called once per group.
// A nil observer is allowed.
func FitAllWith(nodes []canvas.Node, observe Observer) []canvas.Node {
	acc := slices.Clone(nodes)
	if acc == nil {
		acc = []canvas.Node{}
	}

	// Fitting never changes identifiers, order or parents, so one index
	// covers every intermediate collection.
	idx := canvas.NewIndex(acc)
	for _, id := range idx.Groups() {
		out, step := fit(acc, idx, id)
		if step.Changed {
			acc = out
		}
		if observe != nil {
			observe(step)
		}
	}
	return acc
}

func fit(nodes []canvas.Node, idx *canvas.Index, groupID string) ([]canvas.Node, Step) {
	step := Step{GroupID: groupID}
	children := idx.Children(groupID)
	box, ok := bounds(nodes, children)
	if !ok {
		return nil, step
	}

	offsetX := box.X - Padding
	offsetY := box.Y - Padding - HeaderHeight
	step.Changed = true
	step.Bounds = box
	step.Width = box.Width + 2*Padding
	step.Height = box.Height + 2*Padding + HeaderHeight

	out := slices.Clone(nodes)
	for _, i := range children {
		out[i].Position = out[i].Position.Add(-offsetX, -offsetY)
	}
	if gi, ok := idx.Lookup(groupID); ok {
		g := &out[gi]
		g.Style = g.Style.Clone()
		g.Style[canvas.StyleWidth] = step.Width
		g.Style[canvas.StyleHeight] = step.Height
		g.Position = g.Position.Add(offsetX, offsetY)
	}
	return out, step
}

func bounds(nodes []canvas.Node, children []int) (canvas.Rect, bool) {
	if len(children) == 0 {
		return canvas.Rect{}, false
	}

	minX, minY := math.Inf(1), math.Inf(1)
	maxX, maxY := math.Inf(-1), math.Inf(-1)
	for _, i := range children {
		n := &nodes[i]
		w, h := n.Size()
		minX = math.Min(minX, n.Position.X)
		minY = math.Min(minY, n.Position.Y)
		maxX = math.Max(maxX, n.Position.X+w)
		maxY = math.Max(maxY, n.Position.Y+h)
	}
	return canvas.Rect{X: minX, Y: minY, Width: maxX - minX, Height: maxY - minY}, true
}
