package group_test

import (
	"fmt"

	"github.com/matzehuels/groupfit/pkg/canvas"
	"github.com/matzehuels/groupfit/pkg/canvas/group"
)

func ExampleFit() {
	nodes := []canvas.Node{
		{ID: "g", Type: canvas.TypeGroup},
		{ID: "A", Position: canvas.Position{X: 10, Y: 20}, Width: canvas.Float(50), Height: canvas.Float(30), ParentID: "g"},
		{ID: "B", Position: canvas.Position{X: 100, Y: 5}, Width: canvas.Float(20), Height: canvas.Float(20), ParentID: "g"},
	}

	out, ok := group.Fit(nodes, "g")
	if !ok {
		return
	}
	for _, n := range out {
		w, h := n.Size()
		fmt.Printf("%s at (%g, %g) size %gx%g\n", n.ID, n.Position.X, n.Position.Y, w, h)
	}
	// Output:
	// g at (-30, -85) size 190x175
	// A at (40, 105) size 50x30
	// B at (130, 90) size 20x20
}

func ExampleFitAll() {
	nodes := []canvas.Node{
		{ID: "empty", Type: canvas.TypeGroup},
		{ID: "g", Type: canvas.TypeGroup},
		{ID: "a", ParentID: "g"},
	}

	for _, n := range group.FitAll(nodes) {
		if n.IsGroup() {
			w, h := n.Size()
			fmt.Printf("%s: %gx%g\n", n.ID, w, h)
		}
	}
	// Output:
	// empty: 160x100
	// g: 240x230
}
