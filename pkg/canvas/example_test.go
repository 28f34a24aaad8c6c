package canvas_test

import (
	"fmt"

	"github.com/matzehuels/groupfit/pkg/canvas"
)

func ExampleAbsolutePosition() {
	nodes := []canvas.Node{
		{ID: "tier", Type: canvas.TypeGroup, Position: canvas.Position{X: 200, Y: 100}},
		{ID: "web", Position: canvas.Position{X: 40, Y: 90}, ParentID: "tier"},
	}
	idx := canvas.NewIndex(nodes)

	pos, _ := canvas.AbsolutePosition(nodes, idx, "web")
	fmt.Printf("web at (%g, %g)\n", pos.X, pos.Y)
	// Output:
	// web at (240, 190)
}

func ExampleNode_Size() {
	measured := canvas.Node{ID: "a", Width: canvas.Float(50), Height: canvas.Float(30)}
	fresh := canvas.Node{ID: "b"}

	w, h := measured.Size()
	fmt.Println(w, h)
	w, h = fresh.Size()
	fmt.Println(w, h)
	// Output:
	// 50 30
	// 160 100
}
