package group

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/matzehuels/groupfit/pkg/canvas"
)

func pos(x, y float64) canvas.Position { return canvas.Position{X: x, Y: y} }

// scenario is a group at the canvas origin with two measured children.
func scenario() []canvas.Node {
	return []canvas.Node{
		{ID: "g", Type: canvas.TypeGroup, Style: canvas.Style{"background": "#eee"}},
		{ID: "A", Position: pos(10, 20), Width: canvas.Float(50), Height: canvas.Float(30), ParentID: "g"},
		{ID: "B", Position: pos(100, 5), Width: canvas.Float(20), Height: canvas.Float(20), ParentID: "g"},
	}
}

func byID(t *testing.T, nodes []canvas.Node, id string) canvas.Node {
	t.Helper()
	for _, n := range nodes {
		if n.ID == id {
			return n
		}
	}
	t.Fatalf("node %q not found", id)
	return canvas.Node{}
}

func absolute(t *testing.T, nodes []canvas.Node, id string) canvas.Position {
	t.Helper()
	p, ok := canvas.AbsolutePosition(nodes, canvas.NewIndex(nodes), id)
	require.True(t, ok, "node %q not found", id)
	return p
}

func TestFitScenario(t *testing.T) {
	out, ok := Fit(scenario(), "g")
	require.True(t, ok)
	require.Len(t, out, 3)

	assert.Equal(t, pos(40, 105), byID(t, out, "A").Position)
	assert.Equal(t, pos(130, 90), byID(t, out, "B").Position)

	g := byID(t, out, "g")
	w, h := g.Size()
	assert.InDelta(t, 190, w, 1e-9)
	assert.InDelta(t, 175, h, 1e-9)
	assert.Equal(t, pos(-30, -85), g.Position)
	assert.Equal(t, "#eee", g.Style["background"], "other style keys kept")
}

func TestFitGroupFields(t *testing.T) {
	in := scenario()
	in[0].Position = pos(500, 300)
	in[0].ParentID = "lane"
	in[0].Data = map[string]any{"label": "Checkout"}
	in[0].Width = canvas.Float(10)

	out, ok := Fit(in, "g")
	require.True(t, ok)

	g := byID(t, out, "g")
	assert.Equal(t, pos(470, 215), g.Position, "group moves by the child offset")
	assert.Equal(t, canvas.TypeGroup, g.Type)
	assert.Equal(t, "lane", g.ParentID)
	assert.Equal(t, "Checkout", g.Data["label"])
	require.NotNil(t, g.Width)
	assert.Equal(t, 10.0, *g.Width, "measured width is not overwritten")
	assert.Equal(t, 190.0, g.Style[canvas.StyleWidth])
	assert.Equal(t, 175.0, g.Style[canvas.StyleHeight])
}

func TestFitPreservesOrder(t *testing.T) {
	in := scenario()
	in[0], in[2] = in[2], in[0]

	out, ok := Fit(in, "g")
	require.True(t, ok)
	for i := range in {
		assert.Equal(t, in[i].ID, out[i].ID)
	}
}

func TestFitChildless(t *testing.T) {
	tests := []struct {
		name    string
		nodes   []canvas.Node
		groupID string
	}{
		{"empty group", []canvas.Node{{ID: "g", Type: canvas.TypeGroup}, {ID: "x"}}, "g"},
		{"unknown group", scenario(), "nope"},
		{"nil collection", nil, "g"},
		{"grandchildren only", []canvas.Node{
			{ID: "outer", Type: canvas.TypeGroup},
			{ID: "x", ParentID: "inner"},
		}, "outer"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			out, ok := Fit(tt.nodes, tt.groupID)
			assert.False(t, ok)
			assert.Nil(t, out)
		})
	}
}

func TestFitAbsolutePositionInvariant(t *testing.T) {
	in := []canvas.Node{
		{ID: "g", Type: canvas.TypeGroup, Position: pos(300, 150)},
		{ID: "a", Position: pos(-25, 60), ParentID: "g"},
		{ID: "b", Position: pos(210, -40), Width: canvas.Float(80), ParentID: "g"},
		{ID: "c", Position: pos(5, 5), Width: canvas.Float(12), Height: canvas.Float(400), ParentID: "g"},
	}

	out, ok := Fit(in, "g")
	require.True(t, ok)

	for _, id := range []string{"a", "b", "c"} {
		before := absolute(t, in, id)
		after := absolute(t, out, id)
		assert.InDelta(t, before.X, after.X, 1e-9, "%s x", id)
		assert.InDelta(t, before.Y, after.Y, 1e-9, "%s y", id)
	}
}

func TestFitTight(t *testing.T) {
	in := []canvas.Node{
		{ID: "g", Type: canvas.TypeGroup},
		{ID: "a", Position: pos(-25, 60), ParentID: "g"},
		{ID: "b", Position: pos(210, -40), Width: canvas.Float(80), Height: canvas.Float(10), ParentID: "g"},
	}
	// x extent: -25 .. 290, y extent: -40 .. 160
	out, ok := Fit(in, "g")
	require.True(t, ok)

	w, h := byID(t, out, "g").Size()
	assert.InDelta(t, 315+2*Padding, w, 1e-9)
	assert.InDelta(t, 200+2*Padding+HeaderHeight, h, 1e-9)

	box, ok := Bounds(in, "g")
	require.True(t, ok)
	assert.Equal(t, canvas.Rect{X: -25, Y: -40, Width: 315, Height: 200}, box)
}

func TestFitIdempotent(t *testing.T) {
	first, ok := Fit(scenario(), "g")
	require.True(t, ok)

	second, ok := Fit(first, "g")
	require.True(t, ok)
	assert.Equal(t, first, second)

	box, _ := Bounds(first, "g")
	assert.Equal(t, Padding, box.X)
	assert.Equal(t, Padding+HeaderHeight, box.Y)
}

func TestFitPassThrough(t *testing.T) {
	in := append(scenario(),
		canvas.Node{ID: "free", Position: pos(7, 8), Data: map[string]any{"label": "x"}},
		canvas.Node{ID: "other", Position: pos(1, 1), ParentID: "h"},
	)

	out, ok := Fit(in, "g")
	require.True(t, ok)
	assert.Equal(t, in[3], out[3])
	assert.Equal(t, in[4], out[4])
}

func TestFitDefaultSize(t *testing.T) {
	in := []canvas.Node{
		{ID: "g", Type: canvas.TypeGroup},
		{ID: "a", Position: pos(0, 0), ParentID: "g"},
	}

	box, ok := Bounds(in, "g")
	require.True(t, ok)
	assert.Equal(t, canvas.Rect{Width: DefaultWidth, Height: DefaultHeight}, box)

	out, _ := Fit(in, "g")
	w, h := byID(t, out, "g").Size()
	assert.Equal(t, 160+2*Padding, w)
	assert.Equal(t, 100+2*Padding+HeaderHeight, h)
}

func TestFitDoesNotMutateInput(t *testing.T) {
	in := scenario()
	style := in[0].Style

	_, ok := Fit(in, "g")
	require.True(t, ok)

	assert.Equal(t, scenario(), in)
	assert.NotContains(t, style, canvas.StyleWidth)
}

func TestFitMissingGroupNode(t *testing.T) {
	in := []canvas.Node{{ID: "a", Position: pos(100, 100), ParentID: "ghost"}}

	out, ok := Fit(in, "ghost")
	require.True(t, ok)
	assert.Equal(t, pos(Padding, Padding+HeaderHeight), out[0].Position)
}

func TestFitAll(t *testing.T) {
	in := []canvas.Node{
		{ID: "a1", Position: pos(10, 10), Width: canvas.Float(20), Height: canvas.Float(20), ParentID: "G1"},
		{ID: "free", Position: pos(500, 500)},
		{ID: "G2", Type: canvas.TypeGroup, Position: pos(400, 0)},
		{ID: "G1", Type: canvas.TypeGroup},
		{ID: "b1", Position: pos(0, 0), Width: canvas.Float(30), Height: canvas.Float(40), ParentID: "G2"},
	}

	out := FitAll(in)
	require.Len(t, out, len(in))

	w, h := byID(t, out, "G1").Size()
	assert.Equal(t, 20+2*Padding, w)
	assert.Equal(t, 20+2*Padding+HeaderHeight, h)

	w, h = byID(t, out, "G2").Size()
	assert.Equal(t, 30+2*Padding, w)
	assert.Equal(t, 40+2*Padding+HeaderHeight, h)

	assert.Equal(t, in[1], byID(t, out, "free"))
	for _, id := range []string{"a1", "b1"} {
		assert.Equal(t, absolute(t, in, id), absolute(t, out, id))
	}
}

func TestFitAllNoGroups(t *testing.T) {
	in := []canvas.Node{{ID: "a", Position: pos(1, 2)}, {ID: "b", ParentID: "a"}}

	out := FitAll(in)
	assert.Equal(t, in, out)

	out[0].Position = pos(9, 9)
	assert.Equal(t, pos(1, 2), in[0].Position, "result must be a copy")

	assert.NotNil(t, FitAll(nil))
}

func TestFitAllMatchesSequentialFits(t *testing.T) {
	in := []canvas.Node{
		{ID: "outer", Type: canvas.TypeGroup},
		{ID: "inner", Type: canvas.TypeGroup, Position: pos(20, 20), ParentID: "outer"},
		{ID: "x", Position: pos(5, 5), ParentID: "inner"},
		{ID: "y", Position: pos(300, 10), ParentID: "outer"},
	}

	want := in
	for _, id := range []string{"outer", "inner"} {
		if out, ok := Fit(want, id); ok {
			want = out
		}
	}
	assert.Equal(t, want, FitAll(in))
}

func TestFitAllWithObserver(t *testing.T) {
	in := append(scenario(), canvas.Node{ID: "empty", Type: canvas.TypeGroup})

	var steps []Step
	FitAllWith(in, func(s Step) { steps = append(steps, s) })

	require.Len(t, steps, 2)
	assert.Equal(t, "g", steps[0].GroupID)
	assert.True(t, steps[0].Changed)
	assert.Equal(t, 190.0, steps[0].Width)
	assert.Equal(t, 175.0, steps[0].Height)
	assert.Equal(t, canvas.Rect{X: 10, Y: 5, Width: 110, Height: 45}, steps[0].Bounds)

	assert.Equal(t, Step{GroupID: "empty"}, steps[1])
}
