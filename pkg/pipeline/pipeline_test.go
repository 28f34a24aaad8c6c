package pipeline

import (
	"bytes"
	"context"
	"math"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/matzehuels/groupfit/pkg/cache"
	"github.com/matzehuels/groupfit/pkg/canvas"
	"github.com/matzehuels/groupfit/pkg/errors"
	"github.com/matzehuels/groupfit/pkg/observability"
	"github.com/matzehuels/groupfit/pkg/render"
)

func testDiagram() canvas.Diagram {
	return canvas.Diagram{
		Title: "shop",
		Nodes: []canvas.Node{
			{ID: "g", Type: canvas.TypeGroup, Data: map[string]any{"label": "Backend"}},
			{ID: "A", ParentID: "g", Position: canvas.Position{X: 10, Y: 20},
				Width: canvas.Float(50), Height: canvas.Float(30)},
			{ID: "B", ParentID: "g", Position: canvas.Position{X: 100, Y: 5},
				Width: canvas.Float(20), Height: canvas.Float(20)},
			{ID: "empty", Type: canvas.TypeGroup, Position: canvas.Position{X: 400, Y: 0}},
			{ID: "C", Position: canvas.Position{X: 300, Y: 300}},
		},
		Edges: []canvas.Edge{{ID: "e1", Source: "A", Target: "C"}},
	}
}

func nodeByID(t *testing.T, d canvas.Diagram, id string) canvas.Node {
	t.Helper()
	for _, n := range d.Nodes {
		if n.ID == id {
			return n
		}
	}
	t.Fatalf("node %q not found", id)
	return canvas.Node{}
}

func newTestRunner(t *testing.T) *Runner {
	t.Helper()
	c, err := cache.NewFileCache(t.TempDir())
	require.NoError(t, err)
	r := NewRunner(c, nil, nil)
	t.Cleanup(func() { r.Close() })
	return r
}

func TestValidateAndSetDefaults(t *testing.T) {
	tests := []struct {
		name    string
		opts    Options
		wantErr errors.Code
	}{
		{"defaults", Options{}, ""},
		{"all formats", Options{Formats: render.Formats}, ""},
		{"unknown format", Options{Formats: []string{"gif"}}, errors.ErrCodeInvalidFormat},
		{"negative scale", Options{Scale: -1}, errors.ErrCodeInvalidInput},
		{"unknown layout", Options{Layout: "dagre"}, errors.ErrCodeInvalidInput},
		{"graphviz layout", Options{Layout: LayoutGraphviz}, ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.opts.ValidateAndSetDefaults()
			if tt.wantErr == "" {
				require.NoError(t, err)
				assert.NotNil(t, tt.opts.Logger)
				assert.Equal(t, DefaultScale, tt.opts.Scale)
				assert.NotEmpty(t, tt.opts.Layout)
				return
			}
			assert.True(t, errors.Is(err, tt.wantErr), "got %v", err)
		})
	}
}

func TestArtifactKeyOpts(t *testing.T) {
	opts := Options{Edges: true, Scale: 3, Layout: LayoutCanvas}

	assert.Equal(t, cache.ArtifactKeyOpts{Format: "json"}, opts.ArtifactKeyOpts("json"))
	assert.Equal(t, cache.ArtifactKeyOpts{Format: "svg", Edges: true, Layout: LayoutCanvas}, opts.ArtifactKeyOpts("svg"))
	assert.Equal(t, cache.ArtifactKeyOpts{Format: "png", Edges: true, Scale: 3, Layout: LayoutCanvas}, opts.ArtifactKeyOpts("png"))
}

func TestExecuteFitsAllGroups(t *testing.T) {
	r := newTestRunner(t)
	in := testDiagram()

	res, err := r.Execute(context.Background(), in, Options{})
	require.NoError(t, err)

	assert.Equal(t, 5, res.Stats.NodeCount)
	assert.Equal(t, 2, res.Stats.GroupCount)
	assert.Equal(t, 1, res.Stats.FittedGroups)
	assert.NotEmpty(t, res.DiagramHash)
	assert.Empty(t, res.Artifacts)

	assert.Equal(t, canvas.Position{X: 40, Y: 105}, nodeByID(t, res.Diagram, "A").Position)
	assert.Equal(t, canvas.Position{X: 130, Y: 90}, nodeByID(t, res.Diagram, "B").Position)
	g := nodeByID(t, res.Diagram, "g")
	w, h := g.Size()
	assert.Equal(t, 190.0, w)
	assert.Equal(t, 175.0, h)
	assert.Equal(t, canvas.Position{X: -30, Y: -85}, g.Position)

	assert.Equal(t, in.Nodes[4], nodeByID(t, res.Diagram, "C"))
	assert.Equal(t, in.Nodes[3], nodeByID(t, res.Diagram, "empty"))
	assert.Equal(t, canvas.Position{X: 10, Y: 20}, in.Nodes[1].Position, "input untouched")
}

func TestExecuteSingleGroup(t *testing.T) {
	r := newTestRunner(t)
	in := testDiagram()

	res, err := r.Execute(context.Background(), in, Options{Group: "g"})
	require.NoError(t, err)
	assert.Equal(t, 1, res.Stats.FittedGroups)
	assert.Equal(t, canvas.Position{X: 40, Y: 105}, nodeByID(t, res.Diagram, "A").Position)

	res, err = r.Execute(context.Background(), in, Options{Group: "empty"})
	require.NoError(t, err)
	assert.Equal(t, 0, res.Stats.FittedGroups)
	assert.Equal(t, in, res.Diagram)

	res, err = r.Execute(context.Background(), in, Options{Group: "missing"})
	require.NoError(t, err)
	assert.Equal(t, 0, res.Stats.FittedGroups)
}

func TestExecuteSkipFit(t *testing.T) {
	r := newTestRunner(t)
	in := testDiagram()

	res, err := r.Execute(context.Background(), in, Options{SkipFit: true, Formats: []string{"json"}})
	require.NoError(t, err)
	assert.Equal(t, in, res.Diagram)
	assert.Zero(t, res.Stats.FittedGroups)
	assert.Contains(t, string(res.Artifacts["json"]), `"x": 10`)
}

func TestExecuteStrict(t *testing.T) {
	r := newTestRunner(t)
	in := testDiagram()
	in.Nodes[1].Position.X = math.NaN()

	_, err := r.Execute(context.Background(), in, Options{Strict: true})
	require.Error(t, err)
	assert.True(t, errors.Is(err, errors.ErrCodeInvalidGeometry))

	// Permissive mode passes the NaN through.
	res, err := r.Execute(context.Background(), in, Options{})
	require.NoError(t, err)
	assert.True(t, math.IsNaN(nodeByID(t, res.Diagram, "A").Position.X))
}

func TestExecuteCaches(t *testing.T) {
	r := newTestRunner(t)
	ctx := context.Background()
	opts := Options{Formats: []string{"json", "yaml", "dot", "drawio", "svg"}, Edges: true}

	first, err := r.Execute(ctx, testDiagram(), opts)
	require.NoError(t, err)
	assert.False(t, first.CacheInfo.FitHit)
	assert.False(t, first.CacheInfo.RenderHit)
	require.Len(t, first.Artifacts, 5)

	second, err := r.Execute(ctx, testDiagram(), opts)
	require.NoError(t, err)
	assert.True(t, second.CacheInfo.FitHit)
	assert.True(t, second.CacheInfo.RenderHit)
	assert.Equal(t, first.Stats.FittedGroups, second.Stats.FittedGroups)
	assert.Equal(t, first.Diagram, second.Diagram)
	for f, data := range first.Artifacts {
		assert.True(t, bytes.Equal(data, second.Artifacts[f]), "format %s", f)
	}

	opts.Refresh = true
	third, err := r.Execute(ctx, testDiagram(), opts)
	require.NoError(t, err)
	assert.False(t, third.CacheInfo.FitHit)
	assert.False(t, third.CacheInfo.RenderHit)
}

func TestRenderPartialCacheHit(t *testing.T) {
	r := newTestRunner(t)
	ctx := context.Background()
	d := testDiagram()

	_, err := r.Render(ctx, d, Options{Formats: []string{"json"}})
	require.NoError(t, err)

	out, hit, err := r.RenderWithCacheInfo(ctx, d, Options{Formats: []string{"json", "dot"}})
	require.NoError(t, err)
	assert.False(t, hit)
	assert.Len(t, out, 2)
}

func TestRenderFormat(t *testing.T) {
	ctx := context.Background()
	d, _, err := FitDiagram(testDiagram(), Options{})
	require.NoError(t, err)

	tests := []struct {
		format string
		prefix string
		want   string
	}{
		{render.FormatJSON, "{", `"parentNode": "g"`},
		{render.FormatYAML, "title: shop", "parentNode: g"},
		{render.FormatDOT, "digraph G {", "subgraph cluster_"},
		{render.FormatDrawIO, "<?xml", "<mxfile"},
		{render.FormatSVG, "<svg", "<title>shop</title>"},
	}
	for _, tt := range tests {
		t.Run(tt.format, func(t *testing.T) {
			opts := Options{}
			require.NoError(t, opts.ValidateAndSetDefaults())
			data, err := RenderFormat(ctx, d, tt.format, opts)
			require.NoError(t, err)
			s := strings.TrimSpace(string(data))
			assert.True(t, strings.HasPrefix(s, tt.prefix), "got %.40q", s)
			assert.Contains(t, s, tt.want)
		})
	}

	_, err = RenderFormat(ctx, d, "gif", Options{})
	assert.True(t, errors.Is(err, errors.ErrCodeInvalidFormat))
}

func TestRenderGraphvizLayout(t *testing.T) {
	if testing.Short() {
		t.Skip("runs graphviz")
	}
	opts := Options{Layout: LayoutGraphviz}
	require.NoError(t, opts.ValidateAndSetDefaults())

	data, err := RenderFormat(context.Background(), testDiagram(), render.FormatSVG, opts)
	require.NoError(t, err)
	assert.Contains(t, string(data), "<svg")
}

type recordingPipelineHooks struct {
	observability.NoopPipelineHooks
	mu     sync.Mutex
	events []string
}

func (h *recordingPipelineHooks) add(e string) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.events = append(h.events, e)
}

func (h *recordingPipelineHooks) OnFitStart(context.Context, int, int) { h.add("fit-start") }
func (h *recordingPipelineHooks) OnFitComplete(context.Context, int, time.Duration, error) {
	h.add("fit-complete")
}
func (h *recordingPipelineHooks) OnRenderStart(context.Context, []string) { h.add("render-start") }
func (h *recordingPipelineHooks) OnRenderComplete(context.Context, []string, time.Duration, error) {
	h.add("render-complete")
}

func TestExecuteReportsHooks(t *testing.T) {
	hooks := &recordingPipelineHooks{}
	observability.SetPipelineHooks(hooks)
	t.Cleanup(observability.Reset)

	r := NewRunner(nil, nil, nil)
	_, err := r.Execute(context.Background(), testDiagram(), Options{Formats: []string{"json"}})
	require.NoError(t, err)

	assert.Equal(t, []string{"fit-start", "fit-complete", "render-start", "render-complete"}, hooks.events)
}
