package io

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/matzehuels/groupfit/pkg/canvas"
	"github.com/matzehuels/groupfit/pkg/errors"
)

func sampleDiagram() canvas.Diagram {
	return canvas.Diagram{
		Title: "checkout",
		Nodes: []canvas.Node{
			{
				ID: "tier", Type: canvas.TypeGroup,
				Position: canvas.Position{X: -30, Y: -85},
				Style:    canvas.Style{"width": 190.0, "height": 175.0},
				Data:     map[string]any{"label": "Web tier"},
			},
			{
				ID: "web", Position: canvas.Position{X: 40, Y: 105},
				Width: canvas.Float(50), Height: canvas.Float(30),
				ParentID: "tier",
			},
			{ID: "db", Position: canvas.Position{X: 400, Y: 0}},
		},
		Edges: []canvas.Edge{{ID: "e1", Source: "web", Target: "db", Label: "sql"}},
	}
}

func TestJSONRoundTrip(t *testing.T) {
	d := sampleDiagram()

	var buf bytes.Buffer
	require.NoError(t, WriteJSON(d, &buf))

	got, err := ReadJSON(&buf)
	require.NoError(t, err)
	assert.Equal(t, d, got)
}

func TestYAMLRoundTrip(t *testing.T) {
	d := sampleDiagram()

	var buf bytes.Buffer
	require.NoError(t, WriteYAML(d, &buf))
	assert.Contains(t, buf.String(), "parentNode: tier")

	got, err := ReadYAML(&buf)
	require.NoError(t, err)
	require.Len(t, got.Nodes, 3)

	assert.Equal(t, d.Title, got.Title)
	assert.Equal(t, d.Edges, got.Edges)
	for i := range d.Nodes {
		assert.Equal(t, d.Nodes[i].ID, got.Nodes[i].ID)
		assert.Equal(t, d.Nodes[i].Position, got.Nodes[i].Position)
		assert.Equal(t, d.Nodes[i].ParentID, got.Nodes[i].ParentID)
		wantW, wantH := d.Nodes[i].Size()
		gotW, gotH := got.Nodes[i].Size()
		assert.Equal(t, wantW, gotW, "width of %s", d.Nodes[i].ID)
		assert.Equal(t, wantH, gotH, "height of %s", d.Nodes[i].ID)
	}
	assert.Equal(t, "Web tier", got.Nodes[0].Label())
}

func TestReadFlowPayload(t *testing.T) {
	raw := `{
		"title": "shared",
		"flow": {
			"nodes": [{"id": "a", "position": {"x": 1, "y": 2}, "parentNode": "g"}],
			"edges": [{"id": "e", "source": "a", "target": "b"}],
			"viewport": {"x": 0, "y": 0, "zoom": 1}
		}
	}`

	d, err := ReadJSON(strings.NewReader(raw))
	require.NoError(t, err)
	assert.Equal(t, "shared", d.Title)
	require.Len(t, d.Nodes, 1)
	assert.Equal(t, "g", d.Nodes[0].ParentID)
	require.Len(t, d.Edges, 1)
}

func TestReadErrors(t *testing.T) {
	tests := []struct {
		name   string
		format string
		input  string
	}{
		{"bad json", FormatJSON, `{"nodes": [`},
		{"bad yaml", FormatYAML, "nodes: [\n  - id: a\n    position: {x: 1"},
		{"unknown format", "toml", ``},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Read(strings.NewReader(tt.input), tt.format)
			require.Error(t, err)
			assert.True(t, errors.Is(err, errors.ErrCodeInvalidFormat), "got %v", err)
		})
	}
}

func TestReadYAMLEmpty(t *testing.T) {
	d, err := ReadYAML(strings.NewReader(""))
	require.NoError(t, err)
	assert.Empty(t, d.Nodes)
}

func TestFormatFromPath(t *testing.T) {
	tests := []struct {
		path    string
		want    string
		wantErr bool
	}{
		{"a.json", FormatJSON, false},
		{"dir/a.YAML", FormatYAML, false},
		{"a.yml", FormatYAML, false},
		{"a.txt", "", true},
		{"noext", "", true},
	}

	for _, tt := range tests {
		t.Run(tt.path, func(t *testing.T) {
			got, err := FormatFromPath(tt.path)
			if (err != nil) != tt.wantErr {
				t.Fatalf("FormatFromPath() error = %v, wantErr %v", err, tt.wantErr)
			}
			if got != tt.want {
				t.Errorf("FormatFromPath() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestImportExport(t *testing.T) {
	dir := t.TempDir()
	d := sampleDiagram()

	for _, name := range []string{"diagram.json", "diagram.yaml"} {
		t.Run(name, func(t *testing.T) {
			path := filepath.Join(dir, name)
			require.NoError(t, Export(d, path))

			info, err := os.Stat(path)
			require.NoError(t, err)
			assert.Equal(t, os.FileMode(0o644), info.Mode().Perm())

			got, err := Import(path)
			require.NoError(t, err)
			assert.Equal(t, d.Title, got.Title)
			assert.Len(t, got.Nodes, len(d.Nodes))
		})
	}

	entries, err := os.ReadDir(dir)
	require.NoError(t, err)
	assert.Len(t, entries, 2, "no temp files left behind")
}

func TestImportMissingFile(t *testing.T) {
	_, err := Import(filepath.Join(t.TempDir(), "missing.json"))
	require.Error(t, err)
	assert.True(t, errors.Is(err, errors.ErrCodeFileNotFound))
	assert.True(t, errors.IsNotFound(err))
}

func TestWriteJSONEmptyNodes(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, WriteJSON(canvas.Diagram{}, &buf))
	assert.Contains(t, buf.String(), `"nodes": []`)
}
