package io

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/matzehuels/groupfit/pkg/canvas"
	"github.com/matzehuels/groupfit/pkg/errors"
)

// Supported document formats.
const (
	FormatJSON = "json"
	FormatYAML = "yaml"
)

// document is the union of the bare diagram and the share payload.
type document struct {
	Title string        `json:"title,omitempty" yaml:"title,omitempty"`
	Nodes []canvas.Node `json:"nodes" yaml:"nodes"`
	Edges []canvas.Edge `json:"edges,omitempty" yaml:"edges,omitempty"`
	Flow  *flowPayload  `json:"flow,omitempty" yaml:"flow,omitempty"`
}

type flowPayload struct {
	Title string        `json:"title,omitempty" yaml:"title,omitempty"`
	Nodes []canvas.Node `json:"nodes" yaml:"nodes"`
	Edges []canvas.Edge `json:"edges,omitempty" yaml:"edges,omitempty"`
}

func (d document) diagram() canvas.Diagram {
	if d.Flow == nil {
		return canvas.Diagram{Title: d.Title, Nodes: d.Nodes, Edges: d.Edges}
	}
	title := d.Title
	if title == "" {
		title = d.Flow.Title
	}
	return canvas.Diagram{Title: title, Nodes: d.Flow.Nodes, Edges: d.Flow.Edges}
}

// ReadJSON decodes a diagram from r. It accepts a bare diagram or a
// {"flow": ...} payload. Decoding failures carry errors.ErrCodeInvalidFormat.
// ReadJSON does not close r.
func ReadJSON(r io.Reader) (canvas.Diagram, error) {
	var doc document
	if err := json.NewDecoder(r).Decode(&doc); err != nil {
		return canvas.Diagram{}, errors.Wrap(errors.ErrCodeInvalidFormat, err, "decode json")
	}
	return doc.diagram(), nil
}

// ReadYAML is [ReadJSON] for YAML documents.
func ReadYAML(r io.Reader) (canvas.Diagram, error) {
	var doc document
	if err := yaml.NewDecoder(r).Decode(&doc); err != nil {
		if err == io.EOF {
			return canvas.Diagram{}, nil
		}
		return canvas.Diagram{}, errors.Wrap(errors.ErrCodeInvalidFormat, err, "decode yaml")
	}
	return doc.diagram(), nil
}

// Read decodes a diagram in the given format.
func Read(r io.Reader, format string) (canvas.Diagram, error) {
	switch format {
	case FormatJSON:
		return ReadJSON(r)
	case FormatYAML:
		return ReadYAML(r)
	default:
		return canvas.Diagram{}, errors.New(errors.ErrCodeInvalidFormat, "unsupported diagram format %q", format)
	}
}

// FormatFromPath returns the document format implied by the extension of path.
func FormatFromPath(path string) (string, error) {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".json":
		return FormatJSON, nil
	case ".yaml", ".yml":
		return FormatYAML, nil
	default:
		return "", errors.New(errors.ErrCodeInvalidFormat, "%s: unknown diagram extension (want .json, .yaml or .yml)", path)
	}
}

// Import reads the diagram file at path, choosing the codec from its extension.
// A missing file is reported with errors.ErrCodeFileNotFound.
func Import(path string) (canvas.Diagram, error) {
	format, err := FormatFromPath(path)
	if err != nil {
		return canvas.Diagram{}, err
	}
	f, err := os.Open(path)
	if err != nil {
		if os.IsNotExist(err) {
			return canvas.Diagram{}, errors.Wrap(errors.ErrCodeFileNotFound, err, "open %s", path)
		}
		return canvas.Diagram{}, fmt.Errorf("open %s: %w", path, err)
	}
	defer f.Close()

	d, err := Read(f, format)
	if err != nil {
		return canvas.Diagram{}, fmt.Errorf("%s: %w", path, err)
	}
	return d, nil
}
