package io

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"

	"github.com/matzehuels/groupfit/pkg/canvas"
	"github.com/matzehuels/groupfit/pkg/errors"
)

// WriteJSON encodes d as indented JSON and writes it to w.
// The output can be re-imported with [ReadJSON].
func WriteJSON(d canvas.Diagram, w io.Writer) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	if err := enc.Encode(normalize(d)); err != nil {
		return fmt.Errorf("encode: %w", err)
	}
	return nil
}

// WriteYAML encodes d as YAML and writes it to w.
func WriteYAML(d canvas.Diagram, w io.Writer) error {
	enc := yaml.NewEncoder(w)
	enc.SetIndent(2)
	if err := enc.Encode(normalize(d)); err != nil {
		return fmt.Errorf("encode: %w", err)
	}
	return enc.Close()
}

// Write encodes d in the given format.
func Write(d canvas.Diagram, w io.Writer, format string) error {
	switch format {
	case FormatJSON:
		return WriteJSON(d, w)
	case FormatYAML:
		return WriteYAML(d, w)
	default:
		return errors.New(errors.ErrCodeInvalidFormat, "unsupported diagram format %q", format)
	}
}

// Marshal returns d encoded in the given format.
func Marshal(d canvas.Diagram, format string) ([]byte, error) {
	var buf bytes.Buffer
	if err := Write(d, &buf, format); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// Export writes d to path, choosing the codec from the extension. The file
// is written to a temporary sibling first and renamed into place.
func Export(d canvas.Diagram, path string) error {
	format, err := FormatFromPath(path)
	if err != nil {
		return err
	}

	tmp, err := os.CreateTemp(filepath.Dir(path), ".groupfit-*")
	if err != nil {
		return fmt.Errorf("create %s: %w", path, err)
	}
	defer os.Remove(tmp.Name())

	if err := tmp.Chmod(0o644); err != nil {
		tmp.Close()
		return fmt.Errorf("chmod %s: %w", path, err)
	}

	if err := Write(d, tmp, format); err != nil {
		tmp.Close()
		return fmt.Errorf("%s: %w", path, err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("close %s: %w", path, err)
	}
	if err := os.Rename(tmp.Name(), path); err != nil {
		return fmt.Errorf("rename %s: %w", path, err)
	}
	return nil
}

// normalize makes nil node lists encode as empty arrays.
func normalize(d canvas.Diagram) canvas.Diagram {
	if d.Nodes == nil {
		d.Nodes = []canvas.Node{}
	}
	return d
}
