package render

import (
	"slices"
	"strings"

	"github.com/matzehuels/groupfit/pkg/errors"
)

// Output formats.
const (
	FormatJSON   = "json"
	FormatYAML   = "yaml"
	FormatSVG    = "svg"
	FormatDOT    = "dot"
	FormatDrawIO = "drawio"
	FormatPNG    = "png"
	FormatPDF    = "pdf"
)

// Formats lists every supported output format.
var Formats = []string{FormatJSON, FormatYAML, FormatSVG, FormatDOT, FormatDrawIO, FormatPNG, FormatPDF}

var contentTypes = map[string]string{
	FormatJSON:   "application/json",
	FormatYAML:   "application/yaml",
	FormatSVG:    "image/svg+xml",
	FormatDOT:    "text/vnd.graphviz",
	FormatDrawIO: "application/vnd.jgraph.mxfile",
	FormatPNG:    "image/png",
	FormatPDF:    "application/pdf",
}

var extensions = map[string]string{
	FormatDrawIO: ".drawio",
	FormatYAML:   ".yaml",
}

// ContentType returns the MIME type of format.
func ContentType(format string) string {
	if ct, ok := contentTypes[format]; ok {
		return ct
	}
	return "application/octet-stream"
}

// Extension returns the file extension, with leading dot, for format.
func Extension(format string) string {
	if ext, ok := extensions[format]; ok {
		return ext
	}
	return "." + format
}

// NeedsConverter reports whether format is produced through rsvg-convert.
func NeedsConverter(format string) bool {
	return format == FormatPNG || format == FormatPDF
}

// ParseFormats splits a comma-separated list, trims and lowercases entries,
// drops duplicates and checks each against [Formats].
func ParseFormats(s string) ([]string, error) {
	var out []string
	for _, f := range strings.Split(s, ",") {
		f = strings.ToLower(strings.TrimSpace(f))
		if f == "" || slices.Contains(out, f) {
			continue
		}
		if err := ValidateFormat(f); err != nil {
			return nil, err
		}
		out = append(out, f)
	}
	return out, nil
}

// ValidateFormat returns an INVALID_FORMAT error if f is not supported.
func ValidateFormat(f string) error {
	if !slices.Contains(Formats, f) {
		return errors.New(errors.ErrCodeInvalidFormat, "unknown output format %q (want one of %s)", f, strings.Join(Formats, ", "))
	}
	return nil
}
