// Package io reads and writes diagrams as JSON or YAML.
//
// # Formats
//
// Both codecs use the editor's field names (see package canvas). A document
// is either a bare diagram:
//
//	{
//	  "title": "checkout",
//	  "nodes": [
//	    {"id": "tier", "type": "groupNode", "position": {"x": 0, "y": 0}},
//	    {"id": "web", "position": {"x": 40, "y": 90}, "parentNode": "tier"}
//	  ],
//	  "edges": [{"id": "e1", "source": "web", "target": "db"}]
//	}
//
// or the editor's share payload, which wraps the diagram in a "flow" object:
//
//	{"title": "checkout", "flow": {"nodes": [...], "edges": [...], "viewport": {...}}}
//
// Readers accept both shapes; writers always produce the bare diagram. Keys
// the model does not know, such as the viewport, are dropped.
//
// # Files
//
// [Import] and [Export] pick the codec from the file extension: ".json",
// ".yaml" or ".yml". Any other extension is rejected with
// errors.ErrCodeInvalidFormat.
//
// # Round Trips
//
// Writing a diagram and reading it back yields an equal diagram, with one
// exception: YAML has no float/int distinction for whole numbers, so a style
// value written as 190.0 reads back as the int 190. [canvas.Style.Number]
// treats both the same.
package io
