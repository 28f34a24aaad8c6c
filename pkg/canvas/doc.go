// Package canvas defines the node model shared by the diagram editor, the
// group fitter, the renderers and the snapshot stores.
//
// # Model
//
// A diagram is an ordered collection of [Node] values plus [Edge] values
// connecting them. Positions are parent-relative: a node whose ParentID names
// a group is positioned in that group's local coordinate space, and a node
// with no parent is positioned on the canvas.
//
// Group membership is a flat back-reference. There is no child list on the
// group; the relation "N belongs to G" holds exactly when N.ParentID == G.ID.
// [Index] derives the children-by-group lookup from a collection when a
// caller needs it repeatedly.
//
// # Sizes
//
// Ordinary nodes carry their measured size in Width/Height, which the editor
// fills in after it has rendered the node. Group nodes carry their size in
// Style["width"] and Style["height"]. [Node.Size] resolves the effective size
// in that order and falls back to [DefaultWidth] x [DefaultHeight] for nodes
// that have not been measured yet.
//
// # Wire Format
//
// Field names follow the editor's JSON format:
//
//	{
//	  "id": "web",
//	  "type": "groupNode",
//	  "position": {"x": 10, "y": 20},
//	  "parentNode": "tier",
//	  "style": {"width": 190, "height": 175},
//	  "data": {"label": "Web tier"}
//	}
//
// # Concurrency
//
// Values in this package are plain data. Functions never mutate their
// arguments, so collections may be shared between readers.
package canvas
