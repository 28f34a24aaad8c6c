// Package group resizes group nodes to fit their children.
//
// A group node is a container whose direct children are positioned in the
// group's local coordinate space. When children move or change size the
// group's box goes stale. [Fit] recomputes it: the group becomes the
// children's bounding box plus [Padding] on every side and an extra
// [HeaderHeight] band on top for the group's title.
//
// # Coordinates
//
// Fitting changes the group's origin. Children are translated by the inverse
// of that shift, so their canvas-space positions (group origin plus local
// position) are the same before and after. After a fit the top-left-most
// child sits exactly at (Padding, Padding+HeaderHeight), which makes fitting
// idempotent: a second fit with unchanged children moves nothing.
//
// # Batches
//
// [FitAll] fits every group of a collection in collection order, feeding the
// output of one fit into the next. A group nested inside another group is a
// child like any other; its size is read from its style, so an inner group
// listed before its outer group is fitted first and the outer group sees the
// new size. The reverse order needs a second pass, which FitAll does not do.
//
// # Purity
//
// Nothing in this package mutates its input. Results are fresh slices; style
// maps of changed groups are copied before they are written. Maps of
// unchanged nodes are shared with the input.
package group
