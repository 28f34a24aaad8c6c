// Package pkg provides the libraries behind groupfit, a tool that keeps the
// group nodes of a node-based diagram sized to their children.
//
// # Overview
//
// A diagram is a flat list of positioned nodes. A group node contains every
// node whose parent reference names it, and child positions are relative to
// the group. Fitting a group recomputes its size from the bounding box of its
// direct children and shifts the group and its children together so nothing
// moves on the canvas.
//
// # Architecture
//
//	diagram file (JSON / YAML)      HTTP request body
//	         ↓                              ↓
//	    [io] package                  [server] package
//	         ↓                              ↓
//	    [pipeline] package: validate → fit ([canvas/group]) → render
//	         ↓                              ↓
//	    [render] outputs              [snapshot] stores
//	    (svg, png, pdf, dot,          (file, sqlite, redis,
//	     drawio, json, yaml)           mongo, memory)
//
// # Quick Start
//
// Fit every group of a diagram:
//
//	d, err := io.Import("board.json")
//	if err != nil {
//	    return err
//	}
//	d.Nodes = group.FitAll(d.Nodes)
//	return io.Export(d, "board.json")
//
// Fit a single group, checking for the empty-group case:
//
//	if nodes, ok := group.Fit(d.Nodes, "lane-1"); ok {
//	    d.Nodes = nodes
//	}
//
// # Main Packages
//
// [canvas] - Nodes, positions, sizes and the diagram container, plus an
// opt-in geometry validator.
//
// [canvas/group] - The group fitter and the batch fitter.
//
// [io] - JSON and YAML diagram codecs, including the share payload format.
//
// [render] - Output formats. [render/svg] draws nodes where the diagram puts
// them, [render/nodelink] goes through Graphviz, [render/drawio] writes
// draw.io files. PNG and PDF are converted from SVG.
//
// [pipeline] - The validate → fit → render sequence with content-addressed
// caching, shared by the CLI and the HTTP server.
//
// [cache] - File, Redis and null caches with retry on transient failures.
//
// [snapshot] - Versioned diagram snapshots and their stores, with fallback
// from remote stores to the file store.
//
// [server] - The HTTP API.
//
// [config], [errors], [observability], [buildinfo] - Configuration, coded
// errors, hooks and version information.
//
// # Testing
//
//	go test ./pkg/...          # All tests
//	go test -short ./pkg/...   # Skip tests needing graphviz or network
//	go test -run Example       # Examples only
//
// [canvas]: https://pkg.go.dev/github.com/matzehuels/groupfit/pkg/canvas
// [canvas/group]: https://pkg.go.dev/github.com/matzehuels/groupfit/pkg/canvas/group
// [io]: https://pkg.go.dev/github.com/matzehuels/groupfit/pkg/io
// [render]: https://pkg.go.dev/github.com/matzehuels/groupfit/pkg/render
// [render/svg]: https://pkg.go.dev/github.com/matzehuels/groupfit/pkg/render/svg
// [render/nodelink]: https://pkg.go.dev/github.com/matzehuels/groupfit/pkg/render/nodelink
// [render/drawio]: https://pkg.go.dev/github.com/matzehuels/groupfit/pkg/render/drawio
// [pipeline]: https://pkg.go.dev/github.com/matzehuels/groupfit/pkg/pipeline
// [cache]: https://pkg.go.dev/github.com/matzehuels/groupfit/pkg/cache
// [snapshot]: https://pkg.go.dev/github.com/matzehuels/groupfit/pkg/snapshot
// [server]: https://pkg.go.dev/github.com/matzehuels/groupfit/pkg/server
// [config]: https://pkg.go.dev/github.com/matzehuels/groupfit/pkg/config
// [errors]: https://pkg.go.dev/github.com/matzehuels/groupfit/pkg/errors
// [observability]: https://pkg.go.dev/github.com/matzehuels/groupfit/pkg/observability
// [buildinfo]: https://pkg.go.dev/github.com/matzehuels/groupfit/pkg/buildinfo
package pkg
