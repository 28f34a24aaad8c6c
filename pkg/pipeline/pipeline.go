// Package pipeline runs the fit → render sequence shared by the CLI and the
// HTTP server.
//
// # Stages
//
//  1. Validate: with Options.Strict, reject malformed geometry up front
//  2. Fit: resize one group (Options.Group) or every group in the diagram
//  3. Render: produce each requested output format
//
// Both the fit result and every artifact are cached by content hash, so
// re-running the pipeline on an unchanged diagram is a cache lookup.
//
// # Usage
//
//	runner := pipeline.NewRunner(c, nil, logger)
//	result, err := runner.Execute(ctx, diagram, pipeline.Options{
//	    Formats: []string{"svg", "drawio"},
//	})
//	if err != nil {
//	    return err
//	}
//	svg := result.Artifacts["svg"]
//
// Stages can also be run on their own:
//
//	fitted, err := runner.Fit(ctx, diagram, opts)
//	artifacts, err := runner.Render(ctx, fitted, opts)
package pipeline

import (
	"io"
	"time"

	"github.com/charmbracelet/log"

	"github.com/matzehuels/groupfit/pkg/cache"
	"github.com/matzehuels/groupfit/pkg/canvas"
	"github.com/matzehuels/groupfit/pkg/errors"
	"github.com/matzehuels/groupfit/pkg/render"
)

const (
	// DefaultScale is the PNG scale factor.
	DefaultScale = 2.0

	// DefaultTTL bounds how long fit results and artifacts stay cached.
	DefaultTTL = 7 * 24 * time.Hour
)

// Layout engines for svg, png and pdf output.
const (
	// LayoutCanvas draws nodes where the diagram puts them.
	LayoutCanvas = "canvas"

	// LayoutGraphviz lets Graphviz place nodes, keeping groups as clusters.
	LayoutGraphviz = "graphviz"
)

// Options configures a pipeline run. The JSON form is accepted by the HTTP
// API.
type Options struct {
	// Fit options
	Group   string `json:"group,omitempty"`    // fit only this group; empty fits all
	Strict  bool   `json:"strict,omitempty"`   // validate geometry before fitting
	SkipFit bool   `json:"skip_fit,omitempty"` // render the diagram as given

	// Render options. No formats means no render stage.
	Formats []string `json:"formats,omitempty"`
	Edges   bool     `json:"edges,omitempty"`
	Scale   float64  `json:"scale,omitempty"`
	Layout  string   `json:"layout,omitempty"`

	// Refresh bypasses cache reads; results are still written.
	Refresh bool `json:"refresh,omitempty"`

	// Runtime options (not serialized)
	Logger *log.Logger `json:"-"`

	validated bool
}

// Result contains the outputs of a pipeline run.
type Result struct {
	// Diagram is the fitted diagram.
	Diagram canvas.Diagram

	// DiagramHash is the content hash of the input diagram.
	DiagramHash string

	// Artifacts contains rendered outputs keyed by format.
	Artifacts map[string][]byte

	Stats     Stats
	CacheInfo CacheInfo
}

// Stats contains pipeline execution statistics.
type Stats struct {
	NodeCount    int
	GroupCount   int
	FittedGroups int // groups that had children and were resized
	FitTime      time.Duration
	RenderTime   time.Duration
}

// CacheInfo tracks cache hits for each pipeline stage.
type CacheInfo struct {
	FitHit    bool // Whether the fit result came from cache
	RenderHit bool // Whether all artifacts came from cache
}

// ValidateAndSetDefaults checks the options and fills in defaults.
// Calling it again is a no-op.
func (o *Options) ValidateAndSetDefaults() error {
	if o.validated {
		return nil
	}
	for _, f := range o.Formats {
		if err := render.ValidateFormat(f); err != nil {
			return err
		}
	}
	if o.Scale < 0 {
		return errors.New(errors.ErrCodeInvalidInput, "scale must not be negative")
	}
	if o.Scale == 0 {
		o.Scale = DefaultScale
	}
	switch o.Layout {
	case "":
		o.Layout = LayoutCanvas
	case LayoutCanvas, LayoutGraphviz:
	default:
		return errors.New(errors.ErrCodeInvalidInput, "unknown layout %q (want canvas or graphviz)", o.Layout)
	}
	if o.Logger == nil {
		o.Logger = log.NewWithOptions(io.Discard, log.Options{})
	}
	o.validated = true
	return nil
}

// FitKeyOpts returns cache key options for the fit stage.
func (o *Options) FitKeyOpts() cache.FitKeyOpts {
	return cache.FitKeyOpts{Group: o.Group, Strict: o.Strict}
}

// ArtifactKeyOpts returns cache key options for rendering format.
// Options that do not affect format are left out so that, for example,
// a JSON export is shared across edge and scale settings.
func (o *Options) ArtifactKeyOpts(format string) cache.ArtifactKeyOpts {
	k := cache.ArtifactKeyOpts{Format: format}
	switch format {
	case render.FormatSVG, render.FormatPDF:
		k.Edges = o.Edges
		k.Layout = o.Layout
	case render.FormatPNG:
		k.Edges = o.Edges
		k.Layout = o.Layout
		k.Scale = o.Scale
	}
	return k
}
