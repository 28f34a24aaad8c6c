package pipeline

import (
	"context"
	"fmt"

	"github.com/matzehuels/groupfit/pkg/canvas"
	"github.com/matzehuels/groupfit/pkg/errors"
	gfio "github.com/matzehuels/groupfit/pkg/io"
	"github.com/matzehuels/groupfit/pkg/render"
	"github.com/matzehuels/groupfit/pkg/render/drawio"
	"github.com/matzehuels/groupfit/pkg/render/nodelink"
	"github.com/matzehuels/groupfit/pkg/render/svg"
)

// RenderDiagram generates the requested formats from d without caching.
func RenderDiagram(ctx context.Context, d canvas.Diagram, opts Options) (map[string][]byte, error) {
	if err := opts.ValidateAndSetDefaults(); err != nil {
		return nil, err
	}
	artifacts := make(map[string][]byte, len(opts.Formats))
	for _, format := range opts.Formats {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		data, err := RenderFormat(ctx, d, format, opts)
		if err != nil {
			return nil, fmt.Errorf("render %s: %w", format, err)
		}
		artifacts[format] = data
	}
	return artifacts, nil
}

// RenderFormat renders d in a single format.
func RenderFormat(ctx context.Context, d canvas.Diagram, format string, opts Options) ([]byte, error) {
	switch format {
	case render.FormatJSON, render.FormatYAML:
		return gfio.Marshal(d, format)
	case render.FormatDOT:
		return []byte(nodelink.ToDOT(d, nodelink.Options{Detailed: true})), nil
	case render.FormatDrawIO:
		return drawio.Export(d)
	case render.FormatSVG:
		return renderSVG(ctx, d, opts)
	case render.FormatPNG:
		out, err := renderSVG(ctx, d, opts)
		if err != nil {
			return nil, err
		}
		return render.ToPNG(ctx, out, opts.Scale)
	case render.FormatPDF:
		out, err := renderSVG(ctx, d, opts)
		if err != nil {
			return nil, err
		}
		return render.ToPDF(ctx, out)
	default:
		return nil, errors.New(errors.ErrCodeInvalidFormat, "unsupported format %q", format)
	}
}

func renderSVG(ctx context.Context, d canvas.Diagram, opts Options) ([]byte, error) {
	if opts.Layout == LayoutGraphviz {
		return nodelink.RenderSVG(ctx, nodelink.ToDOT(d, nodelink.Options{}))
	}
	var svgOpts []svg.Option
	if opts.Edges {
		svgOpts = append(svgOpts, svg.WithEdges())
	}
	if d.Title != "" {
		svgOpts = append(svgOpts, svg.WithTitle())
	}
	return svg.Render(d, svgOpts...), nil
}
