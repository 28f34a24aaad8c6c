package cli

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"slices"
	"strings"

	"github.com/spf13/cobra"

	gfio "github.com/matzehuels/groupfit/pkg/io"
	"github.com/matzehuels/groupfit/pkg/pipeline"
	"github.com/matzehuels/groupfit/pkg/render"
)

// renderCommand creates the render command: fit, then write each format.
func (c *CLI) renderCommand() *cobra.Command {
	var (
		formatsStr string
		output     string
		noCache    bool
		scale      float64
	)
	opts := pipeline.Options{}

	cmd := &cobra.Command{
		Use:   "render [diagram]",
		Short: "Fit groups and render a diagram",
		Long: `Fit groups and render a diagram.

Groups are fitted first (disable with --no-fit), then every requested format
is written next to the input, or to the base path given with --output.
Supported formats: ` + strings.Join(render.Formats, ", ") + `.

png and pdf are converted from svg with rsvg-convert, which must be on PATH.
Results are cached locally for faster subsequent runs.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := c.loadConfig()
			if err != nil {
				return err
			}
			if opts.Formats, err = parseFormats(formatsStr, cfg.Render.Formats); err != nil {
				return err
			}
			opts.Scale = scale
			if !cmd.Flags().Changed("scale") {
				opts.Scale = cfg.Render.Scale
			}
			if !cmd.Flags().Changed("edges") {
				opts.Edges = cfg.Render.Edges
			}
			return c.runRender(cmd.Context(), args[0], opts, output, noCache)
		},
	}

	cmd.Flags().StringVarP(&output, "output", "o", "", "output file (single format) or base path (multiple)")
	cmd.Flags().BoolVar(&noCache, "no-cache", false, "disable caching")
	cmd.Flags().StringVarP(&formatsStr, "format", "f", "", "output format(s), comma-separated (default from config, else svg)")
	cmd.Flags().StringVar(&opts.Group, "group", "", "fit only this group")
	cmd.Flags().BoolVar(&opts.Strict, "strict", false, "reject malformed geometry")
	cmd.Flags().BoolVar(&opts.SkipFit, "no-fit", false, "render the diagram as given")
	cmd.Flags().BoolVar(&opts.Edges, "edges", false, "draw edges (svg, png, pdf)")
	cmd.Flags().StringVar(&opts.Layout, "layout", pipeline.LayoutCanvas, "svg layout: canvas (node positions) or graphviz")
	cmd.Flags().Float64Var(&scale, "scale", pipeline.DefaultScale, "png scale factor")

	return cmd
}

// runRender loads the diagram and runs the full pipeline.
func (c *CLI) runRender(ctx context.Context, input string, opts pipeline.Options, output string, noCache bool) error {
	ctx = withLogger(ctx, c.Logger)

	d, err := gfio.Import(input)
	if err != nil {
		return err
	}

	runner, err := c.newRunner(ctx, noCache)
	if err != nil {
		return fmt.Errorf("initialize runner: %w", err)
	}
	defer runner.Close()

	opts.Logger = c.Logger
	prog := newProgress(c.Logger)

	var spinner *Spinner
	if slices.ContainsFunc(opts.Formats, render.NeedsConverter) {
		spinner = newSpinnerWithContext(ctx, "Rendering...")
		spinner.Start()
	}

	result, err := runner.Execute(ctx, d, opts)
	if spinner != nil {
		if err != nil {
			spinner.StopWithError("Render failed")
		} else {
			spinner.Stop()
		}
	}
	if err != nil {
		return err
	}
	prog.done(fmt.Sprintf("Rendered %d output(s)", len(result.Artifacts)))

	if err := writeArtifacts(ctx, artifactWriteParams{
		artifacts: result.Artifacts,
		formats:   opts.Formats,
		input:     input,
		output:    output,
	}); err != nil {
		return err
	}
	printStats(result.Stats.NodeCount, result.Stats.GroupCount, result.Stats.FittedGroups,
		result.CacheInfo.FitHit && result.CacheInfo.RenderHit)
	return nil
}

// artifactWriteParams describes where rendered outputs go.
type artifactWriteParams struct {
	artifacts map[string][]byte
	formats   []string
	input     string
	output    string
}

// writeArtifacts writes each artifact in format order. A single format goes
// to output verbatim ("-" is stdout); several formats share output as base
// path with per-format extensions.
func writeArtifacts(ctx context.Context, p artifactWriteParams) error {
	logger := loggerFromContext(ctx)

	if len(p.formats) == 1 && p.output != "" {
		format := p.formats[0]
		if err := writeOutput(p.output, p.artifacts[format]); err != nil {
			return err
		}
		logger.Debugf("Wrote %s: %d bytes", format, len(p.artifacts[format]))
		if p.output != "-" {
			printSuccess("Rendered %s", format)
			printFile(p.output)
		}
		return nil
	}

	base := basePath(p.output, p.input)
	printSuccess("Rendered %s", strings.Join(p.formats, ", "))
	for _, format := range p.formats {
		data, ok := p.artifacts[format]
		if !ok {
			return fmt.Errorf("missing %s output", format)
		}
		path := base + render.Extension(format)
		if path == p.input {
			return fmt.Errorf("refusing to overwrite input %s; pass --output", p.input)
		}
		if err := writeOutput(path, data); err != nil {
			return err
		}
		logger.Debugf("Wrote %s: %d bytes", format, len(data))
		printFile(path)
	}
	return nil
}

// basePath derives the base output path. An empty output strips the
// extension from input; an output with a known format extension loses it.
func basePath(output, input string) string {
	if output == "" {
		return strings.TrimSuffix(input, filepath.Ext(input))
	}
	ext := filepath.Ext(output)
	for _, f := range render.Formats {
		if strings.EqualFold(ext, render.Extension(f)) {
			return strings.TrimSuffix(output, ext)
		}
	}
	return output
}

// writeOutput writes data to path, or to stdout when path is "-".
func writeOutput(path string, data []byte) error {
	out, err := openOutput(path)
	if err != nil {
		return err
	}
	if _, err := out.Write(data); err != nil {
		out.Close()
		return fmt.Errorf("write %s: %w", path, err)
	}
	return out.Close()
}

type nopCloser struct{ io.Writer }

func (nopCloser) Close() error { return nil }

func openOutput(path string) (io.WriteCloser, error) {
	if path == "" || path == "-" {
		return nopCloser{os.Stdout}, nil
	}
	return os.Create(path)
}
