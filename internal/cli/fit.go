package cli

import (
	"context"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	gfio "github.com/matzehuels/groupfit/pkg/io"
	"github.com/matzehuels/groupfit/pkg/pipeline"
)

// fitCommand creates the fit command, which rewrites group sizes in a
// diagram file.
func (c *CLI) fitCommand() *cobra.Command {
	var (
		output  string
		format  string
		noCache bool
		inPlace bool
	)
	opts := pipeline.Options{}

	cmd := &cobra.Command{
		Use:   "fit [diagram]",
		Short: "Resize groups to fit their children",
		Long: `Resize groups to fit their children.

Each group node is resized to the bounding box of its direct children plus a
40px margin and a 50px header. Children are shifted so their positions on the
canvas stay the same. Without --group every group is fitted, in document
order.

The fitted diagram is written to --output, back to the input with --in-place,
or to stdout.`,
		Example: `  groupfit fit board.json -o board.fitted.json
  groupfit fit board.yaml --group lane-1 --in-place
  groupfit fit board.json --format yaml > board.yaml`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if inPlace {
				if output != "" {
					return fmt.Errorf("--in-place and --output are mutually exclusive")
				}
				output = args[0]
			}
			return c.runFit(cmd.Context(), args[0], opts, output, format, noCache)
		},
	}

	cmd.Flags().StringVarP(&output, "output", "o", "", "output file (default stdout)")
	cmd.Flags().StringVar(&format, "format", "", "stdout format: json (default) or yaml")
	cmd.Flags().BoolVarP(&inPlace, "in-place", "i", false, "overwrite the input file")
	cmd.Flags().BoolVar(&noCache, "no-cache", false, "disable caching")
	cmd.Flags().StringVar(&opts.Group, "group", "", "fit only this group")
	cmd.Flags().BoolVar(&opts.Strict, "strict", false, "reject malformed geometry")

	return cmd
}

// runFit loads, fits and writes a diagram.
func (c *CLI) runFit(ctx context.Context, input string, opts pipeline.Options, output, format string, noCache bool) error {
	d, err := gfio.Import(input)
	if err != nil {
		return err
	}
	c.Logger.Debugf("Loaded %s: %d nodes, %d groups", input, len(d.Nodes), d.GroupCount())

	runner, err := c.newRunner(ctx, noCache)
	if err != nil {
		return fmt.Errorf("initialize runner: %w", err)
	}
	defer runner.Close()

	opts.Logger = c.Logger
	fitted, n, hit, err := runner.FitWithCacheInfo(ctx, d, opts)
	if err != nil {
		return err
	}
	if opts.Group != "" && n == 0 {
		printWarning("Group %q has no children; diagram unchanged", opts.Group)
	}

	if output == "" {
		if format == "" {
			format = gfio.FormatJSON
		}
		return gfio.Write(fitted, os.Stdout, format)
	}
	if format != "" {
		return fmt.Errorf("--format applies to stdout only; the output extension selects the codec")
	}
	if err := gfio.Export(fitted, output); err != nil {
		return err
	}

	printSuccess("Fitted %d group(s)", n)
	printFile(output)
	printStats(len(fitted.Nodes), fitted.GroupCount(), n, hit)
	printNewline()
	printNextStep("Render", appName+" render "+output)
	return nil
}
