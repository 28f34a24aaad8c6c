package pipeline

import (
	"github.com/matzehuels/groupfit/pkg/canvas"
	"github.com/matzehuels/groupfit/pkg/canvas/group"
)

// FitDiagram applies the fit stage to d without caching and returns the
// fitted diagram and the number of groups that were resized.
//
// With opts.Group set, only that group is fitted; a group without children
// leaves d unchanged and counts zero. Otherwise every group is fitted in
// collection order.
func FitDiagram(d canvas.Diagram, opts Options) (canvas.Diagram, int, error) {
	if err := opts.ValidateAndSetDefaults(); err != nil {
		return canvas.Diagram{}, 0, err
	}
	if opts.Strict {
		if err := canvas.Validate(d.Nodes); err != nil {
			return canvas.Diagram{}, 0, err
		}
	}

	if opts.Group != "" {
		nodes, ok := group.Fit(d.Nodes, opts.Group)
		if !ok {
			return d, 0, nil
		}
		return d.WithNodes(nodes), 1, nil
	}

	fitted := 0
	nodes := group.FitAllWith(d.Nodes, func(s group.Step) {
		if s.Changed {
			fitted++
			opts.Logger.Debug("fitted group", "group", s.GroupID,
				"width", s.Width, "height", s.Height)
		} else {
			opts.Logger.Debug("skipped empty group", "group", s.GroupID)
		}
	})
	return d.WithNodes(nodes), fitted, nil
}
