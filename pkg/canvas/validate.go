package canvas

import (
	"fmt"
	"math"
	"strings"

	"github.com/matzehuels/groupfit/pkg/errors"
)

// Validate checks nodes for problems that the layout functions tolerate but
// that usually indicate a corrupt document: empty or duplicate identifiers,
// non-finite positions, and non-finite or negative sizes.
//
// It returns nil when nodes are clean. Otherwise the returned error lists
// every problem found and carries [errors.ErrCodeInvalidInput] if any
// identifier is bad, else [errors.ErrCodeInvalidGeometry].
//
// Validate is opt-in. Fitting never calls it.
func Validate(nodes []Node) error {
	var (
		problems []string
		badIDs   bool
		seen     = make(map[string]int, len(nodes))
	)
	add := func(format string, args ...any) {
		problems = append(problems, fmt.Sprintf(format, args...))
	}

	for i := range nodes {
		n := &nodes[i]
		switch prev, dup := seen[n.ID]; {
		case n.ID == "":
			badIDs = true
			add("node #%d: empty id", i)
		case dup:
			badIDs = true
			add("node #%d: duplicate id %q (first at #%d)", i, n.ID, prev)
		default:
			seen[n.ID] = i
		}

		if !finite(n.Position.X) || !finite(n.Position.Y) {
			add("node %q: non-finite position (%g, %g)", n.ID, n.Position.X, n.Position.Y)
		}
		checkSize := func(name string, v float64, ok bool) {
			if !ok {
				return
			}
			if !finite(v) || v < 0 {
				add("node %q: invalid %s %g", n.ID, name, v)
			}
		}
		if n.Width != nil {
			checkSize("width", *n.Width, true)
		}
		if n.Height != nil {
			checkSize("height", *n.Height, true)
		}
		sw, ok := n.Style.Number(StyleWidth)
		checkSize("style width", sw, ok)
		sh, ok := n.Style.Number(StyleHeight)
		checkSize("style height", sh, ok)

		if n.ParentID != "" && n.ParentID == n.ID {
			add("node %q: is its own parent", n.ID)
		}
	}

	if len(problems) == 0 {
		return nil
	}
	code := errors.ErrCodeInvalidGeometry
	if badIDs {
		code = errors.ErrCodeInvalidInput
	}
	return errors.New(code, "%d problem(s): %s", len(problems), strings.Join(problems, "; "))
}

func finite(v float64) bool {
	return !math.IsNaN(v) && !math.IsInf(v, 0)
}
