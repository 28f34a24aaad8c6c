package snapshot

import (
	"context"

	"github.com/matzehuels/groupfit/pkg/canvas"
	"github.com/matzehuels/groupfit/pkg/errors"
)

// SaveFunc persists the current diagram with the given notes. It is the only
// thing a save dialog needs to know about storage.
type SaveFunc func(ctx context.Context, notes string) error

// Saver returns a SaveFunc that snapshots current() into store under name.
// Each call creates a new snapshot whose parent is the previous one saved
// through the same SaveFunc, so consecutive saves form a version chain.
func Saver(store Store, current func() canvas.Diagram, name string) SaveFunc {
	var last string
	return func(ctx context.Context, notes string) error {
		if err := errors.ValidateNotes(notes); err != nil {
			return err
		}
		s, err := New(current(), name, notes, last)
		if err != nil {
			return err
		}
		if err := store.Save(ctx, s); err != nil {
			return err
		}
		last = s.ID
		return nil
	}
}
