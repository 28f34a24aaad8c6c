package snapshot

import (
	"context"
	"time"

	"github.com/matzehuels/groupfit/pkg/observability"
)

// Instrument wraps s so that saves and loads are reported to
// observability.Store().
func Instrument(s Store) Store {
	if s == nil {
		return nil
	}
	return &instrumented{inner: s}
}

type instrumented struct {
	inner Store
}

func (i *instrumented) Save(ctx context.Context, s *Snapshot) error {
	start := time.Now()
	err := i.inner.Save(ctx, s)
	id := ""
	if s != nil {
		id = s.ID
	}
	observability.Store().OnSave(ctx, i.inner.Kind(), id, time.Since(start), err)
	return err
}

func (i *instrumented) Get(ctx context.Context, id string) (*Snapshot, error) {
	start := time.Now()
	s, err := i.inner.Get(ctx, id)
	observability.Store().OnLoad(ctx, i.inner.Kind(), id, time.Since(start), err)
	return s, err
}

func (i *instrumented) List(ctx context.Context) ([]Summary, error) {
	return i.inner.List(ctx)
}

func (i *instrumented) Delete(ctx context.Context, id string) error {
	return i.inner.Delete(ctx, id)
}

func (i *instrumented) Close() error { return i.inner.Close() }

func (i *instrumented) Kind() string { return i.inner.Kind() }
