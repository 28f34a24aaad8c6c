package snapshot

import (
	"context"
	stderrors "errors"

	"github.com/matzehuels/groupfit/pkg/errors"
	"github.com/matzehuels/groupfit/pkg/observability"
)

// FallbackStore routes operations to a primary store and repeats them on a
// secondary store when the primary is unreachable or rejects credentials.
// Every switch is reported through observability.Store().OnFallback.
type FallbackStore struct {
	primary   Store
	secondary Store
}

// NewFallbackStore chains primary and secondary.
func NewFallbackStore(primary, secondary Store) *FallbackStore {
	return &FallbackStore{primary: primary, secondary: secondary}
}

// ShouldFallback reports whether err means the store itself is unusable, as
// opposed to the request being wrong.
func ShouldFallback(err error) bool {
	switch errors.GetCode(err) {
	case errors.ErrCodeUnauthorized, errors.ErrCodeStoreUnavailable, errors.ErrCodeTimeout:
		return true
	}
	return false
}

func (f *FallbackStore) fallback(ctx context.Context, op string, err error) bool {
	if !ShouldFallback(err) {
		return false
	}
	observability.Store().OnFallback(ctx, op, f.primary.Kind(), f.secondary.Kind(), err)
	return true
}

// Save implements [Store].
func (f *FallbackStore) Save(ctx context.Context, s *Snapshot) error {
	err := f.primary.Save(ctx, s)
	if err != nil && f.fallback(ctx, "save", err) {
		return f.secondary.Save(ctx, s)
	}
	return err
}

// Get implements [Store].
func (f *FallbackStore) Get(ctx context.Context, id string) (*Snapshot, error) {
	s, err := f.primary.Get(ctx, id)
	if err != nil && f.fallback(ctx, "get", err) {
		return f.secondary.Get(ctx, id)
	}
	return s, err
}

// List implements [Store].
func (f *FallbackStore) List(ctx context.Context) ([]Summary, error) {
	out, err := f.primary.List(ctx)
	if err != nil && f.fallback(ctx, "list", err) {
		return f.secondary.List(ctx)
	}
	return out, err
}

// Delete implements [Store].
func (f *FallbackStore) Delete(ctx context.Context, id string) error {
	err := f.primary.Delete(ctx, id)
	if err != nil && f.fallback(ctx, "delete", err) {
		return f.secondary.Delete(ctx, id)
	}
	return err
}

// Close closes both stores.
func (f *FallbackStore) Close() error {
	return stderrors.Join(f.primary.Close(), f.secondary.Close())
}

// Kind returns "<primary>+<secondary>".
func (f *FallbackStore) Kind() string {
	return f.primary.Kind() + "+" + f.secondary.Kind()
}

var _ Store = (*FallbackStore)(nil)
