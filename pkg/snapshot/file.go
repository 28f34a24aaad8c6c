package snapshot

import (
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"github.com/gofrs/flock"

	"github.com/matzehuels/groupfit/pkg/errors"
)

// FileStore keeps one JSON file per snapshot in a directory. A lock file next
// to the directory serializes writers across processes; mu does the same for
// goroutines, since one flock handle cannot be held twice.
type FileStore struct {
	dir  string
	mu   sync.Mutex
	lock *flock.Flock
}

// NewFileStore returns a store rooted at dir, creating it if needed.
func NewFileStore(dir string) (*FileStore, error) {
	if dir == "" {
		return nil, errors.New(errors.ErrCodeInvalidConfig, "file store: directory is empty")
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, unavailable("file", err, "create %s", dir)
	}
	return &FileStore{
		dir:  dir,
		lock: flock.New(filepath.Clean(dir) + ".lock"),
	}, nil
}

// Dir returns the directory holding the snapshot files.
func (f *FileStore) Dir() string { return f.dir }

// acquire takes mu, then the file lock, shared or exclusive.
func (f *FileStore) acquire(exclusive bool) (func(), error) {
	f.mu.Lock()
	lock := f.lock.RLock
	if exclusive {
		lock = f.lock.Lock
	}
	if err := lock(); err != nil {
		f.mu.Unlock()
		return nil, unavailable("file", err, "lock")
	}
	return func() {
		f.lock.Unlock()
		f.mu.Unlock()
	}, nil
}

func (f *FileStore) path(id string) string {
	return filepath.Join(f.dir, id+".json")
}

// Save implements [Store].
func (f *FileStore) Save(ctx context.Context, s *Snapshot) error {
	if err := validate(s); err != nil {
		return err
	}
	data, err := json.MarshalIndent(s, "", "  ")
	if err != nil {
		return errors.Wrap(errors.ErrCodeInternal, err, "encode snapshot %s", s.ID)
	}

	unlock, err := f.acquire(true)
	if err != nil {
		return err
	}
	defer unlock()

	tmp, err := os.CreateTemp(f.dir, ".snapshot-*.tmp")
	if err != nil {
		return unavailable("file", err, "save %s", s.ID)
	}
	tmpPath := tmp.Name()
	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		os.Remove(tmpPath)
		return unavailable("file", err, "save %s", s.ID)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmpPath)
		return unavailable("file", err, "save %s", s.ID)
	}
	if err := os.Rename(tmpPath, f.path(s.ID)); err != nil {
		os.Remove(tmpPath)
		return unavailable("file", err, "save %s", s.ID)
	}
	return nil
}

// Get implements [Store].
func (f *FileStore) Get(ctx context.Context, id string) (*Snapshot, error) {
	if err := errors.ValidateID(id); err != nil {
		return nil, err
	}
	unlock, err := f.acquire(false)
	if err != nil {
		return nil, err
	}
	defer unlock()
	return f.read(id)
}

func (f *FileStore) read(id string) (*Snapshot, error) {
	data, err := os.ReadFile(f.path(id))
	if os.IsNotExist(err) {
		return nil, notFound(id)
	}
	if err != nil {
		return nil, unavailable("file", err, "read %s", id)
	}
	var s Snapshot
	if err := json.Unmarshal(data, &s); err != nil {
		return nil, errors.Wrap(errors.ErrCodeInvalidFormat, err, "snapshot %s is corrupt", id)
	}
	return &s, nil
}

// List implements [Store]. Files that cannot be decoded are skipped.
func (f *FileStore) List(ctx context.Context) ([]Summary, error) {
	unlock, err := f.acquire(false)
	if err != nil {
		return nil, err
	}
	defer unlock()

	entries, err := os.ReadDir(f.dir)
	if err != nil {
		return nil, unavailable("file", err, "list %s", f.dir)
	}
	out := make([]Summary, 0, len(entries))
	for _, e := range entries {
		name := e.Name()
		if e.IsDir() || strings.HasPrefix(name, ".") || filepath.Ext(name) != ".json" {
			continue
		}
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		s, err := f.read(strings.TrimSuffix(name, ".json"))
		if err != nil {
			continue
		}
		out = append(out, s.Summary())
	}
	sortSummaries(out)
	return out, nil
}

// Delete implements [Store].
func (f *FileStore) Delete(ctx context.Context, id string) error {
	if err := errors.ValidateID(id); err != nil {
		return err
	}
	unlock, err := f.acquire(true)
	if err != nil {
		return err
	}
	defer unlock()

	err = os.Remove(f.path(id))
	if os.IsNotExist(err) {
		return notFound(id)
	}
	if err != nil {
		return unavailable("file", err, "delete %s", id)
	}
	return nil
}

// Close implements [Store].
func (f *FileStore) Close() error { return f.lock.Close() }

// Kind implements [Store].
func (f *FileStore) Kind() string { return "file" }

var _ Store = (*FileStore)(nil)
