package snapshot

import (
	"context"
	"encoding/json"
	stderrors "errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/matzehuels/groupfit/pkg/canvas"
	"github.com/matzehuels/groupfit/pkg/errors"
)

// ErrNotFound is wrapped by every not-found error of this package.
var ErrNotFound = stderrors.New("snapshot not found")

// Snapshot is a saved copy of a diagram.
type Snapshot struct {
	ID          string         `json:"id" bson:"_id"`
	DiagramName string         `json:"diagram_name" bson:"diagram_name"`
	Notes       string         `json:"notes,omitempty" bson:"notes,omitempty"`
	ParentID    string         `json:"parent_id,omitempty" bson:"parent_id,omitempty"`
	CreatedAt   time.Time      `json:"created_at" bson:"created_at"`
	UpdatedAt   time.Time      `json:"updated_at" bson:"updated_at"`
	Diagram     canvas.Diagram `json:"diagram" bson:"diagram"`
}

// Summary is the listing view of a snapshot.
type Summary struct {
	ID          string    `json:"id" bson:"_id"`
	DiagramName string    `json:"diagram_name" bson:"diagram_name"`
	Notes       string    `json:"notes,omitempty" bson:"notes,omitempty"`
	ParentID    string    `json:"parent_id,omitempty" bson:"parent_id,omitempty"`
	CreatedAt   time.Time `json:"created_at" bson:"created_at"`
	NodeCount   int       `json:"node_count" bson:"node_count"`
	GroupCount  int       `json:"group_count" bson:"group_count"`
}

// Store persists snapshots. Implementations are safe for concurrent use.
type Store interface {
	// Save stores s, replacing any snapshot with the same ID.
	Save(ctx context.Context, s *Snapshot) error

	// Get returns the snapshot with the given ID.
	Get(ctx context.Context, id string) (*Snapshot, error)

	// List returns summaries of all snapshots, newest first.
	List(ctx context.Context) ([]Summary, error)

	// Delete removes the snapshot with the given ID.
	Delete(ctx context.Context, id string) error

	// Close releases resources held by the store.
	Close() error

	// Kind names the backend, e.g. "file".
	Kind() string
}

// New creates a snapshot of d with a fresh ID. The diagram is deep-copied,
// so later edits to d do not leak into the snapshot.
func New(d canvas.Diagram, name, notes, parentID string) (*Snapshot, error) {
	if err := errors.ValidateNotes(notes); err != nil {
		return nil, err
	}
	if parentID != "" {
		if err := errors.ValidateID(parentID); err != nil {
			return nil, err
		}
	}
	clone, err := cloneDiagram(d)
	if err != nil {
		return nil, err
	}
	if name == "" {
		name = d.Title
	}
	if name == "" {
		name = "Untitled"
	}

	now := time.Now().UTC()
	return &Snapshot{
		ID:          uuid.NewString(),
		DiagramName: name,
		Notes:       strings.TrimSpace(notes),
		ParentID:    parentID,
		CreatedAt:   now,
		UpdatedAt:   now,
		Diagram:     clone,
	}, nil
}

// Summary returns the listing view of s.
func (s *Snapshot) Summary() Summary {
	return Summary{
		ID:          s.ID,
		DiagramName: s.DiagramName,
		Notes:       s.Notes,
		ParentID:    s.ParentID,
		CreatedAt:   s.CreatedAt,
		NodeCount:   len(s.Diagram.Nodes),
		GroupCount:  s.Diagram.GroupCount(),
	}
}

// Clone returns a deep copy of s.
func (s *Snapshot) Clone() (*Snapshot, error) {
	d, err := cloneDiagram(s.Diagram)
	if err != nil {
		return nil, err
	}
	out := *s
	out.Diagram = d
	return &out, nil
}

// validate checks a snapshot before it is written.
func validate(s *Snapshot) error {
	if s == nil {
		return errors.New(errors.ErrCodeInvalidInput, "snapshot is nil")
	}
	if err := errors.ValidateID(s.ID); err != nil {
		return err
	}
	return errors.ValidateNotes(s.Notes)
}

func notFound(id string) error {
	return errors.Wrap(errors.ErrCodeSnapshotNotFound, ErrNotFound, "snapshot %s", id)
}

func unavailable(kind string, err error, format string, args ...any) error {
	return errors.Wrap(errors.ErrCodeStoreUnavailable, err, "%s store: %s", kind, fmt.Sprintf(format, args...))
}

// cloneDiagram deep-copies d through its JSON encoding, which is the form
// every backend stores.
func cloneDiagram(d canvas.Diagram) (canvas.Diagram, error) {
	data, err := json.Marshal(d)
	if err != nil {
		return canvas.Diagram{}, errors.Wrap(errors.ErrCodeInvalidInput, err, "encode diagram")
	}
	var out canvas.Diagram
	if err := json.Unmarshal(data, &out); err != nil {
		return canvas.Diagram{}, errors.Wrap(errors.ErrCodeInternal, err, "decode diagram")
	}
	return out, nil
}
