package snapshot

import (
	"context"
	"database/sql"
	"encoding/json"
	"time"

	_ "modernc.org/sqlite"

	"github.com/matzehuels/groupfit/pkg/errors"
)

// SQLiteStore keeps snapshots in a single SQLite database file.
type SQLiteStore struct {
	db *sql.DB
}

// NewSQLiteStore opens (or creates) the database at path and migrates the
// schema. Use ":memory:" for a throwaway database.
func NewSQLiteStore(path string) (*SQLiteStore, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, unavailable("sqlite", err, "open %s", path)
	}
	// One connection keeps ":memory:" databases shared and serializes writers.
	db.SetMaxOpenConns(1)

	s := &SQLiteStore{db: db}
	if err := s.migrate(); err != nil {
		db.Close()
		return nil, err
	}
	return s, nil
}

func (s *SQLiteStore) migrate() error {
	_, err := s.db.Exec(`
		CREATE TABLE IF NOT EXISTS snapshots (
			id TEXT PRIMARY KEY,
			diagram_name TEXT NOT NULL,
			notes TEXT NOT NULL DEFAULT '',
			parent_id TEXT NOT NULL DEFAULT '',
			node_count INTEGER NOT NULL DEFAULT 0,
			group_count INTEGER NOT NULL DEFAULT 0,
			diagram TEXT NOT NULL,
			created_at TEXT NOT NULL,
			updated_at TEXT NOT NULL
		);
		CREATE INDEX IF NOT EXISTS idx_snapshots_created ON snapshots(created_at);
	`)
	if err != nil {
		return unavailable("sqlite", err, "migrate")
	}
	return nil
}

// Save implements [Store].
func (s *SQLiteStore) Save(ctx context.Context, snap *Snapshot) error {
	if err := validate(snap); err != nil {
		return err
	}
	diagram, err := json.Marshal(snap.Diagram)
	if err != nil {
		return errors.Wrap(errors.ErrCodeInternal, err, "encode snapshot %s", snap.ID)
	}

	_, err = s.db.ExecContext(ctx, `
		INSERT INTO snapshots (id, diagram_name, notes, parent_id, node_count, group_count, diagram, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET
			diagram_name = excluded.diagram_name,
			notes = excluded.notes,
			parent_id = excluded.parent_id,
			node_count = excluded.node_count,
			group_count = excluded.group_count,
			diagram = excluded.diagram,
			updated_at = excluded.updated_at
	`, snap.ID, snap.DiagramName, snap.Notes, snap.ParentID,
		len(snap.Diagram.Nodes), snap.Diagram.GroupCount(), string(diagram),
		formatTime(snap.CreatedAt), formatTime(snap.UpdatedAt))
	if err != nil {
		return unavailable("sqlite", err, "save %s", snap.ID)
	}
	return nil
}

// Get implements [Store].
func (s *SQLiteStore) Get(ctx context.Context, id string) (*Snapshot, error) {
	var (
		snap               Snapshot
		diagram            string
		createdAt, updated string
	)
	err := s.db.QueryRowContext(ctx, `
		SELECT id, diagram_name, notes, parent_id, diagram, created_at, updated_at
		FROM snapshots WHERE id = ?
	`, id).Scan(&snap.ID, &snap.DiagramName, &snap.Notes, &snap.ParentID, &diagram, &createdAt, &updated)
	if err == sql.ErrNoRows {
		return nil, notFound(id)
	}
	if err != nil {
		return nil, unavailable("sqlite", err, "get %s", id)
	}
	if err := json.Unmarshal([]byte(diagram), &snap.Diagram); err != nil {
		return nil, errors.Wrap(errors.ErrCodeInvalidFormat, err, "snapshot %s is corrupt", id)
	}
	snap.CreatedAt = parseTime(createdAt)
	snap.UpdatedAt = parseTime(updated)
	return &snap, nil
}

// List implements [Store].
func (s *SQLiteStore) List(ctx context.Context) ([]Summary, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, diagram_name, notes, parent_id, node_count, group_count, created_at
		FROM snapshots ORDER BY created_at DESC, id ASC
	`)
	if err != nil {
		return nil, unavailable("sqlite", err, "list")
	}
	defer rows.Close()

	var out []Summary
	for rows.Next() {
		var (
			sum       Summary
			createdAt string
		)
		if err := rows.Scan(&sum.ID, &sum.DiagramName, &sum.Notes, &sum.ParentID,
			&sum.NodeCount, &sum.GroupCount, &createdAt); err != nil {
			return nil, unavailable("sqlite", err, "scan")
		}
		sum.CreatedAt = parseTime(createdAt)
		out = append(out, sum)
	}
	if err := rows.Err(); err != nil {
		return nil, unavailable("sqlite", err, "list")
	}
	return out, nil
}

// Delete implements [Store].
func (s *SQLiteStore) Delete(ctx context.Context, id string) error {
	res, err := s.db.ExecContext(ctx, `DELETE FROM snapshots WHERE id = ?`, id)
	if err != nil {
		return unavailable("sqlite", err, "delete %s", id)
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return notFound(id)
	}
	return nil
}

// Close implements [Store].
func (s *SQLiteStore) Close() error { return s.db.Close() }

// Kind implements [Store].
func (s *SQLiteStore) Kind() string { return "sqlite" }

// Timestamps are stored as fixed-width RFC 3339 text so that lexical order in
// SQL matches chronological order.
const timeLayout = "2006-01-02T15:04:05.000000000Z"

func formatTime(t time.Time) string {
	return t.UTC().Format(timeLayout)
}

func parseTime(s string) time.Time {
	t, err := time.Parse(timeLayout, s)
	if err != nil {
		t, _ = time.Parse(time.RFC3339Nano, s)
	}
	return t
}

var _ Store = (*SQLiteStore)(nil)
