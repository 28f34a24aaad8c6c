// Package snapshot persists named, annotated copies of a diagram.
//
// A [Snapshot] freezes a diagram together with a free-text note, the name of
// the diagram it was taken from and, optionally, the snapshot it was derived
// from. Snapshots are immutable once saved; saving again under the same ID
// replaces the stored copy.
//
// # Saving From a Dialog
//
// Editors hand the user's note to a [SaveFunc]. [Saver] builds one from a
// [Store] and a function that yields the current diagram, so the dialog
// never sees storage details:
//
//	save := snapshot.Saver(store, func() canvas.Diagram { return current }, "checkout")
//	if err := save(ctx, notes); err != nil {
//	    // show the error to the user
//	}
//
// # Backends
//
//   - [MemoryStore]: process-local, for tests and the server's default
//   - [FileStore]: one JSON file per snapshot, guarded by a lock file
//   - [SQLiteStore]: a single database file
//   - [RedisStore]: JSON values plus a time-ordered index
//   - [MongoStore]: one document per snapshot
//
// [FallbackStore] chains two stores: when the primary rejects credentials or
// cannot be reached, the operation is repeated on the secondary. [Open]
// assembles a store from configuration.
//
// # Errors
//
// Missing snapshots are reported with errors.ErrCodeSnapshotNotFound and
// wrap [ErrNotFound]. Backend outages are reported with
// errors.ErrCodeStoreUnavailable or errors.ErrCodeTimeout, and rejected
// credentials with errors.ErrCodeUnauthorized; these trigger [FallbackStore].
package snapshot
