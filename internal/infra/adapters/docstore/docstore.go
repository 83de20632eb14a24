// Package docstore defines the realtime document store port. The store
// merges concurrent writes per key with last-writer-wins semantics and
// offers no multi-key transactions, which is exactly the contract the
// document initializer is written against.
package docstore

import "context"

// Store holds one live document per room, a flat set of named top-level
// fields. Field writes are atomic per field; there is no way to set two
// fields atomically.
type Store interface {
	// Fields returns the names of the top-level fields currently present
	// on the room's document. A room with no document yields an empty set.
	Fields(ctx context.Context, roomID string) (map[string]struct{}, error)

	// SetField writes one top-level field. The write is last-writer-wins:
	// two concurrent SetField calls for the same field leave the field at
	// one of the two values, never a mix.
	SetField(ctx context.Context, roomID, field, value string) error

	// GetField reads one top-level field, or "" when absent.
	GetField(ctx context.Context, roomID, field string) (string, error)
}
