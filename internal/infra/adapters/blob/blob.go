// Package blob defines the durable blob store port. The registry blob and
// the per-room snapshot blobs live behind this interface.
package blob

import (
	"context"
	"errors"
)

var (
	// ErrNotFound means no object exists under the given name.
	ErrNotFound = errors.New("blob not found")

	// ErrVersionMismatch means the object changed since it was read.
	ErrVersionMismatch = errors.New("blob version mismatch")
)

// Store is a flat namespace of named JSON blobs. There are no transactions
// across names; the only concurrency primitive is the per-object version
// token returned by Get and checked by CompareAndPut.
type Store interface {
	// Get returns the object's payload and its current version token.
	// A missing object yields ErrNotFound and version 0.
	Get(ctx context.Context, name string) ([]byte, uint64, error)

	// Put overwrites the object unconditionally.
	Put(ctx context.Context, name string, data []byte) error

	// CompareAndPut overwrites the object only if its current version still
	// equals ifVersion (0 for "must not exist yet"). On success it returns
	// the new version; otherwise ErrVersionMismatch.
	CompareAndPut(ctx context.Context, name string, data []byte, ifVersion uint64) (uint64, error)

	// Delete removes the object. Deleting a missing object succeeds.
	Delete(ctx context.Context, name string) error

	// List returns the names of all objects under the prefix.
	List(ctx context.Context, prefix string) ([]string, error)
}
