package blob

import (
	"context"
	"encoding/binary"
	"fmt"
	"path/filepath"
	"strings"
	"time"

	"go.etcd.io/bbolt"
)

const (
	objectBucket  = "objects"
	versionBucket = "versions"
)

// BoltStore provides a BoltDB-backed blob store. BoltDB serializes write
// transactions, which makes CompareAndPut atomic without extra locking.
type BoltStore struct {
	db *bbolt.DB
}

// OpenBolt opens a BoltDB-backed store at the provided path.
func OpenBolt(path string) (*BoltStore, error) {
	if strings.TrimSpace(path) == "" {
		return nil, fmt.Errorf("storage path is required")
	}

	db, err := bbolt.Open(filepath.Clean(path), 0o600, &bbolt.Options{Timeout: time.Second})
	if err != nil {
		return nil, fmt.Errorf("open storage db: %w", err)
	}

	store := &BoltStore{db: db}
	if err := store.ensureBuckets(); err != nil {
		_ = db.Close()
		return nil, err
	}

	return store, nil
}

// Close closes the underlying BoltDB database.
func (s *BoltStore) Close() error {
	if s == nil || s.db == nil {
		return nil
	}
	return s.db.Close()
}

func (s *BoltStore) Get(ctx context.Context, name string) ([]byte, uint64, error) {
	if err := ctx.Err(); err != nil {
		return nil, 0, err
	}

	var (
		data    []byte
		version uint64
	)
	err := s.db.View(func(tx *bbolt.Tx) error {
		payload := tx.Bucket([]byte(objectBucket)).Get([]byte(name))
		if payload == nil {
			return ErrNotFound
		}
		data = append([]byte(nil), payload...)
		version = readVersion(tx, name)
		return nil
	})
	if err != nil {
		return nil, 0, err
	}

	return data, version, nil
}

func (s *BoltStore) Put(ctx context.Context, name string, data []byte) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	return s.db.Update(func(tx *bbolt.Tx) error {
		if err := tx.Bucket([]byte(objectBucket)).Put([]byte(name), data); err != nil {
			return fmt.Errorf("put object: %w", err)
		}
		return bumpVersion(tx, name, readVersion(tx, name)+1)
	})
}

func (s *BoltStore) CompareAndPut(ctx context.Context, name string, data []byte, ifVersion uint64) (uint64, error) {
	if err := ctx.Err(); err != nil {
		return 0, err
	}

	var next uint64
	err := s.db.Update(func(tx *bbolt.Tx) error {
		current := readVersion(tx, name)
		if current != ifVersion {
			return ErrVersionMismatch
		}
		if err := tx.Bucket([]byte(objectBucket)).Put([]byte(name), data); err != nil {
			return fmt.Errorf("put object: %w", err)
		}
		next = current + 1
		return bumpVersion(tx, name, next)
	})
	if err != nil {
		return 0, err
	}

	return next, nil
}

func (s *BoltStore) Delete(ctx context.Context, name string) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	return s.db.Update(func(tx *bbolt.Tx) error {
		if err := tx.Bucket([]byte(objectBucket)).Delete([]byte(name)); err != nil {
			return fmt.Errorf("delete object: %w", err)
		}
		return tx.Bucket([]byte(versionBucket)).Delete([]byte(name))
	})
}

func (s *BoltStore) List(ctx context.Context, prefix string) ([]string, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	var names []string
	err := s.db.View(func(tx *bbolt.Tx) error {
		c := tx.Bucket([]byte(objectBucket)).Cursor()
		p := []byte(prefix)
		for k, _ := c.Seek(p); k != nil && strings.HasPrefix(string(k), prefix); k, _ = c.Next() {
			names = append(names, string(k))
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	return names, nil
}

func (s *BoltStore) ensureBuckets() error {
	return s.db.Update(func(tx *bbolt.Tx) error {
		for _, bucket := range []string{objectBucket, versionBucket} {
			if _, err := tx.CreateBucketIfNotExists([]byte(bucket)); err != nil {
				return fmt.Errorf("create %s bucket: %w", bucket, err)
			}
		}
		return nil
	})
}

func readVersion(tx *bbolt.Tx, name string) uint64 {
	raw := tx.Bucket([]byte(versionBucket)).Get([]byte(name))
	if len(raw) != 8 {
		return 0
	}
	return binary.BigEndian.Uint64(raw)
}

func bumpVersion(tx *bbolt.Tx, name string, version uint64) error {
	raw := make([]byte, 8)
	binary.BigEndian.PutUint64(raw, version)
	if err := tx.Bucket([]byte(versionBucket)).Put([]byte(name), raw); err != nil {
		return fmt.Errorf("put version: %w", err)
	}
	return nil
}
