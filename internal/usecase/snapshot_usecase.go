package usecase

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"sync"

	"github.com/rolltable/rolltable/internal/application/metric"
	"github.com/rolltable/rolltable/internal/clock"
	"github.com/rolltable/rolltable/internal/domain"
	"github.com/rolltable/rolltable/internal/infra/adapters/blob"
)

// SessionState is the ephemeral collaborative state assembled for one
// snapshot tick.
type SessionState struct {
	Characters json.RawMessage   `json:"characters"`
	Chat       []json.RawMessage `json:"chat"`
	Dice       []json.RawMessage `json:"dice"`
	Summary    []json.RawMessage `json:"summary"`
	Events     []json.RawMessage `json:"events"`
}

// SnapshotUsecase folds ephemeral session state into the per-room durable
// snapshot blob. Saves are best-effort: callers on the tick and disconnect
// paths log a failed save and move on, never retry or block on it.
type SnapshotUsecase interface {
	// Sync writes the room's snapshot if the state changed since the last
	// successful save. It reports whether a write was issued.
	Sync(ctx context.Context, roomID string, state SessionState) (bool, error)

	// Forget drops the remembered fingerprint for a room, forcing the next
	// Sync to write.
	Forget(roomID string)

	// Discard removes the room's snapshot blob and its fingerprint. A stale
	// fingerprint after a blob delete would make every later Sync of
	// unchanged state skip the write that should restore it.
	Discard(ctx context.Context, roomID string) error
}

type snapshotUsecase struct {
	store blob.Store
	cache *blob.ListCache
	clk   *clock.Clock

	mu           sync.Mutex
	fingerprints map[string]string
}

func NewSnapshotUsecase(store blob.Store, cache *blob.ListCache, clk *clock.Clock) SnapshotUsecase {
	return &snapshotUsecase{
		store:        store,
		cache:        cache,
		clk:          clk,
		fingerprints: make(map[string]string),
	}
}

func (u *snapshotUsecase) Sync(ctx context.Context, roomID string, state SessionState) (bool, error) {
	fingerprint, err := fingerprintState(state)
	if err != nil {
		metric.RecordSnapshotSave("failed")
		return false, fmt.Errorf("fingerprint session state: %w", err)
	}

	u.mu.Lock()
	last := u.fingerprints[roomID]
	u.mu.Unlock()

	if fingerprint == last {
		metric.RecordSnapshotSave("skipped")
		return false, nil
	}

	payload, err := json.Marshal(domain.SnapshotBlob{
		RoomID:     roomID,
		Characters: state.Characters,
		Chat:       state.Chat,
		Dice:       state.Dice,
		Summary:    state.Summary,
		Events:     state.Events,
		SavedAt:    u.clk.Now(),
	})
	if err != nil {
		metric.RecordSnapshotSave("failed")
		return false, fmt.Errorf("marshal snapshot: %w", err)
	}

	if err := u.store.Put(ctx, SnapshotPrefix+roomID, payload); err != nil {
		metric.RecordSnapshotSave("failed")
		return false, fmt.Errorf("%w: write snapshot: %v", domain.ErrUpstream, err)
	}
	u.cache.Invalidate(SnapshotPrefix)

	// Only a confirmed save moves the fingerprint forward; a failed save
	// leaves the next tick to try the same state again.
	u.mu.Lock()
	u.fingerprints[roomID] = fingerprint
	u.mu.Unlock()

	metric.RecordSnapshotSave("saved")

	return true, nil
}

func (u *snapshotUsecase) Forget(roomID string) {
	u.mu.Lock()
	defer u.mu.Unlock()

	delete(u.fingerprints, roomID)
}

func (u *snapshotUsecase) Discard(ctx context.Context, roomID string) error {
	if err := u.store.Delete(ctx, SnapshotPrefix+roomID); err != nil {
		return fmt.Errorf("%w: delete snapshot: %v", domain.ErrUpstream, err)
	}
	u.cache.Invalidate(SnapshotPrefix)

	u.Forget(roomID)

	return nil
}

func fingerprintState(state SessionState) (string, error) {
	payload, err := json.Marshal(state)
	if err != nil {
		return "", err
	}

	sum := sha256.Sum256(payload)

	return hex.EncodeToString(sum[:]), nil
}
