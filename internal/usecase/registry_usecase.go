package usecase

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/rolltable/rolltable/internal/application/constant"
	"github.com/rolltable/rolltable/internal/application/metric"
	"github.com/rolltable/rolltable/internal/clock"
	"github.com/rolltable/rolltable/internal/domain"
	"github.com/rolltable/rolltable/internal/infra/adapters/blob"
)

const (
	// RegistryObject is the single blob holding the complete room registry.
	RegistryObject = "registry/rooms.json"

	// RegistryPrefix namespaces the registry blob for listing and cache
	// invalidation.
	RegistryPrefix = "registry/"

	// SnapshotPrefix namespaces per-room snapshot blobs.
	SnapshotPrefix = "snapshot/"

	// EmptyRoomTTL is how long a room may sit empty before the reaper
	// drops it.
	EmptyRoomTTL = 120 * time.Second

	// maxWriteAttempts bounds read-modify-write retries under contention.
	maxWriteAttempts = 5
)

type RegistryUsecase interface {
	Create(ctx context.Context, name, password string) (string, error)
	List(ctx context.Context) ([]domain.Room, error)
	Delete(ctx context.Context, id string) error
	MarkEmpty(ctx context.Context, id string, empty bool) error
	SetUsersConnected(ctx context.Context, id string, count int) error
	Verify(ctx context.Context, id, password string) (bool, error)
}

type registryUsecase struct {
	store     blob.Store
	cache     *blob.ListCache
	snapshots SnapshotUsecase
	clk       *clock.Clock
}

func NewRegistryUsecase(store blob.Store, cache *blob.ListCache, snapshots SnapshotUsecase, clk *clock.Clock) RegistryUsecase {
	return &registryUsecase{
		store:     store,
		cache:     cache,
		snapshots: snapshots,
		clk:       clk,
	}
}

func (u *registryUsecase) Create(ctx context.Context, name, password string) (string, error) {
	if strings.TrimSpace(name) == "" {
		return "", domain.NewValidationError("name", "must not be empty")
	}

	var id string
	err := u.mutate(ctx, func(rooms []domain.Room) ([]domain.Room, error) {
		id = domain.NewRoomID(name, u.clk.Now())
		for containsID(rooms, id) {
			// Same slug in the same millisecond; the monotonic clock
			// guarantees the next reading differs.
			id = domain.NewRoomID(name, u.clk.Now())
		}

		return append(rooms, domain.Room{
			ID:        id,
			Name:      name,
			Password:  password,
			CreatedAt: u.clk.Now(),
		}), nil
	})
	metric.RecordRegistryOp("create", err)
	if err != nil {
		return "", err
	}

	return id, nil
}

func (u *registryUsecase) List(ctx context.Context) ([]domain.Room, error) {
	rooms, _, err := u.loadThroughCache(ctx)
	if err != nil {
		metric.RecordRegistryOp("list", err)
		return nil, err
	}

	kept, pruned := reapEmptyRooms(rooms, u.clk.Now())
	if len(pruned) > 0 {
		if err := u.persistReaped(ctx, pruned); err != nil {
			// Another writer got there first; its registry already
			// reflects a sweep at least as fresh as ours.
			slog.Warn("persist reaped registry", slog.Any(constant.Error, err))
		}
	}

	metric.RecordRegistryOp("list", nil)

	return kept, nil
}

func (u *registryUsecase) Delete(ctx context.Context, id string) error {
	err := u.mutate(ctx, func(rooms []domain.Room) ([]domain.Room, error) {
		return removeRoom(rooms, id), nil
	})
	metric.RecordRegistryOp("delete", err)
	if err != nil {
		return err
	}

	return u.snapshots.Discard(ctx, id)
}

func (u *registryUsecase) MarkEmpty(ctx context.Context, id string, empty bool) error {
	err := u.mutate(ctx, func(rooms []domain.Room) ([]domain.Room, error) {
		for i := range rooms {
			if rooms[i].ID != id {
				continue
			}
			if empty {
				since := u.clk.Now()
				rooms[i].EmptySince = &since
			} else {
				rooms[i].EmptySince = nil
			}
			updated := u.clk.Now()
			rooms[i].UpdatedAt = &updated
			break
		}
		return rooms, nil
	})
	metric.RecordRegistryOp("mark_empty", err)

	return err
}

func (u *registryUsecase) SetUsersConnected(ctx context.Context, id string, count int) error {
	err := u.mutate(ctx, func(rooms []domain.Room) ([]domain.Room, error) {
		for i := range rooms {
			if rooms[i].ID == id {
				rooms[i].UsersConnected = count
				break
			}
		}
		return rooms, nil
	})
	metric.RecordRegistryOp("set_users_connected", err)

	return err
}

func (u *registryUsecase) Verify(ctx context.Context, id, password string) (bool, error) {
	rooms, _, err := u.load(ctx)
	if err != nil {
		metric.RecordRegistryOp("verify", err)
		return false, err
	}

	for i := range rooms {
		if rooms[i].ID != id {
			continue
		}
		metric.RecordRegistryOp("verify", nil)
		// Plaintext comparison against the stored value. A known
		// weakness of the stored format, kept as-is.
		return rooms[i].Password == password, nil
	}

	metric.RecordRegistryOp("verify", domain.ErrRoomNotFound)

	return false, domain.ErrRoomNotFound
}

// mutate runs one bounded optimistic read-modify-write cycle against the
// registry blob. Any two concurrent mutations both land: a version mismatch
// at write time restarts the losing cycle on fresh data instead of silently
// discarding the winner's update.
func (u *registryUsecase) mutate(ctx context.Context, fn func([]domain.Room) ([]domain.Room, error)) error {
	for attempt := 0; attempt < maxWriteAttempts; attempt++ {
		rooms, version, err := u.load(ctx)
		if err != nil {
			return err
		}

		next, err := fn(rooms)
		if err != nil {
			return err
		}
		if next == nil {
			// The registry blob always holds an array, never null.
			next = []domain.Room{}
		}

		payload, err := json.Marshal(next)
		if err != nil {
			return fmt.Errorf("marshal registry: %w", err)
		}

		_, err = u.store.CompareAndPut(ctx, RegistryObject, payload, version)
		if err == nil {
			u.cache.Invalidate(RegistryPrefix)
			return nil
		}
		if errors.Is(err, blob.ErrVersionMismatch) {
			metric.RecordRegistryConflict()
			continue
		}

		return fmt.Errorf("%w: write registry: %v", domain.ErrUpstream, err)
	}

	return fmt.Errorf("%w: gave up after %d attempts", domain.ErrConflict, maxWriteAttempts)
}

func (u *registryUsecase) persistReaped(ctx context.Context, pruned []domain.Room) error {
	err := u.mutate(ctx, func(rooms []domain.Room) ([]domain.Room, error) {
		kept, _ := reapEmptyRooms(rooms, u.clk.Now())
		return kept, nil
	})
	if err != nil {
		return err
	}

	// A reaped room is gone for good; its snapshot and the synchronizer's
	// memory of it go with it.
	for _, room := range pruned {
		if err := u.snapshots.Discard(ctx, room.ID); err != nil {
			slog.Warn("discard snapshot of reaped room",
				slog.String(constant.RoomID, room.ID),
				slog.Any(constant.Error, err),
			)
		}
	}

	return nil
}

// load reads the registry blob directly, bypassing the list cache. Mutating
// cycles must always start from fresh data.
func (u *registryUsecase) load(ctx context.Context) ([]domain.Room, uint64, error) {
	payload, version, err := u.store.Get(ctx, RegistryObject)
	if err != nil {
		if errors.Is(err, blob.ErrNotFound) {
			return nil, 0, nil
		}
		return nil, 0, fmt.Errorf("%w: read registry: %v", domain.ErrUpstream, err)
	}

	var rooms []domain.Room
	if err := json.Unmarshal(payload, &rooms); err != nil {
		return nil, 0, fmt.Errorf("unmarshal registry: %w", err)
	}

	return rooms, version, nil
}

// loadThroughCache first consults the cached listing of the registry prefix
// so repeated reads of an absent registry skip the store entirely.
func (u *registryUsecase) loadThroughCache(ctx context.Context) ([]domain.Room, uint64, error) {
	names, _, err := u.cache.Get(ctx, RegistryPrefix)
	if err != nil {
		return nil, 0, fmt.Errorf("%w: list registry: %v", domain.ErrUpstream, err)
	}

	exists := false
	for _, name := range names {
		if name == RegistryObject {
			exists = true
			break
		}
	}
	if !exists {
		return nil, 0, nil
	}

	return u.load(ctx)
}

func containsID(rooms []domain.Room, id string) bool {
	for i := range rooms {
		if rooms[i].ID == id {
			return true
		}
	}
	return false
}

func removeRoom(rooms []domain.Room, id string) []domain.Room {
	kept := rooms[:0]
	for i := range rooms {
		if rooms[i].ID != id {
			kept = append(kept, rooms[i])
		}
	}
	return kept
}
