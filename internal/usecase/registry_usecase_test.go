package usecase_test

import (
	"context"
	"encoding/json"
	"fmt"
	"regexp"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rolltable/rolltable/internal/clock"
	"github.com/rolltable/rolltable/internal/domain"
	"github.com/rolltable/rolltable/internal/infra/adapters/blob"
	"github.com/rolltable/rolltable/internal/usecase"
)

type registryFixture struct {
	store     *blob.MemoryStore
	cache     *blob.ListCache
	wall      *atomic.Int64
	snapshots usecase.SnapshotUsecase
	registry  usecase.RegistryUsecase
}

func newRegistryFixture(t *testing.T) *registryFixture {
	t.Helper()

	store := blob.NewMemoryStore()
	cache := blob.NewListCache(store, blob.DefaultListTTL)

	wall := &atomic.Int64{}
	wall.Store(1_700_000_000_000)
	clk := clock.NewWithSource(wall.Load)

	snapshots := usecase.NewSnapshotUsecase(store, cache, clk)

	return &registryFixture{
		store:     store,
		cache:     cache,
		wall:      wall,
		snapshots: snapshots,
		registry:  usecase.NewRegistryUsecase(store, cache, snapshots, clk),
	}
}

func TestCreateAndList(t *testing.T) {
	f := newRegistryFixture(t)
	ctx := context.Background()

	id, err := f.registry.Create(ctx, "Table One", "")
	require.NoError(t, err)
	assert.Regexp(t, regexp.MustCompile(`^table-one-\d+$`), id)

	rooms, err := f.registry.List(ctx)
	require.NoError(t, err)
	require.Len(t, rooms, 1)
	assert.Equal(t, id, rooms[0].ID)
	assert.Equal(t, "Table One", rooms[0].Name)
	assert.Nil(t, rooms[0].EmptySince)
	assert.Zero(t, rooms[0].UsersConnected)
}

func TestCreateRejectsEmptyName(t *testing.T) {
	f := newRegistryFixture(t)

	for _, name := range []string{"", "   ", "\t"} {
		_, err := f.registry.Create(context.Background(), name, "")
		require.Error(t, err)
		assert.True(t, domain.IsValidation(err))
	}
}

func TestCreateSameNameProducesUniqueIDs(t *testing.T) {
	f := newRegistryFixture(t)
	ctx := context.Background()

	// Wall clock frozen: uniqueness must come from the monotonic clock.
	first, err := f.registry.Create(ctx, "Table One", "")
	require.NoError(t, err)
	second, err := f.registry.Create(ctx, "Table One", "")
	require.NoError(t, err)

	assert.NotEqual(t, first, second)
}

func TestConcurrentCreatesNoLostUpdate(t *testing.T) {
	f := newRegistryFixture(t)
	ctx := context.Background()

	const writers = 5

	var wg sync.WaitGroup
	for i := 0; i < writers; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			_, err := f.registry.Create(ctx, fmt.Sprintf("Room %d", i), "")
			assert.NoError(t, err)
		}(i)
	}
	wg.Wait()

	rooms, err := f.registry.List(ctx)
	require.NoError(t, err)
	require.Len(t, rooms, writers)

	names := make(map[string]struct{}, writers)
	for _, room := range rooms {
		names[room.Name] = struct{}{}
	}
	for i := 0; i < writers; i++ {
		assert.Contains(t, names, fmt.Sprintf("Room %d", i))
	}
}

func TestDeleteRemovesRoomAndSnapshot(t *testing.T) {
	f := newRegistryFixture(t)
	ctx := context.Background()

	id, err := f.registry.Create(ctx, "Doomed", "")
	require.NoError(t, err)

	// Pretend a session saved a snapshot for the room.
	require.NoError(t, f.store.Put(ctx, usecase.SnapshotPrefix+id, []byte(`{}`)))

	require.NoError(t, f.registry.Delete(ctx, id))

	rooms, err := f.registry.List(ctx)
	require.NoError(t, err)
	assert.Empty(t, rooms)

	_, _, err = f.store.Get(ctx, usecase.SnapshotPrefix+id)
	assert.ErrorIs(t, err, blob.ErrNotFound)

	// Deleting twice is a no-op success.
	require.NoError(t, f.registry.Delete(ctx, id))
	require.NoError(t, f.registry.Delete(ctx, "never-existed"))
}

func TestDeleteResetsSnapshotDeduplication(t *testing.T) {
	f := newRegistryFixture(t)
	ctx := context.Background()

	id, err := f.registry.Create(ctx, "Doomed", "")
	require.NoError(t, err)

	sessionState := usecase.SessionState{
		Characters: []byte(`{}`),
		Chat:       []json.RawMessage{[]byte(`{"msg":"hi"}`)},
	}
	saved, err := f.snapshots.Sync(ctx, id, sessionState)
	require.NoError(t, err)
	require.True(t, saved)

	require.NoError(t, f.registry.Delete(ctx, id))

	// A session that outlives the room deletion must restore the snapshot
	// on its next tick even though its state has not changed.
	saved, err = f.snapshots.Sync(ctx, id, sessionState)
	require.NoError(t, err)
	assert.True(t, saved)

	_, _, err = f.store.Get(ctx, usecase.SnapshotPrefix+id)
	require.NoError(t, err)
}

func TestMarkEmptyAndReaper(t *testing.T) {
	f := newRegistryFixture(t)
	ctx := context.Background()

	id, err := f.registry.Create(ctx, "Fading", "")
	require.NoError(t, err)
	require.NoError(t, f.store.Put(ctx, usecase.SnapshotPrefix+id, []byte(`{}`)))

	require.NoError(t, f.registry.MarkEmpty(ctx, id, true))

	// Under the threshold the room survives every read.
	f.wall.Add((usecase.EmptyRoomTTL - time.Second).Milliseconds())
	rooms, err := f.registry.List(ctx)
	require.NoError(t, err)
	require.Len(t, rooms, 1)
	require.NotNil(t, rooms[0].EmptySince)

	// Clearing the marker rescues the room no matter how old it gets.
	require.NoError(t, f.registry.MarkEmpty(ctx, id, false))
	f.wall.Add((10 * usecase.EmptyRoomTTL).Milliseconds())
	rooms, err = f.registry.List(ctx)
	require.NoError(t, err)
	require.Len(t, rooms, 1)
	assert.Nil(t, rooms[0].EmptySince)

	// Past the threshold the sweep removes it and persists the removal.
	require.NoError(t, f.registry.MarkEmpty(ctx, id, true))
	f.wall.Add(usecase.EmptyRoomTTL.Milliseconds() + 1000)
	rooms, err = f.registry.List(ctx)
	require.NoError(t, err)
	assert.Empty(t, rooms)

	payload, _, err := f.store.Get(context.Background(), usecase.RegistryObject)
	require.NoError(t, err)
	assert.JSONEq(t, `[]`, string(payload))

	_, _, err = f.store.Get(ctx, usecase.SnapshotPrefix+id)
	assert.ErrorIs(t, err, blob.ErrNotFound)
}

func TestVerify(t *testing.T) {
	f := newRegistryFixture(t)
	ctx := context.Background()

	open, err := f.registry.Create(ctx, "Open Table", "")
	require.NoError(t, err)
	locked, err := f.registry.Create(ctx, "Locked Table", "secret")
	require.NoError(t, err)

	tests := []struct {
		name     string
		id       string
		password string
		want     bool
	}{
		{"passwordless room accepts empty password", open, "", true},
		{"passwordless room rejects any password", open, "anything", false},
		{"wrong password rejected", locked, "wrong", false},
		{"correct password accepted", locked, "secret", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ok, err := f.registry.Verify(ctx, tt.id, tt.password)
			require.NoError(t, err)
			assert.Equal(t, tt.want, ok)
		})
	}

	_, err = f.registry.Verify(ctx, "missing-room", "")
	assert.ErrorIs(t, err, domain.ErrRoomNotFound)
}

func TestConcurrentMarkEmptyAndDeleteBothLand(t *testing.T) {
	f := newRegistryFixture(t)
	ctx := context.Background()

	kept, err := f.registry.Create(ctx, "Kept", "")
	require.NoError(t, err)
	doomed, err := f.registry.Create(ctx, "Doomed", "")
	require.NoError(t, err)

	var wg sync.WaitGroup
	wg.Add(2)
	go func() {
		defer wg.Done()
		assert.NoError(t, f.registry.MarkEmpty(ctx, kept, true))
	}()
	go func() {
		defer wg.Done()
		assert.NoError(t, f.registry.Delete(ctx, doomed))
	}()
	wg.Wait()

	rooms, err := f.registry.List(ctx)
	require.NoError(t, err)
	require.Len(t, rooms, 1)
	assert.Equal(t, kept, rooms[0].ID)
	assert.NotNil(t, rooms[0].EmptySince)
}
