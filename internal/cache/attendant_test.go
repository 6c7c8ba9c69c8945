package cache

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"CallService/entity"
)

func seedAttendants(store *fakeStore) {
	store.attendants = []entity.Attendant{
		{AttendantID: 1, ShortName: "João", Wuid: "100@w", Status: entity.AttendantActive, CompanySectorID: 1},
		{AttendantID: 2, ShortName: "Rita", Wuid: "200@w", Status: entity.AttendantActive, CompanySectorID: 1},
		{AttendantID: 3, ShortName: "Leo", Wuid: "300@w", Status: entity.AttendantInactive, CompanySectorID: 1},
		{AttendantID: 4, ShortName: "Duda", Wuid: "400@w", Status: entity.AttendantActive, CompanySectorID: 2},
	}
}

func TestAttendantRefreshReplacesSnapshot(t *testing.T) {
	store := newFakeStore()
	seedAttendants(store)
	cache := NewAttendantCache(store, 0, testLogger())

	require.NoError(t, cache.Refresh(context.Background()))

	found, ok := cache.FindByWuid(context.Background(), "200@w")
	require.True(t, ok)
	assert.Equal(t, "Rita", found.ShortName)

	// A shrunk roster shrinks the snapshot too.
	store.mu.Lock()
	store.attendants = store.attendants[:1]
	store.mu.Unlock()
	require.NoError(t, cache.Refresh(context.Background()))

	_, ok = cache.FindByID(context.Background(), 2)
	assert.False(t, ok)
}

func TestAttendantFindBackfill(t *testing.T) {
	store := newFakeStore()
	seedAttendants(store)
	cache := NewAttendantCache(store, 0, testLogger())

	// Empty snapshot, miss falls through to the store.
	found, ok := cache.FindByWuid(context.Background(), "100@w")
	require.True(t, ok)
	assert.Equal(t, int64(1), found.AttendantID)

	byID, ok := cache.FindByID(context.Background(), 1)
	require.True(t, ok)
	assert.Equal(t, "João", byID.ShortName)

	_, ok = cache.FindByWuid(context.Background(), "nobody@w")
	assert.False(t, ok, "unknown senders are customers, not attendants")
}

func TestFirstFreeInSector(t *testing.T) {
	store := newFakeStore()
	seedAttendants(store)
	cache := NewAttendantCache(store, 0, testLogger())
	require.NoError(t, cache.Refresh(context.Background()))

	free, ok := cache.FirstFreeInSector(context.Background(), 1, nil)
	require.True(t, ok)
	assert.Equal(t, int64(1), free.AttendantID, "lowest id first")

	free, ok = cache.FirstFreeInSector(context.Background(), 1, map[int64]bool{1: true})
	require.True(t, ok)
	assert.Equal(t, int64(2), free.AttendantID, "occupied attendants are skipped")

	// Attendant 3 is INACTIVE, so occupying 1 and 2 empties sector 1.
	_, ok = cache.FirstFreeInSector(context.Background(), 1, map[int64]bool{1: true, 2: true})
	assert.False(t, ok)

	free, ok = cache.FirstFreeInSector(context.Background(), 2, map[int64]bool{1: true, 2: true})
	require.True(t, ok)
	assert.Equal(t, int64(4), free.AttendantID, "occupancy in one sector leaves others alone")
}

func TestFirstFreeInSectorColdStart(t *testing.T) {
	store := newFakeStore()
	seedAttendants(store)
	cache := NewAttendantCache(store, 0, testLogger())

	// No refresh has run; matching loads the roster itself.
	free, ok := cache.FirstFreeInSector(context.Background(), 1, nil)
	require.True(t, ok)
	assert.Equal(t, int64(1), free.AttendantID)
}

func TestAttendantRemoveThenRestore(t *testing.T) {
	store := newFakeStore()
	seedAttendants(store)
	cache := NewAttendantCache(store, 0, testLogger())
	require.NoError(t, cache.Refresh(context.Background()))

	removed, ok := cache.Remove(2)
	require.True(t, ok)
	assert.Equal(t, "Rita", removed.ShortName)

	// The store still knows them; the next miss brings them back.
	restored, ok := cache.FindByWuid(context.Background(), "200@w")
	require.True(t, ok)
	assert.Equal(t, int64(2), restored.AttendantID)
}
