package cache

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"CallService/entity"
)

func TestStageSetAndFind(t *testing.T) {
	store := newFakeStore()
	cache := NewStageCache(store, testLogger())

	set := cache.Set(context.Background(), "551199@w", entity.StageSetName, 7)
	assert.Equal(t, entity.StageSetName, set.Stage)
	assert.Equal(t, int64(7), set.CustomerID)

	found, ok := cache.Find(context.Background(), "551199@w")
	require.True(t, ok)
	assert.Equal(t, entity.StageSetName, found.Stage)

	// Moving the cursor keeps the bound customer when none is given.
	moved := cache.Set(context.Background(), "551199@w", entity.StageTransaction, 0)
	assert.Equal(t, int64(7), moved.CustomerID)

	require.Eventually(t, func() bool {
		store.mu.Lock()
		defer store.mu.Unlock()
		s, ok := store.stages["551199@w"]
		return ok && s.Stage == entity.StageTransaction
	}, time.Second, 5*time.Millisecond, "cursor reaches the store")
}

func TestStageFindBackfill(t *testing.T) {
	store := newFakeStore()
	store.stages["551188@w"] = &entity.ChatStage{Wuid: "551188@w", Stage: entity.StageSetSubject, CustomerID: 3}
	cache := NewStageCache(store, testLogger())

	found, ok := cache.Find(context.Background(), "551188@w")
	require.True(t, ok)
	assert.Equal(t, entity.StageSetSubject, found.Stage)

	_, ok = cache.Find(context.Background(), "fresh@w")
	assert.False(t, ok, "a chat with no cursor is a first contact")
}

func TestStageRemove(t *testing.T) {
	store := newFakeStore()
	cache := NewStageCache(store, testLogger())

	cache.Set(context.Background(), "551177@w", entity.StageTransaction, 5)
	removed, ok := cache.Remove("551177@w")
	require.True(t, ok)
	assert.Equal(t, entity.StageTransaction, removed.Stage)

	_, ok = cache.Remove("551177@w")
	assert.False(t, ok)
}
