package cache

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"CallService/entity"
)

func TestCustomerCreateDeduplicates(t *testing.T) {
	store := newFakeStore()
	cache := NewCustomerCache(store, testLogger())

	first, err := cache.Create(context.Background(), &entity.Customer{Wuid: "551199@w", PushName: "Ana"})
	require.NoError(t, err)
	require.NotZero(t, first.CustomerID)
	assert.NotZero(t, first.CreatedAt)

	second, err := cache.Create(context.Background(), &entity.Customer{Wuid: "551199@w", PushName: "Ana"})
	require.NoError(t, err)
	assert.Equal(t, first.CustomerID, second.CustomerID)
	assert.Len(t, store.customers, 1)
}

func TestCustomerCreateConcurrent(t *testing.T) {
	store := newFakeStore()
	cache := NewCustomerCache(store, testLogger())

	const workers = 16
	ids := make(chan int64, workers)
	var wg sync.WaitGroup
	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			created, err := cache.Create(context.Background(), &entity.Customer{Wuid: "551199@w"})
			if assert.NoError(t, err) {
				ids <- created.CustomerID
			}
		}()
	}
	wg.Wait()
	close(ids)

	seen := make(map[int64]bool)
	for id := range ids {
		seen[id] = true
	}
	assert.Len(t, seen, 1, "one chat, one customer record")
}

func TestCustomerFindBackfill(t *testing.T) {
	store := newFakeStore()
	store.customers[4] = &entity.Customer{CustomerID: 4, Wuid: "551188@w", Name: "Bia"}
	cache := NewCustomerCache(store, testLogger())

	found, ok := cache.FindByID(context.Background(), 4)
	require.True(t, ok)
	assert.Equal(t, "Bia", found.Name)

	lookups := store.customerLookups
	_, ok = cache.FindByWuid(context.Background(), "551188@w")
	require.True(t, ok)
	assert.Equal(t, lookups, store.customerLookups, "both indexes are back-filled by one miss")

	_, ok = cache.FindByWuid(context.Background(), "unknown@w")
	assert.False(t, ok)
}

func TestCustomerUpdateMergesPatch(t *testing.T) {
	store := newFakeStore()
	cache := NewCustomerCache(store, testLogger())

	created, err := cache.Create(context.Background(), &entity.Customer{Wuid: "551177@w", PushName: "push"})
	require.NoError(t, err)

	name := "Carla"
	updated, ok := cache.Update(context.Background(), created.CustomerID, CustomerPatch{Name: &name})
	require.True(t, ok)
	assert.Equal(t, "Carla", updated.Name)
	assert.Equal(t, "push", updated.PushName, "unpatched fields keep their value")
	assert.NotZero(t, updated.UpdatedAt)

	require.Eventually(t, func() bool {
		store.mu.Lock()
		defer store.mu.Unlock()
		return store.customers[created.CustomerID].Name == "Carla"
	}, time.Second, 5*time.Millisecond, "merged record reaches the store")
}

func TestCustomerUpdateUnknown(t *testing.T) {
	store := newFakeStore()
	cache := NewCustomerCache(store, testLogger())

	name := "nobody"
	_, ok := cache.Update(context.Background(), 999, CustomerPatch{Name: &name})
	assert.False(t, ok)
}

func TestCustomerRemoveKeepsDurableRecord(t *testing.T) {
	store := newFakeStore()
	cache := NewCustomerCache(store, testLogger())

	created, err := cache.Create(context.Background(), &entity.Customer{Wuid: "551166@w"})
	require.NoError(t, err)

	_, ok := cache.Remove(created.CustomerID)
	require.True(t, ok)

	// Eviction is memory-only; the next lookup restores from the store.
	restored, ok := cache.FindByWuid(context.Background(), "551166@w")
	require.True(t, ok)
	assert.Equal(t, created.CustomerID, restored.CustomerID)
}
