package cache

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"CallService/entity"
)

func TestSectorAllLoadsOnce(t *testing.T) {
	store := newFakeStore()
	store.sectors = []entity.Sector{
		{SectorID: 2, Name: "Financeiro"},
		{SectorID: 1, Name: "Suporte"},
	}
	cache := NewSectorCache(store, 0, testLogger())

	all := cache.All(context.Background())
	require.Len(t, all, 2)
	assert.Equal(t, int64(1), all[0].SectorID, "ordered by id")
	assert.Equal(t, int64(2), all[1].SectorID)
}

func TestSectorByNameCaseInsensitive(t *testing.T) {
	store := newFakeStore()
	store.sectors = []entity.Sector{{SectorID: 1, Name: "Suporte Técnico"}}
	cache := NewSectorCache(store, 0, testLogger())

	found, ok := cache.ByName(context.Background(), "  suporte técnico ")
	require.True(t, ok)
	assert.Equal(t, int64(1), found.SectorID)

	_, ok = cache.ByName(context.Background(), "vendas")
	assert.False(t, ok)
}

func TestSectorByID(t *testing.T) {
	store := newFakeStore()
	store.sectors = []entity.Sector{{SectorID: 3, Name: "Vendas"}}
	cache := NewSectorCache(store, 0, testLogger())

	found, ok := cache.ByID(context.Background(), 3)
	require.True(t, ok)
	assert.Equal(t, "Vendas", found.Name)

	_, ok = cache.ByID(context.Background(), 8)
	assert.False(t, ok)
}
