package cache

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"CallService/entity"
)

func TestServiceCallCenterMemoized(t *testing.T) {
	store := newFakeStore()
	store.callCenter = &entity.CallCenter{
		CallCenterID: 1,
		PhoneNumber:  "5511999",
		CompanyName:  "Acme",
	}
	service := NewService(store, Intervals{}, testLogger())
	defer service.Stop()

	first, err := service.CallCenter(context.Background(), "5511999")
	require.NoError(t, err)
	require.NotNil(t, first)
	assert.Equal(t, "Acme", first.CompanyName)
	assert.NotZero(t, first.LoggedAt)

	require.Eventually(t, func() bool {
		store.mu.Lock()
		defer store.mu.Unlock()
		return store.callCenter.LoggedAt == first.LoggedAt
	}, time.Second, 5*time.Millisecond, "logged_at stamp reaches the store")

	// Later calls never go back to the store, even for another number.
	store.mu.Lock()
	store.callCenter.CompanyName = "changed"
	store.mu.Unlock()

	second, err := service.CallCenter(context.Background(), "5511999")
	require.NoError(t, err)
	assert.Equal(t, "Acme", second.CompanyName)
}

func TestServiceCallCenterUnknownNumber(t *testing.T) {
	store := newFakeStore()
	service := NewService(store, Intervals{}, testLogger())
	defer service.Stop()

	got, err := service.CallCenter(context.Background(), "000")
	require.NoError(t, err)
	assert.Nil(t, got)
}
