package customer

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"water-delivery/internal/apperr"
	"water-delivery/internal/database/dbtest"
	"water-delivery/internal/models"
)

func TestPostgresStoreCustomerLifecycle(t *testing.T) {
	store := NewPostgresStore(dbtest.Open(t))
	ctx := context.Background()
	day := time.Date(2024, 5, 17, 12, 0, 0, 0, time.UTC)

	first, err := store.Create(ctx, models.NewCustomer{Name: "Maria Silva", Address: "Rua A, 10"}, day)
	require.NoError(t, err)
	second, err := store.Create(ctx, models.NewCustomer{Name: "Mario Souza", Address: "Rua B, 20"}, day)
	require.NoError(t, err)

	assert.Equal(t, "CLI_20240517_000001", first.Code)
	assert.Equal(t, "CLI_20240517_000002", second.Code)
	assert.True(t, first.Active)

	found, err := store.Search(ctx, "MARI", 10)
	require.NoError(t, err)
	assert.Len(t, found, 2)

	phone := "11 99999-0000"
	updated, err := store.Update(ctx, first.ID, models.CustomerPatch{Phone: &phone})
	require.NoError(t, err)
	assert.Equal(t, "Maria Silva", updated.Name)
	require.NotNil(t, updated.Phone)
	assert.Equal(t, phone, *updated.Phone)

	require.NoError(t, store.SoftDelete(ctx, first.ID))
	active, err := store.ListActive(ctx)
	require.NoError(t, err)
	require.Len(t, active, 1)
	assert.Equal(t, second.ID, active[0].ID)

	// Deactivated customers stay readable by id.
	kept, err := store.Get(ctx, first.ID)
	require.NoError(t, err)
	assert.False(t, kept.Active)

	assert.ErrorIs(t, store.SoftDelete(ctx, 999), apperr.ErrNotFound)
}
