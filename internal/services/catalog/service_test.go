package catalog

import (
	"context"
	"io"
	"sort"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"water-delivery/internal/apperr"
	"water-delivery/internal/logger"
	"water-delivery/internal/models"
	"water-delivery/internal/money"
)

type memStore struct {
	mu       sync.Mutex
	nextID   int64
	products map[int64]models.Product
}

func newMemStore() *memStore {
	return &memStore{products: map[int64]models.Product{}}
}

func (m *memStore) Create(_ context.Context, p models.Product) (models.Product, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.nextID++
	p.ID = m.nextID
	p.CreatedAt = time.Now()
	m.products[p.ID] = p
	return p, nil
}

func (m *memStore) filter(keep func(models.Product) bool) []models.Product {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := []models.Product{}
	for _, p := range m.products {
		if keep(p) {
			out = append(out, p)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID > out[j].ID })
	return out
}

func (m *memStore) ListActive(context.Context) ([]models.Product, error) {
	return m.filter(func(p models.Product) bool { return p.Active }), nil
}

func (m *memStore) ListAll(context.Context) ([]models.Product, error) {
	return m.filter(func(models.Product) bool { return true }), nil
}

func (m *memStore) Update(_ context.Context, id int64, patch models.ProductPatch) (models.Product, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	p, ok := m.products[id]
	if !ok {
		return models.Product{}, apperr.NotFound("product", id)
	}
	p = patch.Apply(p)
	m.products[id] = p
	return p, nil
}

func (m *memStore) ActiveByIDs(_ context.Context, ids []int64) ([]models.Product, error) {
	wanted := map[int64]bool{}
	for _, id := range ids {
		wanted[id] = true
	}
	return m.filter(func(p models.Product) bool { return p.Active && wanted[p.ID] }), nil
}

func (m *memStore) Count(context.Context) (int, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.products), nil
}

func newTestService() (*Service, *memStore) {
	store := newMemStore()
	return NewService(store, logger.NewWithWriter("test", "error", io.Discard)), store
}

func TestCreate(t *testing.T) {
	svc, _ := newTestService()
	ctx := context.Background()

	p, err := svc.Create(ctx, "  20L bottle ", 2300, true)
	require.NoError(t, err)
	assert.Equal(t, "20L bottle", p.Name)
	assert.Equal(t, money.Amount(2300), p.Price)
	assert.True(t, p.Active)

	tests := []struct {
		name  string
		pname string
		price money.Amount
	}{
		{"empty name", "   ", 100},
		{"negative price", "Gas", -1},
		{"price above cap", "Gas", models.MaxPrice + 1},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := svc.Create(ctx, tt.pname, tt.price, true)
			assert.ErrorIs(t, err, apperr.ErrValidation)
		})
	}
}

func TestUpdatePartialPatch(t *testing.T) {
	svc, _ := newTestService()
	ctx := context.Background()

	p, err := svc.Create(ctx, "Gas", 3500, true)
	require.NoError(t, err)

	price := money.Amount(3900)
	updated, err := svc.Update(ctx, p.ID, models.ProductPatch{Price: &price})
	require.NoError(t, err)
	assert.Equal(t, "Gas", updated.Name)
	assert.Equal(t, money.Amount(3900), updated.Price)
	assert.True(t, updated.Active)

	inactive := false
	updated, err = svc.Update(ctx, p.ID, models.ProductPatch{Active: &inactive})
	require.NoError(t, err)
	assert.False(t, updated.Active)
	assert.Equal(t, money.Amount(3900), updated.Price)

	_, err = svc.Update(ctx, 999, models.ProductPatch{Price: &price})
	assert.ErrorIs(t, err, apperr.ErrNotFound)

	empty := ""
	_, err = svc.Update(ctx, p.ID, models.ProductPatch{Name: &empty})
	assert.ErrorIs(t, err, apperr.ErrValidation)
}

func TestListActiveHidesInactive(t *testing.T) {
	svc, _ := newTestService()
	ctx := context.Background()

	_, err := svc.Create(ctx, "Water", 2300, true)
	require.NoError(t, err)
	_, err = svc.Create(ctx, "Old gas", 3000, false)
	require.NoError(t, err)

	active, err := svc.ListActive(ctx)
	require.NoError(t, err)
	require.Len(t, active, 1)
	assert.Equal(t, "Water", active[0].Name)

	all, err := svc.ListAll(ctx)
	require.NoError(t, err)
	assert.Len(t, all, 2)
}

func TestResolvePricesForOrderIsAllOrNothing(t *testing.T) {
	svc, _ := newTestService()
	ctx := context.Background()

	water, err := svc.Create(ctx, "Water", 2300, true)
	require.NoError(t, err)
	retired, err := svc.Create(ctx, "Retired", 1000, false)
	require.NoError(t, err)

	byID, err := svc.ResolvePricesForOrder(ctx, []int64{water.ID, water.ID})
	require.NoError(t, err)
	require.Len(t, byID, 1)
	assert.Equal(t, money.Amount(2300), byID[water.ID].Price)

	_, err = svc.ResolvePricesForOrder(ctx, []int64{water.ID, retired.ID})
	assert.ErrorIs(t, err, apperr.ErrValidation)
	assert.NotErrorIs(t, err, apperr.ErrNotFound)

	_, err = svc.ResolvePricesForOrder(ctx, []int64{water.ID, 404})
	assert.ErrorIs(t, err, apperr.ErrValidation)

	_, err = svc.ResolvePricesForOrder(ctx, nil)
	assert.ErrorIs(t, err, apperr.ErrValidation)
}

func TestSeedDefaults(t *testing.T) {
	svc, store := newTestService()
	ctx := context.Background()

	n, err := svc.SeedDefaults(ctx)
	require.NoError(t, err)
	assert.Equal(t, len(DefaultProducts), n)

	n, err = svc.SeedDefaults(ctx)
	require.NoError(t, err)
	assert.Zero(t, n)
	assert.Len(t, store.products, len(DefaultProducts))
}
