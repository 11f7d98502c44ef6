package order

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"water-delivery/internal/apperr"
	"water-delivery/internal/database"
	"water-delivery/internal/database/dbtest"
	"water-delivery/internal/models"
	"water-delivery/internal/money"
)

func seedProduct(t *testing.T, db *database.DB, name string, price money.Amount) int64 {
	t.Helper()
	var id int64
	err := db.QueryRow(context.Background(),
		`INSERT INTO products (name, price_minor_units) VALUES ($1, $2) RETURNING id`, name, price).Scan(&id)
	require.NoError(t, err)
	return id
}

func TestPostgresRepositoryCreateAndGet(t *testing.T) {
	db := dbtest.Open(t)
	repo := NewPostgresRepository(db)
	ctx := context.Background()

	bottle := seedProduct(t, db, "20L bottle with water", 2300)
	tendered := money.Amount(5000)

	o := &models.Order{
		CustomerName:  "Maria",
		Address:       "Rua A, 10",
		Status:        models.StatusOpen,
		PaymentMethod: models.PaymentCash,
		ChangeDueFor:  &tendered,
		Items:         []models.LineItem{{ProductID: bottle, Quantity: 2, UnitPrice: 2300}},
	}
	require.NoError(t, repo.CreateWithItems(ctx, o))
	require.NotZero(t, o.ID)

	// A later price change must not reach the stored snapshot.
	require.NoError(t, db.Exec(ctx, `UPDATE products SET price_minor_units = 9999 WHERE id = $1`, bottle))

	got, err := repo.GetWithItems(ctx, o.ID)
	require.NoError(t, err)
	require.Len(t, got.Items, 1)
	assert.Equal(t, money.Amount(4600), got.Total())
	change, ok := got.Change()
	require.True(t, ok)
	assert.Equal(t, money.Amount(400), change)

	_, err = repo.GetWithItems(ctx, o.ID+100)
	assert.ErrorIs(t, err, apperr.ErrNotFound)
}

func TestPostgresRepositoryCreateRollsBack(t *testing.T) {
	db := dbtest.Open(t)
	repo := NewPostgresRepository(db)
	ctx := context.Background()

	bottle := seedProduct(t, db, "Empty 20L bottle", 3500)
	o := &models.Order{
		CustomerName:  "Joao",
		Address:       "Rua B, 2",
		Status:        models.StatusOpen,
		PaymentMethod: models.PaymentPix,
		Items: []models.LineItem{
			{ProductID: bottle, Quantity: 1, UnitPrice: 3500},
			{ProductID: bottle + 500, Quantity: 1, UnitPrice: 100},
		},
	}
	require.Error(t, repo.CreateWithItems(ctx, o))
	assert.Zero(t, o.ID)

	var count int
	require.NoError(t, db.QueryRow(ctx, `SELECT COUNT(*) FROM orders`).Scan(&count))
	assert.Zero(t, count)
}

func TestPostgresRepositoryUpdateStatusGuard(t *testing.T) {
	db := dbtest.Open(t)
	repo := NewPostgresRepository(db)
	ctx := context.Background()

	refill := seedProduct(t, db, "20L water refill", 1050)
	o := &models.Order{
		CustomerName:  "Ana",
		Address:       "Rua C, 3",
		Status:        models.StatusOpen,
		PaymentMethod: models.PaymentCard,
		Items:         []models.LineItem{{ProductID: refill, Quantity: 3, UnitPrice: 1050}},
	}
	require.NoError(t, repo.CreateWithItems(ctx, o))

	updated, err := repo.UpdateStatus(ctx, o.ID, models.StatusOpen, models.StatusInTransit)
	require.NoError(t, err)
	assert.Equal(t, models.StatusInTransit, updated.Status)

	// A second writer that still believes the order is OPEN loses.
	_, err = repo.UpdateStatus(ctx, o.ID, models.StatusOpen, models.StatusCanceled)
	assert.ErrorIs(t, err, apperr.ErrInvalidTransition)

	_, err = repo.UpdateStatus(ctx, o.ID+100, models.StatusOpen, models.StatusCanceled)
	assert.ErrorIs(t, err, apperr.ErrNotFound)

	list, err := repo.ListWithItems(ctx, models.OrderFilter{Status: models.StatusInTransit})
	require.NoError(t, err)
	require.Len(t, list, 1)
	assert.Len(t, list[0].Items, 1)
}
