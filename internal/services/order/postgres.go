package order

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"

	"water-delivery/internal/apperr"
	"water-delivery/internal/database"
	"water-delivery/internal/models"
)

// PostgresRepository implements Repository on PostgreSQL
type PostgresRepository struct {
	db *database.DB
}

func NewPostgresRepository(db *database.DB) *PostgresRepository {
	return &PostgresRepository{db: db}
}

func scanOrder(row pgx.Row) (models.Order, error) {
	var o models.Order
	err := row.Scan(&o.ID, &o.CustomerName, &o.Phone, &o.Address, &o.Note, &o.Status,
		&o.PaymentMethod, &o.ChangeDueFor, &o.CourierID, &o.CreatedAt)
	return o, err
}

// CreateWithItems inserts the order row and every item row in one transaction
func (r *PostgresRepository) CreateWithItems(ctx context.Context, o *models.Order) error {
	err := r.db.WithTx(ctx, func(tx pgx.Tx) error {
		err := tx.QueryRow(ctx, database.InsertOrderSQL,
			o.CustomerName, o.Phone, o.Address, o.Note, o.Status, o.PaymentMethod, o.ChangeDueFor,
		).Scan(&o.ID, &o.CreatedAt)
		if err != nil {
			return fmt.Errorf("insert order: %w", err)
		}

		for i := range o.Items {
			item := &o.Items[i]
			item.OrderID = o.ID
			err := tx.QueryRow(ctx, database.InsertOrderItemSQL,
				item.OrderID, item.ProductID, item.Quantity, item.UnitPrice,
			).Scan(&item.ID)
			if err != nil {
				return fmt.Errorf("insert order item %d: %w", i, err)
			}
		}
		return nil
	})
	if err != nil {
		o.ID = 0
		return database.Classify(err)
	}
	return nil
}

func (r *PostgresRepository) GetWithItems(ctx context.Context, id int64) (models.Order, error) {
	o, err := scanOrder(r.db.QueryRow(ctx, database.GetOrderSQL, id))
	if errors.Is(err, pgx.ErrNoRows) {
		return models.Order{}, apperr.NotFound("order", id)
	}
	if err != nil {
		return models.Order{}, fmt.Errorf("failed to get order: %w", database.Classify(err))
	}

	orders := []models.Order{o}
	if err := r.attachItems(ctx, orders); err != nil {
		return models.Order{}, err
	}
	return orders[0], nil
}

func (r *PostgresRepository) ListWithItems(ctx context.Context, filter models.OrderFilter) ([]models.Order, error) {
	rows, err := r.db.Query(ctx, database.ListOrdersSQL, string(filter.Status), filter.CourierID)
	if err != nil {
		return nil, fmt.Errorf("failed to list orders: %w", database.Classify(err))
	}
	defer rows.Close()

	orders := []models.Order{}
	for rows.Next() {
		o, err := scanOrder(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan order: %w", err)
		}
		orders = append(orders, o)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to list orders: %w", database.Classify(err))
	}

	if err := r.attachItems(ctx, orders); err != nil {
		return nil, err
	}
	return orders, nil
}

// attachItems loads the items of all orders with a single query
func (r *PostgresRepository) attachItems(ctx context.Context, orders []models.Order) error {
	if len(orders) == 0 {
		return nil
	}

	ids := make([]int64, len(orders))
	index := make(map[int64]int, len(orders))
	for i, o := range orders {
		ids[i] = o.ID
		index[o.ID] = i
		orders[i].Items = []models.LineItem{}
	}

	rows, err := r.db.Query(ctx, database.ListOrderItemsSQL, ids)
	if err != nil {
		return fmt.Errorf("failed to list order items: %w", database.Classify(err))
	}
	defer rows.Close()

	for rows.Next() {
		var item models.LineItem
		if err := rows.Scan(&item.ID, &item.OrderID, &item.ProductID, &item.Quantity, &item.UnitPrice); err != nil {
			return fmt.Errorf("failed to scan order item: %w", err)
		}
		i := index[item.OrderID]
		orders[i].Items = append(orders[i].Items, item)
	}
	if err := rows.Err(); err != nil {
		return fmt.Errorf("failed to list order items: %w", database.Classify(err))
	}
	return nil
}

// UpdateStatus applies the transition only while the stored status still
// equals from, so the legality check and the write cannot interleave with a
// concurrent change.
func (r *PostgresRepository) UpdateStatus(ctx context.Context, id int64, from, to models.OrderStatus) (models.Order, error) {
	var updated int64
	err := r.db.QueryRow(ctx, database.UpdateOrderStatusSQL, to, id, from).Scan(&updated)
	if errors.Is(err, pgx.ErrNoRows) {
		current, getErr := r.GetWithItems(ctx, id)
		if getErr != nil {
			return models.Order{}, getErr
		}
		return models.Order{}, apperr.InvalidTransition(string(current.Status), string(to))
	}
	if err != nil {
		return models.Order{}, fmt.Errorf("failed to update order status: %w", database.Classify(err))
	}
	return r.GetWithItems(ctx, id)
}

func (r *PostgresRepository) AssignCourier(ctx context.Context, id, courierID int64) (models.Order, error) {
	var updated int64
	err := r.db.QueryRow(ctx, database.AssignCourierSQL, courierID, id).Scan(&updated)
	if errors.Is(err, pgx.ErrNoRows) {
		current, getErr := r.GetWithItems(ctx, id)
		if getErr != nil {
			return models.Order{}, getErr
		}
		return models.Order{}, closedOrderError(current)
	}
	if err != nil {
		return models.Order{}, fmt.Errorf("failed to assign courier: %w", database.Classify(err))
	}
	return r.GetWithItems(ctx, id)
}

func closedOrderError(o models.Order) error {
	return &apperr.Error{
		Kind:    apperr.ErrInvalidTransition,
		Message: fmt.Sprintf("order %d is %s; couriers can only be assigned to open orders", o.ID, o.Status),
	}
}
