package customer

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"

	"water-delivery/internal/apperr"
	"water-delivery/internal/database"
	"water-delivery/internal/models"
)

// PostgresStore implements Store on PostgreSQL
type PostgresStore struct {
	db *database.DB
}

func NewPostgresStore(db *database.DB) *PostgresStore {
	return &PostgresStore{db: db}
}

func scanCustomer(row pgx.Row) (models.Customer, error) {
	var c models.Customer
	err := row.Scan(&c.ID, &c.Code, &c.Name, &c.Address, &c.ReferencePoint, &c.Phone, &c.TaxID, &c.Active, &c.CreatedAt)
	return c, err
}

// Create draws the id from the table sequence first so the code derived from
// it is unique without a retry loop.
func (s *PostgresStore) Create(ctx context.Context, req models.NewCustomer, registeredAt time.Time) (models.Customer, error) {
	var created models.Customer
	err := s.db.WithTx(ctx, func(tx pgx.Tx) error {
		var id int64
		if err := tx.QueryRow(ctx, database.NextCustomerIDSQL).Scan(&id); err != nil {
			return err
		}

		code := models.GenerateCustomerCode(registeredAt, id)
		c, err := scanCustomer(tx.QueryRow(ctx, database.InsertCustomerSQL,
			id, code, req.Name, req.Address, req.ReferencePoint, req.Phone, req.TaxID))
		if err != nil {
			return err
		}
		created = c
		return nil
	})
	if err != nil {
		return models.Customer{}, fmt.Errorf("failed to insert customer: %w", database.Classify(err))
	}
	return created, nil
}

func (s *PostgresStore) Get(ctx context.Context, id int64) (models.Customer, error) {
	c, err := scanCustomer(s.db.QueryRow(ctx, database.GetCustomerSQL, id))
	if errors.Is(err, pgx.ErrNoRows) {
		return models.Customer{}, apperr.NotFound("customer", id)
	}
	if err != nil {
		return models.Customer{}, fmt.Errorf("failed to get customer: %w", database.Classify(err))
	}
	return c, nil
}

func (s *PostgresStore) Update(ctx context.Context, id int64, patch models.CustomerPatch) (models.Customer, error) {
	c, err := scanCustomer(s.db.QueryRow(ctx, database.UpdateCustomerSQL,
		patch.Name, patch.Address, patch.ReferencePoint, patch.Phone, patch.TaxID, id))
	if errors.Is(err, pgx.ErrNoRows) {
		return models.Customer{}, apperr.NotFound("customer", id)
	}
	if err != nil {
		return models.Customer{}, fmt.Errorf("failed to update customer: %w", database.Classify(err))
	}
	return c, nil
}

func (s *PostgresStore) SoftDelete(ctx context.Context, id int64) error {
	var deleted int64
	err := s.db.QueryRow(ctx, database.SoftDeleteCustomerSQL, id).Scan(&deleted)
	if errors.Is(err, pgx.ErrNoRows) {
		return apperr.NotFound("customer", id)
	}
	if err != nil {
		return fmt.Errorf("failed to deactivate customer: %w", database.Classify(err))
	}
	return nil
}

func (s *PostgresStore) ListActive(ctx context.Context) ([]models.Customer, error) {
	return s.list(ctx, database.ListActiveCustomersSQL)
}

func (s *PostgresStore) Search(ctx context.Context, query string, limit int) ([]models.Customer, error) {
	return s.list(ctx, database.SearchCustomersSQL, query, limit)
}

func (s *PostgresStore) list(ctx context.Context, sql string, args ...any) ([]models.Customer, error) {
	rows, err := s.db.Query(ctx, sql, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query customers: %w", database.Classify(err))
	}
	defer rows.Close()

	customers := []models.Customer{}
	for rows.Next() {
		c, err := scanCustomer(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan customer: %w", err)
		}
		customers = append(customers, c)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to query customers: %w", database.Classify(err))
	}
	return customers, nil
}
