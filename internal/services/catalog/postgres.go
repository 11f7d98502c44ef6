package catalog

import (
	"context"
	"errors"
	"fmt"

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

func scanProduct(row pgx.Row) (models.Product, error) {
	var p models.Product
	err := row.Scan(&p.ID, &p.Name, &p.Price, &p.Active, &p.CreatedAt)
	return p, err
}

func (s *PostgresStore) Create(ctx context.Context, p models.Product) (models.Product, error) {
	created, err := scanProduct(s.db.QueryRow(ctx, database.InsertProductSQL, p.Name, p.Price, p.Active))
	if err != nil {
		return models.Product{}, fmt.Errorf("failed to insert product: %w", database.Classify(err))
	}
	return created, nil
}

func (s *PostgresStore) ListActive(ctx context.Context) ([]models.Product, error) {
	return s.list(ctx, database.ListActiveProductsSQL)
}

func (s *PostgresStore) ListAll(ctx context.Context) ([]models.Product, error) {
	return s.list(ctx, database.ListAllProductsSQL)
}

func (s *PostgresStore) ActiveByIDs(ctx context.Context, ids []int64) ([]models.Product, error) {
	return s.list(ctx, database.GetActiveProductsByIDsSQL, ids)
}

func (s *PostgresStore) list(ctx context.Context, sql string, args ...any) ([]models.Product, error) {
	rows, err := s.db.Query(ctx, sql, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query products: %w", database.Classify(err))
	}
	defer rows.Close()

	products := []models.Product{}
	for rows.Next() {
		p, err := scanProduct(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan product: %w", err)
		}
		products = append(products, p)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to query products: %w", database.Classify(err))
	}
	return products, nil
}

func (s *PostgresStore) Update(ctx context.Context, id int64, patch models.ProductPatch) (models.Product, error) {
	p, err := scanProduct(s.db.QueryRow(ctx, database.UpdateProductSQL, patch.Name, patch.Price, patch.Active, id))
	if errors.Is(err, pgx.ErrNoRows) {
		return models.Product{}, apperr.NotFound("product", id)
	}
	if err != nil {
		return models.Product{}, fmt.Errorf("failed to update product: %w", database.Classify(err))
	}
	return p, nil
}

func (s *PostgresStore) Count(ctx context.Context) (int, error) {
	var n int
	if err := s.db.QueryRow(ctx, database.CountProductsSQL).Scan(&n); err != nil {
		return 0, fmt.Errorf("failed to count products: %w", database.Classify(err))
	}
	return n, nil
}
