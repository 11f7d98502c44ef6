package report

import (
	"context"
	"fmt"

	"water-delivery/internal/database"
)

// PostgresSource reads report lines straight from the order tables
type PostgresSource struct {
	db *database.DB
}

func NewPostgresSource(db *database.DB) *PostgresSource {
	return &PostgresSource{db: db}
}

func (s *PostgresSource) Lines(ctx context.Context, rng Range, filter StatusFilter) ([]Line, error) {
	rows, err := s.db.Query(ctx, database.ReportLinesSQL, rng.From, rng.To, string(filter.Status))
	if err != nil {
		return nil, fmt.Errorf("failed to query report lines: %w", database.Classify(err))
	}
	defer rows.Close()

	lines := []Line{}
	for rows.Next() {
		var l Line
		err := rows.Scan(&l.OrderID, &l.CreatedAt, &l.CustomerName, &l.Address, &l.Status,
			&l.PaymentMethod, &l.ChangeDueFor, &l.ProductID, &l.ProductName, &l.Quantity, &l.UnitPrice)
		if err != nil {
			return nil, fmt.Errorf("failed to scan report line: %w", err)
		}
		lines = append(lines, l)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to query report lines: %w", database.Classify(err))
	}
	return lines, nil
}
