// Package report computes the admin revenue reports. Every figure is derived
// from line-item price snapshots; the live catalog is never consulted for
// money.
package report

import (
	"context"
	"fmt"
	"time"

	"golang.org/x/sync/errgroup"

	"water-delivery/internal/logger"
	"water-delivery/internal/models"
	"water-delivery/internal/money"
)

const (
	DefaultTopProductsLimit = 50
	DefaultOrderListLimit   = 200
	maxLimit                = 1000

	// UnspecifiedPayment labels orders stored without a payment method
	UnspecifiedPayment = "UNSPECIFIED"
)

// Line is one order item joined with its order and product
type Line struct {
	OrderID       int64
	CreatedAt     time.Time
	CustomerName  string
	Address       string
	Status        models.OrderStatus
	PaymentMethod models.PaymentMethod
	ChangeDueFor  *money.Amount
	ProductID     int64
	ProductName   string
	Quantity      int
	UnitPrice     money.Amount
}

// LineSource loads report lines for a range, optionally filtered by status
type LineSource interface {
	Lines(ctx context.Context, rng Range, filter StatusFilter) ([]Line, error)
}

// Summary holds the headline figures for a range
type Summary struct {
	OrderCount       int          `json:"order_count"`
	TotalRevenue     money.Amount `json:"total_revenue_minor_units"`
	AverageOrder     money.Amount `json:"average_order_value_minor_units"`
	ItemsSold        int          `json:"items_sold"`
	TotalChangeDue   money.Amount `json:"total_change_due_minor_units"`
	CashRevenue      money.Amount `json:"cash_revenue_minor_units"`
	CashChangeIssued money.Amount `json:"cash_change_issued_minor_units"`
	CashTendered     money.Amount `json:"cash_tendered_minor_units"`
}

type StatusTotal struct {
	Status       models.OrderStatus `json:"status"`
	Count        int                `json:"count"`
	TotalRevenue money.Amount       `json:"total_revenue_minor_units"`
}

type PaymentTotal struct {
	PaymentMethod  string       `json:"payment_method"`
	Count          int          `json:"count"`
	TotalRevenue   money.Amount `json:"total_revenue_minor_units"`
	TotalChangeDue money.Amount `json:"total_change_due_minor_units"`
}

type ProductTotal struct {
	ProductID    int64        `json:"product_id"`
	ProductName  string       `json:"product_name"`
	QtySold      int          `json:"qty_sold"`
	TotalRevenue money.Amount `json:"total_revenue_minor_units"`
}

type OrderSummary struct {
	ID            int64              `json:"id"`
	CreatedAt     time.Time          `json:"created_at"`
	CustomerName  string             `json:"customer_name"`
	Address       string             `json:"address"`
	Status        models.OrderStatus `json:"status"`
	PaymentMethod string             `json:"payment_method"`
	Total         money.Amount       `json:"total_minor_units"`
	ChangeDueFor  *money.Amount      `json:"change_due_for_minor_units,omitempty"`
	Change        *money.Amount      `json:"change_minor_units,omitempty"`
	ItemCount     int                `json:"item_count"`
}

// Dashboard bundles the report views for one range
type Dashboard struct {
	Status      string         `json:"status_filter"`
	Summary     Summary        `json:"summary"`
	ByStatus    []StatusTotal  `json:"by_status"`
	ByPayment   []PaymentTotal `json:"by_payment_method"`
	TopProducts []ProductTotal `json:"top_products"`
}

type Service struct {
	source        LineSource
	defaultStatus StatusFilter
	logger        *logger.Logger
}

func NewService(source LineSource, defaultStatus StatusFilter, log *logger.Logger) *Service {
	return &Service{source: source, defaultStatus: defaultStatus, logger: log}
}

// DefaultStatus is the filter applied when a request names none
func (s *Service) DefaultStatus() StatusFilter {
	return s.defaultStatus
}

func (s *Service) Summary(ctx context.Context, rng Range, filter StatusFilter) (Summary, error) {
	orders, err := s.load(ctx, rng, filter)
	if err != nil {
		return Summary{}, err
	}
	return summarize(orders), nil
}

// ByStatus always spans every status; the status filter does not apply
func (s *Service) ByStatus(ctx context.Context, rng Range) ([]StatusTotal, error) {
	orders, err := s.load(ctx, rng, StatusFilter{})
	if err != nil {
		return nil, err
	}
	return byStatus(orders), nil
}

func (s *Service) ByPaymentMethod(ctx context.Context, rng Range, filter StatusFilter) ([]PaymentTotal, error) {
	orders, err := s.load(ctx, rng, filter)
	if err != nil {
		return nil, err
	}
	return byPayment(orders), nil
}

func (s *Service) TopProducts(ctx context.Context, rng Range, filter StatusFilter, limit int) ([]ProductTotal, error) {
	lines, err := s.source.Lines(ctx, rng, filter)
	if err != nil {
		return nil, fmt.Errorf("failed to load report lines: %w", err)
	}
	return topProducts(lines, clampLimit(limit, DefaultTopProductsLimit)), nil
}

func (s *Service) OrderList(ctx context.Context, rng Range, filter StatusFilter, limit int) ([]OrderSummary, error) {
	orders, err := s.load(ctx, rng, filter)
	if err != nil {
		return nil, err
	}
	return orderList(orders, clampLimit(limit, DefaultOrderListLimit)), nil
}

// Dashboard loads the filtered and the unfiltered line sets concurrently and
// builds every view from them.
func (s *Service) Dashboard(ctx context.Context, rng Range, filter StatusFilter) (Dashboard, error) {
	var filtered, all []Line

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		filtered, err = s.source.Lines(gctx, rng, filter)
		return err
	})
	g.Go(func() error {
		var err error
		all, err = s.source.Lines(gctx, rng, StatusFilter{})
		return err
	})
	if err := g.Wait(); err != nil {
		return Dashboard{}, fmt.Errorf("failed to load report lines: %w", err)
	}

	orders := groupOrders(filtered)
	s.logger.Debug("dashboard_built", "Dashboard report computed", logger.RequestID(ctx), map[string]any{
		"status_filter": filter.String(),
		"orders":        len(orders),
		"lines":         len(filtered),
	})

	return Dashboard{
		Status:      filter.String(),
		Summary:     summarize(orders),
		ByStatus:    byStatus(groupOrders(all)),
		ByPayment:   byPayment(orders),
		TopProducts: topProducts(filtered, DefaultTopProductsLimit),
	}, nil
}

func (s *Service) load(ctx context.Context, rng Range, filter StatusFilter) ([]orderAgg, error) {
	lines, err := s.source.Lines(ctx, rng, filter)
	if err != nil {
		return nil, fmt.Errorf("failed to load report lines: %w", err)
	}
	return groupOrders(lines), nil
}

func clampLimit(limit, fallback int) int {
	if limit <= 0 {
		return fallback
	}
	return min(limit, maxLimit)
}
