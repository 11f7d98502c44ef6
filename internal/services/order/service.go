// Package order implements the order aggregate: creation with price
// snapshots, the delivery status machine, role-gated transitions and
// courier assignment.
package order

import (
	"context"
	"fmt"
	"time"

	"water-delivery/internal/apperr"
	"water-delivery/internal/logger"
	"water-delivery/internal/models"
	"water-delivery/internal/money"
)

const publishTimeout = 5 * time.Second

// Repository persists orders together with their line items
type Repository interface {
	// CreateWithItems writes the order and all items atomically and fills in
	// the generated ids and creation time.
	CreateWithItems(ctx context.Context, o *models.Order) error
	ListWithItems(ctx context.Context, filter models.OrderFilter) ([]models.Order, error)
	GetWithItems(ctx context.Context, id int64) (models.Order, error)
	// UpdateStatus moves the order only if it is still in status from.
	UpdateStatus(ctx context.Context, id int64, from, to models.OrderStatus) (models.Order, error)
	AssignCourier(ctx context.Context, id, courierID int64) (models.Order, error)
}

// PriceResolver returns the active products for the given ids, all or nothing
type PriceResolver interface {
	ResolvePricesForOrder(ctx context.Context, ids []int64) (map[int64]models.Product, error)
}

// UserDirectory looks up the staff member a courier assignment targets
type UserDirectory interface {
	GetUser(ctx context.Context, id int64) (models.User, error)
}

// EventPublisher announces committed order changes
type EventPublisher interface {
	PublishOrderCreated(ctx context.Context, msg *models.OrderCreatedMessage) error
	PublishStatusUpdate(ctx context.Context, msg *models.StatusUpdateMessage) error
}

type Service struct {
	repo      Repository
	prices    PriceResolver
	users     UserDirectory
	publisher EventPublisher
	logger    *logger.Logger
}

// NewService creates the order service. publisher may be nil when events are
// disabled.
func NewService(repo Repository, prices PriceResolver, users UserDirectory, publisher EventPublisher, log *logger.Logger) *Service {
	return &Service{
		repo:      repo,
		prices:    prices,
		users:     users,
		publisher: publisher,
		logger:    log,
	}
}

// CreateOrder validates the request, snapshots current prices and persists
// the order with status OPEN.
func (s *Service) CreateOrder(ctx context.Context, req *models.CreateOrderRequest) (models.Order, error) {
	requestID := logger.RequestID(ctx)

	if err := ValidateCreateRequest(req); err != nil {
		return models.Order{}, err
	}

	ids := make([]int64, len(req.Items))
	for i, item := range req.Items {
		ids[i] = item.ProductID
	}
	products, err := s.prices.ResolvePricesForOrder(ctx, ids)
	if err != nil {
		return models.Order{}, err
	}

	order := models.Order{
		CustomerName:  req.CustomerName,
		Phone:         req.Phone,
		Address:       req.Address,
		Note:          req.Note,
		Status:        models.StatusOpen,
		PaymentMethod: req.PaymentMethod,
		Items:         make([]models.LineItem, len(req.Items)),
	}

	var total money.Amount
	for i, item := range req.Items {
		product := products[item.ProductID]
		subtotal, err := product.Price.Mul(int64(item.Quantity))
		if err != nil {
			return models.Order{}, err
		}
		total = total.Add(subtotal)
		order.Items[i] = models.LineItem{
			ProductID: product.ID,
			Quantity:  item.Quantity,
			UnitPrice: product.Price,
		}
	}

	if order.PaymentMethod == models.PaymentCash && req.ChangeDueFor != nil {
		if _, err := req.ChangeDueFor.Sub(total); err != nil {
			return models.Order{}, apperr.Validation("change_due_for_minor_units", "amount tendered must cover the total")
		}
		tendered := *req.ChangeDueFor
		order.ChangeDueFor = &tendered
	}

	if err := s.repo.CreateWithItems(ctx, &order); err != nil {
		return models.Order{}, fmt.Errorf("failed to save order: %w", err)
	}

	s.logger.Info("order_created", fmt.Sprintf("Order %d created", order.ID), requestID, map[string]any{
		"order_id":       order.ID,
		"customer_name":  order.CustomerName,
		"payment_method": order.PaymentMethod,
		"total":          total.String(),
		"items":          len(order.Items),
	})

	s.publish(ctx, "order.created", func(ctx context.Context) error {
		return s.publisher.PublishOrderCreated(ctx, models.NewOrderCreatedMessage(&order))
	})

	return order, nil
}

// ChangeStatus moves an order through the status machine on behalf of actor.
// The checks run in order: status value, order existence, transition
// legality, role permission.
func (s *Service) ChangeStatus(ctx context.Context, orderID int64, rawStatus string, actor models.Principal) (models.Order, error) {
	next, err := models.ParseOrderStatus(rawStatus)
	if err != nil {
		return models.Order{}, err
	}

	current, err := s.repo.GetWithItems(ctx, orderID)
	if err != nil {
		return models.Order{}, err
	}

	if !current.Status.CanTransitionTo(next) {
		return models.Order{}, apperr.InvalidTransition(string(current.Status), string(next))
	}
	if !actor.Role.MayTransition(current.Status, next) {
		return models.Order{}, apperr.Permission(fmt.Sprintf("role %s may not move an order from %s to %s", actor.Role, current.Status, next))
	}
	if actor.Role == models.RoleCourier && current.CourierID != nil && *current.CourierID != actor.UserID {
		return models.Order{}, apperr.Permission("order is assigned to another courier")
	}

	updated, err := s.repo.UpdateStatus(ctx, orderID, current.Status, next)
	if err != nil {
		return models.Order{}, err
	}

	s.logger.Info("order_status_changed", fmt.Sprintf("Order %d moved to %s", orderID, next), logger.RequestID(ctx), map[string]any{
		"order_id":   orderID,
		"old_status": current.Status,
		"new_status": next,
		"changed_by": actor.UserID,
		"role":       actor.Role,
	})

	s.publish(ctx, "order.status_changed", func(ctx context.Context) error {
		return s.publisher.PublishStatusUpdate(ctx, models.NewStatusUpdateMessage(orderID, current.Status, next, actor))
	})

	return updated, nil
}

// AssignCourier hands an open or in-transit order to an active courier
func (s *Service) AssignCourier(ctx context.Context, orderID, courierID int64, actor models.Principal) (models.Order, error) {
	if actor.Role != models.RoleAdmin && actor.Role != models.RoleOrderTaker {
		return models.Order{}, apperr.Permission(fmt.Sprintf("role %s may not assign couriers", actor.Role))
	}
	if courierID <= 0 {
		return models.Order{}, apperr.Validation("courier_id", "courier id is required")
	}

	courier, err := s.users.GetUser(ctx, courierID)
	if err != nil {
		return models.Order{}, err
	}
	if courier.Role != models.RoleCourier {
		return models.Order{}, apperr.Validation("courier_id", fmt.Sprintf("user %d is not a courier", courierID))
	}
	if !courier.Active {
		return models.Order{}, apperr.Validation("courier_id", fmt.Sprintf("courier %d is inactive", courierID))
	}

	updated, err := s.repo.AssignCourier(ctx, orderID, courierID)
	if err != nil {
		return models.Order{}, err
	}

	s.logger.Info("courier_assigned", fmt.Sprintf("Order %d assigned to courier %d", orderID, courierID), logger.RequestID(ctx), map[string]any{
		"order_id":    orderID,
		"courier_id":  courierID,
		"assigned_by": actor.UserID,
	})
	return updated, nil
}

// List returns orders with their items, newest first
func (s *Service) List(ctx context.Context, filter models.OrderFilter) ([]models.Order, error) {
	if filter.Status != "" && !filter.Status.Valid() {
		_, err := models.ParseOrderStatus(string(filter.Status))
		return nil, err
	}
	return s.repo.ListWithItems(ctx, filter)
}

func (s *Service) Get(ctx context.Context, orderID int64) (models.Order, error) {
	return s.repo.GetWithItems(ctx, orderID)
}

// publish runs fn after a committed write. Failures are logged only; the
// write has already happened and must not be reported as failed.
func (s *Service) publish(ctx context.Context, event string, fn func(ctx context.Context) error) {
	if s.publisher == nil {
		return
	}

	pubCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), publishTimeout)
	defer cancel()

	if err := fn(pubCtx); err != nil {
		s.logger.Error("event_publish_failed", "Failed to publish order event", logger.RequestID(ctx), err, map[string]any{
			"event": event,
		})
	}
}
