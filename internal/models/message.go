package models

import (
	"fmt"
	"time"

	"water-delivery/internal/money"
)

// OrderCreatedMessage is published once an order and its items are committed
type OrderCreatedMessage struct {
	OrderID       int64         `json:"order_id"`
	CustomerName  string        `json:"customer_name"`
	Address       string        `json:"address"`
	PaymentMethod PaymentMethod `json:"payment_method"`
	Total         money.Amount  `json:"total_minor_units"`
	ItemCount     int           `json:"item_count"`
	CreatedAt     time.Time     `json:"created_at"`
}

// StatusUpdateMessage represents a status update notification
type StatusUpdateMessage struct {
	OrderID   int64       `json:"order_id"`
	OldStatus OrderStatus `json:"old_status"`
	NewStatus OrderStatus `json:"new_status"`
	ChangedBy int64       `json:"changed_by"`
	Role      Role        `json:"changed_by_role"`
	Timestamp time.Time   `json:"timestamp"`
}

// NewOrderCreatedMessage creates an OrderCreatedMessage from a persisted order
func NewOrderCreatedMessage(o *Order) *OrderCreatedMessage {
	return &OrderCreatedMessage{
		OrderID:       o.ID,
		CustomerName:  o.CustomerName,
		Address:       o.Address,
		PaymentMethod: o.PaymentMethod,
		Total:         o.Total(),
		ItemCount:     o.ItemCount(),
		CreatedAt:     o.CreatedAt,
	}
}

// NewStatusUpdateMessage creates a StatusUpdateMessage for order status changes
func NewStatusUpdateMessage(orderID int64, oldStatus, newStatus OrderStatus, actor Principal) *StatusUpdateMessage {
	return &StatusUpdateMessage{
		OrderID:   orderID,
		OldStatus: oldStatus,
		NewStatus: newStatus,
		ChangedBy: actor.UserID,
		Role:      actor.Role,
		Timestamp: time.Now().UTC(),
	}
}

const RoutingKeyOrderCreated = "order.created"

// StatusRoutingKey generates a routing key for status update messages
func StatusRoutingKey(status OrderStatus) string {
	return fmt.Sprintf("order.status.%s", status)
}
