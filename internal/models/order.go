package models

import (
	"time"

	"water-delivery/internal/apperr"
	"water-delivery/internal/money"
)

// OrderStatus represents the delivery lifecycle state of an order
type OrderStatus string

const (
	StatusOpen      OrderStatus = "OPEN"
	StatusInTransit OrderStatus = "IN_TRANSIT"
	StatusDelivered OrderStatus = "DELIVERED"
	StatusCanceled  OrderStatus = "CANCELED"
)

// AllStatuses lists every status in lifecycle order.
var AllStatuses = []OrderStatus{StatusOpen, StatusInTransit, StatusDelivered, StatusCanceled}

// orderTransitions holds the legal moves; terminal statuses have no entry.
var orderTransitions = map[OrderStatus][]OrderStatus{
	StatusOpen:      {StatusInTransit, StatusCanceled},
	StatusInTransit: {StatusDelivered, StatusCanceled},
}

// ParseOrderStatus validates a raw status value.
func ParseOrderStatus(raw string) (OrderStatus, error) {
	s := OrderStatus(raw)
	if !s.Valid() {
		return "", apperr.InvalidValue("status", "unknown order status", statusNames())
	}
	return s, nil
}

func (s OrderStatus) Valid() bool {
	switch s {
	case StatusOpen, StatusInTransit, StatusDelivered, StatusCanceled:
		return true
	}
	return false
}

// Terminal reports whether no transition out of s exists.
func (s OrderStatus) Terminal() bool {
	return s == StatusDelivered || s == StatusCanceled
}

func (s OrderStatus) CanTransitionTo(next OrderStatus) bool {
	for _, allowed := range orderTransitions[s] {
		if allowed == next {
			return true
		}
	}
	return false
}

func statusNames() []string {
	names := make([]string, len(AllStatuses))
	for i, s := range AllStatuses {
		names[i] = string(s)
	}
	return names
}

// PaymentMethod represents how the customer pays on delivery
type PaymentMethod string

const (
	PaymentCash PaymentMethod = "CASH"
	PaymentPix  PaymentMethod = "PIX"
	PaymentCard PaymentMethod = "CARD"
)

// AllPaymentMethods lists every accepted payment method.
var AllPaymentMethods = []PaymentMethod{PaymentCash, PaymentPix, PaymentCard}

// ParsePaymentMethod validates a raw payment method value.
func ParsePaymentMethod(raw string) (PaymentMethod, error) {
	switch m := PaymentMethod(raw); m {
	case PaymentCash, PaymentPix, PaymentCard:
		return m, nil
	}
	allowed := make([]string, len(AllPaymentMethods))
	for i, m := range AllPaymentMethods {
		allowed[i] = string(m)
	}
	return "", apperr.InvalidValue("payment_method", "unknown payment method", allowed)
}

// LineItem is an immutable snapshot of a product at order-creation time
type LineItem struct {
	ID        int64        `json:"id"`
	OrderID   int64        `json:"order_id"`
	ProductID int64        `json:"product_id"`
	Quantity  int          `json:"quantity"`
	UnitPrice money.Amount `json:"unit_price_minor_units"`
}

// Subtotal is unit price times quantity. Quantity and price bounds enforced at
// creation keep the product inside int64.
func (li LineItem) Subtotal() money.Amount {
	subtotal, _ := li.UnitPrice.Mul(int64(li.Quantity))
	return subtotal
}

// Order represents a delivery order together with its line items.
// The total is never stored; it is always derived from the items.
type Order struct {
	ID            int64         `json:"id"`
	CreatedAt     time.Time     `json:"created_at"`
	CustomerName  string        `json:"customer_name"`
	Phone         string        `json:"phone"`
	Address       string        `json:"address"`
	Note          string        `json:"note"`
	Status        OrderStatus   `json:"status"`
	PaymentMethod PaymentMethod `json:"payment_method"`
	ChangeDueFor  *money.Amount `json:"change_due_for_minor_units,omitempty"`
	CourierID     *int64        `json:"courier_id,omitempty"`
	Items         []LineItem    `json:"items"`
}

// Total sums the line-item snapshots.
func (o *Order) Total() money.Amount {
	var total money.Amount
	for _, item := range o.Items {
		total = total.Add(item.Subtotal())
	}
	return total
}

// Change is the amount handed back to a cash-paying customer. ok is false when
// no tendered amount was recorded.
func (o *Order) Change() (change money.Amount, ok bool) {
	if o.ChangeDueFor == nil {
		return 0, false
	}
	return o.ChangeDueFor.SubClamped(o.Total()), true
}

// ItemCount sums the quantities of all line items.
func (o *Order) ItemCount() int {
	n := 0
	for _, item := range o.Items {
		n += item.Quantity
	}
	return n
}

// ItemRequest is a single (product, quantity) pair requested by a caller
type ItemRequest struct {
	ProductID int64 `json:"product_id"`
	Quantity  int   `json:"quantity"`
}

// CreateOrderRequest represents the request to create a new order
type CreateOrderRequest struct {
	CustomerName  string        `json:"customer_name"`
	Phone         string        `json:"phone"`
	Address       string        `json:"address"`
	Note          string        `json:"note"`
	PaymentMethod PaymentMethod `json:"payment_method"`
	ChangeDueFor  *money.Amount `json:"change_due_for_minor_units,omitempty"`
	Items         []ItemRequest `json:"items"`
}

// OrderFilter narrows order listings. Zero values mean "any".
type OrderFilter struct {
	Status    OrderStatus
	CourierID int64
}
