package models

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"water-delivery/internal/apperr"
	"water-delivery/internal/money"
)

func TestParseOrderStatus(t *testing.T) {
	s, err := ParseOrderStatus("IN_TRANSIT")
	require.NoError(t, err)
	assert.Equal(t, StatusInTransit, s)

	_, err = ParseOrderStatus("SHIPPED")
	require.ErrorIs(t, err, apperr.ErrValidation)
	d, ok := apperr.Details(err)
	require.True(t, ok)
	assert.Equal(t, []string{"OPEN", "IN_TRANSIT", "DELIVERED", "CANCELED"}, d.Allowed)
}

func TestOrderStatusTransitions(t *testing.T) {
	tests := []struct {
		from, to OrderStatus
		want     bool
	}{
		{StatusOpen, StatusInTransit, true},
		{StatusOpen, StatusCanceled, true},
		{StatusOpen, StatusDelivered, false},
		{StatusOpen, StatusOpen, false},
		{StatusInTransit, StatusDelivered, true},
		{StatusInTransit, StatusCanceled, true},
		{StatusInTransit, StatusOpen, false},
		{StatusDelivered, StatusCanceled, false},
		{StatusDelivered, StatusOpen, false},
		{StatusCanceled, StatusOpen, false},
		{StatusCanceled, StatusInTransit, false},
	}

	for _, tt := range tests {
		t.Run(string(tt.from)+"->"+string(tt.to), func(t *testing.T) {
			assert.Equal(t, tt.want, tt.from.CanTransitionTo(tt.to))
		})
	}
}

func TestTerminalStatusesHaveNoExit(t *testing.T) {
	for _, from := range []OrderStatus{StatusDelivered, StatusCanceled} {
		assert.True(t, from.Terminal())
		for _, to := range AllStatuses {
			assert.False(t, from.CanTransitionTo(to), "%s -> %s", from, to)
		}
	}
	assert.False(t, StatusOpen.Terminal())
	assert.False(t, StatusInTransit.Terminal())
}

func TestRoleMayTransition(t *testing.T) {
	tests := []struct {
		role     Role
		from, to OrderStatus
		want     bool
	}{
		{RoleAdmin, StatusOpen, StatusCanceled, true},
		{RoleAdmin, StatusInTransit, StatusDelivered, true},
		{RoleOrderTaker, StatusOpen, StatusInTransit, true},
		{RoleOrderTaker, StatusOpen, StatusCanceled, false},
		{RoleOrderTaker, StatusInTransit, StatusDelivered, false},
		{RoleCourier, StatusOpen, StatusInTransit, false},
		{RoleCourier, StatusInTransit, StatusDelivered, true},
		{RoleCourier, StatusInTransit, StatusCanceled, true},
		{RoleCourier, StatusOpen, StatusCanceled, false},
		{Role("GUEST"), StatusOpen, StatusInTransit, false},
	}

	for _, tt := range tests {
		t.Run(string(tt.role)+":"+string(tt.from)+"->"+string(tt.to), func(t *testing.T) {
			assert.Equal(t, tt.want, tt.role.MayTransition(tt.from, tt.to))
		})
	}
}

func TestOrderTotalAndChange(t *testing.T) {
	tendered := money.Amount(5000)
	o := &Order{
		PaymentMethod: PaymentCash,
		ChangeDueFor:  &tendered,
		Items: []LineItem{
			{ProductID: 1, Quantity: 2, UnitPrice: 2300},
		},
	}

	assert.Equal(t, money.Amount(4600), o.Total())
	assert.Equal(t, 2, o.ItemCount())

	change, ok := o.Change()
	require.True(t, ok)
	assert.Equal(t, money.Amount(400), change)

	o.ChangeDueFor = nil
	_, ok = o.Change()
	assert.False(t, ok)
}

func TestParsePaymentMethod(t *testing.T) {
	m, err := ParsePaymentMethod("PIX")
	require.NoError(t, err)
	assert.Equal(t, PaymentPix, m)

	_, err = ParsePaymentMethod("BITCOIN")
	assert.ErrorIs(t, err, apperr.ErrValidation)
}

func TestGenerateCustomerCode(t *testing.T) {
	date := time.Date(2026, 10, 18, 15, 0, 0, 0, time.UTC)
	assert.Equal(t, "CLI_20261018_000042", GenerateCustomerCode(date, 42))
	assert.NotEqual(t, GenerateCustomerCode(date, 1), GenerateCustomerCode(date, 2))
}

func TestPatches(t *testing.T) {
	name := "20L bottle"
	price := money.Amount(2500)
	p := ProductPatch{Price: &price}.Apply(Product{ID: 1, Name: name, Price: 2300, Active: true})
	assert.Equal(t, Product{ID: 1, Name: name, Price: 2500, Active: true}, p)

	addr := "Rua B, 20"
	c := CustomerPatch{Address: &addr}.Apply(Customer{ID: 3, Name: "Ana", Address: "Rua A, 10"})
	assert.Equal(t, "Ana", c.Name)
	assert.Equal(t, addr, c.Address)
}

func TestSessionExpired(t *testing.T) {
	now := time.Now()
	assert.False(t, Session{ExpiresAt: now.Add(time.Minute)}.Expired(now))
	assert.True(t, Session{ExpiresAt: now}.Expired(now))
}
