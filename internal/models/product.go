package models

import (
	"time"

	"water-delivery/internal/money"
)

// MaxPrice bounds catalog prices so line subtotals cannot overflow.
const MaxPrice money.Amount = 100_000_00

// Product is a catalog entry. Inactive products stay in the table so that
// historical line items keep their reference.
type Product struct {
	ID        int64        `json:"id"`
	Name      string       `json:"name"`
	Price     money.Amount `json:"price_minor_units"`
	Active    bool         `json:"active"`
	CreatedAt time.Time    `json:"created_at"`
}

// ProductPatch holds optional product changes; nil fields keep their value.
type ProductPatch struct {
	Name   *string       `json:"name,omitempty"`
	Price  *money.Amount `json:"price_minor_units,omitempty"`
	Active *bool         `json:"active,omitempty"`
}

// Apply returns a copy of p with the patch applied.
func (pp ProductPatch) Apply(p Product) Product {
	if pp.Name != nil {
		p.Name = *pp.Name
	}
	if pp.Price != nil {
		p.Price = *pp.Price
	}
	if pp.Active != nil {
		p.Active = *pp.Active
	}
	return p
}
