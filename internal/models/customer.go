package models

import (
	"fmt"
	"time"
)

// Customer is a delivery address book entry. Customers are never removed,
// only deactivated.
type Customer struct {
	ID             int64     `json:"id"`
	Code           string    `json:"code"`
	Name           string    `json:"name"`
	Address        string    `json:"address"`
	ReferencePoint *string   `json:"reference_point,omitempty"`
	Phone          *string   `json:"phone,omitempty"`
	TaxID          *string   `json:"tax_id,omitempty"`
	Active         bool      `json:"active"`
	CreatedAt      time.Time `json:"created_at"`
}

// CustomerPatch holds optional changes. Omitted fields keep their prior value.
type CustomerPatch struct {
	Name           *string `json:"name,omitempty"`
	Address        *string `json:"address,omitempty"`
	ReferencePoint *string `json:"reference_point,omitempty"`
	Phone          *string `json:"phone,omitempty"`
	TaxID          *string `json:"tax_id,omitempty"`
}

// Apply returns a copy of c with the patch applied.
func (cp CustomerPatch) Apply(c Customer) Customer {
	if cp.Name != nil {
		c.Name = *cp.Name
	}
	if cp.Address != nil {
		c.Address = *cp.Address
	}
	if cp.ReferencePoint != nil {
		c.ReferencePoint = cp.ReferencePoint
	}
	if cp.Phone != nil {
		c.Phone = cp.Phone
	}
	if cp.TaxID != nil {
		c.TaxID = cp.TaxID
	}
	return c
}

// NewCustomer represents the request to register a customer
type NewCustomer struct {
	Name           string  `json:"name"`
	Address        string  `json:"address"`
	ReferencePoint *string `json:"reference_point,omitempty"`
	Phone          *string `json:"phone,omitempty"`
	TaxID          *string `json:"tax_id,omitempty"`
}

// GenerateCustomerCode builds a code in format CLI_YYYYMMDD_NNNNNN from the
// registration date and the customer's sequence id, so two customers can never
// share a code.
func GenerateCustomerCode(date time.Time, seq int64) string {
	return fmt.Sprintf("CLI_%s_%06d", date.UTC().Format("20060102"), seq)
}
