package order

import (
	"fmt"
	"strings"

	"water-delivery/internal/apperr"
	"water-delivery/internal/models"
)

const (
	maxItems       = 50
	maxQuantity    = 999
	maxNameLength  = 100
	maxTextLength  = 200
	maxNoteLength  = 500
	maxPhoneLength = 30
)

// ValidateCreateRequest checks and normalizes an order request in place.
// Blank payment methods default to CASH.
func ValidateCreateRequest(req *models.CreateOrderRequest) error {
	req.CustomerName = strings.TrimSpace(req.CustomerName)
	req.Address = strings.TrimSpace(req.Address)
	req.Phone = strings.TrimSpace(req.Phone)
	req.Note = strings.TrimSpace(req.Note)

	if err := validateCustomerName(req.CustomerName); err != nil {
		return err
	}
	if err := validateAddress(req.Address); err != nil {
		return err
	}
	if len(req.Phone) > maxPhoneLength {
		return apperr.Validation("phone", fmt.Sprintf("phone must be %d characters or less", maxPhoneLength))
	}
	if len(req.Note) > maxNoteLength {
		return apperr.Validation("note", fmt.Sprintf("note must be %d characters or less", maxNoteLength))
	}

	if req.PaymentMethod == "" {
		req.PaymentMethod = models.PaymentCash
	}
	if _, err := models.ParsePaymentMethod(string(req.PaymentMethod)); err != nil {
		return err
	}
	if req.ChangeDueFor != nil && *req.ChangeDueFor < 0 {
		return apperr.Validation("change_due_for_minor_units", "amount tendered must not be negative")
	}

	return validateItems(req.Items)
}

func validateCustomerName(name string) error {
	if name == "" {
		return apperr.Validation("customer_name", "customer name is required")
	}
	if len(name) > maxNameLength {
		return apperr.Validation("customer_name", fmt.Sprintf("customer name must be %d characters or less", maxNameLength))
	}
	return nil
}

func validateAddress(address string) error {
	if address == "" {
		return apperr.Validation("address", "delivery address is required")
	}
	if len(address) > maxTextLength {
		return apperr.Validation("address", fmt.Sprintf("delivery address must be %d characters or less", maxTextLength))
	}
	return nil
}

func validateItems(items []models.ItemRequest) error {
	if len(items) == 0 {
		return apperr.Validation("items", "items cannot be empty")
	}
	if len(items) > maxItems {
		return apperr.Validation("items", fmt.Sprintf("a maximum of %d items is allowed", maxItems))
	}

	for i, item := range items {
		if item.ProductID <= 0 {
			return apperr.Validation(fmt.Sprintf("items[%d].product_id", i), "product id is required")
		}
		if item.Quantity < 1 || item.Quantity > maxQuantity {
			return apperr.Validation(fmt.Sprintf("items[%d].quantity", i), fmt.Sprintf("quantity must be between 1 and %d", maxQuantity))
		}
	}
	return nil
}
