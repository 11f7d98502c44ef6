// Package customer keeps the delivery address book used to fill in orders.
package customer

import (
	"context"
	"fmt"
	"strings"
	"time"

	"water-delivery/internal/apperr"
	"water-delivery/internal/logger"
	"water-delivery/internal/models"
)

const (
	defaultSearchLimit = 20
	maxSearchLimit     = 100
	maxFieldLength     = 200
)

// Store persists customers. Create assigns the id and derives the code from it.
type Store interface {
	Create(ctx context.Context, c models.NewCustomer, registeredAt time.Time) (models.Customer, error)
	Get(ctx context.Context, id int64) (models.Customer, error)
	Update(ctx context.Context, id int64, patch models.CustomerPatch) (models.Customer, error)
	SoftDelete(ctx context.Context, id int64) error
	ListActive(ctx context.Context) ([]models.Customer, error)
	Search(ctx context.Context, query string, limit int) ([]models.Customer, error)
}

type Service struct {
	store  Store
	logger *logger.Logger
	now    func() time.Time
}

func NewService(store Store, log *logger.Logger) *Service {
	return &Service{store: store, logger: log, now: time.Now}
}

// Create registers a customer and assigns a unique code
func (s *Service) Create(ctx context.Context, req models.NewCustomer) (models.Customer, error) {
	req.Name = strings.TrimSpace(req.Name)
	req.Address = strings.TrimSpace(req.Address)
	if err := requireText("name", req.Name); err != nil {
		return models.Customer{}, err
	}
	if err := requireText("address", req.Address); err != nil {
		return models.Customer{}, err
	}

	var err error
	if req.ReferencePoint, err = optionalText("reference_point", req.ReferencePoint); err != nil {
		return models.Customer{}, err
	}
	if req.Phone, err = optionalText("phone", req.Phone); err != nil {
		return models.Customer{}, err
	}
	if req.TaxID, err = optionalText("tax_id", req.TaxID); err != nil {
		return models.Customer{}, err
	}

	c, err := s.store.Create(ctx, req, s.now())
	if err != nil {
		return models.Customer{}, err
	}

	s.logger.Info("customer_created", "Customer created", logger.RequestID(ctx), map[string]any{
		"customer_id": c.ID,
		"code":        c.Code,
	})
	return c, nil
}

func (s *Service) Get(ctx context.Context, id int64) (models.Customer, error) {
	return s.store.Get(ctx, id)
}

// Update applies a partial change; omitted fields keep their prior value
func (s *Service) Update(ctx context.Context, id int64, patch models.CustomerPatch) (models.Customer, error) {
	if patch.Name != nil {
		name := strings.TrimSpace(*patch.Name)
		if err := requireText("name", name); err != nil {
			return models.Customer{}, err
		}
		patch.Name = &name
	}
	if patch.Address != nil {
		address := strings.TrimSpace(*patch.Address)
		if err := requireText("address", address); err != nil {
			return models.Customer{}, err
		}
		patch.Address = &address
	}
	for field, v := range map[string]*string{
		"reference_point": patch.ReferencePoint,
		"phone":           patch.Phone,
		"tax_id":          patch.TaxID,
	} {
		if v != nil && len(*v) > maxFieldLength {
			return models.Customer{}, apperr.Validation(field, fmt.Sprintf("must be %d characters or less", maxFieldLength))
		}
	}

	c, err := s.store.Update(ctx, id, patch)
	if err != nil {
		return models.Customer{}, err
	}

	s.logger.Info("customer_updated", "Customer updated", logger.RequestID(ctx), map[string]any{
		"customer_id": c.ID,
	})
	return c, nil
}

// SoftDelete deactivates a customer. Orders keep their copied name and address.
func (s *Service) SoftDelete(ctx context.Context, id int64) error {
	if err := s.store.SoftDelete(ctx, id); err != nil {
		return err
	}
	s.logger.Info("customer_deactivated", "Customer deactivated", logger.RequestID(ctx), map[string]any{
		"customer_id": id,
	})
	return nil
}

func (s *Service) ListActive(ctx context.Context) ([]models.Customer, error) {
	return s.store.ListActive(ctx)
}

// Search finds active customers whose name contains query, ignoring case
func (s *Service) Search(ctx context.Context, query string, limit int) ([]models.Customer, error) {
	query = strings.TrimSpace(query)
	if query == "" {
		return []models.Customer{}, nil
	}
	if limit <= 0 {
		limit = defaultSearchLimit
	}
	if limit > maxSearchLimit {
		limit = maxSearchLimit
	}
	return s.store.Search(ctx, query, limit)
}

func requireText(field, v string) error {
	if v == "" {
		return apperr.Validation(field, field+" is required")
	}
	if len(v) > maxFieldLength {
		return apperr.Validation(field, fmt.Sprintf("%s must be %d characters or less", field, maxFieldLength))
	}
	return nil
}

// optionalText trims v and turns blank values into nil
func optionalText(field string, v *string) (*string, error) {
	if v == nil {
		return nil, nil
	}
	trimmed := strings.TrimSpace(*v)
	if trimmed == "" {
		return nil, nil
	}
	if len(trimmed) > maxFieldLength {
		return nil, apperr.Validation(field, fmt.Sprintf("%s must be %d characters or less", field, maxFieldLength))
	}
	return &trimmed, nil
}
