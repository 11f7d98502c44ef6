// Package catalog manages the products that can be ordered and their current
// prices. Orders copy prices out of the catalog at creation time; nothing here
// ever touches an existing order.
package catalog

import (
	"context"
	"fmt"
	"slices"
	"strings"

	"water-delivery/internal/apperr"
	"water-delivery/internal/logger"
	"water-delivery/internal/models"
	"water-delivery/internal/money"
)

const maxNameLength = 100

// Store persists products
type Store interface {
	Create(ctx context.Context, p models.Product) (models.Product, error)
	ListActive(ctx context.Context) ([]models.Product, error)
	ListAll(ctx context.Context) ([]models.Product, error)
	Update(ctx context.Context, id int64, patch models.ProductPatch) (models.Product, error)
	ActiveByIDs(ctx context.Context, ids []int64) ([]models.Product, error)
	Count(ctx context.Context) (int, error)
}

// DefaultProducts seeds an empty catalog
var DefaultProducts = []models.Product{
	{Name: "20L bottle with water", Price: 2300, Active: true},
	{Name: "Empty 20L bottle", Price: 3500, Active: true},
	{Name: "20L water refill", Price: 1050, Active: true},
}

type Service struct {
	store  Store
	logger *logger.Logger
}

func NewService(store Store, log *logger.Logger) *Service {
	return &Service{store: store, logger: log}
}

func (s *Service) ListActive(ctx context.Context) ([]models.Product, error) {
	return s.store.ListActive(ctx)
}

func (s *Service) ListAll(ctx context.Context) ([]models.Product, error) {
	return s.store.ListAll(ctx)
}

// Create adds a product after validating its name and price
func (s *Service) Create(ctx context.Context, name string, price money.Amount, active bool) (models.Product, error) {
	name = strings.TrimSpace(name)
	if err := validateName(name); err != nil {
		return models.Product{}, err
	}
	if err := validatePrice(price); err != nil {
		return models.Product{}, err
	}

	product, err := s.store.Create(ctx, models.Product{Name: name, Price: price, Active: active})
	if err != nil {
		return models.Product{}, err
	}

	s.logger.Info("product_created", "Product created", logger.RequestID(ctx), map[string]any{
		"product_id": product.ID,
		"name":       product.Name,
		"price":      product.Price.String(),
	})
	return product, nil
}

// Update applies a partial change. Price changes affect only orders created
// afterwards.
func (s *Service) Update(ctx context.Context, id int64, patch models.ProductPatch) (models.Product, error) {
	if patch.Name != nil {
		name := strings.TrimSpace(*patch.Name)
		if err := validateName(name); err != nil {
			return models.Product{}, err
		}
		patch.Name = &name
	}
	if patch.Price != nil {
		if err := validatePrice(*patch.Price); err != nil {
			return models.Product{}, err
		}
	}

	product, err := s.store.Update(ctx, id, patch)
	if err != nil {
		return models.Product{}, err
	}

	s.logger.Info("product_updated", "Product updated", logger.RequestID(ctx), map[string]any{
		"product_id": product.ID,
		"price":      product.Price.String(),
		"active":     product.Active,
	})
	return product, nil
}

// ResolvePricesForOrder returns the active products for ids keyed by id. It is
// all-or-nothing: any unknown or inactive id fails the whole resolution.
func (s *Service) ResolvePricesForOrder(ctx context.Context, ids []int64) (map[int64]models.Product, error) {
	unique := uniqueIDs(ids)
	if len(unique) == 0 {
		return nil, apperr.Validation("items", "at least one product is required")
	}

	products, err := s.store.ActiveByIDs(ctx, unique)
	if err != nil {
		return nil, err
	}

	byID := make(map[int64]models.Product, len(products))
	for _, p := range products {
		byID[p.ID] = p
	}

	var missing []string
	for _, id := range unique {
		if _, ok := byID[id]; !ok {
			missing = append(missing, fmt.Sprint(id))
		}
	}
	if len(missing) > 0 {
		return nil, apperr.Validation("items", "unknown or inactive products: "+strings.Join(missing, ", "))
	}
	return byID, nil
}

// SeedDefaults inserts DefaultProducts when the catalog is empty and returns
// the number of products created.
func (s *Service) SeedDefaults(ctx context.Context) (int, error) {
	count, err := s.store.Count(ctx)
	if err != nil {
		return 0, err
	}
	if count > 0 {
		return 0, nil
	}

	for _, p := range DefaultProducts {
		if _, err := s.store.Create(ctx, p); err != nil {
			return 0, fmt.Errorf("failed to seed %q: %w", p.Name, err)
		}
	}

	s.logger.Info("catalog_seeded", "Default products created", logger.RequestID(ctx), map[string]any{
		"count": len(DefaultProducts),
	})
	return len(DefaultProducts), nil
}

func validateName(name string) error {
	if name == "" {
		return apperr.Validation("name", "product name is required")
	}
	if len(name) > maxNameLength {
		return apperr.Validation("name", fmt.Sprintf("product name must be %d characters or less", maxNameLength))
	}
	return nil
}

func validatePrice(price money.Amount) error {
	if price < 0 {
		return apperr.Validation("price_minor_units", "price must not be negative")
	}
	if price > models.MaxPrice {
		return apperr.Validation("price_minor_units", fmt.Sprintf("price must not exceed %s", models.MaxPrice))
	}
	return nil
}

func uniqueIDs(ids []int64) []int64 {
	out := slices.Clone(ids)
	slices.Sort(out)
	return slices.Compact(out)
}
