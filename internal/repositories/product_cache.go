package repositories

import (
	"fmt"
	"strings"

	"github.com/arredohq/arredo/internal/models"
)

// ProductCacheAdapter caches catalog products fetched from the CRM.
//
// New products are inserted, known ones are refreshed in place so price and
// image changes propagate. Duplicate inserts racing on the product_id UNIQUE
// constraint are silently ignored.
type ProductCacheAdapter struct {
	repo *ProductRepository
}

// NewProductCacheAdapter creates a new ProductCacheAdapter with the given repository
func NewProductCacheAdapter(repo *ProductRepository) *ProductCacheAdapter {
	return &ProductCacheAdapter{repo: repo}
}

// CacheProduct stores or refreshes one catalog product.
func (a *ProductCacheAdapter) CacheProduct(product models.Product) error {
	existing, err := a.repo.GetByProductID(product.ID)
	if err == nil && existing != nil {
		refreshed := models.NewPersistedProduct(existing.Sequence(), product)
		refreshed.SetID(existing.ID())
		if err := a.repo.Update(refreshed); err != nil {
			return fmt.Errorf("failed to refresh cached product: %w", err)
		}
		return nil
	}

	persisted := models.NewPersistedProduct(0, product)

	if err := a.repo.Create(persisted); err != nil {
		if strings.Contains(err.Error(), "UNIQUE constraint") {
			return nil
		}
		return fmt.Errorf("failed to cache product: %w", err)
	}

	return nil
}

// CachePage stores every product of a search page, keeping going past
// individual failures and returning the first error encountered.
func (a *ProductCacheAdapter) CachePage(products []models.Product) error {
	var firstErr error
	for _, product := range products {
		if err := a.CacheProduct(product); err != nil && firstErr == nil {
			firstErr = err
		}
	}
	return firstErr
}
