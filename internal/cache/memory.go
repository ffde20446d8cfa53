package cache

import (
	"context"
	"sync"

	"github.com/nutriscan/nutriscan/internal/models"
)

// MemoryCache is the default engine: a process-lifetime map guarded by a
// mutex. Last write wins on concurrent resolution of the same key, which is
// acceptable because resolution is idempotent.
type MemoryCache struct {
	mu       sync.RWMutex
	products map[string]models.Product
}

func NewMemoryCache() *MemoryCache {
	return &MemoryCache{products: make(map[string]models.Product)}
}

func (c *MemoryCache) Get(_ context.Context, barcode string, domain models.Domain) (*models.Product, bool, error) {
	c.mu.RLock()
	defer c.mu.RUnlock()

	product, ok := c.products[memoryKey(barcode, domain)]
	if !ok {
		return nil, false, nil
	}
	// Copy out so cached snapshots stay immutable.
	snapshot := product
	return &snapshot, true, nil
}

func (c *MemoryCache) Put(_ context.Context, product *models.Product) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.products[memoryKey(product.Barcode, product.Domain)] = *product
	return nil
}

func (c *MemoryCache) Close() error { return nil }

func memoryKey(barcode string, domain models.Domain) string {
	return string(domain) + ":" + barcode
}
