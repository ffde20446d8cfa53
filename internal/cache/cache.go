// Package cache stores resolved products for the life of the process so a
// barcode is fetched from the external database at most once per domain.
// Entries are never expired; source data rarely changes.
package cache

import (
	"context"

	"github.com/nutriscan/nutriscan/internal/models"
)

// Cache is keyed by (barcode, domain). Keying on the barcode alone would let
// a food scan shadow a later pet scan of the same code with the wrong
// snapshot, so the domain is part of the key.
type Cache interface {
	Get(ctx context.Context, barcode string, domain models.Domain) (*models.Product, bool, error)
	Put(ctx context.Context, product *models.Product) error
	Close() error
}
