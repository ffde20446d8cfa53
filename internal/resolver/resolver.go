// Package resolver turns a scanned barcode into a normalized, advised,
// cached product snapshot.
package resolver

import (
	"context"
	"log"
	"math"
	"strings"
	"time"

	"github.com/nutriscan/nutriscan/internal/advice"
	"github.com/nutriscan/nutriscan/internal/cache"
	"github.com/nutriscan/nutriscan/internal/models"
	"github.com/nutriscan/nutriscan/internal/offclient"
)

// unknownProductName is the display name used when the upstream payload
// carries none.
const unknownProductName = "Unknown Product"

// joulesPerKcal converts the raw energy_100g field (joule-denominated) when
// the explicit kilocalorie field is absent.
const joulesPerKcal = 4.184

// Fetcher is the slice of the Open Food Facts client the resolver needs.
type Fetcher interface {
	Fetch(ctx context.Context, barcode string, domain models.Domain) (*offclient.Payload, error)
}

type Resolver struct {
	cache  cache.Cache
	client Fetcher
}

func New(c cache.Cache, client Fetcher) *Resolver {
	return &Resolver{cache: c, client: client}
}

// Resolve returns the product for (barcode, domain), consulting the cache
// before the network. Failures are terminal for the attempt; the caller
// retries by calling again.
func (r *Resolver) Resolve(ctx context.Context, barcode string, domain models.Domain) (*models.Product, error) {
	cached, ok, err := r.cache.Get(ctx, barcode, domain)
	if err != nil {
		// A broken cache only costs us the network round trip.
		log.Printf("cache lookup failed for %s/%s: %v", domain, barcode, err)
	} else if ok {
		return cached, nil
	}

	payload, err := r.client.Fetch(ctx, barcode, domain)
	if err != nil {
		return nil, err
	}

	product := normalize(barcode, domain, payload)
	product.Advice = advice.For(product)

	if err := r.cache.Put(ctx, product); err != nil {
		log.Printf("cache store failed for %s/%s: %v", domain, barcode, err)
	}
	return product, nil
}

func normalize(barcode string, domain models.Domain, payload *offclient.Payload) *models.Product {
	up := payload.Product

	name := strings.TrimSpace(up.ProductName)
	if name == "" {
		name = unknownProductName
	}

	return &models.Product{
		Barcode:     barcode,
		Domain:      domain,
		Name:        name,
		Brand:       strings.TrimSpace(up.Brands),
		ImageURL:    up.ImageURL,
		Grade:       strings.ToUpper(strings.TrimSpace(up.NutriscoreGrade)),
		Quantity:    strings.TrimSpace(up.Quantity),
		Ingredients: up.IngredientsText,
		Categories:  up.Categories,
		Nutrients: models.Nutrients{
			Calories: calories(up.Nutriments),
			Fat:      floatOrZero(up.Nutriments.Fat100g),
			Sugars:   floatOrZero(up.Nutriments.Sugars100g),
			Proteins: floatOrZero(up.Nutriments.Proteins100g),
		},
		ResolvedAt: time.Now(),
	}
}

// calories prefers the explicit kilocalorie field; the raw energy field is
// joule-denominated and must be converted, never passed through as kcal.
func calories(n offclient.Nutriments) float64 {
	if n.EnergyKcal100g != nil {
		return *n.EnergyKcal100g
	}
	if n.Energy100g != nil {
		return math.Round(*n.Energy100g / joulesPerKcal)
	}
	return 0
}

func floatOrZero(v *float64) float64 {
	if v == nil {
		return 0
	}
	return *v
}
