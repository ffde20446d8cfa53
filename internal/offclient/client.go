// Package offclient is the HTTP client for the Open Food Facts family of
// product databases (food, pet food, beauty). One client serves all three
// domains; the endpoint host is selected per request.
package offclient

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/nutriscan/nutriscan/internal/models"
)

// ErrNotFound reports that the database answered but does not know the
// barcode. Distinguishable from transport failures, which are returned as
// *NetworkError.
var ErrNotFound = errors.New("product not found")

// NetworkError reports that the upstream database could not be reached or
// answered with a non-success status.
type NetworkError struct {
	Domain models.Domain
	Err    error
}

func (e *NetworkError) Error() string {
	return fmt.Sprintf("%s database unreachable: %v", e.Domain, e.Err)
}

func (e *NetworkError) Unwrap() error { return e.Err }

// Payload mirrors the upstream product JSON. status == 0 signals not-found.
type Payload struct {
	Status        int     `json:"status"`
	StatusVerbose string  `json:"status_verbose"`
	Code          string  `json:"code"`
	Product       Product `json:"product"`
}

type Product struct {
	ProductName     string     `json:"product_name"`
	Brands          string     `json:"brands"`
	ImageURL        string     `json:"image_url"`
	NutriscoreGrade string     `json:"nutriscore_grade"`
	Quantity        string     `json:"quantity"`
	IngredientsText string     `json:"ingredients_text"`
	Categories      string     `json:"categories"`
	Nutriments      Nutriments `json:"nutriments"`
}

type Nutriments struct {
	Energy100g     *float64 `json:"energy_100g"`
	EnergyKcal100g *float64 `json:"energy-kcal_100g"`
	Fat100g        *float64 `json:"fat_100g"`
	Sugars100g     *float64 `json:"sugars_100g"`
	Proteins100g   *float64 `json:"proteins_100g"`
	Salt100g       *float64 `json:"salt_100g"`
}

type Config struct {
	// BaseURLs overrides the per-domain endpoint hosts. Missing entries fall
	// back to the public databases.
	BaseURLs map[models.Domain]string
	Timeout  time.Duration
}

type Client struct {
	baseURLs   map[models.Domain]string
	timeout    time.Duration
	httpClient *http.Client
}

func NewClient(cfg Config) *Client {
	baseURLs := make(map[models.Domain]string, 3)
	for _, domain := range []models.Domain{models.DomainFood, models.DomainPet, models.DomainCosmetic} {
		base := strings.TrimSpace(cfg.BaseURLs[domain])
		if base == "" {
			base = domain.Info().BaseURL
		}
		baseURLs[domain] = strings.TrimRight(base, "/")
	}

	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = 10 * time.Second
	}

	return &Client{
		baseURLs:   baseURLs,
		timeout:    timeout,
		httpClient: &http.Client{},
	}
}

// Fetch retrieves the raw product payload for a barcode from the domain's
// database. The barcode is interpolated verbatim; callers pass decoder-yielded
// text only.
func (c *Client) Fetch(ctx context.Context, barcode string, domain models.Domain) (*Payload, error) {
	ctx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	url := fmt.Sprintf("%s/api/v0/product/%s.json", c.baseURLs[domain], barcode)
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, fmt.Errorf("build product request: %w", err)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, &NetworkError{Domain: domain, Err: err}
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, &NetworkError{Domain: domain, Err: fmt.Errorf("status %d", resp.StatusCode)}
	}

	var payload Payload
	if err := json.NewDecoder(resp.Body).Decode(&payload); err != nil {
		return nil, &NetworkError{Domain: domain, Err: fmt.Errorf("decode payload: %w", err)}
	}

	if payload.Status == 0 {
		return nil, fmt.Errorf("barcode %s: %w", barcode, ErrNotFound)
	}
	return &payload, nil
}
