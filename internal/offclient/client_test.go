package offclient

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/nutriscan/nutriscan/internal/models"
)

func newTestClient(serverURL string) *Client {
	return NewClient(Config{BaseURLs: map[models.Domain]string{
		models.DomainFood:     serverURL,
		models.DomainPet:      serverURL,
		models.DomainCosmetic: serverURL,
	}})
}

func TestFetchKnownProduct(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/api/v0/product/3017620422003.json" {
			t.Errorf("unexpected path: %s", r.URL.Path)
		}
		_, _ = w.Write([]byte(`{
			"status": 1,
			"code": "3017620422003",
			"product": {
				"product_name": "Pâte à tartiner",
				"brands": "Ferrero",
				"nutriscore_grade": "e",
				"quantity": "400g",
				"nutriments": {"energy-kcal_100g": 539, "fat_100g": 30.9, "sugars_100g": 56.3, "proteins_100g": 6.3}
			}
		}`))
	}))
	defer server.Close()

	payload, err := newTestClient(server.URL).Fetch(context.Background(), "3017620422003", models.DomainFood)
	if err != nil {
		t.Fatalf("Fetch() error = %v", err)
	}
	if payload.Product.ProductName != "Pâte à tartiner" {
		t.Errorf("product name = %q", payload.Product.ProductName)
	}
	if payload.Product.Nutriments.EnergyKcal100g == nil || *payload.Product.Nutriments.EnergyKcal100g != 539 {
		t.Errorf("kcal field not decoded: %+v", payload.Product.Nutriments)
	}
}

func TestFetchNotFoundIsDistinctFromNetworkError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"status": 0, "status_verbose": "product not found"}`))
	}))
	defer server.Close()

	_, err := newTestClient(server.URL).Fetch(context.Background(), "0000000000000", models.DomainFood)
	if !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
	var netErr *NetworkError
	if errors.As(err, &netErr) {
		t.Fatalf("not-found must not be a NetworkError, got %v", err)
	}
}

func TestFetchTransportFailureIsNetworkError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
	}))
	defer server.Close()

	_, err := newTestClient(server.URL).Fetch(context.Background(), "123", models.DomainFood)
	var netErr *NetworkError
	if !errors.As(err, &netErr) {
		t.Fatalf("expected NetworkError, got %v", err)
	}

	// Unreachable endpoint behaves the same way.
	server.Close()
	_, err = newTestClient(server.URL).Fetch(context.Background(), "123", models.DomainFood)
	if !errors.As(err, &netErr) {
		t.Fatalf("expected NetworkError for unreachable host, got %v", err)
	}
}

func TestFetchMalformedPayloadIsNetworkError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`<html>not json</html>`))
	}))
	defer server.Close()

	_, err := newTestClient(server.URL).Fetch(context.Background(), "123", models.DomainPet)
	var netErr *NetworkError
	if !errors.As(err, &netErr) {
		t.Fatalf("expected NetworkError for malformed payload, got %v", err)
	}
}
