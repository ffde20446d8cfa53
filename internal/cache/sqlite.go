package cache

import (
	"context"
	"database/sql"
	"embed"
	"fmt"
	"time"

	"github.com/nutriscan/nutriscan/internal/models"
	_ "modernc.org/sqlite"
)

//go:embed schema.sql
var schemaFS embed.FS

// SQLiteCache keeps resolved products in a SQLite file so the cache survives
// restarts. Same semantics as the memory engine otherwise: no expiry,
// last write wins.
type SQLiteCache struct {
	db *sql.DB
}

func NewSQLiteCache(path string) (*SQLiteCache, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("error opening cache database: %w", err)
	}

	// WAL mode so reads during a concurrent Put do not block.
	if _, err := db.Exec("PRAGMA journal_mode = WAL"); err != nil {
		return nil, fmt.Errorf("error enabling WAL mode: %w", err)
	}

	schemaBytes, err := schemaFS.ReadFile("schema.sql")
	if err != nil {
		return nil, fmt.Errorf("error reading schema file: %w", err)
	}
	if _, err := db.Exec(string(schemaBytes)); err != nil {
		return nil, fmt.Errorf("error initializing schema: %w", err)
	}

	return &SQLiteCache{db: db}, nil
}

func (c *SQLiteCache) Get(ctx context.Context, barcode string, domain models.Domain) (*models.Product, bool, error) {
	query := `
		SELECT barcode, domain, name, brand, image_url, grade, quantity,
			calories, fat, sugars, proteins, ingredients, categories, advice, resolved_at
		FROM products WHERE barcode = ? AND domain = ?
	`

	var p models.Product
	var domainStr, resolvedAt string
	err := c.db.QueryRowContext(ctx, query, barcode, string(domain)).Scan(
		&p.Barcode, &domainStr, &p.Name, &p.Brand, &p.ImageURL, &p.Grade, &p.Quantity,
		&p.Nutrients.Calories, &p.Nutrients.Fat, &p.Nutrients.Sugars, &p.Nutrients.Proteins,
		&p.Ingredients, &p.Categories, &p.Advice, &resolvedAt,
	)
	if err == sql.ErrNoRows {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, err
	}

	p.Domain = models.Domain(domainStr)
	p.ResolvedAt, _ = time.Parse(time.RFC3339, resolvedAt)
	return &p, true, nil
}

func (c *SQLiteCache) Put(ctx context.Context, product *models.Product) error {
	query := `
		INSERT INTO products (
			barcode, domain, name, brand, image_url, grade, quantity,
			calories, fat, sugars, proteins, ingredients, categories, advice, resolved_at
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(barcode, domain) DO UPDATE SET
			name = excluded.name,
			brand = excluded.brand,
			image_url = excluded.image_url,
			grade = excluded.grade,
			quantity = excluded.quantity,
			calories = excluded.calories,
			fat = excluded.fat,
			sugars = excluded.sugars,
			proteins = excluded.proteins,
			ingredients = excluded.ingredients,
			categories = excluded.categories,
			advice = excluded.advice,
			resolved_at = excluded.resolved_at
	`

	resolvedAt := product.ResolvedAt
	if resolvedAt.IsZero() {
		resolvedAt = time.Now()
	}

	_, err := c.db.ExecContext(ctx, query,
		product.Barcode, string(product.Domain), product.Name, product.Brand,
		product.ImageURL, product.Grade, product.Quantity,
		product.Nutrients.Calories, product.Nutrients.Fat, product.Nutrients.Sugars, product.Nutrients.Proteins,
		product.Ingredients, product.Categories, product.Advice, resolvedAt.Format(time.RFC3339),
	)
	return err
}

func (c *SQLiteCache) Close() error {
	return c.db.Close()
}
