// Package catalog holds the immutable product and category lists of the store.
package catalog

import (
	"context"
	_ "embed"
	"encoding/json"
	"errors"
	"fmt"
	"slices"

	"julianmorley.ca/con-plar/storefront/pkg/models"
)

var (
	ErrNotFound       = errors.New("product not found")
	ErrInvalidCatalog = errors.New("invalid catalog")
)

//go:embed data/catalog.json
var seed []byte

// Source supplies the product and category lists once at startup
type Source interface {
	Load(ctx context.Context) ([]models.Product, []models.Category, error)
}

// Catalog is safe for concurrent reads; it is never mutated after New.
type Catalog struct {
	products   []models.Product
	categories []models.Category
	byID       map[int64]int
}

func New(products []models.Product, categories []models.Category) (*Catalog, error) {
	c := &Catalog{
		products:   slices.Clone(products),
		categories: slices.Clone(categories),
		byID:       make(map[int64]int, len(products)),
	}

	for i, p := range c.products {
		if _, dup := c.byID[p.ID]; dup {
			return nil, fmt.Errorf("%w: duplicate product id %d", ErrInvalidCatalog, p.ID)
		}
		if p.Price.IsNegative() {
			return nil, fmt.Errorf("%w: product %d has a negative price", ErrInvalidCatalog, p.ID)
		}
		if p.OriginalPrice != nil && p.OriginalPrice.IsNegative() {
			return nil, fmt.Errorf("%w: product %d has a negative original price", ErrInvalidCatalog, p.ID)
		}
		if p.Rating < 0 || p.Rating > 5 {
			return nil, fmt.Errorf("%w: product %d rating %.1f out of range", ErrInvalidCatalog, p.ID, p.Rating)
		}
		if p.Reviews < 0 {
			return nil, fmt.Errorf("%w: product %d has a negative review count", ErrInvalidCatalog, p.ID)
		}
		c.byID[p.ID] = i
	}

	return c, nil
}

// Load builds a catalog from any source
func Load(ctx context.Context, src Source) (*Catalog, error) {
	products, categories, err := src.Load(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to load catalog: %w", err)
	}
	return New(products, categories)
}

// Static returns the catalog shipped with the binary
func Static() (*Catalog, error) {
	return Load(context.Background(), EmbeddedSource{})
}

// Products returns a copy of the catalog in its original order
func (c *Catalog) Products() []models.Product {
	return slices.Clone(c.products)
}

func (c *Catalog) Categories() []models.Category {
	return slices.Clone(c.categories)
}

func (c *Catalog) Len() int {
	return len(c.products)
}

func (c *Catalog) Product(id int64) (models.Product, error) {
	i, ok := c.byID[id]
	if !ok {
		return models.Product{}, fmt.Errorf("%w: %d", ErrNotFound, id)
	}
	return c.products[i], nil
}

// EmbeddedSource reads the seed file compiled into the binary
type EmbeddedSource struct{}

type seedFile struct {
	Categories []models.Category `json:"categories"`
	Products   []models.Product  `json:"products"`
}

func (EmbeddedSource) Load(_ context.Context) ([]models.Product, []models.Category, error) {
	var f seedFile
	if err := json.Unmarshal(seed, &f); err != nil {
		return nil, nil, fmt.Errorf("failed to unmarshal catalog seed: %w", err)
	}
	return f.Products, f.Categories, nil
}
