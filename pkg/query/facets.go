package query

import (
	"cmp"
	"slices"

	"github.com/shopspring/decimal"

	"julianmorley.ca/con-plar/storefront/pkg/models"
)

// Facets lists the brands present in products with their counts, sorted by
// name, and the highest price. Defaults is what "clear all" resets to.
func Facets(products []models.Product) models.Facets {
	counts := make(map[string]int)
	maxPrice := decimal.Zero
	for _, p := range products {
		counts[p.Brand]++
		if p.Price.GreaterThan(maxPrice) {
			maxPrice = p.Price
		}
	}

	brands := make([]models.BrandFacet, 0, len(counts))
	for brand, n := range counts {
		brands = append(brands, models.BrandFacet{Brand: brand, Count: n})
	}
	slices.SortFunc(brands, func(a, b models.BrandFacet) int {
		return cmp.Compare(a.Brand, b.Brand)
	})

	return models.Facets{
		Brands:   brands,
		MaxPrice: maxPrice,
		Defaults: models.DefaultFilters(maxPrice),
	}
}
