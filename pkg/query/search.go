// Package query derives product listings and search suggestions from the catalog.
package query

import (
	"cmp"
	"slices"
	"strings"

	"julianmorley.ca/con-plar/storefront/pkg/models"
)

// Search runs the listing pipeline: category, free text, structured filters, then a stable sort.
// The input slice is never modified.
func Search(products []models.Product, category, text string, filters models.FilterCriteria, sortKey models.SortKey) []models.Product {
	results := make([]models.Product, 0, len(products))

	needle := strings.ToLower(strings.TrimSpace(text))
	brands := brandSet(filters.Brands)

	for _, p := range products {
		if category != "" && category != models.AllCategories && p.Category != category {
			continue
		}
		if needle != "" && !matchesText(p, needle) {
			continue
		}
		if !matchesFilters(p, filters, brands) {
			continue
		}
		results = append(results, p)
	}

	Sort(results, sortKey)
	return results
}

// Sort orders products in place. Equal keys keep their relative order.
func Sort(products []models.Product, key models.SortKey) {
	slices.SortStableFunc(products, comparator(key))
}

func comparator(key models.SortKey) func(a, b models.Product) int {
	switch key {
	case models.SortByPriceLow:
		return func(a, b models.Product) int { return a.Price.Cmp(b.Price) }
	case models.SortByPriceHigh:
		return func(a, b models.Product) int { return b.Price.Cmp(a.Price) }
	case models.SortByRating:
		return func(a, b models.Product) int { return cmp.Compare(b.Rating, a.Rating) }
	case models.SortByNewest:
		return func(a, b models.Product) int { return cmp.Compare(b.ID, a.ID) }
	default:
		return func(a, b models.Product) int { return strings.Compare(a.Name, b.Name) }
	}
}

// needle must already be lower case
func matchesText(p models.Product, needle string) bool {
	if strings.Contains(strings.ToLower(p.Name), needle) ||
		strings.Contains(strings.ToLower(p.Description), needle) ||
		strings.Contains(strings.ToLower(p.Brand), needle) {
		return true
	}
	for _, tag := range p.Tags {
		if strings.Contains(strings.ToLower(tag), needle) {
			return true
		}
	}
	return false
}

func matchesFilters(p models.Product, f models.FilterCriteria, brands map[string]struct{}) bool {
	if !f.PriceRange.Contains(p.Price) {
		return false
	}
	if len(brands) > 0 {
		if _, ok := brands[p.Brand]; !ok {
			return false
		}
	}
	if p.Rating < f.MinRating {
		return false
	}
	if f.InStockOnly && !p.InStock {
		return false
	}
	return true
}

func brandSet(brands []string) map[string]struct{} {
	set := make(map[string]struct{}, len(brands))
	for _, b := range brands {
		set[b] = struct{}{}
	}
	return set
}
