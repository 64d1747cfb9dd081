package models

import (
	"math"

	"github.com/shopspring/decimal"
)

// AllCategories disables the category stage of a search
const AllCategories = "All"

type SortKey string

const (
	SortByName      SortKey = "name"
	SortByPriceLow  SortKey = "price-low"
	SortByPriceHigh SortKey = "price-high"
	SortByRating    SortKey = "rating"
	SortByNewest    SortKey = "newest"
)

// ParseSortKey maps a client value to a SortKey. Unknown values sort by name.
func ParseSortKey(s string) SortKey {
	switch key := SortKey(s); key {
	case SortByName, SortByPriceLow, SortByPriceHigh, SortByRating, SortByNewest:
		return key
	default:
		return SortByName
	}
}

type PriceRange struct {
	Min decimal.Decimal `json:"min"`
	Max decimal.Decimal `json:"max"`
}

func (r PriceRange) Contains(price decimal.Decimal) bool {
	return price.GreaterThanOrEqual(r.Min) && price.LessThanOrEqual(r.Max)
}

// FilterCriteria is the structured filter set of a product listing
type FilterCriteria struct {
	PriceRange  PriceRange `json:"price_range"`
	Brands      []string   `json:"brands"`
	MinRating   float64    `json:"rating"`
	InStockOnly bool       `json:"in_stock"`
}

// DefaultFilterMaxPrice is the upper price bound of a fresh listing
var DefaultFilterMaxPrice = decimal.NewFromInt(5000)

// DefaultFilters returns the criteria a listing starts with, or is reset to by
// "clear all" when the catalog's max price is passed
func DefaultFilters(maxPrice decimal.Decimal) FilterCriteria {
	return FilterCriteria{
		PriceRange: PriceRange{Min: decimal.Zero, Max: maxPrice},
		Brands:     []string{},
	}
}

// Validate reports every malformed field of the criteria
func (f FilterCriteria) Validate() []FieldError {
	var errs []FieldError
	if f.PriceRange.Min.IsNegative() {
		errs = append(errs, FieldError{Field: "min_price", Message: "min_price must be 0 or greater", Code: "gte"})
	}
	if f.PriceRange.Max.IsNegative() {
		errs = append(errs, FieldError{Field: "max_price", Message: "max_price must be 0 or greater", Code: "gte"})
	}
	if f.PriceRange.Min.GreaterThan(f.PriceRange.Max) {
		errs = append(errs, FieldError{Field: "min_price", Message: "min_price must not exceed max_price", Code: "ltefield"})
	}
	// NaN compares false against both bounds
	if math.IsNaN(f.MinRating) || f.MinRating < 0 || f.MinRating > 5 {
		errs = append(errs, FieldError{Field: "rating", Message: "rating must be between 0 and 5", Code: "range"})
	}
	return errs
}

// BrandFacet is one entry of the brand filter list
type BrandFacet struct {
	Brand string `json:"brand"`
	Count int    `json:"count"`
}

// Facets describes the filter options a catalog supports
type Facets struct {
	Brands   []BrandFacet    `json:"brands"`
	MaxPrice decimal.Decimal `json:"max_price"`
	Defaults FilterCriteria  `json:"defaults"`
}

// Suggestions is the search dropdown content
type Suggestions struct {
	Query    string    `json:"query"`
	Products []Product `json:"products"`
	Trending []string  `json:"trending,omitempty"`
	Recent   []string  `json:"recent,omitempty"`
}

// FieldError is a field-level validation failure
type FieldError struct {
	Field   string `json:"field"`
	Message string `json:"message"`
	Code    string `json:"code,omitempty"`
}
