package query

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"julianmorley.ca/con-plar/storefront/pkg/catalog"
	"julianmorley.ca/con-plar/storefront/pkg/models"
)

func product(id int64, name string, price int64, brand string, rating float64) models.Product {
	return models.Product{
		ID:       id,
		Name:     name,
		Price:    decimal.NewFromInt(price),
		Brand:    brand,
		Rating:   rating,
		Category: "Electronics",
		InStock:  true,
	}
}

func openFilters() models.FilterCriteria {
	return models.DefaultFilters(decimal.NewFromInt(100000))
}

func ids(products []models.Product) []int64 {
	out := make([]int64, 0, len(products))
	for _, p := range products {
		out = append(out, p.ID)
	}
	return out
}

func staticProducts(t *testing.T) []models.Product {
	t.Helper()
	c, err := catalog.Static()
	require.NoError(t, err)
	return c.Products()
}

func TestSearchPriceLowScenario(t *testing.T) {
	a := product(1, "A", 10, "X", 4.5)
	b := product(2, "B", 5, "Y", 3.0)

	filters := models.FilterCriteria{
		PriceRange: models.PriceRange{Min: decimal.Zero, Max: decimal.NewFromInt(100)},
		Brands:     []string{},
	}

	got := Search([]models.Product{a, b}, models.AllCategories, "", filters, models.SortByPriceLow)
	assert.Equal(t, []int64{2, 1}, ids(got))
}

func TestSearchCategory(t *testing.T) {
	products := staticProducts(t)

	t.Run("all returns every product", func(t *testing.T) {
		got := Search(products, models.AllCategories, "", openFilters(), models.SortByName)
		assert.Len(t, got, len(products))
	})

	t.Run("specific category returns only that category", func(t *testing.T) {
		got := Search(products, "Fashion", "", openFilters(), models.SortByName)
		require.NotEmpty(t, got)
		for _, p := range got {
			assert.Equal(t, "Fashion", p.Category)
		}
	})

	t.Run("unknown category returns empty list", func(t *testing.T) {
		got := Search(products, "Toys", "", openFilters(), models.SortByName)
		assert.NotNil(t, got)
		assert.Empty(t, got)
	})
}

func TestSearchText(t *testing.T) {
	products := staticProducts(t)

	tests := []struct {
		name  string
		query string
		want  []int64
	}{
		{"matches name case-insensitively", "IPHONE", []int64{1}},
		{"matches brand", "canon", []int64{9}},
		{"matches tag", "ergonomic", []int64{10}},
		{"whitespace is ignored", "   ", nil},
		{"no match", "zzzz", []int64{}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Search(products, models.AllCategories, tt.query, openFilters(), models.SortByNewest)
			if tt.want == nil {
				assert.Len(t, got, len(products))
				return
			}
			assert.ElementsMatch(t, tt.want, ids(got))
		})
	}
}

func TestSearchStructuredFilters(t *testing.T) {
	products := []models.Product{
		product(1, "Cheap", 10, "X", 2.0),
		product(2, "Mid", 50, "Y", 4.0),
		product(3, "Pricey", 500, "X", 4.8),
	}
	products[1].InStock = false

	tests := []struct {
		name   string
		mutate func(f *models.FilterCriteria)
		want   []int64
	}{
		{"price range is inclusive", func(f *models.FilterCriteria) {
			f.PriceRange = models.PriceRange{Min: decimal.NewFromInt(10), Max: decimal.NewFromInt(50)}
		}, []int64{1, 2}},
		{"brand set", func(f *models.FilterCriteria) { f.Brands = []string{"X"} }, []int64{1, 3}},
		{"minimum rating", func(f *models.FilterCriteria) { f.MinRating = 4 }, []int64{2, 3}},
		{"in stock only", func(f *models.FilterCriteria) { f.InStockOnly = true }, []int64{1, 3}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := openFilters()
			tt.mutate(&f)
			got := Search(products, models.AllCategories, "", f, models.SortByPriceLow)
			assert.Equal(t, tt.want, ids(got))
		})
	}
}

func TestSearchDoesNotModifyInput(t *testing.T) {
	products := []models.Product{product(1, "B", 20, "X", 1), product(2, "A", 10, "X", 1)}
	Search(products, models.AllCategories, "", openFilters(), models.SortByName)
	assert.Equal(t, []int64{1, 2}, ids(products))
}

func TestSortPriceOrdersAreReversed(t *testing.T) {
	products := staticProducts(t)

	low := Search(products, models.AllCategories, "", openFilters(), models.SortByPriceLow)
	high := Search(products, models.AllCategories, "", openFilters(), models.SortByPriceHigh)

	require.Len(t, high, len(low))
	for i := range low {
		assert.Equal(t, low[i].ID, high[len(high)-1-i].ID)
	}
}

func TestSortIsStable(t *testing.T) {
	products := []models.Product{
		product(1, "Same", 10, "X", 4),
		product(2, "Same", 10, "X", 4),
		product(3, "Same", 5, "X", 4),
	}

	assert.Equal(t, []int64{3, 1, 2}, ids(Search(products, "", "", openFilters(), models.SortByPriceLow)))
	assert.Equal(t, []int64{1, 2, 3}, ids(Search(products, "", "", openFilters(), models.SortByRating)))
	assert.Equal(t, []int64{1, 2, 3}, ids(Search(products, "", "", openFilters(), models.SortByName)))
}

func TestSortKeys(t *testing.T) {
	products := []models.Product{
		product(1, "banana", 30, "X", 3),
		product(2, "Apple", 10, "X", 5),
		product(3, "apple", 20, "X", 4),
	}

	tests := []struct {
		key  models.SortKey
		want []int64
	}{
		{models.SortByName, []int64{2, 3, 1}},
		{models.SortByPriceLow, []int64{2, 3, 1}},
		{models.SortByPriceHigh, []int64{1, 3, 2}},
		{models.SortByRating, []int64{2, 3, 1}},
		{models.SortByNewest, []int64{3, 2, 1}},
		{models.ParseSortKey("bogus"), []int64{2, 3, 1}},
	}

	for _, tt := range tests {
		t.Run(string(tt.key), func(t *testing.T) {
			got := Search(products, models.AllCategories, "", openFilters(), tt.key)
			assert.Equal(t, tt.want, ids(got))
		})
	}
}

func TestSearchEmptyCatalog(t *testing.T) {
	got := Search(nil, models.AllCategories, "phone", openFilters(), models.SortByName)
	assert.NotNil(t, got)
	assert.Empty(t, got)
}
