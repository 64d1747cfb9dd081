package catalog

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"julianmorley.ca/con-plar/storefront/pkg/models"
)

func TestStatic(t *testing.T) {
	c, err := Static()
	require.NoError(t, err)

	assert.Equal(t, 10, c.Len())
	assert.Len(t, c.Categories(), 4)

	p, err := c.Product(1)
	require.NoError(t, err)
	assert.Equal(t, "iPhone 15 Pro Max", p.Name)
	assert.True(t, p.Price.Equal(decimal.NewFromInt(1199)))
	require.NotNil(t, p.OriginalPrice)
	assert.True(t, p.OriginalPrice.Equal(decimal.NewFromInt(1299)))
	assert.Len(t, p.Variants, 2)
}

func TestProductNotFound(t *testing.T) {
	c, err := Static()
	require.NoError(t, err)

	_, err = c.Product(999)
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestProductsReturnsCopy(t *testing.T) {
	c, err := Static()
	require.NoError(t, err)

	products := c.Products()
	products[0].Name = "changed"

	p, err := c.Product(products[0].ID)
	require.NoError(t, err)
	assert.NotEqual(t, "changed", p.Name)
}

func TestNewRejectsInvalidProducts(t *testing.T) {
	negative := decimal.NewFromInt(-1)

	tests := []struct {
		name     string
		products []models.Product
	}{
		{"duplicate id", []models.Product{{ID: 1}, {ID: 1}}},
		{"negative price", []models.Product{{ID: 1, Price: negative}}},
		{"negative original price", []models.Product{{ID: 1, OriginalPrice: &negative}}},
		{"rating above five", []models.Product{{ID: 1, Rating: 5.5}}},
		{"negative reviews", []models.Product{{ID: 1, Reviews: -3}}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := New(tt.products, nil)
			assert.ErrorIs(t, err, ErrInvalidCatalog)
		})
	}
}

func TestNewAcceptsEmptyCatalog(t *testing.T) {
	c, err := New(nil, nil)
	require.NoError(t, err)
	assert.Equal(t, 0, c.Len())
	assert.Empty(t, c.Products())
}
