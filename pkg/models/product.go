package models

import (
	"github.com/shopspring/decimal"
)

// Variant is a named group of selectable options, e.g. Color or Storage
type Variant struct {
	Type    string   `json:"type" bson:"type"`
	Options []string `json:"options" bson:"options"`
}

// Product represents an immutable entry in the storefront catalog
type Product struct {
	ID            int64            `json:"id" bson:"id"`
	Name          string           `json:"name" bson:"name"`
	Brand         string           `json:"brand" bson:"brand"`
	Category      string           `json:"category" bson:"category"`
	Subcategory   string           `json:"subcategory" bson:"subcategory"`
	Price         decimal.Decimal  `json:"price" bson:"-"`
	OriginalPrice *decimal.Decimal `json:"original_price,omitempty" bson:"-"`
	Discount      int              `json:"discount,omitempty" bson:"discount,omitempty"`
	Rating        float64          `json:"rating" bson:"rating"`
	Reviews       int              `json:"reviews" bson:"reviews"`
	Description   string           `json:"description" bson:"description"`
	InStock       bool             `json:"in_stock" bson:"in_stock"`
	Tags          []string         `json:"tags" bson:"tags"`
	Images        []string         `json:"images" bson:"images"`
	Features      []string         `json:"features" bson:"features"`
	Variants      []Variant        `json:"variants,omitempty" bson:"variants,omitempty"`
}

// Image returns the primary image, the first in the gallery
func (p Product) Image() string {
	if len(p.Images) == 0 {
		return ""
	}
	return p.Images[0]
}

// Subcategory is a leaf of the category tree with its listing count
type Subcategory struct {
	ID    int64  `json:"id" bson:"id"`
	Name  string `json:"name" bson:"name"`
	Count int    `json:"count" bson:"count"`
}

type Category struct {
	ID            int64         `json:"id" bson:"id"`
	Name          string        `json:"name" bson:"name"`
	Subcategories []Subcategory `json:"subcategories" bson:"subcategories"`
}
