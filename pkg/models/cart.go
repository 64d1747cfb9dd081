package models

import "github.com/shopspring/decimal"

// TaxRate is the flat sales tax applied at checkout
var TaxRate = decimal.RequireFromString("0.08")

// MaxQuantity caps a single cart line
const MaxQuantity = 99

// Cart models for session-held state

type CartItem struct {
	Product  Product `json:"product"`
	Quantity int     `json:"quantity"`
}

// LineTotal is price x quantity for a single entry
func (i CartItem) LineTotal() decimal.Decimal {
	return i.Product.Price.Mul(decimal.NewFromInt(int64(i.Quantity)))
}

// CartState holds cart entries in insertion order. Totals are never stored.
type CartState struct {
	Items  []CartItem `json:"items"`
	IsOpen bool       `json:"is_open"`
}

func (s CartState) TotalItems() int {
	total := 0
	for _, item := range s.Items {
		total += item.Quantity
	}
	return total
}

func (s CartState) Subtotal() decimal.Decimal {
	subtotal := decimal.Zero
	for _, item := range s.Items {
		subtotal = subtotal.Add(item.LineTotal())
	}
	return subtotal
}

func (s CartState) Tax() decimal.Decimal {
	return s.Subtotal().Mul(TaxRate)
}

func (s CartState) Total() decimal.Decimal {
	return s.Subtotal().Mul(decimal.NewFromInt(1).Add(TaxRate))
}

// IndexOf returns the position of the entry for id, or -1
func (s CartState) IndexOf(id int64) int {
	for i, item := range s.Items {
		if item.Product.ID == id {
			return i
		}
	}
	return -1
}

// Clone returns a copy whose item slice can be modified freely
func (s CartState) Clone() CartState {
	items := make([]CartItem, len(s.Items))
	copy(items, s.Items)
	return CartState{Items: items, IsOpen: s.IsOpen}
}

// CartSummary is the cart plus its derived totals, as rendered to clients
type CartSummary struct {
	CartState
	TotalItems int             `json:"total_items"`
	Subtotal   decimal.Decimal `json:"subtotal"`
	Tax        decimal.Decimal `json:"tax"`
	Total      decimal.Decimal `json:"total"`
}

func (s CartState) Summary() CartSummary {
	return CartSummary{
		CartState:  s,
		TotalItems: s.TotalItems(),
		Subtotal:   s.Subtotal(),
		Tax:        s.Tax(),
		Total:      s.Total(),
	}
}

type AddToCartRequest struct {
	ProductID int64 `json:"product_id" binding:"required"`
}

type UpdateCartItemRequest struct {
	Quantity *int `json:"quantity" binding:"required,max=99"`
}
