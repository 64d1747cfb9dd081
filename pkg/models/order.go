package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// EstimatedDelivery is the fixed delivery window quoted on every order
const EstimatedDelivery = "2-4 days"

// ShippingInfo is the first checkout step
type ShippingInfo struct {
	FirstName string `json:"first_name" validate:"required"`
	LastName  string `json:"last_name" validate:"required"`
	Email     string `json:"email" validate:"required,email"`
	Phone     string `json:"phone" validate:"required"`
	Address   string `json:"address" validate:"required"`
	City      string `json:"city" validate:"required"`
	State     string `json:"state" validate:"required"`
	ZipCode   string `json:"zip_code" validate:"required"`
}

// PaymentDetails are passed through to the payment processor untouched
type PaymentDetails struct {
	CardNumber string `json:"card_number"`
	ExpiryDate string `json:"expiry_date"`
	CVV        string `json:"cvv"`
	NameOnCard string `json:"name_on_card"`
}

// OrderItem is a snapshot of one cart entry at the time of purchase
type OrderItem struct {
	ProductID int64           `json:"product_id"`
	Name      string          `json:"name"`
	Image     string          `json:"image,omitempty"`
	Quantity  int             `json:"quantity"`
	UnitPrice decimal.Decimal `json:"unit_price"`
	Subtotal  decimal.Decimal `json:"subtotal"`
}

// OrderItemsFromCart snapshots the current cart lines
func OrderItemsFromCart(items []CartItem) []OrderItem {
	out := make([]OrderItem, 0, len(items))
	for _, item := range items {
		out = append(out, OrderItem{
			ProductID: item.Product.ID,
			Name:      item.Product.Name,
			Image:     item.Product.Image(),
			Quantity:  item.Quantity,
			UnitPrice: item.Product.Price,
			Subtotal:  item.LineTotal(),
		})
	}
	return out
}

// Order is the confirmation record of a completed checkout. It is never persisted.
type Order struct {
	ID                int64           `json:"id"`
	Total             decimal.Decimal `json:"total"`
	EstimatedDelivery string          `json:"eta"`
	Items             []OrderItem     `json:"items"`
	Shipping          ShippingInfo    `json:"shipping"`
	PlacedAt          time.Time       `json:"placed_at"`
}

type OrderStatus string

const (
	OrderProcessing OrderStatus = "processing"
	OrderShipped    OrderStatus = "shipped"
	OrderDelivered  OrderStatus = "delivered"
)

// OrderRecord is one row of a customer's order history
type OrderRecord struct {
	ID     string          `json:"id"`
	Date   time.Time       `json:"date"`
	Status OrderStatus     `json:"status"`
	Total  decimal.Decimal `json:"total"`
	Items  []OrderItem     `json:"items"`
}
