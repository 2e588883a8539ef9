package models

import "github.com/shopspring/decimal"

// CartLine is the accumulated quantity of a single product in a cart
type CartLine struct {
	ProductID       string          `json:"productId"`
	Name            string          `json:"name"`
	Price           decimal.Decimal `json:"price"`
	QuantityUnit    string          `json:"quantityUnit"`
	VendorName      string          `json:"vendorName"`
	OrderedQuantity decimal.Decimal `json:"orderedQuantity"`
}

// Subtotal returns price times ordered quantity
func (l CartLine) Subtotal() decimal.Decimal {
	return l.Price.Mul(l.OrderedQuantity)
}

// CartView is the cart as returned to clients
type CartView struct {
	Items []CartLine      `json:"items"`
	Total decimal.Decimal `json:"total"`
}

// AddToCartRequest is the body of POST /api/cart/items
type AddToCartRequest struct {
	ProductID string          `json:"productId"`
	Quantity  decimal.Decimal `json:"quantity"`
}
