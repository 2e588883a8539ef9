package models

import (
	"github.com/shopspring/decimal"

	"github.com/smartvegis/marketplace/internal/geo"
)

// Decimal places stored for prices and for quantities
const (
	PriceScale    = 2
	QuantityScale = 3
)

// Product represents a produce listing offered by a vendor
type Product struct {
	ID                string          `json:"id" yaml:"id"`
	Name              string          `json:"name" yaml:"name"`
	Description       string          `json:"description" yaml:"description"`
	Price             decimal.Decimal `json:"price" yaml:"price"`
	QuantityUnit      string          `json:"quantityUnit" yaml:"quantityUnit"`
	ImageURL          string          `json:"imageUrl" yaml:"imageUrl"`
	MinOrderQuantity  decimal.Decimal `json:"minOrderQuantity" yaml:"minOrderQuantity"`
	AvailableQuantity decimal.Decimal `json:"availableQuantity" yaml:"availableQuantity"`
	VendorID          string          `json:"vendorId,omitempty" yaml:"vendorId,omitempty"`
	VendorName        string          `json:"vendorName" yaml:"vendorName"`
	Category          string          `json:"category" yaml:"category"`
	VendorRating      float64         `json:"vendorRating" yaml:"vendorRating"`
	City              string          `json:"city,omitempty" yaml:"city,omitempty"`
	Latitude          *float64        `json:"latitude,omitempty" yaml:"latitude,omitempty"`
	Longitude         *float64        `json:"longitude,omitempty" yaml:"longitude,omitempty"`
}

// Location returns the vendor coordinates, if both are known
func (p Product) Location() (geo.Point, bool) {
	if p.Latitude == nil || p.Longitude == nil {
		return geo.Point{}, false
	}
	return geo.Point{Lat: *p.Latitude, Lng: *p.Longitude}, true
}

// Listing is a product as presented by the browse pipeline.
// Distance is only set when the listing was sorted by proximity.
type Listing struct {
	Product
	Distance *float64 `json:"distanceKm,omitempty"`
}

// ProductInput carries the vendor-editable fields of a product
type ProductInput struct {
	Name              string          `json:"name"`
	Description       string          `json:"description"`
	Price             decimal.Decimal `json:"price"`
	QuantityUnit      string          `json:"quantityUnit"`
	ImageURL          string          `json:"imageUrl"`
	MinOrderQuantity  decimal.Decimal `json:"minOrderQuantity"`
	AvailableQuantity decimal.Decimal `json:"availableQuantity"`
	Category          string          `json:"category"`
	City              string          `json:"city,omitempty"`
	Latitude          *float64        `json:"latitude,omitempty"`
	Longitude         *float64        `json:"longitude,omitempty"`
}
