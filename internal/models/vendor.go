package models

// VendorSummary is a vendor marker on the discovery map
type VendorSummary struct {
	Name          string   `json:"name"`
	Rating        float64  `json:"rating"`
	Latitude      float64  `json:"latitude"`
	Longitude     float64  `json:"longitude"`
	City          string   `json:"city,omitempty"`
	ProductsCount int      `json:"productsCount"`
	Distance      *float64 `json:"distanceKm,omitempty"`
}
