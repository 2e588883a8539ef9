package repository

import (
	"github.com/shopspring/decimal"

	"github.com/smartvegis/marketplace/internal/models"
)

type cityCoords struct {
	name     string
	lat, lng float64
}

var (
	delhi     = cityCoords{"Delhi", 28.6139, 77.2090}
	mumbai    = cityCoords{"Mumbai", 19.0760, 72.8777}
	bangalore = cityCoords{"Bangalore", 12.9716, 77.5946}
)

func seedProduct(id, name, desc string, price float64, unit, image string, moq, avail float64, vendor, category string, rating float64, city cityCoords) models.Product {
	lat, lng := city.lat, city.lng
	return models.Product{
		ID:                id,
		Name:              name,
		Description:       desc,
		Price:             decimal.NewFromFloat(price),
		QuantityUnit:      unit,
		ImageURL:          image,
		MinOrderQuantity:  decimal.NewFromFloat(moq),
		AvailableQuantity: decimal.NewFromFloat(avail),
		VendorName:        vendor,
		Category:          category,
		VendorRating:      rating,
		City:              city.name,
		Latitude:          &lat,
		Longitude:         &lng,
	}
}

// SeedProducts returns the demo catalog used when no database is configured
func SeedProducts() []models.Product {
	return []models.Product{
		seedProduct("1", "Organic Apples", "Freshly picked organic apples, sweet and crisp. Perfect for snacking or baking.",
			120, "per kg", "/apple.jpg", 1, 50, "Patil Farms", "Fruits", 4.8, delhi),
		seedProduct("2", "Heirloom Tomatoes", "Vibrant and flavorful heirloom tomatoes, ideal for salads and gourmet dishes.",
			90, "per kg", "/tomato.jpg", 0.5, 30, "Ramesh Ecogrow", "Vegetables", 4.5, mumbai),
		seedProduct("3", "Fresh Spinach", "Nutrient-rich fresh spinach, great for smoothies, salads, or sautéing.",
			60, "per bunch", "/spinach.jpg", 1, 100, "Mukesh Harvest", "Leafy Greens", 4.7, bangalore),
		seedProduct("4", "Sweet Potatoes", "Naturally sweet and versatile sweet potatoes, perfect for roasting or mashing.",
			90, "per kg", "/potato.jpg", 2, 80, "Farm fresh Co.", "Vegetables", 4.1, delhi),
		seedProduct("5", "Organic Bananas", "Ripe organic bananas, a healthy and convenient snack.",
			70, "per dozen", "/bananas.jpg", 1, 60, "Gupta Farm Pvt Ltd.", "Fruits", 4.3, mumbai),
		seedProduct("9", "Fresh Oranges", "Juicy and sweet oranges, perfect for a healthy snack or fresh juice.",
			100, "per kg", "/oranges.jpg", 1, 45, "Citrus Fruit", "Fruits", 4.0, bangalore),
		seedProduct("10", "Bitter Gourd (Karela)", "Fresh bitter gourd, known for its health benefits and unique taste.",
			70, "per kg", "/karela.jpg", 0.5, 35, "Healthy Bites", "Vegetables", 3.9, delhi),
		seedProduct("11", "Garlic", "Pungent and flavorful garlic, essential for many cuisines.",
			120, "per 250g", "/garlic.jpg", 0.25, 60, "Spice Route", "Vegetables", 4.4, mumbai),
	}
}
