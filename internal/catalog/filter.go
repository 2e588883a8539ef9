// Package catalog implements the product browse pipeline: independent
// filter predicates composed in a fixed order, followed by an optional
// proximity sort.
package catalog

import (
	"cmp"
	"math"
	"slices"
	"sort"
	"strings"

	"github.com/shopspring/decimal"

	"github.com/smartvegis/marketplace/internal/geo"
	"github.com/smartvegis/marketplace/internal/models"
)

// AllCategories is the category sentinel that disables category filtering
const AllCategories = "All"

// NoRatingFilter is the rating threshold that disables rating filtering
const NoRatingFilter = 0.0

// PriceRange is an inclusive price interval. A zero Max leaves the range unbounded above.
type PriceRange struct {
	Min decimal.Decimal `json:"min"`
	Max decimal.Decimal `json:"max"`
}

// Contains reports whether price lies within the range
func (r PriceRange) Contains(price decimal.Decimal) bool {
	if price.LessThan(r.Min) {
		return false
	}
	if !r.Max.IsZero() && price.GreaterThan(r.Max) {
		return false
	}
	return true
}

// FilterState is the full set of browse criteria for one client view
type FilterState struct {
	Category         string     `json:"category"`
	MinRating        float64    `json:"minRating"`
	Price            PriceRange `json:"priceRange"`
	Search           string     `json:"search"`
	DeliveryLocation string     `json:"deliveryLocation,omitempty"`
	NearestFirst     bool       `json:"nearestFirst"`
	UserLocation     *geo.Point `json:"userLocation,omitempty"`
}

// DefaultFilterState returns criteria that keep every product in catalog order
func DefaultFilterState() FilterState {
	return FilterState{
		Category:  AllCategories,
		MinRating: NoRatingFilter,
	}
}

// ByCategory keeps products in category. "All" and the empty string keep everything.
func ByCategory(products []models.Product, category string) []models.Product {
	if category == "" || category == AllCategories {
		return products
	}
	return keep(products, func(p models.Product) bool {
		return p.Category == category
	})
}

// ByMinRating keeps products whose vendor rating is at least threshold
func ByMinRating(products []models.Product, threshold float64) []models.Product {
	if threshold <= NoRatingFilter {
		return products
	}
	return keep(products, func(p models.Product) bool {
		return p.VendorRating >= threshold
	})
}

// ByPrice keeps products priced within r
func ByPrice(products []models.Product, r PriceRange) []models.Product {
	return keep(products, func(p models.Product) bool {
		return r.Contains(p.Price)
	})
}

// BySearch keeps products whose name, vendor name or city contains query,
// ignoring case. A blank query keeps everything.
func BySearch(products []models.Product, query string) []models.Product {
	q := strings.ToLower(strings.TrimSpace(query))
	if q == "" {
		return products
	}
	return keep(products, func(p models.Product) bool {
		return strings.Contains(strings.ToLower(p.Name), q) ||
			strings.Contains(strings.ToLower(p.VendorName), q) ||
			(p.City != "" && strings.Contains(strings.ToLower(p.City), q))
	})
}

// SortByDistance returns listings ordered by Haversine distance from origin.
// Products without coordinates sort last. The sort is stable.
func SortByDistance(products []models.Product, origin geo.Point) []models.Listing {
	listings := make([]models.Listing, len(products))
	for i, p := range products {
		listings[i] = models.Listing{Product: p}
		if loc, ok := p.Location(); ok {
			d := geo.Distance(origin, loc)
			listings[i].Distance = &d
		}
	}

	sort.SliceStable(listings, func(i, j int) bool {
		return distanceOf(listings[i]) < distanceOf(listings[j])
	})
	return listings
}

// Apply runs category, rating, price and search filters in that order and
// then, when requested and a user fix exists, sorts by distance. The input
// slice is never modified.
func Apply(products []models.Product, state FilterState) []models.Listing {
	filtered := ByCategory(products, state.Category)
	filtered = ByMinRating(filtered, state.MinRating)
	filtered = ByPrice(filtered, state.Price)
	filtered = BySearch(filtered, state.Search)

	if state.NearestFirst && state.UserLocation != nil {
		return SortByDistance(filtered, *state.UserLocation)
	}

	listings := make([]models.Listing, len(filtered))
	for i, p := range filtered {
		listings[i] = models.Listing{Product: p}
	}
	return listings
}

// Categories returns the distinct categories present in products, sorted
func Categories(products []models.Product) []string {
	seen := make(map[string]struct{})
	categories := make([]string, 0)
	for _, p := range products {
		if p.Category == "" {
			continue
		}
		if _, ok := seen[p.Category]; ok {
			continue
		}
		seen[p.Category] = struct{}{}
		categories = append(categories, p.Category)
	}
	slices.Sort(categories)
	return categories
}

// PriceBounds returns the cheapest and most expensive price in products
func PriceBounds(products []models.Product) PriceRange {
	if len(products) == 0 {
		return PriceRange{}
	}
	r := PriceRange{Min: products[0].Price, Max: products[0].Price}
	for _, p := range products[1:] {
		r.Min = decimal.Min(r.Min, p.Price)
		r.Max = decimal.Max(r.Max, p.Price)
	}
	return r
}

// SortByID orders products by id, numerically where ids are numbers
func SortByID(products []models.Product) {
	slices.SortStableFunc(products, func(a, b models.Product) int {
		if len(a.ID) != len(b.ID) {
			return cmp.Compare(len(a.ID), len(b.ID))
		}
		return cmp.Compare(a.ID, b.ID)
	})
}

func distanceOf(l models.Listing) float64 {
	if l.Distance == nil {
		return math.Inf(1)
	}
	return *l.Distance
}

func keep(products []models.Product, pred func(models.Product) bool) []models.Product {
	out := make([]models.Product, 0, len(products))
	for _, p := range products {
		if pred(p) {
			out = append(out, p)
		}
	}
	return out
}
