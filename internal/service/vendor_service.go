package service

import (
	"context"
	"sort"

	"github.com/smartvegis/marketplace/internal/geo"
	"github.com/smartvegis/marketplace/internal/models"
)

// VendorService derives vendor map markers from the catalog
type VendorService struct {
	products *ProductService
}

// NewVendorService creates a new vendor service
func NewVendorService(products *ProductService) *VendorService {
	return &VendorService{products: products}
}

// ListVendors returns one summary per vendor with known coordinates, in
// catalog order. The first located product of a vendor fixes its position.
// When nearest is set and origin is known, vendors are sorted by distance.
func (s *VendorService) ListVendors(ctx context.Context, origin *geo.Point, nearest bool) ([]models.VendorSummary, error) {
	products, err := s.products.ListProducts(ctx)
	if err != nil {
		return nil, err
	}
	return Vendors(products, origin, nearest), nil
}

// Vendors builds vendor summaries from products
func Vendors(products []models.Product, origin *geo.Point, nearest bool) []models.VendorSummary {
	index := make(map[string]int)
	vendors := make([]models.VendorSummary, 0)

	for _, p := range products {
		loc, ok := p.Location()
		if !ok {
			continue
		}
		if i, seen := index[p.VendorName]; seen {
			vendors[i].ProductsCount++
			continue
		}
		index[p.VendorName] = len(vendors)
		vendors = append(vendors, models.VendorSummary{
			Name:          p.VendorName,
			Rating:        p.VendorRating,
			Latitude:      loc.Lat,
			Longitude:     loc.Lng,
			City:          p.City,
			ProductsCount: 1,
		})
	}

	if origin == nil {
		return vendors
	}
	for i := range vendors {
		d := geo.Distance(*origin, geo.Point{Lat: vendors[i].Latitude, Lng: vendors[i].Longitude})
		vendors[i].Distance = &d
	}
	if nearest {
		sort.SliceStable(vendors, func(i, j int) bool {
			return *vendors[i].Distance < *vendors[j].Distance
		})
	}
	return vendors
}
