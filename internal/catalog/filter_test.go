package catalog

import (
	"fmt"
	"math/rand"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/smartvegis/marketplace/internal/geo"
	"github.com/smartvegis/marketplace/internal/models"
)

func coord(v float64) *float64 { return &v }

func product(id, name, vendor, category string, price float64, rating float64) models.Product {
	return models.Product{
		ID:                id,
		Name:              name,
		VendorName:        vendor,
		Category:          category,
		Price:             decimal.NewFromFloat(price),
		VendorRating:      rating,
		MinOrderQuantity:  decimal.NewFromInt(1),
		AvailableQuantity: decimal.NewFromInt(50),
	}
}

func located(p models.Product, lat, lng float64) models.Product {
	p.Latitude = coord(lat)
	p.Longitude = coord(lng)
	return p
}

func ids(listings []models.Listing) []string {
	out := make([]string, len(listings))
	for i, l := range listings {
		out[i] = l.ID
	}
	return out
}

func fixture() []models.Product {
	return []models.Product{
		located(product("1", "Organic Apples", "Patil Farms", "Fruits", 120, 4.8), 28.6139, 77.2090),
		located(product("2", "Heirloom Tomatoes", "Ramesh Ecogrow", "Vegetables", 90, 4.0), 19.0760, 72.8777),
		located(product("3", "Fresh Spinach", "Mukesh Harvest", "Vegetables", 60, 4.7), 12.9716, 77.5946),
		product("4", "Sweet Potatoes", "Farm fresh Co.", "Vegetables", 90, 3.5),
		located(product("5", "Organic Bananas", "Gupta Farm Pvt Ltd.", "Fruits", 70, 4.2), 19.0760, 72.8777),
	}
}

func TestApply_CategoryExample(t *testing.T) {
	products := []models.Product{
		product("A", "Apples", "Patil Farms", "Fruits", 120, 4.8),
		product("B", "Beans", "Ramesh Ecogrow", "Vegetables", 90, 4.0),
	}

	state := DefaultFilterState()
	state.Category = "Vegetables"

	assert.Equal(t, []string{"B"}, ids(Apply(products, state)))
}

func TestByCategory(t *testing.T) {
	products := fixture()

	assert.Len(t, ByCategory(products, AllCategories), len(products))
	assert.Len(t, ByCategory(products, ""), len(products))
	assert.Len(t, ByCategory(products, "Fruits"), 2)
	assert.Empty(t, ByCategory(products, "fruits"), "category match is exact")
}

func TestByMinRating(t *testing.T) {
	products := fixture()

	assert.Len(t, ByMinRating(products, NoRatingFilter), len(products))

	got := ByMinRating(products, 4.2)
	for _, p := range got {
		assert.GreaterOrEqual(t, p.VendorRating, 4.2)
	}
	assert.Len(t, got, 3)
}

func TestByPrice(t *testing.T) {
	products := fixture()

	r := PriceRange{Min: decimal.NewFromInt(70), Max: decimal.NewFromInt(90)}
	got := ByPrice(products, r)
	require.Len(t, got, 3)
	for _, p := range got {
		assert.True(t, r.Contains(p.Price))
	}

	unbounded := PriceRange{Min: decimal.NewFromInt(100)}
	assert.Len(t, ByPrice(products, unbounded), 1)
}

func TestBySearch(t *testing.T) {
	products := fixture()
	products[3].City = "Pune"

	tests := []struct {
		name  string
		query string
		want  []string
	}{
		{name: "empty passes through", query: "", want: []string{"1", "2", "3", "4", "5"}},
		{name: "whitespace passes through", query: "   ", want: []string{"1", "2", "3", "4", "5"}},
		{name: "product name", query: "organic", want: []string{"1", "5"}},
		{name: "vendor name case-insensitive", query: "PATIL", want: []string{"1"}},
		{name: "city", query: "pune", want: []string{"4"}},
		{name: "no match", query: "durian", want: []string{}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := BySearch(products, tt.query)
			gotIDs := make([]string, 0, len(got))
			for _, p := range got {
				gotIDs = append(gotIDs, p.ID)
			}
			assert.Equal(t, tt.want, gotIDs)
		})
	}
}

func TestApply_EmptySearchResetsToFilteredBase(t *testing.T) {
	products := fixture()

	state := DefaultFilterState()
	state.Category = "Vegetables"
	state.MinRating = 4.0
	state.Search = "spinach"
	assert.Equal(t, []string{"3"}, ids(Apply(products, state)))

	state.Search = ""
	assert.Equal(t, []string{"2", "3"}, ids(Apply(products, state)),
		"clearing the search keeps category and rating filters")
}

func TestApply_SearchNarrows(t *testing.T) {
	products := fixture()
	base := Apply(products, DefaultFilterState())

	state := DefaultFilterState()
	state.Search = "Ramesh Ecogrow"
	narrowed := Apply(products, state)

	assert.Subset(t, ids(base), ids(narrowed))
	assert.Contains(t, ids(narrowed), "2")
}

func TestApply_DistanceSort(t *testing.T) {
	products := fixture()
	mumbai := geo.Point{Lat: 19.0760, Lng: 72.8777}

	state := DefaultFilterState()
	state.NearestFirst = true
	state.UserLocation = &mumbai

	got := Apply(products, state)
	assert.Equal(t, []string{"2", "5", "3", "1", "4"}, ids(got))
	assert.Nil(t, got[len(got)-1].Distance, "product without coordinates is last")
	require.NotNil(t, got[0].Distance)
	assert.InDelta(t, 0, *got[0].Distance, 1e-9)
}

func TestApply_DistanceDisabledStripsAnnotations(t *testing.T) {
	products := fixture()
	delhi := geo.Point{Lat: 28.6139, Lng: 77.2090}

	state := DefaultFilterState()
	state.UserLocation = &delhi

	got := Apply(products, state)
	assert.Equal(t, []string{"1", "2", "3", "4", "5"}, ids(got))
	for _, l := range got {
		assert.Nil(t, l.Distance)
	}

	state.NearestFirst = true
	state.UserLocation = nil
	for _, l := range Apply(products, state) {
		assert.Nil(t, l.Distance, "no fix means no sort")
	}
}

func TestApply_DoesNotMutateInput(t *testing.T) {
	products := fixture()
	before := ids(Apply(products, DefaultFilterState()))

	mumbai := geo.Point{Lat: 19.0760, Lng: 72.8777}
	state := DefaultFilterState()
	state.NearestFirst = true
	state.UserLocation = &mumbai
	Apply(products, state)

	assert.Equal(t, before, ids(Apply(products, DefaultFilterState())))
}

func TestApply_Properties(t *testing.T) {
	rng := rand.New(rand.NewSource(42))
	categories := []string{"Fruits", "Vegetables", "Herbs"}

	products := make([]models.Product, 200)
	for i := range products {
		p := product(
			fmt.Sprint(i+1),
			fmt.Sprintf("Item %d", i),
			fmt.Sprintf("Vendor %d", i%17),
			categories[rng.Intn(len(categories))],
			float64(rng.Intn(500)+1),
			float64(rng.Intn(51))/10,
		)
		if rng.Intn(4) != 0 {
			p = located(p, rng.Float64()*180-90, rng.Float64()*360-180)
		}
		products[i] = p
	}

	for i := 0; i < 50; i++ {
		lo := decimal.NewFromInt(int64(rng.Intn(250)))
		hi := lo.Add(decimal.NewFromInt(int64(rng.Intn(250) + 1)))
		user := geo.Point{Lat: rng.Float64()*180 - 90, Lng: rng.Float64()*360 - 180}
		state := FilterState{
			Category:     categories[rng.Intn(len(categories))],
			MinRating:    float64(rng.Intn(51)) / 10,
			Price:        PriceRange{Min: lo, Max: hi},
			NearestFirst: true,
			UserLocation: &user,
		}

		got := Apply(products, state)
		seenMissing := false
		last := -1.0
		for _, l := range got {
			assert.Equal(t, state.Category, l.Category)
			assert.GreaterOrEqual(t, l.VendorRating, state.MinRating)
			assert.True(t, l.Price.GreaterThanOrEqual(lo) && l.Price.LessThanOrEqual(hi))

			if l.Distance == nil {
				seenMissing = true
				continue
			}
			assert.False(t, seenMissing, "located product after one without coordinates")
			assert.GreaterOrEqual(t, *l.Distance, last)
			last = *l.Distance
		}
	}
}

func TestCategoriesAndPriceBounds(t *testing.T) {
	products := fixture()

	assert.Equal(t, []string{"Fruits", "Vegetables"}, Categories(products))

	bounds := PriceBounds(products)
	assert.True(t, bounds.Min.Equal(decimal.NewFromInt(60)))
	assert.True(t, bounds.Max.Equal(decimal.NewFromInt(120)))

	assert.Equal(t, PriceRange{}, PriceBounds(nil))
}

func TestSortByID(t *testing.T) {
	products := []models.Product{{ID: "10"}, {ID: "2"}, {ID: "1"}}
	SortByID(products)
	assert.Equal(t, "1", products[0].ID)
	assert.Equal(t, "2", products[1].ID)
	assert.Equal(t, "10", products[2].ID)
}
