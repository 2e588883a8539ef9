package seed

import (
	"bytes"
	"compress/gzip"
	"context"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/smartvegis/marketplace/internal/models"
)

const yamlCatalog = `
- id: "1"
  name: Organic Apples
  price: 120
  quantityUnit: per kg
  minOrderQuantity: 1
  availableQuantity: 50
  vendorName: Patil Farms
  category: Fruits
  vendorRating: 4.8
  city: Delhi
  latitude: 28.6139
  longitude: 77.2090
- id: "2"
  name: Heirloom Tomatoes
  price: 90.50
  quantityUnit: per kg
  minOrderQuantity: 0.5
  availableQuantity: 30
  vendorName: Ramesh Ecogrow
  category: Vegetables
  vendorRating: 4.5
`

const jsonCatalog = `[
  {"id": "2", "name": "Heirloom Tomatoes", "price": 95, "quantityUnit": "per kg",
   "minOrderQuantity": 0.5, "availableQuantity": 20, "vendorName": "Ramesh Ecogrow",
   "category": "Vegetables", "vendorRating": 4.5},
  {"id": "3", "name": "Fresh Spinach", "price": "60", "quantityUnit": "per bunch",
   "minOrderQuantity": 1, "availableQuantity": 100, "vendorName": "Mukesh Harvest",
   "category": "Leafy Greens", "vendorRating": 4.7}
]`

func writeFile(t *testing.T, dir, name string, data []byte) string {
	t.Helper()
	p := filepath.Join(dir, name)
	require.NoError(t, os.WriteFile(p, data, 0o644))
	return p
}

func gzipped(t *testing.T, s string) []byte {
	t.Helper()
	var buf bytes.Buffer
	zw := gzip.NewWriter(&buf)
	_, err := zw.Write([]byte(s))
	require.NoError(t, err)
	require.NoError(t, zw.Close())
	return buf.Bytes()
}

func TestParse_YAML(t *testing.T) {
	products, err := Parse(strings.NewReader(yamlCatalog), FormatYAML)
	require.NoError(t, err)
	require.Len(t, products, 2)

	assert.Equal(t, "Organic Apples", products[0].Name)
	assert.True(t, products[0].Price.Equal(decimal.NewFromInt(120)))
	require.NotNil(t, products[0].Latitude)
	assert.InDelta(t, 28.6139, *products[0].Latitude, 1e-9)

	assert.True(t, products[1].MinOrderQuantity.Equal(decimal.RequireFromString("0.5")))
	assert.Nil(t, products[1].Latitude)
}

func TestParse_GzipDetectedByMagic(t *testing.T) {
	products, err := Parse(bytes.NewReader(gzipped(t, jsonCatalog)), FormatJSON)
	require.NoError(t, err)
	assert.Len(t, products, 2)
}

func TestParse_EmptyYAML(t *testing.T) {
	products, err := Parse(strings.NewReader(""), FormatYAML)
	require.NoError(t, err)
	assert.Empty(t, products)
}

func TestValidate(t *testing.T) {
	lat := 10.0
	valid := models.Product{
		ID:                "1",
		Name:              "Apples",
		VendorName:        "Patil Farms",
		Price:             decimal.NewFromInt(1),
		MinOrderQuantity:  decimal.NewFromInt(1),
		AvailableQuantity: decimal.NewFromInt(1),
	}
	require.NoError(t, Validate(valid))

	tests := []struct {
		name   string
		mutate func(p *models.Product)
	}{
		{"missing id", func(p *models.Product) { p.ID = "" }},
		{"missing name", func(p *models.Product) { p.Name = " " }},
		{"missing vendor", func(p *models.Product) { p.VendorName = "" }},
		{"zero price", func(p *models.Product) { p.Price = decimal.Zero }},
		{"zero minimum", func(p *models.Product) { p.MinOrderQuantity = decimal.Zero }},
		{"minimum above available", func(p *models.Product) { p.MinOrderQuantity = decimal.NewFromInt(2) }},
		{"rating out of range", func(p *models.Product) { p.VendorRating = 5.5 }},
		{"half a coordinate", func(p *models.Product) { p.Latitude = &lat }},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p := valid
			tt.mutate(&p)
			assert.ErrorIs(t, Validate(p), ErrInvalidProduct)
		})
	}
}

func TestLoader_Load(t *testing.T) {
	dir := t.TempDir()
	yamlPath := writeFile(t, dir, "base.yaml", []byte(yamlCatalog))
	jsonPath := writeFile(t, dir, "update.json.gz", gzipped(t, jsonCatalog))

	result, err := NewLoader().Load(context.Background(), []string{yamlPath, jsonPath})
	require.NoError(t, err)

	assert.Equal(t, 2, result.Sources)
	assert.Equal(t, []int{2, 2}, result.PerSource)
	assert.Equal(t, 1, result.Duplicates)
	require.Len(t, result.Products, 3)

	// later sources win but keep the original position
	assert.Equal(t, "2", result.Products[1].ID)
	assert.True(t, result.Products[1].Price.Equal(decimal.NewFromInt(95)))
	assert.Equal(t, "3", result.Products[2].ID)
}

func TestLoader_LoadFromURL(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/catalog.json" {
			http.NotFound(w, r)
			return
		}
		_, _ = w.Write([]byte(jsonCatalog))
	}))
	defer srv.Close()

	loader := NewLoaderWithClient(srv.Client())

	result, err := loader.Load(context.Background(), []string{srv.URL + "/catalog.json"})
	require.NoError(t, err)
	assert.Len(t, result.Products, 2)

	_, err = loader.Load(context.Background(), []string{srv.URL + "/missing.json"})
	assert.Error(t, err)
}

func TestLoader_Errors(t *testing.T) {
	loader := NewLoader()

	_, err := loader.Load(context.Background(), nil)
	assert.ErrorIs(t, err, ErrNoSources)

	_, err = loader.Load(context.Background(), []string{"/non/existent/catalog.yaml"})
	assert.Error(t, err)

	dir := t.TempDir()
	bad := writeFile(t, dir, "bad.yaml", []byte("- id: \"1\"\n  name: Apples\n  vendorName: X\n  price: 0\n"))
	_, err = loader.Load(context.Background(), []string{bad})
	assert.ErrorIs(t, err, ErrInvalidProduct)
}

func TestFormatOf(t *testing.T) {
	assert.Equal(t, FormatJSON, formatOf("catalog.json"))
	assert.Equal(t, FormatJSON, formatOf("catalog.JSON.gz"))
	assert.Equal(t, FormatJSON, formatOf("https://example.com/catalog.json?v=2"))
	assert.Equal(t, FormatYAML, formatOf("catalog.yaml"))
	assert.Equal(t, FormatYAML, formatOf("catalog"))
}
