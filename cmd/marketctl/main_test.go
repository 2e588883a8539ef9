package main

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func run(t *testing.T, args ...string) (string, string, error) {
	t.Helper()
	var stdout, stderr bytes.Buffer
	root := newRootCmd()
	root.SetOut(&stdout)
	root.SetErr(&stderr)
	root.SetArgs(args)
	err := root.Execute()
	return stdout.String(), stderr.String(), err
}

func rows(out string) []string {
	lines := strings.Split(strings.TrimSpace(out), "\n")
	return lines[1:]
}

func TestBrowse_DemoCatalog(t *testing.T) {
	out, _, err := run(t, "browse", "--category", "Vegetables")
	require.NoError(t, err)

	lines := rows(out)
	require.Len(t, lines, 4)
	for i, id := range []string{"2", "4", "10", "11"} {
		assert.True(t, strings.HasPrefix(lines[i], id+" "), lines[i])
	}
}

func TestBrowse_NearestFallbackWarns(t *testing.T) {
	out, stderr, err := run(t, "browse", "--nearest")
	require.NoError(t, err)
	assert.Contains(t, stderr, "using default location")
	assert.Len(t, rows(out), 8)
	assert.Contains(t, out, " km")
}

func TestBrowse_InvalidPrice(t *testing.T) {
	_, _, err := run(t, "browse", "--min-price", "cheap")
	assert.Error(t, err)
}

func TestBrowse_FromSource(t *testing.T) {
	path := filepath.Join(t.TempDir(), "catalog.yaml")
	require.NoError(t, os.WriteFile(path, []byte(`
- id: "p1"
  name: Okra
  description: Tender okra
  price: 55
  quantityUnit: per kg
  minOrderQuantity: 1
  availableQuantity: 20
  vendorName: Green Leaf
  category: Vegetables
  vendorRating: 4.2
  city: Pune
  latitude: 18.5204
  longitude: 73.8567
`), 0o644))

	out, _, err := run(t, "browse", "--source", path, "--search", "pune")
	require.NoError(t, err)
	lines := rows(out)
	require.Len(t, lines, 1)
	assert.Contains(t, lines[0], "Okra")
	assert.Contains(t, lines[0], "55.00 per kg")

	out, _, err = run(t, "vendors", "--source", path)
	require.NoError(t, err)
	assert.Contains(t, out, "Green Leaf")
}

func TestVendors_Nearest(t *testing.T) {
	out, stderr, err := run(t, "vendors", "--nearest", "--lat", "12.9716", "--lng", "77.5946")
	require.NoError(t, err)
	assert.Empty(t, stderr)

	lines := rows(out)
	require.Len(t, lines, 8)
	assert.True(t, strings.HasPrefix(lines[0], "Mukesh Harvest"), lines[0])
	assert.Contains(t, lines[0], "0.0 km")
}

func TestSeed_DryRun(t *testing.T) {
	path := filepath.Join(t.TempDir(), "catalog.json")
	require.NoError(t, os.WriteFile(path, []byte(`[{"id":"j1","name":"Mango","description":"Alphonso","price":300,
"quantityUnit":"per dozen","minOrderQuantity":1,"availableQuantity":10,"vendorName":"Konkan Farms",
"category":"Fruits","vendorRating":4.9}]`), 0o644))

	out, _, err := run(t, "seed", "--source", path, "--dry-run")
	require.NoError(t, err)
	assert.Contains(t, out, "loaded 1 products from 1 sources")

	_, _, err = run(t, "seed", "--dry-run")
	assert.Error(t, err, "--source is required")
}
