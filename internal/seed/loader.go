// Package seed loads product catalogs from local files or HTTP URLs.
// Sources may be YAML or JSON lists of products, optionally gzipped.
package seed

import (
	"bufio"
	"bytes"
	"compress/gzip"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"os"
	"path"
	"strings"
	"sync"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/smartvegis/marketplace/internal/models"
)

var (
	ErrNoSources      = errors.New("no catalog sources provided")
	ErrInvalidProduct = errors.New("invalid product")
)

// Loader reads catalogs from several sources concurrently
type Loader struct {
	client *http.Client
}

// Result is the merged catalog together with load statistics
type Result struct {
	Products   []models.Product
	Sources    int
	PerSource  []int
	Duplicates int
}

// sourceLoadResult holds the result of loading a single source
type sourceLoadResult struct {
	index    int
	products []models.Product
	err      error
}

// NewLoader creates a loader using a default HTTP client
func NewLoader() *Loader {
	return &Loader{
		client: &http.Client{Timeout: 2 * time.Minute},
	}
}

// NewLoaderWithClient creates a loader that fetches URLs with client
func NewLoaderWithClient(client *http.Client) *Loader {
	return &Loader{client: client}
}

// Load fetches every source concurrently and merges them in source order.
// A product id seen again in a later source replaces the earlier entry.
// Any failing source fails the whole load.
func (l *Loader) Load(ctx context.Context, sources []string) (*Result, error) {
	if len(sources) == 0 {
		return nil, ErrNoSources
	}

	resultChan := make(chan sourceLoadResult, len(sources))

	var wg sync.WaitGroup
	for i, src := range sources {
		wg.Add(1)
		go func(index int, source string) {
			defer wg.Done()

			products, err := l.loadSource(ctx, source)
			resultChan <- sourceLoadResult{
				index:    index,
				products: products,
				err:      err,
			}
		}(i, src)
	}

	go func() {
		wg.Wait()
		close(resultChan)
	}()

	results := make([]sourceLoadResult, len(sources))
	for result := range resultChan {
		results[result.index] = result
	}

	for i, result := range results {
		if result.err != nil {
			return nil, fmt.Errorf("failed to load source %d (%s): %w", i+1, sources[i], result.err)
		}
	}

	merged := &Result{
		Sources:   len(sources),
		PerSource: make([]int, len(sources)),
	}
	position := make(map[string]int)
	for i, result := range results {
		merged.PerSource[i] = len(result.products)
		for _, p := range result.products {
			if at, seen := position[p.ID]; seen {
				merged.Products[at] = p
				merged.Duplicates++
				continue
			}
			position[p.ID] = len(merged.Products)
			merged.Products = append(merged.Products, p)
		}
	}

	return merged, nil
}

func (l *Loader) loadSource(ctx context.Context, source string) ([]models.Product, error) {
	var body io.ReadCloser
	if strings.HasPrefix(source, "http://") || strings.HasPrefix(source, "https://") {
		req, err := http.NewRequestWithContext(ctx, http.MethodGet, source, nil)
		if err != nil {
			return nil, fmt.Errorf("failed to create request: %w", err)
		}
		resp, err := l.client.Do(req)
		if err != nil {
			return nil, fmt.Errorf("failed to download catalog: %w", err)
		}
		if resp.StatusCode != http.StatusOK {
			resp.Body.Close()
			return nil, fmt.Errorf("unexpected status code: %d", resp.StatusCode)
		}
		body = resp.Body
	} else {
		f, err := os.Open(source)
		if err != nil {
			return nil, fmt.Errorf("failed to open catalog: %w", err)
		}
		body = f
	}
	defer body.Close()

	return Parse(body, formatOf(source))
}

// Format is the encoding of a catalog source
type Format int

const (
	FormatYAML Format = iota
	FormatJSON
)

func formatOf(source string) Format {
	name := strings.ToLower(source)
	if i := strings.IndexAny(name, "?#"); i >= 0 {
		name = name[:i]
	}
	name = strings.TrimSuffix(name, ".gz")
	if path.Ext(name) == ".json" {
		return FormatJSON
	}
	return FormatYAML
}

// Parse decodes a catalog in the given format, transparently gunzipping it,
// and validates every product
func Parse(r io.Reader, format Format) ([]models.Product, error) {
	br := bufio.NewReader(r)
	var src io.Reader = br
	if magic, err := br.Peek(2); err == nil && bytes.Equal(magic, []byte{0x1f, 0x8b}) {
		gz, err := gzip.NewReader(br)
		if err != nil {
			return nil, fmt.Errorf("failed to create gzip reader: %w", err)
		}
		defer gz.Close()
		src = gz
	}

	var products []models.Product
	switch format {
	case FormatJSON:
		if err := json.NewDecoder(src).Decode(&products); err != nil {
			return nil, fmt.Errorf("failed to decode JSON catalog: %w", err)
		}
	default:
		if err := yaml.NewDecoder(src).Decode(&products); err != nil && !errors.Is(err, io.EOF) {
			return nil, fmt.Errorf("failed to decode YAML catalog: %w", err)
		}
	}

	for i, p := range products {
		if err := Validate(p); err != nil {
			return nil, fmt.Errorf("entry %d: %w", i+1, err)
		}
	}
	return products, nil
}

// Validate checks the catalog invariants of a seeded product
func Validate(p models.Product) error {
	switch {
	case strings.TrimSpace(p.ID) == "":
		return fmt.Errorf("%w: id is required", ErrInvalidProduct)
	case strings.TrimSpace(p.Name) == "":
		return fmt.Errorf("%w: product %s has no name", ErrInvalidProduct, p.ID)
	case strings.TrimSpace(p.VendorName) == "":
		return fmt.Errorf("%w: product %s has no vendor", ErrInvalidProduct, p.ID)
	case !p.Price.IsPositive():
		return fmt.Errorf("%w: product %s price must be positive", ErrInvalidProduct, p.ID)
	case !p.MinOrderQuantity.IsPositive():
		return fmt.Errorf("%w: product %s minimum order quantity must be positive", ErrInvalidProduct, p.ID)
	case p.AvailableQuantity.IsNegative():
		return fmt.Errorf("%w: product %s available quantity is negative", ErrInvalidProduct, p.ID)
	case p.MinOrderQuantity.GreaterThan(p.AvailableQuantity):
		return fmt.Errorf("%w: product %s minimum order quantity exceeds available quantity", ErrInvalidProduct, p.ID)
	case p.VendorRating < 0 || p.VendorRating > 5:
		return fmt.Errorf("%w: product %s vendor rating must be between 0 and 5", ErrInvalidProduct, p.ID)
	case (p.Latitude == nil) != (p.Longitude == nil):
		return fmt.Errorf("%w: product %s needs both latitude and longitude", ErrInvalidProduct, p.ID)
	}
	if loc, ok := p.Location(); ok {
		if err := loc.Validate(); err != nil {
			return fmt.Errorf("%w: product %s: %v", ErrInvalidProduct, p.ID, err)
		}
	}
	return nil
}
