package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"strconv"
	"text/tabwriter"
	"time"

	"github.com/shopspring/decimal"
	"github.com/spf13/cobra"

	"github.com/smartvegis/marketplace/internal/catalog"
	"github.com/smartvegis/marketplace/internal/db"
	"github.com/smartvegis/marketplace/internal/geo"
	"github.com/smartvegis/marketplace/internal/models"
	"github.com/smartvegis/marketplace/internal/repository"
	"github.com/smartvegis/marketplace/internal/seed"
	"github.com/smartvegis/marketplace/internal/service"
)

// =============================================================================
// SEED COMMAND - load catalog files into postgres
// =============================================================================

func newSeedCmd() *cobra.Command {
	var (
		sources     []string
		databaseURL string
		dryRun      bool
		timeout     time.Duration
	)

	cmd := &cobra.Command{
		Use:   "seed",
		Short: "Load catalog sources into the products table",
		Long: `Loads YAML or JSON catalogs (optionally gzipped, local paths or http URLs)
and upserts every product into postgres. Later sources win on duplicate ids.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, cancel := context.WithTimeout(cmd.Context(), timeout)
			defer cancel()

			result, err := seed.NewLoader().Load(ctx, sources)
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "loaded %d products from %d sources (%d duplicates)\n",
				len(result.Products), result.Sources, result.Duplicates)

			if dryRun {
				return nil
			}
			if databaseURL == "" {
				return fmt.Errorf("--database-url or DATABASE_URL is required")
			}

			pool, err := db.Connect(ctx, databaseURL)
			if err != nil {
				return err
			}
			defer pool.Close()

			repo := repository.NewPostgresProductRepository(pool)
			for _, p := range result.Products {
				if err := repo.Upsert(ctx, p); err != nil {
					return fmt.Errorf("failed to upsert product %s: %w", p.ID, err)
				}
			}
			fmt.Fprintf(out, "upserted %d products\n", len(result.Products))
			return nil
		},
	}

	cmd.Flags().StringSliceVar(&sources, "source", nil, "catalog file or URL (repeatable)")
	cmd.Flags().StringVar(&databaseURL, "database-url", os.Getenv("DATABASE_URL"), "postgres connection string")
	cmd.Flags().BoolVar(&dryRun, "dry-run", false, "validate sources without writing")
	cmd.Flags().DurationVar(&timeout, "timeout", 5*time.Minute, "overall timeout")
	_ = cmd.MarkFlagRequired("source")
	return cmd
}

// =============================================================================
// BROWSE COMMAND - run the filter pipeline over a catalog
// =============================================================================

type locationFlags struct {
	nearest  bool
	lat, lng string
}

func (f *locationFlags) register(cmd *cobra.Command) {
	cmd.Flags().BoolVar(&f.nearest, "nearest", false, "sort by distance from --lat/--lng")
	cmd.Flags().StringVar(&f.lat, "lat", "", "latitude of the buyer")
	cmd.Flags().StringVar(&f.lng, "lng", "", "longitude of the buyer")
}

// resolve returns the buyer position, falling back to the default location
func (f *locationFlags) resolve(ctx context.Context, warn io.Writer) geo.Fix {
	locator := geo.LocatorFunc(func(ctx context.Context) (geo.Point, error) {
		if f.lat == "" && f.lng == "" {
			return geo.Point{}, geo.ErrUnavailable
		}
		lat, err := strconv.ParseFloat(f.lat, 64)
		if err != nil {
			return geo.Point{}, geo.ErrInvalidPosition
		}
		lng, err := strconv.ParseFloat(f.lng, 64)
		if err != nil {
			return geo.Point{}, geo.ErrInvalidPosition
		}
		return geo.Point{Lat: lat, Lng: lng}, nil
	})

	fix := geo.Resolve(ctx, locator, geo.DefaultLocation)
	if fix.Fallback {
		fmt.Fprintln(warn, "warning:", fix.Warning)
	}
	return fix
}

func newBrowseCmd() *cobra.Command {
	var (
		sources  []string
		state    = catalog.DefaultFilterState()
		minPrice string
		maxPrice string
		location locationFlags
	)

	cmd := &cobra.Command{
		Use:   "browse",
		Short: "Filter and print the catalog",
		RunE: func(cmd *cobra.Command, args []string) error {
			var err error
			if state.Price.Min, err = parsePrice(minPrice); err != nil {
				return fmt.Errorf("invalid --min-price: %w", err)
			}
			if state.Price.Max, err = parsePrice(maxPrice); err != nil {
				return fmt.Errorf("invalid --max-price: %w", err)
			}

			products, err := loadProducts(cmd.Context(), sources)
			if err != nil {
				return err
			}

			state.NearestFirst = location.nearest
			if location.nearest {
				fix := location.resolve(cmd.Context(), cmd.ErrOrStderr())
				state.UserLocation = &fix.Point
			}

			return printListings(cmd.OutOrStdout(), catalog.Apply(products, state))
		},
	}

	cmd.Flags().StringSliceVar(&sources, "source", nil, "catalog file or URL; defaults to the demo catalog")
	cmd.Flags().StringVar(&state.Category, "category", catalog.AllCategories, "category to keep")
	cmd.Flags().Float64Var(&state.MinRating, "min-rating", catalog.NoRatingFilter, "minimum vendor rating")
	cmd.Flags().StringVar(&minPrice, "min-price", "", "minimum price")
	cmd.Flags().StringVar(&maxPrice, "max-price", "", "maximum price")
	cmd.Flags().StringVar(&state.Search, "search", "", "match name, vendor or city")
	location.register(cmd)
	return cmd
}

// =============================================================================
// VENDORS COMMAND - vendor map markers
// =============================================================================

func newVendorsCmd() *cobra.Command {
	var (
		sources  []string
		location locationFlags
	)

	cmd := &cobra.Command{
		Use:   "vendors",
		Short: "Print one line per located vendor",
		RunE: func(cmd *cobra.Command, args []string) error {
			products, err := loadProducts(cmd.Context(), sources)
			if err != nil {
				return err
			}

			var origin *geo.Point
			if location.nearest || location.lat != "" || location.lng != "" {
				fix := location.resolve(cmd.Context(), cmd.ErrOrStderr())
				origin = &fix.Point
			}

			return printVendors(cmd.OutOrStdout(), service.Vendors(products, origin, location.nearest))
		},
	}

	cmd.Flags().StringSliceVar(&sources, "source", nil, "catalog file or URL; defaults to the demo catalog")
	location.register(cmd)
	return cmd
}

// =============================================================================
// HELPERS
// =============================================================================

func loadProducts(ctx context.Context, sources []string) ([]models.Product, error) {
	if len(sources) == 0 {
		return repository.SeedProducts(), nil
	}
	result, err := seed.NewLoader().Load(ctx, sources)
	if err != nil {
		return nil, err
	}
	return result.Products, nil
}

func parsePrice(v string) (decimal.Decimal, error) {
	if v == "" {
		return decimal.Zero, nil
	}
	d, err := decimal.NewFromString(v)
	if err != nil {
		return decimal.Zero, err
	}
	if d.IsNegative() {
		return decimal.Zero, fmt.Errorf("price cannot be negative")
	}
	return d, nil
}

func printListings(w io.Writer, listings []models.Listing) error {
	tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "ID\tNAME\tCATEGORY\tPRICE\tVENDOR\tRATING\tCITY\tDISTANCE")
	for _, l := range listings {
		fmt.Fprintf(tw, "%s\t%s\t%s\t%s %s\t%s\t%.1f\t%s\t%s\n",
			l.ID, l.Name, l.Category, l.Price.StringFixed(2), l.QuantityUnit,
			l.VendorName, l.VendorRating, l.City, formatDistance(l.Distance))
	}
	return tw.Flush()
}

func printVendors(w io.Writer, vendors []models.VendorSummary) error {
	tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "VENDOR\tRATING\tCITY\tPRODUCTS\tDISTANCE")
	for _, v := range vendors {
		fmt.Fprintf(tw, "%s\t%.1f\t%s\t%d\t%s\n",
			v.Name, v.Rating, v.City, v.ProductsCount, formatDistance(v.Distance))
	}
	return tw.Flush()
}

func formatDistance(d *float64) string {
	if d == nil {
		return "-"
	}
	return fmt.Sprintf("%.1f km", *d)
}
