package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/smartvegis/marketplace/internal/catalog"
	"github.com/smartvegis/marketplace/internal/models"
	"github.com/smartvegis/marketplace/internal/repository"
)

var (
	ErrInvalidProduct    = errors.New("invalid product")
	ErrNotProductOwner   = errors.New("product belongs to another vendor")
	ErrIncompleteProfile = errors.New("vendor profile is incomplete")
)

// CatalogCache caches the full product list between writes
type CatalogCache interface {
	GetProducts(ctx context.Context) ([]models.Product, bool, error)
	SetProducts(ctx context.Context, products []models.Product) error
	Invalidate(ctx context.Context) error
}

// ProductService handles business logic for products
type ProductService struct {
	repo     repository.ProductRepository
	profiles repository.ProfileRepository
	cache    CatalogCache
	logger   *slog.Logger
}

// NewProductService creates a new product service. cache may be nil.
func NewProductService(repo repository.ProductRepository, profiles repository.ProfileRepository, cache CatalogCache, logger *slog.Logger) *ProductService {
	return &ProductService{
		repo:     repo,
		profiles: profiles,
		cache:    cache,
		logger:   logger,
	}
}

// ListProducts returns all products in catalog order
func (s *ProductService) ListProducts(ctx context.Context) ([]models.Product, error) {
	if s.cache != nil {
		products, ok, err := s.cache.GetProducts(ctx)
		if err != nil {
			s.logger.Warn("catalog cache read failed", "error", err)
		} else if ok {
			return products, nil
		}
	}

	products, err := s.repo.GetAll(ctx)
	if err != nil {
		return nil, err
	}

	if s.cache != nil {
		if err := s.cache.SetProducts(ctx, products); err != nil {
			s.logger.Warn("catalog cache write failed", "error", err)
		}
	}
	return products, nil
}

// Browse runs the filter pipeline over the current catalog
func (s *ProductService) Browse(ctx context.Context, state catalog.FilterState) ([]models.Listing, error) {
	products, err := s.ListProducts(ctx)
	if err != nil {
		return nil, err
	}
	return catalog.Apply(products, state), nil
}

// GetProduct returns a product by ID
func (s *ProductService) GetProduct(ctx context.Context, id string) (*models.Product, error) {
	return s.repo.GetByID(ctx, id)
}

// Categories returns the distinct product categories, sorted
func (s *ProductService) Categories(ctx context.Context) ([]string, error) {
	products, err := s.ListProducts(ctx)
	if err != nil {
		return nil, err
	}
	return catalog.Categories(products), nil
}

// CreateProduct lists a new product for the vendor. The vendor name is taken
// from the vendor's profile and the rating from their existing listings.
func (s *ProductService) CreateProduct(ctx context.Context, vendorID string, input models.ProductInput) (*models.Product, error) {
	if err := ValidateProductInput(input); err != nil {
		return nil, err
	}

	profile, err := s.profiles.GetByID(ctx, vendorID)
	if err != nil {
		if errors.Is(err, repository.ErrProfileNotFound) {
			return nil, fmt.Errorf("%w: add your name to your profile before listing products", ErrIncompleteProfile)
		}
		return nil, err
	}
	vendorName := profile.DisplayName()
	if vendorName == "" {
		return nil, fmt.Errorf("%w: add your name to your profile before listing products", ErrIncompleteProfile)
	}

	rating, err := s.vendorRating(ctx, vendorID)
	if err != nil {
		return nil, err
	}

	product := models.Product{
		ID:           uuid.New().String(),
		VendorID:     vendorID,
		VendorName:   vendorName,
		VendorRating: rating,
	}
	applyInput(&product, input)

	if err := s.repo.Create(ctx, product); err != nil {
		return nil, err
	}
	s.invalidate(ctx)

	s.logger.Info("product created", "product_id", product.ID, "vendor_id", vendorID)
	return &product, nil
}

// UpdateProduct replaces the editable fields of a product owned by the vendor
func (s *ProductService) UpdateProduct(ctx context.Context, vendorID, id string, input models.ProductInput) (*models.Product, error) {
	if err := ValidateProductInput(input); err != nil {
		return nil, err
	}

	product, err := s.owned(ctx, vendorID, id)
	if err != nil {
		return nil, err
	}
	applyInput(product, input)

	if err := s.repo.Update(ctx, *product); err != nil {
		return nil, err
	}
	s.invalidate(ctx)

	s.logger.Info("product updated", "product_id", id, "vendor_id", vendorID)
	return product, nil
}

// DeleteProduct removes a product owned by the vendor
func (s *ProductService) DeleteProduct(ctx context.Context, vendorID, id string) error {
	if _, err := s.owned(ctx, vendorID, id); err != nil {
		return err
	}
	if err := s.repo.Delete(ctx, id); err != nil {
		return err
	}
	s.invalidate(ctx)

	s.logger.Info("product deleted", "product_id", id, "vendor_id", vendorID)
	return nil
}

// ValidateProductInput checks the fields a vendor submits when adding or editing a product
func ValidateProductInput(in models.ProductInput) error {
	if strings.TrimSpace(in.Name) == "" || strings.TrimSpace(in.Description) == "" ||
		strings.TrimSpace(in.QuantityUnit) == "" || strings.TrimSpace(in.Category) == "" {
		return fmt.Errorf("%w: please fill in all fields", ErrInvalidProduct)
	}
	if !in.Price.IsPositive() {
		return fmt.Errorf("%w: price must be a positive number", ErrInvalidProduct)
	}
	if !in.MinOrderQuantity.IsPositive() {
		return fmt.Errorf("%w: minimum order quantity must be a positive number", ErrInvalidProduct)
	}
	if !in.AvailableQuantity.IsPositive() {
		return fmt.Errorf("%w: available quantity must be a positive number", ErrInvalidProduct)
	}
	if !fitsScale(in.Price, models.PriceScale) {
		return fmt.Errorf("%w: price can have at most %d decimal places", ErrInvalidProduct, models.PriceScale)
	}
	if !fitsScale(in.MinOrderQuantity, models.QuantityScale) || !fitsScale(in.AvailableQuantity, models.QuantityScale) {
		return fmt.Errorf("%w: quantities can have at most %d decimal places", ErrInvalidProduct, models.QuantityScale)
	}
	if in.MinOrderQuantity.GreaterThan(in.AvailableQuantity) {
		return fmt.Errorf("%w: minimum order quantity cannot be greater than available quantity", ErrInvalidProduct)
	}
	if (in.Latitude == nil) != (in.Longitude == nil) {
		return fmt.Errorf("%w: latitude and longitude must be given together", ErrInvalidProduct)
	}
	if in.Latitude != nil && (*in.Latitude < -90 || *in.Latitude > 90) {
		return fmt.Errorf("%w: latitude must be a number between -90 and 90", ErrInvalidProduct)
	}
	if in.Longitude != nil && (*in.Longitude < -180 || *in.Longitude > 180) {
		return fmt.Errorf("%w: longitude must be a number between -180 and 180", ErrInvalidProduct)
	}
	return nil
}

func fitsScale(d decimal.Decimal, places int32) bool {
	return d.Equal(d.Truncate(places))
}

func applyInput(p *models.Product, in models.ProductInput) {
	p.Name = strings.TrimSpace(in.Name)
	p.Description = strings.TrimSpace(in.Description)
	p.Price = in.Price
	p.QuantityUnit = strings.TrimSpace(in.QuantityUnit)
	p.ImageURL = in.ImageURL
	p.MinOrderQuantity = in.MinOrderQuantity
	p.AvailableQuantity = in.AvailableQuantity
	p.Category = strings.TrimSpace(in.Category)
	p.City = strings.TrimSpace(in.City)
	p.Latitude = in.Latitude
	p.Longitude = in.Longitude
}

func (s *ProductService) owned(ctx context.Context, vendorID, id string) (*models.Product, error) {
	product, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if product.VendorID != vendorID {
		return nil, ErrNotProductOwner
	}
	return product, nil
}

func (s *ProductService) vendorRating(ctx context.Context, vendorID string) (float64, error) {
	products, err := s.repo.GetAll(ctx)
	if err != nil {
		return 0, err
	}
	for _, p := range products {
		if p.VendorID == vendorID {
			return p.VendorRating, nil
		}
	}
	return 0, nil
}

func (s *ProductService) invalidate(ctx context.Context) {
	if s.cache == nil {
		return
	}
	if err := s.cache.Invalidate(ctx); err != nil {
		s.logger.Warn("catalog cache invalidation failed", "error", err)
	}
}
