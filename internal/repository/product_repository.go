package repository

import (
	"context"
	"errors"
	"sync"

	"github.com/shopspring/decimal"

	"github.com/smartvegis/marketplace/internal/catalog"
	"github.com/smartvegis/marketplace/internal/models"
)

var (
	ErrProductNotFound   = errors.New("product not found")
	ErrProductExists     = errors.New("product already exists")
	ErrInsufficientStock = errors.New("insufficient stock")
)

// ProductRepository defines the interface for product data access
type ProductRepository interface {
	GetAll(ctx context.Context) ([]models.Product, error)
	GetByID(ctx context.Context, id string) (*models.Product, error)
	Create(ctx context.Context, product models.Product) error
	Update(ctx context.Context, product models.Product) error
	Delete(ctx context.Context, id string) error
	// Reserve decrements the available quantity of a product, failing with
	// ErrInsufficientStock if less than quantity remains
	Reserve(ctx context.Context, id string, quantity decimal.Decimal) error
	// Release returns previously reserved quantity to a product
	Release(ctx context.Context, id string, quantity decimal.Decimal) error
}

// InMemoryProductRepository implements ProductRepository with in-memory storage
type InMemoryProductRepository struct {
	products map[string]models.Product
	mu       sync.RWMutex
}

// NewInMemoryProductRepository creates a new in-memory product repository with seed data
func NewInMemoryProductRepository() *InMemoryProductRepository {
	return NewInMemoryProductRepositoryWith(SeedProducts())
}

// NewInMemoryProductRepositoryWith creates an in-memory repository holding products
func NewInMemoryProductRepositoryWith(products []models.Product) *InMemoryProductRepository {
	byID := make(map[string]models.Product, len(products))
	for _, p := range products {
		byID[p.ID] = p
	}

	return &InMemoryProductRepository{
		products: byID,
	}
}

// GetAll returns all products ordered by id
func (r *InMemoryProductRepository) GetAll(ctx context.Context) ([]models.Product, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	products := make([]models.Product, 0, len(r.products))
	for _, product := range r.products {
		products = append(products, product)
	}
	catalog.SortByID(products)
	return products, nil
}

// GetByID returns a product by its ID
func (r *InMemoryProductRepository) GetByID(ctx context.Context, id string) (*models.Product, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	product, exists := r.products[id]
	if !exists {
		return nil, ErrProductNotFound
	}
	return &product, nil
}

// Create stores a new product
func (r *InMemoryProductRepository) Create(ctx context.Context, product models.Product) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.products[product.ID]; exists {
		return ErrProductExists
	}
	r.products[product.ID] = product
	return nil
}

// Update replaces an existing product
func (r *InMemoryProductRepository) Update(ctx context.Context, product models.Product) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.products[product.ID]; !exists {
		return ErrProductNotFound
	}
	r.products[product.ID] = product
	return nil
}

// Delete removes a product
func (r *InMemoryProductRepository) Delete(ctx context.Context, id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.products[id]; !exists {
		return ErrProductNotFound
	}
	delete(r.products, id)
	return nil
}

// Reserve decrements available stock
func (r *InMemoryProductRepository) Reserve(ctx context.Context, id string, quantity decimal.Decimal) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	product, exists := r.products[id]
	if !exists {
		return ErrProductNotFound
	}
	if product.AvailableQuantity.LessThan(quantity) {
		return ErrInsufficientStock
	}
	product.AvailableQuantity = product.AvailableQuantity.Sub(quantity)
	r.products[id] = product
	return nil
}

// Release returns reserved stock
func (r *InMemoryProductRepository) Release(ctx context.Context, id string, quantity decimal.Decimal) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	product, exists := r.products[id]
	if !exists {
		return ErrProductNotFound
	}
	product.AvailableQuantity = product.AvailableQuantity.Add(quantity)
	r.products[id] = product
	return nil
}
