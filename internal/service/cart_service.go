package service

import (
	"context"
	"log/slog"

	"github.com/shopspring/decimal"

	"github.com/smartvegis/marketplace/internal/cart"
	"github.com/smartvegis/marketplace/internal/models"
	"github.com/smartvegis/marketplace/internal/repository"
)

// CartService keeps a cart per session and validates additions against live stock
type CartService struct {
	products repository.ProductRepository
	carts    *cart.Store
	logger   *slog.Logger
}

// NewCartService creates a new cart service
func NewCartService(products repository.ProductRepository, carts *cart.Store, logger *slog.Logger) *CartService {
	return &CartService{
		products: products,
		carts:    carts,
		logger:   logger,
	}
}

// AddToCart adds quantity of a product to the session's cart
func (s *CartService) AddToCart(ctx context.Context, sessionID, productID string, quantity decimal.Decimal) (models.CartView, error) {
	product, err := s.products.GetByID(ctx, productID)
	if err != nil {
		return models.CartView{}, err
	}

	var view models.CartView
	err = s.carts.Update(sessionID, func(c *cart.Cart) error {
		if err := c.Add(*product, quantity); err != nil {
			return err
		}
		view = c.View()
		return nil
	})
	if err != nil {
		return models.CartView{}, err
	}

	s.logger.Debug("added to cart", "session_id", sessionID, "product_id", productID, "quantity", quantity.String())
	return view, nil
}

// RemoveFromCart removes a product line from the session's cart
func (s *CartService) RemoveFromCart(ctx context.Context, sessionID, productID string) models.CartView {
	var view models.CartView
	_ = s.carts.Update(sessionID, func(c *cart.Cart) error {
		c.Remove(productID)
		view = c.View()
		return nil
	})
	return view
}

// GetCart returns the session's cart lines and total
func (s *CartService) GetCart(ctx context.Context, sessionID string) models.CartView {
	return s.carts.View(sessionID)
}
