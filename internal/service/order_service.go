package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/smartvegis/marketplace/internal/cart"
	"github.com/smartvegis/marketplace/internal/models"
	"github.com/smartvegis/marketplace/internal/repository"
)

var (
	ErrEmptyOrder = errors.New("order must contain at least one item")
)

// OrderService turns carts into orders
type OrderService struct {
	products repository.ProductRepository
	orders   repository.OrderRepository
	carts    *cart.Store
	cache    CatalogCache
	logger   *slog.Logger
	now      func() time.Time
}

// NewOrderService creates a new order service. cache may be nil; when set it
// is invalidated after stock changes.
func NewOrderService(products repository.ProductRepository, orders repository.OrderRepository, carts *cart.Store, cache CatalogCache, logger *slog.Logger) *OrderService {
	return &OrderService{
		products: products,
		orders:   orders,
		carts:    carts,
		cache:    cache,
		logger:   logger,
		now:      time.Now,
	}
}

// Checkout places one order per vendor for the client's cart, reserves the
// ordered stock and empties the cart. The cart is taken out of the store for
// the duration of the checkout, so a concurrent checkout of the same session
// sees an empty cart. On failure every reservation and order made so far is
// undone and the cart is put back.
func (s *OrderService) Checkout(ctx context.Context, clientID string) ([]models.Order, error) {
	c, ok := s.carts.Take(clientID)
	if !ok {
		return nil, ErrEmptyOrder
	}
	view := c.View()

	orders, err := s.place(ctx, clientID, view.Items)
	if err != nil {
		s.carts.Restore(clientID, c)
		return nil, err
	}

	if s.cache != nil {
		if err := s.cache.Invalidate(ctx); err != nil {
			s.logger.Warn("catalog cache invalidation failed", "error", err)
		}
	}

	s.logger.Info("checkout completed", "client_id", clientID, "orders", len(orders), "total", view.Total.String())
	return orders, nil
}

// place reserves stock for lines and stores the orders. Nothing it did
// survives a failure.
func (s *OrderService) place(ctx context.Context, clientID string, lines []models.CartLine) ([]models.Order, error) {
	// compensation must run even when the request context is cancelled
	undoCtx := context.WithoutCancel(ctx)

	reserved := make([]models.CartLine, 0, len(lines))
	release := func() {
		for _, l := range reserved {
			if err := s.products.Release(undoCtx, l.ProductID, l.OrderedQuantity); err != nil {
				s.logger.Error("failed to release stock", "product_id", l.ProductID, "error", err)
			}
		}
	}

	for _, line := range lines {
		if err := s.products.Reserve(ctx, line.ProductID, line.OrderedQuantity); err != nil {
			release()
			if errors.Is(err, repository.ErrInsufficientStock) {
				return nil, fmt.Errorf("%w: %s %s of %s no longer available",
					err, line.OrderedQuantity, line.QuantityUnit, line.Name)
			}
			return nil, err
		}
		reserved = append(reserved, line)
	}

	orders := groupByVendor(clientID, lines, s.now().UTC())
	for i, order := range orders {
		if err := s.orders.Create(ctx, order); err != nil {
			for _, placed := range orders[:i] {
				if err := s.orders.Delete(undoCtx, placed.ID); err != nil {
					s.logger.Error("failed to delete order", "order_id", placed.ID, "error", err)
				}
			}
			release()
			return nil, err
		}
	}
	return orders, nil
}

// ListOrders returns the client's orders, newest first
func (s *OrderService) ListOrders(ctx context.Context, clientID string) ([]models.Order, error) {
	return s.orders.ListByClient(ctx, clientID)
}

// GetOrder returns one of the client's orders. Orders of other clients are reported as not found.
func (s *OrderService) GetOrder(ctx context.Context, clientID, orderID string) (*models.Order, error) {
	order, err := s.orders.GetByID(ctx, orderID)
	if err != nil {
		return nil, err
	}
	if order.ClientID != clientID {
		return nil, repository.ErrOrderNotFound
	}
	return order, nil
}

// groupByVendor splits cart lines into one order per vendor, keeping the
// order in which vendors first appear in the cart
func groupByVendor(clientID string, lines []models.CartLine, at time.Time) []models.Order {
	index := make(map[string]int)
	orders := make([]models.Order, 0)

	for _, l := range lines {
		i, ok := index[l.VendorName]
		if !ok {
			i = len(orders)
			index[l.VendorName] = i
			orders = append(orders, models.Order{
				ID:         uuid.New().String(),
				ClientID:   clientID,
				VendorName: l.VendorName,
				Total:      decimal.Zero,
				Status:     models.OrderPlaced,
				CreatedAt:  at,
			})
		}
		orders[i].Items = append(orders[i].Items, models.OrderItem{
			ProductID: l.ProductID,
			Name:      l.Name,
			Quantity:  l.OrderedQuantity,
			Unit:      l.QuantityUnit,
			Price:     l.Price,
		})
		orders[i].Total = orders[i].Total.Add(l.Subtotal())
	}
	return orders
}
