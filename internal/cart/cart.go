// Package cart aggregates ordered quantities per product for a browsing session.
package cart

import (
	"errors"
	"fmt"
	"slices"
	"sync"

	"github.com/shopspring/decimal"

	"github.com/smartvegis/marketplace/internal/models"
)

var (
	ErrNonPositiveQuantity = errors.New("quantity must be greater than 0")
	ErrBelowMinimum        = errors.New("below minimum order quantity")
	ErrExceedsAvailable    = errors.New("exceeds available quantity")
	ErrTooPrecise          = errors.New("quantity has too many decimal places")
)

// Cart is an ordered list of lines, one per product id. A Cart is not safe
// for concurrent use; Store serializes access.
type Cart struct {
	lines []models.CartLine
}

// New returns an empty cart
func New() *Cart {
	return &Cart{}
}

// Validate checks quantity against the product's minimum order quantity and
// the stock not already held by this cart
func (c *Cart) Validate(p models.Product, quantity decimal.Decimal) error {
	if !quantity.IsPositive() {
		return fmt.Errorf("%w: please enter a quantity greater than 0", ErrNonPositiveQuantity)
	}
	if !quantity.Equal(quantity.Truncate(models.QuantityScale)) {
		return fmt.Errorf("%w: at most %d decimal places are allowed", ErrTooPrecise, models.QuantityScale)
	}
	if quantity.LessThan(p.MinOrderQuantity) {
		return fmt.Errorf("%w: minimum order quantity for %s is %s %s",
			ErrBelowMinimum, p.Name, p.MinOrderQuantity, p.QuantityUnit)
	}

	remaining := p.AvailableQuantity.Sub(c.Quantity(p.ID))
	if quantity.GreaterThan(remaining) {
		return fmt.Errorf("%w: only %s %s of %s are available",
			ErrExceedsAvailable, decimal.Max(remaining, decimal.Zero), p.QuantityUnit, p.Name)
	}
	return nil
}

// Add validates quantity and then increments the product's line, creating it on first add
func (c *Cart) Add(p models.Product, quantity decimal.Decimal) error {
	if err := c.Validate(p, quantity); err != nil {
		return err
	}

	if i := c.index(p.ID); i >= 0 {
		c.lines[i].OrderedQuantity = c.lines[i].OrderedQuantity.Add(quantity)
		return nil
	}

	c.lines = append(c.lines, models.CartLine{
		ProductID:       p.ID,
		Name:            p.Name,
		Price:           p.Price,
		QuantityUnit:    p.QuantityUnit,
		VendorName:      p.VendorName,
		OrderedQuantity: quantity,
	})
	return nil
}

// Remove deletes the line for productID. Unknown ids are ignored.
func (c *Cart) Remove(productID string) {
	if i := c.index(productID); i >= 0 {
		c.lines = slices.Delete(c.lines, i, i+1)
	}
}

// Quantity returns the ordered quantity of productID, zero if absent
func (c *Cart) Quantity(productID string) decimal.Decimal {
	if i := c.index(productID); i >= 0 {
		return c.lines[i].OrderedQuantity
	}
	return decimal.Zero
}

// Lines returns a copy of the cart lines in insertion order
func (c *Cart) Lines() []models.CartLine {
	return slices.Clone(c.lines)
}

// Len returns the number of distinct products in the cart
func (c *Cart) Len() int {
	return len(c.lines)
}

// TotalValue sums price times ordered quantity over all lines
func (c *Cart) TotalValue() decimal.Decimal {
	total := decimal.Zero
	for _, l := range c.lines {
		total = total.Add(l.Subtotal())
	}
	return total
}

// Clear empties the cart
func (c *Cart) Clear() {
	c.lines = nil
}

// View returns the client-facing representation of the cart
func (c *Cart) View() models.CartView {
	items := c.Lines()
	if items == nil {
		items = []models.CartLine{}
	}
	return models.CartView{Items: items, Total: c.TotalValue()}
}

func (c *Cart) index(productID string) int {
	return slices.IndexFunc(c.lines, func(l models.CartLine) bool {
		return l.ProductID == productID
	})
}

// Store keeps one cart per session in memory. Carts are lost on restart.
type Store struct {
	carts map[string]*Cart
	mu    sync.Mutex
}

// NewStore creates an empty cart store
func NewStore() *Store {
	return &Store{
		carts: make(map[string]*Cart),
	}
}

// Update runs fn against the session's cart, creating it if needed
func (s *Store) Update(sessionID string, fn func(*Cart) error) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	c, ok := s.carts[sessionID]
	if !ok {
		c = New()
		s.carts[sessionID] = c
	}
	return fn(c)
}

// View returns a snapshot of the session's cart
func (s *Store) View(sessionID string) models.CartView {
	s.mu.Lock()
	defer s.mu.Unlock()

	c, ok := s.carts[sessionID]
	if !ok {
		return New().View()
	}
	return c.View()
}

// Drop discards the session's cart
func (s *Store) Drop(sessionID string) {
	s.mu.Lock()
	defer s.mu.Unlock()

	delete(s.carts, sessionID)
}

// Take removes the session's cart from the store and returns it. Later
// updates for the session start a new cart. ok is false when the session has
// no cart or its cart is empty.
func (s *Store) Take(sessionID string) (c *Cart, ok bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	c, ok = s.carts[sessionID]
	if !ok || c.Len() == 0 {
		return nil, false
	}
	delete(s.carts, sessionID)
	return c, true
}

// Restore puts a taken cart back. Lines added to the session since Take are
// merged after the restored lines.
func (s *Store) Restore(sessionID string, c *Cart) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if current, ok := s.carts[sessionID]; ok {
		for _, l := range current.lines {
			if i := c.index(l.ProductID); i >= 0 {
				c.lines[i].OrderedQuantity = c.lines[i].OrderedQuantity.Add(l.OrderedQuantity)
				continue
			}
			c.lines = append(c.lines, l)
		}
	}
	s.carts[sessionID] = c
}
