package handlers

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/smartvegis/marketplace/internal/models"
	"github.com/smartvegis/marketplace/internal/service"
)

// CartHandler handles the signed-in user's cart
type CartHandler struct {
	carts  *service.CartService
	orders *service.OrderService
	logger *slog.Logger
}

// NewCartHandler creates a new cart handler
func NewCartHandler(carts *service.CartService, orders *service.OrderService, logger *slog.Logger) *CartHandler {
	return &CartHandler{
		carts:  carts,
		orders: orders,
		logger: logger,
	}
}

// GetCart handles GET /api/cart
func (h *CartHandler) GetCart(w http.ResponseWriter, r *http.Request) {
	WriteJSON(w, http.StatusOK, h.carts.GetCart(r.Context(), userID(r)), h.logger)
}

// AddItem handles POST /api/cart/items
// - 200: cart after the addition
// - 400: quantity is not positive, below the minimum or above what is available
// - 404: Product not found
func (h *CartHandler) AddItem(w http.ResponseWriter, r *http.Request) {
	var req models.AddToCartRequest
	if err := decodeJSON(w, r, &req); err != nil {
		WriteError(w, http.StatusBadRequest, "Invalid request body", h.logger)
		return
	}
	if req.ProductID == "" {
		WriteError(w, http.StatusBadRequest, "Invalid ID supplied", h.logger)
		return
	}

	view, err := h.carts.AddToCart(r.Context(), userID(r), req.ProductID, req.Quantity)
	if err != nil {
		WriteServiceError(w, err, h.logger)
		return
	}

	WriteJSON(w, http.StatusOK, view, h.logger)
}

// RemoveItem handles DELETE /api/cart/items/{productId}
func (h *CartHandler) RemoveItem(w http.ResponseWriter, r *http.Request) {
	view := h.carts.RemoveFromCart(r.Context(), userID(r), chi.URLParam(r, "productId"))
	WriteJSON(w, http.StatusOK, view, h.logger)
}

// Checkout handles POST /api/cart/checkout
func (h *CartHandler) Checkout(w http.ResponseWriter, r *http.Request) {
	orders, err := h.orders.Checkout(r.Context(), userID(r))
	if err != nil {
		WriteServiceError(w, err, h.logger)
		return
	}

	WriteJSON(w, http.StatusCreated, orders, h.logger)
	h.logger.Info("order placed successfully", "user_id", userID(r), "orders_count", len(orders))
}
