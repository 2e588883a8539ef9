package handlers

import (
	"log/slog"
	"net/http"
	"strconv"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/shopspring/decimal"

	"github.com/smartvegis/marketplace/internal/catalog"
	"github.com/smartvegis/marketplace/internal/geo"
	"github.com/smartvegis/marketplace/internal/models"
	"github.com/smartvegis/marketplace/internal/service"
)

// ProductHandler handles product-related HTTP requests
type ProductHandler struct {
	service  *service.ProductService
	fallback geo.Point
	logger   *slog.Logger
}

// NewProductHandler creates a new product handler. fallback is used for
// proximity sorting when the request carries no usable position.
func NewProductHandler(service *service.ProductService, fallback geo.Point, logger *slog.Logger) *ProductHandler {
	return &ProductHandler{
		service:  service,
		fallback: fallback,
		logger:   logger,
	}
}

// ListingsResponse is the body of GET /api/product
type ListingsResponse struct {
	Products []models.Listing    `json:"products"`
	Count    int                 `json:"count"`
	Filters  catalog.FilterState `json:"filters"`
	Location *geo.Fix            `json:"location,omitempty"`
}

// ListProducts handles GET /api/product
// Query parameters: category, minRating, minPrice, maxPrice, search, nearest, lat, lng.
// With nearest=true the listings are sorted by distance from lat/lng, or from
// the default location when no valid position is given.
func (h *ProductHandler) ListProducts(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	state, err := parseFilterState(r)
	if err != nil {
		h.logger.Warn("invalid filter parameters", "error", err)
		WriteError(w, http.StatusBadRequest, err.Error(), h.logger)
		return
	}

	var fix *geo.Fix
	if state.NearestFirst {
		resolved := geo.Resolve(ctx, geo.QueryLocator{Request: r}, h.fallback)
		fix = &resolved
		state.UserLocation = &resolved.Point
	}

	listings, err := h.service.Browse(ctx, state)
	if err != nil {
		h.logger.Error("failed to list products", "error", err)
		WriteError(w, http.StatusInternalServerError, "Internal server error", h.logger)
		return
	}

	WriteJSON(w, http.StatusOK, ListingsResponse{
		Products: listings,
		Count:    len(listings),
		Filters:  state,
		Location: fix,
	}, h.logger)
}

// GetProduct handles GET /api/product/{productId}
// - 200: successful operation
// - 400: Invalid ID supplied
// - 404: Product not found
func (h *ProductHandler) GetProduct(w http.ResponseWriter, r *http.Request) {
	productID := strings.TrimSpace(chi.URLParam(r, "productId"))
	if productID == "" {
		WriteError(w, http.StatusBadRequest, "Invalid ID supplied", h.logger)
		return
	}

	product, err := h.service.GetProduct(r.Context(), productID)
	if err != nil {
		WriteServiceError(w, err, h.logger)
		return
	}

	WriteJSON(w, http.StatusOK, product, h.logger)
}

// Categories handles GET /api/product/categories
func (h *ProductHandler) Categories(w http.ResponseWriter, r *http.Request) {
	categories, err := h.service.Categories(r.Context())
	if err != nil {
		WriteServiceError(w, err, h.logger)
		return
	}

	WriteJSON(w, http.StatusOK, append([]string{catalog.AllCategories}, categories...), h.logger)
}

// CreateProduct handles POST /api/product for vendors
func (h *ProductHandler) CreateProduct(w http.ResponseWriter, r *http.Request) {
	var input models.ProductInput
	if err := decodeJSON(w, r, &input); err != nil {
		WriteError(w, http.StatusBadRequest, "Invalid request body", h.logger)
		return
	}

	product, err := h.service.CreateProduct(r.Context(), userID(r), input)
	if err != nil {
		WriteServiceError(w, err, h.logger)
		return
	}

	WriteJSON(w, http.StatusCreated, product, h.logger)
}

// UpdateProduct handles PUT /api/product/{productId} for the owning vendor
func (h *ProductHandler) UpdateProduct(w http.ResponseWriter, r *http.Request) {
	var input models.ProductInput
	if err := decodeJSON(w, r, &input); err != nil {
		WriteError(w, http.StatusBadRequest, "Invalid request body", h.logger)
		return
	}

	product, err := h.service.UpdateProduct(r.Context(), userID(r), chi.URLParam(r, "productId"), input)
	if err != nil {
		WriteServiceError(w, err, h.logger)
		return
	}

	WriteJSON(w, http.StatusOK, product, h.logger)
}

// DeleteProduct handles DELETE /api/product/{productId} for the owning vendor
func (h *ProductHandler) DeleteProduct(w http.ResponseWriter, r *http.Request) {
	if err := h.service.DeleteProduct(r.Context(), userID(r), chi.URLParam(r, "productId")); err != nil {
		WriteServiceError(w, err, h.logger)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

// parseFilterState reads browse criteria from the query string. Absent
// parameters keep their defaults.
func parseFilterState(r *http.Request) (catalog.FilterState, error) {
	q := r.URL.Query()
	state := catalog.DefaultFilterState()

	if v := strings.TrimSpace(q.Get("category")); v != "" {
		state.Category = v
	}
	state.Search = q.Get("search")

	if v := q.Get("minRating"); v != "" {
		rating, err := strconv.ParseFloat(v, 64)
		if err != nil || rating < 0 || rating > 5 {
			return state, errInvalidParam("minRating")
		}
		state.MinRating = rating
	}

	if v := q.Get("minPrice"); v != "" {
		price, err := decimal.NewFromString(v)
		if err != nil || price.IsNegative() {
			return state, errInvalidParam("minPrice")
		}
		state.Price.Min = price
	}
	if v := q.Get("maxPrice"); v != "" {
		price, err := decimal.NewFromString(v)
		if err != nil || price.IsNegative() {
			return state, errInvalidParam("maxPrice")
		}
		state.Price.Max = price
	}

	if v := q.Get("nearest"); v != "" {
		nearest, err := strconv.ParseBool(v)
		if err != nil {
			return state, errInvalidParam("nearest")
		}
		state.NearestFirst = nearest
	}

	return state, nil
}

type errInvalidParam string

func (e errInvalidParam) Error() string {
	return "Invalid " + string(e) + " parameter"
}
