package handlers

import (
	"log/slog"
	"net/http"
	"strconv"

	"github.com/smartvegis/marketplace/internal/geo"
	"github.com/smartvegis/marketplace/internal/models"
	"github.com/smartvegis/marketplace/internal/service"
)

// VendorHandler serves the discovery map: vendor markers and the user's position
type VendorHandler struct {
	service  *service.VendorService
	fallback geo.Point
	logger   *slog.Logger
}

// NewVendorHandler creates a new vendor handler
func NewVendorHandler(service *service.VendorService, fallback geo.Point, logger *slog.Logger) *VendorHandler {
	return &VendorHandler{
		service:  service,
		fallback: fallback,
		logger:   logger,
	}
}

// VendorsResponse is the body of GET /api/vendors
type VendorsResponse struct {
	Vendors  []models.VendorSummary `json:"vendors"`
	Location *geo.Fix               `json:"location,omitempty"`
}

// ListVendors handles GET /api/vendors
// Distances are included when lat/lng are given or nearest=true; nearest also sorts by them.
func (h *VendorHandler) ListVendors(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()

	nearest := false
	if v := q.Get("nearest"); v != "" {
		parsed, err := strconv.ParseBool(v)
		if err != nil {
			WriteError(w, http.StatusBadRequest, errInvalidParam("nearest").Error(), h.logger)
			return
		}
		nearest = parsed
	}

	var fix *geo.Fix
	if nearest || q.Has("lat") || q.Has("lng") {
		resolved := geo.Resolve(r.Context(), geo.QueryLocator{Request: r}, h.fallback)
		fix = &resolved
	}

	var origin *geo.Point
	if fix != nil {
		origin = &fix.Point
	}

	vendors, err := h.service.ListVendors(r.Context(), origin, nearest)
	if err != nil {
		WriteServiceError(w, err, h.logger)
		return
	}

	WriteJSON(w, http.StatusOK, VendorsResponse{Vendors: vendors, Location: fix}, h.logger)
}

// Locate handles GET /api/location
// It echoes the position given by lat/lng, or the default location with a warning.
func (h *VendorHandler) Locate(w http.ResponseWriter, r *http.Request) {
	fix := geo.Resolve(r.Context(), geo.QueryLocator{Request: r}, h.fallback)
	if fix.Fallback {
		h.logger.Debug("using fallback location", "warning", fix.Warning)
	}
	WriteJSON(w, http.StatusOK, fix, h.logger)
}
