package handlers

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/smartvegis/marketplace/internal/models"
	"github.com/smartvegis/marketplace/internal/service"
)

// ProfileHandler handles the signed-in user's profile and favorite vendors
type ProfileHandler struct {
	service *service.ProfileService
	logger  *slog.Logger
}

// NewProfileHandler creates a new profile handler
func NewProfileHandler(service *service.ProfileService, logger *slog.Logger) *ProfileHandler {
	return &ProfileHandler{
		service: service,
		logger:  logger,
	}
}

// GetProfile handles GET /api/profile
func (h *ProfileHandler) GetProfile(w http.ResponseWriter, r *http.Request) {
	profile, err := h.service.GetProfile(r.Context(), userID(r))
	if err != nil {
		WriteServiceError(w, err, h.logger)
		return
	}
	WriteJSON(w, http.StatusOK, profile, h.logger)
}

// UpdateProfile handles PUT /api/profile
func (h *ProfileHandler) UpdateProfile(w http.ResponseWriter, r *http.Request) {
	var update models.ProfileUpdate
	if err := decodeJSON(w, r, &update); err != nil {
		WriteError(w, http.StatusBadRequest, "Invalid request body", h.logger)
		return
	}

	profile, err := h.service.UpdateProfile(r.Context(), userID(r), update)
	if err != nil {
		WriteServiceError(w, err, h.logger)
		return
	}
	WriteJSON(w, http.StatusOK, profile, h.logger)
}

// Favorites handles GET /api/profile/favorites
func (h *ProfileHandler) Favorites(w http.ResponseWriter, r *http.Request) {
	favorites, err := h.service.Favorites(r.Context(), userID(r))
	h.writeFavorites(w, favorites, err)
}

// AddFavorite handles PUT /api/profile/favorites/{vendorName}
func (h *ProfileHandler) AddFavorite(w http.ResponseWriter, r *http.Request) {
	favorites, err := h.service.AddFavorite(r.Context(), userID(r), chi.URLParam(r, "vendorName"))
	h.writeFavorites(w, favorites, err)
}

// RemoveFavorite handles DELETE /api/profile/favorites/{vendorName}
func (h *ProfileHandler) RemoveFavorite(w http.ResponseWriter, r *http.Request) {
	favorites, err := h.service.RemoveFavorite(r.Context(), userID(r), chi.URLParam(r, "vendorName"))
	h.writeFavorites(w, favorites, err)
}

func (h *ProfileHandler) writeFavorites(w http.ResponseWriter, favorites []string, err error) {
	if err != nil {
		WriteServiceError(w, err, h.logger)
		return
	}
	if favorites == nil {
		favorites = []string{}
	}
	WriteJSON(w, http.StatusOK, map[string][]string{"favoriteVendors": favorites}, h.logger)
}
