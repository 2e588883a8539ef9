package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/smartvegis/marketplace/internal/models"
	"github.com/smartvegis/marketplace/internal/repository"
)

var (
	ErrInvalidProfile = errors.New("invalid profile")
	ErrVendorNotFound = errors.New("vendor not found")
)

// ProfileService manages user profiles and favorite vendors
type ProfileService struct {
	profiles repository.ProfileRepository
	products repository.ProductRepository
	logger   *slog.Logger
	now      func() time.Time
}

// NewProfileService creates a new profile service
func NewProfileService(profiles repository.ProfileRepository, products repository.ProductRepository, logger *slog.Logger) *ProfileService {
	return &ProfileService{
		profiles: profiles,
		products: products,
		logger:   logger,
		now:      time.Now,
	}
}

// GetProfile returns the user's profile
func (s *ProfileService) GetProfile(ctx context.Context, userID string) (*models.Profile, error) {
	return s.profiles.GetByID(ctx, userID)
}

// UpdateProfile replaces the editable profile fields. An empty role keeps the current one.
func (s *ProfileService) UpdateProfile(ctx context.Context, userID string, update models.ProfileUpdate) (*models.Profile, error) {
	profile, err := s.profiles.GetByID(ctx, userID)
	if err != nil {
		return nil, err
	}

	if update.Role != "" {
		if !update.Role.Valid() {
			return nil, fmt.Errorf("%w: role must be client or vendor", ErrInvalidProfile)
		}
		profile.Role = update.Role
	}
	profile.FirstName = strings.TrimSpace(update.FirstName)
	profile.LastName = strings.TrimSpace(update.LastName)
	profile.Phone = strings.TrimSpace(update.Phone)
	profile.Location = strings.TrimSpace(update.Location)
	profile.AvatarURL = strings.TrimSpace(update.AvatarURL)
	profile.UpdatedAt = s.now().UTC()

	if err := s.profiles.Upsert(ctx, *profile); err != nil {
		return nil, err
	}

	s.logger.Info("profile updated", "user_id", userID)
	return s.profiles.GetByID(ctx, userID)
}

// Favorites returns the names of the user's favorite vendors
func (s *ProfileService) Favorites(ctx context.Context, userID string) ([]string, error) {
	profile, err := s.profiles.GetByID(ctx, userID)
	if err != nil {
		return nil, err
	}
	return profile.FavoriteVendors, nil
}

// AddFavorite marks a catalog vendor as favorite
func (s *ProfileService) AddFavorite(ctx context.Context, userID, vendorName string) ([]string, error) {
	products, err := s.products.GetAll(ctx)
	if err != nil {
		return nil, err
	}
	known := false
	for _, p := range products {
		if p.VendorName == vendorName {
			known = true
			break
		}
	}
	if !known {
		return nil, ErrVendorNotFound
	}

	if err := s.profiles.AddFavorite(ctx, userID, vendorName); err != nil {
		return nil, err
	}
	return s.Favorites(ctx, userID)
}

// RemoveFavorite unmarks a vendor
func (s *ProfileService) RemoveFavorite(ctx context.Context, userID, vendorName string) ([]string, error) {
	if err := s.profiles.RemoveFavorite(ctx, userID, vendorName); err != nil {
		return nil, err
	}
	return s.Favorites(ctx, userID)
}
