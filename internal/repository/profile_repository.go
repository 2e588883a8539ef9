package repository

import (
	"context"
	"errors"
	"slices"
	"sync"

	"github.com/smartvegis/marketplace/internal/models"
)

var (
	ErrProfileNotFound = errors.New("profile not found")
)

// ProfileRepository defines data access for user profiles and favorite vendors
type ProfileRepository interface {
	GetByID(ctx context.Context, id string) (*models.Profile, error)
	Upsert(ctx context.Context, profile models.Profile) error
	AddFavorite(ctx context.Context, userID, vendorName string) error
	RemoveFavorite(ctx context.Context, userID, vendorName string) error
}

// InMemoryProfileRepository implements ProfileRepository with in-memory storage
type InMemoryProfileRepository struct {
	profiles map[string]models.Profile
	mu       sync.RWMutex
}

// NewInMemoryProfileRepository creates an empty profile repository
func NewInMemoryProfileRepository() *InMemoryProfileRepository {
	return &InMemoryProfileRepository{
		profiles: make(map[string]models.Profile),
	}
}

// GetByID returns a copy of the profile
func (r *InMemoryProfileRepository) GetByID(ctx context.Context, id string) (*models.Profile, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	profile, ok := r.profiles[id]
	if !ok {
		return nil, ErrProfileNotFound
	}
	profile.FavoriteVendors = slices.Clone(profile.FavoriteVendors)
	if profile.FavoriteVendors == nil {
		profile.FavoriteVendors = []string{}
	}
	return &profile, nil
}

// Upsert stores profile, keeping any existing favorites
func (r *InMemoryProfileRepository) Upsert(ctx context.Context, profile models.Profile) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if existing, ok := r.profiles[profile.ID]; ok {
		profile.FavoriteVendors = existing.FavoriteVendors
	} else {
		profile.FavoriteVendors = nil
	}
	r.profiles[profile.ID] = profile
	return nil
}

// AddFavorite marks a vendor as favorite; adding twice is a no-op
func (r *InMemoryProfileRepository) AddFavorite(ctx context.Context, userID, vendorName string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	profile, ok := r.profiles[userID]
	if !ok {
		return ErrProfileNotFound
	}
	if !slices.Contains(profile.FavoriteVendors, vendorName) {
		profile.FavoriteVendors = append(slices.Clone(profile.FavoriteVendors), vendorName)
		slices.Sort(profile.FavoriteVendors)
	}
	r.profiles[userID] = profile
	return nil
}

// RemoveFavorite unmarks a vendor; unknown vendors are ignored
func (r *InMemoryProfileRepository) RemoveFavorite(ctx context.Context, userID, vendorName string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	profile, ok := r.profiles[userID]
	if !ok {
		return ErrProfileNotFound
	}
	profile.FavoriteVendors = slices.DeleteFunc(slices.Clone(profile.FavoriteVendors), func(v string) bool {
		return v == vendorName
	})
	r.profiles[userID] = profile
	return nil
}
