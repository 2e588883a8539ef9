// Package auth issues and verifies session tokens and publishes
// session-change events to subscribers.
package auth

import (
	"context"
	"errors"
	"fmt"
	"net/mail"
	"strings"
	"sync"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"

	"github.com/smartvegis/marketplace/internal/models"
	"github.com/smartvegis/marketplace/internal/repository"
)

// MinPasswordLength is the shortest accepted password
const MinPasswordLength = 6

var (
	ErrInvalidCredentials = errors.New("invalid email or password")
	ErrInvalidEmail       = errors.New("invalid email address")
	ErrWeakPassword       = errors.New("password is too short")
	ErrInvalidRole        = errors.New("role must be client or vendor")
	ErrInvalidToken       = errors.New("invalid or expired session")
)

// EventType names a session change
type EventType string

const (
	SignedUp  EventType = "SIGNED_UP"
	SignedIn  EventType = "SIGNED_IN"
	SignedOut EventType = "SIGNED_OUT"
)

// Event is published whenever a session starts or ends
type Event struct {
	Type   EventType
	UserID string
	Role   models.Role
	At     time.Time
}

// Claims are the JWT claims carried by a session token
type Claims struct {
	UserID string      `json:"userId"`
	Email  string      `json:"email"`
	Role   models.Role `json:"role"`
	jwt.RegisteredClaims
}

// RevocationStore remembers signed-out tokens until they expire
type RevocationStore interface {
	Revoke(ctx context.Context, tokenID string, expiresAt time.Time) error
	IsRevoked(ctx context.Context, tokenID string) (bool, error)
}

// Service handles sign up, sign in, sign out and token verification
type Service struct {
	users       repository.UserRepository
	profiles    repository.ProfileRepository
	revocations RevocationStore
	secret      []byte
	ttl         time.Duration
	now         func() time.Time

	mu        sync.RWMutex
	listeners []func(Event)
}

// NewService creates an auth service. A nil revocation store keeps revocations in memory.
func NewService(users repository.UserRepository, profiles repository.ProfileRepository, revocations RevocationStore, secret string, ttl time.Duration) *Service {
	if revocations == nil {
		revocations = NewMemoryRevocations()
	}
	return &Service{
		users:       users,
		profiles:    profiles,
		revocations: revocations,
		secret:      []byte(secret),
		ttl:         ttl,
		now:         time.Now,
	}
}

// Subscribe registers fn to receive session-change events
func (s *Service) Subscribe(fn func(Event)) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.listeners = append(s.listeners, fn)
}

func (s *Service) publish(e Event) {
	s.mu.RLock()
	listeners := s.listeners
	s.mu.RUnlock()

	for _, fn := range listeners {
		fn(e)
	}
}

// SignUp registers a user with an empty profile and signs them in
func (s *Service) SignUp(ctx context.Context, creds models.Credentials) (*models.Session, error) {
	email := strings.TrimSpace(creds.Email)
	if _, err := mail.ParseAddress(email); err != nil {
		return nil, ErrInvalidEmail
	}
	if len(creds.Password) < MinPasswordLength {
		return nil, fmt.Errorf("%w: at least %d characters required", ErrWeakPassword, MinPasswordLength)
	}
	role := creds.Role
	if role == "" {
		role = models.RoleClient
	}
	if !role.Valid() {
		return nil, ErrInvalidRole
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(creds.Password), bcrypt.DefaultCost)
	if err != nil {
		return nil, fmt.Errorf("failed to hash password: %w", err)
	}

	user := models.User{
		ID:           uuid.New().String(),
		Email:        email,
		PasswordHash: string(hash),
		Role:         role,
		CreatedAt:    s.now().UTC(),
	}
	if err := s.users.Create(ctx, user); err != nil {
		return nil, err
	}

	profile := models.Profile{ID: user.ID, Role: role, UpdatedAt: user.CreatedAt}
	if err := s.profiles.Upsert(ctx, profile); err != nil {
		if delErr := s.users.Delete(context.WithoutCancel(ctx), user.ID); delErr != nil {
			return nil, fmt.Errorf("failed to create profile: %w (removing user %s: %v)", err, user.ID, delErr)
		}
		return nil, fmt.Errorf("failed to create profile: %w", err)
	}

	session, err := s.issue(user)
	if err != nil {
		return nil, err
	}
	s.publish(Event{Type: SignedUp, UserID: user.ID, Role: role, At: s.now()})
	return session, nil
}

// SignIn checks the password and issues a session token
func (s *Service) SignIn(ctx context.Context, creds models.Credentials) (*models.Session, error) {
	user, err := s.users.GetByEmail(ctx, strings.TrimSpace(creds.Email))
	if errors.Is(err, repository.ErrUserNotFound) {
		return nil, ErrInvalidCredentials
	}
	if err != nil {
		return nil, err
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(creds.Password)); err != nil {
		return nil, ErrInvalidCredentials
	}

	// the profile role wins over the role recorded at sign up
	if profile, err := s.profiles.GetByID(ctx, user.ID); err == nil && profile.Role.Valid() {
		user.Role = profile.Role
	}

	session, err := s.issue(*user)
	if err != nil {
		return nil, err
	}
	s.publish(Event{Type: SignedIn, UserID: user.ID, Role: user.Role, At: s.now()})
	return session, nil
}

// SignOut revokes the session token
func (s *Service) SignOut(ctx context.Context, token string) error {
	claims, err := s.Verify(ctx, token)
	if err != nil {
		return err
	}
	if err := s.revocations.Revoke(ctx, claims.ID, claims.ExpiresAt.Time); err != nil {
		return err
	}
	s.publish(Event{Type: SignedOut, UserID: claims.UserID, Role: claims.Role, At: s.now()})
	return nil
}

// Verify parses token and checks signature, expiry and revocation
func (s *Service) Verify(ctx context.Context, token string) (*Claims, error) {
	claims := &Claims{}
	parsed, err := jwt.ParseWithClaims(token, claims, func(t *jwt.Token) (any, error) {
		return s.secret, nil
	},
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithTimeFunc(s.now),
		jwt.WithExpirationRequired(),
	)
	if err != nil || !parsed.Valid {
		return nil, ErrInvalidToken
	}

	revoked, err := s.revocations.IsRevoked(ctx, claims.ID)
	if err != nil {
		return nil, err
	}
	if revoked {
		return nil, ErrInvalidToken
	}
	return claims, nil
}

func (s *Service) issue(user models.User) (*models.Session, error) {
	now := s.now()
	expiresAt := now.Add(s.ttl)
	claims := Claims{
		UserID: user.ID,
		Email:  user.Email,
		Role:   user.Role,
		RegisteredClaims: jwt.RegisteredClaims{
			ID:        uuid.New().String(),
			Subject:   user.ID,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(expiresAt),
		},
	}

	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(s.secret)
	if err != nil {
		return nil, fmt.Errorf("failed to sign session token: %w", err)
	}

	return &models.Session{
		Token:     signed,
		ExpiresAt: expiresAt.UTC(),
		User:      user,
	}, nil
}

// MemoryRevocations is an in-process RevocationStore
type MemoryRevocations struct {
	revoked map[string]time.Time
	mu      sync.Mutex
}

// NewMemoryRevocations creates an empty revocation list
func NewMemoryRevocations() *MemoryRevocations {
	return &MemoryRevocations{revoked: make(map[string]time.Time)}
}

func (m *MemoryRevocations) Revoke(ctx context.Context, tokenID string, expiresAt time.Time) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	now := time.Now()
	for id, exp := range m.revoked {
		if exp.Before(now) {
			delete(m.revoked, id)
		}
	}
	m.revoked[tokenID] = expiresAt
	return nil
}

func (m *MemoryRevocations) IsRevoked(ctx context.Context, tokenID string) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	_, ok := m.revoked[tokenID]
	return ok, nil
}
