package repository

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"

	"github.com/smartvegis/marketplace/internal/models"
)

// PostgresUserRepository implements UserRepository on a users table
type PostgresUserRepository struct {
	pool DB
}

// NewPostgresUserRepository creates a repository backed by pool
func NewPostgresUserRepository(pool DB) *PostgresUserRepository {
	return &PostgresUserRepository{pool: pool}
}

func (r *PostgresUserRepository) Create(ctx context.Context, user models.User) error {
	_, err := r.pool.Exec(ctx,
		"INSERT INTO users (id, email, password_hash, role, created_at) VALUES ($1, $2, $3, $4, $5)",
		user.ID, user.Email, user.PasswordHash, string(user.Role), user.CreatedAt,
	)
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) && pgErr.Code == uniqueViolation {
		return ErrEmailTaken
	}
	if err != nil {
		return fmt.Errorf("failed to create user: %w", err)
	}
	return nil
}

func (r *PostgresUserRepository) GetByEmail(ctx context.Context, email string) (*models.User, error) {
	return r.getOne(ctx, "SELECT id, email, password_hash, role, created_at FROM users WHERE LOWER(email) = LOWER($1)", email)
}

func (r *PostgresUserRepository) GetByID(ctx context.Context, id string) (*models.User, error) {
	return r.getOne(ctx, "SELECT id, email, password_hash, role, created_at FROM users WHERE id = $1", id)
}

func (r *PostgresUserRepository) Delete(ctx context.Context, id string) error {
	tag, err := r.pool.Exec(ctx, "DELETE FROM users WHERE id = $1", id)
	if err != nil {
		return fmt.Errorf("failed to delete user: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return ErrUserNotFound
	}
	return nil
}

func (r *PostgresUserRepository) getOne(ctx context.Context, query string, arg string) (*models.User, error) {
	var user models.User
	var role string
	err := r.pool.QueryRow(ctx, query, arg).Scan(&user.ID, &user.Email, &user.PasswordHash, &role, &user.CreatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrUserNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to load user: %w", err)
	}
	user.Role = models.Role(role)
	return &user, nil
}

// PostgresProfileRepository implements ProfileRepository on the profiles and favorite_vendors tables
type PostgresProfileRepository struct {
	pool DB
}

// NewPostgresProfileRepository creates a repository backed by pool
func NewPostgresProfileRepository(pool DB) *PostgresProfileRepository {
	return &PostgresProfileRepository{pool: pool}
}

func (r *PostgresProfileRepository) GetByID(ctx context.Context, id string) (*models.Profile, error) {
	var p models.Profile
	var role string
	err := r.pool.QueryRow(ctx, `
		SELECT id, first_name, last_name, phone, location, role, avatar_url, updated_at
		FROM profiles WHERE id = $1`, id,
	).Scan(&p.ID, &p.FirstName, &p.LastName, &p.Phone, &p.Location, &role, &p.AvatarURL, &p.UpdatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrProfileNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to load profile: %w", err)
	}
	p.Role = models.Role(role)

	rows, err := r.pool.Query(ctx,
		"SELECT vendor_name FROM favorite_vendors WHERE user_id = $1 ORDER BY vendor_name", id)
	if err != nil {
		return nil, fmt.Errorf("failed to load favorite vendors: %w", err)
	}
	favorites, err := pgx.CollectRows(rows, pgx.RowTo[string])
	if err != nil {
		return nil, fmt.Errorf("failed to read favorite vendors: %w", err)
	}
	p.FavoriteVendors = favorites
	return &p, nil
}

func (r *PostgresProfileRepository) Upsert(ctx context.Context, p models.Profile) error {
	_, err := r.pool.Exec(ctx, `
		INSERT INTO profiles (id, first_name, last_name, phone, location, role, avatar_url, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		ON CONFLICT (id) DO UPDATE SET
			first_name = EXCLUDED.first_name, last_name = EXCLUDED.last_name, phone = EXCLUDED.phone,
			location = EXCLUDED.location, role = EXCLUDED.role, avatar_url = EXCLUDED.avatar_url,
			updated_at = EXCLUDED.updated_at`,
		p.ID, p.FirstName, p.LastName, p.Phone, p.Location, string(p.Role), p.AvatarURL, p.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to save profile: %w", err)
	}
	return nil
}

func (r *PostgresProfileRepository) AddFavorite(ctx context.Context, userID, vendorName string) error {
	if err := r.exists(ctx, userID); err != nil {
		return err
	}
	_, err := r.pool.Exec(ctx,
		"INSERT INTO favorite_vendors (user_id, vendor_name) VALUES ($1, $2) ON CONFLICT DO NOTHING",
		userID, vendorName)
	if err != nil {
		return fmt.Errorf("failed to add favorite vendor: %w", err)
	}
	return nil
}

func (r *PostgresProfileRepository) RemoveFavorite(ctx context.Context, userID, vendorName string) error {
	if err := r.exists(ctx, userID); err != nil {
		return err
	}
	_, err := r.pool.Exec(ctx,
		"DELETE FROM favorite_vendors WHERE user_id = $1 AND vendor_name = $2", userID, vendorName)
	if err != nil {
		return fmt.Errorf("failed to remove favorite vendor: %w", err)
	}
	return nil
}

func (r *PostgresProfileRepository) exists(ctx context.Context, userID string) error {
	var found bool
	err := r.pool.QueryRow(ctx, "SELECT EXISTS (SELECT 1 FROM profiles WHERE id = $1)", userID).Scan(&found)
	if err != nil {
		return fmt.Errorf("failed to check profile: %w", err)
	}
	if !found {
		return ErrProfileNotFound
	}
	return nil
}
