package repository

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/shopspring/decimal"

	"github.com/smartvegis/marketplace/internal/models"
)

const productColumns = `id, name, description, price::text, quantity_unit, image_url,
	min_order_quantity::text, available_quantity::text, vendor_id, vendor_name,
	category, vendor_rating, city, latitude, longitude`

// DB is the part of *pgxpool.Pool the Postgres repositories use
type DB interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

// uniqueViolation is the Postgres SQLSTATE for unique_violation
const uniqueViolation = "23505"

// PostgresProductRepository implements ProductRepository on a products table
type PostgresProductRepository struct {
	pool DB
}

// NewPostgresProductRepository creates a repository backed by pool
func NewPostgresProductRepository(pool DB) *PostgresProductRepository {
	return &PostgresProductRepository{pool: pool}
}

// GetAll returns all products ordered by id
func (r *PostgresProductRepository) GetAll(ctx context.Context) ([]models.Product, error) {
	rows, err := r.pool.Query(ctx, `SELECT `+productColumns+` FROM products ORDER BY length(id), id`)
	if err != nil {
		return nil, fmt.Errorf("failed to query products: %w", err)
	}
	defer rows.Close()

	products := make([]models.Product, 0)
	for rows.Next() {
		p, err := scanProduct(rows)
		if err != nil {
			return nil, err
		}
		products = append(products, *p)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to read products: %w", err)
	}
	return products, nil
}

// GetByID returns a product by its ID
func (r *PostgresProductRepository) GetByID(ctx context.Context, id string) (*models.Product, error) {
	row := r.pool.QueryRow(ctx, `SELECT `+productColumns+` FROM products WHERE id = $1`, id)
	p, err := scanProduct(row)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrProductNotFound
	}
	return p, err
}

// Create inserts a product
func (r *PostgresProductRepository) Create(ctx context.Context, p models.Product) error {
	_, err := r.pool.Exec(ctx, `
		INSERT INTO products (id, name, description, price, quantity_unit, image_url,
			min_order_quantity, available_quantity, vendor_id, vendor_name,
			category, vendor_rating, city, latitude, longitude)
		VALUES ($1, $2, $3, $4::numeric, $5, $6, $7::numeric, $8::numeric, $9, $10, $11, $12, $13, $14, $15)`,
		p.ID, p.Name, p.Description, p.Price.String(), p.QuantityUnit, p.ImageURL,
		p.MinOrderQuantity.String(), p.AvailableQuantity.String(), p.VendorID, p.VendorName,
		p.Category, p.VendorRating, p.City, p.Latitude, p.Longitude,
	)
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) && pgErr.Code == uniqueViolation {
		return ErrProductExists
	}
	if err != nil {
		return fmt.Errorf("failed to insert product: %w", err)
	}
	return nil
}

// Upsert inserts or replaces a product; used by catalog seeding
func (r *PostgresProductRepository) Upsert(ctx context.Context, p models.Product) error {
	_, err := r.pool.Exec(ctx, `
		INSERT INTO products (id, name, description, price, quantity_unit, image_url,
			min_order_quantity, available_quantity, vendor_id, vendor_name,
			category, vendor_rating, city, latitude, longitude)
		VALUES ($1, $2, $3, $4::numeric, $5, $6, $7::numeric, $8::numeric, $9, $10, $11, $12, $13, $14, $15)
		ON CONFLICT (id) DO UPDATE SET
			name = EXCLUDED.name, description = EXCLUDED.description, price = EXCLUDED.price,
			quantity_unit = EXCLUDED.quantity_unit, image_url = EXCLUDED.image_url,
			min_order_quantity = EXCLUDED.min_order_quantity, available_quantity = EXCLUDED.available_quantity,
			vendor_id = EXCLUDED.vendor_id, vendor_name = EXCLUDED.vendor_name, category = EXCLUDED.category,
			vendor_rating = EXCLUDED.vendor_rating, city = EXCLUDED.city,
			latitude = EXCLUDED.latitude, longitude = EXCLUDED.longitude`,
		p.ID, p.Name, p.Description, p.Price.String(), p.QuantityUnit, p.ImageURL,
		p.MinOrderQuantity.String(), p.AvailableQuantity.String(), p.VendorID, p.VendorName,
		p.Category, p.VendorRating, p.City, p.Latitude, p.Longitude,
	)
	if err != nil {
		return fmt.Errorf("failed to upsert product %s: %w", p.ID, err)
	}
	return nil
}

// Update replaces an existing product
func (r *PostgresProductRepository) Update(ctx context.Context, p models.Product) error {
	tag, err := r.pool.Exec(ctx, `
		UPDATE products SET name = $2, description = $3, price = $4::numeric, quantity_unit = $5,
			image_url = $6, min_order_quantity = $7::numeric, available_quantity = $8::numeric,
			vendor_id = $9, vendor_name = $10, category = $11, vendor_rating = $12, city = $13,
			latitude = $14, longitude = $15
		WHERE id = $1`,
		p.ID, p.Name, p.Description, p.Price.String(), p.QuantityUnit, p.ImageURL,
		p.MinOrderQuantity.String(), p.AvailableQuantity.String(), p.VendorID, p.VendorName,
		p.Category, p.VendorRating, p.City, p.Latitude, p.Longitude,
	)
	if err != nil {
		return fmt.Errorf("failed to update product: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return ErrProductNotFound
	}
	return nil
}

// Delete removes a product
func (r *PostgresProductRepository) Delete(ctx context.Context, id string) error {
	tag, err := r.pool.Exec(ctx, `DELETE FROM products WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("failed to delete product: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return ErrProductNotFound
	}
	return nil
}

// Reserve decrements available stock atomically
func (r *PostgresProductRepository) Reserve(ctx context.Context, id string, quantity decimal.Decimal) error {
	tag, err := r.pool.Exec(ctx, `
		UPDATE products SET available_quantity = available_quantity - $2::numeric
		WHERE id = $1 AND available_quantity >= $2::numeric`,
		id, quantity.String(),
	)
	if err != nil {
		return fmt.Errorf("failed to reserve stock: %w", err)
	}
	if tag.RowsAffected() == 0 {
		if _, err := r.GetByID(ctx, id); err != nil {
			return err
		}
		return ErrInsufficientStock
	}
	return nil
}

// Release returns reserved stock
func (r *PostgresProductRepository) Release(ctx context.Context, id string, quantity decimal.Decimal) error {
	tag, err := r.pool.Exec(ctx,
		`UPDATE products SET available_quantity = available_quantity + $2::numeric WHERE id = $1`,
		id, quantity.String(),
	)
	if err != nil {
		return fmt.Errorf("failed to release stock: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return ErrProductNotFound
	}
	return nil
}

func scanProduct(row pgx.Row) (*models.Product, error) {
	var p models.Product
	var price, minOrder, onHand string
	err := row.Scan(&p.ID, &p.Name, &p.Description, &price, &p.QuantityUnit, &p.ImageURL,
		&minOrder, &onHand, &p.VendorID, &p.VendorName,
		&p.Category, &p.VendorRating, &p.City, &p.Latitude, &p.Longitude)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, err
		}
		return nil, fmt.Errorf("failed to scan product: %w", err)
	}

	if p.Price, err = decimal.NewFromString(price); err != nil {
		return nil, fmt.Errorf("invalid price for product %s: %w", p.ID, err)
	}
	if p.MinOrderQuantity, err = decimal.NewFromString(minOrder); err != nil {
		return nil, fmt.Errorf("invalid minimum order quantity for product %s: %w", p.ID, err)
	}
	if p.AvailableQuantity, err = decimal.NewFromString(onHand); err != nil {
		return nil, fmt.Errorf("invalid available quantity for product %s: %w", p.ID, err)
	}
	return &p, nil
}
