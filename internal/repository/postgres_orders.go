package repository

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/shopspring/decimal"

	"github.com/smartvegis/marketplace/internal/models"
)

// PostgresOrderRepository implements OrderRepository on an orders table.
// Order lines are stored as a JSONB document.
type PostgresOrderRepository struct {
	pool DB
}

// NewPostgresOrderRepository creates a repository backed by pool
func NewPostgresOrderRepository(pool DB) *PostgresOrderRepository {
	return &PostgresOrderRepository{pool: pool}
}

func (r *PostgresOrderRepository) Create(ctx context.Context, o models.Order) error {
	items, err := json.Marshal(o.Items)
	if err != nil {
		return fmt.Errorf("failed to encode order items: %w", err)
	}
	_, err = r.pool.Exec(ctx, `
		INSERT INTO orders (id, client_id, vendor_name, items, total, status, created_at)
		VALUES ($1, $2, $3, $4, $5::numeric, $6, $7)`,
		o.ID, o.ClientID, o.VendorName, items, o.Total.String(), string(o.Status), o.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to insert order: %w", err)
	}
	return nil
}

func (r *PostgresOrderRepository) GetByID(ctx context.Context, id string) (*models.Order, error) {
	row := r.pool.QueryRow(ctx, `
		SELECT id, client_id, vendor_name, items, total::text, status, created_at
		FROM orders WHERE id = $1`, id)
	o, err := scanOrder(row)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrOrderNotFound
	}
	return o, err
}

func (r *PostgresOrderRepository) ListByClient(ctx context.Context, clientID string) ([]models.Order, error) {
	rows, err := r.pool.Query(ctx, `
		SELECT id, client_id, vendor_name, items, total::text, status, created_at
		FROM orders WHERE client_id = $1 ORDER BY created_at DESC, id`, clientID)
	if err != nil {
		return nil, fmt.Errorf("failed to query orders: %w", err)
	}
	defer rows.Close()

	orders := make([]models.Order, 0)
	for rows.Next() {
		o, err := scanOrder(rows)
		if err != nil {
			return nil, err
		}
		orders = append(orders, *o)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to read orders: %w", err)
	}
	return orders, nil
}

func (r *PostgresOrderRepository) Delete(ctx context.Context, id string) error {
	tag, err := r.pool.Exec(ctx, `DELETE FROM orders WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("failed to delete order: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return ErrOrderNotFound
	}
	return nil
}

func scanOrder(row pgx.Row) (*models.Order, error) {
	var o models.Order
	var items []byte
	var total, status string
	if err := row.Scan(&o.ID, &o.ClientID, &o.VendorName, &items, &total, &status, &o.CreatedAt); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, err
		}
		return nil, fmt.Errorf("failed to scan order: %w", err)
	}
	if err := json.Unmarshal(items, &o.Items); err != nil {
		return nil, fmt.Errorf("failed to decode items of order %s: %w", o.ID, err)
	}
	t, err := decimal.NewFromString(total)
	if err != nil {
		return nil, fmt.Errorf("invalid total for order %s: %w", o.ID, err)
	}
	o.Total = t
	o.Status = models.OrderStatus(status)
	return &o, nil
}
