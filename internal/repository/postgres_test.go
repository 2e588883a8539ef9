package repository

import (
	"context"
	"errors"
	"regexp"
	"testing"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/pashagolub/pgxmock/v4"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/smartvegis/marketplace/internal/models"
)

var productRowColumns = []string{
	"id", "name", "description", "price", "quantity_unit", "image_url",
	"min_order_quantity", "available_quantity", "vendor_id", "vendor_name",
	"category", "vendor_rating", "city", "latitude", "longitude",
}

const (
	reserveSQL     = "UPDATE products SET available_quantity = available_quantity - $2::numeric"
	releaseSQL     = "UPDATE products SET available_quantity = available_quantity + $2::numeric"
	productByIDSQL = "FROM products WHERE id = $1"
)

func newMockPool(t *testing.T) pgxmock.PgxPoolIface {
	t.Helper()
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	t.Cleanup(func() {
		assert.NoError(t, mock.ExpectationsWereMet())
	})
	return mock
}

func q(sql string) string {
	return regexp.QuoteMeta(sql)
}

func TestPostgresProductRepository_Reserve(t *testing.T) {
	ctx := context.Background()

	t.Run("enough stock", func(t *testing.T) {
		mock := newMockPool(t)
		mock.ExpectExec(q(reserveSQL)).
			WithArgs("1", "2.5").
			WillReturnResult(pgxmock.NewResult("UPDATE", 1))

		repo := NewPostgresProductRepository(mock)
		assert.NoError(t, repo.Reserve(ctx, "1", decimal.RequireFromString("2.5")))
	})

	t.Run("short on stock", func(t *testing.T) {
		mock := newMockPool(t)
		mock.ExpectExec(q(reserveSQL)).
			WithArgs("1", "60").
			WillReturnResult(pgxmock.NewResult("UPDATE", 0))
		mock.ExpectQuery(q(productByIDSQL)).
			WithArgs("1").
			WillReturnRows(pgxmock.NewRows(productRowColumns).AddRow(
				"1", "Organic Apples", "Sweet and crisp", "120.00", "per kg", "/apple.jpg",
				"1.000", "50.000", "", "Patil Farms",
				"Fruits", 4.8, "Delhi", nil, nil,
			))

		repo := NewPostgresProductRepository(mock)
		assert.ErrorIs(t, repo.Reserve(ctx, "1", decimal.NewFromInt(60)), ErrInsufficientStock)
	})

	t.Run("unknown product", func(t *testing.T) {
		mock := newMockPool(t)
		mock.ExpectExec(q(reserveSQL)).
			WithArgs("404", "1").
			WillReturnResult(pgxmock.NewResult("UPDATE", 0))
		mock.ExpectQuery(q(productByIDSQL)).
			WithArgs("404").
			WillReturnError(pgx.ErrNoRows)

		repo := NewPostgresProductRepository(mock)
		assert.ErrorIs(t, repo.Reserve(ctx, "404", decimal.NewFromInt(1)), ErrProductNotFound)
	})
}

func TestPostgresProductRepository_Release(t *testing.T) {
	ctx := context.Background()
	mock := newMockPool(t)
	mock.ExpectExec(q(releaseSQL)).
		WithArgs("1", "2").
		WillReturnResult(pgxmock.NewResult("UPDATE", 1))
	mock.ExpectExec(q(releaseSQL)).
		WithArgs("404", "2").
		WillReturnResult(pgxmock.NewResult("UPDATE", 0))

	repo := NewPostgresProductRepository(mock)
	assert.NoError(t, repo.Release(ctx, "1", decimal.NewFromInt(2)))
	assert.ErrorIs(t, repo.Release(ctx, "404", decimal.NewFromInt(2)), ErrProductNotFound)
}

func TestPostgresProductRepository_GetAllScansCoordinates(t *testing.T) {
	ctx := context.Background()
	lat, lng := 19.076, 72.8777

	mock := newMockPool(t)
	mock.ExpectQuery(q("FROM products ORDER BY length(id), id")).
		WillReturnRows(pgxmock.NewRows(productRowColumns).
			AddRow("1", "Organic Apples", "Sweet and crisp", "120.00", "per kg", "/apple.jpg",
				"1.000", "50.000", "", "Patil Farms", "Fruits", 4.8, "", nil, nil).
			AddRow("2", "Heirloom Tomatoes", "Vibrant", "90.50", "per kg", "/tomato.jpg",
				"0.500", "30.125", "v-2", "Ramesh Ecogrow", "Vegetables", 4.5, "Mumbai", &lat, &lng))

	repo := NewPostgresProductRepository(mock)
	products, err := repo.GetAll(ctx)
	require.NoError(t, err)
	require.Len(t, products, 2)

	assert.Nil(t, products[0].Latitude)
	assert.Nil(t, products[0].Longitude)
	_, ok := products[0].Location()
	assert.False(t, ok, "NULL coordinates mean no location")

	tomatoes := products[1]
	require.NotNil(t, tomatoes.Latitude)
	assert.Equal(t, lat, *tomatoes.Latitude)
	assert.True(t, tomatoes.Price.Equal(decimal.RequireFromString("90.5")))
	assert.True(t, tomatoes.MinOrderQuantity.Equal(decimal.RequireFromString("0.5")))
	assert.True(t, tomatoes.AvailableQuantity.Equal(decimal.RequireFromString("30.125")))
}

func TestPostgresProductRepository_GetByIDRejectsBadNumeric(t *testing.T) {
	mock := newMockPool(t)
	mock.ExpectQuery(q(productByIDSQL)).
		WithArgs("1").
		WillReturnRows(pgxmock.NewRows(productRowColumns).AddRow(
			"1", "Organic Apples", "", "not-a-number", "per kg", "",
			"1", "50", "", "Patil Farms", "Fruits", 4.8, "", nil, nil,
		))

	repo := NewPostgresProductRepository(mock)
	_, err := repo.GetByID(context.Background(), "1")
	assert.ErrorContains(t, err, "invalid price")
}

func TestPostgresProductRepository_CreateDuplicate(t *testing.T) {
	mock := newMockPool(t)
	mock.ExpectExec(q("INSERT INTO products")).
		WithArgs(pgxmock.AnyArg(), pgxmock.AnyArg(), pgxmock.AnyArg(), pgxmock.AnyArg(), pgxmock.AnyArg(),
			pgxmock.AnyArg(), pgxmock.AnyArg(), pgxmock.AnyArg(), pgxmock.AnyArg(), pgxmock.AnyArg(),
			pgxmock.AnyArg(), pgxmock.AnyArg(), pgxmock.AnyArg(), pgxmock.AnyArg(), pgxmock.AnyArg()).
		WillReturnError(&pgconn.PgError{Code: uniqueViolation})

	repo := NewPostgresProductRepository(mock)
	err := repo.Create(context.Background(), models.Product{
		ID:                "1",
		Price:             decimal.NewFromInt(1),
		MinOrderQuantity:  decimal.NewFromInt(1),
		AvailableQuantity: decimal.NewFromInt(1),
	})
	assert.ErrorIs(t, err, ErrProductExists)
}

func TestPostgresOrderRepository_Delete(t *testing.T) {
	ctx := context.Background()
	mock := newMockPool(t)
	mock.ExpectExec(q("DELETE FROM orders WHERE id = $1")).
		WithArgs("o1").
		WillReturnResult(pgxmock.NewResult("DELETE", 1))
	mock.ExpectExec(q("DELETE FROM orders WHERE id = $1")).
		WithArgs("o1").
		WillReturnResult(pgxmock.NewResult("DELETE", 0))
	mock.ExpectExec(q("DELETE FROM orders WHERE id = $1")).
		WithArgs("o2").
		WillReturnError(errors.New("connection reset"))

	repo := NewPostgresOrderRepository(mock)
	assert.NoError(t, repo.Delete(ctx, "o1"))
	assert.ErrorIs(t, repo.Delete(ctx, "o1"), ErrOrderNotFound)
	assert.ErrorContains(t, repo.Delete(ctx, "o2"), "failed to delete order")
}

func TestPostgresUserRepository_CreateAndDelete(t *testing.T) {
	ctx := context.Background()
	mock := newMockPool(t)
	mock.ExpectExec(q("INSERT INTO users")).
		WithArgs("u1", "a@example.com", "hash", "client", pgxmock.AnyArg()).
		WillReturnError(&pgconn.PgError{Code: uniqueViolation})
	mock.ExpectExec(q("DELETE FROM users WHERE id = $1")).
		WithArgs("u1").
		WillReturnResult(pgxmock.NewResult("DELETE", 0))

	repo := NewPostgresUserRepository(mock)
	err := repo.Create(ctx, models.User{ID: "u1", Email: "a@example.com", PasswordHash: "hash", Role: models.RoleClient})
	assert.ErrorIs(t, err, ErrEmailTaken)
	assert.ErrorIs(t, repo.Delete(ctx, "u1"), ErrUserNotFound)
}
