package product

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var productCols = []string{
	"id", "name", "description", "price", "stock", "is_active",
	"image_url", "category", "created_at", "updated_at",
}

func TestRepository_List(t *testing.T) {
	ctx := context.Background()

	t.Run("Success_OnlyActive_WithCategory", func(t *testing.T) {
		db, mock, err := sqlmock.New()
		require.NoError(t, err)
		defer db.Close()
		repo := NewRepository(db)

		now := time.Now()
		rows := sqlmock.NewRows(productCols).
			AddRow("p1", "Lamp", "desk lamp", "19.99", 5, true, "http://img/1.png", "Home", now, now).
			AddRow("p2", "Mug", "", "4.50", 0, true, nil, nil, now, now)

		mock.ExpectQuery(`SELECT .* FROM products WHERE is_active = TRUE AND category = \$1 ORDER BY name`).
			WithArgs("Home").
			WillReturnRows(rows)

		cat := "Home"
		products, err := repo.List(ctx, ListOptions{OnlyActive: true, Category: &cat})
		require.NoError(t, err)
		require.Len(t, products, 2)
		assert.True(t, decimal.RequireFromString("19.99").Equal(products[0].Price))
		assert.Equal(t, "http://img/1.png", *products[0].ImageURL)
		assert.Nil(t, products[1].ImageURL)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("Success_NewestFirst_Limited", func(t *testing.T) {
		db, mock, err := sqlmock.New()
		require.NoError(t, err)
		defer db.Close()
		repo := NewRepository(db)

		now := time.Now()
		mock.ExpectQuery(`SELECT .* FROM products WHERE is_active = TRUE ORDER BY created_at DESC LIMIT \$1`).
			WithArgs(5).
			WillReturnRows(sqlmock.NewRows(productCols).
				AddRow("p9", "Kettle", "", "30.00", 3, true, nil, nil, now, now))

		products, err := repo.List(ctx, ListOptions{OnlyActive: true, NewestFirst: true, Limit: 5})
		require.NoError(t, err)
		assert.Len(t, products, 1)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("QueryError", func(t *testing.T) {
		db, mock, err := sqlmock.New()
		require.NoError(t, err)
		defer db.Close()
		repo := NewRepository(db)

		mock.ExpectQuery(`SELECT .* FROM products ORDER BY name`).WillReturnError(errors.New("db error"))

		_, err = repo.List(ctx, ListOptions{})
		assert.Error(t, err)
	})
}

func TestRepository_GetByID(t *testing.T) {
	ctx := context.Background()
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()
	repo := NewRepository(db)

	t.Run("Success", func(t *testing.T) {
		now := time.Now()
		mock.ExpectQuery(`SELECT .* FROM products WHERE id = \$1`).
			WithArgs("p1").
			WillReturnRows(sqlmock.NewRows(productCols).
				AddRow("p1", "Lamp", "", "10", 3, false, nil, nil, now, now))

		p, err := repo.GetByID(ctx, "p1")
		require.NoError(t, err)
		assert.Equal(t, "Lamp", p.Name)
		assert.False(t, p.IsActive)
	})

	t.Run("NotFound", func(t *testing.T) {
		mock.ExpectQuery(`SELECT .* FROM products WHERE id = \$1`).
			WithArgs("missing").
			WillReturnRows(sqlmock.NewRows(productCols))

		_, err := repo.GetByID(ctx, "missing")
		assert.ErrorIs(t, err, ErrProductNotFound)
	})
}

func TestRepository_Create(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()
	repo := NewRepository(db)

	p := &Product{ID: uuid.NewString(), Name: "Lamp", Price: decimal.NewFromInt(10), Stock: 2, IsActive: true}
	now := time.Now()

	mock.ExpectQuery(`INSERT INTO products`).
		WithArgs(p.ID, "Lamp", "", sqlmock.AnyArg(), 2, true, nil, nil).
		WillReturnRows(sqlmock.NewRows([]string{"created_at", "updated_at"}).AddRow(now, now))

	require.NoError(t, repo.Create(context.Background(), p))
	assert.Equal(t, now, p.CreatedAt)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestRepository_Update(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()
	repo := NewRepository(db)

	p := &Product{ID: "p1", Name: "Lamp", Price: decimal.NewFromInt(12), Stock: 4}

	t.Run("Success", func(t *testing.T) {
		now := time.Now()
		mock.ExpectQuery(`UPDATE products`).
			WithArgs("Lamp", "", sqlmock.AnyArg(), 4, nil, nil, "p1").
			WillReturnRows(sqlmock.NewRows([]string{"is_active", "created_at", "updated_at"}).AddRow(true, now, now))

		require.NoError(t, repo.Update(context.Background(), p))
		assert.True(t, p.IsActive)
	})

	t.Run("NotFound", func(t *testing.T) {
		mock.ExpectQuery(`UPDATE products`).
			WillReturnRows(sqlmock.NewRows([]string{"is_active", "created_at", "updated_at"}))

		assert.ErrorIs(t, repo.Update(context.Background(), p), ErrProductNotFound)
	})
}

func TestRepository_SetActiveAndImage(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()
	repo := NewRepository(db)
	ctx := context.Background()

	t.Run("SetActive", func(t *testing.T) {
		mock.ExpectExec(`UPDATE products SET is_active = \$1`).
			WithArgs(false, sqlmock.AnyArg(), "p1").
			WillReturnResult(sqlmock.NewResult(0, 1))

		assert.NoError(t, repo.SetActive(ctx, "p1", false))
	})

	t.Run("SetActive_NotFound", func(t *testing.T) {
		mock.ExpectExec(`UPDATE products SET is_active = \$1`).
			WillReturnResult(sqlmock.NewResult(0, 0))

		assert.ErrorIs(t, repo.SetActive(ctx, "nope", false), ErrProductNotFound)
	})

	t.Run("SetImageURL", func(t *testing.T) {
		mock.ExpectExec(`UPDATE products SET image_url = \$1`).
			WithArgs("http://img/x.png", sqlmock.AnyArg(), "p1").
			WillReturnResult(sqlmock.NewResult(0, 1))

		assert.NoError(t, repo.SetImageURL(ctx, "p1", "http://img/x.png"))
	})

	t.Run("ExecError", func(t *testing.T) {
		mock.ExpectExec(`UPDATE products SET image_url = \$1`).
			WillReturnError(errors.New("db down"))

		err := repo.SetImageURL(ctx, "p1", "x")
		assert.Error(t, err)
		assert.NotErrorIs(t, err, ErrProductNotFound)
	})
}
