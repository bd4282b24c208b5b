package product

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"
)

type Repository interface {
	List(ctx context.Context, opts ListOptions) ([]*Product, error)
	GetByID(ctx context.Context, id string) (*Product, error)
	Create(ctx context.Context, p *Product) error
	Update(ctx context.Context, p *Product) error
	SetActive(ctx context.Context, id string, active bool) error
	SetImageURL(ctx context.Context, id string, url string) error
}

type repository struct {
	db *sql.DB
}

func NewRepository(db *sql.DB) Repository {
	return &repository{db: db}
}

const productColumns = `id, name, description, price, stock, is_active, image_url, category, created_at, updated_at`

type rowScanner interface {
	Scan(dest ...any) error
}

func scanProduct(row rowScanner) (*Product, error) {
	var p Product
	err := row.Scan(
		&p.ID, &p.Name, &p.Description, &p.Price, &p.Stock,
		&p.IsActive, &p.ImageURL, &p.Category, &p.CreatedAt, &p.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &p, nil
}

func (r *repository) List(ctx context.Context, opts ListOptions) ([]*Product, error) {
	var (
		where []string
		args  []any
	)
	if opts.OnlyActive {
		where = append(where, "is_active = TRUE")
	}
	if opts.Category != nil {
		args = append(args, *opts.Category)
		where = append(where, fmt.Sprintf("category = $%d", len(args)))
	}

	query := `SELECT ` + productColumns + ` FROM products`
	if len(where) > 0 {
		query += " WHERE " + strings.Join(where, " AND ")
	}
	if opts.NewestFirst {
		query += " ORDER BY created_at DESC"
	} else {
		query += " ORDER BY name"
	}
	if opts.Limit > 0 {
		args = append(args, opts.Limit)
		query += fmt.Sprintf(" LIMIT $%d", len(args))
	}

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list products: %w", err)
	}
	defer rows.Close()

	var products []*Product
	for rows.Next() {
		p, err := scanProduct(rows)
		if err != nil {
			return nil, fmt.Errorf("scan product: %w", err)
		}
		products = append(products, p)
	}
	return products, rows.Err()
}

func (r *repository) GetByID(ctx context.Context, id string) (*Product, error) {
	row := r.db.QueryRowContext(ctx,
		`SELECT `+productColumns+` FROM products WHERE id = $1`, id)

	p, err := scanProduct(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrProductNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("get product %s: %w", id, err)
	}
	return p, nil
}

func (r *repository) Create(ctx context.Context, p *Product) error {
	err := r.db.QueryRowContext(ctx, `
		INSERT INTO products (id, name, description, price, stock, is_active, image_url, category)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		RETURNING created_at, updated_at`,
		p.ID, p.Name, p.Description, p.Price, p.Stock, p.IsActive, p.ImageURL, p.Category,
	).Scan(&p.CreatedAt, &p.UpdatedAt)
	if err != nil {
		return fmt.Errorf("insert product: %w", err)
	}
	return nil
}

func (r *repository) Update(ctx context.Context, p *Product) error {
	err := r.db.QueryRowContext(ctx, `
		UPDATE products
		SET name = $1, description = $2, price = $3, stock = $4,
		    image_url = $5, category = $6, updated_at = NOW()
		WHERE id = $7
		RETURNING is_active, created_at, updated_at`,
		p.Name, p.Description, p.Price, p.Stock, p.ImageURL, p.Category, p.ID,
	).Scan(&p.IsActive, &p.CreatedAt, &p.UpdatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return ErrProductNotFound
	}
	if err != nil {
		return fmt.Errorf("update product %s: %w", p.ID, err)
	}
	return nil
}

func (r *repository) SetActive(ctx context.Context, id string, active bool) error {
	return r.execOne(ctx,
		`UPDATE products SET is_active = $1, updated_at = $2 WHERE id = $3`,
		active, time.Now().UTC(), id)
}

func (r *repository) SetImageURL(ctx context.Context, id string, url string) error {
	return r.execOne(ctx,
		`UPDATE products SET image_url = $1, updated_at = $2 WHERE id = $3`,
		url, time.Now().UTC(), id)
}

func (r *repository) execOne(ctx context.Context, query string, args ...any) error {
	res, err := r.db.ExecContext(ctx, query, args...)
	if err != nil {
		return fmt.Errorf("update product: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("update product: %w", err)
	}
	if n == 0 {
		return ErrProductNotFound
	}
	return nil
}
