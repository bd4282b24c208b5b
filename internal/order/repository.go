package order

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"abc-retailers/internal/logger"
	"abc-retailers/internal/utils"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

type Repository interface {
	// CreateOrderTx assigns the order number and writes the order, its items
	// and the stock decrements in one transaction.
	CreateOrderTx(ctx context.Context, o *Order) error
	GetByID(ctx context.Context, id uuid.UUID) (*Order, error)
	ListByUser(ctx context.Context, userID uuid.UUID) ([]*Order, error)
	ListAll(ctx context.Context) ([]*Order, error)
	// UpdateStatus persists status, tracking number and the shipped/delivered
	// dates. It fails with ErrOrderFinalized when the stored order is terminal.
	UpdateStatus(ctx context.Context, o *Order) error
	// CancelTx restores stock for every line and marks the order Cancelled.
	CancelTx(ctx context.Context, o *Order) error
}

type repository struct {
	db *sql.DB
}

func NewRepository(db *sql.DB) Repository {
	return &repository{db: db}
}

const orderColumns = `
	id, user_id, order_number, order_date, status, customer_name, customer_email,
	shipping_address, phone_number, notes, subtotal, tax, shipping_cost, total_amount,
	tracking_number, shipped_date, delivered_date, created_at, updated_at`

const terminalStatuses = `('Delivered', 'Completed', 'Cancelled')`

type rowScanner interface {
	Scan(dest ...any) error
}

func scanOrder(row rowScanner) (*Order, error) {
	var o Order
	err := row.Scan(
		&o.ID, &o.UserID, &o.OrderNumber, &o.OrderDate, &o.Status,
		&o.CustomerName, &o.CustomerEmail, &o.ShippingAddress, &o.PhoneNumber, &o.Notes,
		&o.Subtotal, &o.Tax, &o.ShippingCost, &o.TotalAmount,
		&o.TrackingNumber, &o.ShippedDate, &o.DeliveredDate, &o.CreatedAt, &o.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &o, nil
}

func (r *repository) CreateOrderTx(ctx context.Context, o *Order) error {
	log := logger.FromCtx(ctx).With(
		zap.String("layer", "repository"),
		zap.String("method", "CreateOrderTx"),
		zap.String("order_id", o.ID.String()),
		zap.Int("item_count", len(o.Items)),
	)

	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		log.Error("failed to begin transaction", zap.Error(err))
		return err
	}

	committed := false
	defer func() {
		if !committed {
			if rbErr := tx.Rollback(); rbErr != nil && !errors.Is(rbErr, sql.ErrTxDone) {
				log.Error("failed to rollback transaction", zap.Error(rbErr))
			} else {
				log.Debug("transaction rolled back")
			}
		}
	}()

	// serialise numbering per day; released on commit or rollback
	prefix := utils.OrderNumberPrefix(o.OrderDate)
	if _, err = tx.ExecContext(ctx, `SELECT pg_advisory_xact_lock(hashtext($1))`, prefix); err != nil {
		log.Error("failed to lock order numbering", zap.Error(err))
		return err
	}

	var count int
	err = tx.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM orders WHERE order_number LIKE $1`, prefix+"%",
	).Scan(&count)
	if err != nil {
		log.Error("failed to count orders for the day", zap.Error(err))
		return err
	}
	o.OrderNumber = utils.FormatOrderNumber(o.OrderDate, count+1)

	err = tx.QueryRowContext(ctx, `
		INSERT INTO orders (
			id, user_id, order_number, order_date, status, customer_name, customer_email,
			shipping_address, phone_number, notes, subtotal, tax, shipping_cost, total_amount
		) VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11,$12,$13,$14)
		RETURNING created_at, updated_at`,
		o.ID, o.UserID, o.OrderNumber, o.OrderDate, o.Status, o.CustomerName, o.CustomerEmail,
		o.ShippingAddress, o.PhoneNumber, o.Notes, o.Subtotal, o.Tax, o.ShippingCost, o.TotalAmount,
	).Scan(&o.CreatedAt, &o.UpdatedAt)
	if err != nil {
		log.Error("failed to insert order", zap.Error(err))
		return err
	}

	for i := range o.Items {
		item := &o.Items[i]
		item.OrderID = o.ID

		err = tx.QueryRowContext(ctx, `
			INSERT INTO order_items (
				id, order_id, product_id, product_name, product_image_url,
				quantity, unit_price, total_price
			) VALUES ($1,$2,$3,$4,$5,$6,$7,$8)
			RETURNING created_at`,
			item.ID, item.OrderID, item.ProductID, item.ProductName, item.ProductImageURL,
			item.Quantity, item.UnitPrice, item.TotalPrice,
		).Scan(&item.CreatedAt)
		if err != nil {
			log.Error("failed to insert order item",
				zap.Int("item_index", i),
				zap.String("product_id", item.ProductID),
				zap.Error(err),
			)
			return err
		}

		res, err := tx.ExecContext(ctx, `
			UPDATE products
			SET stock = stock - $1, updated_at = NOW()
			WHERE id = $2 AND stock >= $1`,
			item.Quantity, item.ProductID)
		if err != nil {
			log.Error("failed to deduct stock", zap.String("product_id", item.ProductID), zap.Error(err))
			return err
		}
		n, err := res.RowsAffected()
		if err != nil {
			return err
		}
		if n == 0 {
			log.Warn("stock ran out during checkout", zap.String("product_id", item.ProductID))
			return fmt.Errorf("%w: '%s'", ErrInsufficientStock, item.ProductName)
		}
	}

	if err := tx.Commit(); err != nil {
		log.Error("failed to commit order transaction", zap.Error(err))
		return err
	}

	committed = true
	log.Info("order transaction committed", zap.String("order_number", o.OrderNumber))
	return nil
}

func (r *repository) GetByID(ctx context.Context, id uuid.UUID) (*Order, error) {
	o, err := scanOrder(r.db.QueryRowContext(ctx,
		`SELECT `+orderColumns+` FROM orders WHERE id = $1`, id))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrOrderNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("get order %s: %w", id, err)
	}

	rows, err := r.db.QueryContext(ctx, `
		SELECT id, order_id, product_id, product_name, product_image_url,
		       quantity, unit_price, total_price, created_at
		FROM order_items
		WHERE order_id = $1
		ORDER BY created_at, id`, id)
	if err != nil {
		return nil, fmt.Errorf("get order items %s: %w", id, err)
	}
	defer rows.Close()

	for rows.Next() {
		var it OrderItem
		if err := rows.Scan(
			&it.ID, &it.OrderID, &it.ProductID, &it.ProductName, &it.ProductImageURL,
			&it.Quantity, &it.UnitPrice, &it.TotalPrice, &it.CreatedAt,
		); err != nil {
			return nil, fmt.Errorf("scan order item: %w", err)
		}
		o.Items = append(o.Items, it)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return o, nil
}

func (r *repository) ListByUser(ctx context.Context, userID uuid.UUID) ([]*Order, error) {
	return r.list(ctx,
		`SELECT `+orderColumns+` FROM orders WHERE user_id = $1 ORDER BY order_date DESC`, userID)
}

func (r *repository) ListAll(ctx context.Context) ([]*Order, error) {
	return r.list(ctx, `SELECT `+orderColumns+` FROM orders ORDER BY order_date DESC`)
}

func (r *repository) list(ctx context.Context, query string, args ...any) ([]*Order, error) {
	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list orders: %w", err)
	}
	defer rows.Close()

	orders := []*Order{}
	for rows.Next() {
		o, err := scanOrder(rows)
		if err != nil {
			return nil, fmt.Errorf("scan order: %w", err)
		}
		orders = append(orders, o)
	}
	return orders, rows.Err()
}

func (r *repository) UpdateStatus(ctx context.Context, o *Order) error {
	res, err := r.db.ExecContext(ctx, `
		UPDATE orders
		SET status = $1, tracking_number = $2, shipped_date = $3, delivered_date = $4, updated_at = $5
		WHERE id = $6 AND status NOT IN `+terminalStatuses,
		o.Status, o.TrackingNumber, o.ShippedDate, o.DeliveredDate, o.UpdatedAt, o.ID)
	if err != nil {
		return fmt.Errorf("update order %s: %w", o.ID, err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return ErrOrderFinalized
	}
	return nil
}

func (r *repository) CancelTx(ctx context.Context, o *Order) error {
	log := logger.FromCtx(ctx).With(
		zap.String("layer", "repository"),
		zap.String("method", "CancelTx"),
		zap.String("order_id", o.ID.String()),
	)

	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		log.Error("failed to begin transaction", zap.Error(err))
		return err
	}

	committed := false
	defer func() {
		if !committed {
			if rbErr := tx.Rollback(); rbErr != nil && !errors.Is(rbErr, sql.ErrTxDone) {
				log.Error("failed to rollback transaction", zap.Error(rbErr))
			}
		}
	}()

	res, err := tx.ExecContext(ctx, `
		UPDATE orders SET status = $1, updated_at = $2
		WHERE id = $3 AND status NOT IN `+terminalStatuses,
		StatusCancelled, o.UpdatedAt, o.ID)
	if err != nil {
		log.Error("failed to mark order cancelled", zap.Error(err))
		return err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return ErrOrderFinalized
	}

	for _, item := range o.Items {
		res, err := tx.ExecContext(ctx, `
			UPDATE products SET stock = stock + $1, updated_at = NOW()
			WHERE id = $2`,
			item.Quantity, item.ProductID)
		if err != nil {
			log.Error("failed to restore stock", zap.String("product_id", item.ProductID), zap.Error(err))
			return err
		}
		if n, _ := res.RowsAffected(); n == 0 {
			log.Warn("product gone, stock not restored", zap.String("product_id", item.ProductID))
		}
	}

	if err := tx.Commit(); err != nil {
		log.Error("failed to commit cancel transaction", zap.Error(err))
		return err
	}

	committed = true
	o.Status = StatusCancelled
	log.Info("order cancelled, stock restored")
	return nil
}
