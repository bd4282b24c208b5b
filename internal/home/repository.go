package home

import (
	"context"
	"database/sql"

	"abc-retailers/internal/logger"
	"abc-retailers/internal/utils"

	"go.uber.org/zap"
)

type Repository interface {
	Stats(ctx context.Context) (*Stats, error)
}

type repository struct {
	db *sql.DB
}

func NewRepository(db *sql.DB) Repository {
	return &repository{db: db}
}

func (r *repository) Stats(ctx context.Context) (*Stats, error) {
	var s Stats
	err := r.db.QueryRowContext(ctx, `
		SELECT
			(SELECT COUNT(*) FROM products WHERE is_active = TRUE),
			(SELECT COUNT(*) FROM users WHERE is_active = TRUE AND role = $1),
			(SELECT COUNT(*) FROM orders)`,
		utils.RoleCustomer,
	).Scan(&s.ProductCount, &s.CustomerCount, &s.OrderCount)
	if err != nil {
		logger.FromCtx(ctx).Error("query storefront stats failed",
			zap.String("layer", "repository"),
			zap.Error(err),
		)
		return nil, err
	}
	return &s, nil
}
