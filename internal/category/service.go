package category

import (
	"context"
	"strings"

	"abc-retailers/internal/logger"

	"go.uber.org/zap"
)

type Service interface {
	List(ctx context.Context, filter *string) ([]*Category, error)
}

type service struct {
	repo Repository
}

func NewService(repo Repository) Service {
	return &service{repo: repo}
}

// List returns the categories that currently have at least one active
// product, optionally narrowed by a case-insensitive substring.
func (s *service) List(ctx context.Context, filter *string) ([]*Category, error) {
	log := logger.FromCtx(ctx).With(
		zap.String("layer", "service"),
		zap.String("method", "List"),
	)

	if filter != nil {
		trimmed := strings.TrimSpace(*filter)
		filter = &trimmed
	}

	categories, err := s.repo.List(ctx, filter)
	if err != nil {
		log.Error("failed to list categories", zap.Error(err))
		return nil, err
	}

	log.Debug("categories listed", zap.Int("count", len(categories)))
	return categories, nil
}
