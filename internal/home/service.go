package home

import (
	"context"

	"abc-retailers/internal/logger"
	"abc-retailers/internal/product"

	"go.uber.org/zap"
)

// ProductLister is the slice of product.Service the feed needs.
type ProductLister interface {
	Latest(ctx context.Context, n int) ([]*product.Product, error)
}

type Service interface {
	Feed(ctx context.Context) (*Feed, error)
}

type service struct {
	repo     Repository
	products ProductLister
}

func NewService(repo Repository, products ProductLister) Service {
	return &service{repo: repo, products: products}
}

func (s *service) Feed(ctx context.Context) (*Feed, error) {
	log := logger.FromCtx(ctx).With(
		zap.String("layer", "service"),
		zap.String("method", "Feed"),
	)

	featured, err := s.products.Latest(ctx, FeaturedLimit)
	if err != nil {
		log.Error("failed to load featured products", zap.Error(err))
		return nil, err
	}

	stats, err := s.repo.Stats(ctx)
	if err != nil {
		return nil, err
	}

	if featured == nil {
		featured = []*product.Product{}
	}
	return &Feed{FeaturedProducts: featured, Stats: *stats}, nil
}
