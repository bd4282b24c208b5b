package cart

import (
	"context"
	"fmt"

	"abc-retailers/internal/logger"
	"abc-retailers/internal/metrics"

	"go.uber.org/zap"
)

// Service defines the shopping-cart operations for one session.
type Service interface {
	GetCart(ctx context.Context, sessionID string) (*Cart, error)
	AddToCart(ctx context.Context, sessionID, productID string, quantity int) (*Cart, error)
	UpdateQuantity(ctx context.Context, sessionID, productID string, quantity int) (*Cart, error)
	RemoveFromCart(ctx context.Context, sessionID, productID string) (*Cart, error)
	ClearCart(ctx context.Context, sessionID string) error
	Count(ctx context.Context, sessionID string) (int, error)
	// Validate reconciles the stored cart with live products, saving it
	// back only when something changed.
	Validate(ctx context.Context, sessionID string) (*Cart, []string, error)
}

type service struct {
	store    Store
	products ProductLookup
	metrics  *metrics.Registry
}

func NewService(store Store, products ProductLookup, m *metrics.Registry) Service {
	return &service{store: store, products: products, metrics: m}
}

func (s *service) load(ctx context.Context, sessionID string) (*Cart, error) {
	if sessionID == "" {
		return nil, ErrMissingSession
	}
	c, err := s.store.Load(ctx, sessionID)
	if err != nil {
		logger.FromCtx(ctx).Error("failed to load cart",
			zap.String("layer", "service"),
			zap.Error(err),
		)
		return nil, fmt.Errorf("%w: %v", ErrFailedLoadCart, err)
	}
	return c, nil
}

func (s *service) save(ctx context.Context, sessionID string, c *Cart) error {
	if err := s.store.Save(ctx, sessionID, c); err != nil {
		logger.FromCtx(ctx).Error("failed to save cart",
			zap.String("layer", "service"),
			zap.Error(err),
		)
		return fmt.Errorf("%w: %v", ErrFailedSaveCart, err)
	}
	return nil
}

func (s *service) GetCart(ctx context.Context, sessionID string) (*Cart, error) {
	return s.load(ctx, sessionID)
}

func (s *service) AddToCart(ctx context.Context, sessionID, productID string, quantity int) (*Cart, error) {
	log := logger.FromCtx(ctx).With(
		zap.String("layer", "service"),
		zap.String("method", "AddToCart"),
		zap.String("product_id", productID),
	)

	if quantity <= 0 {
		return nil, ErrInvalidQuantity
	}

	p, err := s.products.FindActive(ctx, productID)
	if err != nil {
		log.Error("product lookup failed", zap.Error(err))
		return nil, err
	}
	if p == nil {
		return nil, ErrProductNotFound
	}

	c, err := s.load(ctx, sessionID)
	if err != nil {
		return nil, err
	}

	finalQty := quantity
	if existing := c.Find(productID); existing != nil {
		finalQty += existing.Quantity
	}
	if finalQty > p.Stock {
		log.Debug("add rejected, insufficient stock",
			zap.Int("requested", finalQty),
			zap.Int("stock", p.Stock),
		)
		return nil, fmt.Errorf("%w: only %d of '%s' available", ErrInsufficientStock, p.Stock, p.Name)
	}

	c.AddItem(p, quantity)
	if err := s.save(ctx, sessionID, c); err != nil {
		return nil, err
	}

	log.Info("item added to cart", zap.Int("quantity", finalQty))
	return c, nil
}

func (s *service) UpdateQuantity(ctx context.Context, sessionID, productID string, quantity int) (*Cart, error) {
	c, err := s.load(ctx, sessionID)
	if err != nil {
		return nil, err
	}
	if c.Find(productID) == nil {
		return nil, ErrCartItemNotFound
	}

	if quantity > 0 {
		p, err := s.products.FindActive(ctx, productID)
		if err != nil {
			return nil, err
		}
		if p == nil {
			return nil, ErrProductNotFound
		}
		if quantity > p.Stock {
			return nil, fmt.Errorf("%w: only %d of '%s' available", ErrInsufficientStock, p.Stock, p.Name)
		}
		c.Find(productID).StockAvailable = p.Stock
	}

	c.UpdateQuantity(productID, quantity)
	if err := s.save(ctx, sessionID, c); err != nil {
		return nil, err
	}
	return c, nil
}

func (s *service) RemoveFromCart(ctx context.Context, sessionID, productID string) (*Cart, error) {
	c, err := s.load(ctx, sessionID)
	if err != nil {
		return nil, err
	}
	if !c.RemoveItem(productID) {
		return nil, ErrCartItemNotFound
	}
	if err := s.save(ctx, sessionID, c); err != nil {
		return nil, err
	}
	return c, nil
}

func (s *service) ClearCart(ctx context.Context, sessionID string) error {
	if sessionID == "" {
		return ErrMissingSession
	}
	if err := s.store.Delete(ctx, sessionID); err != nil {
		return fmt.Errorf("%w: %v", ErrFailedSaveCart, err)
	}
	return nil
}

func (s *service) Count(ctx context.Context, sessionID string) (int, error) {
	c, err := s.load(ctx, sessionID)
	if err != nil {
		return 0, err
	}
	return c.TotalItems(), nil
}

func (s *service) Validate(ctx context.Context, sessionID string) (*Cart, []string, error) {
	log := logger.FromCtx(ctx).With(
		zap.String("layer", "service"),
		zap.String("method", "ValidateCart"),
	)

	c, err := s.load(ctx, sessionID)
	if err != nil {
		return nil, nil, err
	}

	validated, warnings, changed, err := reconcile(ctx, c, s.products)
	if err != nil {
		log.Error("cart validation failed", zap.Error(err))
		return nil, nil, err
	}

	if changed {
		if err := s.save(ctx, sessionID, validated); err != nil {
			return nil, nil, err
		}
	}

	if len(warnings) > 0 {
		s.metrics.Add(metrics.CartWarnings, uint64(len(warnings)))
		log.Info("cart corrected", zap.Strings("warnings", warnings))
	}
	return validated, warnings, nil
}
