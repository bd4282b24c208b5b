package order

import (
	"context"
	"errors"
	"fmt"
	"time"

	"abc-retailers/internal/cart"
	"abc-retailers/internal/logger"
	"abc-retailers/internal/metrics"
	"abc-retailers/internal/notify"
	"abc-retailers/internal/utils"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

type Service interface {
	Checkout(ctx context.Context, sessionID string, userID uuid.UUID, details CustomerDetails) (*Order, error)
	CreateManualOrder(ctx context.Context, input ManualOrderInput) (*Order, error)
	List(ctx context.Context, viewer Viewer) ([]*Order, error)
	Detail(ctx context.Context, id uuid.UUID, viewer Viewer) (*Order, error)
	Edit(ctx context.Context, id uuid.UUID, input EditInput) (*Order, error)
	UpdateStatus(ctx context.Context, id uuid.UUID, status string) (*Order, error)
	Cancel(ctx context.Context, id uuid.UUID, viewer Viewer) (*Order, error)
}

type service struct {
	repo     Repository
	carts    cart.Service
	products cart.ProductLookup
	notifier notify.Publisher
	metrics  *metrics.Registry
	validate *validator.Validate
	now      func() time.Time
}

func NewService(
	repo Repository,
	carts cart.Service,
	products cart.ProductLookup,
	notifier notify.Publisher,
	m *metrics.Registry,
) Service {
	return &service{
		repo:     repo,
		carts:    carts,
		products: products,
		notifier: notifier,
		metrics:  m,
		validate: validator.New(validator.WithRequiredStructEnabled()),
		now:      func() time.Time { return time.Now().UTC() },
	}
}

func (s *service) Checkout(ctx context.Context, sessionID string, userID uuid.UUID, details CustomerDetails) (*Order, error) {
	log := logger.FromCtx(ctx).With(
		zap.String("layer", "service"),
		zap.String("method", "Checkout"),
		zap.String("user_id", userID.String()),
	)
	timer := metrics.StartTimer()

	if err := s.validate.Struct(details); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrInvalidDetails, err)
	}

	// revalidate at submit time; the cart may have drifted since render
	c, warnings, err := s.carts.Validate(ctx, sessionID)
	if err != nil {
		if errors.Is(err, cart.ErrMissingSession) {
			return nil, ErrEmptyCart
		}
		log.Error("cart validation failed", zap.Error(err))
		s.metrics.Inc(metrics.CheckoutFailures)
		return nil, fmt.Errorf("%w: %w", ErrCheckoutFailed, err)
	}
	if len(warnings) > 0 {
		log.Info("checkout blocked, cart changed", zap.Strings("warnings", warnings))
		s.metrics.Inc(metrics.CheckoutBlocked)
		return nil, &CartChangedError{Warnings: warnings}
	}
	if c.IsEmpty() {
		return nil, ErrEmptyCart
	}

	o := s.buildOrder(userID, details, c, StatusPending)

	if err := s.repo.CreateOrderTx(ctx, o); err != nil {
		s.metrics.Inc(metrics.CheckoutFailures)
		if errors.Is(err, ErrInsufficientStock) {
			return nil, err
		}
		log.Error("failed to persist order", zap.Error(err))
		return nil, fmt.Errorf("%w: %w", ErrCheckoutFailed, err)
	}

	if err := s.carts.ClearCart(ctx, sessionID); err != nil {
		log.Warn("order placed but cart not cleared", zap.Error(err))
	}
	s.publishCreated(ctx, o)
	s.metrics.Inc(metrics.OrdersCreated)

	log.Info("checkout success",
		zap.String("order_id", o.ID.String()),
		zap.String("order_number", o.OrderNumber),
		zap.String("total", o.TotalAmount.StringFixed(2)),
		zap.Duration("duration", timer.Duration()),
	)
	return o, nil
}

func (s *service) CreateManualOrder(ctx context.Context, input ManualOrderInput) (*Order, error) {
	log := logger.FromCtx(ctx).With(
		zap.String("layer", "service"),
		zap.String("method", "CreateManualOrder"),
		zap.String("user_id", input.UserID.String()),
		zap.String("product_id", input.ProductID),
	)

	if err := s.validate.Struct(input); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrInvalidDetails, err)
	}

	p, err := s.products.FindActive(ctx, input.ProductID)
	if err != nil {
		log.Error("product lookup failed", zap.Error(err))
		return nil, fmt.Errorf("%w: %w", ErrCheckoutFailed, err)
	}
	if p == nil {
		return nil, ErrProductNotFound
	}
	if input.Quantity > p.Stock {
		return nil, fmt.Errorf("%w: only %d of '%s' available", ErrInsufficientStock, p.Stock, p.Name)
	}

	// price the single line with the same rules as a shopper's cart
	line := cart.NewCart()
	line.AddItem(p, input.Quantity)

	o := s.buildOrder(input.UserID, input.CustomerDetails, line, StatusSubmitted)
	if err := s.repo.CreateOrderTx(ctx, o); err != nil {
		if errors.Is(err, ErrInsufficientStock) {
			return nil, err
		}
		log.Error("failed to persist manual order", zap.Error(err))
		return nil, fmt.Errorf("%w: %w", ErrCheckoutFailed, err)
	}

	s.publishCreated(ctx, o)
	s.metrics.Inc(metrics.OrdersCreated)
	log.Info("manual order created", zap.String("order_number", o.OrderNumber))
	return o, nil
}

func (s *service) buildOrder(userID uuid.UUID, d CustomerDetails, c *cart.Cart, status Status) *Order {
	now := s.now()
	o := &Order{
		ID:              uuid.New(),
		UserID:          userID,
		OrderDate:       now,
		Status:          status,
		CustomerName:    d.CustomerName,
		CustomerEmail:   d.CustomerEmail,
		ShippingAddress: d.ShippingAddress,
		PhoneNumber:     utils.NilIfEmpty(d.PhoneNumber),
		Notes:           utils.NilIfEmpty(d.Notes),
		Subtotal:        c.Subtotal(),
		Tax:             c.Tax(),
		ShippingCost:    c.ShippingCost(),
		TotalAmount:     c.Total(),
		Items:           make([]OrderItem, 0, len(c.Items)),
	}
	for _, line := range c.Items {
		o.Items = append(o.Items, OrderItem{
			ID:              uuid.New(),
			OrderID:         o.ID,
			ProductID:       line.ProductID,
			ProductName:     line.ProductName,
			ProductImageURL: utils.NilIfEmpty(line.ImageURL),
			Quantity:        line.Quantity,
			UnitPrice:       line.UnitPrice,
			TotalPrice:      line.TotalPrice,
		})
	}
	return o
}

func (s *service) List(ctx context.Context, viewer Viewer) ([]*Order, error) {
	if viewer.Admin {
		return s.repo.ListAll(ctx)
	}
	return s.repo.ListByUser(ctx, viewer.UserID)
}

func (s *service) Detail(ctx context.Context, id uuid.UUID, viewer Viewer) (*Order, error) {
	o, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if !viewer.canSee(o) {
		return nil, ErrForbidden
	}
	return o, nil
}

func (s *service) Edit(ctx context.Context, id uuid.UUID, input EditInput) (*Order, error) {
	o, err := s.loadMutable(ctx, id)
	if err != nil {
		return nil, err
	}

	target := o.Status
	if input.Status != "" {
		if target, err = ParseStatus(input.Status); err != nil {
			return nil, err
		}
	}
	if target == StatusCancelled {
		return s.cancel(ctx, o)
	}

	if input.TrackingNumber != nil {
		o.TrackingNumber = utils.NilIfEmpty(*input.TrackingNumber)
	}
	return s.transition(ctx, o, target)
}

func (s *service) UpdateStatus(ctx context.Context, id uuid.UUID, status string) (*Order, error) {
	target, err := ParseStatus(status)
	if err != nil {
		return nil, err
	}

	o, err := s.loadMutable(ctx, id)
	if err != nil {
		return nil, err
	}
	if target == StatusCancelled {
		return s.cancel(ctx, o)
	}
	return s.transition(ctx, o, target)
}

func (s *service) Cancel(ctx context.Context, id uuid.UUID, viewer Viewer) (*Order, error) {
	o, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if !viewer.canSee(o) {
		return nil, ErrForbidden
	}
	if o.Status.IsTerminal() {
		return nil, ErrOrderFinalized
	}
	return s.cancel(ctx, o)
}

func (s *service) loadMutable(ctx context.Context, id uuid.UUID) (*Order, error) {
	o, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if o.Status.IsTerminal() {
		return nil, ErrOrderFinalized
	}
	return o, nil
}

func (s *service) transition(ctx context.Context, o *Order, target Status) (*Order, error) {
	log := logger.FromCtx(ctx).With(
		zap.String("layer", "service"),
		zap.String("method", "UpdateOrderStatus"),
		zap.String("order_id", o.ID.String()),
		zap.String("from", string(o.Status)),
		zap.String("to", string(target)),
	)

	o.applyStatus(target, s.now())
	if err := s.repo.UpdateStatus(ctx, o); err != nil {
		if !errors.Is(err, ErrOrderFinalized) {
			log.Error("failed to update order status", zap.Error(err))
		}
		return nil, err
	}

	s.publishStatus(ctx, o)
	s.metrics.Inc(metrics.OrderStatusChanges)
	log.Info("order status updated")
	return o, nil
}

func (s *service) cancel(ctx context.Context, o *Order) (*Order, error) {
	o.UpdatedAt = s.now()
	if err := s.repo.CancelTx(ctx, o); err != nil {
		if !errors.Is(err, ErrOrderFinalized) {
			logger.FromCtx(ctx).Error("failed to cancel order",
				zap.String("layer", "service"),
				zap.String("order_id", o.ID.String()),
				zap.Error(err),
			)
		}
		return nil, err
	}
	o.Status = StatusCancelled

	s.publishStatus(ctx, o)
	s.metrics.Inc(metrics.OrdersCancelled)
	return o, nil
}

func (s *service) publishCreated(ctx context.Context, o *Order) {
	err := s.notifier.PublishOrderCreated(ctx, notify.OrderCreated{
		OrderID:      o.ID.String(),
		OrderNumber:  o.OrderNumber,
		CustomerName: o.CustomerName,
		ProductName:  o.ProductNames(),
		Quantity:     o.TotalQuantity(),
		TotalPrice:   o.TotalAmount,
	})
	if err != nil {
		s.metrics.Inc(metrics.NotifyFailures)
		logger.FromCtx(ctx).Warn("order created notification not sent",
			zap.String("order_id", o.ID.String()),
			zap.Error(err),
		)
	}
}

func (s *service) publishStatus(ctx context.Context, o *Order) {
	err := s.notifier.PublishStatusChanged(ctx, notify.StatusChanged{
		OrderID:      o.ID.String(),
		CustomerName: o.CustomerName,
		NewStatus:    string(o.Status),
		UpdatedDate:  o.UpdatedAt,
	})
	if err != nil {
		s.metrics.Inc(metrics.NotifyFailures)
		logger.FromCtx(ctx).Warn("status notification not sent",
			zap.String("order_id", o.ID.String()),
			zap.Error(err),
		)
	}
}
