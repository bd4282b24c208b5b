package notify

import (
	"context"
	"encoding/json"
	"fmt"

	"abc-retailers/internal/logger"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

const DefaultQueue = "order-notifications"

type Publisher interface {
	PublishOrderCreated(ctx context.Context, msg OrderCreated) error
	PublishStatusChanged(ctx context.Context, msg StatusChanged) error
}

type redisPublisher struct {
	client redis.Cmdable
	queue  string
}

// NewRedisPublisher pushes JSON messages onto a Redis list with LPUSH, so
// consumers read them oldest first with BRPOP.
func NewRedisPublisher(client redis.Cmdable, queue string) Publisher {
	if queue == "" {
		queue = DefaultQueue
	}
	return &redisPublisher{client: client, queue: queue}
}

func (p *redisPublisher) PublishOrderCreated(ctx context.Context, msg OrderCreated) error {
	return p.push(ctx, msg)
}

func (p *redisPublisher) PublishStatusChanged(ctx context.Context, msg StatusChanged) error {
	return p.push(ctx, msg)
}

func (p *redisPublisher) push(ctx context.Context, msg any) error {
	raw, err := json.Marshal(msg)
	if err != nil {
		return fmt.Errorf("encode notification: %w", err)
	}
	if err := p.client.LPush(ctx, p.queue, raw).Err(); err != nil {
		return fmt.Errorf("push notification to %s: %w", p.queue, err)
	}
	return nil
}

type logPublisher struct{}

// NewLogPublisher writes notifications to the log. Used when no queue is
// configured.
func NewLogPublisher() Publisher {
	return logPublisher{}
}

func (logPublisher) PublishOrderCreated(ctx context.Context, msg OrderCreated) error {
	logger.FromCtx(ctx).Info("order created notification",
		zap.String("layer", "notify"),
		zap.String("order_id", msg.OrderID),
		zap.String("order_number", msg.OrderNumber),
		zap.Int("quantity", msg.Quantity),
		zap.String("total", msg.TotalPrice.StringFixed(2)),
	)
	return nil
}

func (logPublisher) PublishStatusChanged(ctx context.Context, msg StatusChanged) error {
	logger.FromCtx(ctx).Info("order status notification",
		zap.String("layer", "notify"),
		zap.String("order_id", msg.OrderID),
		zap.String("status", msg.NewStatus),
	)
	return nil
}
