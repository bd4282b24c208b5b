package cart

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"abc-retailers/internal/logger"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

const redisKeyPrefix = "cart:"

type redisStore struct {
	client redis.Cmdable
	ttl    time.Duration
}

// NewRedisStore keeps carts as JSON under cart:<sessionID>. Every save
// refreshes the key's ttl.
func NewRedisStore(client redis.Cmdable, ttl time.Duration) Store {
	return &redisStore{client: client, ttl: ttl}
}

func redisKey(sessionID string) string {
	return redisKeyPrefix + sessionID
}

func (s *redisStore) Load(ctx context.Context, sessionID string) (*Cart, error) {
	raw, err := s.client.Get(ctx, redisKey(sessionID)).Bytes()
	if errors.Is(err, redis.Nil) {
		return NewCart(), nil
	}
	if err != nil {
		return nil, fmt.Errorf("redis get cart: %w", err)
	}

	var c Cart
	if err := json.Unmarshal(raw, &c); err != nil {
		logger.FromCtx(ctx).Warn("discarding corrupt cart",
			zap.String("layer", "store"),
			zap.Error(err),
		)
		return NewCart(), nil
	}
	if c.Items == nil {
		c.Items = []CartItem{}
	}
	return &c, nil
}

func (s *redisStore) Save(ctx context.Context, sessionID string, c *Cart) error {
	raw, err := json.Marshal(c)
	if err != nil {
		return fmt.Errorf("encode cart: %w", err)
	}
	if err := s.client.Set(ctx, redisKey(sessionID), raw, s.ttl).Err(); err != nil {
		return fmt.Errorf("redis set cart: %w", err)
	}
	return nil
}

func (s *redisStore) Delete(ctx context.Context, sessionID string) error {
	if err := s.client.Del(ctx, redisKey(sessionID)).Err(); err != nil {
		return fmt.Errorf("redis del cart: %w", err)
	}
	return nil
}
