package redis

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/MikeRez0/ypstore/internal/adapter/config"
	"github.com/MikeRez0/ypstore/internal/core/port"
	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
)

const (
	keyPrefix = "ypstore:idempotency:"
	pending   = "pending"
)

type IdempotencyStore struct {
	client *redis.Client
	ttl    time.Duration
}

var _ port.IdempotencyStore = (*IdempotencyStore)(nil)

func NewIdempotencyStore(ctx context.Context, conf *config.Idempotency) (*IdempotencyStore, error) {
	opts, err := redis.ParseURL(conf.RedisURL)
	if err != nil {
		return nil, fmt.Errorf("failed to parse redis url: %w", err)
	}

	client := redis.NewClient(opts)
	if err := client.Ping(ctx).Err(); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("failed to ping redis: %w", err)
	}

	return NewIdempotencyStoreWithClient(client, conf.TTL), nil
}

func NewIdempotencyStoreWithClient(client *redis.Client, ttl time.Duration) *IdempotencyStore {
	return &IdempotencyStore{client: client, ttl: ttl}
}

func (s *IdempotencyStore) Claim(ctx context.Context, key string) (uuid.UUID, bool, error) {
	k := keyPrefix + key

	// the second round covers a key that expired or was abandoned between SETNX and GET
	for range 2 {
		ok, err := s.client.SetNX(ctx, k, pending, s.ttl).Result()
		if err != nil {
			return uuid.Nil, false, fmt.Errorf("claim %s: %w", key, err)
		}
		if ok {
			return uuid.Nil, true, nil
		}

		val, err := s.client.Get(ctx, k).Result()
		if errors.Is(err, redis.Nil) {
			continue
		}
		if err != nil {
			return uuid.Nil, false, fmt.Errorf("read %s: %w", key, err)
		}
		if val == pending {
			return uuid.Nil, false, nil
		}

		orderID, err := uuid.Parse(val)
		if err != nil {
			return uuid.Nil, false, fmt.Errorf("bad order id under %s: %w", key, err)
		}
		return orderID, false, nil
	}

	return uuid.Nil, false, nil
}

func (s *IdempotencyStore) Complete(ctx context.Context, key string, orderID uuid.UUID) error {
	return s.client.Set(ctx, keyPrefix+key, orderID.String(), s.ttl).Err()
}

func (s *IdempotencyStore) Abandon(ctx context.Context, key string) error {
	return s.client.Del(ctx, keyPrefix+key).Err()
}

func (s *IdempotencyStore) Close() error {
	return s.client.Close()
}
