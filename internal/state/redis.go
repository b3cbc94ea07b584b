package state

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/redis/go-redis/v9"
)

const keyPrefix = "biteiq:pending:"

// RedisStore shares pending flags between bot replicas.
type RedisStore struct {
	rdb *redis.Client
	ttl time.Duration
}

func NewRedisStore(ctx context.Context, redisURL string, ttl time.Duration) (*RedisStore, error) {
	opts, err := redis.ParseURL(redisURL)
	if err != nil {
		return nil, fmt.Errorf("failed to parse redis URL: %w", err)
	}

	client := redis.NewClient(opts)
	if err := client.Ping(ctx).Err(); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("failed to ping redis: %w", err)
	}

	if ttl <= 0 {
		ttl = DefaultTTL
	}
	return &RedisStore{rdb: client, ttl: ttl}, nil
}

func key(telegramID int64) string {
	return keyPrefix + strconv.FormatInt(telegramID, 10)
}

func (r *RedisStore) Set(ctx context.Context, telegramID int64, p Pending) error {
	if p == None {
		if err := r.rdb.Del(ctx, key(telegramID)).Err(); err != nil {
			return fmt.Errorf("failed to clear pending input: %w", err)
		}
		return nil
	}
	if err := r.rdb.Set(ctx, key(telegramID), string(p), r.ttl).Err(); err != nil {
		return fmt.Errorf("failed to store pending input: %w", err)
	}
	return nil
}

func (r *RedisStore) Take(ctx context.Context, telegramID int64) (Pending, error) {
	val, err := r.rdb.GetDel(ctx, key(telegramID)).Result()
	if errors.Is(err, redis.Nil) {
		return None, nil
	}
	if err != nil {
		return None, fmt.Errorf("failed to read pending input: %w", err)
	}
	return Pending(val), nil
}

func (r *RedisStore) Close() error {
	return r.rdb.Close()
}
