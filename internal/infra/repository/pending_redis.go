package repository

import (
	"context"
	"errors"
	"strconv"
	"time"

	"github.com/redis/go-redis/v9"
)

// RedisPendingRepository keeps pending intents in redis, optionally expiring them.
type RedisPendingRepository struct {
	rdb *redis.Client
	ttl time.Duration
}

func NewRedisPendingRepository(rdb *redis.Client, ttl time.Duration) *RedisPendingRepository {
	return &RedisPendingRepository{rdb: rdb, ttl: ttl}
}

func pendingKey(senderID int64) string {
	return "anonrelay:pending:" + strconv.FormatInt(senderID, 10)
}

func (r *RedisPendingRepository) Set(ctx context.Context, senderID, targetID int64, at time.Time) error {
	err := r.rdb.Set(ctx, pendingKey(senderID), targetID, r.ttl).Err()
	return storeError("pending.Set", "pending intent", err)
}

func (r *RedisPendingRepository) Get(ctx context.Context, senderID int64) (int64, bool, error) {
	target, err := r.rdb.Get(ctx, pendingKey(senderID)).Int64()
	if errors.Is(err, redis.Nil) {
		return 0, false, nil
	}
	if err != nil {
		return 0, false, storeError("pending.Get", "pending intent", err)
	}
	return target, true, nil
}

func (r *RedisPendingRepository) Clear(ctx context.Context, senderID int64) error {
	err := r.rdb.Del(ctx, pendingKey(senderID)).Err()
	return storeError("pending.Clear", "pending intent", err)
}
