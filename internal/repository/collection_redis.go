package repository

import (
	"context"
	"errors"
	"fmt"

	"github.com/redis/go-redis/v9"
)

// RedisCollection keeps the plan collection under one Redis key, swapped with WATCH/MULTI.
type RedisCollection struct {
	client *redis.Client
	key    string
}

// NewRedisCollection binds the collection to key.
func NewRedisCollection(client *redis.Client, key string) *RedisCollection {
	return &RedisCollection{client: client, key: key}
}

// Load implements CollectionBackend.
func (r *RedisCollection) Load(ctx context.Context) ([]byte, error) {
	content, err := r.client.Get(ctx, r.key).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, ErrCollectionMissing
	}
	if err != nil {
		return nil, fmt.Errorf("redis get %s: %w", r.key, err)
	}
	return content, nil
}

// Replace implements CollectionBackend.
func (r *RedisCollection) Replace(ctx context.Context, expected string, next []byte) error {
	err := r.client.Watch(ctx, func(tx *redis.Tx) error {
		current, err := tx.Get(ctx, r.key).Bytes()
		switch {
		case errors.Is(err, redis.Nil):
			if expected != "" {
				return ErrVersionMismatch
			}
		case err != nil:
			return fmt.Errorf("redis get %s: %w", r.key, err)
		case VersionOf(current) != expected:
			return ErrVersionMismatch
		}

		_, err = tx.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
			pipe.Set(ctx, r.key, next, 0)
			return nil
		})
		return err
	}, r.key)

	if errors.Is(err, redis.TxFailedErr) {
		return ErrVersionMismatch
	}
	return err
}
