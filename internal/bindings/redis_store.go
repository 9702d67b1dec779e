package bindings

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/spec-kit/history-importer/internal/domain"
	"github.com/spec-kit/history-importer/internal/history"
)

// RedisStore shares binding tables between operators and import runs.
type RedisStore struct {
	client redis.Cmdable
	ttl    time.Duration
}

// NewRedisStore builds a store. A zero ttl keeps tables until replaced.
func NewRedisStore(client redis.Cmdable, ttl time.Duration) *RedisStore {
	return &RedisStore{client: client, ttl: ttl}
}

func key(vendor string) string {
	return fmt.Sprintf("bindings:%s:users", vendor)
}

// Push replaces the stored table for vendor.
func (s *RedisStore) Push(ctx context.Context, vendor string, table history.UserTable) error {
	fields := make(map[string]any, len(table))
	for vendorID, user := range table {
		encoded, err := json.Marshal(user)
		if err != nil {
			return fmt.Errorf("encode binding %s: %w", vendorID, err)
		}
		fields[vendorID] = encoded
	}

	_, err := s.client.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		pipe.Del(ctx, key(vendor))
		if len(fields) > 0 {
			pipe.HSet(ctx, key(vendor), fields)
		}
		if s.ttl > 0 {
			pipe.Expire(ctx, key(vendor), s.ttl)
		}
		return nil
	})
	if err != nil {
		return fmt.Errorf("push bindings for %s: %w", vendor, err)
	}
	return nil
}

// Load returns the stored table for vendor, empty when none was pushed.
func (s *RedisStore) Load(ctx context.Context, vendor string) (history.UserTable, error) {
	raw, err := s.client.HGetAll(ctx, key(vendor)).Result()
	if err != nil {
		return nil, fmt.Errorf("load bindings for %s: %w", vendor, err)
	}
	table := make(history.UserTable, len(raw))
	for vendorID, encoded := range raw {
		var user domain.User
		if err := json.Unmarshal([]byte(encoded), &user); err != nil {
			return nil, fmt.Errorf("decode binding %s: %w", vendorID, err)
		}
		table[vendorID] = user
	}
	return table, nil
}
