package cart

import (
	"context"
	"strings"
	"time"

	"github.com/redis/go-redis/v9"
)

const defaultRedisKey = "ikirezi:storefront:cart"

// RedisStorage keeps the cart document under a single Redis key so the cart
// survives process restarts and can be shared by replicas of one session.
type RedisStorage struct {
	client *redis.Client
	key    string
	ttl    time.Duration
}

// NewRedisStorage builds a Redis-backed cart storage. key defaults to the
// fixed storefront cart key; a zero ttl means the document never expires.
func NewRedisStorage(addr, password, key string, ttl time.Duration) *RedisStorage {
	key = strings.TrimSpace(key)
	if key == "" {
		key = defaultRedisKey
	}
	return &RedisStorage{
		client: redis.NewClient(&redis.Options{
			Addr:     addr,
			Password: password,
		}),
		key: key,
		ttl: ttl,
	}
}

// Load fetches the cart document.
func (s *RedisStorage) Load(ctx context.Context) ([]byte, bool, error) {
	ctx, cancel := context.WithTimeout(ctx, 3*time.Second)
	defer cancel()
	data, err := s.client.Get(ctx, s.key).Bytes()
	if err == redis.Nil {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, err
	}
	return data, true, nil
}

// Save replaces the cart document.
func (s *RedisStorage) Save(ctx context.Context, data []byte) error {
	ctx, cancel := context.WithTimeout(ctx, 3*time.Second)
	defer cancel()
	return s.client.Set(ctx, s.key, data, s.ttl).Err()
}

// Clear deletes the cart document.
func (s *RedisStorage) Clear(ctx context.Context) error {
	ctx, cancel := context.WithTimeout(ctx, 3*time.Second)
	defer cancel()
	if err := s.client.Del(ctx, s.key).Err(); err != nil && err != redis.Nil {
		return err
	}
	return nil
}
