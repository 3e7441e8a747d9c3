package cart

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
)

// RedisStore keeps cart sessions in Redis as JSON documents with a sliding
// TTL, refreshed on every write.
type RedisStore struct {
	Client *redis.Client
	Prefix string
	TTL    time.Duration
}

const defaultSessionTTL = 12 * time.Hour

// NewRedisStore constructs a Redis-backed session store.
func NewRedisStore(client *redis.Client, ttl time.Duration) *RedisStore {
	return &RedisStore{Client: client, Prefix: "cart:", TTL: ttl}
}

func (s *RedisStore) ttl() time.Duration {
	if s.TTL <= 0 {
		return defaultSessionTTL
	}
	return s.TTL
}

func (s *RedisStore) key(id uuid.UUID) string {
	prefix := s.Prefix
	if prefix == "" {
		prefix = "cart:"
	}
	return prefix + id.String()
}

// Get loads and decodes the cart session.
func (s *RedisStore) Get(ctx context.Context, id uuid.UUID) (Cart, error) {
	if s.Client == nil {
		return Cart{}, errors.New("cart: redis client not configured")
	}
	data, err := s.Client.Get(ctx, s.key(id)).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return Cart{}, ErrNotFound
		}
		return Cart{}, fmt.Errorf("cart: load session: %w", err)
	}
	var c Cart
	if err := json.Unmarshal(data, &c); err != nil {
		return Cart{}, fmt.Errorf("cart: decode session: %w", err)
	}
	return c, nil
}

// Put encodes and stores the cart, refreshing the session TTL.
func (s *RedisStore) Put(ctx context.Context, c Cart) error {
	if s.Client == nil {
		return errors.New("cart: redis client not configured")
	}
	data, err := json.Marshal(c)
	if err != nil {
		return fmt.Errorf("cart: encode session: %w", err)
	}
	return s.Client.Set(ctx, s.key(c.ID), data, s.ttl()).Err()
}

// Delete removes the session.
func (s *RedisStore) Delete(ctx context.Context, id uuid.UUID) error {
	if s.Client == nil {
		return errors.New("cart: redis client not configured")
	}
	return s.Client.Del(ctx, s.key(id)).Err()
}
