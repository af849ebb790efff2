package auth

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/redis/go-redis/v9"
)

// ErrNoToken indicates the store holds no usable token.
var ErrNoToken = errors.New("no stored token")

// DefaultRedisKey is the Redis key tokens are stored under when no key
// is configured.
const DefaultRedisKey = "reddit:token"

// Store persists an access token between requests.
type Store interface {
	// Get returns the stored token, or ErrNoToken if none is stored
	// or the stored one has expired.
	Get(ctx context.Context) (string, error)

	// Set stores a token for the given lifetime. A non-positive ttl
	// is a no-op.
	Set(ctx context.Context, token string, ttl time.Duration) error

	// Delete discards the stored token.
	Delete(ctx context.Context) error
}

// MemoryStore keeps the token in process memory. Safe for concurrent use.
type MemoryStore struct {
	mu      sync.Mutex
	token   string
	expires time.Time
}

// NewMemoryStore creates an empty in-memory token store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{}
}

func (s *MemoryStore) Get(ctx context.Context) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.token == "" || time.Now().After(s.expires) {
		TokenStoreMisses.Inc()
		return "", ErrNoToken
	}

	TokenStoreHits.WithLabelValues("memory").Inc()
	return s.token, nil
}

func (s *MemoryStore) Set(ctx context.Context, token string, ttl time.Duration) error {
	if ttl <= 0 {
		return nil
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	s.token = token
	s.expires = time.Now().Add(ttl)
	return nil
}

func (s *MemoryStore) Delete(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.token = ""
	s.expires = time.Time{}
	return nil
}

// RedisStore keeps the token in Redis so multiple processes share a single
// token instead of each requesting their own. Expiry rides on the Redis TTL.
type RedisStore struct {
	redis *redis.Client
	key   string
}

// NewRedisStore creates a Redis-backed token store.
// An empty key falls back to DefaultRedisKey.
func NewRedisStore(redisClient *redis.Client, key string) *RedisStore {
	if redisClient == nil {
		panic("redis client cannot be nil")
	}
	if key == "" {
		key = DefaultRedisKey
	}
	return &RedisStore{
		redis: redisClient,
		key:   key,
	}
}

func (s *RedisStore) Get(ctx context.Context) (string, error) {
	token, err := s.redis.Get(ctx, s.key).Result()
	if err != nil {
		if err == redis.Nil {
			TokenStoreMisses.Inc()
			return "", ErrNoToken
		}
		TokenStoreErrors.WithLabelValues("get").Inc()
		return "", fmt.Errorf("redis get: %w", err)
	}

	TokenStoreHits.WithLabelValues("redis").Inc()
	return token, nil
}

func (s *RedisStore) Set(ctx context.Context, token string, ttl time.Duration) error {
	if ttl <= 0 {
		return nil
	}

	if err := s.redis.Set(ctx, s.key, token, ttl).Err(); err != nil {
		TokenStoreErrors.WithLabelValues("set").Inc()
		return fmt.Errorf("redis set: %w", err)
	}

	return nil
}

func (s *RedisStore) Delete(ctx context.Context) error {
	if err := s.redis.Del(ctx, s.key).Err(); err != nil {
		TokenStoreErrors.WithLabelValues("delete").Inc()
		return fmt.Errorf("redis del: %w", err)
	}

	return nil
}
