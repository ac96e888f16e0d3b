package cache

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"github.com/edgepos/backend/internal/domain/session"
	"github.com/edgepos/backend/internal/infrastructure/config"
)

// SessionCache holds the current session per store so transaction-entry
// guards do not hit the database on every bill operation. Entries are
// invalidated whenever a session is written.
type SessionCache interface {
	Get(ctx context.Context, storeID uuid.UUID) (*session.StoreSession, bool, error)
	Set(ctx context.Context, sess *session.StoreSession, ttl time.Duration) error
	Invalidate(ctx context.Context, storeID uuid.UUID) error
}

// RedisSessionCache implements SessionCache on Redis. Sessions are stored
// as JSON under one key per store.
type RedisSessionCache struct {
	client    *redis.Client
	keyPrefix string
}

// NewRedisSessionCache creates a Redis session cache and verifies the
// connection.
func NewRedisSessionCache(cfg config.RedisConfig) (*RedisSessionCache, error) {
	client := redis.NewClient(&redis.Options{
		Addr:     fmt.Sprintf("%s:%d", cfg.Host, cfg.Port),
		Password: cfg.Password,
		DB:       cfg.DB,
	})

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := client.Ping(ctx).Err(); err != nil {
		return nil, fmt.Errorf("failed to connect to Redis: %w", err)
	}

	return &RedisSessionCache{
		client:    client,
		keyPrefix: "session:current:",
	}, nil
}

// NewRedisSessionCacheWithClient creates a cache over an existing client
func NewRedisSessionCacheWithClient(client *redis.Client, keyPrefix string) *RedisSessionCache {
	if keyPrefix == "" {
		keyPrefix = "session:current:"
	}
	return &RedisSessionCache{client: client, keyPrefix: keyPrefix}
}

func (c *RedisSessionCache) key(storeID uuid.UUID) string {
	return c.keyPrefix + storeID.String()
}

// Get returns the cached current session for the store, if present
func (c *RedisSessionCache) Get(ctx context.Context, storeID uuid.UUID) (*session.StoreSession, bool, error) {
	data, err := c.client.Get(ctx, c.key(storeID)).Bytes()
	if err == redis.Nil {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, fmt.Errorf("failed to read session cache: %w", err)
	}

	var sess session.StoreSession
	if err := json.Unmarshal(data, &sess); err != nil {
		// A corrupt entry is treated as a miss; the next Set overwrites it.
		return nil, false, nil
	}
	return &sess, true, nil
}

// Set stores the session with a TTL
func (c *RedisSessionCache) Set(ctx context.Context, sess *session.StoreSession, ttl time.Duration) error {
	data, err := json.Marshal(sess)
	if err != nil {
		return fmt.Errorf("failed to encode session for cache: %w", err)
	}
	if err := c.client.Set(ctx, c.key(sess.StoreID), data, ttl).Err(); err != nil {
		return fmt.Errorf("failed to write session cache: %w", err)
	}
	return nil
}

// Invalidate removes the store's cached session
func (c *RedisSessionCache) Invalidate(ctx context.Context, storeID uuid.UUID) error {
	if err := c.client.Del(ctx, c.key(storeID)).Err(); err != nil {
		return fmt.Errorf("failed to invalidate session cache: %w", err)
	}
	return nil
}

// Close closes the Redis client
func (c *RedisSessionCache) Close() error {
	return c.client.Close()
}

var _ SessionCache = (*RedisSessionCache)(nil)

type inMemorySessionEntry struct {
	session   *session.StoreSession
	expiresAt time.Time
}

// InMemorySessionCache implements SessionCache with a process-local map.
// Suitable for single-instance deployments and testing.
type InMemorySessionCache struct {
	mu      sync.RWMutex
	entries map[uuid.UUID]inMemorySessionEntry
}

// NewInMemorySessionCache creates an empty in-memory session cache
func NewInMemorySessionCache() *InMemorySessionCache {
	return &InMemorySessionCache{
		entries: make(map[uuid.UUID]inMemorySessionEntry),
	}
}

// Get returns the cached current session for the store, if present
func (c *InMemorySessionCache) Get(_ context.Context, storeID uuid.UUID) (*session.StoreSession, bool, error) {
	c.mu.RLock()
	entry, ok := c.entries[storeID]
	c.mu.RUnlock()

	if !ok || time.Now().After(entry.expiresAt) {
		return nil, false, nil
	}
	return entry.session, true, nil
}

// Set stores the session with a TTL
func (c *InMemorySessionCache) Set(_ context.Context, sess *session.StoreSession, ttl time.Duration) error {
	c.mu.Lock()
	c.entries[sess.StoreID] = inMemorySessionEntry{
		session:   sess,
		expiresAt: time.Now().Add(ttl),
	}
	c.mu.Unlock()
	return nil
}

// Invalidate removes the store's cached session
func (c *InMemorySessionCache) Invalidate(_ context.Context, storeID uuid.UUID) error {
	c.mu.Lock()
	delete(c.entries, storeID)
	c.mu.Unlock()
	return nil
}

var _ SessionCache = (*InMemorySessionCache)(nil)

// NewSessionCache creates a Redis session cache, falling back to the
// in-memory cache when Redis is unavailable.
func NewSessionCache(cfg config.RedisConfig, logger *zap.Logger) SessionCache {
	if logger == nil {
		logger = zap.NewNop()
	}

	cache, err := NewRedisSessionCache(cfg)
	if err == nil {
		logger.Info("using Redis session cache")
		return cache
	}

	logger.Warn("Redis unavailable, falling back to in-memory session cache",
		zap.Error(err),
	)
	return NewInMemorySessionCache()
}
