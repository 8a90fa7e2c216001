package auth

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sync/atomic"
	"time"

	domain "github.com/loveroseeeeeeeeee/projetogym5/domain/user"
	"github.com/redis/go-redis/v9"
)

// UserCache stores sanitized users for the access gate's per-request lookup.
// Implementations are best effort: a failed Get is treated as a miss.
type UserCache interface {
	Get(ctx context.Context, id string) (*domain.User, bool)
	Set(ctx context.Context, user *domain.User)
	Delete(ctx context.Context, id string)
	Stats() CacheStats
}

// CacheStats is a snapshot of cache counters.
type CacheStats struct {
	Enabled bool    `json:"enabled"`
	Hits    uint64  `json:"hits"`
	Misses  uint64  `json:"misses"`
	Sets    uint64  `json:"sets"`
	Deletes uint64  `json:"deletes"`
	Errors  uint64  `json:"errors"`
	HitRate float64 `json:"hit_rate"`
}

type noopCache struct{}

func (noopCache) Get(context.Context, string) (*domain.User, bool) { return nil, false }
func (noopCache) Set(context.Context, *domain.User)                {}
func (noopCache) Delete(context.Context, string)                   {}
func (noopCache) Stats() CacheStats                                { return CacheStats{} }

// RedisUserCache is a cache-aside store of sanitized users in Redis.
type RedisUserCache struct {
	client *redis.Client
	prefix string
	ttl    time.Duration

	hits    atomic.Uint64
	misses  atomic.Uint64
	sets    atomic.Uint64
	deletes atomic.Uint64
	errors  atomic.Uint64
}

// NewRedisUserCache creates a cache using client. Keys are prefix + user id.
func NewRedisUserCache(client *redis.Client, prefix string, ttl time.Duration) *RedisUserCache {
	return &RedisUserCache{
		client: client,
		prefix: prefix,
		ttl:    ttl,
	}
}

// Get returns the cached user, if any.
func (c *RedisUserCache) Get(ctx context.Context, id string) (*domain.User, bool) {
	data, err := c.client.Get(ctx, c.prefix+id).Bytes()
	if err != nil {
		if !errors.Is(err, redis.Nil) {
			c.errors.Add(1)
		}
		c.misses.Add(1)
		return nil, false
	}

	var user domain.User
	if err := json.Unmarshal(data, &user); err != nil {
		c.errors.Add(1)
		c.misses.Add(1)
		return nil, false
	}

	c.hits.Add(1)
	return &user, true
}

// Set stores the sanitized form of user.
func (c *RedisUserCache) Set(ctx context.Context, user *domain.User) {
	data, err := json.Marshal(user.Sanitized())
	if err != nil {
		c.errors.Add(1)
		return
	}
	if err := c.client.Set(ctx, c.prefix+user.ID, data, c.ttl).Err(); err != nil {
		c.errors.Add(1)
		return
	}
	c.sets.Add(1)
}

// Delete evicts a user after it changed.
func (c *RedisUserCache) Delete(ctx context.Context, id string) {
	if err := c.client.Del(ctx, c.prefix+id).Err(); err != nil {
		c.errors.Add(1)
		return
	}
	c.deletes.Add(1)
}

// Stats returns a snapshot of the cache counters.
func (c *RedisUserCache) Stats() CacheStats {
	hits := c.hits.Load()
	misses := c.misses.Load()

	var hitRate float64
	if total := hits + misses; total > 0 {
		hitRate = float64(hits) / float64(total) * 100
	}

	return CacheStats{
		Enabled: true,
		Hits:    hits,
		Misses:  misses,
		Sets:    c.sets.Load(),
		Deletes: c.deletes.Load(),
		Errors:  c.errors.Load(),
		HitRate: hitRate,
	}
}

// ConnectRedis creates a client and verifies the connection.
func ConnectRedis(ctx context.Context, addr string) (*redis.Client, error) {
	client := redis.NewClient(&redis.Options{
		Addr:         addr,
		PoolSize:     20,
		MinIdleConns: 2,
		DialTimeout:  5 * time.Second,
		ReadTimeout:  time.Second,
		WriteTimeout: time.Second,
	})

	if err := client.Ping(ctx).Err(); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("failed to connect to Redis at %s: %w", addr, err)
	}
	return client, nil
}
