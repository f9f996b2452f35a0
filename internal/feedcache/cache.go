// SPDX-License-Identifier: MIT

// Package feedcache is a Redis-backed read-through cache for rendered feed
// pages. A nil *Cache is valid and bypasses caching entirely, so callers
// never branch on whether Redis is configured.
package feedcache

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"

	"github.com/blogicum/blogicum/internal/config"
	"github.com/blogicum/blogicum/internal/metrics"
)

const genKey = "blogicum:feed:gen"

// Cache caches serialized feed pages until the next content write.
type Cache struct {
	client *redis.Client
	ttl    time.Duration
	logger zerolog.Logger
}

// New connects to Redis. An empty Addr returns (nil, nil): caching disabled.
func New(cfg config.RedisConfig, logger zerolog.Logger) (*Cache, error) {
	if cfg.Addr == "" {
		return nil, nil
	}

	client := redis.NewClient(&redis.Options{
		Addr:         cfg.Addr,
		Password:     cfg.Password,
		DB:           cfg.DB,
		DialTimeout:  5 * time.Second,
		ReadTimeout:  2 * time.Second,
		WriteTimeout: 2 * time.Second,
	})

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := client.Ping(ctx).Err(); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("feedcache: redis connection failed: %w", err)
	}

	logger.Info().
		Str("addr", cfg.Addr).
		Int("db", cfg.DB).
		Dur("ttl", cfg.FeedTTL).
		Msg("connected to Redis feed cache")

	return &Cache{client: client, ttl: cfg.FeedTTL, logger: logger}, nil
}

// Get returns the cached payload for a feed page, if present.
func (c *Cache) Get(ctx context.Context, feed string, page int) ([]byte, bool) {
	if c == nil {
		metrics.FeedCache.WithLabelValues("bypass").Inc()
		return nil, false
	}

	key, err := c.pageKey(ctx, feed, page)
	if err != nil {
		metrics.FeedCache.WithLabelValues("miss").Inc()
		return nil, false
	}

	payload, err := c.client.Get(ctx, key).Bytes()
	if err == redis.Nil {
		metrics.FeedCache.WithLabelValues("miss").Inc()
		return nil, false
	}
	if err != nil {
		c.logger.Warn().Err(err).Str("key", key).Msg("feed cache get failed")
		metrics.FeedCache.WithLabelValues("miss").Inc()
		return nil, false
	}

	metrics.FeedCache.WithLabelValues("hit").Inc()
	return payload, true
}

// Set stores the payload for a feed page under the current generation.
func (c *Cache) Set(ctx context.Context, feed string, page int, payload []byte) {
	if c == nil {
		return
	}
	key, err := c.pageKey(ctx, feed, page)
	if err != nil {
		return
	}
	if err := c.client.Set(ctx, key, payload, c.ttl).Err(); err != nil {
		c.logger.Warn().Err(err).Str("key", key).Msg("feed cache set failed")
	}
}

// Invalidate bumps the cache generation. Old entries become unreachable and
// expire by TTL; no key scanning required.
func (c *Cache) Invalidate(ctx context.Context) {
	if c == nil {
		return
	}
	if err := c.client.Incr(ctx, genKey).Err(); err != nil {
		c.logger.Warn().Err(err).Msg("feed cache invalidation failed")
	}
}

// Ping verifies connectivity, for readiness checks.
func (c *Cache) Ping(ctx context.Context) error {
	if c == nil {
		return nil
	}
	return c.client.Ping(ctx).Err()
}

// Close releases the Redis connection.
func (c *Cache) Close() error {
	if c == nil {
		return nil
	}
	return c.client.Close()
}

func (c *Cache) pageKey(ctx context.Context, feed string, page int) (string, error) {
	gen, err := c.client.Get(ctx, genKey).Int64()
	if err != nil && err != redis.Nil {
		return "", err
	}
	return fmt.Sprintf("blogicum:feed:%d:%s:%d", gen, feed, page), nil
}
