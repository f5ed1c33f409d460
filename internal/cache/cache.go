/*
Copyright (C) 2026 Friends Incode

SPDX-License-Identifier: AGPL-3.0-or-later
*/

// Package cache provides a Redis-backed cache for solved schedules.
//
// Solving is deterministic for a given parameter set and search
// configuration, so results can be replayed from Redis instead of searched
// again. Nothing here is a store of record: every entry expires and a miss or
// an outage only costs a recompute.
package cache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"

	"github.com/friendsincode/crewrota/internal/rota"
)

// DefaultTTL is how long a solved schedule stays cached.
const DefaultTTL = time.Hour

// KeyPrefix namespaces every key this package writes.
const KeyPrefix = "crewrota:cache:"

// Config contains cache configuration.
type Config struct {
	RedisAddr     string
	RedisPassword string
	RedisDB       int
	TTL           time.Duration

	// DisableOnError trips the breaker on the first Redis error so a flaky
	// Redis cannot slow every request down.
	DisableOnError bool
}

// DefaultConfig returns default cache configuration.
func DefaultConfig() Config {
	return Config{
		RedisAddr:      "localhost:6379",
		TTL:            DefaultTTL,
		DisableOnError: true,
	}
}

// Entry is one cached solve.
type Entry struct {
	Schedule         rota.Schedule `json:"schedule"`
	CoverageStartDay int           `json:"coverage_start_day"`
	HorizonDays      int           `json:"horizon_days"`
	Nodes            int64         `json:"nodes"`
	CeilingsTried    int           `json:"ceilings_tried"`
	CachedAt         time.Time     `json:"cached_at"`
}

// Cache provides Redis-backed caching with graceful fallback.
type Cache struct {
	client *redis.Client
	logger zerolog.Logger
	config Config

	mu       sync.RWMutex
	disabled bool // Circuit breaker state
}

// New connects to Redis. An unreachable Redis is not an error: the returned
// cache starts disabled and every lookup misses.
func New(cfg Config, logger zerolog.Logger) (*Cache, error) {
	if cfg.TTL <= 0 {
		cfg.TTL = DefaultTTL
	}
	logger = logger.With().Str("component", "cache").Logger()

	client := redis.NewClient(&redis.Options{
		Addr:         cfg.RedisAddr,
		Password:     cfg.RedisPassword,
		DB:           cfg.RedisDB,
		DialTimeout:  2 * time.Second,
		ReadTimeout:  2 * time.Second,
		WriteTimeout: 2 * time.Second,
		PoolSize:     10,
		MinIdleConns: 1,
	})

	ctx, cancel := context.WithTimeout(context.Background(), 3*time.Second)
	defer cancel()

	if err := client.Ping(ctx).Err(); err != nil {
		logger.Warn().Err(err).Str("addr", cfg.RedisAddr).Msg("redis unavailable, running without result cache")
		_ = client.Close()
		return &Cache{logger: logger, config: cfg, disabled: true}, nil
	}

	logger.Info().Str("addr", cfg.RedisAddr).Dur("ttl", cfg.TTL).Msg("result cache initialized")
	return &Cache{client: client, logger: logger, config: cfg}, nil
}

// Close closes the Redis connection.
func (c *Cache) Close() error {
	if c == nil || c.client == nil {
		return nil
	}
	return c.client.Close()
}

// IsAvailable returns true if the cache is operational.
func (c *Cache) IsAvailable() bool {
	if c == nil {
		return false
	}
	c.mu.RLock()
	defer c.mu.RUnlock()
	return !c.disabled && c.client != nil
}

// handleError applies the circuit breaker.
func (c *Cache) handleError(err error, operation string) {
	if err == nil || errors.Is(err, redis.Nil) {
		return
	}

	c.logger.Debug().Err(err).Str("operation", operation).Msg("cache operation failed")

	if c.config.DisableOnError {
		c.mu.Lock()
		c.disabled = true
		c.mu.Unlock()
		c.logger.Warn().Msg("disabling result cache due to redis error")
	}
}

// Key derives the cache key of a solve. mode separates fixed-horizon runs
// from required-duty-day runs; the search configuration is part of the key
// because it decides which schedule is found.
func Key(mode string, p rota.Params, cfg rota.Config) string {
	return fmt.Sprintf("%sschedule:%s:n%d:m%d:i%d:h%d:r%d:s%d:b%d:x%d",
		KeyPrefix, mode,
		p.DutyCycleLength, p.RestCycleLength, p.InductionLength, p.HorizonDays, p.RequiredDutyDays,
		cfg.CeilingSlack, cfg.NodeBudget, cfg.ExtenderAttempts)
}

// Get looks up a cached solve.
func (c *Cache) Get(ctx context.Context, key string) (*Entry, bool) {
	if !c.IsAvailable() {
		return nil, false
	}

	data, err := c.client.Get(ctx, key).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, false
	}
	if err != nil {
		c.handleError(err, "get")
		return nil, false
	}

	var entry Entry
	if err := json.Unmarshal(data, &entry); err != nil {
		c.logger.Debug().Err(err).Str("key", key).Msg("dropping undecodable cache entry")
		_ = c.client.Del(ctx, key).Err()
		return nil, false
	}
	c.logger.Debug().Str("key", key).Msg("schedule cache hit")
	return &entry, true
}

// Set stores a solve under the configured TTL.
func (c *Cache) Set(ctx context.Context, key string, entry *Entry) error {
	if !c.IsAvailable() {
		return nil
	}
	if entry.CachedAt.IsZero() {
		entry.CachedAt = time.Now().UTC()
	}

	data, err := json.Marshal(entry)
	if err != nil {
		return fmt.Errorf("marshal cache entry: %w", err)
	}
	if err := c.client.Set(ctx, key, data, c.config.TTL).Err(); err != nil {
		c.handleError(err, "set")
		return err
	}
	return nil
}

// FlushAll removes every cached schedule.
func (c *Cache) FlushAll(ctx context.Context) error {
	if !c.IsAvailable() {
		return nil
	}

	// SCAN rather than KEYS so a large keyspace does not block Redis.
	var cursor uint64
	for {
		keys, next, err := c.client.Scan(ctx, cursor, KeyPrefix+"*", 100).Result()
		if err != nil {
			c.handleError(err, "scan")
			return err
		}
		if len(keys) > 0 {
			if err := c.client.Del(ctx, keys...).Err(); err != nil {
				c.handleError(err, "delete_batch")
				return err
			}
		}
		cursor = next
		if cursor == 0 {
			return nil
		}
	}
}
