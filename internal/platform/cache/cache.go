// Package cache is a thin namespaced layer over go-redis shared by the entry
// caches and the session store.
package cache

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/redis/go-redis/v9"

	"bloglist/internal/platform/config"
)

// ErrMiss is returned by GetBytes when the key does not exist.
var ErrMiss = errors.New("cache miss")

const defaultScanBatch = 500

// Config holds Redis connection settings.
type Config struct {
	Address      string
	Password     string // #nosec G117
	DB           int
	MaxRetries   int
	DialTimeout  time.Duration
	ReadTimeout  time.Duration
	WriteTimeout time.Duration
	PoolSize     int
	MinIdleConns int
	// KeyPrefix is prepended to every key, e.g. "bloglist:".
	KeyPrefix string
}

// FromSettings maps the environment-level Redis settings onto a Config.
func FromSettings(r config.RedisConfig, keyPrefix string) Config {
	return Config{
		Address:      r.Address(),
		Password:     r.Password,
		DB:           r.DB,
		MaxRetries:   r.MaxRetries,
		DialTimeout:  r.DialTimeout,
		ReadTimeout:  r.ReadTimeout,
		WriteTimeout: r.WriteTimeout,
		PoolSize:     r.PoolSize,
		MinIdleConns: r.MinIdleConns,
		KeyPrefix:    keyPrefix,
	}
}

func (c Config) options() *redis.Options {
	return &redis.Options{
		Addr:         c.Address,
		Password:     c.Password,
		DB:           c.DB,
		MaxRetries:   c.MaxRetries,
		DialTimeout:  c.DialTimeout,
		ReadTimeout:  c.ReadTimeout,
		WriteTimeout: c.WriteTimeout,
		PoolSize:     c.PoolSize,
		MinIdleConns: c.MinIdleConns,
	}
}

// Cache is a connected, prefixed Redis client.
type Cache struct {
	client *redis.Client
	prefix string
	logger *slog.Logger
}

// New connects and pings Redis.
func New(cfg Config, logger *slog.Logger) (*Cache, error) {
	if logger == nil {
		logger = slog.Default()
	}
	client := redis.NewClient(cfg.options())

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := client.Ping(ctx).Err(); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("connect redis %s: %w", cfg.Address, err)
	}

	logger.Info("redis connected", "address", cfg.Address, "db", cfg.DB, "prefix", cfg.KeyPrefix)
	return &Cache{client: client, prefix: cfg.KeyPrefix, logger: logger}, nil
}

func (c *Cache) Close() error {
	if err := c.client.Close(); err != nil {
		return fmt.Errorf("close redis: %w", err)
	}
	return nil
}

// HealthCheck pings Redis with a 3s cap.
func (c *Cache) HealthCheck(ctx context.Context) error {
	ctx, cancel := context.WithTimeout(ctx, 3*time.Second)
	defer cancel()
	return c.client.Ping(ctx).Err()
}

// Key returns the prefixed form of key.
func (c *Cache) Key(key string) string {
	return c.prefix + key
}

func (c *Cache) keys(keys []string) []string {
	full := make([]string, len(keys))
	for i, k := range keys {
		full[i] = c.Key(k)
	}
	return full
}

func (c *Cache) GetBytes(ctx context.Context, key string) ([]byte, error) {
	val, err := c.client.Get(ctx, c.Key(key)).Bytes()
	switch {
	case errors.Is(err, redis.Nil):
		return nil, ErrMiss
	case err != nil:
		return nil, c.fail(ctx, "get "+key, err)
	}
	return val, nil
}

// Set stores value under key. ttl==0 keeps the key until it is deleted.
func (c *Cache) Set(ctx context.Context, key string, value interface{}, ttl time.Duration) error {
	if err := c.client.Set(ctx, c.Key(key), value, ttl).Err(); err != nil {
		return c.fail(ctx, "set "+key, err)
	}
	return nil
}

func (c *Cache) Delete(ctx context.Context, keys ...string) error {
	if len(keys) == 0 {
		return nil
	}
	if err := c.client.Del(ctx, c.keys(keys)...).Err(); err != nil {
		return c.fail(ctx, "delete", err)
	}
	return nil
}

// Incr atomically increments the integer at key, starting from 0, and returns the new value.
func (c *Cache) Incr(ctx context.Context, key string) (int64, error) {
	n, err := c.client.Incr(ctx, c.Key(key)).Result()
	if err != nil {
		return 0, c.fail(ctx, "incr "+key, err)
	}
	return n, nil
}

// Exists returns how many of keys are present.
func (c *Cache) Exists(ctx context.Context, keys ...string) (int64, error) {
	n, err := c.client.Exists(ctx, c.keys(keys)...).Result()
	if err != nil {
		return 0, c.fail(ctx, "exists", err)
	}
	return n, nil
}

// DeleteByPattern walks the keyspace with SCAN and unlinks every prefixed key
// matching pattern. It returns how many keys were removed before any error.
func (c *Cache) DeleteByPattern(ctx context.Context, pattern string, batchSize int64) (int64, error) {
	if batchSize <= 0 {
		batchSize = defaultScanBatch
	}
	var deleted int64
	iter := c.client.Scan(ctx, 0, c.Key(pattern), batchSize).Iterator()
	batch := make([]string, 0, batchSize)
	flush := func() error {
		if len(batch) == 0 {
			return nil
		}
		n, err := c.client.Unlink(ctx, batch...).Result()
		deleted += n
		batch = batch[:0]
		return err
	}
	for iter.Next(ctx) {
		batch = append(batch, iter.Val())
		if int64(len(batch)) >= batchSize {
			if err := flush(); err != nil {
				return deleted, c.fail(ctx, "unlink "+pattern, err)
			}
		}
	}
	if err := iter.Err(); err != nil {
		return deleted, c.fail(ctx, "scan "+pattern, err)
	}
	if err := flush(); err != nil {
		return deleted, c.fail(ctx, "unlink "+pattern, err)
	}
	return deleted, nil
}

// fail logs at error level unless the caller gave up, then wraps err.
func (c *Cache) fail(ctx context.Context, op string, err error) error {
	if isContextDone(err) {
		c.logger.DebugContext(ctx, "redis call abandoned", "op", op, "error", err)
	} else {
		c.logger.ErrorContext(ctx, "redis call failed", "op", op, "error", err)
	}
	return fmt.Errorf("redis %s: %w", op, err)
}

func isContextDone(err error) bool {
	return errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded)
}
