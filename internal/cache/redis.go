// Package cache provides a tiny Redis client wrapper for certification results
package cache

import (
	"context"
	"crypto/sha256"
	"encoding/binary"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

// Cache wraps a Redis client for certification-result storage
type Cache struct {
	client *redis.Client
}

// Result is the cached outcome of certifying one input.
type Result struct {
	Class  int     `json:"class"`
	Radius float64 `json:"radius"`
}

// New creates a new Cache instance connected to the specified Redis address
// If addr is empty, defaults to localhost:6379
func New(addr string) (*Cache, error) {
	if addr == "" {
		addr = "localhost:6379"
	}

	client := redis.NewClient(&redis.Options{
		Addr:     addr,
		Password: "", // No password by default
		DB:       0,  // Default DB
	})

	// Test connection
	ctx := context.Background()
	_, err := client.Ping(ctx).Result()
	if err != nil {
		return nil, fmt.Errorf("failed to connect to Redis at %s: %w", addr, err)
	}

	return &Cache{client: client}, nil
}

// Key derives the cache key for one input under the given certification
// parameters. The same input certified with different n, sample size, scale
// or alpha must not share an entry.
func Key(input []float32, n, sampleSize int, scale, alpha float64) string {
	h := sha256.New()
	binary.Write(h, binary.LittleEndian, input)
	fmt.Fprintf(h, "|%d|%d|%g|%g", n, sampleSize, scale, alpha)
	return "certify:" + hex.EncodeToString(h.Sum(nil))
}

// SetCertification stores a certification result with the specified TTL
func (c *Cache) SetCertification(key string, res Result, ttl time.Duration) error {
	if c.client == nil {
		return fmt.Errorf("cache client is nil")
	}

	data, err := json.Marshal(res)
	if err != nil {
		return fmt.Errorf("failed to encode certification result: %w", err)
	}

	ctx := context.Background()
	if err := c.client.Set(ctx, key, data, ttl).Err(); err != nil {
		return fmt.Errorf("failed to set certification %s: %w", key, err)
	}

	return nil
}

// GetCertification retrieves a certification result. The second return
// value reports whether the key was present.
func (c *Cache) GetCertification(key string) (Result, bool, error) {
	if c.client == nil {
		return Result{}, false, fmt.Errorf("cache client is nil")
	}

	ctx := context.Background()
	data, err := c.client.Get(ctx, key).Bytes()
	if err == redis.Nil {
		return Result{}, false, nil // Key does not exist
	}
	if err != nil {
		return Result{}, false, fmt.Errorf("failed to get certification %s: %w", key, err)
	}

	var res Result
	if err := json.Unmarshal(data, &res); err != nil {
		return Result{}, false, fmt.Errorf("failed to decode certification %s: %w", key, err)
	}

	return res, true, nil
}

// Close closes the Redis connection
func (c *Cache) Close() error {
	if c.client != nil {
		return c.client.Close()
	}
	return nil
}
