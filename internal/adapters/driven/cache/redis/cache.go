// Package redis provides a Redis-backed embedding cache.
package redis

import (
	"context"
	"encoding/binary"
	"fmt"
	"math"
	"time"

	"github.com/go-redis/redis/v8"

	"github.com/hanmaru-labs/hanrag/internal/core/domain"
	"github.com/hanmaru-labs/hanrag/internal/core/ports/driven"
)

// Ensure Cache implements the interface.
var _ driven.EmbeddingCache = (*Cache)(nil)

// Default configuration values. Embeddings are deterministic per model,
// so entries stay valid until the model changes; the TTL only bounds
// memory growth.
const (
	DefaultAddr = "localhost:6379"
	DefaultTTL  = 7 * 24 * time.Hour

	connectTimeout = 5 * time.Second
)

// Config holds configuration for the Redis cache.
type Config struct {
	// Addr is the Redis server address (default: localhost:6379).
	Addr string

	// Password is the optional server password.
	Password string

	// DB is the Redis database number.
	DB int

	// TTL is the entry lifetime (default: 7 days).
	TTL time.Duration

	// DialTimeout is the connection timeout (0 = client default).
	DialTimeout time.Duration
}

// Cache stores embedding vectors in Redis as little-endian float32
// bytes.
type Cache struct {
	client *redis.Client
	ttl    time.Duration
}

// NewCache connects to Redis and verifies the connection.
func NewCache(cfg Config) (*Cache, error) {
	if cfg.Addr == "" {
		cfg.Addr = DefaultAddr
	}
	if cfg.TTL == 0 {
		cfg.TTL = DefaultTTL
	}

	client := redis.NewClient(&redis.Options{
		Addr:        cfg.Addr,
		Password:    cfg.Password,
		DB:          cfg.DB,
		DialTimeout: cfg.DialTimeout,
	})

	ctx, cancel := context.WithTimeout(context.Background(), connectTimeout)
	defer cancel()
	if err := client.Ping(ctx).Err(); err != nil {
		client.Close()
		return nil, fmt.Errorf("connect to redis at %s: %w", cfg.Addr, err)
	}

	return &Cache{client: client, ttl: cfg.TTL}, nil
}

// Get returns the cached vector for key, or domain.ErrCacheMiss.
func (c *Cache) Get(ctx context.Context, key string) ([]float32, error) {
	data, err := c.client.Get(ctx, key).Bytes()
	if err == redis.Nil {
		return nil, domain.ErrCacheMiss
	}
	if err != nil {
		return nil, fmt.Errorf("redis get: %w", err)
	}
	return decodeVector(data)
}

// Set stores a vector under key with the configured TTL.
func (c *Cache) Set(ctx context.Context, key string, vector []float32) error {
	if err := c.client.Set(ctx, key, encodeVector(vector), c.ttl).Err(); err != nil {
		return fmt.Errorf("redis set: %w", err)
	}
	return nil
}

// Close releases the client's connection pool.
func (c *Cache) Close() error {
	return c.client.Close()
}

func encodeVector(vector []float32) []byte {
	data := make([]byte, 4*len(vector))
	for i, v := range vector {
		binary.LittleEndian.PutUint32(data[4*i:], math.Float32bits(v))
	}
	return data
}

func decodeVector(data []byte) ([]float32, error) {
	if len(data)%4 != 0 {
		return nil, fmt.Errorf("corrupt cache entry of %d bytes", len(data))
	}
	vector := make([]float32, len(data)/4)
	for i := range vector {
		vector[i] = math.Float32frombits(binary.LittleEndian.Uint32(data[4*i:]))
	}
	return vector, nil
}
