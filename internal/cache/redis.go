package cache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"github.com/jengzang/resourcemap-backend-go/internal/models"
)

const keyPrefix = "resourcemap:raster:"

// RedisOptions configures the redis raster cache
type RedisOptions struct {
	Addr     string
	Password string
	DB       int
	TTL      time.Duration
}

// RedisCache stores rasters as JSON in redis
type RedisCache struct {
	client *redis.Client
	ttl    time.Duration
	logger *zap.Logger
}

// NewRedis connects to redis and verifies the connection
func NewRedis(ctx context.Context, opts RedisOptions, logger *zap.Logger) (*RedisCache, error) {
	if logger == nil {
		logger = zap.NewNop()
	}

	client := redis.NewClient(&redis.Options{
		Addr:         opts.Addr,
		Password:     opts.Password,
		DB:           opts.DB,
		DialTimeout:  2 * time.Second,
		ReadTimeout:  time.Second,
		WriteTimeout: time.Second,
	})

	if err := client.Ping(ctx).Err(); err != nil {
		client.Close()
		return nil, fmt.Errorf("failed to connect to redis at %s: %w", opts.Addr, err)
	}

	logger.Info("raster cache connected", zap.String("addr", opts.Addr), zap.Duration("ttl", opts.TTL))
	return &RedisCache{client: client, ttl: opts.TTL, logger: logger.Named("cache")}, nil
}

// Get loads a raster
func (c *RedisCache) Get(ctx context.Context, key string) (*models.Raster, error) {
	data, err := c.client.Get(ctx, keyPrefix+key).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, ErrCacheMiss
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get raster from cache: %w", err)
	}

	var raster models.Raster
	if err := json.Unmarshal(data, &raster); err != nil {
		// corrupt entry, treat as miss
		c.logger.Warn("dropping undecodable cache entry", zap.String("key", key), zap.Error(err))
		c.client.Del(ctx, keyPrefix+key)
		return nil, ErrCacheMiss
	}
	return &raster, nil
}

// Set stores a raster with the configured TTL
func (c *RedisCache) Set(ctx context.Context, key string, raster *models.Raster) error {
	data, err := json.Marshal(raster)
	if err != nil {
		return fmt.Errorf("failed to encode raster: %w", err)
	}
	if err := c.client.Set(ctx, keyPrefix+key, data, c.ttl).Err(); err != nil {
		return fmt.Errorf("failed to store raster in cache: %w", err)
	}
	return nil
}

// Enabled reports true
func (c *RedisCache) Enabled() bool { return true }

// Close closes the redis client
func (c *RedisCache) Close() error {
	return c.client.Close()
}
