package marketdata

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	goredis "github.com/go-redis/redis/v8"
	"github.com/rxtech-lab/argo-analysis/internal/logger"
	"github.com/rxtech-lab/argo-analysis/internal/types"
	"go.uber.org/zap"
	"golang.org/x/sync/singleflight"
)

const redisKeyPrefix = "analyzer:bars"

// RedisConfig configures the Redis connection of a RedisCachedSource.
type RedisConfig struct {
	Addr     string
	Password string
	DB       int
}

// NewRedisClient connects to Redis and pings the server.
func NewRedisClient(ctx context.Context, cfg RedisConfig) (*goredis.Client, error) {
	client := goredis.NewClient(&goredis.Options{
		Addr:     cfg.Addr,
		Password: cfg.Password,
		DB:       cfg.DB,
	})

	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	if err := client.Ping(ctx).Err(); err != nil {
		client.Close()

		return nil, fmt.Errorf("redis ping: %w", err)
	}

	return client, nil
}

// RedisCachedSource wraps a Source and keeps fetched bars in Redis so the
// cache survives restarts and is shared between processes. Redis failures
// degrade to a direct fetch. Empty series and errors are not cached.
type RedisCachedSource struct {
	underlying Source
	client     *goredis.Client
	ttl        time.Duration
	group      singleflight.Group
	logger     *logger.Logger
}

// NewRedisCachedSource creates a RedisCachedSource. log may be nil.
func NewRedisCachedSource(underlying Source, client *goredis.Client, ttl time.Duration, log *logger.Logger) *RedisCachedSource {
	if log == nil {
		log = logger.NewNopLogger()
	}

	return &RedisCachedSource{
		underlying: underlying,
		client:     client,
		ttl:        ttl,
		logger:     log,
	}
}

// Name implements Source.
func (c *RedisCachedSource) Name() string {
	return c.underlying.Name()
}

// Fetch implements Source with caching.
func (c *RedisCachedSource) Fetch(ctx context.Context, symbol string, period Period) (types.PriceSeries, error) {
	key := c.Key(symbol, period)

	if series, ok := c.lookup(ctx, key, symbol); ok {
		return series, nil
	}

	result, err, _ := c.group.Do(key, func() (any, error) {
		series, err := c.underlying.Fetch(ctx, symbol, period)
		if err != nil {
			return types.PriceSeries{}, err
		}

		if !series.IsEmpty() {
			c.store(ctx, key, series)
		}

		return series, nil
	})
	if err != nil {
		return types.PriceSeries{}, err
	}

	series, _ := result.(types.PriceSeries)

	return series, nil
}

// Key returns the Redis key of symbol over period.
func (c *RedisCachedSource) Key(symbol string, period Period) string {
	return fmt.Sprintf("%s:%s:%s:%s", redisKeyPrefix, c.underlying.Name(), symbol, period)
}

func (c *RedisCachedSource) lookup(ctx context.Context, key, symbol string) (types.PriceSeries, bool) {
	data, err := c.client.Get(ctx, key).Bytes()
	if err != nil {
		if err != goredis.Nil {
			c.logger.Warn("Redis cache read failed", zap.String("key", key), zap.Error(err))
		}

		return types.PriceSeries{}, false
	}

	var bars []types.Bar
	if err := json.Unmarshal(data, &bars); err != nil {
		c.logger.Warn("Discarding undecodable cache entry", zap.String("key", key), zap.Error(err))

		return types.PriceSeries{}, false
	}

	series, err := BuildSeries(symbol, bars)
	if err != nil {
		c.logger.Warn("Discarding invalid cache entry", zap.String("key", key), zap.Error(err))

		return types.PriceSeries{}, false
	}

	return series, true
}

func (c *RedisCachedSource) store(ctx context.Context, key string, series types.PriceSeries) {
	data, err := json.Marshal(series.Bars())
	if err != nil {
		c.logger.Warn("Failed to encode cache entry", zap.String("key", key), zap.Error(err))

		return
	}

	if err := c.client.Set(ctx, key, data, c.ttl).Err(); err != nil {
		c.logger.Warn("Redis cache write failed", zap.String("key", key), zap.Error(err))
	}
}
