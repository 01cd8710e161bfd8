package service

import (
	"context"
	"encoding/json"
	"errors"
	"strings"
	"time"

	"github.com/go-redis/redis/v8"
	log "github.com/sirupsen/logrus"

	"github.com/c9s/ohlcv/pkg/types"
)

var ErrCacheMiss = errors.New("candles are not cached")

var redisLogger = log.WithFields(log.Fields{
	"cache": "redis",
})

type RedisCacheConfig struct {
	Addr      string        `json:"addr" yaml:"addr"`
	Password  string        `json:"password,omitempty" yaml:"password,omitempty"`
	DB        int           `json:"db" yaml:"db"`
	Namespace string        `json:"namespace" yaml:"namespace"`
	TTL       time.Duration `json:"ttl" yaml:"ttl"`
}

// RedisCandleCache keeps the latest built candle series of a symbol and timeframe as JSON.
type RedisCandleCache struct {
	redis  *redis.Client
	config RedisCacheConfig
}

func NewRedisCandleCache(config RedisCacheConfig) *RedisCandleCache {
	client := redis.NewClient(&redis.Options{
		Addr: config.Addr,
		// pragma: allowlist nextline secret
		Password: config.Password,
		DB:       config.DB,
	})

	return &RedisCandleCache{
		redis:  client,
		config: config,
	}
}

func (c *RedisCandleCache) Key(symbol string, timeframe types.Timeframe) string {
	parts := []string{"candles", symbol, timeframe.String()}
	if c.config.Namespace != "" {
		parts = append([]string{c.config.Namespace}, parts...)
	}
	return strings.Join(parts, ":")
}

func (c *RedisCandleCache) Ping(ctx context.Context) error {
	return c.redis.Ping(ctx).Err()
}

func (c *RedisCandleCache) Save(ctx context.Context, symbol string, timeframe types.Timeframe, candles []types.Candle) error {
	data, err := json.Marshal(candles)
	if err != nil {
		return err
	}

	key := c.Key(symbol, timeframe)
	redisLogger.Debugf("[redis] set key %q, %d candles", key, len(candles))
	return c.redis.Set(ctx, key, data, c.config.TTL).Err()
}

func (c *RedisCandleCache) Load(ctx context.Context, symbol string, timeframe types.Timeframe) ([]types.Candle, error) {
	key := c.Key(symbol, timeframe)
	data, err := c.redis.Get(ctx, key).Bytes()
	if err != nil {
		if err == redis.Nil {
			return nil, ErrCacheMiss
		}
		return nil, err
	}

	var candles []types.Candle
	if err := json.Unmarshal(data, &candles); err != nil {
		return nil, err
	}

	return candles, nil
}

func (c *RedisCandleCache) Delete(ctx context.Context, symbol string, timeframe types.Timeframe) error {
	return c.redis.Del(ctx, c.Key(symbol, timeframe)).Err()
}

func (c *RedisCandleCache) Close() error {
	return c.redis.Close()
}
