package cache

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/kapu/player-generator-go/internal/domain"
	"github.com/kapu/player-generator-go/pkg/errors"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

// CacheService stores generated profiles in Redis so several server
// instances trained on the same data can share work.
type CacheService struct {
	client *redis.Client
	logger *zap.Logger
	ttl    time.Duration
}

type CacheConfig struct {
	Host     string
	Port     int
	Password string
	DB       int
	TTL      time.Duration
}

func NewCacheService(cfg CacheConfig, logger *zap.Logger) (*CacheService, error) {
	client := redis.NewClient(&redis.Options{
		Addr:         fmt.Sprintf("%s:%d", cfg.Host, cfg.Port),
		Password:     cfg.Password,
		DB:           cfg.DB,
		MaxRetries:   3,
		DialTimeout:  5 * time.Second,
		ReadTimeout:  3 * time.Second,
		WriteTimeout: 3 * time.Second,
		PoolSize:     10,
	})

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := client.Ping(ctx).Err(); err != nil {
		client.Close()
		return nil, errors.NewCacheError("failed to connect to Redis", "ping", "", err)
	}

	logger.Info("Redis connected",
		zap.String("addr", fmt.Sprintf("%s:%d", cfg.Host, cfg.Port)),
		zap.Int("db", cfg.DB),
		zap.Duration("ttl", cfg.TTL),
	)

	return &CacheService{
		client: client,
		logger: logger,
		ttl:    cfg.TTL,
	}, nil
}

// Get decodes key into dest. A missing key reports found=false without error.
func (c *CacheService) Get(ctx context.Context, key string, dest any) (bool, error) {
	value, err := c.client.Get(ctx, key).Bytes()
	if err == redis.Nil {
		return false, nil
	}
	if err != nil {
		c.logger.Error("Cache get failed", zap.String("key", key), zap.Error(err))
		return false, errors.NewCacheError("get failed", "get", key, err)
	}

	if err := json.Unmarshal(value, dest); err != nil {
		c.logger.Error("Cache unmarshal failed", zap.String("key", key), zap.Error(err))
		return false, errors.NewCacheError("unmarshal failed", "get", key, err)
	}
	return true, nil
}

func (c *CacheService) Set(ctx context.Context, key string, value any, ttl time.Duration) error {
	jsonData, err := json.Marshal(value)
	if err != nil {
		return errors.NewCacheError("marshal failed", "set", key, err)
	}

	if err := c.client.Set(ctx, key, jsonData, ttl).Err(); err != nil {
		c.logger.Error("Cache set failed", zap.String("key", key), zap.Error(err))
		return errors.NewCacheError("set failed", "set", key, err)
	}
	return nil
}

func (c *CacheService) GetProfile(ctx context.Context, key string) (*domain.GeneratedProfile, bool) {
	var profile domain.GeneratedProfile
	found, err := c.Get(ctx, key, &profile)
	if err != nil || !found {
		return nil, false
	}
	return &profile, true
}

func (c *CacheService) SetProfile(ctx context.Context, key string, profile *domain.GeneratedProfile) {
	if err := c.Set(ctx, key, profile, c.ttl); err != nil {
		c.logger.Warn("Failed to cache profile", zap.String("key", key), zap.Error(err))
	}
}

// IsConnected pings Redis; used by the health endpoint.
func (c *CacheService) IsConnected(ctx context.Context) bool {
	return c.client.Ping(ctx).Err() == nil
}

func (c *CacheService) Close() error {
	if err := c.client.Close(); err != nil {
		c.logger.Error("Failed to close Redis connection", zap.Error(err))
		return err
	}
	c.logger.Info("Redis disconnected")
	return nil
}
