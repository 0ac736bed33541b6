package cache

import (
	"context"
	"fmt"

	"meal-planner/internal/infrastructure/config"
	"meal-planner/internal/pkg/common"

	"github.com/go-redis/redis/v8"
	"go.uber.org/zap"
)

// redisStore Redis 快取後端
type redisStore struct {
	client *redis.Client
	config *config.Config
}

// newRedisStore 創建 Redis 快取
func newRedisStore(cfg *config.Config) (*redisStore, error) {
	client := redis.NewClient(&redis.Options{
		Addr: cfg.Cache.RedisAddr,
	})

	// 測試連接
	if err := client.Ping(context.Background()).Err(); err != nil {
		return nil, fmt.Errorf("failed to connect to Redis: %w", err)
	}

	common.LogInfo("快取已初始化（Redis）",
		zap.String("addr", cfg.Cache.RedisAddr),
		zap.Duration("存活時間", cfg.Cache.TTL),
	)

	return &redisStore{
		client: client,
		config: cfg,
	}, nil
}

// Get 依 prompt 取得快取回應
func (s *redisStore) Get(ctx context.Context, prompt string) (string, error) {
	val, err := s.client.Get(ctx, hashPrompt(prompt)).Result()
	if err != nil {
		if err == redis.Nil {
			return "", ErrMiss
		}
		return "", fmt.Errorf("failed to get cache: %w", err)
	}
	return val, nil
}

// Set 儲存 prompt 對應的回應
func (s *redisStore) Set(ctx context.Context, prompt, value string) error {
	if err := s.client.Set(ctx, hashPrompt(prompt), value, s.config.Cache.TTL).Err(); err != nil {
		return fmt.Errorf("failed to set cache: %w", err)
	}
	return nil
}

// Close 關閉 Redis 連接
func (s *redisStore) Close() error {
	return s.client.Close()
}
