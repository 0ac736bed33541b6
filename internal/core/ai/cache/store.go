package cache

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"

	"meal-planner/internal/infrastructure/config"
)

// ErrMiss 快取未命中
var ErrMiss = errors.New("cache miss")

// Store 定義 completion 回應快取介面
type Store interface {
	// Get 依 prompt 取得快取回應，未命中回傳 ErrMiss
	Get(ctx context.Context, prompt string) (string, error)
	// Set 儲存 prompt 對應的回應
	Set(ctx context.Context, prompt, value string) error
	// Close 關閉快取資源
	Close() error
}

// NewStore 依設定選擇快取後端：有 redis_addr 用 Redis，否則用程序內快取
// 快取停用時回傳 nil，呼叫端需自行檢查
func NewStore(cfg *config.Config) (Store, error) {
	if !cfg.Cache.Enabled {
		return nil, nil
	}
	if cfg.Cache.RedisAddr != "" {
		return newRedisStore(cfg)
	}
	return newMemoryStore(cfg), nil
}

// hashPrompt 計算 prompt 的 SHA-256 雜湊作為快取鍵
func hashPrompt(prompt string) string {
	hash := sha256.Sum256([]byte(prompt))
	return fmt.Sprintf("completion:%s", hex.EncodeToString(hash[:]))
}
