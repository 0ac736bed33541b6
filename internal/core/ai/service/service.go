package service

import (
	"context"
	"strings"
	"time"

	"meal-planner/internal/core/ai/cache"
	"meal-planner/internal/core/ai/openrouter"
	"meal-planner/internal/infrastructure/config"
	"meal-planner/internal/pkg/common"

	"go.uber.org/zap"
)

// Service completion 服務：封裝 OpenRouter 客戶端與回應快取
type Service struct {
	config *config.Config
	client *openrouter.Client
	store  cache.Store
}

// NewService 創建 completion 服務
func NewService(cfg *config.Config, store cache.Store) *Service {
	return &Service{
		config: cfg,
		client: openrouter.NewClient(cfg),
		store:  store,
	}
}

// Complete 送出 prompt，回傳模型輸出的原始文字
// 相同 prompt 在 TTL 內命中快取，確保聚合等讀取端重算結果一致
func (s *Service) Complete(ctx context.Context, prompt string) (string, error) {
	// 統一 prompt 空白，確保快取鍵一致
	prompt = strings.TrimSpace(prompt)
	prompt = strings.Join(strings.Fields(prompt), " ")

	if s.store != nil {
		if val, err := s.store.Get(ctx, prompt); err == nil && val != "" {
			common.LogDebug("Completion 快取命中")
			return val, nil
		}
	}

	start := time.Now()
	content, err := s.client.Complete(ctx, prompt)
	common.LogCompletionCall(time.Since(start), err, "")
	if err != nil {
		return "", err
	}

	if s.store != nil {
		if err := s.store.Set(ctx, prompt, content); err != nil {
			common.LogWarn("Completion 快取寫入失敗", zap.Error(err))
		}
	}

	return content, nil
}
