package cache

import (
	"context"
	"sync"
	"time"

	"meal-planner/internal/infrastructure/config"
	"meal-planner/internal/pkg/common"

	"go.uber.org/zap"
)

// memoryStore 程序內快取
type memoryStore struct {
	config *config.Config
	mu     sync.RWMutex
	store  map[string]cacheEntry
	done   chan struct{}
	stats  cacheStats
}

// cacheEntry 快取條目
type cacheEntry struct {
	value       string
	expiresAt   time.Time
	lastAccess  time.Time
	accessCount int
}

// cacheStats 快取統計
type cacheStats struct {
	hits      int64
	misses    int64
	evictions int64
}

// newMemoryStore 創建程序內快取
func newMemoryStore(cfg *config.Config) *memoryStore {
	m := &memoryStore{
		config: cfg,
		store:  make(map[string]cacheEntry),
		done:   make(chan struct{}),
	}

	// 啟動清理過期快取的協程
	go m.startCleanup()

	common.LogInfo("快取已初始化（程序內）",
		zap.Int("最大容量", cfg.Cache.MaxSize),
		zap.Duration("存活時間", cfg.Cache.TTL),
		zap.Duration("清理間隔", cfg.Cache.CleanupInterval),
	)

	return m
}

// Get 依 prompt 取得快取回應
func (m *memoryStore) Get(ctx context.Context, prompt string) (string, error) {
	key := hashPrompt(prompt)

	m.mu.Lock()
	defer m.mu.Unlock()

	entry, exists := m.store[key]
	if !exists {
		m.stats.misses++
		return "", ErrMiss
	}

	if time.Now().After(entry.expiresAt) {
		delete(m.store, key)
		m.stats.evictions++
		m.stats.misses++
		return "", ErrMiss
	}

	entry.lastAccess = time.Now()
	entry.accessCount++
	m.store[key] = entry
	m.stats.hits++

	return entry.value, nil
}

// Set 儲存 prompt 對應的回應
func (m *memoryStore) Set(ctx context.Context, prompt, value string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if len(m.store) >= m.config.Cache.MaxSize {
		m.cleanupLocked()
		if len(m.store) >= m.config.Cache.MaxSize {
			m.evictLRULocked()
		}
	}

	now := time.Now()
	m.store[hashPrompt(prompt)] = cacheEntry{
		value:      value,
		expiresAt:  now.Add(m.config.Cache.TTL),
		lastAccess: now,
	}

	return nil
}

// Close 停止清理協程
func (m *memoryStore) Close() error {
	close(m.done)
	return nil
}

// startCleanup 啟動清理過期快取的協程
func (m *memoryStore) startCleanup() {
	ticker := time.NewTicker(m.config.Cache.CleanupInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			m.mu.Lock()
			m.cleanupLocked()
			m.mu.Unlock()
		case <-m.done:
			return
		}
	}
}

// cleanupLocked 清理過期的快取，呼叫前需持有鎖
func (m *memoryStore) cleanupLocked() {
	now := time.Now()
	count := 0

	for key, entry := range m.store {
		if now.After(entry.expiresAt) {
			delete(m.store, key)
			count++
			m.stats.evictions++
		}
	}

	if count > 0 {
		common.LogDebug("清理過期快取",
			zap.Int("清理數量", count),
			zap.Int("剩餘容量", len(m.store)),
		)
	}
}

// evictLRULocked 淘汰最少使用的條目，呼叫前需持有鎖
func (m *memoryStore) evictLRULocked() {
	var oldestKey string
	var oldestAccess time.Time
	var lowestAccessCount int

	for key, entry := range m.store {
		if oldestKey == "" ||
			entry.accessCount < lowestAccessCount ||
			(entry.accessCount == lowestAccessCount && entry.lastAccess.Before(oldestAccess)) {
			oldestKey = key
			oldestAccess = entry.lastAccess
			lowestAccessCount = entry.accessCount
		}
	}

	if oldestKey != "" {
		delete(m.store, oldestKey)
		m.stats.evictions++
	}
}
