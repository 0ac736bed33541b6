package handlers

import (
	"net/http"
	"runtime"
	"time"

	"meal-planner/internal/infrastructure/config"

	"github.com/gin-gonic/gin"
)

// HealthResponse 健康檢查響應
type HealthResponse struct {
	Status    string                 `json:"status"`
	Timestamp time.Time              `json:"timestamp"`
	Version   string                 `json:"version"`
	Runtime   map[string]interface{} `json:"runtime"`
}

// HealthHandler 健康檢查處理器
type HealthHandler struct {
	cfg *config.Config
}

// NewHealthHandler 創建健康檢查處理器
func NewHealthHandler(cfg *config.Config) *HealthHandler {
	return &HealthHandler{cfg: cfg}
}

// Check 健康檢查
func (h *HealthHandler) Check(c *gin.Context) {
	var m runtime.MemStats
	runtime.ReadMemStats(&m)

	c.JSON(http.StatusOK, HealthResponse{
		Status:    "ok",
		Timestamp: time.Now(),
		Version:   h.cfg.App.Version,
		Runtime: map[string]interface{}{
			"goroutines": runtime.NumGoroutine(),
			"memory": map[string]interface{}{
				"alloc":  m.Alloc,
				"sys":    m.Sys,
				"num_gc": m.NumGC,
			},
		},
	})
}

// Live 存活檢查
func (h *HealthHandler) Live(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "alive"})
}

// Ready 就緒檢查
func (h *HealthHandler) Ready(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "ready"})
}
