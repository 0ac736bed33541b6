package handlers

import (
	"net/http"

	"meal-planner/internal/core/curation"

	"github.com/gin-gonic/gin"
)

// RecipeHandler 食譜搜尋與對話處理器
type RecipeHandler struct {
	curation *curation.Service
}

// NewRecipeHandler 創建食譜處理器
func NewRecipeHandler(svc *curation.Service) *RecipeHandler {
	return &RecipeHandler{curation: svc}
}

// SearchRequest 發起搜尋的請求
type SearchRequest struct {
	UserIDs []int  `json:"user_ids" binding:"required,min=1"` // 參與這一餐的用戶
	Message string `json:"message,omitempty"`                 // 可選的自由文字要求
}

// Search 依合併偏好搜尋食譜並建立會話
// POST /api/recipes/search
func (h *RecipeHandler) Search(c *gin.Context) {
	var req SearchRequest
	if !bindJSON(c, &req) {
		return
	}

	result, err := h.curation.StartSearch(c.Request.Context(), req.UserIDs, req.Message)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, result)
}

// AllRecipes 取得會話的全部候選食譜
// GET /api/recipes/all/:session_id
func (h *RecipeHandler) AllRecipes(c *gin.Context) {
	recipes, err := h.curation.GetAllRecipes(c.Param("session_id"))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"session_id":  c.Param("session_id"),
		"all_recipes": recipes,
		"total":       len(recipes),
	})
}

// ChatRequest 會話中的一則用戶訊息
type ChatRequest struct {
	SessionID string `json:"session_id" binding:"required"`
	Message   string `json:"message" binding:"required"`
}

// Chat 處理會話訊息：問答、過濾或換一批
// POST /api/agent/chat
func (h *RecipeHandler) Chat(c *gin.Context) {
	var req ChatRequest
	if !bindJSON(c, &req) {
		return
	}

	result, err := h.curation.Chat(c.Request.Context(), req.SessionID, req.Message)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, result)
}
