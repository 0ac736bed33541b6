package handlers

import (
	"net/http"
	"strconv"

	"meal-planner/internal/core/shopping"
	"meal-planner/internal/pkg/common"

	"github.com/gin-gonic/gin"
)

// ShoppingHandler 購物清單處理器
type ShoppingHandler struct {
	shopping *shopping.Service
}

// NewShoppingHandler 創建購物清單處理器
func NewShoppingHandler(svc *shopping.Service) *ShoppingHandler {
	return &ShoppingHandler{shopping: svc}
}

// userID 解析路徑中的 user_id
func (h *ShoppingHandler) userID(c *gin.Context) (int, bool) {
	id, err := strconv.Atoi(c.Param("user_id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, common.ErrorResponse{
			Code:    common.ErrCodeInvalidRequest,
			Message: "user_id 必須是整數",
		})
		return 0, false
	}
	return id, true
}

// Get 取得彙總後的購物清單
// GET /api/shopping/:user_id
func (h *ShoppingHandler) Get(c *gin.Context) {
	id, ok := h.userID(c)
	if !ok {
		return
	}

	list, err := h.shopping.Aggregate(c.Request.Context(), id)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, list)
}

// AddRecipeRequest 掛載食譜的請求
type AddRecipeRequest struct {
	SessionID string `json:"session_id" binding:"required"`
	RecipeURI string `json:"recipe_uri" binding:"required"`
}

// AddRecipe 把會話中的食譜掛到購物清單
// POST /api/shopping/:user_id/recipes
func (h *ShoppingHandler) AddRecipe(c *gin.Context) {
	id, ok := h.userID(c)
	if !ok {
		return
	}
	var req AddRecipeRequest
	if !bindJSON(c, &req) {
		return
	}

	if err := h.shopping.AddRecipe(id, req.SessionID, req.RecipeURI); err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"status": "added"})
}

// RemoveRecipeRequest 移除食譜的請求
// 食譜識別碼是 URI，不適合放在路徑，改放請求體
type RemoveRecipeRequest struct {
	RecipeURI string `json:"recipe_uri" binding:"required"`
}

// RemoveRecipe 從購物清單移除食譜
// DELETE /api/shopping/:user_id/recipes
func (h *ShoppingHandler) RemoveRecipe(c *gin.Context) {
	id, ok := h.userID(c)
	if !ok {
		return
	}
	var req RemoveRecipeRequest
	if !bindJSON(c, &req) {
		return
	}

	if err := h.shopping.RemoveRecipe(id, req.RecipeURI); err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"status": "removed"})
}

// AddItemRequest 手動加入項目的請求
type AddItemRequest struct {
	Name     string  `json:"name" binding:"required"`
	Quantity float64 `json:"quantity"`
	Unit     string  `json:"unit"`
}

// AddItem 手動加入購物項目
// POST /api/shopping/:user_id/items
func (h *ShoppingHandler) AddItem(c *gin.Context) {
	id, ok := h.userID(c)
	if !ok {
		return
	}
	var req AddItemRequest
	if !bindJSON(c, &req) {
		return
	}

	if err := h.shopping.AddManualItem(id, req.Name, req.Quantity, req.Unit); err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"status": "added"})
}

// DeleteItem 依名稱刪除彙總項目
// DELETE /api/shopping/:user_id/items/:name
func (h *ShoppingHandler) DeleteItem(c *gin.Context) {
	id, ok := h.userID(c)
	if !ok {
		return
	}

	if err := h.shopping.DeleteItem(id, c.Param("name")); err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"status": "deleted"})
}

// ToggleItem 切換項目勾選狀態
// POST /api/shopping/:user_id/items/:name/toggle
func (h *ShoppingHandler) ToggleItem(c *gin.Context) {
	id, ok := h.userID(c)
	if !ok {
		return
	}

	checked, err := h.shopping.ToggleChecked(id, c.Param("name"))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"checked": checked})
}

// Clear 清空購物清單
// POST /api/shopping/:user_id/clear
func (h *ShoppingHandler) Clear(c *gin.Context) {
	id, ok := h.userID(c)
	if !ok {
		return
	}

	if err := h.shopping.Clear(id); err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"status": "cleared"})
}

// MoveToPantry 把已勾選項目移入冰箱
// POST /api/shopping/:user_id/move-to-pantry
func (h *ShoppingHandler) MoveToPantry(c *gin.Context) {
	id, ok := h.userID(c)
	if !ok {
		return
	}

	moved, err := h.shopping.MoveCheckedToPantry(id)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"moved": moved})
}
