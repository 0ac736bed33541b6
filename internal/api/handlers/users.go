package handlers

import (
	"net/http"
	"strconv"

	"meal-planner/internal/core/user"
	"meal-planner/internal/pkg/common"

	"github.com/gin-gonic/gin"
)

// UserHandler 用戶資料處理器
type UserHandler struct {
	users *user.Store
}

// NewUserHandler 創建用戶處理器
func NewUserHandler(store *user.Store) *UserHandler {
	return &UserHandler{users: store}
}

func (h *UserHandler) pathID(c *gin.Context) (int, bool) {
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

// RegisterRequest 註冊新用戶的請求
type RegisterRequest struct {
	Name              string   `json:"name" binding:"required"`
	Email             string   `json:"email" binding:"required,email"`
	DietLabels        []string `json:"dietLabels"`
	CustomPreferences []string `json:"customPreferences"`
}

// Register 註冊新用戶
// POST /api/users/register
func (h *UserHandler) Register(c *gin.Context) {
	var req RegisterRequest
	if !bindJSON(c, &req) {
		return
	}

	u, err := h.users.CreateUser(req.Name, req.Email, req.DietLabels, req.CustomPreferences)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, u)
}

// LoginRequest 以 email 登入的請求
type LoginRequest struct {
	Email string `json:"email" binding:"required,email"`
}

// Login 以 email 查找用戶
// POST /api/users/login
func (h *UserHandler) Login(c *gin.Context) {
	var req LoginRequest
	if !bindJSON(c, &req) {
		return
	}

	u, err := h.users.GetUserByEmail(req.Email)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, u)
}

// Get 取得用戶資料
// GET /api/users/:user_id
func (h *UserHandler) Get(c *gin.Context) {
	id, ok := h.pathID(c)
	if !ok {
		return
	}

	u, err := h.users.GetUser(id)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, u)
}

// UpdateRequest 更新用戶資料的請求，缺省欄位保持不變
type UpdateRequest struct {
	Name              *string  `json:"name"`
	DietLabels        []string `json:"dietLabels"`
	Excluded          []string `json:"excludedIngredients"`
	CustomPreferences []string `json:"customPreferences"`
}

// Update 更新用戶資料
// PUT /api/users/:user_id
func (h *UserHandler) Update(c *gin.Context) {
	id, ok := h.pathID(c)
	if !ok {
		return
	}
	var req UpdateRequest
	if !bindJSON(c, &req) {
		return
	}

	u, err := h.users.UpdateUser(id, user.UserPatch{
		Name:              req.Name,
		DietLabels:        req.DietLabels,
		Excluded:          req.Excluded,
		CustomPreferences: req.CustomPreferences,
	})
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, u)
}

// GetFamily 取得家庭成員
// GET /api/users/:user_id/family
func (h *UserHandler) GetFamily(c *gin.Context) {
	id, ok := h.pathID(c)
	if !ok {
		return
	}

	members, err := h.users.GetFamilyMembers(id)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"family": members})
}

// AddFamilyRequest 加入家庭成員的請求
type AddFamilyRequest struct {
	Email string `json:"email" binding:"required,email"`
}

// AddFamily 以 email 加入家庭成員
// POST /api/users/:user_id/family
func (h *UserHandler) AddFamily(c *gin.Context) {
	id, ok := h.pathID(c)
	if !ok {
		return
	}
	var req AddFamilyRequest
	if !bindJSON(c, &req) {
		return
	}

	members, err := h.users.AddFamilyMember(id, req.Email)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"family": members})
}

// RemoveFamily 移除家庭成員
// DELETE /api/users/:user_id/family/:member_id
func (h *UserHandler) RemoveFamily(c *gin.Context) {
	id, ok := h.pathID(c)
	if !ok {
		return
	}
	memberID, err := strconv.Atoi(c.Param("member_id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, common.ErrorResponse{
			Code:    common.ErrCodeInvalidRequest,
			Message: "member_id 必須是整數",
		})
		return
	}

	members, err := h.users.RemoveFamilyMember(id, memberID)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"family": members})
}

// GetFridge 取得冰箱內容
// GET /api/users/:user_id/fridge
func (h *UserHandler) GetFridge(c *gin.Context) {
	id, ok := h.pathID(c)
	if !ok {
		return
	}

	items, err := h.users.GetFridge(id)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"fridge": items})
}

// UpdateFridgeRequest 覆寫冰箱內容的請求
type UpdateFridgeRequest struct {
	Items []string `json:"items" binding:"required"`
}

// UpdateFridge 覆寫冰箱內容
// PUT /api/users/:user_id/fridge
func (h *UserHandler) UpdateFridge(c *gin.Context) {
	id, ok := h.pathID(c)
	if !ok {
		return
	}
	var req UpdateFridgeRequest
	if !bindJSON(c, &req) {
		return
	}

	items, err := h.users.UpdateFridge(id, req.Items)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"fridge": items})
}
