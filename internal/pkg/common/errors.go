package common

import (
	"net/http"
)

// ErrorResponse 定義 API 錯誤響應結構
type ErrorResponse struct {
	Code    string `json:"code"`              // 錯誤代碼
	Message string `json:"message"`           // 錯誤信息
	Details string `json:"details,omitempty"` // 詳細信息（僅在開發模式顯示）
}

// CustomError 定義自定義錯誤類型
type CustomError struct {
	Code    string // 錯誤代碼
	Message string // 錯誤信息
	Err     error  // 原始錯誤
	Status  int    // HTTP 狀態碼
}

func (e *CustomError) Error() string {
	if e.Err != nil {
		return e.Err.Error()
	}
	return e.Message
}

// Unwrap 回傳原始錯誤，支援 errors.Is / errors.As
func (e *CustomError) Unwrap() error {
	return e.Err
}

// NewError 創建新的自定義錯誤
func NewError(code string, message string, status int, err error) *CustomError {
	return &CustomError{
		Code:    code,
		Message: message,
		Status:  status,
		Err:     err,
	}
}

// WrapError 以既有錯誤代碼包裝原始錯誤
func WrapError(base *CustomError, err error) *CustomError {
	return &CustomError{
		Code:    base.Code,
		Message: base.Message,
		Status:  base.Status,
		Err:     err,
	}
}

// 預定義錯誤代碼
const (
	// 客戶端錯誤 (4xx)
	ErrCodeInvalidRequest  = "INVALID_REQUEST"   // 400
	ErrCodeNotFound        = "NOT_FOUND"         // 404
	ErrCodeConflict        = "CONFLICT"          // 409
	ErrCodeTooManyRequests = "TOO_MANY_REQUESTS" // 429

	// 服務器錯誤 (5xx)
	ErrCodeInternalError = "INTERNAL_ERROR" // 500
	ErrCodeUpstream      = "UPSTREAM_FAILURE"

	// 業務錯誤
	ErrCodeSessionNotFound   = "SESSION_NOT_FOUND"
	ErrCodeUserNotFound      = "USER_NOT_FOUND"
	ErrCodeRecipeNotFound    = "RECIPE_NOT_FOUND"
	ErrCodeNoMatchingRecipes = "NO_MATCHING_RECIPES"
)

// 預定義錯誤
var (
	// 客戶端錯誤
	ErrInvalidRequest  = NewError(ErrCodeInvalidRequest, "無效的請求", http.StatusBadRequest, nil)
	ErrNotFound        = NewError(ErrCodeNotFound, "資源不存在", http.StatusNotFound, nil)
	ErrConflict        = NewError(ErrCodeConflict, "資源衝突", http.StatusConflict, nil)
	ErrTooManyRequests = NewError(ErrCodeTooManyRequests, "請求過於頻繁", http.StatusTooManyRequests, nil)

	// 服務器錯誤
	ErrInternalError = NewError(ErrCodeInternalError, "服務器內部錯誤", http.StatusInternalServerError, nil)

	// 上游服務錯誤：食譜目錄或 completion 服務不可用，一律直接回報，不在引擎內重試
	ErrUpstreamFailure = NewError(ErrCodeUpstream, "上游服務呼叫失敗", http.StatusBadGateway, nil)

	// 業務錯誤
	ErrSessionNotFound = NewError(ErrCodeSessionNotFound, "會話不存在", http.StatusNotFound, nil)
	ErrUserNotFound    = NewError(ErrCodeUserNotFound, "用戶不存在", http.StatusNotFound, nil)
	ErrRecipeNotFound  = NewError(ErrCodeRecipeNotFound, "食譜不存在", http.StatusNotFound, nil)

	// 搜尋成功但沒有任何符合的食譜；與上游失敗是不同的錯誤種類
	ErrNoMatchingRecipes = NewError(ErrCodeNoMatchingRecipes, "找不到符合飲食條件的食譜", http.StatusNotFound, nil)
)
