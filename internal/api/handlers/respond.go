package handlers

import (
	"errors"
	"net/http"

	"meal-planner/internal/pkg/common"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// respondError 統一的錯誤回應
// 自定義錯誤帶自己的狀態碼與代碼，其餘一律 500
func respondError(c *gin.Context, err error) {
	var customErr *common.CustomError
	if errors.As(err, &customErr) {
		c.JSON(customErr.Status, common.ErrorResponse{
			Code:    customErr.Code,
			Message: customErr.Message,
		})
		return
	}

	common.LogError("未分類的處理錯誤",
		zap.Error(err),
		zap.String("path", c.Request.URL.Path),
	)
	c.JSON(http.StatusInternalServerError, common.ErrorResponse{
		Code:    common.ErrCodeInternalError,
		Message: "服務器內部錯誤",
	})
}

// bindJSON 解析請求體，失敗時回 400
func bindJSON(c *gin.Context, target interface{}) bool {
	if err := c.ShouldBindJSON(target); err != nil {
		c.JSON(http.StatusBadRequest, common.ErrorResponse{
			Code:    common.ErrCodeInvalidRequest,
			Message: "無效的請求",
			Details: err.Error(),
		})
		return false
	}
	return true
}
