package controllers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

// operatorUUID lấy id người thao tác từ context (do AuthMiddleware set).
// Trả về false nếu đã ghi response lỗi.
func operatorUUID(c *gin.Context) (uuid.UUID, bool) {
	parsed, err := uuid.Parse(c.GetString("user_id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "user_id không hợp lệ"})
		return uuid.Nil, false
	}
	return parsed, true
}

// isAjaxRequest: client muốn nhận JSON thay vì trang render đầy đủ
// thì gửi header X-Requested-With: XMLHttpRequest.
func isAjaxRequest(c *gin.Context) bool {
	return c.GetHeader("X-Requested-With") == "XMLHttpRequest"
}
