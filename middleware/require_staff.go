package middleware

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

// RequireStaff chặn những tài khoản không có quyền quản trị nội dung.
func RequireStaff() gin.HandlerFunc {
	return func(c *gin.Context) {
		isStaff, exists := c.Get("is_staff")
		if !exists {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "Không xác định được vai trò người dùng"})
			c.Abort()
			return
		}
		if staff, ok := isStaff.(bool); !ok || !staff {
			c.JSON(http.StatusForbidden, gin.H{"error": "Bạn không có quyền truy cập tài nguyên này"})
			c.Abort()
			return
		}
		c.Next()
	}
}
