package middleware

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/noticedesk/noticedesk-backend/internal/common"
)

// RequireAdmin checks that the authenticated user has admin level (>= 10)
func RequireAdmin() gin.HandlerFunc {
	return func(c *gin.Context) {
		level := GetUserLevel(c)
		if level < 10 {
			common.ErrorResponse(c, http.StatusForbidden, "Admin privileges required", common.ErrForbidden)
			c.Abort()
			return
		}
		c.Next()
	}
}
