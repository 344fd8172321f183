package middleware

import (
	"campcircle/internal/pkg/response"
	"context"
	"strconv"

	"github.com/gin-gonic/gin"
)

// IdentityMiddleware 从网关透传的 X-User-ID 头中取出已认证的用户身份。
// 鉴权本身在网关完成，这里只做解析和注入。
func IdentityMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		raw := c.GetHeader("X-User-ID")
		if raw == "" {
			response.Fail(c, response.Unauthorized, "用户身份缺失")
			c.Abort()
			return
		}

		userID, err := strconv.ParseUint(raw, 10, 64)
		if err != nil || userID == 0 {
			response.Fail(c, response.Unauthorized, "用户身份无效")
			c.Abort()
			return
		}

		c.Set("user_id", userID)
		newCtx := context.WithValue(c.Request.Context(), "user_id", userID)
		c.Request = c.Request.WithContext(newCtx)

		c.Next()
	}
}

// IdentityOptionalMiddleware 未登录也放行，登录了就注入身份
func IdentityOptionalMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		raw := c.GetHeader("X-User-ID")
		if raw != "" {
			if userID, err := strconv.ParseUint(raw, 10, 64); err == nil && userID > 0 {
				c.Set("user_id", userID)
				newCtx := context.WithValue(c.Request.Context(), "user_id", userID)
				c.Request = c.Request.WithContext(newCtx)
			}
		}
		c.Next()
	}
}
