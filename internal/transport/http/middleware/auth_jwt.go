package middleware

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"gin-account-service/internal/core/auth"
	resp "gin-account-service/internal/transport/http/response"
)

const KeyUserID = "userId"

// AuthJWT 校验 Bearer token 并把调用者写进 request context。
// required=false 时没带 token 直接放行（由业务层决定是否需要登录），带了但无效仍然拒绝。
func AuthJWT(j *auth.JWTer, required bool) gin.HandlerFunc {
	return func(c *gin.Context) {
		ah := c.GetHeader("Authorization")
		if !strings.HasPrefix(ah, "Bearer ") {
			if required {
				c.AbortWithStatusJSON(http.StatusOK, resp.Error(resp.CodeUnauthorized, "missing token"))
				return
			}
			c.Next()
			return
		}
		claims, err := j.Parse(strings.TrimPrefix(ah, "Bearer "))
		if err != nil {
			c.AbortWithStatusJSON(http.StatusOK, resp.Error(resp.CodeUnauthorized, "invalid token"))
			return
		}
		c.Set(KeyUserID, claims.UID)
		c.Request = c.Request.WithContext(auth.WithCaller(c.Request.Context(), claims.UID))
		c.Next()
	}
}
