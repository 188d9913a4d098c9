package middleware

import (
	"net/http"

	"github.com/gin-gonic/gin"

	resp "gin-account-service/internal/transport/http/response"
)

var tooLarge = resp.Error(resp.CodeBadRequest, "request body too large")

// MaxBodyBytes 限制请求体大小；超限时读 body 的一方拿到 *http.MaxBytesError
func MaxBodyBytes(n int64) gin.HandlerFunc {
	return func(c *gin.Context) {
		if c.Request.ContentLength > n {
			c.AbortWithStatusJSON(http.StatusOK, tooLarge)
			return
		}
		c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, n)
		c.Next()
	}
}
