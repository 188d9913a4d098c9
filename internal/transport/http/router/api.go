package router

import (
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"gin-account-service/internal/core/auth"
	mdw "gin-account-service/internal/transport/http/middleware"
)

// NewAPIEngine 用户端：token 可选，是否需要登录由业务守卫判断
func NewAPIEngine(l *zap.Logger, jwter *auth.JWTer, reg *Registry, o Options) *gin.Engine {
	if o.Name == "" {
		o.Name = "api"
	}
	r := newEngine(l, o)

	api := r.Group("/api/v1")
	api.Use(mdw.AuthJWT(jwter, false))
	reg.MountAllAPI(api)

	return r
}
