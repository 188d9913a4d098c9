package router

import (
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"gin-account-service/internal/core/auth"
	mdw "gin-account-service/internal/transport/http/middleware"
)

// NewAdminEngine 管理端：必须带 token，admin 角色由业务守卫按库里的角色校验
func NewAdminEngine(l *zap.Logger, jwter *auth.JWTer, reg *Registry, o Options) *gin.Engine {
	if o.Name == "" {
		o.Name = "admin"
	}
	r := newEngine(l, o)

	admin := r.Group("/admin/v1")
	admin.Use(mdw.AuthJWT(jwter, true))
	reg.MountAllAdmin(admin)

	return r
}
