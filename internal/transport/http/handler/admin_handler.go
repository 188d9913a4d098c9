package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"gin-account-service/internal/service"
	"gin-account-service/internal/transport/http/ez"
)

type AdminHandler struct{ svc *service.AccountService }

func NewAdminHandler(svc *service.AccountService) *AdminHandler { return &AdminHandler{svc: svc} }

type listUsersQ struct {
	Search string `form:"search"` // 按 name/email 子串，不区分大小写
}

type listUsersOut struct {
	Total int                 `json:"total"`
	Items []service.AdminUser `json:"items"`
}

type setRoleIn struct {
	Role string `json:"role" binding:"required"`
}

func (h *AdminHandler) MountAdmin(admin *gin.RouterGroup) {
	e := ez.New(admin)

	// --- GET /admin/v1/users  用户列表 ---
	ez.RegisterAction(e, ez.Action[listUsersQ, listUsersOut]{
		Method: http.MethodGet,
		Path:   "/users",
		Binder: ez.BindQuery,
		Handler: func(c *gin.Context, in *listUsersQ) (listUsersOut, error) {
			items, err := h.svc.ListUsers(c.Request.Context(), in.Search)
			if err != nil {
				return listUsersOut{}, err
			}
			return listUsersOut{Total: len(items), Items: items}, nil
		},
	})

	// --- POST /admin/v1/users/:id/role  改角色 ---
	ez.RegisterAction(e, ez.Action[setRoleIn, okOut]{
		Method: http.MethodPost,
		Path:   "/users/:id/role",
		Binder: ez.BindJSON,
		Handler: func(c *gin.Context, in *setRoleIn) (okOut, error) {
			if err := h.svc.SetUserRole(c.Request.Context(), c.Param("id"), in.Role); err != nil {
				return okOut{}, err
			}
			return okOut{OK: true}, nil
		},
	})
}
