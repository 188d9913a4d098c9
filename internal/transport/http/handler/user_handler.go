// Package handler HTTP 入口：只做绑定与转发，规则都在 service。
package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"gin-account-service/internal/domain"
	"gin-account-service/internal/service"
	"gin-account-service/internal/transport/http/ez"
)

type UserHandler struct{ svc *service.AccountService }

func NewUserHandler(svc *service.AccountService) *UserHandler { return &UserHandler{svc: svc} }

type profileIn struct {
	Name *string `json:"name" binding:"omitempty,max=64"`
}

type avatarIn struct {
	StorageID string `json:"storageId" binding:"required"`
}

type uploadTargetOut struct {
	UploadURL string `json:"uploadUrl"`
}

type okOut struct {
	OK bool `json:"ok"`
}

func (h *UserHandler) Priority() int { return 10 }

func (h *UserHandler) MountAPI(api *gin.RouterGroup) {
	e := ez.New(api)

	// 未登录返回 data=null
	ez.RegisterAction(e, ez.Action[struct{}, *service.Viewer]{
		Method: http.MethodGet,
		Path:   "/viewer",
		Binder: ez.BindNone,
		Handler: func(c *gin.Context, _ *struct{}) (*service.Viewer, error) {
			return h.svc.Viewer(c.Request.Context())
		},
	})

	ez.RegisterAction(e, ez.Action[profileIn, *domain.User]{
		Method: http.MethodPut,
		Path:   "/profile",
		Binder: ez.BindJSON,
		Handler: func(c *gin.Context, in *profileIn) (*domain.User, error) {
			return h.svc.UpdateProfile(c.Request.Context(), in.Name)
		},
	})

	ez.RegisterAction(e, ez.Action[struct{}, uploadTargetOut]{
		Method: http.MethodPost,
		Path:   "/avatar/upload-url",
		Binder: ez.BindNone,
		Handler: func(c *gin.Context, _ *struct{}) (uploadTargetOut, error) {
			u, err := h.svc.GenerateAvatarUploadTarget(c.Request.Context())
			return uploadTargetOut{UploadURL: u}, err
		},
	})

	ez.RegisterAction(e, ez.Action[avatarIn, okOut]{
		Method: http.MethodPut,
		Path:   "/avatar",
		Binder: ez.BindJSON,
		Handler: func(c *gin.Context, in *avatarIn) (okOut, error) {
			if err := h.svc.SetAvatar(c.Request.Context(), in.StorageID); err != nil {
				return okOut{}, err
			}
			return okOut{OK: true}, nil
		},
	})

	ez.RegisterAction(e, ez.Action[struct{}, okOut]{
		Method: http.MethodDelete,
		Path:   "/avatar",
		Binder: ez.BindNone,
		Handler: func(c *gin.Context, _ *struct{}) (okOut, error) {
			if err := h.svc.RemoveAvatar(c.Request.Context()); err != nil {
				return okOut{}, err
			}
			return okOut{OK: true}, nil
		},
	})
}
