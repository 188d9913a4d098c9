package handler

import (
	"errors"
	"io"
	"net/http"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"

	"gin-account-service/internal/apperr"
	"gin-account-service/internal/core/blob"
	"gin-account-service/internal/transport/http/ez"
	resp "gin-account-service/internal/transport/http/response"
)

// StorageHandler 上传凭证兑换与 blob 下载；不需要登录，凭 token / id 访问
type StorageHandler struct {
	store       *blob.Store
	uploadLimit []gin.HandlerFunc
}

func NewStorageHandler(store *blob.Store, uploadLimit ...gin.HandlerFunc) *StorageHandler {
	return &StorageHandler{store: store, uploadLimit: uploadLimit}
}

type uploadQ struct {
	Token string `form:"token" binding:"required"`
}

type uploadOut struct {
	StorageID string `json:"storageId"`
}

func (h *StorageHandler) Priority() int { return 20 }

func (h *StorageHandler) MountAPI(api *gin.RouterGroup) {
	e := ez.New(api)

	// body 可以是原始字节（Content-Type 即文件类型），也可以是 multipart 的 file 字段
	ez.RegisterAction(e, ez.Action[uploadQ, uploadOut]{
		Method:   http.MethodPost,
		Path:     "/storage/upload",
		Binder:   ez.BindQuery,
		Handlers: h.uploadLimit,
		Handler: func(c *gin.Context, in *uploadQ) (uploadOut, error) {
			body, contentType, err := uploadBody(c)
			if err != nil {
				return uploadOut{}, err
			}
			defer body.Close()
			id, err := h.store.Upload(c.Request.Context(), in.Token, contentType, body)
			var mbe *http.MaxBytesError
			if errors.As(err, &mbe) {
				return uploadOut{}, blob.ErrTooLarge
			}
			return uploadOut{StorageID: id}, err
		},
	})

	api.GET("/storage/:id", h.download)
}

func uploadBody(c *gin.Context) (io.ReadCloser, string, error) {
	ct := c.ContentType()
	if !strings.HasPrefix(ct, "multipart/form-data") {
		return c.Request.Body, ct, nil
	}
	fh, err := c.FormFile("file")
	if err != nil {
		return nil, "", apperr.InvalidInput("invalid multipart form: " + err.Error())
	}
	f, err := fh.Open()
	if err != nil {
		return nil, "", apperr.InvalidInput("open uploaded file: " + err.Error())
	}
	return f, fh.Header.Get("Content-Type"), nil
}

func (h *StorageHandler) download(c *gin.Context) {
	meta, data, err := h.store.Open(c.Request.Context(), c.Param("id"))
	if err != nil {
		_ = c.Error(err)
		c.JSON(http.StatusOK, resp.FromError(err))
		return
	}
	etag := `"` + meta.Digest + `"`
	if c.GetHeader("If-None-Match") == etag {
		c.Status(http.StatusNotModified)
		return
	}
	// 内容按 id 不可变
	c.Header("Cache-Control", "public, max-age=31536000, immutable")
	c.Header("ETag", etag)
	c.Header("Content-Length", strconv.Itoa(len(data)))
	c.Data(http.StatusOK, meta.ContentType, data)
}
