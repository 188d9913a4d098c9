package response

import (
	"context"
	"errors"

	"gin-account-service/internal/apperr"
)

type Resp struct {
	Code int         `json:"code"`
	Msg  string      `json:"msg"`
	Data interface{} `json:"data"`
}

// New 构造函数（data 为 nil 时给空对象；带类型的 nil 指针照常序列化为 null）
func New(code int, msg string, data interface{}) Resp {
	if data == nil {
		data = struct{}{}
	}
	return Resp{Code: code, Msg: msg, Data: data}
}

// OK 成功响应
func OK(data interface{}) Resp {
	return New(CodeOK, CodeMsgMap[CodeOK], data)
}

// Error 失败响应（可以传自定义 msg 覆盖默认）
func Error(code int, customMsg string) Resp {
	msg := CodeMsgMap[code]
	if customMsg != "" {
		msg = customMsg
	}
	return New(code, msg, struct{}{})
}

// CodeOf 业务错误 → 响应码；未归类的一律 500
func CodeOf(err error) int {
	switch {
	case errors.Is(err, apperr.ErrUnauthenticated):
		return CodeUnauthorized
	case errors.Is(err, apperr.ErrPermissionDenied):
		return CodeForbidden
	case errors.Is(err, apperr.ErrNotFound):
		return CodeNotFound
	case errors.Is(err, apperr.ErrConflictState):
		return CodeConflict
	case errors.Is(err, apperr.ErrInvalidOperation):
		return CodeUnprocessable
	case errors.Is(err, apperr.ErrInvalidInput):
		return CodeBadRequest
	case errors.Is(err, context.DeadlineExceeded):
		return CodeTimeout
	}
	return CodeServerError
}

// FromError 业务错误原样透出文案；500 不暴露内部细节
func FromError(err error) Resp {
	code := CodeOf(err)
	if code == CodeServerError {
		return Error(code, "")
	}
	var ae *apperr.Error
	if errors.As(err, &ae) && ae.Message != "" {
		return Error(code, ae.Message)
	}
	return Error(code, err.Error())
}
