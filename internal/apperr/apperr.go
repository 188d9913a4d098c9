package apperr

import (
	"errors"
	"fmt"
)

var (
	ErrUnauthenticated  = errors.New("unauthenticated")
	ErrPermissionDenied = errors.New("permission denied")
	ErrNotFound         = errors.New("not found")
	ErrInvalidOperation = errors.New("invalid operation")
	ErrConflictState    = errors.New("conflict state")
	ErrInvalidInput     = errors.New("invalid input")
)

// Error 业务错误：Err 为上面的哨兵值，Message 给调用方看
type Error struct {
	Err     error
	Message string
}

func (e *Error) Error() string {
	if e.Message != "" {
		return e.Message
	}
	return e.Err.Error()
}

func (e *Error) Unwrap() error { return e.Err }

func Unauthenticated(msg string) *Error {
	return &Error{Err: ErrUnauthenticated, Message: msg}
}

func PermissionDenied(msg string) *Error {
	return &Error{Err: ErrPermissionDenied, Message: msg}
}

func NotFound(resource, id string) *Error {
	return &Error{Err: ErrNotFound, Message: fmt.Sprintf("%s not found: %s", resource, id)}
}

func InvalidOperation(msg string) *Error {
	return &Error{Err: ErrInvalidOperation, Message: msg}
}

func ConflictState(msg string) *Error {
	return &Error{Err: ErrConflictState, Message: msg}
}

func InvalidInput(msg string) *Error {
	return &Error{Err: ErrInvalidInput, Message: msg}
}
