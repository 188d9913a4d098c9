package auth

import "context"

type callerKey struct{}

// WithCaller 由鉴权中间件在 token 校验通过后写入
func WithCaller(ctx context.Context, uid string) context.Context {
	return context.WithValue(ctx, callerKey{}, uid)
}

// ContextIdentity 从请求 context 中取调用者 id
type ContextIdentity struct{}

func (ContextIdentity) ResolveCaller(ctx context.Context) (string, bool) {
	uid, ok := ctx.Value(callerKey{}).(string)
	return uid, ok && uid != ""
}
