// Package service 账号与权限的业务规则：鉴权守卫、用户列表、角色变更、资料与头像生命周期。
package service

import (
	"context"
	"errors"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"go.uber.org/zap"

	"gin-account-service/internal/apperr"
	"gin-account-service/internal/core/cache"
	"gin-account-service/internal/domain"
)

var accountOps = prometheus.NewCounterVec(
	prometheus.CounterOpts{Name: "account_operations_total", Help: "Account service operations by result"},
	[]string{"op", "result"},
)

func init() { prometheus.MustRegister(accountOps) }

type Deps struct {
	Users     domain.UserRepository
	Profiles  domain.ProfileRepository
	Blobs     domain.BlobStore
	Identity  domain.IdentityProvider
	Cache     *cache.Cache // 可为 nil
	Log       *zap.Logger
	ViewerTTL time.Duration
}

type AccountService struct {
	users     domain.UserRepository
	profiles  domain.ProfileRepository
	blobs     domain.BlobStore
	identity  domain.IdentityProvider
	cache     *cache.Cache
	log       *zap.Logger
	viewerTTL time.Duration
}

func NewAccountService(d Deps) *AccountService {
	if d.Log == nil {
		d.Log = zap.NewNop()
	}
	if d.ViewerTTL <= 0 {
		d.ViewerTTL = 30 * time.Second
	}
	return &AccountService{
		users:     d.Users,
		profiles:  d.Profiles,
		blobs:     d.Blobs,
		identity:  d.Identity,
		cache:     d.Cache,
		log:       d.Log.Named("account"),
		viewerTTL: d.ViewerTTL,
	}
}

func viewerKey(uid string) string { return "viewer:" + uid }

// invalidateViewer 缓存失效失败只记日志，不影响写操作结果
func (s *AccountService) invalidateViewer(ctx context.Context, uid string) {
	if err := s.cache.Del(ctx, viewerKey(uid)); err != nil {
		s.log.Warn("viewer cache invalidate failed", zap.String("user_id", uid), zap.Error(err))
	}
}

// mutateViewer 写前写后各失效一次：写前那次挡住写入期间的读命中旧值，
// 写后那次清掉写入期间并发回源填进去的旧值
func (s *AccountService) mutateViewer(ctx context.Context, uid string, write func() error) error {
	s.invalidateViewer(ctx, uid)
	if err := write(); err != nil {
		return err
	}
	s.invalidateViewer(ctx, uid)
	return nil
}

func observe(op string, err error) {
	accountOps.WithLabelValues(op, resultOf(err)).Inc()
}

func resultOf(err error) string {
	switch {
	case err == nil:
		return "ok"
	case errors.Is(err, apperr.ErrUnauthenticated):
		return "unauthenticated"
	case errors.Is(err, apperr.ErrPermissionDenied):
		return "permission_denied"
	case errors.Is(err, apperr.ErrNotFound):
		return "not_found"
	case errors.Is(err, apperr.ErrInvalidOperation):
		return "invalid_operation"
	case errors.Is(err, apperr.ErrConflictState):
		return "conflict"
	case errors.Is(err, apperr.ErrInvalidInput):
		return "invalid_input"
	}
	return "error"
}

func deref(p *string) string {
	if p == nil {
		return ""
	}
	return *p
}
