package service

import (
	"context"
	"fmt"

	"gin-account-service/internal/apperr"
	"gin-account-service/internal/domain"
)

// Guard 解析调用者并检查权限；角色以库里为准，不信任 token
func (s *AccountService) Guard(ctx context.Context, capability domain.Capability) (*domain.User, error) {
	uid, ok := s.identity.ResolveCaller(ctx)
	if !ok {
		return nil, apperr.Unauthenticated("not authenticated")
	}
	u, err := s.users.FindByID(ctx, uid)
	if err != nil {
		return nil, fmt.Errorf("service: load caller %s: %w", uid, err)
	}
	if u == nil {
		return nil, apperr.Unauthenticated("not authenticated")
	}
	if !u.EffectiveRole().Allows(capability) {
		return nil, apperr.PermissionDenied(capability.String() + " permissions required")
	}
	return u, nil
}
