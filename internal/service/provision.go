package service

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"go.uber.org/zap"

	"gin-account-service/internal/apperr"
	"gin-account-service/internal/domain"
)

func normalizeEmail(email string) string { return strings.ToLower(strings.TrimSpace(email)) }

// Provision 按邮箱建用户，已存在则直接返回；不经过 Guard，只给运维入口用
func (s *AccountService) Provision(ctx context.Context, email, name string) (*domain.User, error) {
	email = normalizeEmail(email)
	if email == "" {
		return nil, apperr.InvalidInput("email required")
	}
	if u, err := s.users.FindByEmail(ctx, email); err != nil {
		return nil, fmt.Errorf("service: find user %s: %w", email, err)
	} else if u != nil {
		return u, nil
	}

	u := &domain.User{Email: &email, Role: domain.RoleUser}
	if n := strings.TrimSpace(name); n != "" {
		u.Name = &n
	}
	err := s.users.Create(ctx, u)
	if errors.Is(err, domain.ErrDuplicate) {
		// 并发创建，读回对方写入的那条
		existing, ferr := s.users.FindByEmail(ctx, email)
		if ferr != nil {
			return nil, fmt.Errorf("service: find user %s: %w", email, ferr)
		}
		if existing != nil {
			return existing, nil
		}
		return nil, apperr.ConflictState("user " + email + " already exists")
	}
	if err != nil {
		return nil, fmt.Errorf("service: create user %s: %w", email, err)
	}
	s.log.Info("user provisioned", zap.String("user_id", u.ID), zap.String("email", email))
	return u, nil
}

// BootstrapAdmin 新部署时提升第一个管理员，绕过 Guard
func (s *AccountService) BootstrapAdmin(ctx context.Context, email string) (*domain.User, error) {
	email = normalizeEmail(email)
	if email == "" {
		return nil, apperr.InvalidInput("email required")
	}
	u, err := s.users.FindByEmail(ctx, email)
	if err != nil {
		return nil, fmt.Errorf("service: find user %s: %w", email, err)
	}
	if u == nil {
		return nil, apperr.NotFound("user", email)
	}
	if u.EffectiveRole() != domain.RoleAdmin {
		err = s.mutateViewer(ctx, u.ID, func() error {
			if err := s.users.UpdateRole(ctx, u.ID, domain.RoleAdmin); err != nil {
				return fmt.Errorf("service: promote %s: %w", u.ID, err)
			}
			return nil
		})
		if err != nil {
			return nil, err
		}
		u.Role = domain.RoleAdmin
		s.log.Info("admin bootstrapped", zap.String("user_id", u.ID), zap.String("email", email))
	}
	return u, nil
}
