package service

import (
	"context"
	"fmt"
	"strings"

	"go.uber.org/zap"

	"gin-account-service/internal/apperr"
	"gin-account-service/internal/domain"
)

type AdminUser struct {
	ID    string      `json:"id"`
	Name  *string     `json:"name,omitempty"`
	Email *string     `json:"email,omitempty"`
	Role  domain.Role `json:"role"`
}

// ListUsers 最新创建的在前；search 去空白转小写后对 "name email" 做子串匹配
func (s *AccountService) ListUsers(ctx context.Context, search string) (out []AdminUser, err error) {
	defer func() { observe("list_users", err) }()

	if _, err = s.Guard(ctx, domain.CapAdmin); err != nil {
		return nil, err
	}
	users, err := s.users.ListNewestFirst(ctx)
	if err != nil {
		return nil, fmt.Errorf("service: list users: %w", err)
	}

	needle := strings.ToLower(strings.TrimSpace(search))
	out = make([]AdminUser, 0, len(users))
	for i := range users {
		u := &users[i]
		if needle != "" && !strings.Contains(haystack(u), needle) {
			continue
		}
		out = append(out, AdminUser{ID: u.ID, Name: u.Name, Email: u.Email, Role: u.EffectiveRole()})
	}
	return out, nil
}

func haystack(u *domain.User) string {
	return strings.ToLower(deref(u.Name) + " " + deref(u.Email))
}

// SetUserRole 管理员不能把自己降级
func (s *AccountService) SetUserRole(ctx context.Context, targetID, role string) (err error) {
	defer func() { observe("set_user_role", err) }()

	caller, err := s.Guard(ctx, domain.CapAdmin)
	if err != nil {
		return err
	}
	r, err := domain.ParseRole(role)
	if err != nil {
		return apperr.InvalidInput(err.Error())
	}
	if caller.ID == targetID && r != domain.RoleAdmin {
		return apperr.InvalidOperation("cannot remove own admin role")
	}

	target, err := s.users.FindByID(ctx, targetID)
	if err != nil {
		return fmt.Errorf("service: load user %s: %w", targetID, err)
	}
	if target == nil {
		return apperr.NotFound("user", targetID)
	}
	err = s.mutateViewer(ctx, targetID, func() error {
		if err := s.users.UpdateRole(ctx, targetID, r); err != nil {
			return fmt.Errorf("service: update role of %s: %w", targetID, err)
		}
		return nil
	})
	if err != nil {
		return err
	}

	s.log.Info("user role changed",
		zap.String("admin_id", caller.ID),
		zap.String("user_id", targetID),
		zap.String("from", string(target.EffectiveRole())),
		zap.String("to", string(r)),
	)
	return nil
}
