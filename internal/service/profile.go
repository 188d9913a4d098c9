package service

import (
	"context"
	"fmt"
	"strings"

	"gin-account-service/internal/apperr"
	"gin-account-service/internal/domain"
)

// UpdateProfile 只改调用者自己；name 去空白后为空则清空（NULL），不存空串
func (s *AccountService) UpdateProfile(ctx context.Context, name *string) (u *domain.User, err error) {
	defer func() { observe("update_profile", err) }()

	caller, err := s.Guard(ctx, domain.CapSelf)
	if err != nil {
		return nil, err
	}

	if name != nil {
		var v *string
		if trimmed := strings.TrimSpace(*name); trimmed != "" {
			v = &trimmed
		}
		err = s.mutateViewer(ctx, caller.ID, func() error {
			if err := s.users.UpdateName(ctx, caller.ID, v); err != nil {
				return fmt.Errorf("service: update name of %s: %w", caller.ID, err)
			}
			return nil
		})
		if err != nil {
			return nil, err
		}
	}

	u, err = s.users.FindByID(ctx, caller.ID)
	if err != nil {
		return nil, fmt.Errorf("service: reload user %s: %w", caller.ID, err)
	}
	if u == nil {
		return nil, apperr.NotFound("user", caller.ID)
	}
	return u, nil
}
