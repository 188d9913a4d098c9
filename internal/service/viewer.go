package service

import (
	"context"
	"fmt"
	"time"

	"gin-account-service/internal/core/cache"
	"gin-account-service/internal/domain"
)

type Viewer struct {
	ID        string      `json:"id"`
	Name      *string     `json:"name,omitempty"`
	Email     *string     `json:"email,omitempty"`
	Role      domain.Role `json:"role"`
	AvatarURL *string     `json:"avatarUrl,omitempty"`
	CreatedAt time.Time   `json:"createdAt"`
}

// Viewer 未登录或用户不存在返回 nil，不算错误
func (s *AccountService) Viewer(ctx context.Context) (*Viewer, error) {
	uid, ok := s.identity.ResolveCaller(ctx)
	if !ok {
		return nil, nil
	}
	return cache.GetOrLoadJSON(s.cache, ctx, viewerKey(uid), s.viewerTTL, func(ctx context.Context) (*Viewer, error) {
		return s.loadViewer(ctx, uid)
	})
}

func (s *AccountService) loadViewer(ctx context.Context, uid string) (*Viewer, error) {
	u, err := s.users.FindByID(ctx, uid)
	if err != nil {
		return nil, fmt.Errorf("service: load viewer %s: %w", uid, err)
	}
	if u == nil {
		return nil, nil
	}
	v := &Viewer{ID: u.ID, Name: u.Name, Email: u.Email, Role: u.EffectiveRole(), CreatedAt: u.CreatedAt}

	p, err := s.profiles.FindByUserID(ctx, uid)
	if err != nil {
		return nil, fmt.Errorf("service: load viewer profile %s: %w", uid, err)
	}
	if p == nil || p.AvatarStorageID == nil {
		return v, nil
	}
	url, err := s.blobs.URL(ctx, *p.AvatarStorageID)
	if err != nil {
		return nil, fmt.Errorf("service: resolve avatar %s: %w", *p.AvatarStorageID, err)
	}
	if url != "" {
		v.AvatarURL = &url
	}
	return v, nil
}
