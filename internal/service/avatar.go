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

// GenerateAvatarUploadTarget 一次性限时上传地址，原样返回
func (s *AccountService) GenerateAvatarUploadTarget(ctx context.Context) (target string, err error) {
	defer func() { observe("generate_upload_target", err) }()

	if _, err = s.Guard(ctx, domain.CapSelf); err != nil {
		return "", err
	}
	target, err = s.blobs.GenerateUploadURL(ctx)
	if err != nil {
		return "", fmt.Errorf("service: generate upload url: %w", err)
	}
	return target, nil
}

// SetAvatar 先改引用再删旧 blob，可见状态不会指向已删除的 blob。
// 独占由 avatar_storage_id 唯一索引保证，预检只为给出更清楚的错误。
func (s *AccountService) SetAvatar(ctx context.Context, storageID string) (err error) {
	defer func() { observe("set_avatar", err) }()

	caller, err := s.Guard(ctx, domain.CapSelf)
	if err != nil {
		return err
	}
	storageID = strings.TrimSpace(storageID)
	if storageID == "" {
		return apperr.InvalidInput("storageId required")
	}
	if !s.blobs.ValidID(storageID) {
		return apperr.InvalidInput("malformed storageId")
	}

	p, err := s.profiles.FindByUserID(ctx, caller.ID)
	if err != nil {
		return fmt.Errorf("service: load profile of %s: %w", caller.ID, err)
	}
	if p != nil && p.AvatarStorageID != nil && *p.AvatarStorageID == storageID {
		return nil
	}

	used, err := s.profiles.IsAvatarReferenced(ctx, storageID)
	if err != nil {
		return fmt.Errorf("service: check avatar reference %s: %w", storageID, err)
	}
	if used {
		return apperr.ConflictState("storage object already in use")
	}

	var old *string
	err = s.mutateViewer(ctx, caller.ID, func() error {
		if p == nil {
			if p, err = s.createProfile(ctx, caller.ID, storageID); err != nil || p == nil {
				return err
			}
		}
		old = p.AvatarStorageID
		if err := s.profiles.SetAvatar(ctx, p.ID, &storageID); err != nil {
			return fmt.Errorf("service: set avatar of %s: %w", caller.ID, err)
		}
		return nil
	})
	if err != nil {
		return err
	}

	if old != nil && *old != storageID {
		if err = s.blobs.Delete(ctx, *old); err != nil {
			s.log.Warn("superseded avatar delete failed", zap.String("user_id", caller.ID),
				zap.String("storage_id", *old), zap.Error(err))
			return fmt.Errorf("service: delete superseded avatar %s: %w", *old, err)
		}
	}
	return nil
}

// createProfile 新建成功返回 (nil, nil)；并发下撞唯一索引则重读一次，返回已有 profile 交给调用方 patch
func (s *AccountService) createProfile(ctx context.Context, userID, storageID string) (*domain.UserProfile, error) {
	err := s.profiles.Create(ctx, &domain.UserProfile{UserID: userID, AvatarStorageID: &storageID})
	if err == nil {
		return nil, nil
	}
	if !errors.Is(err, domain.ErrDuplicate) {
		return nil, fmt.Errorf("service: create profile of %s: %w", userID, err)
	}
	p, err := s.profiles.FindByUserID(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("service: reload profile of %s: %w", userID, err)
	}
	if p == nil {
		return nil, apperr.ConflictState("profile vanished during create for user " + userID)
	}
	return p, nil
}

// RemoveAvatar 幂等：没有 profile 或没有头像直接成功
func (s *AccountService) RemoveAvatar(ctx context.Context) (err error) {
	defer func() { observe("remove_avatar", err) }()

	caller, err := s.Guard(ctx, domain.CapSelf)
	if err != nil {
		return err
	}
	p, err := s.profiles.FindByUserID(ctx, caller.ID)
	if err != nil {
		return fmt.Errorf("service: load profile of %s: %w", caller.ID, err)
	}
	if p == nil || p.AvatarStorageID == nil {
		return nil
	}

	old := *p.AvatarStorageID
	err = s.mutateViewer(ctx, caller.ID, func() error {
		if err := s.profiles.SetAvatar(ctx, p.ID, nil); err != nil {
			return fmt.Errorf("service: clear avatar of %s: %w", caller.ID, err)
		}
		return nil
	})
	if err != nil {
		return err
	}

	if err = s.blobs.Delete(ctx, old); err != nil {
		return fmt.Errorf("service: delete avatar %s: %w", old, err)
	}
	return nil
}
