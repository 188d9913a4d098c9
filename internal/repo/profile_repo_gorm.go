package repo

import (
	"context"

	"gorm.io/gorm"

	"gin-account-service/internal/apperr"
	"gin-account-service/internal/domain"
	"gin-account-service/pkg/utils"
)

var _ domain.ProfileRepository = (*ProfileRepo)(nil)

type ProfileRepo struct{ db *gorm.DB }

func NewProfileRepo(db *gorm.DB) *ProfileRepo { return &ProfileRepo{db: db} }

// FindByUserID 唯一索引下至多一条；查出多条说明索引坏了
func (r *ProfileRepo) FindByUserID(ctx context.Context, userID string) (*domain.UserProfile, error) {
	var ps []domain.UserProfile
	if err := r.db.WithContext(ctx).Where("user_id = ?", userID).Limit(2).Find(&ps).Error; err != nil {
		return nil, err
	}
	switch len(ps) {
	case 0:
		return nil, nil
	case 1:
		return &ps[0], nil
	}
	return nil, apperr.ConflictState("multiple profiles for user " + userID)
}

var errAvatarInUse = apperr.ConflictState("storage object already in use")

// Create 头像已被别的 profile 占用返回 ConflictState；user_id 冲突返回 ErrDuplicate
func (r *ProfileRepo) Create(ctx context.Context, p *domain.UserProfile) error {
	if p.ID == "" {
		p.ID = utils.NewID()
	}
	err := r.db.WithContext(ctx).Create(p).Error
	switch {
	case isDupKeyOn(err, "avatar_storage_id"):
		return errAvatarInUse
	case isDupKey(err):
		return domain.ErrDuplicate
	}
	return err
}

func (r *ProfileRepo) SetAvatar(ctx context.Context, profileID string, storageID *string) error {
	var v any = gorm.Expr("NULL")
	if storageID != nil {
		v = *storageID
	}
	err := r.db.WithContext(ctx).Model(&domain.UserProfile{}).
		Where("id = ?", profileID).Update("avatar_storage_id", v).Error
	if isDupKey(err) {
		return errAvatarInUse
	}
	return err
}

func (r *ProfileRepo) IsAvatarReferenced(ctx context.Context, storageID string) (bool, error) {
	var n int64
	err := r.db.WithContext(ctx).Model(&domain.UserProfile{}).
		Where("avatar_storage_id = ?", storageID).Count(&n).Error
	return n > 0, err
}

func (r *ProfileRepo) DetachAvatar(ctx context.Context, storageID string) (string, error) {
	var p domain.UserProfile
	res := r.db.WithContext(ctx).Where("avatar_storage_id = ?", storageID).Limit(1).Find(&p)
	if res.Error != nil || res.RowsAffected == 0 {
		return "", res.Error
	}
	// 条件更新，期间用户已换了头像就不动
	res = r.db.WithContext(ctx).Model(&domain.UserProfile{}).
		Where("id = ? AND avatar_storage_id = ?", p.ID, storageID).
		Update("avatar_storage_id", gorm.Expr("NULL"))
	if res.Error != nil || res.RowsAffected == 0 {
		return "", res.Error
	}
	return p.UserID, nil
}
