package repo

import (
	"context"
	"errors"

	"gorm.io/gorm"

	"gin-account-service/internal/domain"
	"gin-account-service/pkg/utils"
)

var _ domain.UserRepository = (*UserRepo)(nil)

type UserRepo struct{ db *gorm.DB }

func NewUserRepo(db *gorm.DB) *UserRepo { return &UserRepo{db: db} }

func (r *UserRepo) Create(ctx context.Context, u *domain.User) error {
	if u.ID == "" {
		u.ID = utils.NewID()
	}
	if u.Role == "" {
		u.Role = domain.RoleUser
	}
	err := r.db.WithContext(ctx).Create(u).Error
	if isDupKey(err) {
		return domain.ErrDuplicate
	}
	return err
}

func (r *UserRepo) FindByID(ctx context.Context, id string) (*domain.User, error) {
	var u domain.User
	err := r.db.WithContext(ctx).First(&u, "id = ?", id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &u, nil
}

func (r *UserRepo) FindByEmail(ctx context.Context, email string) (*domain.User, error) {
	var u domain.User
	err := r.db.WithContext(ctx).First(&u, "email = ?", email).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &u, nil
}

// ListNewestFirst 全量，最新创建的在前；id 为 xid，可做同一时刻的次序
func (r *UserRepo) ListNewestFirst(ctx context.Context) ([]domain.User, error) {
	var users []domain.User
	err := r.db.WithContext(ctx).Order("created_at DESC").Order("id DESC").Find(&users).Error
	return users, err
}

// UpdateName name 为 nil 时写 NULL
func (r *UserRepo) UpdateName(ctx context.Context, id string, name *string) error {
	var v any = gorm.Expr("NULL")
	if name != nil {
		v = *name
	}
	return r.db.WithContext(ctx).Model(&domain.User{}).Where("id = ?", id).Update("name", v).Error
}

func (r *UserRepo) UpdateRole(ctx context.Context, id string, role domain.Role) error {
	return r.db.WithContext(ctx).Model(&domain.User{}).Where("id = ?", id).Update("role", role).Error
}
