package domain

import (
	"context"
	"errors"
	"time"
)

// ErrDuplicate 唯一约束冲突
var ErrDuplicate = errors.New("duplicate key")

type User struct {
	ID        string    `gorm:"primaryKey;type:varchar(32)" json:"id"`
	Name      *string   `gorm:"size:64" json:"name,omitempty"`
	Email     *string   `gorm:"uniqueIndex;size:191" json:"email,omitempty"`
	Role      Role      `gorm:"size:16;not null;default:user" json:"role"`
	CreatedAt time.Time `gorm:"autoCreateTime;index" json:"createdAt"`
	UpdatedAt time.Time `gorm:"autoUpdateTime" json:"updatedAt"`
}

func (User) TableName() string { return "users" }

// EffectiveRole 库里存的非 admin 值一律按 user 处理
func (u *User) EffectiveRole() Role { return NormalizeRole(string(u.Role)) }

// UserProfile 每个用户至多一条（user_id 唯一索引保证）；avatar_storage_id 唯一，NULL 不受限
type UserProfile struct {
	ID              string    `gorm:"primaryKey;type:varchar(32)" json:"id"`
	UserID          string    `gorm:"type:varchar(32);not null;uniqueIndex" json:"userId"`
	AvatarStorageID *string   `gorm:"type:varchar(32);uniqueIndex" json:"avatarStorageId,omitempty"` // 一个 blob 只归一个 profile
	CreatedAt       time.Time `gorm:"autoCreateTime" json:"createdAt"`
	UpdatedAt       time.Time `gorm:"autoUpdateTime" json:"updatedAt"`
}

func (UserProfile) TableName() string { return "user_profiles" }

type UserRepository interface {
	Create(ctx context.Context, u *User) error
	FindByID(ctx context.Context, id string) (*User, error)
	FindByEmail(ctx context.Context, email string) (*User, error)
	ListNewestFirst(ctx context.Context) ([]User, error)
	UpdateName(ctx context.Context, id string, name *string) error
	UpdateRole(ctx context.Context, id string, role Role) error
}

type ProfileRepository interface {
	FindByUserID(ctx context.Context, userID string) (*UserProfile, error)
	Create(ctx context.Context, p *UserProfile) error
	SetAvatar(ctx context.Context, profileID string, storageID *string) error
	IsAvatarReferenced(ctx context.Context, storageID string) (bool, error)
	// DetachAvatar 清掉仍指向 storageID 的引用，返回被改的 user_id；没有引用返回 ""
	DetachAvatar(ctx context.Context, storageID string) (string, error)
}

// IdentityProvider 解析当前请求的调用者
type IdentityProvider interface {
	ResolveCaller(ctx context.Context) (userID string, ok bool)
}

// BlobStore 头像等二进制对象存储
type BlobStore interface {
	// ValidID 存储 id 的格式校验，不查是否存在
	ValidID(id string) bool
	GenerateUploadURL(ctx context.Context) (string, error)
	// URL 未知 id 返回 ""
	URL(ctx context.Context, id string) (string, error)
	Delete(ctx context.Context, id string) error
	// ListBefore 创建时间早于 t 的 blob，供孤儿回收
	ListBefore(ctx context.Context, t time.Time) ([]string, error)
}
