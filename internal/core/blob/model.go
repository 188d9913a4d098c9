package blob

import "time"

// Meta blob 元数据，内容在 Backend 里
type Meta struct {
	ID          string    `gorm:"primaryKey;type:varchar(32)" json:"id"`
	ContentType string    `gorm:"size:128;not null" json:"contentType"`
	Size        int64     `gorm:"not null" json:"size"`
	Digest      string    `gorm:"size:64;not null" json:"digest"` // blake3 hex
	CreatedAt   time.Time `gorm:"autoCreateTime;index" json:"createdAt"`
}

func (Meta) TableName() string { return "blobs" }

// UploadTarget 一次性上传凭证
type UploadTarget struct {
	ID         string     `gorm:"primaryKey;type:varchar(32)"`
	ExpiresAt  time.Time  `gorm:"not null;index"`
	ConsumedAt *time.Time
	CreatedAt  time.Time `gorm:"autoCreateTime"`
}

func (UploadTarget) TableName() string { return "upload_targets" }

// Models 供 AutoMigrate 使用
func Models() []any { return []any{&Meta{}, &UploadTarget{}} }
