package blob

import (
	"context"
	"encoding/hex"
	"errors"
	"fmt"
	"io"
	"net/url"
	"regexp"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/zeebo/blake3"
	"gorm.io/gorm"

	"gin-account-service/internal/apperr"
	"gin-account-service/pkg/utils"
)

const uploadAudience = "blob-upload"

var (
	ErrInvalidUploadToken = apperr.InvalidInput("invalid or expired upload token")
	ErrTooLarge           = apperr.InvalidInput("upload too large")
	ErrEmptyUpload        = apperr.InvalidInput("empty upload")
)

var blobOps = prometheus.NewCounterVec(
	prometheus.CounterOpts{Name: "blob_operations_total", Help: "Blob store operations"},
	[]string{"op", "result"},
)

func init() { prometheus.MustRegister(blobOps) }

// xid 的字符集，顺便挡住路径穿越
var idPattern = regexp.MustCompile(`^[0-9a-v]{20}$`)

func ValidID(id string) bool { return idPattern.MatchString(id) }

type Options struct {
	PublicBaseURL string        // 例：http://127.0.0.1:8080
	UploadTTL     time.Duration // 上传 URL 有效期
	MaxBytes      int64
	Secret        []byte // 上传 token 签名
	Issuer        string
}

type Store struct {
	db      *gorm.DB
	backend Backend
	opt     Options
	now     func() time.Time
}

func NewStore(db *gorm.DB, backend Backend, opt Options) *Store {
	if opt.UploadTTL <= 0 {
		opt.UploadTTL = time.Hour
	}
	if opt.MaxBytes <= 0 {
		opt.MaxBytes = 5 << 20
	}
	opt.PublicBaseURL = strings.TrimRight(opt.PublicBaseURL, "/")
	return &Store{db: db, backend: backend, opt: opt, now: time.Now}
}

type uploadClaims struct {
	jwt.RegisteredClaims
}

// GenerateUploadURL 生成一次性、限时的上传地址
func (s *Store) GenerateUploadURL(ctx context.Context) (string, error) {
	now := s.now()
	target := UploadTarget{ID: utils.NewID(), ExpiresAt: now.Add(s.opt.UploadTTL)}
	if err := s.db.WithContext(ctx).Create(&target).Error; err != nil {
		return "", fmt.Errorf("blob: create upload target: %w", err)
	}
	tok := jwt.NewWithClaims(jwt.SigningMethodHS256, uploadClaims{jwt.RegisteredClaims{
		ID:        target.ID,
		Issuer:    s.opt.Issuer,
		Audience:  jwt.ClaimStrings{uploadAudience},
		IssuedAt:  jwt.NewNumericDate(now),
		ExpiresAt: jwt.NewNumericDate(target.ExpiresAt),
	}})
	signed, err := tok.SignedString(s.opt.Secret)
	if err != nil {
		return "", fmt.Errorf("blob: sign upload token: %w", err)
	}
	blobOps.WithLabelValues("upload_url", "ok").Inc()
	return s.opt.PublicBaseURL + "/api/v1/storage/upload?token=" + url.QueryEscape(signed), nil
}

func (s *Store) parseUploadToken(raw string) (string, error) {
	var c uploadClaims
	_, err := jwt.ParseWithClaims(raw, &c, func(t *jwt.Token) (interface{}, error) {
		if t.Method != jwt.SigningMethodHS256 {
			return nil, fmt.Errorf("unexpected alg")
		}
		return s.opt.Secret, nil
	}, jwt.WithIssuer(s.opt.Issuer), jwt.WithAudience(uploadAudience), jwt.WithTimeFunc(s.now))
	if err != nil || c.ID == "" {
		return "", ErrInvalidUploadToken
	}
	return c.ID, nil
}

// Upload 消费上传凭证并写入内容，返回 storage id
func (s *Store) Upload(ctx context.Context, token, contentType string, r io.Reader) (string, error) {
	targetID, err := s.parseUploadToken(token)
	if err != nil {
		blobOps.WithLabelValues("upload", "rejected").Inc()
		return "", err
	}

	data, err := io.ReadAll(io.LimitReader(r, s.opt.MaxBytes+1))
	if err != nil {
		return "", fmt.Errorf("blob: read upload: %w", err)
	}
	if int64(len(data)) > s.opt.MaxBytes {
		blobOps.WithLabelValues("upload", "rejected").Inc()
		return "", ErrTooLarge
	}
	if len(data) == 0 {
		return "", ErrEmptyUpload
	}

	// 条件更新保证凭证只能用一次
	now := s.now()
	res := s.db.WithContext(ctx).Model(&UploadTarget{}).
		Where("id = ? AND consumed_at IS NULL AND expires_at > ?", targetID, now).
		Update("consumed_at", now)
	if res.Error != nil {
		return "", fmt.Errorf("blob: consume upload target: %w", res.Error)
	}
	if res.RowsAffected != 1 {
		blobOps.WithLabelValues("upload", "rejected").Inc()
		return "", ErrInvalidUploadToken
	}

	if contentType == "" {
		contentType = "application/octet-stream"
	}
	meta := Meta{ID: utils.NewID(), ContentType: contentType, Size: int64(len(data)), Digest: digestOf(data)}
	if err := s.backend.Put(ctx, meta.ID, data, meta.Digest); err != nil {
		return "", fmt.Errorf("blob: write %s: %w", meta.ID, err)
	}
	if err := s.db.WithContext(ctx).Create(&meta).Error; err != nil {
		_ = s.backend.Delete(ctx, meta.ID)
		return "", fmt.Errorf("blob: save meta %s: %w", meta.ID, err)
	}
	blobOps.WithLabelValues("upload", "ok").Inc()
	return meta.ID, nil
}

func (s *Store) find(ctx context.Context, id string) (*Meta, error) {
	if !ValidID(id) {
		return nil, nil
	}
	var m Meta
	err := s.db.WithContext(ctx).First(&m, "id = ?", id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("blob: find %s: %w", id, err)
	}
	return &m, nil
}

// ValidID 供上层在落库前校验引用格式
func (s *Store) ValidID(id string) bool { return ValidID(id) }

// URL 未知 id 返回 ""
func (s *Store) URL(ctx context.Context, id string) (string, error) {
	m, err := s.find(ctx, id)
	if err != nil || m == nil {
		return "", err
	}
	return s.opt.PublicBaseURL + "/api/v1/storage/" + m.ID, nil
}

// Open 读取内容并校验摘要
func (s *Store) Open(ctx context.Context, id string) (*Meta, []byte, error) {
	m, err := s.find(ctx, id)
	if err != nil {
		return nil, nil, err
	}
	if m == nil {
		return nil, nil, apperr.NotFound("blob", id)
	}
	data, err := s.backend.Get(ctx, id)
	if errors.Is(err, errObjectMissing) {
		return nil, nil, apperr.NotFound("blob", id)
	}
	if err != nil {
		return nil, nil, fmt.Errorf("blob: read %s: %w", id, err)
	}
	if digestOf(data) != m.Digest {
		return nil, nil, fmt.Errorf("blob: digest mismatch for %s", id)
	}
	return m, data, nil
}

// Delete 幂等：不存在也返回 nil
func (s *Store) Delete(ctx context.Context, id string) error {
	if !ValidID(id) {
		return nil
	}
	if err := s.backend.Delete(ctx, id); err != nil {
		blobOps.WithLabelValues("delete", "error").Inc()
		return fmt.Errorf("blob: delete %s: %w", id, err)
	}
	if err := s.db.WithContext(ctx).Delete(&Meta{}, "id = ?", id).Error; err != nil {
		blobOps.WithLabelValues("delete", "error").Inc()
		return fmt.Errorf("blob: delete meta %s: %w", id, err)
	}
	blobOps.WithLabelValues("delete", "ok").Inc()
	return nil
}

// ListBefore 创建时间早于 t 的 blob id
func (s *Store) ListBefore(ctx context.Context, t time.Time) ([]string, error) {
	var ids []string
	err := s.db.WithContext(ctx).Model(&Meta{}).
		Where("created_at < ?", t).Order("created_at ASC").Pluck("id", &ids).Error
	if err != nil {
		return nil, fmt.Errorf("blob: list: %w", err)
	}
	return ids, nil
}

// PurgeUploadTargets 清理过期或已使用的上传凭证
func (s *Store) PurgeUploadTargets(ctx context.Context) (int64, error) {
	res := s.db.WithContext(ctx).
		Where("expires_at < ? OR consumed_at IS NOT NULL", s.now()).
		Delete(&UploadTarget{})
	return res.RowsAffected, res.Error
}

func (s *Store) Close() error { return s.backend.Close() }

func digestOf(data []byte) string {
	sum := blake3.Sum256(data)
	return hex.EncodeToString(sum[:])
}
