// Package bootstrap 三个入口（api / admin / accountctl）共用的依赖装配。
package bootstrap

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"
	"time"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"gorm.io/gorm"

	"gin-account-service/internal/core/auth"
	"gin-account-service/internal/core/blob"
	"gin-account-service/internal/core/cache"
	"gin-account-service/internal/core/config"
	"gin-account-service/internal/core/database"
	"gin-account-service/internal/core/logger"
	"gin-account-service/internal/domain"
	"gin-account-service/internal/repo"
	"gin-account-service/internal/service"
)

var ErrEmptySecret = errors.New("bootstrap: jwt.secret is empty")

type App struct {
	Cfg   *config.Config
	Log   *zap.Logger
	DB    *gorm.DB
	Blobs *blob.Store
	Cache *cache.Cache // redis.addr 为空时为 nil
	JWT   *auth.JWTer
	Svc   *service.AccountService
}

// NewLogger 按配置决定是否写文件切割，并接管标准库 log
func NewLogger(cfg *config.Config) (*zap.Logger, func()) {
	var l *zap.Logger
	var cleanup func()
	if r := cfg.Log.Rotate; r.Enable {
		l, cleanup = logger.NewWithRotate(cfg.Log.Level, cfg.Log.JSON, logger.FileRotate{
			Filename:   r.Filename,
			MaxSizeMB:  r.MaxSizeMB,
			MaxBackups: r.MaxBackups,
			MaxAgeDays: r.MaxAgeDays,
			Compress:   r.Compress,
		})
	} else {
		l, cleanup = logger.New(cfg.Log.Level, cfg.Log.JSON)
	}
	undo := logger.RedirectStdLog(l, zapcore.InfoLevel)
	return l, func() { undo(); cleanup() }
}

func New(cfg *config.Config, l *zap.Logger) (app *App, err error) {
	if cfg.JWT.Secret == "" {
		return nil, ErrEmptySecret
	}
	// 后端配置错误不必先连库
	backend, err := newBackend(cfg.Storage, l)
	if err != nil {
		return nil, err
	}
	defer func() {
		if err != nil {
			_ = backend.Close()
		}
	}()

	db, err := database.NewGorm(database.Opts{
		Driver:             cfg.DB.Driver,
		DSN:                cfg.DB.DSN,
		Username:           cfg.DB.Username,
		Password:           cfg.DB.Password,
		MaxOpenConns:       cfg.DB.MaxOpenConns,
		MaxIdleConns:       cfg.DB.MaxIdleConns,
		ConnMaxLifetimeMin: cfg.DB.ConnMaxLifetimeMin,
		LogLevel:           cfg.DB.LogLevel,
		Log:                l,
	})
	if err != nil {
		return nil, fmt.Errorf("bootstrap: open db: %w", err)
	}
	defer func() {
		if err != nil {
			closeDB(db)
		}
	}()
	l.Info("database connected", zap.String("driver", cfg.DB.Driver))

	if cfg.DB.AutoMigrate {
		models := append([]any{&domain.User{}, &domain.UserProfile{}}, blob.Models()...)
		if err = db.AutoMigrate(models...); err != nil {
			return nil, fmt.Errorf("bootstrap: automigrate: %w", err)
		}
		l.Info("automigrate done")
	}

	secret := []byte(cfg.JWT.Secret)
	store := blob.NewStore(db, backend, blob.Options{
		PublicBaseURL: cfg.Storage.PublicBaseURL,
		UploadTTL:     time.Duration(cfg.Storage.UploadTTLSec) * time.Second,
		MaxBytes:      cfg.Storage.MaxUploadBytes,
		Secret:        secret,
		Issuer:        cfg.JWT.Issuer,
	})

	var c *cache.Cache
	if cfg.Redis.Addr != "" {
		c = cache.New(cfg.Redis.Addr, cfg.Redis.Password, cfg.Redis.DB)
		ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
		err := c.Ping(ctx)
		cancel()
		if err != nil {
			// 缓存不可用不阻止启动，viewer 直接回源
			l.Warn("redis unavailable, viewer cache disabled", zap.String("addr", cfg.Redis.Addr), zap.Error(err))
			_ = c.Close()
			c = nil
		} else {
			l.Info("redis connected", zap.String("addr", cfg.Redis.Addr))
		}
	}

	return &App{
		Cfg:   cfg,
		Log:   l,
		DB:    db,
		Blobs: store,
		Cache: c,
		JWT: &auth.JWTer{
			Secret: secret,
			Issuer: cfg.JWT.Issuer,
			TTL:    time.Duration(cfg.JWT.AccessTokenTTLMin) * time.Minute,
		},
		Svc: service.NewAccountService(service.Deps{
			Users:     repo.NewUserRepo(db),
			Profiles:  repo.NewProfileRepo(db),
			Blobs:     store,
			Identity:  auth.ContextIdentity{},
			Cache:     c,
			Log:       l,
			ViewerTTL: time.Duration(cfg.Cache.ViewerTTLSec) * time.Second,
		}),
	}, nil
}

func newBackend(s config.Storage, l *zap.Logger) (blob.Backend, error) {
	switch s.Backend {
	case "", "fs":
		return blob.NewFSBackend(s.Dir)
	case "badger":
		return blob.NewBadgerBackend(filepath.Join(s.Dir, "badger"), l)
	}
	return nil, fmt.Errorf("bootstrap: unknown storage backend %q", s.Backend)
}

// PingDB 健康检查用
func (a *App) PingDB(ctx context.Context) error {
	sqlDB, err := a.DB.DB()
	if err != nil {
		return err
	}
	return sqlDB.PingContext(ctx)
}

func (a *App) Close() {
	if err := a.Blobs.Close(); err != nil {
		a.Log.Warn("close blob store", zap.Error(err))
	}
	if err := a.Cache.Close(); err != nil {
		a.Log.Warn("close cache", zap.Error(err))
	}
	closeDB(a.DB)
}

func closeDB(db *gorm.DB) {
	if sqlDB, err := db.DB(); err == nil {
		_ = sqlDB.Close()
	}
}
