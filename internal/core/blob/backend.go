package blob

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
)

var errObjectMissing = errors.New("blob: object missing")

// Backend 只负责字节的存取，元数据在数据库
type Backend interface {
	Put(ctx context.Context, id string, data []byte, digest string) error
	Get(ctx context.Context, id string) ([]byte, error)
	Delete(ctx context.Context, id string) error
	Close() error
}

// FSBackend 每个 blob 一个文件：<dir>/<id 前两位>/<id>
type FSBackend struct {
	Dir string
}

func NewFSBackend(dir string) (*FSBackend, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("blob: create dir: %w", err)
	}
	return &FSBackend{Dir: dir}, nil
}

func (b *FSBackend) path(id string) string {
	return filepath.Join(b.Dir, id[:2], id)
}

func (b *FSBackend) Put(_ context.Context, id string, data []byte, _ string) error {
	p := b.path(id)
	if err := os.MkdirAll(filepath.Dir(p), 0o755); err != nil {
		return err
	}
	// 先写临时文件再 rename，避免读到半个文件
	tmp := p + ".tmp"
	if err := os.WriteFile(tmp, data, 0o644); err != nil {
		return err
	}
	return os.Rename(tmp, p)
}

func (b *FSBackend) Get(_ context.Context, id string) ([]byte, error) {
	data, err := os.ReadFile(b.path(id))
	if errors.Is(err, os.ErrNotExist) {
		return nil, errObjectMissing
	}
	return data, err
}

func (b *FSBackend) Delete(_ context.Context, id string) error {
	err := os.Remove(b.path(id))
	if errors.Is(err, os.ErrNotExist) {
		return nil
	}
	return err
}

func (b *FSBackend) Close() error { return nil }
