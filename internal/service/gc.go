package service

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"
)

type GCReport struct {
	Scanned int
	Deleted int
	Failed  int
	// Raced 检查后删除前被挂成头像的 blob，删除后已把引用摘掉
	Raced int
}

// CollectOrphanBlobs 删除早于 before 且没有任何 profile 引用的 blob；单个失败只计数
func (s *AccountService) CollectOrphanBlobs(ctx context.Context, before time.Time) (GCReport, error) {
	var rep GCReport
	ids, err := s.blobs.ListBefore(ctx, before)
	if err != nil {
		return rep, fmt.Errorf("service: list blobs: %w", err)
	}
	rep.Scanned = len(ids)
	for _, id := range ids {
		if err := ctx.Err(); err != nil {
			return rep, err
		}
		used, err := s.profiles.IsAvatarReferenced(ctx, id)
		if err != nil {
			return rep, fmt.Errorf("service: check reference %s: %w", id, err)
		}
		if used {
			continue
		}
		if err := s.blobs.Delete(ctx, id); err != nil {
			rep.Failed++
			s.log.Warn("orphan blob delete failed", zap.String("storage_id", id), zap.Error(err))
			continue
		}
		if s.detachIfRaced(ctx, id) {
			rep.Raced++
			continue
		}
		rep.Deleted++
	}
	s.log.Info("orphan blob collection done",
		zap.Int("scanned", rep.Scanned), zap.Int("deleted", rep.Deleted), zap.Int("failed", rep.Failed), zap.Int("raced", rep.Raced))
	return rep, nil
}

// detachIfRaced 删除后复查引用；被并发挂上的话摘掉引用，免得 profile 指向已删除的 blob
func (s *AccountService) detachIfRaced(ctx context.Context, id string) bool {
	used, err := s.profiles.IsAvatarReferenced(ctx, id)
	if err != nil {
		s.log.Error("orphan blob recheck failed", zap.String("storage_id", id), zap.Error(err))
		return false
	}
	if !used {
		return false
	}
	uid, err := s.profiles.DetachAvatar(ctx, id)
	if err != nil {
		s.log.Error("detach collected avatar failed", zap.String("storage_id", id), zap.Error(err))
		return true
	}
	if uid != "" {
		s.invalidateViewer(ctx, uid)
	}
	s.log.Error("blob attached while being collected", zap.String("storage_id", id), zap.String("user_id", uid))
	return true
}
