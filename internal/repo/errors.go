package repo

import (
	"errors"
	"strings"

	"gorm.io/gorm"
)

func isDupKey(err error) bool {
	if err == nil {
		return false
	}
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return true
	}
	// 各驱动报错文案不一，兜底按关键字判断
	msg := strings.ToLower(err.Error())
	return strings.Contains(msg, "duplicate") ||
		strings.Contains(msg, "unique constraint") ||
		strings.Contains(msg, "unique violation")
}

// isDupKeyOn 唯一冲突且报错里带列名（sqlite 报列名，pg/mysql 报索引名 idx_<table>_<col>）
func isDupKeyOn(err error, column string) bool {
	return isDupKey(err) && strings.Contains(strings.ToLower(err.Error()), column)
}
