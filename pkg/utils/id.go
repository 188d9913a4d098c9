package utils

import "github.com/rs/xid"

// NewID 生成 20 位可按时间排序的主键
func NewID() string { return xid.New().String() }
