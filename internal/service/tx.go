package service

import (
	"context"

	"gorm.io/gorm"
)

// transact 在事务中执行 fn，db 为空时（内存实现）退化为直接执行
func transact(ctx context.Context, db *gorm.DB, fn func(tx *gorm.DB) error) error {
	if db == nil {
		return fn(nil)
	}
	return db.WithContext(ctx).Transaction(fn)
}
