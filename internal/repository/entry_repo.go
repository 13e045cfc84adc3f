package repository

import (
	"Tasbih/internal/model"
	"context"
	"errors"
	"time"

	"gorm.io/gorm"
)

type DhikrEntryRepo interface {
	WithTx(tx *gorm.DB) DhikrEntryRepo
	Create(ctx context.Context, entry *model.DhikrEntry) error
	GetByID(ctx context.Context, id uint64) (*model.DhikrEntry, error)
	// Claim 将条目标记为已应用，只有第一个调用者成功。
	// 返回 false 表示条目已被应用过（或不存在），调用方不得重复生效其影响。
	Claim(ctx context.Context, id uint64) (bool, error)
	MarkRejected(ctx context.Context, id uint64) error
	ListUnapplied(ctx context.Context, before time.Time, limit int) ([]*model.DhikrEntry, error)
}

type dhikrEntryRepoImpl struct {
	db *gorm.DB
}

func NewDhikrEntryRepo(db *gorm.DB) DhikrEntryRepo {
	return &dhikrEntryRepoImpl{db: db}
}

func (r *dhikrEntryRepoImpl) WithTx(tx *gorm.DB) DhikrEntryRepo {
	return &dhikrEntryRepoImpl{db: tx}
}

// Create 追加写入一条计数事实，此后除 applied/rejected 标记外不再修改
func (r *dhikrEntryRepoImpl) Create(ctx context.Context, entry *model.DhikrEntry) error {
	return r.db.WithContext(ctx).Create(entry).Error
}

func (r *dhikrEntryRepoImpl) GetByID(ctx context.Context, id uint64) (*model.DhikrEntry, error) {
	var entry model.DhikrEntry
	err := r.db.WithContext(ctx).First(&entry, id).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &entry, nil
}

func (r *dhikrEntryRepoImpl) Claim(ctx context.Context, id uint64) (bool, error) {
	result := r.db.WithContext(ctx).Model(&model.DhikrEntry{}).
		Where("id = ? AND applied = ?", id, false).
		Update("applied", true)
	if result.Error != nil {
		return false, result.Error
	}
	return result.RowsAffected == 1, nil
}

// MarkRejected 永久拒绝，恢复扫描不再重试该条目
func (r *dhikrEntryRepoImpl) MarkRejected(ctx context.Context, id uint64) error {
	return r.db.WithContext(ctx).Model(&model.DhikrEntry{}).
		Where("id = ?", id).
		Update("rejected", true).Error
}

// ListUnapplied 获取超过宽限期仍未生效且未被拒绝的条目
func (r *dhikrEntryRepoImpl) ListUnapplied(ctx context.Context, before time.Time, limit int) ([]*model.DhikrEntry, error) {
	entries := make([]*model.DhikrEntry, 0)
	err := r.db.WithContext(ctx).
		Where("applied = ? AND rejected = ? AND recorded_at < ?", false, false, before).
		Order("id ASC").
		Limit(limit).
		Find(&entries).Error
	if err != nil {
		return nil, err
	}
	return entries, nil
}
