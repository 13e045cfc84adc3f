package repository

import (
	"Tasbih/internal/model"
	"context"
	"errors"
	"time"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type ProgressRepo interface {
	WithTx(tx *gorm.DB) ProgressRepo
	// CreateIfAbsent 幂等创建进度行，返回是否本次新建。
	// created 标志用于 join 的首次加入判定，参与者计数只在 created 时递增。
	CreateIfAbsent(ctx context.Context, progress *model.ChallengeProgress) (bool, error)
	Get(ctx context.Context, userID, challengeID uint64) (*model.ChallengeProgress, error)
	// AddCount 原子自增 current_count，仅在 status=active 时生效
	AddCount(ctx context.Context, userID, challengeID uint64, delta int64) (bool, error)
	// MarkCompleted 达标转移 active→completed，返回 true 的调用恰好一次
	MarkCompleted(ctx context.Context, userID, challengeID uint64, now time.Time) (bool, error)
	MarkAbandoned(ctx context.Context, userID, challengeID uint64) (bool, error)
	ExpireByChallengeIDs(ctx context.Context, challengeIDs []uint64, now time.Time) (int64, error)
	ListByUserStatus(ctx context.Context, userID uint64, status model.ProgressStatus, page, pageSize int) ([]*model.ChallengeProgress, int64, error)
}

type progressRepoImpl struct {
	db *gorm.DB
}

func NewProgressRepo(db *gorm.DB) ProgressRepo {
	return &progressRepoImpl{db: db}
}

func (r *progressRepoImpl) WithTx(tx *gorm.DB) ProgressRepo {
	return &progressRepoImpl{db: tx}
}

func (r *progressRepoImpl) CreateIfAbsent(ctx context.Context, progress *model.ChallengeProgress) (bool, error) {
	result := r.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "user_id"}, {Name: "challenge_id"}},
		DoNothing: true,
	}).Create(progress)
	if result.Error != nil {
		return false, result.Error
	}
	return result.RowsAffected == 1, nil
}

func (r *progressRepoImpl) Get(ctx context.Context, userID, challengeID uint64) (*model.ChallengeProgress, error) {
	var progress model.ChallengeProgress
	err := r.db.WithContext(ctx).
		Where("user_id = ? AND challenge_id = ?", userID, challengeID).
		First(&progress).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &progress, nil
}

// AddCount 单条 UPDATE 内完成读改写，并发提交不会互相丢失
func (r *progressRepoImpl) AddCount(ctx context.Context, userID, challengeID uint64, delta int64) (bool, error) {
	result := r.db.WithContext(ctx).Model(&model.ChallengeProgress{}).
		Where("user_id = ? AND challenge_id = ? AND status = ?", userID, challengeID, model.ProgressActive).
		Updates(map[string]interface{}{
			"current_count":   gorm.Expr("current_count + ?", delta),
			"last_updated_at": time.Now(),
		})
	if result.Error != nil {
		return false, result.Error
	}
	return result.RowsAffected == 1, nil
}

func (r *progressRepoImpl) MarkCompleted(ctx context.Context, userID, challengeID uint64, now time.Time) (bool, error) {
	result := r.db.WithContext(ctx).Model(&model.ChallengeProgress{}).
		Where("user_id = ? AND challenge_id = ? AND status = ? AND current_count >= target_count",
			userID, challengeID, model.ProgressActive).
		Updates(map[string]interface{}{
			"status":       model.ProgressCompleted,
			"completed_at": now,
		})
	if result.Error != nil {
		return false, result.Error
	}
	return result.RowsAffected == 1, nil
}

func (r *progressRepoImpl) MarkAbandoned(ctx context.Context, userID, challengeID uint64) (bool, error) {
	result := r.db.WithContext(ctx).Model(&model.ChallengeProgress{}).
		Where("user_id = ? AND challenge_id = ? AND status = ?", userID, challengeID, model.ProgressActive).
		Update("status", model.ProgressAbandoned)
	if result.Error != nil {
		return false, result.Error
	}
	return result.RowsAffected == 1, nil
}

// ExpireByChallengeIDs 批量过期指定挑战下仍活跃的进度行
func (r *progressRepoImpl) ExpireByChallengeIDs(ctx context.Context, challengeIDs []uint64, now time.Time) (int64, error) {
	if len(challengeIDs) == 0 {
		return 0, nil
	}
	result := r.db.WithContext(ctx).Model(&model.ChallengeProgress{}).
		Where("challenge_id IN ? AND status = ?", challengeIDs, model.ProgressActive).
		Updates(map[string]interface{}{
			"status":          model.ProgressExpired,
			"last_updated_at": now,
		})
	return result.RowsAffected, result.Error
}

func (r *progressRepoImpl) ListByUserStatus(ctx context.Context, userID uint64, status model.ProgressStatus, page, pageSize int) ([]*model.ChallengeProgress, int64, error) {
	tx := r.db.WithContext(ctx).Model(&model.ChallengeProgress{}).
		Where("user_id = ? AND status = ?", userID, status)

	var total int64
	if err := tx.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	order := "started_at DESC"
	if status == model.ProgressCompleted {
		order = "completed_at DESC"
	}

	list := make([]*model.ChallengeProgress, 0)
	err := tx.Order(order).
		Offset((page - 1) * pageSize).
		Limit(pageSize).
		Find(&list).Error
	if err != nil {
		return nil, 0, err
	}
	return list, total, nil
}
