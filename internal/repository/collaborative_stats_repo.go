package repository

import (
	"Tasbih/internal/model"
	"context"
	"errors"
	"time"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type CollaborativeStatsRepo interface {
	WithTx(tx *gorm.DB) CollaborativeStatsRepo
	// EnsureRow 幂等创建零值计数行，首次加入或首次提交时惰性触发
	EnsureRow(ctx context.Context, challengeID uint64) error
	// IncrementParticipants 每个新加入用户恰好调用一次
	IncrementParticipants(ctx context.Context, challengeID uint64) error
	// IncrementCount 纯原子自增，最高争用路径，禁止读改写
	IncrementCount(ctx context.Context, challengeID uint64, delta int64) error
	Get(ctx context.Context, challengeID uint64) (*model.CollaborativeStats, error)
}

type collaborativeStatsRepoImpl struct {
	db *gorm.DB
}

func NewCollaborativeStatsRepo(db *gorm.DB) CollaborativeStatsRepo {
	return &collaborativeStatsRepoImpl{db: db}
}

func (r *collaborativeStatsRepoImpl) WithTx(tx *gorm.DB) CollaborativeStatsRepo {
	return &collaborativeStatsRepoImpl{db: tx}
}

func (r *collaborativeStatsRepoImpl) EnsureRow(ctx context.Context, challengeID uint64) error {
	return r.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "challenge_id"}},
		DoNothing: true,
	}).Create(&model.CollaborativeStats{ChallengeID: challengeID}).Error
}

func (r *collaborativeStatsRepoImpl) IncrementParticipants(ctx context.Context, challengeID uint64) error {
	return r.db.WithContext(ctx).Model(&model.CollaborativeStats{}).
		Where("challenge_id = ?", challengeID).
		Updates(map[string]interface{}{
			"total_participants": gorm.Expr("total_participants + 1"),
			"last_updated_at":    time.Now(),
		}).Error
}

func (r *collaborativeStatsRepoImpl) IncrementCount(ctx context.Context, challengeID uint64, delta int64) error {
	return r.db.WithContext(ctx).Model(&model.CollaborativeStats{}).
		Where("challenge_id = ?", challengeID).
		Updates(map[string]interface{}{
			"total_count":     gorm.Expr("total_count + ?", delta),
			"last_updated_at": time.Now(),
		}).Error
}

func (r *collaborativeStatsRepoImpl) Get(ctx context.Context, challengeID uint64) (*model.CollaborativeStats, error) {
	var stats model.CollaborativeStats
	err := r.db.WithContext(ctx).
		Where("challenge_id = ?", challengeID).
		First(&stats).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &stats, nil
}
