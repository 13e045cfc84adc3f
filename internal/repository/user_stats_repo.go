package repository

import (
	"Tasbih/internal/model"
	"context"
	"errors"
	"time"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type UserStatsRepo interface {
	WithTx(tx *gorm.DB) UserStatsRepo
	EnsureRow(ctx context.Context, userID uint64) error
	Get(ctx context.Context, userID uint64) (*model.UserStats, error)
	IncrDhikrCount(ctx context.Context, userID uint64, count int64) error
	IncrDuasRead(ctx context.Context, userID uint64) error
	IncrChallengesJoined(ctx context.Context, userID uint64) error
	// IncrCompletedAndPoints 同一条 UPDATE 内完成积分累加与等级重算，等级不会与积分漂移
	IncrCompletedAndPoints(ctx context.Context, userID uint64, points int64) error
	// UpdateStreak 带日界守卫的连续天数写入，同一天只有第一次调用生效
	UpdateStreak(ctx context.Context, userID uint64, newStreak int, today time.Time) (bool, error)
	TopByPoints(ctx context.Context, limit int) ([]*model.UserStats, error)
}

type userStatsRepoImpl struct {
	db *gorm.DB
}

func NewUserStatsRepo(db *gorm.DB) UserStatsRepo {
	return &userStatsRepoImpl{db: db}
}

func (r *userStatsRepoImpl) WithTx(tx *gorm.DB) UserStatsRepo {
	return &userStatsRepoImpl{db: tx}
}

func (r *userStatsRepoImpl) EnsureRow(ctx context.Context, userID uint64) error {
	return r.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "user_id"}},
		DoNothing: true,
	}).Create(&model.UserStats{UserID: userID, Level: 1}).Error
}

func (r *userStatsRepoImpl) Get(ctx context.Context, userID uint64) (*model.UserStats, error) {
	var stats model.UserStats
	err := r.db.WithContext(ctx).Where("user_id = ?", userID).First(&stats).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &stats, nil
}

func (r *userStatsRepoImpl) IncrDhikrCount(ctx context.Context, userID uint64, count int64) error {
	return r.db.WithContext(ctx).Model(&model.UserStats{}).
		Where("user_id = ?", userID).
		Update("total_dhikr_count", gorm.Expr("total_dhikr_count + ?", count)).Error
}

func (r *userStatsRepoImpl) IncrDuasRead(ctx context.Context, userID uint64) error {
	return r.db.WithContext(ctx).Model(&model.UserStats{}).
		Where("user_id = ?", userID).
		Update("total_duas_read", gorm.Expr("total_duas_read + 1")).Error
}

func (r *userStatsRepoImpl) IncrChallengesJoined(ctx context.Context, userID uint64) error {
	return r.db.WithContext(ctx).Model(&model.UserStats{}).
		Where("user_id = ?", userID).
		Update("total_challenges_joined", gorm.Expr("total_challenges_joined + 1")).Error
}

func (r *userStatsRepoImpl) IncrCompletedAndPoints(ctx context.Context, userID uint64, points int64) error {
	// MySQL 的 SET 从左到右求值，level 必须排在 total_points 累加之后，
	// 这里用显式 SQL 固定赋值顺序
	return r.db.WithContext(ctx).Exec(
		"UPDATE user_stats SET total_challenges_completed = total_challenges_completed + 1, "+
			"total_points = total_points + ?, level = FLOOR(total_points / 100) + 1 "+
			"WHERE user_id = ?",
		points, userID,
	).Error
}

func (r *userStatsRepoImpl) UpdateStreak(ctx context.Context, userID uint64, newStreak int, today time.Time) (bool, error) {
	result := r.db.WithContext(ctx).Model(&model.UserStats{}).
		Where("user_id = ? AND (last_activity_date IS NULL OR last_activity_date < ?)", userID, today).
		Updates(map[string]interface{}{
			"current_streak_days": newStreak,
			"longest_streak_days": gorm.Expr("GREATEST(longest_streak_days, ?)", newStreak),
			"last_activity_date":  today,
		})
	if result.Error != nil {
		return false, result.Error
	}
	return result.RowsAffected == 1, nil
}

func (r *userStatsRepoImpl) TopByPoints(ctx context.Context, limit int) ([]*model.UserStats, error) {
	list := make([]*model.UserStats, 0)
	err := r.db.WithContext(ctx).
		Order("total_points DESC").
		Limit(limit).
		Find(&list).Error
	if err != nil {
		return nil, err
	}
	return list, nil
}
