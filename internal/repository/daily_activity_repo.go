package repository

import (
	"Tasbih/internal/model"
	"context"
	"errors"
	"time"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// DailyDelta 单次提交对当日活动行的增量
type DailyDelta struct {
	DuasRead            int
	DhikrCount          int64
	ChallengesCompleted int
}

type DailyActivityRepo interface {
	WithTx(tx *gorm.DB) DailyActivityRepo
	// AddDelta upsert 当日行并原子累加各计数，跨天后旧行不再可写
	AddDelta(ctx context.Context, userID uint64, date time.Time, delta DailyDelta) error
	GetByDate(ctx context.Context, userID uint64, date time.Time) (*model.DailyActivity, error)
	ListRecent(ctx context.Context, userID uint64, days int) ([]*model.DailyActivity, error)
}

type dailyActivityRepoImpl struct {
	db *gorm.DB
}

func NewDailyActivityRepo(db *gorm.DB) DailyActivityRepo {
	return &dailyActivityRepoImpl{db: db}
}

func (r *dailyActivityRepoImpl) WithTx(tx *gorm.DB) DailyActivityRepo {
	return &dailyActivityRepoImpl{db: tx}
}

func (r *dailyActivityRepoImpl) AddDelta(ctx context.Context, userID uint64, date time.Time, delta DailyDelta) error {
	row := &model.DailyActivity{
		UserID:              userID,
		ActivityDate:        date,
		DuasRead:            delta.DuasRead,
		DhikrCount:          delta.DhikrCount,
		ChallengesCompleted: delta.ChallengesCompleted,
	}
	return r.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns: []clause.Column{{Name: "user_id"}, {Name: "activity_date"}},
		DoUpdates: clause.Assignments(map[string]interface{}{
			"duas_read":            gorm.Expr("duas_read + VALUES(duas_read)"),
			"dhikr_count":          gorm.Expr("dhikr_count + VALUES(dhikr_count)"),
			"challenges_completed": gorm.Expr("challenges_completed + VALUES(challenges_completed)"),
		}),
	}).Create(row).Error
}

func (r *dailyActivityRepoImpl) GetByDate(ctx context.Context, userID uint64, date time.Time) (*model.DailyActivity, error) {
	var activity model.DailyActivity
	err := r.db.WithContext(ctx).
		Where("user_id = ? AND activity_date = ?", userID, date).
		First(&activity).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &activity, nil
}

// ListRecent 最近 N 天的活动行，时间倒序
func (r *dailyActivityRepoImpl) ListRecent(ctx context.Context, userID uint64, days int) ([]*model.DailyActivity, error) {
	list := make([]*model.DailyActivity, 0)
	err := r.db.WithContext(ctx).
		Where("user_id = ?", userID).
		Order("activity_date DESC").
		Limit(days).
		Find(&list).Error
	if err != nil {
		return nil, err
	}
	return list, nil
}
