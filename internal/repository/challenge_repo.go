package repository

import (
	"Tasbih/internal/model"
	"context"
	"errors"
	"time"

	"gorm.io/gorm"
)

type ChallengeQuery struct {
	Type       model.ChallengeType
	Difficulty model.ChallengeDifficulty
	OnlyActive bool
	Page       int
	PageSize   int
}

type ChallengeRepo interface {
	Create(ctx context.Context, challenge *model.Challenge) error
	GetByID(ctx context.Context, id uint64) (*model.Challenge, error)
	List(ctx context.Context, query ChallengeQuery) ([]*model.Challenge, int64, error)
	GetEndedChallengeIDs(ctx context.Context, now time.Time) ([]uint64, error)
}

type challengeRepoImpl struct {
	db *gorm.DB
}

func NewChallengeRepo(db *gorm.DB) ChallengeRepo {
	return &challengeRepoImpl{db: db}
}

func (r *challengeRepoImpl) Create(ctx context.Context, challenge *model.Challenge) error {
	return r.db.WithContext(ctx).Create(challenge).Error
}

// GetByID 不存在时返回 nil 而非错误，由上层映射为业务错误
func (r *challengeRepoImpl) GetByID(ctx context.Context, id uint64) (*model.Challenge, error) {
	var challenge model.Challenge
	err := r.db.WithContext(ctx).First(&challenge, id).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &challenge, nil
}

// List 按展示顺序和创建时间分页查询挑战目录
func (r *challengeRepoImpl) List(ctx context.Context, query ChallengeQuery) ([]*model.Challenge, int64, error) {
	tx := r.db.WithContext(ctx).Model(&model.Challenge{})

	if query.Type != "" {
		tx = tx.Where("type = ?", query.Type)
	}
	if query.Difficulty != "" {
		tx = tx.Where("difficulty = ?", query.Difficulty)
	}
	if query.OnlyActive {
		tx = tx.Where("is_active = ?", true)
	}

	var total int64
	if err := tx.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	challenges := make([]*model.Challenge, 0)
	err := tx.Order("display_order ASC").Order("created_at DESC").
		Offset((query.Page - 1) * query.PageSize).
		Limit(query.PageSize).
		Find(&challenges).Error
	if err != nil {
		return nil, 0, err
	}
	return challenges, total, nil
}

// GetEndedChallengeIDs 获取已过截止时间的挑战ID，供过期扫描使用
func (r *challengeRepoImpl) GetEndedChallengeIDs(ctx context.Context, now time.Time) ([]uint64, error) {
	ids := make([]uint64, 0)
	err := r.db.WithContext(ctx).Model(&model.Challenge{}).
		Where("end_date IS NOT NULL AND end_date < ?", now).
		Pluck("id", &ids).Error
	if err != nil {
		return nil, err
	}
	return ids, nil
}
