package model

import (
	"time"
)

type ProgressStatus string

const (
	ProgressActive    ProgressStatus = "active"
	ProgressCompleted ProgressStatus = "completed"
	ProgressExpired   ProgressStatus = "expired"
	ProgressAbandoned ProgressStatus = "abandoned"
)

// ChallengeProgress 每个用户在每个挑战下的唯一进度行
// target_count 在加入时从挑战定义拷贝，此后不再变化
type ChallengeProgress struct {
	ID            uint64         `gorm:"primaryKey"`
	UserID        uint64         `gorm:"not null;uniqueIndex:idx_user_challenge"`
	ChallengeID   uint64         `gorm:"not null;uniqueIndex:idx_user_challenge"`
	CurrentCount  int64          `gorm:"not null;default:0"`
	TargetCount   int64          `gorm:"not null"`
	Status        ProgressStatus `gorm:"type:varchar(20);not null;default:'active';index:idx_status"`
	StartedAt     time.Time      `gorm:"not null;autoCreateTime"`
	CompletedAt   *time.Time     `gorm:"type:datetime"`
	LastUpdatedAt time.Time      `gorm:"not null;autoUpdateTime"`
}

func (ChallengeProgress) TableName() string {
	return "user_challenge_progress"
}
