package model

import (
	"time"
)

// UserStats 用户终身统计，level 永远由 total_points 推导，不单独写入
type UserStats struct {
	ID                       uint64     `gorm:"primaryKey"`
	UserID                   uint64     `gorm:"not null;uniqueIndex:idx_user"`
	TotalDuasRead            int64      `gorm:"not null;default:0"`
	TotalDhikrCount          int64      `gorm:"type:bigint;not null;default:0"`
	TotalChallengesCompleted int64      `gorm:"not null;default:0"`
	TotalChallengesJoined    int64      `gorm:"not null;default:0"`
	CurrentStreakDays        int        `gorm:"not null;default:0"`
	LongestStreakDays        int        `gorm:"not null;default:0"`
	LastActivityDate         *time.Time `gorm:"type:date"`
	TotalPoints              int64      `gorm:"not null;default:0"`
	Level                    int        `gorm:"not null;default:1"`
	CreatedAt                time.Time
	UpdatedAt                time.Time
}

func (UserStats) TableName() string {
	return "user_stats"
}
