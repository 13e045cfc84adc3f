package model

import (
	"time"
)

// DailyActivity 每用户每天一行，日内只做累加，跨天后不再回填
type DailyActivity struct {
	ID                  uint64    `gorm:"primaryKey"`
	UserID              uint64    `gorm:"not null;uniqueIndex:idx_user_date"`
	ActivityDate        time.Time `gorm:"type:date;not null;uniqueIndex:idx_user_date"`
	DuasRead            int       `gorm:"not null;default:0"`
	DhikrCount          int64     `gorm:"not null;default:0"`
	ChallengesCompleted int       `gorm:"not null;default:0"`
	CreatedAt           time.Time
}

func (DailyActivity) TableName() string {
	return "user_daily_activity"
}
