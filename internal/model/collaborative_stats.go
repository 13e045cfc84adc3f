package model

import (
	"time"
)

// CollaborativeStats 协作挑战的全局共享计数器，所有写入必须走原子自增
type CollaborativeStats struct {
	ID                uint64    `gorm:"primaryKey"`
	ChallengeID       uint64    `gorm:"not null;uniqueIndex:idx_challenge"`
	TotalParticipants int64     `gorm:"not null;default:0"`
	TotalCount        int64     `gorm:"type:bigint;not null;default:0"`
	LastUpdatedAt     time.Time `gorm:"not null;autoUpdateTime"`
}

func (CollaborativeStats) TableName() string {
	return "collaborative_challenge_stats"
}
