package model

import (
	"time"
)

type ChallengeType string

const (
	ChallengeTypeSingular      ChallengeType = "singular"
	ChallengeTypeCollaborative ChallengeType = "collaborative"
)

type ChallengeDifficulty string

const (
	DifficultyEasy   ChallengeDifficulty = "easy"
	DifficultyMedium ChallengeDifficulty = "medium"
	DifficultyHard   ChallengeDifficulty = "hard"
)

type RewardAssignment string

const (
	RewardPerTap             RewardAssignment = "per_tap"
	RewardOnChallengeDone    RewardAssignment = "on_challenge_complete"
)

type Challenge struct {
	ID              uint64              `gorm:"primaryKey"`
	Title           string              `gorm:"type:varchar(100);not null"`
	Description     string              `gorm:"type:text"`
	Type            ChallengeType       `gorm:"type:varchar(20);not null;index:idx_type"`
	Difficulty      ChallengeDifficulty `gorm:"type:varchar(10);not null;default:'medium'"`
	TargetCount     int64               `gorm:"not null"`
	DurationDays    *int                `gorm:"type:int"`
	ArabicText      string              `gorm:"type:text;not null"`
	Transliteration string              `gorm:"type:text"`
	RewardPoints    int64               `gorm:"not null;default:0"`
	RewardAssign    RewardAssignment    `gorm:"type:varchar(30);not null;default:'on_challenge_complete';column:reward_assignment"`
	BadgeIconURL    string              `gorm:"type:text"`
	StartDate       *time.Time          `gorm:"type:datetime"`
	EndDate         *time.Time          `gorm:"type:datetime"`
	IsActive        bool                `gorm:"type:tinyint(1);not null;default:1"`
	DisplayOrder    int                 `gorm:"not null;default:0"`
	CreatedAt       time.Time
	UpdatedAt       time.Time
}

func (Challenge) TableName() string {
	return "dhikr_challenges"
}
