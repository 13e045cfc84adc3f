package model

import (
	"time"
)

// DhikrEntry 一次计数提交的不可变事实，只追加不修改
// applied 在下游全部生效后置位一次；rejected 标记永久拒绝的条目，恢复任务跳过
type DhikrEntry struct {
	ID          uint64    `gorm:"primaryKey"`
	UserID      uint64    `gorm:"not null;index:idx_user"`
	ChallengeID *uint64   `gorm:"index:idx_challenge"`
	Count       int64     `gorm:"not null"`
	DeviceID    *string   `gorm:"type:varchar(255)"`
	RecordedAt  time.Time `gorm:"not null"`
	Applied     bool      `gorm:"type:tinyint(1);not null;default:0;index:idx_applied"`
	Rejected    bool      `gorm:"type:tinyint(1);not null;default:0"`
	CreatedAt   time.Time
}

func (DhikrEntry) TableName() string {
	return "user_dhikr_entries"
}
