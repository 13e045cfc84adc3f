package dto

// UserStatsDTO 用户累计统计
type UserStatsDTO struct {
	UserID                   uint64 `json:"user_id"`
	TotalDhikrCount          int64  `json:"total_dhikr_count"`
	TotalDuasRead            int64  `json:"total_duas_read"`
	TotalChallengesJoined    int64  `json:"total_challenges_joined"`
	TotalChallengesCompleted int64  `json:"total_challenges_completed"`
	TotalPoints              int64  `json:"total_points"`
	Level                    int    `json:"level"`
	CurrentStreakDays        int    `json:"current_streak_days"`
	LongestStreakDays        int    `json:"longest_streak_days"`
	LastActivityDate         string `json:"last_activity_date,omitempty"`
}

// DailyActivityDTO 单日活动聚合点
type DailyActivityDTO struct {
	Date                string `json:"date"` // 格式化后的日期：2026-01-07
	DuasRead            int    `json:"duas_read"`
	DhikrCount          int64  `json:"dhikr_count"`
	ChallengesCompleted int    `json:"challenges_completed"`
}

// ActivityTrendDTO 活动趋势返回包装
type ActivityTrendDTO struct {
	UserID uint64              `json:"user_id"`
	Days   int                 `json:"days"`
	List   []*DailyActivityDTO `json:"list"`
}

// LeaderboardEntryDTO 积分榜条目
type LeaderboardEntryDTO struct {
	Rank   int    `json:"rank"`
	UserID uint64 `json:"user_id"`
	Points int64  `json:"points"`
}
