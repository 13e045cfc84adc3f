package dto

// SubmitDhikrDTO 记诵提交
type SubmitDhikrDTO struct {
	Count    int64  `json:"count" binding:"required" validate:"min=1"`
	DeviceID string `json:"device_id" validate:"max=64"`
}

// ProgressDTO 单用户挑战进度
type ProgressDTO struct {
	ChallengeID  uint64 `json:"challenge_id"`
	TargetCount  int64  `json:"target_count"`
	CurrentCount int64  `json:"current_count"`
	Status       string `json:"status"`
	StartedAt    string `json:"started_at"`
	CompletedAt  string `json:"completed_at,omitempty"`
}

// ProgressPageDTO 进度分页返回
type ProgressPageDTO struct {
	List     []*ProgressDTO `json:"list"`
	Total    int64          `json:"total"`
	Page     int            `json:"page"`
	PageSize int            `json:"page_size"`
}

// SubmitResultDTO 提交返回：最新进度加本次是否触发完成
type SubmitResultDTO struct {
	ChallengeID  uint64 `json:"challenge_id"`
	CurrentCount int64  `json:"current_count"`
	TargetCount  int64  `json:"target_count"`
	Status       string `json:"status"`
	Completed    bool   `json:"completed"`
	PointsEarned int64  `json:"points_earned"`
}

// CollaborativeStatsDTO 协作挑战共享计数
type CollaborativeStatsDTO struct {
	ChallengeID       uint64 `json:"challenge_id"`
	TotalCount        int64  `json:"total_count"`
	TotalParticipants int64  `json:"total_participants"`
}
