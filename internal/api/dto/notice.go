package dto

// NoticeDTO 完成通知收件箱条目
type NoticeDTO struct {
	ID           string         `json:"id"`
	Type         int            `json:"type"`
	ChallengeID  uint64         `json:"challenge_id,omitempty"`
	PointsEarned int64          `json:"points_earned,omitempty"`
	Payload      map[string]any `json:"payload,omitempty"`
	IsRead       bool           `json:"is_read"`
	CreatedAt    string         `json:"created_at"`
}
