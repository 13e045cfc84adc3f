package dto

// ChallengeCreateDTO 挑战目录项 - 新增
type ChallengeCreateDTO struct {
	Title           string `json:"title" binding:"required" validate:"min=1,max=100"`
	Description     string `json:"description" validate:"max=2000"`
	Type            string `json:"type" binding:"required" validate:"oneof=singular collaborative"`
	Difficulty      string `json:"difficulty" validate:"omitempty,oneof=easy medium hard"`
	TargetCount     int64  `json:"target_count" binding:"required" validate:"min=1"`
	DurationDays    *int   `json:"duration_days" validate:"omitempty,min=1"`
	ArabicText      string `json:"arabic_text" binding:"required"`
	Transliteration string `json:"transliteration"`
	RewardPoints    int64  `json:"reward_points" validate:"min=0"`
	RewardAssign    string `json:"reward_assignment" validate:"omitempty,oneof=per_tap on_challenge_complete"`
	BadgeIconURL    string `json:"badge_icon_url" validate:"max=512"`
	StartDate       string `json:"start_date"`
	EndDate         string `json:"end_date"`
	DisplayOrder    int    `json:"display_order"`
}

// ChallengeQueryDTO 挑战目录 - 查询条件
type ChallengeQueryDTO struct {
	Type            string `form:"type" validate:"omitempty,oneof=singular collaborative"`
	Difficulty      string `form:"difficulty" validate:"omitempty,oneof=easy medium hard"`
	IncludeInactive bool   `form:"include_inactive"`
	Page            int    `form:"page"`
	PageSize        int    `form:"page_size"`
}

// ChallengeDTO 挑战目录项
type ChallengeDTO struct {
	ID              uint64 `json:"id"`
	Title           string `json:"title"`
	Description     string `json:"description"`
	Type            string `json:"type"`
	Difficulty      string `json:"difficulty"`
	TargetCount     int64  `json:"target_count"`
	DurationDays    *int   `json:"duration_days,omitempty"`
	ArabicText      string `json:"arabic_text"`
	Transliteration string `json:"transliteration"`
	RewardPoints    int64  `json:"reward_points"`
	RewardAssign    string `json:"reward_assignment"`
	BadgeIconURL    string `json:"badge_icon_url"`
	IsActive        bool   `json:"is_active"`
	DisplayOrder    int    `json:"display_order"`
}

// ChallengePageDTO 挑战目录分页返回
type ChallengePageDTO struct {
	List     []*ChallengeDTO `json:"list"`
	Total    int64           `json:"total"`
	Page     int             `json:"page"`
	PageSize int             `json:"page_size"`
}
