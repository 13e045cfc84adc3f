package mongo

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// 通知类型
const (
	NoticeChallengeCompleted int8 = 1 // 挑战达成
	NoticeLevelUp            int8 = 2 // 等级提升
)

// NoticeModel 挑战通知收件箱模型
type NoticeModel struct {
	ID           primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	ReceiverID   uint64             `bson:"receiver_id" json:"receiverId"`     // 消息接收者ID
	Type         int8               `bson:"type" json:"type"`                  // 通知类型
	ChallengeID  uint64             `bson:"challenge_id" json:"challengeId"`   // 关联挑战ID
	PointsEarned int64              `bson:"points_earned" json:"pointsEarned"` // 本次获得积分
	Payload      map[string]any     `bson:"payload" json:"payload"`            // 额外元数据 (如徽章图标快照)
	IsRead       bool               `bson:"is_read" json:"isRead"`             // 是否已读
	CreatedAt    time.Time          `bson:"created_at" json:"createdAt"`       // 创建时间
}
