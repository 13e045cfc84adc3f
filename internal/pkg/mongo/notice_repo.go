package mongo

import (
	"context"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

type NoticeRepo interface {
	CreateNotice(ctx context.Context, msg *NoticeModel) error
	GetNoticeList(ctx context.Context, userID uint64, limit, offset int64) ([]*NoticeModel, error)
	MarkAsRead(ctx context.Context, userID uint64, msgID string) error
	GetUnreadCount(ctx context.Context, userID uint64) (int64, error)
}

type noticeRepoImpl struct {
	col *mongo.Collection
}

func NewNoticeRepo(db *mongo.Database) NoticeRepo {
	return &noticeRepoImpl{
		col: db.Collection("challenge_notices"),
	}
}

// CreateNotice 插入新通知
func (s *noticeRepoImpl) CreateNotice(ctx context.Context, msg *NoticeModel) error {
	_, err := s.col.InsertOne(ctx, msg)
	return err
}

// GetNoticeList 分页获取用户的通知列表 (按时间倒序)
func (s *noticeRepoImpl) GetNoticeList(ctx context.Context, userID uint64, limit, offset int64) ([]*NoticeModel, error) {
	filter := bson.M{"receiver_id": userID}
	opts := options.Find().
		SetSort(bson.D{{Key: "created_at", Value: -1}}).
		SetLimit(limit).
		SetSkip(offset)

	cursor, err := s.col.Find(ctx, filter, opts)
	if err != nil {
		return nil, err
	}
	defer func() {
		_ = cursor.Close(ctx)
	}()

	var list []*NoticeModel
	if err = cursor.All(ctx, &list); err != nil {
		return nil, err
	}
	return list, nil
}

// MarkAsRead 标记单条通知为已读
func (s *noticeRepoImpl) MarkAsRead(ctx context.Context, userID uint64, msgID string) error {
	objectID, err := primitive.ObjectIDFromHex(msgID)
	if err != nil {
		return mongo.ErrInvalidIndexValue
	}
	filter := bson.M{"_id": objectID, "receiver_id": userID}
	update := bson.M{"$set": bson.M{"is_read": true}}
	result, err := s.col.UpdateOne(ctx, filter, update)
	if err != nil {
		return err
	}
	if result.MatchedCount == 0 {
		return mongo.ErrNoDocuments
	}
	return nil
}

// GetUnreadCount 获取用户的未读通知总数
func (s *noticeRepoImpl) GetUnreadCount(ctx context.Context, userID uint64) (int64, error) {
	filter := bson.M{"receiver_id": userID, "is_read": false}
	return s.col.CountDocuments(ctx, filter)
}
