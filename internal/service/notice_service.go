package service

import (
	"Tasbih/internal/api/dto"
	"Tasbih/internal/pkg/mongo"
	"context"
	log "log/slog"
)

type NoticeService interface {
	GetNoticeList(ctx context.Context, userID uint64, page, pageSize int) ([]*dto.NoticeDTO, error)
	MarkRead(ctx context.Context, userID uint64, msgID string) error
	GetUnreadCount(ctx context.Context, userID uint64) (int64, error)
}

type noticeServiceImpl struct {
	noticeRepo mongo.NoticeRepo
}

func NewNoticeService(noticeRepo mongo.NoticeRepo) NoticeService {
	return &noticeServiceImpl{
		noticeRepo: noticeRepo,
	}
}

func (s *noticeServiceImpl) GetNoticeList(ctx context.Context, userID uint64, page, pageSize int) ([]*dto.NoticeDTO, error) {
	if page < 1 {
		page = 1
	}
	if pageSize < 1 || pageSize > 50 {
		pageSize = 10
	}
	offset := int64((page - 1) * pageSize)

	list, err := s.noticeRepo.GetNoticeList(ctx, userID, int64(pageSize), offset)
	if err != nil {
		log.ErrorContext(ctx, "get notice list failed", "user_id", userID, "err", err)
		return nil, ErrStorageUnavailable
	}

	out := make([]*dto.NoticeDTO, 0, len(list))
	for _, m := range list {
		out = append(out, &dto.NoticeDTO{
			ID:           m.ID.Hex(),
			Type:         int(m.Type),
			ChallengeID:  m.ChallengeID,
			PointsEarned: m.PointsEarned,
			Payload:      m.Payload,
			IsRead:       m.IsRead,
			CreatedAt:    m.CreatedAt.Format("2006-01-02 15:04:05"),
		})
	}
	return out, nil
}

func (s *noticeServiceImpl) MarkRead(ctx context.Context, userID uint64, msgID string) error {
	if err := s.noticeRepo.MarkAsRead(ctx, userID, msgID); err != nil {
		return ErrParamInvalid
	}
	return nil
}

func (s *noticeServiceImpl) GetUnreadCount(ctx context.Context, userID uint64) (int64, error) {
	count, err := s.noticeRepo.GetUnreadCount(ctx, userID)
	if err != nil {
		log.ErrorContext(ctx, "get unread count failed", "user_id", userID, "err", err)
		return 0, ErrStorageUnavailable
	}
	return count, nil
}
