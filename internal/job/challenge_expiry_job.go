package job

import (
	"Tasbih/internal/pkg/consts"
	"Tasbih/internal/pkg/logger"
	"Tasbih/internal/pkg/redis"
	"Tasbih/internal/service"
	"context"
	log "log/slog"
	"time"

	"github.com/google/uuid"
)

// ChallengeExpiryJob 每日扫描，已过截止时间的挑战下所有活跃进度置为 expired
type ChallengeExpiryJob struct {
	progressService service.ProgressService
}

func NewChallengeExpiryJob(progressService service.ProgressService) *ChallengeExpiryJob {
	return &ChallengeExpiryJob{
		progressService: progressService,
	}
}

func (s *ChallengeExpiryJob) Run() {
	traceID := "job-expiry-" + uuid.NewString()
	ctx := context.WithValue(context.Background(), logger.TraceIDKey, traceID)

	lockValue := traceID
	locked, err := redis.TryLock(ctx, consts.ChallengeExpiryLock, lockValue, 10*time.Minute, 0)
	if err == nil && !locked {
		return
	}
	if locked {
		defer redis.UnLock(ctx, consts.ChallengeExpiryLock, lockValue)
	}

	expired, err := s.progressService.ExpireEnded(ctx)
	if err != nil {
		log.ErrorContext(ctx, "expire ended challenges error", "err", err)
		return
	}
	if expired > 0 {
		log.InfoContext(ctx, "ChallengeExpiryJob done", "expired", expired)
	}
}
