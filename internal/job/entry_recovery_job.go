package job

import (
	"Tasbih/internal/api/config"
	"Tasbih/internal/pkg/consts"
	"Tasbih/internal/pkg/logger"
	"Tasbih/internal/pkg/redis"
	"Tasbih/internal/service"
	"context"
	log "log/slog"
	"time"

	"github.com/google/uuid"
)

// EntryRecoveryJob 重放落库但未生效的记诵条目。
// 提交路径在写入条目后崩溃时，条目停留在 applied=false，
// 超过宽限期后由该任务沿同一条生效管道补齐。
type EntryRecoveryJob struct {
	progressService service.ProgressService
}

func NewEntryRecoveryJob(progressService service.ProgressService) *EntryRecoveryJob {
	return &EntryRecoveryJob{
		progressService: progressService,
	}
}

func (s *EntryRecoveryJob) Run() {
	traceID := "job-recovery-" + uuid.NewString()
	ctx := context.WithValue(context.Background(), logger.TraceIDKey, traceID)

	lockValue := traceID
	locked, err := redis.TryLock(ctx, consts.EntryRecoveryLock, lockValue, 4*time.Minute, 0)
	if err == nil && !locked {
		return
	}
	if locked {
		defer redis.UnLock(ctx, consts.EntryRecoveryLock, lockValue)
	}

	grace := time.Duration(config.Cfg.Recovery.GraceMinutes) * time.Minute
	before := time.Now().Add(-grace)

	replayed, err := s.progressService.ReplayUnapplied(ctx, before, config.Cfg.Recovery.BatchSize)
	if err != nil {
		log.ErrorContext(ctx, "replay unapplied entries error", "err", err)
		return
	}
	if replayed > 0 {
		log.InfoContext(ctx, "EntryRecoveryJob done", "replayed", replayed)
	}
}
