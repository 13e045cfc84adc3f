package service

import (
	"Tasbih/internal/api/dto"
	"Tasbih/internal/model"
	"Tasbih/internal/pkg/consts"
	"Tasbih/internal/pkg/kafka"
	"Tasbih/internal/pkg/mongo"
	"Tasbih/internal/pkg/redis"
	"Tasbih/internal/repository"
	"context"
	"errors"
	log "log/slog"
	"strconv"
	"time"

	"github.com/goccy/go-json"
	"github.com/jinzhu/copier"
	"gorm.io/gorm"
)

// errEntryAlreadyApplied 条目已被其他执行者应用，重放时按成功跳过
var errEntryAlreadyApplied = errors.New("entry already applied")

const collabStatsCacheExpiration = 10 * time.Second

// SubmitResult 单次提交的结果
type SubmitResult struct {
	Progress     *model.ChallengeProgress
	Completed    bool
	PointsEarned int64
}

// EventPublisher 管道提交后的事件出口，发送失败不影响主流程
type EventPublisher interface {
	PublishEntryApplied(evt *kafka.EntryAppliedEvent) error
}

type ProgressService interface {
	Join(ctx context.Context, userID, challengeID uint64) (*model.ChallengeProgress, error)
	SubmitDhikr(ctx context.Context, userID, challengeID uint64, count int64, deviceID string) (*SubmitResult, error)
	Abandon(ctx context.Context, userID, challengeID uint64) error
	GetProgress(ctx context.Context, userID, challengeID uint64) (*model.ChallengeProgress, error)
	GetActiveChallenges(ctx context.Context, userID uint64) ([]*dto.ProgressDTO, error)
	GetCompletedChallenges(ctx context.Context, userID uint64, page, pageSize int) (*dto.ProgressPageDTO, error)
	GetCollaborativeStats(ctx context.Context, challengeID uint64) (*model.CollaborativeStats, error)
	// ReplayUnapplied 恢复扫描：重放落库但未生效的条目，逐条 exactly-once
	ReplayUnapplied(ctx context.Context, before time.Time, limit int) (int, error)
	// ExpireEnded 将已过截止时间的挑战下所有活跃进度置为 expired
	ExpireEnded(ctx context.Context) (int64, error)
}

type progressServiceImpl struct {
	db            *gorm.DB
	challengeSvc  ChallengeService
	progressRepo  repository.ProgressRepo
	entryRepo     repository.DhikrEntryRepo
	collabRepo    repository.CollaborativeStatsRepo
	statsRepo     repository.UserStatsRepo
	dailyRepo     repository.DailyActivityRepo
	challengeRepo repository.ChallengeRepo
	publisher     EventPublisher
	notices       mongo.NoticeRepo
}

func NewProgressService(
	db *gorm.DB,
	challengeSvc ChallengeService,
	progressRepo repository.ProgressRepo,
	entryRepo repository.DhikrEntryRepo,
	collabRepo repository.CollaborativeStatsRepo,
	statsRepo repository.UserStatsRepo,
	dailyRepo repository.DailyActivityRepo,
	challengeRepo repository.ChallengeRepo,
	publisher EventPublisher,
	notices mongo.NoticeRepo,
) ProgressService {
	return &progressServiceImpl{
		db:            db,
		challengeSvc:  challengeSvc,
		progressRepo:  progressRepo,
		entryRepo:     entryRepo,
		collabRepo:    collabRepo,
		statsRepo:     statsRepo,
		dailyRepo:     dailyRepo,
		challengeRepo: challengeRepo,
		publisher:     publisher,
		notices:       notices,
	}
}

// Join 幂等加入：已有进度行直接返回，新建时拷贝目标值并联动参与者与加入计数
func (s *progressServiceImpl) Join(ctx context.Context, userID, challengeID uint64) (*model.ChallengeProgress, error) {
	challenge, err := s.challengeSvc.GetChallenge(ctx, challengeID)
	if err != nil {
		return nil, err
	}
	if !challenge.IsActive {
		return nil, ErrChallengeDisabled
	}

	var created bool
	err = transact(ctx, s.db, func(tx *gorm.DB) error {
		progressRepo := s.progressRepo.WithTx(tx)

		created, err = progressRepo.CreateIfAbsent(ctx, &model.ChallengeProgress{
			UserID:      userID,
			ChallengeID: challengeID,
			TargetCount: challenge.TargetCount,
			Status:      model.ProgressActive,
			StartedAt:   time.Now(),
		})
		if err != nil {
			return err
		}
		if !created {
			return nil
		}

		statsRepo := s.statsRepo.WithTx(tx)
		if err = statsRepo.EnsureRow(ctx, userID); err != nil {
			return err
		}
		if err = statsRepo.IncrChallengesJoined(ctx, userID); err != nil {
			return err
		}

		// 参与者计数只在首次建行时递增，重复 join 不会重复计数
		if challenge.Type == model.ChallengeTypeCollaborative {
			collabRepo := s.collabRepo.WithTx(tx)
			if err = collabRepo.EnsureRow(ctx, challengeID); err != nil {
				return err
			}
			if err = collabRepo.IncrementParticipants(ctx, challengeID); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		log.ErrorContext(ctx, "join challenge failed", "user_id", userID, "challenge_id", challengeID, "err", err)
		return nil, ErrStorageUnavailable
	}

	progress, err := s.progressRepo.Get(ctx, userID, challengeID)
	if err != nil {
		return nil, ErrStorageUnavailable
	}
	if progress == nil {
		return nil, UnExpectedError
	}
	return progress, nil
}

// SubmitDhikr 提交管道：
// 先落不可变事实，再在一个事务内生效全部下游影响，事务内首个动作是
// 认领条目本身，崩溃后的重放因此不会二次计数。
func (s *progressServiceImpl) SubmitDhikr(ctx context.Context, userID, challengeID uint64, count int64, deviceID string) (*SubmitResult, error) {
	if count <= 0 {
		return nil, ErrCountInvalid
	}

	challenge, err := s.challengeSvc.GetChallenge(ctx, challengeID)
	if err != nil {
		return nil, err
	}
	now := time.Now()
	if !challenge.IsActive || (challenge.EndDate != nil && challenge.EndDate.Before(now)) {
		return nil, ErrChallengeNotActive
	}

	// 未加入则自动加入
	if _, err = s.Join(ctx, userID, challengeID); err != nil {
		return nil, err
	}

	entry := &model.DhikrEntry{
		UserID:      userID,
		ChallengeID: &challengeID,
		Count:       count,
		RecordedAt:  time.Now(),
	}
	if deviceID != "" {
		entry.DeviceID = &deviceID
	}
	if err = s.entryRepo.Create(ctx, entry); err != nil {
		log.ErrorContext(ctx, "record dhikr entry failed", "user_id", userID, "err", err)
		return nil, ErrStorageUnavailable
	}

	result, err := s.applyEntry(ctx, entry, challenge)
	if err != nil {
		if errors.Is(err, ErrChallengeNotActive) {
			// 事实保留作审计，但永久不再生效
			if markErr := s.entryRepo.MarkRejected(ctx, entry.ID); markErr != nil {
				log.ErrorContext(ctx, "mark entry rejected failed", "entry_id", entry.ID, "err", markErr)
			}
			return nil, ErrChallengeNotActive
		}
		log.ErrorContext(ctx, "apply dhikr entry failed", "entry_id", entry.ID, "err", err)
		return nil, ErrStorageUnavailable
	}

	s.afterApply(ctx, entry, challenge, result)
	return result, nil
}

// applyEntry 管道第 2~5 步，提交路径与恢复重放共用
func (s *progressServiceImpl) applyEntry(ctx context.Context, entry *model.DhikrEntry, challenge *model.Challenge) (*SubmitResult, error) {
	result := &SubmitResult{}

	err := transact(ctx, s.db, func(tx *gorm.DB) error {
		entryRepo := s.entryRepo.WithTx(tx)
		claimed, err := entryRepo.Claim(ctx, entry.ID)
		if err != nil {
			return err
		}
		if !claimed {
			return errEntryAlreadyApplied
		}

		progressRepo := s.progressRepo.WithTx(tx)
		applied, err := progressRepo.AddCount(ctx, entry.UserID, challenge.ID, entry.Count)
		if err != nil {
			return err
		}
		if !applied {
			return ErrChallengeNotActive
		}

		result.Completed, err = progressRepo.MarkCompleted(ctx, entry.UserID, challenge.ID, time.Now())
		if err != nil {
			return err
		}
		if result.Completed {
			result.PointsEarned = challenge.RewardPoints
		}

		if challenge.Type == model.ChallengeTypeCollaborative {
			if err = s.collabRepo.WithTx(tx).IncrementCount(ctx, challenge.ID, entry.Count); err != nil {
				return err
			}
		}

		statsRepo := s.statsRepo.WithTx(tx)
		if err = statsRepo.IncrDhikrCount(ctx, entry.UserID, entry.Count); err != nil {
			return err
		}
		if result.Completed {
			if err = statsRepo.IncrCompletedAndPoints(ctx, entry.UserID, challenge.RewardPoints); err != nil {
				return err
			}
		}

		delta := repository.DailyDelta{DhikrCount: entry.Count}
		if result.Completed {
			delta.ChallengesCompleted = 1
		}
		return recordActivity(ctx, statsRepo, s.dailyRepo.WithTx(tx), entry.UserID, delta, time.Now())
	})
	if err != nil {
		return nil, err
	}

	result.Progress, err = s.progressRepo.Get(ctx, entry.UserID, challenge.ID)
	if err != nil {
		return nil, err
	}
	return result, nil
}

// afterApply 事务提交后的旁路效果，全部尽力而为
func (s *progressServiceImpl) afterApply(ctx context.Context, entry *model.DhikrEntry, challenge *model.Challenge, result *SubmitResult) {
	if challenge.Type == model.ChallengeTypeCollaborative {
		if stats, err := s.collabRepo.Get(ctx, challenge.ID); err == nil && stats != nil {
			channel := consts.ChallengeLiveKey + strconv.FormatUint(challenge.ID, 10)
			_ = redis.Publish(ctx, channel, stats.TotalCount)
			_ = redis.DeleteKey(ctx, consts.CollabStatsKey+strconv.FormatUint(challenge.ID, 10))
		}
	}

	if result.Completed {
		if result.PointsEarned > 0 {
			member := strconv.FormatUint(entry.UserID, 10)
			_ = redis.ZIncrBy(ctx, consts.LeaderboardPointsKey, float64(result.PointsEarned), member)
		}

		notice := &mongo.NoticeModel{
			ReceiverID:   entry.UserID,
			Type:         mongo.NoticeChallengeCompleted,
			ChallengeID:  challenge.ID,
			PointsEarned: result.PointsEarned,
			Payload:      map[string]any{"badge_icon_url": challenge.BadgeIconURL, "title": challenge.Title},
			CreatedAt:    time.Now(),
		}
		if err := s.notices.CreateNotice(ctx, notice); err != nil {
			log.ErrorContext(ctx, "write completion notice failed", "user_id", entry.UserID, "err", err)
		}
	}

	evt := &kafka.EntryAppliedEvent{
		EntryID:     entry.ID,
		UserID:      entry.UserID,
		ChallengeID: challenge.ID,
		Count:       entry.Count,
		Completed:   result.Completed,
		AppliedAt:   time.Now().Unix(),
	}
	if err := s.publisher.PublishEntryApplied(evt); err != nil {
		log.ErrorContext(ctx, "publish entry applied event failed", "entry_id", entry.ID, "err", err)
	}
}

func (s *progressServiceImpl) Abandon(ctx context.Context, userID, challengeID uint64) error {
	progress, err := s.progressRepo.Get(ctx, userID, challengeID)
	if err != nil {
		return ErrStorageUnavailable
	}
	if progress == nil {
		return ErrProgressNotFound
	}

	abandoned, err := s.progressRepo.MarkAbandoned(ctx, userID, challengeID)
	if err != nil {
		return ErrStorageUnavailable
	}
	if !abandoned {
		return ErrChallengeNotActive
	}
	return nil
}

func (s *progressServiceImpl) GetProgress(ctx context.Context, userID, challengeID uint64) (*model.ChallengeProgress, error) {
	progress, err := s.progressRepo.Get(ctx, userID, challengeID)
	if err != nil {
		return nil, ErrStorageUnavailable
	}
	if progress == nil {
		return nil, ErrProgressNotFound
	}
	return progress, nil
}

func (s *progressServiceImpl) GetActiveChallenges(ctx context.Context, userID uint64) ([]*dto.ProgressDTO, error) {
	list, _, err := s.progressRepo.ListByUserStatus(ctx, userID, model.ProgressActive, 1, consts.MaxPageSize)
	if err != nil {
		return nil, ErrStorageUnavailable
	}
	return s.toProgressDTOs(list)
}

func (s *progressServiceImpl) GetCompletedChallenges(ctx context.Context, userID uint64, page, pageSize int) (*dto.ProgressPageDTO, error) {
	if page < 1 {
		page = 1
	}
	if pageSize < 1 || pageSize > consts.MaxPageSize {
		pageSize = consts.DefaultPageSize
	}

	list, total, err := s.progressRepo.ListByUserStatus(ctx, userID, model.ProgressCompleted, page, pageSize)
	if err != nil {
		return nil, ErrStorageUnavailable
	}

	dtos, err := s.toProgressDTOs(list)
	if err != nil {
		return nil, err
	}
	return &dto.ProgressPageDTO{
		List:     dtos,
		Total:    total,
		Page:     page,
		PageSize: pageSize,
	}, nil
}

// GetCollaborativeStats 读路径最终一致，短 TTL 缓存吸收读流量
func (s *progressServiceImpl) GetCollaborativeStats(ctx context.Context, challengeID uint64) (*model.CollaborativeStats, error) {
	key := consts.CollabStatsKey + strconv.FormatUint(challengeID, 10)
	if cached, err := redis.GetValue(ctx, key); err == nil && cached != "" {
		var stats model.CollaborativeStats
		if jsonErr := json.Unmarshal([]byte(cached), &stats); jsonErr == nil {
			return &stats, nil
		}
	}

	stats, err := s.collabRepo.Get(ctx, challengeID)
	if err != nil {
		return nil, ErrStorageUnavailable
	}
	if stats == nil {
		return nil, ErrCollabStatsNotFound
	}

	if payload, err := json.Marshal(stats); err == nil {
		_ = redis.SetWithExpiration(ctx, key, payload, collabStatsCacheExpiration)
	}
	return stats, nil
}

func (s *progressServiceImpl) ReplayUnapplied(ctx context.Context, before time.Time, limit int) (int, error) {
	entries, err := s.entryRepo.ListUnapplied(ctx, before, limit)
	if err != nil {
		return 0, err
	}

	replayed := 0
	for _, entry := range entries {
		if entry.ChallengeID == nil {
			// 无挑战归属的条目不属于提交管道产物，标记后跳过
			log.WarnContext(ctx, "unapplied entry without challenge", "entry_id", entry.ID)
			_ = s.entryRepo.MarkRejected(ctx, entry.ID)
			continue
		}

		challenge, err := s.challengeRepo.GetByID(ctx, *entry.ChallengeID)
		if err != nil {
			return replayed, err
		}
		if challenge == nil {
			_ = s.entryRepo.MarkRejected(ctx, entry.ID)
			continue
		}

		result, err := s.applyEntry(ctx, entry, challenge)
		switch {
		case err == nil:
			s.afterApply(ctx, entry, challenge, result)
			replayed++
		case errors.Is(err, errEntryAlreadyApplied):
			// 并发重放或在线路径已生效
		case errors.Is(err, ErrChallengeNotActive):
			_ = s.entryRepo.MarkRejected(ctx, entry.ID)
		default:
			log.ErrorContext(ctx, "replay entry failed", "entry_id", entry.ID, "err", err)
		}
	}
	return replayed, nil
}

func (s *progressServiceImpl) ExpireEnded(ctx context.Context) (int64, error) {
	ids, err := s.challengeRepo.GetEndedChallengeIDs(ctx, time.Now())
	if err != nil {
		return 0, err
	}
	return s.progressRepo.ExpireByChallengeIDs(ctx, ids, time.Now())
}

func (s *progressServiceImpl) toProgressDTOs(list []*model.ChallengeProgress) ([]*dto.ProgressDTO, error) {
	dtos := make([]*dto.ProgressDTO, 0, len(list))
	for _, progress := range list {
		item := &dto.ProgressDTO{}
		if err := copier.Copy(item, progress); err != nil {
			return nil, UnExpectedError
		}
		item.StartedAt = progress.StartedAt.Format("2006-01-02 15:04:05")
		if progress.CompletedAt != nil {
			item.CompletedAt = progress.CompletedAt.Format("2006-01-02 15:04:05")
		}
		dtos = append(dtos, item)
	}
	return dtos, nil
}
