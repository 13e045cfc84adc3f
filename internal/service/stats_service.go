package service

import (
	"Tasbih/internal/api/dto"
	"Tasbih/internal/model"
	"Tasbih/internal/pkg/consts"
	"Tasbih/internal/pkg/redis"
	"Tasbih/internal/pkg/util"
	"Tasbih/internal/repository"
	"context"
	"errors"
	log "log/slog"
	"strconv"
	"time"

	"gorm.io/gorm"
)

type StatsService interface {
	GetUserStats(ctx context.Context, userID uint64) (*dto.UserStatsDTO, error)
	GetDailyActivity(ctx context.Context, userID uint64, days int) (*dto.ActivityTrendDTO, error)
	IncrementDuasRead(ctx context.Context, userID uint64) error
	GetLeaderboard(ctx context.Context, limit int) ([]*dto.LeaderboardEntryDTO, error)
}

type statsServiceImpl struct {
	db        *gorm.DB
	statsRepo repository.UserStatsRepo
	dailyRepo repository.DailyActivityRepo
}

func NewStatsService(
	db *gorm.DB,
	statsRepo repository.UserStatsRepo,
	dailyRepo repository.DailyActivityRepo,
) StatsService {
	return &statsServiceImpl{
		db:        db,
		statsRepo: statsRepo,
		dailyRepo: dailyRepo,
	}
}

// GetUserStats 读取累计统计，无行则惰性建零值行
func (s *statsServiceImpl) GetUserStats(ctx context.Context, userID uint64) (*dto.UserStatsDTO, error) {
	stats, err := s.statsRepo.Get(ctx, userID)
	if err != nil {
		log.ErrorContext(ctx, "get user stats failed", "user_id", userID, "err", err)
		return nil, ErrStorageUnavailable
	}
	if stats == nil {
		if err = s.statsRepo.EnsureRow(ctx, userID); err != nil {
			return nil, ErrStorageUnavailable
		}
		stats = &model.UserStats{UserID: userID, Level: 1}
	}

	out := &dto.UserStatsDTO{
		UserID:                   stats.UserID,
		TotalDhikrCount:          stats.TotalDhikrCount,
		TotalDuasRead:            stats.TotalDuasRead,
		TotalChallengesJoined:    stats.TotalChallengesJoined,
		TotalChallengesCompleted: stats.TotalChallengesCompleted,
		TotalPoints:              stats.TotalPoints,
		Level:                    stats.Level,
		CurrentStreakDays:        stats.CurrentStreakDays,
		LongestStreakDays:        stats.LongestStreakDays,
	}
	if stats.LastActivityDate != nil {
		out.LastActivityDate = stats.LastActivityDate.Format(time.DateOnly)
	}
	return out, nil
}

// GetDailyActivity 近 N 天活动趋势，缺日补零值点
func (s *statsServiceImpl) GetDailyActivity(ctx context.Context, userID uint64, days int) (*dto.ActivityTrendDTO, error) {
	if days < 1 {
		days = 7
	}
	if days > consts.MaxActivityDays {
		days = consts.MaxActivityDays
	}

	rows, err := s.dailyRepo.ListRecent(ctx, userID, days)
	if err != nil {
		log.ErrorContext(ctx, "list daily activity failed", "user_id", userID, "err", err)
		return nil, ErrStorageUnavailable
	}

	byDate := make(map[string]*model.DailyActivity, len(rows))
	for _, row := range rows {
		byDate[row.ActivityDate.Format(time.DateOnly)] = row
	}

	today := util.Midnight(time.Now())
	list := make([]*dto.DailyActivityDTO, 0, days)
	for i := days - 1; i >= 0; i-- {
		date := today.AddDate(0, 0, -i).Format(time.DateOnly)
		point := &dto.DailyActivityDTO{Date: date}
		if row, ok := byDate[date]; ok {
			point.DuasRead = row.DuasRead
			point.DhikrCount = row.DhikrCount
			point.ChallengesCompleted = row.ChallengesCompleted
		}
		list = append(list, point)
	}

	return &dto.ActivityTrendDTO{UserID: userID, Days: days, List: list}, nil
}

// IncrementDuasRead 读一篇祷文：累计计数加当日活动加 streak，一个事务内完成
func (s *statsServiceImpl) IncrementDuasRead(ctx context.Context, userID uint64) error {
	err := transact(ctx, s.db, func(tx *gorm.DB) error {
		statsRepo := s.statsRepo.WithTx(tx)
		if err := statsRepo.EnsureRow(ctx, userID); err != nil {
			return err
		}
		if err := statsRepo.IncrDuasRead(ctx, userID); err != nil {
			return err
		}
		delta := repository.DailyDelta{DuasRead: 1}
		return recordActivity(ctx, statsRepo, s.dailyRepo.WithTx(tx), userID, delta, time.Now())
	})
	if err != nil {
		log.ErrorContext(ctx, "increment duas read failed", "user_id", userID, "err", err)
		return ErrStorageUnavailable
	}
	return nil
}

// GetLeaderboard 积分榜优先走 Redis ZSet，不可用时回落 DB 排序
func (s *statsServiceImpl) GetLeaderboard(ctx context.Context, limit int) ([]*dto.LeaderboardEntryDTO, error) {
	if limit < 1 || limit > consts.MaxPageSize {
		limit = consts.DefaultLeaderboard
	}

	members, err := redis.ZRevRangeWithScores(ctx, consts.LeaderboardPointsKey, 0, int64(limit-1))
	if err == nil && len(members) > 0 {
		list := make([]*dto.LeaderboardEntryDTO, 0, len(members))
		for i, member := range members {
			userID, parseErr := strconv.ParseUint(member.Member.(string), 10, 64)
			if parseErr != nil {
				continue
			}
			list = append(list, &dto.LeaderboardEntryDTO{
				Rank:   i + 1,
				UserID: userID,
				Points: int64(member.Score),
			})
		}
		return list, nil
	}
	if err != nil && !errors.Is(err, redis.ErrNotInitialized) {
		log.WarnContext(ctx, "leaderboard zset read failed, fallback to db", "err", err)
	}

	stats, err := s.statsRepo.TopByPoints(ctx, limit)
	if err != nil {
		log.ErrorContext(ctx, "leaderboard db fallback failed", "err", err)
		return nil, ErrStorageUnavailable
	}

	list := make([]*dto.LeaderboardEntryDTO, 0, len(stats))
	for i, row := range stats {
		list = append(list, &dto.LeaderboardEntryDTO{
			Rank:   i + 1,
			UserID: row.UserID,
			Points: row.TotalPoints,
		})
	}
	return list, nil
}
