package service

import (
	"Tasbih/internal/pkg/util"
	"Tasbih/internal/repository"
	"context"
	"time"
)

// recordActivity 记一笔当日活动并维护连续天数。
// 连续天数的写入带日界守卫，同一天内的并发提交只有第一笔生效，
// 其余照常累加当日聚合但不会重复推进 streak。
func recordActivity(
	ctx context.Context,
	statsRepo repository.UserStatsRepo,
	dailyRepo repository.DailyActivityRepo,
	userID uint64,
	delta repository.DailyDelta,
	now time.Time,
) error {
	today := util.Midnight(now)
	if err := dailyRepo.AddDelta(ctx, userID, today, delta); err != nil {
		return err
	}

	stats, err := statsRepo.Get(ctx, userID)
	if err != nil {
		return err
	}
	if stats == nil {
		if err = statsRepo.EnsureRow(ctx, userID); err != nil {
			return err
		}
		stats, err = statsRepo.Get(ctx, userID)
		if err != nil || stats == nil {
			return err
		}
	}

	newStreak := 1
	yesterday := today.AddDate(0, 0, -1)
	if stats.LastActivityDate != nil && util.SameDate(*stats.LastActivityDate, yesterday) {
		newStreak = stats.CurrentStreakDays + 1
	}

	_, err = statsRepo.UpdateStreak(ctx, userID, newStreak, today)
	return err
}
