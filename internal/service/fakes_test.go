package service

import (
	"Tasbih/internal/model"
	"Tasbih/internal/pkg/kafka"
	pkgmongo "Tasbih/internal/pkg/mongo"
	"Tasbih/internal/repository"
	"context"
	"sync"
	"time"

	"gorm.io/gorm"
)

// 内存版仓储实现，锁内复刻守卫更新的语义，用于并发与状态机测试

type fakeChallengeRepo struct {
	mu    sync.Mutex
	seq   uint64
	items map[uint64]*model.Challenge
}

func newFakeChallengeRepo() *fakeChallengeRepo {
	return &fakeChallengeRepo{items: make(map[uint64]*model.Challenge)}
}

func (f *fakeChallengeRepo) Create(_ context.Context, challenge *model.Challenge) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.seq++
	challenge.ID = f.seq
	challenge.CreatedAt = time.Now()
	cp := *challenge
	f.items[challenge.ID] = &cp
	return nil
}

func (f *fakeChallengeRepo) GetByID(_ context.Context, id uint64) (*model.Challenge, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	item, ok := f.items[id]
	if !ok {
		return nil, nil
	}
	cp := *item
	return &cp, nil
}

func (f *fakeChallengeRepo) List(_ context.Context, query repository.ChallengeQuery) ([]*model.Challenge, int64, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	matched := make([]*model.Challenge, 0)
	for id := uint64(1); id <= f.seq; id++ {
		item, ok := f.items[id]
		if !ok {
			continue
		}
		if query.OnlyActive && !item.IsActive {
			continue
		}
		if query.Type != "" && item.Type != query.Type {
			continue
		}
		if query.Difficulty != "" && item.Difficulty != query.Difficulty {
			continue
		}
		cp := *item
		matched = append(matched, &cp)
	}
	total := int64(len(matched))
	start := (query.Page - 1) * query.PageSize
	if start >= len(matched) {
		return nil, total, nil
	}
	end := start + query.PageSize
	if end > len(matched) {
		end = len(matched)
	}
	return matched[start:end], total, nil
}

func (f *fakeChallengeRepo) GetEndedChallengeIDs(_ context.Context, now time.Time) ([]uint64, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	ids := make([]uint64, 0)
	for id, item := range f.items {
		if item.EndDate != nil && item.EndDate.Before(now) {
			ids = append(ids, id)
		}
	}
	return ids, nil
}

type fakeEntryRepo struct {
	mu    sync.Mutex
	seq   uint64
	items map[uint64]*model.DhikrEntry
}

func newFakeEntryRepo() *fakeEntryRepo {
	return &fakeEntryRepo{items: make(map[uint64]*model.DhikrEntry)}
}

func (f *fakeEntryRepo) WithTx(_ *gorm.DB) repository.DhikrEntryRepo { return f }

func (f *fakeEntryRepo) Create(_ context.Context, entry *model.DhikrEntry) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.seq++
	entry.ID = f.seq
	cp := *entry
	f.items[entry.ID] = &cp
	return nil
}

func (f *fakeEntryRepo) GetByID(_ context.Context, id uint64) (*model.DhikrEntry, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	item, ok := f.items[id]
	if !ok {
		return nil, nil
	}
	cp := *item
	return &cp, nil
}

func (f *fakeEntryRepo) Claim(_ context.Context, id uint64) (bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	item, ok := f.items[id]
	if !ok || item.Applied {
		return false, nil
	}
	item.Applied = true
	return true, nil
}

func (f *fakeEntryRepo) MarkRejected(_ context.Context, id uint64) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if item, ok := f.items[id]; ok {
		item.Rejected = true
	}
	return nil
}

func (f *fakeEntryRepo) ListUnapplied(_ context.Context, before time.Time, limit int) ([]*model.DhikrEntry, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := make([]*model.DhikrEntry, 0)
	for id := uint64(1); id <= f.seq && len(out) < limit; id++ {
		item, ok := f.items[id]
		if !ok || item.Applied || item.Rejected || !item.RecordedAt.Before(before) {
			continue
		}
		cp := *item
		out = append(out, &cp)
	}
	return out, nil
}

// 测试辅助：撤销 applied 标记，模拟写入条目后进程崩溃
func (f *fakeEntryRepo) unapply(id uint64) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if item, ok := f.items[id]; ok {
		item.Applied = false
	}
}

type progressKey struct {
	userID      uint64
	challengeID uint64
}

type fakeProgressRepo struct {
	mu    sync.Mutex
	items map[progressKey]*model.ChallengeProgress
}

func newFakeProgressRepo() *fakeProgressRepo {
	return &fakeProgressRepo{items: make(map[progressKey]*model.ChallengeProgress)}
}

func (f *fakeProgressRepo) WithTx(_ *gorm.DB) repository.ProgressRepo { return f }

func (f *fakeProgressRepo) CreateIfAbsent(_ context.Context, progress *model.ChallengeProgress) (bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	key := progressKey{progress.UserID, progress.ChallengeID}
	if _, ok := f.items[key]; ok {
		return false, nil
	}
	cp := *progress
	f.items[key] = &cp
	return true, nil
}

func (f *fakeProgressRepo) Get(_ context.Context, userID, challengeID uint64) (*model.ChallengeProgress, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	item, ok := f.items[progressKey{userID, challengeID}]
	if !ok {
		return nil, nil
	}
	cp := *item
	return &cp, nil
}

func (f *fakeProgressRepo) AddCount(_ context.Context, userID, challengeID uint64, delta int64) (bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	item, ok := f.items[progressKey{userID, challengeID}]
	if !ok || item.Status != model.ProgressActive {
		return false, nil
	}
	item.CurrentCount += delta
	return true, nil
}

func (f *fakeProgressRepo) MarkCompleted(_ context.Context, userID, challengeID uint64, now time.Time) (bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	item, ok := f.items[progressKey{userID, challengeID}]
	if !ok || item.Status != model.ProgressActive || item.CurrentCount < item.TargetCount {
		return false, nil
	}
	item.Status = model.ProgressCompleted
	item.CompletedAt = &now
	return true, nil
}

func (f *fakeProgressRepo) MarkAbandoned(_ context.Context, userID, challengeID uint64) (bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	item, ok := f.items[progressKey{userID, challengeID}]
	if !ok || item.Status != model.ProgressActive {
		return false, nil
	}
	item.Status = model.ProgressAbandoned
	return true, nil
}

func (f *fakeProgressRepo) ExpireByChallengeIDs(_ context.Context, challengeIDs []uint64, _ time.Time) (int64, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var expired int64
	for _, id := range challengeIDs {
		for key, item := range f.items {
			if key.challengeID == id && item.Status == model.ProgressActive {
				item.Status = model.ProgressExpired
				expired++
			}
		}
	}
	return expired, nil
}

func (f *fakeProgressRepo) ListByUserStatus(_ context.Context, userID uint64, status model.ProgressStatus, page, pageSize int) ([]*model.ChallengeProgress, int64, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	matched := make([]*model.ChallengeProgress, 0)
	for key, item := range f.items {
		if key.userID == userID && item.Status == status {
			cp := *item
			matched = append(matched, &cp)
		}
	}
	total := int64(len(matched))
	start := (page - 1) * pageSize
	if start >= len(matched) {
		return nil, total, nil
	}
	end := start + pageSize
	if end > len(matched) {
		end = len(matched)
	}
	return matched[start:end], total, nil
}

type fakeCollabRepo struct {
	mu    sync.Mutex
	items map[uint64]*model.CollaborativeStats
}

func newFakeCollabRepo() *fakeCollabRepo {
	return &fakeCollabRepo{items: make(map[uint64]*model.CollaborativeStats)}
}

func (f *fakeCollabRepo) WithTx(_ *gorm.DB) repository.CollaborativeStatsRepo { return f }

func (f *fakeCollabRepo) EnsureRow(_ context.Context, challengeID uint64) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if _, ok := f.items[challengeID]; !ok {
		f.items[challengeID] = &model.CollaborativeStats{ChallengeID: challengeID}
	}
	return nil
}

func (f *fakeCollabRepo) IncrementParticipants(_ context.Context, challengeID uint64) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if item, ok := f.items[challengeID]; ok {
		item.TotalParticipants++
	}
	return nil
}

func (f *fakeCollabRepo) IncrementCount(_ context.Context, challengeID uint64, delta int64) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if item, ok := f.items[challengeID]; ok {
		item.TotalCount += delta
	}
	return nil
}

func (f *fakeCollabRepo) Get(_ context.Context, challengeID uint64) (*model.CollaborativeStats, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	item, ok := f.items[challengeID]
	if !ok {
		return nil, nil
	}
	cp := *item
	return &cp, nil
}

type fakeStatsRepo struct {
	mu    sync.Mutex
	items map[uint64]*model.UserStats
}

func newFakeStatsRepo() *fakeStatsRepo {
	return &fakeStatsRepo{items: make(map[uint64]*model.UserStats)}
}

func (f *fakeStatsRepo) WithTx(_ *gorm.DB) repository.UserStatsRepo { return f }

func (f *fakeStatsRepo) EnsureRow(_ context.Context, userID uint64) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if _, ok := f.items[userID]; !ok {
		f.items[userID] = &model.UserStats{UserID: userID, Level: 1}
	}
	return nil
}

func (f *fakeStatsRepo) Get(_ context.Context, userID uint64) (*model.UserStats, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	item, ok := f.items[userID]
	if !ok {
		return nil, nil
	}
	cp := *item
	return &cp, nil
}

func (f *fakeStatsRepo) IncrDhikrCount(_ context.Context, userID uint64, count int64) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if item, ok := f.items[userID]; ok {
		item.TotalDhikrCount += count
	}
	return nil
}

func (f *fakeStatsRepo) IncrDuasRead(_ context.Context, userID uint64) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if item, ok := f.items[userID]; ok {
		item.TotalDuasRead++
	}
	return nil
}

func (f *fakeStatsRepo) IncrChallengesJoined(_ context.Context, userID uint64) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if item, ok := f.items[userID]; ok {
		item.TotalChallengesJoined++
	}
	return nil
}

func (f *fakeStatsRepo) IncrCompletedAndPoints(_ context.Context, userID uint64, points int64) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if item, ok := f.items[userID]; ok {
		item.TotalChallengesCompleted++
		item.TotalPoints += points
		item.Level = int(item.TotalPoints/100) + 1
	}
	return nil
}

func (f *fakeStatsRepo) UpdateStreak(_ context.Context, userID uint64, newStreak int, today time.Time) (bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	item, ok := f.items[userID]
	if !ok {
		return false, nil
	}
	if item.LastActivityDate != nil && !item.LastActivityDate.Before(today) {
		return false, nil
	}
	item.CurrentStreakDays = newStreak
	if newStreak > item.LongestStreakDays {
		item.LongestStreakDays = newStreak
	}
	day := today
	item.LastActivityDate = &day
	return true, nil
}

func (f *fakeStatsRepo) TopByPoints(_ context.Context, limit int) ([]*model.UserStats, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := make([]*model.UserStats, 0, len(f.items))
	for _, item := range f.items {
		cp := *item
		out = append(out, &cp)
	}
	for i := 0; i < len(out); i++ {
		for j := i + 1; j < len(out); j++ {
			if out[j].TotalPoints > out[i].TotalPoints {
				out[i], out[j] = out[j], out[i]
			}
		}
	}
	if len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

type dailyKey struct {
	userID uint64
	date   string
}

type fakeDailyRepo struct {
	mu    sync.Mutex
	items map[dailyKey]*model.DailyActivity
}

func newFakeDailyRepo() *fakeDailyRepo {
	return &fakeDailyRepo{items: make(map[dailyKey]*model.DailyActivity)}
}

func (f *fakeDailyRepo) WithTx(_ *gorm.DB) repository.DailyActivityRepo { return f }

func (f *fakeDailyRepo) AddDelta(_ context.Context, userID uint64, date time.Time, delta repository.DailyDelta) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	key := dailyKey{userID, date.Format(time.DateOnly)}
	item, ok := f.items[key]
	if !ok {
		item = &model.DailyActivity{UserID: userID, ActivityDate: date}
		f.items[key] = item
	}
	item.DuasRead += delta.DuasRead
	item.DhikrCount += delta.DhikrCount
	item.ChallengesCompleted += delta.ChallengesCompleted
	return nil
}

func (f *fakeDailyRepo) GetByDate(_ context.Context, userID uint64, date time.Time) (*model.DailyActivity, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	item, ok := f.items[dailyKey{userID, date.Format(time.DateOnly)}]
	if !ok {
		return nil, nil
	}
	cp := *item
	return &cp, nil
}

func (f *fakeDailyRepo) ListRecent(_ context.Context, userID uint64, days int) ([]*model.DailyActivity, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := make([]*model.DailyActivity, 0)
	for key, item := range f.items {
		if key.userID == userID {
			cp := *item
			out = append(out, &cp)
		}
	}
	return out, nil
}

type fakePublisher struct {
	mu     sync.Mutex
	events []*kafka.EntryAppliedEvent
}

func (f *fakePublisher) PublishEntryApplied(evt *kafka.EntryAppliedEvent) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.events = append(f.events, evt)
	return nil
}

type fakeNoticeRepo struct {
	mu      sync.Mutex
	notices []*pkgmongo.NoticeModel
}

func (f *fakeNoticeRepo) CreateNotice(_ context.Context, msg *pkgmongo.NoticeModel) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.notices = append(f.notices, msg)
	return nil
}

func (f *fakeNoticeRepo) GetNoticeList(_ context.Context, userID uint64, limit, offset int64) ([]*pkgmongo.NoticeModel, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := make([]*pkgmongo.NoticeModel, 0)
	for _, n := range f.notices {
		if n.ReceiverID == userID {
			out = append(out, n)
		}
	}
	if offset >= int64(len(out)) {
		return nil, nil
	}
	out = out[offset:]
	if int64(len(out)) > limit {
		out = out[:limit]
	}
	return out, nil
}

func (f *fakeNoticeRepo) MarkAsRead(_ context.Context, userID uint64, msgID string) error {
	return nil
}

func (f *fakeNoticeRepo) GetUnreadCount(_ context.Context, userID uint64) (int64, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var count int64
	for _, n := range f.notices {
		if n.ReceiverID == userID && !n.IsRead {
			count++
		}
	}
	return count, nil
}
