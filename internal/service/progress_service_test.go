package service

import (
	"Tasbih/internal/model"
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type testEnv struct {
	challengeRepo *fakeChallengeRepo
	entryRepo     *fakeEntryRepo
	progressRepo  *fakeProgressRepo
	collabRepo    *fakeCollabRepo
	statsRepo     *fakeStatsRepo
	dailyRepo     *fakeDailyRepo
	publisher     *fakePublisher
	notices       *fakeNoticeRepo

	challengeSvc ChallengeService
	progressSvc  ProgressService
}

func newTestEnv() *testEnv {
	env := &testEnv{
		challengeRepo: newFakeChallengeRepo(),
		entryRepo:     newFakeEntryRepo(),
		progressRepo:  newFakeProgressRepo(),
		collabRepo:    newFakeCollabRepo(),
		statsRepo:     newFakeStatsRepo(),
		dailyRepo:     newFakeDailyRepo(),
		publisher:     &fakePublisher{},
		notices:       &fakeNoticeRepo{},
	}
	env.challengeSvc = NewChallengeService(env.challengeRepo, env.collabRepo)
	env.progressSvc = NewProgressService(
		nil, env.challengeSvc, env.progressRepo, env.entryRepo, env.collabRepo,
		env.statsRepo, env.dailyRepo, env.challengeRepo, env.publisher, env.notices,
	)
	return env
}

func (e *testEnv) seedChallenge(t *testing.T, typ model.ChallengeType, target, points int64) *model.Challenge {
	t.Helper()
	challenge := &model.Challenge{
		Title:       "晨间赞念",
		Type:        typ,
		Difficulty:  model.DifficultyMedium,
		TargetCount: target,
		ArabicText:  "سُبْحَانَ الله",
		RewardPoints: points,
		RewardAssign: model.RewardOnChallengeDone,
		IsActive:     true,
	}
	require.NoError(t, e.challengeRepo.Create(context.Background(), challenge))
	if typ == model.ChallengeTypeCollaborative {
		require.NoError(t, e.collabRepo.EnsureRow(context.Background(), challenge.ID))
	}
	return challenge
}

func TestJoinIdempotent(t *testing.T) {
	env := newTestEnv()
	ctx := context.Background()
	challenge := env.seedChallenge(t, model.ChallengeTypeCollaborative, 100, 50)

	first, err := env.progressSvc.Join(ctx, 1, challenge.ID)
	require.NoError(t, err)
	assert.Equal(t, model.ProgressActive, first.Status)
	assert.Equal(t, int64(100), first.TargetCount)

	second, err := env.progressSvc.Join(ctx, 1, challenge.ID)
	require.NoError(t, err)
	assert.Equal(t, first.StartedAt.Unix(), second.StartedAt.Unix())

	stats, err := env.statsRepo.Get(ctx, 1)
	require.NoError(t, err)
	assert.Equal(t, int64(1), stats.TotalChallengesJoined)

	collab, err := env.collabRepo.Get(ctx, challenge.ID)
	require.NoError(t, err)
	assert.Equal(t, int64(1), collab.TotalParticipants)
}

func TestJoinUnknownChallenge(t *testing.T) {
	env := newTestEnv()

	_, err := env.progressSvc.Join(context.Background(), 1, 999)
	assert.ErrorIs(t, err, ErrChallengeNotFound)
}

func TestSubmitDhikrAccumulatesProgress(t *testing.T) {
	env := newTestEnv()
	ctx := context.Background()
	challenge := env.seedChallenge(t, model.ChallengeTypeSingular, 100, 50)

	result, err := env.progressSvc.SubmitDhikr(ctx, 1, challenge.ID, 33, "device-a")
	require.NoError(t, err)
	assert.Equal(t, int64(33), result.Progress.CurrentCount)
	assert.False(t, result.Completed)

	result, err = env.progressSvc.SubmitDhikr(ctx, 1, challenge.ID, 33, "device-a")
	require.NoError(t, err)
	assert.Equal(t, int64(66), result.Progress.CurrentCount)
	assert.Equal(t, model.ProgressActive, result.Progress.Status)

	stats, err := env.statsRepo.Get(ctx, 1)
	require.NoError(t, err)
	assert.Equal(t, int64(66), stats.TotalDhikrCount)
	assert.Equal(t, 1, stats.CurrentStreakDays)

	env.publisher.mu.Lock()
	assert.Len(t, env.publisher.events, 2)
	env.publisher.mu.Unlock()
}

func TestSubmitInvalidCount(t *testing.T) {
	env := newTestEnv()
	challenge := env.seedChallenge(t, model.ChallengeTypeSingular, 100, 0)

	_, err := env.progressSvc.SubmitDhikr(context.Background(), 1, challenge.ID, 0, "")
	assert.ErrorIs(t, err, ErrCountInvalid)

	_, err = env.progressSvc.SubmitDhikr(context.Background(), 1, challenge.ID, -5, "")
	assert.ErrorIs(t, err, ErrCountInvalid)
}

func TestSubmitCompletionExactlyOnce(t *testing.T) {
	env := newTestEnv()
	ctx := context.Background()
	challenge := env.seedChallenge(t, model.ChallengeTypeSingular, 100, 50)

	_, err := env.progressSvc.Join(ctx, 1, challenge.ID)
	require.NoError(t, err)

	// 并发提交总量远超目标，completed 标志只能出现一次
	var wg sync.WaitGroup
	var mu sync.Mutex
	completions := 0
	for i := 0; i < 50; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			result, err := env.progressSvc.SubmitDhikr(ctx, 1, challenge.ID, 10, "")
			if err == nil && result.Completed {
				mu.Lock()
				completions++
				mu.Unlock()
			}
		}()
	}
	wg.Wait()

	assert.Equal(t, 1, completions)

	stats, err := env.statsRepo.Get(ctx, 1)
	require.NoError(t, err)
	assert.Equal(t, int64(1), stats.TotalChallengesCompleted)
	assert.Equal(t, int64(50), stats.TotalPoints)
	assert.Equal(t, 1, stats.Level)

	progress, err := env.progressRepo.Get(ctx, 1, challenge.ID)
	require.NoError(t, err)
	assert.Equal(t, model.ProgressCompleted, progress.Status)
	assert.NotNil(t, progress.CompletedAt)

	env.notices.mu.Lock()
	assert.Len(t, env.notices.notices, 1)
	env.notices.mu.Unlock()
}

func TestConcurrentSubmitNoLostUpdate(t *testing.T) {
	env := newTestEnv()
	ctx := context.Background()
	challenge := env.seedChallenge(t, model.ChallengeTypeCollaborative, 1_000_000, 0)

	const workers = 100
	const perWorker = int64(7)

	var wg sync.WaitGroup
	for i := 0; i < workers; i++ {
		uid := uint64(i%4 + 1)
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := env.progressSvc.SubmitDhikr(ctx, uid, challenge.ID, perWorker, "")
			assert.NoError(t, err)
		}()
	}
	wg.Wait()

	collab, err := env.collabRepo.Get(ctx, challenge.ID)
	require.NoError(t, err)
	assert.Equal(t, int64(workers)*perWorker, collab.TotalCount)
	assert.Equal(t, int64(4), collab.TotalParticipants)

	var sum int64
	for uid := uint64(1); uid <= 4; uid++ {
		progress, err := env.progressRepo.Get(ctx, uid, challenge.ID)
		require.NoError(t, err)
		sum += progress.CurrentCount
	}
	assert.Equal(t, int64(workers)*perWorker, sum)
}

func TestSubmitAfterCompletionRejected(t *testing.T) {
	env := newTestEnv()
	ctx := context.Background()
	challenge := env.seedChallenge(t, model.ChallengeTypeSingular, 10, 20)

	result, err := env.progressSvc.SubmitDhikr(ctx, 1, challenge.ID, 10, "")
	require.NoError(t, err)
	require.True(t, result.Completed)

	_, err = env.progressSvc.SubmitDhikr(ctx, 1, challenge.ID, 5, "")
	assert.ErrorIs(t, err, ErrChallengeNotActive)

	// 被拒绝的条目保留审计痕迹且不会被恢复任务重放
	entries, err := env.entryRepo.ListUnapplied(ctx, time.Now().Add(time.Hour), 10)
	require.NoError(t, err)
	assert.Empty(t, entries)

	progress, err := env.progressRepo.Get(ctx, 1, challenge.ID)
	require.NoError(t, err)
	assert.Equal(t, int64(10), progress.CurrentCount)
}

func TestAbandonStopsCounting(t *testing.T) {
	env := newTestEnv()
	ctx := context.Background()
	challenge := env.seedChallenge(t, model.ChallengeTypeSingular, 100, 0)

	_, err := env.progressSvc.SubmitDhikr(ctx, 1, challenge.ID, 30, "")
	require.NoError(t, err)

	require.NoError(t, env.progressSvc.Abandon(ctx, 1, challenge.ID))

	_, err = env.progressSvc.SubmitDhikr(ctx, 1, challenge.ID, 30, "")
	assert.ErrorIs(t, err, ErrChallengeNotActive)

	err = env.progressSvc.Abandon(ctx, 1, challenge.ID)
	assert.ErrorIs(t, err, ErrChallengeNotActive)
}

func TestAbandonWithoutJoin(t *testing.T) {
	env := newTestEnv()
	challenge := env.seedChallenge(t, model.ChallengeTypeSingular, 100, 0)

	err := env.progressSvc.Abandon(context.Background(), 1, challenge.ID)
	assert.ErrorIs(t, err, ErrProgressNotFound)
}

func TestReplayUnappliedEntries(t *testing.T) {
	env := newTestEnv()
	ctx := context.Background()
	challenge := env.seedChallenge(t, model.ChallengeTypeSingular, 100, 0)

	_, err := env.progressSvc.Join(ctx, 1, challenge.ID)
	require.NoError(t, err)

	// 模拟写入条目后进程崩溃：条目落库但下游全部未生效
	entry := &model.DhikrEntry{
		UserID:      1,
		ChallengeID: &challenge.ID,
		Count:       40,
		RecordedAt:  time.Now().Add(-10 * time.Minute),
	}
	require.NoError(t, env.entryRepo.Create(ctx, entry))

	replayed, err := env.progressSvc.ReplayUnapplied(ctx, time.Now().Add(-5*time.Minute), 100)
	require.NoError(t, err)
	assert.Equal(t, 1, replayed)

	progress, err := env.progressRepo.Get(ctx, 1, challenge.ID)
	require.NoError(t, err)
	assert.Equal(t, int64(40), progress.CurrentCount)

	// 再次扫描不得二次生效
	replayed, err = env.progressSvc.ReplayUnapplied(ctx, time.Now().Add(-5*time.Minute), 100)
	require.NoError(t, err)
	assert.Equal(t, 0, replayed)

	progress, err = env.progressRepo.Get(ctx, 1, challenge.ID)
	require.NoError(t, err)
	assert.Equal(t, int64(40), progress.CurrentCount)
}

func TestReplaySkipsOrphanEntries(t *testing.T) {
	env := newTestEnv()
	ctx := context.Background()

	entry := &model.DhikrEntry{
		UserID:     1,
		Count:      5,
		RecordedAt: time.Now().Add(-time.Hour),
	}
	require.NoError(t, env.entryRepo.Create(ctx, entry))

	replayed, err := env.progressSvc.ReplayUnapplied(ctx, time.Now(), 100)
	require.NoError(t, err)
	assert.Equal(t, 0, replayed)

	stored, err := env.entryRepo.GetByID(ctx, entry.ID)
	require.NoError(t, err)
	assert.True(t, stored.Rejected)
}

func TestExpireEndedChallenges(t *testing.T) {
	env := newTestEnv()
	ctx := context.Background()
	challenge := env.seedChallenge(t, model.ChallengeTypeSingular, 100, 0)

	_, err := env.progressSvc.SubmitDhikr(ctx, 1, challenge.ID, 10, "")
	require.NoError(t, err)

	// 截止时间推到过去
	past := time.Now().Add(-time.Hour)
	env.challengeRepo.mu.Lock()
	env.challengeRepo.items[challenge.ID].EndDate = &past
	env.challengeRepo.mu.Unlock()

	expired, err := env.progressSvc.ExpireEnded(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(1), expired)

	progress, err := env.progressRepo.Get(ctx, 1, challenge.ID)
	require.NoError(t, err)
	assert.Equal(t, model.ProgressExpired, progress.Status)

	_, err = env.progressSvc.SubmitDhikr(ctx, 1, challenge.ID, 10, "")
	assert.ErrorIs(t, err, ErrChallengeNotActive)
}

func TestGetCompletedChallengesPaging(t *testing.T) {
	env := newTestEnv()
	ctx := context.Background()

	for i := 0; i < 3; i++ {
		challenge := env.seedChallenge(t, model.ChallengeTypeSingular, 10, 5)
		result, err := env.progressSvc.SubmitDhikr(ctx, 1, challenge.ID, 10, "")
		require.NoError(t, err)
		require.True(t, result.Completed)
	}

	page, err := env.progressSvc.GetCompletedChallenges(ctx, 1, 1, 2)
	require.NoError(t, err)
	assert.Equal(t, int64(3), page.Total)
	assert.Len(t, page.List, 2)

	page, err = env.progressSvc.GetCompletedChallenges(ctx, 1, 2, 2)
	require.NoError(t, err)
	assert.Len(t, page.List, 1)
}
