package service

import (
	"Tasbih/internal/api/dto"
	"Tasbih/internal/model"
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCreateChallengeDefaults(t *testing.T) {
	challengeRepo := newFakeChallengeRepo()
	collabRepo := newFakeCollabRepo()
	svc := NewChallengeService(challengeRepo, collabRepo)
	ctx := context.Background()

	challenge, err := svc.CreateChallenge(ctx, &dto.ChallengeCreateDTO{
		Title:       "夜间赞念",
		Type:        "singular",
		TargetCount: 99,
		ArabicText:  "الْحَمْدُ لِلَّهِ",
	})
	require.NoError(t, err)
	assert.Equal(t, model.DifficultyMedium, challenge.Difficulty)
	assert.Equal(t, model.RewardOnChallengeDone, challenge.RewardAssign)
	assert.NotZero(t, challenge.ID)
}

func TestCreateChallengeInvalidTarget(t *testing.T) {
	svc := NewChallengeService(newFakeChallengeRepo(), newFakeCollabRepo())

	_, err := svc.CreateChallenge(context.Background(), &dto.ChallengeCreateDTO{
		Title:       "bad",
		Type:        "singular",
		TargetCount: 0,
		ArabicText:  "x",
	})
	assert.ErrorIs(t, err, ErrParamInvalid)
}

func TestCreateCollaborativeSeedsSharedCounter(t *testing.T) {
	challengeRepo := newFakeChallengeRepo()
	collabRepo := newFakeCollabRepo()
	svc := NewChallengeService(challengeRepo, collabRepo)
	ctx := context.Background()

	challenge, err := svc.CreateChallenge(ctx, &dto.ChallengeCreateDTO{
		Title:       "社区十万赞念",
		Type:        "collaborative",
		TargetCount: 100000,
		ArabicText:  "لَا إِلَٰهَ إِلَّا الله",
	})
	require.NoError(t, err)

	stats, err := collabRepo.Get(ctx, challenge.ID)
	require.NoError(t, err)
	require.NotNil(t, stats)
	assert.Zero(t, stats.TotalCount)
	assert.Zero(t, stats.TotalParticipants)
}

func TestCreateChallengeParsesDates(t *testing.T) {
	svc := NewChallengeService(newFakeChallengeRepo(), newFakeCollabRepo())
	ctx := context.Background()

	challenge, err := svc.CreateChallenge(ctx, &dto.ChallengeCreateDTO{
		Title:       "斋月挑战",
		Type:        "singular",
		TargetCount: 3000,
		ArabicText:  "x",
		StartDate:   "2026-02-18",
		EndDate:     "2026-03-19",
	})
	require.NoError(t, err)
	require.NotNil(t, challenge.StartDate)
	require.NotNil(t, challenge.EndDate)
	assert.True(t, challenge.EndDate.After(*challenge.StartDate))

	_, err = svc.CreateChallenge(ctx, &dto.ChallengeCreateDTO{
		Title:       "bad date",
		Type:        "singular",
		TargetCount: 10,
		ArabicText:  "x",
		StartDate:   "18/02/2026",
	})
	assert.ErrorIs(t, err, ErrParamInvalid)
}

func TestGetChallengeNotFound(t *testing.T) {
	svc := NewChallengeService(newFakeChallengeRepo(), newFakeCollabRepo())

	_, err := svc.GetChallenge(context.Background(), 404)
	assert.ErrorIs(t, err, ErrChallengeNotFound)
}

func TestListChallengesFiltersAndPages(t *testing.T) {
	challengeRepo := newFakeChallengeRepo()
	svc := NewChallengeService(challengeRepo, newFakeCollabRepo())
	ctx := context.Background()

	for i := 0; i < 5; i++ {
		challenge := &model.Challenge{
			Title:       "挑战",
			Type:        model.ChallengeTypeSingular,
			Difficulty:  model.DifficultyEasy,
			TargetCount: 10,
			ArabicText:  "x",
			IsActive:    true,
		}
		require.NoError(t, challengeRepo.Create(ctx, challenge))
	}
	inactive := &model.Challenge{
		Title:       "下架挑战",
		Type:        model.ChallengeTypeSingular,
		Difficulty:  model.DifficultyEasy,
		TargetCount: 10,
		ArabicText:  "x",
		IsActive:    false,
	}
	require.NoError(t, challengeRepo.Create(ctx, inactive))

	page, err := svc.ListChallenges(ctx, &dto.ChallengeQueryDTO{Page: 1, PageSize: 3})
	require.NoError(t, err)
	assert.Equal(t, int64(5), page.Total)
	assert.Len(t, page.List, 3)

	page, err = svc.ListChallenges(ctx, &dto.ChallengeQueryDTO{Page: 2, PageSize: 3})
	require.NoError(t, err)
	assert.Len(t, page.List, 2)

	page, err = svc.ListChallenges(ctx, &dto.ChallengeQueryDTO{IncludeInactive: true, Page: 1, PageSize: 10})
	require.NoError(t, err)
	assert.Equal(t, int64(6), page.Total)
}
