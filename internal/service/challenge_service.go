package service

import (
	"Tasbih/internal/api/dto"
	"Tasbih/internal/model"
	"Tasbih/internal/pkg/consts"
	"Tasbih/internal/pkg/redis"
	"Tasbih/internal/repository"
	"context"
	log "log/slog"
	"strconv"
	"time"

	"github.com/goccy/go-json"
	"github.com/jinzhu/copier"
)

const challengeCacheExpiration = time.Hour

type ChallengeService interface {
	CreateChallenge(ctx context.Context, req *dto.ChallengeCreateDTO) (*model.Challenge, error)
	GetChallenge(ctx context.Context, challengeID uint64) (*model.Challenge, error)
	ListChallenges(ctx context.Context, query *dto.ChallengeQueryDTO) (*dto.ChallengePageDTO, error)
}

type challengeServiceImpl struct {
	challengeRepo repository.ChallengeRepo
	collabRepo    repository.CollaborativeStatsRepo
}

func NewChallengeService(
	challengeRepo repository.ChallengeRepo,
	collabRepo repository.CollaborativeStatsRepo,
) ChallengeService {
	return &challengeServiceImpl{
		challengeRepo: challengeRepo,
		collabRepo:    collabRepo,
	}
}

func (s *challengeServiceImpl) CreateChallenge(ctx context.Context, req *dto.ChallengeCreateDTO) (*model.Challenge, error) {
	if req.TargetCount <= 0 {
		return nil, ErrParamInvalid
	}

	challenge := &model.Challenge{}
	if err := copier.Copy(challenge, req); err != nil {
		return nil, UnExpectedError
	}
	if req.StartDate != "" {
		t, err := time.Parse(time.DateOnly, req.StartDate)
		if err != nil {
			return nil, ErrParamInvalid
		}
		challenge.StartDate = &t
	}
	if req.EndDate != "" {
		t, err := time.Parse(time.DateOnly, req.EndDate)
		if err != nil {
			return nil, ErrParamInvalid
		}
		challenge.EndDate = &t
	}
	if challenge.Difficulty == "" {
		challenge.Difficulty = model.DifficultyMedium
	}
	if challenge.RewardAssign == "" {
		challenge.RewardAssign = model.RewardOnChallengeDone
	}

	if err := s.challengeRepo.Create(ctx, challenge); err != nil {
		log.ErrorContext(ctx, "create challenge failed", "err", err)
		return nil, ErrStorageUnavailable
	}

	// 协作挑战建目录时就建好共享计数行，避免首个提交路径上的惰性建行竞争
	if challenge.Type == model.ChallengeTypeCollaborative {
		if err := s.collabRepo.EnsureRow(ctx, challenge.ID); err != nil {
			log.ErrorContext(ctx, "init collaborative stats failed", "challenge_id", challenge.ID, "err", err)
			return nil, ErrStorageUnavailable
		}
	}

	return challenge, nil
}

// GetChallenge 目录读路径，带 Redis 缓存；目录项入库后语义上不可变，缓存无一致性问题
func (s *challengeServiceImpl) GetChallenge(ctx context.Context, challengeID uint64) (*model.Challenge, error) {
	key := consts.ChallengeInfoKey + strconv.FormatUint(challengeID, 10)
	if cached, err := redis.GetValue(ctx, key); err == nil && cached != "" {
		var challenge model.Challenge
		if err = json.Unmarshal([]byte(cached), &challenge); err == nil {
			return &challenge, nil
		}
	}

	challenge, err := s.challengeRepo.GetByID(ctx, challengeID)
	if err != nil {
		log.ErrorContext(ctx, "get challenge failed", "challenge_id", challengeID, "err", err)
		return nil, ErrStorageUnavailable
	}
	if challenge == nil {
		return nil, ErrChallengeNotFound
	}

	if payload, err := json.Marshal(challenge); err == nil {
		_ = redis.SetWithExpiration(ctx, key, payload, challengeCacheExpiration)
	}

	return challenge, nil
}

func (s *challengeServiceImpl) ListChallenges(ctx context.Context, query *dto.ChallengeQueryDTO) (*dto.ChallengePageDTO, error) {
	page := query.Page
	if page < 1 {
		page = 1
	}
	pageSize := query.PageSize
	if pageSize < 1 || pageSize > consts.MaxPageSize {
		pageSize = consts.DefaultPageSize
	}

	challenges, total, err := s.challengeRepo.List(ctx, repository.ChallengeQuery{
		Type:       model.ChallengeType(query.Type),
		Difficulty: model.ChallengeDifficulty(query.Difficulty),
		OnlyActive: !query.IncludeInactive,
		Page:       page,
		PageSize:   pageSize,
	})
	if err != nil {
		log.ErrorContext(ctx, "list challenges failed", "err", err)
		return nil, ErrStorageUnavailable
	}

	list := make([]*dto.ChallengeDTO, 0, len(challenges))
	for _, challenge := range challenges {
		item := &dto.ChallengeDTO{}
		if err = copier.Copy(item, challenge); err != nil {
			return nil, UnExpectedError
		}
		list = append(list, item)
	}

	return &dto.ChallengePageDTO{
		List:     list,
		Total:    total,
		Page:     page,
		PageSize: pageSize,
	}, nil
}
