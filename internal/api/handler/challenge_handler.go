package handler

import (
	"Tasbih/internal/api/dto"
	"Tasbih/internal/pkg/response"
	"Tasbih/internal/service"
	"strconv"

	"github.com/gin-gonic/gin"
)

type ChallengeHandler struct {
	challengeSvc service.ChallengeService
	progressSvc  service.ProgressService
}

func NewChallengeHandler(challengeSvc service.ChallengeService, progressSvc service.ProgressService) *ChallengeHandler {
	return &ChallengeHandler{
		challengeSvc: challengeSvc,
		progressSvc:  progressSvc,
	}
}

func (s *ChallengeHandler) ListChallenges(c *gin.Context) {
	var query dto.ChallengeQueryDTO
	if err := c.ShouldBindQuery(&query); err != nil {
		response.Error(c, err)
		return
	}

	page, err := s.challengeSvc.ListChallenges(c.Request.Context(), &query)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, page)
}

func (s *ChallengeHandler) GetChallenge(c *gin.Context) {
	challengeID, err := strconv.ParseUint(c.Param("challenge_id"), 10, 64)
	if err != nil {
		response.Error(c, service.ErrParamInvalid)
		return
	}

	challenge, err := s.challengeSvc.GetChallenge(c.Request.Context(), challengeID)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, challenge)
}

func (s *ChallengeHandler) CreateChallenge(c *gin.Context) {
	var req dto.ChallengeCreateDTO
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, err)
		return
	}

	challenge, err := s.challengeSvc.CreateChallenge(c.Request.Context(), &req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, challenge)
}

func (s *ChallengeHandler) GetCollaborativeStats(c *gin.Context) {
	challengeID, err := strconv.ParseUint(c.Param("challenge_id"), 10, 64)
	if err != nil {
		response.Error(c, service.ErrParamInvalid)
		return
	}

	stats, err := s.progressSvc.GetCollaborativeStats(c.Request.Context(), challengeID)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, &dto.CollaborativeStatsDTO{
		ChallengeID:       stats.ChallengeID,
		TotalCount:        stats.TotalCount,
		TotalParticipants: stats.TotalParticipants,
	})
}
