package handler

import (
	"Tasbih/internal/api/dto"
	"Tasbih/internal/pkg/response"
	"Tasbih/internal/service"
	"strconv"

	"github.com/gin-gonic/gin"
)

type ProgressHandler struct {
	progressSvc service.ProgressService
}

func NewProgressHandler(progressSvc service.ProgressService) *ProgressHandler {
	return &ProgressHandler{
		progressSvc: progressSvc,
	}
}

func (s *ProgressHandler) JoinChallenge(c *gin.Context) {
	userID := c.GetUint64("user_id")

	challengeID, err := strconv.ParseUint(c.Param("challenge_id"), 10, 64)
	if err != nil {
		response.Error(c, service.ErrParamInvalid)
		return
	}

	progress, err := s.progressSvc.Join(c.Request.Context(), userID, challengeID)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, progress)
}

func (s *ProgressHandler) SubmitDhikr(c *gin.Context) {
	userID := c.GetUint64("user_id")

	challengeID, err := strconv.ParseUint(c.Param("challenge_id"), 10, 64)
	if err != nil {
		response.Error(c, service.ErrParamInvalid)
		return
	}

	var req dto.SubmitDhikrDTO
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, err)
		return
	}

	result, err := s.progressSvc.SubmitDhikr(c.Request.Context(), userID, challengeID, req.Count, req.DeviceID)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Success(c, &dto.SubmitResultDTO{
		ChallengeID:  challengeID,
		CurrentCount: result.Progress.CurrentCount,
		TargetCount:  result.Progress.TargetCount,
		Status:       string(result.Progress.Status),
		Completed:    result.Completed,
		PointsEarned: result.PointsEarned,
	})
}

func (s *ProgressHandler) AbandonChallenge(c *gin.Context) {
	userID := c.GetUint64("user_id")

	challengeID, err := strconv.ParseUint(c.Param("challenge_id"), 10, 64)
	if err != nil {
		response.Error(c, service.ErrParamInvalid)
		return
	}

	if err = s.progressSvc.Abandon(c.Request.Context(), userID, challengeID); err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, nil)
}

func (s *ProgressHandler) GetProgress(c *gin.Context) {
	userID := c.GetUint64("user_id")

	challengeID, err := strconv.ParseUint(c.Param("challenge_id"), 10, 64)
	if err != nil {
		response.Error(c, service.ErrParamInvalid)
		return
	}

	progress, err := s.progressSvc.GetProgress(c.Request.Context(), userID, challengeID)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, progress)
}

func (s *ProgressHandler) GetActiveChallenges(c *gin.Context) {
	userID := c.GetUint64("user_id")

	list, err := s.progressSvc.GetActiveChallenges(c.Request.Context(), userID)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, list)
}

func (s *ProgressHandler) GetCompletedChallenges(c *gin.Context) {
	userID := c.GetUint64("user_id")

	page, _ := strconv.Atoi(c.DefaultQuery("page", "1"))
	pageSize, _ := strconv.Atoi(c.DefaultQuery("page_size", "10"))

	result, err := s.progressSvc.GetCompletedChallenges(c.Request.Context(), userID, page, pageSize)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, result)
}
