package handler

import (
	"Tasbih/internal/pkg/response"
	"Tasbih/internal/service"
	"strconv"

	"github.com/gin-gonic/gin"
)

type StatsHandler struct {
	statsSvc service.StatsService
}

func NewStatsHandler(statsSvc service.StatsService) *StatsHandler {
	return &StatsHandler{
		statsSvc: statsSvc,
	}
}

func (s *StatsHandler) GetUserStats(c *gin.Context) {
	userID := c.GetUint64("user_id")

	stats, err := s.statsSvc.GetUserStats(c.Request.Context(), userID)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, stats)
}

func (s *StatsHandler) GetDailyActivity(c *gin.Context) {
	userID := c.GetUint64("user_id")
	days, _ := strconv.Atoi(c.DefaultQuery("days", "7"))

	trend, err := s.statsSvc.GetDailyActivity(c.Request.Context(), userID, days)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, trend)
}

func (s *StatsHandler) MarkDuaRead(c *gin.Context) {
	userID := c.GetUint64("user_id")

	if err := s.statsSvc.IncrementDuasRead(c.Request.Context(), userID); err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, nil)
}

func (s *StatsHandler) GetLeaderboard(c *gin.Context) {
	limit, _ := strconv.Atoi(c.DefaultQuery("limit", "20"))

	list, err := s.statsSvc.GetLeaderboard(c.Request.Context(), limit)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, list)
}
