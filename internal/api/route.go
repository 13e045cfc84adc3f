package api

import (
	"Tasbih/internal/api/middleware"
	"Tasbih/internal/pkg/logger"
	"net/http"

	"github.com/gin-gonic/gin"
)

func SetupRouter(group *HandlersGroup) *gin.Engine {
	r := gin.New()
	_ = r.SetTrustedProxies([]string{"localhost"})

	// TraceId & Logger & CORS
	r.Use(middleware.TraceMiddleware())
	r.Use(middleware.AuditMiddleware())
	r.Use(middleware.CORSMiddleware())
	logger.SetupGin(r)

	apiGroup := r.Group("/api")
	{
		apiGroup.GET("/ping", func(c *gin.Context) {
			c.JSON(http.StatusOK, gin.H{
				"Code":    200,
				"Message": "pong",
				"Data":    nil,
			})
		})

		challengeGroup := apiGroup.Group("/challenges")
		{
			// 目录读接口无需登录
			challengeGroup.GET("", group.ChallengeHandler.ListChallenges)
			challengeGroup.GET("/:challenge_id", group.ChallengeHandler.GetChallenge)
			challengeGroup.GET("/:challenge_id/collaborative", group.ChallengeHandler.GetCollaborativeStats)
			challengeGroup.GET("/:challenge_id/live", group.WSHandler.LiveCount)

			authGroup := challengeGroup.Group("")
			authGroup.Use(middleware.AuthMiddleware())
			{
				authGroup.POST("/:challenge_id/join", group.ProgressHandler.JoinChallenge)
				authGroup.POST("/:challenge_id/dhikr", group.ProgressHandler.SubmitDhikr)
				authGroup.POST("/:challenge_id/abandon", group.ProgressHandler.AbandonChallenge)
				authGroup.GET("/:challenge_id/progress", group.ProgressHandler.GetProgress)
			}

			// 需要登录 & 拥有 admin 角色
			adminGroup := authGroup.Group("")
			adminGroup.Use(middleware.CheckRoles("ADMIN"))
			{
				adminGroup.POST("", group.ChallengeHandler.CreateChallenge)
			}
		}

		progressGroup := apiGroup.Group("/progress")
		{
			progressGroup.Use(middleware.AuthMiddleware())
			{
				progressGroup.GET("/active", group.ProgressHandler.GetActiveChallenges)
				progressGroup.GET("/completed", group.ProgressHandler.GetCompletedChallenges)
			}
		}

		statsGroup := apiGroup.Group("/stats")
		{
			statsGroup.GET("/leaderboard", group.StatsHandler.GetLeaderboard)

			authGroup := statsGroup.Group("")
			authGroup.Use(middleware.AuthMiddleware())
			{
				authGroup.GET("/me", group.StatsHandler.GetUserStats)
				authGroup.GET("/activity", group.StatsHandler.GetDailyActivity)
				authGroup.POST("/duas/read", group.StatsHandler.MarkDuaRead)
			}
		}

		noticeGroup := apiGroup.Group("/notices")
		noticeGroup.Use(middleware.AuthMiddleware())
		{
			noticeGroup.GET("/list", group.NoticeHandler.GetNoticeList)
			noticeGroup.GET("/unread", group.NoticeHandler.GetUnreadCount)
			noticeGroup.POST("/read", group.NoticeHandler.MarkRead)
		}
	}

	return r
}
