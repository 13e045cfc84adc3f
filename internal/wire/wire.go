package wire

import (
	"Tasbih/internal/api"
	"Tasbih/internal/api/config"
	"Tasbih/internal/api/handler"
	"Tasbih/internal/job"
	"Tasbih/internal/pkg/cron"
	"Tasbih/internal/pkg/kafka"
	pkgmongo "Tasbih/internal/pkg/mongo"
	"Tasbih/internal/repository"
	"Tasbih/internal/service"

	"github.com/gin-gonic/gin"
	"go.mongodb.org/mongo-driver/mongo"
	"gorm.io/gorm"
)

// ApplicationContainer 封装了应用运行所需的所有顶级组件
type ApplicationContainer struct {
	Router        *gin.Engine
	DB            *gorm.DB
	CronMgr       *cron.Manager
	KafkaProducer *kafka.Producer
}

func BuildApplication(db *gorm.DB, mongoDB *mongo.Database, cfg *config.Config) (*ApplicationContainer, error) {
	challengeRepo := repository.NewChallengeRepo(db)
	entryRepo := repository.NewDhikrEntryRepo(db)
	progressRepo := repository.NewProgressRepo(db)
	collabRepo := repository.NewCollaborativeStatsRepo(db)
	statsRepo := repository.NewUserStatsRepo(db)
	dailyRepo := repository.NewDailyActivityRepo(db)
	noticeRepo := pkgmongo.NewNoticeRepo(mongoDB)

	producer, err := kafka.NewProducer(cfg)
	if err != nil {
		return nil, err
	}

	challengeService := service.NewChallengeService(challengeRepo, collabRepo)
	progressService := service.NewProgressService(
		db, challengeService, progressRepo, entryRepo, collabRepo,
		statsRepo, dailyRepo, challengeRepo, producer, noticeRepo,
	)
	statsService := service.NewStatsService(db, statsRepo, dailyRepo)
	noticeService := service.NewNoticeService(noticeRepo)

	handlers := &api.HandlersGroup{
		ChallengeHandler: handler.NewChallengeHandler(challengeService, progressService),
		ProgressHandler:  handler.NewProgressHandler(progressService),
		StatsHandler:     handler.NewStatsHandler(statsService),
		NoticeHandler:    handler.NewNoticeHandler(noticeService),
		WSHandler:        handler.NewWsHandler(progressService),
	}

	router := api.SetupRouter(handlers)

	entryRecoveryJob := job.NewEntryRecoveryJob(progressService)
	expiryJob := job.NewChallengeExpiryJob(progressService)
	cronMgr := cron.NewCronManager(entryRecoveryJob, expiryJob)

	return &ApplicationContainer{
		Router:        router,
		DB:            db,
		CronMgr:       cronMgr,
		KafkaProducer: producer,
	}, nil
}
