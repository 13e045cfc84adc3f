package cron

import (
	"Tasbih/internal/job"
	log "log/slog"

	"github.com/robfig/cron/v3"
)

type Manager struct {
	engine           *cron.Cron
	entryRecoveryJob *job.EntryRecoveryJob
	expiryJob        *job.ChallengeExpiryJob
}

func NewCronManager(entryRecoveryJob *job.EntryRecoveryJob, expiryJob *job.ChallengeExpiryJob) *Manager {
	return &Manager{
		engine:           cron.New(cron.WithSeconds()),
		entryRecoveryJob: entryRecoveryJob,
		expiryJob:        expiryJob,
	}
}

// RegisterJobs 注册定时任务
func (s *Manager) RegisterJobs() error {
	if _, err := s.engine.AddJob("@every 5m", s.entryRecoveryJob); err != nil {
		return err
	}
	if _, err := s.engine.AddJob("@daily", s.expiryJob); err != nil {
		return err
	}
	return nil
}

func (s *Manager) Start() {
	log.Info("Cron 定时任务引擎启动")
	s.engine.Start()
}

func (s *Manager) Stop() {
	log.Info("Cron 定时任务引擎停止")
	s.engine.Stop()
}
