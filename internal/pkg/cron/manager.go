package cron

import (
	"campcircle/internal/api/config"
	"campcircle/internal/job"
	log "log/slog"

	"github.com/robfig/cron/v3"
)

type Manager struct {
	engine       *cron.Cron
	hotScoreJob  *job.HotScoreJob
	topExpireJob *job.TopExpireJob

	hotScoreSpec string
	topSpec      string
}

func NewCronManager(hotScoreJob *job.HotScoreJob, topExpireJob *job.TopExpireJob, cfg *config.Config) *Manager {
	return &Manager{
		engine:       cron.New(),
		hotScoreJob:  hotScoreJob,
		topExpireJob: topExpireJob,
		hotScoreSpec: cfg.HotScore.WithDefaults().Cron,
		topSpec:      cfg.TopJob.WithDefaults().Cron,
	}
}

// RegisterJobs 注册定时任务
func (s *Manager) RegisterJobs() error {
	if _, err := s.engine.AddJob(s.hotScoreSpec, s.hotScoreJob); err != nil {
		return err
	}
	if _, err := s.engine.AddJob(s.topSpec, s.topExpireJob); err != nil {
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
