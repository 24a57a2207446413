package scheduler

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/grakowskiMarcura/maritime-threat-monitor/internal/config"
	"github.com/grakowskiMarcura/maritime-threat-monitor/internal/discovery"
	"github.com/robfig/cron/v3"
	"github.com/sirupsen/logrus"
)

// Service triggers the discovery pipeline on a daily cron schedule
type Service struct {
	config           *config.Config
	discoveryService *discovery.Service
	cron             *cron.Cron
}

// NewService creates a new scheduler service
func NewService(cfg *config.Config, discoveryService *discovery.Service) (*Service, error) {
	location, err := time.LoadLocation(cfg.TimeZone)
	if err != nil {
		return nil, fmt.Errorf("invalid timezone %q: %w", cfg.TimeZone, err)
	}

	return &Service{
		config:           cfg,
		discoveryService: discoveryService,
		cron:             cron.New(cron.WithSeconds(), cron.WithLocation(location)),
	}, nil
}

// Start begins the scheduled discovery runs
func (s *Service) Start() error {
	cronExpression := fmt.Sprintf("0 %d %d * * *", s.config.DiscoveryMinute, s.config.DiscoveryHour)

	_, err := s.cron.AddFunc(cronExpression, func() {
		logrus.Info("Scheduler triggered: starting threat discovery")
		if err := s.discoveryService.Run(context.Background()); err != nil {
			if errors.Is(err, discovery.ErrRunInProgress) {
				logrus.Warn("Skipping scheduled discovery: a run is already in progress")
				return
			}
			logrus.Errorf("Scheduled discovery run failed: %v", err)
		}
	})

	if err != nil {
		return err
	}

	s.cron.Start()
	logrus.Infof("Scheduler started: daily discovery at %02d:%02d %s",
		s.config.DiscoveryHour, s.config.DiscoveryMinute, s.config.TimeZone)
	return nil
}

// Stop stops the scheduler
func (s *Service) Stop() {
	if s.cron != nil {
		s.cron.Stop()
		logrus.Info("Scheduler stopped")
	}
}
