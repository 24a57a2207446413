package discovery

import (
	"context"
	"encoding/json"
	"errors"
	"sync"
	"time"

	"github.com/grakowskiMarcura/maritime-threat-monitor/internal/agent"
	"github.com/grakowskiMarcura/maritime-threat-monitor/internal/archive"
	"github.com/grakowskiMarcura/maritime-threat-monitor/internal/database"
	"github.com/grakowskiMarcura/maritime-threat-monitor/internal/notifications"
	"github.com/grakowskiMarcura/maritime-threat-monitor/internal/parser"
	"github.com/grakowskiMarcura/maritime-threat-monitor/internal/sse"
	"github.com/sirupsen/logrus"
)

// ErrRunInProgress is returned when a discovery run is triggered while
// another one is still active.
var ErrRunInProgress = errors.New("discovery run already in progress")

// Service orchestrates one discovery run: agent call, parsing, persistence,
// archival mirror and notification fan-out.
type Service struct {
	agent    agent.AgentInterface
	repo     database.RepositoryInterface
	archive  archive.ArchiveInterface
	notifier notifications.NotificationInterface
	broker   sse.Publisher

	// runMu serializes discovery runs; a second trigger is rejected, not queued
	runMu sync.Mutex

	metricsMu sync.RWMutex
	metrics   Metrics
}

// Metrics holds discovery run metrics
type Metrics struct {
	LastRun          time.Time `json:"last_run"`
	LastRunDuration  string    `json:"last_run_duration"`
	LastRunReports   int       `json:"last_run_reports"`
	TotalReports     int       `json:"total_reports"`
	PersistedReports int       `json:"persisted_reports"`
	ErrorCount       int       `json:"error_count"`
}

// NewService creates a new discovery service
func NewService(
	agentClient agent.AgentInterface,
	repo database.RepositoryInterface,
	archiveWriter archive.ArchiveInterface,
	notifier notifications.NotificationInterface,
	broker sse.Publisher,
) *Service {
	return &Service{
		agent:    agentClient,
		repo:     repo,
		archive:  archiveWriter,
		notifier: notifier,
		broker:   broker,
	}
}

// Run executes one discovery run. Only one run may be active at a time;
// concurrent triggers get ErrRunInProgress.
//
// Per report, persistence failure skips that report only; archive, stream and
// webhook failures are logged and never abort the run.
func (s *Service) Run(ctx context.Context) error {
	if !s.runMu.TryLock() {
		return ErrRunInProgress
	}
	defer s.runMu.Unlock()

	start := time.Now()
	logrus.Info("Starting threat discovery run")

	raw, err := s.agent.Discover(ctx)
	if err != nil {
		logrus.Errorf("Agent discovery failed: %v", err)
		s.recordRun(start, 0, 0, 1)
		return err
	}

	reports := parser.ExtractReports(raw)
	if len(reports) == 0 {
		logrus.Info("Discovery run finished: no new threats found")
		s.recordRun(start, 0, 0, 0)
		return nil
	}

	persisted := 0
	errorCount := 0
	for _, report := range reports {
		threat, err := s.repo.CreateThreat(ctx, report)
		if err != nil {
			logrus.Errorf("Failed to persist threat %q: %v", report.Title, err)
			errorCount++
			continue
		}
		persisted++
		logrus.Infof("Persisted new threat %d: %s", threat.ID, threat.Title)

		if err := s.archive.Store(ctx, threat); err != nil {
			logrus.Errorf("Failed to archive threat %d: %v", threat.ID, err)
			errorCount++
		}

		if err := s.broker.Publish(sse.NewThreatEvent(threat)); err != nil {
			logrus.Warnf("Failed to publish threat %d to stream: %v", threat.ID, err)
			errorCount++
		}

		if err := s.notifier.NotifyThreat(threat); err != nil {
			logrus.Errorf("Failed to notify threat %d: %v", threat.ID, err)
			errorCount++
		}
	}

	s.recordRun(start, len(reports), persisted, errorCount)
	logrus.Infof("Discovery run finished in %v: %d reports parsed, %d persisted, %d errors",
		time.Since(start).Round(time.Millisecond), len(reports), persisted, errorCount)

	return nil
}

func (s *Service) recordRun(start time.Time, parsed, persisted, errorCount int) {
	s.metricsMu.Lock()
	defer s.metricsMu.Unlock()

	s.metrics.LastRun = start
	s.metrics.LastRunDuration = time.Since(start).Round(time.Millisecond).String()
	s.metrics.LastRunReports = parsed
	s.metrics.TotalReports += parsed
	s.metrics.PersistedReports += persisted
	s.metrics.ErrorCount += errorCount
}

// GetMetrics returns the discovery metrics as JSON
func (s *Service) GetMetrics() string {
	s.metricsMu.RLock()
	defer s.metricsMu.RUnlock()

	data, err := json.Marshal(s.metrics)
	if err != nil {
		return "{}"
	}
	return string(data)
}
