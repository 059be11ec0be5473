// Package scheduler drives the pipeline's recurring work: the minute queue
// tick and the two daily jobs. It is an explicit object owned by process
// startup, not module-level state.
package scheduler

import (
	"context"
	"fmt"
	"strconv"
	"strings"
	"sync"
	"time"

	"go.uber.org/zap"

	"viagens-crm/internal/config"
	"viagens-crm/internal/service/alerts"
	"viagens-crm/internal/service/mailqueue"
	"viagens-crm/internal/service/notification"
)

const tickTimeout = 5 * time.Minute

type Scheduler struct {
	queue    mailqueue.Service
	alerts   alerts.Service
	notifSvc notification.Service
	cfg      *config.Config
	logger   *zap.Logger

	mu          sync.Mutex
	initialized bool
	cancel      context.CancelFunc
	wg          sync.WaitGroup
}

func New(
	queue mailqueue.Service,
	alertsSvc alerts.Service,
	notifSvc notification.Service,
	cfg *config.Config,
	logger *zap.Logger,
) *Scheduler {
	return &Scheduler{
		queue:    queue,
		alerts:   alertsSvc,
		notifSvc: notifSvc,
		cfg:      cfg,
		logger:   logger,
	}
}

// Initialize registers all jobs exactly once per process lifetime; repeat
// calls are no-ops. Missed daily times during downtime are not replayed.
func (s *Scheduler) Initialize() {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.initialized {
		s.logger.Debug("scheduler already initialized")
		return
	}
	s.initialized = true

	ctx, cancel := context.WithCancel(context.Background())
	s.cancel = cancel

	s.wg.Add(3)
	go s.queueLoop(ctx)
	go s.dailyLoop(ctx, "alert-scan", s.cfg.AlertScanTime, s.runAlertScan)
	go s.dailyLoop(ctx, "cleanup", s.cfg.CleanupTime, s.runCleanup)

	s.logger.Info("scheduler initialized",
		zap.Duration("queue_tick", s.cfg.QueueTickInterval),
		zap.String("alert_scan_time", s.cfg.AlertScanTime),
		zap.String("cleanup_time", s.cfg.CleanupTime),
	)
}

func (s *Scheduler) Stop() {
	s.mu.Lock()
	cancel := s.cancel
	s.mu.Unlock()

	if cancel != nil {
		cancel()
	}
	s.wg.Wait()
}

func (s *Scheduler) queueLoop(ctx context.Context) {
	defer s.wg.Done()

	ticker := time.NewTicker(s.cfg.QueueTickInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			s.logger.Info("queue loop shutting down")
			return
		case <-ticker.C:
			tickCtx, cancel := context.WithTimeout(ctx, tickTimeout)
			processed, err := s.queue.ProcessQueue(tickCtx, s.cfg.QueueBatchSize)
			cancel()
			if err != nil {
				s.logger.Error("queue tick failed", zap.Error(err))
			} else if processed > 0 {
				s.logger.Info("queue tick finished", zap.Int("processed", processed))
			}
		}
	}
}

// dailyLoop sleeps until the next HH:MM occurrence, runs the job, then
// waits for the following day. Ticks that fall during downtime simply do
// not run.
func (s *Scheduler) dailyLoop(ctx context.Context, name, at string, job func(context.Context)) {
	defer s.wg.Done()

	hour, minute, err := parseTimeOfDay(at)
	if err != nil {
		s.logger.Error("invalid time of day, daily job disabled",
			zap.String("job", name), zap.String("at", at), zap.Error(err))
		return
	}

	for {
		wait := time.Until(nextOccurrence(time.Now(), hour, minute))
		timer := time.NewTimer(wait)

		select {
		case <-ctx.Done():
			timer.Stop()
			s.logger.Info("daily loop shutting down", zap.String("job", name))
			return
		case <-timer.C:
			jobCtx, cancel := context.WithTimeout(ctx, tickTimeout)
			job(jobCtx)
			cancel()
		}
	}
}

func (s *Scheduler) runAlertScan(ctx context.Context) {
	if err := s.alerts.RunScans(ctx); err != nil {
		s.logger.Error("alert scan failed", zap.Error(err))
	}
}

func (s *Scheduler) runCleanup(ctx context.Context) {
	if deleted, err := s.queue.CleanOldEntries(ctx, s.cfg.QueueRetentionDays); err != nil {
		s.logger.Error("queue cleanup failed", zap.Error(err))
	} else {
		s.logger.Info("queue cleanup finished", zap.Int64("deleted", deleted))
	}

	if deleted, err := s.notifSvc.CleanReadOlderThan(ctx, s.cfg.NotifRetentionDays); err != nil {
		s.logger.Error("notification cleanup failed", zap.Error(err))
	} else {
		s.logger.Info("notification cleanup finished", zap.Int64("deleted", deleted))
	}
}

func parseTimeOfDay(value string) (hour, minute int, err error) {
	parts := strings.SplitN(value, ":", 2)
	if len(parts) != 2 {
		return 0, 0, fmt.Errorf("expected HH:MM, got %q", value)
	}
	hour, err = strconv.Atoi(parts[0])
	if err != nil || hour < 0 || hour > 23 {
		return 0, 0, fmt.Errorf("invalid hour in %q", value)
	}
	minute, err = strconv.Atoi(parts[1])
	if err != nil || minute < 0 || minute > 59 {
		return 0, 0, fmt.Errorf("invalid minute in %q", value)
	}
	return hour, minute, nil
}

func nextOccurrence(now time.Time, hour, minute int) time.Time {
	next := time.Date(now.Year(), now.Month(), now.Day(), hour, minute, 0, 0, now.Location())
	if !next.After(now) {
		next = next.AddDate(0, 0, 1)
	}
	return next
}
