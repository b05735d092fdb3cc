package application

import (
	"context"
	"errors"
	"sync"
	"time"

	"uppf-claims/internal/config"
	"uppf-claims/internal/platform/logger"
)

// BatchRunner runs a set of consignments.
type BatchRunner interface {
	Run(ctx context.Context, consignments []Consignment) BatchSummary
}

// AutoSubmitter submits claims that need no review.
type AutoSubmitter interface {
	SweepAutoSubmit(ctx context.Context) ([]string, error)
}

// Scheduler triggers the claim batch on schedule.
type Scheduler struct {
	source    ConsignmentSource
	batch     BatchRunner
	submitter AutoSubmitter
	schedule  func() config.ScheduleConfig
	log       *logger.Logger

	mu      sync.Mutex
	lastRun time.Time
}

// NewScheduler constructs a Scheduler. schedule is read on every tick so
// a reloaded configuration takes effect without a restart. A nil
// submitter disables the auto-submit sweep.
func NewScheduler(source ConsignmentSource, batch BatchRunner, submitter AutoSubmitter, schedule func() config.ScheduleConfig, log *logger.Logger) (*Scheduler, error) {
	if source == nil {
		return nil, errors.New("scheduler: nil consignment source")
	}
	if batch == nil {
		return nil, errors.New("scheduler: nil batch")
	}
	if schedule == nil {
		schedule = func() config.ScheduleConfig { return config.Default().Schedule }
	}
	return &Scheduler{
		source:    source,
		batch:     batch,
		submitter: submitter,
		schedule:  schedule,
		log:       logger.OrNop(log),
	}, nil
}

// Start begins the scheduler loop and blocks until ctx is done.
func (s *Scheduler) Start(ctx context.Context) {
	if s == nil {
		return
	}
	ticker := time.NewTicker(time.Minute)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case now := <-ticker.C:
			now = now.UTC()
			if !s.due(now) {
				continue
			}
			if _, err := s.RunOnce(ctx, now); err != nil {
				s.log.Error("claim schedule error", "error", err)
			}
		}
	}
}

// RunOnce processes the pending consignments once and sweeps auto-submit
// claims when enabled.
func (s *Scheduler) RunOnce(ctx context.Context, now time.Time) (BatchSummary, error) {
	s.mu.Lock()
	s.lastRun = now
	s.mu.Unlock()

	sched := s.schedule()
	pending, err := s.source.PendingClaims(ctx, sched.BatchLimit)
	if err != nil {
		return BatchSummary{}, err
	}
	summary := s.batch.Run(ctx, pending)

	if sched.AutoSubmit && s.submitter != nil {
		submitted, err := s.submitter.SweepAutoSubmit(ctx)
		if err != nil {
			return summary, err
		}
		s.log.Info("auto submit sweep", "submitted", len(submitted))
	}
	return summary, nil
}

// due reports whether a tick at now should run the batch. A positive
// interval takes precedence over the daily time.
func (s *Scheduler) due(now time.Time) bool {
	sched := s.schedule()
	if sched.Interval > 0 {
		s.mu.Lock()
		last := s.lastRun
		s.mu.Unlock()
		return last.IsZero() || now.Sub(last) >= sched.Interval
	}
	hour, minute, err := parseDailyAt(sched.DailyAt)
	if err != nil {
		return false
	}
	return now.Hour() == hour && now.Minute() == minute
}

func parseDailyAt(value string) (int, int, error) {
	t, err := time.Parse("15:04", value)
	if err != nil {
		return 0, 0, err
	}
	return t.Hour(), t.Minute(), nil
}
