package scheduler

import (
	"context"
	"fmt"
	"log/slog"
	"time"
	_ "time/tzdata" // embedded zoneinfo for SCHEDULER_TZ

	"github.com/robfig/cron/v3"

	"github.com/SAP-F-2025/backoffice-service/internal/config"
	"github.com/SAP-F-2025/backoffice-service/internal/services"
)

const jobTimeout = 5 * time.Minute

// ReceiptSyncer pulls new POS receipts
type ReceiptSyncer interface {
	SyncReceipts(ctx context.Context, since *time.Time) (*services.SyncResult, error)
}

// TaskGenerator materializes recurring task templates for a day
type TaskGenerator interface {
	GenerateRecurringTasks(ctx context.Context, date time.Time) (*services.GenerationResult, error)
}

// Scheduler runs the periodic back-office jobs
type Scheduler struct {
	cron     *cron.Cron
	receipts ReceiptSyncer
	tasks    TaskGenerator
	location *time.Location
	logger   *slog.Logger
}

// New registers the jobs whose spec is non-empty. Jobs never overlap with a
// still-running previous run and a panic inside a job is recovered.
func New(cfg config.SchedulerConfig, receipts ReceiptSyncer, tasks TaskGenerator, logger *slog.Logger) (*Scheduler, error) {
	location := time.UTC
	if cfg.Timezone != "" {
		loc, err := time.LoadLocation(cfg.Timezone)
		if err != nil {
			return nil, fmt.Errorf("invalid scheduler timezone %q: %w", cfg.Timezone, err)
		}
		location = loc
	}

	cronLogger := slogAdapter{logger: logger.With("component", "scheduler")}
	s := &Scheduler{
		cron: cron.New(
			cron.WithLocation(location),
			cron.WithLogger(cronLogger),
			cron.WithChain(cron.Recover(cronLogger), cron.SkipIfStillRunning(cronLogger)),
		),
		receipts: receipts,
		tasks:    tasks,
		location: location,
		logger:   logger,
	}

	if cfg.LoyverseSyncSpec != "" && receipts != nil {
		if _, err := s.cron.AddFunc(cfg.LoyverseSyncSpec, func() { s.RunReceiptSync(context.Background()) }); err != nil {
			return nil, fmt.Errorf("invalid loyverse sync schedule %q: %w", cfg.LoyverseSyncSpec, err)
		}
	}
	if cfg.RecurringTasks != "" && tasks != nil {
		if _, err := s.cron.AddFunc(cfg.RecurringTasks, func() { s.RunRecurringTasks(context.Background()) }); err != nil {
			return nil, fmt.Errorf("invalid recurring tasks schedule %q: %w", cfg.RecurringTasks, err)
		}
	}
	return s, nil
}

func (s *Scheduler) Start() {
	s.logger.Info("Scheduler started", "jobs", len(s.cron.Entries()), "timezone", s.location.String())
	s.cron.Start()
}

// Stop prevents new runs and waits for running jobs until ctx is done
func (s *Scheduler) Stop(ctx context.Context) error {
	done := s.cron.Stop()
	select {
	case <-done.Done():
		s.logger.Info("Scheduler stopped")
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

func (s *Scheduler) RunReceiptSync(ctx context.Context) {
	ctx, cancel := context.WithTimeout(ctx, jobTimeout)
	defer cancel()

	result, err := s.receipts.SyncReceipts(ctx, nil)
	if err != nil {
		s.logger.Error("Scheduled loyverse sync failed", "error", err)
		return
	}
	s.logger.Info("Scheduled loyverse sync done", "fetched", result.Fetched, "created", result.Created, "updated", result.Updated)
}

// RunRecurringTasks generates the tasks of the current day in the scheduler's timezone
func (s *Scheduler) RunRecurringTasks(ctx context.Context) {
	ctx, cancel := context.WithTimeout(ctx, jobTimeout)
	defer cancel()

	result, err := s.tasks.GenerateRecurringTasks(ctx, time.Now().In(s.location))
	if err != nil {
		s.logger.Error("Scheduled task generation failed", "error", err)
		return
	}
	s.logger.Info("Scheduled task generation done", "created", result.Created, "skipped", result.Skipped)
}

// slogAdapter satisfies cron.Logger
type slogAdapter struct {
	logger *slog.Logger
}

func (a slogAdapter) Info(msg string, keysAndValues ...interface{}) {
	a.logger.Debug(msg, keysAndValues...)
}

func (a slogAdapter) Error(err error, msg string, keysAndValues ...interface{}) {
	a.logger.Error(msg, append(keysAndValues, "error", err)...)
}
