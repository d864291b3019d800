package processor

import (
	"context"

	"github.com/robfig/cron/v3"

	"recipehub/gdpr-worker/internal/app/gdpr/service"
	"recipehub/pkg/logger"
)

// cronLogger routes robfig/cron's own logging through zerolog
type cronLogger struct{}

func (cronLogger) Info(msg string, keysAndValues ...interface{}) {
	logger.Debug().Fields(keysAndValues).Msg(msg)
}

func (cronLogger) Error(err error, msg string, keysAndValues ...interface{}) {
	logger.Error().Err(err).Fields(keysAndValues).Msg(msg)
}

type CronScheduler struct {
	cron        *cron.Cron
	deletionSvc service.DeletionServiceInterface
}

func NewCronScheduler(deletionSvc service.DeletionServiceInterface) *CronScheduler {
	l := cronLogger{}
	c := cron.New(
		cron.WithLogger(l),
		cron.WithChain(cron.Recover(l), cron.SkipIfStillRunning(l)),
	)

	return &CronScheduler{
		cron:        c,
		deletionSvc: deletionSvc,
	}
}

// Start registers the deletion sweep and runs it once immediately so
// accounts that came due while the worker was down are not left waiting
// a whole period.
func (s *CronScheduler) Start(ctx context.Context, schedule string) error {
	logger.Info().Str("schedule", schedule).Msg("Starting cron scheduler")

	_, err := s.cron.AddFunc(schedule, func() {
		s.runSweep(ctx, "scheduled")
	})
	if err != nil {
		return err
	}

	s.cron.Start()
	logger.Info().Msg("Cron scheduler started")

	s.runSweep(ctx, "initial")
	return nil
}

func (s *CronScheduler) runSweep(ctx context.Context, trigger string) {
	if ctx.Err() != nil {
		return
	}

	result, err := s.deletionSvc.Sweep(ctx)
	if err != nil {
		logger.Error().Err(err).Str("trigger", trigger).Msg("Deletion sweep failed")
		return
	}

	logger.Info().
		Str("trigger", trigger).
		Int("due", result.Due).
		Int("deleted", result.Deleted).
		Int("failed", result.Failed).
		Msg("Deletion sweep completed")
}

// Stop waits for a running sweep to finish
func (s *CronScheduler) Stop() {
	logger.Info().Msg("Stopping cron scheduler...")
	ctx := s.cron.Stop()
	<-ctx.Done()
	logger.Info().Msg("Cron scheduler stopped")
}

func (s *CronScheduler) GetEntries() []cron.Entry {
	return s.cron.Entries()
}
