package resources

import (
	"context"
	"fmt"

	"github.com/robfig/cron/v3"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

// CreateScheduler registers job on a standard five-field cron schedule. A run
// still in progress makes the next tick skip, and a panicking job is recovered.
func CreateScheduler(ctx context.Context, schedule string, job func()) (*cron.Cron, error) {
	logger := NewCronLogger(log.Ctx(ctx).With().Str("component", "scheduler").Logger())

	scheduler := cron.New(
		cron.WithLogger(logger),
		cron.WithChain(cron.Recover(logger), cron.SkipIfStillRunning(logger)),
	)

	_, err := scheduler.AddFunc(schedule, job)
	if err != nil {
		return nil, fmt.Errorf("failed to schedule %q: %w", schedule, err)
	}

	return scheduler, nil
}

// CronLogger sends cron's key/value logging to zerolog.
type CronLogger struct {
	logger zerolog.Logger
}

func NewCronLogger(logger zerolog.Logger) *CronLogger {
	return &CronLogger{logger: logger}
}

func (l *CronLogger) Info(msg string, keysAndValues ...any) {
	l.logger.Debug().Fields(keysAndValues).Msg(msg)
}

func (l *CronLogger) Error(err error, msg string, keysAndValues ...any) {
	l.logger.Error().Err(err).Fields(keysAndValues).Msg(msg)
}
