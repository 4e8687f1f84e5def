package core

import (
	"context"
	"fmt"
	"time"

	"github.com/rs/zerolog/log"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
	"go.opentelemetry.io/otel/trace"
)

const (
	DefaultReminderWindow = 30 * time.Minute
	DefaultSweepSchedule  = "*/5 * * * *"
)

type Classification int

const (
	// Pending events start later than the reminder window.
	Pending Classification = iota
	// Due events start within (0, window] of now.
	Due
	// Started events are never reminded and keep notified=false.
	Started
)

func (c Classification) String() string {
	switch c {
	case Due:
		return "due"
	case Started:
		return "started"
	default:
		return "pending"
	}
}

func Classify(start time.Time, now time.Time, window time.Duration) Classification {
	delta := start.Sub(now)

	switch {
	case delta <= 0:
		return Started
	case delta <= window:
		return Due
	default:
		return Pending
	}
}

type SweepReport struct {
	Candidates int
	Due        int
	Started    int
	Pending    int
	Failed     int
}

type Sweeper interface {
	Sweep(ctx context.Context) (SweepReport, error)
}

type sweeper struct {
	tracer     trace.Tracer
	metrics    *SweepMetrics
	repository Repository
	notifier   Notifier
	window     time.Duration
	clock      func() time.Time
}

func NewSweeper(repository Repository, notifier Notifier, window time.Duration, clock func() time.Time) Sweeper {
	if window <= 0 {
		window = DefaultReminderWindow
	}

	if clock == nil {
		clock = time.Now
	}

	return &sweeper{
		tracer:     otel.GetTracerProvider().Tracer("event-reminder/core"),
		metrics:    NewSweepMetrics(),
		repository: repository,
		notifier:   notifier,
		window:     window,
		clock:      clock,
	}
}

// Sweep reminds every unnotified event starting within the window and flags
// it. A failed query aborts the run; per-event failures do not. The flag is
// written right after the dispatch is handed off, whatever its outcome, so a
// crash in between means a second reminder on the next run.
func (s *sweeper) Sweep(ctx context.Context) (SweepReport, error) {
	var report SweepReport

	ctx, span := s.tracer.Start(ctx, "sweeper.Sweep")
	defer span.End()

	events, err := s.repository.FindEvents(ctx, NotNotified())
	if err != nil {
		s.metrics.Observe(ctx, report, err)
		return report, fmt.Errorf("failed to find unnotified events: %w", err)
	}

	now := s.clock()
	report.Candidates = len(events)

	for _, event := range events {
		switch Classify(event.Start, now, s.window) {
		case Started:
			report.Started++
		case Pending:
			report.Pending++
		case Due:
			report.Due++

			s.notifier.Notify(ctx, event)

			err := s.repository.MarkNotified(ctx, event.Id)
			if err != nil {
				report.Failed++

				log.Ctx(ctx).Error().Err(err).Str("component", "sweeper").Str("event_id", event.Id).
					Msg("failed to mark event as notified")
			}
		}
	}

	s.metrics.Observe(ctx, report, nil)

	return report, nil
}

// SweepJob adapts a Sweeper to a scheduler callback. Errors end up in the log.
func SweepJob(ctx context.Context, sweeper Sweeper) func() {
	return func() {
		logger := log.Ctx(ctx).With().Str("component", "sweeper").Logger()

		report, err := sweeper.Sweep(ctx)
		if err != nil {
			logger.Error().Err(err).Msg("sweep aborted")
			return
		}

		logger.Debug().
			Int("candidates", report.Candidates).
			Int("due", report.Due).
			Int("started", report.Started).
			Int("pending", report.Pending).
			Int("failed", report.Failed).
			Msg("sweep finished")
	}
}

/*

 */

type SweepMetrics struct {
	runs       metric.Int64Counter
	aborted    metric.Int64Counter
	dispatched metric.Int64Counter
	failed     metric.Int64Counter
}

func NewSweepMetrics() *SweepMetrics {
	meter := otel.Meter("event-reminder/sweeper")

	runs, _ := meter.Int64Counter("sweeper.runs.total")
	aborted, _ := meter.Int64Counter("sweeper.runs.aborted")
	dispatched, _ := meter.Int64Counter("sweeper.events.dispatched")
	failed, _ := meter.Int64Counter("sweeper.events.failed")

	return &SweepMetrics{runs: runs, aborted: aborted, dispatched: dispatched, failed: failed}
}

func (m *SweepMetrics) Observe(ctx context.Context, report SweepReport, err error) {
	attrs := metric.WithAttributes(attribute.String("sweeper.kind", "reminder"))

	m.runs.Add(ctx, 1, attrs)

	if err != nil {
		m.aborted.Add(ctx, 1, attrs)
		return
	}

	m.dispatched.Add(ctx, int64(report.Due), attrs)
	m.failed.Add(ctx, int64(report.Failed), attrs)
}
