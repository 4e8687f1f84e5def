package core

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/trace"

	"event-reminder/pkg/resources"
)

const eventColumns = "id, title, start_time, end_time, url, phone_number, notified"

type repository struct {
	tracer  trace.Tracer
	metrics *DBMetrics
	pool    resources.DBInstance
}

func NewRepository(pool resources.DBInstance) Repository {
	return &repository{
		tracer:  otel.GetTracerProvider().Tracer("event-reminder/core"),
		metrics: NewDBMetrics("postgres"),
		pool:    pool,
	}
}

func (r *repository) EnsureSchema(ctx context.Context) error {
	start := time.Now()

	var err error

	defer func() { r.metrics.Observe(ctx, "ensure_schema", start, err) }()

	ctx, span := r.tracer.Start(ctx, "repository.EnsureSchema")
	defer span.End()

	_, err = r.pool.Exec(ctx,
		`CREATE TABLE IF NOT EXISTS events (
			id           TEXT PRIMARY KEY,
			title        TEXT NOT NULL DEFAULT '',
			start_time   TIMESTAMPTZ NOT NULL,
			end_time     TIMESTAMPTZ NOT NULL,
			url          TEXT NOT NULL DEFAULT '',
			phone_number TEXT NOT NULL DEFAULT '',
			notified     BOOLEAN NOT NULL DEFAULT FALSE
		)`)
	if err != nil {
		return fmt.Errorf("failed to create events table: %w", err)
	}

	_, err = r.pool.Exec(ctx, "CREATE INDEX IF NOT EXISTS events_notified_idx ON events (notified, start_time)")
	if err != nil {
		return fmt.Errorf("failed to create events index: %w", err)
	}

	return nil
}

func (r *repository) SaveEvent(ctx context.Context, event *Event) (*Event, error) {
	start := time.Now()

	var err error

	defer func() { r.metrics.Observe(ctx, "save_event", start, err) }()

	ctx, span := r.tracer.Start(ctx, "repository.SaveEvent")
	defer span.End()

	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to begin transaction: %w", err)
	}

	var savedEvent Event

	err = tx.QueryRow(ctx,
		"INSERT INTO events ("+eventColumns+") "+
			"VALUES ($1, $2, $3, $4, $5, $6, $7) "+
			"RETURNING "+eventColumns,
		uuid.NewString(), event.Title, event.Start, event.End, event.Url, event.PhoneNumber, false).
		Scan(&savedEvent.Id, &savedEvent.Title, &savedEvent.Start, &savedEvent.End,
			&savedEvent.Url, &savedEvent.PhoneNumber, &savedEvent.Notified)
	if err != nil {
		_ = tx.Rollback(ctx)
		return nil, fmt.Errorf("failed to insert event: %w", err)
	}

	err = tx.Commit(ctx)
	if err != nil {
		_ = tx.Rollback(ctx)
		return nil, fmt.Errorf("failed to commit transaction: %w", err)
	}

	return &savedEvent, nil
}

func (r *repository) FindEvents(ctx context.Context, filter EventFilter) ([]Event, error) {
	start := time.Now()

	var err error

	defer func() { r.metrics.Observe(ctx, "find_events", start, err) }()

	ctx, span := r.tracer.Start(ctx, "repository.FindEvents")
	defer span.End()

	query := "SELECT " + eventColumns + " FROM events"

	var args []any
	if filter.Notified != nil {
		query += " WHERE notified = $1"
		args = append(args, *filter.Notified)
	}

	query += " ORDER BY start_time"

	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to find events: %w", err)
	}
	defer rows.Close()

	events := make([]Event, 0)

	for rows.Next() {
		var e Event

		err = rows.Scan(&e.Id, &e.Title, &e.Start, &e.End, &e.Url, &e.PhoneNumber, &e.Notified)
		if err != nil {
			return nil, fmt.Errorf("failed to scan event: %w", err)
		}

		events = append(events, e)
	}

	err = rows.Err()
	if err != nil {
		return nil, fmt.Errorf("failed to iterate events: %w", err)
	}

	return events, nil
}

func (r *repository) GetEventById(ctx context.Context, id string) (*Event, error) {
	start := time.Now()

	var err error

	defer func() { r.metrics.Observe(ctx, "get_event_by_id", start, err) }()

	ctx, span := r.tracer.Start(ctx, "repository.GetEventById")
	defer span.End()

	var e Event

	err = r.pool.QueryRow(
		ctx,
		`SELECT `+eventColumns+`
		 FROM events
		 WHERE id = $1`,
		id,
	).Scan(
		&e.Id,
		&e.Title,
		&e.Start,
		&e.End,
		&e.Url,
		&e.PhoneNumber,
		&e.Notified,
	)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrEventNotFound
	}

	if err != nil {
		return nil, fmt.Errorf("failed to get event by id: %w", err)
	}

	return &e, nil
}

// MarkNotified only ever sets the flag; nothing in the repository clears it.
func (r *repository) MarkNotified(ctx context.Context, id string) error {
	start := time.Now()

	var err error

	defer func() { r.metrics.Observe(ctx, "mark_notified", start, err) }()

	ctx, span := r.tracer.Start(ctx, "repository.MarkNotified")
	defer span.End()

	tag, err := r.pool.Exec(ctx, "UPDATE events SET notified = TRUE WHERE id = $1", id)
	if err != nil {
		return fmt.Errorf("failed to mark event as notified: %w", err)
	}

	if tag.RowsAffected() == 0 {
		err = ErrEventNotFound
		return err
	}

	return nil
}
