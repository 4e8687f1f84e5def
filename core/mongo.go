package core

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/trace"
)

type mongoRepository struct {
	tracer     trace.Tracer
	metrics    *DBMetrics
	collection *mongo.Collection
}

// NewMongoRepository stores events as documents keyed by a UUID string _id.
func NewMongoRepository(collection *mongo.Collection) Repository {
	return &mongoRepository{
		tracer:     otel.GetTracerProvider().Tracer("event-reminder/core"),
		metrics:    NewDBMetrics("mongodb"),
		collection: collection,
	}
}

func (r *mongoRepository) EnsureSchema(ctx context.Context) error {
	start := time.Now()

	var err error

	defer func() { r.metrics.Observe(ctx, "ensure_schema", start, err) }()

	ctx, span := r.tracer.Start(ctx, "mongoRepository.EnsureSchema")
	defer span.End()

	_, err = r.collection.Indexes().CreateOne(ctx, mongo.IndexModel{
		Keys: bson.D{{Key: "notified", Value: 1}, {Key: "start", Value: 1}},
	})
	if err != nil {
		return fmt.Errorf("failed to create events index: %w", err)
	}

	return nil
}

func (r *mongoRepository) SaveEvent(ctx context.Context, event *Event) (*Event, error) {
	start := time.Now()

	var err error

	defer func() { r.metrics.Observe(ctx, "save_event", start, err) }()

	ctx, span := r.tracer.Start(ctx, "mongoRepository.SaveEvent")
	defer span.End()

	savedEvent := *event
	savedEvent.Id = uuid.NewString()
	savedEvent.Notified = false

	_, err = r.collection.InsertOne(ctx, savedEvent)
	if err != nil {
		return nil, fmt.Errorf("failed to insert event: %w", err)
	}

	return &savedEvent, nil
}

func (r *mongoRepository) FindEvents(ctx context.Context, filter EventFilter) ([]Event, error) {
	start := time.Now()

	var err error

	defer func() { r.metrics.Observe(ctx, "find_events", start, err) }()

	ctx, span := r.tracer.Start(ctx, "mongoRepository.FindEvents")
	defer span.End()

	query := bson.M{}
	if filter.Notified != nil {
		query["notified"] = *filter.Notified
	}

	cursor, err := r.collection.Find(ctx, query, options.Find().SetSort(bson.D{{Key: "start", Value: 1}}))
	if err != nil {
		return nil, fmt.Errorf("failed to find events: %w", err)
	}

	events := make([]Event, 0)

	err = cursor.All(ctx, &events)
	if err != nil {
		return nil, fmt.Errorf("failed to decode events: %w", err)
	}

	return events, nil
}

func (r *mongoRepository) GetEventById(ctx context.Context, id string) (*Event, error) {
	start := time.Now()

	var err error

	defer func() { r.metrics.Observe(ctx, "get_event_by_id", start, err) }()

	ctx, span := r.tracer.Start(ctx, "mongoRepository.GetEventById")
	defer span.End()

	var e Event

	err = r.collection.FindOne(ctx, bson.M{"_id": id}).Decode(&e)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, ErrEventNotFound
	}

	if err != nil {
		return nil, fmt.Errorf("failed to get event by id: %w", err)
	}

	return &e, nil
}

func (r *mongoRepository) MarkNotified(ctx context.Context, id string) error {
	start := time.Now()

	var err error

	defer func() { r.metrics.Observe(ctx, "mark_notified", start, err) }()

	ctx, span := r.tracer.Start(ctx, "mongoRepository.MarkNotified")
	defer span.End()

	result, err := r.collection.UpdateByID(ctx, id, bson.M{"$set": bson.M{"notified": true}})
	if err != nil {
		return fmt.Errorf("failed to mark event as notified: %w", err)
	}

	if result.MatchedCount == 0 {
		err = ErrEventNotFound
		return err
	}

	return nil
}
