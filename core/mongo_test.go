package core

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo/integration/mtest"
)

func eventDocument(id string, title string, start time.Time, notified bool) bson.D {
	return bson.D{
		{Key: "_id", Value: id},
		{Key: "title", Value: title},
		{Key: "start", Value: primitive.NewDateTimeFromTime(start)},
		{Key: "end", Value: primitive.NewDateTimeFromTime(start.Add(time.Hour))},
		{Key: "url", Value: "https://meet.example.com/" + id},
		{Key: "phoneNumber", Value: "+15550100"},
		{Key: "notified", Value: notified},
	}
}

func TestMongoRepository(t *testing.T) {
	mt := mtest.New(t, mtest.NewOptions().ClientType(mtest.Mock))

	ctx := context.Background()
	start := time.Date(2026, 10, 18, 10, 0, 0, 0, time.UTC)

	mt.Run("ensure schema", func(mt *mtest.T) {
		mt.AddMockResponses(mtest.CreateSuccessResponse())

		require.NoError(mt, NewMongoRepository(mt.Coll).EnsureSchema(ctx))
	})

	mt.Run("save assigns id and clears notified", func(mt *mtest.T) {
		mt.AddMockResponses(mtest.CreateSuccessResponse())

		saved, err := NewMongoRepository(mt.Coll).SaveEvent(ctx, &Event{Title: "Demo", Start: start, Notified: true})
		require.NoError(mt, err)
		assert.NotEmpty(mt, saved.Id)
		assert.Equal(mt, "Demo", saved.Title)
		assert.False(mt, saved.Notified)
	})

	mt.Run("save failure", func(mt *mtest.T) {
		mt.AddMockResponses(mtest.CreateCommandErrorResponse(mtest.CommandError{Code: 11000, Message: "duplicate key"}))

		_, err := NewMongoRepository(mt.Coll).SaveEvent(ctx, &Event{Title: "Demo"})
		require.Error(mt, err)
	})

	mt.Run("find events", func(mt *mtest.T) {
		ns := mt.Coll.Database().Name() + "." + mt.Coll.Name()
		mt.AddMockResponses(mtest.CreateCursorResponse(0, ns, mtest.FirstBatch,
			eventDocument("a", "First", start, false),
			eventDocument("b", "Second", start.Add(time.Hour), false),
		))

		events, err := NewMongoRepository(mt.Coll).FindEvents(ctx, NotNotified())
		require.NoError(mt, err)
		require.Len(mt, events, 2)
		assert.Equal(mt, "a", events[0].Id)
		assert.True(mt, start.Equal(events[0].Start))
		assert.Equal(mt, "+15550100", events[1].PhoneNumber)
	})

	mt.Run("find failure", func(mt *mtest.T) {
		mt.AddMockResponses(mtest.CreateCommandErrorResponse(mtest.CommandError{Code: 2, Message: "bad query"}))

		_, err := NewMongoRepository(mt.Coll).FindEvents(ctx, EventFilter{})
		require.Error(mt, err)
	})

	mt.Run("get by id not found", func(mt *mtest.T) {
		ns := mt.Coll.Database().Name() + "." + mt.Coll.Name()
		mt.AddMockResponses(mtest.CreateCursorResponse(0, ns, mtest.FirstBatch))

		_, err := NewMongoRepository(mt.Coll).GetEventById(ctx, "missing")
		require.ErrorIs(mt, err, ErrEventNotFound)
	})

	mt.Run("get by id", func(mt *mtest.T) {
		ns := mt.Coll.Database().Name() + "." + mt.Coll.Name()
		mt.AddMockResponses(mtest.CreateCursorResponse(0, ns, mtest.FirstBatch, eventDocument("a", "First", start, true)))

		event, err := NewMongoRepository(mt.Coll).GetEventById(ctx, "a")
		require.NoError(mt, err)
		assert.Equal(mt, "First", event.Title)
		assert.True(mt, event.Notified)
	})

	mt.Run("mark notified", func(mt *mtest.T) {
		mt.AddMockResponses(mtest.CreateSuccessResponse(
			bson.E{Key: "n", Value: 1},
			bson.E{Key: "nModified", Value: 1},
		))

		require.NoError(mt, NewMongoRepository(mt.Coll).MarkNotified(ctx, "a"))
	})

	mt.Run("mark notified unknown id", func(mt *mtest.T) {
		mt.AddMockResponses(mtest.CreateSuccessResponse(
			bson.E{Key: "n", Value: 0},
			bson.E{Key: "nModified", Value: 0},
		))

		err := NewMongoRepository(mt.Coll).MarkNotified(ctx, "missing")
		require.ErrorIs(mt, err, ErrEventNotFound)
	})
}
