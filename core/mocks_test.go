package core

import (
	"context"
	"sort"
	"sync"

	"github.com/google/uuid"
	"github.com/stretchr/testify/mock"
)

// MockRepository is a mock of the Repository interface
type MockRepository struct {
	mock.Mock
}

func (m *MockRepository) EnsureSchema(ctx context.Context) error {
	args := m.Called(ctx)
	return args.Error(0)
}

func (m *MockRepository) SaveEvent(ctx context.Context, event *Event) (*Event, error) {
	args := m.Called(ctx, event)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}

	return args.Get(0).(*Event), args.Error(1)
}

func (m *MockRepository) FindEvents(ctx context.Context, filter EventFilter) ([]Event, error) {
	args := m.Called(ctx, filter)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}

	return args.Get(0).([]Event), args.Error(1)
}

func (m *MockRepository) GetEventById(ctx context.Context, id string) (*Event, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}

	return args.Get(0).(*Event), args.Error(1)
}

func (m *MockRepository) MarkNotified(ctx context.Context, id string) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}

// MockNotifier is a mock of the Notifier interface
type MockNotifier struct {
	mock.Mock
}

func (m *MockNotifier) Notify(ctx context.Context, event Event) {
	m.Called(ctx, event)
}

func (m *MockNotifier) Close() {
	m.Called()
}

// MockSender is a mock of the Sender interface
type MockSender struct {
	mock.Mock
}

func (m *MockSender) Send(ctx context.Context, to string, body string) (string, error) {
	args := m.Called(ctx, to, body)
	return args.String(0), args.Error(1)
}

// memoryRepository keeps events in a map so sweeps can be replayed over time.
type memoryRepository struct {
	mu     sync.Mutex
	events map[string]Event
}

func newMemoryRepository() *memoryRepository {
	return &memoryRepository{events: map[string]Event{}}
}

func (r *memoryRepository) EnsureSchema(_ context.Context) error {
	return nil
}

func (r *memoryRepository) SaveEvent(_ context.Context, event *Event) (*Event, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	saved := *event
	saved.Id = uuid.NewString()
	saved.Notified = false
	r.events[saved.Id] = saved

	return &saved, nil
}

func (r *memoryRepository) FindEvents(_ context.Context, filter EventFilter) ([]Event, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	events := make([]Event, 0, len(r.events))

	for _, e := range r.events {
		if filter.Notified != nil && e.Notified != *filter.Notified {
			continue
		}

		events = append(events, e)
	}

	sort.Slice(events, func(i, j int) bool { return events[i].Start.Before(events[j].Start) })

	return events, nil
}

func (r *memoryRepository) GetEventById(_ context.Context, id string) (*Event, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	e, ok := r.events[id]
	if !ok {
		return nil, ErrEventNotFound
	}

	return &e, nil
}

func (r *memoryRepository) MarkNotified(_ context.Context, id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	e, ok := r.events[id]
	if !ok {
		return ErrEventNotFound
	}

	e.Notified = true
	r.events[id] = e

	return nil
}

// recordingNotifier counts dispatches per event id synchronously.
type recordingNotifier struct {
	mu    sync.Mutex
	sends map[string]int
}

func newRecordingNotifier() *recordingNotifier {
	return &recordingNotifier{sends: map[string]int{}}
}

func (n *recordingNotifier) Notify(_ context.Context, event Event) {
	n.mu.Lock()
	defer n.mu.Unlock()

	n.sends[event.Id]++
}

func (n *recordingNotifier) Close() {}

func (n *recordingNotifier) count(id string) int {
	n.mu.Lock()
	defer n.mu.Unlock()

	return n.sends[id]
}
