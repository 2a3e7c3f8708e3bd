package services

import (
	"context"
	"spotfinder/models"
	"sync"
	"time"
)

type fakePoints struct {
	mu     sync.Mutex
	points map[int64]int
	err    error
}

func (f *fakePoints) AddPoints(_ context.Context, id int64, delta int) (models.User, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.err != nil {
		return models.User{}, f.err
	}
	f.points[id] += delta
	return models.User{ID: id, Username: "u", Email: "u@test.com", Points: f.points[id]}, nil
}

type recordingSender struct {
	mu     sync.Mutex
	events []models.NotificationEvent
}

func (r *recordingSender) Send(event models.NotificationEvent) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.events = append(r.events, event)
}

func (r *recordingSender) Events() []models.NotificationEvent {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]models.NotificationEvent(nil), r.events...)
}

type fakePublisher struct {
	mu        sync.Mutex
	published []models.NotificationEvent
	err       error
	block     chan struct{}
}

func (f *fakePublisher) Publish(ctx context.Context, event models.NotificationEvent) error {
	if f.block != nil {
		select {
		case <-f.block:
		case <-ctx.Done():
			return ctx.Err()
		}
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.err != nil {
		return f.err
	}
	f.published = append(f.published, event)
	return nil
}

type fakePurger struct {
	calls  []time.Time
	n      int64
	err    error
	panics bool
}

func (f *fakePurger) PurgeRead(_ context.Context, cutoff time.Time) (int64, error) {
	f.calls = append(f.calls, cutoff)
	if f.panics {
		panic("boom")
	}
	return f.n, f.err
}
