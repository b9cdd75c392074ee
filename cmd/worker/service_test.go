package main

import (
	"context"
	"errors"
	"io"
	"testing"
	"time"

	"github.com/google/uuid"

	"github.com/skillbazaar/backend/pkg/config"
	"github.com/skillbazaar/backend/pkg/db/models"
	"github.com/skillbazaar/backend/pkg/enums"
	"github.com/skillbazaar/backend/pkg/logger"
)

type fakeOutboxRepo struct {
	events    []models.OutboxEvent
	published []uuid.UUID
	failed    []uuid.UUID
	fetchErr  error
}

func (f *fakeOutboxRepo) FetchUnpublished(limit, maxAttempts int) ([]models.OutboxEvent, error) {
	if f.fetchErr != nil {
		return nil, f.fetchErr
	}
	events := f.events
	f.events = nil
	if len(events) > limit {
		events = events[:limit]
	}
	return events, nil
}

func (f *fakeOutboxRepo) MarkPublished(id uuid.UUID) error {
	f.published = append(f.published, id)
	return nil
}

func (f *fakeOutboxRepo) MarkFailed(id uuid.UUID, err error) error {
	f.failed = append(f.failed, id)
	return nil
}

type fakeConsumer struct {
	handled []uuid.UUID
	err     error
}

func (f *fakeConsumer) Handle(ctx context.Context, event *models.OutboxEvent) error {
	f.handled = append(f.handled, event.ID)
	return f.err
}

func testWorkerService(t *testing.T, repo *fakeOutboxRepo) *Service {
	t.Helper()
	svc, err := NewService(ServiceParams{
		Config:     &config.Config{App: config.AppConfig{Env: "dev", Port: "0"}},
		Logger:     logger.New(logger.Options{ServiceName: "test", Output: io.Discard}),
		Repository: repo,
	})
	if err != nil {
		t.Fatalf("NewService returned error: %v", err)
	}
	return svc
}

func outboxEvent() models.OutboxEvent {
	return models.OutboxEvent{
		ID:            uuid.New(),
		EventType:     enums.EventOrderRequested,
		AggregateType: enums.AggregatePurchase,
		AggregateID:   uuid.New(),
		Payload:       []byte(`{}`),
	}
}

func TestProcessBatchMarksPublishedOnSuccess(t *testing.T) {
	first := outboxEvent()
	second := outboxEvent()
	repo := &fakeOutboxRepo{events: []models.OutboxEvent{first, second}}
	svc := testWorkerService(t, repo)

	consumer := &fakeConsumer{}
	svc.Register("test", consumer)

	processed, err := svc.processBatch(context.Background())
	if err != nil {
		t.Fatalf("processBatch returned error: %v", err)
	}
	if !processed {
		t.Fatal("expected batch to report work done")
	}
	if len(consumer.handled) != 2 {
		t.Fatalf("expected 2 handled events, got %d", len(consumer.handled))
	}
	if len(repo.published) != 2 || len(repo.failed) != 0 {
		t.Fatalf("expected 2 published and 0 failed, got %d/%d", len(repo.published), len(repo.failed))
	}
}

func TestProcessBatchMarksFailedAndContinues(t *testing.T) {
	first := outboxEvent()
	second := outboxEvent()
	repo := &fakeOutboxRepo{events: []models.OutboxEvent{first, second}}
	svc := testWorkerService(t, repo)

	svc.Register("flaky", &fakeConsumer{err: errors.New("boom")})

	processed, err := svc.processBatch(context.Background())
	if err != nil {
		t.Fatalf("processBatch returned error: %v", err)
	}
	if !processed {
		t.Fatal("expected batch to report work done")
	}
	if len(repo.failed) != 2 || len(repo.published) != 0 {
		t.Fatalf("expected 2 failed and 0 published, got %d/%d", len(repo.failed), len(repo.published))
	}
}

func TestProcessBatchIdleWhenEmpty(t *testing.T) {
	repo := &fakeOutboxRepo{}
	svc := testWorkerService(t, repo)
	svc.Register("test", &fakeConsumer{})

	processed, err := svc.processBatch(context.Background())
	if err != nil {
		t.Fatalf("processBatch returned error: %v", err)
	}
	if processed {
		t.Fatal("expected idle batch")
	}
}

func TestRunStopsOnContextCancel(t *testing.T) {
	repo := &fakeOutboxRepo{}
	svc := testWorkerService(t, repo)
	svc.Register("test", &fakeConsumer{})

	ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
	defer cancel()

	err := svc.Run(ctx)
	if !errors.Is(err, context.DeadlineExceeded) {
		t.Fatalf("expected deadline exceeded, got %v", err)
	}
}

func TestRunRequiresConsumers(t *testing.T) {
	svc := testWorkerService(t, &fakeOutboxRepo{})
	if err := svc.Run(context.Background()); err == nil {
		t.Fatal("expected error without registered consumers")
	}
}

func TestNextBackoffCapsAtMax(t *testing.T) {
	base := 100 * time.Millisecond
	current := base
	for i := 0; i < 10; i++ {
		current = nextBackoff(current, base, maxBackoff)
	}
	if current != maxBackoff {
		t.Fatalf("expected backoff to cap at %s, got %s", maxBackoff, current)
	}
}
