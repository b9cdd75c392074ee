package main

import (
	"context"
	"errors"
	"math/rand"
	"time"

	"github.com/skillbazaar/backend/pkg/config"
	"github.com/skillbazaar/backend/pkg/db/models"
	"github.com/skillbazaar/backend/pkg/logger"
	"github.com/skillbazaar/backend/pkg/metrics"

	"github.com/google/uuid"
)

const (
	defaultBatchSize   = 50
	defaultPollMs      = 500
	defaultMaxAttempts = 10
	maxBackoff         = 10 * time.Second
	jitterWindow       = 250 * time.Millisecond
)

var jitterSource = rand.New(rand.NewSource(time.Now().UnixNano()))

type outboxRepository interface {
	FetchUnpublished(limit, maxAttempts int) ([]models.OutboxEvent, error)
	MarkPublished(id uuid.UUID) error
	MarkFailed(id uuid.UUID, err error) error
}

// Consumer handles one outbox event. Handlers must be idempotent: an event is
// retried until every consumer succeeds.
type Consumer interface {
	Handle(ctx context.Context, event *models.OutboxEvent) error
}

type registration struct {
	name     string
	consumer Consumer
}

type ServiceParams struct {
	Config     *config.Config
	Logger     *logger.Logger
	Repository outboxRepository
	Metrics    *metrics.WorkerMetrics
}

// Service drains the outbox table and fans each event out to the registered
// consumers in order.
type Service struct {
	cfg          *config.Config
	logg         *logger.Logger
	repo         outboxRepository
	metrics      *metrics.WorkerMetrics
	consumers    []registration
	batchSize    int
	maxAttempts  int
	pollInterval time.Duration
}

func NewService(params ServiceParams) (*Service, error) {
	if params.Config == nil {
		return nil, errors.New("config is required")
	}
	if params.Logger == nil {
		return nil, errors.New("logger is required")
	}
	if params.Repository == nil {
		return nil, errors.New("outbox repository is required")
	}

	batch := params.Config.Outbox.BatchSize
	if batch <= 0 {
		batch = defaultBatchSize
	}
	pollMs := params.Config.Outbox.PollIntervalMS
	if pollMs <= 0 {
		pollMs = defaultPollMs
	}
	maxAttempts := params.Config.Outbox.MaxAttempts
	if maxAttempts <= 0 {
		maxAttempts = defaultMaxAttempts
	}

	return &Service{
		cfg:          params.Config,
		logg:         params.Logger,
		repo:         params.Repository,
		metrics:      params.Metrics,
		batchSize:    batch,
		maxAttempts:  maxAttempts,
		pollInterval: time.Duration(pollMs) * time.Millisecond,
	}, nil
}

// Register adds a named consumer to the dispatch order.
func (s *Service) Register(name string, consumer Consumer) {
	s.consumers = append(s.consumers, registration{name: name, consumer: consumer})
}

func (s *Service) Run(ctx context.Context) error {
	if ctx == nil {
		ctx = context.Background()
	}
	if len(s.consumers) == 0 {
		return errors.New("no consumers registered")
	}

	interval := s.pollInterval
	backoff := interval

	for {
		select {
		case <-ctx.Done():
			s.logg.Info(ctx, "outbox worker context canceled")
			return ctx.Err()
		default:
		}

		processed, err := s.processBatch(ctx)
		if err != nil {
			s.logg.Error(ctx, "outbox worker batch error", err)
			backoff = nextBackoff(backoff, interval, maxBackoff)
			if err := s.sleep(ctx, withJitter(backoff)); err != nil {
				return err
			}
			continue
		}

		backoff = interval

		if processed {
			continue
		}

		if err := s.sleep(ctx, withJitter(interval)); err != nil {
			return err
		}
	}
}

func (s *Service) processBatch(ctx context.Context) (bool, error) {
	events, err := s.repo.FetchUnpublished(s.batchSize, s.maxAttempts)
	if err != nil {
		return false, err
	}
	if len(events) == 0 {
		return false, nil
	}

	for i := range events {
		event := events[i]
		if err := s.dispatch(ctx, &event); err != nil {
			if markErr := s.repo.MarkFailed(event.ID, err); markErr != nil {
				return true, markErr
			}
			continue
		}
		if err := s.repo.MarkPublished(event.ID); err != nil {
			return true, err
		}
	}
	return true, nil
}

func (s *Service) dispatch(ctx context.Context, event *models.OutboxEvent) error {
	logCtx := s.logg.WithFields(ctx, map[string]any{
		"event_id":   event.ID.String(),
		"event_type": string(event.EventType),
	})

	for _, reg := range s.consumers {
		start := time.Now()
		err := reg.consumer.Handle(logCtx, event)
		s.metrics.ObserveBatch(reg.name, time.Since(start))
		if err != nil {
			s.metrics.IncFailed(reg.name)
			s.logg.Error(s.logg.WithFields(logCtx, map[string]any{"consumer": reg.name}), "consumer failed", err)
			return err
		}
		s.metrics.IncPublished(reg.name)
	}

	s.logg.Info(logCtx, "outbox event dispatched")
	return nil
}

func (s *Service) sleep(ctx context.Context, d time.Duration) error {
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}

func nextBackoff(current, base, max time.Duration) time.Duration {
	if current <= 0 {
		return base
	}
	next := current * 2
	if next > max {
		return max
	}
	return next
}

func withJitter(d time.Duration) time.Duration {
	if d <= 0 {
		return d
	}
	return d + time.Duration(jitterSource.Int63n(int64(jitterWindow)))
}
