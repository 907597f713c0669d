package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"math/rand"
	"time"

	"github.com/google/uuid"

	"github.com/tablemesh/kds-backend/internal/realtime"
	"github.com/tablemesh/kds-backend/pkg/config"
	"github.com/tablemesh/kds-backend/pkg/db/models"
	"github.com/tablemesh/kds-backend/pkg/logger"
	"github.com/tablemesh/kds-backend/pkg/metrics"
	"github.com/tablemesh/kds-backend/pkg/outbox"
)

const (
	defaultBatchSize   = 50
	defaultPollMs      = 250
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

type roomPublisher interface {
	Publish(ctx context.Context, channel string, payload []byte) error
}

type ServiceParams struct {
	Config     *config.Config
	Logger     *logger.Logger
	Repository outboxRepository
	Publisher  roomPublisher
	Metrics    *metrics.OutboxMetrics
}

// Service drains outbox_events into the Redis realtime rooms. Each row is
// re-encoded as a wire frame and published to the one room its branch and
// station routing columns name.
type Service struct {
	cfg          *config.Config
	logg         *logger.Logger
	repo         outboxRepository
	publisher    roomPublisher
	metrics      *metrics.OutboxMetrics
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
	if params.Publisher == nil {
		return nil, errors.New("room publisher is required")
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
		publisher:    params.Publisher,
		metrics:      params.Metrics,
		batchSize:    batch,
		maxAttempts:  maxAttempts,
		pollInterval: time.Duration(pollMs) * time.Millisecond,
	}, nil
}

func (s *Service) Run(ctx context.Context) error {
	interval := s.pollInterval
	backoff := interval

	for {
		select {
		case <-ctx.Done():
			s.logg.Info(ctx, "outbox publisher context canceled")
			return ctx.Err()
		default:
		}

		processed, err := s.processBatch(ctx)
		if err != nil {
			s.logg.Error(ctx, "outbox publisher batch error", err)
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

// processBatch publishes one batch of unpublished rows. Rows that cannot be
// mapped to a wire frame are marked failed and retried until max attempts.
func (s *Service) processBatch(ctx context.Context) (bool, error) {
	events, err := s.repo.FetchUnpublished(s.batchSize, s.maxAttempts)
	if err != nil {
		return false, err
	}
	if len(events) == 0 {
		return false, nil
	}

	for _, event := range events {
		start := time.Now()
		if err := s.publishEvent(ctx, event); err != nil {
			s.metrics.IncFailure(string(event.EventType))
			logCtx := s.logg.WithFields(ctx, map[string]any{
				"event_id":   event.ID.String(),
				"event_type": string(event.EventType),
				"attempts":   event.AttemptCount + 1,
			})
			s.logg.Error(logCtx, "outbox event publish failed", err)
			if markErr := s.repo.MarkFailed(event.ID, err); markErr != nil {
				return true, markErr
			}
			continue
		}

		if err := s.repo.MarkPublished(event.ID); err != nil {
			return true, err
		}
		s.metrics.IncSuccess(string(event.EventType))
		s.metrics.ObserveDuration(string(event.EventType), time.Since(start))
	}

	return true, nil
}

func (s *Service) publishEvent(ctx context.Context, event models.OutboxEvent) error {
	frame, err := frameFromRow(event)
	if err != nil {
		return err
	}

	room := realtime.RoomFor(s.cfg.Realtime.ChannelPrefix, event.BranchID, event.Station)
	return s.publisher.Publish(ctx, room, frame)
}

// frameFromRow converts a stored outbox row into the wire frame terminals
// expect. The envelope's data payload already matches the event's wire shape.
func frameFromRow(event models.OutboxEvent) ([]byte, error) {
	kind, err := realtime.KindForEventType(event.EventType)
	if err != nil {
		return nil, err
	}

	var envelope outbox.PayloadEnvelope
	if err := json.Unmarshal(event.Payload, &envelope); err != nil {
		return nil, fmt.Errorf("decoding outbox envelope: %w", err)
	}

	evt := realtime.Event{Kind: kind}
	switch kind {
	case realtime.KindTicketCreated:
		var p realtime.TicketCreatedPayload
		if err := json.Unmarshal(envelope.Data, &p); err != nil {
			return nil, fmt.Errorf("decoding %s data: %w", kind, err)
		}
		evt.TicketCreated = &p
	case realtime.KindOrderUpdated:
		var p realtime.OrderUpdatedPayload
		if err := json.Unmarshal(envelope.Data, &p); err != nil {
			return nil, fmt.Errorf("decoding %s data: %w", kind, err)
		}
		evt.OrderUpdated = &p
	case realtime.KindPaymentRecorded:
		var p realtime.PaymentRecordedPayload
		if err := json.Unmarshal(envelope.Data, &p); err != nil {
			return nil, fmt.Errorf("decoding %s data: %w", kind, err)
		}
		evt.PaymentRecorded = &p
	case realtime.KindItemStatusChange:
		var p realtime.ItemStatusPayload
		if err := json.Unmarshal(envelope.Data, &p); err != nil {
			return nil, fmt.Errorf("decoding %s data: %w", kind, err)
		}
		evt.ItemStatus = &p
	default:
		return nil, fmt.Errorf("unhandled wire kind %q", kind)
	}

	return evt.Encode()
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

func nextBackoff(current, base, ceiling time.Duration) time.Duration {
	if current <= 0 {
		return base
	}
	doubled := current * 2
	if doubled > ceiling {
		return ceiling
	}
	return doubled
}

func withJitter(d time.Duration) time.Duration {
	if d <= 0 {
		return d
	}
	return d + time.Duration(jitterSource.Int63n(int64(jitterWindow)))
}
