package worker

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/rs/zerolog/log"

	"github.com/brightsmile/dental-api/internal/model"
	"github.com/brightsmile/dental-api/internal/repository"
	"github.com/brightsmile/dental-api/pkg/messaging"
	"github.com/brightsmile/dental-api/pkg/metrics"
)

type OutboxProcessorConfig struct {
	BatchSize     int
	PollInterval  time.Duration
	RetryAttempts int
	RetryDelay    time.Duration
	Topic         string
}

// OutboxProcessor drains pending outbox events and publishes them to the broker.
type OutboxProcessor struct {
	outboxRepo repository.OutboxRepository
	broker     messaging.Broker
	metrics    *metrics.Metrics
	config     OutboxProcessorConfig
}

func NewOutboxProcessor(
	outboxRepo repository.OutboxRepository,
	broker messaging.Broker,
	m *metrics.Metrics,
	config OutboxProcessorConfig,
) *OutboxProcessor {
	if config.BatchSize <= 0 {
		config.BatchSize = 50
	}
	if config.PollInterval <= 0 {
		config.PollInterval = 5 * time.Second
	}
	if config.RetryAttempts <= 0 {
		config.RetryAttempts = 3
	}
	if config.RetryDelay <= 0 {
		config.RetryDelay = time.Second
	}
	return &OutboxProcessor{
		outboxRepo: outboxRepo,
		broker:     broker,
		metrics:    m,
		config:     config,
	}
}

// Start blocks until ctx is cancelled.
func (p *OutboxProcessor) Start(ctx context.Context) {
	ticker := time.NewTicker(p.config.PollInterval)
	defer ticker.Stop()

	log.Info().
		Dur("poll_interval", p.config.PollInterval).
		Int("batch_size", p.config.BatchSize).
		Msg("outbox processor started")

	for {
		select {
		case <-ctx.Done():
			log.Info().Msg("outbox processor stopped")
			return
		case <-ticker.C:
			if err := p.processEvents(ctx); err != nil {
				log.Error().Err(err).Msg("outbox batch failed")
			}
		}
	}
}

func (p *OutboxProcessor) processEvents(ctx context.Context) error {
	timer := prometheus.NewTimer(p.metrics.OutboxProcessingLatency)
	defer timer.ObserveDuration()

	events, err := p.outboxRepo.GetPendingEvents(ctx, p.config.BatchSize)
	if err != nil {
		return fmt.Errorf("failed to fetch pending events: %w", err)
	}

	for _, event := range events {
		if err := p.publishWithRetry(ctx, event); err != nil {
			p.metrics.OutboxEventsFailed.Inc()
			log.Error().Err(err).
				Str("event_id", event.ID.String()).
				Str("event_type", event.EventType).
				Msg("giving up on outbox event")
			if markErr := p.outboxRepo.MarkFailed(ctx, event.ID, err.Error()); markErr != nil {
				log.Error().Err(markErr).Str("event_id", event.ID.String()).Msg("failed to mark event failed")
			}
			continue
		}

		if err := p.outboxRepo.MarkProcessed(ctx, event.ID); err != nil {
			log.Error().Err(err).Str("event_id", event.ID.String()).Msg("failed to mark event processed")
			continue
		}
		p.metrics.OutboxEventsProcessed.Inc()
	}

	return nil
}

func (p *OutboxProcessor) publishWithRetry(ctx context.Context, event *model.OutboxEvent) error {
	payload := map[string]interface{}{
		"id":         event.ID.String(),
		"event_type": event.EventType,
		"payload":    json.RawMessage(event.Payload),
		"created_at": event.CreatedAt.Format(time.RFC3339),
	}

	var lastErr error
	for attempt := 0; attempt < p.config.RetryAttempts; attempt++ {
		if attempt > 0 {
			p.metrics.OutboxRetries.WithLabelValues(event.EventType).Inc()
			select {
			case <-ctx.Done():
				return ctx.Err()
			case <-time.After(p.config.RetryDelay):
			}
		}
		if lastErr = p.broker.Publish(ctx, p.config.Topic, payload); lastErr == nil {
			return nil
		}
	}
	return fmt.Errorf("publish failed after %d attempts: %w", p.config.RetryAttempts, lastErr)
}
