// Package relay publishes committed outbox records to Kafka.
package relay

import (
	"context"
	"errors"
	"fmt"
	"time"

	"storefront/internal/logging"
	"storefront/internal/metrics"
	"storefront/internal/repository/outbox"

	"github.com/segmentio/kafka-go"
	"go.uber.org/zap"
)

type source interface {
	FetchPending(ctx context.Context, limit int) ([]outbox.Record, error)
	MarkSent(ctx context.Context, id int64) error
}

type writer interface {
	WriteMessages(ctx context.Context, msgs ...kafka.Message) error
}

type Relay struct {
	src      source
	w        writer
	batch    int
	interval time.Duration
	logger   *zap.Logger
	metrics  *metrics.Metrics
}

func New(src source, w writer, batch int, interval time.Duration, logger *zap.Logger, m *metrics.Metrics) *Relay {
	if batch <= 0 {
		batch = 100
	}
	if interval <= 0 {
		interval = 5 * time.Second
	}
	return &Relay{src: src, w: w, batch: batch, interval: interval, logger: logging.OrNop(logger), metrics: m}
}

// NewWriter returns a Kafka writer that routes each message by its own Topic
// and partitions by key, so events for one order stay ordered.
func NewWriter(brokers []string) *kafka.Writer {
	return &kafka.Writer{
		Addr:         kafka.TCP(brokers...),
		Balancer:     &kafka.Hash{},
		RequiredAcks: kafka.RequireOne,
	}
}

// RunOnce publishes one batch in outbox order and returns how many records
// were marked sent. It stops at the first failed write so later records are
// never published ahead of earlier ones.
func (r *Relay) RunOnce(ctx context.Context) (int, error) {
	records, err := r.src.FetchPending(ctx, r.batch)
	if err != nil {
		return 0, fmt.Errorf("fetch pending: %w", err)
	}
	sent := 0
	for _, rec := range records {
		msg := kafka.Message{
			Topic: rec.Topic,
			Key:   []byte(rec.Key),
			Value: rec.Payload,
			Time:  rec.CreatedAt.UTC(),
			Headers: []kafka.Header{
				{Key: "event-id", Value: []byte(rec.EventID)},
			},
		}
		err := r.w.WriteMessages(ctx, msg)
		r.metrics.PublishResult(rec.Topic, err)
		if err != nil {
			return sent, fmt.Errorf("publish event %s: %w", rec.EventID, err)
		}
		// A failed mark leads to a duplicate publish on the next pass;
		// consumers dedupe on the event-id header.
		if err := r.src.MarkSent(ctx, rec.ID); err != nil {
			return sent, fmt.Errorf("mark event %s sent: %w", rec.EventID, err)
		}
		sent++
	}
	return sent, nil
}

// Run polls until ctx is cancelled. A full batch triggers an immediate
// follow-up pass instead of waiting for the next tick.
func (r *Relay) Run(ctx context.Context) error {
	ticker := time.NewTicker(r.interval)
	defer ticker.Stop()
	for {
		n, err := r.RunOnce(ctx)
		switch {
		case errors.Is(err, context.Canceled):
			return nil
		case err != nil:
			r.logger.Error("relay: pass failed", zap.Int("sent", n), zap.Error(err))
		case n > 0:
			r.logger.Info("relay: published", zap.Int("sent", n))
		}
		if err == nil && n == r.batch {
			continue
		}
		select {
		case <-ctx.Done():
			return nil
		case <-ticker.C:
		}
	}
}
