package events

import (
	"context"
	"log/slog"
	"time"

	"spa-storefront/internal/pkg/clock"
	"spa-storefront/internal/pkg/config"
	"spa-storefront/internal/pkg/errs"
	"spa-storefront/internal/usecase/shared"

	"github.com/google/uuid"
	"github.com/segmentio/kafka-go"
)

// MessageWriter is the part of *kafka.Writer the relay uses.
type MessageWriter interface {
	WriteMessages(ctx context.Context, msgs ...kafka.Message) error
	Close() error
}

func NewKafkaWriter(cfg config.KafkaConfig) *kafka.Writer {
	return &kafka.Writer{
		Addr:                   kafka.TCP(cfg.Brokers...),
		Topic:                  cfg.Topic,
		Balancer:               &kafka.Hash{},
		RequiredAcks:           kafka.RequireAll,
		AllowAutoTopicCreation: true,
	}
}

// Relay moves committed outbox rows to the broker. Delivery is at least
// once: a crash between write and mark republishes the batch.
type Relay struct {
	store     shared.OutboxStore
	writer    MessageWriter
	clock     clock.Clock
	interval  time.Duration
	batchSize int
}

func NewRelay(store shared.OutboxStore, writer MessageWriter, clk clock.Clock, cfg config.KafkaConfig) *Relay {
	return &Relay{
		store:     store,
		writer:    writer,
		clock:     clk,
		interval:  cfg.PollInterval,
		batchSize: cfg.BatchSize,
	}
}

func (r *Relay) Run(ctx context.Context) {
	ticker := time.NewTicker(r.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if _, err := r.PublishPending(ctx); err != nil && ctx.Err() == nil {
				slog.Error("outbox relay failed", "error", err.Error())
			}
		}
	}
}

// PublishPending sends one batch and returns how many events were marked published.
func (r *Relay) PublishPending(ctx context.Context) (int, error) {
	pending, err := r.store.FetchPending(ctx, r.batchSize)
	if err != nil {
		return 0, err
	}
	if len(pending) == 0 {
		return 0, nil
	}

	msgs := make([]kafka.Message, 0, len(pending))
	ids := make([]uuid.UUID, 0, len(pending))
	for _, e := range pending {
		msgs = append(msgs, kafka.Message{
			// keyed by booking so one booking's events stay ordered
			Key:   []byte(e.AggregateID.String()),
			Value: e.Payload,
			Headers: []kafka.Header{
				{Key: "event_type", Value: []byte(e.EventType)},
				{Key: "event_id", Value: []byte(e.ID.String())},
			},
			Time: e.CreatedAt,
		})
		ids = append(ids, e.ID)
	}

	if err := r.writer.WriteMessages(ctx, msgs...); err != nil {
		return 0, errs.Wrapf(err, "failed to publish %d outbox events", len(msgs))
	}
	if err := r.store.MarkPublished(ctx, ids, r.clock.Now()); err != nil {
		return 0, err
	}

	slog.Debug("outbox events published", "count", len(ids))
	return len(ids), nil
}
