package bootstrap

import (
	"context"
	"log/slog"

	"spa-storefront/internal/infra/events"
	"spa-storefront/internal/pkg/clock"
	"spa-storefront/internal/pkg/config"
	"spa-storefront/internal/usecase/shared"

	"go.uber.org/fx"
)

var EventsModule = fx.Module("events",
	fx.Invoke(
		StartOutboxRelay,
	),
)

// StartOutboxRelay runs the relay for the lifetime of the app. Without
// brokers events stay in the outbox table.
func StartOutboxRelay(lc fx.Lifecycle, cfg config.KafkaConfig, store shared.OutboxStore, clk clock.Clock) {
	if len(cfg.Brokers) == 0 {
		slog.Info("outbox relay disabled: no kafka brokers configured")
		return
	}

	writer := events.NewKafkaWriter(cfg)
	relay := events.NewRelay(store, writer, clk, cfg)
	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})

	lc.Append(fx.Hook{
		OnStart: func(_ context.Context) error {
			go func() {
				defer close(done)
				relay.Run(ctx)
			}()
			slog.Info("outbox relay started", "topic", cfg.Topic, "brokers", cfg.Brokers)
			return nil
		},
		OnStop: func(stopCtx context.Context) error {
			cancel()
			select {
			case <-done:
			case <-stopCtx.Done():
			}
			return writer.Close()
		},
	})
}
