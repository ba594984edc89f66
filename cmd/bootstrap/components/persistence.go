package components

import (
	"context"
	"log/slog"
	"time"

	"spa-storefront/internal/infra/db"
	"spa-storefront/internal/infra/filestore"
	"spa-storefront/internal/infra/migrations"
	"spa-storefront/internal/infra/readstore"
	"spa-storefront/internal/infra/repository"
	"spa-storefront/internal/infra/uow"
	"spa-storefront/internal/pkg/config"
	"spa-storefront/internal/usecase/queries"
	"spa-storefront/internal/usecase/shared"

	"github.com/jackc/pgx/v5/pgxpool"
	"go.uber.org/fx"
)

const connectTimeout = 10 * time.Second

var PersistenceModule = fx.Module("persistence",
	fx.Provide(
		NewStores,
	),
)

// Stores is everything the use cases need from persistence, for whichever
// driver is configured.
type Stores struct {
	fx.Out

	UnitOfWork shared.UnitOfWork
	Outbox     shared.OutboxStore
	Bookings   queries.BookingReadStore
	Promotions queries.PromotionReadStore
}

func NewStores(lc fx.Lifecycle, cfg config.DBConfig) (Stores, error) {
	if cfg.Driver == config.DriverSQLite {
		return newFileStores(lc, cfg)
	}
	pool, err := newPostgres(lc, cfg)
	if err != nil {
		return Stores{}, err
	}
	return Stores{
		UnitOfWork: uow.NewPostgresUoW(pool),
		Outbox:     repository.NewOutboxRepository(pool),
		Bookings:   readstore.NewBookingReadStore(pool),
		Promotions: readstore.NewPromotionReadStore(pool),
	}, nil
}

// newPostgres connects the pool and applies pending migrations when enabled.
func newPostgres(lc fx.Lifecycle, cfg config.DBConfig) (*pgxpool.Pool, error) {
	ctx, cancel := context.WithTimeout(context.Background(), connectTimeout)
	defer cancel()

	pool, cleanup, err := db.Connect(ctx, cfg)
	if err != nil {
		return nil, err
	}

	if cfg.AutoMigrate {
		if err := migrations.Up(cfg.BuildDSN()); err != nil {
			cleanup()
			return nil, err
		}
		slog.Info("database migrations applied")
	}

	lc.Append(fx.Hook{
		OnStop: func(_ context.Context) error {
			cleanup()
			return nil
		},
	})
	return pool, nil
}

func newFileStores(lc fx.Lifecycle, cfg config.DBConfig) (Stores, error) {
	gdb, cleanup, err := filestore.Open(cfg.SQLitePath)
	if err != nil {
		return Stores{}, err
	}
	slog.Info("using file-backed store", "path", cfg.SQLitePath)

	lc.Append(fx.Hook{
		OnStop: func(_ context.Context) error {
			cleanup()
			return nil
		},
	})
	return Stores{
		UnitOfWork: filestore.NewUnitOfWork(gdb),
		Outbox:     filestore.NewOutboxRepository(gdb),
		Bookings:   filestore.NewBookingReadStore(gdb),
		Promotions: filestore.NewPromotionReadStore(gdb),
	}, nil
}
