package shared

import (
	"context"
	"time"

	"spa-storefront/internal/domain/booking"
	"spa-storefront/internal/domain/cart"
	"spa-storefront/internal/domain/catalog"
	"spa-storefront/internal/domain/promotion"

	"github.com/google/uuid"
)

type UnitOfWork interface {
	// Within: Full transaction for write operations with retry logic.
	// fn may run more than once and must not leak state between attempts.
	Within(ctx context.Context, fn func(ctx context.Context, tx Tx) error) error
	// CommandReads: Direct access to command reads for validation outside transactions
	CommandReads() CommandReads
}

type Tx interface {
	Carts() CartRepository
	Promotions() PromotionRepository
	Bookings() BookingRepository
	Idempotency() IdempotencyRepository
	Outbox() OutboxRepository
	Reads() CommandReads
}

// CommandReads return domain aggregates and catalog snapshots for the write side.
// Missing rows come back as errors marked errs.ErrNotFound.
type CommandReads interface {
	CatalogItems(ctx context.Context, ids []uuid.UUID) (map[uuid.UUID]*catalog.Item, error)
	CartByCustomer(ctx context.Context, customerID uuid.UUID) (*cart.Cart, error)
	PromotionByCode(ctx context.Context, code promotion.Code) (*promotion.Promotion, error)
	BookingByID(ctx context.Context, id uuid.UUID) (*booking.Booking, error)
	IdempotencyByKey(ctx context.Context, key, customerID uuid.UUID) (*IdempotencyRecord, error)
}

type CartRepository interface {
	// Lock creates the cart header if absent and holds its row lock until the
	// transaction ends. Read the cart after Lock when it will be saved back.
	Lock(ctx context.Context, customerID uuid.UUID, now time.Time) error
	// Save writes the whole cart, replacing its lines.
	Save(ctx context.Context, c *cart.Cart) error
}

type PromotionRepository interface {
	Create(ctx context.Context, p *promotion.Promotion) error
	// Update writes the definition fields only; used_count is owned by IncrementUsage.
	Update(ctx context.Context, p *promotion.Promotion) error
	// IncrementUsage is a single conditional update: it bumps used_count only
	// while the limit allows and returns the new count.
	IncrementUsage(ctx context.Context, code promotion.Code) (int, error)
}

type BookingRepository interface {
	Create(ctx context.Context, b *booking.Booking) error
	// Update writes the mutable state: status, payment status, staff fields.
	Update(ctx context.Context, b *booking.Booking) error
}

type IdempotencyRepository interface {
	Save(ctx context.Context, rec IdempotencyRecord) error
	Delete(ctx context.Context, key, customerID uuid.UUID) error
}

type OutboxRepository interface {
	Append(ctx context.Context, event OutboxEvent) error
}

// OutboxStore is the relay side of the outbox, used outside request transactions.
type OutboxStore interface {
	FetchPending(ctx context.Context, limit int) ([]OutboxEvent, error)
	MarkPublished(ctx context.Context, ids []uuid.UUID, at time.Time) error
}
