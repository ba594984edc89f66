package filestore

import (
	"context"

	"spa-storefront/internal/domain/booking"
	"spa-storefront/internal/domain/cart"
	"spa-storefront/internal/domain/catalog"
	"spa-storefront/internal/domain/promotion"
	"spa-storefront/internal/pkg/errs"
	"spa-storefront/internal/usecase/shared"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

var errTransaction = errs.Mark(errs.New("file store transaction failed"), errs.ErrInfrastructure)

// UnitOfWork runs commands against the sqlite file. sqlite serializes
// writers, so there is nothing to retry.
type UnitOfWork struct {
	db *gorm.DB
}

func NewUnitOfWork(gdb *gorm.DB) shared.UnitOfWork {
	return &UnitOfWork{db: gdb}
}

func (u *UnitOfWork) Within(ctx context.Context, fn func(ctx context.Context, tx shared.Tx) error) error {
	var fnErr error
	err := u.db.WithContext(ctx).Transaction(func(gtx *gorm.DB) error {
		fnErr = fn(ctx, &fileTx{db: gtx})
		return fnErr
	})
	if err == nil || fnErr != nil {
		return err
	}
	return errs.Mark(err, errTransaction)
}

func (u *UnitOfWork) CommandReads() shared.CommandReads {
	return &commandReads{db: u.db}
}

type fileTx struct {
	db *gorm.DB
}

func (t *fileTx) Carts() shared.CartRepository              { return NewCartRepository(t.db) }
func (t *fileTx) Promotions() shared.PromotionRepository    { return NewPromotionRepository(t.db) }
func (t *fileTx) Bookings() shared.BookingRepository        { return NewBookingRepository(t.db) }
func (t *fileTx) Idempotency() shared.IdempotencyRepository { return NewIdempotencyRepository(t.db) }
func (t *fileTx) Outbox() shared.OutboxRepository           { return NewOutboxRepository(t.db) }
func (t *fileTx) Reads() shared.CommandReads                { return &commandReads{db: t.db} }

type commandReads struct {
	db *gorm.DB
}

func (r *commandReads) CatalogItems(ctx context.Context, ids []uuid.UUID) (map[uuid.UUID]*catalog.Item, error) {
	return NewCatalogReadStore(r.db).GetItems(ctx, ids)
}

func (r *commandReads) CartByCustomer(ctx context.Context, customerID uuid.UUID) (*cart.Cart, error) {
	return NewCartRepository(r.db).FindByCustomer(ctx, customerID)
}

func (r *commandReads) PromotionByCode(ctx context.Context, code promotion.Code) (*promotion.Promotion, error) {
	return NewPromotionRepository(r.db).FindByCode(ctx, code)
}

func (r *commandReads) BookingByID(ctx context.Context, id uuid.UUID) (*booking.Booking, error) {
	return NewBookingRepository(r.db).FindByID(ctx, id)
}

func (r *commandReads) IdempotencyByKey(ctx context.Context, key, customerID uuid.UUID) (*shared.IdempotencyRecord, error) {
	return NewIdempotencyRepository(r.db).FindByKey(ctx, key, customerID)
}
