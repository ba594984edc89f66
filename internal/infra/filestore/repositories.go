package filestore

import (
	"context"
	"errors"
	"time"

	"spa-storefront/internal/domain/booking"
	"spa-storefront/internal/domain/cart"
	"spa-storefront/internal/domain/promotion"
	"spa-storefront/internal/infra"
	"spa-storefront/internal/usecase/shared"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type CartRepository struct {
	db *gorm.DB
}

func NewCartRepository(gdb *gorm.DB) *CartRepository {
	return &CartRepository{db: gdb}
}

// Lock only creates the header; sqlite already serializes writers.
func (r *CartRepository) Lock(ctx context.Context, customerID uuid.UUID, now time.Time) error {
	header := cartModel{CustomerID: customerID.String(), CreatedAt: now, UpdatedAt: now}
	err := r.db.WithContext(ctx).Clauses(clause.OnConflict{DoNothing: true}).Create(&header).Error
	if err != nil {
		return infra.WrapRepoErr("failed to create cart", err)
	}
	return nil
}

func (r *CartRepository) Save(ctx context.Context, c *cart.Cart) error {
	db := r.db.WithContext(ctx)
	header := cartModel{
		CustomerID: c.CustomerID().String(),
		CreatedAt:  c.CreatedAt(),
		UpdatedAt:  c.UpdatedAt(),
	}
	err := db.Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "customer_id"}},
		DoUpdates: clause.AssignmentColumns([]string{"updated_at"}),
	}).Create(&header).Error
	if err != nil {
		return infra.WrapRepoErr("failed to upsert cart", err)
	}

	if err := db.Where("customer_id = ?", header.CustomerID).Delete(&cartLineModel{}).Error; err != nil {
		return infra.WrapRepoErr("failed to clear cart lines", err)
	}

	lines := c.Lines()
	if len(lines) == 0 {
		return nil
	}
	rows := make([]cartLineModel, 0, len(lines))
	for i, l := range lines {
		rows = append(rows, cartLineModel{
			ID:         l.ID().String(),
			CustomerID: header.CustomerID,
			ItemID:     l.ItemID().String(),
			ItemName:   l.ItemName(),
			Quantity:   l.Quantity(),
			UnitPrice:  l.UnitPrice().Int64(),
			Position:   i,
		})
	}
	if err := db.Create(&rows).Error; err != nil {
		return infra.WrapRepoErr("failed to insert cart lines", err)
	}
	return nil
}

func (r *CartRepository) FindByCustomer(ctx context.Context, customerID uuid.UUID) (*cart.Cart, error) {
	db := r.db.WithContext(ctx)
	var header cartModel
	if err := db.Where("customer_id = ?", customerID.String()).Take(&header).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, infra.WrapRepoErr("cart not found", err, infra.KindNotFound)
		}
		return nil, infra.WrapRepoErr("failed to get cart", err)
	}

	var lines []cartLineModel
	if err := db.Where("customer_id = ?", header.CustomerID).Order("position").Find(&lines).Error; err != nil {
		return nil, infra.WrapRepoErr("failed to get cart lines", err)
	}
	c, err := toCartDomain(header, lines)
	if err != nil {
		return nil, infra.WrapRepoErr("failed to decode cart", err)
	}
	return c, nil
}

type PromotionRepository struct {
	db *gorm.DB
}

func NewPromotionRepository(gdb *gorm.DB) *PromotionRepository {
	return &PromotionRepository{db: gdb}
}

func (r *PromotionRepository) Create(ctx context.Context, p *promotion.Promotion) error {
	m := toPromotionModel(p)
	if err := r.db.WithContext(ctx).Create(&m).Error; err != nil {
		if isUniqueViolation(err) {
			return infra.WrapDomainErr(promotion.ErrCodeTaken, "promotion code already exists", err, infra.KindDuplicateKey)
		}
		return infra.WrapRepoErr("failed to create promotion", err)
	}
	return nil
}

func (r *PromotionRepository) Update(ctx context.Context, p *promotion.Promotion) error {
	m := toPromotionModel(p)
	res := r.db.WithContext(ctx).Model(&m).
		Select("kind", "value", "min_order", "max_discount", "starts_at", "ends_at",
			"usage_limit", "item_ids", "category_ids", "active", "updated_at").
		Updates(&m)
	if res.Error != nil {
		return infra.WrapRepoErr("failed to update promotion", res.Error)
	}
	if res.RowsAffected == 0 {
		return infra.WrapDomainErr(promotion.ErrNotFound, "promotion not found", nil, infra.KindNotFound)
	}
	return nil
}

// IncrementUsage bumps used_count only while the limit allows. When no row
// is updated a second read tells an unknown code from an exhausted one.
func (r *PromotionRepository) IncrementUsage(ctx context.Context, code promotion.Code) (int, error) {
	db := r.db.WithContext(ctx)
	res := db.Model(&promotionModel{}).
		Where("code = ? AND (usage_limit IS NULL OR used_count < usage_limit)", code.String()).
		UpdateColumn("used_count", gorm.Expr("used_count + 1"))
	if res.Error != nil {
		return 0, infra.WrapRepoErr("failed to increment promotion usage", res.Error)
	}

	var m promotionModel
	err := db.Select("used_count").Where("code = ?", code.String()).Take(&m).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return 0, infra.WrapDomainErr(promotion.ErrNotFound, "promotion not found", nil, infra.KindNotFound)
		}
		return 0, infra.WrapRepoErr("failed to read promotion usage", err)
	}
	if res.RowsAffected == 0 {
		return 0, infra.WrapDomainErr(promotion.ErrUsageExhausted, "promotion usage limit reached", nil, infra.KindConflict)
	}
	return m.UsedCount, nil
}

func (r *PromotionRepository) FindByCode(ctx context.Context, code promotion.Code) (*promotion.Promotion, error) {
	var m promotionModel
	if err := r.db.WithContext(ctx).Where("code = ?", code.String()).Take(&m).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, infra.WrapDomainErr(promotion.ErrNotFound, "promotion not found", err, infra.KindNotFound)
		}
		return nil, infra.WrapRepoErr("failed to get promotion by code", err)
	}
	p, err := toPromotionDomain(m)
	if err != nil {
		return nil, infra.WrapRepoErr("failed to decode promotion", err)
	}
	return p, nil
}

// bookingLineBatchSize keeps one insert well under sqlite's bound-variable limit.
const bookingLineBatchSize = 100

type BookingRepository struct {
	db *gorm.DB
}

func NewBookingRepository(gdb *gorm.DB) *BookingRepository {
	return &BookingRepository{db: gdb}
}

func (r *BookingRepository) Create(ctx context.Context, b *booking.Booking) error {
	m, lines := toBookingModel(b)
	db := r.db.WithContext(ctx)
	if err := db.Create(&m).Error; err != nil {
		return infra.WrapRepoErr("failed to create booking", err)
	}
	if len(lines) > 0 {
		if err := db.CreateInBatches(&lines, bookingLineBatchSize).Error; err != nil {
			return infra.WrapRepoErr("failed to create booking lines", err)
		}
	}
	return nil
}

func (r *BookingRepository) Update(ctx context.Context, b *booking.Booking) error {
	res := r.db.WithContext(ctx).Model(&bookingModel{}).Where("id = ?", b.ID().String()).
		Updates(map[string]any{
			"status":         b.Status().String(),
			"payment_status": b.PaymentStatus().String(),
			"staff_id":       uuidPtrToString(b.StaffID()),
			"staff_notes":    b.StaffNotes(),
			"updated_at":     b.UpdatedAt(),
		})
	if res.Error != nil {
		return infra.WrapRepoErr("failed to update booking", res.Error)
	}
	if res.RowsAffected == 0 {
		return infra.WrapDomainErr(booking.ErrNotFound, "booking not found", nil, infra.KindNotFound)
	}
	return nil
}

func (r *BookingRepository) FindByID(ctx context.Context, id uuid.UUID) (*booking.Booking, error) {
	m, lines, err := findBooking(ctx, r.db, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, infra.WrapDomainErr(booking.ErrNotFound, "booking not found", err, infra.KindNotFound)
		}
		return nil, infra.WrapRepoErr("failed to get booking", err)
	}
	b, err := toBookingDomain(m, lines)
	if err != nil {
		return nil, infra.WrapRepoErr("failed to decode booking", err)
	}
	return b, nil
}

func findBooking(ctx context.Context, gdb *gorm.DB, id uuid.UUID) (bookingModel, []bookingLineModel, error) {
	db := gdb.WithContext(ctx)
	var m bookingModel
	if err := db.Where("id = ?", id.String()).Take(&m).Error; err != nil {
		return m, nil, err
	}
	var lines []bookingLineModel
	if err := db.Where("booking_id = ?", m.ID).Order("position").Find(&lines).Error; err != nil {
		return m, nil, err
	}
	return m, lines, nil
}

type IdempotencyRepository struct {
	db *gorm.DB
}

func NewIdempotencyRepository(gdb *gorm.DB) *IdempotencyRepository {
	return &IdempotencyRepository{db: gdb}
}

func (r *IdempotencyRepository) Save(ctx context.Context, rec shared.IdempotencyRecord) error {
	m := idempotencyModel{
		Key:         rec.Key.String(),
		CustomerID:  rec.CustomerID.String(),
		Endpoint:    rec.Endpoint,
		RequestHash: rec.RequestHash,
		BookingID:   rec.BookingID.String(),
		ExpiresAt:   rec.ExpiresAt,
		CreatedAt:   rec.CreatedAt,
	}
	if err := r.db.WithContext(ctx).Create(&m).Error; err != nil {
		if isUniqueViolation(err) {
			return infra.WrapDomainErr(shared.ErrIdempotencyInFlight, "idempotency key already used", err, infra.KindDuplicateKey)
		}
		return infra.WrapRepoErr("failed to save idempotency key", err)
	}
	return nil
}

func (r *IdempotencyRepository) Delete(ctx context.Context, key, customerID uuid.UUID) error {
	err := r.db.WithContext(ctx).
		Where("key = ? AND customer_id = ?", key.String(), customerID.String()).
		Delete(&idempotencyModel{}).Error
	if err != nil {
		return infra.WrapRepoErr("failed to delete idempotency key", err)
	}
	return nil
}

func (r *IdempotencyRepository) FindByKey(ctx context.Context, key, customerID uuid.UUID) (*shared.IdempotencyRecord, error) {
	var m idempotencyModel
	err := r.db.WithContext(ctx).
		Where("key = ? AND customer_id = ?", key.String(), customerID.String()).
		Take(&m).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, infra.WrapRepoErr("idempotency key not found", err, infra.KindNotFound)
		}
		return nil, infra.WrapRepoErr("failed to get idempotency key", err)
	}
	rec, err := toIdempotencyRecord(m)
	if err != nil {
		return nil, infra.WrapRepoErr("failed to decode idempotency key", err)
	}
	return rec, nil
}

// OutboxRepository appends events inside a transaction and serves the relay
// when bound to the root handle.
type OutboxRepository struct {
	db *gorm.DB
}

func NewOutboxRepository(gdb *gorm.DB) *OutboxRepository {
	return &OutboxRepository{db: gdb}
}

func (r *OutboxRepository) Append(ctx context.Context, e shared.OutboxEvent) error {
	m := outboxModel{
		ID:            e.ID.String(),
		AggregateID:   e.AggregateID.String(),
		EventType:     e.EventType,
		Payload:       string(e.Payload),
		CreatedMicros: e.CreatedAt.UnixMicro(),
		CreatedAt:     e.CreatedAt,
	}
	if err := r.db.WithContext(ctx).Create(&m).Error; err != nil {
		return infra.WrapRepoErr("failed to append outbox event", err)
	}
	return nil
}

func (r *OutboxRepository) FetchPending(ctx context.Context, limit int) ([]shared.OutboxEvent, error) {
	var rows []outboxModel
	err := r.db.WithContext(ctx).
		Where("published_at IS NULL").
		Order("created_micros, id").
		Limit(limit).
		Find(&rows).Error
	if err != nil {
		return nil, infra.WrapRepoErr("failed to fetch pending outbox events", err)
	}

	events := make([]shared.OutboxEvent, 0, len(rows))
	for _, m := range rows {
		id, err := uuid.Parse(m.ID)
		if err != nil {
			return nil, infra.WrapRepoErr("failed to decode outbox event id", err)
		}
		aggregateID, err := uuid.Parse(m.AggregateID)
		if err != nil {
			return nil, infra.WrapRepoErr("failed to decode outbox aggregate id", err)
		}
		events = append(events, shared.OutboxEvent{
			ID:          id,
			AggregateID: aggregateID,
			EventType:   m.EventType,
			Payload:     []byte(m.Payload),
			CreatedAt:   m.CreatedAt.UTC(),
		})
	}
	return events, nil
}

func (r *OutboxRepository) MarkPublished(ctx context.Context, ids []uuid.UUID, at time.Time) error {
	if len(ids) == 0 {
		return nil
	}
	err := r.db.WithContext(ctx).Model(&outboxModel{}).
		Where("id IN ? AND published_at IS NULL", uuidStrings(ids)).
		Update("published_at", at).Error
	if err != nil {
		return infra.WrapRepoErr("failed to mark outbox events published", err)
	}
	return nil
}
