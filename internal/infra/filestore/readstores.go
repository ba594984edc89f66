package filestore

import (
	"context"
	"errors"
	"time"

	"spa-storefront/internal/domain/catalog"
	"spa-storefront/internal/domain/money"
	"spa-storefront/internal/infra"
	"spa-storefront/internal/usecase/queries"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type CatalogReadStore struct {
	db *gorm.DB
}

func NewCatalogReadStore(gdb *gorm.DB) *CatalogReadStore {
	return &CatalogReadStore{db: gdb}
}

// GetItems returns every requested item that exists, inactive ones included.
func (r *CatalogReadStore) GetItems(ctx context.Context, ids []uuid.UUID) (map[uuid.UUID]*catalog.Item, error) {
	items := make(map[uuid.UUID]*catalog.Item, len(ids))
	if len(ids) == 0 {
		return items, nil
	}

	var rows []serviceModel
	if err := r.db.WithContext(ctx).Where("id IN ?", uuidStrings(ids)).Find(&rows).Error; err != nil {
		return nil, infra.WrapRepoErr("failed to get catalog items", err)
	}
	for _, m := range rows {
		id, err := uuid.Parse(m.ID)
		if err != nil {
			return nil, infra.WrapRepoErr("failed to decode catalog item id", err)
		}
		categoryID, err := stringToUUIDPtr(m.CategoryID)
		if err != nil {
			return nil, infra.WrapRepoErr("failed to decode catalog category id", err)
		}
		items[id] = &catalog.Item{
			ID:         id,
			Name:       m.Name,
			Price:      money.Amount(m.Price),
			Active:     m.Active,
			CategoryID: categoryID,
		}
	}
	return items, nil
}

type BookingReadStore struct {
	db *gorm.DB
}

func NewBookingReadStore(gdb *gorm.DB) *BookingReadStore {
	return &BookingReadStore{db: gdb}
}

func (r *BookingReadStore) FindByID(ctx context.Context, id uuid.UUID) (*queries.BookingView, error) {
	m, lines, err := findBooking(ctx, r.db, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, infra.WrapRepoErr("booking not found", err, infra.KindNotFound)
		}
		return nil, infra.WrapRepoErr("failed to get booking view by id", err)
	}
	v, err := toBookingView(m, lines)
	if err != nil {
		return nil, infra.WrapRepoErr("failed to decode booking view", err)
	}
	return v, nil
}

func (r *BookingReadStore) FindFirstPage(ctx context.Context, filter queries.BookingFilter, limit int32) ([]*queries.BookingListItem, error) {
	return r.list("failed to get bookings first page", r.filtered(ctx, filter), limit)
}

func (r *BookingReadStore) FindKeyset(ctx context.Context, filter queries.BookingFilter, lastCreatedAt time.Time, lastID uuid.UUID, limit int32) ([]*queries.BookingListItem, error) {
	micros := lastCreatedAt.UnixMicro()
	q := r.filtered(ctx, filter).
		Where("b.created_micros < ? OR (b.created_micros = ? AND b.id < ?)", micros, micros, lastID.String())
	return r.list("failed to get bookings keyset page", q, limit)
}

type bookingListRow struct {
	bookingModel `gorm:"embedded"`
	ServiceCount int64 `gorm:"column:service_count"`
}

func (r *BookingReadStore) filtered(ctx context.Context, filter queries.BookingFilter) *gorm.DB {
	q := r.db.WithContext(ctx).Table("bookings AS b").
		Select("b.*, (SELECT count(*) FROM booking_lines bl WHERE bl.booking_id = b.id) AS service_count")
	if filter.CustomerID != nil {
		q = q.Where("b.customer_id = ?", filter.CustomerID.String())
	}
	if filter.Status != nil {
		q = q.Where("b.status = ?", *filter.Status)
	}
	return q
}

func (r *BookingReadStore) list(failMsg string, q *gorm.DB, limit int32) ([]*queries.BookingListItem, error) {
	var rows []bookingListRow
	if err := q.Order("b.created_micros DESC, b.id DESC").Limit(int(limit)).Scan(&rows).Error; err != nil {
		return nil, infra.WrapRepoErr(failMsg, err)
	}

	items := make([]*queries.BookingListItem, 0, len(rows))
	for _, row := range rows {
		id, err := uuid.Parse(row.ID)
		if err != nil {
			return nil, infra.WrapRepoErr("failed to decode booking id", err)
		}
		customerID, err := uuid.Parse(row.CustomerID)
		if err != nil {
			return nil, infra.WrapRepoErr("failed to decode booking customer id", err)
		}
		items = append(items, &queries.BookingListItem{
			ID:              id,
			CustomerID:      customerID,
			CustomerName:    row.CustomerName,
			AppointmentDate: row.AppointmentDate,
			AppointmentTime: row.AppointmentTime,
			ServiceCount:    int(row.ServiceCount),
			FinalAmount:     row.FinalAmount,
			Status:          row.Status,
			PaymentStatus:   row.PaymentStatus,
			CreatedAt:       time.UnixMicro(row.CreatedMicros).UTC(),
		})
	}
	return items, nil
}

type PromotionReadStore struct {
	db *gorm.DB
}

func NewPromotionReadStore(gdb *gorm.DB) *PromotionReadStore {
	return &PromotionReadStore{db: gdb}
}

func (r *PromotionReadStore) FindByCode(ctx context.Context, code string) (*queries.PromotionView, error) {
	var m promotionModel
	if err := r.db.WithContext(ctx).Where("code = ?", code).Take(&m).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, infra.WrapRepoErr("promotion not found", err, infra.KindNotFound)
		}
		return nil, infra.WrapRepoErr("failed to get promotion view", err)
	}
	v, err := toPromotionView(m)
	if err != nil {
		return nil, infra.WrapRepoErr("failed to decode promotion view", err)
	}
	return v, nil
}

func (r *PromotionReadStore) List(ctx context.Context, activeOnly bool) ([]*queries.PromotionView, error) {
	q := r.db.WithContext(ctx).Order("code")
	if activeOnly {
		q = q.Where("active = ?", true)
	}
	var rows []promotionModel
	if err := q.Find(&rows).Error; err != nil {
		return nil, infra.WrapRepoErr("failed to list promotions", err)
	}

	views := make([]*queries.PromotionView, 0, len(rows))
	for _, m := range rows {
		v, err := toPromotionView(m)
		if err != nil {
			return nil, infra.WrapRepoErr("failed to decode promotion view", err)
		}
		views = append(views, v)
	}
	return views, nil
}
