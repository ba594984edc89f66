package queries

import (
	"context"
	"time"

	"spa-storefront/internal/domain/booking"
	"spa-storefront/internal/domain/user"
	"spa-storefront/internal/pkg/errs"

	"github.com/google/uuid"
)

type BookingReadStore interface {
	FindByID(ctx context.Context, id uuid.UUID) (*BookingView, error)
	FindFirstPage(ctx context.Context, filter BookingFilter, limit int32) ([]*BookingListItem, error)
	FindKeyset(ctx context.Context, filter BookingFilter, lastCreatedAt time.Time, lastID uuid.UUID, limit int32) ([]*BookingListItem, error)
}

type BookingQueries interface {
	GetByID(ctx context.Context, actor user.Actor, id uuid.UUID) (*BookingView, error)
	ListByCustomer(ctx context.Context, customerID uuid.UUID, cursor *Cursor, limit int) ([]*BookingListItem, *Cursor, error)
	ListAll(ctx context.Context, status string, cursor *Cursor, limit int) ([]*BookingListItem, *Cursor, error)
}

type bookingQueriesImpl struct {
	store BookingReadStore
}

func NewBookingQueries(store BookingReadStore) BookingQueries {
	return &bookingQueriesImpl{store: store}
}

// GetByID returns the booking to its owner or to an administrator.
func (q *bookingQueriesImpl) GetByID(ctx context.Context, actor user.Actor, id uuid.UUID) (*BookingView, error) {
	view, err := q.store.FindByID(ctx, id)
	if err != nil {
		if errs.Is(err, errs.ErrNotFound) {
			return nil, errs.Wrapf(booking.ErrNotFound, "booking %s", id)
		}
		return nil, err
	}
	if !actor.IsAdmin() && view.CustomerID != actor.ID {
		return nil, booking.ErrForbidden
	}
	return view, nil
}

func (q *bookingQueriesImpl) ListByCustomer(ctx context.Context, customerID uuid.UUID, cursor *Cursor, limit int) ([]*BookingListItem, *Cursor, error) {
	return q.list(ctx, BookingFilter{CustomerID: &customerID}, cursor, limit)
}

// ListAll is the administrator listing. An empty status lists every booking.
func (q *bookingQueriesImpl) ListAll(ctx context.Context, status string, cursor *Cursor, limit int) ([]*BookingListItem, *Cursor, error) {
	var filter BookingFilter
	if status != "" {
		st, err := booking.ParseStatus(status)
		if err != nil {
			return nil, nil, err
		}
		s := st.String()
		filter.Status = &s
	}
	return q.list(ctx, filter, cursor, limit)
}

func (q *bookingQueriesImpl) list(ctx context.Context, filter BookingFilter, cursor *Cursor, limit int) ([]*BookingListItem, *Cursor, error) {
	limit = ValidateLimit(limit)

	var (
		rows []*BookingListItem
		err  error
	)
	if cursor == nil || cursor.After == "" {
		rows, err = q.store.FindFirstPage(ctx, filter, int32(limit+1))
	} else {
		lastCreatedAt, lastID, derr := DecodeAfterCursor(cursor.After)
		if derr != nil {
			return nil, nil, derr
		}
		rows, err = q.store.FindKeyset(ctx, filter, lastCreatedAt, lastID, int32(limit+1))
	}
	if err != nil {
		return nil, nil, err
	}

	rows, next := paginate(rows, limit, func(r *BookingListItem) (time.Time, uuid.UUID) {
		return r.CreatedAt, r.ID
	})
	return rows, next, nil
}
