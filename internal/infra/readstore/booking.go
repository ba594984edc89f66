package readstore

import (
	"context"
	"fmt"
	"strings"
	"time"

	"spa-storefront/internal/domain/booking"
	"spa-storefront/internal/infra"
	"spa-storefront/internal/infra/db"
	"spa-storefront/internal/pkg/pgconv"
	"spa-storefront/internal/usecase/queries"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgtype"
)

type BookingReadStore struct {
	db db.DBTX
}

func NewBookingReadStore(dbtx db.DBTX) *BookingReadStore {
	return &BookingReadStore{db: dbtx}
}

func (r *BookingReadStore) FindByID(ctx context.Context, id uuid.UUID) (*queries.BookingView, error) {
	var (
		v                    queries.BookingView
		date                 pgtype.Date
		promotionCode        pgtype.Text
		staffID              pgtype.UUID
		createdAt, updatedAt pgtype.Timestamptz
	)
	err := r.db.QueryRow(ctx, `
		SELECT id, customer_id, appointment_date, appointment_time, subtotal, discount_amount,
			final_amount, promotion_code, status, payment_status, payment_method, customer_name,
			customer_phone, customer_email, customer_notes, staff_notes, staff_id, created_at, updated_at
		FROM bookings
		WHERE id = $1`, id,
	).Scan(&v.ID, &v.CustomerID, &date, &v.AppointmentTime, &v.Subtotal, &v.DiscountAmount,
		&v.FinalAmount, &promotionCode, &v.Status, &v.PaymentStatus, &v.PaymentMethod, &v.CustomerName,
		&v.CustomerPhone, &v.CustomerEmail, &v.CustomerNotes, &v.StaffNotes, &staffID, &createdAt, &updatedAt)
	if err != nil {
		if pgconv.IsNoRows(err) {
			return nil, infra.WrapRepoErr("booking not found", err, infra.KindNotFound)
		}
		return nil, infra.WrapRepoErr("failed to get booking view by id", err)
	}
	v.AppointmentDate = pgconv.DateFromPgtype(date).Format(booking.DateLayout)
	v.PromotionCode = pgconv.StringPtrFromPgtype(promotionCode)
	v.StaffID = pgconv.UUIDPtrFromPgtype(staffID)
	v.CreatedAt = pgconv.TimeFromPgtype(createdAt)
	v.UpdatedAt = pgconv.TimeFromPgtype(updatedAt)

	rows, err := r.db.Query(ctx, `
		SELECT item_id, item_name, unit_price
		FROM booking_lines
		WHERE booking_id = $1
		ORDER BY position`, id)
	if err != nil {
		return nil, infra.WrapRepoErr("failed to get booking lines", err)
	}
	defer rows.Close()

	v.Lines = []queries.BookingLineView{}
	for rows.Next() {
		var l queries.BookingLineView
		if err := rows.Scan(&l.ItemID, &l.ItemName, &l.UnitPrice); err != nil {
			return nil, infra.WrapRepoErr("failed to scan booking line", err)
		}
		v.Lines = append(v.Lines, l)
	}
	if err := rows.Err(); err != nil {
		return nil, infra.WrapRepoErr("failed to iterate booking lines", err)
	}
	return &v, nil
}

func (r *BookingReadStore) FindFirstPage(ctx context.Context, filter queries.BookingFilter, limit int32) ([]*queries.BookingListItem, error) {
	where, args := bookingFilterClause(filter)
	args = append(args, limit)
	sql := listSQL(where, fmt.Sprintf("$%d", len(args)))
	return r.list(ctx, "failed to get bookings first page", sql, args...)
}

func (r *BookingReadStore) FindKeyset(ctx context.Context, filter queries.BookingFilter, lastCreatedAt time.Time, lastID uuid.UUID, limit int32) ([]*queries.BookingListItem, error) {
	where, args := bookingFilterClause(filter)
	args = append(args, pgconv.TimeToPgtype(lastCreatedAt), lastID)
	where = append(where, fmt.Sprintf("(b.created_at, b.id) < ($%d, $%d)", len(args)-1, len(args)))
	args = append(args, limit)
	sql := listSQL(where, fmt.Sprintf("$%d", len(args)))
	return r.list(ctx, "failed to get bookings keyset page", sql, args...)
}

func (r *BookingReadStore) list(ctx context.Context, failMsg, sql string, args ...any) ([]*queries.BookingListItem, error) {
	rows, err := r.db.Query(ctx, sql, args...)
	if err != nil {
		return nil, infra.WrapRepoErr(failMsg, err)
	}
	defer rows.Close()

	items := make([]*queries.BookingListItem, 0)
	for rows.Next() {
		var (
			it        queries.BookingListItem
			date      pgtype.Date
			count     int64
			createdAt pgtype.Timestamptz
		)
		if err := rows.Scan(&it.ID, &it.CustomerID, &it.CustomerName, &date, &it.AppointmentTime,
			&count, &it.FinalAmount, &it.Status, &it.PaymentStatus, &createdAt); err != nil {
			return nil, infra.WrapRepoErr("failed to scan booking list item", err)
		}
		it.AppointmentDate = pgconv.DateFromPgtype(date).Format(booking.DateLayout)
		it.ServiceCount = int(count)
		it.CreatedAt = pgconv.TimeFromPgtype(createdAt)
		items = append(items, &it)
	}
	if err := rows.Err(); err != nil {
		return nil, infra.WrapRepoErr(failMsg, err)
	}
	return items, nil
}

func bookingFilterClause(filter queries.BookingFilter) ([]string, []any) {
	var (
		where []string
		args  []any
	)
	if filter.CustomerID != nil {
		args = append(args, *filter.CustomerID)
		where = append(where, fmt.Sprintf("b.customer_id = $%d", len(args)))
	}
	if filter.Status != nil {
		args = append(args, *filter.Status)
		where = append(where, fmt.Sprintf("b.status = $%d", len(args)))
	}
	return where, args
}

func listSQL(where []string, limitParam string) string {
	var sb strings.Builder
	sb.WriteString(`
		SELECT b.id, b.customer_id, b.customer_name, b.appointment_date, b.appointment_time,
			(SELECT count(*) FROM booking_lines bl WHERE bl.booking_id = b.id),
			b.final_amount, b.status, b.payment_status, b.created_at
		FROM bookings b`)
	if len(where) > 0 {
		sb.WriteString("\n\t\tWHERE ")
		sb.WriteString(strings.Join(where, " AND "))
	}
	sb.WriteString("\n\t\tORDER BY b.created_at DESC, b.id DESC\n\t\tLIMIT ")
	sb.WriteString(limitParam)
	return sb.String()
}
