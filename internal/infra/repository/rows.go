package repository

import (
	"spa-storefront/internal/domain/booking"
	"spa-storefront/internal/domain/money"
	"spa-storefront/internal/domain/promotion"
	"spa-storefront/internal/pkg/errs"
	"spa-storefront/internal/pkg/pgconv"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgtype"
	"github.com/shopspring/decimal"
)

const promotionColumns = `id, code, kind, value::text, min_order, max_discount, starts_at, ends_at,
	usage_limit, used_count, item_ids::text[], category_ids::text[], active, created_at, updated_at`

const bookingColumns = `id, customer_id, appointment_date, appointment_time, subtotal, discount_amount,
	final_amount, promotion_code, status, payment_status, payment_method, customer_name,
	customer_phone, customer_email, customer_notes, staff_notes, staff_id, created_at, updated_at`

type scanner interface {
	Scan(dest ...any) error
}

func scanPromotion(row scanner) (*promotion.Promotion, error) {
	var (
		id                   uuid.UUID
		code, kind, value    string
		minOrder             int64
		maxDiscount          pgtype.Int8
		startsAt, endsAt     pgtype.Timestamptz
		usageLimit           pgtype.Int4
		usedCount            int32
		itemIDs, categoryIDs []string
		active               bool
		createdAt, updatedAt pgtype.Timestamptz
	)
	err := row.Scan(&id, &code, &kind, &value, &minOrder, &maxDiscount, &startsAt, &endsAt,
		&usageLimit, &usedCount, &itemIDs, &categoryIDs, &active, &createdAt, &updatedAt)
	if err != nil {
		return nil, err
	}

	dec, err := decimal.NewFromString(value)
	if err != nil {
		return nil, errs.Wrapf(err, "promotion %s value %q", code, value)
	}
	var capAmount *money.Amount
	if maxDiscount.Valid {
		a := money.Amount(maxDiscount.Int64)
		capAmount = &a
	}
	discount, err := promotion.NewDiscount(promotion.Kind(kind), dec, capAmount)
	if err != nil {
		return nil, errs.Wrapf(err, "promotion %s discount", code)
	}
	items, err := parseUUIDs(itemIDs)
	if err != nil {
		return nil, err
	}
	categories, err := parseUUIDs(categoryIDs)
	if err != nil {
		return nil, err
	}

	var limit *int
	if usageLimit.Valid {
		l := int(usageLimit.Int32)
		limit = &l
	}

	return promotion.Reconstruct(
		id,
		promotion.Code(code),
		discount,
		money.Amount(minOrder),
		pgconv.TimeFromPgtype(startsAt),
		pgconv.TimeFromPgtype(endsAt),
		limit,
		int(usedCount),
		promotion.NewScope(items, categories),
		active,
		pgconv.TimeFromPgtype(createdAt),
		pgconv.TimeFromPgtype(updatedAt),
	), nil
}

// scanBooking reads the bookings row; lines are attached by the caller.
func scanBooking(row scanner) (booking.ReconstructParams, error) {
	var (
		p                             booking.ReconstructParams
		date                          pgtype.Date
		at                            string
		subtotal, discount, final     int64
		promotionCode                 pgtype.Text
		status, paymentStatus, method string
		name, phone, email            string
		staffID                       pgtype.UUID
		createdAt, updatedAt          pgtype.Timestamptz
	)
	err := row.Scan(&p.ID, &p.CustomerID, &date, &at, &subtotal, &discount, &final, &promotionCode,
		&status, &paymentStatus, &method, &name, &phone, &email, &p.CustomerNotes, &p.StaffNotes,
		&staffID, &createdAt, &updatedAt)
	if err != nil {
		return p, err
	}

	appointment, err := booking.NewAppointment(pgconv.DateFromPgtype(date).Format(booking.DateLayout), at)
	if err != nil {
		return p, errs.Wrapf(err, "booking %s appointment", p.ID)
	}
	customer, err := booking.NewCustomerInfo(name, phone, email)
	if err != nil {
		return p, errs.Wrapf(err, "booking %s customer", p.ID)
	}

	p.Appointment = appointment
	p.Customer = customer
	p.Subtotal = money.Amount(subtotal)
	p.DiscountAmount = money.Amount(discount)
	p.FinalAmount = money.Amount(final)
	p.PromotionCode = pgconv.StringPtrFromPgtype(promotionCode)
	p.Status = booking.Status(status)
	p.PaymentStatus = booking.PaymentStatus(paymentStatus)
	p.PaymentMethod = booking.PaymentMethod(method)
	p.StaffID = pgconv.UUIDPtrFromPgtype(staffID)
	p.CreatedAt = pgconv.TimeFromPgtype(createdAt)
	p.UpdatedAt = pgconv.TimeFromPgtype(updatedAt)
	return p, nil
}

func parseUUIDs(ss []string) ([]uuid.UUID, error) {
	out := make([]uuid.UUID, 0, len(ss))
	for _, s := range ss {
		id, err := uuid.Parse(s)
		if err != nil {
			return nil, errs.Wrapf(err, "invalid uuid %q", s)
		}
		out = append(out, id)
	}
	return out, nil
}

func uuidStrings(ids []uuid.UUID) []string {
	out := make([]string, 0, len(ids))
	for _, id := range ids {
		out = append(out, id.String())
	}
	return out
}

func amountPtrToPgtype(a *money.Amount) pgtype.Int8 {
	if a == nil {
		return pgtype.Int8{Valid: false}
	}
	return pgtype.Int8{Int64: a.Int64(), Valid: true}
}

func intPtrToPgtype(v *int) pgtype.Int4 {
	if v == nil {
		return pgtype.Int4{Valid: false}
	}
	return pgtype.Int4{Int32: int32(*v), Valid: true} // #nosec G115 -- limits are validated non-negative
}
