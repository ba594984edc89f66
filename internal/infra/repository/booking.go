package repository

import (
	"context"

	"spa-storefront/internal/domain/booking"
	"spa-storefront/internal/domain/money"
	"spa-storefront/internal/infra"
	"spa-storefront/internal/infra/db"
	"spa-storefront/internal/pkg/pgconv"

	"github.com/google/uuid"
)

type BookingRepository struct {
	db db.DBTX
}

func NewBookingRepository(dbtx db.DBTX) *BookingRepository {
	return &BookingRepository{db: dbtx}
}

func (r *BookingRepository) Create(ctx context.Context, b *booking.Booking) error {
	c := b.Customer()
	_, err := r.db.Exec(ctx, `
		INSERT INTO bookings (`+bookingColumns+`)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16, $17, $18, $19)`,
		b.ID(), b.CustomerID(), pgconv.DateToPgtype(b.Appointment().Date()), b.Appointment().Time(),
		b.Subtotal().Int64(), b.DiscountAmount().Int64(), b.FinalAmount().Int64(),
		pgconv.StringPtrToPgtype(b.PromotionCode()),
		b.Status().String(), b.PaymentStatus().String(), b.PaymentMethod().String(),
		c.Name(), c.Phone(), c.Email(), b.CustomerNotes(), b.StaffNotes(),
		pgconv.UUIDPtrToPgtype(b.StaffID()),
		pgconv.TimeToPgtype(b.CreatedAt()), pgconv.TimeToPgtype(b.UpdatedAt()))
	if err != nil {
		if pgconv.IsUniqueViolation(err) {
			return infra.WrapRepoErr("booking already exists", err, infra.KindDuplicateKey)
		}
		return infra.WrapRepoErr("failed to create booking", err)
	}

	for i, l := range b.Lines() {
		_, err = r.db.Exec(ctx, `
			INSERT INTO booking_lines (booking_id, position, item_id, item_name, unit_price)
			VALUES ($1, $2, $3, $4, $5)`,
			b.ID(), i, l.ItemID(), l.ItemName(), l.UnitPrice().Int64())
		if err != nil {
			return infra.WrapRepoErr("failed to create booking line", err)
		}
	}
	return nil
}

// Update writes the fields that change after creation. Prices and lines are immutable.
func (r *BookingRepository) Update(ctx context.Context, b *booking.Booking) error {
	tag, err := r.db.Exec(ctx, `
		UPDATE bookings SET
			status = $2, payment_status = $3, staff_id = $4, staff_notes = $5, updated_at = $6
		WHERE id = $1`,
		b.ID(), b.Status().String(), b.PaymentStatus().String(),
		pgconv.UUIDPtrToPgtype(b.StaffID()), b.StaffNotes(), pgconv.TimeToPgtype(b.UpdatedAt()))
	if err != nil {
		return infra.WrapRepoErr("failed to update booking", err)
	}
	if tag.RowsAffected() == 0 {
		return infra.WrapDomainErr(booking.ErrNotFound, "booking not found", nil, infra.KindNotFound)
	}
	return nil
}

func (r *BookingRepository) FindByID(ctx context.Context, id uuid.UUID) (*booking.Booking, error) {
	params, err := scanBooking(r.db.QueryRow(ctx, `SELECT `+bookingColumns+` FROM bookings WHERE id = $1`, id))
	if err != nil {
		if pgconv.IsNoRows(err) {
			return nil, infra.WrapDomainErr(booking.ErrNotFound, "booking not found", err, infra.KindNotFound)
		}
		return nil, infra.WrapRepoErr("failed to get booking", err)
	}

	rows, err := r.db.Query(ctx, `
		SELECT item_id, item_name, unit_price
		FROM booking_lines
		WHERE booking_id = $1
		ORDER BY position`, id)
	if err != nil {
		return nil, infra.WrapRepoErr("failed to get booking lines", err)
	}
	defer rows.Close()

	for rows.Next() {
		var (
			itemID    uuid.UUID
			name      string
			unitPrice int64
		)
		if err := rows.Scan(&itemID, &name, &unitPrice); err != nil {
			return nil, infra.WrapRepoErr("failed to scan booking line", err)
		}
		params.Lines = append(params.Lines, booking.NewServiceLine(itemID, name, money.Amount(unitPrice)))
	}
	if err := rows.Err(); err != nil {
		return nil, infra.WrapRepoErr("failed to iterate booking lines", err)
	}

	return booking.Reconstruct(params), nil
}
