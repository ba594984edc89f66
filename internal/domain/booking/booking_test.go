//go:build unit

package booking_test

import (
	"strings"
	"testing"
	"time"

	"spa-storefront/internal/domain/booking"
	"spa-storefront/internal/domain/money"
	"spa-storefront/internal/domain/user"
	"spa-storefront/internal/pkg/errs"
	"spa-storefront/tests/common/builder"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewBooking(t *testing.T) {
	massage := builder.NewCatalogItemBuilder().WithPrice(8000).BuildDomain()
	facial := builder.NewCatalogItemBuilder().WithPrice(6000).BuildDomain()

	t.Run("prices one line per unit and applies the discount", func(t *testing.T) {
		b, err := builder.NewBookingBuilder().
			WithLines(builder.BookingLine{Item: massage, Quantity: 2}, builder.BookingLine{Item: facial, Quantity: 1}).
			With(func(bb *builder.BookingBuilder) { bb.Discount = 2200 }).
			BuildDomain()
		require.NoError(t, err)

		require.Len(t, b.Lines(), 3)
		assert.Equal(t, massage.ID, b.Lines()[0].ItemID())
		assert.Equal(t, facial.ID, b.Lines()[2].ItemID())
		assert.Equal(t, money.Amount(22000), b.Subtotal())
		assert.Equal(t, money.Amount(2200), b.DiscountAmount())
		assert.Equal(t, money.Amount(19800), b.FinalAmount())
		assert.Equal(t, booking.StatusPending, b.Status())
		assert.Equal(t, booking.PaymentPending, b.PaymentStatus())
		assert.Equal(t, b.CreatedAt(), b.UpdatedAt())
		assert.NotEqual(t, uuid.Nil, b.ID())
	})

	t.Run("discount is capped at the subtotal", func(t *testing.T) {
		b, err := builder.NewBookingBuilder().
			WithLines(builder.BookingLine{Item: facial, Quantity: 1}).
			With(func(bb *builder.BookingBuilder) { bb.Discount = 9000 }).
			BuildDomain()
		require.NoError(t, err)

		assert.Equal(t, money.Amount(6000), b.DiscountAmount())
		assert.Equal(t, money.Zero, b.FinalAmount())
	})

	t.Run("prepaid bookings start paid", func(t *testing.T) {
		b, err := builder.NewBookingBuilder().
			With(func(bb *builder.BookingBuilder) { bb.PaymentMethod = "prepaid" }).
			BuildDomain()
		require.NoError(t, err)
		assert.Equal(t, booking.PaymentPaid, b.PaymentStatus())
	})

	t.Run("no lines is an empty order", func(t *testing.T) {
		_, err := builder.NewBookingBuilder().WithLines().BuildDomain()
		assert.ErrorIs(t, err, booking.ErrEmptyOrder)
		assert.True(t, errs.Is(err, errs.ErrEmptyOrder))
	})

	t.Run("too many services", func(t *testing.T) {
		_, err := builder.NewBookingBuilder().
			WithLines(builder.BookingLine{Item: facial, Quantity: booking.MaxServiceLines + 1}).
			BuildDomain()
		assert.ErrorIs(t, err, booking.ErrTooManyServices)
		assert.True(t, errs.Is(err, errs.ErrInvalidQuantity))

		b, err := builder.NewBookingBuilder().
			WithLines(builder.BookingLine{Item: facial, Quantity: booking.MaxServiceLines}).
			BuildDomain()
		require.NoError(t, err)
		assert.Len(t, b.Lines(), booking.MaxServiceLines)
	})
}

func TestBookingValueObjects(t *testing.T) {
	t.Run("appointment", func(t *testing.T) {
		cases := []struct {
			date, at string
			err      error
		}{
			{date: "2025-03-15", at: "09:00"},
			{date: "2020-01-01", at: "23:59"},
			{date: "2025-13-01", at: "09:00", err: booking.ErrInvalidAppointmentDate},
			{date: "15/03/2025", at: "09:00", err: booking.ErrInvalidAppointmentDate},
			{date: "2025-03-15", at: "9:00", err: booking.ErrInvalidAppointmentTime},
			{date: "2025-03-15", at: "24:00", err: booking.ErrInvalidAppointmentTime},
		}
		for _, tc := range cases {
			a, err := booking.NewAppointment(tc.date, tc.at)
			if tc.err != nil {
				assert.ErrorIs(t, err, tc.err, "%s %s", tc.date, tc.at)
				continue
			}
			require.NoError(t, err)
			assert.Equal(t, tc.date, a.DateString())
			assert.Equal(t, tc.at, a.Time())
		}
	})

	t.Run("customer info", func(t *testing.T) {
		c, err := booking.NewCustomerInfo("  Hanako ", "090", "")
		require.NoError(t, err)
		assert.Equal(t, "Hanako", c.Name())
		assert.Empty(t, c.Email())

		_, err = booking.NewCustomerInfo(" ", "090", "")
		assert.ErrorIs(t, err, booking.ErrInvalidCustomerName)
		_, err = booking.NewCustomerInfo("Hanako", "", "")
		assert.ErrorIs(t, err, booking.ErrInvalidCustomerPhone)
		_, err = booking.NewCustomerInfo("Hanako", "090", "not-an-email")
		assert.ErrorIs(t, err, booking.ErrInvalidCustomerEmail)
	})

	t.Run("notes length", func(t *testing.T) {
		_, err := booking.NewNotes(strings.Repeat("a", booking.MaxNotesLength))
		assert.NoError(t, err)
		_, err = booking.NewNotes(strings.Repeat("a", booking.MaxNotesLength+1))
		assert.ErrorIs(t, err, booking.ErrNotesTooLong)
	})

	t.Run("parsers", func(t *testing.T) {
		st, err := booking.ParseStatus(" In_Progress ")
		require.NoError(t, err)
		assert.Equal(t, booking.StatusInProgress, st)
		_, err = booking.ParseStatus("done")
		assert.ErrorIs(t, err, booking.ErrInvalidStatus)

		_, err = booking.ParsePaymentStatus("void")
		assert.ErrorIs(t, err, booking.ErrInvalidPaymentStatus)
		_, err = booking.ParsePaymentMethod("crypto")
		assert.ErrorIs(t, err, booking.ErrInvalidPaymentMethod)
	})
}

func TestTransitionStatus(t *testing.T) {
	owner := uuid.New()
	admin := user.NewActor(uuid.New(), user.RoleAdmin)
	customer := user.NewActor(owner, user.RoleCustomer)
	stranger := user.NewActor(uuid.New(), user.RoleCustomer)

	newBooking := func(t *testing.T, status booking.Status) *booking.Booking {
		t.Helper()
		b, err := builder.NewBookingBuilder().With(func(bb *builder.BookingBuilder) { bb.CustomerID = owner }).BuildDomain()
		require.NoError(t, err)
		if status != booking.StatusPending {
			_, err = b.TransitionStatus(admin, status, builder.FixedNow)
			require.NoError(t, err)
		}
		return b
	}

	cases := []struct {
		name    string
		from    booking.Status
		actor   user.Actor
		target  booking.Status
		changed bool
		errIs   error
	}{
		{name: "admin confirms", from: booking.StatusPending, actor: admin, target: booking.StatusConfirmed, changed: true},
		{name: "admin skips forward", from: booking.StatusPending, actor: admin, target: booking.StatusCompleted, changed: true},
		{name: "admin starts confirmed", from: booking.StatusConfirmed, actor: admin, target: booking.StatusInProgress, changed: true},
		{name: "backwards is rejected", from: booking.StatusConfirmed, actor: admin, target: booking.StatusPending, errIs: errs.ErrInvalidTransition},
		{name: "same status is a no-op", from: booking.StatusConfirmed, actor: admin, target: booking.StatusConfirmed},
		{name: "completed is terminal", from: booking.StatusCompleted, actor: admin, target: booking.StatusCancelled, errIs: errs.ErrInvalidTransition},
		{name: "cancelled is terminal", from: booking.StatusCancelled, actor: admin, target: booking.StatusConfirmed, errIs: errs.ErrInvalidTransition},
		{name: "cancelling twice is rejected", from: booking.StatusCancelled, actor: admin, target: booking.StatusCancelled, errIs: errs.ErrInvalidTransition},
		{name: "admin cancels in progress", from: booking.StatusInProgress, actor: admin, target: booking.StatusCancelled, changed: true},
		{name: "owner cancels", from: booking.StatusConfirmed, actor: customer, target: booking.StatusCancelled, changed: true},
		{name: "owner cannot confirm", from: booking.StatusPending, actor: customer, target: booking.StatusConfirmed, errIs: errs.ErrForbidden},
		{name: "stranger cannot cancel", from: booking.StatusPending, actor: stranger, target: booking.StatusCancelled, errIs: errs.ErrForbidden},
		{name: "unknown target", from: booking.StatusPending, actor: admin, target: booking.Status("done"), errIs: booking.ErrInvalidStatus},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			b := newBooking(t, tc.from)
			later := builder.FixedNow.Add(time.Hour)

			changed, err := b.TransitionStatus(tc.actor, tc.target, later)
			if tc.errIs != nil {
				assert.True(t, errs.Is(err, tc.errIs), "expected %v, got %v", tc.errIs, err)
				assert.Equal(t, tc.from, b.Status())
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tc.changed, changed)
			assert.Equal(t, tc.target, b.Status())
			if tc.changed {
				assert.Equal(t, later, b.UpdatedAt())
			}
		})
	}

	t.Run("completion settles a pending payment", func(t *testing.T) {
		b := newBooking(t, booking.StatusInProgress)
		require.Equal(t, booking.PaymentPending, b.PaymentStatus())

		_, err := b.TransitionStatus(admin, booking.StatusCompleted, builder.FixedNow)
		require.NoError(t, err)
		assert.Equal(t, booking.PaymentPaid, b.PaymentStatus())
	})
}

func TestTransitionPayment(t *testing.T) {
	admin := user.NewActor(uuid.New(), user.RoleAdmin)

	newBooking := func(t *testing.T) *booking.Booking {
		t.Helper()
		b, err := builder.NewBookingBuilder().BuildDomain()
		require.NoError(t, err)
		return b
	}

	t.Run("pending to paid to refunded", func(t *testing.T) {
		b := newBooking(t)

		changed, err := b.TransitionPayment(admin, booking.PaymentPaid, builder.FixedNow)
		require.NoError(t, err)
		assert.True(t, changed)

		changed, err = b.TransitionPayment(admin, booking.PaymentRefunded, builder.FixedNow)
		require.NoError(t, err)
		assert.True(t, changed)
		assert.Equal(t, booking.PaymentRefunded, b.PaymentStatus())

		_, err = b.TransitionPayment(admin, booking.PaymentPaid, builder.FixedNow)
		assert.ErrorIs(t, err, booking.ErrInvalidTransition)
	})

	t.Run("pending cannot jump to refunded", func(t *testing.T) {
		_, err := newBooking(t).TransitionPayment(admin, booking.PaymentRefunded, builder.FixedNow)
		assert.ErrorIs(t, err, booking.ErrInvalidTransition)
	})

	t.Run("same status is a no-op", func(t *testing.T) {
		changed, err := newBooking(t).TransitionPayment(admin, booking.PaymentPending, builder.FixedNow)
		require.NoError(t, err)
		assert.False(t, changed)
	})

	t.Run("customers cannot change payment", func(t *testing.T) {
		b := newBooking(t)
		_, err := b.TransitionPayment(user.NewActor(b.CustomerID(), user.RoleCustomer), booking.PaymentPaid, builder.FixedNow)
		assert.ErrorIs(t, err, booking.ErrForbidden)
	})
}

func TestAssignStaff(t *testing.T) {
	admin := user.NewActor(uuid.New(), user.RoleAdmin)
	staff := uuid.New()

	b, err := builder.NewBookingBuilder().BuildDomain()
	require.NoError(t, err)

	notes := "  prefers female therapist "
	require.NoError(t, b.AssignStaff(admin, &staff, &notes, builder.FixedNow))
	require.NotNil(t, b.StaffID())
	assert.Equal(t, staff, *b.StaffID())
	assert.Equal(t, "prefers female therapist", b.StaffNotes())

	require.NoError(t, b.AssignStaff(admin, nil, nil, builder.FixedNow))
	assert.Nil(t, b.StaffID())
	assert.Equal(t, "prefers female therapist", b.StaffNotes())

	tooLong := strings.Repeat("x", booking.MaxNotesLength+1)
	assert.ErrorIs(t, b.AssignStaff(admin, &staff, &tooLong, builder.FixedNow), booking.ErrNotesTooLong)

	err = b.AssignStaff(user.NewActor(b.CustomerID(), user.RoleCustomer), &staff, nil, builder.FixedNow)
	assert.ErrorIs(t, err, booking.ErrForbidden)
}
