package commands

import (
	"context"
	"log/slog"

	"spa-storefront/internal/domain/booking"
	"spa-storefront/internal/pkg/clock"
	"spa-storefront/internal/pkg/config"
	"spa-storefront/internal/pkg/errs"
	"spa-storefront/internal/usecase/shared"

	"github.com/google/uuid"
)

// CheckoutInput is a booking request whose services come from the customer's server cart.
type CheckoutInput struct {
	CustomerID      uuid.UUID `json:"customer_id"`
	PromotionCode   *string   `json:"promotion_code,omitempty"`
	AppointmentDate string    `json:"appointment_date"`
	AppointmentTime string    `json:"appointment_time"`
	CustomerName    string    `json:"customer_name"`
	CustomerPhone   string    `json:"customer_phone"`
	CustomerEmail   string    `json:"customer_email"`
	PaymentMethod   string    `json:"payment_method"`
	Notes           string    `json:"notes"`
}

type CheckoutCommands interface {
	Checkout(ctx context.Context, in CheckoutInput, idempotencyKey *uuid.UUID) (*CreateBookingResult, error)
}

type checkoutCommandsImpl struct {
	uow      shared.UnitOfWork
	clock    clock.Clock
	carts    CartCommands
	bookings *bookingCommandsImpl
}

func NewCheckoutCommands(uow shared.UnitOfWork, clk clock.Clock, cfg config.CheckoutConfig, carts CartCommands) CheckoutCommands {
	return &checkoutCommandsImpl{
		uow:      uow,
		clock:    clk,
		carts:    carts,
		bookings: &bookingCommandsImpl{uow: uow, clock: clk, idempotencyTTL: cfg.IdempotencyTTL},
	}
}

// Checkout books the lines currently in the cart and then removes exactly
// those lines. Lines added while the booking is being written stay in the cart.
// The cart cleanup is best effort: the booking stands even if it fails.
func (uc *checkoutCommandsImpl) Checkout(ctx context.Context, in CheckoutInput, idempotencyKey *uuid.UUID) (*CreateBookingResult, error) {
	var requestHash string
	if idempotencyKey != nil {
		h, err := hashRequest(in)
		if err != nil {
			return nil, err
		}
		requestHash = h
		// a retried checkout finds the cart already emptied
		replay, err := checkIdempotency(ctx, uc.uow.CommandReads(), nil, *idempotencyKey, in.CustomerID, checkoutEndpoint, requestHash, uc.clock.Now())
		if err != nil {
			return nil, err
		}
		if replay != nil {
			return &CreateBookingResult{Booking: replay, Replayed: true}, nil
		}
	}

	snapshot, err := uc.uow.CommandReads().CartByCustomer(ctx, in.CustomerID)
	if err != nil {
		if errs.Is(err, errs.ErrNotFound) {
			return nil, booking.ErrEmptyOrder
		}
		return nil, err
	}
	if snapshot.IsEmpty() {
		return nil, booking.ErrEmptyOrder
	}

	cartLines := snapshot.Lines()
	lines := make([]BookingLineInput, 0, len(cartLines))
	lineIDs := make([]uuid.UUID, 0, len(cartLines))
	for _, l := range cartLines {
		lines = append(lines, BookingLineInput{ItemID: l.ItemID(), Quantity: l.Quantity()})
		lineIDs = append(lineIDs, l.ID())
	}

	result, err := uc.bookings.create(ctx, CreateBookingInput{
		CustomerID:      in.CustomerID,
		Lines:           lines,
		PromotionCode:   in.PromotionCode,
		AppointmentDate: in.AppointmentDate,
		AppointmentTime: in.AppointmentTime,
		CustomerName:    in.CustomerName,
		CustomerPhone:   in.CustomerPhone,
		CustomerEmail:   in.CustomerEmail,
		PaymentMethod:   in.PaymentMethod,
		Notes:           in.Notes,
	}, idempotencyKey, checkoutEndpoint, requestHash)
	if err != nil {
		return nil, err
	}
	if result.Replayed {
		return result, nil
	}

	if _, err := uc.carts.RemoveLines(ctx, in.CustomerID, lineIDs); err != nil {
		slog.Warn("failed to clear checked out cart lines",
			"customer_id", in.CustomerID,
			"booking_id", result.Booking.ID(),
			"error", err.Error())
	}
	return result, nil
}
