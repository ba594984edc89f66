package shared

import (
	"time"

	"spa-storefront/internal/pkg/errs"

	"github.com/google/uuid"
)

// ErrIdempotencyInFlight is returned when another request holding the same
// key committed first.
var ErrIdempotencyInFlight = errs.Mark(errs.New("request with this idempotency key is already being processed"), errs.ErrConflict)

type IdempotencyRecord struct {
	Key         uuid.UUID
	CustomerID  uuid.UUID
	Endpoint    string
	RequestHash string
	BookingID   uuid.UUID
	ExpiresAt   time.Time
	CreatedAt   time.Time
}

func (r IdempotencyRecord) Expired(now time.Time) bool {
	return !now.Before(r.ExpiresAt)
}

const (
	EventBookingCreated        = "booking.created"
	EventBookingStatusChanged  = "booking.status_changed"
	EventBookingPaymentChanged = "booking.payment_changed"
	EventBookingStaffAssigned  = "booking.staff_assigned"
)

type OutboxEvent struct {
	ID          uuid.UUID
	AggregateID uuid.UUID
	EventType   string
	Payload     []byte
	CreatedAt   time.Time
	PublishedAt *time.Time
}
