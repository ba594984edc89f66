package booking

import (
	"errors"
	"slices"
	"time"

	"spa-storefront/internal/domain/money"
	"spa-storefront/internal/domain/user"
	"spa-storefront/internal/pkg/errs"

	"github.com/google/uuid"
)

// MaxServiceLines caps the units in one booking. Each unit is its own line.
const MaxServiceLines = 500

var (
	ErrTooManyServices   = errs.Mark(errors.New("booking holds too many services"), errs.ErrInvalidQuantity)
	ErrEmptyOrder        = errs.Mark(errors.New("booking needs at least one service"), errs.ErrEmptyOrder)
	ErrNotFound          = errs.Mark(errors.New("booking not found"), errs.ErrNotFound)
	ErrInvalidTransition = errs.Mark(errors.New("transition not allowed from current status"), errs.ErrInvalidTransition)
	ErrForbidden         = errs.Mark(errors.New("actor may not perform this change"), errs.ErrForbidden)
)

// Booking is a priced appointment. Its amounts are fixed at creation and
// never re-derived from the catalog.
type Booking struct {
	id             uuid.UUID
	customerID     uuid.UUID
	lines          []ServiceLine
	appointment    Appointment
	subtotal       money.Amount
	discountAmount money.Amount
	finalAmount    money.Amount
	promotionCode  *string
	status         Status
	paymentStatus  PaymentStatus
	paymentMethod  PaymentMethod
	customer       CustomerInfo
	customerNotes  string
	staffNotes     string
	staffID        *uuid.UUID
	createdAt      time.Time
	updatedAt      time.Time
}

type NewParams struct {
	CustomerID    uuid.UUID
	Lines         []ServiceLine
	Appointment   Appointment
	Discount      money.Amount
	PromotionCode *string
	PaymentMethod PaymentMethod
	Customer      CustomerInfo
	CustomerNotes string
}

func New(p NewParams, now time.Time) (*Booking, error) {
	if len(p.Lines) == 0 {
		return nil, ErrEmptyOrder
	}
	if len(p.Lines) > MaxServiceLines {
		return nil, ErrTooManyServices
	}

	var subtotal money.Amount
	for _, l := range p.Lines {
		subtotal = subtotal.Add(l.unitPrice)
	}
	discount := money.Min(p.Discount, subtotal)

	paymentStatus := PaymentPending
	if p.PaymentMethod.IsSettled() {
		paymentStatus = PaymentPaid
	}

	var code *string
	if p.PromotionCode != nil {
		c := *p.PromotionCode
		code = &c
	}

	return &Booking{
		id:             uuid.New(),
		customerID:     p.CustomerID,
		lines:          slices.Clone(p.Lines),
		appointment:    p.Appointment,
		subtotal:       subtotal,
		discountAmount: discount,
		finalAmount:    subtotal.SubFloor(discount),
		promotionCode:  code,
		status:         StatusPending,
		paymentStatus:  paymentStatus,
		paymentMethod:  p.PaymentMethod,
		customer:       p.Customer,
		customerNotes:  p.CustomerNotes,
		createdAt:      now,
		updatedAt:      now,
	}, nil
}

type ReconstructParams struct {
	ID             uuid.UUID
	CustomerID     uuid.UUID
	Lines          []ServiceLine
	Appointment    Appointment
	Subtotal       money.Amount
	DiscountAmount money.Amount
	FinalAmount    money.Amount
	PromotionCode  *string
	Status         Status
	PaymentStatus  PaymentStatus
	PaymentMethod  PaymentMethod
	Customer       CustomerInfo
	CustomerNotes  string
	StaffNotes     string
	StaffID        *uuid.UUID
	CreatedAt      time.Time
	UpdatedAt      time.Time
}

func Reconstruct(p ReconstructParams) *Booking {
	return &Booking{
		id:             p.ID,
		customerID:     p.CustomerID,
		lines:          slices.Clone(p.Lines),
		appointment:    p.Appointment,
		subtotal:       p.Subtotal,
		discountAmount: p.DiscountAmount,
		finalAmount:    p.FinalAmount,
		promotionCode:  p.PromotionCode,
		status:         p.Status,
		paymentStatus:  p.PaymentStatus,
		paymentMethod:  p.PaymentMethod,
		customer:       p.Customer,
		customerNotes:  p.CustomerNotes,
		staffNotes:     p.StaffNotes,
		staffID:        p.StaffID,
		createdAt:      p.CreatedAt,
		updatedAt:      p.UpdatedAt,
	}
}

// TransitionStatus moves the booking along
// pending -> confirmed -> in_progress -> completed, or to cancelled from any
// non-terminal status. Administrators may skip forward; customers may only
// cancel their own bookings. Requesting the current status is a no-op, except
// cancelling an already cancelled booking. Completion settles a pending payment.
// The returned bool is false when nothing changed.
func (b *Booking) TransitionStatus(actor user.Actor, target Status, now time.Time) (bool, error) {
	if !target.IsValid() {
		return false, ErrInvalidStatus
	}
	if !actor.IsAdmin() {
		if target != StatusCancelled || actor.ID != b.customerID {
			return false, ErrForbidden
		}
	}

	if target == b.status {
		if target == StatusCancelled {
			return false, ErrInvalidTransition
		}
		return false, nil
	}
	if b.status.IsTerminal() {
		return false, ErrInvalidTransition
	}

	switch {
	case target == StatusCancelled:
		if !b.status.Cancellable() {
			return false, ErrInvalidTransition
		}
	case !target.isAhead(b.status):
		return false, ErrInvalidTransition
	}

	b.status = target
	if target == StatusCompleted && b.paymentStatus == PaymentPending {
		b.paymentStatus = PaymentPaid
	}
	b.updatedAt = now
	return true, nil
}

// TransitionPayment is administrator-only and allows pending -> paid and paid -> refunded.
func (b *Booking) TransitionPayment(actor user.Actor, target PaymentStatus, now time.Time) (bool, error) {
	if !actor.IsAdmin() {
		return false, ErrForbidden
	}
	if target == b.paymentStatus {
		return false, nil
	}
	if !b.paymentStatus.allows(target) {
		return false, ErrInvalidTransition
	}
	b.paymentStatus = target
	b.updatedAt = now
	return true, nil
}

// AssignStaff sets or clears the assigned staff member and replaces staff notes when given.
func (b *Booking) AssignStaff(actor user.Actor, staffID *uuid.UUID, staffNotes *string, now time.Time) error {
	if !actor.IsAdmin() {
		return ErrForbidden
	}
	if staffNotes != nil {
		notes, err := NewNotes(*staffNotes)
		if err != nil {
			return err
		}
		b.staffNotes = notes
	}
	b.staffID = staffID
	b.updatedAt = now
	return nil
}

// VisibleTo reports whether the actor may read this booking.
func (b *Booking) VisibleTo(actor user.Actor) bool {
	return actor.IsAdmin() || actor.ID == b.customerID
}

func (b *Booking) ID() uuid.UUID                { return b.id }
func (b *Booking) CustomerID() uuid.UUID        { return b.customerID }
func (b *Booking) Lines() []ServiceLine         { return slices.Clone(b.lines) }
func (b *Booking) Appointment() Appointment     { return b.appointment }
func (b *Booking) Subtotal() money.Amount       { return b.subtotal }
func (b *Booking) DiscountAmount() money.Amount { return b.discountAmount }
func (b *Booking) FinalAmount() money.Amount    { return b.finalAmount }
func (b *Booking) PromotionCode() *string       { return b.promotionCode }
func (b *Booking) Status() Status               { return b.status }
func (b *Booking) PaymentStatus() PaymentStatus { return b.paymentStatus }
func (b *Booking) PaymentMethod() PaymentMethod { return b.paymentMethod }
func (b *Booking) Customer() CustomerInfo       { return b.customer }
func (b *Booking) CustomerNotes() string        { return b.customerNotes }
func (b *Booking) StaffNotes() string           { return b.staffNotes }
func (b *Booking) StaffID() *uuid.UUID          { return b.staffID }
func (b *Booking) CreatedAt() time.Time         { return b.createdAt }
func (b *Booking) UpdatedAt() time.Time         { return b.updatedAt }
