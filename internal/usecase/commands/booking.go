package commands

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"log/slog"
	"slices"
	"time"

	"spa-storefront/internal/domain/booking"
	"spa-storefront/internal/domain/cart"
	"spa-storefront/internal/domain/catalog"
	"spa-storefront/internal/domain/money"
	"spa-storefront/internal/domain/promotion"
	"spa-storefront/internal/domain/user"
	"spa-storefront/internal/pkg/clock"
	"spa-storefront/internal/pkg/config"
	"spa-storefront/internal/pkg/errs"
	"spa-storefront/internal/pkg/patch"
	"spa-storefront/internal/usecase/shared"

	"github.com/google/uuid"
)

const (
	createBookingEndpoint = "POST /api/bookings"
	checkoutEndpoint      = "POST /api/checkout"
)

var (
	ErrInvalidLineQuantity = errs.Mark(errs.New("booking line quantity must be between 1 and 99"), errs.ErrInvalidQuantity)
	ErrIdempotencyKeyReuse = errs.Mark(errs.New("idempotency key reused with a different request"), errs.ErrConflict)
)

type BookingLineInput struct {
	ItemID   uuid.UUID `json:"item_id"`
	Quantity int       `json:"quantity"`
}

type CreateBookingInput struct {
	CustomerID      uuid.UUID          `json:"customer_id"`
	Lines           []BookingLineInput `json:"lines"`
	PromotionCode   *string            `json:"promotion_code,omitempty"`
	AppointmentDate string             `json:"appointment_date"`
	AppointmentTime string             `json:"appointment_time"`
	CustomerName    string             `json:"customer_name"`
	CustomerPhone   string             `json:"customer_phone"`
	CustomerEmail   string             `json:"customer_email"`
	PaymentMethod   string             `json:"payment_method"`
	Notes           string             `json:"notes"`
}

type CreateBookingResult struct {
	Booking *booking.Booking
	// PromotionError is the reason a requested promotion was dropped; the booking is then priced without it.
	PromotionError error
	Replayed       bool
}

type AssignStaffInput struct {
	StaffID    *uuid.UUID
	ClearStaff bool
	StaffNotes *string
}

type BookingCommands interface {
	Create(ctx context.Context, in CreateBookingInput, idempotencyKey *uuid.UUID) (*CreateBookingResult, error)
	TransitionStatus(ctx context.Context, actor user.Actor, bookingID uuid.UUID, target string) (*booking.Booking, error)
	TransitionPayment(ctx context.Context, actor user.Actor, bookingID uuid.UUID, target string) (*booking.Booking, error)
	AssignStaff(ctx context.Context, actor user.Actor, bookingID uuid.UUID, in AssignStaffInput) (*booking.Booking, error)
}

type bookingCommandsImpl struct {
	uow            shared.UnitOfWork
	clock          clock.Clock
	idempotencyTTL time.Duration
}

func NewBookingCommands(uow shared.UnitOfWork, clk clock.Clock, cfg config.CheckoutConfig) BookingCommands {
	return &bookingCommandsImpl{uow: uow, clock: clk, idempotencyTTL: cfg.IdempotencyTTL}
}

// Create prices and persists a booking. The promotion increment, booking rows,
// outbox event and idempotency record commit together or not at all.
func (uc *bookingCommandsImpl) Create(ctx context.Context, in CreateBookingInput, idempotencyKey *uuid.UUID) (*CreateBookingResult, error) {
	var requestHash string
	if idempotencyKey != nil {
		h, err := hashRequest(in)
		if err != nil {
			return nil, err
		}
		requestHash = h
	}
	return uc.create(ctx, in, idempotencyKey, createBookingEndpoint, requestHash)
}

func (uc *bookingCommandsImpl) create(
	ctx context.Context,
	in CreateBookingInput,
	idempotencyKey *uuid.UUID,
	endpoint, requestHash string,
) (*CreateBookingResult, error) {
	if len(in.Lines) == 0 {
		return nil, booking.ErrEmptyOrder
	}
	units := 0
	for _, l := range in.Lines {
		if !cart.ValidQuantity(l.Quantity) {
			return nil, errs.Wrapf(ErrInvalidLineQuantity, "item %s", l.ItemID)
		}
		units += l.Quantity
	}
	if units > booking.MaxServiceLines {
		return nil, booking.ErrTooManyServices
	}

	appointment, err := booking.NewAppointment(in.AppointmentDate, in.AppointmentTime)
	if err != nil {
		return nil, err
	}
	customer, err := booking.NewCustomerInfo(in.CustomerName, in.CustomerPhone, in.CustomerEmail)
	if err != nil {
		return nil, err
	}
	method, err := booking.ParsePaymentMethod(in.PaymentMethod)
	if err != nil {
		return nil, err
	}
	notes, err := booking.NewNotes(in.Notes)
	if err != nil {
		return nil, err
	}

	var result *CreateBookingResult
	err = uc.uow.Within(ctx, func(ctx context.Context, tx shared.Tx) error {
		result = nil
		now := uc.clock.Now()

		if idempotencyKey != nil {
			replay, rerr := checkIdempotency(ctx, tx.Reads(), tx.Idempotency(), *idempotencyKey, in.CustomerID, endpoint, requestHash, now)
			if rerr != nil {
				return rerr
			}
			if replay != nil {
				result = &CreateBookingResult{Booking: replay, Replayed: true}
				return nil
			}
		}

		ids := distinctItemIDs(in.Lines)
		items, rerr := tx.Reads().CatalogItems(ctx, ids)
		if rerr != nil {
			return rerr
		}
		lines, rerr := expandLines(in.Lines, items)
		if rerr != nil {
			return rerr
		}

		var subtotal money.Amount
		for _, l := range lines {
			subtotal = subtotal.Add(l.UnitPrice())
		}

		var (
			discount  money.Amount
			appliedTo *string
			promoErr  error
		)
		if in.PromotionCode != nil {
			order := promotion.Order{Amount: subtotal, ItemIDs: ids, CategoryIDs: categoriesOf(items)}
			code, amount, perr := applyPromotion(ctx, tx, *in.PromotionCode, order, now)
			if perr != nil {
				if errs.Is(perr, errs.ErrInfrastructure) {
					return perr
				}
				promoErr = perr
			} else {
				discount = amount
				s := code.String()
				appliedTo = &s
			}
		}

		b, rerr := booking.New(booking.NewParams{
			CustomerID:    in.CustomerID,
			Lines:         lines,
			Appointment:   appointment,
			Discount:      discount,
			PromotionCode: appliedTo,
			PaymentMethod: method,
			Customer:      customer,
			CustomerNotes: notes,
		}, now)
		if rerr != nil {
			return rerr
		}
		if rerr = tx.Bookings().Create(ctx, b); rerr != nil {
			return rerr
		}
		if rerr = appendBookingEvent(ctx, tx, b, shared.EventBookingCreated, now); rerr != nil {
			return rerr
		}

		if idempotencyKey != nil {
			rerr = tx.Idempotency().Save(ctx, shared.IdempotencyRecord{
				Key:         *idempotencyKey,
				CustomerID:  in.CustomerID,
				Endpoint:    endpoint,
				RequestHash: requestHash,
				BookingID:   b.ID(),
				ExpiresAt:   now.Add(uc.idempotencyTTL),
				CreatedAt:   now,
			})
			if rerr != nil {
				return rerr
			}
		}

		result = &CreateBookingResult{Booking: b, PromotionError: promoErr}
		return nil
	})
	if err != nil {
		return nil, err
	}

	if result.PromotionError != nil {
		slog.Info("promotion dropped from booking",
			"booking_id", result.Booking.ID(),
			"code", *in.PromotionCode,
			"reason", result.PromotionError.Error())
	}
	return result, nil
}

// checkIdempotency returns the original booking for a replayed key. Expired
// records are removed so the key can be used again; with a nil repo they are
// only ignored.
func checkIdempotency(
	ctx context.Context,
	reads shared.CommandReads,
	repo shared.IdempotencyRepository,
	key, customerID uuid.UUID,
	endpoint, requestHash string,
	now time.Time,
) (*booking.Booking, error) {
	rec, err := reads.IdempotencyByKey(ctx, key, customerID)
	if err != nil {
		if errs.Is(err, errs.ErrNotFound) {
			return nil, nil
		}
		return nil, err
	}

	if rec.Expired(now) {
		if repo == nil {
			return nil, nil
		}
		return nil, repo.Delete(ctx, key, customerID)
	}
	if rec.Endpoint != endpoint || rec.RequestHash != requestHash {
		return nil, ErrIdempotencyKeyReuse
	}
	return reads.BookingByID(ctx, rec.BookingID)
}

func (uc *bookingCommandsImpl) TransitionStatus(ctx context.Context, actor user.Actor, bookingID uuid.UUID, target string) (*booking.Booking, error) {
	status, err := booking.ParseStatus(target)
	if err != nil {
		return nil, err
	}
	return uc.modify(ctx, bookingID, shared.EventBookingStatusChanged, func(b *booking.Booking, now time.Time) (bool, error) {
		return b.TransitionStatus(actor, status, now)
	})
}

func (uc *bookingCommandsImpl) TransitionPayment(ctx context.Context, actor user.Actor, bookingID uuid.UUID, target string) (*booking.Booking, error) {
	status, err := booking.ParsePaymentStatus(target)
	if err != nil {
		return nil, err
	}
	return uc.modify(ctx, bookingID, shared.EventBookingPaymentChanged, func(b *booking.Booking, now time.Time) (bool, error) {
		return b.TransitionPayment(actor, status, now)
	})
}

func (uc *bookingCommandsImpl) AssignStaff(ctx context.Context, actor user.Actor, bookingID uuid.UUID, in AssignStaffInput) (*booking.Booking, error) {
	return uc.modify(ctx, bookingID, shared.EventBookingStaffAssigned, func(b *booking.Booking, now time.Time) (bool, error) {
		staffID := patch.CoalescePtr(in.StaffID, in.ClearStaff, b.StaffID())
		if err := b.AssignStaff(actor, staffID, in.StaffNotes, now); err != nil {
			return false, err
		}
		return true, nil
	})
}

type bookingMutation func(b *booking.Booking, now time.Time) (bool, error)

// modify reads the booking, applies fn and writes it back with an outbox
// event. Nothing is written when fn reports no change.
func (uc *bookingCommandsImpl) modify(ctx context.Context, bookingID uuid.UUID, eventType string, fn bookingMutation) (*booking.Booking, error) {
	var updated *booking.Booking
	err := uc.uow.Within(ctx, func(ctx context.Context, tx shared.Tx) error {
		b, derr := tx.Reads().BookingByID(ctx, bookingID)
		if derr != nil {
			return derr
		}

		now := uc.clock.Now()
		changed, derr := fn(b, now)
		if derr != nil {
			return derr
		}
		updated = b
		if !changed {
			return nil
		}

		if derr = tx.Bookings().Update(ctx, b); derr != nil {
			return derr
		}
		return appendBookingEvent(ctx, tx, b, eventType, now)
	})
	if err != nil {
		return nil, err
	}
	return updated, nil
}

// applyPromotion validates the code against the order and consumes one use.
// Business failures come back marked with the promotion taxonomy; the caller
// decides whether they are fatal.
func applyPromotion(ctx context.Context, tx shared.Tx, raw string, order promotion.Order, now time.Time) (promotion.Code, money.Amount, error) {
	code, err := lookupCode(raw)
	if err != nil {
		return "", money.Zero, err
	}
	promo, err := tx.Reads().PromotionByCode(ctx, code)
	if err != nil {
		return "", money.Zero, err
	}
	discount, err := promo.Validate(order, now)
	if err != nil {
		return "", money.Zero, err
	}
	if _, err = tx.Promotions().IncrementUsage(ctx, code); err != nil {
		return "", money.Zero, err
	}
	return code, discount, nil
}

type bookingEventPayload struct {
	BookingID     uuid.UUID  `json:"booking_id"`
	CustomerID    uuid.UUID  `json:"customer_id"`
	Status        string     `json:"status"`
	PaymentStatus string     `json:"payment_status"`
	FinalAmount   int64      `json:"final_amount"`
	PromotionCode *string    `json:"promotion_code,omitempty"`
	StaffID       *uuid.UUID `json:"staff_id,omitempty"`
	OccurredAt    time.Time  `json:"occurred_at"`
}

func appendBookingEvent(ctx context.Context, tx shared.Tx, b *booking.Booking, eventType string, now time.Time) error {
	payload, err := json.Marshal(bookingEventPayload{
		BookingID:     b.ID(),
		CustomerID:    b.CustomerID(),
		Status:        b.Status().String(),
		PaymentStatus: b.PaymentStatus().String(),
		FinalAmount:   b.FinalAmount().Int64(),
		PromotionCode: b.PromotionCode(),
		StaffID:       b.StaffID(),
		OccurredAt:    now,
	})
	if err != nil {
		return errs.Wrap(err, "marshal booking event")
	}
	return tx.Outbox().Append(ctx, shared.OutboxEvent{
		ID:          uuid.New(),
		AggregateID: b.ID(),
		EventType:   eventType,
		Payload:     payload,
		CreatedAt:   now,
	})
}

func distinctItemIDs(lines []BookingLineInput) []uuid.UUID {
	ids := make([]uuid.UUID, 0, len(lines))
	for _, l := range lines {
		if !slices.Contains(ids, l.ItemID) {
			ids = append(ids, l.ItemID)
		}
	}
	return ids
}

// expandLines freezes catalog prices into one service line per unit, keeping request order.
func expandLines(in []BookingLineInput, items map[uuid.UUID]*catalog.Item) ([]booking.ServiceLine, error) {
	var out []booking.ServiceLine
	for _, l := range in {
		item, err := catalog.Lookup(items, l.ItemID)
		if err != nil {
			return nil, err
		}
		for range l.Quantity {
			out = append(out, booking.NewServiceLine(item.ID, item.Name, item.Price))
		}
	}
	return out, nil
}

func hashRequest(in any) (string, error) {
	data, err := json.Marshal(in)
	if err != nil {
		return "", errs.Wrap(err, "failed to encode request for idempotency hash")
	}
	sum := sha256.Sum256(data)
	return hex.EncodeToString(sum[:]), nil
}
