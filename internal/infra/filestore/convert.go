package filestore

import (
	"spa-storefront/internal/domain/booking"
	"spa-storefront/internal/domain/cart"
	"spa-storefront/internal/domain/money"
	"spa-storefront/internal/domain/promotion"
	"spa-storefront/internal/pkg/errs"
	"spa-storefront/internal/usecase/queries"
	"spa-storefront/internal/usecase/shared"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

func uuidPtrToString(id *uuid.UUID) *string {
	if id == nil {
		return nil
	}
	s := id.String()
	return &s
}

func stringToUUIDPtr(s *string) (*uuid.UUID, error) {
	if s == nil {
		return nil, nil
	}
	id, err := uuid.Parse(*s)
	if err != nil {
		return nil, errs.Wrapf(err, "invalid uuid %q", *s)
	}
	return &id, nil
}

func uuidStrings(ids []uuid.UUID) []string {
	out := make([]string, 0, len(ids))
	for _, id := range ids {
		out = append(out, id.String())
	}
	return out
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

func toCartDomain(m cartModel, lines []cartLineModel) (*cart.Cart, error) {
	customerID, err := uuid.Parse(m.CustomerID)
	if err != nil {
		return nil, errs.Wrap(err, "cart customer id")
	}
	out := make([]cart.Line, 0, len(lines))
	for _, l := range lines {
		id, err := uuid.Parse(l.ID)
		if err != nil {
			return nil, errs.Wrap(err, "cart line id")
		}
		itemID, err := uuid.Parse(l.ItemID)
		if err != nil {
			return nil, errs.Wrap(err, "cart line item id")
		}
		out = append(out, cart.ReconstructLine(id, itemID, l.ItemName, l.Quantity, money.Amount(l.UnitPrice)))
	}
	return cart.Reconstruct(customerID, out, m.CreatedAt.UTC(), m.UpdatedAt.UTC()), nil
}

func toPromotionModel(p *promotion.Promotion) promotionModel {
	d := p.Discount()
	var maxDiscount *int64
	if cap := d.MaxDiscount(); cap != nil {
		v := cap.Int64()
		maxDiscount = &v
	}
	return promotionModel{
		ID:          p.ID().String(),
		Code:        p.Code().String(),
		Kind:        d.Kind().String(),
		Value:       d.Value().String(),
		MinOrder:    p.MinOrder().Int64(),
		MaxDiscount: maxDiscount,
		StartsAt:    p.StartsAt(),
		EndsAt:      p.EndsAt(),
		UsageLimit:  p.UsageLimit(),
		UsedCount:   p.UsedCount(),
		ItemIDs:     uuidStrings(p.Scope().ItemIDs()),
		CategoryIDs: uuidStrings(p.Scope().CategoryIDs()),
		Active:      p.Active(),
		CreatedAt:   p.CreatedAt(),
		UpdatedAt:   p.UpdatedAt(),
	}
}

func toPromotionDomain(m promotionModel) (*promotion.Promotion, error) {
	id, err := uuid.Parse(m.ID)
	if err != nil {
		return nil, errs.Wrap(err, "promotion id")
	}
	value, err := decimal.NewFromString(m.Value)
	if err != nil {
		return nil, errs.Wrapf(err, "promotion %s value", m.Code)
	}
	var maxDiscount *money.Amount
	if m.MaxDiscount != nil {
		a := money.Amount(*m.MaxDiscount)
		maxDiscount = &a
	}
	discount, err := promotion.NewDiscount(promotion.Kind(m.Kind), value, maxDiscount)
	if err != nil {
		return nil, errs.Wrapf(err, "promotion %s discount", m.Code)
	}
	items, err := parseUUIDs(m.ItemIDs)
	if err != nil {
		return nil, err
	}
	categories, err := parseUUIDs(m.CategoryIDs)
	if err != nil {
		return nil, err
	}
	return promotion.Reconstruct(
		id,
		promotion.Code(m.Code),
		discount,
		money.Amount(m.MinOrder),
		m.StartsAt.UTC(),
		m.EndsAt.UTC(),
		m.UsageLimit,
		m.UsedCount,
		promotion.NewScope(items, categories),
		m.Active,
		m.CreatedAt.UTC(),
		m.UpdatedAt.UTC(),
	), nil
}

func toPromotionView(m promotionModel) (*queries.PromotionView, error) {
	id, err := uuid.Parse(m.ID)
	if err != nil {
		return nil, errs.Wrap(err, "promotion id")
	}
	items, err := parseUUIDs(m.ItemIDs)
	if err != nil {
		return nil, err
	}
	categories, err := parseUUIDs(m.CategoryIDs)
	if err != nil {
		return nil, err
	}
	value, err := decimal.NewFromString(m.Value)
	if err != nil {
		return nil, errs.Wrapf(err, "promotion %s value", m.Code)
	}
	return &queries.PromotionView{
		ID:          id,
		Code:        m.Code,
		Kind:        m.Kind,
		Value:       value.StringFixed(2),
		MinOrder:    m.MinOrder,
		MaxDiscount: m.MaxDiscount,
		StartsAt:    m.StartsAt.UTC(),
		EndsAt:      m.EndsAt.UTC(),
		UsageLimit:  m.UsageLimit,
		UsedCount:   m.UsedCount,
		ItemIDs:     items,
		CategoryIDs: categories,
		Active:      m.Active,
		CreatedAt:   m.CreatedAt.UTC(),
		UpdatedAt:   m.UpdatedAt.UTC(),
	}, nil
}

func toBookingModel(b *booking.Booking) (bookingModel, []bookingLineModel) {
	c := b.Customer()
	m := bookingModel{
		ID:              b.ID().String(),
		CustomerID:      b.CustomerID().String(),
		AppointmentDate: b.Appointment().DateString(),
		AppointmentTime: b.Appointment().Time(),
		Subtotal:        b.Subtotal().Int64(),
		DiscountAmount:  b.DiscountAmount().Int64(),
		FinalAmount:     b.FinalAmount().Int64(),
		PromotionCode:   b.PromotionCode(),
		Status:          b.Status().String(),
		PaymentStatus:   b.PaymentStatus().String(),
		PaymentMethod:   b.PaymentMethod().String(),
		CustomerName:    c.Name(),
		CustomerPhone:   c.Phone(),
		CustomerEmail:   c.Email(),
		CustomerNotes:   b.CustomerNotes(),
		StaffNotes:      b.StaffNotes(),
		StaffID:         uuidPtrToString(b.StaffID()),
		CreatedMicros:   b.CreatedAt().UnixMicro(),
		CreatedAt:       b.CreatedAt(),
		UpdatedAt:       b.UpdatedAt(),
	}
	lines := make([]bookingLineModel, 0, len(b.Lines()))
	for i, l := range b.Lines() {
		lines = append(lines, bookingLineModel{
			BookingID: m.ID,
			Position:  i,
			ItemID:    l.ItemID().String(),
			ItemName:  l.ItemName(),
			UnitPrice: l.UnitPrice().Int64(),
		})
	}
	return m, lines
}

func toBookingDomain(m bookingModel, lines []bookingLineModel) (*booking.Booking, error) {
	id, err := uuid.Parse(m.ID)
	if err != nil {
		return nil, errs.Wrap(err, "booking id")
	}
	customerID, err := uuid.Parse(m.CustomerID)
	if err != nil {
		return nil, errs.Wrap(err, "booking customer id")
	}
	staffID, err := stringToUUIDPtr(m.StaffID)
	if err != nil {
		return nil, err
	}
	appointment, err := booking.NewAppointment(m.AppointmentDate, m.AppointmentTime)
	if err != nil {
		return nil, errs.Wrapf(err, "booking %s appointment", m.ID)
	}
	customer, err := booking.NewCustomerInfo(m.CustomerName, m.CustomerPhone, m.CustomerEmail)
	if err != nil {
		return nil, errs.Wrapf(err, "booking %s customer", m.ID)
	}

	serviceLines := make([]booking.ServiceLine, 0, len(lines))
	for _, l := range lines {
		itemID, err := uuid.Parse(l.ItemID)
		if err != nil {
			return nil, errs.Wrap(err, "booking line item id")
		}
		serviceLines = append(serviceLines, booking.NewServiceLine(itemID, l.ItemName, money.Amount(l.UnitPrice)))
	}

	return booking.Reconstruct(booking.ReconstructParams{
		ID:             id,
		CustomerID:     customerID,
		Lines:          serviceLines,
		Appointment:    appointment,
		Subtotal:       money.Amount(m.Subtotal),
		DiscountAmount: money.Amount(m.DiscountAmount),
		FinalAmount:    money.Amount(m.FinalAmount),
		PromotionCode:  m.PromotionCode,
		Status:         booking.Status(m.Status),
		PaymentStatus:  booking.PaymentStatus(m.PaymentStatus),
		PaymentMethod:  booking.PaymentMethod(m.PaymentMethod),
		Customer:       customer,
		CustomerNotes:  m.CustomerNotes,
		StaffNotes:     m.StaffNotes,
		StaffID:        staffID,
		CreatedAt:      m.CreatedAt.UTC(),
		UpdatedAt:      m.UpdatedAt.UTC(),
	}), nil
}

func toBookingView(m bookingModel, lines []bookingLineModel) (*queries.BookingView, error) {
	id, err := uuid.Parse(m.ID)
	if err != nil {
		return nil, errs.Wrap(err, "booking id")
	}
	customerID, err := uuid.Parse(m.CustomerID)
	if err != nil {
		return nil, errs.Wrap(err, "booking customer id")
	}
	staffID, err := stringToUUIDPtr(m.StaffID)
	if err != nil {
		return nil, err
	}

	v := &queries.BookingView{
		ID:              id,
		CustomerID:      customerID,
		Lines:           make([]queries.BookingLineView, 0, len(lines)),
		AppointmentDate: m.AppointmentDate,
		AppointmentTime: m.AppointmentTime,
		Subtotal:        m.Subtotal,
		DiscountAmount:  m.DiscountAmount,
		FinalAmount:     m.FinalAmount,
		PromotionCode:   m.PromotionCode,
		Status:          m.Status,
		PaymentStatus:   m.PaymentStatus,
		PaymentMethod:   m.PaymentMethod,
		CustomerName:    m.CustomerName,
		CustomerPhone:   m.CustomerPhone,
		CustomerEmail:   m.CustomerEmail,
		CustomerNotes:   m.CustomerNotes,
		StaffNotes:      m.StaffNotes,
		StaffID:         staffID,
		CreatedAt:       m.CreatedAt.UTC(),
		UpdatedAt:       m.UpdatedAt.UTC(),
	}
	for _, l := range lines {
		itemID, err := uuid.Parse(l.ItemID)
		if err != nil {
			return nil, errs.Wrap(err, "booking line item id")
		}
		v.Lines = append(v.Lines, queries.BookingLineView{ItemID: itemID, ItemName: l.ItemName, UnitPrice: l.UnitPrice})
	}
	return v, nil
}

func toIdempotencyRecord(m idempotencyModel) (*shared.IdempotencyRecord, error) {
	key, err := uuid.Parse(m.Key)
	if err != nil {
		return nil, errs.Wrap(err, "idempotency key")
	}
	customerID, err := uuid.Parse(m.CustomerID)
	if err != nil {
		return nil, errs.Wrap(err, "idempotency customer id")
	}
	bookingID, err := uuid.Parse(m.BookingID)
	if err != nil {
		return nil, errs.Wrap(err, "idempotency booking id")
	}
	return &shared.IdempotencyRecord{
		Key:         key,
		CustomerID:  customerID,
		Endpoint:    m.Endpoint,
		RequestHash: m.RequestHash,
		BookingID:   bookingID,
		ExpiresAt:   m.ExpiresAt.UTC(),
		CreatedAt:   m.CreatedAt.UTC(),
	}, nil
}
