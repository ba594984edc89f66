//go:build unit || e2e

package builder

import (
	"spa-storefront/internal/domain/booking"
	"spa-storefront/internal/domain/catalog"
	"spa-storefront/internal/domain/money"
	reqdto "spa-storefront/internal/handler/dto/request"
	"spa-storefront/internal/usecase/commands"
	"spa-storefront/internal/usecase/queries"

	"github.com/google/uuid"
)

type BookingLine struct {
	Item     *catalog.Item
	Quantity int
}

type BookingBuilder struct {
	CustomerID      uuid.UUID
	Lines           []BookingLine
	PromotionCode   *string
	Discount        money.Amount
	AppointmentDate string
	AppointmentTime string
	CustomerName    string
	CustomerPhone   string
	CustomerEmail   string
	PaymentMethod   string
	Notes           string
}

func NewBookingBuilder() *BookingBuilder {
	return &BookingBuilder{
		CustomerID:      uuid.New(),
		Lines:           []BookingLine{{Item: NewCatalogItemBuilder().BuildDomain(), Quantity: 1}},
		AppointmentDate: "2025-03-15",
		AppointmentTime: "14:30",
		CustomerName:    "Hanako Sato",
		CustomerPhone:   "090-1234-5678",
		CustomerEmail:   "hanako@example.com",
		PaymentMethod:   booking.MethodCard.String(),
		Notes:           "Sensitive skin",
	}
}

func (b *BookingBuilder) With(mutate func(*BookingBuilder)) *BookingBuilder {
	mutate(b)
	return b
}

func (b *BookingBuilder) WithLine(item *catalog.Item, quantity int) *BookingBuilder {
	b.Lines = append(b.Lines, BookingLine{Item: item, Quantity: quantity})
	return b
}

func (b *BookingBuilder) WithLines(lines ...BookingLine) *BookingBuilder {
	b.Lines = lines
	return b
}

func (b *BookingBuilder) WithPromotion(code string) *BookingBuilder {
	b.PromotionCode = &code
	return b
}

func (b *BookingBuilder) Items() []*catalog.Item {
	out := make([]*catalog.Item, 0, len(b.Lines))
	for _, l := range b.Lines {
		out = append(out, l.Item)
	}
	return out
}

func (b *BookingBuilder) serviceLines() []booking.ServiceLine {
	var out []booking.ServiceLine
	for _, l := range b.Lines {
		for range l.Quantity {
			out = append(out, booking.NewServiceLine(l.Item.ID, l.Item.Name, l.Item.Price))
		}
	}
	return out
}

func (b *BookingBuilder) BuildDomain() (*booking.Booking, error) {
	appointment, err := booking.NewAppointment(b.AppointmentDate, b.AppointmentTime)
	if err != nil {
		return nil, err
	}
	customer, err := booking.NewCustomerInfo(b.CustomerName, b.CustomerPhone, b.CustomerEmail)
	if err != nil {
		return nil, err
	}
	method, err := booking.ParsePaymentMethod(b.PaymentMethod)
	if err != nil {
		return nil, err
	}
	return booking.New(booking.NewParams{
		CustomerID:    b.CustomerID,
		Lines:         b.serviceLines(),
		Appointment:   appointment,
		Discount:      b.Discount,
		PromotionCode: b.PromotionCode,
		PaymentMethod: method,
		Customer:      customer,
		CustomerNotes: b.Notes,
	}, FixedNow)
}

func (b *BookingBuilder) details() reqdto.BookingDetailsRequest {
	return reqdto.BookingDetailsRequest{
		PromotionCode:   b.PromotionCode,
		AppointmentDate: b.AppointmentDate,
		AppointmentTime: b.AppointmentTime,
		CustomerName:    b.CustomerName,
		CustomerPhone:   b.CustomerPhone,
		CustomerEmail:   b.CustomerEmail,
		PaymentMethod:   b.PaymentMethod,
		Notes:           b.Notes,
	}
}

func (b *BookingBuilder) BuildCreateRequest() reqdto.CreateBookingRequest {
	lines := make([]reqdto.BookingLineRequest, 0, len(b.Lines))
	for _, l := range b.Lines {
		lines = append(lines, reqdto.BookingLineRequest{ItemID: l.Item.ID, Quantity: l.Quantity})
	}
	return reqdto.CreateBookingRequest{Lines: lines, BookingDetailsRequest: b.details()}
}

func (b *BookingBuilder) BuildCheckoutRequest() reqdto.CheckoutRequest {
	return reqdto.CheckoutRequest{BookingDetailsRequest: b.details()}
}

func (b *BookingBuilder) BuildCreateInput() commands.CreateBookingInput {
	return b.BuildCreateRequest().ToInput(b.CustomerID)
}

func (b *BookingBuilder) BuildCheckoutInput() commands.CheckoutInput {
	return b.BuildCheckoutRequest().ToInput(b.CustomerID)
}

func (b *BookingBuilder) BuildView() (*queries.BookingView, error) {
	bk, err := b.BuildDomain()
	if err != nil {
		return nil, err
	}
	view := &queries.BookingView{
		ID:              bk.ID(),
		CustomerID:      bk.CustomerID(),
		AppointmentDate: bk.Appointment().DateString(),
		AppointmentTime: bk.Appointment().Time(),
		Subtotal:        bk.Subtotal().Int64(),
		DiscountAmount:  bk.DiscountAmount().Int64(),
		FinalAmount:     bk.FinalAmount().Int64(),
		PromotionCode:   bk.PromotionCode(),
		Status:          bk.Status().String(),
		PaymentStatus:   bk.PaymentStatus().String(),
		PaymentMethod:   bk.PaymentMethod().String(),
		CustomerName:    bk.Customer().Name(),
		CustomerPhone:   bk.Customer().Phone(),
		CustomerEmail:   bk.Customer().Email(),
		CustomerNotes:   bk.CustomerNotes(),
		CreatedAt:       bk.CreatedAt(),
		UpdatedAt:       bk.UpdatedAt(),
	}
	for _, l := range bk.Lines() {
		view.Lines = append(view.Lines, queries.BookingLineView{
			ItemID:    l.ItemID(),
			ItemName:  l.ItemName(),
			UnitPrice: l.UnitPrice().Int64(),
		})
	}
	return view, nil
}
