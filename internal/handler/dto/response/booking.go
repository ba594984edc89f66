package response

import (
	"time"

	"spa-storefront/internal/domain/booking"
	"spa-storefront/internal/usecase/commands"
	"spa-storefront/internal/usecase/queries"

	"github.com/google/uuid"
	"github.com/jinzhu/copier"
)

type BookingLineResponse struct {
	ItemID    uuid.UUID `json:"item_id"`
	ItemName  string    `json:"item_name"`
	UnitPrice int64     `json:"unit_price"`
}

type BookingResponse struct {
	ID              uuid.UUID             `json:"id"`
	CustomerID      uuid.UUID             `json:"customer_id"`
	Lines           []BookingLineResponse `json:"lines"`
	AppointmentDate string                `json:"appointment_date"`
	AppointmentTime string                `json:"appointment_time"`
	Subtotal        int64                 `json:"subtotal"`
	DiscountAmount  int64                 `json:"discount_amount"`
	FinalAmount     int64                 `json:"final_amount"`
	PromotionCode   *string               `json:"promotion_code,omitempty"`
	Status          string                `json:"status"`
	PaymentStatus   string                `json:"payment_status"`
	PaymentMethod   string                `json:"payment_method"`
	CustomerName    string                `json:"customer_name"`
	CustomerPhone   string                `json:"customer_phone"`
	CustomerEmail   string                `json:"customer_email"`
	CustomerNotes   string                `json:"customer_notes"`
	StaffNotes      string                `json:"staff_notes"`
	StaffID         *uuid.UUID            `json:"staff_id,omitempty"`
	CreatedAt       time.Time             `json:"created_at"`
	UpdatedAt       time.Time             `json:"updated_at"`
}

func FromBooking(b *booking.Booking) *BookingResponse {
	c := b.Customer()
	resp := &BookingResponse{
		ID:              b.ID(),
		CustomerID:      b.CustomerID(),
		Lines:           make([]BookingLineResponse, 0, len(b.Lines())),
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
		StaffID:         b.StaffID(),
		CreatedAt:       b.CreatedAt(),
		UpdatedAt:       b.UpdatedAt(),
	}
	for _, l := range b.Lines() {
		resp.Lines = append(resp.Lines, BookingLineResponse{
			ItemID:    l.ItemID(),
			ItemName:  l.ItemName(),
			UnitPrice: l.UnitPrice().Int64(),
		})
	}
	return resp
}

func FromBookingView(v *queries.BookingView) (*BookingResponse, error) {
	var resp BookingResponse
	if err := copier.CopyWithOption(&resp, v, copier.Option{DeepCopy: true}); err != nil {
		return nil, err
	}
	return &resp, nil
}

// CreateBookingResponse reports a dropped promotion next to the booking
// instead of failing the request.
type CreateBookingResponse struct {
	Booking        *BookingResponse `json:"booking"`
	PromotionError *string          `json:"promotion_error,omitempty"`
	Replayed       bool             `json:"replayed"`
}

func FromCreateBookingResult(r *commands.CreateBookingResult) *CreateBookingResponse {
	resp := &CreateBookingResponse{Booking: FromBooking(r.Booking), Replayed: r.Replayed}
	if r.PromotionError != nil {
		reason := commands.PromotionFailureReason(r.PromotionError)
		if reason == "" {
			reason = "unavailable"
		}
		resp.PromotionError = &reason
	}
	return resp
}

type BookingListItemResponse struct {
	ID              uuid.UUID `json:"id"`
	CustomerID      uuid.UUID `json:"customer_id"`
	CustomerName    string    `json:"customer_name"`
	AppointmentDate string    `json:"appointment_date"`
	AppointmentTime string    `json:"appointment_time"`
	ServiceCount    int       `json:"service_count"`
	FinalAmount     int64     `json:"final_amount"`
	Status          string    `json:"status"`
	PaymentStatus   string    `json:"payment_status"`
	CreatedAt       time.Time `json:"created_at"`
}

func FromBookingList(items []*queries.BookingListItem) []*BookingListItemResponse {
	res := make([]*BookingListItemResponse, len(items))
	for i, it := range items {
		res[i] = &BookingListItemResponse{
			ID:              it.ID,
			CustomerID:      it.CustomerID,
			CustomerName:    it.CustomerName,
			AppointmentDate: it.AppointmentDate,
			AppointmentTime: it.AppointmentTime,
			ServiceCount:    it.ServiceCount,
			FinalAmount:     it.FinalAmount,
			Status:          it.Status,
			PaymentStatus:   it.PaymentStatus,
			CreatedAt:       it.CreatedAt,
		}
	}
	return res
}
