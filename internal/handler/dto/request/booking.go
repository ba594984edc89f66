package request

import (
	"strings"

	"spa-storefront/internal/usecase/commands"

	"github.com/google/uuid"
)

type BookingLineRequest struct {
	ItemID   uuid.UUID `json:"item_id" binding:"required"`
	Quantity int       `json:"quantity"`
}

// BookingDetailsRequest carries the fields shared by explicit bookings and
// cart checkout. Date and time formats are checked by the booking itself.
type BookingDetailsRequest struct {
	PromotionCode   *string `json:"promotion_code,omitempty"`
	AppointmentDate string  `json:"appointment_date" binding:"required"`
	AppointmentTime string  `json:"appointment_time" binding:"required"`
	CustomerName    string  `json:"customer_name" binding:"required,max=100"`
	CustomerPhone   string  `json:"customer_phone" binding:"required,max=30"`
	CustomerEmail   string  `json:"customer_email" binding:"required,email,max=254"`
	PaymentMethod   string  `json:"payment_method" binding:"required"`
	Notes           string  `json:"notes" binding:"max=1000"`
}

// Line quantities are range-checked by the booking usecase.
type CreateBookingRequest struct {
	Lines []BookingLineRequest `json:"lines" binding:"max=50,dive"`
	BookingDetailsRequest
}

type CheckoutRequest struct {
	BookingDetailsRequest
}

// promotionCode drops a blank code so it is treated as no code at all.
func (r BookingDetailsRequest) promotionCode() *string {
	if r.PromotionCode == nil {
		return nil
	}
	trimmed := strings.TrimSpace(*r.PromotionCode)
	if trimmed == "" {
		return nil
	}
	return &trimmed
}

func (r CreateBookingRequest) ToInput(customerID uuid.UUID) commands.CreateBookingInput {
	lines := make([]commands.BookingLineInput, 0, len(r.Lines))
	for _, l := range r.Lines {
		lines = append(lines, commands.BookingLineInput{ItemID: l.ItemID, Quantity: l.Quantity})
	}
	return commands.CreateBookingInput{
		CustomerID:      customerID,
		Lines:           lines,
		PromotionCode:   r.promotionCode(),
		AppointmentDate: r.AppointmentDate,
		AppointmentTime: r.AppointmentTime,
		CustomerName:    r.CustomerName,
		CustomerPhone:   r.CustomerPhone,
		CustomerEmail:   r.CustomerEmail,
		PaymentMethod:   r.PaymentMethod,
		Notes:           r.Notes,
	}
}

func (r CheckoutRequest) ToInput(customerID uuid.UUID) commands.CheckoutInput {
	return commands.CheckoutInput{
		CustomerID:      customerID,
		PromotionCode:   r.promotionCode(),
		AppointmentDate: r.AppointmentDate,
		AppointmentTime: r.AppointmentTime,
		CustomerName:    r.CustomerName,
		CustomerPhone:   r.CustomerPhone,
		CustomerEmail:   r.CustomerEmail,
		PaymentMethod:   r.PaymentMethod,
		Notes:           r.Notes,
	}
}

type TransitionStatusRequest struct {
	Status string `json:"status" binding:"required"`
}

type TransitionPaymentRequest struct {
	PaymentStatus string `json:"payment_status" binding:"required"`
}

type AssignStaffRequest struct {
	StaffID    *uuid.UUID `json:"staff_id"`
	ClearStaff bool       `json:"clear_staff"`
	StaffNotes *string    `json:"staff_notes" binding:"omitempty,max=1000"`
}

func (r AssignStaffRequest) ToInput() commands.AssignStaffInput {
	return commands.AssignStaffInput{StaffID: r.StaffID, ClearStaff: r.ClearStaff, StaffNotes: r.StaffNotes}
}
