package queries

import (
	"time"

	"github.com/google/uuid"
)

type BookingLineView struct {
	ItemID    uuid.UUID `json:"item_id"`
	ItemName  string    `json:"item_name"`
	UnitPrice int64     `json:"unit_price"`
}

// BookingView is the full read model of a booking, lines in booking order.
type BookingView struct {
	ID              uuid.UUID         `json:"id"`
	CustomerID      uuid.UUID         `json:"customer_id"`
	Lines           []BookingLineView `json:"lines"`
	AppointmentDate string            `json:"appointment_date"`
	AppointmentTime string            `json:"appointment_time"`
	Subtotal        int64             `json:"subtotal"`
	DiscountAmount  int64             `json:"discount_amount"`
	FinalAmount     int64             `json:"final_amount"`
	PromotionCode   *string           `json:"promotion_code,omitempty"`
	Status          string            `json:"status"`
	PaymentStatus   string            `json:"payment_status"`
	PaymentMethod   string            `json:"payment_method"`
	CustomerName    string            `json:"customer_name"`
	CustomerPhone   string            `json:"customer_phone"`
	CustomerEmail   string            `json:"customer_email"`
	CustomerNotes   string            `json:"customer_notes"`
	StaffNotes      string            `json:"staff_notes"`
	StaffID         *uuid.UUID        `json:"staff_id,omitempty"`
	CreatedAt       time.Time         `json:"created_at"`
	UpdatedAt       time.Time         `json:"updated_at"`
}

type BookingListItem struct {
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

// BookingFilter narrows a booking listing. Nil fields do not filter.
type BookingFilter struct {
	CustomerID *uuid.UUID
	Status     *string
}

type PromotionView struct {
	ID          uuid.UUID   `json:"id"`
	Code        string      `json:"code"`
	Kind        string      `json:"kind"`
	Value       string      `json:"value"`
	MinOrder    int64       `json:"min_order"`
	MaxDiscount *int64      `json:"max_discount,omitempty"`
	StartsAt    time.Time   `json:"starts_at"`
	EndsAt      time.Time   `json:"ends_at"`
	UsageLimit  *int        `json:"usage_limit,omitempty"`
	UsedCount   int         `json:"used_count"`
	ItemIDs     []uuid.UUID `json:"item_ids"`
	CategoryIDs []uuid.UUID `json:"category_ids"`
	Active      bool        `json:"active"`
	CreatedAt   time.Time   `json:"created_at"`
	UpdatedAt   time.Time   `json:"updated_at"`
}
