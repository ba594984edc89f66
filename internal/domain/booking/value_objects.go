package booking

import (
	"errors"
	"regexp"
	"strings"
	"time"
	"unicode/utf8"

	"spa-storefront/internal/domain/money"
	"spa-storefront/internal/pkg/errs"

	"github.com/google/uuid"
)

const (
	DateLayout = "2006-01-02"
	TimeLayout = "15:04"

	MaxNameLength  = 100
	MaxPhoneLength = 30
	MaxNotesLength = 1000
)

var (
	ErrInvalidAppointmentDate = errs.Mark(errors.New("appointment date must be YYYY-MM-DD"), errs.ErrInvalidInput)
	ErrInvalidAppointmentTime = errs.Mark(errors.New("appointment time must be HH:MM"), errs.ErrInvalidInput)
	ErrInvalidCustomerName    = errs.Mark(errors.New("customer name is required"), errs.ErrInvalidInput)
	ErrInvalidCustomerPhone   = errs.Mark(errors.New("customer phone is required"), errs.ErrInvalidInput)
	ErrInvalidCustomerEmail   = errs.Mark(errors.New("invalid customer email"), errs.ErrInvalidInput)
	ErrNotesTooLong           = errs.Mark(errors.New("notes too long"), errs.ErrInvalidInput)
)

var emailRegex = regexp.MustCompile(`^[a-zA-Z0-9._%+\-]+@[a-zA-Z0-9.\-]+\.[a-zA-Z]{2,}$`)

// Appointment is a calendar date plus a wall-clock time. Past dates are accepted.
type Appointment struct {
	date time.Time
	at   string
}

func NewAppointment(date, at string) (Appointment, error) {
	d, err := time.Parse(DateLayout, strings.TrimSpace(date))
	if err != nil {
		return Appointment{}, ErrInvalidAppointmentDate
	}
	at = strings.TrimSpace(at)
	if _, err := time.Parse(TimeLayout, at); err != nil || len(at) != len(TimeLayout) {
		return Appointment{}, ErrInvalidAppointmentTime
	}
	return Appointment{date: d, at: at}, nil
}

func (a Appointment) Date() time.Time    { return a.date }
func (a Appointment) DateString() string { return a.date.Format(DateLayout) }
func (a Appointment) Time() string       { return a.at }

type CustomerInfo struct {
	name  string
	phone string
	email string
}

func NewCustomerInfo(name, phone, email string) (CustomerInfo, error) {
	name = strings.TrimSpace(name)
	phone = strings.TrimSpace(phone)
	email = strings.TrimSpace(email)

	if name == "" || utf8.RuneCountInString(name) > MaxNameLength {
		return CustomerInfo{}, ErrInvalidCustomerName
	}
	if phone == "" || len(phone) > MaxPhoneLength {
		return CustomerInfo{}, ErrInvalidCustomerPhone
	}
	if email != "" && !emailRegex.MatchString(email) {
		return CustomerInfo{}, ErrInvalidCustomerEmail
	}
	return CustomerInfo{name: name, phone: phone, email: email}, nil
}

func (c CustomerInfo) Name() string  { return c.name }
func (c CustomerInfo) Phone() string { return c.phone }
func (c CustomerInfo) Email() string { return c.email }

func NewNotes(s string) (string, error) {
	s = strings.TrimSpace(s)
	if utf8.RuneCountInString(s) > MaxNotesLength {
		return "", ErrNotesTooLong
	}
	return s, nil
}

// ServiceLine is one unit of a booked service at the price frozen at creation.
type ServiceLine struct {
	itemID    uuid.UUID
	itemName  string
	unitPrice money.Amount
}

func NewServiceLine(itemID uuid.UUID, itemName string, unitPrice money.Amount) ServiceLine {
	return ServiceLine{itemID: itemID, itemName: itemName, unitPrice: unitPrice}
}

func (l ServiceLine) ItemID() uuid.UUID       { return l.itemID }
func (l ServiceLine) ItemName() string        { return l.itemName }
func (l ServiceLine) UnitPrice() money.Amount { return l.unitPrice }
