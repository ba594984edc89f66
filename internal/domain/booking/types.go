package booking

import (
	"errors"
	"strings"

	"spa-storefront/internal/pkg/errs"
)

var (
	ErrInvalidStatus        = errs.Mark(errors.New("unknown booking status"), errs.ErrInvalidInput)
	ErrInvalidPaymentStatus = errs.Mark(errors.New("unknown payment status"), errs.ErrInvalidInput)
	ErrInvalidPaymentMethod = errs.Mark(errors.New("unknown payment method"), errs.ErrInvalidInput)
)

type Status string

const (
	StatusPending    Status = "pending"
	StatusConfirmed  Status = "confirmed"
	StatusInProgress Status = "in_progress"
	StatusCompleted  Status = "completed"
	StatusCancelled  Status = "cancelled"
)

// position on the forward path; cancelled sits outside it
var statusRank = map[Status]int{
	StatusPending:    1,
	StatusConfirmed:  2,
	StatusInProgress: 3,
	StatusCompleted:  4,
}

func ParseStatus(s string) (Status, error) {
	st := Status(strings.ToLower(strings.TrimSpace(s)))
	if !st.IsValid() {
		return "", ErrInvalidStatus
	}
	return st, nil
}

func (s Status) String() string {
	return string(s)
}

func (s Status) IsValid() bool {
	_, forward := statusRank[s]
	return forward || s == StatusCancelled
}

func (s Status) IsTerminal() bool {
	return s == StatusCompleted || s == StatusCancelled
}

// Cancellable is true while the appointment has not finished.
func (s Status) Cancellable() bool {
	switch s {
	case StatusPending, StatusConfirmed, StatusInProgress:
		return true
	default:
		return false
	}
}

func (s Status) isAhead(of Status) bool {
	to, ok1 := statusRank[s]
	from, ok2 := statusRank[of]
	return ok1 && ok2 && to > from
}

type PaymentStatus string

const (
	PaymentPending  PaymentStatus = "pending"
	PaymentPaid     PaymentStatus = "paid"
	PaymentRefunded PaymentStatus = "refunded"
)

func ParsePaymentStatus(s string) (PaymentStatus, error) {
	ps := PaymentStatus(strings.ToLower(strings.TrimSpace(s)))
	switch ps {
	case PaymentPending, PaymentPaid, PaymentRefunded:
		return ps, nil
	default:
		return "", ErrInvalidPaymentStatus
	}
}

func (p PaymentStatus) String() string {
	return string(p)
}

// allows reports the single-step payment moves: pending to paid, paid to refunded.
func (p PaymentStatus) allows(target PaymentStatus) bool {
	return (p == PaymentPending && target == PaymentPaid) ||
		(p == PaymentPaid && target == PaymentRefunded)
}

type PaymentMethod string

const (
	MethodCash         PaymentMethod = "cash"
	MethodCard         PaymentMethod = "card"
	MethodBankTransfer PaymentMethod = "bank_transfer"
	MethodPrepaid      PaymentMethod = "prepaid"
)

func ParsePaymentMethod(s string) (PaymentMethod, error) {
	m := PaymentMethod(strings.ToLower(strings.TrimSpace(s)))
	switch m {
	case MethodCash, MethodCard, MethodBankTransfer, MethodPrepaid:
		return m, nil
	default:
		return "", ErrInvalidPaymentMethod
	}
}

func (m PaymentMethod) String() string {
	return string(m)
}

// IsSettled is true for channels where money has already changed hands when
// the booking is made.
func (m PaymentMethod) IsSettled() bool {
	return m == MethodPrepaid
}
