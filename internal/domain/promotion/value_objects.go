package promotion

import (
	"errors"
	"regexp"
	"slices"
	"strings"

	"spa-storefront/internal/domain/money"
	"spa-storefront/internal/pkg/errs"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

var (
	ErrInvalidCode  = errs.Mark(errors.New("invalid promotion code format"), errs.ErrInvalidInput)
	ErrInvalidKind  = errs.Mark(errors.New("promotion kind must be percentage or fixed"), errs.ErrInvalidInput)
	ErrInvalidValue = errs.Mark(errors.New("promotion value out of range"), errs.ErrInvalidInput)
)

var codeRegex = regexp.MustCompile(`^[A-Z0-9_-]{3,32}$`)

var hundred = decimal.NewFromInt(100)

// Code is always stored upper-cased; lookups are case-insensitive.
type Code string

func NewCode(code string) (Code, error) {
	code = strings.TrimSpace(strings.ToUpper(code))
	if !codeRegex.MatchString(code) {
		return Code(""), ErrInvalidCode
	}
	return Code(code), nil
}

func (c Code) String() string {
	return string(c)
}

type Kind string

const (
	KindPercentage Kind = "percentage"
	KindFixed      Kind = "fixed"
)

func ParseKind(s string) (Kind, error) {
	k := Kind(strings.ToLower(strings.TrimSpace(s)))
	switch k {
	case KindPercentage, KindFixed:
		return k, nil
	default:
		return "", ErrInvalidKind
	}
}

func (k Kind) String() string {
	return string(k)
}

// Discount is the kind/value pair plus the optional cap for percentage kinds.
type Discount struct {
	kind        Kind
	value       decimal.Decimal
	maxDiscount *money.Amount
}

func NewDiscount(kind Kind, value decimal.Decimal, maxDiscount *money.Amount) (Discount, error) {
	if !value.IsPositive() {
		return Discount{}, ErrInvalidValue
	}
	switch kind {
	case KindPercentage:
		if value.GreaterThan(hundred) {
			return Discount{}, ErrInvalidValue
		}
	case KindFixed:
		if !value.Equal(value.Truncate(0)) {
			return Discount{}, ErrInvalidValue
		}
		// the cap only means something for percentages
		maxDiscount = nil
	default:
		return Discount{}, ErrInvalidKind
	}
	return Discount{kind: kind, value: value, maxDiscount: maxDiscount}, nil
}

func (d Discount) Kind() Kind                 { return d.kind }
func (d Discount) Value() decimal.Decimal     { return d.value }
func (d Discount) MaxDiscount() *money.Amount { return d.maxDiscount }

// Amount computes the discount for an order amount. Percentages round half
// away from zero to whole units before the cap; fixed amounts never exceed the order.
func (d Discount) Amount(orderAmount money.Amount) money.Amount {
	switch d.kind {
	case KindPercentage:
		raw := money.FromDecimal(orderAmount.Decimal().Mul(d.value).Div(hundred))
		if d.maxDiscount != nil && raw > *d.maxDiscount {
			raw = *d.maxDiscount
		}
		return money.Min(raw, orderAmount)
	case KindFixed:
		return money.Min(money.FromDecimal(d.value), orderAmount)
	default:
		return money.Zero
	}
}

// Scope limits a promotion to catalog items and/or categories. Empty means everything.
type Scope struct {
	itemIDs     []uuid.UUID
	categoryIDs []uuid.UUID
}

func NewScope(itemIDs, categoryIDs []uuid.UUID) Scope {
	return Scope{
		itemIDs:     dedupe(itemIDs),
		categoryIDs: dedupe(categoryIDs),
	}
}

func (s Scope) ItemIDs() []uuid.UUID     { return slices.Clone(s.itemIDs) }
func (s Scope) CategoryIDs() []uuid.UUID { return slices.Clone(s.categoryIDs) }

func (s Scope) IsEmpty() bool {
	return len(s.itemIDs) == 0 && len(s.categoryIDs) == 0
}

func (s Scope) Matches(itemIDs, categoryIDs []uuid.UUID) bool {
	if s.IsEmpty() {
		return true
	}
	for _, id := range itemIDs {
		if slices.Contains(s.itemIDs, id) {
			return true
		}
	}
	for _, id := range categoryIDs {
		if slices.Contains(s.categoryIDs, id) {
			return true
		}
	}
	return false
}

func dedupe(ids []uuid.UUID) []uuid.UUID {
	if len(ids) == 0 {
		return nil
	}
	out := make([]uuid.UUID, 0, len(ids))
	for _, id := range ids {
		if !slices.Contains(out, id) {
			out = append(out, id)
		}
	}
	return out
}
