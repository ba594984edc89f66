package promotion

import (
	"errors"
	"time"

	"spa-storefront/internal/domain/money"
	"spa-storefront/internal/pkg/errs"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

var (
	ErrNotFound       = errs.Mark(errs.Mark(errors.New("promotion not found"), errs.ErrNotFound), errs.ErrPromotionNotFound)
	ErrInactive       = errs.Mark(errors.New("promotion is inactive"), errs.ErrInactive)
	ErrNotStarted     = errs.Mark(errors.New("promotion has not started"), errs.ErrNotStarted)
	ErrExpired        = errs.Mark(errors.New("promotion has expired"), errs.ErrExpired)
	ErrUsageExhausted = errs.Mark(errors.New("promotion usage limit reached"), errs.ErrUsageExhausted)
	ErrBelowMinimum   = errs.Mark(errors.New("order amount below promotion minimum"), errs.ErrBelowMinimum)
	ErrNotApplicable  = errs.Mark(errors.New("promotion does not apply to these services"), errs.ErrNotApplicable)
	ErrCodeTaken      = errs.Mark(errors.New("promotion code already exists"), errs.ErrConflict)

	ErrInvalidWindow     = errs.Mark(errors.New("promotion must end at or after its start"), errs.ErrInvalidInput)
	ErrInvalidUsageLimit = errs.Mark(errors.New("usage limit cannot be negative"), errs.ErrInvalidInput)
	ErrLimitBelowUsage   = errs.Mark(errors.New("usage limit is below the current usage count"), errs.ErrInvalidInput)
)

type Promotion struct {
	id         uuid.UUID
	code       Code
	discount   Discount
	minOrder   money.Amount
	startsAt   time.Time
	endsAt     time.Time
	usageLimit *int
	usedCount  int
	scope      Scope
	active     bool
	createdAt  time.Time
	updatedAt  time.Time
}

// Definition is everything an administrator controls on a promotion.
type Definition struct {
	Kind        Kind
	Value       decimal.Decimal
	MinOrder    money.Amount
	MaxDiscount *money.Amount
	StartsAt    time.Time
	EndsAt      time.Time
	UsageLimit  *int
	ItemIDs     []uuid.UUID
	CategoryIDs []uuid.UUID
	Active      bool
}

// Order is the context a promotion is checked against.
type Order struct {
	Amount      money.Amount
	ItemIDs     []uuid.UUID
	CategoryIDs []uuid.UUID
}

func New(code Code, def Definition, now time.Time) (*Promotion, error) {
	p := &Promotion{
		id:        uuid.New(),
		code:      code,
		createdAt: now,
	}
	if err := p.apply(def, now); err != nil {
		return nil, err
	}
	return p, nil
}

func Reconstruct(
	id uuid.UUID,
	code Code,
	discount Discount,
	minOrder money.Amount,
	startsAt, endsAt time.Time,
	usageLimit *int,
	usedCount int,
	scope Scope,
	active bool,
	createdAt, updatedAt time.Time,
) *Promotion {
	return &Promotion{
		id:         id,
		code:       code,
		discount:   discount,
		minOrder:   minOrder,
		startsAt:   startsAt,
		endsAt:     endsAt,
		usageLimit: usageLimit,
		usedCount:  usedCount,
		scope:      scope,
		active:     active,
		createdAt:  createdAt,
		updatedAt:  updatedAt,
	}
}

// Redefine replaces the administrator-controlled fields. The usage counter is untouched.
func (p *Promotion) Redefine(def Definition, now time.Time) error {
	return p.apply(def, now)
}

func (p *Promotion) Deactivate(now time.Time) {
	if !p.active {
		return
	}
	p.active = false
	p.updatedAt = now
}

// Validate checks the promotion against an order and returns the discount.
// It never changes the usage counter. Failures are reported in a fixed order:
// inactive, not started, expired, usage exhausted, below minimum, not applicable.
func (p *Promotion) Validate(order Order, now time.Time) (money.Amount, error) {
	if !p.active {
		return money.Zero, ErrInactive
	}
	if now.Before(p.startsAt) {
		return money.Zero, ErrNotStarted
	}
	if now.After(p.endsAt) {
		return money.Zero, ErrExpired
	}
	if p.IsExhausted() {
		return money.Zero, ErrUsageExhausted
	}
	if order.Amount < p.minOrder {
		return money.Zero, ErrBelowMinimum
	}
	if !p.scope.Matches(order.ItemIDs, order.CategoryIDs) {
		return money.Zero, ErrNotApplicable
	}
	return p.discount.Amount(order.Amount), nil
}

func (p *Promotion) IsExhausted() bool {
	return p.usageLimit != nil && p.usedCount >= *p.usageLimit
}

func (p *Promotion) ID() uuid.UUID          { return p.id }
func (p *Promotion) Code() Code             { return p.code }
func (p *Promotion) Discount() Discount     { return p.discount }
func (p *Promotion) MinOrder() money.Amount { return p.minOrder }
func (p *Promotion) StartsAt() time.Time    { return p.startsAt }
func (p *Promotion) EndsAt() time.Time      { return p.endsAt }
func (p *Promotion) UsageLimit() *int       { return p.usageLimit }
func (p *Promotion) UsedCount() int         { return p.usedCount }
func (p *Promotion) Scope() Scope           { return p.scope }
func (p *Promotion) Active() bool           { return p.active }
func (p *Promotion) CreatedAt() time.Time   { return p.createdAt }
func (p *Promotion) UpdatedAt() time.Time   { return p.updatedAt }

func (p *Promotion) apply(def Definition, now time.Time) error {
	discount, err := NewDiscount(def.Kind, def.Value, def.MaxDiscount)
	if err != nil {
		return err
	}
	if def.EndsAt.Before(def.StartsAt) {
		return ErrInvalidWindow
	}
	if def.UsageLimit != nil && *def.UsageLimit < 0 {
		return ErrInvalidUsageLimit
	}
	if def.UsageLimit != nil && *def.UsageLimit < p.usedCount {
		return ErrLimitBelowUsage
	}

	p.discount = discount
	p.minOrder = def.MinOrder
	p.startsAt = def.StartsAt
	p.endsAt = def.EndsAt
	p.usageLimit = def.UsageLimit
	p.scope = NewScope(def.ItemIDs, def.CategoryIDs)
	p.active = def.Active
	p.updatedAt = now
	return nil
}
