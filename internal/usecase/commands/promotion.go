package commands

import (
	"context"
	"log/slog"
	"slices"
	"time"

	"spa-storefront/internal/domain/catalog"
	"spa-storefront/internal/domain/money"
	"spa-storefront/internal/domain/promotion"
	"spa-storefront/internal/pkg/clock"
	"spa-storefront/internal/pkg/errs"
	"spa-storefront/internal/usecase/shared"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

type ValidatePromotionInput struct {
	Code        string
	OrderAmount money.Amount
	ItemIDs     []uuid.UUID
	CategoryIDs []uuid.UUID
}

type PromotionQuote struct {
	Code        promotion.Code
	Kind        promotion.Kind
	Discount    money.Amount
	FinalAmount money.Amount
}

type PromotionDefinitionInput struct {
	Kind        string
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

type ApplyPromotionResult struct {
	Code      promotion.Code
	UsedCount int
}

type PromotionCommands interface {
	Validate(ctx context.Context, in ValidatePromotionInput) (*PromotionQuote, error)
	Apply(ctx context.Context, code string) (*ApplyPromotionResult, error)
	Create(ctx context.Context, code string, in PromotionDefinitionInput) (*promotion.Promotion, error)
	Update(ctx context.Context, code string, in PromotionDefinitionInput) (*promotion.Promotion, error)
	Deactivate(ctx context.Context, code string) (*promotion.Promotion, error)
}

type promotionCommandsImpl struct {
	uow   shared.UnitOfWork
	clock clock.Clock
}

func NewPromotionCommands(uow shared.UnitOfWork, clk clock.Clock) PromotionCommands {
	return &promotionCommandsImpl{uow: uow, clock: clk}
}

// Validate previews a promotion against an order without consuming a use.
// Categories of the given items are looked up in the catalog and joined with
// the explicit category list.
func (uc *promotionCommandsImpl) Validate(ctx context.Context, in ValidatePromotionInput) (*PromotionQuote, error) {
	code, err := lookupCode(in.Code)
	if err != nil {
		return nil, err
	}

	reads := uc.uow.CommandReads()
	promo, err := reads.PromotionByCode(ctx, code)
	if err != nil {
		return nil, err
	}

	categoryIDs := slices.Clone(in.CategoryIDs)
	if len(in.ItemIDs) > 0 {
		items, err := reads.CatalogItems(ctx, in.ItemIDs)
		if err != nil {
			return nil, err
		}
		categoryIDs = append(categoryIDs, categoriesOf(items)...)
	}

	discount, err := promo.Validate(promotion.Order{
		Amount:      in.OrderAmount,
		ItemIDs:     in.ItemIDs,
		CategoryIDs: categoryIDs,
	}, uc.clock.Now())
	if err != nil {
		return nil, err
	}

	return &PromotionQuote{
		Code:        promo.Code(),
		Kind:        promo.Discount().Kind(),
		Discount:    discount,
		FinalAmount: in.OrderAmount.SubFloor(discount),
	}, nil
}

// Apply consumes one use of the promotion. The limit check and the increment
// happen in the same statement, so concurrent callers cannot overshoot it.
func (uc *promotionCommandsImpl) Apply(ctx context.Context, code string) (*ApplyPromotionResult, error) {
	c, err := lookupCode(code)
	if err != nil {
		return nil, err
	}

	var used int
	err = uc.uow.Within(ctx, func(ctx context.Context, tx shared.Tx) error {
		n, ierr := tx.Promotions().IncrementUsage(ctx, c)
		if ierr != nil {
			return ierr
		}
		used = n
		return nil
	})
	if err != nil {
		return nil, err
	}

	slog.Info("promotion applied", "code", c.String(), "used_count", used)
	return &ApplyPromotionResult{Code: c, UsedCount: used}, nil
}

func (uc *promotionCommandsImpl) Create(ctx context.Context, code string, in PromotionDefinitionInput) (*promotion.Promotion, error) {
	c, err := promotion.NewCode(code)
	if err != nil {
		return nil, err
	}
	def, err := in.toDefinition()
	if err != nil {
		return nil, err
	}

	var created *promotion.Promotion
	err = uc.uow.Within(ctx, func(ctx context.Context, tx shared.Tx) error {
		p, derr := promotion.New(c, def, uc.clock.Now())
		if derr != nil {
			return derr
		}
		if derr = tx.Promotions().Create(ctx, p); derr != nil {
			return derr
		}
		created = p
		return nil
	})
	if err != nil {
		return nil, err
	}
	return created, nil
}

func (uc *promotionCommandsImpl) Update(ctx context.Context, code string, in PromotionDefinitionInput) (*promotion.Promotion, error) {
	c, err := lookupCode(code)
	if err != nil {
		return nil, err
	}
	def, err := in.toDefinition()
	if err != nil {
		return nil, err
	}

	return uc.modify(ctx, c, func(p *promotion.Promotion, now time.Time) error {
		return p.Redefine(def, now)
	})
}

func (uc *promotionCommandsImpl) Deactivate(ctx context.Context, code string) (*promotion.Promotion, error) {
	c, err := lookupCode(code)
	if err != nil {
		return nil, err
	}
	return uc.modify(ctx, c, func(p *promotion.Promotion, now time.Time) error {
		p.Deactivate(now)
		return nil
	})
}

func (uc *promotionCommandsImpl) modify(ctx context.Context, code promotion.Code, fn func(p *promotion.Promotion, now time.Time) error) (*promotion.Promotion, error) {
	var updated *promotion.Promotion
	err := uc.uow.Within(ctx, func(ctx context.Context, tx shared.Tx) error {
		p, derr := tx.Reads().PromotionByCode(ctx, code)
		if derr != nil {
			return derr
		}
		if derr = fn(p, uc.clock.Now()); derr != nil {
			return derr
		}
		if derr = tx.Promotions().Update(ctx, p); derr != nil {
			return derr
		}
		updated = p
		return nil
	})
	if err != nil {
		return nil, err
	}
	return updated, nil
}

func (in PromotionDefinitionInput) toDefinition() (promotion.Definition, error) {
	kind, err := promotion.ParseKind(in.Kind)
	if err != nil {
		return promotion.Definition{}, err
	}
	return promotion.Definition{
		Kind:        kind,
		Value:       in.Value,
		MinOrder:    in.MinOrder,
		MaxDiscount: in.MaxDiscount,
		StartsAt:    in.StartsAt,
		EndsAt:      in.EndsAt,
		UsageLimit:  in.UsageLimit,
		ItemIDs:     in.ItemIDs,
		CategoryIDs: in.CategoryIDs,
		Active:      in.Active,
	}, nil
}

// lookupCode normalizes a code used to find an existing promotion. A code
// that cannot exist is reported as not found rather than as bad input.
func lookupCode(raw string) (promotion.Code, error) {
	c, err := promotion.NewCode(raw)
	if err != nil {
		return "", errs.Wrapf(promotion.ErrNotFound, "code %q", raw)
	}
	return c, nil
}

func categoriesOf(items map[uuid.UUID]*catalog.Item) []uuid.UUID {
	out := make([]uuid.UUID, 0, len(items))
	for _, item := range items {
		if item.CategoryID != nil {
			out = append(out, *item.CategoryID)
		}
	}
	return out
}

// PromotionFailureReason names the promotion rule an error failed, or "" for
// errors that are not promotion failures.
func PromotionFailureReason(err error) string {
	switch {
	case err == nil:
		return ""
	case errs.Is(err, errs.ErrPromotionNotFound):
		return "not_found"
	case errs.Is(err, errs.ErrInactive):
		return "inactive"
	case errs.Is(err, errs.ErrNotStarted):
		return "not_started"
	case errs.Is(err, errs.ErrExpired):
		return "expired"
	case errs.Is(err, errs.ErrUsageExhausted):
		return "usage_exhausted"
	case errs.Is(err, errs.ErrBelowMinimum):
		return "below_minimum"
	case errs.Is(err, errs.ErrNotApplicable):
		return "not_applicable"
	default:
		return ""
	}
}
