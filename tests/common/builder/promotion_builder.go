//go:build unit || e2e

package builder

import (
	"time"

	"spa-storefront/internal/domain/money"
	"spa-storefront/internal/domain/promotion"
	reqdto "spa-storefront/internal/handler/dto/request"
	"spa-storefront/internal/usecase/queries"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// FixedNow is the reference instant builders and test clocks share.
var FixedNow = time.Date(2025, 3, 1, 10, 0, 0, 0, time.UTC)

type PromotionBuilder struct {
	Code        string
	Kind        promotion.Kind
	Value       decimal.Decimal
	MinOrder    money.Amount
	MaxDiscount *money.Amount
	StartsAt    time.Time
	EndsAt      time.Time
	UsageLimit  *int
	UsedCount   int
	ItemIDs     []uuid.UUID
	CategoryIDs []uuid.UUID
	Active      bool
	Now         time.Time
}

func NewPromotionBuilder() *PromotionBuilder {
	return &PromotionBuilder{
		Code:     "SPRING10",
		Kind:     promotion.KindPercentage,
		Value:    decimal.NewFromInt(10),
		StartsAt: FixedNow.Add(-24 * time.Hour),
		EndsAt:   FixedNow.Add(30 * 24 * time.Hour),
		Active:   true,
		Now:      FixedNow,
	}
}

func (b *PromotionBuilder) With(mutate func(*PromotionBuilder)) *PromotionBuilder {
	mutate(b)
	return b
}

func (b *PromotionBuilder) WithFixed(amount int64) *PromotionBuilder {
	b.Kind = promotion.KindFixed
	b.Value = decimal.NewFromInt(amount)
	return b
}

func (b *PromotionBuilder) WithUsageLimit(limit int) *PromotionBuilder {
	b.UsageLimit = &limit
	return b
}

func (b *PromotionBuilder) WithMinOrder(min money.Amount) *PromotionBuilder {
	b.MinOrder = min
	return b
}

func (b *PromotionBuilder) Definition() promotion.Definition {
	return promotion.Definition{
		Kind:        b.Kind,
		Value:       b.Value,
		MinOrder:    b.MinOrder,
		MaxDiscount: b.MaxDiscount,
		StartsAt:    b.StartsAt,
		EndsAt:      b.EndsAt,
		UsageLimit:  b.UsageLimit,
		ItemIDs:     b.ItemIDs,
		CategoryIDs: b.CategoryIDs,
		Active:      b.Active,
	}
}

// BuildDomain goes through the constructor; UsedCount is applied via Reconstruct
// when set, since nothing else can move the counter without a store.
func (b *PromotionBuilder) BuildDomain() (*promotion.Promotion, error) {
	code, err := promotion.NewCode(b.Code)
	if err != nil {
		return nil, err
	}
	p, err := promotion.New(code, b.Definition(), b.Now)
	if err != nil {
		return nil, err
	}
	if b.UsedCount == 0 {
		return p, nil
	}
	return promotion.Reconstruct(p.ID(), p.Code(), p.Discount(), p.MinOrder(), p.StartsAt(), p.EndsAt(),
		p.UsageLimit(), b.UsedCount, p.Scope(), p.Active(), p.CreatedAt(), p.UpdatedAt()), nil
}

func (b *PromotionBuilder) BuildDefinitionRequest() reqdto.PromotionDefinitionRequest {
	var maxDiscount *int64
	if b.MaxDiscount != nil {
		v := b.MaxDiscount.Int64()
		maxDiscount = &v
	}
	active := b.Active
	return reqdto.PromotionDefinitionRequest{
		Kind:        b.Kind.String(),
		Value:       b.Value,
		MinOrder:    b.MinOrder.Int64(),
		MaxDiscount: maxDiscount,
		StartsAt:    b.StartsAt,
		EndsAt:      b.EndsAt,
		UsageLimit:  b.UsageLimit,
		ItemIDs:     b.ItemIDs,
		CategoryIDs: b.CategoryIDs,
		Active:      &active,
	}
}

func (b *PromotionBuilder) BuildCreateRequest() reqdto.CreatePromotionRequest {
	return reqdto.CreatePromotionRequest{
		Code:                       b.Code,
		PromotionDefinitionRequest: b.BuildDefinitionRequest(),
	}
}

func (b *PromotionBuilder) BuildView() *queries.PromotionView {
	var maxDiscount *int64
	if b.MaxDiscount != nil {
		v := b.MaxDiscount.Int64()
		maxDiscount = &v
	}
	return &queries.PromotionView{
		ID:          uuid.New(),
		Code:        b.Code,
		Kind:        b.Kind.String(),
		Value:       b.Value.StringFixed(2),
		MinOrder:    b.MinOrder.Int64(),
		MaxDiscount: maxDiscount,
		StartsAt:    b.StartsAt,
		EndsAt:      b.EndsAt,
		UsageLimit:  b.UsageLimit,
		UsedCount:   b.UsedCount,
		ItemIDs:     b.ItemIDs,
		CategoryIDs: b.CategoryIDs,
		Active:      b.Active,
		CreatedAt:   b.Now,
		UpdatedAt:   b.Now,
	}
}
