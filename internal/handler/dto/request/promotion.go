package request

import (
	"time"

	"spa-storefront/internal/domain/money"
	"spa-storefront/internal/usecase/commands"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

type ValidatePromotionRequest struct {
	Code        string      `json:"code" binding:"required,max=64"`
	OrderAmount int64       `json:"order_amount" binding:"min=0"`
	ItemIDs     []uuid.UUID `json:"item_ids"`
	CategoryIDs []uuid.UUID `json:"category_ids"`
}

func (r ValidatePromotionRequest) ToInput() commands.ValidatePromotionInput {
	return commands.ValidatePromotionInput{
		Code:        r.Code,
		OrderAmount: money.Amount(r.OrderAmount),
		ItemIDs:     r.ItemIDs,
		CategoryIDs: r.CategoryIDs,
	}
}

// PromotionDefinitionRequest is the body of both create and update. Value is
// a decimal string so percentages like "12.5" survive JSON intact.
type PromotionDefinitionRequest struct {
	Kind        string          `json:"kind" binding:"required,oneof=percentage fixed"`
	Value       decimal.Decimal `json:"value" binding:"required"`
	MinOrder    int64           `json:"min_order" binding:"min=0"`
	MaxDiscount *int64          `json:"max_discount" binding:"omitempty,min=0"`
	StartsAt    time.Time       `json:"starts_at" binding:"required"`
	EndsAt      time.Time       `json:"ends_at" binding:"required"`
	UsageLimit  *int            `json:"usage_limit" binding:"omitempty,min=0"`
	ItemIDs     []uuid.UUID     `json:"item_ids"`
	CategoryIDs []uuid.UUID     `json:"category_ids"`
	Active      *bool           `json:"active"`
}

type CreatePromotionRequest struct {
	Code string `json:"code" binding:"required,max=64"`
	PromotionDefinitionRequest
}

func (r PromotionDefinitionRequest) ToInput() commands.PromotionDefinitionInput {
	var maxDiscount *money.Amount
	if r.MaxDiscount != nil {
		a := money.Amount(*r.MaxDiscount)
		maxDiscount = &a
	}
	active := true
	if r.Active != nil {
		active = *r.Active
	}
	return commands.PromotionDefinitionInput{
		Kind:        r.Kind,
		Value:       r.Value,
		MinOrder:    money.Amount(r.MinOrder),
		MaxDiscount: maxDiscount,
		StartsAt:    r.StartsAt.UTC(),
		EndsAt:      r.EndsAt.UTC(),
		UsageLimit:  r.UsageLimit,
		ItemIDs:     r.ItemIDs,
		CategoryIDs: r.CategoryIDs,
		Active:      active,
	}
}
