package response

import (
	"time"

	"spa-storefront/internal/usecase/commands"
	"spa-storefront/internal/usecase/queries"

	"github.com/google/uuid"
	"github.com/jinzhu/copier"
)

type PromotionQuoteResponse struct {
	Code        string `json:"code"`
	Kind        string `json:"kind"`
	Discount    int64  `json:"discount"`
	FinalAmount int64  `json:"final_amount"`
}

func FromPromotionQuote(q *commands.PromotionQuote) *PromotionQuoteResponse {
	return &PromotionQuoteResponse{
		Code:        q.Code.String(),
		Kind:        q.Kind.String(),
		Discount:    q.Discount.Int64(),
		FinalAmount: q.FinalAmount.Int64(),
	}
}

type ApplyPromotionResponse struct {
	Code      string `json:"code"`
	UsedCount int    `json:"used_count"`
}

func FromApplyResult(r *commands.ApplyPromotionResult) *ApplyPromotionResponse {
	return &ApplyPromotionResponse{Code: r.Code.String(), UsedCount: r.UsedCount}
}

type PromotionResponse struct {
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

// FromPromotionView copies field by field; both sides share names and types.
func FromPromotionView(v *queries.PromotionView) (*PromotionResponse, error) {
	var resp PromotionResponse
	if err := copier.CopyWithOption(&resp, v, copier.Option{DeepCopy: true}); err != nil {
		return nil, err
	}
	return &resp, nil
}

func FromPromotionViews(views []*queries.PromotionView) ([]*PromotionResponse, error) {
	out := make([]*PromotionResponse, 0, len(views))
	for _, v := range views {
		resp, err := FromPromotionView(v)
		if err != nil {
			return nil, err
		}
		out = append(out, resp)
	}
	return out, nil
}
