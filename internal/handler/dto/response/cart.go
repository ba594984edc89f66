package response

import (
	"time"

	"spa-storefront/internal/domain/cart"
	"spa-storefront/internal/usecase/commands"

	"github.com/google/uuid"
)

type CartLineResponse struct {
	ID        uuid.UUID `json:"id"`
	ItemID    uuid.UUID `json:"item_id"`
	ItemName  string    `json:"item_name"`
	Quantity  int       `json:"quantity"`
	UnitPrice int64     `json:"unit_price"`
	Subtotal  int64     `json:"subtotal"`
}

type CartResponse struct {
	CustomerID uuid.UUID          `json:"customer_id"`
	Lines      []CartLineResponse `json:"lines"`
	ItemCount  int                `json:"item_count"`
	Subtotal   int64              `json:"subtotal"`
	UpdatedAt  time.Time          `json:"updated_at"`
}

func FromCart(c *cart.Cart) *CartResponse {
	lines := c.Lines()
	resp := &CartResponse{
		CustomerID: c.CustomerID(),
		Lines:      make([]CartLineResponse, 0, len(lines)),
		ItemCount:  c.ItemCount(),
		Subtotal:   c.Subtotal().Int64(),
		UpdatedAt:  c.UpdatedAt(),
	}
	for _, l := range lines {
		resp.Lines = append(resp.Lines, CartLineResponse{
			ID:        l.ID(),
			ItemID:    l.ItemID(),
			ItemName:  l.ItemName(),
			Quantity:  l.Quantity(),
			UnitPrice: l.UnitPrice().Int64(),
			Subtotal:  l.Subtotal().Int64(),
		})
	}
	return resp
}

type SkippedLineResponse struct {
	ItemID   uuid.UUID `json:"item_id"`
	Quantity int       `json:"quantity"`
	Reason   string    `json:"reason"`
}

type MergeCartResponse struct {
	Cart    *CartResponse         `json:"cart"`
	Merged  int                   `json:"merged"`
	Skipped []SkippedLineResponse `json:"skipped"`
}

func FromMergeResult(r *commands.MergeCartResult) *MergeCartResponse {
	resp := &MergeCartResponse{
		Cart:    FromCart(r.Cart),
		Merged:  r.Report.Merged,
		Skipped: make([]SkippedLineResponse, 0, len(r.Report.Skipped)),
	}
	for _, s := range r.Report.Skipped {
		resp.Skipped = append(resp.Skipped, SkippedLineResponse{
			ItemID:   s.ItemID,
			Quantity: s.Quantity,
			Reason:   string(s.Reason),
		})
	}
	return resp
}
