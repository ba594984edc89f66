package request

import (
	"spa-storefront/internal/domain/cart"
	"spa-storefront/internal/usecase/commands"

	"github.com/google/uuid"
)

// Quantities are range-checked by the cart itself so the error carries the
// invalid quantity classification.
type AddCartItemRequest struct {
	ItemID   uuid.UUID `json:"item_id" binding:"required"`
	Quantity int       `json:"quantity"`
}

func (r AddCartItemRequest) ToInput() commands.AddCartItemInput {
	return commands.AddCartItemInput{ItemID: r.ItemID, Quantity: r.Quantity}
}

type UpdateCartItemRequest struct {
	Quantity int `json:"quantity"`
}

type GuestCartLine struct {
	ItemID   uuid.UUID `json:"item_id" binding:"required"`
	Quantity int       `json:"quantity"`
}

type MergeCartRequest struct {
	Lines []GuestCartLine `json:"lines" binding:"required,max=50,dive"`
}

func (r MergeCartRequest) ToGuestLines() []cart.GuestLine {
	out := make([]cart.GuestLine, 0, len(r.Lines))
	for _, l := range r.Lines {
		out = append(out, cart.GuestLine{ItemID: l.ItemID, Quantity: l.Quantity})
	}
	return out
}
