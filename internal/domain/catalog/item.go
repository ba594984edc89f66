package catalog

import (
	"spa-storefront/internal/domain/money"
	"spa-storefront/internal/pkg/errs"

	"github.com/google/uuid"
)

var ErrItemNotFound = errs.Mark(errs.New("catalog item not found or inactive"), errs.ErrNotFound)

// Item is a point-in-time read of a bookable service. The catalog owns it;
// callers copy the price they need and never write it back.
type Item struct {
	ID         uuid.UUID
	Name       string
	Price      money.Amount
	Active     bool
	CategoryID *uuid.UUID
}

// Available reports whether the item may be added to a cart or booked.
func (i *Item) Available() bool {
	return i != nil && i.Active
}

// Lookup resolves ids against a snapshot and rejects unknown or inactive items.
func Lookup(items map[uuid.UUID]*Item, id uuid.UUID) (*Item, error) {
	item, ok := items[id]
	if !ok || !item.Available() {
		return nil, errs.Wrapf(ErrItemNotFound, "item %s", id)
	}
	return item, nil
}
