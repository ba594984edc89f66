//go:build unit || e2e

package builder

import (
	"spa-storefront/internal/domain/catalog"
	"spa-storefront/internal/domain/money"

	"github.com/google/uuid"
)

type CatalogItemBuilder struct {
	ID         uuid.UUID
	Name       string
	Price      money.Amount
	Active     bool
	CategoryID *uuid.UUID
}

func NewCatalogItemBuilder() *CatalogItemBuilder {
	return &CatalogItemBuilder{
		ID:     uuid.New(),
		Name:   "Aroma Oil Massage 60min",
		Price:  8000,
		Active: true,
	}
}

func (b *CatalogItemBuilder) With(mutate func(*CatalogItemBuilder)) *CatalogItemBuilder {
	mutate(b)
	return b
}

func (b *CatalogItemBuilder) WithPrice(price money.Amount) *CatalogItemBuilder {
	b.Price = price
	return b
}

func (b *CatalogItemBuilder) WithCategory(id uuid.UUID) *CatalogItemBuilder {
	b.CategoryID = &id
	return b
}

func (b *CatalogItemBuilder) Inactive() *CatalogItemBuilder {
	b.Active = false
	return b
}

func (b *CatalogItemBuilder) BuildDomain() *catalog.Item {
	return &catalog.Item{
		ID:         b.ID,
		Name:       b.Name,
		Price:      b.Price,
		Active:     b.Active,
		CategoryID: b.CategoryID,
	}
}

// Snapshot indexes items the way CommandReads.CatalogItems returns them.
func Snapshot(items ...*catalog.Item) map[uuid.UUID]*catalog.Item {
	out := make(map[uuid.UUID]*catalog.Item, len(items))
	for _, it := range items {
		out[it.ID] = it
	}
	return out
}
