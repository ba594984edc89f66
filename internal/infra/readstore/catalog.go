package readstore

import (
	"context"

	"spa-storefront/internal/domain/catalog"
	"spa-storefront/internal/domain/money"
	"spa-storefront/internal/infra"
	"spa-storefront/internal/infra/db"
	"spa-storefront/internal/pkg/pgconv"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgtype"
)

// CatalogReadStore reads the services table owned by the catalog. Nothing here writes to it.
type CatalogReadStore struct {
	db db.DBTX
}

func NewCatalogReadStore(dbtx db.DBTX) *CatalogReadStore {
	return &CatalogReadStore{db: dbtx}
}

func (r *CatalogReadStore) GetItem(ctx context.Context, id uuid.UUID) (*catalog.Item, error) {
	items, err := r.GetItems(ctx, []uuid.UUID{id})
	if err != nil {
		return nil, err
	}
	item, ok := items[id]
	if !ok {
		return nil, infra.WrapDomainErr(catalog.ErrItemNotFound, "catalog item not found", nil, infra.KindNotFound)
	}
	return item, nil
}

// GetItems returns every requested item that exists, inactive ones included.
// Missing ids are simply absent from the map.
func (r *CatalogReadStore) GetItems(ctx context.Context, ids []uuid.UUID) (map[uuid.UUID]*catalog.Item, error) {
	items := make(map[uuid.UUID]*catalog.Item, len(ids))
	if len(ids) == 0 {
		return items, nil
	}

	keys := make([]string, 0, len(ids))
	for _, id := range ids {
		keys = append(keys, id.String())
	}

	rows, err := r.db.Query(ctx, `
		SELECT id, name, price, active, category_id
		FROM services
		WHERE id = ANY($1::uuid[])`, keys)
	if err != nil {
		return nil, infra.WrapRepoErr("failed to get catalog items", err)
	}
	defer rows.Close()

	for rows.Next() {
		var (
			item       catalog.Item
			price      int64
			categoryID pgtype.UUID
		)
		if err := rows.Scan(&item.ID, &item.Name, &price, &item.Active, &categoryID); err != nil {
			return nil, infra.WrapRepoErr("failed to scan catalog item", err)
		}
		item.Price = money.Amount(price)
		item.CategoryID = pgconv.UUIDPtrFromPgtype(categoryID)
		items[item.ID] = &item
	}
	if err := rows.Err(); err != nil {
		return nil, infra.WrapRepoErr("failed to iterate catalog items", err)
	}
	return items, nil
}
