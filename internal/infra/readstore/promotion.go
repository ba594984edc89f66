package readstore

import (
	"context"

	"spa-storefront/internal/infra"
	"spa-storefront/internal/infra/db"
	"spa-storefront/internal/pkg/pgconv"
	"spa-storefront/internal/usecase/queries"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgtype"
)

const promotionViewColumns = `id, code, kind, value::text, min_order, max_discount, starts_at, ends_at,
	usage_limit, used_count, item_ids::text[], category_ids::text[], active, created_at, updated_at`

type PromotionReadStore struct {
	db db.DBTX
}

func NewPromotionReadStore(dbtx db.DBTX) *PromotionReadStore {
	return &PromotionReadStore{db: dbtx}
}

func (r *PromotionReadStore) FindByCode(ctx context.Context, code string) (*queries.PromotionView, error) {
	v, err := scanPromotionView(r.db.QueryRow(ctx,
		`SELECT `+promotionViewColumns+` FROM promotions WHERE code = $1`, code))
	if err != nil {
		if pgconv.IsNoRows(err) {
			return nil, infra.WrapRepoErr("promotion not found", err, infra.KindNotFound)
		}
		return nil, infra.WrapRepoErr("failed to get promotion view", err)
	}
	return v, nil
}

func (r *PromotionReadStore) List(ctx context.Context, activeOnly bool) ([]*queries.PromotionView, error) {
	rows, err := r.db.Query(ctx, `
		SELECT `+promotionViewColumns+`
		FROM promotions
		WHERE active OR NOT $1
		ORDER BY code`, activeOnly)
	if err != nil {
		return nil, infra.WrapRepoErr("failed to list promotions", err)
	}
	defer rows.Close()

	views := make([]*queries.PromotionView, 0)
	for rows.Next() {
		v, err := scanPromotionView(rows)
		if err != nil {
			return nil, infra.WrapRepoErr("failed to scan promotion view", err)
		}
		views = append(views, v)
	}
	if err := rows.Err(); err != nil {
		return nil, infra.WrapRepoErr("failed to iterate promotions", err)
	}
	return views, nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanPromotionView(row rowScanner) (*queries.PromotionView, error) {
	var (
		v                    queries.PromotionView
		maxDiscount          pgtype.Int8
		startsAt, endsAt     pgtype.Timestamptz
		usageLimit           pgtype.Int4
		usedCount            int32
		itemIDs, categoryIDs []string
		createdAt, updatedAt pgtype.Timestamptz
	)
	err := row.Scan(&v.ID, &v.Code, &v.Kind, &v.Value, &v.MinOrder, &maxDiscount, &startsAt, &endsAt,
		&usageLimit, &usedCount, &itemIDs, &categoryIDs, &v.Active, &createdAt, &updatedAt)
	if err != nil {
		return nil, err
	}
	v.MaxDiscount = pgconv.Int64PtrFromPgtype(maxDiscount)
	v.StartsAt = pgconv.TimeFromPgtype(startsAt)
	v.EndsAt = pgconv.TimeFromPgtype(endsAt)
	if usageLimit.Valid {
		l := int(usageLimit.Int32)
		v.UsageLimit = &l
	}
	v.UsedCount = int(usedCount)
	v.ItemIDs = parseUUIDList(itemIDs)
	v.CategoryIDs = parseUUIDList(categoryIDs)
	v.CreatedAt = pgconv.TimeFromPgtype(createdAt)
	v.UpdatedAt = pgconv.TimeFromPgtype(updatedAt)
	return &v, nil
}

// parseUUIDList parses ids the database already typed as uuid and drops anything unparsable.
func parseUUIDList(ss []string) []uuid.UUID {
	out := make([]uuid.UUID, 0, len(ss))
	for _, s := range ss {
		if id, err := uuid.Parse(s); err == nil {
			out = append(out, id)
		}
	}
	return out
}
