package repository

import (
	"context"

	"spa-storefront/internal/domain/promotion"
	"spa-storefront/internal/infra"
	"spa-storefront/internal/infra/db"
	"spa-storefront/internal/pkg/pgconv"
)

type PromotionRepository struct {
	db db.DBTX
}

func NewPromotionRepository(dbtx db.DBTX) *PromotionRepository {
	return &PromotionRepository{db: dbtx}
}

func (r *PromotionRepository) Create(ctx context.Context, p *promotion.Promotion) error {
	d := p.Discount()
	_, err := r.db.Exec(ctx, `
		INSERT INTO promotions (
			id, code, kind, value, min_order, max_discount, starts_at, ends_at,
			usage_limit, used_count, item_ids, category_ids, active, created_at, updated_at
		) VALUES ($1, $2, $3, $4::numeric, $5, $6, $7, $8, $9, $10, $11::uuid[], $12::uuid[], $13, $14, $15)`,
		p.ID(), p.Code().String(), d.Kind().String(), d.Value().String(), p.MinOrder().Int64(),
		amountPtrToPgtype(d.MaxDiscount()), pgconv.TimeToPgtype(p.StartsAt()), pgconv.TimeToPgtype(p.EndsAt()),
		intPtrToPgtype(p.UsageLimit()), p.UsedCount(),
		uuidStrings(p.Scope().ItemIDs()), uuidStrings(p.Scope().CategoryIDs()),
		p.Active(), pgconv.TimeToPgtype(p.CreatedAt()), pgconv.TimeToPgtype(p.UpdatedAt()))
	if err != nil {
		if pgconv.IsUniqueViolation(err) {
			return infra.WrapDomainErr(promotion.ErrCodeTaken, "promotion code already exists", err, infra.KindDuplicateKey)
		}
		return infra.WrapRepoErr("failed to create promotion", err)
	}
	return nil
}

func (r *PromotionRepository) Update(ctx context.Context, p *promotion.Promotion) error {
	d := p.Discount()
	tag, err := r.db.Exec(ctx, `
		UPDATE promotions SET
			kind = $2, value = $3::numeric, min_order = $4, max_discount = $5,
			starts_at = $6, ends_at = $7, usage_limit = $8,
			item_ids = $9::uuid[], category_ids = $10::uuid[], active = $11, updated_at = $12
		WHERE id = $1`,
		p.ID(), d.Kind().String(), d.Value().String(), p.MinOrder().Int64(), amountPtrToPgtype(d.MaxDiscount()),
		pgconv.TimeToPgtype(p.StartsAt()), pgconv.TimeToPgtype(p.EndsAt()), intPtrToPgtype(p.UsageLimit()),
		uuidStrings(p.Scope().ItemIDs()), uuidStrings(p.Scope().CategoryIDs()),
		p.Active(), pgconv.TimeToPgtype(p.UpdatedAt()))
	if err != nil {
		return infra.WrapRepoErr("failed to update promotion", err)
	}
	if tag.RowsAffected() == 0 {
		return infra.WrapDomainErr(promotion.ErrNotFound, "promotion not found", nil, infra.KindNotFound)
	}
	return nil
}

// IncrementUsage bumps used_count only while the limit allows. When no row
// is updated a second read tells an unknown code from an exhausted one.
func (r *PromotionRepository) IncrementUsage(ctx context.Context, code promotion.Code) (int, error) {
	var used int32
	err := r.db.QueryRow(ctx, `
		UPDATE promotions
		SET used_count = used_count + 1
		WHERE code = $1 AND (usage_limit IS NULL OR used_count < usage_limit)
		RETURNING used_count`, code.String(),
	).Scan(&used)
	if err == nil {
		return int(used), nil
	}
	if !pgconv.IsNoRows(err) {
		return 0, infra.WrapRepoErr("failed to increment promotion usage", err)
	}

	var exists bool
	if err = r.db.QueryRow(ctx, `SELECT EXISTS (SELECT 1 FROM promotions WHERE code = $1)`, code.String()).Scan(&exists); err != nil {
		return 0, infra.WrapRepoErr("failed to check promotion existence", err)
	}
	if !exists {
		return 0, infra.WrapDomainErr(promotion.ErrNotFound, "promotion not found", nil, infra.KindNotFound)
	}
	return 0, infra.WrapDomainErr(promotion.ErrUsageExhausted, "promotion usage limit reached", nil, infra.KindConflict)
}

func (r *PromotionRepository) FindByCode(ctx context.Context, code promotion.Code) (*promotion.Promotion, error) {
	row := r.db.QueryRow(ctx, `SELECT `+promotionColumns+` FROM promotions WHERE code = $1`, code.String())
	p, err := scanPromotion(row)
	if err != nil {
		if pgconv.IsNoRows(err) {
			return nil, infra.WrapDomainErr(promotion.ErrNotFound, "promotion not found", err, infra.KindNotFound)
		}
		return nil, infra.WrapRepoErr("failed to get promotion by code", err)
	}
	return p, nil
}
