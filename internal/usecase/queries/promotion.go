package queries

import (
	"context"

	"spa-storefront/internal/domain/promotion"
	"spa-storefront/internal/pkg/errs"
)

type PromotionReadStore interface {
	FindByCode(ctx context.Context, code string) (*PromotionView, error)
	List(ctx context.Context, activeOnly bool) ([]*PromotionView, error)
}

type PromotionQueries interface {
	GetByCode(ctx context.Context, code string) (*PromotionView, error)
	List(ctx context.Context, activeOnly bool) ([]*PromotionView, error)
}

type promotionQueriesImpl struct {
	store PromotionReadStore
}

func NewPromotionQueries(store PromotionReadStore) PromotionQueries {
	return &promotionQueriesImpl{store: store}
}

func (q *promotionQueriesImpl) GetByCode(ctx context.Context, code string) (*PromotionView, error) {
	c, err := promotion.NewCode(code)
	if err != nil {
		return nil, errs.Wrapf(promotion.ErrNotFound, "code %q", code)
	}
	view, err := q.store.FindByCode(ctx, c.String())
	if err != nil {
		if errs.Is(err, errs.ErrNotFound) {
			return nil, errs.Wrapf(promotion.ErrNotFound, "code %q", code)
		}
		return nil, err
	}
	return view, nil
}

// List returns promotions ordered by code.
func (q *promotionQueriesImpl) List(ctx context.Context, activeOnly bool) ([]*PromotionView, error) {
	return q.store.List(ctx, activeOnly)
}
