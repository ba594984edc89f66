package commands

import (
	"context"

	"spa-storefront/internal/domain/cart"
	"spa-storefront/internal/pkg/errs"

	"github.com/google/uuid"
)

var ErrCacheMiss = errs.New("cart cache miss")

// CartVersion is read together with a cache miss and changes on every
// invalidation. Fill stores a cart only if the version is still current, so a
// snapshot loaded before a committed mutation is never cached after it.
type CartVersion string

// CartCache is a read-through cache in front of the cart store. Get returns
// ErrCacheMiss with the current version when the entry is absent. Failures
// never fail a request.
type CartCache interface {
	Get(ctx context.Context, customerID uuid.UUID) (*cart.Cart, CartVersion, error)
	Fill(ctx context.Context, c *cart.Cart, version CartVersion) error
	Invalidate(ctx context.Context, customerID uuid.UUID) error
}
