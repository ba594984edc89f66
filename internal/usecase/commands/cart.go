package commands

import (
	"context"
	"log/slog"
	"time"

	"spa-storefront/internal/domain/cart"
	"spa-storefront/internal/domain/catalog"
	"spa-storefront/internal/pkg/clock"
	"spa-storefront/internal/pkg/errs"
	"spa-storefront/internal/usecase/shared"

	"github.com/google/uuid"
	"golang.org/x/sync/singleflight"
)

const cacheInvalidateTimeout = time.Second

type AddCartItemInput struct {
	ItemID   uuid.UUID
	Quantity int
}

type MergeCartResult struct {
	Cart   *cart.Cart
	Report cart.MergeReport
}

type CartCommands interface {
	GetOrCreate(ctx context.Context, customerID uuid.UUID) (*cart.Cart, error)
	AddItem(ctx context.Context, customerID uuid.UUID, in AddCartItemInput) (*cart.Cart, error)
	UpdateQuantity(ctx context.Context, customerID, lineID uuid.UUID, quantity int) (*cart.Cart, error)
	RemoveItem(ctx context.Context, customerID, lineID uuid.UUID) (*cart.Cart, error)
	Clear(ctx context.Context, customerID uuid.UUID) (*cart.Cart, error)
	RemoveLines(ctx context.Context, customerID uuid.UUID, lineIDs []uuid.UUID) (*cart.Cart, error)
	MergeGuestCart(ctx context.Context, customerID uuid.UUID, lines []cart.GuestLine) (*MergeCartResult, error)
}

type cartCommandsImpl struct {
	uow   shared.UnitOfWork
	cache CartCache
	clock clock.Clock
	sfg   singleflight.Group
}

func NewCartCommands(uow shared.UnitOfWork, cache CartCache, clk clock.Clock) CartCommands {
	return &cartCommandsImpl{uow: uow, cache: cache, clock: clk}
}

// GetOrCreate reads through the cache. Concurrent misses for one customer share
// a single load, and the fill is dropped if a mutation invalidated the entry
// after the miss.
func (uc *cartCommandsImpl) GetOrCreate(ctx context.Context, customerID uuid.UUID) (*cart.Cart, error) {
	v, err, _ := uc.sfg.Do(customerID.String(), func() (any, error) {
		cached, version, getErr := uc.cache.Get(ctx, customerID)
		if getErr == nil {
			return cached, nil
		}
		miss := errs.Is(getErr, ErrCacheMiss)
		if !miss {
			slog.Warn("cart cache get failed", "customer_id", customerID, "error", getErr.Error())
		}

		var loaded *cart.Cart
		err := uc.uow.Within(ctx, func(ctx context.Context, tx shared.Tx) error {
			c, lerr := loadOrCreateCart(ctx, tx, customerID, uc.clock.Now())
			if lerr != nil {
				return lerr
			}
			loaded = c
			return nil
		})
		if err != nil {
			return nil, err
		}

		// without a version from a clean miss there is nothing safe to fill
		if !miss {
			return loaded, nil
		}
		if ferr := uc.cache.Fill(ctx, loaded, version); ferr != nil {
			slog.Warn("cart cache fill failed", "customer_id", customerID, "error", ferr.Error())
		}
		return loaded, nil
	})
	if err != nil {
		return nil, err
	}
	return v.(*cart.Cart), nil
}

func (uc *cartCommandsImpl) AddItem(ctx context.Context, customerID uuid.UUID, in AddCartItemInput) (*cart.Cart, error) {
	if !cart.ValidQuantity(in.Quantity) {
		return nil, cart.ErrInvalidQuantity
	}
	return uc.mutate(ctx, customerID, func(ctx context.Context, tx shared.Tx, c *cart.Cart, now time.Time) error {
		items, err := tx.Reads().CatalogItems(ctx, []uuid.UUID{in.ItemID})
		if err != nil {
			return err
		}
		item, err := catalog.Lookup(items, in.ItemID)
		if err != nil {
			return err
		}
		_, err = c.AddItem(item, in.Quantity, now)
		return err
	})
}

func (uc *cartCommandsImpl) UpdateQuantity(ctx context.Context, customerID, lineID uuid.UUID, quantity int) (*cart.Cart, error) {
	if !cart.ValidQuantity(quantity) {
		return nil, cart.ErrInvalidQuantity
	}
	return uc.mutate(ctx, customerID, func(_ context.Context, _ shared.Tx, c *cart.Cart, now time.Time) error {
		return c.UpdateQuantity(lineID, quantity, now)
	})
}

func (uc *cartCommandsImpl) RemoveItem(ctx context.Context, customerID, lineID uuid.UUID) (*cart.Cart, error) {
	return uc.mutate(ctx, customerID, func(_ context.Context, _ shared.Tx, c *cart.Cart, now time.Time) error {
		return c.RemoveLine(lineID, now)
	})
}

func (uc *cartCommandsImpl) Clear(ctx context.Context, customerID uuid.UUID) (*cart.Cart, error) {
	return uc.mutate(ctx, customerID, func(_ context.Context, _ shared.Tx, c *cart.Cart, now time.Time) error {
		c.Clear(now)
		return nil
	})
}

// RemoveLines drops the given lines and ignores ids that are no longer in the cart.
func (uc *cartCommandsImpl) RemoveLines(ctx context.Context, customerID uuid.UUID, lineIDs []uuid.UUID) (*cart.Cart, error) {
	return uc.mutate(ctx, customerID, func(_ context.Context, _ shared.Tx, c *cart.Cart, now time.Time) error {
		c.RemoveLines(lineIDs, now)
		return nil
	})
}

// MergeGuestCart does not deduplicate repeated calls; the client must drop
// its guest cart once the merge succeeds.
func (uc *cartCommandsImpl) MergeGuestCart(ctx context.Context, customerID uuid.UUID, lines []cart.GuestLine) (*MergeCartResult, error) {
	var report cart.MergeReport
	c, err := uc.mutate(ctx, customerID, func(ctx context.Context, tx shared.Tx, c *cart.Cart, now time.Time) error {
		ids := make([]uuid.UUID, 0, len(lines))
		for _, l := range lines {
			ids = append(ids, l.ItemID)
		}
		items, err := tx.Reads().CatalogItems(ctx, ids)
		if err != nil {
			return err
		}
		report = c.Merge(lines, items, now)
		return nil
	})
	if err != nil {
		return nil, err
	}

	for _, s := range report.Skipped {
		slog.Warn("guest cart line skipped during merge",
			"customer_id", customerID,
			"item_id", s.ItemID,
			"quantity", s.Quantity,
			"reason", string(s.Reason))
	}
	return &MergeCartResult{Cart: c, Report: report}, nil
}

type cartMutation func(ctx context.Context, tx shared.Tx, c *cart.Cart, now time.Time) error

// mutate locks and loads the cart, applies fn and saves it in one transaction,
// then drops the cached copy. Concurrent mutations of one cart queue on the lock.
func (uc *cartCommandsImpl) mutate(ctx context.Context, customerID uuid.UUID, fn cartMutation) (*cart.Cart, error) {
	var result *cart.Cart
	err := uc.uow.Within(ctx, func(ctx context.Context, tx shared.Tx) error {
		now := uc.clock.Now()
		if err := tx.Carts().Lock(ctx, customerID, now); err != nil {
			return err
		}
		c, err := tx.Reads().CartByCustomer(ctx, customerID)
		if err != nil {
			return err
		}
		if err = fn(ctx, tx, c, now); err != nil {
			return err
		}
		if err = tx.Carts().Save(ctx, c); err != nil {
			return err
		}
		result = c
		return nil
	})
	if err != nil {
		return nil, err
	}

	uc.invalidate(customerID)
	return result, nil
}

func (uc *cartCommandsImpl) invalidate(customerID uuid.UUID) {
	ctx, cancel := context.WithTimeout(context.Background(), cacheInvalidateTimeout)
	defer cancel()
	if err := uc.cache.Invalidate(ctx, customerID); err != nil {
		slog.Warn("cart cache invalidate failed", "customer_id", customerID, "error", err.Error())
	}
}

// loadOrCreateCart creates only the header on a miss, so a racing first
// mutation's lines are never overwritten by an empty cart.
func loadOrCreateCart(ctx context.Context, tx shared.Tx, customerID uuid.UUID, now time.Time) (*cart.Cart, error) {
	c, err := tx.Reads().CartByCustomer(ctx, customerID)
	if err == nil {
		return c, nil
	}
	if !errs.Is(err, errs.ErrNotFound) {
		return nil, err
	}

	if err = tx.Carts().Lock(ctx, customerID, now); err != nil {
		return nil, err
	}
	return tx.Reads().CartByCustomer(ctx, customerID)
}
