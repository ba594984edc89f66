//go:build unit

package commands_test

import (
	"context"
	"testing"
	"time"

	"spa-storefront/internal/domain/money"
	"spa-storefront/internal/infra/cache"
	"spa-storefront/internal/infra/filestore"
	"spa-storefront/internal/pkg/config"
	"spa-storefront/internal/pkg/errs"
	"spa-storefront/internal/usecase/commands"
	"spa-storefront/tests/common/builder"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCheckoutCommands_Checkout(t *testing.T) {
	ctx := context.Background()

	setup := func(t *testing.T, promos ...*builder.PromotionBuilder) (*bookingFixture, commands.CartCommands, commands.CheckoutCommands) {
		t.Helper()
		f := setupBookings(t, promos...)
		uow := filestore.NewUnitOfWork(f.gdb)
		carts := commands.NewCartCommands(uow, cache.Noop{}, f.clock)
		checkout := commands.NewCheckoutCommands(uow, f.clock, config.CheckoutConfig{IdempotencyTTL: time.Hour}, carts)
		return f, carts, checkout
	}

	t.Run("success: cart lines become a booking and leave the cart", func(t *testing.T) {
		f, carts, checkout := setup(t, builder.NewPromotionBuilder())
		req := f.request().WithPromotion("SPRING10")

		_, err := carts.AddItem(ctx, req.CustomerID, commands.AddCartItemInput{ItemID: f.massage.ID, Quantity: 2})
		require.NoError(t, err)
		_, err = carts.AddItem(ctx, req.CustomerID, commands.AddCartItemInput{ItemID: f.facial.ID, Quantity: 1})
		require.NoError(t, err)

		res, err := checkout.Checkout(ctx, req.BuildCheckoutInput(), nil)
		require.NoError(t, err)
		require.NoError(t, res.PromotionError)

		b := res.Booking
		assert.Equal(t, req.CustomerID, b.CustomerID())
		assert.Len(t, b.Lines(), 3)
		assert.Equal(t, money.Amount(22500), b.Subtotal())
		assert.Equal(t, money.Amount(20250), b.FinalAmount())

		left, err := carts.GetOrCreate(ctx, req.CustomerID)
		require.NoError(t, err)
		assert.True(t, left.IsEmpty())
	})

	t.Run("success: replay does not need the cart", func(t *testing.T) {
		f, carts, checkout := setup(t)
		req := f.request()
		key := uuid.New()

		_, err := carts.AddItem(ctx, req.CustomerID, commands.AddCartItemInput{ItemID: f.massage.ID, Quantity: 1})
		require.NoError(t, err)

		first, err := checkout.Checkout(ctx, req.BuildCheckoutInput(), &key)
		require.NoError(t, err)

		again, err := checkout.Checkout(ctx, req.BuildCheckoutInput(), &key)
		require.NoError(t, err)
		assert.True(t, again.Replayed)
		assert.Equal(t, first.Booking.ID(), again.Booking.ID())
		assert.Len(t, f.outbox(t), 1)
	})

	t.Run("error: a checkout key cannot be replayed as a direct booking", func(t *testing.T) {
		f, carts, checkout := setup(t)
		req := f.request()
		key := uuid.New()

		_, err := carts.AddItem(ctx, req.CustomerID, commands.AddCartItemInput{ItemID: f.massage.ID, Quantity: 1})
		require.NoError(t, err)
		_, err = checkout.Checkout(ctx, req.BuildCheckoutInput(), &key)
		require.NoError(t, err)

		_, err = f.bookings.Create(ctx, req.BuildCreateInput(), &key)
		assert.ErrorIs(t, err, commands.ErrIdempotencyKeyReuse)
	})

	t.Run("error: empty or missing cart", func(t *testing.T) {
		f, carts, checkout := setup(t)
		req := f.request()

		_, err := checkout.Checkout(ctx, req.BuildCheckoutInput(), nil)
		assert.True(t, errs.Is(err, errs.ErrEmptyOrder), "missing cart: %v", err)

		_, err = carts.GetOrCreate(ctx, req.CustomerID)
		require.NoError(t, err)
		_, err = checkout.Checkout(ctx, req.BuildCheckoutInput(), nil)
		assert.True(t, errs.Is(err, errs.ErrEmptyOrder), "empty cart: %v", err)
		assert.Empty(t, f.outbox(t))
	})

	t.Run("error: failed booking leaves the cart alone", func(t *testing.T) {
		f, carts, checkout := setup(t)
		req := f.request().With(func(b *builder.BookingBuilder) { b.CustomerPhone = "" })

		_, err := carts.AddItem(ctx, req.CustomerID, commands.AddCartItemInput{ItemID: f.massage.ID, Quantity: 1})
		require.NoError(t, err)

		_, err = checkout.Checkout(ctx, req.BuildCheckoutInput(), nil)
		assert.True(t, errs.Is(err, errs.ErrInvalidInput))

		left, err := carts.GetOrCreate(ctx, req.CustomerID)
		require.NoError(t, err)
		assert.Equal(t, 1, left.ItemCount())
	})
}
