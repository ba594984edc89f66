//go:build unit

package cart_test

import (
	"testing"
	"time"

	"spa-storefront/internal/domain/cart"
	"spa-storefront/internal/domain/money"
	"spa-storefront/internal/pkg/errs"
	"spa-storefront/tests/common/builder"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCart(t *testing.T) {
	now := builder.FixedNow

	t.Run("add item creates a line priced from the catalog", func(t *testing.T) {
		c := cart.New(uuid.New(), now)
		item := builder.NewCatalogItemBuilder().WithPrice(5000).BuildDomain()

		line, err := c.AddItem(item, 2, now.Add(time.Minute))
		require.NoError(t, err)

		assert.Equal(t, item.ID, line.ItemID())
		assert.Equal(t, money.Amount(5000), line.UnitPrice())
		assert.Equal(t, 2, c.ItemCount())
		assert.Equal(t, money.Amount(10000), c.Subtotal())
		assert.Equal(t, now.Add(time.Minute), c.UpdatedAt())
		assert.Equal(t, now, c.CreatedAt())
	})

	t.Run("adding the same item sums quantities and keeps the captured price", func(t *testing.T) {
		c := cart.New(uuid.New(), now)
		item := builder.NewCatalogItemBuilder().WithPrice(5000).BuildDomain()

		first, err := c.AddItem(item, 1, now)
		require.NoError(t, err)

		item.Price = 7000
		second, err := c.AddItem(item, 2, now)
		require.NoError(t, err)

		assert.Equal(t, first.ID(), second.ID())
		require.Len(t, c.Lines(), 1)
		assert.Equal(t, 3, c.Lines()[0].Quantity())
		assert.Equal(t, money.Amount(5000), c.Lines()[0].UnitPrice())
		assert.Equal(t, money.Amount(15000), c.Subtotal())
	})

	t.Run("quantity below one is rejected", func(t *testing.T) {
		c := cart.New(uuid.New(), now)
		item := builder.NewCatalogItemBuilder().BuildDomain()

		for _, q := range []int{0, -1} {
			_, err := c.AddItem(item, q, now)
			assert.ErrorIs(t, err, cart.ErrInvalidQuantity)
			assert.True(t, errs.Is(err, errs.ErrInvalidQuantity))
		}
		assert.True(t, c.IsEmpty())
	})

	t.Run("quantity above the maximum is rejected", func(t *testing.T) {
		c := cart.New(uuid.New(), now)
		item := builder.NewCatalogItemBuilder().WithPrice(5000).BuildDomain()

		_, err := c.AddItem(item, cart.MaxQuantity+1, now)
		assert.ErrorIs(t, err, cart.ErrInvalidQuantity)
		assert.True(t, c.IsEmpty())

		_, err = c.AddItem(item, cart.MaxQuantity-1, now)
		require.NoError(t, err)
		_, err = c.AddItem(item, 2, now.Add(time.Minute))
		assert.ErrorIs(t, err, cart.ErrInvalidQuantity, "the summed quantity is bounded too")
		assert.Equal(t, cart.MaxQuantity-1, c.ItemCount())
		assert.Equal(t, now, c.UpdatedAt())

		_, err = c.AddItem(item, 1, now)
		require.NoError(t, err)
		assert.Equal(t, cart.MaxQuantity, c.ItemCount())
	})

	t.Run("inactive item cannot be added", func(t *testing.T) {
		c := cart.New(uuid.New(), now)
		item := builder.NewCatalogItemBuilder().Inactive().BuildDomain()

		_, err := c.AddItem(item, 1, now)
		assert.True(t, errs.Is(err, errs.ErrNotFound))
		assert.True(t, c.IsEmpty())
	})

	t.Run("update quantity", func(t *testing.T) {
		c := cart.New(uuid.New(), now)
		item := builder.NewCatalogItemBuilder().WithPrice(3000).BuildDomain()
		line, err := c.AddItem(item, 1, now)
		require.NoError(t, err)

		require.NoError(t, c.UpdateQuantity(line.ID(), 4, now))
		assert.Equal(t, 4, c.ItemCount())
		assert.Equal(t, money.Amount(12000), c.Subtotal())

		assert.ErrorIs(t, c.UpdateQuantity(line.ID(), 0, now), cart.ErrInvalidQuantity)
		assert.ErrorIs(t, c.UpdateQuantity(line.ID(), cart.MaxQuantity+1, now), cart.ErrInvalidQuantity)
		assert.ErrorIs(t, c.UpdateQuantity(uuid.New(), 2, now), cart.ErrLineNotFound)
		assert.Equal(t, 4, c.ItemCount())
	})

	t.Run("remove line and clear", func(t *testing.T) {
		c := cart.New(uuid.New(), now)
		a, err := c.AddItem(builder.NewCatalogItemBuilder().WithPrice(1000).BuildDomain(), 1, now)
		require.NoError(t, err)
		_, err = c.AddItem(builder.NewCatalogItemBuilder().WithPrice(2000).BuildDomain(), 1, now)
		require.NoError(t, err)

		require.NoError(t, c.RemoveLine(a.ID(), now))
		assert.Equal(t, money.Amount(2000), c.Subtotal())
		assert.ErrorIs(t, c.RemoveLine(a.ID(), now), cart.ErrLineNotFound)

		c.Clear(now)
		assert.True(t, c.IsEmpty())
		assert.Equal(t, 0, c.ItemCount())
		assert.Equal(t, money.Zero, c.Subtotal())
	})

	t.Run("remove lines only drops the given ids", func(t *testing.T) {
		c := cart.New(uuid.New(), now)
		a, _ := c.AddItem(builder.NewCatalogItemBuilder().BuildDomain(), 1, now)
		b, _ := c.AddItem(builder.NewCatalogItemBuilder().BuildDomain(), 1, now)
		kept, _ := c.AddItem(builder.NewCatalogItemBuilder().BuildDomain(), 1, now)

		removed := c.RemoveLines([]uuid.UUID{a.ID(), b.ID(), uuid.New()}, now)
		assert.Equal(t, 2, removed)
		require.Len(t, c.Lines(), 1)
		assert.Equal(t, kept.ID(), c.Lines()[0].ID())

		later := now.Add(time.Hour)
		assert.Equal(t, 0, c.RemoveLines([]uuid.UUID{a.ID()}, later))
		assert.Equal(t, now, c.UpdatedAt())
	})

	t.Run("lines returns a copy", func(t *testing.T) {
		c := cart.New(uuid.New(), now)
		_, err := c.AddItem(builder.NewCatalogItemBuilder().BuildDomain(), 1, now)
		require.NoError(t, err)

		lines := c.Lines()
		lines[0] = cart.Line{}
		assert.NotEqual(t, uuid.Nil, c.Lines()[0].ID())
	})

	t.Run("reconstruct recomputes totals", func(t *testing.T) {
		lines := []cart.Line{
			cart.ReconstructLine(uuid.New(), uuid.New(), "Facial", 2, 4000),
			cart.ReconstructLine(uuid.New(), uuid.New(), "Head Spa", 1, 6000),
		}
		c := cart.Reconstruct(uuid.New(), lines, now, now)
		assert.Equal(t, 3, c.ItemCount())
		assert.Equal(t, money.Amount(14000), c.Subtotal())
	})
}

func TestCartMerge(t *testing.T) {
	now := builder.FixedNow

	existing := builder.NewCatalogItemBuilder().WithPrice(5000).BuildDomain()
	fresh := builder.NewCatalogItemBuilder().WithPrice(3000).BuildDomain()
	inactive := builder.NewCatalogItemBuilder().Inactive().BuildDomain()
	unknown := uuid.New()
	snapshot := builder.Snapshot(existing, fresh, inactive)

	newCart := func(t *testing.T) *cart.Cart {
		t.Helper()
		c := cart.New(uuid.New(), now)
		_, err := c.AddItem(existing, 1, now)
		require.NoError(t, err)
		return c
	}

	guest := []cart.GuestLine{
		{ItemID: existing.ID, Quantity: 2},
		{ItemID: fresh.ID, Quantity: 1},
		{ItemID: inactive.ID, Quantity: 1},
		{ItemID: unknown, Quantity: 1},
		{ItemID: fresh.ID, Quantity: 0},
	}

	t.Run("sums existing lines, adds new ones and reports skips", func(t *testing.T) {
		c := newCart(t)

		report := c.Merge(guest, snapshot, now)

		assert.Equal(t, 2, report.Merged)
		assert.Equal(t, []cart.SkippedLine{
			{ItemID: inactive.ID, Quantity: 1, Reason: cart.SkipUnavailable},
			{ItemID: unknown, Quantity: 1, Reason: cart.SkipUnavailable},
			{ItemID: fresh.ID, Quantity: 0, Reason: cart.SkipInvalidQuantity},
		}, report.Skipped)

		require.Len(t, c.Lines(), 2)
		assert.Equal(t, 3, c.Lines()[0].Quantity())
		assert.Equal(t, money.Amount(5000*3+3000), c.Subtotal())
	})

	t.Run("merging the same payload twice adds quantities twice", func(t *testing.T) {
		c := newCart(t)
		payload := []cart.GuestLine{{ItemID: fresh.ID, Quantity: 2}}

		c.Merge(payload, snapshot, now)
		c.Merge(payload, snapshot, now)

		line, ok := c.Line(c.Lines()[1].ID())
		require.True(t, ok)
		assert.Equal(t, 4, line.Quantity())
	})

	t.Run("lines past the maximum are skipped as invalid quantity", func(t *testing.T) {
		c := newCart(t)

		report := c.Merge([]cart.GuestLine{
			{ItemID: existing.ID, Quantity: cart.MaxQuantity},
			{ItemID: fresh.ID, Quantity: cart.MaxQuantity + 1},
			{ItemID: fresh.ID, Quantity: 1},
		}, snapshot, now)

		assert.Equal(t, 1, report.Merged)
		assert.Equal(t, []cart.SkippedLine{
			{ItemID: existing.ID, Quantity: cart.MaxQuantity, Reason: cart.SkipInvalidQuantity},
			{ItemID: fresh.ID, Quantity: cart.MaxQuantity + 1, Reason: cart.SkipInvalidQuantity},
		}, report.Skipped)
		assert.Equal(t, 2, c.ItemCount())
	})

	t.Run("empty guest cart changes nothing", func(t *testing.T) {
		c := newCart(t)
		report := c.Merge(nil, snapshot, now.Add(time.Hour))

		assert.Zero(t, report.Merged)
		assert.Empty(t, report.Skipped)
		assert.Equal(t, now, c.UpdatedAt())
	})
}
