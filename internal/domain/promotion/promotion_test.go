//go:build unit

package promotion_test

import (
	"testing"
	"time"

	"spa-storefront/internal/domain/money"
	"spa-storefront/internal/domain/promotion"
	"spa-storefront/internal/pkg/errs"
	"spa-storefront/tests/common/builder"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func amountPtr(v int64) *money.Amount {
	a := money.Amount(v)
	return &a
}

func TestNewCode(t *testing.T) {
	cases := []struct {
		in   string
		want promotion.Code
		err  error
	}{
		{in: "spring10", want: "SPRING10"},
		{in: "  Welcome-2025 ", want: "WELCOME-2025"},
		{in: "VIP_A", want: "VIP_A"},
		{in: "AB", err: promotion.ErrInvalidCode},
		{in: "HELLO WORLD", err: promotion.ErrInvalidCode},
		{in: "", err: promotion.ErrInvalidCode},
	}
	for _, tc := range cases {
		t.Run(tc.in, func(t *testing.T) {
			got, err := promotion.NewCode(tc.in)
			if tc.err != nil {
				assert.ErrorIs(t, err, tc.err)
				assert.True(t, errs.Is(err, errs.ErrInvalidInput))
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tc.want, got)
		})
	}
}

func TestDiscountAmount(t *testing.T) {
	cases := []struct {
		name  string
		kind  promotion.Kind
		value string
		cap   *money.Amount
		order money.Amount
		want  money.Amount
	}{
		{name: "percentage of order", kind: promotion.KindPercentage, value: "10", order: 8000, want: 800},
		{name: "percentage rounds half away from zero", kind: promotion.KindPercentage, value: "12.5", order: 999, want: 125},
		{name: "percentage rounds down below half", kind: promotion.KindPercentage, value: "10", order: 994, want: 99},
		{name: "percentage capped", kind: promotion.KindPercentage, value: "50", cap: amountPtr(3000), order: 10000, want: 3000},
		{name: "cap above raw discount has no effect", kind: promotion.KindPercentage, value: "10", cap: amountPtr(3000), order: 10000, want: 1000},
		{name: "hundred percent is the whole order", kind: promotion.KindPercentage, value: "100", order: 4200, want: 4200},
		{name: "fixed amount", kind: promotion.KindFixed, value: "1000", order: 8000, want: 1000},
		{name: "fixed never exceeds the order", kind: promotion.KindFixed, value: "1000", order: 500, want: 500},
		{name: "fixed ignores cap", kind: promotion.KindFixed, value: "1000", cap: amountPtr(10), order: 8000, want: 1000},
		{name: "zero order", kind: promotion.KindPercentage, value: "10", order: 0, want: 0},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			d, err := promotion.NewDiscount(tc.kind, decimal.RequireFromString(tc.value), tc.cap)
			require.NoError(t, err)
			assert.Equal(t, tc.want, d.Amount(tc.order))
		})
	}
}

func TestNewDiscountValidation(t *testing.T) {
	cases := []struct {
		name  string
		kind  promotion.Kind
		value string
		err   error
	}{
		{name: "zero value", kind: promotion.KindPercentage, value: "0", err: promotion.ErrInvalidValue},
		{name: "negative value", kind: promotion.KindFixed, value: "-5", err: promotion.ErrInvalidValue},
		{name: "percentage over hundred", kind: promotion.KindPercentage, value: "100.01", err: promotion.ErrInvalidValue},
		{name: "fractional fixed", kind: promotion.KindFixed, value: "10.5", err: promotion.ErrInvalidValue},
		{name: "unknown kind", kind: promotion.Kind("bogo"), value: "10", err: promotion.ErrInvalidKind},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := promotion.NewDiscount(tc.kind, decimal.RequireFromString(tc.value), nil)
			assert.ErrorIs(t, err, tc.err)
		})
	}
}

func TestPromotionValidate(t *testing.T) {
	now := builder.FixedNow
	scopedItem := uuid.New()
	scopedCategory := uuid.New()

	type testCase struct {
		name   string
		mutate func(*builder.PromotionBuilder)
		order  promotion.Order
		at     time.Time
		want   money.Amount
		errIs  error
	}

	cases := []testCase{
		{
			name:  "valid percentage",
			order: promotion.Order{Amount: 8000},
			at:    now,
			want:  800,
		},
		{
			name:   "inactive is reported before the window",
			mutate: func(b *builder.PromotionBuilder) {
				b.Active = false
				b.StartsAt = now.Add(-2 * time.Hour)
				b.EndsAt = now.Add(-time.Hour)
			},
			order:  promotion.Order{Amount: 8000},
			at:     now,
			errIs:  errs.ErrInactive,
		},
		{
			name:   "not started",
			mutate: func(b *builder.PromotionBuilder) { b.StartsAt = now.Add(time.Hour) },
			order:  promotion.Order{Amount: 8000},
			at:     now,
			errIs:  errs.ErrNotStarted,
		},
		{
			name:   "starts exactly now",
			mutate: func(b *builder.PromotionBuilder) { b.StartsAt = now },
			order:  promotion.Order{Amount: 8000},
			at:     now,
			want:   800,
		},
		{
			name:   "ends exactly now is still valid",
			mutate: func(b *builder.PromotionBuilder) { b.EndsAt = now },
			order:  promotion.Order{Amount: 8000},
			at:     now,
			want:   800,
		},
		{
			name:   "expired",
			mutate: func(b *builder.PromotionBuilder) { b.EndsAt = now.Add(-time.Second) },
			order:  promotion.Order{Amount: 8000},
			at:     now,
			errIs:  errs.ErrExpired,
		},
		{
			name:   "usage exhausted before minimum",
			mutate: func(b *builder.PromotionBuilder) {
				b.WithUsageLimit(3).WithMinOrder(100000)
				b.UsedCount = 3
			},
			order:  promotion.Order{Amount: 8000},
			at:     now,
			errIs:  errs.ErrUsageExhausted,
		},
		{
			name:   "zero usage limit is always exhausted",
			mutate: func(b *builder.PromotionBuilder) { b.WithUsageLimit(0) },
			order:  promotion.Order{Amount: 8000},
			at:     now,
			errIs:  errs.ErrUsageExhausted,
		},
		{
			name:   "below minimum",
			mutate: func(b *builder.PromotionBuilder) { b.WithMinOrder(10000) },
			order:  promotion.Order{Amount: 9999},
			at:     now,
			errIs:  errs.ErrBelowMinimum,
		},
		{
			name:   "minimum is inclusive",
			mutate: func(b *builder.PromotionBuilder) { b.WithMinOrder(10000) },
			order:  promotion.Order{Amount: 10000},
			at:     now,
			want:   1000,
		},
		{
			name:   "scoped to other items",
			mutate: func(b *builder.PromotionBuilder) { b.ItemIDs = []uuid.UUID{scopedItem} },
			order:  promotion.Order{Amount: 8000, ItemIDs: []uuid.UUID{uuid.New()}},
			at:     now,
			errIs:  errs.ErrNotApplicable,
		},
		{
			name:   "scoped item matches",
			mutate: func(b *builder.PromotionBuilder) { b.ItemIDs = []uuid.UUID{scopedItem} },
			order:  promotion.Order{Amount: 8000, ItemIDs: []uuid.UUID{uuid.New(), scopedItem}},
			at:     now,
			want:   800,
		},
		{
			name:   "scoped category matches",
			mutate: func(b *builder.PromotionBuilder) { b.CategoryIDs = []uuid.UUID{scopedCategory} },
			order:  promotion.Order{Amount: 8000, ItemIDs: []uuid.UUID{uuid.New()}, CategoryIDs: []uuid.UUID{scopedCategory}},
			at:     now,
			want:   800,
		},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			b := builder.NewPromotionBuilder()
			if tc.mutate != nil {
				b.With(tc.mutate)
			}
			p, err := b.BuildDomain()
			require.NoError(t, err)
			usedBefore := p.UsedCount()

			got, err := p.Validate(tc.order, tc.at)
			if tc.errIs != nil {
				assert.True(t, errs.Is(err, tc.errIs), "expected %v, got %v", tc.errIs, err)
				assert.Equal(t, money.Zero, got)
			} else {
				require.NoError(t, err)
				assert.Equal(t, tc.want, got)
			}
			assert.Equal(t, usedBefore, p.UsedCount())
		})
	}
}

func TestPromotionDefinition(t *testing.T) {
	now := builder.FixedNow

	t.Run("end before start is rejected", func(t *testing.T) {
		_, err := builder.NewPromotionBuilder().With(func(b *builder.PromotionBuilder) {
			b.EndsAt = b.StartsAt.Add(-time.Second)
		}).BuildDomain()
		assert.ErrorIs(t, err, promotion.ErrInvalidWindow)
	})

	t.Run("negative usage limit is rejected", func(t *testing.T) {
		_, err := builder.NewPromotionBuilder().WithUsageLimit(-1).BuildDomain()
		assert.ErrorIs(t, err, promotion.ErrInvalidUsageLimit)
	})

	t.Run("redefine keeps the usage count", func(t *testing.T) {
		b := builder.NewPromotionBuilder().WithUsageLimit(10)
		b.UsedCount = 4
		p, err := b.BuildDomain()
		require.NoError(t, err)

		def := b.WithFixed(500).WithUsageLimit(4).Definition()
		require.NoError(t, p.Redefine(def, now.Add(time.Hour)))

		assert.Equal(t, 4, p.UsedCount())
		assert.Equal(t, promotion.KindFixed, p.Discount().Kind())
		assert.True(t, p.IsExhausted())
		assert.Equal(t, now.Add(time.Hour), p.UpdatedAt())
	})

	t.Run("redefine cannot drop the limit below usage", func(t *testing.T) {
		b := builder.NewPromotionBuilder().WithUsageLimit(10)
		b.UsedCount = 4
		p, err := b.BuildDomain()
		require.NoError(t, err)

		err = p.Redefine(b.WithUsageLimit(3).Definition(), now)
		assert.ErrorIs(t, err, promotion.ErrLimitBelowUsage)
		require.NotNil(t, p.UsageLimit())
		assert.Equal(t, 10, *p.UsageLimit())
	})

	t.Run("deactivate", func(t *testing.T) {
		p, err := builder.NewPromotionBuilder().BuildDomain()
		require.NoError(t, err)

		p.Deactivate(now.Add(time.Minute))
		assert.False(t, p.Active())
		assert.Equal(t, now.Add(time.Minute), p.UpdatedAt())

		p.Deactivate(now.Add(time.Hour))
		assert.Equal(t, now.Add(time.Minute), p.UpdatedAt())
	})

	t.Run("scope drops duplicates", func(t *testing.T) {
		id := uuid.New()
		scope := promotion.NewScope([]uuid.UUID{id, id}, nil)
		assert.Equal(t, []uuid.UUID{id}, scope.ItemIDs())
		assert.False(t, scope.IsEmpty())
		assert.True(t, promotion.NewScope(nil, nil).IsEmpty())
	})
}
