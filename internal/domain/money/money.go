package money

import (
	"errors"

	"github.com/shopspring/decimal"
)

var ErrNegativeAmount = errors.New("amount cannot be negative")

// Amount is a non-negative sum in whole currency units. The storefront
// trades in a single currency without minor units.
type Amount int64

const Zero Amount = 0

func New(v int64) (Amount, error) {
	if v < 0 {
		return Zero, ErrNegativeAmount
	}
	return Amount(v), nil
}

func (a Amount) Int64() int64 {
	return int64(a)
}

func (a Amount) Add(other Amount) Amount {
	return a + other
}

// SubFloor never goes below zero.
func (a Amount) SubFloor(other Amount) Amount {
	if other >= a {
		return Zero
	}
	return a - other
}

func (a Amount) Times(quantity int) Amount {
	return a * Amount(quantity)
}

func (a Amount) IsZero() bool {
	return a == 0
}

func (a Amount) Decimal() decimal.Decimal {
	return decimal.NewFromInt(int64(a))
}

// FromDecimal rounds half away from zero to whole units; negatives clamp to zero.
func FromDecimal(d decimal.Decimal) Amount {
	rounded := d.Round(0)
	if rounded.IsNegative() {
		return Zero
	}
	return Amount(rounded.IntPart())
}

func Min(a, b Amount) Amount {
	if a < b {
		return a
	}
	return b
}

func Sum(amounts ...Amount) Amount {
	var total Amount
	for _, a := range amounts {
		total += a
	}
	return total
}
