// Package discount implements the discount rule shared by promotional
// offers and coupons: a percentage or fixed amount applied to a base price,
// with the result clamped at zero.
package discount

import (
	"github.com/go-faster/errors"
	"github.com/shopspring/decimal"
)

// Type enumerates the supported discount strategies.
type Type string

const (
	// Percentage reduces the base price by value percent.
	Percentage Type = "percentage"
	// Fixed reduces the base price by a fixed monetary amount.
	Fixed Type = "fixed"
)

var (
	// ErrUnknownType is returned when a discount type is not recognised.
	ErrUnknownType = errors.New("unknown discount type")
	// ErrValueOutOfRange is returned by Validate for a percentage outside
	// [0,100] or a negative fixed amount.
	ErrValueOutOfRange = errors.New("discount value out of range")
)

var hundred = decimal.NewFromInt(100)

// Spec describes a discount to apply to a base price.
type Spec struct {
	Type  Type
	Value decimal.Decimal
}

// Validate checks the value range for the spec's type: percentage must be in
// [0,100], fixed must be non-negative. Callers validate specs at the write
// boundary; Apply still clamps regardless.
func (s Spec) Validate() error {
	switch s.Type {
	case Percentage:
		if s.Value.IsNegative() || s.Value.GreaterThan(hundred) {
			return errors.Wrapf(ErrValueOutOfRange, "percentage %s", s.Value)
		}
	case Fixed:
		if s.Value.IsNegative() {
			return errors.Wrapf(ErrValueOutOfRange, "fixed %s", s.Value)
		}
	default:
		return errors.Wrapf(ErrUnknownType, "%q", s.Type)
	}
	return nil
}

// Apply returns the final price after applying the discount to base.
// The result is never negative. Apply is pure: identical inputs always
// produce identical output, and no rounding happens here — round for
// display or persistence at the boundary instead.
func (s Spec) Apply(base decimal.Decimal) decimal.Decimal {
	return floorAtZero(base.Sub(s.Amount(base)))
}

// Amount returns the discount amount for the given base price. For fixed
// discounts the amount is capped at base so a discount can never exceed
// what is being discounted.
func (s Spec) Amount(base decimal.Decimal) decimal.Decimal {
	switch s.Type {
	case Percentage:
		return floorAtZero(base.Mul(s.Value).Div(hundred))
	case Fixed:
		return floorAtZero(decimal.Min(s.Value, base))
	default:
		return decimal.Zero
	}
}

// floorAtZero clamps negative values to zero.
func floorAtZero(d decimal.Decimal) decimal.Decimal {
	if d.IsNegative() {
		return decimal.Zero
	}
	return d
}
