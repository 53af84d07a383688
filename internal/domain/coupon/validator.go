package coupon

import (
	"fmt"
	"time"

	"github.com/shopspring/decimal"
)

// Reason identifies why a coupon was rejected. Reasons are stable codes
// surfaced directly to the user interface.
type Reason string

const (
	// ReasonInactive means the admin flag is off.
	ReasonInactive Reason = "INACTIVE"
	// ReasonNotStarted means now precedes the coupon's start date.
	ReasonNotStarted Reason = "NOT_STARTED"
	// ReasonExpired means now is past the coupon's end date.
	ReasonExpired Reason = "EXPIRED"
	// ReasonLimitReached means the usage count has reached the limit.
	ReasonLimitReached Reason = "LIMIT_REACHED"
	// ReasonBelowMinimum means the order total is below the coupon's
	// minimum order value.
	ReasonBelowMinimum Reason = "BELOW_MINIMUM"
)

// RejectionError is a user-correctable validation rejection. It is a value
// for display, not an infrastructure failure.
type RejectionError struct {
	Reason Reason
	// MinOrder carries the required minimum for ReasonBelowMinimum so the
	// message can include the amount.
	MinOrder decimal.Decimal
}

func (e *RejectionError) Error() string {
	switch e.Reason {
	case ReasonInactive:
		return "coupon is not active"
	case ReasonNotStarted:
		return "coupon is not valid yet"
	case ReasonExpired:
		return "coupon has expired"
	case ReasonLimitReached:
		return "coupon usage limit reached"
	case ReasonBelowMinimum:
		return fmt.Sprintf("order total is below the minimum of %s", e.MinOrder.StringFixed(2))
	default:
		return "coupon is not valid"
	}
}

// Validate decides whether the coupon can be applied to an order of the
// given total at now, with usedCount prior redemptions. Checks run in a
// fixed order and short-circuit on the first failure, because the first
// applicable reason is the one shown to the user:
//
//	inactive, not started, expired, limit reached, below minimum.
//
// Validate is pure and read-only; recording a redemption is a separate
// Ledger.Redeem call made only after the discount is committed.
func Validate(c Coupon, orderTotal decimal.Decimal, now time.Time, usedCount int) error {
	if !c.Active {
		return &RejectionError{Reason: ReasonInactive}
	}
	if now.Before(c.StartAt) {
		return &RejectionError{Reason: ReasonNotStarted}
	}
	if now.After(c.EndAt) {
		return &RejectionError{Reason: ReasonExpired}
	}
	if c.UsageLimit != nil && usedCount >= *c.UsageLimit {
		return &RejectionError{Reason: ReasonLimitReached}
	}
	if c.MinOrderValue != nil && orderTotal.LessThan(*c.MinOrderValue) {
		return &RejectionError{Reason: ReasonBelowMinimum, MinOrder: *c.MinOrderValue}
	}
	return nil
}
