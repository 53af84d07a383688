// Package coupon implements redeemable discount codes: lookup, ordered
// validation with user-displayable rejection reasons, and the append-only
// usage ledger that enforces redemption limits.
package coupon

import (
	"context"
	"strings"
	"time"

	"github.com/go-faster/errors"
	"github.com/shopspring/decimal"

	"github.com/soukly/storefront/internal/domain/discount"
)

var (
	// ErrNotFound is returned when no coupon exists for a code. It is a
	// lookup failure, distinct from the validation rejections below.
	ErrNotFound = errors.New("coupon not found")
	// ErrUsageLimitReached is returned by Ledger.Redeem when appending a
	// usage entry would exceed the coupon's limit.
	ErrUsageLimitReached = errors.New("coupon usage limit reached")
	// ErrInvalidWindow is returned when start date is not before end date.
	ErrInvalidWindow = errors.New("coupon start date must precede end date")
	// ErrEmptyCode is returned when creating a coupon with a blank code.
	ErrEmptyCode = errors.New("coupon code must not be empty")
)

// Coupon is a redeemable discount code with independent usage-limit and
// minimum-order constraints.
type Coupon struct {
	ID       string
	Code     string // stored upper-cased; matching is case-insensitive
	Discount discount.Spec
	// UsageLimit caps total redemptions; nil means unlimited.
	UsageLimit *int
	// MinOrderValue is the inclusive order total floor; nil means none.
	MinOrderValue *decimal.Decimal
	StartAt       time.Time
	EndAt         time.Time
	Active        bool
	CreatedAt     time.Time
}

// NormalizeCode upper-cases and trims a user-entered code so comparisons
// and storage agree on one canonical form.
func NormalizeCode(code string) string {
	return strings.ToUpper(strings.TrimSpace(code))
}

// Validate checks the coupon definition at the admin write boundary.
func (c Coupon) Validate() error {
	if NormalizeCode(c.Code) == "" {
		return ErrEmptyCode
	}
	if !c.StartAt.Before(c.EndAt) {
		return ErrInvalidWindow
	}
	if c.UsageLimit != nil && *c.UsageLimit < 0 {
		return errors.New("usage limit must not be negative")
	}
	if c.MinOrderValue != nil && c.MinOrderValue.IsNegative() {
		return errors.New("minimum order value must not be negative")
	}
	return c.Discount.Validate()
}

// Repository provides persistence for coupon definitions.
type Repository interface {
	// FindByCode matches case-insensitively and returns ErrNotFound when no
	// coupon has the code.
	FindByCode(ctx context.Context, code string) (*Coupon, error)
	List(ctx context.Context) ([]Coupon, error)
	GetByID(ctx context.Context, id string) (*Coupon, error)
	Create(ctx context.Context, c *Coupon) error
	Update(ctx context.Context, c *Coupon) error
	Delete(ctx context.Context, id string) error
}

// Ledger is the append-only record of redemptions. Entries are never
// updated or deleted by the application; the used count of a coupon is
// always derived by counting its entries.
type Ledger interface {
	// CountUsage returns the number of ledger entries for the coupon.
	CountUsage(ctx context.Context, couponID string) (int, error)
	// Redeem appends one usage entry if and only if the coupon's limit has
	// not been reached, as a single atomic operation against the store.
	// It returns ErrUsageLimitReached when the append would exceed the
	// limit. The check and the append must not be separable: two concurrent
	// redemptions of a coupon with one remaining use must not both succeed.
	Redeem(ctx context.Context, couponID string) error
}
