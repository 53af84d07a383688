package coupon

import (
	"context"
	"time"

	"github.com/go-faster/errors"
	"github.com/shopspring/decimal"
)

// Applied describes a successfully applied coupon: the matched coupon and
// the discount amount computed for the order total.
type Applied struct {
	Coupon Coupon
	Amount decimal.Decimal
}

// Redeemer applies coupon codes to order totals. Preview is read-only;
// Redeem additionally appends to the usage ledger via the store's atomic
// conditional append.
type Redeemer struct {
	repo   Repository
	ledger Ledger
	now    func() time.Time
}

// NewRedeemer creates a Redeemer over the given repository and ledger.
func NewRedeemer(repo Repository, ledger Ledger) *Redeemer {
	return &Redeemer{repo: repo, ledger: ledger, now: time.Now}
}

// Preview looks up the code, validates it against the order total, and
// returns the discount that would apply. Nothing is recorded: a previewed
// coupon can still be rejected at redemption time.
func (r *Redeemer) Preview(ctx context.Context, code string, orderTotal decimal.Decimal) (*Applied, error) {
	c, usedCount, err := r.lookup(ctx, code)
	if err != nil {
		return nil, err
	}
	if err := Validate(*c, orderTotal, r.now(), usedCount); err != nil {
		return nil, err
	}
	return &Applied{Coupon: *c, Amount: c.Discount.Amount(orderTotal)}, nil
}

// Redeem validates the code and, on success, appends a ledger entry. The
// append is conditional at the store, so a concurrent redemption racing
// past validation still cannot push the count over the limit; the loser
// gets the limit-reached rejection.
func (r *Redeemer) Redeem(ctx context.Context, code string, orderTotal decimal.Decimal) (*Applied, error) {
	c, usedCount, err := r.lookup(ctx, code)
	if err != nil {
		return nil, err
	}
	if err := Validate(*c, orderTotal, r.now(), usedCount); err != nil {
		return nil, err
	}

	if err := r.ledger.Redeem(ctx, c.ID); err != nil {
		if errors.Is(err, ErrUsageLimitReached) {
			return nil, &RejectionError{Reason: ReasonLimitReached}
		}
		return nil, errors.Wrap(err, "record coupon usage")
	}

	return &Applied{Coupon: *c, Amount: c.Discount.Amount(orderTotal)}, nil
}

func (r *Redeemer) lookup(ctx context.Context, code string) (*Coupon, int, error) {
	c, err := r.repo.FindByCode(ctx, NormalizeCode(code))
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			return nil, 0, ErrNotFound
		}
		return nil, 0, errors.Wrap(err, "lookup coupon")
	}

	usedCount, err := r.ledger.CountUsage(ctx, c.ID)
	if err != nil {
		return nil, 0, errors.Wrap(err, "count coupon usage")
	}
	return c, usedCount, nil
}
