package offer

import (
	"time"

	"github.com/shopspring/decimal"
)

// Select picks the single offer that applies to the given product at now,
// or reports ok=false when none matches. The choice is a documented total
// order so it never depends on the enumeration order of the input slice:
//
//  1. narrower scope wins (product > category > all),
//  2. then the offer that started most recently,
//  3. then the smallest ID.
//
// Select is pure: it reads the provided snapshot and has no side effects.
func Select(productID, categoryID string, offers []Offer, now time.Time) (Offer, bool) {
	var (
		best  Offer
		found bool
	)
	for _, o := range offers {
		if !o.ActiveAt(now) || !o.Matches(productID, categoryID) {
			continue
		}
		if !found || beats(o, best) {
			best = o
			found = true
		}
	}
	return best, found
}

// beats reports whether a should be preferred over b under the Select order.
func beats(a, b Offer) bool {
	sa, sb := specificity(a.Scope), specificity(b.Scope)
	if sa != sb {
		return sa > sb
	}
	if !a.StartAt.Equal(b.StartAt) {
		return a.StartAt.After(b.StartAt)
	}
	return a.ID < b.ID
}

func specificity(s Scope) int {
	switch s {
	case ScopeProduct:
		return 2
	case ScopeCategory:
		return 1
	default:
		return 0
	}
}

// FinalPrice resolves the applicable offer for a product and returns the
// discounted price alongside the applied offer, if any. The price is never
// negative; callers round for display only.
func FinalPrice(productID, categoryID string, price decimal.Decimal, offers []Offer, now time.Time) (decimal.Decimal, *Offer) {
	o, ok := Select(productID, categoryID, offers, now)
	if !ok {
		return price, nil
	}
	return o.Discount.Apply(price), &o
}
