// Package offer implements promotional offers: admin-managed discount rules
// scoped to the whole catalog, a single category, or a single product, and
// the deterministic selection of the one offer that applies to a product at
// a given instant.
package offer

import (
	"context"
	"time"

	"github.com/go-faster/errors"

	"github.com/soukly/storefront/internal/domain/discount"
)

// Scope enumerates what an offer applies to.
type Scope string

const (
	// ScopeAll applies the offer to every product.
	ScopeAll Scope = "all"
	// ScopeCategory applies the offer to all products in one category.
	ScopeCategory Scope = "category"
	// ScopeProduct applies the offer to exactly one product.
	ScopeProduct Scope = "product"
)

var (
	// ErrNotFound is returned when a requested offer does not exist.
	ErrNotFound = errors.New("offer not found")
	// ErrInvalidScope is returned when an offer's scope and target IDs
	// disagree: category offers need a category ID, product offers a product
	// ID, catalog-wide offers neither.
	ErrInvalidScope = errors.New("offer scope and target mismatch")
	// ErrInvalidWindow is returned when start date is not before end date.
	ErrInvalidWindow = errors.New("offer start date must precede end date")
)

// Offer is a promotional discount rule. Offers are created and edited by
// admins and read-only to the pricing engine.
type Offer struct {
	ID            string
	TitleEN       string
	TitleAR       string
	DescriptionEN string
	DescriptionAR string
	Discount      discount.Spec
	StartAt       time.Time
	EndAt         time.Time
	Active        bool
	Scope         Scope
	CategoryID    string
	ProductID     string
}

// ActiveAt reports whether the offer is temporally active at now: the admin
// flag is on and now falls inside [StartAt, EndAt], boundaries inclusive.
func (o Offer) ActiveAt(now time.Time) bool {
	return o.Active && !now.Before(o.StartAt) && !now.After(o.EndAt)
}

// Matches reports whether the offer targets the given product.
func (o Offer) Matches(productID, categoryID string) bool {
	switch o.Scope {
	case ScopeAll:
		return true
	case ScopeCategory:
		return o.CategoryID == categoryID
	case ScopeProduct:
		return o.ProductID == productID
	default:
		return false
	}
}

// Validate checks scope/target consistency, the date window, and the
// discount spec. Used at the admin write boundary.
func (o Offer) Validate() error {
	switch o.Scope {
	case ScopeAll:
		if o.CategoryID != "" || o.ProductID != "" {
			return ErrInvalidScope
		}
	case ScopeCategory:
		if o.CategoryID == "" || o.ProductID != "" {
			return ErrInvalidScope
		}
	case ScopeProduct:
		if o.ProductID == "" || o.CategoryID != "" {
			return ErrInvalidScope
		}
	default:
		return ErrInvalidScope
	}
	if !o.StartAt.Before(o.EndAt) {
		return ErrInvalidWindow
	}
	return o.Discount.Validate()
}

// Repository provides persistence for offers.
type Repository interface {
	List(ctx context.Context) ([]Offer, error)
	ListActive(ctx context.Context) ([]Offer, error)
	GetByID(ctx context.Context, id string) (*Offer, error)
	Create(ctx context.Context, o *Offer) error
	Update(ctx context.Context, o *Offer) error
	Delete(ctx context.Context, id string) error
}
