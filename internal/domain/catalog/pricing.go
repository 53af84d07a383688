package catalog

import (
	"context"
	"time"

	"github.com/go-faster/errors"
	"github.com/shopspring/decimal"

	"github.com/soukly/storefront/internal/domain/offer"
)

// PricedProduct is a product with its resolved promotional price attached.
type PricedProduct struct {
	Product
	// OriginalPrice is the undiscounted price.
	OriginalPrice decimal.Decimal
	// FinalPrice is the price after the applied offer, never negative.
	FinalPrice decimal.Decimal
	// AppliedOffer is the offer that produced FinalPrice, nil when none.
	AppliedOffer *offer.Offer
}

// Pricer lists products with promotional pricing resolved against a single
// snapshot of the active offers. It owns no mutable collections: every call
// fetches fresh snapshots and works on them.
type Pricer struct {
	products ProductRepository
	offers   offer.Repository
	now      func() time.Time
}

// NewPricer creates a Pricer over the given repositories.
func NewPricer(products ProductRepository, offers offer.Repository) *Pricer {
	return &Pricer{products: products, offers: offers, now: time.Now}
}

// ListPriced returns all products with final prices resolved at one instant,
// so a listing is internally consistent even when an offer window opens or
// closes mid-request.
func (p *Pricer) ListPriced(ctx context.Context) ([]PricedProduct, error) {
	products, err := p.products.List(ctx)
	if err != nil {
		return nil, errors.Wrap(err, "list products")
	}

	active, err := p.offers.ListActive(ctx)
	if err != nil {
		return nil, errors.Wrap(err, "list active offers")
	}

	now := p.now()
	priced := make([]PricedProduct, len(products))
	for i, prod := range products {
		final, applied := offer.FinalPrice(prod.ID, prod.CategoryID, prod.Price, active, now)
		priced[i] = PricedProduct{
			Product:       prod,
			OriginalPrice: prod.Price,
			FinalPrice:    final,
			AppliedOffer:  applied,
		}
	}
	return priced, nil
}

// PriceProduct resolves the promotional price for a single product.
func (p *Pricer) PriceProduct(ctx context.Context, id string) (*PricedProduct, error) {
	prod, err := p.products.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	active, err := p.offers.ListActive(ctx)
	if err != nil {
		return nil, errors.Wrap(err, "list active offers")
	}

	final, applied := offer.FinalPrice(prod.ID, prod.CategoryID, prod.Price, active, p.now())
	return &PricedProduct{
		Product:       *prod,
		OriginalPrice: prod.Price,
		FinalPrice:    final,
		AppliedOffer:  applied,
	}, nil
}
