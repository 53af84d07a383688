package order

import (
	"context"
	"time"

	"github.com/go-faster/errors"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/soukly/storefront/internal/domain/catalog"
	"github.com/soukly/storefront/internal/domain/coupon"
	"github.com/soukly/storefront/internal/domain/offer"
	"github.com/soukly/storefront/internal/shipping"
)

// LineRequest is one requested order line.
type LineRequest struct {
	ProductID string
	Quantity  int
}

// PlaceRequest holds the input for placing an order.
type PlaceRequest struct {
	Items       []LineRequest
	CouponCode  string
	Governorate string
}

// Service prices and persists orders. Unit prices come from the product's
// active offer at placement time; the coupon then discounts the subtotal.
type Service struct {
	products catalog.ProductRepository
	offers   offer.Repository
	redeemer *coupon.Redeemer
	orders   Repository
	now      func() time.Time
}

// NewService creates an order Service with the required domain dependencies.
func NewService(
	products catalog.ProductRepository,
	offers offer.Repository,
	redeemer *coupon.Redeemer,
	orders Repository,
) *Service {
	return &Service{
		products: products,
		offers:   offers,
		redeemer: redeemer,
		orders:   orders,
		now:      time.Now,
	}
}

// Place validates items, prices each line with its offer-adjusted unit
// price, applies an optional coupon (validated and recorded atomically, so
// a rejected attempt is never counted), adds the governorate shipping fee,
// and persists the order. Amounts are rounded to 2 decimal places only at
// this persistence boundary.
func (s *Service) Place(ctx context.Context, req PlaceRequest) (*Order, error) {
	if len(req.Items) == 0 {
		return nil, ErrEmptyItems
	}

	ids := make([]string, len(req.Items))
	for i, item := range req.Items {
		if item.Quantity <= 0 {
			return nil, &InvalidQuantityError{ProductID: item.ProductID}
		}
		ids[i] = item.ProductID
	}

	// Batch fetch all products in a single query.
	fetched, err := s.products.GetByIDs(ctx, ids)
	if err != nil {
		return nil, errors.Wrap(err, "get products")
	}
	productMap := make(map[string]catalog.Product, len(fetched))
	for _, p := range fetched {
		productMap[p.ID] = p
	}

	// One offers snapshot prices every line at the same instant.
	activeOffers, err := s.offers.ListActive(ctx)
	if err != nil {
		return nil, errors.Wrap(err, "list active offers")
	}
	now := s.now()

	lines := make([]Item, len(req.Items))
	subtotal := decimal.Zero
	for i, item := range req.Items {
		p, ok := productMap[item.ProductID]
		if !ok {
			return nil, &ProductNotFoundError{ProductID: item.ProductID}
		}

		unit, _ := offer.FinalPrice(p.ID, p.CategoryID, p.Price, activeOffers, now)
		lines[i] = Item{
			ProductID: item.ProductID,
			Quantity:  item.Quantity,
			UnitPrice: unit,
		}
		subtotal = subtotal.Add(unit.Mul(decimal.NewFromInt(int64(item.Quantity))))
	}

	// Coupon discount: redeem only when a code is provided. The redeem is
	// the committing step, so it runs after all other inputs are validated.
	discountAmount := decimal.Zero
	couponCode := ""
	if req.CouponCode != "" {
		applied, err := s.redeemer.Redeem(ctx, req.CouponCode, subtotal)
		if err != nil {
			return nil, err
		}
		discountAmount = applied.Amount
		couponCode = applied.Coupon.Code
	}

	shippingFee := decimal.Zero
	if req.Governorate != "" {
		shippingFee, err = shipping.Fee(req.Governorate)
		if err != nil {
			return nil, err
		}
	}

	discounted := subtotal.Sub(discountAmount)
	if discounted.IsNegative() {
		discounted = decimal.Zero
	}
	total := discounted.Add(shippingFee)

	o := &Order{
		ID:          uuid.New().String(),
		Items:       lines,
		Subtotal:    subtotal.Round(2),
		Discount:    discountAmount.Round(2),
		ShippingFee: shippingFee.Round(2),
		Total:       total.Round(2),
		CouponCode:  couponCode,
		Governorate: req.Governorate,
		Status:      StatusPending,
		CreatedAt:   now,
	}
	if err := s.orders.Create(ctx, o); err != nil {
		return nil, errors.Wrap(err, "create order")
	}
	return o, nil
}

// UpdateStatus moves an order to a new fulfilment status.
func (s *Service) UpdateStatus(ctx context.Context, id string, status Status) error {
	if !status.Valid() {
		return &InvalidStatusError{Status: status}
	}
	if err := s.orders.UpdateStatus(ctx, id, status); err != nil {
		return errors.Wrap(err, "update order status")
	}
	return nil
}

// List returns all orders, newest first per the repository's ordering.
func (s *Service) List(ctx context.Context) ([]Order, error) {
	return s.orders.List(ctx)
}

// Get returns one order by ID.
func (s *Service) Get(ctx context.Context, id string) (*Order, error) {
	return s.orders.GetByID(ctx, id)
}
