package handler

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/shopspring/decimal"

	"github.com/soukly/storefront/internal/domain/catalog"
	"github.com/soukly/storefront/internal/domain/order"
	"github.com/soukly/storefront/internal/shipping"
)

type pricedProductResponse struct {
	productResponse
	OriginalPrice decimal.Decimal `json:"original_price"`
	FinalPrice    decimal.Decimal `json:"final_price"`
	AppliedOffer  *offerResponse  `json:"applied_offer,omitempty"`
}

func toPricedProductResponse(p catalog.PricedProduct) pricedProductResponse {
	resp := pricedProductResponse{
		productResponse: toProductResponse(p.Product),
		OriginalPrice:   p.OriginalPrice,
		FinalPrice:      p.FinalPrice,
	}
	if p.AppliedOffer != nil {
		applied := toOfferResponse(*p.AppliedOffer)
		resp.AppliedOffer = &applied
	}
	return resp
}

func (h *Handler) listPricedProducts(w http.ResponseWriter, r *http.Request) {
	priced, err := h.pricer.ListPriced(r.Context())
	if err != nil {
		respondDomainError(w, r, err)
		return
	}

	out := make([]pricedProductResponse, len(priced))
	for i, p := range priced {
		out[i] = toPricedProductResponse(p)
	}
	respond(w, http.StatusOK, out)
}

func (h *Handler) getPricedProduct(w http.ResponseWriter, r *http.Request) {
	priced, err := h.pricer.PriceProduct(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		respondDomainError(w, r, err)
		return
	}
	respond(w, http.StatusOK, toPricedProductResponse(*priced))
}

type governorateResponse struct {
	Key    string          `json:"key"`
	NameEN string          `json:"name_en"`
	NameAR string          `json:"name_ar"`
	Fee    decimal.Decimal `json:"fee"`
}

func (h *Handler) listGovernorates(w http.ResponseWriter, r *http.Request) {
	govs := shipping.List()
	out := make([]governorateResponse, len(govs))
	for i, g := range govs {
		out[i] = governorateResponse{Key: g.Key, NameEN: g.NameEN, NameAR: g.NameAR, Fee: g.Fee}
	}
	respond(w, http.StatusOK, out)
}

type couponPreviewRequest struct {
	Code       string          `json:"code"`
	OrderTotal decimal.Decimal `json:"order_total"`
}

type couponPreviewResponse struct {
	Code     string          `json:"code"`
	Discount decimal.Decimal `json:"discount"`
	Total    decimal.Decimal `json:"total"`
}

// previewCoupon validates a code against an order total without recording a
// redemption, so the storefront can show the discount before checkout.
func (h *Handler) previewCoupon(w http.ResponseWriter, r *http.Request) {
	var req couponPreviewRequest
	if !decodeBody(w, r, &req) {
		return
	}

	applied, err := h.redeemer.Preview(r.Context(), req.Code, req.OrderTotal)
	if err != nil {
		respondDomainError(w, r, err)
		return
	}

	total := req.OrderTotal.Sub(applied.Amount)
	if total.IsNegative() {
		total = decimal.Zero
	}
	respond(w, http.StatusOK, couponPreviewResponse{
		Code:     applied.Coupon.Code,
		Discount: applied.Amount.Round(2),
		Total:    total.Round(2),
	})
}

type placeOrderRequest struct {
	Items []struct {
		ProductID string `json:"product_id"`
		Quantity  int    `json:"quantity"`
	} `json:"items"`
	CouponCode  string `json:"coupon_code,omitempty"`
	Governorate string `json:"governorate,omitempty"`
}

func (h *Handler) placeOrder(w http.ResponseWriter, r *http.Request) {
	var req placeOrderRequest
	if !decodeBody(w, r, &req) {
		return
	}

	items := make([]order.LineRequest, len(req.Items))
	for i, item := range req.Items {
		items[i] = order.LineRequest{ProductID: item.ProductID, Quantity: item.Quantity}
	}

	o, err := h.orders.Place(r.Context(), order.PlaceRequest{
		Items:       items,
		CouponCode:  req.CouponCode,
		Governorate: req.Governorate,
	})
	if err != nil {
		respondDomainError(w, r, err)
		return
	}
	respond(w, http.StatusCreated, toOrderResponse(*o))
}
