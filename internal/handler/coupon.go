package handler

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/soukly/storefront/internal/domain/coupon"
	"github.com/soukly/storefront/internal/domain/discount"
)

type couponRequest struct {
	Code          string           `json:"code"`
	DiscountType  string           `json:"discount_type"`
	DiscountValue decimal.Decimal  `json:"discount_value"`
	UsageLimit    *int             `json:"usage_limit,omitempty"`
	MinOrderValue *decimal.Decimal `json:"min_order_value,omitempty"`
	StartAt       time.Time        `json:"start_date"`
	EndAt         time.Time        `json:"end_date"`
	Active        bool             `json:"is_active"`
}

type couponResponse struct {
	ID            string           `json:"id"`
	Code          string           `json:"code"`
	DiscountType  string           `json:"discount_type"`
	DiscountValue decimal.Decimal  `json:"discount_value"`
	UsageLimit    *int             `json:"usage_limit,omitempty"`
	MinOrderValue *decimal.Decimal `json:"min_order_value,omitempty"`
	StartAt       time.Time        `json:"start_date"`
	EndAt         time.Time        `json:"end_date"`
	Active        bool             `json:"is_active"`
	CreatedAt     time.Time        `json:"created_at"`
}

func toCouponResponse(c coupon.Coupon) couponResponse {
	return couponResponse{
		ID:            c.ID,
		Code:          c.Code,
		DiscountType:  string(c.Discount.Type),
		DiscountValue: c.Discount.Value,
		UsageLimit:    c.UsageLimit,
		MinOrderValue: c.MinOrderValue,
		StartAt:       c.StartAt,
		EndAt:         c.EndAt,
		Active:        c.Active,
		CreatedAt:     c.CreatedAt,
	}
}

func (req couponRequest) toCoupon(id string) coupon.Coupon {
	return coupon.Coupon{
		ID:   id,
		Code: coupon.NormalizeCode(req.Code),
		Discount: discount.Spec{
			Type:  discount.Type(req.DiscountType),
			Value: req.DiscountValue,
		},
		UsageLimit:    req.UsageLimit,
		MinOrderValue: req.MinOrderValue,
		StartAt:       req.StartAt,
		EndAt:         req.EndAt,
		Active:        req.Active,
	}
}

func (h *Handler) listCoupons(w http.ResponseWriter, r *http.Request) {
	coupons, err := h.coupons.List(r.Context())
	if err != nil {
		respondDomainError(w, r, err)
		return
	}

	out := make([]couponResponse, len(coupons))
	for i, c := range coupons {
		out[i] = toCouponResponse(c)
	}
	respond(w, http.StatusOK, out)
}

func (h *Handler) getCoupon(w http.ResponseWriter, r *http.Request) {
	c, err := h.coupons.GetByID(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		respondDomainError(w, r, err)
		return
	}
	respond(w, http.StatusOK, toCouponResponse(*c))
}

func (h *Handler) createCoupon(w http.ResponseWriter, r *http.Request) {
	var req couponRequest
	if !decodeBody(w, r, &req) {
		return
	}

	c := req.toCoupon(uuid.New().String())
	if err := c.Validate(); err != nil {
		respondValidationError(w, err)
		return
	}
	if err := h.coupons.Create(r.Context(), &c); err != nil {
		respondDomainError(w, r, err)
		return
	}
	respond(w, http.StatusCreated, toCouponResponse(c))
}

func (h *Handler) updateCoupon(w http.ResponseWriter, r *http.Request) {
	var req couponRequest
	if !decodeBody(w, r, &req) {
		return
	}

	c := req.toCoupon(chi.URLParam(r, "id"))
	if err := c.Validate(); err != nil {
		respondValidationError(w, err)
		return
	}
	if err := h.coupons.Update(r.Context(), &c); err != nil {
		respondDomainError(w, r, err)
		return
	}
	respond(w, http.StatusOK, toCouponResponse(c))
}

func (h *Handler) deleteCoupon(w http.ResponseWriter, r *http.Request) {
	if err := h.coupons.Delete(r.Context(), chi.URLParam(r, "id")); err != nil {
		respondDomainError(w, r, err)
		return
	}
	respond(w, http.StatusNoContent, nil)
}
