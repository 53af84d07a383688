package handler

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/soukly/storefront/internal/domain/discount"
	"github.com/soukly/storefront/internal/domain/offer"
)

type offerRequest struct {
	TitleEN       string          `json:"title_en"`
	TitleAR       string          `json:"title_ar"`
	DescriptionEN string          `json:"description_en"`
	DescriptionAR string          `json:"description_ar"`
	DiscountType  string          `json:"discount_type"`
	DiscountValue decimal.Decimal `json:"discount_value"`
	StartAt       time.Time       `json:"start_date"`
	EndAt         time.Time       `json:"end_date"`
	Active        bool            `json:"is_active"`
	AppliesTo     string          `json:"applies_to"`
	CategoryID    string          `json:"category_id,omitempty"`
	ProductID     string          `json:"product_id,omitempty"`
}

type offerResponse struct {
	ID            string          `json:"id"`
	TitleEN       string          `json:"title_en"`
	TitleAR       string          `json:"title_ar"`
	DescriptionEN string          `json:"description_en"`
	DescriptionAR string          `json:"description_ar"`
	DiscountType  string          `json:"discount_type"`
	DiscountValue decimal.Decimal `json:"discount_value"`
	StartAt       time.Time       `json:"start_date"`
	EndAt         time.Time       `json:"end_date"`
	Active        bool            `json:"is_active"`
	AppliesTo     string          `json:"applies_to"`
	CategoryID    string          `json:"category_id,omitempty"`
	ProductID     string          `json:"product_id,omitempty"`
}

func toOfferResponse(o offer.Offer) offerResponse {
	return offerResponse{
		ID:            o.ID,
		TitleEN:       o.TitleEN,
		TitleAR:       o.TitleAR,
		DescriptionEN: o.DescriptionEN,
		DescriptionAR: o.DescriptionAR,
		DiscountType:  string(o.Discount.Type),
		DiscountValue: o.Discount.Value,
		StartAt:       o.StartAt,
		EndAt:         o.EndAt,
		Active:        o.Active,
		AppliesTo:     string(o.Scope),
		CategoryID:    o.CategoryID,
		ProductID:     o.ProductID,
	}
}

func (req offerRequest) toOffer(id string) offer.Offer {
	return offer.Offer{
		ID:            id,
		TitleEN:       req.TitleEN,
		TitleAR:       req.TitleAR,
		DescriptionEN: req.DescriptionEN,
		DescriptionAR: req.DescriptionAR,
		Discount: discount.Spec{
			Type:  discount.Type(req.DiscountType),
			Value: req.DiscountValue,
		},
		StartAt:    req.StartAt,
		EndAt:      req.EndAt,
		Active:     req.Active,
		Scope:      offer.Scope(req.AppliesTo),
		CategoryID: req.CategoryID,
		ProductID:  req.ProductID,
	}
}

func (h *Handler) listOffers(w http.ResponseWriter, r *http.Request) {
	offers, err := h.offers.List(r.Context())
	if err != nil {
		respondDomainError(w, r, err)
		return
	}

	out := make([]offerResponse, len(offers))
	for i, o := range offers {
		out[i] = toOfferResponse(o)
	}
	respond(w, http.StatusOK, out)
}

func (h *Handler) getOffer(w http.ResponseWriter, r *http.Request) {
	o, err := h.offers.GetByID(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		respondDomainError(w, r, err)
		return
	}
	respond(w, http.StatusOK, toOfferResponse(*o))
}

func (h *Handler) createOffer(w http.ResponseWriter, r *http.Request) {
	var req offerRequest
	if !decodeBody(w, r, &req) {
		return
	}

	o := req.toOffer(uuid.New().String())
	if err := o.Validate(); err != nil {
		respondValidationError(w, err)
		return
	}
	if err := h.offers.Create(r.Context(), &o); err != nil {
		respondDomainError(w, r, err)
		return
	}
	respond(w, http.StatusCreated, toOfferResponse(o))
}

func (h *Handler) updateOffer(w http.ResponseWriter, r *http.Request) {
	var req offerRequest
	if !decodeBody(w, r, &req) {
		return
	}

	o := req.toOffer(chi.URLParam(r, "id"))
	if err := o.Validate(); err != nil {
		respondValidationError(w, err)
		return
	}
	if err := h.offers.Update(r.Context(), &o); err != nil {
		respondDomainError(w, r, err)
		return
	}
	respond(w, http.StatusOK, toOfferResponse(o))
}

func (h *Handler) deleteOffer(w http.ResponseWriter, r *http.Request) {
	if err := h.offers.Delete(r.Context(), chi.URLParam(r, "id")); err != nil {
		respondDomainError(w, r, err)
		return
	}
	respond(w, http.StatusNoContent, nil)
}
