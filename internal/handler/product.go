package handler

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/soukly/storefront/internal/domain/catalog"
)

type productRequest struct {
	NameEN        string          `json:"name_en"`
	NameAR        string          `json:"name_ar"`
	DescriptionEN string          `json:"description_en"`
	DescriptionAR string          `json:"description_ar"`
	Price         decimal.Decimal `json:"price"`
	Quantity      int             `json:"quantity"`
	Active        bool            `json:"is_active"`
	CategoryID    string          `json:"category_id"`
	TypeID        string          `json:"type_id,omitempty"`
}

type productResponse struct {
	ID            string          `json:"id"`
	NameEN        string          `json:"name_en"`
	NameAR        string          `json:"name_ar"`
	DescriptionEN string          `json:"description_en"`
	DescriptionAR string          `json:"description_ar"`
	Price         decimal.Decimal `json:"price"`
	Quantity      int             `json:"quantity"`
	Active        bool            `json:"is_active"`
	CategoryID    string          `json:"category_id"`
	TypeID        string          `json:"type_id,omitempty"`
	CreatedAt     time.Time       `json:"created_at"`
}

func toProductResponse(p catalog.Product) productResponse {
	return productResponse{
		ID:            p.ID,
		NameEN:        p.NameEN,
		NameAR:        p.NameAR,
		DescriptionEN: p.DescriptionEN,
		DescriptionAR: p.DescriptionAR,
		Price:         p.Price,
		Quantity:      p.Quantity,
		Active:        p.Active,
		CategoryID:    p.CategoryID,
		TypeID:        p.TypeID,
		CreatedAt:     p.CreatedAt,
	}
}

func (req productRequest) toProduct(id string) catalog.Product {
	return catalog.Product{
		ID:            id,
		NameEN:        req.NameEN,
		NameAR:        req.NameAR,
		DescriptionEN: req.DescriptionEN,
		DescriptionAR: req.DescriptionAR,
		Price:         req.Price,
		Quantity:      req.Quantity,
		Active:        req.Active,
		CategoryID:    req.CategoryID,
		TypeID:        req.TypeID,
	}
}

func (h *Handler) listProducts(w http.ResponseWriter, r *http.Request) {
	products, err := h.products.List(r.Context())
	if err != nil {
		respondDomainError(w, r, err)
		return
	}

	out := make([]productResponse, len(products))
	for i, p := range products {
		out[i] = toProductResponse(p)
	}
	respond(w, http.StatusOK, out)
}

func (h *Handler) getProduct(w http.ResponseWriter, r *http.Request) {
	p, err := h.products.GetByID(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		respondDomainError(w, r, err)
		return
	}
	respond(w, http.StatusOK, toProductResponse(*p))
}

func (h *Handler) createProduct(w http.ResponseWriter, r *http.Request) {
	var req productRequest
	if !decodeBody(w, r, &req) {
		return
	}

	p := req.toProduct(uuid.New().String())
	if err := p.Validate(); err != nil {
		respondValidationError(w, err)
		return
	}
	if err := h.products.Create(r.Context(), &p); err != nil {
		respondDomainError(w, r, err)
		return
	}
	respond(w, http.StatusCreated, toProductResponse(p))
}

func (h *Handler) updateProduct(w http.ResponseWriter, r *http.Request) {
	var req productRequest
	if !decodeBody(w, r, &req) {
		return
	}

	p := req.toProduct(chi.URLParam(r, "id"))
	if err := p.Validate(); err != nil {
		respondValidationError(w, err)
		return
	}
	if err := h.products.Update(r.Context(), &p); err != nil {
		respondDomainError(w, r, err)
		return
	}
	respond(w, http.StatusOK, toProductResponse(p))
}

func (h *Handler) deleteProduct(w http.ResponseWriter, r *http.Request) {
	if err := h.products.Delete(r.Context(), chi.URLParam(r, "id")); err != nil {
		respondDomainError(w, r, err)
		return
	}
	respond(w, http.StatusNoContent, nil)
}
