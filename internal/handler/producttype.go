package handler

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/soukly/storefront/internal/domain/catalog"
)

type productTypeResponse struct {
	ID        string    `json:"id"`
	NameEN    string    `json:"name_en"`
	NameAR    string    `json:"name_ar"`
	CreatedAt time.Time `json:"created_at"`
}

func toProductTypeResponse(t catalog.ProductType) productTypeResponse {
	return productTypeResponse{
		ID:        t.ID,
		NameEN:    t.NameEN,
		NameAR:    t.NameAR,
		CreatedAt: t.CreatedAt,
	}
}

func (h *Handler) listProductTypes(w http.ResponseWriter, r *http.Request) {
	types, err := h.productTypes.List(r.Context())
	if err != nil {
		respondDomainError(w, r, err)
		return
	}

	out := make([]productTypeResponse, len(types))
	for i, t := range types {
		out[i] = toProductTypeResponse(t)
	}
	respond(w, http.StatusOK, out)
}

func (h *Handler) createProductType(w http.ResponseWriter, r *http.Request) {
	var req categoryRequest
	if !decodeBody(w, r, &req) {
		return
	}
	if req.NameEN == "" && req.NameAR == "" {
		respondError(w, http.StatusBadRequest, "product type needs a name in at least one language")
		return
	}

	t := catalog.ProductType{
		ID:     uuid.New().String(),
		NameEN: req.NameEN,
		NameAR: req.NameAR,
	}
	if err := h.productTypes.Create(r.Context(), &t); err != nil {
		respondDomainError(w, r, err)
		return
	}
	respond(w, http.StatusCreated, toProductTypeResponse(t))
}

func (h *Handler) updateProductType(w http.ResponseWriter, r *http.Request) {
	var req categoryRequest
	if !decodeBody(w, r, &req) {
		return
	}

	t := catalog.ProductType{
		ID:     chi.URLParam(r, "id"),
		NameEN: req.NameEN,
		NameAR: req.NameAR,
	}
	if err := h.productTypes.Update(r.Context(), &t); err != nil {
		respondDomainError(w, r, err)
		return
	}
	respond(w, http.StatusOK, toProductTypeResponse(t))
}

func (h *Handler) deleteProductType(w http.ResponseWriter, r *http.Request) {
	if err := h.productTypes.Delete(r.Context(), chi.URLParam(r, "id")); err != nil {
		respondDomainError(w, r, err)
		return
	}
	respond(w, http.StatusNoContent, nil)
}
