package handler

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/soukly/storefront/internal/domain/catalog"
)

type categoryRequest struct {
	NameEN string `json:"name_en"`
	NameAR string `json:"name_ar"`
}

type categoryResponse struct {
	ID        string    `json:"id"`
	NameEN    string    `json:"name_en"`
	NameAR    string    `json:"name_ar"`
	CreatedAt time.Time `json:"created_at"`
}

func toCategoryResponse(c catalog.Category) categoryResponse {
	return categoryResponse{
		ID:        c.ID,
		NameEN:    c.NameEN,
		NameAR:    c.NameAR,
		CreatedAt: c.CreatedAt,
	}
}

func (h *Handler) listCategories(w http.ResponseWriter, r *http.Request) {
	categories, err := h.categories.List(r.Context())
	if err != nil {
		respondDomainError(w, r, err)
		return
	}

	out := make([]categoryResponse, len(categories))
	for i, c := range categories {
		out[i] = toCategoryResponse(c)
	}
	respond(w, http.StatusOK, out)
}

func (h *Handler) createCategory(w http.ResponseWriter, r *http.Request) {
	var req categoryRequest
	if !decodeBody(w, r, &req) {
		return
	}
	if req.NameEN == "" && req.NameAR == "" {
		respondError(w, http.StatusBadRequest, "category needs a name in at least one language")
		return
	}

	c := catalog.Category{
		ID:     uuid.New().String(),
		NameEN: req.NameEN,
		NameAR: req.NameAR,
	}
	if err := h.categories.Create(r.Context(), &c); err != nil {
		respondDomainError(w, r, err)
		return
	}
	respond(w, http.StatusCreated, toCategoryResponse(c))
}

func (h *Handler) updateCategory(w http.ResponseWriter, r *http.Request) {
	var req categoryRequest
	if !decodeBody(w, r, &req) {
		return
	}

	c := catalog.Category{
		ID:     chi.URLParam(r, "id"),
		NameEN: req.NameEN,
		NameAR: req.NameAR,
	}
	if err := h.categories.Update(r.Context(), &c); err != nil {
		respondDomainError(w, r, err)
		return
	}
	respond(w, http.StatusOK, toCategoryResponse(c))
}

func (h *Handler) deleteCategory(w http.ResponseWriter, r *http.Request) {
	if err := h.categories.Delete(r.Context(), chi.URLParam(r, "id")); err != nil {
		respondDomainError(w, r, err)
		return
	}
	respond(w, http.StatusNoContent, nil)
}
