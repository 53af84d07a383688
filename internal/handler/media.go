package handler

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/soukly/storefront/internal/domain/media"
)

// maxMediaUploadBytes bounds one add-media request body.
const maxMediaUploadBytes = 64 << 20

type mediaResponse struct {
	ID        string    `json:"id"`
	ProductID string    `json:"product_id"`
	FileURL   string    `json:"file_url"`
	FileType  string    `json:"file_type"`
	IsMain    bool      `json:"is_main"`
	CreatedAt time.Time `json:"created_at"`
}

func toMediaResponse(m media.Item) mediaResponse {
	return mediaResponse{
		ID:        m.ID,
		ProductID: m.ProductID,
		FileURL:   m.FileURL,
		FileType:  string(m.FileType),
		IsMain:    m.IsMain,
		CreatedAt: m.CreatedAt,
	}
}

func (h *Handler) listProductMedia(w http.ResponseWriter, r *http.Request) {
	items, err := h.media.ListByProduct(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		respondDomainError(w, r, err)
		return
	}

	out := make([]mediaResponse, len(items))
	for i, m := range items {
		out[i] = toMediaResponse(m)
	}
	respond(w, http.StatusOK, out)
}

// addProductMedia accepts a multipart form with one or more "files" parts
// and adds them to the product's collection. New media is never main.
func (h *Handler) addProductMedia(w http.ResponseWriter, r *http.Request) {
	productID := chi.URLParam(r, "id")

	if _, err := h.products.GetByID(r.Context(), productID); err != nil {
		respondDomainError(w, r, err)
		return
	}

	r.Body = http.MaxBytesReader(w, r.Body, maxMediaUploadBytes)
	reader, err := r.MultipartReader()
	if err != nil {
		respondError(w, http.StatusBadRequest, "multipart form required")
		return
	}

	var uploads []media.Upload
	var closers []interface{ Close() error }
	defer func() {
		for _, c := range closers {
			_ = c.Close()
		}
	}()

	form, err := reader.ReadForm(maxMediaUploadBytes)
	if err != nil {
		respondError(w, http.StatusBadRequest, "reading multipart form failed")
		return
	}
	defer func() { _ = form.RemoveAll() }()

	for _, fh := range form.File["files"] {
		f, err := fh.Open()
		if err != nil {
			respondError(w, http.StatusBadRequest, "opening uploaded file failed")
			return
		}
		closers = append(closers, f)
		uploads = append(uploads, media.Upload{
			Name:        fh.Filename,
			ContentType: fh.Header.Get("Content-Type"),
			Body:        f,
		})
	}
	if len(uploads) == 0 {
		respondError(w, http.StatusBadRequest, "no files provided")
		return
	}

	items, err := h.media.AddMedia(r.Context(), productID, uploads)
	if err != nil {
		respondDomainError(w, r, err)
		return
	}

	out := make([]mediaResponse, len(items))
	for i, m := range items {
		out[i] = toMediaResponse(m)
	}
	respond(w, http.StatusCreated, out)
}

func (h *Handler) setMainMedia(w http.ResponseWriter, r *http.Request) {
	productID := chi.URLParam(r, "id")
	mediaID := chi.URLParam(r, "mediaID")

	if err := h.media.SetMain(r.Context(), productID, mediaID); err != nil {
		respondDomainError(w, r, err)
		return
	}
	respond(w, http.StatusOK, map[string]string{"id": mediaID, "product_id": productID})
}

func (h *Handler) deleteMedia(w http.ResponseWriter, r *http.Request) {
	if err := h.media.DeleteMedia(r.Context(), chi.URLParam(r, "id")); err != nil {
		respondDomainError(w, r, err)
		return
	}
	respond(w, http.StatusNoContent, nil)
}
