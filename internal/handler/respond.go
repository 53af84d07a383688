package handler

import (
	"encoding/json"
	"net/http"

	"github.com/go-faster/errors"
	"github.com/go-faster/sdk/zctx"
	"go.uber.org/zap"

	"github.com/soukly/storefront/internal/domain/catalog"
	"github.com/soukly/storefront/internal/domain/coupon"
	"github.com/soukly/storefront/internal/domain/media"
	"github.com/soukly/storefront/internal/domain/offer"
	"github.com/soukly/storefront/internal/domain/order"
	"github.com/soukly/storefront/internal/shipping"
)

// errorResponse is the JSON error body. Reason carries the stable rejection
// code for user-correctable failures, such as coupon validation.
type errorResponse struct {
	Code    int    `json:"code"`
	Message string `json:"message"`
	Reason  string `json:"reason,omitempty"`
}

func respond(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if v != nil {
		_ = json.NewEncoder(w).Encode(v)
	}
}

func respondError(w http.ResponseWriter, status int, message string) {
	respond(w, status, errorResponse{Code: status, Message: message})
}

func decodeBody(w http.ResponseWriter, r *http.Request, v any) bool {
	if err := json.NewDecoder(r.Body).Decode(v); err != nil {
		respondError(w, http.StatusBadRequest, "invalid request body")
		return false
	}
	return true
}

// respondDomainError maps domain errors to HTTP responses. Missing
// resources map to 404, user-correctable rejections to 422 with a stable
// reason code, bad input to 400, and media reconciliation failures to
// 502/500 so callers can distinguish "storage refused" from "row dangling".
// Anything unmapped is logged and returned as a plain 500.
func respondDomainError(w http.ResponseWriter, r *http.Request, err error) {
	switch {
	case errors.Is(err, catalog.ErrProductNotFound),
		errors.Is(err, catalog.ErrCategoryNotFound),
		errors.Is(err, catalog.ErrProductTypeNotFound),
		errors.Is(err, offer.ErrNotFound),
		errors.Is(err, coupon.ErrNotFound),
		errors.Is(err, media.ErrNotFound),
		errors.Is(err, order.ErrNotFound):
		respondError(w, http.StatusNotFound, err.Error())
		return
	}

	var rejection *coupon.RejectionError
	if errors.As(err, &rejection) {
		respond(w, http.StatusUnprocessableEntity, errorResponse{
			Code:    http.StatusUnprocessableEntity,
			Message: rejection.Error(),
			Reason:  string(rejection.Reason),
		})
		return
	}

	var (
		invalidQty    *order.InvalidQuantityError
		prodNotFound  *order.ProductNotFoundError
		invalidStatus *order.InvalidStatusError
	)
	switch {
	case errors.As(err, &invalidQty), errors.As(err, &prodNotFound):
		respondError(w, http.StatusUnprocessableEntity, err.Error())
		return
	case errors.As(err, &invalidStatus):
		respondError(w, http.StatusBadRequest, err.Error())
		return
	case errors.Is(err, order.ErrEmptyItems):
		respondError(w, http.StatusBadRequest, err.Error())
		return
	case errors.Is(err, shipping.ErrUnknownGovernorate):
		respondError(w, http.StatusUnprocessableEntity, err.Error())
		return
	}

	var storageDelete *media.StorageDeleteError
	if errors.As(err, &storageDelete) {
		respondError(w, http.StatusBadGateway, storageDelete.Error())
		return
	}
	var orphanRow *media.OrphanRowError
	if errors.As(err, &orphanRow) {
		respondError(w, http.StatusInternalServerError, orphanRow.Error())
		return
	}

	zctx.From(r.Context()).Error("request failed", zap.Error(err))
	respondError(w, http.StatusInternalServerError, "internal error")
}

// respondValidationError maps admin write-boundary validation failures.
func respondValidationError(w http.ResponseWriter, err error) {
	respondError(w, http.StatusBadRequest, err.Error())
}
