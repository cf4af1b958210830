package httpapi

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/gocommerce/commerce-backend/internal/apperror"
	identityapp "github.com/gocommerce/commerce-backend/internal/identity/application"
)

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

type errorBody struct {
	Error     string `json:"error"`
	ItemID    string `json:"item_id,omitempty"`
	Available *int   `json:"available,omitempty"`
}

func writeError(w http.ResponseWriter, err error) {
	var stockErr *apperror.InsufficientStockError
	if errors.As(err, &stockErr) {
		writeJSON(w, http.StatusConflict, errorBody{
			Error:     stockErr.Error(),
			ItemID:    stockErr.ItemID,
			Available: &stockErr.Available,
		})
		return
	}

	status := http.StatusInternalServerError
	switch {
	case errors.Is(err, apperror.ErrNotAuthenticated),
		errors.Is(err, identityapp.ErrInvalidCredentials):
		status = http.StatusUnauthorized
	case errors.Is(err, apperror.ErrNotAuthorized):
		status = http.StatusForbidden
	case errors.Is(err, apperror.ErrNotFound):
		status = http.StatusNotFound
	case errors.Is(err, apperror.ErrInvalidArgument),
		errors.Is(err, apperror.ErrEmptyCart):
		status = http.StatusBadRequest
	case errors.Is(err, apperror.ErrItemUnavailable),
		errors.Is(err, apperror.ErrConflict):
		status = http.StatusConflict
	}
	msg := err.Error()
	if status == http.StatusInternalServerError {
		msg = "internal error"
	}
	writeJSON(w, status, errorBody{Error: msg})
}
