package httpx

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"

	"github.com/baharkarakas/roamr-backend/internal/auth"
	"github.com/baharkarakas/roamr-backend/internal/models"
	"github.com/baharkarakas/roamr-backend/internal/validate"
)

type APIError struct {
	Error   string `json:"error"`
	Code    string `json:"code"`
	Details any    `json:"details,omitempty"`
}

func WriteJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func WriteError(w http.ResponseWriter, status int, code, msg string, details any) {
	WriteJSON(w, status, APIError{
		Error:   msg,
		Code:    code,
		Details: details,
	})
}

// WriteDomainError maps the service error taxonomy onto HTTP statuses.
func WriteDomainError(w http.ResponseWriter, err error) {
	var (
		ve *models.ValidationError
		ce *models.CascadeError
	)
	switch {
	case errors.As(err, &ve):
		WriteError(w, http.StatusBadRequest, "validation_failed", ve.Error(), ve.Fields)
	case errors.Is(err, models.ErrNotFound):
		WriteError(w, http.StatusNotFound, "not_found", err.Error(), nil)
	case errors.Is(err, models.ErrDenied):
		WriteError(w, http.StatusForbidden, "forbidden", "you do not have permission to do that", nil)
	case errors.Is(err, auth.ErrInvalidCredentials), errors.Is(err, auth.ErrInvalidToken):
		WriteError(w, http.StatusUnauthorized, "unauthorized", err.Error(), nil)
	case errors.As(err, &ce):
		WriteCascadeError(w, ce, nil)
	case errors.Is(err, models.ErrStoreUnavailable):
		slog.Error("store unavailable", "err", err)
		WriteError(w, http.StatusServiceUnavailable, "store_unavailable", "storage is unavailable, try again later", nil)
	default:
		slog.Error("unhandled error", "err", err)
		WriteError(w, http.StatusInternalServerError, "internal_error", "internal error", nil)
	}
}

// WriteCascadeError reports a delete whose review cascade did not finish.
// A non-nil listing is the deleted row and goes into the details.
func WriteCascadeError(w http.ResponseWriter, ce *models.CascadeError, listing any) {
	slog.Error("cascade incomplete", "listing_id", ce.ListingID, "pending", ce.Pending, "err", ce.Err)
	details := map[string]any{"listing_id": ce.ListingID, "pending_review_ids": ce.Pending}
	if listing != nil {
		details["listing"] = listing
	}
	WriteError(w, http.StatusServiceUnavailable, "cascade_incomplete", "listing deleted but some reviews could not be removed", details)
}

// DecodeJSON reads exactly one JSON value and rejects unknown fields.
func DecodeJSON(r io.Reader, v any) error {
	dec := json.NewDecoder(r)
	dec.DisallowUnknownFields()
	if err := dec.Decode(v); err != nil {
		return BadRequest(err)
	}
	if dec.More() {
		return BadRequest(errors.New("unexpected data after JSON body"))
	}
	return nil
}

// BadRequest wraps a malformed-request cause as a ValidationError on "body".
func BadRequest(err error) error {
	return &models.ValidationError{
		Entity: "request",
		Fields: validate.Errs{{Field: "body", Msg: fmt.Sprint(err)}},
	}
}
