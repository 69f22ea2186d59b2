package handler

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/quotation-api/internal/domain"
)

// httpError maps domain sentinels to status codes and client-facing messages.
// Each code-verification failure kind keeps its own message: the client UI
// tells the user whether to retype, re-request, or give up.
func httpError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, domain.ErrCodeInvalid):
		writeError(w, http.StatusBadRequest, "Invalid verification code.")
	case errors.Is(err, domain.ErrCodeExpired):
		writeError(w, http.StatusBadRequest, "Verification code has expired. Please request a new one.")
	case errors.Is(err, domain.ErrCodeUsed):
		writeError(w, http.StatusBadRequest, "Verification code has already been used.")
	case errors.Is(err, domain.ErrCodeAttemptsExceeded):
		writeError(w, http.StatusBadRequest, "Too many failed attempts. Please request a new code.")
	case errors.Is(err, domain.ErrPayloadMismatch):
		writeError(w, http.StatusBadRequest, "Verification code does not belong to this quotation.")
	case errors.Is(err, domain.ErrInvalidState):
		writeError(w, http.StatusBadRequest, "Quotation is not in a state that allows this action.")
	case errors.Is(err, domain.ErrBadRequest):
		writeError(w, http.StatusBadRequest, err.Error())
	case errors.Is(err, domain.ErrNotFound):
		writeError(w, http.StatusNotFound, "not found")
	case errors.Is(err, domain.ErrUnauthorized):
		writeError(w, http.StatusUnauthorized, "unauthorized")
	case errors.Is(err, domain.ErrForbidden):
		writeError(w, http.StatusForbidden, "forbidden")
	case errors.Is(err, domain.ErrDelivery):
		writeError(w, http.StatusInternalServerError, "Could not deliver the verification code. Please try again.")
	default:
		slog.Error("unhandled error", "err", err)
		writeError(w, http.StatusInternalServerError, "internal server error")
	}
}
