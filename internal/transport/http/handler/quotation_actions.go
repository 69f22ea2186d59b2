package handler

import (
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/quotation-api/internal/application/otp"
	"github.com/quotation-api/internal/application/quotation"
	"github.com/quotation-api/internal/domain"
	"github.com/quotation-api/internal/pkg/validate"
	"github.com/quotation-api/internal/transport/http/middleware"
)

// ActionRequest is the request-action body. name/email/phone identify the
// claimant and are required only on the anonymous flow; a session already
// carries them. reason is validated in the services: mandatory for
// reject/revision, ignored for accept.
type ActionRequest struct {
	Name   string `json:"name" validate:"required"`
	Email  string `json:"email" validate:"required,email"`
	Phone  string `json:"phone" validate:"required"`
	Action string `json:"action" validate:"required,oneof=accept reject revision"`
	Reason string `json:"reason"`
}

// ConfirmRequest is the confirm-action body.
type ConfirmRequest struct {
	OTP string `json:"otp" validate:"required"`
}

// ActionHandler serves the client action flow: request a code, confirm with
// the code, or (authenticated) act directly.
type ActionHandler struct {
	otpSvc       otp.Service
	quotationSvc quotation.Service
}

func NewActionHandler(otpSvc otp.Service, quotationSvc quotation.Service) *ActionHandler {
	return &ActionHandler{otpSvc: otpSvc, quotationSvc: quotationSvc}
}

// Request handles POST /quotations/{id}/action. Anonymous claimants get a
// one-time code by email; a logged-in client skips the code entirely because
// the session already proves identity — ownership is checked instead.
func (h *ActionHandler) Request(w http.ResponseWriter, r *http.Request) {
	quotationID := chi.URLParam(r, "id")

	var req ActionRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	action := domain.Action(req.Action)

	if claims, ok := middleware.ClaimsFromContext(r.Context()); ok {
		// Identity comes from the session, so only the action matters here;
		// the claimant fields stay unvalidated.
		if !domain.ClientAction(action) {
			writeError(w, http.StatusBadRequest, "action must be one of accept, reject, revision")
			return
		}
		_, err := h.quotationSvc.ApplyClientAction(r.Context(), quotationID, claims.UserID, claims.Email, action, req.Reason)
		if err != nil {
			httpError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, ActionResultEnvelope{
			Success: true,
			Message: confirmMessage(action),
			Action:  action,
		})
		return
	}

	if err := validate.Struct(&req); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	_, err := h.otpSvc.Issue(r.Context(), otp.IssueRequest{
		QuotationID: quotationID,
		Name:        req.Name,
		Email:       req.Email,
		Phone:       req.Phone,
		Action:      action,
		Reason:      req.Reason,
	})
	if err != nil {
		httpError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, MessageEnvelope{Message: "Verification code sent to your email."})
}

// Confirm handles PUT /quotations/{id}/action: consume the code, apply the
// transition it authorizes, answer with an action-specific message.
func (h *ActionHandler) Confirm(w http.ResponseWriter, r *http.Request) {
	quotationID := chi.URLParam(r, "id")

	var req ConfirmRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if err := validate.Struct(&req); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	payload, err := h.otpSvc.Verify(r.Context(), quotationID, req.OTP)
	if err != nil {
		httpError(w, err)
		return
	}
	if _, err := h.quotationSvc.ApplyVerifiedAction(r.Context(), quotationID, payload); err != nil {
		httpError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, ActionResultEnvelope{
		Success: true,
		Message: confirmMessage(payload.Action),
		Action:  payload.Action,
	})
}

func confirmMessage(action domain.Action) string {
	switch action {
	case domain.ActionAccept:
		return "Quotation Accepted Successfully."
	case domain.ActionReject:
		return "Quotation Rejected Successfully."
	case domain.ActionRevision:
		return "Revision Requested Successfully. Actions Disabled till Revision Received from admin."
	}
	return "Action applied."
}
