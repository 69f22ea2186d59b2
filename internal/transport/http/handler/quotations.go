package handler

import (
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/quotation-api/internal/application/quotation"
	"github.com/quotation-api/internal/domain"
	"github.com/quotation-api/internal/pkg/validate"
)

// QuotationHandler handles the admin lifecycle endpoints.
type QuotationHandler struct {
	svc quotation.Service
}

func NewQuotationHandler(svc quotation.Service) *QuotationHandler {
	return &QuotationHandler{svc: svc}
}

func (h *QuotationHandler) Create(w http.ResponseWriter, r *http.Request) {
	var input domain.QuotationInput
	if err := json.NewDecoder(r.Body).Decode(&input); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if err := validate.Struct(&input); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	created, err := h.svc.Create(r.Context(), input)
	if err != nil {
		httpError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, created)
}

func (h *QuotationHandler) Get(w http.ResponseWriter, r *http.Request) {
	q, err := h.svc.Get(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		httpError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, q)
}

// Update applies a partial edit to a quotation's details. Terminal
// quotations are refused by the service.
func (h *QuotationHandler) Update(w http.ResponseWriter, r *http.Request) {
	var input domain.QuotationUpdate
	if err := json.NewDecoder(r.Body).Decode(&input); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if err := validate.Struct(&input); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	updated, err := h.svc.Update(r.Context(), chi.URLParam(r, "id"), input)
	if err != nil {
		httpError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, updated)
}

// Send re-opens the state machine for the client: draft -> sent after
// drafting, revision -> sent after the requested changes were made.
func (h *QuotationHandler) Send(w http.ResponseWriter, r *http.Request) {
	q, err := h.svc.Send(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		httpError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, q)
}
