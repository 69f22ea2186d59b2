package handler

import (
	"encoding/json"
	"net/http"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/quotation-api/internal/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

func quotationRouter(h *QuotationHandler) http.Handler {
	r := chi.NewRouter()
	r.Post("/v1/quotations", h.Create)
	r.Get("/v1/quotations/{id}", h.Get)
	r.Patch("/v1/quotations/{id}", h.Update)
	r.Post("/v1/quotations/{id}/send", h.Send)
	return r
}

func TestCreateQuotation_HappyPath(t *testing.T) {
	svc := &mockQuotationService{}
	svc.On("Create", mock.Anything, mock.MatchedBy(func(in domain.QuotationInput) bool {
		return in.Title == "Roof repair" && in.ClientEmail == "ada@example.com"
	})).Return(&domain.Quotation{QuotationID: "q1", Title: "Roof repair", Status: domain.StatusDraft}, nil)

	h := NewQuotationHandler(svc)
	rec := doJSON(t, quotationRouter(h), http.MethodPost, "/v1/quotations",
		`{"title":"Roof repair","client_email":"ada@example.com"}`)

	require.Equal(t, http.StatusCreated, rec.Code)
	var out domain.Quotation
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &out))
	assert.Equal(t, "q1", out.QuotationID)
	assert.Equal(t, domain.StatusDraft, out.Status)
}

func TestCreateQuotation_ValidationFailures(t *testing.T) {
	cases := map[string]string{
		"missing title": `{"client_email":"ada@example.com"}`,
		"missing email": `{"title":"Roof repair"}`,
		"bad email":     `{"title":"Roof repair","client_email":"nope"}`,
	}
	for name, body := range cases {
		t.Run(name, func(t *testing.T) {
			svc := &mockQuotationService{}
			h := NewQuotationHandler(svc)

			rec := doJSON(t, quotationRouter(h), http.MethodPost, "/v1/quotations", body)

			assert.Equal(t, http.StatusBadRequest, rec.Code)
			svc.AssertNotCalled(t, "Create", mock.Anything, mock.Anything)
		})
	}
}

func TestUpdateQuotation_HappyPath(t *testing.T) {
	svc := &mockQuotationService{}
	svc.On("Update", mock.Anything, "q1", mock.MatchedBy(func(in domain.QuotationUpdate) bool {
		return in.Title != nil && *in.Title == "Roof repair v2" && in.ClientEmail == nil
	})).Return(&domain.Quotation{QuotationID: "q1", Title: "Roof repair v2", Status: domain.StatusDraft}, nil)

	h := NewQuotationHandler(svc)
	rec := doJSON(t, quotationRouter(h), http.MethodPatch, "/v1/quotations/q1", `{"title":"Roof repair v2"}`)

	require.Equal(t, http.StatusOK, rec.Code)
	var out domain.Quotation
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &out))
	assert.Equal(t, "Roof repair v2", out.Title)
	svc.AssertExpectations(t)
}

func TestUpdateQuotation_BadEmail(t *testing.T) {
	svc := &mockQuotationService{}
	h := NewQuotationHandler(svc)

	rec := doJSON(t, quotationRouter(h), http.MethodPatch, "/v1/quotations/q1", `{"client_email":"nope"}`)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
	svc.AssertNotCalled(t, "Update", mock.Anything, mock.Anything, mock.Anything)
}

func TestUpdateQuotation_TerminalQuotation(t *testing.T) {
	svc := &mockQuotationService{}
	svc.On("Update", mock.Anything, "q1", mock.Anything).Return(nil, domain.ErrInvalidState)

	h := NewQuotationHandler(svc)
	rec := doJSON(t, quotationRouter(h), http.MethodPatch, "/v1/quotations/q1", `{"title":"too late"}`)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestGetQuotation_NotFound(t *testing.T) {
	svc := &mockQuotationService{}
	svc.On("Get", mock.Anything, "missing").Return(nil, domain.ErrNotFound)

	h := NewQuotationHandler(svc)
	rec := doJSON(t, quotationRouter(h), http.MethodGet, "/v1/quotations/missing", "")

	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestSendQuotation_HappyPath(t *testing.T) {
	svc := &mockQuotationService{}
	svc.On("Send", mock.Anything, "q1").
		Return(&domain.Quotation{QuotationID: "q1", Status: domain.StatusSent}, nil)

	h := NewQuotationHandler(svc)
	rec := doJSON(t, quotationRouter(h), http.MethodPost, "/v1/quotations/q1/send", "")

	require.Equal(t, http.StatusOK, rec.Code)
	var out domain.Quotation
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &out))
	assert.Equal(t, domain.StatusSent, out.Status)
}
