package handler

import (
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/mkamranaziz70-del/Boxxpliot-App/internal/domain"
	"github.com/mkamranaziz70-del/Boxxpliot-App/internal/service"
	"go.uber.org/zap"
)

// PublicQuotationHandler serves the unauthenticated signing page
// endpoints. The opaque token in the URL is the only credential.
type PublicQuotationHandler struct {
	quotationService *service.QuotationService
	logger           *zap.Logger
}

func NewPublicQuotationHandler(quotationService *service.QuotationService, logger *zap.Logger) *PublicQuotationHandler {
	return &PublicQuotationHandler{
		quotationService: quotationService,
		logger:           logger,
	}
}

// GetByToken godoc
// @Summary View quotation by signing token
// @Description Customer-facing projection of a quotation, looked up by its public signing token
// @Tags Public
// @Produce json
// @Param token path string true "Public signing token"
// @Success 200 {object} domain.PublicQuotationDTO
// @Failure 404 {object} domain.ErrorResponse
// @Router /public/quotations/{token} [get]
func (h *PublicQuotationHandler) GetByToken(w http.ResponseWriter, r *http.Request) {
	token := chi.URLParam(r, "token")
	if token == "" {
		respondWithError(w, http.StatusNotFound, "Quotation not found")
		return
	}

	quotation, err := h.quotationService.GetByToken(r.Context(), token)
	if err != nil {
		handleServiceError(w, h.logger, err, "get quotation")
		return
	}

	respondJSON(w, http.StatusOK, quotation)
}

// Sign godoc
// @Summary Sign quotation
// @Description Record the customer's signature on a sent quotation. Exactly one of sign/reject wins a race; the loser receives 409.
// @Tags Public
// @Accept json
// @Produce json
// @Param token path string true "Public signing token"
// @Param request body domain.SignQuotationRequest true "Signer name and base64 signature image"
// @Success 200 {object} domain.PublicQuotationDTO
// @Failure 400 {object} domain.ErrorResponse
// @Failure 404 {object} domain.ErrorResponse
// @Failure 409 {object} domain.ErrorResponse "Already signed or rejected"
// @Failure 410 {object} domain.ErrorResponse "Quotation expired"
// @Router /public/quotations/{token}/sign [post]
func (h *PublicQuotationHandler) Sign(w http.ResponseWriter, r *http.Request) {
	token := chi.URLParam(r, "token")
	if token == "" {
		respondWithError(w, http.StatusNotFound, "Quotation not found")
		return
	}

	var req domain.SignQuotationRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondWithError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	if err := validate.Struct(req); err != nil {
		respondValidationError(w, err)
		return
	}

	quotation, err := h.quotationService.SignByToken(r.Context(), token, &req)
	if err != nil {
		handleServiceError(w, h.logger, err, "sign quotation")
		return
	}

	respondJSON(w, http.StatusOK, quotation)
}

// Reject godoc
// @Summary Reject quotation
// @Description Record the customer's rejection of a sent quotation and cancel its pending job
// @Tags Public
// @Produce json
// @Param token path string true "Public signing token"
// @Success 200 {object} domain.PublicQuotationDTO
// @Failure 404 {object} domain.ErrorResponse
// @Failure 409 {object} domain.ErrorResponse "Already signed or rejected"
// @Failure 410 {object} domain.ErrorResponse "Quotation expired"
// @Router /public/quotations/{token}/reject [post]
func (h *PublicQuotationHandler) Reject(w http.ResponseWriter, r *http.Request) {
	token := chi.URLParam(r, "token")
	if token == "" {
		respondWithError(w, http.StatusNotFound, "Quotation not found")
		return
	}

	quotation, err := h.quotationService.RejectByToken(r.Context(), token)
	if err != nil {
		handleServiceError(w, h.logger, err, "reject quotation")
		return
	}

	respondJSON(w, http.StatusOK, quotation)
}
