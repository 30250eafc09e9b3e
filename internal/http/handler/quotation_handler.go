package handler

import (
	"encoding/json"
	"io"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/mkamranaziz70-del/Boxxpliot-App/internal/domain"
	"github.com/mkamranaziz70-del/Boxxpliot-App/internal/service"
	"go.uber.org/zap"
)

type QuotationHandler struct {
	quotationService *service.QuotationService
	logger           *zap.Logger
}

func NewQuotationHandler(quotationService *service.QuotationService, logger *zap.Logger) *QuotationHandler {
	return &QuotationHandler{
		quotationService: quotationService,
		logger:           logger,
	}
}

// List godoc
// @Summary List quotations
// @Description Get paginated list of quotations with optional filters
// @Tags Quotations
// @Produce json
// @Param page query int false "Page number" default(1)
// @Param pageSize query int false "Items per page (max 200)" default(20)
// @Param status query string false "Filter by status" Enums(DRAFT, SENT, SIGNED, REJECTED, EXPIRED)
// @Param customerId query string false "Filter by customer" format(uuid)
// @Success 200 {object} domain.PaginatedResponse{data=[]domain.QuotationDTO}
// @Failure 400 {object} domain.ErrorResponse
// @Failure 401 {object} domain.ErrorResponse
// @Security BearerAuth
// @Router /quotations [get]
func (h *QuotationHandler) List(w http.ResponseWriter, r *http.Request) {
	page, _ := strconv.Atoi(r.URL.Query().Get("page"))
	pageSize, _ := strconv.Atoi(r.URL.Query().Get("pageSize"))

	var status *domain.QuotationStatus
	if raw := r.URL.Query().Get("status"); raw != "" {
		parsed := domain.QuotationStatus(raw)
		status = &parsed
	}

	var customerID *uuid.UUID
	if raw := r.URL.Query().Get("customerId"); raw != "" {
		parsed, err := uuid.Parse(raw)
		if err != nil {
			respondWithError(w, http.StatusBadRequest, "Invalid customer ID format")
			return
		}
		customerID = &parsed
	}

	result, err := h.quotationService.List(r.Context(), page, pageSize, status, customerID)
	if err != nil {
		handleServiceError(w, h.logger, err, "list quotations")
		return
	}

	respondJSON(w, http.StatusOK, result)
}

// GetByID godoc
// @Summary Get quotation by ID
// @Tags Quotations
// @Produce json
// @Param id path string true "Quotation ID" format(uuid)
// @Success 200 {object} domain.QuotationDTO
// @Failure 400 {object} domain.ErrorResponse
// @Failure 404 {object} domain.ErrorResponse
// @Security BearerAuth
// @Router /quotations/{id} [get]
func (h *QuotationHandler) GetByID(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		respondWithError(w, http.StatusBadRequest, "Invalid quotation ID format")
		return
	}

	quotation, err := h.quotationService.GetByID(r.Context(), id)
	if err != nil {
		handleServiceError(w, h.logger, err, "get quotation")
		return
	}

	respondJSON(w, http.StatusOK, quotation)
}

// Create godoc
// @Summary Create quotation
// @Description Create a DRAFT quotation for a customer
// @Tags Quotations
// @Accept json
// @Produce json
// @Param request body domain.CreateQuotationRequest true "Quotation data"
// @Success 201 {object} domain.QuotationDTO
// @Failure 400 {object} domain.ErrorResponse
// @Failure 401 {object} domain.ErrorResponse
// @Security BearerAuth
// @Router /quotations [post]
func (h *QuotationHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req domain.CreateQuotationRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondWithError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	if err := validate.Struct(req); err != nil {
		respondValidationError(w, err)
		return
	}

	quotation, err := h.quotationService.Create(r.Context(), &req)
	if err != nil {
		handleServiceError(w, h.logger, err, "create quotation")
		return
	}

	w.Header().Set("Location", "/api/v1/quotations/"+quotation.ID.String())
	respondJSON(w, http.StatusCreated, quotation)
}

// Update godoc
// @Summary Update quotation
// @Description Update a DRAFT quotation. Sent quotations are read-only.
// @Tags Quotations
// @Accept json
// @Produce json
// @Param id path string true "Quotation ID" format(uuid)
// @Param request body domain.UpdateQuotationRequest true "Quotation data"
// @Success 200 {object} domain.QuotationDTO
// @Failure 400 {object} domain.ErrorResponse
// @Failure 404 {object} domain.ErrorResponse
// @Failure 409 {object} domain.ErrorResponse "Quotation is no longer a draft"
// @Security BearerAuth
// @Router /quotations/{id} [put]
func (h *QuotationHandler) Update(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		respondWithError(w, http.StatusBadRequest, "Invalid quotation ID format")
		return
	}

	var req domain.UpdateQuotationRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondWithError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	if err := validate.Struct(req); err != nil {
		respondValidationError(w, err)
		return
	}

	quotation, err := h.quotationService.Update(r.Context(), id, &req)
	if err != nil {
		handleServiceError(w, h.logger, err, "update quotation")
		return
	}

	respondJSON(w, http.StatusOK, quotation)
}

// Send godoc
// @Summary Send quotation
// @Description Send a DRAFT quotation to the customer: mints the public signing token, stamps the expiry and creates the PENDING job. Re-sending an already sent quotation is a no-op success.
// @Tags Quotations
// @Produce json
// @Param id path string true "Quotation ID" format(uuid)
// @Success 200 {object} domain.QuotationDTO
// @Failure 400 {object} domain.ErrorResponse
// @Failure 404 {object} domain.ErrorResponse
// @Failure 409 {object} domain.ErrorResponse "Quotation already resolved"
// @Failure 422 {object} domain.ErrorResponse "Missing schedule or validity window"
// @Security BearerAuth
// @Router /quotations/{id}/send [post]
func (h *QuotationHandler) Send(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		respondWithError(w, http.StatusBadRequest, "Invalid quotation ID format")
		return
	}

	quotation, err := h.quotationService.Send(r.Context(), id)
	if err != nil {
		handleServiceError(w, h.logger, err, "send quotation")
		return
	}

	respondJSON(w, http.StatusOK, quotation)
}

// DownloadSignature godoc
// @Summary Download signature image
// @Description Stream the stored signature image for a signed quotation
// @Tags Quotations
// @Produce png
// @Param id path string true "Quotation ID" format(uuid)
// @Success 200 {file} binary
// @Failure 400 {object} domain.ErrorResponse
// @Failure 404 {object} domain.ErrorResponse
// @Security BearerAuth
// @Router /quotations/{id}/signature [get]
func (h *QuotationHandler) DownloadSignature(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		respondWithError(w, http.StatusBadRequest, "Invalid quotation ID format")
		return
	}

	reader, err := h.quotationService.DownloadSignature(r.Context(), id)
	if err != nil {
		handleServiceError(w, h.logger, err, "download signature")
		return
	}
	defer reader.Close()

	w.Header().Set("Content-Type", "image/png")
	if _, err := io.Copy(w, reader); err != nil {
		h.logger.Warn("failed to stream signature", zap.Error(err))
	}
}
