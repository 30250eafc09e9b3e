package handler

import (
	"encoding/json"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/mkamranaziz70-del/Boxxpliot-App/internal/domain"
	"github.com/mkamranaziz70-del/Boxxpliot-App/internal/service"
	"go.uber.org/zap"
)

type JobHandler struct {
	jobService *service.JobService
	logger     *zap.Logger
}

func NewJobHandler(jobService *service.JobService, logger *zap.Logger) *JobHandler {
	return &JobHandler{
		jobService: jobService,
		logger:     logger,
	}
}

// List godoc
// @Summary List jobs
// @Description Get paginated list of jobs, ordered by scheduled start
// @Tags Jobs
// @Produce json
// @Param page query int false "Page number" default(1)
// @Param pageSize query int false "Items per page (max 200)" default(20)
// @Param status query string false "Filter by status" Enums(PENDING, CONFIRMED, IN_PROGRESS, COMPLETED, CANCELLED, AUTO_ENDED, MISSED)
// @Success 200 {object} domain.PaginatedResponse{data=[]domain.JobDTO}
// @Failure 400 {object} domain.ErrorResponse
// @Failure 401 {object} domain.ErrorResponse
// @Security BearerAuth
// @Router /jobs [get]
func (h *JobHandler) List(w http.ResponseWriter, r *http.Request) {
	page, _ := strconv.Atoi(r.URL.Query().Get("page"))
	pageSize, _ := strconv.Atoi(r.URL.Query().Get("pageSize"))

	var status *domain.JobStatus
	if raw := r.URL.Query().Get("status"); raw != "" {
		parsed := domain.JobStatus(raw)
		status = &parsed
	}

	result, err := h.jobService.List(r.Context(), page, pageSize, status)
	if err != nil {
		handleServiceError(w, h.logger, err, "list jobs")
		return
	}

	respondJSON(w, http.StatusOK, result)
}

// ListMine godoc
// @Summary List my jobs
// @Description Get the jobs the authenticated employee is assigned to
// @Tags Jobs
// @Produce json
// @Param status query string false "Filter by status" Enums(PENDING, CONFIRMED, IN_PROGRESS, COMPLETED, CANCELLED, AUTO_ENDED, MISSED)
// @Success 200 {array} domain.JobDTO
// @Failure 401 {object} domain.ErrorResponse
// @Security BearerAuth
// @Router /jobs/mine [get]
func (h *JobHandler) ListMine(w http.ResponseWriter, r *http.Request) {
	var status *domain.JobStatus
	if raw := r.URL.Query().Get("status"); raw != "" {
		parsed := domain.JobStatus(raw)
		status = &parsed
	}

	jobs, err := h.jobService.ListMine(r.Context(), status)
	if err != nil {
		handleServiceError(w, h.logger, err, "list jobs")
		return
	}

	respondJSON(w, http.StatusOK, jobs)
}

// GetByID godoc
// @Summary Get job by ID
// @Tags Jobs
// @Produce json
// @Param id path string true "Job ID" format(uuid)
// @Success 200 {object} domain.JobDTO
// @Failure 400 {object} domain.ErrorResponse
// @Failure 404 {object} domain.ErrorResponse
// @Security BearerAuth
// @Router /jobs/{id} [get]
func (h *JobHandler) GetByID(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		respondWithError(w, http.StatusBadRequest, "Invalid job ID format")
		return
	}

	job, err := h.jobService.GetByID(r.Context(), id)
	if err != nil {
		handleServiceError(w, h.logger, err, "get job")
		return
	}

	respondJSON(w, http.StatusOK, job)
}

// Confirm godoc
// @Summary Confirm job
// @Description Accept a PENDING job onto the schedule. Requires the quotation to be signed.
// @Tags Jobs
// @Produce json
// @Param id path string true "Job ID" format(uuid)
// @Success 200 {object} domain.JobDTO
// @Failure 400 {object} domain.ErrorResponse
// @Failure 404 {object} domain.ErrorResponse
// @Failure 409 {object} domain.ErrorResponse "Job is not pending or quotation unsigned"
// @Security BearerAuth
// @Router /jobs/{id}/confirm [post]
func (h *JobHandler) Confirm(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		respondWithError(w, http.StatusBadRequest, "Invalid job ID format")
		return
	}

	job, err := h.jobService.Confirm(r.Context(), id)
	if err != nil {
		handleServiceError(w, h.logger, err, "confirm job")
		return
	}

	respondJSON(w, http.StatusOK, job)
}

// Deny godoc
// @Summary Deny job
// @Description Cancel a PENDING job the company will not take
// @Tags Jobs
// @Produce json
// @Param id path string true "Job ID" format(uuid)
// @Success 200 {object} domain.JobDTO
// @Failure 400 {object} domain.ErrorResponse
// @Failure 404 {object} domain.ErrorResponse
// @Failure 409 {object} domain.ErrorResponse "Job is not pending"
// @Security BearerAuth
// @Router /jobs/{id}/deny [post]
func (h *JobHandler) Deny(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		respondWithError(w, http.StatusBadRequest, "Invalid job ID format")
		return
	}

	job, err := h.jobService.Deny(r.Context(), id)
	if err != nil {
		handleServiceError(w, h.logger, err, "deny job")
		return
	}

	respondJSON(w, http.StatusOK, job)
}

// Start godoc
// @Summary Start job
// @Description Begin work on a CONFIRMED job. Gated on the start window around the scheduled start.
// @Tags Jobs
// @Produce json
// @Param id path string true "Job ID" format(uuid)
// @Success 200 {object} domain.JobDTO
// @Failure 400 {object} domain.ErrorResponse
// @Failure 404 {object} domain.ErrorResponse
// @Failure 409 {object} domain.ErrorResponse "Outside the start window or job not confirmed"
// @Security BearerAuth
// @Router /jobs/{id}/start [post]
func (h *JobHandler) Start(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		respondWithError(w, http.StatusBadRequest, "Invalid job ID format")
		return
	}

	job, err := h.jobService.Start(r.Context(), id)
	if err != nil {
		handleServiceError(w, h.logger, err, "start job")
		return
	}

	respondJSON(w, http.StatusOK, job)
}

// End godoc
// @Summary End job
// @Description Complete a job in progress. Ending an already completed job returns the existing record.
// @Tags Jobs
// @Produce json
// @Param id path string true "Job ID" format(uuid)
// @Success 200 {object} domain.JobDTO
// @Failure 400 {object} domain.ErrorResponse
// @Failure 404 {object} domain.ErrorResponse
// @Failure 409 {object} domain.ErrorResponse "Job is not in progress"
// @Security BearerAuth
// @Router /jobs/{id}/end [post]
func (h *JobHandler) End(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		respondWithError(w, http.StatusBadRequest, "Invalid job ID format")
		return
	}

	job, err := h.jobService.End(r.Context(), id)
	if err != nil {
		handleServiceError(w, h.logger, err, "end job")
		return
	}

	respondJSON(w, http.StatusOK, job)
}

// AssignCrew godoc
// @Summary Assign crew
// @Description Replace the job's crew. Allowed while the job is PENDING or CONFIRMED.
// @Tags Jobs
// @Accept json
// @Produce json
// @Param id path string true "Job ID" format(uuid)
// @Param request body domain.AssignCrewRequest true "Crew assignments"
// @Success 200 {object} domain.JobDTO
// @Failure 400 {object} domain.ErrorResponse
// @Failure 404 {object} domain.ErrorResponse
// @Failure 409 {object} domain.ErrorResponse "Job already started"
// @Failure 422 {object} domain.ErrorResponse "Unavailable or duplicate employee"
// @Security BearerAuth
// @Router /jobs/{id}/crew [put]
func (h *JobHandler) AssignCrew(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		respondWithError(w, http.StatusBadRequest, "Invalid job ID format")
		return
	}

	var req domain.AssignCrewRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondWithError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	if err := validate.Struct(req); err != nil {
		respondValidationError(w, err)
		return
	}

	job, err := h.jobService.AssignCrew(r.Context(), id, &req)
	if err != nil {
		handleServiceError(w, h.logger, err, "assign crew")
		return
	}

	respondJSON(w, http.StatusOK, job)
}

// Timer godoc
// @Summary Get timer reading
// @Description One observation of the running timer for a job in progress
// @Tags Jobs
// @Produce json
// @Param id path string true "Job ID" format(uuid)
// @Success 200 {object} domain.TimerReadingDTO
// @Failure 400 {object} domain.ErrorResponse
// @Failure 404 {object} domain.ErrorResponse
// @Failure 409 {object} domain.ErrorResponse "Job is not in progress"
// @Security BearerAuth
// @Router /jobs/{id}/timer [get]
func (h *JobHandler) Timer(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		respondWithError(w, http.StatusBadRequest, "Invalid job ID format")
		return
	}

	reading, err := h.jobService.TimerReading(r.Context(), id)
	if err != nil {
		handleServiceError(w, h.logger, err, "get timer reading")
		return
	}

	respondJSON(w, http.StatusOK, reading)
}
