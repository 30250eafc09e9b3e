package handler

import (
	"errors"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/gorilla/websocket"
	"github.com/mkamranaziz70-del/Boxxpliot-App/internal/service"
	"go.uber.org/zap"
)

const timerFeedInterval = time.Second

// JobTimerFeedHandler streams live timer readings for a running job
// over a websocket, one reading per second. The feed closes itself
// when the job leaves IN_PROGRESS.
type JobTimerFeedHandler struct {
	jobService *service.JobService
	upgrader   websocket.Upgrader
	logger     *zap.Logger
}

func NewJobTimerFeedHandler(jobService *service.JobService, logger *zap.Logger) *JobTimerFeedHandler {
	return &JobTimerFeedHandler{
		jobService: jobService,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
			// Browser clients connect from the app origin; the bearer
			// token in the subprotocol already gates access.
			CheckOrigin: func(r *http.Request) bool { return true },
		},
		logger: logger,
	}
}

// Stream godoc
// @Summary Stream timer readings
// @Description Websocket feed of timer readings for a job in progress, one JSON frame per second
// @Tags Jobs
// @Param id path string true "Job ID" format(uuid)
// @Success 101 "Switching Protocols"
// @Failure 400 {object} domain.ErrorResponse
// @Failure 404 {object} domain.ErrorResponse
// @Failure 409 {object} domain.ErrorResponse "Job is not in progress"
// @Security BearerAuth
// @Router /jobs/{id}/timer/feed [get]
func (h *JobTimerFeedHandler) Stream(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		respondWithError(w, http.StatusBadRequest, "Invalid job ID format")
		return
	}

	// Reject before upgrading so the client gets a proper HTTP status
	// when the job does not exist or is not running.
	reading, err := h.jobService.TimerReading(r.Context(), id)
	if err != nil {
		handleServiceError(w, h.logger, err, "stream timer readings")
		return
	}

	conn, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		h.logger.Warn("websocket upgrade failed", zap.Error(err))
		return
	}
	defer conn.Close()

	if err := conn.WriteJSON(reading); err != nil {
		return
	}

	ticker := time.NewTicker(timerFeedInterval)
	defer ticker.Stop()

	for {
		select {
		case <-r.Context().Done():
			return
		case <-ticker.C:
			reading, err := h.jobService.TimerReading(r.Context(), id)
			if err != nil {
				// The job ended or was auto-ended under us. Tell the
				// client why and close cleanly.
				code := websocket.CloseNormalClosure
				if !errors.Is(err, service.ErrInvalidState) && !errors.Is(err, service.ErrNotFound) {
					code = websocket.CloseInternalServerErr
				}
				msg := websocket.FormatCloseMessage(code, "timer stopped")
				_ = conn.WriteControl(websocket.CloseMessage, msg, time.Now().Add(time.Second))
				return
			}

			if err := conn.WriteJSON(reading); err != nil {
				return
			}
		}
	}
}
