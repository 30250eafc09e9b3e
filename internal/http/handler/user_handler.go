package handler

import (
	"net/http"

	"github.com/mkamranaziz70-del/Boxxpliot-App/internal/domain"
	"github.com/mkamranaziz70-del/Boxxpliot-App/internal/service"
	"go.uber.org/zap"
)

type UserHandler struct {
	userService *service.UserService
	logger      *zap.Logger
}

func NewUserHandler(userService *service.UserService, logger *zap.Logger) *UserHandler {
	return &UserHandler{
		userService: userService,
		logger:      logger,
	}
}

// ListEmployees godoc
// @Summary List employees
// @Description Get the company's active users for crew assignment
// @Tags Users
// @Produce json
// @Param role query string false "Filter by role" Enums(OWNER, EMPLOYEE)
// @Param available query bool false "Only available employees"
// @Success 200 {array} domain.UserDTO
// @Failure 400 {object} domain.ErrorResponse
// @Failure 401 {object} domain.ErrorResponse
// @Security BearerAuth
// @Router /users [get]
func (h *UserHandler) ListEmployees(w http.ResponseWriter, r *http.Request) {
	var role *domain.UserRole
	if raw := r.URL.Query().Get("role"); raw != "" {
		parsed := domain.UserRole(raw)
		role = &parsed
	}
	availableOnly := r.URL.Query().Get("available") == "true"

	users, err := h.userService.ListEmployees(r.Context(), role, availableOnly)
	if err != nil {
		handleServiceError(w, h.logger, err, "list employees")
		return
	}

	respondJSON(w, http.StatusOK, users)
}
