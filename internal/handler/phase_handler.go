package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"project-delivery-api/internal/dto"
	"project-delivery-api/internal/response"
	"project-delivery-api/internal/service"
)

// PhaseHandler handles phase-level requests
type PhaseHandler struct {
	phaseService service.PhaseService
}

// NewPhaseHandler creates a new PhaseHandler
func NewPhaseHandler(phaseService service.PhaseService) *PhaseHandler {
	return &PhaseHandler{phaseService: phaseService}
}

// GetProjectPhases godoc
// @Summary      List a project's phases
// @Description  Returns the project's full phase tree ordered by display order,
// @Description  with per-phase progress and the overall project progress
// @Tags         phases
// @Produce      json
// @Param        projectId path string true "Project ID (UUID)"
// @Success      200 {object} response.SuccessResponse{data=dto.ProjectPhasesResponse}
// @Failure      400 {object} response.ErrorResponse "Invalid project ID"
// @Failure      401 {object} response.ErrorResponse "Unauthorized"
// @Failure      500 {object} response.ErrorResponse "Server error"
// @Router       /projects/{projectId}/phases [get]
func (h *PhaseHandler) GetProjectPhases(c *gin.Context) {
	projectID, ok := pathUUID(c, "projectId")
	if !ok {
		return
	}
	ctx, ok := requestContext(c)
	if !ok {
		return
	}

	result, err := h.phaseService.GetProjectPhases(ctx, projectID)
	if err != nil {
		handleServiceError(c, err)
		return
	}
	response.SendSuccess(c, http.StatusOK, result)
}

// GetPhase godoc
// @Summary      Get a phase
// @Description  Returns one phase with its sub-phases and status history
// @Tags         phases
// @Produce      json
// @Param        phaseId path string true "Phase ID (UUID)"
// @Success      200 {object} response.SuccessResponse{data=dto.PhaseResponse}
// @Failure      400 {object} response.ErrorResponse "Invalid phase ID"
// @Failure      404 {object} response.ErrorResponse "Phase not found"
// @Failure      500 {object} response.ErrorResponse "Server error"
// @Router       /phases/{phaseId} [get]
func (h *PhaseHandler) GetPhase(c *gin.Context) {
	phaseID, ok := pathUUID(c, "phaseId")
	if !ok {
		return
	}
	ctx, ok := requestContext(c)
	if !ok {
		return
	}

	phase, err := h.phaseService.GetPhase(ctx, phaseID)
	if err != nil {
		handleServiceError(c, err)
		return
	}
	response.SendSuccess(c, http.StatusOK, phase)
}

// UpdatePhase godoc
// @Summary      Update a phase
// @Description  Patches phase fields. A status change bundled into the edit
// @Description  requires statusChangeNotes and produces one status log entry.
// @Tags         phases
// @Accept       json
// @Produce      json
// @Param        phaseId path string true "Phase ID (UUID)"
// @Param        request body dto.UpdatePhaseRequest true "Phase patch"
// @Success      200 {object} response.SuccessResponse{data=dto.PhaseResponse}
// @Failure      400 {object} response.ErrorResponse "Invalid request"
// @Failure      404 {object} response.ErrorResponse "Phase not found"
// @Failure      409 {object} response.ErrorResponse "Illegal status transition"
// @Failure      500 {object} response.ErrorResponse "Server error"
// @Router       /phases/{phaseId} [patch]
func (h *PhaseHandler) UpdatePhase(c *gin.Context) {
	phaseID, ok := pathUUID(c, "phaseId")
	if !ok {
		return
	}

	var req dto.UpdatePhaseRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.SendError(c, http.StatusBadRequest, response.ErrCodeValidation, "Invalid request body")
		return
	}

	ctx, ok := requestContext(c)
	if !ok {
		return
	}

	phase, err := h.phaseService.UpdatePhase(ctx, phaseID, &req)
	if err != nil {
		handleServiceError(c, err)
		return
	}
	response.SendSuccess(c, http.StatusOK, phase)
}
