package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"project-delivery-api/internal/dto"
	"project-delivery-api/internal/response"
	"project-delivery-api/internal/service"
)

// SubPhaseHandler handles sub-phase requests, including the quick actions
type SubPhaseHandler struct {
	subPhaseService service.SubPhaseService
}

// NewSubPhaseHandler creates a new SubPhaseHandler
func NewSubPhaseHandler(subPhaseService service.SubPhaseService) *SubPhaseHandler {
	return &SubPhaseHandler{subPhaseService: subPhaseService}
}

// GetSubPhase godoc
// @Summary      Get sub-phase detail
// @Description  Returns the full sub-phase detail: checklist items, attachments,
// @Description  comments, approvals and the status log history
// @Tags         sub-phases
// @Produce      json
// @Param        subPhaseId path string true "Sub-phase ID (UUID)"
// @Success      200 {object} response.SuccessResponse{data=dto.SubPhaseDetailResponse}
// @Failure      400 {object} response.ErrorResponse "Invalid sub-phase ID"
// @Failure      404 {object} response.ErrorResponse "Sub-phase not found"
// @Failure      500 {object} response.ErrorResponse "Server error"
// @Router       /sub-phases/{subPhaseId} [get]
func (h *SubPhaseHandler) GetSubPhase(c *gin.Context) {
	subPhaseID, ok := pathUUID(c, "subPhaseId")
	if !ok {
		return
	}
	ctx, ok := requestContext(c)
	if !ok {
		return
	}

	detail, err := h.subPhaseService.GetSubPhase(ctx, subPhaseID)
	if err != nil {
		handleServiceError(c, err)
		return
	}
	response.SendSuccess(c, http.StatusOK, detail)
}

// StartSubPhase godoc
// @Summary      Start a sub-phase
// @Description  Moves a not-started sub-phase to in_progress. Requires an
// @Description  assignee; notes are optional and default to a standard entry.
// @Tags         sub-phases
// @Accept       json
// @Produce      json
// @Param        subPhaseId path string true "Sub-phase ID (UUID)"
// @Param        request body dto.StartSubPhaseRequest false "Optional notes"
// @Success      200 {object} response.SuccessResponse{data=dto.SubPhaseResponse}
// @Failure      400 {object} response.ErrorResponse "No assignee or invalid request"
// @Failure      409 {object} response.ErrorResponse "Illegal status transition"
// @Failure      500 {object} response.ErrorResponse "Server error"
// @Router       /sub-phases/{subPhaseId}/start [post]
func (h *SubPhaseHandler) StartSubPhase(c *gin.Context) {
	subPhaseID, ok := pathUUID(c, "subPhaseId")
	if !ok {
		return
	}

	// Notes are optional for start; an empty body is accepted
	var req dto.StartSubPhaseRequest
	if c.Request.ContentLength > 0 {
		if err := c.ShouldBindJSON(&req); err != nil {
			response.SendError(c, http.StatusBadRequest, response.ErrCodeValidation, "Invalid request body")
			return
		}
	}

	ctx, ok := requestContext(c)
	if !ok {
		return
	}

	result, err := h.subPhaseService.StartSubPhase(ctx, subPhaseID, &req)
	if err != nil {
		handleServiceError(c, err)
		return
	}
	response.SendSuccess(c, http.StatusOK, result)
}

// HoldSubPhase godoc
// @Summary      Put a sub-phase on hold
// @Description  Moves an in-progress sub-phase to on_hold. Notes explaining the
// @Description  hold are mandatory.
// @Tags         sub-phases
// @Accept       json
// @Produce      json
// @Param        subPhaseId path string true "Sub-phase ID (UUID)"
// @Param        request body dto.HoldSubPhaseRequest true "Hold notes"
// @Success      200 {object} response.SuccessResponse{data=dto.SubPhaseResponse}
// @Failure      400 {object} response.ErrorResponse "Missing notes"
// @Failure      409 {object} response.ErrorResponse "Illegal status transition"
// @Failure      500 {object} response.ErrorResponse "Server error"
// @Router       /sub-phases/{subPhaseId}/hold [post]
func (h *SubPhaseHandler) HoldSubPhase(c *gin.Context) {
	subPhaseID, ok := pathUUID(c, "subPhaseId")
	if !ok {
		return
	}

	var req dto.HoldSubPhaseRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.SendError(c, http.StatusBadRequest, response.ErrCodeValidation, "Notes are required")
		return
	}

	ctx, ok := requestContext(c)
	if !ok {
		return
	}

	result, err := h.subPhaseService.HoldSubPhase(ctx, subPhaseID, &req)
	if err != nil {
		handleServiceError(c, err)
		return
	}
	response.SendSuccess(c, http.StatusOK, result)
}

// ResumeSubPhase godoc
// @Summary      Resume a held sub-phase
// @Description  Moves an on-hold sub-phase back to in_progress. Notes are
// @Description  mandatory. The original actual start date is preserved.
// @Tags         sub-phases
// @Accept       json
// @Produce      json
// @Param        subPhaseId path string true "Sub-phase ID (UUID)"
// @Param        request body dto.ResumeSubPhaseRequest true "Resume notes"
// @Success      200 {object} response.SuccessResponse{data=dto.SubPhaseResponse}
// @Failure      400 {object} response.ErrorResponse "Missing notes"
// @Failure      409 {object} response.ErrorResponse "Illegal status transition"
// @Failure      500 {object} response.ErrorResponse "Server error"
// @Router       /sub-phases/{subPhaseId}/resume [post]
func (h *SubPhaseHandler) ResumeSubPhase(c *gin.Context) {
	subPhaseID, ok := pathUUID(c, "subPhaseId")
	if !ok {
		return
	}

	var req dto.ResumeSubPhaseRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.SendError(c, http.StatusBadRequest, response.ErrCodeValidation, "Notes are required")
		return
	}

	ctx, ok := requestContext(c)
	if !ok {
		return
	}

	result, err := h.subPhaseService.ResumeSubPhase(ctx, subPhaseID, &req)
	if err != nil {
		handleServiceError(c, err)
		return
	}
	response.SendSuccess(c, http.StatusOK, result)
}

// CompleteSubPhase godoc
// @Summary      Complete a sub-phase
// @Description  Moves an in-progress sub-phase to completed. Completion notes
// @Description  are mandatory; the actual end date is stamped once.
// @Tags         sub-phases
// @Accept       json
// @Produce      json
// @Param        subPhaseId path string true "Sub-phase ID (UUID)"
// @Param        request body dto.CompleteSubPhaseRequest true "Completion notes"
// @Success      200 {object} response.SuccessResponse{data=dto.SubPhaseResponse}
// @Failure      400 {object} response.ErrorResponse "Missing notes"
// @Failure      409 {object} response.ErrorResponse "Illegal status transition"
// @Failure      500 {object} response.ErrorResponse "Server error"
// @Router       /sub-phases/{subPhaseId}/complete [post]
func (h *SubPhaseHandler) CompleteSubPhase(c *gin.Context) {
	subPhaseID, ok := pathUUID(c, "subPhaseId")
	if !ok {
		return
	}

	var req dto.CompleteSubPhaseRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.SendError(c, http.StatusBadRequest, response.ErrCodeValidation, "Notes are required")
		return
	}

	ctx, ok := requestContext(c)
	if !ok {
		return
	}

	result, err := h.subPhaseService.CompleteSubPhase(ctx, subPhaseID, &req)
	if err != nil {
		handleServiceError(c, err)
		return
	}
	response.SendSuccess(c, http.StatusOK, result)
}

// SkipSubPhase godoc
// @Summary      Skip a sub-phase
// @Description  Moves a skippable sub-phase to skipped from any non-terminal
// @Description  status. A reason is mandatory and recorded as the log notes.
// @Tags         sub-phases
// @Accept       json
// @Produce      json
// @Param        subPhaseId path string true "Sub-phase ID (UUID)"
// @Param        request body dto.SkipSubPhaseRequest true "Skip reason"
// @Success      200 {object} response.SuccessResponse{data=dto.SubPhaseResponse}
// @Failure      400 {object} response.ErrorResponse "Missing reason or not skippable"
// @Failure      409 {object} response.ErrorResponse "Illegal status transition"
// @Failure      500 {object} response.ErrorResponse "Server error"
// @Router       /sub-phases/{subPhaseId}/skip [post]
func (h *SubPhaseHandler) SkipSubPhase(c *gin.Context) {
	subPhaseID, ok := pathUUID(c, "subPhaseId")
	if !ok {
		return
	}

	var req dto.SkipSubPhaseRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.SendError(c, http.StatusBadRequest, response.ErrCodeValidation, "Reason is required")
		return
	}

	ctx, ok := requestContext(c)
	if !ok {
		return
	}

	result, err := h.subPhaseService.SkipSubPhase(ctx, subPhaseID, &req)
	if err != nil {
		handleServiceError(c, err)
		return
	}
	response.SendSuccess(c, http.StatusOK, result)
}

// UpdateSubPhase godoc
// @Summary      Update a sub-phase
// @Description  Patches sub-phase fields. A status change bundled into the
// @Description  edit requires statusChangeNotes and goes through the same
// @Description  transition rules as the quick actions.
// @Tags         sub-phases
// @Accept       json
// @Produce      json
// @Param        subPhaseId path string true "Sub-phase ID (UUID)"
// @Param        request body dto.UpdateSubPhaseRequest true "Sub-phase patch"
// @Success      200 {object} response.SuccessResponse{data=dto.SubPhaseResponse}
// @Failure      400 {object} response.ErrorResponse "Invalid request"
// @Failure      404 {object} response.ErrorResponse "Sub-phase not found"
// @Failure      409 {object} response.ErrorResponse "Illegal status transition"
// @Failure      500 {object} response.ErrorResponse "Server error"
// @Router       /sub-phases/{subPhaseId} [patch]
func (h *SubPhaseHandler) UpdateSubPhase(c *gin.Context) {
	subPhaseID, ok := pathUUID(c, "subPhaseId")
	if !ok {
		return
	}

	var req dto.UpdateSubPhaseRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.SendError(c, http.StatusBadRequest, response.ErrCodeValidation, "Invalid request body")
		return
	}

	ctx, ok := requestContext(c)
	if !ok {
		return
	}

	result, err := h.subPhaseService.UpdateSubPhase(ctx, subPhaseID, &req)
	if err != nil {
		handleServiceError(c, err)
		return
	}
	response.SendSuccess(c, http.StatusOK, result)
}

// GetStatusLogs godoc
// @Summary      Get a sub-phase's status history
// @Description  Returns the immutable audit trail of status transitions in
// @Description  chronological order
// @Tags         sub-phases
// @Produce      json
// @Param        subPhaseId path string true "Sub-phase ID (UUID)"
// @Success      200 {object} response.SuccessResponse{data=[]dto.StatusLogResponse}
// @Failure      400 {object} response.ErrorResponse "Invalid sub-phase ID"
// @Failure      404 {object} response.ErrorResponse "Sub-phase not found"
// @Failure      500 {object} response.ErrorResponse "Server error"
// @Router       /sub-phases/{subPhaseId}/status-logs [get]
func (h *SubPhaseHandler) GetStatusLogs(c *gin.Context) {
	subPhaseID, ok := pathUUID(c, "subPhaseId")
	if !ok {
		return
	}
	ctx, ok := requestContext(c)
	if !ok {
		return
	}

	logs, err := h.subPhaseService.GetStatusLogs(ctx, subPhaseID)
	if err != nil {
		handleServiceError(c, err)
		return
	}
	response.SendSuccess(c, http.StatusOK, logs)
}
