package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"project-delivery-api/internal/dto"
	"project-delivery-api/internal/response"
	"project-delivery-api/internal/service"
)

// ApprovalHandler handles approval requests and decisions
type ApprovalHandler struct {
	approvalService service.ApprovalService
}

// NewApprovalHandler creates a new ApprovalHandler
func NewApprovalHandler(approvalService service.ApprovalService) *ApprovalHandler {
	return &ApprovalHandler{approvalService: approvalService}
}

// RequestApproval godoc
// @Summary      Request approval on a sub-phase
// @Description  Opens a new pending approval on an approval-type sub-phase.
// @Description  Only one pending approval may exist at a time; a new request
// @Description  after rejection appends to the history.
// @Tags         approvals
// @Accept       json
// @Produce      json
// @Param        subPhaseId path string true "Sub-phase ID (UUID)"
// @Param        request body dto.RequestApprovalRequest true "Request notes"
// @Success      201 {object} response.SuccessResponse{data=dto.ApprovalResponse}
// @Failure      400 {object} response.ErrorResponse "Not an approval sub-phase or missing notes"
// @Failure      404 {object} response.ErrorResponse "Sub-phase not found"
// @Failure      409 {object} response.ErrorResponse "An approval is already pending"
// @Failure      500 {object} response.ErrorResponse "Server error"
// @Router       /sub-phases/{subPhaseId}/approvals [post]
func (h *ApprovalHandler) RequestApproval(c *gin.Context) {
	subPhaseID, ok := pathUUID(c, "subPhaseId")
	if !ok {
		return
	}

	var req dto.RequestApprovalRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.SendError(c, http.StatusBadRequest, response.ErrCodeValidation, "Request notes are required")
		return
	}

	ctx, ok := requestContext(c)
	if !ok {
		return
	}

	approval, err := h.approvalService.RequestApproval(ctx, subPhaseID, &req)
	if err != nil {
		handleServiceError(c, err)
		return
	}
	response.SendSuccess(c, http.StatusCreated, approval)
}

// RespondApproval godoc
// @Summary      Decide a pending approval
// @Description  Records an approve, reject or revision-requested decision on a
// @Description  pending approval. The decision never completes the sub-phase
// @Description  by itself; completion stays an explicit action.
// @Tags         approvals
// @Accept       json
// @Produce      json
// @Param        approvalId path string true "Approval ID (UUID)"
// @Param        request body dto.RespondApprovalRequest true "Decision and notes"
// @Success      200 {object} response.SuccessResponse{data=dto.ApprovalResponse}
// @Failure      400 {object} response.ErrorResponse "Unknown decision or missing notes"
// @Failure      404 {object} response.ErrorResponse "Approval not found"
// @Failure      409 {object} response.ErrorResponse "Approval already decided"
// @Failure      500 {object} response.ErrorResponse "Server error"
// @Router       /approvals/{approvalId} [patch]
func (h *ApprovalHandler) RespondApproval(c *gin.Context) {
	approvalID, ok := pathUUID(c, "approvalId")
	if !ok {
		return
	}

	var req dto.RespondApprovalRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.SendError(c, http.StatusBadRequest, response.ErrCodeValidation, "Decision and response notes are required")
		return
	}

	ctx, ok := requestContext(c)
	if !ok {
		return
	}

	approval, err := h.approvalService.RespondApproval(ctx, approvalID, &req)
	if err != nil {
		handleServiceError(c, err)
		return
	}
	response.SendSuccess(c, http.StatusOK, approval)
}
