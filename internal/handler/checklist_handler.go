package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"project-delivery-api/internal/dto"
	"project-delivery-api/internal/response"
	"project-delivery-api/internal/service"
)

// ChecklistHandler handles checklist item requests
type ChecklistHandler struct {
	checklistService service.ChecklistService
}

// NewChecklistHandler creates a new ChecklistHandler
func NewChecklistHandler(checklistService service.ChecklistService) *ChecklistHandler {
	return &ChecklistHandler{checklistService: checklistService}
}

// ToggleItem godoc
// @Summary      Toggle a checklist item
// @Description  Sets a checklist item's completion state and returns the
// @Description  owning sub-phase with its recomputed progress. Toggling never
// @Description  changes the sub-phase status and produces no status log entry.
// @Tags         checklist
// @Accept       json
// @Produce      json
// @Param        subPhaseId path string true "Sub-phase ID (UUID)"
// @Param        itemId path string true "Checklist item ID (UUID)"
// @Param        request body dto.ToggleChecklistItemRequest true "Completion state"
// @Success      200 {object} response.SuccessResponse{data=dto.SubPhaseResponse}
// @Failure      400 {object} response.ErrorResponse "Invalid request"
// @Failure      404 {object} response.ErrorResponse "Item not found on this sub-phase"
// @Failure      500 {object} response.ErrorResponse "Server error"
// @Router       /sub-phases/{subPhaseId}/checklist/{itemId}/toggle [patch]
func (h *ChecklistHandler) ToggleItem(c *gin.Context) {
	subPhaseID, ok := pathUUID(c, "subPhaseId")
	if !ok {
		return
	}
	itemID, ok := pathUUID(c, "itemId")
	if !ok {
		return
	}

	var req dto.ToggleChecklistItemRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.SendError(c, http.StatusBadRequest, response.ErrCodeValidation, "isCompleted is required")
		return
	}

	ctx, ok := requestContext(c)
	if !ok {
		return
	}

	result, err := h.checklistService.ToggleItem(ctx, subPhaseID, itemID, &req)
	if err != nil {
		handleServiceError(c, err)
		return
	}
	response.SendSuccess(c, http.StatusOK, result)
}
