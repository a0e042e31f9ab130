package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"project-delivery-api/internal/dto"
	"project-delivery-api/internal/response"
	"project-delivery-api/internal/service"
)

// CommentHandler handles sub-phase comment requests
type CommentHandler struct {
	commentService service.CommentService
}

// NewCommentHandler creates a new CommentHandler
func NewCommentHandler(commentService service.CommentService) *CommentHandler {
	return &CommentHandler{commentService: commentService}
}

// CreateComment godoc
// @Summary      Post a comment on a sub-phase
// @Description  Appends a comment. Comments are immutable; there is no update
// @Description  or delete. The sub-phase assignee is notified unless they are
// @Description  the author.
// @Tags         comments
// @Accept       json
// @Produce      json
// @Param        subPhaseId path string true "Sub-phase ID (UUID)"
// @Param        request body dto.CreateCommentRequest true "Comment content"
// @Success      201 {object} response.SuccessResponse{data=dto.CommentResponse}
// @Failure      400 {object} response.ErrorResponse "Invalid request"
// @Failure      404 {object} response.ErrorResponse "Sub-phase not found"
// @Failure      500 {object} response.ErrorResponse "Server error"
// @Router       /sub-phases/{subPhaseId}/comments [post]
func (h *CommentHandler) CreateComment(c *gin.Context) {
	subPhaseID, ok := pathUUID(c, "subPhaseId")
	if !ok {
		return
	}

	var req dto.CreateCommentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.SendError(c, http.StatusBadRequest, response.ErrCodeValidation, "Comment content is required")
		return
	}

	ctx, ok := requestContext(c)
	if !ok {
		return
	}

	comment, err := h.commentService.CreateComment(ctx, subPhaseID, &req)
	if err != nil {
		handleServiceError(c, err)
		return
	}
	response.SendSuccess(c, http.StatusCreated, comment)
}

// GetComments godoc
// @Summary      List a sub-phase's comments
// @Description  Returns all comments in chronological order
// @Tags         comments
// @Produce      json
// @Param        subPhaseId path string true "Sub-phase ID (UUID)"
// @Success      200 {object} response.SuccessResponse{data=[]dto.CommentResponse}
// @Failure      400 {object} response.ErrorResponse "Invalid sub-phase ID"
// @Failure      404 {object} response.ErrorResponse "Sub-phase not found"
// @Failure      500 {object} response.ErrorResponse "Server error"
// @Router       /sub-phases/{subPhaseId}/comments [get]
func (h *CommentHandler) GetComments(c *gin.Context) {
	subPhaseID, ok := pathUUID(c, "subPhaseId")
	if !ok {
		return
	}
	ctx, ok := requestContext(c)
	if !ok {
		return
	}

	comments, err := h.commentService.GetComments(ctx, subPhaseID)
	if err != nil {
		handleServiceError(c, err)
		return
	}
	response.SendSuccess(c, http.StatusOK, comments)
}
