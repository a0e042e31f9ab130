// Package handler provides HTTP request handlers for the API.
package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"project-delivery-api/internal/dto"
	"project-delivery-api/internal/response"
	"project-delivery-api/internal/service"
)

// AttachmentHandler handles attachment upload and lifecycle requests
type AttachmentHandler struct {
	attachmentService service.AttachmentService
}

// NewAttachmentHandler creates a new AttachmentHandler
func NewAttachmentHandler(attachmentService service.AttachmentService) *AttachmentHandler {
	return &AttachmentHandler{attachmentService: attachmentService}
}

// GeneratePresignedURL godoc
// @Summary      Generate a presigned upload URL
// @Description  Validates file metadata, creates a TEMP attachment record and
// @Description  returns a presigned S3 PUT URL. The attachment stays TEMP
// @Description  until confirmed; unconfirmed uploads are cleaned up after
// @Description  their TTL expires.
// @Tags         attachments
// @Accept       json
// @Produce      json
// @Param        subPhaseId path string true "Sub-phase ID (UUID)"
// @Param        request body dto.PresignedURLRequest true "File metadata"
// @Success      200 {object} response.SuccessResponse{data=dto.PresignedURLResponse}
// @Failure      400 {object} response.ErrorResponse "Invalid metadata"
// @Failure      413 {object} response.ErrorResponse "File exceeds the size limit"
// @Failure      415 {object} response.ErrorResponse "Unsupported content type"
// @Failure      500 {object} response.ErrorResponse "Server error"
// @Router       /sub-phases/{subPhaseId}/attachments/presigned-url [post]
func (h *AttachmentHandler) GeneratePresignedURL(c *gin.Context) {
	subPhaseID, ok := pathUUID(c, "subPhaseId")
	if !ok {
		return
	}

	var req dto.PresignedURLRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.SendError(c, http.StatusBadRequest, response.ErrCodeValidation, "Invalid request body")
		return
	}

	ctx, ok := requestContext(c)
	if !ok {
		return
	}

	result, err := h.attachmentService.GeneratePresignedURL(ctx, subPhaseID, &req)
	if err != nil {
		handleServiceError(c, err)
		return
	}
	response.SendSuccess(c, http.StatusOK, result)
}

// ConfirmAttachments godoc
// @Summary      Confirm uploaded attachments
// @Description  Links previously uploaded TEMP attachments to the sub-phase
// @Description  and marks them CONFIRMED. Duplicate IDs are collapsed.
// @Tags         attachments
// @Accept       json
// @Produce      json
// @Param        subPhaseId path string true "Sub-phase ID (UUID)"
// @Param        request body dto.ConfirmAttachmentsRequest true "Attachment IDs"
// @Success      200 {object} response.SuccessResponse{data=[]dto.AttachmentResponse}
// @Failure      400 {object} response.ErrorResponse "Invalid request"
// @Failure      404 {object} response.ErrorResponse "Sub-phase or attachment not found"
// @Failure      500 {object} response.ErrorResponse "Server error"
// @Router       /sub-phases/{subPhaseId}/attachments/confirm [post]
func (h *AttachmentHandler) ConfirmAttachments(c *gin.Context) {
	subPhaseID, ok := pathUUID(c, "subPhaseId")
	if !ok {
		return
	}

	var req dto.ConfirmAttachmentsRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.SendError(c, http.StatusBadRequest, response.ErrCodeValidation, "Attachment IDs are required")
		return
	}

	ctx, ok := requestContext(c)
	if !ok {
		return
	}

	result, err := h.attachmentService.ConfirmAttachments(ctx, subPhaseID, &req)
	if err != nil {
		handleServiceError(c, err)
		return
	}
	response.SendSuccess(c, http.StatusOK, result)
}

// DeleteAttachment godoc
// @Summary      Delete an attachment
// @Description  Removes the attachment record and its stored object. The
// @Description  record is removed even when the storage delete fails.
// @Tags         attachments
// @Produce      json
// @Param        attachmentId path string true "Attachment ID (UUID)"
// @Success      200 {object} response.SuccessResponse{data=map[string]string}
// @Failure      400 {object} response.ErrorResponse "Invalid attachment ID"
// @Failure      404 {object} response.ErrorResponse "Attachment not found"
// @Failure      500 {object} response.ErrorResponse "Server error"
// @Router       /attachments/{attachmentId} [delete]
func (h *AttachmentHandler) DeleteAttachment(c *gin.Context) {
	attachmentID, ok := pathUUID(c, "attachmentId")
	if !ok {
		return
	}
	ctx, ok := requestContext(c)
	if !ok {
		return
	}

	if err := h.attachmentService.DeleteAttachment(ctx, attachmentID); err != nil {
		handleServiceError(c, err)
		return
	}
	response.SendSuccess(c, http.StatusOK, map[string]string{"message": "Attachment deleted successfully"})
}
