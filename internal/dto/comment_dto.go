package dto

import (
	"time"

	"github.com/google/uuid"

	"project-delivery-api/internal/domain"
)

// CreateCommentRequest represents the request to post a comment on a
// sub-phase. Comments are append-only; there is no update or delete.
type CreateCommentRequest struct {
	Content     string `json:"content" binding:"required,min=1"`
	CommentType string `json:"commentType" binding:"omitempty,oneof=general progress issue handover"`
	IsInternal  bool   `json:"isInternal"`
}

// CommentResponse represents a comment
type CommentResponse struct {
	ID          uuid.UUID            `json:"commentId"`
	SubPhaseID  uuid.UUID            `json:"subPhaseId"`
	CreatedBy   uuid.UUID            `json:"createdBy"`
	Content     string               `json:"content"`
	CommentType string               `json:"commentType"`
	IsInternal  bool                 `json:"isInternal"`
	Attachments []AttachmentResponse `json:"attachments"`
	CreatedAt   time.Time            `json:"createdAt"`
}

// ToCommentResponse converts a domain comment
func ToCommentResponse(c *domain.Comment) CommentResponse {
	resp := CommentResponse{
		ID:          c.ID,
		SubPhaseID:  c.SubPhaseID,
		CreatedBy:   c.CreatedBy,
		Content:     c.Content,
		CommentType: string(c.CommentType),
		IsInternal:  c.IsInternal,
		Attachments: []AttachmentResponse{},
		CreatedAt:   c.CreatedAt,
	}
	for i := range c.Attachments {
		resp.Attachments = append(resp.Attachments, ToAttachmentResponse(&c.Attachments[i]))
	}
	return resp
}
