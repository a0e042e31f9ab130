package dto

import (
	"time"

	"github.com/google/uuid"

	"project-delivery-api/internal/domain"
)

// PresignedURLRequest represents the request for a presigned upload URL
type PresignedURLRequest struct {
	FileName       string `json:"fileName" binding:"required"`
	ContentType    string `json:"contentType" binding:"required"`
	FileSize       int64  `json:"fileSize" binding:"required,min=1"`
	AttachmentType string `json:"attachmentType" binding:"omitempty,oneof=site_photo drawing document other"`
}

// PresignedURLResponse carries the presigned PUT URL and the TEMP attachment
// created for it. The attachment is confirmed when its owning entity is saved.
type PresignedURLResponse struct {
	AttachmentID uuid.UUID `json:"attachmentId"`
	UploadURL    string    `json:"uploadUrl"`
	FileKey      string    `json:"fileKey"`
	ExpiresAt    time.Time `json:"expiresAt"`
}

// ConfirmAttachmentsRequest links previously uploaded TEMP attachments to a
// sub-phase
type ConfirmAttachmentsRequest struct {
	AttachmentIDs []uuid.UUID `json:"attachmentIds" binding:"required,min=1,dive,uuid"`
}

// AttachmentResponse represents attachment metadata
type AttachmentResponse struct {
	ID             uuid.UUID  `json:"attachmentId"`
	EntityType     string     `json:"entityType"`
	EntityID       *uuid.UUID `json:"entityId,omitempty"`
	Status         string     `json:"status"`
	AttachmentType string     `json:"attachmentType"`
	FileName       string     `json:"fileName"`
	FileURL        string     `json:"fileUrl"`
	FileSize       int64      `json:"fileSize"`
	ContentType    string     `json:"contentType"`
	UploadedBy     uuid.UUID  `json:"uploadedBy"`
	UploadedAt     time.Time  `json:"uploadedAt"`
}

// ToAttachmentResponse converts a domain attachment
func ToAttachmentResponse(a *domain.Attachment) AttachmentResponse {
	return AttachmentResponse{
		ID:             a.ID,
		EntityType:     string(a.EntityType),
		EntityID:       a.EntityID,
		Status:         string(a.Status),
		AttachmentType: string(a.AttachmentType),
		FileName:       a.FileName,
		FileURL:        a.FileURL,
		FileSize:       a.FileSize,
		ContentType:    a.ContentType,
		UploadedBy:     a.UploadedBy,
		UploadedAt:     a.CreatedAt,
	}
}
