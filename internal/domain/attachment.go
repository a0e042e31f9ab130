package domain

import (
	"time"

	"github.com/google/uuid"
)

// EntityType represents the type of entity an attachment is associated with
type EntityType string

const (
	EntityTypeSubPhase EntityType = "SUB_PHASE"
	EntityTypePhase    EntityType = "PHASE"
	EntityTypeComment  EntityType = "COMMENT"
)

// AttachmentStatus represents the status of an attachment
type AttachmentStatus string

const (
	AttachmentStatusTemp      AttachmentStatus = "TEMP"      // Uploaded via presigned URL, not yet linked
	AttachmentStatusConfirmed AttachmentStatus = "CONFIRMED" // Linked to its owning entity
)

// AttachmentType classifies the evidence an attachment provides
type AttachmentType string

const (
	AttachmentTypeSitePhoto AttachmentType = "site_photo"
	AttachmentTypeDrawing   AttachmentType = "drawing"
	AttachmentTypeDocument  AttachmentType = "document"
	AttachmentTypeOther     AttachmentType = "other"
)

// Attachment represents a file attached to a sub-phase, phase, or comment.
// This is a polymorphic relationship - EntityID can reference multiple tables,
// so it carries no foreign key constraint. Attachments are purely additive
// evidence and never affect the status machine.
type Attachment struct {
	BaseModel
	EntityType     EntityType       `gorm:"type:varchar(50);not null;index:idx_attachments_entity,priority:1" json:"entity_type"`
	EntityID       *uuid.UUID       `gorm:"type:uuid;index:idx_attachments_entity,priority:2" json:"entity_id"`
	Status         AttachmentStatus `gorm:"type:varchar(20);not null;default:'TEMP';index:idx_attachments_status" json:"status"`
	AttachmentType AttachmentType   `gorm:"type:varchar(30);not null;default:'other'" json:"attachment_type"`
	FileName       string           `gorm:"type:varchar(255);not null" json:"file_name"`
	FileURL        string           `gorm:"type:text;not null" json:"file_url"` // S3 object key, not a full URL
	FileSize       int64            `gorm:"not null" json:"file_size"`
	ContentType    string           `gorm:"type:varchar(100);not null" json:"content_type"`
	UploadedBy     uuid.UUID        `gorm:"type:uuid;not null;index:idx_attachments_uploaded_by" json:"uploaded_by"`
	ExpiresAt      *time.Time       `gorm:"type:timestamp;index:idx_attachments_expires_at" json:"expires_at"`
}

// TableName specifies the table name for Attachment
func (Attachment) TableName() string {
	return "attachments"
}
