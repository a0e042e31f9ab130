package domain

import "github.com/google/uuid"

// CommentType classifies a comment on a sub-phase
type CommentType string

const (
	CommentTypeGeneral  CommentType = "general"
	CommentTypeProgress CommentType = "progress"
	CommentTypeIssue    CommentType = "issue"
	CommentTypeHandover CommentType = "handover"
)

// Comment represents a comment on a sub-phase. Comments are append-only;
// there are no update or delete paths.
type Comment struct {
	BaseModel
	SubPhaseID  uuid.UUID   `gorm:"type:uuid;not null;index:idx_comments_sub_phase_id" json:"sub_phase_id"`
	CreatedBy   uuid.UUID   `gorm:"type:uuid;not null;index:idx_comments_created_by" json:"created_by"`
	Content     string      `gorm:"type:text;not null" json:"content"`
	CommentType CommentType `gorm:"type:varchar(30);not null;default:'general'" json:"comment_type"`
	IsInternal  bool        `gorm:"type:boolean;not null;default:false" json:"is_internal"`
	// Attachments are polymorphic, loaded via repository
	Attachments []Attachment `gorm:"-" json:"attachments,omitempty"`
}

// TableName specifies the table name for Comment
func (Comment) TableName() string {
	return "comments"
}
