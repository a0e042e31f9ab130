package domain

import (
	"time"

	"github.com/google/uuid"
)

// ChecklistItem represents a named boolean task within a sub-phase.
// Checklist completion feeds the progress aggregator but never drives the
// sub-phase status machine.
type ChecklistItem struct {
	BaseModel
	SubPhaseID   uuid.UUID  `gorm:"type:uuid;not null;index:idx_checklist_items_sub_phase_id" json:"sub_phase_id"`
	Name         string     `gorm:"type:varchar(255);not null" json:"name"`
	DisplayOrder int        `gorm:"type:int;not null;default:0" json:"display_order"`
	IsCompleted  bool       `gorm:"type:boolean;not null;default:false" json:"is_completed"`
	CompletedAt  *time.Time `gorm:"type:timestamp" json:"completed_at,omitempty"`
	CompletedBy  *uuid.UUID `gorm:"type:uuid" json:"completed_by,omitempty"`
}

// TableName specifies the table name for ChecklistItem
func (ChecklistItem) TableName() string {
	return "checklist_items"
}
