package dto

import (
	"time"

	"github.com/google/uuid"

	"project-delivery-api/internal/domain"
)

// ToggleChecklistItemRequest represents the request to set a checklist
// item's completion state
type ToggleChecklistItemRequest struct {
	IsCompleted *bool `json:"isCompleted" binding:"required"`
}

// ChecklistItemResponse represents a checklist item
type ChecklistItemResponse struct {
	ID           uuid.UUID  `json:"itemId"`
	SubPhaseID   uuid.UUID  `json:"subPhaseId"`
	Name         string     `json:"name" example:"Verify cable routing"`
	DisplayOrder int        `json:"displayOrder"`
	IsCompleted  bool       `json:"isCompleted"`
	CompletedAt  *time.Time `json:"completedAt,omitempty"`
	CompletedBy  *uuid.UUID `json:"completedBy,omitempty"`
}

// ToChecklistItemResponse converts a domain checklist item
func ToChecklistItemResponse(item *domain.ChecklistItem) ChecklistItemResponse {
	return ChecklistItemResponse{
		ID:           item.ID,
		SubPhaseID:   item.SubPhaseID,
		Name:         item.Name,
		DisplayOrder: item.DisplayOrder,
		IsCompleted:  item.IsCompleted,
		CompletedAt:  item.CompletedAt,
		CompletedBy:  item.CompletedBy,
	}
}
