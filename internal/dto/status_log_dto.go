package dto

import (
	"time"

	"github.com/google/uuid"

	"project-delivery-api/internal/domain"
)

// StatusLogResponse represents one immutable audit entry of a status
// transition
type StatusLogResponse struct {
	ID             uuid.UUID `json:"logId"`
	EntityType     string    `json:"entityType"`
	EntityID       uuid.UUID `json:"entityId"`
	PreviousStatus *string   `json:"previousStatus"`
	NewStatus      string    `json:"newStatus" example:"in_progress"`
	Notes          string    `json:"notes" example:"Crew on site, work started"`
	ChangedBy      uuid.UUID `json:"changedBy"`
	ChangedAt      time.Time `json:"changedAt"`
}

// ToStatusLogResponse converts a domain status log entry
func ToStatusLogResponse(e *domain.StatusLogEntry) StatusLogResponse {
	return StatusLogResponse{
		ID:             e.ID,
		EntityType:     string(e.EntityType),
		EntityID:       e.EntityID,
		PreviousStatus: e.PreviousStatus,
		NewStatus:      e.NewStatus,
		Notes:          e.Notes,
		ChangedBy:      e.ChangedBy,
		ChangedAt:      e.ChangedAt,
	}
}
