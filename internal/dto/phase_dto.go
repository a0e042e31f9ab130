package dto

import (
	"encoding/json"
	"time"

	"github.com/google/uuid"

	"project-delivery-api/internal/domain"
)

// UpdatePhaseRequest represents the manual edit path for a phase. All fields
// are optional; when status is present and differs from the current status,
// statusChangeNotes must be non-empty.
// @Description Request body for patching a phase. Status changes require statusChangeNotes.
type UpdatePhaseRequest struct {
	Name              *string     `json:"name" binding:"omitempty,min=1,max=255"`
	Status            *string     `json:"status" binding:"omitempty"`
	StatusChangeNotes string      `json:"statusChangeNotes,omitempty"`
	AssignedTo        *uuid.UUID  `json:"assignedTo,omitempty"`
	AssigneeIDs       []uuid.UUID `json:"assigneeIds,omitempty" binding:"omitempty,dive,uuid"`
	PlannedStartDate  *time.Time  `json:"plannedStartDate,omitempty"`
	PlannedEndDate    *time.Time  `json:"plannedEndDate,omitempty"`
	Notes             *string     `json:"notes,omitempty"`
}

// PhaseResponse represents a phase with derived progress
type PhaseResponse struct {
	ID                 uuid.UUID           `json:"phaseId" example:"539167fb-b599-41ba-9ead-344a6d0b3a2f"`
	ProjectID          uuid.UUID           `json:"projectId"`
	Name               string              `json:"name" example:"Site Survey"`
	DisplayOrder       int                 `json:"displayOrder"`
	Status             string              `json:"status" example:"in_progress"`
	ProgressPercentage int                 `json:"progressPercentage" example:"67"`
	AssignedTo         *uuid.UUID          `json:"assignedTo,omitempty"`
	AssigneeIDs        []uuid.UUID         `json:"assigneeIds"`
	PlannedStartDate   *time.Time          `json:"plannedStartDate,omitempty"`
	PlannedEndDate     *time.Time          `json:"plannedEndDate,omitempty"`
	ActualStartDate    *time.Time          `json:"actualStartDate,omitempty"`
	ActualEndDate      *time.Time          `json:"actualEndDate,omitempty"`
	Notes              string              `json:"notes"`
	SubPhases          []SubPhaseResponse  `json:"subPhases,omitempty"`
	StatusLogs         []StatusLogResponse `json:"statusLogs,omitempty"`
	CreatedAt          time.Time           `json:"createdAt"`
	UpdatedAt          time.Time           `json:"updatedAt"`
}

// ProjectPhasesResponse represents a project's full phase tree with the
// overall progress derived as the unweighted mean of phase percentages
type ProjectPhasesResponse struct {
	ProjectID       uuid.UUID       `json:"projectId"`
	OverallProgress int             `json:"overallProgress" example:"84"`
	Phases          []PhaseResponse `json:"phases"`
}

// ToPhaseResponse converts a domain phase to its response representation
func ToPhaseResponse(p *domain.Phase) PhaseResponse {
	resp := PhaseResponse{
		ID:                 p.ID,
		ProjectID:          p.ProjectID,
		Name:               p.Name,
		DisplayOrder:       p.DisplayOrder,
		Status:             string(p.Status),
		ProgressPercentage: p.ProgressPercentage,
		AssignedTo:         p.AssignedTo,
		AssigneeIDs:        decodeAssigneeIDs(p.AssigneeIDs),
		PlannedStartDate:   p.PlannedStartDate,
		PlannedEndDate:     p.PlannedEndDate,
		ActualStartDate:    p.ActualStartDate,
		ActualEndDate:      p.ActualEndDate,
		Notes:              p.Notes,
		CreatedAt:          p.CreatedAt,
		UpdatedAt:          p.UpdatedAt,
	}
	for i := range p.SubPhases {
		resp.SubPhases = append(resp.SubPhases, ToSubPhaseResponse(&p.SubPhases[i]))
	}
	for _, entry := range p.StatusLogs {
		resp.StatusLogs = append(resp.StatusLogs, ToStatusLogResponse(&entry))
	}
	return resp
}

// FromPhaseResponse rebuilds a domain phase, with its sub-phases, from its
// wire representation
func FromPhaseResponse(resp *PhaseResponse) domain.Phase {
	p := domain.Phase{
		BaseModel: domain.BaseModel{
			ID:        resp.ID,
			CreatedAt: resp.CreatedAt,
			UpdatedAt: resp.UpdatedAt,
		},
		ProjectID:          resp.ProjectID,
		Name:               resp.Name,
		DisplayOrder:       resp.DisplayOrder,
		Status:             domain.PhaseStatus(resp.Status),
		ProgressPercentage: resp.ProgressPercentage,
		AssignedTo:         resp.AssignedTo,
		AssigneeIDs:        encodeAssigneeIDs(resp.AssigneeIDs),
		PlannedStartDate:   resp.PlannedStartDate,
		PlannedEndDate:     resp.PlannedEndDate,
		ActualStartDate:    resp.ActualStartDate,
		ActualEndDate:      resp.ActualEndDate,
		Notes:              resp.Notes,
	}
	for i := range resp.SubPhases {
		p.SubPhases = append(p.SubPhases, FromSubPhaseResponse(&resp.SubPhases[i]))
	}
	return p
}

func encodeAssigneeIDs(ids []uuid.UUID) []byte {
	if ids == nil {
		ids = []uuid.UUID{}
	}
	raw, _ := json.Marshal(ids)
	return raw
}

func decodeAssigneeIDs(raw []byte) []uuid.UUID {
	ids := []uuid.UUID{}
	if len(raw) == 0 {
		return ids
	}
	// Malformed stored JSON degrades to an empty list rather than an error
	_ = json.Unmarshal(raw, &ids)
	return ids
}
