package dto

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"

	"project-delivery-api/internal/domain"
)

// StartSubPhaseRequest represents the quick action that moves a sub-phase
// from not_started to in_progress. Notes are optional; a default justification
// is recorded when omitted.
type StartSubPhaseRequest struct {
	Notes string `json:"notes,omitempty"`
}

// HoldSubPhaseRequest represents the quick action that puts an in-progress
// sub-phase on hold. Notes are mandatory.
type HoldSubPhaseRequest struct {
	Notes string `json:"notes" binding:"required"`
}

// ResumeSubPhaseRequest represents the quick action that resumes an on-hold
// sub-phase. Notes are mandatory.
type ResumeSubPhaseRequest struct {
	Notes string `json:"notes" binding:"required"`
}

// CompleteSubPhaseRequest represents the quick action that completes a
// sub-phase. Completion notes are mandatory.
type CompleteSubPhaseRequest struct {
	Notes string `json:"notes" binding:"required"`
}

// SkipSubPhaseRequest represents the quick action that skips a sub-phase.
// A reason is mandatory and is stored as both skip_reason and the log notes.
type SkipSubPhaseRequest struct {
	Reason string `json:"reason" binding:"required"`
}

// UpdateSubPhaseRequest represents the manual edit path for a sub-phase.
// When status is present and differs from the current status,
// statusChangeNotes must be non-empty.
// @Description Request body for patching a sub-phase. Status changes require statusChangeNotes.
type UpdateSubPhaseRequest struct {
	Name              *string         `json:"name" binding:"omitempty,min=1,max=255"`
	Status            *string         `json:"status" binding:"omitempty"`
	StatusChangeNotes string          `json:"statusChangeNotes,omitempty"`
	SkipReason        string          `json:"skipReason,omitempty"`
	AssignedTo        *uuid.UUID      `json:"assignedTo,omitempty"`
	DueDate           *time.Time      `json:"dueDate,omitempty"`
	PlannedStartDate  *time.Time      `json:"plannedStartDate,omitempty"`
	PlannedEndDate    *time.Time      `json:"plannedEndDate,omitempty"`
	Instructions      *string         `json:"instructions,omitempty"`
	FormData          *datatypes.JSON `json:"formData,omitempty"`
}

// SubPhaseResponse represents a sub-phase in list contexts
type SubPhaseResponse struct {
	ID                 uuid.UUID           `json:"subPhaseId"`
	PhaseID            uuid.UUID           `json:"phaseId"`
	Name               string              `json:"name" example:"Electrical rough-in"`
	DisplayOrder       int                 `json:"displayOrder"`
	Status             string              `json:"status" example:"in_progress"`
	ActionType         string              `json:"actionType" example:"checklist"`
	ProgressPercentage int                 `json:"progressPercentage"`
	Instructions       string              `json:"instructions"`
	AssignedTo         *uuid.UUID          `json:"assignedTo,omitempty"`
	DueDate            *time.Time          `json:"dueDate,omitempty"`
	PlannedStartDate   *time.Time          `json:"plannedStartDate,omitempty"`
	PlannedEndDate     *time.Time          `json:"plannedEndDate,omitempty"`
	ActualStartDate    *time.Time          `json:"actualStartDate,omitempty"`
	ActualEndDate      *time.Time          `json:"actualEndDate,omitempty"`
	CanSkip            bool                `json:"canSkip"`
	SkipReason         string              `json:"skipReason,omitempty"`
	FormData           datatypes.JSON      `json:"formData,omitempty"`
	CreatedAt          time.Time           `json:"createdAt"`
	UpdatedAt          time.Time           `json:"updatedAt"`
}

// SubPhaseDetailResponse represents the full sub-phase detail including all
// owned collections, as consumed by the detail panel and the refetch path
type SubPhaseDetailResponse struct {
	SubPhaseResponse
	ChecklistItems []ChecklistItemResponse `json:"checklistItems"`
	Attachments    []AttachmentResponse    `json:"attachments"`
	Comments       []CommentResponse       `json:"comments"`
	Approvals      []ApprovalResponse      `json:"approvals"`
	StatusLogs     []StatusLogResponse     `json:"statusLogs"`
}

// ToSubPhaseResponse converts a domain sub-phase to its list representation
func ToSubPhaseResponse(sp *domain.SubPhase) SubPhaseResponse {
	return SubPhaseResponse{
		ID:                 sp.ID,
		PhaseID:            sp.PhaseID,
		Name:               sp.Name,
		DisplayOrder:       sp.DisplayOrder,
		Status:             string(sp.Status),
		ActionType:         string(sp.ActionType),
		ProgressPercentage: sp.ProgressPercentage,
		Instructions:       sp.Instructions,
		AssignedTo:         sp.AssignedTo,
		DueDate:            sp.DueDate,
		PlannedStartDate:   sp.PlannedStartDate,
		PlannedEndDate:     sp.PlannedEndDate,
		ActualStartDate:    sp.ActualStartDate,
		ActualEndDate:      sp.ActualEndDate,
		CanSkip:            sp.Skippable(),
		SkipReason:         sp.SkipReason,
		FormData:           sp.FormData,
		CreatedAt:          sp.CreatedAt,
		UpdatedAt:          sp.UpdatedAt,
	}
}

// FromSubPhaseResponse rebuilds a domain sub-phase from its wire
// representation. Used on the consuming side of the workflow API, where the
// server payload is the source of truth for local state.
func FromSubPhaseResponse(resp *SubPhaseResponse) domain.SubPhase {
	canSkip := resp.CanSkip
	return domain.SubPhase{
		BaseModel: domain.BaseModel{
			ID:        resp.ID,
			CreatedAt: resp.CreatedAt,
			UpdatedAt: resp.UpdatedAt,
		},
		PhaseID:            resp.PhaseID,
		Name:               resp.Name,
		DisplayOrder:       resp.DisplayOrder,
		Status:             domain.SubPhaseStatus(resp.Status),
		ActionType:         domain.ActionType(resp.ActionType),
		ProgressPercentage: resp.ProgressPercentage,
		Instructions:       resp.Instructions,
		AssignedTo:         resp.AssignedTo,
		DueDate:            resp.DueDate,
		PlannedStartDate:   resp.PlannedStartDate,
		PlannedEndDate:     resp.PlannedEndDate,
		ActualStartDate:    resp.ActualStartDate,
		ActualEndDate:      resp.ActualEndDate,
		CanSkip:            &canSkip,
		SkipReason:         resp.SkipReason,
		FormData:           resp.FormData,
	}
}

// ToSubPhaseDetailResponse converts a domain sub-phase with loaded
// collections into the full detail representation
func ToSubPhaseDetailResponse(sp *domain.SubPhase) *SubPhaseDetailResponse {
	detail := &SubPhaseDetailResponse{
		SubPhaseResponse: ToSubPhaseResponse(sp),
		ChecklistItems:   []ChecklistItemResponse{},
		Attachments:      []AttachmentResponse{},
		Comments:         []CommentResponse{},
		Approvals:        []ApprovalResponse{},
		StatusLogs:       []StatusLogResponse{},
	}
	for i := range sp.ChecklistItems {
		detail.ChecklistItems = append(detail.ChecklistItems, ToChecklistItemResponse(&sp.ChecklistItems[i]))
	}
	for i := range sp.Attachments {
		detail.Attachments = append(detail.Attachments, ToAttachmentResponse(&sp.Attachments[i]))
	}
	for i := range sp.Comments {
		detail.Comments = append(detail.Comments, ToCommentResponse(&sp.Comments[i]))
	}
	for i := range sp.Approvals {
		detail.Approvals = append(detail.Approvals, ToApprovalResponse(&sp.Approvals[i]))
	}
	for i := range sp.StatusLogs {
		detail.StatusLogs = append(detail.StatusLogs, ToStatusLogResponse(&sp.StatusLogs[i]))
	}
	return detail
}
