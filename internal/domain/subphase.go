package domain

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
)

// SubPhaseStatus represents the lifecycle status of a sub-phase
type SubPhaseStatus string

const (
	SubPhaseStatusNotStarted SubPhaseStatus = "not_started"
	SubPhaseStatusInProgress SubPhaseStatus = "in_progress"
	SubPhaseStatusOnHold     SubPhaseStatus = "on_hold"
	SubPhaseStatusCompleted  SubPhaseStatus = "completed"
	SubPhaseStatusSkipped    SubPhaseStatus = "skipped"
)

// ValidSubPhaseStatuses lists every accepted sub-phase status value
var ValidSubPhaseStatuses = []SubPhaseStatus{
	SubPhaseStatusNotStarted,
	SubPhaseStatusInProgress,
	SubPhaseStatusOnHold,
	SubPhaseStatusCompleted,
	SubPhaseStatusSkipped,
}

// IsValid reports whether the status is one of the closed sub-phase vocabulary
func (s SubPhaseStatus) IsValid() bool {
	for _, v := range ValidSubPhaseStatuses {
		if s == v {
			return true
		}
	}
	return false
}

// IsTerminal reports whether no further transitions are exposed from this status
func (s SubPhaseStatus) IsTerminal() bool {
	return s == SubPhaseStatusCompleted || s == SubPhaseStatusSkipped
}

// ActionType classifies what kind of evidence or action a sub-phase requires
type ActionType string

const (
	ActionTypeManual     ActionType = "manual"
	ActionTypeApproval   ActionType = "approval"
	ActionTypeUpload     ActionType = "upload"
	ActionTypeAssignment ActionType = "assignment"
	ActionTypeChecklist  ActionType = "checklist"
	ActionTypeForm       ActionType = "form"
	ActionTypeMeeting    ActionType = "meeting"
	ActionTypeHandover   ActionType = "handover"
)

// ValidActionTypes lists every accepted action type value
var ValidActionTypes = []ActionType{
	ActionTypeManual,
	ActionTypeApproval,
	ActionTypeUpload,
	ActionTypeAssignment,
	ActionTypeChecklist,
	ActionTypeForm,
	ActionTypeMeeting,
	ActionTypeHandover,
}

// IsValid reports whether the action type is one of the closed vocabulary
func (a ActionType) IsValid() bool {
	for _, v := range ValidActionTypes {
		if a == v {
			return true
		}
	}
	return false
}

// SubPhase represents a unit of work nested under a Phase. It carries the
// actionable status machine; every status mutation goes through the workflow
// validator and produces exactly one StatusLogEntry.
type SubPhase struct {
	BaseModel
	PhaseID            uuid.UUID      `gorm:"type:uuid;not null;index:idx_sub_phases_phase_id;uniqueIndex:uq_sub_phases_phase_order,priority:1" json:"phase_id"`
	Name               string         `gorm:"type:varchar(255);not null" json:"name"`
	DisplayOrder       int            `gorm:"type:int;not null;default:0;uniqueIndex:uq_sub_phases_phase_order,priority:2" json:"display_order"`
	Status             SubPhaseStatus `gorm:"type:varchar(30);not null;default:'not_started';index:idx_sub_phases_status" json:"status"`
	ActionType         ActionType     `gorm:"type:varchar(30);not null;default:'manual'" json:"action_type"`
	ProgressPercentage int            `gorm:"type:int;not null;default:0" json:"progress_percentage"`
	Instructions       string         `gorm:"type:text" json:"instructions"`
	AssignedTo         *uuid.UUID     `gorm:"type:uuid;index:idx_sub_phases_assigned_to" json:"assigned_to"`
	DueDate            *time.Time     `gorm:"type:timestamp;index:idx_sub_phases_due_date" json:"due_date,omitempty"`
	PlannedStartDate   *time.Time     `gorm:"type:timestamp" json:"planned_start_date,omitempty"`
	PlannedEndDate     *time.Time     `gorm:"type:timestamp" json:"planned_end_date,omitempty"`
	ActualStartDate    *time.Time     `gorm:"type:timestamp" json:"actual_start_date,omitempty"`
	ActualEndDate      *time.Time     `gorm:"type:timestamp" json:"actual_end_date,omitempty"`
	CanSkip            *bool          `gorm:"type:boolean;not null;default:true" json:"can_skip"`
	SkipReason         string         `gorm:"type:text" json:"skip_reason,omitempty"`
	FormData           datatypes.JSON `gorm:"type:jsonb" json:"form_data,omitempty"`
	ChecklistItems     []ChecklistItem `gorm:"foreignKey:SubPhaseID;constraint:OnDelete:CASCADE" json:"checklist_items,omitempty"`
	Comments           []Comment       `gorm:"foreignKey:SubPhaseID;constraint:OnDelete:CASCADE" json:"comments,omitempty"`
	Approvals          []Approval      `gorm:"foreignKey:SubPhaseID;constraint:OnDelete:CASCADE" json:"approvals,omitempty"`
	// Attachments and StatusLogs are polymorphic, loaded via repository
	Attachments []Attachment     `gorm:"-" json:"attachments,omitempty"`
	StatusLogs  []StatusLogEntry `gorm:"-" json:"status_logs,omitempty"`
}

// TableName specifies the table name for SubPhase
func (SubPhase) TableName() string {
	return "sub_phases"
}

// HasAssignee reports whether the sub-phase has an assignee set
func (sp *SubPhase) HasAssignee() bool {
	return sp.AssignedTo != nil && *sp.AssignedTo != uuid.Nil
}

// Skippable reports whether the sub-phase allows the skipped status.
// CanSkip defaults to true unless explicitly disabled.
func (sp *SubPhase) Skippable() bool {
	return sp.CanSkip == nil || *sp.CanSkip
}

// IsCompleted reports whether the sub-phase reached the completed status
func (sp *SubPhase) IsCompleted() bool {
	return sp.Status == SubPhaseStatusCompleted
}

// IsSkipped reports whether the sub-phase was skipped
func (sp *SubPhase) IsSkipped() bool {
	return sp.Status == SubPhaseStatusSkipped
}
