package domain

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
)

// PhaseStatus represents the lifecycle status of a phase
type PhaseStatus string

const (
	PhaseStatusNotStarted PhaseStatus = "not_started"
	PhaseStatusInProgress PhaseStatus = "in_progress"
	PhaseStatusOnHold     PhaseStatus = "on_hold"
	PhaseStatusCompleted  PhaseStatus = "completed"
	PhaseStatusBlocked    PhaseStatus = "blocked"
	PhaseStatusCancelled  PhaseStatus = "cancelled"
)

// ValidPhaseStatuses lists every accepted phase status value
var ValidPhaseStatuses = []PhaseStatus{
	PhaseStatusNotStarted,
	PhaseStatusInProgress,
	PhaseStatusOnHold,
	PhaseStatusCompleted,
	PhaseStatusBlocked,
	PhaseStatusCancelled,
}

// IsValid reports whether the status is one of the closed phase vocabulary
func (s PhaseStatus) IsValid() bool {
	for _, v := range ValidPhaseStatuses {
		if s == v {
			return true
		}
	}
	return false
}

// IsTerminal reports whether no further transitions are exposed from this status
func (s PhaseStatus) IsTerminal() bool {
	return s == PhaseStatusCompleted || s == PhaseStatusCancelled
}

// Phase represents a top-level ordered stage of a project's delivery workflow.
// Status and progress are derived from the owned sub-phases; they are persisted
// denormalized for list endpoints but recomputed before every write.
type Phase struct {
	BaseModel
	ProjectID          uuid.UUID      `gorm:"type:uuid;not null;index:idx_phases_project_id;uniqueIndex:uq_phases_project_order,priority:1" json:"project_id"`
	Name               string         `gorm:"type:varchar(255);not null" json:"name"`
	DisplayOrder       int            `gorm:"type:int;not null;default:0;uniqueIndex:uq_phases_project_order,priority:2" json:"display_order"`
	Status             PhaseStatus    `gorm:"type:varchar(30);not null;default:'not_started';index:idx_phases_status" json:"status"`
	ProgressPercentage int            `gorm:"type:int;not null;default:0" json:"progress_percentage"`
	AssignedTo         *uuid.UUID     `gorm:"type:uuid;index:idx_phases_assigned_to" json:"assigned_to"`
	AssigneeIDs        datatypes.JSON `gorm:"type:jsonb" json:"assignee_ids"`
	PlannedStartDate   *time.Time     `gorm:"type:timestamp" json:"planned_start_date,omitempty"`
	PlannedEndDate     *time.Time     `gorm:"type:timestamp" json:"planned_end_date,omitempty"`
	ActualStartDate    *time.Time     `gorm:"type:timestamp" json:"actual_start_date,omitempty"`
	ActualEndDate      *time.Time     `gorm:"type:timestamp" json:"actual_end_date,omitempty"`
	Notes              string         `gorm:"type:text" json:"notes"`
	SubPhases          []SubPhase     `gorm:"foreignKey:PhaseID;constraint:OnDelete:CASCADE" json:"sub_phases,omitempty"`
	// StatusLogs are polymorphic (shared with SubPhase), loaded via repository
	StatusLogs []StatusLogEntry `gorm:"-" json:"status_logs,omitempty"`
}

// TableName specifies the table name for Phase
func (Phase) TableName() string {
	return "phases"
}

// HasAssignee reports whether the phase has a primary or additional assignee
func (p *Phase) HasAssignee() bool {
	if p.AssignedTo != nil && *p.AssignedTo != uuid.Nil {
		return true
	}
	return len(p.AssigneeIDs) > 2 // "[]" is an empty jsonb list
}
