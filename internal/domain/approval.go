package domain

import (
	"time"

	"github.com/google/uuid"
)

// ApprovalStatus represents the status of an approval request
type ApprovalStatus string

const (
	ApprovalStatusPending           ApprovalStatus = "pending"
	ApprovalStatusApproved          ApprovalStatus = "approved"
	ApprovalStatusRejected          ApprovalStatus = "rejected"
	ApprovalStatusRevisionRequested ApprovalStatus = "revision_requested"
)

// ValidApprovalDecisions lists the statuses a responder may set
var ValidApprovalDecisions = []ApprovalStatus{
	ApprovalStatusApproved,
	ApprovalStatusRejected,
	ApprovalStatusRevisionRequested,
}

// IsDecision reports whether the status is a valid response decision
func (s ApprovalStatus) IsDecision() bool {
	for _, v := range ValidApprovalDecisions {
		if s == v {
			return true
		}
	}
	return false
}

// Approval represents a request/response record gating sub-phases of type
// approval. A sub-phase accumulates a history of approvals; a new request
// after rejection or revision creates a new record, never overwrites one.
type Approval struct {
	BaseModel
	SubPhaseID    uuid.UUID      `gorm:"type:uuid;not null;index:idx_approvals_sub_phase_id" json:"sub_phase_id"`
	Status        ApprovalStatus `gorm:"type:varchar(30);not null;default:'pending';index:idx_approvals_status" json:"status"`
	RequestedBy   uuid.UUID      `gorm:"type:uuid;not null" json:"requested_by"`
	RequestedAt   time.Time      `gorm:"type:timestamp;not null" json:"requested_at"`
	RequestNotes  string         `gorm:"type:text" json:"request_notes"`
	ApproverID    *uuid.UUID     `gorm:"type:uuid" json:"approver_id,omitempty"`
	RespondedAt   *time.Time     `gorm:"type:timestamp" json:"responded_at,omitempty"`
	ResponseNotes string         `gorm:"type:text" json:"response_notes,omitempty"`
}

// TableName specifies the table name for Approval
func (Approval) TableName() string {
	return "approvals"
}

// IsPending reports whether the approval is awaiting a response
func (a *Approval) IsPending() bool {
	return a.Status == ApprovalStatusPending
}
