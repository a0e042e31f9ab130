package dto

import (
	"time"

	"github.com/google/uuid"

	"project-delivery-api/internal/domain"
)

// RequestApprovalRequest represents the request to open a new approval on a
// sub-phase. A new request is permitted after rejection or revision; it
// appends to the history instead of mutating the prior record.
type RequestApprovalRequest struct {
	RequestNotes string `json:"requestNotes" binding:"required"`
}

// RespondApprovalRequest represents a decision on a pending approval
type RespondApprovalRequest struct {
	Decision      string `json:"decision" binding:"required,oneof=approved rejected revision_requested"`
	ResponseNotes string `json:"responseNotes" binding:"required"`
}

// ApprovalResponse represents an approval record
type ApprovalResponse struct {
	ID            uuid.UUID  `json:"approvalId"`
	SubPhaseID    uuid.UUID  `json:"subPhaseId"`
	Status        string     `json:"status" example:"pending"`
	RequestedBy   uuid.UUID  `json:"requestedBy"`
	RequestedAt   time.Time  `json:"requestedAt"`
	RequestNotes  string     `json:"requestNotes"`
	ApproverID    *uuid.UUID `json:"approverId,omitempty"`
	RespondedAt   *time.Time `json:"respondedAt,omitempty"`
	ResponseNotes string     `json:"responseNotes,omitempty"`
}

// ToApprovalResponse converts a domain approval
func ToApprovalResponse(a *domain.Approval) ApprovalResponse {
	return ApprovalResponse{
		ID:            a.ID,
		SubPhaseID:    a.SubPhaseID,
		Status:        string(a.Status),
		RequestedBy:   a.RequestedBy,
		RequestedAt:   a.RequestedAt,
		RequestNotes:  a.RequestNotes,
		ApproverID:    a.ApproverID,
		RespondedAt:   a.RespondedAt,
		ResponseNotes: a.ResponseNotes,
	}
}
