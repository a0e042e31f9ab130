package service

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"project-delivery-api/internal/client"
	"project-delivery-api/internal/domain"
	"project-delivery-api/internal/dto"
	"project-delivery-api/internal/metrics"
	"project-delivery-api/internal/realtime"
	"project-delivery-api/internal/repository"
	"project-delivery-api/internal/response"
)

// ApprovalService defines the interface for the approval request/response
// flow on approval-type sub-phases. Records are append-only history: a new
// request after a rejection creates a new record, and a decision never
// completes the sub-phase by itself.
type ApprovalService interface {
	RequestApproval(ctx context.Context, subPhaseID uuid.UUID, req *dto.RequestApprovalRequest) (*dto.ApprovalResponse, error)
	RespondApproval(ctx context.Context, approvalID uuid.UUID, req *dto.RespondApprovalRequest) (*dto.ApprovalResponse, error)
}

// approvalServiceImpl is the implementation of ApprovalService
type approvalServiceImpl struct {
	approvalRepo repository.ApprovalRepository
	subPhaseRepo repository.SubPhaseRepository
	phaseRepo    repository.PhaseRepository
	hub          *realtime.Hub
	notifier     client.NotificationClient
	metrics      *metrics.Metrics
	logger       *zap.Logger
}

// NewApprovalService creates a new instance of ApprovalService
func NewApprovalService(
	approvalRepo repository.ApprovalRepository,
	subPhaseRepo repository.SubPhaseRepository,
	phaseRepo repository.PhaseRepository,
	hub *realtime.Hub,
	notifier client.NotificationClient,
	m *metrics.Metrics,
	logger *zap.Logger,
) ApprovalService {
	return &approvalServiceImpl{
		approvalRepo: approvalRepo,
		subPhaseRepo: subPhaseRepo,
		phaseRepo:    phaseRepo,
		hub:          hub,
		notifier:     notifier,
		metrics:      m,
		logger:       logger,
	}
}

// RequestApproval opens a new pending approval on an approval-type sub-phase
func (s *approvalServiceImpl) RequestApproval(ctx context.Context, subPhaseID uuid.UUID, req *dto.RequestApprovalRequest) (*dto.ApprovalResponse, error) {
	actor, err := actorFromContext(ctx)
	if err != nil {
		return nil, err
	}

	sp, err := s.subPhaseRepo.FindByID(ctx, subPhaseID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, response.NewAppError(response.ErrCodeNotFound, "Sub-phase not found", "")
		}
		return nil, response.NewAppError(response.ErrCodeInternal, "Failed to load sub-phase", err.Error())
	}

	if sp.ActionType != domain.ActionTypeApproval {
		return nil, response.NewAppError(response.ErrCodeValidation, "Approvals are only available on approval-type sub-phases", "")
	}

	pending, err := s.approvalRepo.FindPendingBySubPhaseID(ctx, subPhaseID)
	if err != nil {
		return nil, response.NewAppError(response.ErrCodeInternal, "Failed to check pending approvals", err.Error())
	}
	if len(pending) > 0 {
		return nil, response.NewAppError(response.ErrCodeAlreadyExists, "An approval request is already pending on this sub-phase", "")
	}

	approval := &domain.Approval{
		SubPhaseID:   subPhaseID,
		Status:       domain.ApprovalStatusPending,
		RequestedBy:  actor,
		RequestedAt:  time.Now().UTC(),
		RequestNotes: req.RequestNotes,
	}
	if err := s.approvalRepo.Create(ctx, approval); err != nil {
		return nil, response.NewAppError(response.ErrCodeInternal, "Failed to create approval", err.Error())
	}

	s.metrics.IncrementApprovalRequested()
	s.broadcast(ctx, sp, approval)
	s.notify(ctx, client.NotificationApprovalRequested, actor, sp.AssignedTo, sp, approval)

	resp := dto.ToApprovalResponse(approval)
	return &resp, nil
}

// RespondApproval records a decision on a pending approval. Responding to an
// already-decided approval is a conflict; the record is immutable once set.
func (s *approvalServiceImpl) RespondApproval(ctx context.Context, approvalID uuid.UUID, req *dto.RespondApprovalRequest) (*dto.ApprovalResponse, error) {
	actor, err := actorFromContext(ctx)
	if err != nil {
		return nil, err
	}

	approval, err := s.approvalRepo.FindByID(ctx, approvalID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, response.NewAppError(response.ErrCodeNotFound, "Approval not found", "")
		}
		return nil, response.NewAppError(response.ErrCodeInternal, "Failed to load approval", err.Error())
	}

	if !approval.IsPending() {
		return nil, response.NewAppError(response.ErrCodeConflict, "This approval has already been decided", string(approval.Status))
	}

	decision := domain.ApprovalStatus(req.Decision)
	if !decision.IsDecision() {
		return nil, response.NewAppError(response.ErrCodeValidation, "Unknown approval decision", req.Decision)
	}

	now := time.Now().UTC()
	approval.Status = decision
	approval.ApproverID = &actor
	approval.RespondedAt = &now
	approval.ResponseNotes = req.ResponseNotes

	if err := s.approvalRepo.Update(ctx, approval); err != nil {
		return nil, response.NewAppError(response.ErrCodeInternal, "Failed to update approval", err.Error())
	}

	s.metrics.RecordApprovalDecision(string(decision))

	sp, err := s.subPhaseRepo.FindByID(ctx, approval.SubPhaseID)
	if err == nil {
		s.broadcast(ctx, sp, approval)
		s.notify(ctx, client.NotificationApprovalResponded, actor, &approval.RequestedBy, sp, approval)
	}

	resp := dto.ToApprovalResponse(approval)
	return &resp, nil
}

// broadcast pushes the approval change to clients watching the project
func (s *approvalServiceImpl) broadcast(ctx context.Context, sp *domain.SubPhase, approval *domain.Approval) {
	if s.hub == nil {
		return
	}
	phase, err := s.phaseRepo.FindByID(ctx, sp.PhaseID)
	if err != nil {
		return
	}
	s.hub.Broadcast(phase.ProjectID, realtime.Event{
		Type:       realtime.EventApprovalUpdated,
		EntityType: string(domain.LogEntityTypeSubPhase),
		EntityID:   sp.ID.String(),
		Payload: map[string]interface{}{
			"approvalId":     approval.ID.String(),
			"approvalStatus": string(approval.Status),
		},
	})
}

// notify fires a best-effort approval notification
func (s *approvalServiceImpl) notify(ctx context.Context, kind client.NotificationType, actor uuid.UUID, target *uuid.UUID, sp *domain.SubPhase, approval *domain.Approval) {
	if s.notifier == nil || target == nil || *target == actor {
		return
	}
	err := s.notifier.SendNotification(ctx, client.NotificationEvent{
		Type:         kind,
		ActorID:      actor,
		TargetUserID: *target,
		ResourceType: "approval",
		ResourceID:   approval.ID,
		ResourceName: sp.Name,
		Metadata: map[string]interface{}{
			"subPhaseId": sp.ID.String(),
			"status":     string(approval.Status),
		},
	})
	if err != nil {
		s.logger.Warn("Failed to send approval notification", zap.Error(err))
	}
}
