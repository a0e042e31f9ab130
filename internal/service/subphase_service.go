package service

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"project-delivery-api/internal/cache"
	"project-delivery-api/internal/client"
	"project-delivery-api/internal/domain"
	"project-delivery-api/internal/dto"
	"project-delivery-api/internal/metrics"
	"project-delivery-api/internal/realtime"
	"project-delivery-api/internal/repository"
	"project-delivery-api/internal/response"
	"project-delivery-api/internal/workflow"
)

// defaultStartNotes is recorded when a sub-phase is started without an
// explicit note; the audit log never accepts empty notes.
const defaultStartNotes = "Sub-phase started"

// SubPhaseService defines the interface for sub-phase business logic. All
// status changes run through the transition validator and produce exactly one
// status log entry in the same transaction as the state change.
type SubPhaseService interface {
	GetSubPhase(ctx context.Context, subPhaseID uuid.UUID) (*dto.SubPhaseDetailResponse, error)
	StartSubPhase(ctx context.Context, subPhaseID uuid.UUID, req *dto.StartSubPhaseRequest) (*dto.SubPhaseResponse, error)
	HoldSubPhase(ctx context.Context, subPhaseID uuid.UUID, req *dto.HoldSubPhaseRequest) (*dto.SubPhaseResponse, error)
	ResumeSubPhase(ctx context.Context, subPhaseID uuid.UUID, req *dto.ResumeSubPhaseRequest) (*dto.SubPhaseResponse, error)
	CompleteSubPhase(ctx context.Context, subPhaseID uuid.UUID, req *dto.CompleteSubPhaseRequest) (*dto.SubPhaseResponse, error)
	SkipSubPhase(ctx context.Context, subPhaseID uuid.UUID, req *dto.SkipSubPhaseRequest) (*dto.SubPhaseResponse, error)
	UpdateSubPhase(ctx context.Context, subPhaseID uuid.UUID, req *dto.UpdateSubPhaseRequest) (*dto.SubPhaseResponse, error)
	GetStatusLogs(ctx context.Context, subPhaseID uuid.UUID) ([]dto.StatusLogResponse, error)
}

// subPhaseServiceImpl is the implementation of SubPhaseService
type subPhaseServiceImpl struct {
	subPhaseRepo   repository.SubPhaseRepository
	phaseRepo      repository.PhaseRepository
	statusLogRepo  repository.StatusLogRepository
	attachmentRepo repository.AttachmentRepository
	progressCache  cache.ProgressCache
	hub            *realtime.Hub
	notifier       client.NotificationClient
	metrics        *metrics.Metrics
	logger         *zap.Logger
}

// NewSubPhaseService creates a new instance of SubPhaseService
func NewSubPhaseService(
	subPhaseRepo repository.SubPhaseRepository,
	phaseRepo repository.PhaseRepository,
	statusLogRepo repository.StatusLogRepository,
	attachmentRepo repository.AttachmentRepository,
	progressCache cache.ProgressCache,
	hub *realtime.Hub,
	notifier client.NotificationClient,
	m *metrics.Metrics,
	logger *zap.Logger,
) SubPhaseService {
	return &subPhaseServiceImpl{
		subPhaseRepo:   subPhaseRepo,
		phaseRepo:      phaseRepo,
		statusLogRepo:  statusLogRepo,
		attachmentRepo: attachmentRepo,
		progressCache:  progressCache,
		hub:            hub,
		notifier:       notifier,
		metrics:        m,
		logger:         logger,
	}
}

// GetSubPhase returns the full sub-phase detail including attachments and the
// audit timeline
func (s *subPhaseServiceImpl) GetSubPhase(ctx context.Context, subPhaseID uuid.UUID) (*dto.SubPhaseDetailResponse, error) {
	sp, err := s.findSubPhase(ctx, subPhaseID)
	if err != nil {
		return nil, err
	}

	attachments, err := s.attachmentRepo.FindByEntityID(ctx, domain.EntityTypeSubPhase, subPhaseID)
	if err != nil {
		return nil, response.NewAppError(response.ErrCodeInternal, "Failed to load attachments", err.Error())
	}
	sp.Attachments = toDomainAttachments(attachments)

	logs, err := s.statusLogRepo.FindByEntity(ctx, domain.LogEntityTypeSubPhase, subPhaseID)
	if err != nil {
		return nil, response.NewAppError(response.ErrCodeInternal, "Failed to load status logs", err.Error())
	}
	sp.StatusLogs = toDomainStatusLogs(logs)

	return dto.ToSubPhaseDetailResponse(sp), nil
}

// StartSubPhase moves a sub-phase to in_progress. Notes are optional here;
// the audit entry falls back to a default justification.
func (s *subPhaseServiceImpl) StartSubPhase(ctx context.Context, subPhaseID uuid.UUID, req *dto.StartSubPhaseRequest) (*dto.SubPhaseResponse, error) {
	notes := ""
	if req != nil {
		notes = req.Notes
	}
	return s.transition(ctx, subPhaseID, domain.SubPhaseStatusInProgress, workflow.TransitionContext{Notes: notes})
}

// HoldSubPhase puts an in-progress sub-phase on hold
func (s *subPhaseServiceImpl) HoldSubPhase(ctx context.Context, subPhaseID uuid.UUID, req *dto.HoldSubPhaseRequest) (*dto.SubPhaseResponse, error) {
	return s.transition(ctx, subPhaseID, domain.SubPhaseStatusOnHold, workflow.TransitionContext{Notes: req.Notes})
}

// ResumeSubPhase resumes an on-hold sub-phase
func (s *subPhaseServiceImpl) ResumeSubPhase(ctx context.Context, subPhaseID uuid.UUID, req *dto.ResumeSubPhaseRequest) (*dto.SubPhaseResponse, error) {
	return s.transition(ctx, subPhaseID, domain.SubPhaseStatusInProgress, workflow.TransitionContext{Notes: req.Notes})
}

// CompleteSubPhase completes a sub-phase; completion notes are mandatory
func (s *subPhaseServiceImpl) CompleteSubPhase(ctx context.Context, subPhaseID uuid.UUID, req *dto.CompleteSubPhaseRequest) (*dto.SubPhaseResponse, error) {
	return s.transition(ctx, subPhaseID, domain.SubPhaseStatusCompleted, workflow.TransitionContext{Notes: req.Notes})
}

// SkipSubPhase skips a skippable sub-phase; the reason is stored both as the
// skip_reason and the log notes
func (s *subPhaseServiceImpl) SkipSubPhase(ctx context.Context, subPhaseID uuid.UUID, req *dto.SkipSubPhaseRequest) (*dto.SubPhaseResponse, error) {
	return s.transition(ctx, subPhaseID, domain.SubPhaseStatusSkipped, workflow.TransitionContext{SkipReason: req.Reason})
}

// UpdateSubPhase is the manual edit path. Non-status fields are patched
// directly; a status change additionally requires statusChangeNotes and runs
// through the same validator and audit pipeline as the quick actions.
func (s *subPhaseServiceImpl) UpdateSubPhase(ctx context.Context, subPhaseID uuid.UUID, req *dto.UpdateSubPhaseRequest) (*dto.SubPhaseResponse, error) {
	actor, err := actorFromContext(ctx)
	if err != nil {
		return nil, err
	}

	sp, err := s.findSubPhase(ctx, subPhaseID)
	if err != nil {
		return nil, err
	}

	if err := validateDateRange(req.PlannedStartDate, req.PlannedEndDate); err != nil {
		return nil, err
	}

	previousAssignee := sp.AssignedTo
	applySubPhasePatch(sp, req)

	statusChanged := req.Status != nil && *req.Status != string(sp.Status)
	if statusChanged {
		if emptyNotes(req.StatusChangeNotes) {
			return nil, response.NewAppError(response.ErrCodeValidation, "statusChangeNotes is required when changing status", "MISSING_STATUS_NOTES")
		}

		requested := domain.SubPhaseStatus(*req.Status)
		tctx := workflow.TransitionContext{Notes: req.StatusChangeNotes, SkipReason: req.SkipReason, Actor: actor}
		if err := workflow.ValidateSubPhaseTransition(sp, requested, tctx); err != nil {
			return nil, s.validationError(err)
		}

		entry := s.applyTransition(sp, requested, tctx, actor)
		phase, err := s.recomputeOwningPhase(ctx, sp)
		if err != nil {
			return nil, err
		}
		if err := s.subPhaseRepo.SaveTransition(ctx, sp, phase, entry); err != nil {
			return nil, response.NewAppError(response.ErrCodeInternal, "Failed to save sub-phase", err.Error())
		}

		s.metrics.RecordStatusTransition("sub_phase", string(requested))
		s.afterTransition(ctx, phase, entry)
	} else {
		sp.ProgressPercentage = workflow.SubPhaseProgress(sp)
		if err := s.subPhaseRepo.Update(ctx, sp); err != nil {
			return nil, response.NewAppError(response.ErrCodeInternal, "Failed to update sub-phase", err.Error())
		}
	}

	if assigneeChanged(previousAssignee, sp.AssignedTo) {
		s.notifyAssignment(ctx, sp, actor)
	}

	resp := dto.ToSubPhaseResponse(sp)
	return &resp, nil
}

// GetStatusLogs returns the sub-phase audit timeline, newest first
func (s *subPhaseServiceImpl) GetStatusLogs(ctx context.Context, subPhaseID uuid.UUID) ([]dto.StatusLogResponse, error) {
	if _, err := s.findSubPhase(ctx, subPhaseID); err != nil {
		return nil, err
	}

	entries, err := s.statusLogRepo.FindByEntity(ctx, domain.LogEntityTypeSubPhase, subPhaseID)
	if err != nil {
		return nil, response.NewAppError(response.ErrCodeInternal, "Failed to load status logs", err.Error())
	}

	result := make([]dto.StatusLogResponse, 0, len(entries))
	for _, e := range entries {
		result = append(result, dto.ToStatusLogResponse(e))
	}
	return result, nil
}

// transition is the shared core of the quick actions: validate, apply,
// recompute the owning phase, and persist atomically with one log entry.
func (s *subPhaseServiceImpl) transition(ctx context.Context, subPhaseID uuid.UUID, requested domain.SubPhaseStatus, tctx workflow.TransitionContext) (*dto.SubPhaseResponse, error) {
	actor, err := actorFromContext(ctx)
	if err != nil {
		return nil, err
	}
	tctx.Actor = actor

	sp, err := s.findSubPhase(ctx, subPhaseID)
	if err != nil {
		return nil, err
	}

	if err := workflow.ValidateSubPhaseTransition(sp, requested, tctx); err != nil {
		if errors.Is(err, workflow.ErrNoChange) {
			// Idempotent no-op: current state returned, nothing logged
			resp := dto.ToSubPhaseResponse(sp)
			return &resp, nil
		}
		return nil, s.validationError(err)
	}

	entry := s.applyTransition(sp, requested, tctx, actor)
	phase, err := s.recomputeOwningPhase(ctx, sp)
	if err != nil {
		return nil, err
	}

	if err := s.subPhaseRepo.SaveTransition(ctx, sp, phase, entry); err != nil {
		return nil, response.NewAppError(response.ErrCodeInternal, "Failed to save transition", err.Error())
	}

	s.metrics.RecordStatusTransition("sub_phase", string(requested))
	s.afterTransition(ctx, phase, entry)

	resp := dto.ToSubPhaseResponse(sp)
	return &resp, nil
}

// applyTransition mutates the sub-phase for an already-validated transition
// and builds the matching audit entry
func (s *subPhaseServiceImpl) applyTransition(sp *domain.SubPhase, requested domain.SubPhaseStatus, tctx workflow.TransitionContext, actor uuid.UUID) *domain.StatusLogEntry {
	previous := string(sp.Status)
	now := time.Now().UTC()

	sp.Status = requested
	switch requested {
	case domain.SubPhaseStatusInProgress:
		// Set exactly once, on the first start; a resume keeps the original
		if sp.ActualStartDate == nil {
			sp.ActualStartDate = &now
		}
	case domain.SubPhaseStatusCompleted:
		if sp.ActualEndDate == nil {
			sp.ActualEndDate = &now
		}
	case domain.SubPhaseStatusSkipped:
		sp.SkipReason = tctx.SkipReason
	}
	sp.ProgressPercentage = workflow.SubPhaseProgress(sp)

	notes := strings.TrimSpace(tctx.Notes)
	if requested == domain.SubPhaseStatusSkipped {
		notes = strings.TrimSpace(tctx.SkipReason)
	}
	if notes == "" {
		notes = defaultStartNotes
	}

	return &domain.StatusLogEntry{
		EntityType:     domain.LogEntityTypeSubPhase,
		EntityID:       sp.ID,
		PreviousStatus: &previous,
		NewStatus:      string(requested),
		Notes:          notes,
		ChangedBy:      actor,
		ChangedAt:      now,
	}
}

// recomputeOwningPhase reloads the owning phase, substitutes the mutated
// sub-phase into its tree, and rederives phase progress, status, and dates
func (s *subPhaseServiceImpl) recomputeOwningPhase(ctx context.Context, sp *domain.SubPhase) (*domain.Phase, error) {
	phase, err := s.phaseRepo.FindByID(ctx, sp.PhaseID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, response.NewAppError(response.ErrCodeNotFound, "Owning phase not found", "")
		}
		return nil, response.NewAppError(response.ErrCodeInternal, "Failed to load owning phase", err.Error())
	}

	for i := range phase.SubPhases {
		if phase.SubPhases[i].ID == sp.ID {
			phase.SubPhases[i] = *sp
			break
		}
	}
	workflow.RecomputePhase(phase)

	return phase, nil
}

// afterTransition handles the best-effort side effects of a committed
// transition: snapshot invalidation and the realtime broadcast
func (s *subPhaseServiceImpl) afterTransition(ctx context.Context, phase *domain.Phase, entry *domain.StatusLogEntry) {
	if s.progressCache != nil {
		if err := s.progressCache.Invalidate(ctx, phase.ProjectID); err != nil {
			s.logger.Warn("Failed to invalidate progress snapshot", zap.Error(err))
		}
	}
	if s.hub != nil {
		s.hub.Broadcast(phase.ProjectID, realtime.Event{
			Type:           realtime.EventStatusChanged,
			EntityType:     string(entry.EntityType),
			EntityID:       entry.EntityID.String(),
			PreviousStatus: entry.PreviousStatus,
			NewStatus:      entry.NewStatus,
			Payload: map[string]interface{}{
				"phaseId":       phase.ID.String(),
				"phaseProgress": phase.ProgressPercentage,
			},
		})
	}
}

// notifyAssignment fires a best-effort assignment notification
func (s *subPhaseServiceImpl) notifyAssignment(ctx context.Context, sp *domain.SubPhase, actor uuid.UUID) {
	if s.notifier == nil || sp.AssignedTo == nil || *sp.AssignedTo == actor {
		return
	}
	err := s.notifier.SendNotification(ctx, client.NotificationEvent{
		Type:         client.NotificationSubPhaseAssigned,
		ActorID:      actor,
		TargetUserID: *sp.AssignedTo,
		ResourceType: "sub_phase",
		ResourceID:   sp.ID,
		ResourceName: sp.Name,
	})
	if err != nil {
		s.logger.Warn("Failed to send assignment notification", zap.Error(err))
	}
}

// findSubPhase loads a sub-phase or maps the error to the service taxonomy
func (s *subPhaseServiceImpl) findSubPhase(ctx context.Context, subPhaseID uuid.UUID) (*domain.SubPhase, error) {
	sp, err := s.subPhaseRepo.FindByID(ctx, subPhaseID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, response.NewAppError(response.ErrCodeNotFound, "Sub-phase not found", "")
		}
		return nil, response.NewAppError(response.ErrCodeInternal, "Failed to load sub-phase", err.Error())
	}
	return sp, nil
}

// validationError maps a validator error to the service taxonomy, recording
// the rejection metric
func (s *subPhaseServiceImpl) validationError(err error) error {
	var rej *workflow.Rejection
	if errors.As(err, &rej) {
		s.metrics.RecordTransitionRejection("sub_phase", rej.Code)
		return rejectionError(rej)
	}
	return response.NewAppError(response.ErrCodeInternal, "Transition validation failed", err.Error())
}

// applySubPhasePatch copies the non-status fields of a patch request onto the
// sub-phase
func applySubPhasePatch(sp *domain.SubPhase, req *dto.UpdateSubPhaseRequest) {
	if req.Name != nil {
		sp.Name = *req.Name
	}
	if req.AssignedTo != nil {
		sp.AssignedTo = req.AssignedTo
	}
	if req.DueDate != nil {
		sp.DueDate = req.DueDate
	}
	if req.PlannedStartDate != nil {
		sp.PlannedStartDate = req.PlannedStartDate
	}
	if req.PlannedEndDate != nil {
		sp.PlannedEndDate = req.PlannedEndDate
	}
	if req.Instructions != nil {
		sp.Instructions = *req.Instructions
	}
	if req.FormData != nil {
		sp.FormData = *req.FormData
	}
}

// assigneeChanged reports whether the assignee pointer changed to a new user
func assigneeChanged(before, after *uuid.UUID) bool {
	if after == nil {
		return false
	}
	return before == nil || *before != *after
}
