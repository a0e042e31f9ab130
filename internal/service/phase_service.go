package service

import (
	"context"
	"encoding/json"
	"errors"
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

// PhaseService defines the interface for phase business logic
type PhaseService interface {
	GetPhase(ctx context.Context, phaseID uuid.UUID) (*dto.PhaseResponse, error)
	GetProjectPhases(ctx context.Context, projectID uuid.UUID) (*dto.ProjectPhasesResponse, error)
	UpdatePhase(ctx context.Context, phaseID uuid.UUID, req *dto.UpdatePhaseRequest) (*dto.PhaseResponse, error)
}

// phaseServiceImpl is the implementation of PhaseService
type phaseServiceImpl struct {
	phaseRepo     repository.PhaseRepository
	statusLogRepo repository.StatusLogRepository
	progressCache cache.ProgressCache
	hub           *realtime.Hub
	notifier      client.NotificationClient
	metrics       *metrics.Metrics
	logger        *zap.Logger
}

// NewPhaseService creates a new instance of PhaseService
func NewPhaseService(
	phaseRepo repository.PhaseRepository,
	statusLogRepo repository.StatusLogRepository,
	progressCache cache.ProgressCache,
	hub *realtime.Hub,
	notifier client.NotificationClient,
	m *metrics.Metrics,
	logger *zap.Logger,
) PhaseService {
	return &phaseServiceImpl{
		phaseRepo:     phaseRepo,
		statusLogRepo: statusLogRepo,
		progressCache: progressCache,
		hub:           hub,
		notifier:      notifier,
		metrics:       m,
		logger:        logger,
	}
}

// GetPhase returns a phase with its sub-phases and audit timeline
func (s *phaseServiceImpl) GetPhase(ctx context.Context, phaseID uuid.UUID) (*dto.PhaseResponse, error) {
	phase, err := s.findPhase(ctx, phaseID)
	if err != nil {
		return nil, err
	}

	logs, err := s.statusLogRepo.FindByEntity(ctx, domain.LogEntityTypePhase, phaseID)
	if err != nil {
		return nil, response.NewAppError(response.ErrCodeInternal, "Failed to load status logs", err.Error())
	}
	phase.StatusLogs = toDomainStatusLogs(logs)

	resp := dto.ToPhaseResponse(phase)
	return &resp, nil
}

// GetProjectPhases returns the ordered phase tree of a project together with
// the overall progress, the unweighted mean of the phase percentages. A fresh
// snapshot serves the request directly; on a miss the tree is loaded from the
// repository and the snapshot is refreshed.
func (s *phaseServiceImpl) GetProjectPhases(ctx context.Context, projectID uuid.UUID) (*dto.ProjectPhasesResponse, error) {
	if s.progressCache != nil {
		snapshot, err := s.progressCache.Get(ctx, projectID)
		if err == nil && snapshot != nil {
			return &dto.ProjectPhasesResponse{
				ProjectID:       snapshot.ProjectID,
				OverallProgress: snapshot.OverallProgress,
				Phases:          snapshot.Phases,
			}, nil
		}
	}

	phases, err := s.phaseRepo.FindByProjectID(ctx, projectID)
	if err != nil {
		return nil, response.NewAppError(response.ErrCodeInternal, "Failed to load project phases", err.Error())
	}

	overall := workflow.ProjectProgress(phases)

	resp := &dto.ProjectPhasesResponse{
		ProjectID:       projectID,
		OverallProgress: overall,
		Phases:          make([]dto.PhaseResponse, 0, len(phases)),
	}
	for _, p := range phases {
		resp.Phases = append(resp.Phases, dto.ToPhaseResponse(p))
	}

	if s.progressCache != nil {
		err := s.progressCache.Set(ctx, cache.ProjectProgressSnapshot{
			ProjectID:       projectID,
			OverallProgress: overall,
			PhaseCount:      len(phases),
			Phases:          resp.Phases,
			ComputedAt:      time.Now().UTC(),
		})
		if err != nil {
			s.logger.Warn("Failed to refresh progress snapshot", zap.Error(err))
		}
	}

	return resp, nil
}

// UpdatePhase is the manual edit path for a phase. A status change requires
// statusChangeNotes and is validated, logged, and broadcast like any other
// transition. blocked and cancelled are reachable only through this path.
func (s *phaseServiceImpl) UpdatePhase(ctx context.Context, phaseID uuid.UUID, req *dto.UpdatePhaseRequest) (*dto.PhaseResponse, error) {
	actor, err := actorFromContext(ctx)
	if err != nil {
		return nil, err
	}

	phase, err := s.findPhase(ctx, phaseID)
	if err != nil {
		return nil, err
	}

	if err := validateDateRange(req.PlannedStartDate, req.PlannedEndDate); err != nil {
		return nil, err
	}

	previousAssignee := phase.AssignedTo
	if err := applyPhasePatch(phase, req); err != nil {
		return nil, err
	}

	statusChanged := req.Status != nil && *req.Status != string(phase.Status)
	if statusChanged {
		if emptyNotes(req.StatusChangeNotes) {
			return nil, response.NewAppError(response.ErrCodeValidation, "statusChangeNotes is required when changing status", "MISSING_STATUS_NOTES")
		}

		requested := domain.PhaseStatus(*req.Status)
		tctx := workflow.TransitionContext{Notes: req.StatusChangeNotes, Actor: actor}
		if err := workflow.ValidatePhaseTransition(phase, requested, tctx); err != nil {
			var rej *workflow.Rejection
			if errors.As(err, &rej) {
				s.metrics.RecordTransitionRejection("phase", rej.Code)
				return nil, rejectionError(rej)
			}
			return nil, response.NewAppError(response.ErrCodeInternal, "Transition validation failed", err.Error())
		}

		previous := string(phase.Status)
		now := time.Now().UTC()
		phase.Status = requested
		if requested == domain.PhaseStatusInProgress && phase.ActualStartDate == nil {
			phase.ActualStartDate = &now
		}
		if requested == domain.PhaseStatusCompleted && phase.ActualEndDate == nil {
			phase.ActualEndDate = &now
		}

		entry := &domain.StatusLogEntry{
			EntityType:     domain.LogEntityTypePhase,
			EntityID:       phase.ID,
			PreviousStatus: &previous,
			NewStatus:      string(requested),
			Notes:          req.StatusChangeNotes,
			ChangedBy:      actor,
			ChangedAt:      now,
		}

		if err := s.phaseRepo.SaveTransition(ctx, phase, entry); err != nil {
			return nil, response.NewAppError(response.ErrCodeInternal, "Failed to save phase", err.Error())
		}

		s.metrics.RecordStatusTransition("phase", string(requested))

		if s.progressCache != nil {
			if err := s.progressCache.Invalidate(ctx, phase.ProjectID); err != nil {
				s.logger.Warn("Failed to invalidate progress snapshot", zap.Error(err))
			}
		}
		if s.hub != nil {
			s.hub.Broadcast(phase.ProjectID, realtime.Event{
				Type:           realtime.EventStatusChanged,
				EntityType:     string(domain.LogEntityTypePhase),
				EntityID:       phase.ID.String(),
				PreviousStatus: &previous,
				NewStatus:      string(requested),
			})
		}
	} else {
		if err := s.phaseRepo.Update(ctx, phase); err != nil {
			return nil, response.NewAppError(response.ErrCodeInternal, "Failed to update phase", err.Error())
		}
		// The snapshot carries the rendered tree, so plain field edits
		// stale it just like transitions do
		if s.progressCache != nil {
			if err := s.progressCache.Invalidate(ctx, phase.ProjectID); err != nil {
				s.logger.Warn("Failed to invalidate progress snapshot", zap.Error(err))
			}
		}
	}

	if assigneeChanged(previousAssignee, phase.AssignedTo) {
		s.notifyAssignment(ctx, phase, actor)
	}

	resp := dto.ToPhaseResponse(phase)
	return &resp, nil
}

// notifyAssignment fires a best-effort phase assignment notification
func (s *phaseServiceImpl) notifyAssignment(ctx context.Context, phase *domain.Phase, actor uuid.UUID) {
	if s.notifier == nil || phase.AssignedTo == nil || *phase.AssignedTo == actor {
		return
	}
	err := s.notifier.SendNotification(ctx, client.NotificationEvent{
		Type:         client.NotificationPhaseAssigned,
		ActorID:      actor,
		TargetUserID: *phase.AssignedTo,
		ProjectID:    phase.ProjectID,
		ResourceType: "phase",
		ResourceID:   phase.ID,
		ResourceName: phase.Name,
	})
	if err != nil {
		s.logger.Warn("Failed to send assignment notification", zap.Error(err))
	}
}

// findPhase loads a phase or maps the error to the service taxonomy
func (s *phaseServiceImpl) findPhase(ctx context.Context, phaseID uuid.UUID) (*domain.Phase, error) {
	phase, err := s.phaseRepo.FindByID(ctx, phaseID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, response.NewAppError(response.ErrCodeNotFound, "Phase not found", "")
		}
		return nil, response.NewAppError(response.ErrCodeInternal, "Failed to load phase", err.Error())
	}
	return phase, nil
}

// applyPhasePatch copies the non-status fields of a patch request onto the
// phase
func applyPhasePatch(phase *domain.Phase, req *dto.UpdatePhaseRequest) error {
	if req.Name != nil {
		phase.Name = *req.Name
	}
	if req.AssignedTo != nil {
		phase.AssignedTo = req.AssignedTo
	}
	if req.AssigneeIDs != nil {
		raw, err := json.Marshal(removeDuplicateUUIDs(req.AssigneeIDs))
		if err != nil {
			return response.NewAppError(response.ErrCodeInternal, "Failed to encode assignees", err.Error())
		}
		phase.AssigneeIDs = raw
	}
	if req.PlannedStartDate != nil {
		phase.PlannedStartDate = req.PlannedStartDate
	}
	if req.PlannedEndDate != nil {
		phase.PlannedEndDate = req.PlannedEndDate
	}
	if req.Notes != nil {
		phase.Notes = *req.Notes
	}
	return nil
}
