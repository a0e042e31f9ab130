package service

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"project-delivery-api/internal/cache"
	"project-delivery-api/internal/domain"
	"project-delivery-api/internal/dto"
	"project-delivery-api/internal/metrics"
	"project-delivery-api/internal/realtime"
	"project-delivery-api/internal/repository"
	"project-delivery-api/internal/response"
	"project-delivery-api/internal/workflow"
)

// ChecklistService defines the interface for checklist item toggling.
// Toggling feeds progress derivation but never changes any status: a fully
// checked list does not complete the sub-phase.
type ChecklistService interface {
	ToggleItem(ctx context.Context, subPhaseID, itemID uuid.UUID, req *dto.ToggleChecklistItemRequest) (*dto.SubPhaseResponse, error)
}

// checklistServiceImpl is the implementation of ChecklistService
type checklistServiceImpl struct {
	checklistRepo repository.ChecklistRepository
	subPhaseRepo  repository.SubPhaseRepository
	phaseRepo     repository.PhaseRepository
	progressCache cache.ProgressCache
	hub           *realtime.Hub
	metrics       *metrics.Metrics
	logger        *zap.Logger
}

// NewChecklistService creates a new instance of ChecklistService
func NewChecklistService(
	checklistRepo repository.ChecklistRepository,
	subPhaseRepo repository.SubPhaseRepository,
	phaseRepo repository.PhaseRepository,
	progressCache cache.ProgressCache,
	hub *realtime.Hub,
	m *metrics.Metrics,
	logger *zap.Logger,
) ChecklistService {
	return &checklistServiceImpl{
		checklistRepo: checklistRepo,
		subPhaseRepo:  subPhaseRepo,
		phaseRepo:     phaseRepo,
		progressCache: progressCache,
		hub:           hub,
		metrics:       m,
		logger:        logger,
	}
}

// ToggleItem sets a checklist item's completion state and rederives the
// sub-phase and phase progress. Statuses are untouched.
func (s *checklistServiceImpl) ToggleItem(ctx context.Context, subPhaseID, itemID uuid.UUID, req *dto.ToggleChecklistItemRequest) (*dto.SubPhaseResponse, error) {
	actor, err := actorFromContext(ctx)
	if err != nil {
		return nil, err
	}

	item, err := s.checklistRepo.FindByID(ctx, itemID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, response.NewAppError(response.ErrCodeNotFound, "Checklist item not found", "")
		}
		return nil, response.NewAppError(response.ErrCodeInternal, "Failed to load checklist item", err.Error())
	}
	if item.SubPhaseID != subPhaseID {
		return nil, response.NewAppError(response.ErrCodeNotFound, "Checklist item does not belong to this sub-phase", "")
	}

	completed := req.IsCompleted != nil && *req.IsCompleted
	if completed {
		now := time.Now().UTC()
		item.IsCompleted = true
		item.CompletedAt = &now
		item.CompletedBy = &actor
	} else {
		item.IsCompleted = false
		item.CompletedAt = nil
		item.CompletedBy = nil
	}

	if err := s.checklistRepo.Update(ctx, item); err != nil {
		return nil, response.NewAppError(response.ErrCodeInternal, "Failed to update checklist item", err.Error())
	}

	// Reload the sub-phase so its checklist reflects the toggle, then
	// rederive progress up the tree
	sp, err := s.subPhaseRepo.FindByID(ctx, subPhaseID)
	if err != nil {
		return nil, response.NewAppError(response.ErrCodeInternal, "Failed to reload sub-phase", err.Error())
	}
	sp.ProgressPercentage = workflow.SubPhaseProgress(sp)

	phase, err := s.phaseRepo.FindByID(ctx, sp.PhaseID)
	if err != nil {
		return nil, response.NewAppError(response.ErrCodeInternal, "Failed to load owning phase", err.Error())
	}
	for i := range phase.SubPhases {
		if phase.SubPhases[i].ID == sp.ID {
			phase.SubPhases[i] = *sp
			break
		}
	}
	workflow.RecomputePhase(phase)

	if err := s.subPhaseRepo.SaveTransition(ctx, sp, phase, nil); err != nil {
		return nil, response.NewAppError(response.ErrCodeInternal, "Failed to persist progress", err.Error())
	}

	s.metrics.IncrementChecklistToggle()

	if s.progressCache != nil {
		if err := s.progressCache.Invalidate(ctx, phase.ProjectID); err != nil {
			s.logger.Warn("Failed to invalidate progress snapshot", zap.Error(err))
		}
	}
	if s.hub != nil {
		s.hub.Broadcast(phase.ProjectID, realtime.Event{
			Type:       realtime.EventChecklistToggled,
			EntityType: string(domain.LogEntityTypeSubPhase),
			EntityID:   sp.ID.String(),
			NewStatus:  string(sp.Status),
			Payload: map[string]interface{}{
				"itemId":           itemID.String(),
				"isCompleted":      completed,
				"subPhaseProgress": sp.ProgressPercentage,
				"phaseProgress":    phase.ProgressPercentage,
			},
		})
	}

	resp := dto.ToSubPhaseResponse(sp)
	return &resp, nil
}
