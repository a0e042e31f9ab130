package coordinator

import (
	"context"
	"errors"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"project-delivery-api/internal/client"
	"project-delivery-api/internal/domain"
	"project-delivery-api/internal/dto"
	"project-delivery-api/internal/response"
	"project-delivery-api/internal/workflow"
)

// ErrActionInFlight is returned when a quick action targets an entity that
// already has an unresolved action. The caller retries after the first one
// settles; there is no queueing.
var ErrActionInFlight = errors.New("another action is already in flight for this entity")

// Action names a sub-phase quick action
type Action string

const (
	ActionStart    Action = "start"
	ActionHold     Action = "hold"
	ActionResume   Action = "resume"
	ActionComplete Action = "complete"
	ActionSkip     Action = "skip"
)

// targetStatus maps a quick action to the status it requests
func (a Action) targetStatus() (domain.SubPhaseStatus, bool) {
	switch a {
	case ActionStart, ActionResume:
		return domain.SubPhaseStatusInProgress, true
	case ActionHold:
		return domain.SubPhaseStatusOnHold, true
	case ActionComplete:
		return domain.SubPhaseStatusCompleted, true
	case ActionSkip:
		return domain.SubPhaseStatusSkipped, true
	}
	return "", false
}

// ActionInput carries the human-supplied inputs accompanying a quick action
type ActionInput struct {
	Notes      string
	SkipReason string
	Actor      uuid.UUID
}

// Coordinator owns the locally cached phase tree and reconciles it with the
// workflow API. Quick actions are validated locally first, applied as a
// speculative patch, then confirmed or rolled back when the server responds.
// The tree is only ever mutated through this type.
type Coordinator struct {
	api    client.WorkflowAPI
	store  *Store
	logger *zap.Logger

	mu       sync.Mutex
	inFlight map[uuid.UUID]struct{}
}

// New creates a coordinator over an empty store
func New(api client.WorkflowAPI, logger *zap.Logger) *Coordinator {
	return &Coordinator{
		api:      api,
		store:    NewStore(),
		logger:   logger,
		inFlight: make(map[uuid.UUID]struct{}),
	}
}

// Store exposes read access to the cached phase tree
func (c *Coordinator) Store() *Store {
	return c.store
}

// Close tears the coordinator down. In-flight actions are allowed to finish
// their network call, but their results are discarded instead of applied.
func (c *Coordinator) Close() {
	c.store.Close()
}

// LoadProject fetches a project's full phase tree and seeds the store
func (c *Coordinator) LoadProject(ctx context.Context, projectID uuid.UUID) ([]*domain.Phase, error) {
	resp, err := c.api.FetchProjectPhases(ctx, projectID)
	if err != nil {
		return nil, err
	}
	for i := range resp.Phases {
		if err := c.store.PutPhase(dto.FromPhaseResponse(&resp.Phases[i])); err != nil {
			return nil, err
		}
	}
	return c.store.Phases(), nil
}

// RefreshPhase re-fetches one phase from the server and replaces the cached
// copy. This is the recovery path after any failed or conflicted mutation.
func (c *Coordinator) RefreshPhase(ctx context.Context, phaseID uuid.UUID) (*domain.Phase, error) {
	resp, err := c.api.FetchPhase(ctx, phaseID)
	if err != nil {
		return nil, err
	}
	phase := dto.FromPhaseResponse(resp)
	if err := c.store.PutPhase(phase); err != nil {
		return nil, err
	}
	return c.store.Phase(phase.ID)
}

// QuickAction performs one of the sub-phase quick actions. The transition is
// validated against the cached state first; an illegal request fails here
// without a network call. A legal request installs a speculative patch, holds
// the per-entity in-flight lock for the duration of the server call, and then
// either merges the authoritative server entity or rolls the patch back with
// a full re-fetch of the owning phase.
func (c *Coordinator) QuickAction(ctx context.Context, subPhaseID uuid.UUID, action Action, input ActionInput) (*domain.SubPhase, error) {
	requested, ok := action.targetStatus()
	if !ok {
		return nil, &workflow.Rejection{
			Code:    workflow.RejectInvalidStatus,
			Message: "unknown action " + string(action),
		}
	}

	// The lock is taken before validation so a concurrent second action is
	// rejected outright instead of validating against the speculative state
	if !c.acquire(subPhaseID) {
		return nil, ErrActionInFlight
	}
	defer c.release(subPhaseID)

	subPhase, phase, err := c.store.SubPhase(subPhaseID)
	if err != nil {
		return nil, err
	}

	tctx := workflow.TransitionContext{
		Notes:      input.Notes,
		SkipReason: input.SkipReason,
		Actor:      input.Actor,
	}
	if err := workflow.ValidateSubPhaseTransition(subPhase, requested, tctx); err != nil {
		if errors.Is(err, workflow.ErrNoChange) {
			return subPhase, nil
		}
		return nil, err
	}
	previous := string(subPhase.Status)

	c.applySpeculative(subPhase, phase, requested, input)

	serverResp, err := c.callAction(ctx, subPhaseID, action, input)
	if err != nil {
		c.rollback(ctx, subPhaseID, phase.ID, err)
		return nil, err
	}

	merged := dto.FromSubPhaseResponse(serverResp)
	confirmed := confirmedLogEntry(&merged, previous, input)
	if err := c.mergeServerSubPhase(merged, confirmed); err != nil {
		// Closed mid-flight: the late result is discarded, not applied
		c.logger.Debug("Discarding late action result",
			zap.String("sub_phase_id", subPhaseID.String()),
			zap.String("action", string(action)),
		)
		return nil, err
	}

	updated, _, err := c.store.SubPhase(subPhaseID)
	if err != nil {
		return nil, err
	}
	return updated, nil
}

// EditSubPhase performs a manual sub-phase edit. Unlike quick actions this is
// a plain request/response cycle: no speculative patch, no in-flight lock.
// A status change bundled into the edit still requires justification notes,
// enforced here before any network call.
func (c *Coordinator) EditSubPhase(ctx context.Context, subPhaseID uuid.UUID, req *dto.UpdateSubPhaseRequest) (*domain.SubPhase, error) {
	subPhase, _, err := c.store.SubPhase(subPhaseID)
	if err != nil {
		return nil, err
	}
	if req.Status != nil && *req.Status != string(subPhase.Status) && strings.TrimSpace(req.StatusChangeNotes) == "" {
		return nil, response.NewAppError(response.ErrCodeValidation,
			"status change notes required", "MISSING_STATUS_NOTES")
	}

	serverResp, err := c.api.PatchSubPhase(ctx, subPhaseID, req)
	if err != nil {
		if shouldRefetch(err) {
			if _, rerr := c.RefreshPhase(ctx, subPhase.PhaseID); rerr != nil {
				c.logger.Warn("Re-fetch after failed sub-phase edit failed",
					zap.String("phase_id", subPhase.PhaseID.String()),
					zap.Error(rerr),
				)
			}
		}
		return nil, err
	}
	if err := c.mergeServerSubPhase(dto.FromSubPhaseResponse(serverResp), nil); err != nil {
		return nil, err
	}
	updated, _, err := c.store.SubPhase(subPhaseID)
	if err != nil {
		return nil, err
	}
	return updated, nil
}

// EditPhase performs a manual phase edit as a plain request/response cycle
func (c *Coordinator) EditPhase(ctx context.Context, phaseID uuid.UUID, req *dto.UpdatePhaseRequest) (*domain.Phase, error) {
	phase, err := c.store.Phase(phaseID)
	if err != nil {
		return nil, err
	}
	if req.Status != nil && *req.Status != string(phase.Status) && strings.TrimSpace(req.StatusChangeNotes) == "" {
		return nil, response.NewAppError(response.ErrCodeValidation,
			"status change notes required", "MISSING_STATUS_NOTES")
	}

	serverResp, err := c.api.PatchPhase(ctx, phaseID, req)
	if err != nil {
		if shouldRefetch(err) {
			if _, rerr := c.RefreshPhase(ctx, phaseID); rerr != nil {
				c.logger.Warn("Re-fetch after failed phase edit failed",
					zap.String("phase_id", phaseID.String()),
					zap.Error(rerr),
				)
			}
		}
		return nil, err
	}
	updated := dto.FromPhaseResponse(serverResp)
	// The list endpoint omits sub-phases; keep the cached ones
	if len(updated.SubPhases) == 0 {
		updated.SubPhases = phase.SubPhases
	}
	if err := c.store.PutPhase(updated); err != nil {
		return nil, err
	}
	return c.store.Phase(phaseID)
}

func (c *Coordinator) callAction(ctx context.Context, id uuid.UUID, action Action, input ActionInput) (*dto.SubPhaseResponse, error) {
	switch action {
	case ActionStart:
		return c.api.StartSubPhase(ctx, id, &dto.StartSubPhaseRequest{Notes: input.Notes})
	case ActionHold:
		return c.api.HoldSubPhase(ctx, id, &dto.HoldSubPhaseRequest{Notes: input.Notes})
	case ActionResume:
		return c.api.ResumeSubPhase(ctx, id, &dto.ResumeSubPhaseRequest{Notes: input.Notes})
	case ActionComplete:
		return c.api.CompleteSubPhase(ctx, id, &dto.CompleteSubPhaseRequest{Notes: input.Notes})
	case ActionSkip:
		return c.api.SkipSubPhase(ctx, id, &dto.SkipSubPhaseRequest{Reason: input.SkipReason})
	}
	return nil, &workflow.Rejection{Code: workflow.RejectInvalidStatus, Message: "unknown action " + string(action)}
}

// applySpeculative installs the optimistic local patch: the requested status,
// provisional actual dates, and the recomputed owning phase
func (c *Coordinator) applySpeculative(subPhase *domain.SubPhase, phase *domain.Phase, requested domain.SubPhaseStatus, input ActionInput) {
	now := time.Now().UTC()
	subPhase.Status = requested
	switch requested {
	case domain.SubPhaseStatusInProgress:
		if subPhase.ActualStartDate == nil {
			subPhase.ActualStartDate = &now
		}
	case domain.SubPhaseStatusCompleted:
		if subPhase.ActualEndDate == nil {
			subPhase.ActualEndDate = &now
		}
	case domain.SubPhaseStatusSkipped:
		subPhase.SkipReason = strings.TrimSpace(input.SkipReason)
	}

	for i := range phase.SubPhases {
		if phase.SubPhases[i].ID == subPhase.ID {
			phase.SubPhases[i] = *subPhase
			break
		}
	}
	workflow.RecomputePhase(phase)
	if err := c.store.PutPhase(*phase); err != nil {
		c.logger.Debug("Speculative patch dropped", zap.Error(err))
	}
}

// confirmedLogEntry builds the audit entry for a server-confirmed quick
// action, mirroring what the server records for the same transition
func confirmedLogEntry(sp *domain.SubPhase, previous string, input ActionInput) *domain.StatusLogEntry {
	notes := strings.TrimSpace(input.Notes)
	if sp.Status == domain.SubPhaseStatusSkipped {
		notes = strings.TrimSpace(input.SkipReason)
	}
	if notes == "" {
		notes = "Sub-phase started"
	}
	return &domain.StatusLogEntry{
		EntityType:     domain.LogEntityTypeSubPhase,
		EntityID:       sp.ID,
		PreviousStatus: &previous,
		NewStatus:      string(sp.Status),
		Notes:          notes,
		ChangedBy:      input.Actor,
		ChangedAt:      time.Now().UTC(),
	}
}

// mergeServerSubPhase replaces the speculative entity with the authoritative
// server one and recomputes the owning phase around it. Action responses are
// list-shaped, so the cached owned collections are carried over, and a
// confirmed transition appends its audit entry to the local history.
func (c *Coordinator) mergeServerSubPhase(sp domain.SubPhase, confirmed *domain.StatusLogEntry) error {
	if cached, _, err := c.store.SubPhase(sp.ID); err == nil {
		if sp.ChecklistItems == nil {
			sp.ChecklistItems = cached.ChecklistItems
		}
		if sp.Attachments == nil {
			sp.Attachments = cached.Attachments
		}
		if sp.Comments == nil {
			sp.Comments = cached.Comments
		}
		if sp.Approvals == nil {
			sp.Approvals = cached.Approvals
		}
		if sp.StatusLogs == nil {
			sp.StatusLogs = cached.StatusLogs
		}
	}
	if confirmed != nil {
		sp.StatusLogs = append(sp.StatusLogs, *confirmed)
	}
	if err := c.store.PutSubPhase(sp); err != nil {
		return err
	}
	phase, err := c.store.Phase(sp.PhaseID)
	if err != nil {
		return err
	}
	workflow.RecomputePhase(phase)
	return c.store.PutPhase(*phase)
}

// rollback discards the speculative patch by re-fetching the owning phase
func (c *Coordinator) rollback(ctx context.Context, subPhaseID, phaseID uuid.UUID, cause error) {
	c.logger.Warn("Action failed, re-fetching owning phase",
		zap.String("sub_phase_id", subPhaseID.String()),
		zap.String("phase_id", phaseID.String()),
		zap.Error(cause),
	)
	if _, err := c.RefreshPhase(ctx, phaseID); err != nil {
		c.logger.Warn("Re-fetch after failed action failed",
			zap.String("phase_id", phaseID.String()),
			zap.Error(err),
		)
	}
}

// shouldRefetch reports whether the server error indicates local state is
// stale. Validation-class rejections leave local state intact.
func shouldRefetch(err error) bool {
	var appErr *response.AppError
	if !errors.As(err, &appErr) {
		return true // network-class failure
	}
	return appErr.Code == response.ErrCodeNotFound || appErr.Code == response.ErrCodeConflict
}

func (c *Coordinator) acquire(id uuid.UUID) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	if _, busy := c.inFlight[id]; busy {
		return false
	}
	c.inFlight[id] = struct{}{}
	return true
}

func (c *Coordinator) release(id uuid.UUID) {
	c.mu.Lock()
	defer c.mu.Unlock()
	delete(c.inFlight, id)
}
