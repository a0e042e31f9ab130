package coordinator

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"project-delivery-api/internal/domain"
	"project-delivery-api/internal/dto"
	"project-delivery-api/internal/response"
	"project-delivery-api/internal/workflow"
)

// mockWorkflowAPI is a function-field mock of the workflow API client
type mockWorkflowAPI struct {
	FetchPhaseFunc         func(ctx context.Context, phaseID uuid.UUID) (*dto.PhaseResponse, error)
	FetchProjectPhasesFunc func(ctx context.Context, projectID uuid.UUID) (*dto.ProjectPhasesResponse, error)
	FetchSubPhaseFunc      func(ctx context.Context, subPhaseID uuid.UUID) (*dto.SubPhaseDetailResponse, error)
	StartSubPhaseFunc      func(ctx context.Context, subPhaseID uuid.UUID, req *dto.StartSubPhaseRequest) (*dto.SubPhaseResponse, error)
	HoldSubPhaseFunc       func(ctx context.Context, subPhaseID uuid.UUID, req *dto.HoldSubPhaseRequest) (*dto.SubPhaseResponse, error)
	ResumeSubPhaseFunc     func(ctx context.Context, subPhaseID uuid.UUID, req *dto.ResumeSubPhaseRequest) (*dto.SubPhaseResponse, error)
	CompleteSubPhaseFunc   func(ctx context.Context, subPhaseID uuid.UUID, req *dto.CompleteSubPhaseRequest) (*dto.SubPhaseResponse, error)
	SkipSubPhaseFunc       func(ctx context.Context, subPhaseID uuid.UUID, req *dto.SkipSubPhaseRequest) (*dto.SubPhaseResponse, error)
	PatchSubPhaseFunc      func(ctx context.Context, subPhaseID uuid.UUID, req *dto.UpdateSubPhaseRequest) (*dto.SubPhaseResponse, error)
	PatchPhaseFunc         func(ctx context.Context, phaseID uuid.UUID, req *dto.UpdatePhaseRequest) (*dto.PhaseResponse, error)
}

func (m *mockWorkflowAPI) FetchPhase(ctx context.Context, phaseID uuid.UUID) (*dto.PhaseResponse, error) {
	if m.FetchPhaseFunc != nil {
		return m.FetchPhaseFunc(ctx, phaseID)
	}
	return nil, errors.New("FetchPhase not mocked")
}

func (m *mockWorkflowAPI) FetchProjectPhases(ctx context.Context, projectID uuid.UUID) (*dto.ProjectPhasesResponse, error) {
	if m.FetchProjectPhasesFunc != nil {
		return m.FetchProjectPhasesFunc(ctx, projectID)
	}
	return nil, errors.New("FetchProjectPhases not mocked")
}

func (m *mockWorkflowAPI) FetchSubPhase(ctx context.Context, subPhaseID uuid.UUID) (*dto.SubPhaseDetailResponse, error) {
	if m.FetchSubPhaseFunc != nil {
		return m.FetchSubPhaseFunc(ctx, subPhaseID)
	}
	return nil, errors.New("FetchSubPhase not mocked")
}

func (m *mockWorkflowAPI) StartSubPhase(ctx context.Context, subPhaseID uuid.UUID, req *dto.StartSubPhaseRequest) (*dto.SubPhaseResponse, error) {
	if m.StartSubPhaseFunc != nil {
		return m.StartSubPhaseFunc(ctx, subPhaseID, req)
	}
	return nil, errors.New("StartSubPhase not mocked")
}

func (m *mockWorkflowAPI) HoldSubPhase(ctx context.Context, subPhaseID uuid.UUID, req *dto.HoldSubPhaseRequest) (*dto.SubPhaseResponse, error) {
	if m.HoldSubPhaseFunc != nil {
		return m.HoldSubPhaseFunc(ctx, subPhaseID, req)
	}
	return nil, errors.New("HoldSubPhase not mocked")
}

func (m *mockWorkflowAPI) ResumeSubPhase(ctx context.Context, subPhaseID uuid.UUID, req *dto.ResumeSubPhaseRequest) (*dto.SubPhaseResponse, error) {
	if m.ResumeSubPhaseFunc != nil {
		return m.ResumeSubPhaseFunc(ctx, subPhaseID, req)
	}
	return nil, errors.New("ResumeSubPhase not mocked")
}

func (m *mockWorkflowAPI) CompleteSubPhase(ctx context.Context, subPhaseID uuid.UUID, req *dto.CompleteSubPhaseRequest) (*dto.SubPhaseResponse, error) {
	if m.CompleteSubPhaseFunc != nil {
		return m.CompleteSubPhaseFunc(ctx, subPhaseID, req)
	}
	return nil, errors.New("CompleteSubPhase not mocked")
}

func (m *mockWorkflowAPI) SkipSubPhase(ctx context.Context, subPhaseID uuid.UUID, req *dto.SkipSubPhaseRequest) (*dto.SubPhaseResponse, error) {
	if m.SkipSubPhaseFunc != nil {
		return m.SkipSubPhaseFunc(ctx, subPhaseID, req)
	}
	return nil, errors.New("SkipSubPhase not mocked")
}

func (m *mockWorkflowAPI) PatchSubPhase(ctx context.Context, subPhaseID uuid.UUID, req *dto.UpdateSubPhaseRequest) (*dto.SubPhaseResponse, error) {
	if m.PatchSubPhaseFunc != nil {
		return m.PatchSubPhaseFunc(ctx, subPhaseID, req)
	}
	return nil, errors.New("PatchSubPhase not mocked")
}

func (m *mockWorkflowAPI) PatchPhase(ctx context.Context, phaseID uuid.UUID, req *dto.UpdatePhaseRequest) (*dto.PhaseResponse, error) {
	if m.PatchPhaseFunc != nil {
		return m.PatchPhaseFunc(ctx, phaseID, req)
	}
	return nil, errors.New("PatchPhase not mocked")
}

func newTestCoordinator(api *mockWorkflowAPI) *Coordinator {
	return New(api, zap.NewNop())
}

// seedTree stores a phase owning the given sub-phase plus one untouched
// sibling, and returns the coordinator
func seedTree(t *testing.T, api *mockWorkflowAPI, sp domain.SubPhase) (*Coordinator, domain.Phase) {
	t.Helper()
	sibling := domain.SubPhase{
		BaseModel:    domain.BaseModel{ID: uuid.New()},
		PhaseID:      sp.PhaseID,
		Name:         "Sibling",
		DisplayOrder: 2,
		Status:       domain.SubPhaseStatusNotStarted,
	}
	phase := domain.Phase{
		BaseModel: domain.BaseModel{ID: sp.PhaseID},
		ProjectID: uuid.New(),
		Name:      "Construction",
		Status:    domain.PhaseStatusNotStarted,
		SubPhases: []domain.SubPhase{sp, sibling},
	}
	coord := newTestCoordinator(api)
	if err := coord.Store().PutPhase(phase); err != nil {
		t.Fatalf("failed to seed store: %v", err)
	}
	return coord, phase
}

func assignedSubPhase() domain.SubPhase {
	assignee := uuid.New()
	return domain.SubPhase{
		BaseModel:    domain.BaseModel{ID: uuid.New()},
		PhaseID:      uuid.New(),
		Name:         "Electrical rough-in",
		DisplayOrder: 1,
		Status:       domain.SubPhaseStatusNotStarted,
		AssignedTo:   &assignee,
	}
}

func TestQuickAction_Start_MergesServerEntity(t *testing.T) {
	sp := assignedSubPhase()
	serverStart := time.Now().UTC().Add(-time.Minute).Truncate(time.Second)
	calls := 0
	api := &mockWorkflowAPI{
		StartSubPhaseFunc: func(ctx context.Context, id uuid.UUID, req *dto.StartSubPhaseRequest) (*dto.SubPhaseResponse, error) {
			calls++
			if id != sp.ID {
				t.Errorf("expected start on %s, got %s", sp.ID, id)
			}
			resp := dto.ToSubPhaseResponse(&sp)
			resp.Status = string(domain.SubPhaseStatusInProgress)
			resp.ActualStartDate = &serverStart
			return &resp, nil
		},
	}
	coord, phase := seedTree(t, api, sp)

	updated, err := coord.QuickAction(context.Background(), sp.ID, ActionStart, ActionInput{Actor: uuid.New()})
	if err != nil {
		t.Fatalf("expected success, got %v", err)
	}
	if calls != 1 {
		t.Errorf("expected 1 API call, got %d", calls)
	}
	if updated.Status != domain.SubPhaseStatusInProgress {
		t.Errorf("expected in_progress, got %s", updated.Status)
	}
	// The server's timestamp wins over the provisional one
	if updated.ActualStartDate == nil || !updated.ActualStartDate.Equal(serverStart) {
		t.Errorf("expected server actual start date %v, got %v", serverStart, updated.ActualStartDate)
	}

	stored, err := coord.Store().Phase(phase.ID)
	if err != nil {
		t.Fatalf("failed to read stored phase: %v", err)
	}
	if stored.Status != domain.PhaseStatusInProgress {
		t.Errorf("expected owning phase in_progress, got %s", stored.Status)
	}
}

func TestQuickAction_AppendsConfirmedAuditEntry(t *testing.T) {
	sp := assignedSubPhase()
	sp.ChecklistItems = []domain.ChecklistItem{{
		BaseModel:  domain.BaseModel{ID: uuid.New()},
		SubPhaseID: sp.ID,
		Name:       "Pull wiring",
	}}
	actor := uuid.New()
	api := &mockWorkflowAPI{
		StartSubPhaseFunc: func(ctx context.Context, id uuid.UUID, req *dto.StartSubPhaseRequest) (*dto.SubPhaseResponse, error) {
			resp := dto.ToSubPhaseResponse(&sp)
			resp.Status = string(domain.SubPhaseStatusInProgress)
			return &resp, nil
		},
		HoldSubPhaseFunc: func(ctx context.Context, id uuid.UUID, req *dto.HoldSubPhaseRequest) (*dto.SubPhaseResponse, error) {
			resp := dto.ToSubPhaseResponse(&sp)
			resp.Status = string(domain.SubPhaseStatusOnHold)
			return &resp, nil
		},
	}
	coord, _ := seedTree(t, api, sp)

	updated, err := coord.QuickAction(context.Background(), sp.ID, ActionStart, ActionInput{Actor: actor})
	if err != nil {
		t.Fatalf("expected success, got %v", err)
	}
	if len(updated.StatusLogs) != 1 {
		t.Fatalf("expected 1 audit entry after confirmed start, got %d", len(updated.StatusLogs))
	}
	entry := updated.StatusLogs[0]
	if entry.PreviousStatus == nil || *entry.PreviousStatus != string(domain.SubPhaseStatusNotStarted) {
		t.Errorf("expected previous status not_started, got %v", entry.PreviousStatus)
	}
	if entry.NewStatus != string(domain.SubPhaseStatusInProgress) {
		t.Errorf("expected new status in_progress, got %s", entry.NewStatus)
	}
	if entry.Notes == "" {
		t.Error("expected non-empty justification notes on the audit entry")
	}
	if entry.ChangedBy != actor {
		t.Errorf("expected entry attributed to %s, got %s", actor, entry.ChangedBy)
	}
	// The action response carries no collections; the cached ones survive the merge
	if len(updated.ChecklistItems) != 1 {
		t.Errorf("expected cached checklist kept through merge, got %d items", len(updated.ChecklistItems))
	}

	// A second confirmed transition appends; history only grows
	updated, err = coord.QuickAction(context.Background(), sp.ID, ActionHold, ActionInput{Notes: "Material delay", Actor: actor})
	if err != nil {
		t.Fatalf("expected hold to succeed, got %v", err)
	}
	if len(updated.StatusLogs) != 2 {
		t.Fatalf("expected 2 audit entries after second transition, got %d", len(updated.StatusLogs))
	}
	if updated.StatusLogs[0].NewStatus != string(domain.SubPhaseStatusInProgress) {
		t.Errorf("expected first entry untouched, got %s", updated.StatusLogs[0].NewStatus)
	}
	if updated.StatusLogs[1].Notes != "Material delay" {
		t.Errorf("expected hold notes recorded, got %q", updated.StatusLogs[1].Notes)
	}
}

func TestQuickAction_LocalRejection_NoNetworkCall(t *testing.T) {
	sp := assignedSubPhase()
	sp.AssignedTo = nil
	calls := 0
	api := &mockWorkflowAPI{
		StartSubPhaseFunc: func(ctx context.Context, id uuid.UUID, req *dto.StartSubPhaseRequest) (*dto.SubPhaseResponse, error) {
			calls++
			return nil, errors.New("must not be reached")
		},
	}
	coord, _ := seedTree(t, api, sp)

	_, err := coord.QuickAction(context.Background(), sp.ID, ActionStart, ActionInput{Actor: uuid.New()})
	if err == nil {
		t.Fatal("expected rejection, got nil")
	}
	var rej *workflow.Rejection
	if !errors.As(err, &rej) {
		t.Fatalf("expected *workflow.Rejection, got %T", err)
	}
	if rej.Code != workflow.RejectNoAssignee {
		t.Errorf("expected %s, got %s", workflow.RejectNoAssignee, rej.Code)
	}
	if calls != 0 {
		t.Errorf("expected no API calls, got %d", calls)
	}
}

func TestQuickAction_SameStatusIsNoOp(t *testing.T) {
	sp := assignedSubPhase()
	sp.Status = domain.SubPhaseStatusInProgress
	calls := 0
	api := &mockWorkflowAPI{
		StartSubPhaseFunc: func(ctx context.Context, id uuid.UUID, req *dto.StartSubPhaseRequest) (*dto.SubPhaseResponse, error) {
			calls++
			return nil, errors.New("must not be reached")
		},
	}
	coord, _ := seedTree(t, api, sp)

	current, err := coord.QuickAction(context.Background(), sp.ID, ActionStart, ActionInput{Actor: uuid.New()})
	if err != nil {
		t.Fatalf("expected no-op success, got %v", err)
	}
	if current.Status != domain.SubPhaseStatusInProgress {
		t.Errorf("expected unchanged status, got %s", current.Status)
	}
	if calls != 0 {
		t.Errorf("expected no API calls, got %d", calls)
	}
}

func TestQuickAction_ConcurrentSecondActionRejected(t *testing.T) {
	sp := assignedSubPhase()
	entered := make(chan struct{})
	proceed := make(chan struct{})
	api := &mockWorkflowAPI{
		StartSubPhaseFunc: func(ctx context.Context, id uuid.UUID, req *dto.StartSubPhaseRequest) (*dto.SubPhaseResponse, error) {
			close(entered)
			<-proceed
			resp := dto.ToSubPhaseResponse(&sp)
			resp.Status = string(domain.SubPhaseStatusInProgress)
			return &resp, nil
		},
		HoldSubPhaseFunc: func(ctx context.Context, id uuid.UUID, req *dto.HoldSubPhaseRequest) (*dto.SubPhaseResponse, error) {
			resp := dto.ToSubPhaseResponse(&sp)
			resp.Status = string(domain.SubPhaseStatusOnHold)
			return &resp, nil
		},
	}
	coord, _ := seedTree(t, api, sp)

	firstDone := make(chan error, 1)
	go func() {
		_, err := coord.QuickAction(context.Background(), sp.ID, ActionStart, ActionInput{Actor: uuid.New()})
		firstDone <- err
	}()

	<-entered
	_, err := coord.QuickAction(context.Background(), sp.ID, ActionStart, ActionInput{Actor: uuid.New()})
	if !errors.Is(err, ErrActionInFlight) {
		t.Errorf("expected ErrActionInFlight while first action unresolved, got %v", err)
	}

	close(proceed)
	if err := <-firstDone; err != nil {
		t.Errorf("expected first action to succeed, got %v", err)
	}

	// After the first action settles the entity accepts actions again
	_, err = coord.QuickAction(context.Background(), sp.ID, ActionHold, ActionInput{Notes: "Material delay", Actor: uuid.New()})
	if err != nil {
		t.Errorf("expected hold after settle to succeed locally, got %v", err)
	}
}

func TestQuickAction_FailureDiscardsPatchAndRefetches(t *testing.T) {
	sp := assignedSubPhase()
	sp.Status = domain.SubPhaseStatusInProgress
	refetched := 0
	api := &mockWorkflowAPI{
		CompleteSubPhaseFunc: func(ctx context.Context, id uuid.UUID, req *dto.CompleteSubPhaseRequest) (*dto.SubPhaseResponse, error) {
			return nil, response.NewAppError(response.ErrCodeConflict, "sub-phase is skipped; no further transitions are allowed", "TERMINAL_STATUS")
		},
	}
	coord, phase := seedTree(t, api, sp)

	// The server's view: someone else skipped it first
	api.FetchPhaseFunc = func(ctx context.Context, id uuid.UUID) (*dto.PhaseResponse, error) {
		refetched++
		serverSP := sp
		serverSP.Status = domain.SubPhaseStatusSkipped
		serverSP.SkipReason = "Scope removed"
		serverPhase := phase
		serverPhase.SubPhases = []domain.SubPhase{serverSP, phase.SubPhases[1]}
		resp := dto.ToPhaseResponse(&serverPhase)
		return &resp, nil
	}

	_, err := coord.QuickAction(context.Background(), sp.ID, ActionComplete, ActionInput{Notes: "All done", Actor: uuid.New()})
	if err == nil {
		t.Fatal("expected conflict error, got nil")
	}
	var appErr *response.AppError
	if !errors.As(err, &appErr) || appErr.Code != response.ErrCodeConflict {
		t.Fatalf("expected CONFLICT, got %v", err)
	}
	if refetched != 1 {
		t.Errorf("expected exactly one re-fetch of the owning phase, got %d", refetched)
	}

	stored, _, err := coord.Store().SubPhase(sp.ID)
	if err != nil {
		t.Fatalf("failed to read stored sub-phase: %v", err)
	}
	// Local state follows the re-fetched server view, not the speculative patch
	if stored.Status != domain.SubPhaseStatusSkipped {
		t.Errorf("expected skipped after re-fetch, got %s", stored.Status)
	}
	if stored.ActualEndDate != nil {
		t.Errorf("expected provisional end date discarded, got %v", stored.ActualEndDate)
	}
}

func TestQuickAction_CloseDiscardsLateResult(t *testing.T) {
	sp := assignedSubPhase()
	entered := make(chan struct{})
	proceed := make(chan struct{})
	api := &mockWorkflowAPI{
		StartSubPhaseFunc: func(ctx context.Context, id uuid.UUID, req *dto.StartSubPhaseRequest) (*dto.SubPhaseResponse, error) {
			close(entered)
			<-proceed
			resp := dto.ToSubPhaseResponse(&sp)
			resp.Status = string(domain.SubPhaseStatusInProgress)
			return &resp, nil
		},
	}
	coord, _ := seedTree(t, api, sp)

	done := make(chan error, 1)
	go func() {
		_, err := coord.QuickAction(context.Background(), sp.ID, ActionStart, ActionInput{Actor: uuid.New()})
		done <- err
	}()

	<-entered
	coord.Close()
	close(proceed)

	if err := <-done; !errors.Is(err, ErrStoreClosed) {
		t.Errorf("expected ErrStoreClosed for a result arriving after teardown, got %v", err)
	}
}

func TestQuickAction_UnknownEntity(t *testing.T) {
	coord := newTestCoordinator(&mockWorkflowAPI{})
	_, err := coord.QuickAction(context.Background(), uuid.New(), ActionStart, ActionInput{Actor: uuid.New()})
	if !errors.Is(err, ErrNotLoaded) {
		t.Errorf("expected ErrNotLoaded, got %v", err)
	}
}

func TestEditSubPhase_StatusWithoutNotes(t *testing.T) {
	sp := assignedSubPhase()
	calls := 0
	api := &mockWorkflowAPI{
		PatchSubPhaseFunc: func(ctx context.Context, id uuid.UUID, req *dto.UpdateSubPhaseRequest) (*dto.SubPhaseResponse, error) {
			calls++
			return nil, errors.New("must not be reached")
		},
	}
	coord, _ := seedTree(t, api, sp)

	status := string(domain.SubPhaseStatusInProgress)
	_, err := coord.EditSubPhase(context.Background(), sp.ID, &dto.UpdateSubPhaseRequest{Status: &status})
	if err == nil {
		t.Fatal("expected validation error, got nil")
	}
	var appErr *response.AppError
	if !errors.As(err, &appErr) {
		t.Fatalf("expected *response.AppError, got %T", err)
	}
	if appErr.Code != response.ErrCodeValidation {
		t.Errorf("expected %s, got %s", response.ErrCodeValidation, appErr.Code)
	}
	if appErr.Details != "MISSING_STATUS_NOTES" {
		t.Errorf("expected MISSING_STATUS_NOTES details, got %s", appErr.Details)
	}
	if calls != 0 {
		t.Errorf("expected no API calls, got %d", calls)
	}
}

func TestEditSubPhase_AppliesServerEntity(t *testing.T) {
	sp := assignedSubPhase()
	newName := "Electrical rough-in and inspection"
	api := &mockWorkflowAPI{
		PatchSubPhaseFunc: func(ctx context.Context, id uuid.UUID, req *dto.UpdateSubPhaseRequest) (*dto.SubPhaseResponse, error) {
			if req.Name == nil || *req.Name != newName {
				t.Errorf("expected name %q forwarded, got %v", newName, req.Name)
			}
			resp := dto.ToSubPhaseResponse(&sp)
			resp.Name = newName
			return &resp, nil
		},
	}
	coord, _ := seedTree(t, api, sp)

	updated, err := coord.EditSubPhase(context.Background(), sp.ID, &dto.UpdateSubPhaseRequest{Name: &newName})
	if err != nil {
		t.Fatalf("expected success, got %v", err)
	}
	if updated.Name != newName {
		t.Errorf("expected %q, got %q", newName, updated.Name)
	}

	stored, _, err := coord.Store().SubPhase(sp.ID)
	if err != nil {
		t.Fatalf("failed to read stored sub-phase: %v", err)
	}
	if stored.Name != newName {
		t.Errorf("expected store updated to %q, got %q", newName, stored.Name)
	}
}

func TestEditPhase_KeepsCachedSubPhases(t *testing.T) {
	sp := assignedSubPhase()
	api := &mockWorkflowAPI{}
	coord, phase := seedTree(t, api, sp)

	newName := "Construction and fit-out"
	api.PatchPhaseFunc = func(ctx context.Context, id uuid.UUID, req *dto.UpdatePhaseRequest) (*dto.PhaseResponse, error) {
		// List-shaped response without the sub-phase collection
		bare := phase
		bare.Name = newName
		bare.SubPhases = nil
		resp := dto.ToPhaseResponse(&bare)
		return &resp, nil
	}

	updated, err := coord.EditPhase(context.Background(), phase.ID, &dto.UpdatePhaseRequest{Name: &newName})
	if err != nil {
		t.Fatalf("expected success, got %v", err)
	}
	if updated.Name != newName {
		t.Errorf("expected %q, got %q", newName, updated.Name)
	}
	if len(updated.SubPhases) != 2 {
		t.Errorf("expected cached sub-phases kept, got %d", len(updated.SubPhases))
	}

	if _, _, err := coord.Store().SubPhase(sp.ID); err != nil {
		t.Errorf("expected sub-phase still resolvable after phase edit, got %v", err)
	}
}

func TestLoadProject_SeedsStore(t *testing.T) {
	sp := assignedSubPhase()
	projectID := uuid.New()
	phase := domain.Phase{
		BaseModel:    domain.BaseModel{ID: sp.PhaseID},
		ProjectID:    projectID,
		Name:         "Design",
		DisplayOrder: 1,
		SubPhases:    []domain.SubPhase{sp},
	}
	second := domain.Phase{
		BaseModel:    domain.BaseModel{ID: uuid.New()},
		ProjectID:    projectID,
		Name:         "Construction",
		DisplayOrder: 2,
	}
	api := &mockWorkflowAPI{
		FetchProjectPhasesFunc: func(ctx context.Context, id uuid.UUID) (*dto.ProjectPhasesResponse, error) {
			if id != projectID {
				t.Errorf("expected project %s, got %s", projectID, id)
			}
			return &dto.ProjectPhasesResponse{
				ProjectID: projectID,
				Phases:    []dto.PhaseResponse{dto.ToPhaseResponse(&phase), dto.ToPhaseResponse(&second)},
			}, nil
		},
	}
	coord := newTestCoordinator(api)

	phases, err := coord.LoadProject(context.Background(), projectID)
	if err != nil {
		t.Fatalf("expected success, got %v", err)
	}
	if len(phases) != 2 {
		t.Fatalf("expected 2 phases, got %d", len(phases))
	}
	if phases[0].Name != "Design" || phases[1].Name != "Construction" {
		t.Errorf("expected phases ordered by display order, got %s, %s", phases[0].Name, phases[1].Name)
	}
	if _, _, err := coord.Store().SubPhase(sp.ID); err != nil {
		t.Errorf("expected sub-phase indexed after load, got %v", err)
	}
}

func TestStore_CopiesAreIsolated(t *testing.T) {
	sp := assignedSubPhase()
	coord, phase := seedTree(t, &mockWorkflowAPI{}, sp)

	got, err := coord.Store().Phase(phase.ID)
	if err != nil {
		t.Fatalf("failed to read phase: %v", err)
	}
	got.SubPhases[0].Status = domain.SubPhaseStatusCompleted
	got.Name = "Mutated"

	again, err := coord.Store().Phase(phase.ID)
	if err != nil {
		t.Fatalf("failed to re-read phase: %v", err)
	}
	if again.Name != "Construction" {
		t.Errorf("expected stored name untouched, got %q", again.Name)
	}
	if again.SubPhases[0].Status != domain.SubPhaseStatusNotStarted {
		t.Errorf("expected stored status untouched, got %s", again.SubPhases[0].Status)
	}
}
