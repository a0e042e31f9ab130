package service

import (
	"context"

	"github.com/google/uuid"
	"github.com/prometheus/client_golang/prometheus"
	"go.uber.org/zap"

	"project-delivery-api/internal/cache"
	"project-delivery-api/internal/client"
	"project-delivery-api/internal/domain"
	"project-delivery-api/internal/metrics"
)

// newTestMetrics returns metrics bound to an isolated registry so tests do
// not collide on the default registerer
func newTestMetrics() *metrics.Metrics {
	return metrics.NewWithRegistry(prometheus.NewRegistry(), zap.NewNop())
}

// MockSubPhaseRepository is a mock implementation of SubPhaseRepository
type MockSubPhaseRepository struct {
	CreateFunc         func(ctx context.Context, subPhase *domain.SubPhase) error
	FindByIDFunc       func(ctx context.Context, id uuid.UUID) (*domain.SubPhase, error)
	FindByPhaseIDFunc  func(ctx context.Context, phaseID uuid.UUID) ([]*domain.SubPhase, error)
	UpdateFunc         func(ctx context.Context, subPhase *domain.SubPhase) error
	SaveTransitionFunc func(ctx context.Context, subPhase *domain.SubPhase, phase *domain.Phase, logEntry *domain.StatusLogEntry) error
}

func (m *MockSubPhaseRepository) Create(ctx context.Context, subPhase *domain.SubPhase) error {
	if m.CreateFunc != nil {
		return m.CreateFunc(ctx, subPhase)
	}
	return nil
}

func (m *MockSubPhaseRepository) FindByID(ctx context.Context, id uuid.UUID) (*domain.SubPhase, error) {
	if m.FindByIDFunc != nil {
		return m.FindByIDFunc(ctx, id)
	}
	return nil, nil
}

func (m *MockSubPhaseRepository) FindByPhaseID(ctx context.Context, phaseID uuid.UUID) ([]*domain.SubPhase, error) {
	if m.FindByPhaseIDFunc != nil {
		return m.FindByPhaseIDFunc(ctx, phaseID)
	}
	return nil, nil
}

func (m *MockSubPhaseRepository) Update(ctx context.Context, subPhase *domain.SubPhase) error {
	if m.UpdateFunc != nil {
		return m.UpdateFunc(ctx, subPhase)
	}
	return nil
}

func (m *MockSubPhaseRepository) SaveTransition(ctx context.Context, subPhase *domain.SubPhase, phase *domain.Phase, logEntry *domain.StatusLogEntry) error {
	if m.SaveTransitionFunc != nil {
		return m.SaveTransitionFunc(ctx, subPhase, phase, logEntry)
	}
	return nil
}

// MockPhaseRepository is a mock implementation of PhaseRepository
type MockPhaseRepository struct {
	CreateFunc          func(ctx context.Context, phase *domain.Phase) error
	FindByIDFunc        func(ctx context.Context, id uuid.UUID) (*domain.Phase, error)
	FindByProjectIDFunc func(ctx context.Context, projectID uuid.UUID) ([]*domain.Phase, error)
	UpdateFunc          func(ctx context.Context, phase *domain.Phase) error
	DeleteFunc          func(ctx context.Context, id uuid.UUID) error
	SaveTransitionFunc  func(ctx context.Context, phase *domain.Phase, logEntry *domain.StatusLogEntry) error
}

func (m *MockPhaseRepository) Create(ctx context.Context, phase *domain.Phase) error {
	if m.CreateFunc != nil {
		return m.CreateFunc(ctx, phase)
	}
	return nil
}

func (m *MockPhaseRepository) FindByID(ctx context.Context, id uuid.UUID) (*domain.Phase, error) {
	if m.FindByIDFunc != nil {
		return m.FindByIDFunc(ctx, id)
	}
	return nil, nil
}

func (m *MockPhaseRepository) FindByProjectID(ctx context.Context, projectID uuid.UUID) ([]*domain.Phase, error) {
	if m.FindByProjectIDFunc != nil {
		return m.FindByProjectIDFunc(ctx, projectID)
	}
	return nil, nil
}

func (m *MockPhaseRepository) Update(ctx context.Context, phase *domain.Phase) error {
	if m.UpdateFunc != nil {
		return m.UpdateFunc(ctx, phase)
	}
	return nil
}

func (m *MockPhaseRepository) Delete(ctx context.Context, id uuid.UUID) error {
	if m.DeleteFunc != nil {
		return m.DeleteFunc(ctx, id)
	}
	return nil
}

func (m *MockPhaseRepository) SaveTransition(ctx context.Context, phase *domain.Phase, logEntry *domain.StatusLogEntry) error {
	if m.SaveTransitionFunc != nil {
		return m.SaveTransitionFunc(ctx, phase, logEntry)
	}
	return nil
}

// MockStatusLogRepository is a mock implementation of StatusLogRepository
type MockStatusLogRepository struct {
	AppendFunc        func(ctx context.Context, entityType domain.LogEntityType, entityID uuid.UUID, previousStatus *string, newStatus, notes string, changedBy uuid.UUID) (*domain.StatusLogEntry, error)
	FindByEntityFunc  func(ctx context.Context, entityType domain.LogEntityType, entityID uuid.UUID) ([]*domain.StatusLogEntry, error)
	CountByEntityFunc func(ctx context.Context, entityType domain.LogEntityType, entityID uuid.UUID) (int64, error)
}

func (m *MockStatusLogRepository) Append(ctx context.Context, entityType domain.LogEntityType, entityID uuid.UUID, previousStatus *string, newStatus, notes string, changedBy uuid.UUID) (*domain.StatusLogEntry, error) {
	if m.AppendFunc != nil {
		return m.AppendFunc(ctx, entityType, entityID, previousStatus, newStatus, notes, changedBy)
	}
	return nil, nil
}

func (m *MockStatusLogRepository) FindByEntity(ctx context.Context, entityType domain.LogEntityType, entityID uuid.UUID) ([]*domain.StatusLogEntry, error) {
	if m.FindByEntityFunc != nil {
		return m.FindByEntityFunc(ctx, entityType, entityID)
	}
	return nil, nil
}

func (m *MockStatusLogRepository) CountByEntity(ctx context.Context, entityType domain.LogEntityType, entityID uuid.UUID) (int64, error) {
	if m.CountByEntityFunc != nil {
		return m.CountByEntityFunc(ctx, entityType, entityID)
	}
	return 0, nil
}

// MockChecklistRepository is a mock implementation of ChecklistRepository
type MockChecklistRepository struct {
	CreateFunc           func(ctx context.Context, item *domain.ChecklistItem) error
	FindByIDFunc         func(ctx context.Context, id uuid.UUID) (*domain.ChecklistItem, error)
	FindBySubPhaseIDFunc func(ctx context.Context, subPhaseID uuid.UUID) ([]*domain.ChecklistItem, error)
	UpdateFunc           func(ctx context.Context, item *domain.ChecklistItem) error
}

func (m *MockChecklistRepository) Create(ctx context.Context, item *domain.ChecklistItem) error {
	if m.CreateFunc != nil {
		return m.CreateFunc(ctx, item)
	}
	return nil
}

func (m *MockChecklistRepository) FindByID(ctx context.Context, id uuid.UUID) (*domain.ChecklistItem, error) {
	if m.FindByIDFunc != nil {
		return m.FindByIDFunc(ctx, id)
	}
	return nil, nil
}

func (m *MockChecklistRepository) FindBySubPhaseID(ctx context.Context, subPhaseID uuid.UUID) ([]*domain.ChecklistItem, error) {
	if m.FindBySubPhaseIDFunc != nil {
		return m.FindBySubPhaseIDFunc(ctx, subPhaseID)
	}
	return nil, nil
}

func (m *MockChecklistRepository) Update(ctx context.Context, item *domain.ChecklistItem) error {
	if m.UpdateFunc != nil {
		return m.UpdateFunc(ctx, item)
	}
	return nil
}

// MockApprovalRepository is a mock implementation of ApprovalRepository
type MockApprovalRepository struct {
	CreateFunc                  func(ctx context.Context, approval *domain.Approval) error
	FindByIDFunc                func(ctx context.Context, id uuid.UUID) (*domain.Approval, error)
	FindBySubPhaseIDFunc        func(ctx context.Context, subPhaseID uuid.UUID) ([]*domain.Approval, error)
	FindPendingBySubPhaseIDFunc func(ctx context.Context, subPhaseID uuid.UUID) ([]*domain.Approval, error)
	UpdateFunc                  func(ctx context.Context, approval *domain.Approval) error
}

func (m *MockApprovalRepository) Create(ctx context.Context, approval *domain.Approval) error {
	if m.CreateFunc != nil {
		return m.CreateFunc(ctx, approval)
	}
	return nil
}

func (m *MockApprovalRepository) FindByID(ctx context.Context, id uuid.UUID) (*domain.Approval, error) {
	if m.FindByIDFunc != nil {
		return m.FindByIDFunc(ctx, id)
	}
	return nil, nil
}

func (m *MockApprovalRepository) FindBySubPhaseID(ctx context.Context, subPhaseID uuid.UUID) ([]*domain.Approval, error) {
	if m.FindBySubPhaseIDFunc != nil {
		return m.FindBySubPhaseIDFunc(ctx, subPhaseID)
	}
	return nil, nil
}

func (m *MockApprovalRepository) FindPendingBySubPhaseID(ctx context.Context, subPhaseID uuid.UUID) ([]*domain.Approval, error) {
	if m.FindPendingBySubPhaseIDFunc != nil {
		return m.FindPendingBySubPhaseIDFunc(ctx, subPhaseID)
	}
	return nil, nil
}

func (m *MockApprovalRepository) Update(ctx context.Context, approval *domain.Approval) error {
	if m.UpdateFunc != nil {
		return m.UpdateFunc(ctx, approval)
	}
	return nil
}

// MockCommentRepository is a mock implementation of CommentRepository
type MockCommentRepository struct {
	CreateFunc           func(ctx context.Context, comment *domain.Comment) error
	FindByIDFunc         func(ctx context.Context, id uuid.UUID) (*domain.Comment, error)
	FindBySubPhaseIDFunc func(ctx context.Context, subPhaseID uuid.UUID) ([]*domain.Comment, error)
}

func (m *MockCommentRepository) Create(ctx context.Context, comment *domain.Comment) error {
	if m.CreateFunc != nil {
		return m.CreateFunc(ctx, comment)
	}
	return nil
}

func (m *MockCommentRepository) FindByID(ctx context.Context, id uuid.UUID) (*domain.Comment, error) {
	if m.FindByIDFunc != nil {
		return m.FindByIDFunc(ctx, id)
	}
	return nil, nil
}

func (m *MockCommentRepository) FindBySubPhaseID(ctx context.Context, subPhaseID uuid.UUID) ([]*domain.Comment, error) {
	if m.FindBySubPhaseIDFunc != nil {
		return m.FindBySubPhaseIDFunc(ctx, subPhaseID)
	}
	return nil, nil
}

// MockAttachmentRepository is a mock implementation of AttachmentRepository
type MockAttachmentRepository struct {
	CreateFunc                     func(ctx context.Context, attachment *domain.Attachment) error
	FindByIDFunc                   func(ctx context.Context, id uuid.UUID) (*domain.Attachment, error)
	FindByEntityIDFunc             func(ctx context.Context, entityType domain.EntityType, entityID uuid.UUID) ([]*domain.Attachment, error)
	FindByIDsFunc                  func(ctx context.Context, ids []uuid.UUID) ([]*domain.Attachment, error)
	DeleteFunc                     func(ctx context.Context, id uuid.UUID) error
	FindExpiredTempAttachmentsFunc func(ctx context.Context) ([]*domain.Attachment, error)
	ConfirmAttachmentsFunc         func(ctx context.Context, attachmentIDs []uuid.UUID, entityID uuid.UUID) error
	DeleteBatchFunc                func(ctx context.Context, attachmentIDs []uuid.UUID) error
}

func (m *MockAttachmentRepository) Create(ctx context.Context, attachment *domain.Attachment) error {
	if m.CreateFunc != nil {
		return m.CreateFunc(ctx, attachment)
	}
	return nil
}

func (m *MockAttachmentRepository) FindByID(ctx context.Context, id uuid.UUID) (*domain.Attachment, error) {
	if m.FindByIDFunc != nil {
		return m.FindByIDFunc(ctx, id)
	}
	return nil, nil
}

func (m *MockAttachmentRepository) FindByEntityID(ctx context.Context, entityType domain.EntityType, entityID uuid.UUID) ([]*domain.Attachment, error) {
	if m.FindByEntityIDFunc != nil {
		return m.FindByEntityIDFunc(ctx, entityType, entityID)
	}
	return nil, nil
}

func (m *MockAttachmentRepository) FindByIDs(ctx context.Context, ids []uuid.UUID) ([]*domain.Attachment, error) {
	if m.FindByIDsFunc != nil {
		return m.FindByIDsFunc(ctx, ids)
	}
	return nil, nil
}

func (m *MockAttachmentRepository) Delete(ctx context.Context, id uuid.UUID) error {
	if m.DeleteFunc != nil {
		return m.DeleteFunc(ctx, id)
	}
	return nil
}

func (m *MockAttachmentRepository) FindExpiredTempAttachments(ctx context.Context) ([]*domain.Attachment, error) {
	if m.FindExpiredTempAttachmentsFunc != nil {
		return m.FindExpiredTempAttachmentsFunc(ctx)
	}
	return nil, nil
}

func (m *MockAttachmentRepository) ConfirmAttachments(ctx context.Context, attachmentIDs []uuid.UUID, entityID uuid.UUID) error {
	if m.ConfirmAttachmentsFunc != nil {
		return m.ConfirmAttachmentsFunc(ctx, attachmentIDs, entityID)
	}
	return nil
}

func (m *MockAttachmentRepository) DeleteBatch(ctx context.Context, attachmentIDs []uuid.UUID) error {
	if m.DeleteBatchFunc != nil {
		return m.DeleteBatchFunc(ctx, attachmentIDs)
	}
	return nil
}

// MockProgressCache is a mock implementation of cache.ProgressCache
type MockProgressCache struct {
	GetFunc        func(ctx context.Context, projectID uuid.UUID) (*cache.ProjectProgressSnapshot, error)
	SetFunc        func(ctx context.Context, snapshot cache.ProjectProgressSnapshot) error
	InvalidateFunc func(ctx context.Context, projectID uuid.UUID) error
}

func (m *MockProgressCache) Get(ctx context.Context, projectID uuid.UUID) (*cache.ProjectProgressSnapshot, error) {
	if m.GetFunc != nil {
		return m.GetFunc(ctx, projectID)
	}
	return nil, nil
}

func (m *MockProgressCache) Set(ctx context.Context, snapshot cache.ProjectProgressSnapshot) error {
	if m.SetFunc != nil {
		return m.SetFunc(ctx, snapshot)
	}
	return nil
}

func (m *MockProgressCache) Invalidate(ctx context.Context, projectID uuid.UUID) error {
	if m.InvalidateFunc != nil {
		return m.InvalidateFunc(ctx, projectID)
	}
	return nil
}

// MockNotificationClient is a mock implementation of client.NotificationClient
type MockNotificationClient struct {
	SendNotificationFunc      func(ctx context.Context, event client.NotificationEvent) error
	SendBulkNotificationsFunc func(ctx context.Context, events []client.NotificationEvent) error
}

func (m *MockNotificationClient) SendNotification(ctx context.Context, event client.NotificationEvent) error {
	if m.SendNotificationFunc != nil {
		return m.SendNotificationFunc(ctx, event)
	}
	return nil
}

func (m *MockNotificationClient) SendBulkNotifications(ctx context.Context, events []client.NotificationEvent) error {
	if m.SendBulkNotificationsFunc != nil {
		return m.SendBulkNotificationsFunc(ctx, events)
	}
	return nil
}
