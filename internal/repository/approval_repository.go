package repository

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"project-delivery-api/internal/domain"
)

// ApprovalRepository defines the interface for approval data access.
// Approvals are history-preserving: responses update the addressed record,
// but a new request always creates a new row.
type ApprovalRepository interface {
	Create(ctx context.Context, approval *domain.Approval) error
	FindByID(ctx context.Context, id uuid.UUID) (*domain.Approval, error)
	FindBySubPhaseID(ctx context.Context, subPhaseID uuid.UUID) ([]*domain.Approval, error)
	FindPendingBySubPhaseID(ctx context.Context, subPhaseID uuid.UUID) ([]*domain.Approval, error)
	Update(ctx context.Context, approval *domain.Approval) error
}

// approvalRepositoryImpl is the GORM implementation of ApprovalRepository
type approvalRepositoryImpl struct {
	db *gorm.DB
}

// NewApprovalRepository creates a new instance of ApprovalRepository
func NewApprovalRepository(db *gorm.DB) ApprovalRepository {
	return &approvalRepositoryImpl{db: db}
}

// Create creates a new approval record
func (r *approvalRepositoryImpl) Create(ctx context.Context, approval *domain.Approval) error {
	return r.db.WithContext(ctx).Create(approval).Error
}

// FindByID finds an approval by ID
func (r *approvalRepositoryImpl) FindByID(ctx context.Context, id uuid.UUID) (*domain.Approval, error) {
	var approval domain.Approval
	if err := r.db.WithContext(ctx).First(&approval, "id = ?", id).Error; err != nil {
		return nil, err
	}
	return &approval, nil
}

// FindBySubPhaseID returns the sub-phase's approval history, newest first
func (r *approvalRepositoryImpl) FindBySubPhaseID(ctx context.Context, subPhaseID uuid.UUID) ([]*domain.Approval, error) {
	var approvals []*domain.Approval
	if err := r.db.WithContext(ctx).
		Where("sub_phase_id = ?", subPhaseID).
		Order("requested_at DESC").
		Find(&approvals).Error; err != nil {
		return nil, err
	}
	return approvals, nil
}

// FindPendingBySubPhaseID returns the sub-phase's unanswered approvals
func (r *approvalRepositoryImpl) FindPendingBySubPhaseID(ctx context.Context, subPhaseID uuid.UUID) ([]*domain.Approval, error) {
	var approvals []*domain.Approval
	if err := r.db.WithContext(ctx).
		Where("sub_phase_id = ? AND status = ?", subPhaseID, domain.ApprovalStatusPending).
		Order("requested_at DESC").
		Find(&approvals).Error; err != nil {
		return nil, err
	}
	return approvals, nil
}

// Update persists a response onto an existing approval record
func (r *approvalRepositoryImpl) Update(ctx context.Context, approval *domain.Approval) error {
	return r.db.WithContext(ctx).Save(approval).Error
}
