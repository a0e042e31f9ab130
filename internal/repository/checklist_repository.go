package repository

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"project-delivery-api/internal/domain"
)

// ChecklistRepository defines the interface for checklist item data access
type ChecklistRepository interface {
	Create(ctx context.Context, item *domain.ChecklistItem) error
	FindByID(ctx context.Context, id uuid.UUID) (*domain.ChecklistItem, error)
	FindBySubPhaseID(ctx context.Context, subPhaseID uuid.UUID) ([]*domain.ChecklistItem, error)
	Update(ctx context.Context, item *domain.ChecklistItem) error
}

// checklistRepositoryImpl is the GORM implementation of ChecklistRepository
type checklistRepositoryImpl struct {
	db *gorm.DB
}

// NewChecklistRepository creates a new instance of ChecklistRepository
func NewChecklistRepository(db *gorm.DB) ChecklistRepository {
	return &checklistRepositoryImpl{db: db}
}

// Create creates a new checklist item
func (r *checklistRepositoryImpl) Create(ctx context.Context, item *domain.ChecklistItem) error {
	return r.db.WithContext(ctx).Create(item).Error
}

// FindByID finds a checklist item by ID
func (r *checklistRepositoryImpl) FindByID(ctx context.Context, id uuid.UUID) (*domain.ChecklistItem, error) {
	var item domain.ChecklistItem
	if err := r.db.WithContext(ctx).First(&item, "id = ?", id).Error; err != nil {
		return nil, err
	}
	return &item, nil
}

// FindBySubPhaseID finds all checklist items of a sub-phase in display order
func (r *checklistRepositoryImpl) FindBySubPhaseID(ctx context.Context, subPhaseID uuid.UUID) ([]*domain.ChecklistItem, error) {
	var items []*domain.ChecklistItem
	if err := r.db.WithContext(ctx).
		Where("sub_phase_id = ?", subPhaseID).
		Order("display_order ASC").
		Find(&items).Error; err != nil {
		return nil, err
	}
	return items, nil
}

// Update persists checklist item fields
func (r *checklistRepositoryImpl) Update(ctx context.Context, item *domain.ChecklistItem) error {
	return r.db.WithContext(ctx).Save(item).Error
}
