package repository

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"project-delivery-api/internal/domain"
)

// PhaseRepository defines the interface for phase data access
type PhaseRepository interface {
	Create(ctx context.Context, phase *domain.Phase) error
	FindByID(ctx context.Context, id uuid.UUID) (*domain.Phase, error)
	FindByProjectID(ctx context.Context, projectID uuid.UUID) ([]*domain.Phase, error)
	Update(ctx context.Context, phase *domain.Phase) error
	Delete(ctx context.Context, id uuid.UUID) error
	// SaveTransition persists a phase status transition atomically with its
	// single status log entry.
	SaveTransition(ctx context.Context, phase *domain.Phase, logEntry *domain.StatusLogEntry) error
}

// phaseRepositoryImpl is the GORM implementation of PhaseRepository
type phaseRepositoryImpl struct {
	db *gorm.DB
}

// NewPhaseRepository creates a new instance of PhaseRepository
func NewPhaseRepository(db *gorm.DB) PhaseRepository {
	return &phaseRepositoryImpl{db: db}
}

// Create creates a new phase
func (r *phaseRepositoryImpl) Create(ctx context.Context, phase *domain.Phase) error {
	return r.db.WithContext(ctx).Create(phase).Error
}

// FindByID finds a phase by ID with its sub-phases and their checklist items
func (r *phaseRepositoryImpl) FindByID(ctx context.Context, id uuid.UUID) (*domain.Phase, error) {
	var phase domain.Phase
	if err := r.db.WithContext(ctx).
		Preload("SubPhases", func(db *gorm.DB) *gorm.DB {
			return db.Order("sub_phases.display_order ASC")
		}).
		Preload("SubPhases.ChecklistItems", func(db *gorm.DB) *gorm.DB {
			return db.Order("checklist_items.display_order ASC")
		}).
		First(&phase, "id = ?", id).Error; err != nil {
		return nil, err
	}
	return &phase, nil
}

// FindByProjectID finds all phases of a project in display order, with
// sub-phases and checklist items loaded for progress derivation
func (r *phaseRepositoryImpl) FindByProjectID(ctx context.Context, projectID uuid.UUID) ([]*domain.Phase, error) {
	var phases []*domain.Phase
	if err := r.db.WithContext(ctx).
		Preload("SubPhases", func(db *gorm.DB) *gorm.DB {
			return db.Order("sub_phases.display_order ASC")
		}).
		Preload("SubPhases.ChecklistItems", func(db *gorm.DB) *gorm.DB {
			return db.Order("checklist_items.display_order ASC")
		}).
		Where("project_id = ?", projectID).
		Order("display_order ASC").
		Find(&phases).Error; err != nil {
		return nil, err
	}
	return phases, nil
}

// Update persists phase fields, including derived progress and dates
func (r *phaseRepositoryImpl) Update(ctx context.Context, phase *domain.Phase) error {
	return r.db.WithContext(ctx).Save(phase).Error
}

// Delete soft deletes a phase
func (r *phaseRepositoryImpl) Delete(ctx context.Context, id uuid.UUID) error {
	return r.db.WithContext(ctx).Delete(&domain.Phase{}, "id = ?", id).Error
}

// SaveTransition runs the phase transition write set in a single transaction
func (r *phaseRepositoryImpl) SaveTransition(ctx context.Context, phase *domain.Phase, logEntry *domain.StatusLogEntry) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Omit("SubPhases").Save(phase).Error; err != nil {
			return err
		}
		if logEntry != nil {
			if err := tx.Create(logEntry).Error; err != nil {
				return err
			}
		}
		return nil
	})
}
