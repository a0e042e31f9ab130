package repository

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"project-delivery-api/internal/domain"
)

// SubPhaseRepository defines the interface for sub-phase data access
type SubPhaseRepository interface {
	Create(ctx context.Context, subPhase *domain.SubPhase) error
	FindByID(ctx context.Context, id uuid.UUID) (*domain.SubPhase, error)
	FindByPhaseID(ctx context.Context, phaseID uuid.UUID) ([]*domain.SubPhase, error)
	Update(ctx context.Context, subPhase *domain.SubPhase) error
	// SaveTransition persists a status transition atomically: the updated
	// sub-phase, the recomputed owning phase, and exactly one status log
	// entry succeed or fail together.
	SaveTransition(ctx context.Context, subPhase *domain.SubPhase, phase *domain.Phase, logEntry *domain.StatusLogEntry) error
}

// subPhaseRepositoryImpl is the GORM implementation of SubPhaseRepository
type subPhaseRepositoryImpl struct {
	db *gorm.DB
}

// NewSubPhaseRepository creates a new instance of SubPhaseRepository
func NewSubPhaseRepository(db *gorm.DB) SubPhaseRepository {
	return &subPhaseRepositoryImpl{db: db}
}

// Create creates a new sub-phase
func (r *subPhaseRepositoryImpl) Create(ctx context.Context, subPhase *domain.SubPhase) error {
	return r.db.WithContext(ctx).Create(subPhase).Error
}

// FindByID finds a sub-phase by ID with its owned collections loaded
func (r *subPhaseRepositoryImpl) FindByID(ctx context.Context, id uuid.UUID) (*domain.SubPhase, error) {
	var subPhase domain.SubPhase
	if err := r.db.WithContext(ctx).
		Preload("ChecklistItems", func(db *gorm.DB) *gorm.DB {
			return db.Order("checklist_items.display_order ASC")
		}).
		Preload("Comments", func(db *gorm.DB) *gorm.DB {
			return db.Order("comments.created_at ASC")
		}).
		Preload("Approvals", func(db *gorm.DB) *gorm.DB {
			return db.Order("approvals.requested_at DESC")
		}).
		First(&subPhase, "id = ?", id).Error; err != nil {
		return nil, err
	}
	return &subPhase, nil
}

// FindByPhaseID finds all sub-phases of a phase in display order
func (r *subPhaseRepositoryImpl) FindByPhaseID(ctx context.Context, phaseID uuid.UUID) ([]*domain.SubPhase, error) {
	var subPhases []*domain.SubPhase
	if err := r.db.WithContext(ctx).
		Preload("ChecklistItems", func(db *gorm.DB) *gorm.DB {
			return db.Order("checklist_items.display_order ASC")
		}).
		Where("phase_id = ?", phaseID).
		Order("display_order ASC").
		Find(&subPhases).Error; err != nil {
		return nil, err
	}
	return subPhases, nil
}

// Update persists sub-phase fields
func (r *subPhaseRepositoryImpl) Update(ctx context.Context, subPhase *domain.SubPhase) error {
	return r.db.WithContext(ctx).Save(subPhase).Error
}

// SaveTransition runs the transition write set in a single transaction
func (r *subPhaseRepositoryImpl) SaveTransition(ctx context.Context, subPhase *domain.SubPhase, phase *domain.Phase, logEntry *domain.StatusLogEntry) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Omit("ChecklistItems", "Comments", "Approvals").Save(subPhase).Error; err != nil {
			return err
		}
		if phase != nil {
			if err := tx.Omit("SubPhases").Save(phase).Error; err != nil {
				return err
			}
		}
		if logEntry != nil {
			if err := tx.Create(logEntry).Error; err != nil {
				return err
			}
		}
		return nil
	})
}
