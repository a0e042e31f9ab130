package repository

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"project-delivery-api/internal/domain"
)

// StatusLogRepository defines the interface for the append-only status audit
// log. There is deliberately no update or delete: entries are immutable once
// appended, and UI timelines read history from here, never from current state.
type StatusLogRepository interface {
	Append(ctx context.Context, entityType domain.LogEntityType, entityID uuid.UUID, previousStatus *string, newStatus, notes string, changedBy uuid.UUID) (*domain.StatusLogEntry, error)
	FindByEntity(ctx context.Context, entityType domain.LogEntityType, entityID uuid.UUID) ([]*domain.StatusLogEntry, error)
	CountByEntity(ctx context.Context, entityType domain.LogEntityType, entityID uuid.UUID) (int64, error)
}

// statusLogRepositoryImpl is the GORM implementation of StatusLogRepository
type statusLogRepositoryImpl struct {
	db *gorm.DB
}

// NewStatusLogRepository creates a new instance of StatusLogRepository
func NewStatusLogRepository(db *gorm.DB) StatusLogRepository {
	return &statusLogRepositoryImpl{db: db}
}

// Append writes a new immutable log entry. Empty or whitespace-only notes are
// rejected here as a last line of defense; callers validate earlier.
func (r *statusLogRepositoryImpl) Append(ctx context.Context, entityType domain.LogEntityType, entityID uuid.UUID, previousStatus *string, newStatus, notes string, changedBy uuid.UUID) (*domain.StatusLogEntry, error) {
	if strings.TrimSpace(notes) == "" {
		return nil, fmt.Errorf("status log notes must not be empty")
	}
	entry := &domain.StatusLogEntry{
		EntityType:     entityType,
		EntityID:       entityID,
		PreviousStatus: previousStatus,
		NewStatus:      newStatus,
		Notes:          notes,
		ChangedBy:      changedBy,
		ChangedAt:      time.Now().UTC(),
	}
	if err := r.db.WithContext(ctx).Create(entry).Error; err != nil {
		return nil, err
	}
	return entry, nil
}

// FindByEntity returns the entity's audit trail ordered by changed_at
// descending for display; storage order stays insertion order.
func (r *statusLogRepositoryImpl) FindByEntity(ctx context.Context, entityType domain.LogEntityType, entityID uuid.UUID) ([]*domain.StatusLogEntry, error) {
	var entries []*domain.StatusLogEntry
	if err := r.db.WithContext(ctx).
		Where("entity_type = ? AND entity_id = ?", entityType, entityID).
		Order("changed_at DESC").
		Find(&entries).Error; err != nil {
		return nil, err
	}
	return entries, nil
}

// CountByEntity returns the number of log entries for an entity
func (r *statusLogRepositoryImpl) CountByEntity(ctx context.Context, entityType domain.LogEntityType, entityID uuid.UUID) (int64, error) {
	var count int64
	if err := r.db.WithContext(ctx).
		Model(&domain.StatusLogEntry{}).
		Where("entity_type = ? AND entity_id = ?", entityType, entityID).
		Count(&count).Error; err != nil {
		return 0, err
	}
	return count, nil
}
