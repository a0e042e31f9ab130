package domain

import (
	"time"

	"github.com/google/uuid"
)

// LogEntityType identifies which entity a status log entry belongs to
type LogEntityType string

const (
	LogEntityTypePhase    LogEntityType = "PHASE"
	LogEntityTypeSubPhase LogEntityType = "SUB_PHASE"
)

// StatusLogEntry is the immutable audit record of a single status transition.
// Entries are append-only: once written they are never updated or deleted for
// the lifetime of the owning entity. Notes are mandatory and non-empty.
type StatusLogEntry struct {
	ID             uuid.UUID     `gorm:"type:uuid;primaryKey;default:gen_random_uuid()" json:"id"`
	EntityType     LogEntityType `gorm:"type:varchar(20);not null;index:idx_status_logs_entity,priority:1" json:"entity_type"`
	EntityID       uuid.UUID     `gorm:"type:uuid;not null;index:idx_status_logs_entity,priority:2" json:"entity_id"`
	PreviousStatus *string       `gorm:"type:varchar(30)" json:"previous_status"` // nil for the first transition
	NewStatus      string        `gorm:"type:varchar(30);not null" json:"new_status"`
	Notes          string        `gorm:"type:text;not null" json:"notes"`
	ChangedBy      uuid.UUID     `gorm:"type:uuid;not null" json:"changed_by"`
	ChangedAt      time.Time     `gorm:"type:timestamp;not null;index:idx_status_logs_changed_at" json:"changed_at"`
}

// TableName specifies the table name for StatusLogEntry
func (StatusLogEntry) TableName() string {
	return "status_logs"
}
