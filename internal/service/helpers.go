package service

import (
	"context"
	"strings"
	"time"

	"github.com/google/uuid"

	"project-delivery-api/internal/domain"
	"project-delivery-api/internal/response"
	"project-delivery-api/internal/workflow"
)

// toDomainAttachments converts a pointer slice to the value slice embedded in
// detail responses
func toDomainAttachments(attachments []*domain.Attachment) []domain.Attachment {
	if attachments == nil {
		return nil
	}
	result := make([]domain.Attachment, len(attachments))
	for i, att := range attachments {
		if att != nil {
			result[i] = *att
		}
	}
	return result
}

// toDomainStatusLogs converts a pointer slice to the value slice embedded in
// detail responses
func toDomainStatusLogs(entries []*domain.StatusLogEntry) []domain.StatusLogEntry {
	if entries == nil {
		return nil
	}
	result := make([]domain.StatusLogEntry, len(entries))
	for i, e := range entries {
		if e != nil {
			result[i] = *e
		}
	}
	return result
}

// removeDuplicateUUIDs removes duplicate UUIDs from a slice
func removeDuplicateUUIDs(uuids []uuid.UUID) []uuid.UUID {
	seen := make(map[uuid.UUID]bool)
	result := make([]uuid.UUID, 0, len(uuids))
	for _, id := range uuids {
		if !seen[id] {
			seen[id] = true
			result = append(result, id)
		}
	}
	return result
}

// validateDateRange validates that startDate is not after endDate
func validateDateRange(startDate, endDate *time.Time) error {
	if startDate != nil && endDate != nil {
		if startDate.After(*endDate) {
			return response.NewAppError(response.ErrCodeValidation, "Planned start date cannot be after planned end date", "")
		}
	}
	return nil
}

// contextKey is the private type for context values set by this package, so
// keys cannot collide with other packages.
type contextKey string

const actorContextKey contextKey = "actor"

// WithActor returns a context carrying the authenticated user id. The HTTP
// layer attaches it after authentication so services can resolve the acting
// user.
func WithActor(ctx context.Context, userID uuid.UUID) context.Context {
	return context.WithValue(ctx, actorContextKey, userID)
}

// actorFromContext extracts the authenticated user id placed in the context
// by the auth middleware
func actorFromContext(ctx context.Context) (uuid.UUID, error) {
	actor, ok := ctx.Value(actorContextKey).(uuid.UUID)
	if !ok || actor == uuid.Nil {
		return uuid.Nil, response.NewAppError(response.ErrCodeUnauthorized, "User ID not found in context", "")
	}
	return actor, nil
}

// emptyNotes reports whether notes are empty after trimming whitespace
func emptyNotes(notes string) bool {
	return strings.TrimSpace(notes) == ""
}

// rejectionError maps a validator rejection to the service error taxonomy.
// Missing-input problems are validation errors; transitions that are
// structurally impossible from the current state are conflicts.
func rejectionError(rej *workflow.Rejection) *response.AppError {
	switch rej.Code {
	case workflow.RejectInvalidTransition, workflow.RejectTerminalStatus:
		return response.NewAppError(response.ErrCodeConflict, rej.Message, rej.Code)
	default:
		return response.NewAppError(response.ErrCodeValidation, rej.Message, rej.Code)
	}
}
