package workflow

import (
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"

	"project-delivery-api/internal/domain"
)

// ErrNoChange signals that the requested status equals the current status.
// Callers treat it as an idempotent no-op: no update, no status log entry.
var ErrNoChange = errors.New("status unchanged")

// Rejection codes returned by the transition validator
const (
	RejectNoAssignee        = "NO_ASSIGNEE"
	RejectMissingNotes      = "MISSING_NOTES"
	RejectMissingSkipReason = "MISSING_SKIP_REASON"
	RejectCannotSkip        = "CANNOT_SKIP"
	RejectInvalidStatus     = "INVALID_STATUS"
	RejectInvalidTransition = "INVALID_TRANSITION"
	RejectTerminalStatus    = "TERMINAL_STATUS"
)

// Rejection describes why a requested status transition is not legal.
// The same rejection is produced client-side (fail fast, no network call)
// and server-side (authoritative enforcement).
type Rejection struct {
	Code    string
	Message string
}

func (r *Rejection) Error() string {
	return r.Message
}

func reject(code, format string, args ...interface{}) *Rejection {
	return &Rejection{Code: code, Message: fmt.Sprintf(format, args...)}
}

// TransitionContext carries the human-supplied inputs accompanying a
// requested status change
type TransitionContext struct {
	Notes      string
	SkipReason string
	Actor      uuid.UUID
}

// HasNotes reports whether non-whitespace justification notes were supplied
func (c TransitionContext) HasNotes() bool {
	return strings.TrimSpace(c.Notes) != ""
}

// HasSkipReason reports whether a non-whitespace skip reason was supplied
func (c TransitionContext) HasSkipReason() bool {
	return strings.TrimSpace(c.SkipReason) != ""
}

// ValidateSubPhaseTransition decides whether a requested sub-phase status
// change is legal given the current state and supplied inputs. It never
// mutates the sub-phase. Returns nil when the transition is accepted,
// ErrNoChange when requested equals current, or a *Rejection.
func ValidateSubPhaseTransition(sp *domain.SubPhase, requested domain.SubPhaseStatus, ctx TransitionContext) error {
	if !requested.IsValid() {
		return reject(RejectInvalidStatus, "unknown sub-phase status %q", requested)
	}
	if sp.Status == requested {
		return ErrNoChange
	}
	if sp.Status.IsTerminal() {
		return reject(RejectTerminalStatus, "sub-phase is %s; no further transitions are allowed", sp.Status)
	}

	switch sp.Status {
	case domain.SubPhaseStatusNotStarted:
		switch requested {
		case domain.SubPhaseStatusInProgress:
			if !sp.HasAssignee() {
				return reject(RejectNoAssignee, "assign someone before starting")
			}
			return nil
		case domain.SubPhaseStatusSkipped:
			return validateSkip(sp, ctx)
		}

	case domain.SubPhaseStatusInProgress:
		switch requested {
		case domain.SubPhaseStatusCompleted:
			if !ctx.HasNotes() {
				return reject(RejectMissingNotes, "completion notes required")
			}
			return nil
		case domain.SubPhaseStatusOnHold:
			if !ctx.HasNotes() {
				return reject(RejectMissingNotes, "a note explaining the hold is required")
			}
			return nil
		case domain.SubPhaseStatusSkipped:
			return validateSkip(sp, ctx)
		}

	case domain.SubPhaseStatusOnHold:
		switch requested {
		case domain.SubPhaseStatusInProgress:
			if !ctx.HasNotes() {
				return reject(RejectMissingNotes, "a note explaining the resume is required")
			}
			return nil
		case domain.SubPhaseStatusSkipped:
			return validateSkip(sp, ctx)
		}
	}

	return reject(RejectInvalidTransition, "cannot move sub-phase from %s to %s", sp.Status, requested)
}

func validateSkip(sp *domain.SubPhase, ctx TransitionContext) error {
	if !sp.Skippable() {
		return reject(RejectCannotSkip, "this sub-phase cannot be skipped")
	}
	if !ctx.HasSkipReason() {
		return reject(RejectMissingSkipReason, "a reason is required to skip")
	}
	return nil
}

// ValidatePhaseTransition decides whether a requested phase status change is
// legal. The phase machine mirrors the sub-phase machine minus the checklist
// and approval specifics; every change still requires justification notes.
func ValidatePhaseTransition(p *domain.Phase, requested domain.PhaseStatus, ctx TransitionContext) error {
	if !requested.IsValid() {
		return reject(RejectInvalidStatus, "unknown phase status %q", requested)
	}
	if p.Status == requested {
		return ErrNoChange
	}
	if p.Status.IsTerminal() {
		return reject(RejectTerminalStatus, "phase is %s; no further transitions are allowed", p.Status)
	}
	if requested == domain.PhaseStatusInProgress && p.Status == domain.PhaseStatusNotStarted && !p.HasAssignee() {
		return reject(RejectNoAssignee, "assign someone before starting")
	}
	if !ctx.HasNotes() {
		return reject(RejectMissingNotes, "status change notes required")
	}
	return nil
}
