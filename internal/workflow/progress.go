package workflow

import (
	"math"
	"time"

	"project-delivery-api/internal/domain"
)

// SubPhaseProgress derives a sub-phase's progress percentage. When the
// sub-phase owns checklist items the ratio of completed items wins; otherwise
// progress is binary by status (completed is 100, everything else 0).
func SubPhaseProgress(sp *domain.SubPhase) int {
	if len(sp.ChecklistItems) > 0 {
		completed := 0
		for _, item := range sp.ChecklistItems {
			if item.IsCompleted {
				completed++
			}
		}
		return roundPercent(completed, len(sp.ChecklistItems))
	}
	if sp.Status == domain.SubPhaseStatusCompleted {
		return 100
	}
	return 0
}

// PhaseProgress derives a phase's progress percentage from the count of
// completed sub-phases. A phase with zero sub-phases reports 0%.
func PhaseProgress(p *domain.Phase) int {
	total := len(p.SubPhases)
	if total == 0 {
		return 0
	}
	completed := 0
	for i := range p.SubPhases {
		if p.SubPhases[i].IsCompleted() {
			completed++
		}
	}
	return roundPercent(completed, total)
}

// ProjectProgress derives the overall project progress as the unweighted
// arithmetic mean of each phase's progress percentage. This deliberately does
// NOT weight by sub-phase count per phase, while PhaseProgress is sub-phase
// weighted; downstream consumers depend on these exact numbers, so the
// asymmetry is preserved.
func ProjectProgress(phases []*domain.Phase) int {
	if len(phases) == 0 {
		return 0
	}
	sum := 0
	for _, p := range phases {
		sum += clampPercent(p.ProgressPercentage)
	}
	return clampPercent(int(math.Round(float64(sum) / float64(len(phases)))))
}

// RecomputePhase refreshes every derived field on the phase: each sub-phase's
// progress, the phase progress, the derived phase status (unless the phase was
// manually put on hold, blocked, or cancelled), and the actual start/end dates
// carried up from sub-phase transitions.
func RecomputePhase(p *domain.Phase) {
	for i := range p.SubPhases {
		p.SubPhases[i].ProgressPercentage = SubPhaseProgress(&p.SubPhases[i])
	}
	p.ProgressPercentage = PhaseProgress(p)

	switch p.Status {
	case domain.PhaseStatusOnHold, domain.PhaseStatusBlocked, domain.PhaseStatusCancelled:
		// Manual states survive recomputation
	default:
		p.Status = derivePhaseStatus(p.SubPhases)
	}

	start, end := derivePhaseActualDates(p.SubPhases)
	if p.ActualStartDate == nil {
		p.ActualStartDate = start
	}
	if p.Status == domain.PhaseStatusCompleted {
		if p.ActualEndDate == nil {
			p.ActualEndDate = end
		}
	} else {
		p.ActualEndDate = nil
	}
}

// derivePhaseStatus folds sub-phase statuses into a phase status. The phase
// never holds a status its children do not justify: untouched children mean
// not_started, all-terminal children mean completed, anything else is
// in_progress.
func derivePhaseStatus(subPhases []domain.SubPhase) domain.PhaseStatus {
	if len(subPhases) == 0 {
		return domain.PhaseStatusNotStarted
	}
	allNotStarted := true
	allTerminal := true
	for i := range subPhases {
		if subPhases[i].Status != domain.SubPhaseStatusNotStarted {
			allNotStarted = false
		}
		if !subPhases[i].Status.IsTerminal() {
			allTerminal = false
		}
	}
	if allNotStarted {
		return domain.PhaseStatusNotStarted
	}
	if allTerminal {
		return domain.PhaseStatusCompleted
	}
	return domain.PhaseStatusInProgress
}

// derivePhaseActualDates returns the earliest actual start and the latest
// actual end among the sub-phases
func derivePhaseActualDates(subPhases []domain.SubPhase) (*time.Time, *time.Time) {
	var start, end *time.Time
	for i := range subPhases {
		if s := subPhases[i].ActualStartDate; s != nil {
			if start == nil || s.Before(*start) {
				start = s
			}
		}
		if e := subPhases[i].ActualEndDate; e != nil {
			if end == nil || e.After(*end) {
				end = e
			}
		}
	}
	return start, end
}

func roundPercent(completed, total int) int {
	if total < 1 {
		total = 1
	}
	return clampPercent(int(math.Round(100 * float64(completed) / float64(total))))
}

func clampPercent(v int) int {
	if v < 0 {
		return 0
	}
	if v > 100 {
		return 100
	}
	return v
}
