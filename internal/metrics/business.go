package metrics

// RecordStatusTransition records an accepted status transition
func (m *Metrics) RecordStatusTransition(entity, newStatus string) {
	m.safeExecute("RecordStatusTransition", func() {
		m.StatusTransitionsTotal.WithLabelValues(entity, newStatus).Inc()
	})
}

// RecordTransitionRejection records a transition rejected by the validator
func (m *Metrics) RecordTransitionRejection(entity, reason string) {
	m.safeExecute("RecordTransitionRejection", func() {
		m.TransitionRejectionsTotal.WithLabelValues(entity, reason).Inc()
	})
}

// IncrementApprovalRequested increments the approval request counter
func (m *Metrics) IncrementApprovalRequested() {
	m.safeExecute("IncrementApprovalRequested", func() {
		m.ApprovalRequestsTotal.Inc()
	})
}

// RecordApprovalDecision records an approval response by decision
func (m *Metrics) RecordApprovalDecision(decision string) {
	m.safeExecute("RecordApprovalDecision", func() {
		m.ApprovalDecisionsTotal.WithLabelValues(decision).Inc()
	})
}

// IncrementChecklistToggle increments the checklist toggle counter
func (m *Metrics) IncrementChecklistToggle() {
	m.safeExecute("IncrementChecklistToggle", func() {
		m.ChecklistTogglesTotal.Inc()
	})
}

// IncrementCommentCreated increments the comment counter
func (m *Metrics) IncrementCommentCreated() {
	m.safeExecute("IncrementCommentCreated", func() {
		m.CommentsCreatedTotal.Inc()
	})
}

// SetPhasesTotal sets the total phases gauge
func (m *Metrics) SetPhasesTotal(count int64) {
	m.safeExecute("SetPhasesTotal", func() {
		m.PhasesTotal.Set(float64(count))
	})
}

// SetSubPhasesTotal sets the total sub-phases gauge
func (m *Metrics) SetSubPhasesTotal(count int64) {
	m.safeExecute("SetSubPhasesTotal", func() {
		m.SubPhasesTotal.Set(float64(count))
	})
}
