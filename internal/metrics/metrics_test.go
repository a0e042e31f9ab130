package metrics

import (
	"testing"
)

// TestMetricsInitialization tests that all metrics are properly initialized
func TestMetricsInitialization(t *testing.T) {
	m := getTestMetrics()

	// Test that all metrics are non-nil
	if m.HTTPRequestsTotal == nil {
		t.Error("HTTPRequestsTotal should not be nil")
	}
	if m.HTTPRequestDuration == nil {
		t.Error("HTTPRequestDuration should not be nil")
	}
	if m.DBConnectionsOpen == nil {
		t.Error("DBConnectionsOpen should not be nil")
	}
	if m.DBConnectionsInUse == nil {
		t.Error("DBConnectionsInUse should not be nil")
	}
	if m.DBConnectionsIdle == nil {
		t.Error("DBConnectionsIdle should not be nil")
	}
	if m.DBConnectionsMax == nil {
		t.Error("DBConnectionsMax should not be nil")
	}
	if m.DBConnectionWaitTotal == nil {
		t.Error("DBConnectionWaitTotal should not be nil")
	}
	if m.DBConnectionWaitDuration == nil {
		t.Error("DBConnectionWaitDuration should not be nil")
	}
	if m.DBQueryDuration == nil {
		t.Error("DBQueryDuration should not be nil")
	}
	if m.DBQueryErrors == nil {
		t.Error("DBQueryErrors should not be nil")
	}
	if m.ExternalAPIRequestDuration == nil {
		t.Error("ExternalAPIRequestDuration should not be nil")
	}
	if m.ExternalAPIRequestsTotal == nil {
		t.Error("ExternalAPIRequestsTotal should not be nil")
	}
	if m.ExternalAPIErrors == nil {
		t.Error("ExternalAPIErrors should not be nil")
	}
	if m.PhasesTotal == nil {
		t.Error("PhasesTotal should not be nil")
	}
	if m.SubPhasesTotal == nil {
		t.Error("SubPhasesTotal should not be nil")
	}
	if m.StatusTransitionsTotal == nil {
		t.Error("StatusTransitionsTotal should not be nil")
	}
	if m.TransitionRejectionsTotal == nil {
		t.Error("TransitionRejectionsTotal should not be nil")
	}
	if m.ApprovalRequestsTotal == nil {
		t.Error("ApprovalRequestsTotal should not be nil")
	}
	if m.ApprovalDecisionsTotal == nil {
		t.Error("ApprovalDecisionsTotal should not be nil")
	}
	if m.ChecklistTogglesTotal == nil {
		t.Error("ChecklistTogglesTotal should not be nil")
	}
	if m.CommentsCreatedTotal == nil {
		t.Error("CommentsCreatedTotal should not be nil")
	}
}
