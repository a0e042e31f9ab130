package router

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"project-delivery-api/internal/metrics"
)

// setupTestRouter creates a test router with minimal configuration
func setupTestRouter(basePath string, m *metrics.Metrics) *Config {
	// In-memory SQLite keeps the repository constructors satisfied
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{})
	if err != nil {
		panic("failed to connect database: " + err.Error())
	}

	return &Config{
		DB:        db,
		Logger:    zap.NewNop(),
		JWTSecret: "test-secret",
		BasePath:  basePath,
		Metrics:   m,
	}
}

// TestMetricsEndpoint_RootPath tests the /metrics endpoint at the root path
func TestMetricsEndpoint_RootPath(t *testing.T) {
	registry := prometheus.NewRegistry()
	m := metrics.NewWithRegistry(registry, zap.NewNop())

	cfg := setupTestRouter("", m)
	router := Setup(*cfg)

	req := httptest.NewRequest(http.MethodGet, "/metrics", nil)
	w := httptest.NewRecorder()

	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code, "Expected status 200")

	contentType := w.Header().Get("Content-Type")
	assert.Contains(t, contentType, "text/plain", "Expected Content-Type to contain text/plain")

	body := w.Body.String()
	assert.NotEmpty(t, body, "Response body should not be empty")
	assert.Contains(t, body, "# HELP", "Response should contain Prometheus HELP comments")
	assert.Contains(t, body, "# TYPE", "Response should contain Prometheus TYPE comments")
	assert.Contains(t, body, "go_goroutines", "Response should contain Go runtime metrics")
}

// TestMetricsEndpoint_NoAuthentication tests that /metrics does not require authentication
func TestMetricsEndpoint_NoAuthentication(t *testing.T) {
	registry := prometheus.NewRegistry()
	m := metrics.NewWithRegistry(registry, zap.NewNop())

	cfg := setupTestRouter("", m)
	router := Setup(*cfg)

	req := httptest.NewRequest(http.MethodGet, "/metrics", nil)
	w := httptest.NewRecorder()

	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code, "Metrics endpoint should be accessible without authentication")
}

// TestMetricsEndpoint_WithBasePath tests /metrics with a base path configured
func TestMetricsEndpoint_WithBasePath(t *testing.T) {
	registry := prometheus.NewRegistry()
	m := metrics.NewWithRegistry(registry, zap.NewNop())

	basePath := "/api/delivery"
	cfg := setupTestRouter(basePath, m)
	router := Setup(*cfg)

	t.Run("root path /metrics works", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/metrics", nil)
		w := httptest.NewRecorder()

		router.ServeHTTP(w, req)

		assert.Equal(t, http.StatusOK, w.Code, "Root /metrics should work")
		assert.Contains(t, w.Header().Get("Content-Type"), "text/plain")
	})

	t.Run("base path /api/delivery/metrics works", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, basePath+"/metrics", nil)
		w := httptest.NewRecorder()

		router.ServeHTTP(w, req)

		assert.Equal(t, http.StatusOK, w.Code, "Base path /api/delivery/metrics should work")
		assert.Contains(t, w.Header().Get("Content-Type"), "text/plain")
	})
}

// TestMetricsEndpoint_ContainsAllMetrics tests that the expected metrics are registered
func TestMetricsEndpoint_ContainsAllMetrics(t *testing.T) {
	registry := prometheus.NewRegistry()
	_ = metrics.NewWithRegistry(registry, zap.NewNop())

	metricFamilies, err := registry.Gather()
	require.NoError(t, err)

	metricNames := make(map[string]bool)
	for _, mf := range metricFamilies {
		metricNames[mf.GetName()] = true
	}

	// Gauges and plain counters register at initialization; vectors only
	// appear after their first observation
	expectedGaugeMetrics := []string{
		"delivery_service_db_connections_open",
		"delivery_service_db_connections_in_use",
		"delivery_service_db_connections_idle",
		"delivery_service_db_connections_max",
		"delivery_service_phases_total",
		"delivery_service_sub_phases_total",
	}
	for _, metric := range expectedGaugeMetrics {
		assert.True(t, metricNames[metric], "Registry should contain metric: %s", metric)
	}

	expectedCounterMetrics := []string{
		"delivery_service_db_connection_wait_total",
		"delivery_service_db_connection_wait_duration_seconds_total",
		"delivery_service_approval_requests_total",
		"delivery_service_checklist_toggles_total",
		"delivery_service_comments_created_total",
	}
	for _, metric := range expectedCounterMetrics {
		assert.True(t, metricNames[metric], "Registry should contain metric: %s", metric)
	}
}

// TestMetricsEndpoint_PrometheusFormat tests Prometheus exposition format
func TestMetricsEndpoint_PrometheusFormat(t *testing.T) {
	registry := prometheus.NewRegistry()
	m := metrics.NewWithRegistry(registry, zap.NewNop())

	cfg := setupTestRouter("", m)
	router := Setup(*cfg)

	req := httptest.NewRequest(http.MethodGet, "/metrics", nil)
	w := httptest.NewRecorder()

	router.ServeHTTP(w, req)

	require.Equal(t, http.StatusOK, w.Code)
	body := w.Body.String()

	lines := strings.Split(body, "\n")

	hasHelpLine := false
	hasTypeLine := false
	hasMetricLine := false

	for _, line := range lines {
		if strings.HasPrefix(line, "# HELP") {
			hasHelpLine = true
		}
		if strings.HasPrefix(line, "# TYPE") {
			hasTypeLine = true
		}
		if !strings.HasPrefix(line, "#") && strings.Contains(line, " ") && line != "" {
			hasMetricLine = true
		}
	}

	assert.True(t, hasHelpLine, "Should have at least one HELP line")
	assert.True(t, hasTypeLine, "Should have at least one TYPE line")
	assert.True(t, hasMetricLine, "Should have at least one metric line with value")
}

// TestHealthEndpoint tests that /health answers without authentication
func TestHealthEndpoint(t *testing.T) {
	registry := prometheus.NewRegistry()
	m := metrics.NewWithRegistry(registry, zap.NewNop())

	cfg := setupTestRouter("/api/delivery", m)
	router := Setup(*cfg)

	for _, path := range []string{"/health", "/api/delivery/health"} {
		req := httptest.NewRequest(http.MethodGet, path, nil)
		w := httptest.NewRecorder()

		router.ServeHTTP(w, req)

		assert.Equal(t, http.StatusOK, w.Code, "Health endpoint %s should answer 200", path)
		assert.Contains(t, w.Body.String(), "delivery-service")
	}
}

// TestProtectedRoutesRequireAuth tests that API routes reject anonymous requests
func TestProtectedRoutesRequireAuth(t *testing.T) {
	registry := prometheus.NewRegistry()
	m := metrics.NewWithRegistry(registry, zap.NewNop())

	cfg := setupTestRouter("/api/delivery", m)
	router := Setup(*cfg)

	routes := []struct {
		method string
		path   string
	}{
		{http.MethodGet, "/api/delivery/projects/539167fb-b599-41ba-9ead-344a6d0b3a2f/phases"},
		{http.MethodGet, "/api/delivery/sub-phases/539167fb-b599-41ba-9ead-344a6d0b3a2f"},
		{http.MethodPost, "/api/delivery/sub-phases/539167fb-b599-41ba-9ead-344a6d0b3a2f/start"},
		{http.MethodPatch, "/api/delivery/phases/539167fb-b599-41ba-9ead-344a6d0b3a2f"},
	}

	for _, route := range routes {
		req := httptest.NewRequest(route.method, route.path, nil)
		w := httptest.NewRecorder()

		router.ServeHTTP(w, req)

		assert.Equal(t, http.StatusUnauthorized, w.Code, "%s %s should require authentication", route.method, route.path)
	}
}
