package http

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"gdxtoolbox/internal/config"
	"gdxtoolbox/internal/services"
	"gdxtoolbox/internal/shared/testutil"
)

func newHealthHandler(t *testing.T, withGDXDump bool) *HealthHandler {
	t.Helper()
	logger, _ := testutil.NewTestLogger(t)

	dir := t.TempDir()
	paths := &config.Paths{
		BaseDir:              dir,
		ResultsDir:           filepath.Join(dir, "results"),
		EssentialOutputsFile: filepath.Join(dir, "essential_outputs.txt"),
	}
	require.NoError(t, os.MkdirAll(paths.ResultsDir, 0755))
	require.NoError(t, os.WriteFile(paths.EssentialOutputsFile, []byte("CLIM_DeltaT\n"), 0644))

	gdxdump := filepath.Join(dir, "gdxdump")
	if withGDXDump {
		require.NoError(t, os.WriteFile(gdxdump, []byte("#!/bin/sh\n"), 0755))
	}

	service := services.NewHealthService("v1.0.0-test", "2026-01-01T00:00:00Z", paths, gdxdump, logger)
	return NewHealthHandler(service, logger)
}

func TestHealthHandler_Endpoints(t *testing.T) {
	handler := newHealthHandler(t, true)

	tests := []struct {
		name           string
		handlerFunc    http.HandlerFunc
		expectedStatus int
		checkResponse  func(t *testing.T, body map[string]interface{})
	}{
		{
			name:           "health check",
			handlerFunc:    handler.HealthCheck,
			expectedStatus: http.StatusOK,
			checkResponse: func(t *testing.T, body map[string]interface{}) {
				assert.Equal(t, "ok", body["status"])
				assert.Equal(t, "v1.0.0-test", body["version"])
				assert.Contains(t, body, "timestamp")
			},
		},
		{
			name:           "readiness",
			handlerFunc:    handler.ReadinessCheck,
			expectedStatus: http.StatusOK,
			checkResponse: func(t *testing.T, body map[string]interface{}) {
				assert.Equal(t, "ready", body["status"])
				services := body["services"].(map[string]interface{})
				assert.Len(t, services, 3)
			},
		},
		{
			name:           "liveness",
			handlerFunc:    handler.LivenessCheck,
			expectedStatus: http.StatusOK,
			checkResponse: func(t *testing.T, body map[string]interface{}) {
				assert.Equal(t, "alive", body["status"])
				assert.Contains(t, body, "runtime")
			},
		},
		{
			name:           "version",
			handlerFunc:    handler.Version,
			expectedStatus: http.StatusOK,
			checkResponse: func(t *testing.T, body map[string]interface{}) {
				assert.Equal(t, "v1.0.0-test", body["version"])
				assert.Equal(t, "2026-01-01T00:00:00Z", body["build_time"])
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := httptest.NewRecorder()
			tt.handlerFunc(rec, httptest.NewRequest(http.MethodGet, "/", nil))

			assert.Equal(t, tt.expectedStatus, rec.Code)
			assert.Contains(t, rec.Header().Get("Content-Type"), "application/json")

			var body map[string]interface{}
			require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
			tt.checkResponse(t, body)
		})
	}
}

func TestHealthHandler_NotReady(t *testing.T) {
	handler := newHealthHandler(t, false)

	rec := httptest.NewRecorder()
	handler.ReadinessCheck(rec, httptest.NewRequest(http.MethodGet, "/readyz", nil))

	assert.Equal(t, http.StatusServiceUnavailable, rec.Code)
	var body services.HealthStatus
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Equal(t, "not_ready", body.Status)
	assert.Equal(t, "not_ready", body.Services["gdxdump"].Status)
	assert.Equal(t, "ready", body.Services["results_dir"].Status)
}

func TestMetricsHandler(t *testing.T) {
	t.Run("wrapped handler", func(t *testing.T) {
		inner := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.Write([]byte("gdx_imports_total 3\n"))
		})
		rec := httptest.NewRecorder()
		NewMetricsHandler(inner).ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))

		assert.Equal(t, "gdx_imports_total 3\n", rec.Body.String())
	})

	t.Run("default registry", func(t *testing.T) {
		rec := httptest.NewRecorder()
		NewMetricsHandler(nil).ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))

		assert.Equal(t, http.StatusOK, rec.Code)
		assert.Contains(t, rec.Body.String(), "go_goroutines")
	})
}
