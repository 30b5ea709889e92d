package errors

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"os"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testHandler() *ErrorHandler {
	return NewErrorHandler(slog.New(slog.NewTextHandler(io.Discard, nil)), false)
}

func TestAppError_Wrapping(t *testing.T) {
	cause := os.ErrNotExist
	err := NewReadError("cannot open archive", cause).WithContext("path", "run.gdx")

	assert.Equal(t, "[READ] cannot open archive: file does not exist", err.Error())
	assert.ErrorIs(t, err, os.ErrNotExist)
	assert.Equal(t, "run.gdx", err.Context["path"])

	wrapped := fmt.Errorf("import failed: %w", err)
	assert.True(t, IsType(wrapped, ErrTypeRead))
	assert.False(t, IsType(wrapped, ErrTypeConfig))
	assert.False(t, IsType(os.ErrNotExist, ErrTypeRead))
}

func TestAppError_NoCause(t *testing.T) {
	err := NewNotFoundError("table EmissionAnnual")
	assert.Equal(t, "[NOT_FOUND] table EmissionAnnual not found", err.Error())
	assert.Nil(t, err.Unwrap())
}

func TestErrorToProblem(t *testing.T) {
	tests := []struct {
		name       string
		err        error
		wantStatus int
		wantType   string
	}{
		{"read error", NewReadError("bad archive", nil), http.StatusUnprocessableEntity, TypeArchiveUnreadable},
		{"data format", NewDataFormatError("age column", nil), http.StatusUnprocessableEntity, TypeDataFormat},
		{"config", NewConfigError("allow-list missing", nil), http.StatusInternalServerError, TypeConfigMissing},
		{"not found", NewNotFoundError("scenario"), http.StatusNotFound, TypeNotFound},
		{"validation", NewAppValidationError("year must be numeric"), http.StatusBadRequest, TypeValidation},
		{"storage", NewStorageError("disk full", nil), http.StatusInternalServerError, TypeInternal},
		{"api error", ErrRateLimitExceeded, http.StatusTooManyRequests, TypeRateLimit},
		{"timeout", context.DeadlineExceeded, http.StatusGatewayTimeout, TypeTimeout},
		{"plain", fmt.Errorf("boom"), http.StatusInternalServerError, TypeInternal},
		{"wrapped app error", fmt.Errorf("outer: %w", NewNotFoundError("table")), http.StatusNotFound, TypeNotFound},
	}

	h := testHandler()
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := httptest.NewRequest(http.MethodGet, "/api/v1/scenarios", nil)
			problem := h.ErrorToProblem(tt.err, r)
			assert.Equal(t, tt.wantStatus, problem.Status)
			assert.Equal(t, tt.wantType, problem.Type)
			assert.Equal(t, "/api/v1/scenarios", problem.Instance)
		})
	}
}

func TestHandleError_WritesProblemJSON(t *testing.T) {
	h := testHandler()
	rec := httptest.NewRecorder()
	r := httptest.NewRequest(http.MethodGet, "/api/v1/scenarios/x/tables/y", nil)

	h.HandleError(rec, r, NewNotFoundError("table y").WithContext("scenario", "x"))

	assert.Equal(t, http.StatusNotFound, rec.Code)

	var body map[string]interface{}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Equal(t, TypeNotFound, body["type"])
	assert.Equal(t, "table y not found", body["detail"])
	assert.Equal(t, "x", body["scenario"])
	assert.Equal(t, "NOT_FOUND", body["error_type"])
}

func TestHandleError_Nil(t *testing.T) {
	rec := httptest.NewRecorder()
	testHandler().HandleError(rec, httptest.NewRequest(http.MethodGet, "/", nil), nil)
	assert.Equal(t, 0, rec.Body.Len())
}

func TestRecoveryMiddleware(t *testing.T) {
	panicky := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		panic("kaboom")
	})

	rec := httptest.NewRecorder()
	RecoveryMiddleware(testHandler())(panicky).ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/", nil))

	assert.Equal(t, http.StatusInternalServerError, rec.Code)
	assert.Contains(t, rec.Body.String(), TypeInternal)
}

func TestProblemDetails_MarshalJSON(t *testing.T) {
	pd := NewProblemDetails(http.StatusBadRequest, TypeValidation, "Validation Failed", "", "/x").
		WithExtension("field", "year")

	data, err := json.Marshal(pd)
	require.NoError(t, err)

	var body map[string]interface{}
	require.NoError(t, json.Unmarshal(data, &body))
	assert.Equal(t, "year", body["field"])
	assert.NotContains(t, body, "detail")
	assert.Equal(t, float64(http.StatusBadRequest), body["status"])
}

func TestAPIErrorHelpers(t *testing.T) {
	err := ErrValidation("year", "must be an integer")
	assert.Equal(t, http.StatusBadRequest, err.StatusCode)
	assert.Equal(t, ValidationError{Field: "year", Message: "must be an integer"}, err.Details)
}
