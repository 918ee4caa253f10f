package http_test

import (
	"encoding/json"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	httpadapter "github.com/IsakLindberger/Weather-Predict-Model/internal/adapter/http"
	"github.com/IsakLindberger/Weather-Predict-Model/internal/artifact"
	"github.com/IsakLindberger/Weather-Predict-Model/internal/domain"
	"github.com/IsakLindberger/Weather-Predict-Model/internal/metadata"
)

func newTestServer(t *testing.T) (*httpadapter.Server, *metadata.Recorder) {
	t.Helper()
	store := artifact.NewStore(t.TempDir())
	rec := metadata.NewRecorder(store, "STATION_001")
	return httpadapter.NewServer(":0", rec, slog.Default()), rec
}

func TestHealthzReturns200(t *testing.T) {
	srv, _ := newTestServer(t)
	rec := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/healthz", nil)

	srv.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusOK, rec.Code)

	var body map[string]string
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Equal(t, "healthy", body["status"])
}

func TestRunsReturnsRecordedMetadata(t *testing.T) {
	srv, recorder := newTestServer(t)

	_, err := recorder.Record(metadata.Entry{
		Stage:      domain.StageClean,
		Date:       "20240101",
		Status:     domain.StatusSuccess,
		OutputRef:  artifact.Reference(domain.StageClean, "20240101"),
		OutputRows: 24,
	})
	require.NoError(t, err)

	rec := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/runs/clean?date=20240101", nil)

	srv.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusOK, rec.Code)

	var md domain.RunMetadata
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &md))
	assert.Equal(t, domain.StageClean, md.Stage)
	assert.Equal(t, domain.StatusSuccess, md.Status)
	assert.Equal(t, 24, md.OutputRows)
	assert.NotEmpty(t, md.RunID)
}

func TestRunsUnknownStageReturns404(t *testing.T) {
	srv, _ := newTestServer(t)
	rec := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/runs/enrich?date=20240101", nil)

	srv.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestRunsBadDateReturns400(t *testing.T) {
	srv, _ := newTestServer(t)
	rec := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/runs/clean?date=2024-01-01", nil)

	srv.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestRunsMissingRecordReturns404(t *testing.T) {
	srv, _ := newTestServer(t)
	rec := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/runs/clean?date=20240101", nil)

	srv.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestMetricsEndpoint(t *testing.T) {
	srv, _ := newTestServer(t)
	rec := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/metrics", nil)

	srv.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "go_goroutines")
}
