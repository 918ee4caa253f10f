package pipeline_test

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/IsakLindberger/Weather-Predict-Model/internal/artifact"
	"github.com/IsakLindberger/Weather-Predict-Model/internal/domain"
	"github.com/IsakLindberger/Weather-Predict-Model/internal/metadata"
	"github.com/IsakLindberger/Weather-Predict-Model/internal/observability"
	"github.com/IsakLindberger/Weather-Predict-Model/internal/pipeline"
	"github.com/IsakLindberger/Weather-Predict-Model/internal/schema"
)

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func newTestRunner(t *testing.T) (*pipeline.Runner, *artifact.Store) {
	t.Helper()
	registry, err := schema.NewRegistry()
	require.NoError(t, err)

	store := artifact.NewStore(t.TempDir())
	recorder := metadata.NewRecorder(store, "STATION_001")
	runner := pipeline.NewRunner(registry, store, recorder, discardLogger(), observability.NewMetricsForTesting())
	return runner, store
}

// identity passes the dataset through untouched.
func identity(_ context.Context, ds *domain.Dataset) (*domain.Dataset, map[string]any, error) {
	return ds, map[string]any{"rows": ds.Len()}, nil
}

func TestRunSuccess(t *testing.T) {
	runner, store := newTestRunner(t)

	// Clean's input contract matches ingest's output, so a valid observation
	// set stored as ingest output runs clean with an identity body.
	inputRef := artifact.Reference(domain.StageIngest, testDate)
	require.NoError(t, store.WriteDataset(inputRef, makeObservations(48)))

	outcome := runner.Run(context.Background(), domain.StageClean, inputRef, identity, testDate)

	assert.Equal(t, domain.StatusSuccess, outcome.Status)
	assert.Equal(t, domain.StageClean, outcome.Stage)
	assert.NoError(t, outcome.Err)
	assert.True(t, store.Exists(outcome.OutputRef))

	md := outcome.Metadata
	assert.NotEmpty(t, md.RunID)
	assert.Equal(t, 48, md.InputRows)
	assert.Equal(t, 48, md.OutputRows)
	assert.Equal(t, inputRef.Path, md.InputRef)
	assert.EqualValues(t, 48, md.Metrics["rows"])

	// The sidecar is durably next to the artifact.
	_, err := store.ReadSidecar(outcome.OutputRef)
	assert.NoError(t, err)
}

func TestRunInputViolationSkipsBody(t *testing.T) {
	runner, store := newTestRunner(t)

	ds := makeObservations(24)
	ds.Rows[3]["temperature"] = 200.0
	inputRef := artifact.Reference(domain.StageIngest, testDate)
	require.NoError(t, store.WriteDataset(inputRef, ds))

	invoked := false
	body := func(_ context.Context, ds *domain.Dataset) (*domain.Dataset, map[string]any, error) {
		invoked = true
		return ds, nil, nil
	}

	outcome := runner.Run(context.Background(), domain.StageClean, inputRef, body, testDate)

	assert.Equal(t, domain.StatusContractViolation, outcome.Status)
	assert.Equal(t, "input", outcome.Direction)
	assert.False(t, invoked, "body must not run on violating input")
	assert.False(t, store.Exists(outcome.OutputRef), "no output artifact on input violation")

	require.Len(t, outcome.Report.Violations, 1)
	v := outcome.Report.Violations[0]
	assert.Equal(t, "temperature", v.Column)
	assert.Equal(t, schema.OutOfRange, v.Kind)
	assert.Equal(t, 3, v.Row)

	// The violation is still recorded as metadata.
	assert.Equal(t, domain.StatusContractViolation, outcome.Metadata.Status)
	require.Len(t, outcome.Metadata.Violations, 1)
	assert.Contains(t, outcome.Metadata.Violations[0], "above maximum")
}

func TestRunOutputViolationFailsClosed(t *testing.T) {
	runner, store := newTestRunner(t)

	inputRef := artifact.Reference(domain.StageIngest, testDate)
	require.NoError(t, store.WriteDataset(inputRef, makeObservations(24)))

	// The body nulls a measurement, violating clean's non-null output
	// contract.
	body := func(_ context.Context, ds *domain.Dataset) (*domain.Dataset, map[string]any, error) {
		out := ds.Clone()
		out.Rows[0]["temperature"] = nil
		return out, map[string]any{"rows_removed": 0}, nil
	}

	outcome := runner.Run(context.Background(), domain.StageClean, inputRef, body, testDate)

	assert.Equal(t, domain.StatusContractViolation, outcome.Status)
	assert.Equal(t, "output", outcome.Direction)
	assert.False(t, store.Exists(outcome.OutputRef), "malformed output must not be persisted")

	require.Len(t, outcome.Report.Violations, 1)
	assert.Equal(t, schema.UnexpectedNull, outcome.Report.Violations[0].Kind)

	// The body's metrics still reach the record for debugging.
	assert.EqualValues(t, 0, outcome.Metadata.Metrics["rows_removed"])
}

func TestRunBodyError(t *testing.T) {
	runner, store := newTestRunner(t)

	inputRef := artifact.Reference(domain.StageIngest, testDate)
	require.NoError(t, store.WriteDataset(inputRef, makeObservations(24)))

	boom := errors.New("model store unreachable")
	body := func(_ context.Context, _ *domain.Dataset) (*domain.Dataset, map[string]any, error) {
		return nil, nil, boom
	}

	outcome := runner.Run(context.Background(), domain.StageClean, inputRef, body, testDate)

	assert.Equal(t, domain.StatusError, outcome.Status)
	assert.ErrorIs(t, outcome.Err, boom)
	assert.False(t, store.Exists(outcome.OutputRef))
	assert.Equal(t, "model store unreachable", outcome.Metadata.Error)
}

func TestRunMissingInputArtifact(t *testing.T) {
	runner, _ := newTestRunner(t)

	outcome := runner.Run(context.Background(), domain.StageClean,
		artifact.Reference(domain.StageIngest, testDate), identity, testDate)

	assert.Equal(t, domain.StatusError, outcome.Status)
	var pe *domain.PersistenceError
	assert.True(t, errors.As(outcome.Err, &pe))
}

func TestRunUnregisteredStage(t *testing.T) {
	runner, store := newTestRunner(t)

	inputRef := artifact.Reference(domain.StageIngest, testDate)
	require.NoError(t, store.WriteDataset(inputRef, makeObservations(24)))

	outcome := runner.Run(context.Background(), "enrich", inputRef, identity, testDate)

	assert.Equal(t, domain.StatusError, outcome.Status)
	var unknown *domain.UnknownStageError
	assert.True(t, errors.As(outcome.Err, &unknown))
}
