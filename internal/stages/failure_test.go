package stages_test

import (
	"context"
	"math"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/IsakLindberger/Weather-Predict-Model/internal/artifact"
	"github.com/IsakLindberger/Weather-Predict-Model/internal/domain"
	"github.com/IsakLindberger/Weather-Predict-Model/internal/stages"
)

// evaluationResults builds an evaluation dataset with the given signed
// errors, one row per hour.
func evaluationResults(signedErrors []float64) *domain.Dataset {
	ds := domain.NewDataset("timestamp", "station_id", "actual", "predicted", "error", "abs_error")
	base := time.Date(2024, 4, 26, 0, 0, 0, 0, time.UTC)
	for i, e := range signedErrors {
		ds.AppendRow(domain.Row{
			"timestamp":  base.Add(time.Duration(i) * time.Hour),
			"station_id": "STATION_001",
			"actual":     15.0,
			"predicted":  15.0 + e,
			"error":      e,
			"abs_error":  math.Abs(e),
		})
	}
	return ds
}

// writeFeatures stores a features artifact whose conditions the failure
// stage joins on by timestamp.
func writeFeatures(t *testing.T, store *artifact.Store, rows int, condition func(i int, row domain.Row)) {
	t.Helper()
	ds := domain.NewDataset(
		"timestamp", "station_id", "temperature", "humidity", "pressure",
		"temp_rolling_mean_24h", "temp_rolling_std_24h",
		"temp_change_1h", "pressure_change_1h", "humidity_change_1h",
		"hour", "day_of_week", "is_weekend",
	)
	base := time.Date(2024, 4, 26, 0, 0, 0, 0, time.UTC)
	for i := 0; i < rows; i++ {
		row := domain.Row{
			"timestamp":             base.Add(time.Duration(i) * time.Hour),
			"station_id":            "STATION_001",
			"temperature":           15.0,
			"humidity":              60.0,
			"pressure":              1013.0,
			"temp_rolling_mean_24h": 15.0,
			"temp_rolling_std_24h":  0.5,
			"temp_change_1h":        0.0,
			"pressure_change_1h":    0.0,
			"humidity_change_1h":    0.0,
			"hour":                  int64(i % 24),
			"day_of_week":           int64(4),
			"is_weekend":            int64(0),
		}
		if condition != nil {
			condition(i, row)
		}
		ds.AppendRow(row)
	}
	require.NoError(t, store.WriteDataset(artifact.Reference(domain.StageFeatures, trainTestDate), ds))
}

func TestFailureKeepsWorstErrors(t *testing.T) {
	store := artifact.NewStore(t.TempDir())
	writeFeatures(t, store, 20, nil)

	// 18 small errors and two big ones: the 90th percentile cuts between.
	errs := make([]float64, 20)
	for i := range errs {
		errs[i] = 0.1
	}
	errs[4] = 2.0  // extreme overestimation
	errs[9] = -1.2 // underestimation
	ds := evaluationResults(errs)

	out, metrics, err := stages.Failure(store, smallParams(), trainTestDate)(context.Background(), ds)
	require.NoError(t, err)

	require.Equal(t, 2, out.Len())
	assert.Equal(t, []string{
		"timestamp", "actual", "predicted", "error", "abs_error",
		"failure_type", "contributing_features",
	}, out.Columns)

	types := map[string]int{}
	for i := range out.Rows {
		ft, _ := out.String(i, "failure_type")
		types[ft]++
	}
	assert.Equal(t, 1, types["extreme_error"])
	assert.Equal(t, 1, types["underestimation"])

	assert.Equal(t, 2, metrics["failure_count"])
	assert.InDelta(t, 0.1, metrics["failure_rate"], 1e-9)
	assert.Equal(t, map[string]int{"extreme_error": 1, "underestimation": 1}, metrics["failure_types"])
}

func TestFailureClassifiesDirection(t *testing.T) {
	store := artifact.NewStore(t.TempDir())
	writeFeatures(t, store, 12, nil)

	errs := make([]float64, 12)
	for i := range errs {
		errs[i] = 0.05
	}
	errs[2] = 0.9  // above p90, below the extreme threshold
	errs[7] = -0.8 // same, negative
	ds := evaluationResults(errs)

	out, _, err := stages.Failure(store, smallParams(), trainTestDate)(context.Background(), ds)
	require.NoError(t, err)
	require.Equal(t, 2, out.Len())

	byError := map[float64]string{}
	for i := range out.Rows {
		e, _ := out.Float(i, "error")
		ft, _ := out.String(i, "failure_type")
		byError[e] = ft
	}
	assert.Equal(t, "overestimation", byError[0.9])
	assert.Equal(t, "underestimation", byError[-0.8])
}

func TestFailureContributingConditions(t *testing.T) {
	store := artifact.NewStore(t.TempDir())
	writeFeatures(t, store, 10, func(i int, row domain.Row) {
		switch i {
		case 2:
			row["humidity"] = 95.0
		case 5:
			row["pressure_change_1h"] = -3.5
			row["temp_change_1h"] = 2.5
		}
	})

	errs := make([]float64, 10)
	for i := range errs {
		errs[i] = 0.05
	}
	errs[2] = 1.0
	errs[5] = 1.3
	ds := evaluationResults(errs)

	p := smallParams()
	p.FailurePercentile = 70
	out, _, err := stages.Failure(store, p, trainTestDate)(context.Background(), ds)
	require.NoError(t, err)
	require.Equal(t, 2, out.Len())

	conditions := map[string]bool{}
	for i := range out.Rows {
		c, _ := out.String(i, "contributing_features")
		conditions[c] = true
	}
	assert.True(t, conditions["high_humidity"])
	assert.True(t, conditions["rapid_pressure_change|rapid_temp_change"])
}

func TestFailureMissingFeaturesArtifact(t *testing.T) {
	store := artifact.NewStore(t.TempDir())
	ds := evaluationResults([]float64{0.1, 0.2})

	_, _, err := stages.Failure(store, smallParams(), trainTestDate)(context.Background(), ds)
	require.Error(t, err)
	var pe *domain.PersistenceError
	assert.ErrorAs(t, err, &pe)
}
