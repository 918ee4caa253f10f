package pipeline_test

import (
	"math"
	"math/rand"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/IsakLindberger/Weather-Predict-Model/internal/artifact"
	"github.com/IsakLindberger/Weather-Predict-Model/internal/domain"
)

const testDate = "20240426"

// makeObservations builds a synthetic hourly observation set ending at the
// test date: a diurnal temperature cycle with seeded noise, so model fitting
// has real structure to find.
func makeObservations(hours int) *domain.Dataset {
	rnd := rand.New(rand.NewSource(7))
	end := time.Date(2024, 4, 27, 0, 0, 0, 0, time.UTC)
	start := end.Add(-time.Duration(hours) * time.Hour)

	ds := domain.NewDataset("timestamp", "station_id", "temperature", "humidity", "pressure")
	for ts := start; ts.Before(end); ts = ts.Add(time.Hour) {
		hourAngle := 2 * math.Pi * float64(ts.Hour()-4) / 24
		ds.AppendRow(domain.Row{
			"timestamp":   ts,
			"station_id":  "STATION_001",
			"temperature": 12 - 8*math.Cos(hourAngle) + rnd.NormFloat64()*0.8,
			"humidity":    65 + 20*math.Cos(hourAngle) + rnd.NormFloat64()*3,
			"pressure":    1013 + rnd.NormFloat64()*3,
		})
	}
	return ds
}

// writeSource drops the observations where the ingest stage expects them.
func writeSource(t *testing.T, store *artifact.Store, ds *domain.Dataset) {
	t.Helper()
	require.NoError(t, store.WriteDataset(artifact.SourceReference(testDate), ds))
}
