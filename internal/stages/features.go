package stages

import (
	"context"
	"time"

	"github.com/IsakLindberger/Weather-Predict-Model/internal/domain"
	"github.com/IsakLindberger/Weather-Predict-Model/internal/pipeline"
)

// rollingWindow is the rolling-statistics window in rows (hourly data: 24h).
const rollingWindow = 24

// Features engineers the model inputs from cleaned observations: 24h
// rolling mean/std of temperature, 1h deltas of the three measurements,
// and calendar features from the timestamp.
func Features() pipeline.Transform {
	return func(_ context.Context, ds *domain.Dataset) (*domain.Dataset, map[string]any, error) {
		out := ds.Clone()
		before := len(out.Columns)

		addRollingFeatures(out)
		addChangeFeatures(out)
		addTimeFeatures(out)

		created := out.Columns[before:]
		metrics := map[string]any{
			"features_created":  append([]string(nil), created...),
			"new_feature_count": len(created),
			"total_features":    len(out.Columns),
		}
		return out, metrics, nil
	}
}

// addRollingFeatures computes the trailing-window mean and sample std of
// temperature. min_periods is 1: the first rows use however much history
// exists, and a single-observation std is 0.
func addRollingFeatures(ds *domain.Dataset) {
	ds.AddColumn("temp_rolling_mean_24h")
	ds.AddColumn("temp_rolling_std_24h")

	for i := range ds.Rows {
		lo := i - rollingWindow + 1
		if lo < 0 {
			lo = 0
		}
		window := make([]float64, 0, rollingWindow)
		for j := lo; j <= i; j++ {
			if v, ok := ds.Float(j, "temperature"); ok {
				window = append(window, v)
			}
		}
		ds.Rows[i]["temp_rolling_mean_24h"] = mean(window)
		ds.Rows[i]["temp_rolling_std_24h"] = sampleStd(window)
	}
}

// addChangeFeatures computes 1h deltas; the first row has no predecessor
// and gets 0.
func addChangeFeatures(ds *domain.Dataset) {
	cols := map[string]string{
		"temperature": "temp_change_1h",
		"pressure":    "pressure_change_1h",
		"humidity":    "humidity_change_1h",
	}
	for _, feature := range []string{"temp_change_1h", "pressure_change_1h", "humidity_change_1h"} {
		ds.AddColumn(feature)
	}

	for src, dst := range cols {
		for i := range ds.Rows {
			cur, okC := ds.Float(i, src)
			prev, okP := ds.Float(i-1, src)
			if i == 0 || !okC || !okP {
				ds.Rows[i][dst] = float64(0)
				continue
			}
			ds.Rows[i][dst] = cur - prev
		}
	}
}

// addTimeFeatures extracts hour of day, day of week (Monday=0), and a
// weekend flag from the timestamp.
func addTimeFeatures(ds *domain.Dataset) {
	ds.AddColumn("hour")
	ds.AddColumn("day_of_week")
	ds.AddColumn("is_weekend")

	for i := range ds.Rows {
		t, ok := ds.Rows[i]["timestamp"].(time.Time)
		if !ok {
			continue
		}
		dow := (int64(t.Weekday()) + 6) % 7 // Monday=0 .. Sunday=6
		var weekend int64
		if dow >= 5 {
			weekend = 1
		}
		ds.Rows[i]["hour"] = int64(t.Hour())
		ds.Rows[i]["day_of_week"] = dow
		ds.Rows[i]["is_weekend"] = weekend
	}
}
