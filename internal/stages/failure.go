package stages

import (
	"context"
	"math"
	"strings"
	"time"

	"github.com/IsakLindberger/Weather-Predict-Model/internal/artifact"
	"github.com/IsakLindberger/Weather-Predict-Model/internal/domain"
	"github.com/IsakLindberger/Weather-Predict-Model/internal/pipeline"
)

// extremeErrorThreshold separates ordinary misses from extreme ones, in
// degrees of absolute error.
const extremeErrorThreshold = 1.5

// Failure keeps the evaluation rows whose absolute error exceeds the
// configured percentile, labels each with a failure type, and attributes
// contributing weather conditions by joining back to the features artifact
// for the date on timestamp.
func Failure(store *artifact.Store, p Params, date string) pipeline.Transform {
	return func(_ context.Context, ds *domain.Dataset) (*domain.Dataset, map[string]any, error) {
		features, err := store.ReadDataset(artifact.Reference(domain.StageFeatures, date))
		if err != nil {
			return nil, nil, err
		}
		conditions := conditionsByTimestamp(features)

		absErrors := ds.FloatColumn("abs_error")
		threshold := percentile(absErrors, p.FailurePercentile)

		out := domain.NewDataset(
			"timestamp", "actual", "predicted", "error", "abs_error",
			"failure_type", "contributing_features",
		)
		typeCounts := map[string]int{}
		for i := range ds.Rows {
			absErr, ok := ds.Float(i, "abs_error")
			if !ok || absErr <= threshold {
				continue
			}
			signed, _ := ds.Float(i, "error")

			ftype := classifyFailure(signed, absErr)
			typeCounts[ftype]++

			contributing := "normal_conditions"
			if ts, ok := ds.Time(i, "timestamp"); ok {
				if c, ok := conditions[ts.UTC()]; ok {
					contributing = c
				}
			}

			out.AppendRow(domain.Row{
				"timestamp":             ds.Rows[i]["timestamp"],
				"actual":                ds.Rows[i]["actual"],
				"predicted":             ds.Rows[i]["predicted"],
				"error":                 signed,
				"abs_error":             absErr,
				"failure_type":          ftype,
				"contributing_features": contributing,
			})
		}

		failureRate := 0.0
		if ds.Len() > 0 {
			failureRate = float64(out.Len()) / float64(ds.Len())
		}
		metrics := map[string]any{
			"failure_threshold": threshold,
			"failure_count":     out.Len(),
			"failure_rate":      failureRate,
			"failure_types":     typeCounts,
		}
		return out, metrics, nil
	}
}

// classifyFailure labels a prediction miss. Extreme misses dominate the
// direction of the error.
func classifyFailure(signedErr, absErr float64) string {
	switch {
	case absErr > extremeErrorThreshold:
		return "extreme_error"
	case signedErr > 0:
		return "overestimation"
	case signedErr < 0:
		return "underestimation"
	default:
		return "unknown"
	}
}

// conditionsByTimestamp summarizes the weather conditions at each featured
// observation, keyed by UTC timestamp for the join from evaluation rows.
func conditionsByTimestamp(features *domain.Dataset) map[time.Time]string {
	out := make(map[time.Time]string, features.Len())
	for i := range features.Rows {
		ts, ok := features.Time(i, "timestamp")
		if !ok {
			continue
		}
		var tags []string
		if v, ok := features.Float(i, "humidity"); ok && v > 90 {
			tags = append(tags, "high_humidity")
		}
		if v, ok := features.Float(i, "pressure_change_1h"); ok && math.Abs(v) > 2 {
			tags = append(tags, "rapid_pressure_change")
		}
		if v, ok := features.Float(i, "temp_change_1h"); ok && math.Abs(v) > 2 {
			tags = append(tags, "rapid_temp_change")
		}
		if len(tags) == 0 {
			tags = []string{"normal_conditions"}
		}
		out[ts.UTC()] = strings.Join(tags, "|")
	}
	return out
}
