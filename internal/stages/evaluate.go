package stages

import (
	"context"
	"errors"
	"math"

	"github.com/IsakLindberger/Weather-Predict-Model/internal/artifact"
	"github.com/IsakLindberger/Weather-Predict-Model/internal/domain"
	"github.com/IsakLindberger/Weather-Predict-Model/internal/model"
	"github.com/IsakLindberger/Weather-Predict-Model/internal/pipeline"
)

// Evaluate loads the model fitted for the date, predicts the holdout rows,
// and emits one result row per prediction with the signed and absolute
// errors.
func Evaluate(store *artifact.Store, _ Params, date string) pipeline.Transform {
	return func(_ context.Context, ds *domain.Dataset) (*domain.Dataset, map[string]any, error) {
		blob, err := store.ReadBlob(artifact.ModelReference(date))
		if err != nil {
			return nil, nil, err
		}
		forest, err := model.DecodeForest(blob)
		if err != nil {
			return nil, nil, err
		}

		var rows []int
		for i := range ds.Rows {
			if s, ok := ds.String(i, "split"); ok && s == "validation" {
				rows = append(rows, i)
			}
		}
		if len(rows) == 0 {
			return nil, nil, errors.New("evaluate: no validation rows in input")
		}

		X := make([][]float64, len(rows))
		actual := make([]float64, len(rows))
		for i, r := range rows {
			vec := make([]float64, len(forest.FeatureNames))
			for j, col := range forest.FeatureNames {
				v, ok := ds.Float(r, col)
				if !ok {
					return nil, nil, errors.New("evaluate: non-numeric value in column " + col)
				}
				vec[j] = v
			}
			X[i] = vec
			t, ok := ds.Float(r, forest.Target)
			if !ok {
				return nil, nil, errors.New("evaluate: non-numeric target value")
			}
			actual[i] = t
		}
		predicted := forest.Predict(X)

		out := domain.NewDataset("timestamp", "station_id", "actual", "predicted", "error", "abs_error")
		for i, r := range rows {
			signed := predicted[i] - actual[i]
			out.AppendRow(domain.Row{
				"timestamp":  ds.Rows[r]["timestamp"],
				"station_id": ds.Rows[r]["station_id"],
				"actual":     actual[i],
				"predicted":  predicted[i],
				"error":      signed,
				"abs_error":  math.Abs(signed),
			})
		}

		absErrs := make([]float64, len(rows))
		for i := range out.Rows {
			absErrs[i], _ = out.Float(i, "abs_error")
		}
		largeThreshold := percentile(absErrs, 90)
		largeCount := 0
		for _, e := range absErrs {
			if e > largeThreshold {
				largeCount++
			}
		}

		metrics := map[string]any{
			"evaluated_rows":        len(rows),
			"mae":                   model.MAE(actual, predicted),
			"rmse":                  model.RMSE(actual, predicted),
			"r2_score":              model.R2(actual, predicted),
			"large_error_threshold": largeThreshold,
			"large_error_count":     largeCount,
		}
		return out, metrics, nil
	}
}
