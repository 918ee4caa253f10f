package stages

import (
	"context"
	"errors"
	"math/rand"
	"sort"

	"github.com/IsakLindberger/Weather-Predict-Model/internal/artifact"
	"github.com/IsakLindberger/Weather-Predict-Model/internal/domain"
	"github.com/IsakLindberger/Weather-Predict-Model/internal/model"
	"github.com/IsakLindberger/Weather-Predict-Model/internal/pipeline"
)

// targetColumn is what the forest predicts.
const targetColumn = "temperature"

// nonFeatureColumns never enter the feature matrix.
var nonFeatureColumns = map[string]bool{
	"timestamp":  true,
	"station_id": true,
	targetColumn: true,
}

// Train fits the temperature forest on a seeded shuffle split of the
// featured data, writes the model blob for the date, and emits the split
// assignment as the tabular output so evaluate can find the holdout rows.
func Train(store *artifact.Store, p Params, date string) pipeline.Transform {
	return func(_ context.Context, ds *domain.Dataset) (*domain.Dataset, map[string]any, error) {
		features := featureColumns(ds)
		if len(features) == 0 {
			return nil, nil, errors.New("train: no feature columns in input")
		}

		trainIdx, valIdx := splitIndices(ds.Len(), p.ValidationShare, p.Seed)
		if len(trainIdx) == 0 {
			return nil, nil, errors.New("train: empty training split")
		}

		X, y, err := matrix(ds, features, trainIdx)
		if err != nil {
			return nil, nil, err
		}

		forest := model.NewForest(
			model.WithTrees(p.ForestTrees),
			model.WithMaxDepth(p.ForestMaxDepth),
			model.WithSeed(p.Seed),
		)
		forest.FeatureNames = features
		forest.Target = targetColumn
		if err := forest.Fit(X, y); err != nil {
			return nil, nil, err
		}

		metrics := map[string]any{
			"train_samples":      len(trainIdx),
			"validation_samples": len(valIdx),
			"feature_columns":    features,
			"hyperparameters": map[string]any{
				"n_trees":   p.ForestTrees,
				"max_depth": p.ForestMaxDepth,
				"seed":      p.Seed,
			},
		}

		// Validation metrics on the holdout, when there is one.
		if len(valIdx) > 0 {
			vX, vy, err := matrix(ds, features, valIdx)
			if err != nil {
				return nil, nil, err
			}
			pred := forest.Predict(vX)
			metrics["mae"] = model.MAE(vy, pred)
			metrics["rmse"] = model.RMSE(vy, pred)
			metrics["r2_score"] = model.R2(vy, pred)
		}

		blob, err := forest.Encode()
		if err != nil {
			return nil, nil, err
		}
		modelRef := artifact.ModelReference(date)
		if err := store.WriteBlob(modelRef, blob); err != nil {
			return nil, nil, err
		}
		metrics["model_path"] = modelRef.Path

		out := ds.Clone()
		out.AddColumn("split")
		for _, i := range trainIdx {
			out.Rows[i]["split"] = "train"
		}
		for _, i := range valIdx {
			out.Rows[i]["split"] = "validation"
		}
		return out, metrics, nil
	}
}

// featureColumns returns the model inputs: every column except the
// identifiers and the target, in dataset order.
func featureColumns(ds *domain.Dataset) []string {
	out := make([]string, 0, len(ds.Columns))
	for _, c := range ds.Columns {
		if !nonFeatureColumns[c] {
			out = append(out, c)
		}
	}
	return out
}

// splitIndices shuffles 0..n-1 with the seed and carves off the validation
// share from the tail. Both halves come back sorted so the split is stable
// row order regardless of the shuffle.
func splitIndices(n int, share float64, seed int64) (train, validation []int) {
	idx := make([]int, n)
	for i := range idx {
		idx[i] = i
	}
	rnd := rand.New(rand.NewSource(seed))
	rnd.Shuffle(n, func(a, b int) { idx[a], idx[b] = idx[b], idx[a] })

	nVal := int(float64(n) * share)
	if nVal >= n {
		nVal = n - 1
	}
	if nVal < 0 {
		nVal = 0
	}
	cut := n - nVal
	train = append([]int(nil), idx[:cut]...)
	validation = append([]int(nil), idx[cut:]...)
	sort.Ints(train)
	sort.Ints(validation)
	return train, validation
}

// matrix extracts the feature matrix and target vector for the given rows.
// A null or non-numeric cell in a feature or target column is an error:
// the cleaning and feature contracts upstream should have eliminated them.
func matrix(ds *domain.Dataset, features []string, rows []int) ([][]float64, []float64, error) {
	X := make([][]float64, len(rows))
	y := make([]float64, len(rows))
	for i, r := range rows {
		vec := make([]float64, len(features))
		for j, col := range features {
			v, ok := ds.Float(r, col)
			if !ok {
				return nil, nil, errors.New("train: non-numeric value in column " + col)
			}
			vec[j] = v
		}
		X[i] = vec
		t, ok := ds.Float(r, targetColumn)
		if !ok {
			return nil, nil, errors.New("train: non-numeric target value")
		}
		y[i] = t
	}
	return X, y, nil
}
