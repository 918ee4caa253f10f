// Package stages holds the seven stage bodies the pipeline wraps: ingest
// normalization, IQR cleaning, feature engineering, forest training,
// evaluation, failure analysis, and survival analysis. Each body is a pure
// dataset-to-dataset transform plus a metrics mapping; the contract engine
// validates around them and owns all tabular persistence. The only side
// artifact is the fitted model blob, which train writes and evaluate reads
// through the store for the same date.
package stages

import (
	"github.com/IsakLindberger/Weather-Predict-Model/internal/artifact"
	"github.com/IsakLindberger/Weather-Predict-Model/internal/domain"
	"github.com/IsakLindberger/Weather-Predict-Model/internal/pipeline"
)

// Params are the statistical knobs for the stage bodies.
type Params struct {
	// Train hyperparameters.
	ForestTrees     int
	ForestMaxDepth  int
	Seed            int64
	ValidationShare float64 // fraction of rows held out, e.g. 0.2

	// Failure analysis: percentile of abs_error defining a failure.
	FailurePercentile float64

	// Survival analysis: abs_error above this is a failure event.
	SurvivalErrorThreshold float64
}

// DefaultParams mirrors the defaults the model was developed with.
func DefaultParams() Params {
	return Params{
		ForestTrees:            100,
		ForestMaxDepth:         10,
		Seed:                   42,
		ValidationShare:        0.2,
		FailurePercentile:      90,
		SurvivalErrorThreshold: 0.7,
	}
}

// Bodies wires the stage bodies for one logical date. The store and date
// are captured by the train/evaluate/failure closures for their side
// artifacts (model blob, features context).
func Bodies(store *artifact.Store, p Params, date string) map[domain.Stage]pipeline.Transform {
	return map[domain.Stage]pipeline.Transform{
		domain.StageIngest:   Ingest(),
		domain.StageClean:    Clean(),
		domain.StageFeatures: Features(),
		domain.StageTrain:    Train(store, p, date),
		domain.StageEvaluate: Evaluate(store, p, date),
		domain.StageFailure:  Failure(store, p, date),
		domain.StageSurvival: Survival(p),
	}
}
