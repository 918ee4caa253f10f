// Package pipeline enforces the stage contracts: every stage body runs
// wrapped in pre/post schema validation, emits an immutable metadata record,
// and is sequenced by the orchestrator along the fixed dependency graph.
// Violations are data (reports and outcome values), not control-flow jumps.
package pipeline

import (
	"context"

	"github.com/IsakLindberger/Weather-Predict-Model/internal/artifact"
	"github.com/IsakLindberger/Weather-Predict-Model/internal/domain"
	"github.com/IsakLindberger/Weather-Predict-Model/internal/schema"
)

// Transform is an externally supplied stage body: a pure function from
// dataset to dataset plus an auxiliary metrics mapping. The engine is
// agnostic to its internals.
type Transform func(ctx context.Context, ds *domain.Dataset) (*domain.Dataset, map[string]any, error)

// RunOutcome is the terminal result of one stage execution under contract
// enforcement.
type RunOutcome struct {
	Stage     domain.Stage
	Status    domain.Status
	Metadata  domain.RunMetadata
	OutputRef artifact.Ref

	// Report carries the schema violations when Status is
	// contract_violation; Direction says which boundary failed.
	Report    schema.Report
	Direction string // "input" or "output"

	// Err preserves load, persistence, or stage-body failure detail when
	// Status is error.
	Err error
}

// Success reports whether every outcome in the list completed cleanly.
func Success(outcomes []RunOutcome) bool {
	for _, o := range outcomes {
		if o.Status != domain.StatusSuccess {
			return false
		}
	}
	return len(outcomes) > 0
}
