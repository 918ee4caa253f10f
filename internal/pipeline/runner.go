package pipeline

import (
	"context"
	"log/slog"

	"github.com/IsakLindberger/Weather-Predict-Model/internal/artifact"
	"github.com/IsakLindberger/Weather-Predict-Model/internal/domain"
	"github.com/IsakLindberger/Weather-Predict-Model/internal/metadata"
	"github.com/IsakLindberger/Weather-Predict-Model/internal/observability"
	"github.com/IsakLindberger/Weather-Predict-Model/internal/schema"
)

// Runner executes one stage under contract enforcement: load, validate
// input, run the body, validate output, persist, record. The body never
// sees data that fails its declared input contract, and a violating output
// never reaches disk.
type Runner struct {
	schemas  *schema.Registry
	store    *artifact.Store
	recorder *metadata.Recorder
	logger   *slog.Logger
	metrics  *observability.Metrics
}

// NewRunner wires a runner from its collaborators.
func NewRunner(schemas *schema.Registry, store *artifact.Store, recorder *metadata.Recorder,
	logger *slog.Logger, metrics *observability.Metrics) *Runner {
	return &Runner{
		schemas:  schemas,
		store:    store,
		recorder: recorder,
		logger:   logger,
		metrics:  metrics,
	}
}

// Run executes the stage body for one date under the stage's declared
// contracts. The returned outcome is always recorded as metadata, whatever
// the status, so every attempted execution is auditable.
func (r *Runner) Run(ctx context.Context, stage domain.Stage, inputRef artifact.Ref,
	transform Transform, date string) RunOutcome {
	start := domain.Clock().Now()
	outputRef := artifact.Reference(stage, date)
	outcome := r.run(ctx, stage, inputRef, outputRef, transform, date)

	r.metrics.StageRuns.WithLabelValues(string(stage), string(outcome.Status)).Inc()
	r.metrics.StageDuration.WithLabelValues(string(stage)).
		Observe(domain.Clock().Now().Sub(start).Seconds())

	switch outcome.Status {
	case domain.StatusSuccess:
		r.logger.Info("stage completed",
			"stage", stage, "date", date,
			"run_id", outcome.Metadata.RunID,
			"input_rows", outcome.Metadata.InputRows,
			"output_rows", outcome.Metadata.OutputRows,
			"output", outcome.OutputRef.Path,
		)
	case domain.StatusContractViolation:
		r.logger.Error("stage contract violation",
			"stage", stage, "date", date,
			"direction", outcome.Direction,
			"violations", outcome.Report.Messages(),
		)
	default:
		r.logger.Error("stage failed", "stage", stage, "date", date, "error", outcome.Err)
	}
	return outcome
}

func (r *Runner) run(ctx context.Context, stage domain.Stage, inputRef, outputRef artifact.Ref,
	transform Transform, date string) RunOutcome {
	contracts, err := r.schemas.Get(stage)
	if err != nil {
		return r.errorOutcome(stage, date, inputRef, outputRef, 0, nil, err)
	}

	ds, err := r.store.ReadDataset(inputRef)
	if err != nil {
		return r.errorOutcome(stage, date, inputRef, outputRef, 0, nil, err)
	}

	if report := schema.Validate(ds, contracts.Input); !report.Valid() {
		return r.violationOutcome(stage, date, inputRef, outputRef, ds.Len(), "input", report, nil)
	}

	out, stageMetrics, err := transform(ctx, ds)
	if err != nil {
		return r.errorOutcome(stage, date, inputRef, outputRef, ds.Len(), nil, err)
	}

	if report := schema.Validate(out, contracts.Output); !report.Valid() {
		// Fail closed: the malformed output is not persisted, but the
		// stage's metrics still reach the record for debugging.
		return r.violationOutcome(stage, date, inputRef, outputRef, ds.Len(), "output", report, stageMetrics)
	}

	if err := r.store.WriteDataset(outputRef, out); err != nil {
		return r.errorOutcome(stage, date, inputRef, outputRef, ds.Len(), stageMetrics, err)
	}

	r.metrics.RowsIn.WithLabelValues(string(stage)).Add(float64(ds.Len()))
	r.metrics.RowsOut.WithLabelValues(string(stage)).Add(float64(out.Len()))

	md, err := r.recorder.Record(metadata.Entry{
		Stage:      stage,
		Date:       date,
		Status:     domain.StatusSuccess,
		InputRef:   inputRef,
		OutputRef:  outputRef,
		InputRows:  ds.Len(),
		OutputRows: out.Len(),
		Metrics:    stageMetrics,
	})
	if err != nil {
		// A stage whose metadata cannot be recorded has not completed:
		// the artifact exists but the run is reported as failed.
		return RunOutcome{Stage: stage, Status: domain.StatusError, Metadata: md,
			OutputRef: outputRef, Err: err}
	}

	return RunOutcome{Stage: stage, Status: domain.StatusSuccess, Metadata: md, OutputRef: outputRef}
}

// violationOutcome records a contract_violation run. No output artifact is
// written for either boundary.
func (r *Runner) violationOutcome(stage domain.Stage, date string, inputRef, outputRef artifact.Ref,
	inputRows int, direction string, report schema.Report, stageMetrics map[string]any) RunOutcome {
	r.metrics.ContractViolations.WithLabelValues(string(stage), direction).
		Add(float64(len(report.Violations)))

	md, err := r.recorder.Record(metadata.Entry{
		Stage:      stage,
		Date:       date,
		Status:     domain.StatusContractViolation,
		InputRef:   inputRef,
		OutputRef:  outputRef,
		InputRows:  inputRows,
		Metrics:    stageMetrics,
		Violations: report.Messages(),
	})
	out := RunOutcome{
		Stage:     stage,
		Status:    domain.StatusContractViolation,
		Metadata:  md,
		OutputRef: outputRef,
		Report:    report,
		Direction: direction,
	}
	if err != nil {
		out.Status = domain.StatusError
		out.Err = err
	}
	return out
}

// errorOutcome records an error run, preserving the original failure.
func (r *Runner) errorOutcome(stage domain.Stage, date string, inputRef, outputRef artifact.Ref,
	inputRows int, stageMetrics map[string]any, cause error) RunOutcome {
	md, recErr := r.recorder.Record(metadata.Entry{
		Stage:     stage,
		Date:      date,
		Status:    domain.StatusError,
		InputRef:  inputRef,
		OutputRef: outputRef,
		InputRows: inputRows,
		Metrics:   stageMetrics,
		Err:       cause,
	})
	if recErr != nil {
		r.logger.Error("metadata record failed for errored stage",
			"stage", stage, "date", date, "error", recErr)
	}
	return RunOutcome{Stage: stage, Status: domain.StatusError, Metadata: md,
		OutputRef: outputRef, Err: cause}
}
