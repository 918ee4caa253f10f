package pipeline

import (
	"context"
	"fmt"
	"log/slog"

	"golang.org/x/sync/errgroup"

	"github.com/IsakLindberger/Weather-Predict-Model/internal/artifact"
	"github.com/IsakLindberger/Weather-Predict-Model/internal/domain"
	"github.com/IsakLindberger/Weather-Predict-Model/internal/observability"
)

// RunPublisher receives the metadata record of every attempted stage run.
// Implementations must tolerate being called from the terminal fan-out legs
// concurrently. Publishing is a notification channel; failures are logged,
// never fatal, because the durable sidecar is the contract-bearing record.
type RunPublisher interface {
	PublishRun(ctx context.Context, md domain.RunMetadata) error
}

// Orchestrator sequences stages along the fixed dependency graph, resolves
// each stage's input from its predecessor's deterministic output reference,
// and halts on the first non-success outcome; no stage downstream of a
// violation ever executes.
type Orchestrator struct {
	runner    *Runner
	store     *artifact.Store
	bodies    map[domain.Stage]Transform
	logger    *slog.Logger
	metrics   *observability.Metrics
	publisher RunPublisher
}

// NewOrchestrator wires an orchestrator over a runner and the stage bodies.
func NewOrchestrator(runner *Runner, store *artifact.Store, bodies map[domain.Stage]Transform,
	logger *slog.Logger, metrics *observability.Metrics) *Orchestrator {
	return &Orchestrator{
		runner:  runner,
		store:   store,
		bodies:  bodies,
		logger:  logger,
		metrics: metrics,
	}
}

// SetPublisher attaches an optional run-event publisher. Must be called
// before RunPipeline.
func (o *Orchestrator) SetPublisher(p RunPublisher) {
	o.publisher = p
}

// RunPipeline executes the stages from start through end for one logical
// date, in dependency order. The returned slice enumerates every stage
// attempted with its outcome; a non-nil error is returned only for
// pre-flight failures (unknown stage, bad date, missing upstream artifact)
// detected before any stage body executes.
func (o *Orchestrator) RunPipeline(ctx context.Context, start, end domain.Stage, date string) ([]RunOutcome, error) {
	if !artifact.ValidDate(date) {
		return nil, fmt.Errorf("invalid date %q: want YYYYMMDD", date)
	}
	si, ei := domain.StageIndex(start), domain.StageIndex(end)
	if si < 0 {
		return nil, &domain.UnknownStageError{Stage: start}
	}
	if ei < 0 {
		return nil, &domain.UnknownStageError{Stage: end}
	}
	if si > ei {
		return nil, fmt.Errorf("start stage %q comes after end stage %q", start, end)
	}

	// Resume precondition: the first stage's input must already exist.
	// Checked before any body executes; no partial recovery is attempted.
	firstInput := artifact.InputReference(start, date)
	if !o.store.Exists(firstInput) {
		upstream, _ := domain.Predecessor(start)
		return nil, &domain.MissingUpstreamArtifactError{
			Stage:    start,
			Upstream: upstream,
			Path:     firstInput.Path,
		}
	}

	linear, terminal := splitSequence(domain.Stages()[si : ei+1])

	o.metrics.PipelineRunning.Set(1)
	defer o.metrics.PipelineRunning.Set(0)
	o.logger.Info("pipeline run starting", "start", start, "end", end, "date", date)

	var outcomes []RunOutcome
	for _, stage := range linear {
		outcome := o.runStage(ctx, stage, date)
		outcomes = append(outcomes, outcome)
		if outcome.Status != domain.StatusSuccess {
			o.logger.Error("pipeline halted", "stage", stage, "status", outcome.Status, "date", date)
			return outcomes, nil
		}
	}

	outcomes = append(outcomes, o.runTerminal(ctx, terminal, date)...)

	o.logger.Info("pipeline run finished", "date", date,
		"stages", len(outcomes), "success", Success(outcomes))
	return outcomes, nil
}

// runStage executes one stage via the runner and publishes its record.
func (o *Orchestrator) runStage(ctx context.Context, stage domain.Stage, date string) RunOutcome {
	body, ok := o.bodies[stage]
	if !ok {
		return RunOutcome{
			Stage:  stage,
			Status: domain.StatusError,
			Err:    fmt.Errorf("no body registered for stage %q", stage),
		}
	}

	outcome := o.runner.Run(ctx, stage, artifact.InputReference(stage, date), body, date)
	o.publish(ctx, outcome)
	return outcome
}

// runTerminal executes the failure/survival legs. They share evaluate's
// output and have no dependency on each other, so when both are requested
// they run concurrently; the shared input artifact is read-only and the
// schema registry is never mutated after construction. Outcomes come back
// in graph order regardless of completion order.
func (o *Orchestrator) runTerminal(ctx context.Context, terminal []domain.Stage, date string) []RunOutcome {
	switch len(terminal) {
	case 0:
		return nil
	case 1:
		return []RunOutcome{o.runStage(ctx, terminal[0], date)}
	}

	outcomes := make([]RunOutcome, len(terminal))
	g, gctx := errgroup.WithContext(ctx)
	for i, stage := range terminal {
		g.Go(func() error {
			outcomes[i] = o.runStage(gctx, stage, date)
			return nil
		})
	}
	g.Wait() //nolint:errcheck // goroutines report through outcomes, never errors
	return outcomes
}

func (o *Orchestrator) publish(ctx context.Context, outcome RunOutcome) {
	if o.publisher == nil || outcome.Metadata.RunID == "" {
		return
	}
	if err := o.publisher.PublishRun(ctx, outcome.Metadata); err != nil {
		o.logger.Warn("run event publish failed",
			"stage", outcome.Stage, "run_id", outcome.Metadata.RunID, "error", err)
	}
}

// splitSequence separates the linear chain from the terminal fan-out legs.
func splitSequence(seq []domain.Stage) (linear, terminal []domain.Stage) {
	for _, s := range seq {
		if s == domain.StageFailure || s == domain.StageSurvival {
			terminal = append(terminal, s)
		} else {
			linear = append(linear, s)
		}
	}
	return linear, terminal
}
