package domain

import "fmt"

// UnknownStageError is returned when a stage has no registered schema.
// It is a configuration defect: every runnable stage must declare its
// contract before any run can execute it.
type UnknownStageError struct {
	Stage Stage
}

func (e *UnknownStageError) Error() string {
	return fmt.Sprintf("no schema registered for stage %q", e.Stage)
}

// PersistenceError wraps a failed artifact or metadata write. It is fatal to
// the stage run: a stage whose output or metadata cannot be durably stored
// has not completed.
type PersistenceError struct {
	Op   string // "write artifact", "write metadata", ...
	Path string
	Err  error
}

func (e *PersistenceError) Error() string {
	return fmt.Sprintf("%s %s: %v", e.Op, e.Path, e.Err)
}

func (e *PersistenceError) Unwrap() error {
	return e.Err
}

// MissingUpstreamArtifactError is returned when a pipeline run is asked to
// start from a stage whose predecessor artifact does not exist for the
// requested date. Surfaced before any stage body executes; never retried.
type MissingUpstreamArtifactError struct {
	Stage    Stage
	Upstream Stage
	Path     string
}

func (e *MissingUpstreamArtifactError) Error() string {
	return fmt.Sprintf("stage %q requires output of %q which does not exist at %s",
		e.Stage, e.Upstream, e.Path)
}
