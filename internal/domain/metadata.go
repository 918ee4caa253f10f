package domain

import "time"

// Status is the terminal state of one stage execution.
type Status string

const (
	StatusSuccess           Status = "success"
	StatusContractViolation Status = "contract_violation"
	StatusError             Status = "error"
)

// RunMetadata describes one execution of one stage. It is created exactly
// once per stage run and never mutated; a re-run for the same date writes a
// fresh record that supersedes the old sidecar.
type RunMetadata struct {
	RunID      string         `json:"run_id"`
	Stage      Stage          `json:"stage"`
	Status     Status         `json:"status"`
	RecordedAt time.Time      `json:"recorded_at"`
	Date       string         `json:"date"`
	StationID  string         `json:"station_id,omitempty"`
	InputRef   string         `json:"input_ref,omitempty"`
	OutputRef  string         `json:"output_ref,omitempty"`
	InputRows  int            `json:"input_rows"`
	OutputRows int            `json:"output_rows"`
	Metrics    map[string]any `json:"metrics,omitempty"`

	// Violations holds rendered contract violations when Status is
	// contract_violation; Error holds the stage body's failure detail when
	// Status is error.
	Violations []string `json:"violations,omitempty"`
	Error      string   `json:"error,omitempty"`
}
