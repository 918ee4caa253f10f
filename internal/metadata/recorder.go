// Package metadata builds and persists the immutable run records that make
// every artifact traceable to a uniquely identified stage execution.
package metadata

import (
	"encoding/json"

	"github.com/google/uuid"

	"github.com/IsakLindberger/Weather-Predict-Model/internal/artifact"
	"github.com/IsakLindberger/Weather-Predict-Model/internal/domain"
)

// Entry carries everything a stage run knows about itself. The recorder
// adds identity (run id) and time, then persists the result.
type Entry struct {
	Stage      domain.Stage
	Date       string
	Status     domain.Status
	InputRef   artifact.Ref
	OutputRef  artifact.Ref
	InputRows  int
	OutputRows int
	Metrics    map[string]any
	Violations []string
	Err        error
}

// Recorder persists one RunMetadata record per stage execution as a JSON
// sidecar next to the stage's output artifact, keyed by the same
// date-stamp. Records are written even for failed runs; downstream
// debugging depends on metadata existing for every attempted execution.
type Recorder struct {
	store     *artifact.Store
	stationID string
}

// NewRecorder creates a recorder writing through the given store.
func NewRecorder(store *artifact.Store, stationID string) *Recorder {
	return &Recorder{store: store, stationID: stationID}
}

// Record builds the immutable metadata record and persists it. A failure to
// persist is fatal to the stage run: the record is returned alongside the
// PersistenceError so callers can still report what was attempted.
func (r *Recorder) Record(e Entry) (domain.RunMetadata, error) {
	md := domain.RunMetadata{
		RunID:      uuid.NewString(),
		Stage:      e.Stage,
		Status:     e.Status,
		RecordedAt: domain.Clock().Now().UTC(),
		Date:       e.Date,
		StationID:  r.stationID,
		InputRef:   e.InputRef.Path,
		OutputRef:  e.OutputRef.Path,
		InputRows:  e.InputRows,
		OutputRows: e.OutputRows,
		Metrics:    e.Metrics,
		Violations: e.Violations,
	}
	if e.Err != nil {
		md.Error = e.Err.Error()
	}

	data, err := json.MarshalIndent(md, "", "  ")
	if err != nil {
		return md, &domain.PersistenceError{Op: "encode metadata", Path: e.OutputRef.Path, Err: err}
	}
	if err := r.store.WriteSidecar(e.OutputRef, data); err != nil {
		return md, err
	}
	return md, nil
}

// Read loads the metadata record associated with an artifact reference.
func (r *Recorder) Read(ref artifact.Ref) (domain.RunMetadata, error) {
	data, err := r.store.ReadSidecar(ref)
	if err != nil {
		return domain.RunMetadata{}, err
	}
	var md domain.RunMetadata
	if err := json.Unmarshal(data, &md); err != nil {
		return domain.RunMetadata{}, &domain.PersistenceError{
			Op: "decode metadata", Path: artifact.SidecarPath(ref), Err: err,
		}
	}
	return md, nil
}
