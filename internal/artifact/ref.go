// Package artifact names and stores the pipeline's dated artifacts.
// References are pure data: the path of every stage's output is a
// deterministic function of (stage, date), so each stage locates its input
// without any coordination beyond the shared naming convention.
package artifact

import (
	"fmt"
	"path"
	"time"

	"github.com/IsakLindberger/Weather-Predict-Model/internal/domain"
)

// Ref identifies one artifact: the stage that owns it, the logical date
// (YYYYMMDD), and its path relative to the data root.
type Ref struct {
	Stage domain.Stage
	Date  string
	Path  string
}

func (r Ref) String() string {
	return r.Path
}

// entities maps each stage to its output subdirectory, entity name, and
// format. Mirrors the flat-file layout: raw/, processed/, models/.
var entities = map[domain.Stage]struct {
	dir    string
	entity string
	ext    string
}{
	domain.StageIngest:   {"raw", "weather", "csv"},
	domain.StageClean:    {"processed", "weather_cleaned", "csv"},
	domain.StageFeatures: {"processed", "weather_features", "csv"},
	domain.StageTrain:    {"processed", "training_data", "csv"},
	domain.StageEvaluate: {"processed", "evaluation_results", "csv"},
	domain.StageFailure:  {"processed", "failure_analysis", "csv"},
	domain.StageSurvival: {"processed", "survival_analysis", "csv"},
}

// Reference returns the deterministic output reference for a stage and date.
// Unknown stages yield a zero Ref; callers guard with domain.KnownStage.
func Reference(stage domain.Stage, date string) Ref {
	e, ok := entities[stage]
	if !ok {
		return Ref{}
	}
	return Ref{
		Stage: stage,
		Date:  date,
		Path:  path.Join(e.dir, fmt.Sprintf("%s_%s.%s", e.entity, date, e.ext)),
	}
}

// SourceReference returns the collector's observation drop for a date,
// the input of the ingest stage.
func SourceReference(date string) Ref {
	return Ref{
		Stage: domain.StageIngest,
		Date:  date,
		Path:  path.Join("raw", fmt.Sprintf("observations_%s.csv", date)),
	}
}

// ModelReference returns the fitted model blob for a date, written by the
// train stage body and read back by evaluate.
func ModelReference(date string) Ref {
	return Ref{
		Stage: domain.StageTrain,
		Date:  date,
		Path:  path.Join("models", fmt.Sprintf("model_%s.gob", date)),
	}
}

// InputReference resolves a stage's input artifact for a date: the
// predecessor's output, or the observation drop for ingest.
func InputReference(stage domain.Stage, date string) Ref {
	if pred, ok := domain.Predecessor(stage); ok {
		return Reference(pred, date)
	}
	return SourceReference(date)
}

// DateStamp formats a time as the YYYYMMDD logical date.
func DateStamp(t time.Time) string {
	return t.UTC().Format("20060102")
}

// ValidDate reports whether s parses as a YYYYMMDD date.
func ValidDate(s string) bool {
	_, err := time.Parse("20060102", s)
	return err == nil
}
