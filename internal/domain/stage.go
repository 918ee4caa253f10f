package domain

// Stage names one transformation step in the fixed pipeline.
type Stage string

const (
	StageIngest   Stage = "ingest"
	StageClean    Stage = "clean"
	StageFeatures Stage = "features"
	StageTrain    Stage = "train"
	StageEvaluate Stage = "evaluate"
	StageFailure  Stage = "failure"
	StageSurvival Stage = "survival"
)

// stageOrder is the dependency-ordered stage list. The two terminal stages
// both consume evaluate's output and are independent of each other.
var stageOrder = []Stage{
	StageIngest,
	StageClean,
	StageFeatures,
	StageTrain,
	StageEvaluate,
	StageFailure,
	StageSurvival,
}

// predecessors encodes the fixed dependency graph:
// ingest → clean → features → train → evaluate → {failure, survival}.
var predecessors = map[Stage]Stage{
	StageClean:    StageIngest,
	StageFeatures: StageClean,
	StageTrain:    StageFeatures,
	StageEvaluate: StageTrain,
	StageFailure:  StageEvaluate,
	StageSurvival: StageEvaluate,
}

// Stages returns the stages in dependency order.
func Stages() []Stage {
	return append([]Stage(nil), stageOrder...)
}

// Predecessor returns the stage whose output artifact feeds s.
// The second return is false for ingest, which reads the collector drop.
func Predecessor(s Stage) (Stage, bool) {
	p, ok := predecessors[s]
	return p, ok
}

// KnownStage reports whether s is one of the pipeline's stages.
func KnownStage(s Stage) bool {
	for _, st := range stageOrder {
		if st == s {
			return true
		}
	}
	return false
}

// StageIndex returns s's position in dependency order, or -1.
func StageIndex(s Stage) int {
	for i, st := range stageOrder {
		if st == s {
			return i
		}
	}
	return -1
}
