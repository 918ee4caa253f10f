// Command validate checks a stored artifact against a stage's declared
// schema contract without running the pipeline. Useful for inspecting a
// suspect artifact or a hand-edited fixture before a resume run.
//
// Usage:
//
//	go run ./cmd/validate -data-dir data -stage clean -date 20240426
//	go run ./cmd/validate -data-dir data -stage clean -side input -date 20240426
package main

import (
	"flag"
	"fmt"
	"os"

	"github.com/IsakLindberger/Weather-Predict-Model/internal/artifact"
	"github.com/IsakLindberger/Weather-Predict-Model/internal/domain"
	"github.com/IsakLindberger/Weather-Predict-Model/internal/schema"
)

func main() {
	dataDir := flag.String("data-dir", "data", "pipeline data root")
	stageName := flag.String("stage", "", "stage whose contract to check")
	side := flag.String("side", "output", "which contract boundary: input or output")
	date := flag.String("date", "", "logical date (YYYYMMDD)")
	flag.Parse()

	if *stageName == "" || *date == "" {
		flag.Usage()
		os.Exit(1)
	}
	if code := run(*dataDir, domain.Stage(*stageName), *side, *date); code != 0 {
		os.Exit(code)
	}
}

func run(dataDir string, stage domain.Stage, side, date string) int {
	if !artifact.ValidDate(date) {
		fmt.Fprintf(os.Stderr, "invalid date %q: want YYYYMMDD\n", date)
		return 2
	}

	registry, err := schema.NewRegistry()
	if err != nil {
		fmt.Fprintf(os.Stderr, "load schemas: %v\n", err)
		return 2
	}
	contracts, err := registry.Get(stage)
	if err != nil {
		fmt.Fprintf(os.Stderr, "%v\n", err)
		return 2
	}

	var contract schema.Schema
	var ref artifact.Ref
	switch side {
	case "input":
		contract = contracts.Input
		ref = artifact.InputReference(stage, date)
	case "output":
		contract = contracts.Output
		ref = artifact.Reference(stage, date)
	default:
		fmt.Fprintf(os.Stderr, "invalid -side %q: want input or output\n", side)
		return 2
	}

	store := artifact.NewStore(dataDir)
	ds, err := store.ReadDataset(ref)
	if err != nil {
		fmt.Fprintf(os.Stderr, "read artifact: %v\n", err)
		return 2
	}

	report := schema.Validate(ds, contract)
	if report.Valid() {
		fmt.Printf("%s: %d rows, %s contract of %q satisfied\n", ref.Path, ds.Len(), side, stage)
		return 0
	}

	fmt.Printf("%s: %d violations against %s contract of %q\n", ref.Path, len(report.Violations), side, stage)
	for _, msg := range report.Messages() {
		fmt.Printf("  %s\n", msg)
	}
	return 1
}
