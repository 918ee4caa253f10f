// Package schema holds the declarative stage contracts and the validator
// that checks datasets against them. One YAML document per stage declares
// the input and output schema; the registry is immutable after construction
// so validation is deterministic and safe to call concurrently.
package schema

import (
	"embed"
	"fmt"
	"io/fs"

	"gopkg.in/yaml.v3"

	"github.com/IsakLindberger/Weather-Predict-Model/internal/domain"
)

//go:embed schemas/*.yaml
var schemaFS embed.FS

// ColumnType is the declared primitive type of a column.
type ColumnType string

const (
	TypeFloat     ColumnType = "float"
	TypeInt       ColumnType = "int"
	TypeString    ColumnType = "string"
	TypeTimestamp ColumnType = "timestamp"
)

// Column is one declared column: name, primitive type, and optional
// constraints. Min/Max apply to numeric columns, Allowed to string columns.
type Column struct {
	Name     string     `yaml:"name"`
	Type     ColumnType `yaml:"type"`
	Required bool       `yaml:"required"`
	NonNull  bool       `yaml:"non_null"`
	Min      *float64   `yaml:"min"`
	Max      *float64   `yaml:"max"`
	Allowed  []string   `yaml:"allowed"`
}

// Schema is the full column contract for one side of one stage.
type Schema struct {
	Stage   domain.Stage
	Side    string // "input" or "output"
	Columns []Column
}

// StageSchemas pairs a stage's input and output contracts.
type StageSchemas struct {
	Input  Schema
	Output Schema
}

// Registry holds one StageSchemas per stage. Read-only once built.
type Registry struct {
	stages map[domain.Stage]StageSchemas
}

// stageFile is the YAML document layout: one file per stage.
type stageFile struct {
	Stage  domain.Stage `yaml:"stage"`
	Input  sideFile     `yaml:"input"`
	Output sideFile     `yaml:"output"`
}

type sideFile struct {
	Columns []Column `yaml:"columns"`
}

// NewRegistry builds the registry from the embedded schema files.
func NewRegistry() (*Registry, error) {
	return NewRegistryFromFS(schemaFS, "schemas")
}

// NewRegistryFromFS builds a registry from YAML files under dir in fsys.
// Exposed so tests can register synthetic stage contracts.
func NewRegistryFromFS(fsys fs.FS, dir string) (*Registry, error) {
	entries, err := fs.ReadDir(fsys, dir)
	if err != nil {
		return nil, fmt.Errorf("read schema dir: %w", err)
	}

	r := &Registry{stages: make(map[domain.Stage]StageSchemas)}
	for _, e := range entries {
		if e.IsDir() {
			continue
		}
		data, err := fs.ReadFile(fsys, dir+"/"+e.Name())
		if err != nil {
			return nil, fmt.Errorf("read schema %s: %w", e.Name(), err)
		}

		var sf stageFile
		if err := yaml.Unmarshal(data, &sf); err != nil {
			return nil, fmt.Errorf("parse schema %s: %w", e.Name(), err)
		}
		if sf.Stage == "" {
			return nil, fmt.Errorf("schema %s: missing stage name", e.Name())
		}
		if _, dup := r.stages[sf.Stage]; dup {
			return nil, fmt.Errorf("schema %s: stage %q already registered", e.Name(), sf.Stage)
		}

		r.stages[sf.Stage] = StageSchemas{
			Input:  Schema{Stage: sf.Stage, Side: "input", Columns: sf.Input.Columns},
			Output: Schema{Stage: sf.Stage, Side: "output", Columns: sf.Output.Columns},
		}
	}
	return r, nil
}

// Get returns the registered contracts for a stage, or UnknownStageError.
func (r *Registry) Get(stage domain.Stage) (StageSchemas, error) {
	ss, ok := r.stages[stage]
	if !ok {
		return StageSchemas{}, &domain.UnknownStageError{Stage: stage}
	}
	return ss, nil
}
