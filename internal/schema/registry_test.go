package schema

import (
	"errors"
	"testing"
	"testing/fstest"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/IsakLindberger/Weather-Predict-Model/internal/domain"
)

func TestNewRegistryLoadsAllStages(t *testing.T) {
	r, err := NewRegistry()
	require.NoError(t, err)

	for _, stage := range domain.Stages() {
		ss, err := r.Get(stage)
		require.NoError(t, err, "stage %s", stage)
		assert.Equal(t, stage, ss.Input.Stage)
		assert.Equal(t, "input", ss.Input.Side)
		assert.Equal(t, "output", ss.Output.Side)
		assert.NotEmpty(t, ss.Input.Columns, "stage %s input", stage)
		assert.NotEmpty(t, ss.Output.Columns, "stage %s output", stage)
	}
}

func TestGetUnknownStage(t *testing.T) {
	r, err := NewRegistry()
	require.NoError(t, err)

	_, err = r.Get("enrich")
	require.Error(t, err)

	var unknown *domain.UnknownStageError
	require.True(t, errors.As(err, &unknown))
	assert.Equal(t, domain.Stage("enrich"), unknown.Stage)
}

func TestIngestOutputTightensInput(t *testing.T) {
	// The raw drop only promises types; the ingest output adds the physical
	// plausibility ranges every downstream stage relies on.
	r, err := NewRegistry()
	require.NoError(t, err)

	ss, err := r.Get(domain.StageIngest)
	require.NoError(t, err)

	rangesOf := func(s Schema) map[string]bool {
		out := map[string]bool{}
		for _, c := range s.Columns {
			out[c.Name] = c.Min != nil || c.Max != nil
		}
		return out
	}

	assert.False(t, rangesOf(ss.Input)["temperature"])
	assert.True(t, rangesOf(ss.Output)["temperature"])
	assert.True(t, rangesOf(ss.Output)["humidity"])
	assert.True(t, rangesOf(ss.Output)["pressure"])
}

func TestCleanOutputRequiresNonNullMeasurements(t *testing.T) {
	r, err := NewRegistry()
	require.NoError(t, err)

	ss, err := r.Get(domain.StageClean)
	require.NoError(t, err)

	nonNull := map[string]bool{}
	for _, c := range ss.Output.Columns {
		nonNull[c.Name] = c.NonNull
	}
	assert.True(t, nonNull["temperature"])
	assert.True(t, nonNull["humidity"])
	assert.True(t, nonNull["pressure"])

	// Nulls are still legal on the way in: cleaning is what removes them.
	inNonNull := map[string]bool{}
	for _, c := range ss.Input.Columns {
		inNonNull[c.Name] = c.NonNull
	}
	assert.False(t, inNonNull["temperature"])
}

func TestNewRegistryFromFS(t *testing.T) {
	fsys := fstest.MapFS{
		"contracts/demo.yaml": &fstest.MapFile{Data: []byte(`
stage: ingest
input:
  columns:
    - name: x
      type: float
      required: true
output:
  columns:
    - name: x
      type: float
      required: true
      non_null: true
`)},
	}

	r, err := NewRegistryFromFS(fsys, "contracts")
	require.NoError(t, err)

	ss, err := r.Get(domain.StageIngest)
	require.NoError(t, err)
	require.Len(t, ss.Input.Columns, 1)
	assert.Equal(t, "x", ss.Input.Columns[0].Name)
	assert.False(t, ss.Input.Columns[0].NonNull)
	assert.True(t, ss.Output.Columns[0].NonNull)
}

func TestNewRegistryFromFSRejectsDuplicateStage(t *testing.T) {
	doc := []byte("stage: clean\ninput:\n  columns: []\noutput:\n  columns: []\n")
	fsys := fstest.MapFS{
		"contracts/a.yaml": &fstest.MapFile{Data: doc},
		"contracts/b.yaml": &fstest.MapFile{Data: doc},
	}

	_, err := NewRegistryFromFS(fsys, "contracts")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "already registered")
}

func TestNewRegistryFromFSRejectsMissingStageName(t *testing.T) {
	fsys := fstest.MapFS{
		"contracts/a.yaml": &fstest.MapFile{Data: []byte("input:\n  columns: []\n")},
	}

	_, err := NewRegistryFromFS(fsys, "contracts")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "missing stage name")
}
