package model

import (
	"bytes"
	"encoding/gob"
	"errors"
	"math/rand"
	"sync"
)

// Forest is a bagged ensemble of regression trees. Each tree trains on a
// bootstrap sample drawn from its own seeded source, so a given
// (data, hyperparameters, seed) triple always fits the same forest.
type Forest struct {
	NTrees          int
	MaxDepth        int
	MinSamplesSplit int
	MaxFeatures     int
	Seed            int64

	FeatureNames []string
	Target       string
	Trees        []*RegressionTree
}

// ForestOption is functional configuration for NewForest.
type ForestOption func(*Forest)

func WithTrees(n int) ForestOption           { return func(f *Forest) { f.NTrees = n } }
func WithMaxDepth(d int) ForestOption        { return func(f *Forest) { f.MaxDepth = d } }
func WithMinSamplesSplit(n int) ForestOption { return func(f *Forest) { f.MinSamplesSplit = n } }
func WithMaxFeatures(k int) ForestOption     { return func(f *Forest) { f.MaxFeatures = k } }
func WithSeed(s int64) ForestOption          { return func(f *Forest) { f.Seed = s } }

// NewForest creates a forest with sensible defaults: 100 trees, depth 10,
// all features per split, seed 42.
func NewForest(opts ...ForestOption) *Forest {
	f := &Forest{
		NTrees:          100,
		MaxDepth:        10,
		MinSamplesSplit: 2,
		MaxFeatures:     0,
		Seed:            42,
	}
	for _, o := range opts {
		o(f)
	}
	return f
}

// Fit trains all trees, one goroutine per tree, each on its own bootstrap
// sample of row indices.
func (f *Forest) Fit(X [][]float64, y []float64) error {
	if len(X) == 0 {
		return errors.New("forest: empty training set")
	}
	if len(y) != len(X) {
		return errors.New("forest: X and y length mismatch")
	}

	n := len(X)
	f.Trees = make([]*RegressionTree, f.NTrees)
	errCh := make(chan error, f.NTrees)
	var wg sync.WaitGroup

	for i := 0; i < f.NTrees; i++ {
		wg.Add(1)
		go func(treeIdx int) {
			defer wg.Done()

			seed := f.Seed + int64(treeIdx)
			rnd := rand.New(rand.NewSource(seed))
			sample := make([]int, n)
			for j := range sample {
				sample[j] = rnd.Intn(n)
			}

			tree := &RegressionTree{
				MaxDepth:        f.MaxDepth,
				MinSamplesSplit: f.MinSamplesSplit,
				MaxFeatures:     f.MaxFeatures,
				RandomState:     seed,
			}
			if err := tree.FitIndices(X, y, sample); err != nil {
				errCh <- err
				return
			}
			f.Trees[treeIdx] = tree
		}(i)
	}
	wg.Wait()
	close(errCh)

	for err := range errCh {
		if err != nil {
			return err
		}
	}
	return nil
}

// Predict returns the mean of the tree predictions for each row.
func (f *Forest) Predict(X [][]float64) []float64 {
	out := make([]float64, len(X))
	if len(f.Trees) == 0 {
		return out
	}
	for i, x := range X {
		var sum float64
		for _, tree := range f.Trees {
			sum += tree.PredictOne(x)
		}
		out[i] = sum / float64(len(f.Trees))
	}
	return out
}

// Encode serializes the fitted forest with gob for the model store.
func (f *Forest) Encode() ([]byte, error) {
	var buf bytes.Buffer
	if err := gob.NewEncoder(&buf).Encode(f); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// DecodeForest deserializes a forest previously written by Encode.
func DecodeForest(data []byte) (*Forest, error) {
	var f Forest
	if err := gob.NewDecoder(bytes.NewReader(data)).Decode(&f); err != nil {
		return nil, err
	}
	return &f, nil
}
