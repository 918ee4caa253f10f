// Package model implements the regression forest the train stage fits and
// the evaluate stage applies: CART-style trees splitting on variance
// reduction, bagged with per-tree seeds so training is reproducible.
package model

import (
	"errors"
	"math/rand"
	"sort"
)

// TreeNode is one node of a fitted regression tree. Fields are exported for
// gob serialization.
type TreeNode struct {
	IsLeaf    bool
	Feature   int
	Threshold float64 // x[Feature] <= Threshold goes left
	Left      *TreeNode
	Right     *TreeNode
	Value     float64 // leaf prediction (mean of samples)
	N         int
}

// RegressionTree is a CART regressor. Zero-value hyperparameters mean:
// no depth limit, MinSamplesSplit 2, all features considered per split.
type RegressionTree struct {
	MaxDepth        int
	MinSamplesSplit int
	MaxFeatures     int
	RandomState     int64

	Root *TreeNode
}

// Fit trains on X (n rows, p features) and y (n targets). Rows must all
// have the same width.
func (t *RegressionTree) Fit(X [][]float64, y []float64) error {
	idx := make([]int, len(X))
	for i := range idx {
		idx[i] = i
	}
	return t.FitIndices(X, y, idx)
}

// FitIndices trains on the sample subset named by idx. Used by the forest
// for bootstrap bagging without copying rows.
func (t *RegressionTree) FitIndices(X [][]float64, y []float64, idx []int) error {
	if len(X) == 0 || len(idx) == 0 {
		return errors.New("tree: empty training set")
	}
	if len(y) != len(X) {
		return errors.New("tree: X and y length mismatch")
	}
	p := len(X[0])
	for i := range X {
		if len(X[i]) != p {
			return errors.New("tree: inconsistent row width")
		}
	}

	minSplit := t.MinSamplesSplit
	if minSplit < 2 {
		minSplit = 2
	}
	rnd := rand.New(rand.NewSource(t.RandomState))
	t.Root = t.build(X, y, idx, 0, p, minSplit, rnd)
	return nil
}

// Predict returns one prediction per row of X.
func (t *RegressionTree) Predict(X [][]float64) []float64 {
	out := make([]float64, len(X))
	for i := range X {
		out[i] = t.PredictOne(X[i])
	}
	return out
}

// PredictOne walks the tree for a single feature vector.
func (t *RegressionTree) PredictOne(x []float64) float64 {
	node := t.Root
	for node != nil && !node.IsLeaf {
		if x[node.Feature] <= node.Threshold {
			node = node.Left
		} else {
			node = node.Right
		}
	}
	if node == nil {
		return 0
	}
	return node.Value
}

func (t *RegressionTree) build(X [][]float64, y []float64, idx []int, depth, p, minSplit int, rnd *rand.Rand) *TreeNode {
	mean := meanAt(y, idx)
	node := &TreeNode{Value: mean, N: len(idx)}

	if len(idx) < minSplit || (t.MaxDepth > 0 && depth >= t.MaxDepth) || sseAt(y, idx, mean) == 0 {
		node.IsLeaf = true
		return node
	}

	feature, threshold, ok := t.bestSplit(X, y, idx, p, rnd)
	if !ok {
		node.IsLeaf = true
		return node
	}

	var left, right []int
	for _, i := range idx {
		if X[i][feature] <= threshold {
			left = append(left, i)
		} else {
			right = append(right, i)
		}
	}
	if len(left) == 0 || len(right) == 0 {
		node.IsLeaf = true
		return node
	}

	node.Feature = feature
	node.Threshold = threshold
	node.Left = t.build(X, y, left, depth+1, p, minSplit, rnd)
	node.Right = t.build(X, y, right, depth+1, p, minSplit, rnd)
	return node
}

// bestSplit scans candidate features for the threshold minimizing the
// weighted sum of squared errors of the two children. Thresholds are
// midpoints between consecutive distinct sorted values.
func (t *RegressionTree) bestSplit(X [][]float64, y []float64, idx []int, p int, rnd *rand.Rand) (int, float64, bool) {
	features := t.candidateFeatures(p, rnd)

	parentSSE := sseAt(y, idx, meanAt(y, idx))
	bestSSE := parentSSE
	bestFeature, bestThreshold := -1, 0.0

	order := make([]int, len(idx))
	for _, f := range features {
		copy(order, idx)
		sort.Slice(order, func(a, b int) bool { return X[order[a]][f] < X[order[b]][f] })

		// Prefix sums over the sorted order let every split evaluate in O(1).
		var sumL, sqL float64
		sumR, sqR := sumsAt(y, order)

		for k := 0; k < len(order)-1; k++ {
			v := y[order[k]]
			sumL += v
			sqL += v * v
			sumR -= v
			sqR -= v * v

			if X[order[k]][f] == X[order[k+1]][f] {
				continue
			}

			nL, nR := float64(k+1), float64(len(order)-k-1)
			sse := (sqL - sumL*sumL/nL) + (sqR - sumR*sumR/nR)
			if sse < bestSSE {
				bestSSE = sse
				bestFeature = f
				bestThreshold = (X[order[k]][f] + X[order[k+1]][f]) / 2
			}
		}
	}

	return bestFeature, bestThreshold, bestFeature >= 0
}

// candidateFeatures returns the feature subset to scan: all features, or a
// random sample of MaxFeatures without replacement.
func (t *RegressionTree) candidateFeatures(p int, rnd *rand.Rand) []int {
	all := make([]int, p)
	for i := range all {
		all[i] = i
	}
	if t.MaxFeatures <= 0 || t.MaxFeatures >= p {
		return all
	}
	rnd.Shuffle(p, func(a, b int) { all[a], all[b] = all[b], all[a] })
	sub := all[:t.MaxFeatures]
	sort.Ints(sub)
	return sub
}

func meanAt(y []float64, idx []int) float64 {
	if len(idx) == 0 {
		return 0
	}
	var sum float64
	for _, i := range idx {
		sum += y[i]
	}
	return sum / float64(len(idx))
}

func sseAt(y []float64, idx []int, mean float64) float64 {
	var sse float64
	for _, i := range idx {
		d := y[i] - mean
		sse += d * d
	}
	return sse
}

func sumsAt(y []float64, idx []int) (sum, sq float64) {
	for _, i := range idx {
		sum += y[i]
		sq += y[i] * y[i]
	}
	return sum, sq
}
