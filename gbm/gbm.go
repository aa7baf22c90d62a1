package gbm

import (
	"errors"
	"fmt"
	"math"
	"sort"
)

// Config holds boosting hyperparameters. The zero value is not usable;
// start from DefaultConfig.
type Config struct {
	NTrees       int     // number of trees (default: 500)
	MaxDepth     int     // maximum tree depth, 1 = stumps (default: 3)
	LearningRate float64 // shrinkage applied to each tree (default: 0.05)
	MinLeaf      int     // minimum observations per leaf (default: 5)
}

// DefaultConfig returns the default boosting configuration.
func DefaultConfig() *Config {
	return &Config{
		NTrees:       500,
		MaxDepth:     3,
		LearningRate: 0.05,
		MinLeaf:      5,
	}
}

func (c *Config) validate() error {
	if c.NTrees < 1 {
		return fmt.Errorf("gbm: NTrees = %d, want >= 1", c.NTrees)
	}
	if c.MaxDepth < 1 {
		return fmt.Errorf("gbm: MaxDepth = %d, want >= 1", c.MaxDepth)
	}
	if c.LearningRate <= 0 || c.LearningRate > 1 {
		return fmt.Errorf("gbm: LearningRate = %v, want in (0, 1]", c.LearningRate)
	}
	if c.MinLeaf < 1 {
		return fmt.Errorf("gbm: MinLeaf = %d, want >= 1", c.MinLeaf)
	}
	return nil
}

// Node is one split or leaf of a regression tree.
type Node struct {
	Leaf      bool    `json:"leaf"`
	Value     float64 `json:"value,omitempty"`     // leaf prediction
	Feature   int     `json:"feature,omitempty"`   // split column
	Threshold float64 `json:"threshold,omitempty"` // go left when x[Feature] <= Threshold
	Left      *Node   `json:"left,omitempty"`
	Right     *Node   `json:"right,omitempty"`
}

// Ensemble is a fitted boosted-tree model.
type Ensemble struct {
	Init      float64 `json:"init"` // initial prediction (mean response)
	Shrinkage float64 `json:"shrinkage"`
	Trees     []*Node `json:"trees"`
}

// Fit trains a boosted regression ensemble on rows x and response y.
// Rows must share one width and contain no NaN.
func Fit(x [][]float64, y []float64, cfg *Config) (*Ensemble, error) {
	if cfg == nil {
		cfg = DefaultConfig()
	}
	if err := cfg.validate(); err != nil {
		return nil, err
	}
	n := len(x)
	if n == 0 {
		return nil, errors.New("gbm: empty training set")
	}
	if len(y) != n {
		return nil, fmt.Errorf("gbm: %d rows but %d responses", n, len(y))
	}
	width := len(x[0])
	for i, row := range x {
		if len(row) != width {
			return nil, fmt.Errorf("gbm: row %d has %d columns, row 0 has %d", i, len(row), width)
		}
		for j, v := range row {
			if math.IsNaN(v) {
				return nil, fmt.Errorf("gbm: NaN at row %d column %d", i, j)
			}
		}
		if math.IsNaN(y[i]) {
			return nil, fmt.Errorf("gbm: NaN response at row %d", i)
		}
	}

	init := mean(y)
	pred := make([]float64, n)
	resid := make([]float64, n)
	for i := range pred {
		pred[i] = init
	}

	idx := make([]int, n)
	for i := range idx {
		idx[i] = i
	}

	ens := &Ensemble{
		Init:      init,
		Shrinkage: cfg.LearningRate,
		Trees:     make([]*Node, 0, cfg.NTrees),
	}

	for t := 0; t < cfg.NTrees; t++ {
		for i := range resid {
			resid[i] = y[i] - pred[i]
		}
		root := buildNode(x, resid, idx, cfg.MaxDepth, cfg.MinLeaf)
		ens.Trees = append(ens.Trees, root)
		for i := range pred {
			pred[i] += cfg.LearningRate * evalNode(root, x[i])
		}
	}

	return ens, nil
}

// NTrees returns the number of trees in the ensemble.
func (e *Ensemble) NTrees() int {
	return len(e.Trees)
}

// Predict evaluates the full ensemble on one feature row.
func (e *Ensemble) Predict(row []float64) float64 {
	return e.PredictN(row, len(e.Trees))
}

// PredictN evaluates only the first n trees on one feature row.
func (e *Ensemble) PredictN(row []float64, n int) float64 {
	if n > len(e.Trees) {
		n = len(e.Trees)
	}
	out := e.Init
	for _, tree := range e.Trees[:n] {
		out += e.Shrinkage * evalNode(tree, row)
	}
	return out
}

func evalNode(n *Node, row []float64) float64 {
	for !n.Leaf {
		if row[n.Feature] <= n.Threshold {
			n = n.Left
		} else {
			n = n.Right
		}
	}
	return n.Value
}

// buildNode grows one tree node over the rows in idx. The node becomes a
// leaf when the depth budget is spent, the rows are too few to split, or
// no split reduces variance.
func buildNode(x [][]float64, resid []float64, idx []int, depth, minLeaf int) *Node {
	if depth == 0 || len(idx) < 2*minLeaf {
		return &Node{Leaf: true, Value: meanAt(resid, idx)}
	}

	feature, threshold, ok := bestSplit(x, resid, idx, minLeaf)
	if !ok {
		return &Node{Leaf: true, Value: meanAt(resid, idx)}
	}

	var left, right []int
	for _, i := range idx {
		if x[i][feature] <= threshold {
			left = append(left, i)
		} else {
			right = append(right, i)
		}
	}

	return &Node{
		Feature:   feature,
		Threshold: threshold,
		Left:      buildNode(x, resid, left, depth-1, minLeaf),
		Right:     buildNode(x, resid, right, depth-1, minLeaf),
	}
}

// bestSplit scans every feature for the threshold maximizing the reduction
// in residual sum of squares, honoring the minimum leaf size.
func bestSplit(x [][]float64, resid []float64, idx []int, minLeaf int) (int, float64, bool) {
	n := len(idx)
	width := len(x[idx[0]])

	var total, totalSq float64
	for _, i := range idx {
		total += resid[i]
		totalSq += resid[i] * resid[i]
	}
	baseSSE := totalSq - total*total/float64(n)

	bestGain := 0.0
	bestFeature := -1
	bestThreshold := 0.0

	order := make([]int, n)
	for f := 0; f < width; f++ {
		copy(order, idx)
		sort.Slice(order, func(a, b int) bool {
			return x[order[a]][f] < x[order[b]][f]
		})

		var leftSum, leftSq float64
		for pos := 0; pos < n-1; pos++ {
			i := order[pos]
			leftSum += resid[i]
			leftSq += resid[i] * resid[i]

			// No split between tied feature values.
			if x[order[pos+1]][f] <= x[i][f] {
				continue
			}
			nl := pos + 1
			nr := n - nl
			if nl < minLeaf || nr < minLeaf {
				continue
			}

			rightSum := total - leftSum
			rightSq := totalSq - leftSq
			sse := (leftSq - leftSum*leftSum/float64(nl)) +
				(rightSq - rightSum*rightSum/float64(nr))
			gain := baseSSE - sse
			if gain > bestGain+1e-12 {
				bestGain = gain
				bestFeature = f
				bestThreshold = (x[i][f] + x[order[pos+1]][f]) / 2
			}
		}
	}

	if bestFeature < 0 {
		return 0, 0, false
	}
	return bestFeature, bestThreshold, true
}

func mean(v []float64) float64 {
	sum := 0.0
	for _, x := range v {
		sum += x
	}
	return sum / float64(len(v))
}

func meanAt(v []float64, idx []int) float64 {
	sum := 0.0
	for _, i := range idx {
		sum += v[i]
	}
	return sum / float64(len(idx))
}
