package boosting

import (
	"math"
	"sort"

	"gonum.org/v1/gonum/mat"
)

// trainer holds the mutable state of one ensemble fit.
type trainer struct {
	params Params

	X *mat.Dense
	y []float64

	predictions []float64 // current ensemble output per sample
	gradients   []float64
	hessians    []float64

	trees     []Tree
	initScore float64
}

func newTrainer(params Params, X, y mat.Matrix) *trainer {
	rows, cols := X.Dims()

	xDense, ok := X.(*mat.Dense)
	if !ok {
		xDense = mat.NewDense(rows, cols, nil)
		for i := 0; i < rows; i++ {
			for j := 0; j < cols; j++ {
				xDense.Set(i, j, X.At(i, j))
			}
		}
	}

	targets := make([]float64, rows)
	for i := 0; i < rows; i++ {
		targets[i] = y.At(i, 0)
	}

	return &trainer{
		params:      params,
		X:           xDense,
		y:           targets,
		predictions: make([]float64, rows),
		gradients:   make([]float64, rows),
		hessians:    make([]float64, rows),
	}
}

// run executes the boosting rounds.
func (t *trainer) run() {
	// Squared-error init score is the mean target.
	sum := 0.0
	for _, v := range t.y {
		sum += v
	}
	t.initScore = sum / float64(len(t.y))
	for i := range t.predictions {
		t.predictions[i] = t.initScore
	}

	rows, _ := t.X.Dims()
	rootIndices := make([]int, rows)
	for i := range rootIndices {
		rootIndices[i] = i
	}

	for iter := 0; iter < t.params.Iterations; iter++ {
		// Squared-error gradients: residual with unit hessian.
		for i := range t.y {
			t.gradients[i] = t.predictions[i] - t.y[i]
			t.hessians[i] = 1.0
		}

		tree := Tree{}
		t.buildNode(&tree, rootIndices, 0)
		t.trees = append(t.trees, tree)

		// Update cached predictions with the shrunken tree output.
		for _, idx := range rootIndices {
			t.predictions[idx] += t.predictLeaf(&tree, idx) * t.params.LearningRate
		}
	}
}

func (t *trainer) predictLeaf(tree *Tree, sampleIdx int) float64 {
	nodeIdx := 0
	for nodeIdx >= 0 && nodeIdx < len(tree.Nodes) {
		node := tree.Nodes[nodeIdx]
		if node.NodeType == LeafNode {
			return node.LeafValue
		}
		if t.X.At(sampleIdx, node.SplitFeature) <= node.Threshold {
			nodeIdx = node.LeftChild
		} else {
			nodeIdx = node.RightChild
		}
	}
	return 0.0
}

// buildNode grows the tree depth-wise, appending to the flat node slice and
// returning the new node's index.
func (t *trainer) buildNode(tree *Tree, indices []int, depth int) int {
	nodeIdx := len(tree.Nodes)

	if depth >= t.params.MaxDepth || len(indices) < 2*t.params.MinSamplesLeaf {
		tree.Nodes = append(tree.Nodes, Node{
			NodeType:   LeafNode,
			LeafValue:  t.leafValue(indices),
			LeftChild:  -1,
			RightChild: -1,
		})
		return nodeIdx
	}

	best := t.findBestSplit(indices)
	if math.IsInf(best.gain, -1) || best.gain <= 0 {
		tree.Nodes = append(tree.Nodes, Node{
			NodeType:   LeafNode,
			LeafValue:  t.leafValue(indices),
			LeftChild:  -1,
			RightChild: -1,
		})
		return nodeIdx
	}

	tree.Nodes = append(tree.Nodes, Node{
		NodeType:     NumericalNode,
		SplitFeature: best.feature,
		Threshold:    best.threshold,
	})

	var left, right []int
	for _, idx := range indices {
		if t.X.At(idx, best.feature) <= best.threshold {
			left = append(left, idx)
		} else {
			right = append(right, idx)
		}
	}

	leftChild := t.buildNode(tree, left, depth+1)
	rightChild := t.buildNode(tree, right, depth+1)
	tree.Nodes[nodeIdx].LeftChild = leftChild
	tree.Nodes[nodeIdx].RightChild = rightChild

	return nodeIdx
}

type splitInfo struct {
	feature   int
	threshold float64
	gain      float64
}

// findBestSplit scans every feature for the threshold with maximal gain.
func (t *trainer) findBestSplit(indices []int) splitInfo {
	_, cols := t.X.Dims()
	best := splitInfo{gain: math.Inf(-1)}

	totalGrad := 0.0
	totalHess := 0.0
	for _, idx := range indices {
		totalGrad += t.gradients[idx]
		totalHess += t.hessians[idx]
	}

	for j := 0; j < cols; j++ {
		split := t.findBestSplitForFeature(indices, j, totalGrad, totalHess)
		if split.gain > best.gain {
			best = split
		}
	}
	return best
}

func (t *trainer) findBestSplitForFeature(indices []int, feature int, totalGrad, totalHess float64) splitInfo {
	type sample struct {
		value float64
		idx   int
	}
	values := make([]sample, len(indices))
	for i, idx := range indices {
		values[i] = sample{value: t.X.At(idx, feature), idx: idx}
	}
	sort.Slice(values, func(a, b int) bool {
		return values[a].value < values[b].value
	})

	best := splitInfo{feature: feature, gain: math.Inf(-1)}

	leftGrad := 0.0
	leftHess := 0.0
	leftCount := 0
	for i := 0; i < len(values)-1; i++ {
		leftGrad += t.gradients[values[i].idx]
		leftHess += t.hessians[values[i].idx]
		leftCount++

		// No split between identical values.
		if values[i].value == values[i+1].value {
			continue
		}

		rightCount := len(indices) - leftCount
		if leftCount < t.params.MinSamplesLeaf || rightCount < t.params.MinSamplesLeaf {
			continue
		}

		gain := t.splitGain(leftGrad, leftHess, totalGrad-leftGrad, totalHess-leftHess, totalGrad, totalHess)
		if gain > best.gain {
			best.gain = gain
			best.threshold = (values[i].value + values[i+1].value) / 2
		}
	}
	return best
}

func (t *trainer) splitGain(leftGrad, leftHess, rightGrad, rightHess, totalGrad, totalHess float64) float64 {
	lambda := t.params.Lambda
	leftScore := (leftGrad * leftGrad) / (leftHess + lambda)
	rightScore := (rightGrad * rightGrad) / (rightHess + lambda)
	totalScore := (totalGrad * totalGrad) / (totalHess + lambda)
	return 0.5 * (leftScore + rightScore - totalScore)
}

// leafValue is the optimal leaf output under L2 regularization.
func (t *trainer) leafValue(indices []int) float64 {
	sumGrad := 0.0
	sumHess := 0.0
	for _, idx := range indices {
		sumGrad += t.gradients[idx]
		sumHess += t.hessians[idx]
	}
	const epsilon = 1e-10
	if math.Abs(sumHess) < epsilon {
		sumHess = epsilon
	}
	return -sumGrad / (sumHess + t.params.Lambda + epsilon)
}
