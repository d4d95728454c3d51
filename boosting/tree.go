// Package boosting implements the gradient-boosted regression-tree ensemble
// that consumes the encoder's embeddings. Trees are grown depth-wise against
// a squared-error objective; a fresh ensemble is trained per fold.
package boosting

// NodeType discriminates decision nodes from leaves.
type NodeType int

const (
	// NumericalNode splits on a feature threshold.
	NumericalNode NodeType = iota
	// LeafNode carries a prediction value.
	LeafNode
)

// Node is one node of a regression tree, stored in a flat slice and linked
// by child indices.
type Node struct {
	NodeType     NodeType
	SplitFeature int
	Threshold    float64
	LeafValue    float64
	LeftChild    int
	RightChild   int
}

// Tree is a single regression tree in the ensemble.
type Tree struct {
	Nodes []Node
}

// predict walks the tree for one sample.
func (t *Tree) predict(features []float64) float64 {
	nodeIdx := 0
	for nodeIdx >= 0 && nodeIdx < len(t.Nodes) {
		node := t.Nodes[nodeIdx]
		if node.NodeType == LeafNode {
			return node.LeafValue
		}
		if features[node.SplitFeature] <= node.Threshold {
			nodeIdx = node.LeftChild
		} else {
			nodeIdx = node.RightChild
		}
	}
	return 0.0
}
