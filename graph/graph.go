// Package graph builds the subject-scoped k-nearest-neighbor graph that the
// encoder's message passing operates on.
//
// Neighbor search runs independently inside each subject's rows, so the
// union never contains a cross-subject edge. Every node carries a self-loop.
// The graph is constructed once from the full feature matrix and shared
// read-only across all cross-validation folds.
package graph

// Edge is a directed pair of global row indices. Src contributes to Dst
// during neighborhood aggregation, mirroring the nonzero entries of the
// adjacency matrix.
type Edge struct {
	Src int
	Dst int
}

// Graph is the union of all per-subject neighbor graphs.
type Graph struct {
	NumNodes int
	Edges    []Edge
}

// NumEdges returns the number of directed edges, self-loops included.
func (g *Graph) NumEdges() int {
	return len(g.Edges)
}

// InNeighbors returns, for each node, the list of source nodes with an edge
// into it. Used by the encoder to aggregate neighbor features.
func (g *Graph) InNeighbors() [][]int {
	neighbors := make([][]int, g.NumNodes)
	for _, e := range g.Edges {
		neighbors[e.Dst] = append(neighbors[e.Dst], e.Src)
	}
	return neighbors
}
