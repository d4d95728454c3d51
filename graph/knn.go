package graph

import (
	"math"
	"sort"

	"gonum.org/v1/gonum/mat"

	"github.com/YuminosukeSato/pkgraph/pkg/errors"
	"github.com/YuminosukeSato/pkgraph/pkg/log"
)

// Options configures subject-scoped neighbor search.
type Options struct {
	// KNeighbors is the number of nearest neighbors per node, capped at
	// subset_size-1 inside small subjects. Must be at least 1.
	KNeighbors int

	// NumContinuous is the width of the continuous block at the front of
	// the feature matrix; columns at or past this index are treated as the
	// one-hot block for distance weighting.
	NumContinuous int

	// CategoricalWeight scales the one-hot block's contribution to the
	// Euclidean distance. 1.0 weighs both blocks equally.
	CategoricalWeight float64
}

// DefaultOptions returns the default neighbor-search configuration.
func DefaultOptions() Options {
	return Options{
		KNeighbors:        5,
		CategoricalWeight: 1.0,
	}
}

// BuildSubjectGraph constructs the per-subject kNN graph over the full
// feature matrix and unions the per-subject edge sets into one global edge
// list.
//
// Subjects are processed in order of first appearance in the subjects slice.
// For a subject with m rows the effective neighbor count is min(k, m-1), so
// a single-row subject yields exactly its self-loop. Neighbor pairs are
// computed on subset-local positions and translated back to global row
// indices before the union.
func BuildSubjectGraph(X mat.Matrix, subjects []string, opts Options) (*Graph, error) {
	n, cols := X.Dims()
	if len(subjects) != n {
		return nil, errors.NewDimensionError("BuildSubjectGraph", n, len(subjects), 0)
	}
	if opts.KNeighbors < 1 {
		return nil, errors.NewValueError("BuildSubjectGraph", "k_neighbors must be >= 1")
	}
	if opts.CategoricalWeight < 0 {
		return nil, errors.NewValueError("BuildSubjectGraph", "categorical weight must be >= 0")
	}
	if opts.NumContinuous < 0 || opts.NumContinuous > cols {
		return nil, errors.NewValueError("BuildSubjectGraph", "continuous block width out of range")
	}

	// Group rows by subject, preserving first-appearance order of subjects
	// and row order within each subject.
	var order []string
	groups := make(map[string][]int)
	for i, id := range subjects {
		if _, seen := groups[id]; !seen {
			order = append(order, id)
		}
		groups[id] = append(groups[id], i)
	}

	g := &Graph{NumNodes: n}
	for _, id := range order {
		rows := groups[id]
		appendSubjectEdges(g, X, rows, opts)
	}

	log.GetLoggerWithName("graph").Info("subject graph built",
		log.SamplesKey, n,
		log.SubjectsKey, len(order),
		log.EdgesKey, g.NumEdges(),
		"k_neighbors", opts.KNeighbors,
	)
	return g, nil
}

// appendSubjectEdges adds the kNN edges for one subject's rows. rows holds
// the subject's global row indices in their original order.
func appendSubjectEdges(g *Graph, X mat.Matrix, rows []int, opts Options) {
	m := len(rows)
	k := opts.KNeighbors
	if k > m-1 {
		k = m - 1
	}

	type candidate struct {
		local int
		dist  float64
	}

	for i := 0; i < m; i++ {
		// Self-connectivity first: every node is its own neighbor.
		g.Edges = append(g.Edges, Edge{Src: rows[i], Dst: rows[i]})
		if k <= 0 {
			continue
		}

		cands := make([]candidate, 0, m-1)
		for j := 0; j < m; j++ {
			if j == i {
				continue
			}
			cands = append(cands, candidate{
				local: j,
				dist:  weightedDistance(X, rows[i], rows[j], opts),
			})
		}
		// Ties broken by subset-local position for determinism.
		sort.Slice(cands, func(a, b int) bool {
			if cands[a].dist != cands[b].dist {
				return cands[a].dist < cands[b].dist
			}
			return cands[a].local < cands[b].local
		})

		for _, c := range cands[:k] {
			g.Edges = append(g.Edges, Edge{Src: rows[c.local], Dst: rows[i]})
		}
	}
}

// weightedDistance is the Euclidean distance between two rows, with the
// one-hot block scaled by the configured categorical weight.
func weightedDistance(X mat.Matrix, a, b int, opts Options) float64 {
	_, cols := X.Dims()
	sum := 0.0
	for j := 0; j < cols; j++ {
		diff := X.At(a, j) - X.At(b, j)
		if j >= opts.NumContinuous && opts.NumContinuous > 0 {
			diff *= opts.CategoricalWeight
		}
		sum += diff * diff
	}
	return math.Sqrt(sum)
}
