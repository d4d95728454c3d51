// Package crossval runs the k-fold evaluation loop: per fold it trains a
// fresh encoder and boosted-tree ensemble, scores the held-out rows, and
// aggregates the metrics across folds.
package crossval

import (
	"math/rand/v2"

	"github.com/YuminosukeSato/pkgraph/pkg/errors"
)

// Fold is one train/test partition of the global row indices.
type Fold struct {
	TrainIndices []int
	TestIndices  []int
}

// KFold generates shuffled k-fold partitions. The same seed always produces
// the same partitions.
type KFold struct {
	NSplits int
	Shuffle bool
	Seed    int
}

// NewKFold creates a k-fold splitter.
func NewKFold(nSplits int, shuffle bool, seed int) *KFold {
	return &KFold{NSplits: nSplits, Shuffle: shuffle, Seed: seed}
}

// Split partitions n row indices into NSplits folds. Test partitions are
// disjoint and together cover every index exactly once; fold sizes differ by
// at most one.
func (kf *KFold) Split(n int) ([]Fold, error) {
	if kf.NSplits < 2 {
		return nil, errors.NewValueError("KFold.Split", "n_splits must be >= 2")
	}
	if n < kf.NSplits {
		return nil, errors.Newf("crossval: cannot split %d rows into %d folds", n, kf.NSplits)
	}

	indices := make([]int, n)
	for i := range indices {
		indices[i] = i
	}
	if kf.Shuffle {
		r := rand.New(rand.NewPCG(uint64(kf.Seed), uint64(kf.Seed)))
		r.Shuffle(len(indices), func(i, j int) {
			indices[i], indices[j] = indices[j], indices[i]
		})
	}

	folds := make([]Fold, kf.NSplits)
	foldSize := n / kf.NSplits
	remainder := n % kf.NSplits

	currentIdx := 0
	for i := 0; i < kf.NSplits; i++ {
		testSize := foldSize
		if i < remainder {
			testSize++
		}

		testIndices := make([]int, testSize)
		copy(testIndices, indices[currentIdx:currentIdx+testSize])

		trainIndices := make([]int, 0, n-testSize)
		trainIndices = append(trainIndices, indices[:currentIdx]...)
		trainIndices = append(trainIndices, indices[currentIdx+testSize:]...)

		folds[i] = Fold{TrainIndices: trainIndices, TestIndices: testIndices}
		currentIdx += testSize
	}

	return folds, nil
}
