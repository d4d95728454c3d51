package crossval

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestKFoldSplit(t *testing.T) {
	t.Run("100 rows into 5 folds", func(t *testing.T) {
		kf := NewKFold(5, true, 42)
		folds, err := kf.Split(100)
		require.NoError(t, err)
		require.Len(t, folds, 5)

		coverage := make(map[int]int)
		for i, fold := range folds {
			assert.Len(t, fold.TestIndices, 20, "fold %d test size", i)
			assert.Len(t, fold.TrainIndices, 80, "fold %d train size", i)

			testSet := make(map[int]bool)
			for _, idx := range fold.TestIndices {
				testSet[idx] = true
				coverage[idx]++
			}
			for _, idx := range fold.TrainIndices {
				assert.False(t, testSet[idx], "train index %d in test set", idx)
			}
		}

		// Union of test partitions covers every index exactly once.
		for i := 0; i < 100; i++ {
			assert.Equal(t, 1, coverage[i], "index %d coverage", i)
		}
	})

	t.Run("uneven split", func(t *testing.T) {
		kf := NewKFold(3, false, 0)
		folds, err := kf.Split(10)
		require.NoError(t, err)

		sizes := []int{len(folds[0].TestIndices), len(folds[1].TestIndices), len(folds[2].TestIndices)}
		assert.Equal(t, []int{4, 3, 3}, sizes)
	})
}

func TestKFoldSplitDeterministic(t *testing.T) {
	first, err := NewKFold(5, true, 42).Split(50)
	require.NoError(t, err)
	second, err := NewKFold(5, true, 42).Split(50)
	require.NoError(t, err)

	assert.Equal(t, first, second, "same seed must reproduce the same partitions")

	other, err := NewKFold(5, true, 7).Split(50)
	require.NoError(t, err)
	assert.NotEqual(t, first, other, "different seeds should shuffle differently")
}

func TestKFoldSplitValidation(t *testing.T) {
	t.Run("n_splits below two", func(t *testing.T) {
		_, err := NewKFold(0, true, 42).Split(10)
		assert.Error(t, err)
	})

	t.Run("fewer rows than folds", func(t *testing.T) {
		_, err := NewKFold(5, true, 42).Split(3)
		assert.Error(t, err)
	})
}
