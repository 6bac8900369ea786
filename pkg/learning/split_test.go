package learning

import (
	"sort"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSplitSizes(t *testing.T) {
	tests := []struct {
		n, train, test int
	}{
		{10, 8, 2},
		{11, 8, 3},
		{5, 4, 1},
		{2, 1, 1},
		{1000, 800, 200},
	}

	for _, tt := range tests {
		train, test, err := Split(tt.n, 0.2, 42)
		require.NoError(t, err)
		assert.Len(t, train, tt.train, "n=%d", tt.n)
		assert.Len(t, test, tt.test, "n=%d", tt.n)

		all := append(append([]int(nil), train...), test...)
		sort.Ints(all)
		for i, v := range all {
			assert.Equal(t, i, v, "split must partition 0..n-1")
		}
	}
}

func TestSplitDeterministic(t *testing.T) {
	trainA, testA, err := Split(50, 0.2, 42)
	require.NoError(t, err)
	trainB, testB, err := Split(50, 0.2, 42)
	require.NoError(t, err)

	assert.Equal(t, trainA, trainB)
	assert.Equal(t, testA, testB)

	_, testC, err := Split(50, 0.2, 7)
	require.NoError(t, err)
	assert.NotEqual(t, testA, testC)
}

func TestSplitErrors(t *testing.T) {
	_, _, err := Split(1, 0.2, 42)
	assert.ErrorIs(t, err, ErrEmptyCorpus)

	_, _, err = Split(0, 0.2, 42)
	assert.Error(t, err)

	_, _, err = Split(10, 0, 42)
	assert.Error(t, err)

	_, _, err = Split(10, 1, 42)
	assert.Error(t, err)
}
