package learning

import (
	"fmt"
	"math"
	"math/rand"
)

// Split returns train and test row indices for n rows. The test partition
// holds ceil(testSize·n) rows: the first entries of a permutation seeded
// with seed. The same (n, testSize, seed) always yields the same split.
func Split(n int, testSize float64, seed int64) (train, test []int, err error) {
	if testSize <= 0 || testSize >= 1 {
		return nil, nil, fmt.Errorf("test size must be between 0 and 1, got %v", testSize)
	}

	nTest := int(math.Ceil(testSize * float64(n)))
	nTrain := n - nTest
	if nTest < 1 || nTrain < 1 {
		return nil, nil, fmt.Errorf("cannot split %d rows with test size %v: %w", n, testSize, ErrEmptyCorpus)
	}

	perm := rand.New(rand.NewSource(seed)).Perm(n)
	return perm[nTest:], perm[:nTest], nil
}
