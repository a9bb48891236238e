package classifier

import (
	"math"
	"math/rand/v2"
)

// split shuffles [0, n) and returns the training and held-out indices.
// The held-out set has ceil(testSize*n) records, clamped so both sides keep
// at least one record. n must be at least 2.
func split(n int, testSize float64, rng *rand.Rand) (train, test []int) {
	nTest := int(math.Ceil(testSize * float64(n)))
	nTest = max(1, min(nTest, n-1))

	perm := rng.Perm(n)
	return perm[nTest:], perm[:nTest]
}
