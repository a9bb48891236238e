package forest

import (
	"math/rand/v2"
	"sort"
)

// node is either an internal split (left != nil) or a leaf holding class
// probabilities.
type node struct {
	feature   int
	threshold float64
	left      *node
	right     *node
	proba     []float64
}

func (n *node) isLeaf() bool { return n.left == nil }

// treeBuilder grows a single CART tree with Gini impurity.
type treeBuilder struct {
	x        [][]float64
	y        []int
	nClasses int
	mtry     int // features examined per split
	rng      *rand.Rand
}

// build grows a fully expanded tree over the sample indices idx.
// Indices may repeat (bootstrap samples).
func (b *treeBuilder) build(idx []int) *node {
	counts := b.classCounts(idx)
	if len(idx) < 2 || isPure(counts) {
		return b.leaf(counts, len(idx))
	}

	feature, threshold, ok := b.bestSplit(idx)
	if !ok {
		return b.leaf(counts, len(idx))
	}

	var left, right []int
	for _, i := range idx {
		if b.x[i][feature] <= threshold {
			left = append(left, i)
		} else {
			right = append(right, i)
		}
	}
	return &node{
		feature:   feature,
		threshold: threshold,
		left:      b.build(left),
		right:     b.build(right),
	}
}

// bestSplit examines up to mtry non-constant features in random order and
// returns the split with the lowest weighted Gini impurity. Constant
// features do not count towards mtry.
func (b *treeBuilder) bestSplit(idx []int) (feature int, threshold float64, ok bool) {
	nFeatures := len(b.x[idx[0]])
	order := b.rng.Perm(nFeatures)

	sorted := make([]int, len(idx))
	bestScore := 2.0 // Gini is at most 1
	visited := 0

	for _, f := range order {
		if visited >= b.mtry {
			break
		}
		copy(sorted, idx)
		sort.SliceStable(sorted, func(i, j int) bool {
			return b.x[sorted[i]][f] < b.x[sorted[j]][f]
		})
		lo, hi := b.x[sorted[0]][f], b.x[sorted[len(sorted)-1]][f]
		if lo == hi {
			continue
		}
		visited++

		score, thr := b.scanFeature(sorted, f)
		if score < bestScore {
			bestScore, feature, threshold, ok = score, f, thr, true
		}
	}
	return feature, threshold, ok
}

// scanFeature walks samples sorted by feature f and evaluates every cut
// between distinct adjacent values.
func (b *treeBuilder) scanFeature(sorted []int, f int) (float64, float64) {
	n := len(sorted)
	left := make([]int, b.nClasses)
	right := b.classCounts(sorted)

	best, thr := 2.0, 0.0
	for i := 0; i < n-1; i++ {
		c := b.y[sorted[i]]
		left[c]++
		right[c]--

		v, next := b.x[sorted[i]][f], b.x[sorted[i+1]][f]
		if v == next {
			continue
		}
		nl, nr := i+1, n-i-1
		score := (float64(nl)*gini(left, nl) + float64(nr)*gini(right, nr)) / float64(n)
		if score < best {
			best, thr = score, v+(next-v)/2
		}
	}
	return best, thr
}

func (b *treeBuilder) classCounts(idx []int) []int {
	counts := make([]int, b.nClasses)
	for _, i := range idx {
		counts[b.y[i]]++
	}
	return counts
}

func (b *treeBuilder) leaf(counts []int, total int) *node {
	proba := make([]float64, b.nClasses)
	if total > 0 {
		for c, n := range counts {
			proba[c] = float64(n) / float64(total)
		}
	}
	return &node{proba: proba}
}

func (n *node) predict(x []float64) []float64 {
	for !n.isLeaf() {
		if x[n.feature] <= n.threshold {
			n = n.left
		} else {
			n = n.right
		}
	}
	return n.proba
}

func gini(counts []int, total int) float64 {
	if total == 0 {
		return 0
	}
	g := 1.0
	for _, c := range counts {
		p := float64(c) / float64(total)
		g -= p * p
	}
	return g
}

func isPure(counts []int) bool {
	nonZero := 0
	for _, c := range counts {
		if c > 0 {
			nonZero++
		}
	}
	return nonZero <= 1
}
