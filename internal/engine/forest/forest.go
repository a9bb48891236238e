// Package forest implements a bagged ensemble of CART decision trees for
// small dense datasets.
package forest

import (
	"context"
	"errors"
	"fmt"
	"math"
	"math/rand/v2"
	"runtime"

	"golang.org/x/sync/errgroup"
)

// DefaultTrees is the ensemble size used when Options.Trees is unset.
const DefaultTrees = 50

var (
	ErrEmpty    = errors.New("forest: no training samples")
	ErrMismatch = errors.New("forest: sample and label counts differ")
)

// Options configures forest training.
type Options struct {
	Trees       int    // number of trees; 0 means DefaultTrees
	MaxFeatures int    // features per split; 0 means sqrt(n_features)
	Seed        uint64 // master seed; per-tree seeds derive from it
	Workers     int    // concurrent tree fits; 0 means GOMAXPROCS
}

// Forest is a trained ensemble.
type Forest struct {
	trees    []*node
	nClasses int
}

// Fit trains a forest on x (one row per sample) and integer class labels y.
// Labels must be in [0, k). Each tree is grown on a bootstrap resample.
// For a fixed Seed the result does not depend on scheduling.
func Fit(ctx context.Context, x [][]float64, y []int, opts Options) (*Forest, error) {
	if len(x) == 0 {
		return nil, ErrEmpty
	}
	if len(x) != len(y) {
		return nil, ErrMismatch
	}

	nClasses := 2
	for _, c := range y {
		if c < 0 {
			return nil, fmt.Errorf("forest: negative class label %d", c)
		}
		if c+1 > nClasses {
			nClasses = c + 1
		}
	}

	nTrees := opts.Trees
	if nTrees <= 0 {
		nTrees = DefaultTrees
	}
	mtry := opts.MaxFeatures
	if mtry <= 0 {
		mtry = int(math.Max(1, math.Floor(math.Sqrt(float64(len(x[0]))))))
	}
	workers := opts.Workers
	if workers <= 0 {
		workers = runtime.GOMAXPROCS(0)
	}

	master := rand.New(rand.NewPCG(opts.Seed, opts.Seed^0x9e3779b97f4a7c15))
	seeds := make([]uint64, nTrees)
	for i := range seeds {
		seeds[i] = master.Uint64()
	}

	trees := make([]*node, nTrees)
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(workers)
	for i := range trees {
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			rng := rand.New(rand.NewPCG(seeds[i], uint64(i)))
			b := &treeBuilder{x: x, y: y, nClasses: nClasses, mtry: mtry, rng: rng}
			trees[i] = b.build(bootstrap(len(x), rng))
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, fmt.Errorf("forest: %w", err)
	}

	return &Forest{trees: trees, nClasses: nClasses}, nil
}

// PredictProba returns the mean class probabilities across all trees.
func (f *Forest) PredictProba(x []float64) []float64 {
	out := make([]float64, f.nClasses)
	for _, t := range f.trees {
		for c, p := range t.predict(x) {
			out[c] += p
		}
	}
	for c := range out {
		out[c] /= float64(len(f.trees))
	}
	return out
}

// Predict returns the most probable class for every row. Ties go to the
// lower class label.
func (f *Forest) Predict(x [][]float64) []int {
	out := make([]int, len(x))
	for i, row := range x {
		proba := f.PredictProba(row)
		best := 0
		for c := 1; c < len(proba); c++ {
			if proba[c] > proba[best] {
				best = c
			}
		}
		out[i] = best
	}
	return out
}

// Score returns the fraction of rows in x whose prediction equals y.
func (f *Forest) Score(x [][]float64, y []int) float64 {
	if len(x) == 0 {
		return 0
	}
	correct := 0
	for i, p := range f.Predict(x) {
		if p == y[i] {
			correct++
		}
	}
	return float64(correct) / float64(len(x))
}

// Size returns the number of trees.
func (f *Forest) Size() int { return len(f.trees) }

func bootstrap(n int, rng *rand.Rand) []int {
	idx := make([]int, n)
	for i := range idx {
		idx[i] = rng.IntN(n)
	}
	return idx
}
