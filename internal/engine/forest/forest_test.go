package forest

import (
	"context"
	"math/rand/v2"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// separable returns n rows where every feature of class 1 lies in [5,6) and
// every feature of class 0 lies in [0,1).
func separable(n, features int) ([][]float64, []int) {
	rng := rand.New(rand.NewPCG(1, 2))
	x := make([][]float64, n)
	y := make([]int, n)
	for i := range x {
		y[i] = i % 2
		row := make([]float64, features)
		for f := range row {
			row[f] = rng.Float64() + float64(5*y[i])
		}
		x[i] = row
	}
	return x, y
}

func TestFitSeparable(t *testing.T) {
	x, y := separable(40, 4)
	f, err := Fit(context.Background(), x, y, Options{Trees: 25, Seed: 42})
	require.NoError(t, err)

	assert.Equal(t, 25, f.Size())
	assert.Equal(t, y, f.Predict(x))
	assert.InDelta(t, 1.0, f.Score(x, y), 1e-9)

	assert.Equal(t, []int{0, 1}, f.Predict([][]float64{
		{0.5, 0.5, 0.5, 0.5},
		{5.5, 5.5, 5.5, 5.5},
	}))
}

func TestFitDeterministic(t *testing.T) {
	x, y := separable(30, 6)
	// Flip a few labels so trees disagree and the seed matters.
	y[3], y[8], y[17] = 1-y[3], 1-y[8], 1-y[17]

	probe := [][]float64{{0.2, 5.1, 0.7, 5.9, 0.1, 0.3}, {5.2, 0.4, 5.5, 0.9, 5.0, 5.3}}

	first, err := Fit(context.Background(), x, y, Options{Trees: 30, Seed: 7, Workers: 1})
	require.NoError(t, err)
	second, err := Fit(context.Background(), x, y, Options{Trees: 30, Seed: 7, Workers: 8})
	require.NoError(t, err)

	assert.Equal(t, first.Predict(x), second.Predict(x))
	for _, row := range probe {
		assert.Equal(t, first.PredictProba(row), second.PredictProba(row))
	}
}

func TestPredictProbaSumsToOne(t *testing.T) {
	x, y := separable(20, 3)
	f, err := Fit(context.Background(), x, y, Options{Trees: 10, Seed: 1})
	require.NoError(t, err)

	for _, row := range x {
		p := f.PredictProba(row)
		require.Len(t, p, 2)
		assert.InDelta(t, 1.0, p[0]+p[1], 1e-9)
	}
}

func TestFitNoFeatures(t *testing.T) {
	x := [][]float64{{}, {}, {}}
	y := []int{0, 1, 1}
	f, err := Fit(context.Background(), x, y, Options{Trees: 5, Seed: 3})
	require.NoError(t, err)
	assert.Len(t, f.Predict(x), 3)
}

func TestFitErrors(t *testing.T) {
	_, err := Fit(context.Background(), nil, nil, Options{})
	assert.ErrorIs(t, err, ErrEmpty)

	_, err = Fit(context.Background(), [][]float64{{1}}, []int{0, 1}, Options{})
	assert.ErrorIs(t, err, ErrMismatch)

	_, err = Fit(context.Background(), [][]float64{{1}}, []int{-1}, Options{})
	assert.Error(t, err)
}

func TestFitCanceled(t *testing.T) {
	x, y := separable(10, 2)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := Fit(ctx, x, y, Options{Trees: 5})
	assert.ErrorIs(t, err, context.Canceled)
}

func TestGini(t *testing.T) {
	tests := []struct {
		counts []int
		want   float64
	}{
		{[]int{5, 0}, 0},
		{[]int{5, 5}, 0.5},
		{[]int{0, 0}, 0},
		{[]int{1, 3}, 0.375},
	}
	for _, tt := range tests {
		total := 0
		for _, c := range tt.counts {
			total += c
		}
		assert.InDelta(t, tt.want, gini(tt.counts, total), 1e-9, "%v", tt.counts)
	}
}
