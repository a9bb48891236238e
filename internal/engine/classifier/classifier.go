package classifier

import (
	"context"
	"errors"
	"fmt"
	"math"
	"math/rand/v2"
	"time"

	"github.com/hejijunhao/camscan/internal/engine/forest"
	"github.com/hejijunhao/camscan/internal/engine/vectorizer"
)

// ErrTraining is the parent of every error caused by unusable training data.
// Callers surface it to users instead of treating it as an internal fault.
var ErrTraining = errors.New("classifier: training failed")

var (
	ErrInsufficientData = fmt.Errorf("%w: at least 2 records are required", ErrTraining)
	ErrSingleClass      = fmt.Errorf("%w: only one label class present", ErrTraining)
)

// Defaults for the web classification path.
const (
	DefaultTestSize = 0.3
	DefaultSeed     = 42
)

// Config holds classifier hyperparameters.
type Config struct {
	MaxFeatures int     // vocabulary cap; <= 0 means unbounded
	TestSize    float64 // held-out fraction in (0, 1)
	Trees       int
	Workers     int
	Seed        *uint64 // nil draws a fresh seed per run
}

// DefaultConfig returns the settings used by the web search path.
func DefaultConfig() Config {
	seed := uint64(DefaultSeed)
	return Config{
		MaxFeatures: vectorizer.DefaultMaxFeatures,
		TestSize:    DefaultTestSize,
		Trees:       forest.DefaultTrees,
		Seed:        &seed,
	}
}

// Result is the outcome of one train-and-score run.
type Result struct {
	Accuracy    float64 // percent correct on the held-out split, 2 decimals
	Predictions []int   // one per input record, training records included
	TrainSize   int
	TestSize    int
	Features    []string
	Seed        uint64
}

// Classifier vectorizes banner text, trains a forest on a random split and
// scores every record. A fresh vocabulary and model are built on each call.
type Classifier struct {
	cfg Config
}

// New creates a Classifier.
func New(cfg Config) *Classifier {
	return &Classifier{cfg: cfg}
}

// Train fits on texts/labels and predicts every record. Predictions for
// records that were in the training split are optimistically biased.
func (c *Classifier) Train(ctx context.Context, texts []string, labels []int) (Result, error) {
	if len(texts) != len(labels) {
		return Result{}, fmt.Errorf("classifier: %d texts but %d labels", len(texts), len(labels))
	}
	if len(texts) < 2 {
		return Result{}, ErrInsufficientData
	}
	if !hasTwoClasses(labels) {
		return Result{}, ErrSingleClass
	}

	seed := c.seed()

	vec := vectorizer.New(c.cfg.MaxFeatures)
	x, err := vec.FitTransform(texts)
	if err != nil {
		return Result{}, fmt.Errorf("classifier: %w", err)
	}

	rng := rand.New(rand.NewPCG(seed, 0))
	trainIdx, testIdx := split(len(texts), c.testSize(), rng)

	xTrain, yTrain := gather(x, labels, trainIdx)
	xTest, yTest := gather(x, labels, testIdx)

	model, err := forest.Fit(ctx, xTrain, yTrain, forest.Options{
		Trees:   c.cfg.Trees,
		Workers: c.cfg.Workers,
		Seed:    seed,
	})
	if err != nil {
		return Result{}, fmt.Errorf("classifier: %w", err)
	}

	return Result{
		Accuracy:    round2(model.Score(xTest, yTest) * 100),
		Predictions: model.Predict(x),
		TrainSize:   len(trainIdx),
		TestSize:    len(testIdx),
		Features:    vec.Features(),
		Seed:        seed,
	}, nil
}

func (c *Classifier) seed() uint64 {
	if c.cfg.Seed != nil {
		return *c.cfg.Seed
	}
	return uint64(time.Now().UnixNano())
}

func (c *Classifier) testSize() float64 {
	if c.cfg.TestSize <= 0 || c.cfg.TestSize >= 1 {
		return DefaultTestSize
	}
	return c.cfg.TestSize
}

func hasTwoClasses(labels []int) bool {
	for _, l := range labels[1:] {
		if l != labels[0] {
			return true
		}
	}
	return false
}

func gather(x [][]float64, y []int, idx []int) ([][]float64, []int) {
	xs := make([][]float64, len(idx))
	ys := make([]int, len(idx))
	for i, j := range idx {
		xs[i], ys[i] = x[j], y[j]
	}
	return xs, ys
}

func round2(v float64) float64 {
	return math.Round(v*100) / 100
}
