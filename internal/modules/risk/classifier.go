// Package risk trains and serves the installment-default classifier: a
// gradient-boosted ensemble of shallow regression trees fit with a logistic
// loss, plus decision-path attribution for its predictions.
package risk

import (
	"errors"
	"math"
	"math/rand"
	"time"

	"github.com/rs/zerolog"
	"gonum.org/v1/gonum/stat"

	"github.com/aristath/stresswatch/internal/domain"
)

// Training is fatal on degenerate example sets - the caller must not score
// until a Train call has succeeded.
var (
	// ErrNoExamples is returned when Train is called with no examples.
	ErrNoExamples = errors.New("risk: cannot train on an empty example set")
	// ErrSingleClass is returned when every example carries the same label.
	ErrSingleClass = errors.New("risk: cannot train on a single-class example set")
)

// Ensemble hyperparameters.
const (
	numTrees          = 200
	maxTreeDepth      = 4
	learningRate      = 0.05
	subsampleFraction = 0.8 // remaining 20% held out for external evaluation
	subsampleSeed     = 42  // fixed seed: the split is reproducible
	minLeafSamples    = 5
	regLambda         = 1.0
)

// probEpsilon keeps the base log-odds finite when the training subsample
// happens to be single-class after splitting.
const probEpsilon = 1e-6

// Model is the trained parameter set. Immutable after training: Predict and
// the explainer only read it, so concurrent use needs no locking.
type Model struct {
	baseScore float64 // log-odds of the training subsample's positive rate
	trees     []*regressionTree
	lr        float64
}

// Classifier trains Models from labeled examples.
type Classifier struct {
	log zerolog.Logger
}

// NewClassifier creates a classifier with the fixed ensemble configuration.
func NewClassifier(log zerolog.Logger) *Classifier {
	return &Classifier{
		log: log.With().Str("component", "risk_classifier").Logger(),
	}
}

// Train fits the boosted ensemble on a reproducible 80% subsample of the
// examples. It fails on empty or single-class example sets.
func (c *Classifier) Train(examples []domain.LabeledExample) (*Model, error) {
	if len(examples) == 0 {
		return nil, ErrNoExamples
	}

	positives := 0
	for _, ex := range examples {
		if ex.WillMissEMI == 1 {
			positives++
		}
	}
	if positives == 0 || positives == len(examples) {
		return nil, ErrSingleClass
	}

	started := time.Now()

	// Reproducible 80/20 split: shuffle with a fixed seed, train on the
	// first 80%.
	rng := rand.New(rand.NewSource(subsampleSeed))
	perm := rng.Perm(len(examples))
	trainN := int(float64(len(examples)) * subsampleFraction)
	if trainN < 1 {
		trainN = 1
	}

	xs := make([][]float64, trainN)
	ys := make([]float64, trainN)
	for i := 0; i < trainN; i++ {
		ex := examples[perm[i]]
		xs[i] = ex.Features.Values()
		ys[i] = float64(ex.WillMissEMI)
	}

	baseProb := clampProb(stat.Mean(ys, nil))
	baseScore := math.Log(baseProb / (1 - baseProb))

	margins := make([]float64, trainN)
	for i := range margins {
		margins[i] = baseScore
	}

	grad := make([]float64, trainN)
	hess := make([]float64, trainN)
	trees := make([]*regressionTree, 0, numTrees)

	for round := 0; round < numTrees; round++ {
		for i := range margins {
			p := sigmoid(margins[i])
			grad[i] = ys[i] - p
			hess[i] = p * (1 - p)
		}

		tree := fitRegressionTree(xs, grad, hess, maxTreeDepth, minLeafSamples, regLambda)
		trees = append(trees, tree)

		for i := range margins {
			margins[i] += learningRate * tree.predict(xs[i])
		}
	}

	model := &Model{baseScore: baseScore, trees: trees, lr: learningRate}

	c.log.Info().
		Int("examples", len(examples)).
		Int("train_examples", trainN).
		Int("trees", numTrees).
		Float64("positive_rate", baseProb).
		Float64("train_log_loss", logLoss(ys, margins)).
		Dur("elapsed", time.Since(started)).
		Msg("Classifier trained")

	return model, nil
}

// margin returns the raw log-odds output of the ensemble.
func (m *Model) margin(x []float64) float64 {
	f := m.baseScore
	for _, t := range m.trees {
		f += m.lr * t.predict(x)
	}
	return f
}

// Predict returns the probability of the positive class (missed installment)
// in [0, 1].
func (m *Model) Predict(v domain.FeatureVector) float64 {
	return sigmoid(m.margin(v.Values()))
}

// NumTrees reports the ensemble size.
func (m *Model) NumTrees() int {
	return len(m.trees)
}

// RiskScore converts a default probability into the 0-100 integer score
// shown to users.
func RiskScore(prob float64) int {
	return int(math.Floor(prob * 100))
}

func sigmoid(x float64) float64 {
	return 1 / (1 + math.Exp(-x))
}

func clampProb(p float64) float64 {
	return math.Min(1-probEpsilon, math.Max(probEpsilon, p))
}

// logLoss computes the mean logistic loss of raw margins against labels.
func logLoss(ys, margins []float64) float64 {
	if len(ys) == 0 {
		return 0
	}
	total := 0.0
	for i := range ys {
		p := clampProb(sigmoid(margins[i]))
		total += -(ys[i]*math.Log(p) + (1-ys[i])*math.Log(1-p))
	}
	return total / float64(len(ys))
}
