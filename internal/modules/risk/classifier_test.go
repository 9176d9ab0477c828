package risk

import (
	"math/rand"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/aristath/stresswatch/internal/domain"
)

// separableExamples builds a training set where the positive class has a
// clearly lower income ratio and more failed debits.
func separableExamples(n int) []domain.LabeledExample {
	rng := rand.New(rand.NewSource(7))
	examples := make([]domain.LabeledExample, 0, n)

	for i := 0; i < n; i++ {
		var v domain.FeatureVector
		label := i % 2
		if label == 1 {
			v.IncomeToEMIRatio = 1.0 + rng.Float64()
			v.FailedAutoDebits = float64(2 + rng.Intn(3))
			v.SalaryDelayDays = float64(6 + rng.Intn(5))
			v.SavingsDeclinePct = 30 + rng.Float64()*20
		} else {
			v.IncomeToEMIRatio = 5.0 + rng.Float64()*3
			v.FailedAutoDebits = 0
			v.SalaryDelayDays = float64(rng.Intn(2))
			v.SavingsDeclinePct = rng.Float64() * 5
		}
		v.SavingsToEMIRatio = v.IncomeToEMIRatio * 1.5
		v.DiscretionaryRatio = 0.2 + rng.Float64()*0.1

		examples = append(examples, domain.LabeledExample{Features: v, WillMissEMI: label})
	}
	return examples
}

func TestTrain_EmptySet(t *testing.T) {
	c := NewClassifier(zerolog.Nop())

	_, err := c.Train(nil)

	assert.ErrorIs(t, err, ErrNoExamples)
}

func TestTrain_SingleClass(t *testing.T) {
	c := NewClassifier(zerolog.Nop())

	examples := separableExamples(40)
	for i := range examples {
		examples[i].WillMissEMI = 0
	}

	_, err := c.Train(examples)

	assert.ErrorIs(t, err, ErrSingleClass)
}

func TestTrain_PredictionsInRange(t *testing.T) {
	c := NewClassifier(zerolog.Nop())

	examples := separableExamples(120)
	model, err := c.Train(examples)
	require.NoError(t, err)

	for _, ex := range examples {
		p := model.Predict(ex.Features)
		assert.Greater(t, p, 0.0)
		assert.Less(t, p, 1.0)
	}
}

func TestTrain_SeparatesClasses(t *testing.T) {
	c := NewClassifier(zerolog.Nop())

	examples := separableExamples(120)
	model, err := c.Train(examples)
	require.NoError(t, err)

	risky := domain.FeatureVector{
		IncomeToEMIRatio:  1.2,
		SavingsToEMIRatio: 1.8,
		FailedAutoDebits:  3,
		SalaryDelayDays:   8,
		SavingsDeclinePct: 40,
	}
	healthy := domain.FeatureVector{
		IncomeToEMIRatio:  7.0,
		SavingsToEMIRatio: 10.5,
		FailedAutoDebits:  0,
		SalaryDelayDays:   0,
		SavingsDeclinePct: 2,
	}

	assert.Greater(t, model.Predict(risky), model.Predict(healthy))
	assert.Greater(t, model.Predict(risky), 0.5)
	assert.Less(t, model.Predict(healthy), 0.5)
}

func TestTrain_Deterministic(t *testing.T) {
	examples := separableExamples(80)

	m1, err := NewClassifier(zerolog.Nop()).Train(examples)
	require.NoError(t, err)
	m2, err := NewClassifier(zerolog.Nop()).Train(examples)
	require.NoError(t, err)

	for _, ex := range examples {
		assert.Equal(t, m1.Predict(ex.Features), m2.Predict(ex.Features))
	}
}

func TestTrain_DoesNotMutateExamples(t *testing.T) {
	examples := separableExamples(60)
	snapshot := make([]domain.LabeledExample, len(examples))
	copy(snapshot, examples)

	_, err := NewClassifier(zerolog.Nop()).Train(examples)
	require.NoError(t, err)

	assert.Equal(t, snapshot, examples)
}

func TestModel_NumTrees(t *testing.T) {
	model, err := NewClassifier(zerolog.Nop()).Train(separableExamples(60))
	require.NoError(t, err)

	assert.Equal(t, numTrees, model.NumTrees())
}

func TestRiskScore(t *testing.T) {
	assert.Equal(t, 0, RiskScore(0))
	assert.Equal(t, 0, RiskScore(0.009))
	assert.Equal(t, 50, RiskScore(0.50))
	assert.Equal(t, 99, RiskScore(0.999))
	assert.Equal(t, 100, RiskScore(1.0))
}

func TestSigmoid(t *testing.T) {
	assert.InDelta(t, 0.5, sigmoid(0), 1e-12)
	assert.Greater(t, sigmoid(4), 0.98)
	assert.Less(t, sigmoid(-4), 0.02)
}
