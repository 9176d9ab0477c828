package health

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/aristath/stresswatch/internal/domain"
)

func TestScore_Perfect(t *testing.T) {
	v := domain.FeatureVector{
		IncomeToEMIRatio:        5.0,
		DiscretionaryRatio:      0.2,
		SavingsDeclinePct:       5,
		UtilityPaymentDelayDays: 0,
	}

	assert.Equal(t, 100, Score(v))
}

func TestScore_SinglePenalties(t *testing.T) {
	base := domain.FeatureVector{IncomeToEMIRatio: 5.0}

	v := base
	v.DiscretionaryRatio = 0.5
	assert.Equal(t, 75, Score(v))

	v = base
	v.SavingsDeclinePct = 25
	assert.Equal(t, 80, Score(v))

	v = base
	v.IncomeToEMIRatio = 2.0
	assert.Equal(t, 70, Score(v))

	v = base
	v.UtilityPaymentDelayDays = 6
	assert.Equal(t, 85, Score(v))
}

func TestScore_BoundariesDoNotTrip(t *testing.T) {
	v := domain.FeatureVector{
		IncomeToEMIRatio:        3.0,
		DiscretionaryRatio:      0.4,
		SavingsDeclinePct:       20,
		UtilityPaymentDelayDays: 5,
	}

	assert.Equal(t, 100, Score(v))
}

func TestScore_AllPenaltiesClampToZero(t *testing.T) {
	v := domain.FeatureVector{
		IncomeToEMIRatio:        1.0,
		DiscretionaryRatio:      0.6,
		SavingsDeclinePct:       50,
		UtilityPaymentDelayDays: 10,
	}

	// 100 - 25 - 20 - 30 - 15 = 10
	assert.Equal(t, 10, Score(v))
}

func TestScore_NeverNegative(t *testing.T) {
	// The sum of all penalties is 90, so the clamp is unreachable with the
	// current catalog; this pins the floor regardless.
	v := domain.FeatureVector{
		IncomeToEMIRatio:        0,
		DiscretionaryRatio:      1,
		SavingsDeclinePct:       100,
		UtilityPaymentDelayDays: 30,
	}

	assert.GreaterOrEqual(t, Score(v), 0)
}
